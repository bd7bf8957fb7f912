package importer

// groupByBookFolder partitions a flat list of discovered audio paths into
// one group per book folder, collapsing multi-disc subfolders via
// determineBookFolder. Each group is later imported as a single book whose
// audio files are ordered by filename (see importPaths' sort.Strings).
func groupByBookFolder(paths []string) map[string][]string {
	groups := make(map[string][]string)
	for _, p := range paths {
		folder := determineBookFolder(p)
		groups[folder] = append(groups[folder], p)
	}
	return groups
}
