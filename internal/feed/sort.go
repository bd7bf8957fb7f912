package feed

import "sort"

// SortByDate orders Items by PublishedAt descending. Items with no date
// sort last; ordering among dateless items is stable (original feed order
// preserved).
func (f *Feed) SortByDate() {
	sort.SliceStable(f.Items, func(i, j int) bool {
		a, b := f.Items[i], f.Items[j]
		if !a.HasDate && !b.HasDate {
			return false
		}
		if !a.HasDate {
			return false
		}
		if !b.HasDate {
			return true
		}
		return a.PublishedAt.After(b.PublishedAt)
	})
}
