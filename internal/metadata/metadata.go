// Package metadata extracts tags, technical properties, chapters, and cover
// art from an audio container (spec.md §4.1). Extraction is dispatched by
// file extension: the mainstream tagged formats go through
// github.com/simonhull/audiometa (which already implements Vorbis-comment >
// MP4-atom > ID3v2 > ID3v1 dialect precedence across FLAC/MP3/M4A/M4B/OGG),
// and the handful of rare container-only formats go through a generic probe
// in genericprobe.go.
package metadata

import "time"

// ExtractedMetadata is the format-agnostic result of extracting one audio
// file. It carries no catalog identity (no book ID, no path dedup logic) -
// that belongs to internal/importer, which turns one or more
// ExtractedMetadata values into a domain.Book.
type ExtractedMetadata struct {
	Title       string
	Subtitle    string
	Author      string
	Narrator    string
	Series      string
	SeriesPart  string
	Publisher   string
	ISBN        string
	ASIN        string
	Description string
	Language    string
	Genres      []string
	Year        int
	TrackNumber int
	TrackTotal  int

	Duration   time.Duration
	SampleRate int
	Channels   int
	BitDepth   int
	Bitrate    int
	Codec      string
	Lossless   bool

	Chapters []Chapter
	Cover    *Cover // nil if the file has no embedded artwork
}

// Chapter mirrors a chapter marker recovered from the container.
type Chapter struct {
	Index     int
	Title     string
	StartTime time.Duration
	EndTime   time.Duration
}

// Cover is embedded artwork plus the derived properties the catalog stores
// alongside a book: pixel dimensions and a blurhash placeholder.
type Cover struct {
	Data     []byte
	MIMEType string
	Width    int
	Height   int
	BlurHash string
}
