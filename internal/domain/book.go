// Package domain contains the core business entities for the StoryStream
// audiobook catalog: books, chapters, bookmarks, playback state, playlists,
// download tasks, and the change records that drive synchronization.
package domain

import (
	"fmt"
	"time"
)

// Book represents an audiobook in the local catalog.
//
// Invariant: Path is unique across non-deleted rows and must be an absolute,
// canonicalized filesystem path (see internal/scanner for canonicalization).
type Book struct {
	Syncable
	ScannedAt       time.Time         `json:"scanned_at"`
	LastPlayedAt    *time.Time        `json:"last_played_at,omitempty"`
	Rating          *int              `json:"rating,omitempty"` // 1-5
	CoverImage      *ImageFileInfo    `json:"cover_image,omitempty"`
	CoverBlurHash   string            `json:"cover_blur_hash,omitempty"`
	ISBN            string            `json:"isbn,omitempty"`
	ASIN            string            `json:"asin,omitempty"`
	Title           string            `json:"title"`
	Subtitle        string            `json:"subtitle,omitempty"`
	Author          string            `json:"author,omitempty"`
	Narrator        string            `json:"narrator,omitempty"`
	Path            string            `json:"path"`
	Description     string            `json:"description,omitempty"`
	Publisher       string            `json:"publisher,omitempty"`
	PublishedDate   string            `json:"published_date,omitempty"`
	Language        string            `json:"language,omitempty"`
	Genres          []string          `json:"genres,omitempty"`
	Tags            []string          `json:"tags,omitempty"`
	SeriesID        string            `json:"series_id,omitempty"`
	SeriesName      string            `json:"series_name,omitempty"`
	Sequence        string            `json:"sequence,omitempty"` // "1", "1.5", "Book Zero" - flexible for edge cases
	AudioFiles      []AudioFileInfo   `json:"audio_files"`
	Chapters        []Chapter         `json:"chapters,omitempty"`
	TotalDurationMs int64             `json:"total_duration_ms"`
	FileSizeBytes   int64             `json:"file_size_bytes"`
	PlayCount       int               `json:"play_count"`
	Favorite        bool              `json:"favorite"`
	Explicit        bool              `json:"explicit,omitempty"`
	Abridged        bool              `json:"abridged,omitempty"`
}

// AudioFileInfo represents an audio file within a book. Books acquired as a
// single container (m4b) have exactly one; books split across per-track mp3
// files have one per track, ordered by filename.
type AudioFileInfo struct {
	ID       string `json:"id"`
	Path     string `json:"path"`
	Filename string `json:"filename"`
	Format   string `json:"format"`
	Codec    string `json:"codec,omitempty"`
	Size     int64  `json:"size"`
	Duration int64  `json:"duration"`
	Bitrate  int    `json:"bitrate,omitempty"`
	Inode    uint64 `json:"inode"`
	ModTime  int64  `json:"mod_time"`
}

// ImageFileInfo represents an image file (cover art).
type ImageFileInfo struct {
	Path     string `json:"path"`
	Filename string `json:"filename"`
	Format   string `json:"format"`
	Size     int64  `json:"size"`
	Width    int    `json:"width,omitempty"`
	Height   int    `json:"height,omitempty"`
	Inode    uint64 `json:"inode"`
	ModTime  int64  `json:"mod_time"`
}

// Chapter represents a chapter marker within an audiobook.
//
// Invariant: within a single book, Index values form {0, 1, ..., n-1} with no
// gaps, StartTimeMs < EndTimeMs, and EndTimeMs[i] <= StartTimeMs[i+1].
type Chapter struct {
	ID          string `json:"id"`
	BookID      string `json:"book_id"`
	AudioFileID string `json:"audio_file_id"`
	Title       string `json:"title"`
	Index       int    `json:"index"`
	StartTimeMs int64  `json:"start_time_ms"`
	EndTimeMs   int64  `json:"end_time_ms"`
}

// ValidateChapters checks the contiguity and ordering invariant for a book's
// full chapter set. Chapters must already be sorted by Index.
func ValidateChapters(chapters []Chapter) error {
	for i, c := range chapters {
		if c.Index != i {
			return fmt.Errorf("chapter index gap: expected %d, got %d (title %q)", i, c.Index, c.Title)
		}
		if c.StartTimeMs >= c.EndTimeMs {
			return fmt.Errorf("chapter %d: start_time_ms %d must be < end_time_ms %d", i, c.StartTimeMs, c.EndTimeMs)
		}
		if i > 0 && chapters[i-1].EndTimeMs > c.StartTimeMs {
			return fmt.Errorf("chapter %d overlaps chapter %d", i, i-1)
		}
	}
	return nil
}

// Helper Methods.

// GetAudioFileByID finds an audio file by its ID.
func (b *Book) GetAudioFileByID(id string) *AudioFileInfo {
	for i := range b.AudioFiles {
		if b.AudioFiles[i].ID == id {
			return &b.AudioFiles[i]
		}
	}
	return nil
}

// GetAudioFileByInode finds an audio file by its inode.
// Used during rescans to match files after renames.
func (b *Book) GetAudioFileByInode(inode uint64) *AudioFileInfo {
	for i := range b.AudioFiles {
		if b.AudioFiles[i].Inode == inode {
			return &b.AudioFiles[i]
		}
	}
	return nil
}

// UpdateAudioFile updates an existing audio file or adds it if not found.
// Returns true if this was an update (ie. file existed), false if it was added.
func (b *Book) UpdateAudioFile(file AudioFileInfo) bool {
	// try to find by inode first (which handles renames).
	for i := range b.AudioFiles {
		if b.AudioFiles[i].Inode == file.Inode {
			b.AudioFiles[i] = file
			return true
		}
	}

	// Not found, add it.
	b.AudioFiles = append(b.AudioFiles, file)
	return false
}

// RemoveAudioFileByInode removes an audio file by inode.
// Returns true if a file was removed.
func (b *Book) RemoveAudioFileByInode(inode uint64) bool {
	for i := range b.AudioFiles {
		if b.AudioFiles[i].Inode == inode {
			// remove from slice.
			b.AudioFiles = append(b.AudioFiles[:i], b.AudioFiles[i+1:]...)
			return true
		}
	}
	return false
}

// RecalculateTotals recalculates total duration and size from audio files.
// Per the chapter-table-authoritative decision, callers that have a non-empty
// Chapters slice should prefer DeriveDurationFromChapters instead.
func (b *Book) RecalculateTotals() {
	b.TotalDurationMs = 0
	b.FileSizeBytes = 0

	for _, af := range b.AudioFiles {
		b.TotalDurationMs += af.Duration
		b.FileSizeBytes += af.Size
	}
}

// DeriveDurationFromChapters sets TotalDurationMs from the latest chapter
// end time when chapters are present; without chapters it leaves
// TotalDurationMs unchanged. The chapter table is authoritative when a
// book's probed duration and its chapters disagree (spec open question).
func (b *Book) DeriveDurationFromChapters() {
	if len(b.Chapters) == 0 {
		return
	}
	max := int64(0)
	for _, c := range b.Chapters {
		if c.EndTimeMs > max {
			max = c.EndTimeMs
		}
	}
	b.TotalDurationMs = max
}

// GenerateAudioFileID creates a stable ID from an inode.
// Format: "af-{hex}" where hex is the inode in hexadecimal notation.
// This ensures the same file always gets the same ID, even after renames.
func GenerateAudioFileID(inode uint64) string {
	return fmt.Sprintf("af-%x", inode)
}
