package domain

import (
	"time"

	"github.com/DrTomLLC/StoryStream/internal/errors"
)

// Bookmark marks a point of interest within a book, distinct from the book's
// ongoing PlaybackState position.
//
// Invariant: 0 <= PositionMs <= book.TotalDurationMs.
type Bookmark struct {
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	ID         string    `json:"id"`
	BookID     string    `json:"book_id"`
	Title      string    `json:"title,omitempty"`
	Note       string    `json:"note,omitempty"`
	PositionMs int64     `json:"position_ms"`
}

// NewBookmark creates a bookmark with timestamps initialized to now.
func NewBookmark(id, bookID string, positionMs int64) *Bookmark {
	now := time.Now()
	return &Bookmark{
		ID:         id,
		BookID:     bookID,
		PositionMs: positionMs,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Validate checks the position invariant against a book's known duration.
// durationMs <= 0 (duration not yet known) skips the upper-bound check.
func (b *Bookmark) Validate(durationMs int64) error {
	if b.PositionMs < 0 {
		return errors.Validation("bookmark position_ms cannot be negative")
	}
	if durationMs > 0 && b.PositionMs > durationMs {
		return errors.ValidationWithDetails("bookmark position_ms exceeds book duration", map[string]any{
			"position_ms": b.PositionMs,
			"duration_ms": durationMs,
		})
	}
	return nil
}
