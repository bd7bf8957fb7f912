// Package search provides fuzzy, typo-tolerant full-text search over the
// catalog using Bleve, as a complement to SQLite FTS5's exact-match queries.
// It implements store.SearchIndexer so the sqlite store can keep it current
// as books are created, updated, and removed.
package search

import (
	"github.com/DrTomLLC/StoryStream/internal/domain"
)

// bookDocument is the Bleve document shape for an indexed book. Fields are
// denormalized and flattened so a single query can match on any of them.
type bookDocument struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Subtitle    string   `json:"subtitle,omitempty"`
	Author      string   `json:"author,omitempty"`
	Narrator    string   `json:"narrator,omitempty"`
	SeriesID    string   `json:"series_id,omitempty"`
	SeriesName  string   `json:"series_name,omitempty"`
	Description string   `json:"description,omitempty"`
	Publisher   string   `json:"publisher,omitempty"`
	Language    string   `json:"language,omitempty"`
	Genres      []string `json:"genres,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	DurationMs  int64    `json:"duration_ms,omitempty"`
	Favorite    bool     `json:"favorite"`
	CreatedAt   int64    `json:"created_at"`
	UpdatedAt   int64    `json:"updated_at"`
}

// toMap converts the document to a map keyed by its lowercase mapping field
// names, matching buildIndexMapping rather than relying on Bleve's own
// struct-field reflection.
func (d *bookDocument) toMap() map[string]any {
	m := map[string]any{
		"id":         d.ID,
		"title":      d.Title,
		"favorite":   d.Favorite,
		"created_at": d.CreatedAt,
		"updated_at": d.UpdatedAt,
	}
	if d.Subtitle != "" {
		m["subtitle"] = d.Subtitle
	}
	if d.Author != "" {
		m["author"] = d.Author
	}
	if d.Narrator != "" {
		m["narrator"] = d.Narrator
	}
	if d.SeriesID != "" {
		m["series_id"] = d.SeriesID
	}
	if d.SeriesName != "" {
		m["series_name"] = d.SeriesName
	}
	if d.Description != "" {
		m["description"] = d.Description
	}
	if d.Publisher != "" {
		m["publisher"] = d.Publisher
	}
	if d.Language != "" {
		m["language"] = d.Language
	}
	if len(d.Genres) > 0 {
		m["genres"] = d.Genres
	}
	if len(d.Tags) > 0 {
		m["tags"] = d.Tags
	}
	if d.DurationMs > 0 {
		m["duration_ms"] = d.DurationMs
	}
	return m
}

// bookToDocument flattens a domain.Book into the denormalized index shape.
func bookToDocument(book *domain.Book) *bookDocument {
	return &bookDocument{
		ID:          book.ID,
		Title:       book.Title,
		Subtitle:    book.Subtitle,
		Author:      book.Author,
		Narrator:    book.Narrator,
		SeriesID:    book.SeriesID,
		SeriesName:  book.SeriesName,
		Description: book.Description,
		Publisher:   book.Publisher,
		Language:    book.Language,
		Genres:      book.Genres,
		Tags:        book.Tags,
		DurationMs:  book.TotalDurationMs,
		Favorite:    book.Favorite,
		CreatedAt:   book.CreatedAt.UnixMilli(),
		UpdatedAt:   book.UpdatedAt.UnixMilli(),
	}
}
