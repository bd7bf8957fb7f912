package domain

import (
	"encoding/json"
	"slices"
)

// Playlist is a user-curated, ordered list of book ids. A Smart Playlist
// stores its selection rule as opaque JSON in Criteria: the core never
// parses it (spec open question — criteria schema is undocumented and
// unused by the engines themselves, so it is carried as raw bytes for
// whatever front end defines the rule language).
type Playlist struct {
	Syncable
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	BookIDs     []string        `json:"book_ids"`
	Criteria    json.RawMessage `json:"criteria,omitempty"`
	Smart       bool            `json:"smart"`
}

// AddBook appends a book id if not already present. Returns false if it was
// already there.
func (p *Playlist) AddBook(bookID string) bool {
	if slices.Contains(p.BookIDs, bookID) {
		return false
	}
	p.BookIDs = append(p.BookIDs, bookID)
	p.Touch()
	return true
}

// RemoveBook removes a book id. Returns false if it wasn't present.
func (p *Playlist) RemoveBook(bookID string) bool {
	for i, id := range p.BookIDs {
		if id == bookID {
			p.BookIDs = append(p.BookIDs[:i], p.BookIDs[i+1:]...)
			p.Touch()
			return true
		}
	}
	return false
}

// ContainsBook reports whether a book id is a member of this playlist.
func (p *Playlist) ContainsBook(bookID string) bool {
	return slices.Contains(p.BookIDs, bookID)
}
