// Package store defines the persistence interface for the StoryStream
// catalog: the five logical tables from spec.md §6 (books, chapters,
// bookmarks, playback_state, playlists) plus the sync change log.
package store

import (
	"context"

	"github.com/DrTomLLC/StoryStream/internal/domain"
)

// BookStore persists Book rows and their owned Chapters/AudioFiles.
type BookStore interface {
	CreateBook(ctx context.Context, book *domain.Book) error
	GetBook(ctx context.Context, id string) (*domain.Book, error)
	GetBookByPath(ctx context.Context, path string) (*domain.Book, error)
	UpdateBook(ctx context.Context, book *domain.Book) error
	DeleteBook(ctx context.Context, id string) error // soft delete
	ListBooks(ctx context.Context, params PaginationParams) (*PaginatedResult[*domain.Book], error)
	ListAllBooks(ctx context.Context) ([]*domain.Book, error)
	BooksUpdatedSince(ctx context.Context, sinceMs int64) ([]*domain.Book, error)
	SearchBooksByTitle(ctx context.Context, title string) ([]*domain.Book, error)
	BookExists(ctx context.Context, id string) (bool, error)
	CountBooks(ctx context.Context) (int, error)
}

// BookmarkStore persists Bookmarks, lifetime-coupled to their book.
type BookmarkStore interface {
	CreateBookmark(ctx context.Context, bookmark *domain.Bookmark) error
	GetBookmark(ctx context.Context, id string) (*domain.Bookmark, error)
	UpdateBookmark(ctx context.Context, bookmark *domain.Bookmark) error
	DeleteBookmark(ctx context.Context, id string) error
	ListBookmarksForBook(ctx context.Context, bookID string) ([]*domain.Bookmark, error)
}

// PlaybackStateStore persists the single PlaybackState row per book.
type PlaybackStateStore interface {
	GetPlaybackState(ctx context.Context, bookID string) (*domain.PlaybackState, error)
	UpsertPlaybackState(ctx context.Context, state *domain.PlaybackState) error
	DeletePlaybackState(ctx context.Context, bookID string) error
	RecentlyPlayed(ctx context.Context, limit int) ([]*domain.PlaybackState, error)
}

// PlaylistStore persists Playlists (including Smart Playlists, whose
// Criteria is stored and returned opaquely).
type PlaylistStore interface {
	CreatePlaylist(ctx context.Context, playlist *domain.Playlist) error
	GetPlaylist(ctx context.Context, id string) (*domain.Playlist, error)
	UpdatePlaylist(ctx context.Context, playlist *domain.Playlist) error
	DeletePlaylist(ctx context.Context, id string) error
	ListPlaylists(ctx context.Context) ([]*domain.Playlist, error)
}

// ChangelogStore persists the append-only sync change log (spec.md §4.7/§4.8).
type ChangelogStore interface {
	AppendChange(ctx context.Context, rec *domain.ChangeRecord) (int64, error)
	ChangesSince(ctx context.Context, afterID int64, limit int) ([]*domain.ChangeRecord, error)
	MarkSynced(ctx context.Context, upToID int64) error
	LatestChangeID(ctx context.Context) (int64, error)
	// Unsynced returns every change record not yet acknowledged by a peer,
	// in id order — the set a sync request snapshots.
	Unsynced(ctx context.Context) ([]*domain.ChangeRecord, error)
	// GC permanently removes synced records with id <= beforeID, once their
	// tombstone retention window has elapsed (spec.md §9).
	GC(ctx context.Context, beforeID int64) (int64, error)
	// CursorBefore returns the highest change record id whose TimestampMs is
	// <= cutoffMs, or 0 if none qualify — how a retention duration (e.g.
	// "30 days") is turned into the id cursor GC expects.
	CursorBefore(ctx context.Context, cutoffMs int64) (int64, error)
}

// Store is the full catalog persistence surface.
type Store interface {
	BookStore
	BookmarkStore
	PlaybackStateStore
	PlaylistStore
	ChangelogStore

	Close() error
	SetSearchIndexer(indexer SearchIndexer)
	SetBulkMode(enabled bool)
	IsBulkMode() bool
}

// SearchIndexer keeps the bleve full-text index in sync with catalog
// writes. The store calls it after every committed book mutation; it is set
// post-construction via SetSearchIndexer to avoid a store<->search import
// cycle (search reads through the store, the store notifies search).
type SearchIndexer interface {
	IndexBook(ctx context.Context, book *domain.Book) error
	DeleteBook(ctx context.Context, bookID string) error
}

// NoopSearchIndexer discards every notification; used before a real indexer
// is wired and in tests that don't care about search.
type NoopSearchIndexer struct{}

func (NoopSearchIndexer) IndexBook(context.Context, *domain.Book) error { return nil }
func (NoopSearchIndexer) DeleteBook(context.Context, string) error      { return nil }

// NewNoopSearchIndexer returns a SearchIndexer that does nothing.
func NewNoopSearchIndexer() SearchIndexer { return NoopSearchIndexer{} }
