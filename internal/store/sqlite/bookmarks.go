package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/DrTomLLC/StoryStream/internal/domain"
	"github.com/DrTomLLC/StoryStream/internal/store"
)

// CreateBookmark inserts a new bookmark.
func (s *Store) CreateBookmark(ctx context.Context, b *domain.Bookmark) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO bookmarks
		(id, book_id, title, note, position_ms, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.BookID, nullString(b.Title), nullString(b.Note), b.PositionMs,
		formatTime(b.CreatedAt), formatTime(b.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert bookmark: %w", err)
	}
	return nil
}

// GetBookmark fetches a bookmark by id.
func (s *Store) GetBookmark(ctx context.Context, id string) (*domain.Bookmark, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, book_id, title, note, position_ms, created_at, updated_at
		FROM bookmarks WHERE id = ?`, id)
	return scanBookmark(row)
}

func scanBookmark(row scannable) (*domain.Bookmark, error) {
	var b domain.Bookmark
	var title, note sql.NullString
	var createdAt, updatedAt string

	err := row.Scan(&b.ID, &b.BookID, &title, &note, &b.PositionMs, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrBookmarkNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan bookmark: %w", err)
	}

	b.Title, b.Note = title.String, note.String
	if b.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if b.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}
	return &b, nil
}

// UpdateBookmark overwrites the title/note/position of an existing bookmark.
func (s *Store) UpdateBookmark(ctx context.Context, b *domain.Bookmark) error {
	res, err := s.db.ExecContext(ctx, `UPDATE bookmarks SET
		title = ?, note = ?, position_ms = ?, updated_at = ? WHERE id = ?`,
		nullString(b.Title), nullString(b.Note), b.PositionMs, formatTime(b.UpdatedAt), b.ID,
	)
	if err != nil {
		return fmt.Errorf("update bookmark: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrBookmarkNotFound
	}
	return nil
}

// DeleteBookmark removes a bookmark. Bookmarks have no tombstone: a bookmark
// that is gone on one device simply stops being synced, it never needs to be
// re-expressed as a deletion marker to other devices (spec.md §4.7 only
// requires Book/Chapter/Playlist/PlaybackState tombstones).
func (s *Store) DeleteBookmark(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM bookmarks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete bookmark: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrBookmarkNotFound
	}
	return nil
}

// ListBookmarksForBook returns every bookmark for a book, ordered by
// position.
func (s *Store) ListBookmarksForBook(ctx context.Context, bookID string) ([]*domain.Bookmark, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, book_id, title, note, position_ms, created_at, updated_at
		FROM bookmarks WHERE book_id = ? ORDER BY position_ms`, bookID)
	if err != nil {
		return nil, fmt.Errorf("query bookmarks: %w", err)
	}
	defer rows.Close()

	var out []*domain.Bookmark
	for rows.Next() {
		b, err := scanBookmark(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
