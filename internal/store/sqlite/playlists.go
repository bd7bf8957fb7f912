package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/DrTomLLC/StoryStream/internal/domain"
	"github.com/DrTomLLC/StoryStream/internal/store"
)

// CreatePlaylist inserts a new playlist.
func (s *Store) CreatePlaylist(ctx context.Context, p *domain.Playlist) error {
	bookIDsJSON, err := json.Marshal(p.BookIDs)
	if err != nil {
		return fmt.Errorf("marshal book_ids: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `INSERT INTO playlists
		(id, created_at, updated_at, deleted_at, name, description, book_ids, criteria, smart)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, formatTime(p.CreatedAt), formatTime(p.UpdatedAt), nullTimeString(p.DeletedAt),
		p.Name, nullString(p.Description), string(bookIDsJSON), criteriaValue(p.Criteria), p.Smart,
	)
	if err != nil {
		if isUniqueConstraintErr(err) {
			return store.ErrPlaylistExists
		}
		return fmt.Errorf("insert playlist: %w", err)
	}
	return nil
}

func criteriaValue(c json.RawMessage) sql.NullString {
	if len(c) == 0 {
		return sql.NullString{}
	}
	return sql.NullString{String: string(c), Valid: true}
}

// GetPlaylist fetches a playlist by id.
func (s *Store) GetPlaylist(ctx context.Context, id string) (*domain.Playlist, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, created_at, updated_at, deleted_at,
		name, description, book_ids, criteria, smart FROM playlists WHERE id = ? AND deleted_at IS NULL`, id)
	return scanPlaylist(row)
}

func scanPlaylist(row scannable) (*domain.Playlist, error) {
	var p domain.Playlist
	var createdAt, updatedAt string
	var deletedAt, description, criteria sql.NullString
	var bookIDsJSON string

	err := row.Scan(&p.ID, &createdAt, &updatedAt, &deletedAt, &p.Name, &description,
		&bookIDsJSON, &criteria, &p.Smart)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrPlaylistNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan playlist: %w", err)
	}

	if p.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if p.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}
	if p.DeletedAt, err = parseNullableTime(deletedAt); err != nil {
		return nil, fmt.Errorf("parse deleted_at: %w", err)
	}
	p.Description = description.String
	if criteria.Valid {
		p.Criteria = json.RawMessage(criteria.String)
	}
	if err := json.Unmarshal([]byte(bookIDsJSON), &p.BookIDs); err != nil {
		return nil, fmt.Errorf("unmarshal book_ids: %w", err)
	}
	return &p, nil
}

// UpdatePlaylist overwrites an existing playlist.
func (s *Store) UpdatePlaylist(ctx context.Context, p *domain.Playlist) error {
	bookIDsJSON, err := json.Marshal(p.BookIDs)
	if err != nil {
		return fmt.Errorf("marshal book_ids: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `UPDATE playlists SET
		updated_at = ?, deleted_at = ?, name = ?, description = ?, book_ids = ?, criteria = ?, smart = ?
		WHERE id = ?`,
		formatTime(time.Now()), nullTimeString(p.DeletedAt), p.Name, nullString(p.Description),
		string(bookIDsJSON), criteriaValue(p.Criteria), p.Smart, p.ID,
	)
	if err != nil {
		return fmt.Errorf("update playlist: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrPlaylistNotFound
	}
	return nil
}

// DeletePlaylist soft-deletes a playlist, leaving a tombstone for sync.
func (s *Store) DeletePlaylist(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE playlists SET deleted_at = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL`,
		formatTime(time.Now()), formatTime(time.Now()), id)
	if err != nil {
		return fmt.Errorf("delete playlist: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrPlaylistNotFound
	}
	return nil
}

// ListPlaylists returns every non-deleted playlist, ordered by name.
func (s *Store) ListPlaylists(ctx context.Context) ([]*domain.Playlist, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, created_at, updated_at, deleted_at,
		name, description, book_ids, criteria, smart FROM playlists
		WHERE deleted_at IS NULL ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("query playlists: %w", err)
	}
	defer rows.Close()

	var out []*domain.Playlist
	for rows.Next() {
		p, err := scanPlaylist(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
