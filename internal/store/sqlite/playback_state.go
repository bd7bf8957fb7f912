package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/DrTomLLC/StoryStream/internal/domain"
	"github.com/DrTomLLC/StoryStream/internal/store"
)

// GetPlaybackState fetches the single playback-state row for a book.
func (s *Store) GetPlaybackState(ctx context.Context, bookID string) (*domain.PlaybackState, error) {
	row := s.db.QueryRowContext(ctx, `SELECT book_id, position_ms, speed, pitch_correction, volume,
		playing, eq_preset, sleep_timer_ends_at, sleep_timer_fade_out_ms, sleep_timer_end_of_chapter,
		skip_silence, volume_boost, updated_at
		FROM playback_state WHERE book_id = ?`, bookID)
	return scanPlaybackState(row)
}

func scanPlaybackState(row scannable) (*domain.PlaybackState, error) {
	var st domain.PlaybackState
	var eqPreset, sleepEndsAt sql.NullString
	var fadeOutMs sql.NullInt64
	var endOfChapter sql.NullBool
	var updatedAt string

	err := row.Scan(&st.BookID, &st.PositionMs, &st.Speed, &st.PitchCorrection, &st.Volume,
		&st.Playing, &eqPreset, &sleepEndsAt, &fadeOutMs, &endOfChapter,
		&st.SkipSilence, &st.VolumeBoost, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrPlaybackStateNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan playback state: %w", err)
	}

	st.EQPreset = eqPreset.String
	if st.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}

	if sleepEndsAt.Valid {
		endsAt, err := parseTime(sleepEndsAt.String)
		if err != nil {
			return nil, fmt.Errorf("parse sleep_timer_ends_at: %w", err)
		}
		st.SleepTimer = &domain.SleepTimer{
			EndsAt:       endsAt,
			FadeOutMs:    fadeOutMs.Int64,
			EndOfChapter: endOfChapter.Bool,
		}
	}

	return &st, nil
}

// UpsertPlaybackState creates or overwrites the playback-state row for a
// book.
func (s *Store) UpsertPlaybackState(ctx context.Context, st *domain.PlaybackState) error {
	var sleepEndsAt sql.NullString
	var fadeOutMs sql.NullInt64
	var endOfChapter sql.NullBool
	if st.SleepTimer != nil {
		sleepEndsAt = nullString(formatTime(st.SleepTimer.EndsAt))
		fadeOutMs = nullInt64(st.SleepTimer.FadeOutMs)
		endOfChapter = sql.NullBool{Bool: st.SleepTimer.EndOfChapter, Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `INSERT INTO playback_state
		(book_id, position_ms, speed, pitch_correction, volume, playing, eq_preset,
		 sleep_timer_ends_at, sleep_timer_fade_out_ms, sleep_timer_end_of_chapter,
		 skip_silence, volume_boost, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(book_id) DO UPDATE SET
			position_ms = excluded.position_ms,
			speed = excluded.speed,
			pitch_correction = excluded.pitch_correction,
			volume = excluded.volume,
			playing = excluded.playing,
			eq_preset = excluded.eq_preset,
			sleep_timer_ends_at = excluded.sleep_timer_ends_at,
			sleep_timer_fade_out_ms = excluded.sleep_timer_fade_out_ms,
			sleep_timer_end_of_chapter = excluded.sleep_timer_end_of_chapter,
			skip_silence = excluded.skip_silence,
			volume_boost = excluded.volume_boost,
			updated_at = excluded.updated_at`,
		st.BookID, st.PositionMs, st.Speed, st.PitchCorrection, st.Volume, st.Playing,
		nullString(st.EQPreset), sleepEndsAt, fadeOutMs, endOfChapter,
		st.SkipSilence, st.VolumeBoost, formatTime(st.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("upsert playback state: %w", err)
	}
	return nil
}

// DeletePlaybackState removes the playback-state row for a book without
// touching the book. A hard delete of the book row removes it too, through
// the foreign key's ON DELETE CASCADE.
func (s *Store) DeletePlaybackState(ctx context.Context, bookID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM playback_state WHERE book_id = ?`, bookID)
	if err != nil {
		return fmt.Errorf("delete playback state: %w", err)
	}
	return nil
}

// RecentlyPlayed returns the most recently updated playback-state rows,
// newest first, for a "continue listening" surface.
func (s *Store) RecentlyPlayed(ctx context.Context, limit int) ([]*domain.PlaybackState, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT book_id, position_ms, speed, pitch_correction, volume,
		playing, eq_preset, sleep_timer_ends_at, sleep_timer_fade_out_ms, sleep_timer_end_of_chapter,
		skip_silence, volume_boost, updated_at
		FROM playback_state ORDER BY updated_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query recently played: %w", err)
	}
	defer rows.Close()

	var out []*domain.PlaybackState
	for rows.Next() {
		st, err := scanPlaybackState(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, rows.Err()
}
