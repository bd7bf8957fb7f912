package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/DrTomLLC/StoryStream/internal/domain"
)

// AppendChange appends a change record to the sync change log, assigning it
// a monotonically increasing id. The store's own mutating methods do not call
// it; callers (internal/changelog, and the importer after it writes a book)
// append records explicitly, in a write of their own.
func (s *Store) AppendChange(ctx context.Context, rec *domain.ChangeRecord) (int64, error) {
	res, err := s.db.ExecContext(ctx, `INSERT INTO sync_changelog
		(entity_kind, entity_id, op, timestamp_ms, device_id, synced, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		string(rec.EntityKind), rec.EntityID, string(rec.Op), rec.TimestampMs, rec.DeviceID,
		rec.Synced, payloadValue(rec.Payload),
	)
	if err != nil {
		return 0, fmt.Errorf("append change: %w", err)
	}
	return res.LastInsertId()
}

func payloadValue(p []byte) sql.NullString {
	if len(p) == 0 {
		return sql.NullString{}
	}
	return sql.NullString{String: string(p), Valid: true}
}

// ChangesSince returns every change record with id greater than afterID, in
// id order — the unit the sync engine's push/pull protocol exchanges.
func (s *Store) ChangesSince(ctx context.Context, afterID int64, limit int) ([]*domain.ChangeRecord, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, entity_kind, entity_id, op, timestamp_ms,
		device_id, synced, payload FROM sync_changelog WHERE id > ? ORDER BY id LIMIT ?`, afterID, limit)
	if err != nil {
		return nil, fmt.Errorf("query changes: %w", err)
	}
	defer rows.Close()

	var out []*domain.ChangeRecord
	for rows.Next() {
		rec, err := scanChangeRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func scanChangeRecord(row scannable) (*domain.ChangeRecord, error) {
	var rec domain.ChangeRecord
	var entityKind, op string
	var payload sql.NullString

	err := row.Scan(&rec.ID, &entityKind, &rec.EntityID, &op, &rec.TimestampMs,
		&rec.DeviceID, &rec.Synced, &payload)
	if err != nil {
		return nil, fmt.Errorf("scan change record: %w", err)
	}
	rec.EntityKind = domain.EntityKind(entityKind)
	rec.Op = domain.ChangeOp(op)
	if payload.Valid {
		rec.Payload = []byte(payload.String)
	}
	return &rec, nil
}

// MarkSynced flags every change record up to and including upToID as synced,
// called after a successful push to a peer.
func (s *Store) MarkSynced(ctx context.Context, upToID int64) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE sync_changelog SET synced = 1 WHERE id <= ?`, upToID)
	if err != nil {
		return fmt.Errorf("mark synced: %w", err)
	}
	return nil
}

// LatestChangeID returns the highest change record id, or 0 if the log is
// empty — the cursor a device starts its next push/pull from.
func (s *Store) LatestChangeID(ctx context.Context) (int64, error) {
	var id sql.NullInt64
	err := s.db.QueryRowContext(ctx, `SELECT MAX(id) FROM sync_changelog`).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("latest change id: %w", err)
	}
	return id.Int64, nil
}

// Unsynced returns every not-yet-acknowledged change record, in id order —
// the set internal/sync.Engine.CreateSyncRequest snapshots into a push.
func (s *Store) Unsynced(ctx context.Context) ([]*domain.ChangeRecord, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, entity_kind, entity_id, op, timestamp_ms,
		device_id, synced, payload FROM sync_changelog WHERE synced = 0 ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query unsynced changes: %w", err)
	}
	defer rows.Close()

	var out []*domain.ChangeRecord
	for rows.Next() {
		rec, err := scanChangeRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// GC deletes synced change records with id <= beforeID, returning the
// number of rows removed. Called periodically with beforeID set to the
// cursor as of tombstone_ttl ago (spec.md §9's open-question decision).
func (s *Store) GC(ctx context.Context, beforeID int64) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM sync_changelog WHERE synced = 1 AND id <= ?`, beforeID)
	if err != nil {
		return 0, fmt.Errorf("gc changelog: %w", err)
	}
	return res.RowsAffected()
}

// CursorBefore returns the highest change record id with timestamp_ms <=
// cutoffMs, or 0 if no record is that old.
func (s *Store) CursorBefore(ctx context.Context, cutoffMs int64) (int64, error) {
	var id sql.NullInt64
	err := s.db.QueryRowContext(ctx,
		`SELECT MAX(id) FROM sync_changelog WHERE timestamp_ms <= ?`, cutoffMs).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("cursor before: %w", err)
	}
	return id.Int64, nil
}
