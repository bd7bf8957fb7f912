// Package changelog implements C8 from spec.md §4.8: the append-only,
// strictly ordered stream of ChangeRecords that drives C7's sync protocol.
// The durable storage and ordering guarantee already live in
// internal/store's sqlite-backed sync_changelog table; this package adds
// the policy layer spec.md asks for on top of it — the unsynced() query C7
// snapshots into a push, and time-based tombstone GC.
package changelog

import (
	"context"
	"fmt"
	"time"

	"github.com/DrTomLLC/StoryStream/internal/domain"
	"github.com/DrTomLLC/StoryStream/internal/store"
)

// Log is a thin, named view over store.ChangelogStore so callers depend on
// a narrow interface rather than the full catalog Store.
type Log struct {
	store store.ChangelogStore
}

// New wraps an existing ChangelogStore (normally the catalog's sqlite.Store).
func New(s store.ChangelogStore) *Log {
	return &Log{store: s}
}

// Append durably records a local mutation. Callers append before applying
// the mutation itself, per spec.md §4.7's "ChangeRecord durable, then
// mutation applied" commit order.
func (l *Log) Append(ctx context.Context, rec *domain.ChangeRecord) (int64, error) {
	id, err := l.store.AppendChange(ctx, rec)
	if err != nil {
		return 0, fmt.Errorf("changelog: append: %w", err)
	}
	return id, nil
}

// Unsynced returns every change not yet acknowledged by a peer, in id
// order.
func (l *Log) Unsynced(ctx context.Context) ([]*domain.ChangeRecord, error) {
	recs, err := l.store.Unsynced(ctx)
	if err != nil {
		return nil, fmt.Errorf("changelog: unsynced: %w", err)
	}
	return recs, nil
}

// MarkSynced flags every record up to and including upToID as acknowledged.
func (l *Log) MarkSynced(ctx context.Context, upToID int64) error {
	if err := l.store.MarkSynced(ctx, upToID); err != nil {
		return fmt.Errorf("changelog: mark synced: %w", err)
	}
	return nil
}

// LatestID returns the highest assigned change id, 0 if the log is empty.
func (l *Log) LatestID(ctx context.Context) (int64, error) {
	return l.store.LatestChangeID(ctx)
}

// GC deletes synced records older than retain, returning how many rows were
// removed. Spec.md §9's open question defaults retain to 30 days
// (config.SyncConfig.TombstoneTTL); a record is only ever eligible once it
// has been synced, so an unreachable peer can't have its pending changes
// collected out from under it.
func (l *Log) GC(ctx context.Context, retain time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retain).UnixMilli()
	cursor, err := l.store.CursorBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("changelog: gc cursor: %w", err)
	}
	if cursor == 0 {
		return 0, nil
	}
	n, err := l.store.GC(ctx, cursor)
	if err != nil {
		return 0, fmt.Errorf("changelog: gc: %w", err)
	}
	return n, nil
}
