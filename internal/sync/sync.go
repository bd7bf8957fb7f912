// Package sync implements C7 from spec.md §4.7: record local mutations,
// snapshot them into a push/pull Request, and integrate a peer's Response
// with causal conflict detection and one of four configurable resolution
// strategies. It never opens a socket itself — transport is external, per
// spec.md §1's non-goals — callers marshal Request/Response across
// whatever channel they choose (HTTP, a paired local-network peer, a sneaker-
// netted file) and hand the bytes to this package.
package sync

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/DrTomLLC/StoryStream/internal/changelog"
	"github.com/DrTomLLC/StoryStream/internal/domain"
	"github.com/DrTomLLC/StoryStream/internal/store"
)

// Engine is one device's half of the sync protocol.
type Engine struct {
	deviceID string
	strategy Strategy
	log      *changelog.Log
	store    store.Store
	logger   *slog.Logger

	mu           sync.Mutex
	remoteCursor int64 // highest integrated remote change id, this peer
}

// New constructs an Engine. deviceID identifies this replica in ChangeRecord
// provenance; strategy is the configured conflict resolution policy
// (sync.conflict_resolution).
func New(deviceID string, strategy Strategy, log *changelog.Log, st store.Store, logger *slog.Logger) *Engine {
	return &Engine{
		deviceID: deviceID,
		strategy: strategy,
		log:      log,
		store:    st,
		logger:   logger,
	}
}

// RecordChange appends a local mutation to C8. Callers append before
// applying the mutation itself, per spec.md §4.7's commit order: "ChangeRecord
// durable, then mutation applied, then mutation's sync-cursor updated."
func (e *Engine) RecordChange(ctx context.Context, kind domain.EntityKind, op domain.ChangeOp, entityID string, payload json.RawMessage) (*domain.ChangeRecord, error) {
	rec := &domain.ChangeRecord{
		EntityKind:  kind,
		EntityID:    entityID,
		Op:          op,
		TimestampMs: time.Now().UnixMilli(),
		DeviceID:    e.deviceID,
		Payload:     payload,
	}
	id, err := e.log.Append(ctx, rec)
	if err != nil {
		return nil, fmt.Errorf("sync: record change: %w", err)
	}
	rec.ID = id
	return rec, nil
}

// CreateSyncRequest snapshots every unsynced local change into a Request
// ready to send to a peer.
func (e *Engine) CreateSyncRequest(ctx context.Context) (*Request, error) {
	changes, err := e.log.Unsynced(ctx)
	if err != nil {
		return nil, fmt.Errorf("sync: create request: %w", err)
	}
	e.mu.Lock()
	cursor := e.remoteCursor
	e.mu.Unlock()
	return &Request{
		DeviceID:    e.deviceID,
		SinceCursor: cursor,
		Changes:     changes,
	}, nil
}

// ApplyResponse integrates a peer's Response: resolves conflicts between the
// peer's changes and this device's own unsynced changes, applies the
// surviving mutation to the local catalog, advances the remote cursor, and
// marks local changes synced up to what the peer acknowledged.
func (e *Engine) ApplyResponse(ctx context.Context, resp *Response) error {
	local, err := e.log.Unsynced(ctx)
	if err != nil {
		return fmt.Errorf("sync: apply response: load local unsynced: %w", err)
	}
	localByEntity := make(map[string]*domain.ChangeRecord, len(local))
	for _, rec := range local {
		localByEntity[entityKey(rec)] = rec
	}

	for _, remote := range resp.RemoteChanges {
		winner := remote
		if localRec, conflicted := localByEntity[entityKey(remote)]; conflicted && localRec.ConflictsWith(*remote) {
			winner = resolve(e.strategy, localRec, remote)
			if winner == localRec {
				// Local change won outright (not a merge): the catalog
				// already reflects it, nothing to integrate.
				continue
			}
		}
		if err := apply(ctx, e.store, winner); err != nil {
			if e.logger != nil {
				e.logger.Warn("sync: failed to apply remote change, skipping",
					"entity_kind", winner.EntityKind, "entity_id", winner.EntityID, "err", err)
			}
			continue
		}
	}

	e.mu.Lock()
	if resp.NewCursor > e.remoteCursor {
		e.remoteCursor = resp.NewCursor
	}
	e.mu.Unlock()

	if len(local) > 0 {
		upTo := local[len(local)-1].ID
		if err := e.log.MarkSynced(ctx, upTo); err != nil {
			return fmt.Errorf("sync: apply response: mark synced: %w", err)
		}
	}
	return nil
}

func entityKey(rec *domain.ChangeRecord) string {
	return string(rec.EntityKind) + ":" + rec.EntityID
}
