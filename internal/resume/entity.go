package resume

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

// ErrNotFound is returned when a key has no record.
var ErrNotFound = errors.New("resume: not found")

// entity provides generic keyed CRUD over a single Badger key prefix. It is
// the download-progress-checkpoint specialization of the catalog store's
// generic entity pattern, trimmed to what a single-key-per-record store
// needs: no secondary indexes, and Put is an upsert rather than a strict
// create-or-update pair, since a checkpoint is written on every chunk flush
// and callers should never have to check existence first.
type entity[T any] struct {
	db     *badger.DB
	prefix string
}

func newEntity[T any](db *badger.DB, prefix string) *entity[T] {
	return &entity[T]{db: db, prefix: prefix}
}

func (e *entity[T]) key(id string) []byte {
	buf := buildKey(e.prefix, id)
	out := make([]byte, len(buf))
	copy(out, buf)
	releaseKey(buf)
	return out
}

// Get retrieves a record by id. Returns ErrNotFound if absent.
func (e *entity[T]) Get(ctx context.Context, id string) (*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var out T
	err := e.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(e.key(id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("get %s: %w", id, err)
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &out)
		})
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Put upserts a record by id.
func (e *entity[T]) Put(ctx context.Context, id string, v *T) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", id, err)
	}

	return e.db.Update(func(txn *badger.Txn) error {
		return txn.Set(e.key(id), data)
	})
}

// Delete removes a record by id. Idempotent: no error if absent.
func (e *entity[T]) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return e.db.Update(func(txn *badger.Txn) error {
		err := txn.Delete(e.key(id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		return err
	})
}

// All iterates every record under the prefix, in key order.
func (e *entity[T]) All(ctx context.Context, yield func(id string, v *T) bool) error {
	prefix := []byte(e.prefix)
	return e.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchValues = true

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}

			id := string(it.Item().Key()[len(prefix):])
			var v T
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &v)
			}); err != nil {
				return err
			}
			if !yield(id, &v) {
				return nil
			}
		}
		return nil
	})
}
