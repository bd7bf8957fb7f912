// Package resume implements the download-progress checkpoint store
// described in spec.md §4.6: a durable, per-URL keyed record of how many
// bytes of a download have landed on disk, so a restarted download resumes
// with an HTTP Range request instead of starting over.
//
// It is grounded on the teacher's Badger-backed internal/store.Store: the
// same dgraph-io/badger/v4 open options, the same generic marshal/unmarshal
// get/set/delete helpers, and the same pooled key-building helpers, all
// specialized down from a multi-entity catalog store to a single-purpose
// checkpoint store with per-URL write serialization.
package resume

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/dgraph-io/badger/v4"

	"github.com/DrTomLLC/StoryStream/internal/domain"
)

const recordPrefix = "resume:"

// Store is a durable, crash-safe checkpoint store for in-progress downloads.
type Store struct {
	db     *badger.DB
	logger *slog.Logger

	records *entity[domain.ResumeRecord]

	// urlLocks serializes concurrent writers against the same URL: a
	// resuming downloader and a cancellation racing to write the final
	// checkpoint for the same source must not interleave.
	urlLocksMu sync.Mutex
	urlLocks   map[string]*sync.Mutex
}

// Open opens (creating if absent) a Badger checkpoint database at path.
func Open(path string, logger *slog.Logger) (*Store, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil
	opts.SyncWrites = true
	opts.CompactL0OnClose = true

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("resume: open badger db: %w", err)
	}

	s := &Store{
		db:       db,
		logger:   logger,
		urlLocks: make(map[string]*sync.Mutex),
	}
	s.records = newEntity[domain.ResumeRecord](db, recordPrefix)

	if logger != nil {
		logger.Info("resume checkpoint store opened", "path", path)
	}
	return s, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	if s.logger != nil {
		s.logger.Info("resume checkpoint store closing")
	}
	return s.db.Close()
}

func (s *Store) lockFor(url string) *sync.Mutex {
	s.urlLocksMu.Lock()
	defer s.urlLocksMu.Unlock()
	l, ok := s.urlLocks[url]
	if !ok {
		l = &sync.Mutex{}
		s.urlLocks[url] = l
	}
	return l
}

// Get returns the checkpoint for url, or ErrNotFound if no download has
// started for it yet.
func (s *Store) Get(ctx context.Context, url string) (*domain.ResumeRecord, error) {
	return s.records.Get(ctx, url)
}

// Put durably writes rec as the checkpoint for its URL, serialized against
// any other writer for the same URL.
func (s *Store) Put(ctx context.Context, rec *domain.ResumeRecord) error {
	lock := s.lockFor(rec.URL)
	lock.Lock()
	defer lock.Unlock()
	return s.records.Put(ctx, rec.URL, rec)
}

// Clear removes the checkpoint for url, called once a download completes or
// is abandoned and its partial file deleted.
func (s *Store) Clear(ctx context.Context, url string) error {
	lock := s.lockFor(url)
	lock.Lock()
	defer lock.Unlock()
	err := s.records.Delete(ctx, url)

	s.urlLocksMu.Lock()
	delete(s.urlLocks, url)
	s.urlLocksMu.Unlock()

	return err
}

// All invokes yield for every outstanding checkpoint, used at startup to
// decide which interrupted downloads are resumable.
func (s *Store) All(ctx context.Context, yield func(rec *domain.ResumeRecord) bool) error {
	return s.records.All(ctx, func(_ string, rec *domain.ResumeRecord) bool {
		return yield(rec)
	})
}
