package search

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/blevesearch/bleve/v2"

	"github.com/DrTomLLC/StoryStream/internal/domain"
)

// Index wraps a Bleve index over the book catalog. It satisfies
// store.SearchIndexer so the sqlite store can notify it on every committed
// book mutation.
type Index struct {
	index  bleve.Index
	path   string
	logger *slog.Logger
	mu     sync.RWMutex
}

// Options configures a new Index.
type Options struct {
	DataPath string
	Logger   *slog.Logger
}

// Open opens the index at DataPath/search.bleve, creating it if absent and
// recreating it if corrupted.
func Open(opts Options) (*Index, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}

	indexPath := filepath.Join(opts.DataPath, "search.bleve")

	var idx bleve.Index
	var err error
	if _, statErr := os.Stat(indexPath); statErr == nil {
		idx, err = bleve.Open(indexPath)
		if err != nil {
			logger.Warn("search: existing index unreadable, recreating", "path", indexPath, "error", err)
			if rmErr := os.RemoveAll(indexPath); rmErr != nil {
				return nil, fmt.Errorf("remove corrupted index: %w", rmErr)
			}
		}
	}

	if idx == nil {
		idx, err = bleve.New(indexPath, buildIndexMapping())
		if err != nil {
			return nil, fmt.Errorf("create index: %w", err)
		}
		logger.Info("search: created index", "path", indexPath)
	} else {
		logger.Info("search: opened index", "path", indexPath)
	}

	return &Index{index: idx, path: indexPath, logger: logger}, nil
}

// Close releases the underlying index files.
func (x *Index) Close() error {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.index.Close()
}

// IndexBook implements store.SearchIndexer.
func (x *Index) IndexBook(_ context.Context, book *domain.Book) error {
	x.mu.RLock()
	defer x.mu.RUnlock()
	doc := bookToDocument(book)
	return x.index.Index(doc.ID, doc.toMap())
}

// DeleteBook implements store.SearchIndexer.
func (x *Index) DeleteBook(_ context.Context, bookID string) error {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.index.Delete(bookID)
}

// IndexBooks bulk-indexes a batch of books, chunked to bound memory during a
// full reindex.
func (x *Index) IndexBooks(books []*domain.Book) error {
	x.mu.RLock()
	defer x.mu.RUnlock()

	const batchSize = 500
	for i := 0; i < len(books); i += batchSize {
		end := min(i+batchSize, len(books))
		batch := x.index.NewBatch()
		for _, book := range books[i:end] {
			doc := bookToDocument(book)
			if err := batch.Index(doc.ID, doc.toMap()); err != nil {
				return fmt.Errorf("batch index %s: %w", doc.ID, err)
			}
		}
		if err := x.index.Batch(batch); err != nil {
			return fmt.Errorf("commit batch %d-%d: %w", i, end, err)
		}
	}
	return nil
}

// DocumentCount returns the number of indexed books.
func (x *Index) DocumentCount() (uint64, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.index.DocCount()
}

// Rebuild drops and recreates the index. Callers are expected to follow up
// with IndexBooks over the full catalog.
func (x *Index) Rebuild() error {
	x.mu.Lock()
	defer x.mu.Unlock()

	if err := x.index.Close(); err != nil {
		return fmt.Errorf("close index: %w", err)
	}
	if err := os.RemoveAll(x.path); err != nil {
		return fmt.Errorf("remove index: %w", err)
	}
	idx, err := bleve.New(x.path, buildIndexMapping())
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	x.index = idx
	x.logger.Info("search: rebuilt index", "path", x.path)
	return nil
}

func (x *Index) getIndex() bleve.Index {
	return x.index
}
