package importer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	domainerrors "github.com/DrTomLLC/StoryStream/internal/errors"
	"github.com/DrTomLLC/StoryStream/internal/id"
	"github.com/DrTomLLC/StoryStream/internal/metadata"
	"github.com/DrTomLLC/StoryStream/internal/scanner"
	"github.com/DrTomLLC/StoryStream/internal/store"

	"log/slog"

	"github.com/DrTomLLC/StoryStream/internal/domain"
)

// CoverProcessor persists embedded artwork already extracted by C1 and
// returns the stored image's catalog record plus its blurhash. Satisfied by
// internal/media/images.Processor; importer depends only on this slice of it.
type CoverProcessor interface {
	StoreExtracted(bookID string, cover *metadata.Cover) (*domain.ImageFileInfo, string, error)
}

// Options controls a single import, per spec.md §4.4.
type Options struct {
	Title             string
	Author            string
	ExtractCover      bool
	OverwriteExisting bool
	SkipOnError       bool

	// FeedChapterTitles, when set, are the ordered episode titles of the
	// feed.Item list a book was acquired through (C2 -> C5). They replace
	// generically-named local chapters detected by C1's probe, when the
	// alignment is confident enough to trust.
	FeedChapterTitles []string
}

// Importer turns a discovered file or directory into catalog Books. It
// depends on C1 (metadata.Extractor) for tag/chapter extraction, C3
// (scanner.Scanner) for directory discovery, and the catalog Store for
// idempotent persistence plus change-log emission (C8).
type Importer struct {
	store     store.Store
	extractor *metadata.Extractor
	cover     CoverProcessor
	deviceID  string
	logger    *slog.Logger

	folderLocks *SyncMap[string, *sync.Mutex]
}

// New constructs an Importer. cover may be nil, in which case
// Options.ExtractCover is honored by storing nothing (no-op).
func New(st store.Store, cover CoverProcessor, deviceID string, logger *slog.Logger) *Importer {
	return &Importer{
		store:       st,
		extractor:   metadata.NewExtractor(),
		cover:       cover,
		deviceID:    deviceID,
		logger:      logger,
		folderLocks: NewSyncMap[string, *sync.Mutex](),
	}
}

// ImportFile runs the §4.4 "Pipeline per file" for a single audio file (or
// the first file of a multi-file book folder; see ImportDirectory for
// grouping multiple files into one book).
func (im *Importer) ImportFile(ctx context.Context, path string, opts Options) (*domain.Book, error) {
	return im.importPaths(ctx, []string{path}, opts)
}

// ImportDirectory discovers audio files under root via C3's scan, groups
// them into book folders (collapsing multi-disc subfolders), and imports
// each group. With SkipOnError=false the first failure aborts and the
// already-committed prefix is retained (no rollback). With SkipOnError=true
// every group is attempted independently and only successes are returned.
func (im *Importer) ImportDirectory(ctx context.Context, root string, opts Options) ([]*domain.Book, error) {
	sc := scanner.NewScanner(scanner.Config{
		Roots:        []string{root},
		ExtensionSet: metadata.SupportedExtensions,
	}, im.logger)

	paths, err := sc.Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("importer: scan %s: %w", root, err)
	}

	groups := groupByBookFolder(paths)

	var books []*domain.Book
	for _, folder := range sortedKeys(groups) {
		if err := ctx.Err(); err != nil {
			return books, err
		}

		book, err := im.importPaths(ctx, groups[folder], opts)
		if err != nil {
			if opts.SkipOnError {
				im.logger.Warn("importer: skipping folder after error", "folder", folder, "error", err)
				continue
			}
			return books, fmt.Errorf("importer: import %s: %w", folder, err)
		}
		books = append(books, book)
	}
	return books, nil
}

// importPaths runs the single-book pipeline over one or more audio files
// (multiple files means one audio file per chapter, §4.4 step 3/4).
func (im *Importer) importPaths(ctx context.Context, paths []string, opts Options) (*domain.Book, error) {
	if len(paths) == 0 {
		return nil, domainerrors.Validation("importer: no paths given")
	}
	sort.Strings(paths)

	canonical, err := canonicalizeFirst(paths)
	if err != nil {
		return nil, domainerrors.Wrapf(err, domainerrors.CodeNotFound, "importer: canonicalize %s", paths[0])
	}

	lock := im.folderLock(canonical)
	lock.Lock()
	defer lock.Unlock()

	existing, err := im.store.GetBookByPath(ctx, canonical)
	if err != nil && !errors.Is(err, store.ErrBookNotFound) {
		return nil, fmt.Errorf("importer: lookup %s: %w", canonical, err)
	}
	if existing != nil && !opts.OverwriteExisting {
		return existing, domainerrors.AlreadyExists(fmt.Sprintf("book already imported: %s", canonical))
	}

	extracted, err := im.extractAll(ctx, paths)
	if err != nil {
		if opts.SkipOnError {
			return nil, domainerrors.Wrap(err, domainerrors.CodeTransient, "importer: skipped on error")
		}
		return nil, err
	}

	book, err := im.composeBook(ctx, canonical, paths, extracted, opts)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		book.ID = existing.ID
		book.Syncable.CreatedAt = existing.Syncable.CreatedAt
	}

	op := domain.OpInsert
	if existing != nil {
		op = domain.OpUpdate
		if err := im.store.UpdateBook(ctx, book); err != nil {
			return nil, fmt.Errorf("importer: update %s: %w", canonical, err)
		}
	} else {
		if err := im.store.CreateBook(ctx, book); err != nil {
			return nil, fmt.Errorf("importer: create %s: %w", canonical, err)
		}
	}

	if err := im.recordChange(ctx, book.ID, op); err != nil {
		im.logger.Error("importer: failed to append change record", "book_id", book.ID, "error", err)
	}

	return book, nil
}

// extractAll runs C1 over every path, failing fast unless skip_on_error
// callers already decided to tolerate it (that decision happens in the
// caller; extractAll always reports the first error it hits).
func (im *Importer) extractAll(ctx context.Context, paths []string) ([]*metadata.ExtractedMetadata, error) {
	out := make([]*metadata.ExtractedMetadata, len(paths))
	for i, p := range paths {
		md, err := im.extractor.Extract(ctx, p)
		if err != nil {
			return nil, fmt.Errorf("importer: extract %s: %w", p, err)
		}
		out[i] = md
	}
	return out, nil
}

// composeBook builds a Book + Chapters from extracted metadata, per §4.4
// step 4/5: title from option > tag > filename stem; duration from the
// chapter table when present, else the probe; cover stored when requested.
func (im *Importer) composeBook(ctx context.Context, canonical string, paths []string, extracted []*metadata.ExtractedMetadata, opts Options) (*domain.Book, error) {
	bookID, err := id.Generate("bk")
	if err != nil {
		return nil, fmt.Errorf("importer: generate book id: %w", err)
	}

	first := extracted[0]
	title := opts.Title
	if title == "" {
		title = first.Title
	}
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(canonical), filepath.Ext(canonical))
	}
	author := opts.Author
	if author == "" {
		author = first.Author
	}

	book := &domain.Book{
		Title:      title,
		Subtitle:   first.Subtitle,
		Author:     author,
		Narrator:   first.Narrator,
		Path:       canonical,
		ISBN:       first.ISBN,
		ASIN:       first.ASIN,
		Publisher:  first.Publisher,
		Language:   first.Language,
		Genres:     first.Genres,
		SeriesName: first.Series,
		Sequence:   first.SeriesPart,
	}
	book.ID = bookID
	book.InitTimestamps()
	book.ScannedAt = time.Now()

	var offset int64
	for i, path := range paths {
		md := extracted[i]
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("importer: stat %s: %w", path, err)
		}

		durationMs := md.Duration.Milliseconds()
		af := domain.AudioFileInfo{
			ID:       fmt.Sprintf("af-%s-%d", bookID, i),
			Path:     path,
			Filename: filepath.Base(path),
			Format:   md.Codec,
			Codec:    md.Codec,
			Size:     info.Size(),
			Duration: durationMs,
			Bitrate:  md.Bitrate,
			ModTime:  info.ModTime().UnixMilli(),
		}
		book.AudioFiles = append(book.AudioFiles, af)
		book.FileSizeBytes += af.Size

		book.Chapters = append(book.Chapters, fileChapters(md, af.ID, i, len(paths), offset)...)
		offset += durationMs
	}

	for i := range book.Chapters {
		book.Chapters[i].BookID = bookID
		book.Chapters[i].ID = fmt.Sprintf("ch-%s-%d", bookID, i)
		book.Chapters[i].Index = i
	}
	if err := domain.ValidateChapters(book.Chapters); err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeCorrupted, "importer: invalid chapter layout")
	}
	alignFeedChapterTitles(book.Chapters, opts.FeedChapterTitles)
	book.DeriveDurationFromChapters()
	if book.TotalDurationMs == 0 {
		book.RecalculateTotals()
	}

	if opts.ExtractCover && im.cover != nil && first.Cover != nil {
		cover, blurHash, err := im.cover.StoreExtracted(bookID, first.Cover)
		if err != nil {
			im.logger.Warn("importer: cover store failed", "book_id", bookID, "error", err)
		} else {
			book.CoverImage = cover
			book.CoverBlurHash = blurHash
		}
	}

	return book, nil
}

// fileChapters derives a book's chapter list for one source file. A file
// with its own embedded chapter table contributes each of those, offset by
// the cumulative duration of prior files. A file with none contributes a
// single chapter spanning its whole duration when the book has several files
// (the multi-file-per-chapter audiobook layout, §4.4/native_parser.go), and
// no chapter when it is the book's only file.
func fileChapters(md *metadata.ExtractedMetadata, audioFileID string, fileIndex, fileCount int, offsetMs int64) []domain.Chapter {
	if len(md.Chapters) > 0 {
		chapters := make([]domain.Chapter, len(md.Chapters))
		for i, c := range md.Chapters {
			chapters[i] = domain.Chapter{
				AudioFileID: audioFileID,
				Title:       c.Title,
				StartTimeMs: offsetMs + c.StartTime.Milliseconds(),
				EndTimeMs:   offsetMs + c.EndTime.Milliseconds(),
			}
		}
		return chapters
	}

	title := md.Title
	if title == "" {
		title = fmt.Sprintf("Chapter %d", fileIndex+1)
	}
	if fileCount == 1 {
		return nil // single-file book with no embedded chapters: no chapter rows.
	}
	return []domain.Chapter{{
		AudioFileID: audioFileID,
		Title:       title,
		StartTimeMs: offsetMs,
		EndTimeMs:   offsetMs + md.Duration.Milliseconds(),
	}}
}

func (im *Importer) recordChange(ctx context.Context, bookID string, op domain.ChangeOp) error {
	_, err := im.store.AppendChange(ctx, &domain.ChangeRecord{
		EntityKind:  domain.EntityBook,
		EntityID:    bookID,
		Op:          op,
		TimestampMs: time.Now().UnixMilli(),
		DeviceID:    im.deviceID,
	})
	return err
}

func (im *Importer) folderLock(canonical string) *sync.Mutex {
	lock, _ := im.folderLocks.LoadOrStore(canonical, &sync.Mutex{})
	return lock
}

func canonicalizeFirst(paths []string) (string, error) {
	abs, err := filepath.Abs(paths[0])
	if err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(abs)
}

func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
