package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/DrTomLLC/StoryStream/internal/domain"
	"github.com/DrTomLLC/StoryStream/internal/store"
)

const bookColumns = `
	id, created_at, updated_at, deleted_at, scanned_at, last_played_at, rating,
	isbn, asin, title, subtitle, author, narrator, path, description, publisher,
	published_date, language, genres, tags, series_id, series_name, sequence,
	total_duration_ms, file_size_bytes, play_count, favorite, explicit, abridged,
	cover_path, cover_blur_hash, cover_width, cover_height`

// CreateBook inserts a new book row along with its audio files and chapters,
// all inside one transaction.
func (s *Store) CreateBook(ctx context.Context, book *domain.Book) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if err := insertBook(ctx, tx, book); err != nil {
		return err
	}
	if err := replaceAudioFiles(ctx, tx, book.ID, book.AudioFiles); err != nil {
		return err
	}
	if err := replaceChapters(ctx, tx, book.ID, book.Chapters); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	notifyIndexer(ctx, s.searchIndexer, book, s.IsBulkMode())
	return nil
}

func insertBook(ctx context.Context, tx *sql.Tx, b *domain.Book) error {
	genresJSON, err := json.Marshal(b.Genres)
	if err != nil {
		return fmt.Errorf("marshal genres: %w", err)
	}
	tagsJSON, err := json.Marshal(b.Tags)
	if err != nil {
		return fmt.Errorf("marshal tags: %w", err)
	}

	var coverPath, coverBlurHash sql.NullString
	var coverWidth, coverHeight sql.NullInt64
	if b.CoverImage != nil {
		coverPath = nullString(b.CoverImage.Path)
		coverWidth = nullInt64(int64(b.CoverImage.Width))
		coverHeight = nullInt64(int64(b.CoverImage.Height))
	}
	if b.CoverBlurHash != "" {
		coverBlurHash = nullString(b.CoverBlurHash)
	}

	_, err = tx.ExecContext(ctx, `INSERT INTO books (`+bookColumns+`) VALUES (
		?, ?, ?, ?, ?, ?, ?,
		?, ?, ?, ?, ?, ?, ?, ?, ?,
		?, ?, ?, ?, ?, ?, ?,
		?, ?, ?, ?, ?, ?,
		?, ?, ?, ?
	)`,
		b.ID, formatTime(b.CreatedAt), formatTime(b.UpdatedAt), nullTimeString(b.DeletedAt),
		nullTimeString(&b.ScannedAt), nullTimeString(b.LastPlayedAt), ratingValue(b.Rating),
		nullString(b.ISBN), nullString(b.ASIN), b.Title, nullString(b.Subtitle),
		nullString(b.Author), nullString(b.Narrator), b.Path, nullString(b.Description),
		nullString(b.Publisher), nullString(b.PublishedDate), nullString(b.Language),
		string(genresJSON), string(tagsJSON), nullString(b.SeriesID), nullString(b.SeriesName),
		nullString(b.Sequence),
		b.TotalDurationMs, b.FileSizeBytes, b.PlayCount, b.Favorite, b.Explicit, b.Abridged,
		coverPath, coverBlurHash, coverWidth, coverHeight,
	)
	if err != nil {
		if isUniqueConstraintErr(err) {
			return store.ErrBookExists
		}
		return fmt.Errorf("insert book: %w", err)
	}
	return nil
}

func ratingValue(r *int) sql.NullInt64 {
	if r == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*r), Valid: true}
}

func replaceAudioFiles(ctx context.Context, tx *sql.Tx, bookID string, files []domain.AudioFileInfo) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM book_audio_files WHERE book_id = ?`, bookID); err != nil {
		return fmt.Errorf("clear audio files: %w", err)
	}
	for i, f := range files {
		_, err := tx.ExecContext(ctx, `INSERT INTO book_audio_files
			(id, book_id, path, inode, mod_time, size_bytes, duration_ms, sort_order)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			f.ID, bookID, f.Path, nullInt64(int64(f.Inode)), f.ModTime, f.Size, f.Duration, i,
		)
		if err != nil {
			return fmt.Errorf("insert audio file %s: %w", f.ID, err)
		}
	}
	return nil
}

func replaceChapters(ctx context.Context, tx *sql.Tx, bookID string, chapters []domain.Chapter) error {
	if err := domain.ValidateChapters(chapters); err != nil {
		return fmt.Errorf("invalid chapters: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM book_chapters WHERE book_id = ?`, bookID); err != nil {
		return fmt.Errorf("clear chapters: %w", err)
	}
	for _, c := range chapters {
		_, err := tx.ExecContext(ctx, `INSERT INTO book_chapters
			(book_id, idx, audio_file_id, title, start_time_ms, end_time_ms)
			VALUES (?, ?, ?, ?, ?, ?)`,
			bookID, c.Index, nullString(c.AudioFileID), c.Title, c.StartTimeMs, c.EndTimeMs,
		)
		if err != nil {
			return fmt.Errorf("insert chapter %d: %w", c.Index, err)
		}
	}
	return nil
}

// GetBook fetches a non-deleted book by id, including its audio files and
// chapters.
func (s *Store) GetBook(ctx context.Context, id string) (*domain.Book, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+bookColumns+` FROM books WHERE id = ? AND deleted_at IS NULL`, id)
	b, err := scanBook(row)
	if err != nil {
		return nil, err
	}
	if err := s.loadBookChildren(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// GetBookByPath fetches a non-deleted book by its canonical filesystem path.
func (s *Store) GetBookByPath(ctx context.Context, path string) (*domain.Book, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+bookColumns+` FROM books WHERE path = ? AND deleted_at IS NULL`, path)
	b, err := scanBook(row)
	if err != nil {
		return nil, err
	}
	if err := s.loadBookChildren(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *Store) loadBookChildren(ctx context.Context, b *domain.Book) error {
	files, err := s.audioFilesForBook(ctx, b.ID)
	if err != nil {
		return err
	}
	b.AudioFiles = files

	chapters, err := s.chaptersForBook(ctx, b.ID)
	if err != nil {
		return err
	}
	b.Chapters = chapters

	return nil
}

func (s *Store) audioFilesForBook(ctx context.Context, bookID string) ([]domain.AudioFileInfo, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, path, inode, mod_time, size_bytes, duration_ms
		FROM book_audio_files WHERE book_id = ? ORDER BY sort_order`, bookID)
	if err != nil {
		return nil, fmt.Errorf("query audio files: %w", err)
	}
	defer rows.Close()

	var out []domain.AudioFileInfo
	for rows.Next() {
		var f domain.AudioFileInfo
		var inode sql.NullInt64
		if err := rows.Scan(&f.ID, &f.Path, &inode, &f.ModTime, &f.Size, &f.Duration); err != nil {
			return nil, fmt.Errorf("scan audio file: %w", err)
		}
		f.Inode = uint64(inode.Int64)
		out = append(out, f)
	}
	return out, rows.Err()
}

func (s *Store) chaptersForBook(ctx context.Context, bookID string) ([]domain.Chapter, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT idx, audio_file_id, title, start_time_ms, end_time_ms
		FROM book_chapters WHERE book_id = ? ORDER BY idx`, bookID)
	if err != nil {
		return nil, fmt.Errorf("query chapters: %w", err)
	}
	defer rows.Close()

	var out []domain.Chapter
	for rows.Next() {
		c := domain.Chapter{BookID: bookID}
		var audioFileID sql.NullString
		if err := rows.Scan(&c.Index, &audioFileID, &c.Title, &c.StartTimeMs, &c.EndTimeMs); err != nil {
			return nil, fmt.Errorf("scan chapter: %w", err)
		}
		c.AudioFileID = audioFileID.String
		out = append(out, c)
	}
	return out, rows.Err()
}

type scannable interface {
	Scan(dest ...any) error
}

func scanBook(row scannable) (*domain.Book, error) {
	var b domain.Book
	var createdAt, updatedAt string
	var deletedAt, scannedAt, lastPlayedAt sql.NullString
	var rating sql.NullInt64
	var isbn, asin, subtitle, author, narrator, description, publisher, publishedDate, language sql.NullString
	var genresJSON, tagsJSON string
	var seriesID, seriesName, sequence sql.NullString
	var coverPath, coverBlurHash sql.NullString
	var coverWidth, coverHeight sql.NullInt64

	err := row.Scan(
		&b.ID, &createdAt, &updatedAt, &deletedAt, &scannedAt, &lastPlayedAt, &rating,
		&isbn, &asin, &b.Title, &subtitle, &author, &narrator, &b.Path, &description, &publisher,
		&publishedDate, &language, &genresJSON, &tagsJSON, &seriesID, &seriesName, &sequence,
		&b.TotalDurationMs, &b.FileSizeBytes, &b.PlayCount, &b.Favorite, &b.Explicit, &b.Abridged,
		&coverPath, &coverBlurHash, &coverWidth, &coverHeight,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrBookNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan book: %w", err)
	}

	b.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	b.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}
	if b.DeletedAt, err = parseNullableTime(deletedAt); err != nil {
		return nil, fmt.Errorf("parse deleted_at: %w", err)
	}
	if scannedAt.Valid {
		t, err := parseTime(scannedAt.String)
		if err != nil {
			return nil, fmt.Errorf("parse scanned_at: %w", err)
		}
		b.ScannedAt = t
	}
	if b.LastPlayedAt, err = parseNullableTime(lastPlayedAt); err != nil {
		return nil, fmt.Errorf("parse last_played_at: %w", err)
	}
	if rating.Valid {
		v := int(rating.Int64)
		b.Rating = &v
	}

	b.ISBN, b.ASIN = isbn.String, asin.String
	b.Subtitle, b.Author, b.Narrator = subtitle.String, author.String, narrator.String
	b.Description, b.Publisher, b.PublishedDate, b.Language =
		description.String, publisher.String, publishedDate.String, language.String
	b.SeriesID, b.SeriesName, b.Sequence = seriesID.String, seriesName.String, sequence.String

	if err := json.Unmarshal([]byte(genresJSON), &b.Genres); err != nil {
		return nil, fmt.Errorf("unmarshal genres: %w", err)
	}
	if err := json.Unmarshal([]byte(tagsJSON), &b.Tags); err != nil {
		return nil, fmt.Errorf("unmarshal tags: %w", err)
	}

	if coverPath.Valid {
		b.CoverImage = &domain.ImageFileInfo{
			Path:   coverPath.String,
			Width:  int(coverWidth.Int64),
			Height: int(coverHeight.Int64),
		}
	}
	b.CoverBlurHash = coverBlurHash.String

	return &b, nil
}

// UpdateBook overwrites an existing book row and its child rows.
func (s *Store) UpdateBook(ctx context.Context, book *domain.Book) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	genresJSON, err := json.Marshal(book.Genres)
	if err != nil {
		return fmt.Errorf("marshal genres: %w", err)
	}
	tagsJSON, err := json.Marshal(book.Tags)
	if err != nil {
		return fmt.Errorf("marshal tags: %w", err)
	}

	var coverPath, coverBlurHash sql.NullString
	var coverWidth, coverHeight sql.NullInt64
	if book.CoverImage != nil {
		coverPath = nullString(book.CoverImage.Path)
		coverWidth = nullInt64(int64(book.CoverImage.Width))
		coverHeight = nullInt64(int64(book.CoverImage.Height))
	}
	if book.CoverBlurHash != "" {
		coverBlurHash = nullString(book.CoverBlurHash)
	}

	res, err := tx.ExecContext(ctx, `UPDATE books SET
		updated_at = ?, deleted_at = ?, scanned_at = ?, last_played_at = ?, rating = ?,
		isbn = ?, asin = ?, title = ?, subtitle = ?, author = ?, narrator = ?, path = ?,
		description = ?, publisher = ?, published_date = ?, language = ?, genres = ?, tags = ?,
		series_id = ?, series_name = ?, sequence = ?, total_duration_ms = ?, file_size_bytes = ?,
		play_count = ?, favorite = ?, explicit = ?, abridged = ?, cover_path = ?,
		cover_blur_hash = ?, cover_width = ?, cover_height = ?
		WHERE id = ?`,
		formatTime(time.Now()), nullTimeString(book.DeletedAt), nullTimeString(&book.ScannedAt),
		nullTimeString(book.LastPlayedAt), ratingValue(book.Rating),
		nullString(book.ISBN), nullString(book.ASIN), book.Title, nullString(book.Subtitle),
		nullString(book.Author), nullString(book.Narrator), book.Path, nullString(book.Description),
		nullString(book.Publisher), nullString(book.PublishedDate), nullString(book.Language),
		string(genresJSON), string(tagsJSON), nullString(book.SeriesID), nullString(book.SeriesName),
		nullString(book.Sequence), book.TotalDurationMs, book.FileSizeBytes, book.PlayCount,
		book.Favorite, book.Explicit, book.Abridged,
		coverPath, coverBlurHash, coverWidth, coverHeight,
		book.ID,
	)
	if err != nil {
		return fmt.Errorf("update book: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrBookNotFound
	}

	if err := replaceAudioFiles(ctx, tx, book.ID, book.AudioFiles); err != nil {
		return err
	}
	if err := replaceChapters(ctx, tx, book.ID, book.Chapters); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	notifyIndexer(ctx, s.searchIndexer, book, s.IsBulkMode())
	return nil
}

// DeleteBook soft-deletes a book, leaving a tombstone for sync.
func (s *Store) DeleteBook(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE books SET deleted_at = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL`,
		formatTime(time.Now()), formatTime(time.Now()), id)
	if err != nil {
		return fmt.Errorf("delete book: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrBookNotFound
	}

	if s.searchIndexer != nil && !s.IsBulkMode() {
		if err := s.searchIndexer.DeleteBook(ctx, id); err != nil {
			return fmt.Errorf("deindex book: %w", err)
		}
	}
	return nil
}

// ListBooks returns a cursor-paginated page of non-deleted books, ordered by
// updated_at.
func (s *Store) ListBooks(ctx context.Context, params store.PaginationParams) (*store.PaginatedResult[*domain.Book], error) {
	params.Validate()

	var afterUpdatedAt, afterID string
	if params.Cursor != "" {
		key, err := store.DecodeCursor(params.Cursor)
		if err != nil {
			return nil, fmt.Errorf("decode cursor: %w", err)
		}
		afterUpdatedAt, afterID, err = splitCursorKey(key)
		if err != nil {
			return nil, fmt.Errorf("decode cursor: %w", err)
		}
	}

	rows, err := s.db.QueryContext(ctx, `SELECT `+bookColumns+` FROM books
		WHERE deleted_at IS NULL
		AND (updated_at, id) > (?, ?)
		ORDER BY updated_at, id
		LIMIT ?`, afterUpdatedAt, afterID, params.Limit+1)
	if err != nil {
		return nil, fmt.Errorf("query books: %w", err)
	}
	defer rows.Close()

	var books []*domain.Book
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		books = append(books, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	hasMore := len(books) > params.Limit
	if hasMore {
		books = books[:params.Limit]
	}

	for _, b := range books {
		if err := s.loadBookChildren(ctx, b); err != nil {
			return nil, err
		}
	}

	total, err := s.CountBooks(ctx)
	if err != nil {
		return nil, err
	}

	result := &store.PaginatedResult[*domain.Book]{
		Items:   books,
		Total:   total,
		HasMore: hasMore,
	}
	if hasMore && len(books) > 0 {
		last := books[len(books)-1]
		result.NextCursor = store.EncodeCursor(cursorKey(formatTime(last.UpdatedAt), last.ID))
	}
	return result, nil
}

// cursorKey/splitCursorKey pack the (updated_at, id) tiebreak pair into the
// single opaque string store.EncodeCursor/DecodeCursor carries.
func cursorKey(updatedAt, id string) string {
	return updatedAt + "\x1f" + id
}

func splitCursorKey(key string) (updatedAt, id string, err error) {
	i := strings.LastIndexByte(key, '\x1f')
	if i < 0 {
		return "", "", fmt.Errorf("malformed cursor key %q", key)
	}
	return key[:i], key[i+1:], nil
}

// ListAllBooks returns every non-deleted book, unpaginated, ordered by title.
func (s *Store) ListAllBooks(ctx context.Context) ([]*domain.Book, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+bookColumns+` FROM books
		WHERE deleted_at IS NULL ORDER BY title`)
	if err != nil {
		return nil, fmt.Errorf("query all books: %w", err)
	}
	defer rows.Close()

	var books []*domain.Book
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		books = append(books, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, b := range books {
		if err := s.loadBookChildren(ctx, b); err != nil {
			return nil, err
		}
	}
	return books, nil
}

// BooksUpdatedSince returns every book (including tombstones) updated after
// sinceMs (Unix milliseconds).
func (s *Store) BooksUpdatedSince(ctx context.Context, sinceMs int64) ([]*domain.Book, error) {
	since := time.UnixMilli(sinceMs).UTC()
	rows, err := s.db.QueryContext(ctx, `SELECT `+bookColumns+` FROM books
		WHERE updated_at > ? ORDER BY updated_at`, formatTime(since))
	if err != nil {
		return nil, fmt.Errorf("query books updated since: %w", err)
	}
	defer rows.Close()

	var books []*domain.Book
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		// Tombstoned books carry no useful child rows.
		if b.DeletedAt == nil {
			if err := s.loadBookChildren(ctx, b); err != nil {
				return nil, err
			}
		}
		books = append(books, b)
	}
	return books, rows.Err()
}

// SearchBooksByTitle does a substring title match directly in SQLite, without
// going through the bleve index (internal/search).
func (s *Store) SearchBooksByTitle(ctx context.Context, title string) ([]*domain.Book, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+bookColumns+` FROM books
		WHERE deleted_at IS NULL AND title LIKE ? ORDER BY title LIMIT 50`, "%"+title+"%")
	if err != nil {
		return nil, fmt.Errorf("search books: %w", err)
	}
	defer rows.Close()

	var books []*domain.Book
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		books = append(books, b)
	}
	return books, rows.Err()
}

// BookExists reports whether a non-deleted book with the given id exists.
func (s *Store) BookExists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM books WHERE id = ? AND deleted_at IS NULL)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("book exists: %w", err)
	}
	return exists, nil
}

// CountBooks returns the count of non-deleted books.
func (s *Store) CountBooks(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM books WHERE deleted_at IS NULL`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count books: %w", err)
	}
	return count, nil
}

// GetAllBookIDs returns every non-deleted book id, sorted.
func (s *Store) GetAllBookIDs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM books WHERE deleted_at IS NULL`)
	if err != nil {
		return nil, fmt.Errorf("query book ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, rows.Err()
}

func notifyIndexer(ctx context.Context, indexer store.SearchIndexer, book *domain.Book, bulkMode bool) {
	if indexer == nil || bulkMode {
		return
	}
	_ = indexer.IndexBook(ctx, book)
}

func isUniqueConstraintErr(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
