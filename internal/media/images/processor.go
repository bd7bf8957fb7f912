package images

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/DrTomLLC/StoryStream/internal/domain"
	"github.com/DrTomLLC/StoryStream/internal/metadata"
)

// mimeOctetStream is returned by detectImageFormat when the data doesn't
// match any recognized image magic bytes.
const mimeOctetStream = "application/octet-stream"

// Processor persists a book's cover image and builds the domain record
// describing it. Width/height/blurhash for embedded artwork are already
// computed by internal/metadata during extraction; Processor's job is
// storage plus the fallback path for a folder-level cover file with no
// embedded counterpart.
type Processor struct {
	storage *Storage
	logger  *slog.Logger
}

// NewProcessor creates a new Processor instance.
func NewProcessor(storage *Storage, logger *slog.Logger) *Processor {
	return &Processor{
		storage: storage,
		logger:  logger,
	}
}

// StoreExtracted persists artwork metadata.Extract already pulled from the
// audio container and returns the domain.ImageFileInfo to attach to a Book,
// plus its blurhash.
func (p *Processor) StoreExtracted(bookID string, cover *metadata.Cover) (*domain.ImageFileInfo, string, error) {
	if cover == nil {
		return nil, "", nil
	}
	if err := p.storage.Save(bookID, cover.Data); err != nil {
		return nil, "", fmt.Errorf("store cover: %w", err)
	}
	path := p.storage.Path(bookID)
	info, err := os.Stat(path)
	if err != nil {
		return nil, "", fmt.Errorf("stat stored cover: %w", err)
	}

	p.logger.Debug("stored embedded cover", "book_id", bookID, "size", info.Size())

	return &domain.ImageFileInfo{
		Path:     path,
		Filename: filepath.Base(path),
		Format:   cover.MIMEType,
		Size:     info.Size(),
		Width:    cover.Width,
		Height:   cover.Height,
		ModTime:  info.ModTime().UnixMilli(),
	}, cover.BlurHash, nil
}

// ProcessExternalCover reads a folder-level cover file (e.g. cover.jpg sitting
// alongside the audio files) and stores it, computing a blurhash from the
// decoded image since it never passes through internal/metadata's
// extraction path. Used as the extract_cover fallback when an audio file
// carries no embedded artwork.
func (p *Processor) ProcessExternalCover(coverPath, bookID string) (*domain.ImageFileInfo, string, error) {
	data, err := os.ReadFile(coverPath)
	if err != nil {
		return nil, "", fmt.Errorf("read external cover: %w", err)
	}
	if err := p.storage.Save(bookID, data); err != nil {
		return nil, "", fmt.Errorf("save external cover: %w", err)
	}

	hash, err := ComputeBlurHash(coverPath)
	if err != nil {
		p.logger.Warn("external cover blurhash failed", "path", coverPath, "error", err)
	}

	path := p.storage.Path(bookID)
	info, err := os.Stat(path)
	if err != nil {
		return nil, "", fmt.Errorf("stat stored cover: %w", err)
	}

	return &domain.ImageFileInfo{
		Path:     path,
		Filename: filepath.Base(path),
		Format:   detectImageFormat(data),
		Size:     info.Size(),
		ModTime:  info.ModTime().UnixMilli(),
	}, hash, nil
}

// detectImageFormat detects the MIME type from image data magic bytes.
func detectImageFormat(data []byte) string {
	if len(data) < 4 {
		return mimeOctetStream
	}

	switch {
	case data[0] == 0xFF && data[1] == 0xD8 && data[2] == 0xFF:
		return "image/jpeg"
	case data[0] == 0x89 && data[1] == 0x50 && data[2] == 0x4E && data[3] == 0x47:
		return "image/png"
	case data[0] == 0x47 && data[1] == 0x49 && data[2] == 0x46:
		return "image/gif"
	case data[0] == 0x52 && data[1] == 0x49 && data[2] == 0x46 && data[3] == 0x46:
		if len(data) >= 12 && data[8] == 0x57 && data[9] == 0x45 && data[10] == 0x42 && data[11] == 0x50 {
			return "image/webp"
		}
		return mimeOctetStream
	default:
		return mimeOctetStream
	}
}
