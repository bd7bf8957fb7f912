package providers

import (
	"path/filepath"

	"github.com/samber/do/v2"

	"github.com/DrTomLLC/StoryStream/internal/config"
	"github.com/DrTomLLC/StoryStream/internal/logger"
	"github.com/DrTomLLC/StoryStream/internal/media/images"
	"github.com/DrTomLLC/StoryStream/internal/resume"
	"github.com/DrTomLLC/StoryStream/internal/store"
	"github.com/DrTomLLC/StoryStream/internal/store/sqlite"
)

// StoreHandle wraps the catalog store so do can invoke Close as a
// do.Shutdownable on teardown.
type StoreHandle struct {
	store.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error { return h.Close() }

// ProvideStore opens the sqlite-backed catalog store under
// metadata.base_path/catalog.db.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	dbPath := filepath.Join(cfg.Metadata.BasePath, "catalog.db")
	st, err := sqlite.Open(dbPath, log.Logger)
	if err != nil {
		return nil, err
	}
	log.Info("catalog store opened", "path", dbPath)
	return &StoreHandle{Store: st}, nil
}

// ResumeHandle wraps the C6 checkpoint store.
type ResumeHandle struct {
	*resume.Store
}

// Shutdown implements do.Shutdownable.
func (h *ResumeHandle) Shutdown() error { return h.Close() }

// ProvideResumeStore opens the C6 download-checkpoint store under
// metadata.base_path/resume.db.
func ProvideResumeStore(i do.Injector) (*ResumeHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	dbPath := filepath.Join(cfg.Metadata.BasePath, "resume.db")
	st, err := resume.Open(dbPath, log.Logger)
	if err != nil {
		return nil, err
	}
	return &ResumeHandle{Store: st}, nil
}

// ProvideCoverStorage provides the on-disk cover art store under
// metadata.base_path/covers.
func ProvideCoverStorage(i do.Injector) (*images.Storage, error) {
	cfg := do.MustInvoke[*config.Config](i)
	return images.NewStorage(cfg.Metadata.BasePath)
}

// ProvideImageProcessor provides the cover image persistence layer the
// importer uses to store embedded artwork.
func ProvideImageProcessor(i do.Injector) (*images.Processor, error) {
	storage := do.MustInvoke[*images.Storage](i)
	log := do.MustInvoke[*logger.Logger](i)
	return images.NewProcessor(storage, log.Logger), nil
}
