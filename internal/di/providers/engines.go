package providers

import (
	"strings"

	"github.com/samber/do/v2"

	"github.com/DrTomLLC/StoryStream/internal/changelog"
	"github.com/DrTomLLC/StoryStream/internal/config"
	"github.com/DrTomLLC/StoryStream/internal/download"
	"github.com/DrTomLLC/StoryStream/internal/importer"
	"github.com/DrTomLLC/StoryStream/internal/logger"
	"github.com/DrTomLLC/StoryStream/internal/media/images"
	"github.com/DrTomLLC/StoryStream/internal/metadata"
	"github.com/DrTomLLC/StoryStream/internal/scanner"
	"github.com/DrTomLLC/StoryStream/internal/sync"
)

// defaultAudioExtensions is the accepted extension set when none is
// otherwise configured; mirrors the formats internal/metadata can extract.
var defaultAudioExtensions = metadata.SupportedExtensions

// ProvideScanner builds the C3 scanner over library.paths.
func ProvideScanner(i do.Injector) (*scanner.Scanner, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	return scanner.NewScanner(scanner.Config{
		Roots:          cfg.Library.Paths,
		FollowSymlinks: false,
		ExtensionSet:   defaultAudioExtensions,
	}, log.Logger), nil
}

// ProvideChangelog wraps the store's changelog table for C7/C8.
func ProvideChangelog(i do.Injector) (*changelog.Log, error) {
	st := do.MustInvoke[*StoreHandle](i)
	return changelog.New(st), nil
}

// ProvideImporter builds the C4 importer over the catalog store, wired to
// persist embedded cover art through the images.Processor.
func ProvideImporter(i do.Injector) (*importer.Importer, error) {
	st := do.MustInvoke[*StoreHandle](i)
	cover := do.MustInvoke[*images.Processor](i)
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	deviceID := cfg.Sync.DeviceID
	if deviceID == "" {
		deviceID = "local"
	}
	return importer.New(st, cover, deviceID, log.Logger), nil
}

// ProvideSyncEngine builds the C7 sync engine over the configured conflict
// resolution strategy.
func ProvideSyncEngine(i do.Injector) (*sync.Engine, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	st := do.MustInvoke[*StoreHandle](i)
	log_ := do.MustInvoke[*changelog.Log](i)

	deviceID := cfg.Sync.DeviceID
	if deviceID == "" {
		deviceID = "local"
	}
	strategy := sync.Strategy(strings.ToLower(cfg.Sync.ConflictResolution))
	if strategy == "" {
		strategy = sync.UseNewest
	}
	return sync.New(deviceID, strategy, log_, st, log.Logger), nil
}

// DownloadManagerHandle wraps the C5 download manager so do can Stop it
// (through Shutdown) when the container shuts down; cmd/storystreamd starts
// it with Start.
type DownloadManagerHandle struct {
	*download.Manager
}

// Shutdown implements do.Shutdownable.
func (h *DownloadManagerHandle) Shutdown() error {
	h.Stop()
	return nil
}

// ProvideDownloadManager builds the C5 download manager over the C6 resume
// store, bounded by download.* config.
func ProvideDownloadManager(i do.Injector) (*DownloadManagerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	resumeHandle := do.MustInvoke[*ResumeHandle](i)

	mgr := download.NewManager(download.Config{
		MaxConcurrent:    cfg.Download.MaxConcurrent,
		BandwidthLimit:   cfg.Download.BandwidthLimit,
		BurstBytes:       cfg.Download.BurstBytes,
		RetryMaxAttempts: cfg.Download.RetryMaxAttempts,
	}, nil, resumeHandle.Store, log.Logger, nil)

	return &DownloadManagerHandle{Manager: mgr}, nil
}
