// Package di wires StoryStream's components using samber/do/v2: every core
// engine (C1-C8), the ambient stack, and the optional control surface are
// registered as lazy providers and resolved once at Bootstrap.
package di

import (
	"github.com/samber/do/v2"

	"github.com/DrTomLLC/StoryStream/internal/api"
	"github.com/DrTomLLC/StoryStream/internal/changelog"
	"github.com/DrTomLLC/StoryStream/internal/config"
	"github.com/DrTomLLC/StoryStream/internal/di/providers"
	"github.com/DrTomLLC/StoryStream/internal/importer"
	"github.com/DrTomLLC/StoryStream/internal/logger"
	"github.com/DrTomLLC/StoryStream/internal/media/images"
	"github.com/DrTomLLC/StoryStream/internal/scanner"
	"github.com/DrTomLLC/StoryStream/internal/sync"
)

// NewContainer creates and configures the DI container with every provider.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Ambient stack.
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)

	// Catalog + supporting storage.
	do.Provide(injector, providers.ProvideStore)
	do.Provide(injector, providers.ProvideResumeStore)
	do.Provide(injector, providers.ProvideCoverStorage)
	do.Provide(injector, providers.ProvideImageProcessor)

	// Core engines (C1-C8).
	do.Provide(injector, providers.ProvideScanner)
	do.Provide(injector, providers.ProvideImporter)
	do.Provide(injector, providers.ProvideDownloadManager)
	do.Provide(injector, providers.ProvideChangelog)
	do.Provide(injector, providers.ProvideSyncEngine)

	// Search + progress streaming.
	do.Provide(injector, providers.ProvideSearchIndex)
	do.Provide(injector, providers.ProvideSSEManager)

	// Peer discovery + pairing.
	do.Provide(injector, providers.ProvideMDNSService)
	do.Provide(injector, providers.ProvidePairingKey)
	do.Provide(injector, providers.ProvidePairingService)

	// Control surface.
	do.Provide(injector, providers.ProvideAPIServer)

	return injector
}

// Bootstrap holds the components BootstrapContainer resolves: config/logger
// for startup logging, the engines for their own Start/Stop lifecycle, and
// the HTTP server to listen on.
type Bootstrap struct {
	Config      *config.Config
	Logger      *logger.Logger
	Scanner     *scanner.Scanner
	Importer    *importer.Importer
	Downloads   *providers.DownloadManagerHandle
	SyncEngine  *sync.Engine
	Changelog   *changelog.Log
	Covers      *images.Storage
	Server      *api.Server
	SearchIndex *providers.SearchIndexHandle
	SSEManager  *providers.SSEManagerHandle
	Store       *providers.StoreHandle
	Resume      *providers.ResumeHandle
	MDNS        *providers.MDNSServiceHandle
}

// BootstrapContainer resolves every registered provider and returns handles the
// caller (cmd/storystreamd) needs to start background loops and serve HTTP.
func BootstrapContainer(injector *do.RootScope) (*Bootstrap, error) {
	cfg, err := do.Invoke[*config.Config](injector)
	if err != nil {
		return nil, err
	}
	log, err := do.Invoke[*logger.Logger](injector)
	if err != nil {
		return nil, err
	}
	st, err := do.Invoke[*providers.StoreHandle](injector)
	if err != nil {
		return nil, err
	}
	resumeHandle, err := do.Invoke[*providers.ResumeHandle](injector)
	if err != nil {
		return nil, err
	}
	covers, err := do.Invoke[*images.Storage](injector)
	if err != nil {
		return nil, err
	}
	if _, err := do.Invoke[*images.Processor](injector); err != nil {
		return nil, err
	}
	sc, err := do.Invoke[*scanner.Scanner](injector)
	if err != nil {
		return nil, err
	}
	imp, err := do.Invoke[*importer.Importer](injector)
	if err != nil {
		return nil, err
	}
	dl, err := do.Invoke[*providers.DownloadManagerHandle](injector)
	if err != nil {
		return nil, err
	}
	cl, err := do.Invoke[*changelog.Log](injector)
	if err != nil {
		return nil, err
	}
	se, err := do.Invoke[*sync.Engine](injector)
	if err != nil {
		return nil, err
	}
	idx, err := do.Invoke[*providers.SearchIndexHandle](injector)
	if err != nil {
		return nil, err
	}
	sseHandle, err := do.Invoke[*providers.SSEManagerHandle](injector)
	if err != nil {
		return nil, err
	}
	mdnsHandle, err := do.Invoke[*providers.MDNSServiceHandle](injector)
	if err != nil {
		return nil, err
	}
	srv, err := do.Invoke[*api.Server](injector)
	if err != nil {
		return nil, err
	}

	return &Bootstrap{
		Config:      cfg,
		Logger:      log,
		Scanner:     sc,
		Importer:    imp,
		Downloads:   dl,
		SyncEngine:  se,
		Changelog:   cl,
		Covers:      covers,
		Server:      srv,
		SearchIndex: idx,
		SSEManager:  sseHandle,
		Store:       st,
		Resume:      resumeHandle,
		MDNS:        mdnsHandle,
	}, nil
}
