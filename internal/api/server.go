// Package api implements StoryStream's control surface: a thin,
// OpenAPI-documented HTTP layer over the core engines (scanner, importer,
// download manager, sync engine) for collaborators that want programmatic
// or remote access. It is not required to use StoryStream as a library —
// spec.md's [MODULE]s are all satisfied without it — so it stays deliberately
// thin: no business logic lives here that isn't already in a core package.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/DrTomLLC/StoryStream/internal/changelog"
	"github.com/DrTomLLC/StoryStream/internal/download"
	"github.com/DrTomLLC/StoryStream/internal/importer"
	"github.com/DrTomLLC/StoryStream/internal/media/images"
	"github.com/DrTomLLC/StoryStream/internal/pairing"
	"github.com/DrTomLLC/StoryStream/internal/scanner"
	"github.com/DrTomLLC/StoryStream/internal/search"
	"github.com/DrTomLLC/StoryStream/internal/sse"
	"github.com/DrTomLLC/StoryStream/internal/store"
	"github.com/DrTomLLC/StoryStream/internal/sync"
)

// Server holds every dependency an HTTP handler might need, wired once at
// startup and never reconstructed.
type Server struct {
	store        store.Store
	scanner      *scanner.Scanner
	importer     *importer.Importer
	downloads    *download.Manager
	syncEngine   *sync.Engine
	changelog    *changelog.Log
	searchIndex  *search.Index
	sseManager   *sse.Manager
	sseHandler   *sse.Handler
	coverStorage *images.Storage
	pairing      *pairing.Service

	router *chi.Mux
	api    huma.API
	logger *slog.Logger
}

// Deps bundles the core engines a Server wires into its routes.
type Deps struct {
	Store        store.Store
	Scanner      *scanner.Scanner
	Importer     *importer.Importer
	Downloads    *download.Manager
	SyncEngine   *sync.Engine
	Changelog    *changelog.Log
	SearchIndex  *search.Index
	SSEManager   *sse.Manager
	CoverStorage *images.Storage
	Pairing      *pairing.Service
	Logger       *slog.Logger
}

// NewServer builds the router, registers every route, and returns a
// ready-to-serve Server.
func NewServer(d Deps) *Server {
	s := &Server{
		store:        d.Store,
		scanner:      d.Scanner,
		importer:     d.Importer,
		downloads:    d.Downloads,
		syncEngine:   d.SyncEngine,
		changelog:    d.Changelog,
		searchIndex:  d.SearchIndex,
		sseManager:   d.SSEManager,
		sseHandler:   sse.NewHandler(d.SSEManager, d.Logger),
		coverStorage: d.CoverStorage,
		pairing:      d.Pairing,
		router:       chi.NewRouter(),
		logger:       d.Logger,
	}

	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupMiddleware() {
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Requested-With"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
}

func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealthCheck)
	s.router.Get("/events", s.sseHandler.ServeHTTP)

	humaConfig := huma.DefaultConfig("StoryStream Control Surface", "1.0.0")
	humaConfig.Info.Description = "Optional HTTP surface over StoryStream's local-first audiobook engine: " +
		"trigger scans, manage downloads, exchange sync batches, and search the catalog."
	s.api = humachi.New(s.router, humaConfig)

	s.registerScanRoutes()
	s.registerDownloadRoutes()
	s.registerSyncRoutes()
	s.registerSearchRoutes()
	s.registerPairingRoutes()
}

func (s *Server) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok","time":"` + time.Now().UTC().Format(time.RFC3339) + `"}`))
}
