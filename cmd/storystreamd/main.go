// Command storystreamd runs the StoryStream engine: it wires every core
// component (catalog store, scanner, importer, download manager, sync
// engine, search index) through the DI container and optionally serves the
// thin HTTP control surface over them.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/DrTomLLC/StoryStream/internal/di"
	"github.com/DrTomLLC/StoryStream/internal/importer"
	"github.com/DrTomLLC/StoryStream/internal/logger"
	"github.com/DrTomLLC/StoryStream/internal/scanner"
)

func main() {
	injector := di.NewContainer()

	bootstrap, err := di.BootstrapContainer(injector)
	if err != nil {
		// Logger may not have resolved; fall back to stderr.
		os.Stderr.WriteString("storystreamd: bootstrap failed: " + err.Error() + "\n")
		os.Exit(1)
	}
	log := bootstrap.Logger

	log.Info("storystreamd starting",
		"environment", bootstrap.Config.App.Environment,
		"library_paths", bootstrap.Config.Library.Paths,
	)

	// Start the C5 download manager's scheduler loop.
	downloadCtx, downloadCancel := context.WithCancel(context.Background())
	if err := bootstrap.Downloads.Start(downloadCtx); err != nil {
		log.Error("failed to start download manager", "error", err)
		downloadCancel()
		os.Exit(1)
	}

	// Start the C3 scanner watch loop and consume its event stream.
	watchCtx, watchCancel := context.WithCancel(context.Background())
	events, err := bootstrap.Scanner.Start(watchCtx)
	if err != nil {
		log.Error("failed to start scanner", "error", err)
		watchCancel()
		downloadCancel()
		os.Exit(1)
	}
	go consumeScanEvents(log, bootstrap, events)

	// Run an initial scan in the background if the library wants one.
	if bootstrap.Config.Library.AutoScan {
		go runInitialScan(log, bootstrap)
	}

	// Start the optional HTTP control surface.
	srv := &http.Server{
		Addr:         ":" + bootstrap.Config.Server.Port,
		Handler:      bootstrap.Server,
		ReadTimeout:  bootstrap.Config.Server.ReadTimeout,
		WriteTimeout: bootstrap.Config.Server.WriteTimeout,
		IdleTimeout:  bootstrap.Config.Server.IdleTimeout,
	}

	go func() {
		log.Info("HTTP control surface starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error", "error", err)
			watchCancel()
			downloadCancel()
			os.Exit(1)
		}
	}()

	log.Info("storystreamd running", "addr", srv.Addr)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down storystreamd gracefully...")

	// Shutdown sequence (order matters!):
	// 1. Stop the scanner watch loop (no more scan events).
	// 2. Stop the download manager scheduler (no more downloads claimed).
	// 3. Deregister the mDNS advertisement (no more peer discovery).
	// 4. Shutdown the HTTP control surface (no more requests).
	// 5. Shutdown the SSE manager (no more event broadcasts).
	// 6. Close the search index.
	// 7. Close the resume store.
	// 8. Close the catalog store.

	watchCancel()
	if err := bootstrap.Scanner.Stop(); err != nil {
		log.Error("failed to stop scanner", "error", err)
	}

	downloadCancel()
	bootstrap.Downloads.Stop()

	if err := bootstrap.MDNS.Shutdown(); err != nil {
		log.Error("failed to stop mDNS advertisement", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server forced to shutdown", "error", err)
	}

	if err := bootstrap.SSEManager.Shutdown(); err != nil {
		log.Error("failed to shut down SSE manager", "error", err)
	}

	if err := bootstrap.SearchIndex.Shutdown(); err != nil {
		log.Error("failed to close search index", "error", err)
	}

	if err := bootstrap.Resume.Shutdown(); err != nil {
		log.Error("failed to close resume store", "error", err)
	}

	log.Info("closing catalog store...")
	if err := bootstrap.Store.Shutdown(); err != nil {
		log.Error("failed to close catalog store", "error", err)
	} else {
		log.Info("catalog store closed successfully")
	}

	log.Info("See you space cowboy...")
}

// consumeScanEvents imports every file the watch loop reports added or
// modified. A FileRemoved event is only logged; the book imported from that
// path stays in the catalog.
func consumeScanEvents(log *logger.Logger, bootstrap *di.Bootstrap, events <-chan scanner.Event) {
	ctx := context.Background()
	for ev := range events {
		switch ev.Kind {
		case scanner.FileAdded, scanner.FileModified:
			if _, err := bootstrap.Importer.ImportFile(ctx, ev.Path, importer.Options{ExtractCover: true}); err != nil {
				log.Warn("storystreamd: import failed for watched file", "path", ev.Path, "error", err)
			}
		case scanner.FileRemoved:
			log.Warn("storystreamd: file removed, catalog entry left in place", "path", ev.Path)
		case scanner.ScanCompleted:
			log.Info("storystreamd: scan completed", "count", ev.Count)
		case scanner.ScanError:
			log.Error("storystreamd: scan error", "error", ev.Reason)
		}
	}
}

// runInitialScan performs a one-shot enumeration of the configured library
// roots and imports every discovered path, for deployments with
// library.auto_scan enabled.
func runInitialScan(log *logger.Logger, bootstrap *di.Bootstrap) {
	ctx := context.Background()
	paths, err := bootstrap.Scanner.Scan(ctx)
	if err != nil {
		log.Error("storystreamd: initial scan failed", "error", err)
		return
	}

	imported := 0
	for _, path := range paths {
		if _, err := bootstrap.Importer.ImportFile(ctx, path, importer.Options{ExtractCover: true}); err != nil {
			log.Warn("storystreamd: import failed during initial scan", "path", path, "error", err)
			continue
		}
		imported++
	}
	log.Info("storystreamd: initial scan complete", "found", len(paths), "imported", imported)
}
