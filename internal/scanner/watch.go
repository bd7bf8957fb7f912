package scanner

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// watchBackend wraps fsnotify to recursively watch cfg.Roots, registering a
// new watch for every directory discovered (including ones created after
// start). Raw events are handed to a debouncer, which is the thing that
// actually produces Added/Modified/Removed scanner events.
type watchBackend struct {
	cfg    Config
	logger *slog.Logger
	fsw    *fsnotify.Watcher
	deb    *debouncer
}

func newWatchBackend(cfg Config, logger *slog.Logger, emit func(Event)) (*watchBackend, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &watchBackend{
		cfg:    cfg,
		logger: logger,
		fsw:    fsw,
		deb:    newDebouncer(cfg.debounce(), emit),
	}, nil
}

// addRoots registers every directory currently under cfg.Roots with
// fsnotify. It reuses a fresh walker's traversal policy (depth, symlinks)
// but watches directories rather than classifying files.
func (b *watchBackend) addRoots() error {
	for _, root := range b.cfg.Roots {
		canonRoot, err := canonicalize(root)
		if err != nil {
			b.logger.Warn("scanner: cannot resolve watch root", "root", root, "error", err)
			continue
		}
		if err := b.addDirTree(canonRoot, 0); err != nil {
			return err
		}
	}
	return nil
}

func (b *watchBackend) addDirTree(dir string, depth int) error {
	if depth > b.cfg.maxDepth() {
		return nil
	}
	if err := b.fsw.Add(dir); err != nil {
		b.logger.Warn("scanner: cannot watch directory", "path", dir, "error", err)
		return nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		b.logger.Warn("scanner: cannot read watched directory", "path", dir, "error", err)
		return nil
	}
	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		isDir := entry.IsDir()
		if entry.Type()&os.ModeSymlink != 0 {
			if !b.cfg.FollowSymlinks {
				continue
			}
			info, err := os.Stat(path)
			if err != nil {
				continue
			}
			isDir = info.IsDir()
		}
		if isDir {
			if err := b.addDirTree(path, depth+1); err != nil {
				return err
			}
		}
	}
	return nil
}

// run drains raw fsnotify events until ctx is cancelled or the watcher's
// channels close. It is the backend's event loop; call it from its own
// goroutine.
func (b *watchBackend) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-b.fsw.Events:
			if !ok {
				return
			}
			b.handle(ev)
		case err, ok := <-b.fsw.Errors:
			if !ok {
				return
			}
			b.logger.Warn("scanner: watch backend error", "error", err)
		}
	}
}

func (b *watchBackend) handle(ev fsnotify.Event) {
	info, statErr := os.Stat(ev.Name)
	isDir := statErr == nil && info.IsDir()

	switch {
	case ev.Op.Has(fsnotify.Create):
		if isDir {
			_ = b.addDirTree(ev.Name, 0)
			return
		}
		if b.accept(ev.Name, info) {
			b.deb.notify(ev.Name, FileAdded)
		}
	case ev.Op.Has(fsnotify.Write), ev.Op.Has(fsnotify.Chmod):
		if isDir {
			return
		}
		if b.accept(ev.Name, info) {
			b.deb.notify(ev.Name, FileModified)
		}
	case ev.Op.Has(fsnotify.Remove), ev.Op.Has(fsnotify.Rename):
		ext := strings.ToLower(filepath.Ext(ev.Name))
		if b.cfg.ExtensionSet[ext] {
			b.deb.notify(ev.Name, FileRemoved)
		}
	}
}

func (b *watchBackend) accept(path string, info os.FileInfo) bool {
	if info == nil {
		return false
	}
	ext := strings.ToLower(filepath.Ext(path))
	return b.cfg.accepts(ext, info.Size())
}

func (b *watchBackend) close() error {
	b.deb.stop()
	return b.fsw.Close()
}
