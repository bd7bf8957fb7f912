package scanner

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// walker performs one depth-first enumeration of cfg.Roots, per spec.md
// §4.3's "Enumeration policy". It is stateless across calls: canonPaths is
// fresh for every walk so overlapping roots and symlink cycles are
// suppressed only within a single scan, never across scans.
type walker struct {
	cfg        Config
	logger     *slog.Logger
	canonPaths map[string]bool
	visited    int
}

func newWalker(cfg Config, logger *slog.Logger) *walker {
	return &walker{
		cfg:        cfg,
		logger:     logger,
		canonPaths: make(map[string]bool),
	}
}

// walk enumerates every accepted file under cfg.Roots and invokes emit for
// each one. emit is also invoked (with ok=false) for non-fatal per-entry
// errors, which are logged and otherwise skipped; the walk continues.
// It cooperatively yields to the Go scheduler every yieldEvery entries so a
// very large tree never monopolizes its goroutine.
func (w *walker) walk(ctx context.Context, emit func(path string, ok bool, err error)) error {
	for _, root := range w.cfg.Roots {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := w.walkRoot(ctx, root, emit); err != nil {
			return err
		}
	}
	return nil
}

func (w *walker) walkRoot(ctx context.Context, root string, emit func(path string, ok bool, err error)) error {
	canonRoot, err := canonicalize(root)
	if err != nil {
		w.logger.Warn("scanner: cannot resolve root", "root", root, "error", err)
		emit("", false, err)
		return nil
	}
	return w.walkDir(ctx, canonRoot, 0, emit)
}

func (w *walker) walkDir(ctx context.Context, dir string, depth int, emit func(path string, ok bool, err error)) error {
	if depth > w.cfg.maxDepth() {
		return nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		w.logger.Warn("scanner: cannot read directory", "path", dir, "error", err)
		emit(dir, false, err)
		return nil
	}

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		path := filepath.Join(dir, entry.Name())

		info, typ, err := w.resolveEntry(path, entry)
		if err != nil {
			w.logger.Warn("scanner: cannot stat entry", "path", path, "error", err)
			emit(path, false, err)
			continue
		}
		if info == nil {
			continue // symlink ignored per follow_symlinks=false
		}

		canon, err := canonicalize(path)
		if err != nil {
			w.logger.Warn("scanner: cannot canonicalize entry", "path", path, "error", err)
			emit(path, false, err)
			continue
		}
		if w.canonPaths[canon] {
			continue // duplicate across overlapping roots or a symlink cycle
		}
		w.canonPaths[canon] = true

		if typ.IsDir() {
			if err := w.walkDir(ctx, path, depth+1, emit); err != nil {
				return err
			}
			continue
		}

		w.visited++
		if w.visited%yieldEvery == 0 {
			runtime.Gosched()
		}

		ext := strings.ToLower(filepath.Ext(path))
		if !w.cfg.accepts(ext, info.Size()) {
			continue
		}
		emit(canon, true, nil)
	}
	return nil
}

// resolveEntry stats entry, following a symlink only when cfg.FollowSymlinks
// is set. It returns (nil, _, nil) when the entry should be silently
// ignored (an unfollowed symlink).
func (w *walker) resolveEntry(path string, entry fs.DirEntry) (os.FileInfo, fs.FileMode, error) {
	if entry.Type()&os.ModeSymlink != 0 {
		if !w.cfg.FollowSymlinks {
			return nil, 0, nil
		}
		info, err := os.Stat(path) // Stat follows symlinks.
		if err != nil {
			return nil, 0, err
		}
		return info, info.Mode(), nil
	}
	info, err := entry.Info()
	if err != nil {
		return nil, 0, err
	}
	return info, info.Mode(), nil
}

func canonicalize(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", err
	}
	return resolved, nil
}
