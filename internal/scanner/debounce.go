package scanner

import (
	"os"
	"sync"
	"time"
)

// debouncer coalesces raw per-path filesystem notifications into a single
// scanner Event per settling window, per spec.md §4.3's "Watching" policy.
// A removed file's absence is confirmed by a stat after the window closes;
// if the path exists again by then the event downgrades to FileModified.
type debouncer struct {
	window time.Duration
	emit   func(Event)

	mu      sync.Mutex
	pending map[string]EventKind
	timers  map[string]*time.Timer
}

func newDebouncer(window time.Duration, emit func(Event)) *debouncer {
	return &debouncer{
		window:  window,
		emit:    emit,
		pending: make(map[string]EventKind),
		timers:  make(map[string]*time.Timer),
	}
}

// notify records a raw observation for path. FileAdded is sticky within a
// window: a Create immediately followed by Write is still one FileAdded,
// not a FileAdded-then-FileModified pair.
func (d *debouncer) notify(path string, kind EventKind) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if existing, ok := d.pending[path]; ok && existing == FileAdded {
		kind = FileAdded
	}
	d.pending[path] = kind

	if t, ok := d.timers[path]; ok {
		t.Reset(d.window)
		return
	}
	d.timers[path] = time.AfterFunc(d.window, func() { d.fire(path) })
}

func (d *debouncer) fire(path string) {
	d.mu.Lock()
	kind, ok := d.pending[path]
	delete(d.pending, path)
	delete(d.timers, path)
	d.mu.Unlock()
	if !ok {
		return
	}

	if kind == FileRemoved {
		if _, err := os.Stat(path); err == nil {
			kind = FileModified
		}
	}
	d.emit(Event{Kind: kind, Path: path})
}

// stop cancels every pending timer without firing it. Used on Scanner.Stop.
func (d *debouncer) stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for path, t := range d.timers {
		t.Stop()
		delete(d.timers, path)
		delete(d.pending, path)
	}
}
