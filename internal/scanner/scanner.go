package scanner

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// Scanner enumerates a set of filesystem roots and, once started, watches
// them for changes. It is the C3 component of SPEC_FULL.md's core: the
// contract, event set, and enumeration/watching policy are spec.md §4.3
// verbatim.
type Scanner struct {
	cfg    Config
	logger *slog.Logger

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewScanner constructs a Scanner over cfg. cfg is not mutated.
func NewScanner(cfg Config, logger *slog.Logger) *Scanner {
	return &Scanner{cfg: cfg, logger: logger}
}

// Scan performs a one-shot enumeration of the scanner's roots, returning
// every accepted path in unspecified order. It does not require Start to
// have been called, and has no effect on watch state.
func (s *Scanner) Scan(ctx context.Context) ([]string, error) {
	w := newWalker(s.cfg, s.logger)
	var paths []string
	var errs []error
	err := w.walk(ctx, func(path string, ok bool, walkErr error) {
		if ok {
			paths = append(paths, path)
			return
		}
		errs = append(errs, walkErr)
	})
	if err != nil {
		return nil, err
	}
	if len(errs) > 0 {
		s.logger.Warn("scanner: scan completed with per-entry errors", "count", len(errs))
	}
	return paths, nil
}

// Start begins watching the scanner's roots and returns the event stream.
// A second Start before Stop returns an error rather than silently
// no-oping, per spec.md §4.3's "Concurrent start" rule.
func (s *Scanner) Start(ctx context.Context) (<-chan Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return nil, fmt.Errorf("scanner: already running")
	}

	events := make(chan Event, 64)
	emit := func(ev Event) {
		select {
		case events <- ev:
		case <-ctx.Done():
		}
	}

	backend, err := newWatchBackend(s.cfg, s.logger, emit)
	if err != nil {
		close(events)
		return nil, fmt.Errorf("scanner: start watch backend: %w", err)
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.running = true
	s.done = make(chan struct{})

	// Baseline enumeration happens before the backend starts draining raw
	// events, so every currently-present file is reported as FileAdded
	// exactly once even if a watch event races it.
	baseline, scanErr := s.Scan(runCtx)

	go func() {
		defer close(s.done)
		defer close(events)
		defer backend.close()

		if scanErr != nil {
			emit(Event{Kind: ScanError, Reason: scanErr})
		} else {
			for _, path := range baseline {
				emit(Event{Kind: FileAdded, Path: path})
			}
			emit(Event{Kind: ScanCompleted, Count: len(baseline)})
		}

		if err := backend.addRoots(); err != nil {
			emit(Event{Kind: ScanError, Reason: err})
			return
		}
		backend.run(runCtx)
	}()

	return events, nil
}

// Stop ceases watching and releases OS handles. It blocks until the
// backend goroutine has exited. Calling Stop when not running is a no-op.
func (s *Scanner) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	cancel := s.cancel
	done := s.done
	s.running = false
	s.mu.Unlock()

	cancel()
	<-done
	return nil
}
