// Package download implements the C5 download manager from spec.md §4.5: a
// priority queue of byte-range downloads bounded by max_concurrent, run
// against a single global token-bucket bandwidth cap, with resumability
// checkpointed through C6 (internal/resume).
package download

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/DrTomLLC/StoryStream/internal/domain"
	"github.com/DrTomLLC/StoryStream/internal/resume"
)

// ProgressFunc receives the task itself; its BytesDownloaded and TotalBytes
// (nil when unknown) carry the progress. While a task streams it is invoked
// at most once every progressInterval, plus once when the task pauses or
// reaches a terminal state.
type ProgressFunc func(task *domain.DownloadTask)

// Config controls the manager's scheduling and throttling behavior; see
// spec.md §6 "download.*".
type Config struct {
	MaxConcurrent    int
	BandwidthLimit   int64 // bytes/sec, 0 = unlimited
	BurstBytes       int64
	RetryMaxAttempts int
}

const (
	progressInterval  = 100 * time.Millisecond
	checkpointEvery   = 64 * 1024
	defaultRetryMax   = 5
	defaultBackoffBas = 500 * time.Millisecond
)

// Manager schedules and executes DownloadTasks. One Manager owns one
// bandwidth limiter and one bounded pool of concurrent workers.
type Manager struct {
	cfg     Config
	client  *http.Client
	resume  *resume.Store
	logger  *slog.Logger
	limiter *rate.Limiter

	mu      sync.Mutex
	queue   *taskQueue
	running map[string]*runningTask
	onEvent ProgressFunc

	wakeup  chan struct{}
	cancel  context.CancelFunc
	done    chan struct{}
	started bool
}

type runningTask struct {
	task   *domain.DownloadTask
	cancel context.CancelFunc
	paused chan struct{} // closed to signal pause; recreated on resume
}

// NewManager constructs a Manager. client may be nil to use a default
// *http.Client; store is C6's resume checkpoint store.
func NewManager(cfg Config, client *http.Client, store *resume.Store, logger *slog.Logger, onEvent ProgressFunc) *Manager {
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = 3
	}
	if cfg.RetryMaxAttempts <= 0 {
		cfg.RetryMaxAttempts = defaultRetryMax
	}
	if client == nil {
		client = &http.Client{}
	}
	if onEvent == nil {
		onEvent = func(*domain.DownloadTask) {}
	}
	return &Manager{
		cfg:     cfg,
		client:  client,
		resume:  store,
		logger:  logger,
		limiter: newLimiter(cfg.BandwidthLimit, cfg.BurstBytes),
		queue:   newTaskQueue(),
		running: make(map[string]*runningTask),
		onEvent: onEvent,
		wakeup:  make(chan struct{}, 1),
	}
}

// Start begins draining the queue. Calling Start twice before Stop is an
// error, mirroring C3's concurrent-start rule.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.started {
		m.mu.Unlock()
		return fmt.Errorf("download: manager already started")
	}
	runCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.done = make(chan struct{})
	m.started = true
	m.mu.Unlock()

	go m.loop(runCtx)
	return nil
}

// Stop cancels every running task and halts the scheduler loop.
func (m *Manager) Stop() {
	m.mu.Lock()
	if !m.started {
		m.mu.Unlock()
		return
	}
	cancel := m.cancel
	done := m.done
	m.started = false
	m.mu.Unlock()

	cancel()
	<-done
}

// Submit enqueues a new task and returns its id. The task enters Queued
// state immediately.
func (m *Manager) Submit(task *domain.DownloadTask) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	task.State = domain.DownloadQueued
	m.queue.push(task)
	m.nudge()
	return task.ID
}

// Get returns a snapshot of a task's current state, whether queued or
// running.
func (m *Manager) Get(id string) (*domain.DownloadTask, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if rt, ok := m.running[id]; ok {
		return rt.task, nil
	}
	if t, ok := m.queue.get(id); ok {
		return t, nil
	}
	return nil, ErrNotFound
}

// Pause stops a running task's read loop at the next chunk boundary,
// leaving the partial file and C6 checkpoint intact. Pausing a queued task
// (not yet running) is a no-op beyond marking it Paused so it's skipped when
// popped.
func (m *Manager) Pause(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if rt, ok := m.running[id]; ok {
		rt.task.State = domain.DownloadPaused
		close(rt.paused)
		return nil
	}
	if t, ok := m.queue.get(id); ok {
		t.State = domain.DownloadPaused
		return nil
	}
	return ErrNotFound
}

// Resume re-queues a paused task at its original priority.
func (m *Manager) Resume(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.queue.get(id); ok {
		if t.State == domain.DownloadPaused {
			t.State = domain.DownloadQueued
			m.nudge()
		}
		return nil
	}
	return ErrNotFound
}

// Cancel stops a task's loop (if running), removes its partial file and C6
// record, and discards it from the queue (if queued).
func (m *Manager) Cancel(ctx context.Context, id string) error {
	m.mu.Lock()
	rt, running := m.running[id]
	var task *domain.DownloadTask
	if running {
		task = rt.task
		rt.cancel()
	}
	if queuedTask, queued := m.queue.remove(id); queued {
		task = queuedTask
	}
	m.mu.Unlock()

	if task == nil {
		return ErrNotFound
	}
	task.State = domain.DownloadCancelled
	cleanupPartial(task)
	if m.resume != nil {
		_ = m.resume.Clear(ctx, task.SourceURL)
	}
	return nil
}

func (m *Manager) nudge() {
	select {
	case m.wakeup <- struct{}{}:
	default:
	}
}

// loop is the scheduler: it pops the highest-priority queued task whenever a
// worker slot is free, and runs it in its own goroutine.
func (m *Manager) loop(ctx context.Context) {
	defer close(m.done)

	var wg sync.WaitGroup
	defer wg.Wait()

	for {
		m.mu.Lock()
		var held []*domain.DownloadTask
		for m.queue.len() > 0 && len(m.running) < m.cfg.MaxConcurrent {
			t := m.queue.pop()
			if t.State == domain.DownloadPaused {
				// Caller paused it before it ran: keep it out of this
				// dispatch round but don't lose it from the queue.
				held = append(held, t)
				continue
			}
			taskCtx, cancel := context.WithCancel(ctx)
			rt := &runningTask{task: t, cancel: cancel, paused: make(chan struct{})}
			m.running[t.ID] = rt
			wg.Add(1)
			go func() {
				defer wg.Done()
				m.runTask(taskCtx, rt)
				m.mu.Lock()
				delete(m.running, t.ID)
				if t.State == domain.DownloadPaused {
					// Paused mid-stream: keep it queued so Resume can find it.
					m.queue.push(t)
				}
				m.mu.Unlock()
				m.nudge()
			}()
		}
		for _, t := range held {
			m.queue.push(t)
		}
		m.mu.Unlock()

		select {
		case <-ctx.Done():
			return
		case <-m.wakeup:
		case <-time.After(time.Second):
		}
	}
}
