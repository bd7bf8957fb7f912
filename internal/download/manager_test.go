package download

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/DrTomLLC/StoryStream/internal/domain"
	"github.com/DrTomLLC/StoryStream/internal/resume"
)

func newTestResumeStore(t *testing.T) *resume.Store {
	t.Helper()
	dir := t.TempDir()
	s, err := resume.Open(filepath.Join(dir, "resume.db"), nil)
	if err != nil {
		t.Fatalf("open resume store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// waitForState polls until t reaches one of the wanted terminal states or
// the timeout elapses.
func waitForState(t *testing.T, m *Manager, id string, timeout time.Duration, want ...domain.DownloadState) *domain.DownloadTask {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		task, err := m.Get(id)
		if err != nil {
			time.Sleep(5 * time.Millisecond)
			continue
		}
		for _, w := range want {
			if task.State == w {
				return task
			}
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("task %s did not reach state %v in time", id, want)
	return nil
}

func rangeServer(t *testing.T, body []byte) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("ETag", `"fixed-etag"`)
		rangeHeader := r.Header.Get("Range")
		if rangeHeader == "" {
			w.Header().Set("Content-Length", fmt.Sprintf("%d", len(body)))
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write(body)
			return
		}
		var start int
		if _, err := fmt.Sscanf(rangeHeader, "bytes=%d-", &start); err != nil || start >= len(body) {
			w.WriteHeader(http.StatusRequestedRangeNotSatisfiable)
			return
		}
		w.Header().Set("Content-Length", fmt.Sprintf("%d", len(body)-start))
		w.WriteHeader(http.StatusPartialContent)
		_, _ = w.Write(body[start:])
	}))
}

func TestManager_DownloadsToCompletion(t *testing.T) {
	body := []byte(strings.Repeat("storystream-audio-chunk-", 2000))
	srv := rangeServer(t, body)
	defer srv.Close()

	dir := t.TempDir()
	dest := filepath.Join(dir, "book.mp3")

	var events int32
	m := NewManager(Config{MaxConcurrent: 2, RetryMaxAttempts: 3}, srv.Client(), newTestResumeStore(t), nil, func(*domain.DownloadTask) {
		atomic.AddInt32(&events, 1)
	})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := m.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer m.Stop()

	task := domain.NewDownloadTask("t1", srv.URL, dest, domain.PriorityNormal, 1)
	m.Submit(task)

	final := waitForState(t, m, "t1", 5*time.Second, domain.DownloadComplete, domain.DownloadFailed)
	if final.State != domain.DownloadComplete {
		t.Fatalf("expected Complete, got %s (%s)", final.State, final.FailureReason)
	}
	if final.BytesDownloaded != int64(len(body)) {
		t.Fatalf("expected %d bytes, got %d", len(body), final.BytesDownloaded)
	}

	got, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("read dest: %v", err)
	}
	if string(got) != string(body) {
		t.Fatalf("downloaded content mismatch")
	}
	if atomic.LoadInt32(&events) == 0 {
		t.Fatalf("expected at least one progress callback")
	}
}

// TestManager_PriorityOrdering holds the single worker slot busy on a
// blocked request so the scheduler is forced to choose between the two
// tasks still sitting in the queue, then asserts it picks the high-priority
// one despite having been submitted second.
func TestManager_PriorityOrdering(t *testing.T) {
	holdFirst := make(chan struct{})
	release := make(chan struct{})
	var firstServed atomic.Bool

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if firstServed.CompareAndSwap(false, true) {
			close(holdFirst)
			<-release
		}
		w.Header().Set("Content-Length", "4")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("done"))
	}))
	defer srv.Close()

	dir := t.TempDir()

	var mu sync.Mutex
	var order []string
	m := NewManager(Config{MaxConcurrent: 1, RetryMaxAttempts: 2}, srv.Client(), newTestResumeStore(t), nil, func(task *domain.DownloadTask) {
		if task.State != domain.DownloadComplete {
			return
		}
		mu.Lock()
		order = append(order, task.ID)
		mu.Unlock()
	})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := m.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer m.Stop()

	holder := domain.NewDownloadTask("holder", srv.URL, filepath.Join(dir, "holder.bin"), domain.PriorityNormal, 1)
	m.Submit(holder)
	<-holdFirst // the only worker slot is now occupied, blocked mid-request

	low := domain.NewDownloadTask("low", srv.URL, filepath.Join(dir, "low.bin"), domain.PriorityLow, 2)
	high := domain.NewDownloadTask("high", srv.URL, filepath.Join(dir, "high.bin"), domain.PriorityHigh, 3)
	m.Submit(low)
	m.Submit(high)

	close(release)

	waitForState(t, m, "holder", 5*time.Second, domain.DownloadComplete, domain.DownloadFailed)
	waitForState(t, m, "low", 5*time.Second, domain.DownloadComplete, domain.DownloadFailed)
	waitForState(t, m, "high", 5*time.Second, domain.DownloadComplete, domain.DownloadFailed)

	mu.Lock()
	defer mu.Unlock()
	if len(order) != 3 || order[0] != "holder" || order[1] != "high" || order[2] != "low" {
		t.Fatalf("expected holder then high then low, got %v", order)
	}
}

func TestManager_CancelRemovesPartialFile(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "1048576")
		w.WriteHeader(http.StatusOK)
		buf := make([]byte, 4096)
		for {
			select {
			case <-block:
				return
			default:
			}
			if _, err := w.Write(buf); err != nil {
				return
			}
			if f, ok := w.(http.Flusher); ok {
				f.Flush()
			}
			time.Sleep(5 * time.Millisecond)
		}
	}))
	defer srv.Close()
	defer close(block)

	dir := t.TempDir()
	dest := filepath.Join(dir, "cancelme.bin")

	m := NewManager(Config{MaxConcurrent: 1, RetryMaxAttempts: 2}, srv.Client(), newTestResumeStore(t), nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := m.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer m.Stop()

	task := domain.NewDownloadTask("cancel1", srv.URL, dest, domain.PriorityNormal, 1)
	m.Submit(task)

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if got, _ := m.Get("cancel1"); got != nil && got.State == domain.DownloadRunning {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}

	if err := m.Cancel(context.Background(), "cancel1"); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	waitForState(t, m, "cancel1", 2*time.Second, domain.DownloadCancelled)

	if _, err := os.Stat(dest); !os.IsNotExist(err) {
		t.Fatalf("expected partial file to be removed, stat err = %v", err)
	}
}

func TestManager_GetUnknownReturnsErrNotFound(t *testing.T) {
	m := NewManager(Config{MaxConcurrent: 1}, nil, newTestResumeStore(t), nil, nil)
	if _, err := m.Get("missing"); err == nil {
		t.Fatalf("expected error for unknown id")
	}
}
