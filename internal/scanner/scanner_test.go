package scanner

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// TestScanner_Scan covers spec.md §8 boundary scenario 3: a mixed tree
// filtered by extension_set and min_file_size.
func TestScanner_Scan(t *testing.T) {
	root := t.TempDir()
	mustWrite(t, filepath.Join(root, "a.mp3"), 2*1024)
	mustWrite(t, filepath.Join(root, "b.mp3"), 100)
	mustWrite(t, filepath.Join(root, "c.txt"), 2*1024)
	if err := os.Mkdir(filepath.Join(root, "sub"), 0o755); err != nil {
		t.Fatal(err)
	}
	mustWrite(t, filepath.Join(root, "sub", "d.FLAC"), 2*1024)

	cfg := Config{
		Roots:       []string{root},
		MinFileSize: 1024,
		ExtensionSet: map[string]bool{
			".mp3":  true,
			".flac": true,
		},
	}
	s := NewScanner(cfg, testLogger())

	got, err := s.Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}

	want := []string{
		mustCanon(t, filepath.Join(root, "a.mp3")),
		mustCanon(t, filepath.Join(root, "sub", "d.FLAC")),
	}
	sort.Strings(got)
	sort.Strings(want)
	if len(got) != len(want) {
		t.Fatalf("Scan() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Scan()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestScanner_ScanRespectsMaxDepth(t *testing.T) {
	root := t.TempDir()
	deep := filepath.Join(root, "a", "b", "c")
	if err := os.MkdirAll(deep, 0o755); err != nil {
		t.Fatal(err)
	}
	mustWrite(t, filepath.Join(deep, "buried.mp3"), 10)

	cfg := Config{
		Roots:        []string{root},
		MaxDepth:     1,
		ExtensionSet: map[string]bool{".mp3": true},
	}
	s := NewScanner(cfg, testLogger())

	got, err := s.Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Scan() with MaxDepth=1 found %v, want none", got)
	}
}

func TestScanner_ConcurrentStartIsError(t *testing.T) {
	root := t.TempDir()
	cfg := Config{Roots: []string{root}, ExtensionSet: map[string]bool{".mp3": true}}
	s := NewScanner(cfg, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if _, err := s.Start(ctx); err != nil {
		t.Fatalf("first Start: %v", err)
	}
	defer s.Stop()

	if _, err := s.Start(ctx); err == nil {
		t.Error("second Start before Stop: want error, got nil")
	}
}

func TestScanner_StartEmitsAddedThenCompleted(t *testing.T) {
	root := t.TempDir()
	mustWrite(t, filepath.Join(root, "a.mp3"), 10)

	cfg := Config{
		Roots:        []string{root},
		ExtensionSet: map[string]bool{".mp3": true},
		DebounceMS:   20,
	}
	s := NewScanner(cfg, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, err := s.Start(ctx)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer s.Stop()

	var sawAdded, sawCompleted bool
	deadline := time.After(2 * time.Second)
	for !sawCompleted {
		select {
		case ev := <-events:
			switch ev.Kind {
			case FileAdded:
				sawAdded = true
			case ScanCompleted:
				sawCompleted = true
			}
		case <-deadline:
			t.Fatal("timed out waiting for ScanCompleted")
		}
	}
	if !sawAdded {
		t.Error("expected a FileAdded event before ScanCompleted")
	}
}

func mustWrite(t *testing.T, path string, size int) {
	t.Helper()
	if err := os.WriteFile(path, make([]byte, size), 0o644); err != nil {
		t.Fatal(err)
	}
}

func mustCanon(t *testing.T, path string) string {
	t.Helper()
	c, err := canonicalize(path)
	if err != nil {
		t.Fatal(err)
	}
	return c
}
