package sqlite

import (
	"context"
	"testing"

	"github.com/DrTomLLC/StoryStream/internal/domain"
	"github.com/DrTomLLC/StoryStream/internal/store"
)

func TestPlaybackState_UpsertGet(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	book := newTestBook("book-1", "/library/way-of-kings")
	if err := s.CreateBook(ctx, book); err != nil {
		t.Fatalf("create book: %v", err)
	}

	st := domain.NewPlaybackState("book-1", 80, 1.25)
	st.Seek(12000, book.TotalDurationMs)
	st.Playing = true
	if err := s.UpsertPlaybackState(ctx, st); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	got, err := s.GetPlaybackState(ctx, "book-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.PositionMs != 12000 || got.Speed != 1.25 || got.Volume != 80 || !got.Playing {
		t.Errorf("unexpected state: %+v", got)
	}
}

func TestPlaybackState_UpsertIsIdempotentOnConflict(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	book := newTestBook("book-1", "/library/way-of-kings")
	if err := s.CreateBook(ctx, book); err != nil {
		t.Fatalf("create book: %v", err)
	}

	st := domain.NewPlaybackState("book-1", 50, 1.0)
	if err := s.UpsertPlaybackState(ctx, st); err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	st.SetVolume(90)
	if err := s.UpsertPlaybackState(ctx, st); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	got, err := s.GetPlaybackState(ctx, "book-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Volume != 90 {
		t.Errorf("expected volume 90 after re-upsert, got %d", got.Volume)
	}
}

func TestPlaybackState_WithSleepTimer(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	book := newTestBook("book-1", "/library/way-of-kings")
	if err := s.CreateBook(ctx, book); err != nil {
		t.Fatalf("create book: %v", err)
	}

	st := domain.NewPlaybackState("book-1", 50, 1.0)
	st.SleepTimer = &domain.SleepTimer{FadeOutMs: 5000, EndOfChapter: true}
	if err := s.UpsertPlaybackState(ctx, st); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	got, err := s.GetPlaybackState(ctx, "book-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.SleepTimer == nil || got.SleepTimer.FadeOutMs != 5000 || !got.SleepTimer.EndOfChapter {
		t.Errorf("sleep timer not round-tripped: %+v", got.SleepTimer)
	}
}

func TestGetPlaybackState_NotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetPlaybackState(context.Background(), "missing")
	if err != store.ErrPlaybackStateNotFound {
		t.Errorf("expected ErrPlaybackStateNotFound, got %v", err)
	}
}

func TestRecentlyPlayed_OrderedByUpdatedAtDesc(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"book-1", "book-2"} {
		book := newTestBook(id, "/library/"+id)
		if err := s.CreateBook(ctx, book); err != nil {
			t.Fatalf("create book %s: %v", id, err)
		}
	}

	st1 := domain.NewPlaybackState("book-1", 50, 1.0)
	if err := s.UpsertPlaybackState(ctx, st1); err != nil {
		t.Fatalf("upsert book-1: %v", err)
	}
	st2 := domain.NewPlaybackState("book-2", 50, 1.0)
	st2.Touch()
	if err := s.UpsertPlaybackState(ctx, st2); err != nil {
		t.Fatalf("upsert book-2: %v", err)
	}

	recent, err := s.RecentlyPlayed(ctx, 10)
	if err != nil {
		t.Fatalf("recently played: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(recent))
	}
}
