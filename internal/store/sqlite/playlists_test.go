package sqlite

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/DrTomLLC/StoryStream/internal/domain"
	"github.com/DrTomLLC/StoryStream/internal/store"
)

func newTestPlaylist(id, name string) *domain.Playlist {
	now := time.Now()
	return &domain.Playlist{
		Syncable: domain.Syncable{CreatedAt: now, UpdatedAt: now},
		ID:       id,
		Name:     name,
		BookIDs:  []string{"book-1", "book-2"},
	}
}

func TestPlaylists_CreateGetUpdateDelete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	p := newTestPlaylist("pl-1", "Road Trip")
	if err := s.CreatePlaylist(ctx, p); err != nil {
		t.Fatalf("create playlist: %v", err)
	}

	got, err := s.GetPlaylist(ctx, "pl-1")
	if err != nil {
		t.Fatalf("get playlist: %v", err)
	}
	if got.Name != "Road Trip" || len(got.BookIDs) != 2 {
		t.Errorf("unexpected playlist: %+v", got)
	}

	got.Name = "Summer Road Trip"
	if err := s.UpdatePlaylist(ctx, got); err != nil {
		t.Fatalf("update playlist: %v", err)
	}

	updated, err := s.GetPlaylist(ctx, "pl-1")
	if err != nil {
		t.Fatalf("get updated playlist: %v", err)
	}
	if updated.Name != "Summer Road Trip" {
		t.Errorf("expected updated name, got %q", updated.Name)
	}

	if err := s.DeletePlaylist(ctx, "pl-1"); err != nil {
		t.Fatalf("delete playlist: %v", err)
	}
	if _, err := s.GetPlaylist(ctx, "pl-1"); err != store.ErrPlaylistNotFound {
		t.Errorf("expected ErrPlaylistNotFound, got %v", err)
	}
}

func TestPlaylists_SmartCriteriaRoundTripsOpaque(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	p := newTestPlaylist("pl-smart", "Unfinished Fantasy")
	p.Smart = true
	p.Criteria = json.RawMessage(`{"genre":"fantasy","finished":false}`)
	if err := s.CreatePlaylist(ctx, p); err != nil {
		t.Fatalf("create playlist: %v", err)
	}

	got, err := s.GetPlaylist(ctx, "pl-smart")
	if err != nil {
		t.Fatalf("get playlist: %v", err)
	}
	if !got.Smart || string(got.Criteria) != `{"genre":"fantasy","finished":false}` {
		t.Errorf("smart criteria not round-tripped opaquely: %+v", got)
	}
}

func TestListPlaylists_OrderedByName(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.CreatePlaylist(ctx, newTestPlaylist("pl-b", "Zebra")); err != nil {
		t.Fatalf("create zebra: %v", err)
	}
	if err := s.CreatePlaylist(ctx, newTestPlaylist("pl-a", "Apple")); err != nil {
		t.Fatalf("create apple: %v", err)
	}

	list, err := s.ListPlaylists(ctx)
	if err != nil {
		t.Fatalf("list playlists: %v", err)
	}
	if len(list) != 2 || list[0].Name != "Apple" || list[1].Name != "Zebra" {
		t.Errorf("expected playlists ordered by name, got %+v", list)
	}
}
