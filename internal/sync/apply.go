package sync

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/DrTomLLC/StoryStream/internal/domain"
	"github.com/DrTomLLC/StoryStream/internal/errors"
	"github.com/DrTomLLC/StoryStream/internal/store"
)

// applier integrates one resolved ChangeRecord into the local catalog.
// Registered per domain.EntityKind; an entity with no applier is skipped
// with a logged warning rather than failing the whole batch, since a
// partial sync is still forward progress.
type applier func(ctx context.Context, s store.Store, rec *domain.ChangeRecord) error

var appliers = map[domain.EntityKind]applier{
	domain.EntityBook:     applyBook,
	domain.EntityBookmark: applyBookmark,
}

func applyBook(ctx context.Context, s store.Store, rec *domain.ChangeRecord) error {
	if rec.Op == domain.OpDelete {
		return s.DeleteBook(ctx, rec.EntityID)
	}
	var book domain.Book
	if err := json.Unmarshal(rec.Payload, &book); err != nil {
		return errors.Wrap(err, errors.CodeValidation, "sync: decode book payload")
	}
	if rec.Op == domain.OpInsert {
		return s.CreateBook(ctx, &book)
	}
	return s.UpdateBook(ctx, &book)
}

func applyBookmark(ctx context.Context, s store.Store, rec *domain.ChangeRecord) error {
	if rec.Op == domain.OpDelete {
		return s.DeleteBookmark(ctx, rec.EntityID)
	}
	var bookmark domain.Bookmark
	if err := json.Unmarshal(rec.Payload, &bookmark); err != nil {
		return errors.Wrap(err, errors.CodeValidation, "sync: decode bookmark payload")
	}
	if rec.Op == domain.OpInsert {
		return s.CreateBookmark(ctx, &bookmark)
	}
	return s.UpdateBookmark(ctx, &bookmark)
}

func apply(ctx context.Context, s store.Store, rec *domain.ChangeRecord) error {
	fn, ok := appliers[rec.EntityKind]
	if !ok {
		return fmt.Errorf("sync: no applier registered for entity kind %q", rec.EntityKind)
	}
	return fn(ctx, s, rec)
}
