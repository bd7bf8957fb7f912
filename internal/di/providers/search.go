package providers

import (
	"github.com/samber/do/v2"

	"github.com/DrTomLLC/StoryStream/internal/config"
	"github.com/DrTomLLC/StoryStream/internal/logger"
	"github.com/DrTomLLC/StoryStream/internal/search"
)

// SearchIndexHandle wraps the bleve-backed search index for do lifecycle
// management.
type SearchIndexHandle struct {
	*search.Index
}

// Shutdown implements do.Shutdownable.
func (h *SearchIndexHandle) Shutdown() error { return h.Close() }

// ProvideSearchIndex opens the full-text index and wires it into the store
// so every committed book mutation stays reflected in it.
func ProvideSearchIndex(i do.Injector) (*SearchIndexHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	st := do.MustInvoke[*StoreHandle](i)

	idx, err := search.Open(search.Options{DataPath: cfg.Metadata.BasePath, Logger: log.Logger})
	if err != nil {
		return nil, err
	}
	st.SetSearchIndexer(idx)
	return &SearchIndexHandle{Index: idx}, nil
}
