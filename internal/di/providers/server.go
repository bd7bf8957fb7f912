package providers

import (
	"github.com/samber/do/v2"

	"github.com/DrTomLLC/StoryStream/internal/api"
	"github.com/DrTomLLC/StoryStream/internal/changelog"
	"github.com/DrTomLLC/StoryStream/internal/importer"
	"github.com/DrTomLLC/StoryStream/internal/logger"
	"github.com/DrTomLLC/StoryStream/internal/media/images"
	"github.com/DrTomLLC/StoryStream/internal/pairing"
	"github.com/DrTomLLC/StoryStream/internal/scanner"
	"github.com/DrTomLLC/StoryStream/internal/sync"
)

// ProvideAPIServer wires every core engine into the thin control-surface
// HTTP server.
func ProvideAPIServer(i do.Injector) (*api.Server, error) {
	st := do.MustInvoke[*StoreHandle](i)
	sc := do.MustInvoke[*scanner.Scanner](i)
	imp := do.MustInvoke[*importer.Importer](i)
	dl := do.MustInvoke[*DownloadManagerHandle](i)
	se := do.MustInvoke[*sync.Engine](i)
	cl := do.MustInvoke[*changelog.Log](i)
	idx := do.MustInvoke[*SearchIndexHandle](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	covers := do.MustInvoke[*images.Storage](i)
	log := do.MustInvoke[*logger.Logger](i)
	pairingSvc := do.MustInvoke[*pairing.Service](i)

	return api.NewServer(api.Deps{
		Store:        st,
		Scanner:      sc,
		Importer:     imp,
		Downloads:    dl.Manager,
		SyncEngine:   se,
		Changelog:    cl,
		SearchIndex:  idx.Index,
		SSEManager:   sseHandle.Manager,
		CoverStorage: covers,
		Pairing:      pairingSvc,
		Logger:       log.Logger,
	}), nil
}
