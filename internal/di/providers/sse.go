package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/DrTomLLC/StoryStream/internal/logger"
	"github.com/DrTomLLC/StoryStream/internal/sse"
)

// SSEManagerHandle wraps sse.Manager with the cancel func for its background
// broadcast loop.
type SSEManagerHandle struct {
	*sse.Manager
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (h *SSEManagerHandle) Shutdown() error {
	h.cancel()
	return h.Manager.Shutdown(context.Background())
}

// ProvideSSEManager starts the broadcast loop in the background and returns
// a handle for emitting progress events from the other engines.
func ProvideSSEManager(i do.Injector) (*SSEManagerHandle, error) {
	log := do.MustInvoke[*logger.Logger](i)
	manager := sse.NewManager(log.Logger)

	ctx, cancel := context.WithCancel(context.Background())
	go manager.Start(ctx)

	return &SSEManagerHandle{Manager: manager, cancel: cancel}, nil
}
