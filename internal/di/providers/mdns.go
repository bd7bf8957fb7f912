package providers

import (
	"fmt"

	"github.com/samber/do/v2"

	"github.com/DrTomLLC/StoryStream/internal/config"
	"github.com/DrTomLLC/StoryStream/internal/logger"
	"github.com/DrTomLLC/StoryStream/internal/mdns"
)

// MDNSServiceHandle wraps mdns.Service with do.Shutdownable.
type MDNSServiceHandle struct {
	*mdns.Service
	started bool
}

// Shutdown implements do.Shutdownable.
func (h *MDNSServiceHandle) Shutdown() error {
	if h.started && h.Service != nil {
		h.Stop()
	}
	return nil
}

// ProvideMDNSService advertises this device's sync endpoint over mDNS so a
// peer on the local network can discover it without a manually-entered
// address. Unavailable avahi (containers, cloud VMs) is logged and
// downgrades to a no-op handle rather than failing bootstrap.
func ProvideMDNSService(i do.Injector) (*MDNSServiceHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if !cfg.Server.AdvertiseMDNS {
		log.Info("mDNS advertisement disabled by configuration")
		return &MDNSServiceHandle{Service: nil, started: false}, nil
	}

	deviceID := cfg.Sync.DeviceID
	if deviceID == "" {
		deviceID = "local"
	}

	port := 8080
	if _, err := fmt.Sscanf(cfg.Server.Port, "%d", &port); err != nil {
		log.Warn("failed to parse server port for mDNS, using default", "port", cfg.Server.Port)
	}

	svc := mdns.NewService(log.Logger)
	if err := svc.Start(deviceID, port); err != nil {
		log.Warn("mDNS advertisement unavailable", "error", err)
		return &MDNSServiceHandle{Service: svc, started: false}, nil
	}
	return &MDNSServiceHandle{Service: svc, started: true}, nil
}
