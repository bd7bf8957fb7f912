// Package mdns provides mDNS/Zeroconf advertisement so peer StoryStream
// devices can discover a sync target on the local network without the
// operator typing an address in by hand.
//
// This implementation uses avahi's D-Bus API for robust service
// registration. Unlike spawning external processes or creating separate
// multicast sockets, D-Bus integration works WITH the system's mDNS
// infrastructure: clean registration/deregistration, no orphaned processes,
// no port conflicts with avahi-daemon.
//
// If avahi is unavailable (containers, cloud VMs), Start returns an error
// that callers should treat as non-fatal - sync still works if a peer's
// address is configured manually.
package mdns

import (
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/godbus/dbus/v5"
	"github.com/holoplot/go-avahi"
)

const (
	// ServiceType is the mDNS service type StoryStream devices advertise.
	ServiceType = "_storystream._tcp"

	// ProtocolVersion is the sync wire version advertised in TXT records.
	ProtocolVersion = "v1"
)

// Service manages mDNS advertisement for a StoryStream device via avahi
// D-Bus.
type Service struct {
	conn       *dbus.Conn
	server     *avahi.Server
	entryGroup *avahi.EntryGroup
	logger     *slog.Logger
	mu         sync.Mutex
}

// NewService creates a new mDNS service.
func NewService(logger *slog.Logger) *Service {
	return &Service{logger: logger}
}

// Start begins advertising this device's sync endpoint via mDNS. deviceID
// is the same identifier recorded on every ChangeRecord this device
// produces, so a peer that discovers it already knows who it's pairing
// with.
func (s *Service) Start(deviceID string, port int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopLocked()

	conn, err := dbus.SystemBus()
	if err != nil {
		return fmt.Errorf("connect to system D-Bus: %w", err)
	}
	s.conn = conn

	server, err := avahi.ServerNew(conn)
	if err != nil {
		s.conn.Close()
		s.conn = nil
		return fmt.Errorf("connect to avahi: %w", err)
	}
	s.server = server

	entryGroup, err := server.EntryGroupNew()
	if err != nil {
		s.cleanup()
		return fmt.Errorf("create entry group: %w", err)
	}
	s.entryGroup = entryGroup

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "storystream"
	}

	txtRecords := [][]byte{
		[]byte("device_id=" + deviceID),
		[]byte("sync=" + ProtocolVersion),
	}

	err = entryGroup.AddService(
		avahi.InterfaceUnspec,
		avahi.ProtoUnspec,
		0,
		hostname,
		ServiceType,
		"local",
		"",
		uint16(port),
		txtRecords,
	)
	if err != nil {
		s.cleanup()
		return fmt.Errorf("add service: %w", err)
	}

	if err := entryGroup.Commit(); err != nil {
		s.cleanup()
		return fmt.Errorf("commit entry group: %w", err)
	}

	s.logger.Info("mDNS advertisement started",
		"service", ServiceType, "port", port, "device_id", deviceID, "method", "avahi-dbus")
	return nil
}

// Stop stops mDNS advertising and deregisters the service. Safe to call
// multiple times or if not started.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

func (s *Service) stopLocked() {
	if s.entryGroup != nil || s.conn != nil {
		s.cleanup()
		s.logger.Info("mDNS advertisement stopped")
	}
}

func (s *Service) cleanup() {
	if s.entryGroup != nil && s.server != nil {
		s.server.EntryGroupFree(s.entryGroup)
		s.entryGroup = nil
	}
	s.server = nil
	if s.conn != nil {
		_ = s.conn.Close()
		s.conn = nil
	}
}

// Running returns true if mDNS is currently advertising.
func (s *Service) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.entryGroup != nil
}
