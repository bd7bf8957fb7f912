package sse

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/DrTomLLC/StoryStream/internal/id"
)

// Client is a single connected SSE listener.
type Client struct {
	ID          string
	EventChan   chan Event
	Done        chan struct{}
	ConnectedAt time.Time
}

// Manager fans a single event stream out to every connected client. Unlike
// the teacher's multi-user Manager, there is no per-client filtering: this
// is a single-operator local-first process, every client sees every event.
type Manager struct {
	logger            *slog.Logger
	heartbeatInterval time.Duration

	mu      sync.RWMutex
	clients map[string]*Client
	events  chan Event

	shutdownMu sync.RWMutex
	shutdown   bool
	wg         sync.WaitGroup
}

// NewManager constructs a Manager. Call Start once at startup.
func NewManager(logger *slog.Logger) *Manager {
	return &Manager{
		logger:            logger,
		heartbeatInterval: 30 * time.Second,
		clients:           make(map[string]*Client),
		events:            make(chan Event, 1000),
	}
}

// Start runs the broadcast loop until ctx is cancelled.
func (m *Manager) Start(ctx context.Context) {
	m.wg.Add(1)
	defer m.wg.Done()

	ticker := time.NewTicker(m.heartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case event := <-m.events:
			m.broadcast(event)
		case <-ticker.C:
			m.broadcast(NewHeartbeatEvent())
		case <-ctx.Done():
			m.closeAllClients()
			return
		}
	}
}

// Shutdown drains queued events (bounded by ctx) and closes all clients.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.shutdownMu.Lock()
	m.shutdown = true
	close(m.events)
	m.shutdownMu.Unlock()

	done := make(chan struct{})
	go func() {
		for event := range m.events {
			m.broadcast(event)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		m.logger.Warn("sse: shutdown drain timed out, some events may be lost")
	}

	m.wg.Wait()
	return nil
}

func (m *Manager) broadcast(event Event) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var delivered, dropped int
	for _, client := range m.clients {
		select {
		case client.EventChan <- event:
			delivered++
		default:
			dropped++
		}
	}
	if event.Type != EventHeartbeat && dropped > 0 {
		m.logger.Warn("sse: dropped event for slow client", "event_type", event.Type, "dropped", dropped, "delivered", delivered)
	}
}

// Connect registers a new client.
func (m *Manager) Connect() (*Client, error) {
	clientID, err := id.Generate("sse")
	if err != nil {
		return nil, err
	}
	client := &Client{
		ID:          clientID,
		EventChan:   make(chan Event, 100),
		Done:        make(chan struct{}),
		ConnectedAt: time.Now(),
	}

	m.mu.Lock()
	m.clients[client.ID] = client
	m.mu.Unlock()
	return client, nil
}

// Disconnect removes a client and closes its channels.
func (m *Manager) Disconnect(clientID string) {
	m.mu.Lock()
	client, ok := m.clients[clientID]
	if ok {
		delete(m.clients, clientID)
	}
	m.mu.Unlock()
	if !ok {
		return
	}
	close(client.Done)
	close(client.EventChan)
}

// Emit queues an event for broadcast. Safe to call from any goroutine,
// including after Shutdown has begun (events are silently dropped then).
func (m *Manager) Emit(event Event) {
	m.shutdownMu.RLock()
	defer m.shutdownMu.RUnlock()
	if m.shutdown {
		return
	}
	select {
	case m.events <- event:
	default:
		m.logger.Error("sse: event channel full, dropping event", "event_type", event.Type)
	}
}

func (m *Manager) closeAllClients() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, client := range m.clients {
		close(client.Done)
		close(client.EventChan)
	}
	m.clients = make(map[string]*Client)
}
