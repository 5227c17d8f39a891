package ws

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"

	"evconduit/internal/models"
)

// EventTypeSessionUpdated is pushed when a session's user-entered data changes.
const EventTypeSessionUpdated = "session_updated"

// Event is the wire shape pushed to subscribers.
type Event struct {
	Type    string                  `json:"type"`
	Session *models.ChargingSession `json:"session,omitempty"`
}

// Hub tracks subscriber connections per user and fans events out to them.
type Hub struct {
	mu           sync.RWMutex
	subscribers  map[int64]map[*Connection]struct{}
	pingInterval time.Duration
	logger       *zap.Logger
}

// NewHub builds hub.
func NewHub(pingInterval time.Duration, logger *zap.Logger) *Hub {
	if pingInterval <= 0 {
		pingInterval = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		subscribers:  make(map[int64]map[*Connection]struct{}),
		pingInterval: pingInterval,
		logger:       logger,
	}
}

func (h *Hub) add(conn *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.subscribers[conn.userID]
	if !ok {
		set = make(map[*Connection]struct{})
		h.subscribers[conn.userID] = set
	}
	set[conn] = struct{}{}
}

func (h *Hub) remove(conn *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.subscribers[conn.userID]
	if !ok {
		return
	}
	delete(set, conn)
	if len(set) == 0 {
		delete(h.subscribers, conn.userID)
	}
}

// PublishSessionUpdate pushes a changed session to every connection of its owner.
func (h *Hub) PublishSessionUpdate(userID int64, session *models.ChargingSession) {
	payload, err := json.Marshal(Event{Type: EventTypeSessionUpdated, Session: session})
	if err != nil {
		h.logger.Warn("failed to encode session update", zap.Error(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for conn := range h.subscribers[userID] {
		conn.Send(payload)
	}
}

// Run keeps connections alive with periodic pings until the context ends.
func (h *Hub) Run(ctx context.Context) {
	ticker := time.NewTicker(h.pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.mu.RLock()
			for _, set := range h.subscribers {
				for conn := range set {
					_ = conn.Ping()
				}
			}
			h.mu.RUnlock()
		}
	}
}
