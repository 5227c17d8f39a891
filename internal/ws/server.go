package ws

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// UserResolver extracts the authenticated user from an upgrade request.
type UserResolver func(*http.Request) (int64, bool)

// Server upgrades authenticated HTTP requests into subscriber connections.
type Server struct {
	hub          *Hub
	resolveUser  UserResolver
	writeTimeout time.Duration
	logger       *zap.Logger
	upgrader     websocket.Upgrader
}

// NewServer builds ws server.
func NewServer(hub *Hub, resolveUser UserResolver, writeTimeout time.Duration, logger *zap.Logger) *Server {
	if writeTimeout <= 0 {
		writeTimeout = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		hub:          hub,
		resolveUser:  resolveUser,
		writeTimeout: writeTimeout,
		logger:       logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

// ServeHTTP upgrades the request and registers the subscriber with the hub.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.resolveUser(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	subscriber := newConnection(userID, conn, s.writeTimeout, s.logger, s.hub.remove)
	s.hub.add(subscriber)
	s.logger.Info("subscriber connected", zap.Int64("user_id", userID))

	subscriber.run(r.Context())
}
