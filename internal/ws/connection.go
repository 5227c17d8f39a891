package ws

import (
	"context"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Connection wraps one subscriber WebSocket. Subscribers only receive; inbound
// frames are read solely to service pongs and detect closure.
type Connection struct {
	userID       int64
	ws           *websocket.Conn
	send         chan []byte
	writeTimeout time.Duration
	logger       *zap.Logger
	onClose      func(*Connection)
}

func newConnection(userID int64, ws *websocket.Conn, writeTimeout time.Duration, logger *zap.Logger, onClose func(*Connection)) *Connection {
	return &Connection{
		userID:       userID,
		ws:           ws,
		send:         make(chan []byte, 16),
		writeTimeout: writeTimeout,
		logger:       logger,
		onClose:      onClose,
	}
}

// run launches the write pump and blocks on the read loop until the peer goes away.
func (c *Connection) run(ctx context.Context) {
	go c.writePump(ctx)
	c.readPump(ctx)
}

func (c *Connection) readPump(ctx context.Context) {
	defer c.cleanup()
	c.ws.SetReadLimit(4096)
	c.ws.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.ws.SetPongHandler(func(string) error {
		c.ws.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if _, _, err := c.ws.ReadMessage(); err != nil {
			c.logger.Debug("subscriber connection closed", zap.Int64("user_id", c.userID), zap.Error(err))
			return
		}
	}
}

func (c *Connection) writePump(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-c.send:
			if !ok {
				_ = c.write(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.write(websocket.TextMessage, msg); err != nil {
				return
			}
		}
	}
}

// Send enqueues a message, dropping it when the subscriber cannot keep up.
func (c *Connection) Send(msg []byte) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Warn("attempted to send on closed channel", zap.Int64("user_id", c.userID))
		}
	}()
	select {
	case c.send <- msg:
	default:
		c.logger.Warn("dropping update, subscriber buffer full", zap.Int64("user_id", c.userID))
	}
}

// Ping sends ping.
func (c *Connection) Ping() error {
	return c.write(websocket.PingMessage, []byte("ping"))
}

func (c *Connection) write(messageType int, data []byte) error {
	c.ws.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	return c.ws.WriteMessage(messageType, data)
}

func (c *Connection) cleanup() {
	close(c.send)
	_ = c.ws.Close()
	if c.onClose != nil {
		c.onClose(c)
	}
}
