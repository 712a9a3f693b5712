package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/vyrodovalexey/avgui-demo/internal/model"
)

// WebSocket configuration constants.
const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBuffer     = 16
)

// FrameParam is the query parameter naming the frame of a connection.
const FrameParam = "frame"

// Frame errors.
var (
	ErrFrameNotFound = errors.New("frame does not exist")
	ErrFrameClosed   = errors.New("frame connection closed")
)

// frameClient is a registered browser frame.
type frameClient struct {
	name   string
	conn   *websocket.Conn
	send   chan model.FrameMessage
	ctx    context.Context
	cancel context.CancelFunc
}

// FrameHandler keeps one WebSocket connection per browser frame and
// delivers scripts to them.
type FrameHandler struct {
	upgrader websocket.Upgrader
	logger   *zap.Logger
	mu       sync.RWMutex
	frames   map[string]*frameClient
}

// NewFrameHandler creates a new FrameHandler instance.
func NewFrameHandler(logger *zap.Logger) *FrameHandler {
	return &FrameHandler{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(_ *http.Request) bool {
				return true // Frames are served from the local:// scheme
			},
		},
		logger: logger,
		frames: make(map[string]*frameClient),
	}
}

// RegisterRoutes registers the WebSocket routes with the router.
func (h *FrameHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/ws", h.HandleWebSocket).Methods(http.MethodGet)
}

// HandleWebSocket registers the connecting frame. A later connection with
// the same frame name replaces the earlier one.
//
//nolint:contextcheck // intentional: WebSocket connections outlive the HTTP request context
func (h *FrameHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.URL.Query().Get(FrameParam))
	if name == "" {
		http.Error(w, "frame name is required", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("failed to upgrade connection", zap.Error(err))
		return
	}

	// The HTTP request context ends when this handler returns.
	ctx, cancel := context.WithCancel(context.Background())

	client := &frameClient{
		name:   name,
		conn:   conn,
		send:   make(chan model.FrameMessage, sendBuffer),
		ctx:    ctx,
		cancel: cancel,
	}
	client.send <- model.NewRegisteredMessage(name)

	h.mu.Lock()
	previous := h.frames[name]
	h.frames[name] = client
	h.mu.Unlock()

	if previous != nil {
		previous.cancel()
		h.logger.Info("frame connection replaced", zap.String("frame", name))
	}

	h.logger.Info("frame connected",
		zap.String("frame", name),
		zap.String("remote_addr", conn.RemoteAddr().String()),
	)

	go h.writePump(client)
	go h.readPump(client)
}

// Execute delivers script to the named frame.
func (h *FrameHandler) Execute(ctx context.Context, frame, script string) error {
	h.mu.RLock()
	client, ok := h.frames[frame]
	h.mu.RUnlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrFrameNotFound, frame)
	}

	// A cancelled client may still have room in its buffer.
	if client.ctx.Err() != nil {
		return fmt.Errorf("%w: %s", ErrFrameClosed, frame)
	}

	select {
	case client.send <- model.NewExecuteScriptMessage(frame, script):
		return nil
	case <-client.ctx.Done():
		return fmt.Errorf("%w: %s", ErrFrameClosed, frame)
	case <-ctx.Done():
		return ctx.Err()
	}
}

// readPump drains incoming messages until the connection fails.
func (h *FrameHandler) readPump(client *frameClient) {
	defer func() {
		client.cancel()
		h.removeClient(client)
	}()

	conn := client.conn
	conn.SetReadLimit(maxMessageSize)
	if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		h.logger.Error("failed to set read deadline", zap.Error(err))
		return
	}

	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.logger.Warn("websocket read error", zap.String("frame", client.name), zap.Error(err))
			}
			return
		}
		h.logger.Debug("received frame message",
			zap.String("frame", client.name),
			zap.ByteString("message", message),
		)
	}
}

// writePump is the only writer of the connection. It forwards queued
// messages and keeps the connection alive with pings.
func (h *FrameHandler) writePump(client *frameClient) {
	pingTicker := time.NewTicker(pingPeriod)

	defer func() {
		pingTicker.Stop()
		if err := client.conn.Close(); err != nil {
			h.logger.Debug("error closing connection", zap.Error(err))
		}
	}()

	for {
		select {
		case <-client.ctx.Done():
			h.sendCloseMessage(client.conn)
			return
		case msg := <-client.send:
			if err := h.sendMessage(client.conn, msg); err != nil {
				h.logger.Debug("failed to send frame message", zap.String("frame", client.name), zap.Error(err))
				client.cancel()
				return
			}
		case <-pingTicker.C:
			if err := h.sendPing(client.conn); err != nil {
				h.logger.Debug("failed to send ping", zap.String("frame", client.name), zap.Error(err))
				client.cancel()
				return
			}
		}
	}
}

// sendMessage writes a JSON message to the connection.
func (h *FrameHandler) sendMessage(conn *websocket.Conn, msg model.FrameMessage) error {
	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return conn.WriteJSON(msg)
}

// sendPing sends a ping message to the connection.
func (h *FrameHandler) sendPing(conn *websocket.Conn) error {
	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return conn.WriteMessage(websocket.PingMessage, nil)
}

// sendCloseMessage sends a close message to the connection.
func (h *FrameHandler) sendCloseMessage(conn *websocket.Conn) {
	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		h.logger.Debug("failed to set write deadline for close", zap.Error(err))
		return
	}

	closeMsg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "server shutting down")
	if err := conn.WriteMessage(websocket.CloseMessage, closeMsg); err != nil {
		h.logger.Debug("failed to send close message", zap.Error(err))
	}
}

// removeClient unregisters client unless it was already replaced.
func (h *FrameHandler) removeClient(client *frameClient) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if current, exists := h.frames[client.name]; exists && current == client {
		delete(h.frames, client.name)
		h.logger.Info("frame disconnected", zap.String("frame", client.name))
	}
}

// frameCount returns the number of registered frames.
func (h *FrameHandler) frameCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.frames)
}

// CloseAllConnections closes all frame connections.
func (h *FrameHandler) CloseAllConnections() {
	h.mu.Lock()
	clients := make([]*frameClient, 0, len(h.frames))
	for name, client := range h.frames {
		clients = append(clients, client)
		delete(h.frames, name)
	}
	h.mu.Unlock()

	// Cancelling makes each writePump send a close frame and close its connection.
	for _, client := range clients {
		client.cancel()
	}

	// Give writePump goroutines time to send close messages
	time.Sleep(100 * time.Millisecond)

	h.logger.Info("all frame connections closed", zap.Int("count", len(clients)))
}
