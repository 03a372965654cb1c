package transport

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"ws-gateway/internal/logger"
	"ws-gateway/internal/router"
)

const (
	writeTimeout   = 10 * time.Second
	eventTimeout   = 30 * time.Second
	maxMessageSize = 64 * 1024
)

// WebsocketHost turns websocket activity into gateway events. It assigns
// each accepted socket an opaque connection handle, feeds connect,
// message and disconnect events through the router, and keeps the
// handle-to-socket table that implements the gateway's Transport
// capability. That table is delivery plumbing only; the session store
// remains the record of who is connected.
type WebsocketHost struct {
	router   *router.Router
	upgrader websocket.Upgrader

	mu    sync.RWMutex
	conns map[string]*wsConn
}

// wsConn serializes writes; gorilla permits one concurrent writer.
type wsConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func NewWebsocketHost() *WebsocketHost {
	return &WebsocketHost{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		conns: make(map[string]*wsConn),
	}
}

// Attach binds the router after construction. The router needs the
// gateway, the gateway needs this host as its Transport, so the host is
// built first and wired last.
func (h *WebsocketHost) Attach(r *router.Router) {
	h.router = r
}

// Handle upgrades the request and runs the connection until it closes.
// The credential travels as the token query parameter; it is consumed
// once, for the connect event, and never re-read.
func (h *WebsocketHost) Handle(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error("websocket upgrade failed", map[string]any{
			"error": err.Error(),
		})
		return
	}

	connectionID := uuid.NewString()
	h.register(connectionID, conn)
	defer h.unregister(connectionID)

	resp := h.router.Dispatch(r.Context(), router.Event{
		Kind:         router.KindConnect,
		ConnectionID: connectionID,
		Credential:   token,
	})
	if resp.StatusCode != http.StatusOK {
		h.refuse(conn, connectionID, resp.StatusCode)
		return
	}

	h.readLoop(connectionID, conn)

	ctx, cancel := context.WithTimeout(context.Background(), eventTimeout)
	defer cancel()
	h.router.Dispatch(ctx, router.Event{
		Kind:         router.KindDisconnect,
		ConnectionID: connectionID,
	})
}

func (h *WebsocketHost) readLoop(connectionID string, conn *websocket.Conn) {
	conn.SetReadLimit(maxMessageSize)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Warn("websocket read failed", map[string]any{
					"connection_id": connectionID,
					"error":         err.Error(),
				})
			}
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), eventTimeout)
		resp := h.router.Dispatch(ctx, router.Event{
			Kind:         router.KindMessage,
			ConnectionID: connectionID,
			Payload:      string(data),
		})
		cancel()

		if resp.Body == "" {
			continue
		}
		if err := h.write(connectionID, []byte(resp.Body)); err != nil {
			logger.Error("websocket reply failed", map[string]any{
				"connection_id": connectionID,
				"error":         err.Error(),
			})
			return
		}
	}
}

// Send implements the gateway's Transport capability.
func (h *WebsocketHost) Send(ctx context.Context, connectionID string, payload []byte) error {
	return h.write(connectionID, payload)
}

// Close implements the gateway's Transport capability.
func (h *WebsocketHost) Close(ctx context.Context, connectionID string) error {
	h.mu.RLock()
	c, ok := h.conns[connectionID]
	h.mu.RUnlock()
	if !ok {
		return fmt.Errorf("transport: unknown connection %s", connectionID)
	}
	return c.conn.Close()
}

func (h *WebsocketHost) register(connectionID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[connectionID] = &wsConn{conn: conn}
}

func (h *WebsocketHost) unregister(connectionID string) {
	h.mu.Lock()
	c, ok := h.conns[connectionID]
	delete(h.conns, connectionID)
	h.mu.Unlock()

	if ok {
		_ = c.conn.Close()
	}
}

func (h *WebsocketHost) write(connectionID string, payload []byte) error {
	h.mu.RLock()
	c, ok := h.conns[connectionID]
	h.mu.RUnlock()
	if !ok {
		return fmt.Errorf("transport: unknown connection %s", connectionID)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.conn.WriteMessage(websocket.TextMessage, payload)
}

// refuse sends a close frame carrying the refusal status and drops the
// socket. The upgrade has already happened by the time the connect event
// is judged, so an HTTP status alone cannot reach the client.
func (h *WebsocketHost) refuse(conn *websocket.Conn, connectionID string, statusCode int) {
	logger.Warn("connection refused", map[string]any{
		"connection_id": connectionID,
		"status":        statusCode,
	})

	msg := websocket.FormatCloseMessage(
		websocket.ClosePolicyViolation,
		fmt.Sprintf("connect refused: %d", statusCode),
	)
	_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeTimeout))
	_ = conn.Close()
}
