// Package realtime pushes drive events to connected websocket clients.
package realtime

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	cmap "github.com/orcaman/concurrent-map/v2"
	"studiodrive/internal/httputil"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	sendBufferSize = 32
)

// Message is the frame written to clients
type Message struct {
	Event   string `json:"event"`
	Payload any    `json:"payload"`
}

type client struct {
	id        string
	principal string
	send      chan []byte

	mu     sync.Mutex
	closed bool
}

// trySend queues data without blocking. Reports false when the buffer is full.
func (c *client) trySend(data []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return true
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

func (c *client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// Hub tracks connected clients; a principal may be connected more than once
type Hub struct {
	clients  cmap.ConcurrentMap[string, *client]
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewHub creates a hub. allowedOrigins restricts the websocket Origin header;
// "*" or an empty list allows any origin.
func NewHub(allowedOrigins []string, logger *slog.Logger) *Hub {
	h := &Hub{
		clients: cmap.New[*client](),
		logger:  logger,
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" || len(allowedOrigins) == 0 || slices.Contains(allowedOrigins, "*") {
				return true
			}
			return slices.Contains(allowedOrigins, origin)
		},
	}
	return h
}

// Count returns the number of connected clients
func (h *Hub) Count() int {
	return h.clients.Count()
}

// Broadcast sends event without waiting, to the clients of recipients or, when
// none are named, to every client. A client whose buffer is full is disconnected.
func (h *Hub) Broadcast(event string, payload any, recipients ...string) {
	data, err := json.Marshal(Message{Event: event, Payload: payload})
	if err != nil {
		h.logger.Error("marshal broadcast", "event", event, "error", err)
		return
	}

	var slow []*client
	h.clients.IterCb(func(_ string, c *client) {
		if len(recipients) > 0 && !slices.Contains(recipients, c.principal) {
			return
		}
		if !c.trySend(data) {
			slow = append(slow, c)
		}
	})

	for _, c := range slow {
		h.logger.Warn("dropping slow websocket client", "client_id", c.id, "principal", c.principal)
		h.unregister(c)
	}
}

func (h *Hub) register(principal string) *client {
	c := &client{
		id:        uuid.NewString(),
		principal: principal,
		send:      make(chan []byte, sendBufferSize),
	}
	h.clients.Set(c.id, c)
	return c
}

func (h *Hub) unregister(c *client) {
	h.clients.Remove(c.id)
	c.close()
}

// ServeWS upgrades an authenticated request and pumps events until the client leaves.
// Text frames "ping" are answered with "pong".
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	principal, err := httputil.GetUserEmail(r.Context())
	if err != nil {
		httputil.RespondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error
		h.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	c := h.register(principal)
	h.logger.Debug("websocket connected", "client_id", c.id, "principal", principal, "clients", h.Count())

	go h.writePump(conn, c)
	h.readPump(conn, c)
}

func (h *Hub) readPump(conn *websocket.Conn, c *client) {
	defer func() {
		h.unregister(c)
		conn.Close()
		h.logger.Debug("websocket disconnected", "client_id", c.id, "principal", c.principal)
	}()

	conn.SetReadLimit(4096)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("websocket read error", "client_id", c.id, "error", err)
			}
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		if string(message) == "ping" {
			c.trySend([]byte("pong"))
		}
	}
}

func (h *Hub) writePump(conn *websocket.Conn, c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				h.logger.Debug("websocket write failed", "client_id", c.id, "error", err)
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
