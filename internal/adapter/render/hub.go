package render

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/rl1809/cart-sync/internal/core/domain"
)

const clientBufferSize = 16

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub pushes the latest snapshot to every connected websocket view.
// Publish never blocks: bursts of notifications collapse into the newest one.
type Hub struct {
	logger     *zap.Logger
	clients    map[*client]bool
	register   chan *client
	unregister chan *client
	pending    chan struct{}
	done       chan struct{}

	mu     sync.Mutex
	latest []byte
}

func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		logger:     logger,
		clients:    make(map[*client]bool),
		register:   make(chan *client),
		unregister: make(chan *client),
		pending:    make(chan struct{}, 1),
		done:       make(chan struct{}),
	}
}

func (h *Hub) Publish(snap domain.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}

	h.mu.Lock()
	h.latest = data
	h.mu.Unlock()

	select {
	case h.pending <- struct{}{}:
	default:
	}
	return nil
}

func (h *Hub) current() []byte {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.latest
}

// Run serves registrations and broadcasts until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				close(c.send)
				delete(h.clients, c)
			}
			return
		case c := <-h.register:
			h.clients[c] = true
			if data := h.current(); data != nil {
				h.deliver(c, data)
			}
			h.logger.Debug("view connected", zap.Int("views", len(h.clients)))
		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
				h.logger.Debug("view disconnected", zap.Int("views", len(h.clients)))
			}
		case <-h.pending:
			data := h.current()
			for c := range h.clients {
				h.deliver(c, data)
			}
		}
	}
}

func (h *Hub) deliver(c *client, data []byte) {
	select {
	case c.send <- data:
	default:
		h.logger.Warn("dropping slow view")
		close(c.send)
		delete(h.clients, c)
	}
}

func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("failed to upgrade websocket", zap.Error(err))
		return
	}

	c := &client{conn: conn, send: make(chan []byte, clientBufferSize)}
	select {
	case h.register <- c:
	case <-h.done:
		conn.Close()
		return
	}

	go c.writePump()
	go c.readPump(h)
}

// readPump only watches for the view going away; views never send state.
func (c *client) readPump(h *Hub) {
	defer func() {
		select {
		case h.unregister <- c:
		case <-h.done:
		}
		c.conn.Close()
	}()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *client) writePump() {
	defer c.conn.Close()
	for message := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}
	c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}
