package wshub

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"pictionary/internal/protocol"

	"github.com/coder/websocket"
	"github.com/google/uuid"
)

var (
	ErrSendBufferFull = errors.New("send buffer full")
	ErrUnknownPlayer  = errors.New("player not connected")
)

// SendBuffer is the number of outbound frames queued per client before
// deliveries start failing.
const SendBuffer = 64

// Client represents a single WebSocket connection in the hub.
type Client struct {
	ID   uuid.UUID
	Name string
	Conn *websocket.Conn
	Send chan []byte
}

// NewClient wraps conn with a fresh connection id and send buffer.
func NewClient(conn *websocket.Conn) *Client {
	return &Client{
		ID:   uuid.New(),
		Conn: conn,
		Send: make(chan []byte, SendBuffer),
	}
}

// WritePump reads from the Send channel and writes to the WebSocket connection.
func (c *Client) WritePump(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-c.Send:
			if !ok {
				return
			}
			if err := c.Conn.Write(ctx, websocket.MessageText, msg); err != nil {
				return
			}
		}
	}
}

// Deliver queues data without blocking.
func (c *Client) Deliver(data []byte) error {
	select {
	case c.Send <- data:
		return nil
	default:
		return ErrSendBufferFull
	}
}

// Hub holds the connections of one room, keyed by player name.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]*Client),
	}
}

// Register adds a client to the hub under its Name.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c.Name] = c
}

// Unregister removes a client and closes its Send channel. It is a no-op
// when the name is unknown or now belongs to a different connection.
func (h *Hub) Unregister(name string, id uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	c, ok := h.clients[name]
	if !ok || c.ID != id {
		return
	}
	close(c.Send)
	delete(h.clients, name)
}

func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast queues msg for every client. A failed delivery never stops the
// others; the names that could not be reached are returned sorted.
func (h *Hub) Broadcast(msg protocol.Outbound) ([]string, error) {
	data, err := protocol.Encode(msg)
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", msg.Type(), err)
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	var failed []string
	for name, c := range h.clients {
		if err := c.Deliver(data); err != nil {
			failed = append(failed, name)
		}
	}
	sort.Strings(failed)
	return failed, nil
}

// Unicast queues msg for a single player.
func (h *Hub) Unicast(name string, msg protocol.Outbound) error {
	data, err := protocol.Encode(msg)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", msg.Type(), err)
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	c, ok := h.clients[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownPlayer, name)
	}
	if err := c.Deliver(data); err != nil {
		return fmt.Errorf("unicast to %s: %w", name, err)
	}
	return nil
}
