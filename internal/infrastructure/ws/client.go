package ws

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Clients only ever send small control messages.
const maxControlBytes = 512

type Client struct {
	conn    *connWrapper
	Message chan *Message
	ID      string `json:"id"`

	mu     sync.Mutex
	closed bool
}

func NewClient(conn *websocket.Conn, sendBuffer int) *Client {
	if sendBuffer <= 0 {
		sendBuffer = 64
	}
	return &Client{
		conn:    newConnWrapper(conn),
		Message: make(chan *Message, sendBuffer), // buffered to avoid dead-locks on slow clients
		ID:      uuid.NewString(),
	}
}

// Close tears the client down exactly once: further trySend calls become
// no-ops and the write pump drains out.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	close(c.Message)
	_ = c.conn.Close()
}

func (c *Client) IsClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// trySend enqueues without blocking. A full buffer means the client is too
// slow; the message is dropped for that client only.
func (c *Client) trySend(msg *Message) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false
	}

	select {
	case c.Message <- msg:
		return true
	default:
		return false
	}
}

type controlMessage struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

// ReadPump consumes control messages until the connection drops, then
// removes the client from the registry.
func (c *Client) ReadPump(registry *Registry) {
	defer registry.RemoveClient(c)

	c.conn.conn.SetReadLimit(maxControlBytes)

	for {
		_, raw, err := c.conn.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				log.Printf("ws read error (client %s): %v", c.ID, err)
			} else {
				log.Printf("client %s disconnected: %v", c.ID, err)
			}
			return
		}

		c.handleControl(registry, raw)
	}
}

func (c *Client) handleControl(registry *Registry, raw []byte) {
	var ctrl controlMessage
	if err := json.Unmarshal(raw, &ctrl); err != nil {
		// Malformed control messages are ignored, nothing is echoed back.
		return
	}

	switch ctrl.Event {
	case JoinRoomControl:
		if room, ok := roomName(ctrl.Payload); ok {
			registry.Join(c, room)
			log.Printf("client %s joined room: %s", c.ID, room)
		}
	case LeaveRoomControl:
		if room, ok := roomName(ctrl.Payload); ok {
			registry.Leave(c, room)
			log.Printf("client %s left room: %s", c.ID, room)
		}
	default:
		// Unknown control events are ignored for forward compatibility.
	}
}

func roomName(raw json.RawMessage) (string, bool) {
	var name string
	if err := json.Unmarshal(raw, &name); err != nil {
		return "", false
	}
	if name == "" {
		return "", false
	}
	return name, true
}

func (c *Client) WritePump() {
	defer func() {
		_ = c.conn.Close()
	}()

	for msg := range c.Message {
		if err := c.conn.WriteJSON(msg); err != nil {
			log.Printf("ws write error (client %s): %v", c.ID, err)
			break
		}
	}
}
