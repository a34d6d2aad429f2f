package ws

import (
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/AdBoard-Booking/neon-insta-screen/internal/infrastructure/metrics"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// Registry owns room membership and fan-out for one server process.
// Broadcasts never block: each client gets the message enqueued on its own
// buffered channel, and a full buffer drops the message for that client only.
type Registry struct {
	defaultRoom string
	sendBuffer  int

	clients map[string]*Client            // clientID -> client
	rooms   map[string]map[string]*Client // room -> clientID -> client
	mu      sync.RWMutex
}

func NewRegistry(defaultRoom string, sendBuffer int) *Registry {
	if defaultRoom == "" {
		defaultRoom = DefaultRoom
	}
	return &Registry{
		defaultRoom: defaultRoom,
		sendBuffer:  sendBuffer,
		clients:     make(map[string]*Client),
		rooms:       make(map[string]map[string]*Client),
	}
}

func (r *Registry) Upgrade(w http.ResponseWriter, req *http.Request) (*websocket.Conn, error) {
	return upgrader.Upgrade(w, req, nil)
}

// NewClient wraps a freshly upgraded connection with this registry's buffer size.
func (r *Registry) NewClient(conn *websocket.Conn) *Client {
	return NewClient(conn, r.sendBuffer)
}

// AddClient registers a connection and auto-joins it to the default room, so
// every handshaken client can receive events without an explicit join.
func (r *Registry) AddClient(cl *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.clients[cl.ID]; exists {
		return
	}
	r.clients[cl.ID] = cl
	r.joinLocked(cl, r.defaultRoom)

	metrics.ActiveConnections.Inc()
	log.Printf("client connected: %s (total %d)", cl.ID, len(r.clients))
}

func (r *Registry) Join(cl *Client, room string) {
	if room == "" {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, known := r.clients[cl.ID]; !known {
		return
	}
	r.joinLocked(cl, room)
}

func (r *Registry) joinLocked(cl *Client, room string) {
	members, ok := r.rooms[room]
	if !ok {
		members = make(map[string]*Client)
		r.rooms[room] = members
	}
	members[cl.ID] = cl
}

func (r *Registry) Leave(cl *Client, room string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.leaveLocked(cl, room)
}

func (r *Registry) leaveLocked(cl *Client, room string) {
	members, ok := r.rooms[room]
	if !ok {
		return
	}

	delete(members, cl.ID)
	if len(members) == 0 {
		delete(r.rooms, room)
	}
}

// RemoveClient drops the client from every room it belonged to and closes it.
// Safe to call more than once; the disconnect teardown and an explicit close
// can race here.
func (r *Registry) RemoveClient(cl *Client) {
	r.mu.Lock()

	if _, known := r.clients[cl.ID]; !known {
		r.mu.Unlock()
		cl.Close()
		return
	}

	delete(r.clients, cl.ID)
	for room := range r.rooms {
		r.leaveLocked(cl, room)
	}
	remaining := len(r.clients)
	r.mu.Unlock()

	cl.Close()
	metrics.ActiveConnections.Dec()
	log.Printf("client disconnected: %s (total %d)", cl.ID, remaining)
}

// Broadcast fans an event out to the room's current members, fire-and-forget.
// A nil registry (publish before install) is a silent no-op.
func (r *Registry) Broadcast(room, event string, payload any) {
	if r == nil {
		return
	}

	r.mu.RLock()
	members := r.rooms[room]
	snapshot := make([]*Client, 0, len(members))
	for _, cl := range members {
		snapshot = append(snapshot, cl)
	}
	r.mu.RUnlock()

	msg := &Message{Event: event, Payload: payload}
	metrics.BroadcastsTotal.WithLabelValues(event).Inc()

	for _, cl := range snapshot {
		if !cl.trySend(msg) {
			if !cl.IsClosed() {
				metrics.DroppedSendsTotal.Inc()
				log.Printf("client %s buffer full, dropping %s", cl.ID, event)
			}
		}
	}
}

// DisconnectAll closes every connection cleanly. Used on shutdown and when a
// new registry replaces this one.
func (r *Registry) DisconnectAll() {
	r.mu.Lock()
	clients := make([]*Client, 0, len(r.clients))
	for _, cl := range r.clients {
		clients = append(clients, cl)
	}
	r.clients = make(map[string]*Client)
	r.rooms = make(map[string]map[string]*Client)
	r.mu.Unlock()

	for _, cl := range clients {
		_ = cl.conn.WriteClose()
		cl.Close()
		metrics.ActiveConnections.Dec()
	}
}

func (r *Registry) Stats() (rooms, clients int) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms), len(r.clients)
}
