package realtime

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/gorilla/websocket"
)

// State of the single underlying connection. GaveUp is terminal: the retry
// budget is exhausted and the UI should warn that data may be stale instead
// of pretending the feed is live.
type State string

const (
	Disconnected State = "disconnected"
	Connecting   State = "connecting"
	Connected    State = "connected"
	GaveUp       State = "gave_up"
)

type Options struct {
	// URL of the websocket endpoint, e.g. "ws://localhost:8080/ws".
	URL string

	// MaxRetries bounds reconnection attempts per outage. The counter resets
	// on every successful connect. Default 5.
	MaxRetries int

	// InitialBackoff is the first retry delay; subsequent delays grow
	// exponentially up to MaxBackoff. Defaults 1s and 30s.
	InitialBackoff time.Duration
	MaxBackoff     time.Duration

	HandshakeTimeout time.Duration
}

func (o *Options) withDefaults() {
	if o.MaxRetries <= 0 {
		o.MaxRetries = 5
	}
	if o.InitialBackoff <= 0 {
		o.InitialBackoff = time.Second
	}
	if o.MaxBackoff <= 0 {
		o.MaxBackoff = 30 * time.Second
	}
	if o.HandshakeTimeout <= 0 {
		o.HandshakeTimeout = 10 * time.Second
	}
}

// Handler receives the raw payload of one event occurrence.
type Handler func(payload json.RawMessage)

type envelope struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

// Client maintains one resilient websocket connection: it dials, dispatches
// incoming events to subscribed handlers, and reconnects with exponential
// backoff when the transport drops. Handlers and room subscriptions are kept
// client-side, so they survive reconnects.
type Client struct {
	opts Options

	mu        sync.Mutex
	conn      *websocket.Conn
	state     State
	handlers  map[string]map[int]Handler
	stateSubs map[int]func(State)
	rooms     map[string]struct{} // rooms to (re)join after connect
	nextSub   int
	started   bool
	closed    bool

	done chan struct{}
}

func NewClient(opts Options) *Client {
	opts.withDefaults()
	return &Client{
		opts:      opts,
		state:     Disconnected,
		handlers:  make(map[string]map[int]Handler),
		stateSubs: make(map[int]func(State)),
		rooms:     make(map[string]struct{}),
		done:      make(chan struct{}),
	}
}

// Connect starts the connection loop. Calling it more than once is a no-op;
// there is never more than one physical connection per client.
func (c *Client) Connect() {
	c.mu.Lock()
	if c.started || c.closed {
		c.mu.Unlock()
		return
	}
	c.started = true
	c.mu.Unlock()

	go c.run()
}

func (c *Client) run() {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.opts.InitialBackoff
	bo.MaxInterval = c.opts.MaxBackoff

	attempts := 0

	for {
		if c.isClosed() {
			return
		}

		c.setState(Connecting)

		dialer := websocket.Dialer{HandshakeTimeout: c.opts.HandshakeTimeout}
		conn, _, err := dialer.Dial(c.opts.URL, nil)
		if err != nil {
			log.Printf("realtime: connect to %s failed: %v", c.opts.URL, err)

			attempts++
			if attempts >= c.opts.MaxRetries {
				c.setState(GaveUp)
				return
			}

			c.setState(Disconnected)
			select {
			case <-time.After(bo.NextBackOff()):
			case <-c.done:
				return
			}
			continue
		}

		attempts = 0
		bo.Reset()

		c.mu.Lock()
		if c.closed {
			c.mu.Unlock()
			_ = conn.Close()
			return
		}
		c.conn = conn
		c.mu.Unlock()

		c.setState(Connected)
		c.rejoinRooms()

		c.readLoop(conn)

		c.mu.Lock()
		c.conn = nil
		closed := c.closed
		c.mu.Unlock()

		if closed {
			return
		}
		c.setState(Disconnected)
	}
}

func (c *Client) readLoop(conn *websocket.Conn) {
	defer func() {
		_ = conn.Close()
	}()

	for {
		var msg envelope
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) && !c.isClosed() {
				log.Printf("realtime: read error: %v", err)
			}
			return
		}

		c.dispatch(msg)
	}
}

func (c *Client) dispatch(msg envelope) {
	c.mu.Lock()
	subs := c.handlers[msg.Event]
	snapshot := make([]Handler, 0, len(subs))
	for _, h := range subs {
		snapshot = append(snapshot, h)
	}
	c.mu.Unlock()

	// Unknown events have no handlers and fall through silently.
	for _, h := range snapshot {
		h(msg.Payload)
	}
}

// On subscribes a handler to a named event and returns its unsubscribe func.
func (c *Client) On(event string, handler Handler) (off func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextSub
	c.nextSub++

	subs, ok := c.handlers[event]
	if !ok {
		subs = make(map[int]Handler)
		c.handlers[event] = subs
	}
	subs[id] = handler

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if subs, ok := c.handlers[event]; ok {
			delete(subs, id)
			if len(subs) == 0 {
				delete(c.handlers, event)
			}
		}
	}
}

// OnState subscribes to connection state changes and immediately reports the
// current state, so a late subscriber doesn't miss the transition it cares about.
func (c *Client) OnState(fn func(State)) (off func()) {
	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.stateSubs[id] = fn
	current := c.state
	c.mu.Unlock()

	fn(current)

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.stateSubs, id)
	}
}

func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Client) IsConnected() bool {
	return c.State() == Connected
}

// JoinRoom subscribes this connection to an extra room. The membership is
// remembered and re-requested after every reconnect.
func (c *Client) JoinRoom(room string) error {
	if room == "" {
		return nil
	}

	c.mu.Lock()
	c.rooms[room] = struct{}{}
	conn := c.conn
	c.mu.Unlock()

	return c.sendControl(conn, joinRoomControl, room)
}

func (c *Client) LeaveRoom(room string) error {
	if room == "" {
		return nil
	}

	c.mu.Lock()
	delete(c.rooms, room)
	conn := c.conn
	c.mu.Unlock()

	return c.sendControl(conn, leaveRoomControl, room)
}

func (c *Client) rejoinRooms() {
	c.mu.Lock()
	rooms := make([]string, 0, len(c.rooms))
	for room := range c.rooms {
		rooms = append(rooms, room)
	}
	conn := c.conn
	c.mu.Unlock()

	for _, room := range rooms {
		if err := c.sendControl(conn, joinRoomControl, room); err != nil {
			log.Printf("realtime: rejoin %s failed: %v", room, err)
		}
	}
}

func (c *Client) sendControl(conn *websocket.Conn, event, room string) error {
	if conn == nil {
		// Not connected; JoinRoom already recorded the intent and the
		// membership goes out on the next connect.
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return conn.WriteJSON(envelope{Event: event, Payload: mustJSON(room)})
}

func mustJSON(v any) json.RawMessage {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return raw
}

// Close releases all listeners and closes the connection. The client cannot
// be reused afterwards; open a fresh one to reconnect.
func (c *Client) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	conn := c.conn
	c.conn = nil
	c.handlers = make(map[string]map[int]Handler)
	c.stateSubs = make(map[int]func(State))
	close(c.done)
	c.mu.Unlock()

	if conn != nil {
		_ = conn.Close()
	}
	c.setState(Disconnected)
}

func (c *Client) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *Client) setState(s State) {
	c.mu.Lock()
	if c.state == s {
		c.mu.Unlock()
		return
	}
	c.state = s
	subs := make([]func(State), 0, len(c.stateSubs))
	for _, fn := range c.stateSubs {
		subs = append(subs, fn)
	}
	c.mu.Unlock()

	for _, fn := range subs {
		fn(s)
	}
}
