package realtime

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testUpgrader = websocket.Upgrader{
	CheckOrigin: func(*http.Request) bool { return true },
}

// startFeed runs a websocket endpoint that hands every accepted server-side
// connection to the test through a channel.
func startFeed(t *testing.T) (url string, accepted chan *websocket.Conn) {
	t.Helper()

	accepted = make(chan *websocket.Conn, 8)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := testUpgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		accepted <- conn
	}))
	t.Cleanup(srv.Close)

	return "ws" + strings.TrimPrefix(srv.URL, "http"), accepted
}

func acceptConn(t *testing.T, accepted chan *websocket.Conn) *websocket.Conn {
	t.Helper()

	select {
	case conn := <-accepted:
		t.Cleanup(func() { _ = conn.Close() })
		return conn
	case <-time.After(2 * time.Second):
		t.Fatal("no connection accepted")
		return nil
	}
}

func fastOptions(url string) Options {
	return Options{
		URL:            url,
		MaxRetries:     5,
		InitialBackoff: 10 * time.Millisecond,
		MaxBackoff:     50 * time.Millisecond,
	}
}

type stateRecorder struct {
	mu     sync.Mutex
	states []State
}

func (r *stateRecorder) record(s State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = append(r.states, s)
}

func (r *stateRecorder) has(want State) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.states {
		if s == want {
			return true
		}
	}
	return false
}

func TestClient_DeliversEvents(t *testing.T) {
	url, accepted := startFeed(t)

	client := NewClient(fastOptions(url))
	defer client.Close()

	received := make(chan string, 4)
	off := client.On(NewUploadEvent, func(payload json.RawMessage) {
		received <- string(payload)
	})
	defer off()

	client.Connect()
	server := acceptConn(t, accepted)

	require.Eventually(t, client.IsConnected, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, server.WriteJSON(envelope{
		Event:   NewUploadEvent,
		Payload: json.RawMessage(`{"name":"Maya"}`),
	}))

	select {
	case payload := <-received:
		assert.JSONEq(t, `{"name":"Maya"}`, payload)
	case <-time.After(2 * time.Second):
		t.Fatal("event never delivered")
	}

	// Events nobody subscribed to fall through without disturbing the feed.
	require.NoError(t, server.WriteJSON(envelope{Event: "unknown_event"}))
	require.NoError(t, server.WriteJSON(envelope{
		Event:   NewUploadEvent,
		Payload: json.RawMessage(`{"name":"Ben"}`),
	}))

	select {
	case payload := <-received:
		assert.JSONEq(t, `{"name":"Ben"}`, payload)
	case <-time.After(2 * time.Second):
		t.Fatal("second event never delivered")
	}
}

func TestClient_ReconnectKeepsSubscriptions(t *testing.T) {
	url, accepted := startFeed(t)

	client := NewClient(fastOptions(url))
	defer client.Close()

	rec := &stateRecorder{}
	offState := client.OnState(rec.record)
	defer offState()

	received := make(chan string, 4)
	off := client.On(NewUploadEvent, func(payload json.RawMessage) {
		received <- string(payload)
	})
	defer off()

	client.Connect()
	first := acceptConn(t, accepted)
	require.Eventually(t, client.IsConnected, 2*time.Second, 10*time.Millisecond)

	// Server drops the connection; the client must dial again on its own.
	require.NoError(t, first.Close())

	second := acceptConn(t, accepted)
	require.Eventually(t, client.IsConnected, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, second.WriteJSON(envelope{
		Event:   NewUploadEvent,
		Payload: json.RawMessage(`{"name":"Maya"}`),
	}))

	select {
	case payload := <-received:
		assert.JSONEq(t, `{"name":"Maya"}`, payload)
	case <-time.After(2 * time.Second):
		t.Fatal("handler did not survive the reconnect")
	}

	assert.True(t, rec.has(Connecting))
	assert.True(t, rec.has(Connected))
	assert.True(t, rec.has(Disconnected))
}

func TestClient_GivesUpAfterRetryBudget(t *testing.T) {
	// A server that is already gone.
	srv := httptest.NewServer(http.NotFoundHandler())
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	srv.Close()

	opts := fastOptions(url)
	opts.MaxRetries = 3

	client := NewClient(opts)
	defer client.Close()

	rec := &stateRecorder{}
	offState := client.OnState(rec.record)
	defer offState()

	client.Connect()

	require.Eventually(t, func() bool {
		return client.State() == GaveUp
	}, 5*time.Second, 10*time.Millisecond)

	// Terminal: no further transitions.
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, GaveUp, client.State())
	assert.True(t, rec.has(Connecting))
}

func TestClient_ConnectIsIdempotent(t *testing.T) {
	url, accepted := startFeed(t)

	client := NewClient(fastOptions(url))
	defer client.Close()

	client.Connect()
	client.Connect()

	acceptConn(t, accepted)
	require.Eventually(t, client.IsConnected, 2*time.Second, 10*time.Millisecond)

	select {
	case extra := <-accepted:
		_ = extra.Close()
		t.Fatal("second Connect opened a second physical connection")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestClient_JoinRoomSentOnConnect(t *testing.T) {
	url, accepted := startFeed(t)

	client := NewClient(fastOptions(url))
	defer client.Close()

	// Recorded before any connection exists.
	require.NoError(t, client.JoinRoom("lobby-screen"))

	client.Connect()
	server := acceptConn(t, accepted)

	require.NoError(t, server.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg envelope
	require.NoError(t, server.ReadJSON(&msg))
	assert.Equal(t, joinRoomControl, msg.Event)

	var room string
	require.NoError(t, json.Unmarshal(msg.Payload, &room))
	assert.Equal(t, "lobby-screen", room)
}

func TestClient_RejoinsRoomsAfterReconnect(t *testing.T) {
	url, accepted := startFeed(t)

	client := NewClient(fastOptions(url))
	defer client.Close()

	client.Connect()
	first := acceptConn(t, accepted)
	require.Eventually(t, client.IsConnected, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, client.JoinRoom("lobby-screen"))
	require.NoError(t, first.Close())

	second := acceptConn(t, accepted)

	require.NoError(t, second.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg envelope
	require.NoError(t, second.ReadJSON(&msg))
	assert.Equal(t, joinRoomControl, msg.Event)

	var room string
	require.NoError(t, json.Unmarshal(msg.Payload, &room))
	assert.Equal(t, "lobby-screen", room)
}

func TestClient_CloseStopsReconnecting(t *testing.T) {
	url, accepted := startFeed(t)

	client := NewClient(fastOptions(url))
	client.Connect()

	server := acceptConn(t, accepted)
	require.Eventually(t, client.IsConnected, 2*time.Second, 10*time.Millisecond)

	client.Close()
	_ = server.Close()

	select {
	case extra := <-accepted:
		_ = extra.Close()
		t.Fatal("closed client dialed again")
	case <-time.After(300 * time.Millisecond):
	}

	assert.Equal(t, Disconnected, client.State())
}

func TestManager_SharesOneConnection(t *testing.T) {
	url, accepted := startFeed(t)

	m := NewManager(fastOptions(url))

	first := m.Acquire()
	second := m.Acquire()
	assert.Same(t, first, second)
	assert.Equal(t, 2, m.Refs())

	acceptConn(t, accepted)
	require.Eventually(t, first.IsConnected, 2*time.Second, 10*time.Millisecond)

	select {
	case extra := <-accepted:
		_ = extra.Close()
		t.Fatal("second Acquire dialed a second connection")
	case <-time.After(200 * time.Millisecond):
	}

	// One consumer leaving keeps the socket alive for the other.
	m.Release()
	assert.Equal(t, 1, m.Refs())
	assert.True(t, first.IsConnected())

	m.Release()
	assert.Equal(t, 0, m.Refs())
	require.Eventually(t, func() bool {
		return !first.IsConnected()
	}, 2*time.Second, 10*time.Millisecond)

	// Release beyond zero is a no-op.
	m.Release()
	assert.Equal(t, 0, m.Refs())

	// A fresh Acquire after full release opens a new client.
	third := m.Acquire()
	defer m.Release()
	assert.NotSame(t, first, third)
	acceptConn(t, accepted)
	require.Eventually(t, third.IsConnected, 2*time.Second, 10*time.Millisecond)
}
