package realtime

import "sync"

// Manager shares one physical connection between any number of consumers.
// The first Acquire dials, later Acquires attach to the live client, and the
// last Release closes it. This is what keeps a page with both a banner and a
// refresh watcher on a single socket.
type Manager struct {
	opts Options

	mu     sync.Mutex
	client *Client
	refs   int
}

func NewManager(opts Options) *Manager {
	return &Manager{opts: opts}
}

// Acquire returns the shared client, connecting it on first use.
func (m *Manager) Acquire() *Client {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.client == nil {
		m.client = NewClient(m.opts)
		m.client.Connect()
	}
	m.refs++

	return m.client
}

// Release drops one reference. The connection closes only when the last
// consumer lets go.
func (m *Manager) Release() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.refs == 0 {
		return
	}

	m.refs--
	if m.refs == 0 && m.client != nil {
		m.client.Close()
		m.client = nil
	}
}

// Refs reports the current consumer count.
func (m *Manager) Refs() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.refs
}
