package ws

import "sync"

// Process-wide registry reference. Request handlers publish through whatever
// is installed here; publishing before Install is a no-op rather than an
// error, because a cold request can race server bootstrap.
var (
	installMu sync.RWMutex
	installed *Registry
)

// Install binds the process-wide registry. Installing a second time replaces
// the reference and disconnects the old instance's clients, so bootstrap code
// that runs more than once never double-delivers.
func Install(r *Registry) {
	installMu.Lock()
	prev := installed
	installed = r
	installMu.Unlock()

	if prev != nil && prev != r {
		prev.DisconnectAll()
	}
}

// Current returns the installed registry, or nil before Install.
// Registry methods tolerate a nil receiver for broadcast.
func Current() *Registry {
	installMu.RLock()
	defer installMu.RUnlock()
	return installed
}

// Reset detaches and disconnects the installed registry. Tests use this to
// isolate cases; the server itself calls it on shutdown.
func Reset() {
	installMu.Lock()
	prev := installed
	installed = nil
	installMu.Unlock()

	if prev != nil {
		prev.DisconnectAll()
	}
}
