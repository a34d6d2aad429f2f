package realtime

import (
	"encoding/json"
	"sync"
	"time"
)

// DefaultRefreshDelay is the debounce window for refresh signals. Admin
// actions often land in bursts (approve, approve, delete); one trailing
// fetch covers them all.
const DefaultRefreshDelay = 250 * time.Millisecond

// Refresher turns billboard-update events into debounced re-fetches of the
// authoritative submission list. Events arriving while a fetch is running
// are not dropped: they schedule the next trailing fetch.
type Refresher struct {
	delay   time.Duration
	refetch func()

	mu      sync.Mutex
	timer   *time.Timer
	offs    []func()
	stopped bool
}

// NewRefresher subscribes to every update-class event on the client. All
// kinds collapse into the same signal: re-fetch, don't apply deltas.
func NewRefresher(client *Client, delay time.Duration, refetch func()) *Refresher {
	if delay <= 0 {
		delay = DefaultRefreshDelay
	}

	r := &Refresher{
		delay:   delay,
		refetch: refetch,
	}

	for _, event := range []string{BillboardUpdateEvent, ApprovedPostEvent, RejectedPostEvent} {
		r.offs = append(r.offs, client.On(event, r.handle))
	}

	return r
}

func (r *Refresher) handle(json.RawMessage) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.stopped {
		return
	}

	if r.timer != nil {
		// Burst in progress: push the trailing fetch out.
		r.timer.Reset(r.delay)
		return
	}
	r.timer = time.AfterFunc(r.delay, r.fire)
}

func (r *Refresher) fire() {
	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		return
	}
	// Clear before fetching so an event arriving mid-fetch schedules the
	// next one instead of being swallowed.
	r.timer = nil
	fetch := r.refetch
	r.mu.Unlock()

	if fetch != nil {
		fetch()
	}
}

// Stop unsubscribes and cancels any pending fetch.
func (r *Refresher) Stop() {
	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		return
	}
	r.stopped = true
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
	offs := r.offs
	r.offs = nil
	r.mu.Unlock()

	for _, off := range offs {
		off()
	}
}
