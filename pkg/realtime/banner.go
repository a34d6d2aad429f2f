package realtime

import (
	"encoding/json"
	"strconv"
	"sync"
	"time"
)

// DefaultBannerTTL is how long an upload banner stays visible.
const DefaultBannerTTL = 3 * time.Second

// Banner is the transient "someone just uploaded" notification.
type Banner struct {
	ID        string
	Name      string
	Message   string
	Timestamp int64
}

type bannerPayload struct {
	Name      string `json:"name"`
	Message   string `json:"message"`
	Timestamp int64  `json:"timestamp"`
}

// BannerFeed derives the banner state from new_upload events. Each event
// replaces the pending banner and restarts a single auto-clear timer, so a
// slow stream of uploads never stacks overlapping banners.
type BannerFeed struct {
	ttl      time.Duration
	onChange func(*Banner)

	mu      sync.Mutex
	current *Banner
	timer   *time.Timer
	gen     uint64
	off     func()
	stopped bool
}

// NewBannerFeed subscribes to the client's new_upload events. onChange may be
// nil; it fires with the new banner and again with nil when it clears.
func NewBannerFeed(client *Client, ttl time.Duration, onChange func(*Banner)) *BannerFeed {
	if ttl <= 0 {
		ttl = DefaultBannerTTL
	}

	f := &BannerFeed{
		ttl:      ttl,
		onChange: onChange,
	}
	f.off = client.On(NewUploadEvent, f.handle)

	return f
}

func (f *BannerFeed) handle(payload json.RawMessage) {
	var p bannerPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return
	}

	banner := &Banner{
		ID:        strconv.FormatInt(p.Timestamp, 10),
		Name:      p.Name,
		Message:   p.Message,
		Timestamp: p.Timestamp,
	}

	f.mu.Lock()
	if f.stopped {
		f.mu.Unlock()
		return
	}
	f.current = banner

	// Replace, don't stack: one timer, restarted on every event. The
	// generation guards against a stale timer firing mid-replacement and
	// clearing the banner it did not own.
	if f.timer != nil {
		f.timer.Stop()
	}
	f.gen++
	gen := f.gen
	f.timer = time.AfterFunc(f.ttl, func() { f.clear(gen) })
	notify := f.onChange
	f.mu.Unlock()

	if notify != nil {
		notify(banner)
	}
}

func (f *BannerFeed) clear(gen uint64) {
	f.mu.Lock()
	if f.stopped || gen != f.gen {
		f.mu.Unlock()
		return
	}
	f.current = nil
	f.timer = nil
	notify := f.onChange
	f.mu.Unlock()

	if notify != nil {
		notify(nil)
	}
}

// Current returns the visible banner, or nil once it has cleared.
func (f *BannerFeed) Current() *Banner {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.current
}

// Stop unsubscribes and cancels any pending clear timer. A timer that fires
// after Stop is a no-op, so a torn-down consumer never sees a late callback.
func (f *BannerFeed) Stop() {
	f.mu.Lock()
	if f.stopped {
		f.mu.Unlock()
		return
	}
	f.stopped = true
	f.current = nil
	if f.timer != nil {
		f.timer.Stop()
		f.timer = nil
	}
	off := f.off
	f.mu.Unlock()

	if off != nil {
		off()
	}
}
