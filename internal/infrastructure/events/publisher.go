package events

import (
	"math/rand/v2"
	"time"

	"github.com/AdBoard-Booking/neon-insta-screen/internal/domain"
	"github.com/AdBoard-Booking/neon-insta-screen/internal/infrastructure/ws"
)

// Publisher shapes business events and hands them to the connection
// registry. Broadcasting is a side effect of an already-committed write, so
// no method here returns an error: with no registry installed or no
// subscribers connected, publishing is a silent no-op.
type Publisher struct {
	registry func() *ws.Registry
	room     string
	now      func() time.Time
	pick     func(n int) int
}

func NewPublisher(room string) *Publisher {
	if room == "" {
		room = ws.DefaultRoom
	}
	return &Publisher{
		registry: ws.Current,
		room:     room,
		now:      time.Now,
		pick:     rand.IntN,
	}
}

// NewPublisherWith wires an explicit registry lookup, clock and random
// source. Tests use it to publish into isolated registries deterministically.
func NewPublisherWith(registry func() *ws.Registry, room string, now func() time.Time, pick func(n int) int) *Publisher {
	p := NewPublisher(room)
	if registry != nil {
		p.registry = registry
	}
	if now != nil {
		p.now = now
	}
	if pick != nil {
		p.pick = pick
	}
	return p
}

// NewUpload announces a fresh submission so connected displays can flash
// the "someone just uploaded" banner.
func (p *Publisher) NewUpload(name string) {
	ts := p.now().UnixMilli()
	msg := ws.NewUpload(name, PickUploadMessage(name, p.pick), ts)
	p.broadcast(msg)
}

// Approved republishes the updated record. The legacy approved_post kind is
// kept for older displays; billboard_update is what current consumers watch.
func (p *Publisher) Approved(submission domain.Submission) {
	ts := p.now().UnixMilli()
	p.broadcast(ws.NewApprovedPost(submission, ts))
	p.broadcast(ws.NewBillboardUpdateFromSubmission(submission, ts))
}

func (p *Publisher) Rejected(submissionID string) {
	ts := p.now().UnixMilli()
	p.broadcast(ws.NewRejectedPost(submissionID, ts))
	p.broadcast(ws.NewBillboardUpdate(submissionID, "", ts))
}

func (p *Publisher) Deleted(submissionID string) {
	ts := p.now().UnixMilli()
	p.broadcast(ws.NewBillboardUpdate(submissionID, "deleted", ts))
}

func (p *Publisher) broadcast(msg *ws.Message) {
	reg := p.registry()
	if reg == nil {
		return
	}
	reg.Broadcast(p.room, msg.Event, msg.Payload)
}
