// If you are AI: A Publication is the server-side object representing a
// live stream by name: one publisher, many subscriptions, fanned out
// without per-message allocation.

package pubsub

import (
	"sync"

	"driftcast/internal/metrics"
)

// Name identifies a publication by application and stream name.
type Name struct {
	App    string
	Stream string
}

func NewName(app, stream string) Name { return Name{App: app, Stream: stream} }

func (n Name) String() string { return n.App + "/" + n.Stream }

// Publisher marks which peer currently owns the publication.
type Publisher struct {
	id uint64
}

// Publication is a live stream: one publisher, many subscriptions.
type Publication struct {
	name Name

	mu            sync.RWMutex
	publisher     *Publisher
	subscriptions map[uint64]*Subscription
	nextSubID     uint64

	metadata map[string]interface{} // last @setDataFrame payload
}

func NewPublication(name Name) *Publication {
	return &Publication{
		name:          name,
		subscriptions: make(map[uint64]*Subscription),
		nextSubID:     1,
	}
}

func (p *Publication) Name() Name { return p.name }

// AttachPublisher returns false if a publisher already owns this name.
func (p *Publication) AttachPublisher(id uint64) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.publisher != nil {
		return false
	}
	p.publisher = &Publisher{id: id}
	return true
}

func (p *Publication) DetachPublisher() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.publisher = nil
}

func (p *Publication) HasPublisher() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.publisher != nil
}

func (p *Publication) AttachSubscription(opts SubscriptionOptions) (*Subscription, uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	id := p.nextSubID
	p.nextSubID++
	sub := NewSubscription(id, opts)
	p.subscriptions[id] = sub
	metrics.Subscribers.WithLabelValues(p.name.String()).Set(float64(len(p.subscriptions)))
	return sub, id
}

func (p *Publication) DetachSubscription(id uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.subscriptions, id)
	metrics.Subscribers.WithLabelValues(p.name.String()).Set(float64(len(p.subscriptions)))
}

// Publish fans msg out to every attached subscription without blocking
// the publisher on any one subscriber's buffer.
func (p *Publication) Publish(msg *MediaMessage) {
	if msg == nil {
		return
	}
	p.mu.RLock()
	subs := make([]*Subscription, 0, len(p.subscriptions))
	for _, s := range p.subscriptions {
		subs = append(subs, s)
	}
	p.mu.RUnlock()

	for _, s := range subs {
		s.Deliver(msg)
	}
}

// Subscriptions returns a snapshot of the currently attached subscriptions,
// e.g. for eject polling.
func (p *Publication) Subscriptions() []*Subscription {
	p.mu.RLock()
	defer p.mu.RUnlock()
	subs := make([]*Subscription, 0, len(p.subscriptions))
	for _, s := range p.subscriptions {
		subs = append(subs, s)
	}
	return subs
}

func (p *Publication) SubscriptionCount() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.subscriptions)
}

func (p *Publication) IsEmpty() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.publisher == nil && len(p.subscriptions) == 0
}

// SetMetadata replaces the cached @setDataFrame metadata map.
func (p *Publication) SetMetadata(m map[string]interface{}) {
	p.mu.Lock()
	p.metadata = m
	p.mu.Unlock()
}

// ClearMetadata implements @clearDataFrame.
func (p *Publication) ClearMetadata() {
	p.mu.Lock()
	p.metadata = nil
	p.mu.Unlock()
}

func (p *Publication) Metadata() map[string]interface{} {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.metadata
}
