// If you are AI: Directory is the name→Publication map: publish/subscribe/
// unpublish exactly per §4.5. Server-thread-only by convention — the mutex
// here exists because httpflv/wsflv/api readers cross into this map from
// their own goroutines for read-only lookups.

package pubsub

import (
	"sync"

	"github.com/pkg/errors"

	"driftcast/internal/metrics"
)

var (
	ErrAlreadyPublished = errors.New("publication already has a publisher")
	ErrNotFound         = errors.New("publication not found")
)

// Directory maps publication Name to Publication.
type Directory struct {
	mu   sync.RWMutex
	pubs map[Name]*Publication
}

func NewDirectory() *Directory {
	return &Directory{pubs: make(map[Name]*Publication)}
}

// GetOrCreate returns the existing Publication for name, creating one if
// absent.
func (d *Directory) GetOrCreate(name Name) *Publication {
	d.mu.Lock()
	defer d.mu.Unlock()
	if p, ok := d.pubs[name]; ok {
		return p
	}
	p := NewPublication(name)
	d.pubs[name] = p
	metrics.Publications.Set(float64(len(d.pubs)))
	return p
}

func (d *Directory) Get(name Name) (*Publication, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	p, ok := d.pubs[name]
	return p, ok
}

// Publish creates-or-returns a Publication and attempts to attach
// publisherID as its sole publisher; fails if one already owns it.
func (d *Directory) Publish(name Name, publisherID uint64) (*Publication, error) {
	p := d.GetOrCreate(name)
	if !p.AttachPublisher(publisherID) {
		return nil, ErrAlreadyPublished
	}
	return p, nil
}

// Subscribe attaches to an existing publication or fails with ErrNotFound.
func (d *Directory) Subscribe(name Name, opts SubscriptionOptions) (*Publication, *Subscription, error) {
	d.mu.RLock()
	p, ok := d.pubs[name]
	d.mu.RUnlock()
	if !ok {
		return nil, nil, ErrNotFound
	}
	sub, _ := p.AttachSubscription(opts)
	return p, sub, nil
}

// Unpublish evicts every subscriber with EjectError (unless already
// ejected for another reason) and detaches the publisher. The publication
// is removed from the directory once empty.
func (d *Directory) Unpublish(p *Publication) {
	p.DetachPublisher()
	for _, sub := range p.Subscriptions() {
		sub.Eject(EjectError)
	}
	d.RemoveIfEmpty(p.Name())
}

func (d *Directory) RemoveIfEmpty(name Name) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if p, ok := d.pubs[name]; ok && p.IsEmpty() {
		delete(d.pubs, name)
		metrics.Publications.Set(float64(len(d.pubs)))
	}
}

func (d *Directory) Remove(name Name) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.pubs, name)
	metrics.Publications.Set(float64(len(d.pubs)))
}

func (d *Directory) Count() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.pubs)
}

func (d *Directory) List() []Name {
	d.mu.RLock()
	defer d.mu.RUnlock()
	names := make([]Name, 0, len(d.pubs))
	for n := range d.pubs {
		names = append(names, n)
	}
	return names
}
