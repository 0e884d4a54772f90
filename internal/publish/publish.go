// If you are AI: Publish is the cross-thread producer façade. A producer
// goroutine (e.g. a relay pull task) holds a Handle and submits Actions
// through the server's action queue; the server goroutine, draining the
// queue, resolves the action's publication and invokes Run on it.
// Grounded on the teacher's relay task / manager goroutine ownership split,
// generalized from "task drives its own conn" to "task enqueues actions
// against a server-owned publication."

package publish

import (
	"context"

	"driftcast/internal/pubsub"
)

// Action is one unit of work a producer submits against a publication.
// The publication is exclusively server-owned; Run executes on the server
// goroutine that drains the queue.
type Action interface {
	Run(pub *pubsub.Publication)
}

// Handle is the producer-side façade. It never touches the Publication
// directly — only enqueues Actions.
type Handle struct {
	name  pubsub.Name
	queue chan Action
}

// NewHandle wires a Handle to an existing action queue (owned by the
// server). Capacity bounds producer backpressure when the server thread
// falls behind.
func NewHandle(name pubsub.Name, queue chan Action) *Handle {
	return &Handle{name: name, queue: queue}
}

func (h *Handle) Name() pubsub.Name { return h.name }

// Submit enqueues an Action, blocking if the queue is full, or returning
// ctx.Err() if ctx is cancelled first.
func (h *Handle) Submit(ctx context.Context, a Action) error {
	select {
	case h.queue <- a:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Reset signals the publication should drop any cached parameter state
// (used when a producer reconnects after a gap).
type Reset struct{}

func (Reset) Run(pub *pubsub.Publication) {
	pub.ClearMetadata()
}

// Flush is a no-op "ping" action used to keep the action queue moving and
// detect a stalled server thread from the producer side.
type Flush struct {
	Done chan struct{}
}

func (f Flush) Run(*pubsub.Publication) {
	if f.Done != nil {
		close(f.Done)
	}
}

// Unpublish detaches the publisher; subscribers are ejected by the
// directory's Unpublish, not here — this action only clears the
// publisher slot so a fresh publish() may claim it.
type Unpublish struct {
	PublisherID uint64
}

func (u Unpublish) Run(pub *pubsub.Publication) {
	pub.DetachPublisher()
}

// WriteMedia delivers one already-framed MediaMessage to the publication.
type WriteMedia struct {
	Message *pubsub.MediaMessage
}

func (w WriteMedia) Run(pub *pubsub.Publication) {
	pub.Publish(w.Message)
}

// SetMetadata implements the @setDataFrame control command.
type SetMetadata struct {
	Metadata map[string]interface{}
}

func (s SetMetadata) Run(pub *pubsub.Publication) {
	pub.SetMetadata(s.Metadata)
}
