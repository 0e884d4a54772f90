// If you are AI: Subscriber reads from a Publication's subscription and
// writes FLV tags to an HTTP response body.

package httpflv

import (
	"bufio"
	"io"

	"driftcast/internal/flv"
	"driftcast/internal/pubsub"
)

// Subscriber streams FLV tags for one HTTP client.
type Subscriber struct {
	writer        *bufio.Writer
	sub           *pubsub.Subscription
	pub           *pubsub.Publication
	headerWritten bool
}

func NewSubscriber(w io.Writer, pub *pubsub.Publication) *Subscriber {
	return &Subscriber{
		writer: bufio.NewWriter(w),
		pub:    pub,
	}
}

// WriteHeader writes the FLV file header once.
func (s *Subscriber) WriteHeader(hasAudio, hasVideo bool) error {
	if s.headerWritten {
		return nil
	}
	header := flv.NewHeader(hasAudio, hasVideo)
	if _, err := s.writer.Write(header.Bytes()); err != nil {
		return err
	}
	var prevSize [4]byte
	if _, err := s.writer.Write(prevSize[:]); err != nil {
		return err
	}
	if err := s.writer.Flush(); err != nil {
		return err
	}
	s.headerWritten = true
	return nil
}

// ProcessMessages blocks, forwarding buffered frames as FLV tags until
// the subscription is ejected or a write fails.
func (s *Subscriber) ProcessMessages(done <-chan struct{}) error {
	if s.sub == nil {
		return nil
	}
	for {
		select {
		case <-done:
			return nil
		default:
		}

		if s.sub.EjectReason() != pubsub.EjectNone {
			return nil
		}

		msg, ok := s.sub.Buffer().Read()
		if !ok {
			continue
		}
		tag := flv.MuxMessage(msg)
		if tag == nil {
			continue
		}
		if _, err := s.writer.Write(tag.Bytes()); err != nil {
			return err
		}
		if err := s.writer.Flush(); err != nil {
			return err
		}
	}
}

// Attach attaches with a bounded drop-oldest buffer so a slow HTTP
// client never blocks the publisher.
func (s *Subscriber) Attach() {
	sub, _ := s.pub.AttachSubscription(pubsub.SubscriptionOptions{
		BufferCapacity: 1000,
		Backpressure:   pubsub.BackpressureDropOldest,
	})
	s.sub = sub
}

func (s *Subscriber) Detach() {
	if s.pub != nil && s.sub != nil {
		s.pub.DetachSubscription(s.sub.ID())
		s.sub = nil
	}
}
