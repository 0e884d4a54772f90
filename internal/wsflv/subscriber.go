// If you are AI: WebSocket-FLV subscriber. Gates on the first video
// keyframe (init frames always pass through) and rebases timestamps so
// the subscriber's stream starts at ts=0 — prevents player buffer
// deadlocks from a multi-second gap between init and live data.

package wsflv

import (
	"runtime"

	"driftcast/internal/flv"
	"driftcast/internal/pubsub"
)

type WebSocketConn interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

const binaryMessage = 2

type Subscriber struct {
	conn          WebSocketConn
	sub           *pubsub.Subscription
	pub           *pubsub.Publication
	headerWritten bool
	gotKeyframe   bool
	tsOffset      uint32
	tsBaseSet     bool
}

func NewSubscriber(conn WebSocketConn, pub *pubsub.Publication) *Subscriber {
	return &Subscriber{conn: conn, pub: pub}
}

func (s *Subscriber) WriteHeader(hasAudio, hasVideo bool) error {
	if s.headerWritten {
		return nil
	}
	header := flv.NewHeader(hasAudio, hasVideo).Bytes()
	frame := make([]byte, len(header)+4)
	copy(frame, header)
	if err := s.conn.WriteMessage(binaryMessage, frame); err != nil {
		return err
	}
	s.headerWritten = true
	return nil
}

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
			runtime.Gosched()
			continue
		}

		if !s.gotKeyframe && !msg.IsInit {
			if msg.Type == pubsub.MessageTypeVideo && flv.IsVideoKeyframe(msg.Payload) {
				s.gotKeyframe = true
			} else {
				continue
			}
		}

		tag := flv.MuxMessage(msg)
		if tag == nil {
			continue
		}
		tag.Timestamp = s.rebaseTimestamp(msg)

		if err := s.conn.WriteMessage(binaryMessage, tag.Bytes()); err != nil {
			return err
		}
	}
}

func (s *Subscriber) rebaseTimestamp(msg *pubsub.MediaMessage) uint32 {
	if msg.IsInit {
		return 0
	}
	if !s.tsBaseSet {
		s.tsOffset = msg.Timestamp
		s.tsBaseSet = true
	}
	if msg.Timestamp < s.tsOffset {
		return 0
	}
	return msg.Timestamp - s.tsOffset
}

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
