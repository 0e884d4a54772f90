// If you are AI: This file defines the three discrete send actions a
// Writer submits for transmission. Each Sender renders itself into one or
// more wire frames and hands them to the Transport.

package rtmfp

// Transport is the minimal capability a Writer needs from its underlying
// RTMFP session to actually put bytes on the wire. It is satisfied by the
// per-flow flowTransport of the UDP session demux in listener.go.
type Transport interface {
	SendFrame(writerID uint32, reliable bool, stage Stage, payload []byte) error
}

// Sender is a unit of work that the Writer hands to its Transport. The
// Writer runs each send itself (repeats and close frames on their own
// goroutine); senders do not go through internal/reactor.
type Sender interface {
	send(t Transport, writerID uint32) error
}

// Messenger ships a batch of one or more newly-appended messages.
type Messenger struct {
	frames []frame
}

func (m *Messenger) send(t Transport, writerID uint32) error {
	for _, f := range m.frames {
		if err := t.SendFrame(writerID, f.reliable, f.stage, f.payload); err != nil {
			return err
		}
	}
	return nil
}

// Repeater resends the first n unacknowledged stages. n is clamped to 255
// by the caller per the boundary property.
type Repeater struct {
	frames []frame
}

func (r *Repeater) send(t Transport, writerID uint32) error {
	for _, f := range r.frames {
		if err := t.SendFrame(writerID, f.reliable, f.stage, f.payload); err != nil {
			return err
		}
	}
	return nil
}

// Acquiter carries the newly-acknowledged stage used to trim the queue.
// It has nothing to transmit itself — acks are a receive-side artifact.
// Writer.Acquit trims the queue directly and does not construct one.
type Acquiter struct {
	ack Stage
}

func (a *Acquiter) send(Transport, uint32) error { return nil }

const maxRepeaterFrames = 255
