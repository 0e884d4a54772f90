// If you are AI: This file defines the queued-write segment type.

package socket

// Sending is a single pending outbound segment: application bytes plus the
// destination (for DATAGRAM) and any send flags. The front of the queue is
// always the next thing written to the OS; application packets may never
// overtake queued bytes.
type Sending struct {
	Data   []byte
	Target Address
	Flags  int
}

func (s Sending) len() int { return len(s.Data) }
