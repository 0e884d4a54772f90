// If you are AI: A Subscription is a per-subscriber binding to a
// Publication, with per-channel enable flags and a categorized eject
// reason polled at flush time by the owning stream.

package pubsub

import (
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"driftcast/internal/metrics"
)

// EjectReason categorizes why the owning stream should disengage a
// subscription.
type EjectReason int32

const (
	EjectNone EjectReason = iota
	EjectTimeout
	EjectBandwidth
	EjectError
)

func (r EjectReason) String() string {
	switch r {
	case EjectTimeout:
		return "TIMEOUT"
	case EjectBandwidth:
		return "BANDWIDTH"
	case EjectError:
		return "ERROR"
	default:
		return "NONE"
	}
}

// Subscription is a consumer of media messages from a Publication.
type Subscription struct {
	id     uint64
	buffer *RingBuffer

	onMessage func(*MediaMessage)

	receiveAudio atomic.Bool
	receiveVideo atomic.Bool

	ejectReason atomic.Int32

	lastActivity atomic.Int64 // unix nanos, for timeout ejection

	limiter *rate.Limiter // nil when bandwidth ejection is disabled
}

// SubscriptionOptions configures buffer sizing, backpressure, and an
// optional bandwidth ceiling that triggers EjectBandwidth.
type SubscriptionOptions struct {
	BufferCapacity   uint32
	Backpressure     BackpressureStrategy
	BandwidthLimit   int // bytes/sec; 0 disables bandwidth ejection
	BandwidthBurst   int
	IdleTimeout      time.Duration
}

func NewSubscription(id uint64, opts SubscriptionOptions) *Subscription {
	s := &Subscription{
		id:     id,
		buffer: NewRingBuffer(opts.BufferCapacity, opts.Backpressure),
	}
	s.receiveAudio.Store(true)
	s.receiveVideo.Store(true)
	s.lastActivity.Store(time.Now().UnixNano())
	if opts.BandwidthLimit > 0 {
		burst := opts.BandwidthBurst
		if burst <= 0 {
			burst = opts.BandwidthLimit
		}
		s.limiter = rate.NewLimiter(rate.Limit(opts.BandwidthLimit), burst)
	}
	return s
}

func (s *Subscription) ID() uint64          { return s.id }
func (s *Subscription) Buffer() *RingBuffer { return s.buffer }

func (s *Subscription) SetMessageHandler(h func(*MediaMessage)) { s.onMessage = h }

func (s *Subscription) SetReceiveAudio(on bool) { s.receiveAudio.Store(on) }
func (s *Subscription) SetReceiveVideo(on bool) { s.receiveVideo.Store(on) }
func (s *Subscription) ReceiveAudio() bool      { return s.receiveAudio.Load() }
func (s *Subscription) ReceiveVideo() bool      { return s.receiveVideo.Load() }

// Deliver enqueues msg honoring the per-channel enable flags and, if a
// bandwidth limiter is configured, ejects with EjectBandwidth instead of
// enqueueing once the budget is exhausted.
func (s *Subscription) Deliver(msg *MediaMessage) {
	switch msg.Type {
	case MessageTypeAudio:
		if !s.ReceiveAudio() {
			return
		}
	case MessageTypeVideo:
		if !s.ReceiveVideo() {
			return
		}
	}
	if s.limiter != nil && !s.limiter.AllowN(time.Now(), len(msg.Payload)) {
		s.Eject(EjectBandwidth)
		return
	}
	s.lastActivity.Store(time.Now().UnixNano())
	s.buffer.Write(msg)
}

// Eject records a termination reason if one isn't already set; the first
// reason wins (matches "unless they ejected for another reason first").
func (s *Subscription) Eject(reason EjectReason) {
	if s.ejectReason.CompareAndSwap(int32(EjectNone), int32(reason)) {
		metrics.Ejections.WithLabelValues(reason.String()).Inc()
	}
}

func (s *Subscription) EjectReason() EjectReason {
	return EjectReason(s.ejectReason.Load())
}

// PollTimeout is called by the owning stream at flush time to detect an
// idle subscription and eject it with EjectTimeout.
func (s *Subscription) PollTimeout(idle time.Duration) {
	if idle <= 0 {
		return
	}
	last := time.Unix(0, s.lastActivity.Load())
	if time.Since(last) > idle {
		s.Eject(EjectTimeout)
	}
}

// Process reads up to maxMessages from the buffer, invoking the handler.
func (s *Subscription) Process(maxMessages int) int {
	processed := 0
	for i := 0; i < maxMessages; i++ {
		msg, ok := s.buffer.Read()
		if !ok {
			break
		}
		if s.onMessage != nil {
			s.onMessage(msg)
		}
		processed++
	}
	return processed
}

func (s *Subscription) Dropped() uint64 { return s.buffer.Dropped() }
