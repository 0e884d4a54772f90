// If you are AI: This file is the per-flow reliable writer: the heart of
// the RTMFP outbound path. Behavior follows §4.3 of the design exactly,
// including the documented Open Question resolution in acquit (see below).

package rtmfp

import (
	"math"
	"sync"
	"time"

	"go.uber.org/zap"

	"driftcast/internal/metrics"
)

const maxRepeatDelay = 10000 * time.Millisecond
const repeatGrowthCeiling = 7072 * time.Millisecond

// Writer drives one reliable flow on top of a Transport. Not safe for
// concurrent use from multiple goroutines except where noted (idSource is
// the only externally-synchronized dependency); callers serialize access
// the way the server thread serializes Publication/Subscription mutation.
type Writer struct {
	log *zap.Logger
	t   Transport

	mu sync.Mutex

	writerID uint32
	idSource func() uint32 // issues a fresh writer-id on fail()

	queue *Queue

	stageAck Stage

	// lostCount is both "last-reported gap" and the throttle threshold
	// compared against in acquit. A smaller subsequent lostCount does
	// NOT reset the threshold — only stageAck progress or fail() resets
	// it to 0. This is the Open Question's resolution: once the peer
	// reports a wider gap we stay primed at that width, because a
	// shrinking report without an intervening ack just means some of
	// the previously-lost frames were repaired by an earlier repeat,
	// not that the flow recovered.
	lostCount int

	rto         time.Duration
	repeatDelay time.Duration
	repeatTime  time.Time

	sendInFlight bool // single-ownership check: a repeat may not overlap an in-flight send

	pendingSender *Messenger // lazily allocated draft batch

	closed bool
}

// NewWriter constructs a Writer bound to writerID, using rto as the
// initial retransmit timeout seed for repeatDelay.
func NewWriter(log *zap.Logger, t Transport, writerID uint32, rto time.Duration, idSource func() uint32) *Writer {
	return &Writer{
		log:      log,
		t:        t,
		writerID: writerID,
		idSource: idSource,
		queue:    newQueue(),
		rto:      rto,
	}
}

func (w *Writer) WriterID() uint32 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.writerID
}

func (w *Writer) StageAck() Stage {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stageAck
}

func (w *Writer) RepeatDelay() time.Duration {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.repeatDelay
}

// NewMessage stages payload in the queue, adds it to the current draft
// batch, and returns the stage assigned to it. Returns nil if the writer
// is closed.
func (w *Writer) NewMessage(reliable bool, payload []byte) *Stage {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	st := w.queue.Append(reliable, payload)
	if w.pendingSender == nil {
		w.pendingSender = &Messenger{}
	}
	w.pendingSender.frames = append(w.pendingSender.frames, frame{stage: st, reliable: reliable, payload: payload})
	return &st
}

// Acquit processes an ack. See rule set in §4.3: advance on progress,
// ignore a zero-lostCount duplicate, else escalate to an immediate repeat
// when the gap has widened.
func (w *Writer) Acquit(stageAck Stage, lostCount int) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if stageAck > w.stageAck {
		w.stageAck = stageAck
		w.lostCount = 0
		w.repeatDelay = w.rto
		w.repeatTime = time.Now()
		w.queue.TrimTo(stageAck)
		return
	}
	if lostCount == 0 {
		return // duplicate ack; ignore
	}
	if lostCount > w.lostCount {
		w.lostCount = lostCount
		w.repeatMessagesLocked(lostCount)
	}
}

// RepeatMessages is the time-driven repeat check with an explicit-lost
// fast path. Call periodically (e.g. from a ticker owned by the flow) with
// lostCount==0 for the time-driven path.
func (w *Writer) RepeatMessages(lostCount int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.repeatMessagesLocked(lostCount)
}

func (w *Writer) repeatMessagesLocked(lostCount int) {
	if lostCount > 0 {
		w.submitRepeat(lostCount)
		return
	}
	if w.sendInFlight {
		return
	}
	if w.queue.Empty() {
		w.repeatDelay = 0
		return
	}
	if time.Since(w.repeatTime) >= w.repeatDelay {
		w.submitRepeat(w.queue.Len())
		w.repeatTime = time.Now()
		w.growRepeatDelay()
	}
}

func (w *Writer) growRepeatDelay() {
	if w.repeatDelay < repeatGrowthCeiling {
		grown := time.Duration(float64(w.repeatDelay) * math.Sqrt2)
		if grown > maxRepeatDelay {
			grown = maxRepeatDelay
		}
		w.repeatDelay = grown
		return
	}
	w.repeatDelay = maxRepeatDelay
}

func (w *Writer) submitRepeat(n int) {
	if n > maxRepeaterFrames {
		n = maxRepeaterFrames
	}
	frames := w.queue.First(n)
	if len(frames) == 0 {
		return
	}
	reason := "time"
	if w.lostCount > 0 {
		reason = "lost"
	}
	metrics.RTMFPRepeats.WithLabelValues(reason).Inc()
	metrics.RTMFPRepeatDelay.Set(float64(w.repeatDelay.Milliseconds()))
	rep := &Repeater{frames: frames}
	w.sendInFlight = true
	go func() {
		defer func() {
			w.mu.Lock()
			w.sendInFlight = false
			w.mu.Unlock()
		}()
		if err := rep.send(w.t, w.writerID); err != nil {
			w.log.Warn("rtmfp repeat failed", zap.Error(err))
		}
	}()
}

// Flushing is invoked when it's time to ship the current draft: it first
// piggybacks a repeat check, then hands any pending Messenger to the
// transport and clears the draft slot.
func (w *Writer) Flushing() {
	w.mu.Lock()
	w.repeatMessagesLocked(0)
	sender := w.pendingSender
	w.pendingSender = nil
	if sender != nil && w.repeatDelay == 0 {
		w.repeatDelay = w.rto
		w.repeatTime = time.Now()
	}
	wid := w.writerID
	w.mu.Unlock()

	if sender == nil {
		return
	}
	if err := sender.send(w.t, wid); err != nil {
		w.log.Warn("rtmfp flush failed", zap.Error(err))
	}
}

// Fail resets the flow after the remote indicated an unrecoverable state.
// Queued messages are not recoverable. The new writer-id is whatever
// idSource returns; Fail does not check that it differs from the previous
// one, and with a nil idSource the writer-id is left unchanged.
func (w *Writer) Fail() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.stageAck = 0
	w.repeatDelay = 0
	w.lostCount = 0
	w.queue = newQueue()
	w.pendingSender = nil
	if w.idSource != nil {
		w.writerID = w.idSource()
	}
}

// Closing appends a terminal message-end reliable frame if the flow had
// any activity, so a late receiver still observes the close.
func (w *Writer) Closing(code uint8, reason string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	w.closed = true
	if w.stageAck > 0 || w.repeatDelay > 0 {
		payload := append([]byte{code}, []byte(reason)...)
		st := w.queue.Append(true, payload)
		sender := &Messenger{frames: []frame{{stage: st, reliable: true, payload: payload}}}
		go func() {
			if err := sender.send(w.t, w.writerID); err != nil {
				w.log.Warn("rtmfp close frame failed", zap.Error(err))
			}
		}()
	}
}
