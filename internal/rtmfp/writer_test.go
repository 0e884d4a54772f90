// If you are AI: Tests for the §8 testable properties named in the
// design: stageAck monotonicity, fail() writer-id rotation, and
// repeatDelay growth/boundary at 7071/7072ms.

package rtmfp

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type recordingTransport struct {
	mu     sync.Mutex
	frames []sentFrame
}

type sentFrame struct {
	writerID uint32
	reliable bool
	stage    Stage
	payload  []byte
}

func (r *recordingTransport) SendFrame(writerID uint32, reliable bool, stage Stage, payload []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frames = append(r.frames, sentFrame{writerID, reliable, stage, payload})
	return nil
}

func (r *recordingTransport) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.frames)
}

func TestWriterAcquitAdvancesAndTrims(t *testing.T) {
	tr := &recordingTransport{}
	w := NewWriter(zap.NewNop(), tr, 1, 200*time.Millisecond, nil)

	w.NewMessage(true, []byte("a"))
	w.NewMessage(true, []byte("b"))
	w.Flushing()

	assert.Equal(t, 2, w.queue.Len(), "expected 2 queued frames before ack")

	w.Acquit(1, 0)
	assert.Equal(t, Stage(1), w.StageAck())
	assert.Equal(t, 1, w.queue.Len(), "expected 1 remaining queued frame after trim")

	// A lower stageAck than already observed must not regress.
	w.Acquit(0, 0)
	assert.Equal(t, Stage(1), w.StageAck(), "stageAck must not regress")
}

func TestWriterAcquitDuplicateZeroLostIgnored(t *testing.T) {
	tr := &recordingTransport{}
	w := NewWriter(zap.NewNop(), tr, 1, 200*time.Millisecond, nil)

	w.Acquit(0, 3)
	assert.EqualValues(t, 3, w.lostCount, "expected lostCount 3 after first gap report")

	// A duplicate ack carrying no new loss information must not reset it.
	w.Acquit(0, 0)
	assert.EqualValues(t, 3, w.lostCount, "duplicate zero-loss ack must not reset lostCount")

	// A narrower gap must not shrink the throttle threshold either.
	w.Acquit(0, 1)
	assert.EqualValues(t, 3, w.lostCount, "lostCount must stay primed at the widest gap seen")
}

func TestWriterFailRotatesWriterID(t *testing.T) {
	tr := &recordingTransport{}
	next := uint32(100)
	idSource := func() uint32 {
		next++
		return next
	}
	w := NewWriter(zap.NewNop(), tr, 1, 200*time.Millisecond, idSource)

	before := w.WriterID()
	w.Fail()
	after := w.WriterID()

	assert.NotEqual(t, before, after, "expected writer id to rotate on Fail()")
	assert.Equal(t, Stage(0), w.StageAck(), "expected stageAck reset to 0 after Fail()")
}

func TestRepeatDelayGrowthBoundary(t *testing.T) {
	w := &Writer{repeatDelay: 5000 * time.Millisecond}
	w.growRepeatDelay()
	assert.Greater(t, w.repeatDelay, 7071*time.Millisecond)
	assert.LessOrEqual(t, w.repeatDelay, 7072*time.Millisecond)

	// Once at/above the ceiling, growth clamps to maxRepeatDelay rather
	// than continuing to multiply by sqrt(2).
	w2 := &Writer{repeatDelay: repeatGrowthCeiling}
	w2.growRepeatDelay()
	assert.Equal(t, maxRepeatDelay, w2.repeatDelay)
}

func TestRepeaterClampsTo255Frames(t *testing.T) {
	tr := &recordingTransport{}
	w := NewWriter(zap.NewNop(), tr, 1, 10*time.Millisecond, nil)
	for i := 0; i < 300; i++ {
		w.NewMessage(true, []byte{byte(i)})
	}

	w.submitRepeat(300)
	time.Sleep(20 * time.Millisecond)

	assert.Equal(t, maxRepeaterFrames, tr.count(), "expected repeat to clamp to the max repeater frame count")
}
