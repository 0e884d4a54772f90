// If you are AI: Covers per-socket serialization (concurrent
// NotifyReadable calls for one token never overlap), Deregister dropping
// later notifications, and Close draining in-flight work before returning.

package reactor

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type recordingHandler struct {
	inFlight  atomic.Int32
	maxInFlight atomic.Int32
	calls     atomic.Int32
}

func (h *recordingHandler) OnReadable() {
	n := h.inFlight.Add(1)
	for {
		max := h.maxInFlight.Load()
		if n <= max || h.maxInFlight.CompareAndSwap(max, n) {
			break
		}
	}
	time.Sleep(5 * time.Millisecond)
	h.calls.Add(1)
	h.inFlight.Add(-1)
}

func (h *recordingHandler) OnWritable() {}

func TestNotifyReadableSerializedPerSocket(t *testing.T) {
	e := New(zap.NewNop(), 8)
	defer e.Close()

	h := &recordingHandler{}
	tok := e.Register(h)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			e.NotifyReadable(tok)
		}()
	}
	wg.Wait()
	e.Close()

	assert.EqualValues(t, 1, h.maxInFlight.Load(), "expected at most one in-flight callback per socket")
	assert.EqualValues(t, 10, h.calls.Load())
}

func TestDeregisterDropsFutureNotifications(t *testing.T) {
	e := New(zap.NewNop(), 8)
	defer e.Close()

	h := &recordingHandler{}
	tok := e.Register(h)
	e.Deregister(tok)

	e.NotifyReadable(tok)
	e.Close()

	assert.EqualValues(t, 0, h.calls.Load(), "expected no callback after Deregister")
}

func TestCloseWaitsForInFlightCallbacks(t *testing.T) {
	e := New(zap.NewNop(), 8)
	h := &recordingHandler{}
	tok := e.Register(h)

	e.NotifyReadable(tok)
	e.Close()

	assert.EqualValues(t, 1, h.calls.Load(), "expected Close to wait for the in-flight callback")
}
