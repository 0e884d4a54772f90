// If you are AI: This file is the I/O reactor: a readiness-driven dispatcher
// that serializes callbacks per socket while running different sockets in
// parallel across a worker pool. Grounded on the teacher's relay.Manager
// goroutine-supervision shape, generalized from "one task per relay" to
// "one registration per socket."

package reactor

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Handler is implemented by the owner of a registered socket. OnReadable is
// invoked when data is available; OnWritable when the reactor believes a
// flush should be attempted (e.g. after send-queue empty→non-empty).
type Handler interface {
	OnReadable()
	OnWritable()
}

// registration tracks per-socket dispatch state so at most one handler
// callback for a given socket is in flight at a time.
type registration struct {
	handler Handler
	mu      sync.Mutex // serializes this socket's callbacks
	writeArmed bool
}

// Engine is the worker-pool reactor. It does not itself poll an OS-level
// readiness multiplexer (no pack example reaches for raw epoll); instead it
// is driven by per-socket goroutines that call NotifyReadable/NotifyWritable
// as net.Conn/net.PacketConn report activity, and fans the resulting work
// out across a bounded worker pool so handler callbacks run concurrently
// across sockets but serially within one.
type Engine struct {
	log     *zap.Logger
	workers chan struct{} // semaphore bounding concurrent handler invocations

	mu   sync.Mutex
	regs map[uint64]*registration
	next uint64

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New builds an Engine with the given worker pool size.
func New(log *zap.Logger, workers int) *Engine {
	if workers <= 0 {
		workers = 8
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Engine{
		log:     log,
		workers: make(chan struct{}, workers),
		regs:    make(map[uint64]*registration),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Token identifies a registered socket within the engine.
type Token uint64

// Register associates a Handler with a new token.
func (e *Engine) Register(h Handler) Token {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.next++
	id := e.next
	e.regs[id] = &registration{handler: h}
	return Token(id)
}

// Deregister removes the registration; any in-flight callback completes.
func (e *Engine) Deregister(t Token) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.regs, uint64(t))
}

func (e *Engine) lookup(t Token) *registration {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.regs[uint64(t)]
}

// NotifyReadable dispatches OnReadable on a worker, serialized per socket.
func (e *Engine) NotifyReadable(t Token) {
	e.dispatch(t, func(h Handler) { h.OnReadable() })
}

// NotifyWritable dispatches OnWritable. A send-queue transition from
// empty→non-empty should call this to re-arm writable interest.
func (e *Engine) NotifyWritable(t Token) {
	e.dispatch(t, func(h Handler) { h.OnWritable() })
}

func (e *Engine) dispatch(t Token, fn func(Handler)) {
	reg := e.lookup(t)
	if reg == nil {
		return
	}
	select {
	case e.workers <- struct{}{}:
	case <-e.ctx.Done():
		return
	}
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		defer func() { <-e.workers }()
		reg.mu.Lock()
		defer reg.mu.Unlock()
		defer func() {
			if r := recover(); r != nil {
				e.log.Error("reactor handler panic", zap.Any("recover", r))
			}
		}()
		fn(reg.handler)
	}()
}

// Close stops accepting new work and waits for in-flight callbacks to drain.
func (e *Engine) Close() {
	e.cancel()
	e.wg.Wait()
}
