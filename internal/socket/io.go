// If you are AI: This file implements the queued write path, flush, and the
// blocking-with-retry primitives (send/receive/connect/accept) per §4.1.

package socket

import (
	"errors"
	"net"
	"time"

	"driftcast/internal/metrics"
)

// Write is the queued producer entry point: all higher layers go through
// this rather than calling send directly.
func (s *Socket) Write(data []byte, target Address, flags int) (int, error) {
	if s.sockError != nil {
		return 0, s.sockError
	}

	s.sendMu.Lock()
	if len(s.sendQueue) > 0 {
		s.enqueueLocked(data, target, flags)
		s.sendMu.Unlock()
		return 0, nil
	}
	s.sendMu.Unlock()

	n, err := s.sendTo(data, target, flags)
	if err != nil {
		serr, _ := err.(*Error)
		if serr != nil && (serr.Kind == WouldBlock || (serr.Kind == NotConnected && s.hasConnectInProgress())) {
			s.sendMu.Lock()
			s.enqueueLocked(data, target, flags)
			s.sendMu.Unlock()
			return 0, nil
		}
		if s.kind == STREAM {
			s.shutdownOnError()
		}
		return 0, err
	}

	if n < len(data) {
		s.sendMu.Lock()
		s.enqueueLocked(data[n:], target, flags)
		s.sendMu.Unlock()
	}
	return n, nil
}

func (s *Socket) hasConnectInProgress() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hasPeer
}

func (s *Socket) enqueueLocked(data []byte, target Address, flags int) {
	buf := make([]byte, len(data))
	copy(buf, data)
	s.sendQueue = append(s.sendQueue, Sending{Data: buf, Target: target, Flags: flags})
	s.queueingBytes.Add(int64(len(buf)))
	s.reportQueueDepth()
}

func (s *Socket) reportQueueDepth() {
	kind := "stream"
	if s.kind == DATAGRAM {
		kind = "datagram"
	}
	metrics.QueueingBytes.WithLabelValues(kind).Set(float64(s.queueingBytes.Load()))
}

// Flush drains sendQueue front-to-back, stopping at the first short or
// would-block write. Returns the number of bytes actually drained.
func (s *Socket) Flush() (int, error) {
	if s.sockError != nil {
		return 0, s.sockError
	}

	s.sendMu.Lock()
	defer s.sendMu.Unlock()

	drained := 0
	for len(s.sendQueue) > 0 {
		head := s.sendQueue[0]
		n, err := s.sendTo(head.Data, head.Target, head.Flags)
		if err != nil {
			serr, _ := err.(*Error)
			if serr != nil && serr.Kind == WouldBlock {
				break
			}
			if s.kind == STREAM {
				s.sendQueue = nil
				s.queueingBytes.Store(0)
				s.doShutdown()
				return drained, err
			}
			// DATAGRAM: see Open Question in the design notes — this
			// implementation drops the head segment and continues.
			s.sendQueue = s.sendQueue[1:]
			continue
		}
		drained += n
		s.queueingBytes.Sub(int64(n))
		s.reportQueueDepth()
		if n < len(head.Data) {
			s.sendQueue[0] = Sending{Data: head.Data[n:], Target: head.Target, Flags: head.Flags}
			break
		}
		s.sendQueue = s.sendQueue[1:]
	}
	return drained, nil
}

func (s *Socket) shutdownOnError() {
	s.sendMu.Lock()
	s.sendQueue = nil
	s.queueingBytes.Store(0)
	s.sendMu.Unlock()
	s.doShutdown()
}

func (s *Socket) doShutdown() {
	if s.kind == STREAM && s.conn != nil {
		_ = s.conn.Close()
	} else if s.pconn != nil {
		_ = s.pconn.Close()
	}
}

// sendTo retries on interruption and updates sendTime on success. A partial
// DATAGRAM send is a hard failure (UDP may not be fragmented at the
// application boundary).
func (s *Socket) sendTo(data []byte, target Address, flags int) (int, error) {
	for {
		var n int
		var err error
		if s.kind == STREAM {
			n, err = s.conn.Write(data)
		} else {
			ap := target.AddrPort()
			n, err = s.pconn.WriteTo(data, net.UDPAddrFromAddrPort(ap))
		}
		if err != nil {
			ce := classify(err, target.String())
			if ce.Kind == Interrupted {
				continue
			}
			return n, ce
		}
		s.sendTime.Store(nowNanos())
		if s.kind == DATAGRAM && n != len(data) {
			return n, newErr(OTHER, "partial datagram send", nil)
		}
		return n, nil
	}
}

// Receive retries on interruption; returns 0 for orderly FIN and a
// WouldBlock error when non-blocking and empty.
func (s *Socket) Receive(buf []byte) (int, Address, error) {
	if s.sockError != nil {
		return 0, Address{}, s.sockError
	}
	s.reading.Add(1)
	defer s.reading.Add(-1)

	for {
		var n int
		var err error
		var from Address
		if s.kind == STREAM {
			n, err = s.conn.Read(buf)
		} else {
			var addr net.Addr
			n, addr, err = s.pconn.ReadFrom(buf)
			if addr != nil {
				if ap, perr := addrPortOf(addr); perr == nil {
					from = AddressFromAddrPort(ap)
				}
			}
		}
		if err != nil {
			ce := classify(err, "receive")
			if ce.Kind == Interrupted {
				continue
			}
			return n, from, ce
		}
		s.recvTime.Store(nowNanos())
		return n, from, nil
	}
}

// Connect dials addr. timeout>0 bounds a single readiness wait; a timeout
// is reported as CONNECTION_REFUSED. Idempotent for the same address;
// connecting to a different address while already connected fails.
func (s *Socket) Connect(addr Address, timeout time.Duration) error {
	if s.sockError != nil {
		return s.sockError
	}
	s.mu.Lock()
	if s.hasPeer {
		already := s.peerAddress.Equal(addr)
		s.mu.Unlock()
		if already {
			return nil
		}
		return newErr(AlreadyConnected, addr.String(), nil)
	}
	s.mu.Unlock()

	network := "tcp"
	if s.kind == DATAGRAM {
		network = "udp"
	}
	d := net.Dialer{Timeout: timeout}
	conn, err := d.Dial(network, addr.String())
	if err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return newErr(ConnectionRefused, addr.String(), err)
		}
		return classify(err, addr.String())
	}
	s.conn = conn
	s.mu.Lock()
	s.peerAddress = addr
	s.hasPeer = true
	s.mu.Unlock()
	return nil
}

// Accept retries on interruption; returns a new connected STREAM Socket.
func (s *Socket) Accept(listener net.Listener) (*Socket, error) {
	for {
		conn, err := listener.Accept()
		if err != nil {
			ce := classify(err, "accept")
			if ce.Kind == Interrupted {
				continue
			}
			return nil, ce
		}
		return NewStream(conn), nil
	}
}

// ShutdownKind selects which half of the connection to close.
type ShutdownKind int

const (
	ShutdownRecv ShutdownKind = iota
	ShutdownSend
	ShutdownBoth
)

// Shutdown performs a best-effort flush first when kind includes SEND,
// then the OS-level shutdown. On a TCP connection ShutdownRecv and
// ShutdownSend half-close and ShutdownBoth closes the handle; on any other
// connection every kind closes the handle.
func (s *Socket) Shutdown(kind ShutdownKind) error {
	if kind == ShutdownSend || kind == ShutdownBoth {
		_, _ = s.Flush()
		s.sendMu.Lock()
		s.sendQueue = nil
		s.queueingBytes.Store(0)
		s.sendMu.Unlock()
	}
	if tc, ok := s.conn.(*net.TCPConn); ok {
		switch kind {
		case ShutdownRecv:
			return tc.CloseRead()
		case ShutdownSend:
			return tc.CloseWrite()
		default:
			return tc.Close()
		}
	}
	s.doShutdown()
	return nil
}

func nowNanos() int64 { return timeNow().UnixNano() }

// timeNow is indirected so tests can freeze it if ever needed; defaults to
// the real clock.
var timeNow = time.Now
