// If you are AI: This file is the core non-blocking socket abstraction:
// one OS handle, a send queue with backpressure, and sticky-error construction.

package socket

import (
	"net"
	"net/netip"
	"sync"
	"time"

	"go.uber.org/atomic"
)

// Type distinguishes STREAM (TCP) from DATAGRAM (UDP) sockets. Immutable
// after construction.
type Type int

const (
	STREAM Type = iota
	DATAGRAM
)

// Socket owns one OS handle (a net.Conn for STREAM, a net.PacketConn for
// DATAGRAM) plus the queueing/backpressure state described in the data model.
type Socket struct {
	kind Type

	mu           sync.Mutex // guards localAddress/peerAddress/listening transitions
	localAddress Address
	peerAddress  Address
	hasPeer      bool
	listening    bool

	recvBufferSize atomic.Int64
	sendBufferSize atomic.Int64

	sendMu        sync.Mutex
	sendQueue     []Sending
	queueingBytes atomic.Int64

	readable atomic.Int64
	reading  atomic.Int64
	recvTime atomic.Int64 // unix nanos
	sendTime atomic.Int64

	conn   net.Conn       // STREAM
	pconn  net.PacketConn // DATAGRAM

	sockError *Error // sticky; set at construction or on unrecoverable failure
}

const (
	defaultRecvBuffer = 212 * 1024
	defaultSendBuffer = 212 * 1024
)

// newSocket is the sticky-error constructor: it never returns a nil *Socket
// together with a nil error is a programmer bug. Subsequent operations on a
// Socket with a sticky error short-circuit without touching the OS.
func newSocket(kind Type) *Socket {
	s := &Socket{kind: kind}
	s.recvBufferSize.Store(defaultRecvBuffer)
	s.sendBufferSize.Store(defaultSendBuffer)
	return s
}

// NewStream wraps an already-established net.Conn (e.g. from Accept/Dial)
// as a STREAM Socket. Best-effort disables Nagle and applies buffer sizes;
// any failure is recorded as the sticky error rather than thrown.
func NewStream(conn net.Conn) *Socket {
	s := newSocket(STREAM)
	s.conn = conn
	if tc, ok := conn.(*net.TCPConn); ok {
		_ = tc.SetNoDelay(true)
		_ = tc.SetReadBuffer(defaultRecvBuffer)
		_ = tc.SetWriteBuffer(defaultSendBuffer)
	}
	if ap, err := addrPortOf(conn.LocalAddr()); err == nil {
		s.localAddress = AddressFromAddrPort(ap)
	}
	if ap, err := addrPortOf(conn.RemoteAddr()); err == nil {
		s.peerAddress = AddressFromAddrPort(ap)
		s.hasPeer = true
	}
	return s
}

// NewDatagram wraps a net.PacketConn as a DATAGRAM Socket.
func NewDatagram(pconn net.PacketConn) *Socket {
	s := newSocket(DATAGRAM)
	s.pconn = pconn
	if udp, ok := pconn.(*net.UDPConn); ok {
		_ = udp.SetReadBuffer(defaultRecvBuffer)
		_ = udp.SetWriteBuffer(defaultSendBuffer)
	}
	if ap, err := addrPortOf(pconn.LocalAddr()); err == nil {
		s.localAddress = AddressFromAddrPort(ap)
	}
	return s
}

// Failed constructs a Socket that is permanently stuck with the given
// sticky error — used when listen/dial itself fails, so the caller still
// gets a uniform *Socket to hold (matching the "constructor never throws"
// contract).
func Failed(kind Type, err error) *Socket {
	s := newSocket(kind)
	s.sockError = classify(err, "construct")
	return s
}

func (s *Socket) Type() Type            { return s.kind }
func (s *Socket) Err() error {
	if s.sockError == nil {
		return nil
	}
	return s.sockError
}

func (s *Socket) LocalAddress() Address {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.localAddress
}

// PeerAddress returns the remote endpoint; STREAM sockets have exactly one
// once connected/accepted, DATAGRAM sockets may have none.
func (s *Socket) PeerAddress() (Address, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.peerAddress, s.hasPeer
}

func (s *Socket) Listening() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listening
}

func (s *Socket) SetListening(v bool) {
	s.mu.Lock()
	s.listening = v
	s.mu.Unlock()
}

func (s *Socket) RecvBufferSize() int64 { return s.recvBufferSize.Load() }
func (s *Socket) SendBufferSize() int64 { return s.sendBufferSize.Load() }

func (s *Socket) QueueingBytes() int64 { return s.queueingBytes.Load() }

func (s *Socket) RecvTime() time.Time {
	n := s.recvTime.Load()
	if n == 0 {
		return time.Time{}
	}
	return time.Unix(0, n)
}

func (s *Socket) SendTime() time.Time {
	n := s.sendTime.Load()
	if n == 0 {
		return time.Time{}
	}
	return time.Unix(0, n)
}

func addrPortOf(a net.Addr) (netip.AddrPort, error) {
	switch v := a.(type) {
	case *net.TCPAddr:
		return netip.AddrPortFrom(ipToAddr(v.IP), uint16(v.Port)), nil
	case *net.UDPAddr:
		return netip.AddrPortFrom(ipToAddr(v.IP), uint16(v.Port)), nil
	default:
		return netip.ParseAddrPort(a.String())
	}
}

func ipToAddr(ip net.IP) netip.Addr {
	if a, ok := netip.AddrFromSlice(ip); ok {
		return a.Unmap()
	}
	return netip.Addr{}
}
