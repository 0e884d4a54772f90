// If you are AI: Listener is the UDP session demux named in the design as
// explicitly out of scope for handshake cryptography: it serves one
// already-bound UDP net.PacketConn, demultiplexes inbound datagrams to already-established Flow
// objects by a session identifier prefix, and feeds (stageAck, lostCount)
// into the matching Writer. No key exchange, no NetGroup — a Flow arrives
// pre-established from whatever introduced the peer (rendezvous.Directory).

package rtmfp

import (
	"encoding/binary"
	"net"
	"sync"
	"time"

	"go.uber.org/zap"

	"driftcast/internal/socket"
)

// SessionID identifies a Flow on the wire: the first four bytes of every
// datagram exchanged with that peer.
type SessionID uint32

const headerLen = 9 // sessionID(4) + stageAck(4) + lostCount(1)

// Flow is one already-established peer session. Inbound datagrams whose
// SessionID matches are demuxed to it; its Writer addresses the peer
// through the owning Listener.
type Flow struct {
	id     SessionID
	peer   socket.Address
	writer *Writer

	onMessage func(stageAck Stage, payload []byte)
}

// NewFlow constructs a Flow bound to peer, wiring its Writer through
// listener so outbound frames reach the right UDP destination. onMessage
// is invoked with every inbound datagram's trailing payload, once any ack
// it carries has been applied to the Writer; nil is fine for a flow that
// never receives application data (e.g. a keepalive-only peer).
func NewFlow(listener *Listener, id SessionID, peer socket.Address, rto time.Duration, idSource func() uint32, onMessage func(Stage, []byte)) *Flow {
	t := &flowTransport{listener: listener, peer: peer}
	w := NewWriter(listener.log, t, uint32(id), rto, idSource)
	return &Flow{id: id, peer: peer, writer: w, onMessage: onMessage}
}

func (f *Flow) ID() SessionID        { return f.id }
func (f *Flow) Peer() socket.Address { return f.peer }
func (f *Flow) Writer() *Writer      { return f.writer }

// flowTransport adapts the Listener's shared socket to one Flow's peer
// address, satisfying rtmfp.Transport per-flow.
type flowTransport struct {
	listener *Listener
	peer     socket.Address
}

func (t *flowTransport) SendFrame(writerID uint32, reliable bool, stage Stage, payload []byte) error {
	return t.listener.sendFrame(t.peer, writerID, stage, payload)
}

// Listener owns the UDP socket and the session-id → Flow registry.
type Listener struct {
	log   *zap.Logger
	pconn net.PacketConn

	mu    sync.Mutex
	flows map[SessionID]*Flow
}

// NewListener wraps an already-bound pconn and returns a Listener ready to
// Serve. pconn is typically *net.UDPConn via net.ListenPacket("udp", addr).
func NewListener(pconn net.PacketConn, log *zap.Logger) *Listener {
	return &Listener{log: log, pconn: pconn, flows: make(map[SessionID]*Flow)}
}

// Register adds a Flow to the demux table, keyed by its SessionID.
func (l *Listener) Register(f *Flow) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.flows[f.id] = f
}

// Deregister removes a Flow; inbound datagrams for it are dropped after.
func (l *Listener) Deregister(id SessionID) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.flows, id)
}

func (l *Listener) lookup(id SessionID) *Flow {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.flows[id]
}

// Serve reads datagrams until the socket closes or errors. Each datagram
// is demuxed by its leading SessionID, its (stageAck, lostCount) applied
// to that Flow's Writer, and any trailing payload handed to onMessage.
func (l *Listener) Serve() error {
	buf := make([]byte, 65536)
	for {
		n, _, err := l.pconn.ReadFrom(buf)
		if err != nil {
			return err
		}
		l.handlePacket(buf[:n])
	}
}

func (l *Listener) handlePacket(data []byte) {
	if len(data) < headerLen {
		return
	}
	id := SessionID(binary.BigEndian.Uint32(data[0:4]))
	flow := l.lookup(id)
	if flow == nil {
		return
	}
	stageAck := Stage(binary.BigEndian.Uint32(data[4:8]))
	lostCount := int(data[8])
	flow.writer.Acquit(stageAck, lostCount)

	payload := data[headerLen:]
	if len(payload) > 0 && flow.onMessage != nil {
		flow.onMessage(stageAck, payload)
	}
}

// sendFrame writes one outbound frame addressed to peer. writerID doubles
// as the wire SessionID — a Flow's Writer and its demux key share a
// number space, so the peer can demux its own inbound acks the same way.
func (l *Listener) sendFrame(peer socket.Address, writerID uint32, stage Stage, payload []byte) error {
	out := make([]byte, headerLen+len(payload))
	binary.BigEndian.PutUint32(out[0:4], writerID)
	binary.BigEndian.PutUint32(out[4:8], uint32(stage))
	out[8] = 0
	copy(out[headerLen:], payload)

	addr := net.UDPAddrFromAddrPort(peer.AddrPort())
	_, err := l.pconn.WriteTo(out, addr)
	return err
}

// Close releases the underlying socket.
func (l *Listener) Close() error {
	return l.pconn.Close()
}
