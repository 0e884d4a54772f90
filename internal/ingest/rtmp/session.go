// If you are AI: Session is the per-connection RTMP state: handshake,
// connect handshake commands (releaseStream/FCPublish/connect), and the
// createStream→NetStream id mapping. Each NetStream's actual command/media
// dispatch is delegated to a flashstream.Stream. Grounded on the teacher's
// svc/rtmp ServiceSession, generalized so stream-level logic lives once in
// flashstream instead of being duplicated per transport.

package rtmp

import (
	"fmt"
	"io"
	"sync"

	"go.uber.org/zap"

	"driftcast/internal/amf0"
	"driftcast/internal/flashstream"
	"driftcast/internal/pubsub"
	"driftcast/internal/rtmp"
)

const (
	commandCSID = 3
	statusCSID  = 5
	dataCSID    = 4
)

// Session owns one TCP connection's chunk-layer session plus the set of
// NetStreams (flashstream.Stream) created on it via createStream.
type Session struct {
	chunk     *rtmp.ChunkSession
	directory *pubsub.Directory
	log       *zap.Logger

	mu           sync.Mutex
	app          string
	nextStreamID uint32
	streams      map[uint32]*flashstream.Stream
	peerID       uint64
}

func NewSession(conn io.ReadWriter, directory *pubsub.Directory, log *zap.Logger, peerID uint64) *Session {
	return &Session{
		chunk:        rtmp.NewChunkSession(conn),
		directory:    directory,
		log:          log,
		nextStreamID: 1,
		streams:      make(map[uint32]*flashstream.Stream),
		peerID:       peerID,
	}
}

func (s *Session) PerformHandshake() error {
	return s.chunk.PerformHandshake()
}

// Serve runs the chunk read loop until the connection closes or a fatal
// protocol error occurs.
func (s *Session) Serve() error {
	for {
		csID, err := s.chunk.ReadChunk()
		if err != nil {
			return err
		}
		body, msgType, timestamp, complete := s.chunk.GetCompleteMessage(csID)
		if !complete {
			continue
		}

		switch msgType {
		case rtmp.MessageTypeSetChunkSize:
			if size, err := rtmp.ParseSetChunkSize(body); err == nil {
				// Read-side chunk size is tracked by the parser per chunk
				// stream; nothing further to apply here.
				_ = size
			}
		case rtmp.MessageTypeCommandAMF0:
			if err := s.handleCommand(body); err != nil {
				return err
			}
		case rtmp.MessageTypeAudio:
			s.dispatchMedia(flashstream.KindAudio, timestamp, body)
		case rtmp.MessageTypeVideo:
			s.dispatchMedia(flashstream.KindVideo, timestamp, body)
		case rtmp.MessageTypeDataAMF0:
			s.dispatchMedia(flashstream.KindData, timestamp, body)
		default:
			// abort/ack/window-ack/peer-bandwidth carry no routable payload.
		}
	}
}

// handleCommand dispatches connection-level commands (connect,
// releaseStream, FCPublish, createStream) here, and routes every other
// invocation into the owning flashstream.Stream by its message stream id.
//
// RTMP's command message header carries the target stream id separately
// from the AMF body, but ChunkSession.GetCompleteMessage only returns the
// chunk-layer body — so streamID-scoped commands (play, publish, ...) go
// to the session's only NetStream. When the session has no NetStream or
// more than one, such a command is not routed: handleCommand returns an
// error, which ends Serve.
func (s *Session) handleCommand(body []byte) error {
	r := amf0.NewReader(bufio(body))
	name, err := r.ReadString()
	if err != nil {
		return err
	}
	txn, _ := r.ReadNumber()

	switch name {
	case "connect":
		// connect's third element is the command object itself, not
		// preceded by a null — unlike every other invocation.
		return s.handleConnect(r, txn)
	case "releaseStream", "FCPublish":
		_ = r.ReadNull()
		return s.sendSimpleResult(txn)
	case "createStream":
		_ = r.ReadNull()
		return s.handleCreateStream(txn)
	case "deleteStream", "closeStream":
		s.closeActiveStream()
		return nil
	case "FCUnpublish":
		return nil
	default:
		_ = r.ReadNull()
		return s.routeToActiveStream(name, txn, r)
	}
}

func (s *Session) handleConnect(r *amf0.Reader, txn float64) error {
	app := "live"
	if v, err := r.ReadValue(); err == nil {
		if obj, ok := v.(amf0.Object); ok {
			if a, ok := obj["app"].(string); ok {
				app = a
			}
		}
	}
	s.mu.Lock()
	s.app = app
	s.mu.Unlock()

	controls := []struct {
		msgType byte
		body    []byte
	}{
		{rtmp.MessageTypeWinAckSize, rtmp.CreateWindowAckSize(2500000)},
		{rtmp.MessageTypeSetPeerBandwidth, rtmp.CreateSetPeerBandwidth(2500000, 2)},
		{rtmp.MessageTypeSetChunkSize, rtmp.CreateSetChunkSize(s.chunk.GetChunkSize())},
	}
	for _, c := range controls {
		if err := s.chunk.WriteMessage(2, c.msgType, 0, 0, c.body); err != nil {
			return err
		}
	}

	result := amf0.Object{"fmsVer": "FMS/3,0,1,123", "capabilities": float64(31)}
	info := amf0.Object{
		"level": "status", "code": "NetConnection.Connect.Success",
		"description": "Connection succeeded.", "objectEncoding": float64(0),
	}
	body, err := amf0.EncodeCommand(amf0.Array{"_result", txn, result, info})
	if err != nil {
		return err
	}
	return s.chunk.WriteMessage(commandCSID, rtmp.MessageTypeCommandAMF0, 0, 0, body)
}

func (s *Session) sendSimpleResult(txn float64) error {
	body, err := amf0.EncodeCommand(amf0.Array{"_result", txn, nil})
	if err != nil {
		return err
	}
	return s.chunk.WriteMessage(commandCSID, rtmp.MessageTypeCommandAMF0, 0, 0, body)
}

func (s *Session) handleCreateStream(txn float64) error {
	s.mu.Lock()
	id := s.nextStreamID
	s.nextStreamID++
	stream := flashstream.New(uint16(id), s.log, s.directory, &writerHandle{session: s, streamID: id}, s.app)
	s.streams[id] = stream
	s.mu.Unlock()

	body, err := amf0.EncodeCommand(amf0.Array{"_result", txn, nil, float64(id)})
	if err != nil {
		return err
	}
	return s.chunk.WriteMessage(commandCSID, rtmp.MessageTypeCommandAMF0, 0, 0, body)
}

// routeToActiveStream handles invocations scoped to a NetStream (play,
// publish, pause, seek, receiveAudio, receiveVideo) by replaying the
// already-consumed name/txn through the owning stream's generic dispatch.
func (s *Session) routeToActiveStream(name string, txn float64, r *amf0.Reader) error {
	stream := s.soleActiveStream()
	if stream == nil {
		return fmt.Errorf("rtmp: command %q with no active NetStream", name)
	}
	return stream.Process(flashstream.KindInvocation, 0, reEncodeInvocation(name, txn, r), flashstream.NetStats{})
}

func (s *Session) soleActiveStream() *flashstream.Stream {
	s.mu.Lock()
	defer s.mu.Unlock()
	var only *flashstream.Stream
	for _, st := range s.streams {
		if only != nil {
			return nil
		}
		only = st
	}
	return only
}

func (s *Session) closeActiveStream() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, st := range s.streams {
		st.Close()
		delete(s.streams, id)
	}
}

func (s *Session) dispatchMedia(kind flashstream.MessageKind, timestamp uint32, body []byte) {
	stream := s.soleActiveStream()
	if stream == nil {
		return
	}
	_ = stream.Process(kind, timestamp, body, flashstream.NetStats{})
}

func (s *Session) Close() {
	s.mu.Lock()
	streams := make([]*flashstream.Stream, 0, len(s.streams))
	for _, st := range s.streams {
		streams = append(streams, st)
	}
	s.streams = make(map[uint32]*flashstream.Stream)
	s.mu.Unlock()
	for _, st := range streams {
		st.Close()
	}
}

// reEncodeInvocation rebuilds a flat AMF0 command body (name, txn, null,
// remaining args) from a Reader whose name/txn/command-object have already
// been consumed, so flashstream.Stream.Process can decode it the same way
// it would an unconsumed wire message.
func reEncodeInvocation(name string, txn float64, r *amf0.Reader) []byte {
	args := make(amf0.Array, 0, 4)
	args = append(args, name, txn, nil)
	for {
		v, err := r.ReadValue()
		if err != nil {
			break
		}
		args = append(args, v)
	}
	body, _ := amf0.EncodeCommand(args)
	return body
}

func bufio(body []byte) *bytesPeeker { return newBytesPeeker(body) }

// bytesPeeker adapts a byte slice to the Peek-capable reader amf0.Reader's
// PeekType expects, without pulling in bufio for a fixed-size buffer.
type bytesPeeker struct {
	data []byte
	pos  int
}

func newBytesPeeker(data []byte) *bytesPeeker { return &bytesPeeker{data: data} }

func (b *bytesPeeker) Read(p []byte) (int, error) {
	if b.pos >= len(b.data) {
		return 0, io.EOF
	}
	n := copy(p, b.data[b.pos:])
	b.pos += n
	return n, nil
}

func (b *bytesPeeker) Peek(n int) ([]byte, error) {
	if b.pos+n > len(b.data) {
		return nil, io.EOF
	}
	return b.data[b.pos : b.pos+n], nil
}
