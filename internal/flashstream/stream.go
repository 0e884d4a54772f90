// If you are AI: Stream is the per-NetStream protocol state machine: AMF
// command dispatch, media routing, and the publish/play lifecycle. One
// Stream exists per NetStream id within a session. Grounded on the
// teacher's svc/rtmp Session/commands/publish.go shape (connect/publish/
// createStream command handlers), generalized from "one stream id fixed
// per connection" to the spec's "at most one Publication and one
// Subscription held concurrently."

package flashstream

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"driftcast/internal/amf0"
	"driftcast/internal/pubsub"
	"driftcast/internal/recorder"
)

// MessageKind mirrors the AMF message types a process() caller dispatches
// by, per the component design's "process(type, time, payload, ...)".
type MessageKind int

const (
	KindAudio MessageKind = iota
	KindVideo
	KindData
	KindDataAMF3
	KindInvocation
	KindInvocationAMF3
	KindRaw
	KindEmpty
)

// WriterHandle abstracts the underlying session/writer so FlashStream can
// send status/invocation replies and media frames without depending on a
// concrete transport (RTMP chunk session or RTMFP writer).
type WriterHandle interface {
	SendStatus(transactionNumber float64, level, code, description string) error
	SendData(payload []byte) error
	SendStreamBegin() error
	SendMedia(t pubsub.MessageType, timestamp uint32, payload []byte) error
	PeerID() uint64
}

// NetStats carries the peer RTT/bandwidth estimate forwarded alongside
// media writes, per the component design's process() signature.
type NetStats struct {
	RTT time.Duration
}

// Stream is one NetStream's state: at most one Publication (publishing)
// and at most one Subscription (playing), plus cached parameters.
type Stream struct {
	id        uint16
	log       *zap.Logger
	directory *pubsub.Directory
	writer    WriterHandle
	app       string

	publication    *pubsub.Publication
	subscription   *pubsub.Subscription
	subPublication *pubsub.Publication
	subDone        chan struct{}

	track          string
	lastMediaType  pubsub.MessageType
	pendingBuffer  time.Duration

	rec *recorder.Recorder
}

// New constructs a Stream bound to a session's WriterHandle and the
// server's publish/subscribe Directory. app is the NetConnection's
// application name, fixed for the lifetime of the connection that owns
// this NetStream.
func New(id uint16, log *zap.Logger, directory *pubsub.Directory, writer WriterHandle, app string) *Stream {
	return &Stream{id: id, log: log, directory: directory, writer: writer, app: app}
}

func (s *Stream) ID() uint16 { return s.id }

// Process dispatches by message kind, per §4.4.
func (s *Stream) Process(kind MessageKind, timestamp uint32, payload []byte, stats NetStats) error {
	switch kind {
	case KindAudio:
		return s.receiveMedia(pubsub.MessageTypeAudio, timestamp, payload, stats)
	case KindVideo:
		return s.receiveMedia(pubsub.MessageTypeVideo, timestamp, payload, stats)
	case KindData, KindDataAMF3:
		return s.dataHandler(timestamp, payload)
	case KindInvocation, KindInvocationAMF3:
		return s.handleInvocation(payload)
	case KindRaw:
		return s.handleRaw(payload)
	case KindEmpty:
		return nil
	default:
		s.log.Error("unknown flashstream message kind", zap.Int("kind", int(kind)))
		return fmt.Errorf("flashstream: unknown message kind %d", kind)
	}
}

func (s *Stream) receiveMedia(t pubsub.MessageType, timestamp uint32, payload []byte, stats NetStats) error {
	if s.publication == nil {
		return nil
	}
	msg := pubsub.AcquireMessage()
	msg.Type = t
	msg.Timestamp = timestamp
	msg.Track = s.track
	msg.SetPayload(payload)
	msg.DetectInit()
	if s.rec != nil {
		s.rec.Write(msg)
	}
	s.publication.Publish(msg)
	_ = stats
	return nil
}

// drainMedia forwards buffered frames from sub to the writer until done is
// closed or the subscription is ejected, giving the RTMP/RTMFP player path
// the same media routing httpflv/wsflv get by polling a subscription's
// buffer directly.
func (s *Stream) drainMedia(sub *pubsub.Subscription, done <-chan struct{}) {
	for {
		select {
		case <-done:
			return
		default:
		}
		msg, ok := sub.Buffer().Read()
		if !ok {
			if sub.EjectReason() != pubsub.EjectNone {
				return
			}
			time.Sleep(5 * time.Millisecond)
			continue
		}
		if err := s.writer.SendMedia(msg.Type, msg.Timestamp, msg.Payload); err != nil {
			return
		}
	}
}

// handleRaw implements the two-byte-type + payload RAW dispatch; only
// sync type 0x0022 is recognized, and it is ignored.
func (s *Stream) handleRaw(payload []byte) error {
	if len(payload) < 2 {
		return nil
	}
	rawType := uint16(payload[0])<<8 | uint16(payload[1])
	if rawType == 0x0022 {
		return nil
	}
	return nil
}

func (s *Stream) handleInvocation(payload []byte) error {
	r := amf0.NewReader(newByteReader(payload))
	name, err := r.ReadString()
	if err != nil {
		return err
	}
	txn, err := r.ReadNumber()
	if err != nil {
		return err
	}
	_ = r.ReadNull() // command object, typically null

	return s.messageHandler(name, txn, r)
}

// PollEject checks the active subscription's eject reason and disengages
// if one has been recorded — called by the owning session at flush time.
func (s *Stream) PollEject(idleTimeout time.Duration) {
	if s.subscription == nil {
		return
	}
	s.subscription.PollTimeout(idleTimeout)
	if s.subscription.EjectReason() != pubsub.EjectNone {
		s.disengage()
	}
}

func (s *Stream) Close() {
	s.disengage()
}
