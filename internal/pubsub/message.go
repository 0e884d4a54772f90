// If you are AI: MediaMessage and its pool. Payload memory is pooled to
// avoid per-frame allocation on the publish hot path.

package pubsub

import "sync"

// MessageType is the kind of media carried by a MediaMessage.
type MessageType uint8

const (
	MessageTypeAudio MessageType = iota
	MessageTypeVideo
	MessageTypeData
	MessageTypeInvocation
)

// MediaMessage is one AMF-framed unit flowing from a Publication to its
// Subscriptions. The publisher retains ownership until every subscription
// has processed it; release returns it to the pool.
type MediaMessage struct {
	Type      MessageType
	Timestamp uint32
	Track     string
	Payload   []byte
	// IsInit marks codec configuration frames (AVC/AAC sequence headers)
	// that late-joining subscribers must receive before any other frame
	// of that channel, regardless of keyframe gating.
	IsInit bool
}

var messagePool = sync.Pool{New: func() interface{} { return &MediaMessage{} }}

var payloadPool = sync.Pool{New: func() interface{} {
	buf := make([]byte, 0, 64*1024)
	return &buf
}}

func AcquireMessage() *MediaMessage {
	msg := messagePool.Get().(*MediaMessage)
	msg.Type = 0
	msg.Timestamp = 0
	msg.Track = ""
	msg.Payload = nil
	msg.IsInit = false
	return msg
}

func ReleaseMessage(msg *MediaMessage) {
	if msg == nil {
		return
	}
	msg.Payload = nil
	messagePool.Put(msg)
}

func AcquirePayload() []byte {
	bufPtr := payloadPool.Get().(*[]byte)
	return (*bufPtr)[:0]
}

func ReleasePayload(buf []byte) {
	if buf == nil {
		return
	}
	buf = buf[:0]
	if cap(buf) <= 256*1024 {
		payloadPool.Put(&buf)
	}
}

func (m *MediaMessage) SetPayload(data []byte) {
	buf := AcquirePayload()
	m.Payload = append(buf, data...)
}

func (m *MediaMessage) Clone() *MediaMessage {
	clone := AcquireMessage()
	clone.Type = m.Type
	clone.Timestamp = m.Timestamp
	clone.Track = m.Track
	clone.IsInit = m.IsInit
	if len(m.Payload) > 0 {
		clone.SetPayload(m.Payload)
	}
	return clone
}

// DetectInit sets IsInit by inspecting the FLV-style payload header: an
// AVC sequence header (video AVCPacketType==0) or an AAC sequence header
// (audio AACPacketType==0).
func (m *MediaMessage) DetectInit() {
	if len(m.Payload) < 2 {
		return
	}
	switch m.Type {
	case MessageTypeVideo:
		m.IsInit = m.Payload[1] == 0
	case MessageTypeAudio:
		soundFormat := m.Payload[0] >> 4
		m.IsInit = soundFormat == 10 && m.Payload[1] == 0
	}
}

func (t MessageType) String() string {
	switch t {
	case MessageTypeAudio:
		return "audio"
	case MessageTypeVideo:
		return "video"
	case MessageTypeData:
		return "data"
	case MessageTypeInvocation:
		return "invocation"
	default:
		return "unknown"
	}
}
