// If you are AI: writerHandle adapts a Session's chunk-layer connection to
// flashstream.WriterHandle, so the protocol-agnostic Stream state machine
// can send status/invocation/media replies without depending on the chunk
// transport directly.

package rtmp

import (
	"driftcast/internal/amf0"
	"driftcast/internal/pubsub"
	"driftcast/internal/rtmp"
)

type writerHandle struct {
	session  *Session
	streamID uint32
}

func (w *writerHandle) SendStatus(transactionNumber float64, level, code, description string) error {
	body, err := amf0.EncodeCommand(amf0.Array{
		"onStatus", transactionNumber, nil,
		amf0.Object{"level": level, "code": code, "description": description},
	})
	if err != nil {
		return err
	}
	return w.session.chunk.WriteMessage(statusCSID, rtmp.MessageTypeCommandAMF0, 0, w.streamID, body)
}

func (w *writerHandle) SendData(payload []byte) error {
	return w.session.chunk.WriteMessage(dataCSID, rtmp.MessageTypeDataAMF0, 0, w.streamID, payload)
}

func (w *writerHandle) SendStreamBegin() error {
	return w.session.chunk.WriteMessage(2, rtmp.MessageTypeUserCtrl, 0, 0, rtmp.CreateStreamBegin(w.streamID))
}

func (w *writerHandle) SendMedia(t pubsub.MessageType, timestamp uint32, payload []byte) error {
	var csID uint32
	var msgType byte
	switch t {
	case pubsub.MessageTypeAudio:
		csID, msgType = 6, rtmp.MessageTypeAudio
	case pubsub.MessageTypeVideo:
		csID, msgType = 7, rtmp.MessageTypeVideo
	default:
		return nil
	}
	return w.session.chunk.WriteMessage(csID, msgType, timestamp, w.streamID, payload)
}

func (w *writerHandle) PeerID() uint64 { return w.session.peerID }
