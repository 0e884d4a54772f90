// If you are AI: dataHandler supports the three AMF0 data-message
// encodings named in §4.4. The @track branch's scope decision (documented
// as an Open Question) is resolved here: it affects the active track for
// the remainder of the stream, not just the rest of the current packet —
// simpler to reason about and matches how @setDataFrame/@clearDataFrame
// persist across packets.

package flashstream

import (
	"strings"

	"driftcast/internal/amf0"
	"driftcast/internal/pubsub"
)

func (s *Stream) dataHandler(timestamp uint32, payload []byte) error {
	if len(payload) == 0 {
		return nil
	}

	r := amf0.NewReader(newByteReader(payload))
	marker, err := r.PeekType()
	if err != nil {
		// Not peekable context (shouldn't happen via newByteReader) —
		// forward the whole payload as typed AMF data on the current
		// track, the fallback encoding.
		return s.forwardData(timestamp, payload)
	}

	switch marker {
	case amf0.TypeNull, amf0.TypeUndefined:
		return s.manualPublish(timestamp, payload)
	case amf0.TypeString:
		str, err := r.ReadString()
		if err != nil {
			return err
		}
		if strings.HasPrefix(str, "@") {
			return s.controlCommand(str, r, timestamp, payload)
		}
		return s.forwardData(timestamp, payload)
	default:
		return s.forwardData(timestamp, payload)
	}
}

// manualPublish handles the leading-null encoding: an optional inline tag
// describing track/type via a single prefix byte, with any trailing bytes
// in the same packet recursively handled.
func (s *Stream) manualPublish(timestamp uint32, payload []byte) error {
	const nullMarkerLen = 1
	if len(payload) <= nullMarkerLen {
		return nil
	}
	rest := payload[nullMarkerLen:]
	if len(rest) == 0 {
		return nil
	}

	tagByte := rest[0]
	body := rest[1:]
	switch tagByte {
	case 0: // audio-tagged
		return s.receiveMedia(pubsub.MessageTypeAudio, timestamp, body, NetStats{})
	case 1: // video-tagged
		return s.receiveMedia(pubsub.MessageTypeVideo, timestamp, body, NetStats{})
	default:
		if len(body) > 0 {
			return s.dataHandler(timestamp, body)
		}
		return nil
	}
}

func (s *Stream) controlCommand(cmd string, r *amf0.Reader, timestamp uint32, payload []byte) error {
	switch cmd {
	case "@clearDataFrame":
		if s.publication != nil {
			s.publication.ClearMetadata()
		}
		return nil
	case "@setDataFrame":
		v, err := r.ReadValue()
		if err != nil {
			return err
		}
		obj, _ := v.(amf0.Object)
		if s.publication != nil {
			meta := make(map[string]interface{}, len(obj))
			for k, val := range obj {
				meta[k] = val
			}
			s.publication.SetMetadata(meta)
		}
		return nil
	case "@track":
		name, err := r.ReadString()
		if err != nil {
			return err
		}
		s.track = name
		return nil
	default:
		return s.forwardData(timestamp, payload)
	}
}

func (s *Stream) forwardData(timestamp uint32, payload []byte) error {
	return s.receiveMedia(pubsub.MessageTypeData, timestamp, payload, NetStats{})
}
