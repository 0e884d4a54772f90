// If you are AI: This file provides FLV muxing helpers for converting MediaMessage to FLV tags.
// Muxing preserves original payloads without transcoding.

package flv

import (
	"driftcast/internal/pubsub"
)

// MuxAudio converts a pubsub MediaMessage to an FLV audio tag.
// The payload is used directly without modification.
// Allocation: Creates tag structure, reuses payload slice.
func MuxAudio(msg *pubsub.MediaMessage) *Tag {
	if msg == nil || msg.Type != pubsub.MessageTypeAudio {
		return nil
	}
	return NewTag(TagTypeAudio, msg.Timestamp, msg.Payload)
}

// MuxVideo converts a pubsub MediaMessage to an FLV video tag.
// The payload is used directly without modification.
// Allocation: Creates tag structure, reuses payload slice.
func MuxVideo(msg *pubsub.MediaMessage) *Tag {
	if msg == nil || msg.Type != pubsub.MessageTypeVideo {
		return nil
	}
	return NewTag(TagTypeVideo, msg.Timestamp, msg.Payload)
}

// MuxScript converts a pubsub MediaMessage to an FLV script tag.
// The payload is used directly without modification.
// Allocation: Creates tag structure, reuses payload slice.
func MuxScript(msg *pubsub.MediaMessage) *Tag {
	if msg == nil || msg.Type != pubsub.MessageTypeData {
		return nil
	}
	return NewTag(TagTypeScript, msg.Timestamp, msg.Payload)
}

// MuxMessage converts a pubsub MediaMessage to an FLV tag based on message type.
// Returns nil if message type is not supported.
func MuxMessage(msg *pubsub.MediaMessage) *Tag {
	if msg == nil {
		return nil
	}

	switch msg.Type {
	case pubsub.MessageTypeAudio:
		return MuxAudio(msg)
	case pubsub.MessageTypeVideo:
		return MuxVideo(msg)
	case pubsub.MessageTypeData:
		return MuxScript(msg)
	default:
		return nil
	}
}
