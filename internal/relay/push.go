// If you are AI: This file implements push relay functionality: subscribe
// to a local publication and forward its media to a remote RTMP server.
// Grounded on the teacher's relay/push.go lifecycle shape, filled in with
// the real connect/createStream/publish command exchange.

package relay

import (
	"fmt"
	"net"
	"time"

	"go.uber.org/zap"

	"driftcast/internal/amf0"
	"driftcast/internal/pubsub"
	"driftcast/internal/rtmp"
)

// PushTask subscribes to a local publication and republishes its media to
// a remote RTMP server.
type PushTask struct {
	*BaseTask
	log *zap.Logger
}

func NewPushTask(directory *pubsub.Directory, app, name, remoteURL string, reconnect bool, log *zap.Logger) *PushTask {
	return &PushTask{
		BaseTask: NewBaseTask(directory, app, name, remoteURL, reconnect),
		log:      log,
	}
}

func (t *PushTask) Info() TaskInfo { return t.info("push") }

func (t *PushTask) Start() error {
	t.SetRunning(true)
	defer t.SetRunning(false)

	host, err := relayHost(t.RemoteURL())
	if err != nil {
		return err
	}

	localName := pubsub.NewName(t.App(), t.Name())

	for {
		select {
		case <-t.StopChan():
			return nil
		default:
		}

		pub, ok := t.Directory().Get(localName)
		if !ok || !pub.HasPublisher() {
			if !t.reconnect {
				return fmt.Errorf("local stream %s not found or has no publisher", localName)
			}
			select {
			case <-time.After(relayRetryDelay):
				continue
			case <-t.StopChan():
				return nil
			}
		}

		if err := t.runOnce(host, pub); err != nil {
			t.log.Warn("push relay attempt failed", zap.String("app", t.App()), zap.String("name", t.Name()), zap.Error(err))
			if !t.reconnect {
				return err
			}
		}

		select {
		case <-time.After(relayRetryDelay):
		case <-t.StopChan():
			return nil
		}
	}
}

func (t *PushTask) runOnce(host string, pub *pubsub.Publication) error {
	conn, err := net.DialTimeout("tcp", host, relayDialTimeout)
	if err != nil {
		return fmt.Errorf("connect failed: %w", err)
	}

	if err := rtmp.PerformClientHandshake(conn); err != nil {
		conn.Close()
		return fmt.Errorf("handshake failed: %w", err)
	}
	session := rtmp.NewChunkSession(conn)

	if err := sendCommand(session, amf0.Array{"connect", 1.0, amf0.Object{"app": t.App()}}, 0); err != nil {
		conn.Close()
		return fmt.Errorf("send connect: %w", err)
	}
	streamID, err := readCreateStreamReply(session, 2.0)
	if err != nil {
		conn.Close()
		return fmt.Errorf("createStream: %w", err)
	}
	if err := sendCommand(session, amf0.Array{"publish", 3.0, nil, t.Name(), "live"}, streamID); err != nil {
		conn.Close()
		return fmt.Errorf("send publish: %w", err)
	}

	sub, subID := pub.AttachSubscription(pubsub.SubscriptionOptions{
		BufferCapacity: 1000,
		Backpressure:   pubsub.BackpressureDropOldest,
	})
	defer pub.DetachSubscription(subID)

	for {
		select {
		case <-t.StopChan():
			conn.Close()
			return nil
		default:
		}
		if sub.EjectReason() != pubsub.EjectNone {
			conn.Close()
			return fmt.Errorf("local subscription ejected: %v", sub.EjectReason())
		}

		msg, ok := sub.Buffer().Read()
		if !ok {
			time.Sleep(5 * time.Millisecond)
			continue
		}

		msgType, err := remoteMessageType(msg)
		if err != nil {
			pubsub.ReleaseMessage(msg)
			continue
		}
		if err := session.WriteMessage(relayMediaCSID(msg.Type), msgType, msg.Timestamp, streamID, msg.Payload); err != nil {
			pubsub.ReleaseMessage(msg)
			conn.Close()
			return fmt.Errorf("write media: %w", err)
		}
		pubsub.ReleaseMessage(msg)
	}
}

func remoteMessageType(msg *pubsub.MediaMessage) (byte, error) {
	switch msg.Type {
	case pubsub.MessageTypeAudio:
		return rtmp.MessageTypeAudio, nil
	case pubsub.MessageTypeVideo:
		return rtmp.MessageTypeVideo, nil
	case pubsub.MessageTypeData:
		return rtmp.MessageTypeDataAMF0, nil
	default:
		return 0, fmt.Errorf("unsupported relay message type %v", msg.Type)
	}
}

func relayMediaCSID(t pubsub.MessageType) uint32 {
	if t == pubsub.MessageTypeAudio {
		return 4
	}
	return 5
}
