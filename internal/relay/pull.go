// If you are AI: This file implements pull relay functionality: connect to
// a remote RTMP server, play a stream, and republish it locally through
// the Publish façade. Grounded on the teacher's relay/pull.go lifecycle
// shape, filled in with the real connect/createStream/play command
// exchange the teacher left as a NOTE placeholder.

package relay

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"net"
	"net/url"
	"time"

	"go.uber.org/zap"

	"driftcast/internal/amf0"
	"driftcast/internal/publish"
	"driftcast/internal/pubsub"
	"driftcast/internal/rtmp"
)

const (
	relayCommandCSID = 3
	relayDialTimeout = 5 * time.Second
	relayRetryDelay  = 5 * time.Second
)

// PullTask connects to a remote RTMP server, plays a stream, and
// republishes its media locally.
type PullTask struct {
	*BaseTask
	log *zap.Logger
}

func NewPullTask(directory *pubsub.Directory, app, name, remoteURL string, reconnect bool, log *zap.Logger) *PullTask {
	return &PullTask{
		BaseTask: NewBaseTask(directory, app, name, remoteURL, reconnect),
		log:      log,
	}
}

func (t *PullTask) Info() TaskInfo { return t.info("pull") }

func (t *PullTask) Start() error {
	t.SetRunning(true)
	defer t.SetRunning(false)

	host, err := relayHost(t.RemoteURL())
	if err != nil {
		return err
	}

	for {
		select {
		case <-t.StopChan():
			return nil
		default:
		}

		if err := t.runOnce(host); err != nil {
			t.log.Warn("pull relay attempt failed", zap.String("app", t.App()), zap.String("name", t.Name()), zap.Error(err))
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

func (t *PullTask) runOnce(host string) error {
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
	if err := sendCommand(session, amf0.Array{"play", 3.0, nil, t.Name()}, streamID); err != nil {
		conn.Close()
		return fmt.Errorf("send play: %w", err)
	}

	pub, err := t.Directory().Publish(pubsub.NewName(t.App(), t.Name()), 1)
	if err != nil {
		conn.Close()
		return fmt.Errorf("local publish: %w", err)
	}
	defer t.Directory().Unpublish(pub)

	done := make(chan struct{})
	readErr := make(chan error, 1)
	go t.readLoop(session, readErr, done)

	t.drain(pub, done)
	conn.Close()
	return <-readErr
}

func (t *PullTask) readLoop(session *rtmp.ChunkSession, readErr chan<- error, done chan<- struct{}) {
	defer close(done)
	for {
		select {
		case <-t.StopChan():
			readErr <- nil
			return
		default:
		}

		csID, err := session.ReadChunk()
		if err != nil {
			readErr <- err
			return
		}
		body, msgType, timestamp, complete := session.GetCompleteMessage(csID)
		if !complete {
			continue
		}

		var t2 pubsub.MessageType
		switch msgType {
		case rtmp.MessageTypeAudio:
			t2 = pubsub.MessageTypeAudio
		case rtmp.MessageTypeVideo:
			t2 = pubsub.MessageTypeVideo
		case rtmp.MessageTypeDataAMF0:
			t2 = pubsub.MessageTypeData
		default:
			continue
		}

		msg := pubsub.AcquireMessage()
		msg.Type = t2
		msg.Timestamp = timestamp
		msg.SetPayload(body)
		msg.DetectInit()

		if err := t.handle.Submit(context.Background(), publish.WriteMedia{Message: msg}); err != nil {
			readErr <- err
			return
		}
	}
}

func relayHost(remoteURL string) (string, error) {
	u, err := url.Parse(remoteURL)
	if err != nil {
		return "", fmt.Errorf("invalid remote URL: %w", err)
	}
	host := u.Host
	if u.Port() == "" {
		host += ":1935"
	}
	return host, nil
}

func sendCommand(session *rtmp.ChunkSession, cmd amf0.Array, streamID uint32) error {
	body, err := amf0.EncodeCommand(cmd)
	if err != nil {
		return err
	}
	return session.WriteMessage(relayCommandCSID, rtmp.MessageTypeCommandAMF0, 0, streamID, body)
}

// readCreateStreamReply sends createStream and scans incoming messages for
// its _result reply, returning the assigned stream id. Falls back to 1 if
// the remote never replies in a recognizable shape.
func readCreateStreamReply(session *rtmp.ChunkSession, txn float64) (uint32, error) {
	if err := sendCommand(session, amf0.Array{"createStream", txn, nil}, 0); err != nil {
		return 0, err
	}
	for i := 0; i < 16; i++ {
		csID, err := session.ReadChunk()
		if err != nil {
			return 0, err
		}
		body, msgType, _, complete := session.GetCompleteMessage(csID)
		if !complete || msgType != rtmp.MessageTypeCommandAMF0 {
			continue
		}
		r := amf0.NewReader(bufio.NewReader(bytes.NewReader(body)))
		name, _ := r.ReadString()
		replyTxn, _ := r.ReadNumber()
		if name != "_result" || replyTxn != txn {
			continue
		}
		_ = r.ReadNull()
		id, _ := r.ReadNumber()
		if id > 0 {
			return uint32(id), nil
		}
		return 1, nil
	}
	return 1, nil
}
