// If you are AI: Covers the TCP accept loop lifecycle: Listen binds a
// usable socket, Accept dispatches each connection to its own Session
// without blocking subsequent connections, and Close unblocks Accept.

package rtmp

import (
	"net"
	"testing"
	"time"

	"go.uber.org/zap"

	"driftcast/internal/pubsub"
)

func TestListenAcceptClose(t *testing.T) {
	s := NewServer(pubsub.NewDirectory(), zap.NewNop())
	if err := s.Listen("127.0.0.1:0"); err != nil {
		t.Fatalf("Listen failed: %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- s.Accept() }()

	conn, err := net.Dial("tcp", s.listener.Addr().String())
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	conn.Close()

	if err := s.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Error("Expected Accept to return once the listener closed")
	}
}
