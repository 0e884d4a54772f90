// If you are AI: Covers the UDP socket lifecycle: Listen binds a usable
// socket whose Listener() is wired, and Close releases it.

package rtmfp

import (
	"testing"

	"go.uber.org/zap"
)

func TestListenBindsAndClose(t *testing.T) {
	s := NewServer(zap.NewNop())
	if err := s.Listen("127.0.0.1:0"); err != nil {
		t.Fatalf("Listen failed: %v", err)
	}
	if s.Listener() == nil {
		t.Fatal("Expected Listen to wire an rtmfp.Listener")
	}
	if err := s.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
}

func TestCloseBeforeListenIsSafe(t *testing.T) {
	s := NewServer(zap.NewNop())
	if err := s.Close(); err != nil {
		t.Errorf("Expected Close before Listen to be a no-op, got: %v", err)
	}
}
