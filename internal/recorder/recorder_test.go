// If you are AI: Covers the append-style FLV hand-off: the file header
// is written lazily on first frame, the unsupported-extension rejection,
// and SetDir's effect on where New() lands its file.

package recorder

import (
	"os"
	"path/filepath"
	"testing"

	"driftcast/internal/pubsub"
)

func TestNewRejectsNonFLV(t *testing.T) {
	SetDir(t.TempDir())
	if _, err := New("clip.mp4"); err != ErrUnsupported {
		t.Errorf("Expected ErrUnsupported, got %v", err)
	}
}

func TestWriteCreatesFileUnderConfiguredDir(t *testing.T) {
	dir := t.TempDir()
	SetDir(dir)

	rec, err := New("clip.flv")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	msg := pubsub.AcquireMessage()
	msg.Type = pubsub.MessageTypeVideo
	msg.Timestamp = 0
	msg.SetPayload([]byte{0x17, 0x00, 0, 0, 0})

	rec.Write(msg)
	if err := rec.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	path := filepath.Join(dir, "clip.flv")
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Expected file at %s, got: %v", path, err)
	}
	if info.Size() == 0 {
		t.Error("Expected non-empty FLV file after writing a frame")
	}
}

func TestWriteFailureInvokesOnError(t *testing.T) {
	SetDir(t.TempDir())
	rec, err := New("clip.flv")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	rec.Close() // closing the underlying file forces the next Write to fail

	var gotErr error
	rec.OnError(func(e error) { gotErr = e })

	msg := pubsub.AcquireMessage()
	msg.Type = pubsub.MessageTypeVideo
	msg.SetPayload([]byte{0x17, 0x00, 0, 0, 0})
	rec.Write(msg)

	if gotErr == nil {
		t.Error("Expected OnError callback to fire after writing to a closed file")
	}
}
