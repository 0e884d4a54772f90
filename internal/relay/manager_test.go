// If you are AI: This file contains unit tests for the relay manager.
// Tests verify task creation and lifecycle management.

package relay

import (
	"testing"
	"time"

	"go.uber.org/zap"

	"driftcast/internal/config"
	"driftcast/internal/pubsub"
)

func TestManagerStartTasks(t *testing.T) {
	directory := pubsub.NewDirectory()
	manager := NewManager(directory, zap.NewNop())

	cfg := &config.Config{
		Relays: []config.RelayConfig{
			{
				App:       "live",
				Name:      "test",
				Mode:      "pull",
				RemoteURL: "rtmp://localhost:1935/live/test",
				Reconnect: false,
			},
		},
	}

	if err := manager.StartTasks(cfg); err != nil {
		t.Fatalf("Failed to start tasks: %v", err)
	}

	if manager.TaskCount() != 1 {
		t.Errorf("Expected 1 task, got %d", manager.TaskCount())
	}

	manager.Stop()
}

func TestManagerInvalidConfig(t *testing.T) {
	directory := pubsub.NewDirectory()
	manager := NewManager(directory, zap.NewNop())

	cfg := &config.Config{
		Relays: []config.RelayConfig{
			{
				Name:      "test",
				Mode:      "pull",
				RemoteURL: "rtmp://localhost:1935/live/test",
			},
		},
	}
	if err := manager.StartTasks(cfg); err == nil {
		t.Error("Expected error for missing app")
	}

	cfg = &config.Config{
		Relays: []config.RelayConfig{
			{App: "live", Name: "test", Mode: "invalid", RemoteURL: "rtmp://localhost:1935/live/test"},
		},
	}
	if err := manager.StartTasks(cfg); err == nil {
		t.Error("Expected error for invalid mode")
	}

	cfg = &config.Config{
		Relays: []config.RelayConfig{
			{App: "live", Name: "test", Mode: "pull"},
		},
	}
	if err := manager.StartTasks(cfg); err == nil {
		t.Error("Expected error for missing remote_url")
	}
}

func TestManagerStop(t *testing.T) {
	directory := pubsub.NewDirectory()
	manager := NewManager(directory, zap.NewNop())

	cfg := &config.Config{
		Relays: []config.RelayConfig{
			{App: "live", Name: "test", Mode: "pull", RemoteURL: "rtmp://localhost:1935/live/test", Reconnect: false},
		},
	}
	if err := manager.StartTasks(cfg); err != nil {
		t.Fatalf("Failed to start tasks: %v", err)
	}

	time.Sleep(100 * time.Millisecond)

	done := make(chan bool, 1)
	go func() {
		manager.Stop()
		done <- true
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Error("Manager stop timed out")
	}
}

func TestManagerGetTasks(t *testing.T) {
	directory := pubsub.NewDirectory()
	manager := NewManager(directory, zap.NewNop())

	cfg := &config.Config{
		Relays: []config.RelayConfig{
			{App: "live", Name: "a", Mode: "pull", RemoteURL: "rtmp://localhost:1935/live/a"},
			{App: "live", Name: "b", Mode: "push", RemoteURL: "rtmp://localhost:1935/live/b"},
		},
	}
	if err := manager.StartTasks(cfg); err != nil {
		t.Fatalf("Failed to start tasks: %v", err)
	}
	defer manager.Stop()

	infos := manager.GetTasks()
	if len(infos) != 2 {
		t.Fatalf("Expected 2 task infos, got %d", len(infos))
	}
	modes := map[string]bool{infos[0].Mode: true, infos[1].Mode: true}
	if !modes["pull"] || !modes["push"] {
		t.Errorf("Expected one pull and one push task, got %+v", infos)
	}
}
