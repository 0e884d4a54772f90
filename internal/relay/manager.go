// If you are AI: This file implements the relay manager.
// Manages lifecycle of all relay tasks (start, stop, restart).

package relay

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"driftcast/internal/config"
	"driftcast/internal/pubsub"
)

// Manager manages relay tasks lifecycle.
type Manager struct {
	directory *pubsub.Directory
	log       *zap.Logger
	tasks     []Task
	wg        sync.WaitGroup
	mu        sync.Mutex
}

// NewManager creates a new relay manager.
func NewManager(directory *pubsub.Directory, log *zap.Logger) *Manager {
	return &Manager{directory: directory, log: log}
}

// StartTasks starts all relay tasks from configuration.
func (m *Manager) StartTasks(cfg *config.Config) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, relayCfg := range cfg.Relays {
		if relayCfg.App == "" || relayCfg.Name == "" {
			return fmt.Errorf("relay config missing app or name")
		}
		if relayCfg.Mode != "pull" && relayCfg.Mode != "push" {
			return fmt.Errorf("invalid relay mode: %s (must be 'pull' or 'push')", relayCfg.Mode)
		}
		if relayCfg.RemoteURL == "" {
			return fmt.Errorf("relay config missing remote_url")
		}

		var task Task
		if relayCfg.Mode == "pull" {
			task = NewPullTask(m.directory, relayCfg.App, relayCfg.Name, relayCfg.RemoteURL, relayCfg.Reconnect, m.log)
		} else {
			task = NewPushTask(m.directory, relayCfg.App, relayCfg.Name, relayCfg.RemoteURL, relayCfg.Reconnect, m.log)
		}

		m.tasks = append(m.tasks, task)

		m.wg.Add(1)
		go func(t Task) {
			defer m.wg.Done()
			if err := t.Start(); err != nil {
				m.log.Warn("relay task exited", zap.Error(err))
			}
		}(task)
	}

	return nil
}

// Stop stops all relay tasks and waits for them to finish.
func (m *Manager) Stop() error {
	m.mu.Lock()
	tasks := m.tasks
	m.mu.Unlock()

	for _, task := range tasks {
		task.Stop()
	}
	m.wg.Wait()
	return nil
}

// TaskCount returns the number of active relay tasks.
func (m *Manager) TaskCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tasks)
}

// GetTasks returns a snapshot of every relay task's current state.
func (m *Manager) GetTasks() []TaskInfo {
	m.mu.Lock()
	defer m.mu.Unlock()
	infos := make([]TaskInfo, 0, len(m.tasks))
	for _, t := range m.tasks {
		infos = append(infos, t.Info())
	}
	return infos
}
