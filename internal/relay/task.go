// If you are AI: This file defines the relay task interface and base
// implementation. Tasks run in their own goroutine and drive the Publish
// façade from §4.7 — the relay task's own goroutine is the "server-thread
// owner" that drains its action queue and applies Actions to the
// Publication it holds.

package relay

import (
	"driftcast/internal/publish"
	"driftcast/internal/pubsub"
)

// Task represents a relay task (pull or push).
// Tasks run in their own goroutines and manage connection lifecycle.
type Task interface {
	Start() error
	Stop() error
	IsRunning() bool
	Info() TaskInfo
}

// TaskInfo is a snapshot of a relay task's identity and state, surfaced by
// the API control surface.
type TaskInfo struct {
	App       string
	Name      string
	Mode      string
	RemoteURL string
	Running   bool
}

// BaseTask provides common fields and an owned action queue shared by
// PullTask and PushTask.
type BaseTask struct {
	directory *pubsub.Directory
	app       string
	name      string
	remoteURL string
	reconnect bool
	running   bool
	stopChan  chan struct{}

	queue  chan publish.Action
	handle *publish.Handle
}

// NewBaseTask creates a new base task with common configuration.
func NewBaseTask(directory *pubsub.Directory, app, name, remoteURL string, reconnect bool) *BaseTask {
	queue := make(chan publish.Action, 64)
	return &BaseTask{
		directory: directory,
		app:       app,
		name:      name,
		remoteURL: remoteURL,
		reconnect: reconnect,
		stopChan:  make(chan struct{}),
		queue:     queue,
		handle:    publish.NewHandle(pubsub.NewName(app, name), queue),
	}
}

func (t *BaseTask) App() string              { return t.app }
func (t *BaseTask) Name() string             { return t.name }
func (t *BaseTask) RemoteURL() string        { return t.remoteURL }
func (t *BaseTask) Directory() *pubsub.Directory { return t.directory }
func (t *BaseTask) Handle() *publish.Handle  { return t.handle }

func (t *BaseTask) IsRunning() bool { return t.running }
func (t *BaseTask) SetRunning(running bool) { t.running = running }

func (t *BaseTask) StopChan() <-chan struct{} { return t.stopChan }

func (t *BaseTask) Stop() error {
	close(t.stopChan)
	return nil
}

func (t *BaseTask) info(mode string) TaskInfo {
	return TaskInfo{
		App:       t.app,
		Name:      t.name,
		Mode:      mode,
		RemoteURL: t.remoteURL,
		Running:   t.running,
	}
}

// drain runs the task's own action queue against pub until stopChan closes
// or the queue producer signals completion by closing done. It is the
// single "server-thread owner" for the task's own publication.
func (t *BaseTask) drain(pub *pubsub.Publication, done <-chan struct{}) {
	for {
		select {
		case action := <-t.queue:
			action.Run(pub)
		case <-done:
			return
		case <-t.stopChan:
			return
		}
	}
}
