// If you are AI: This file provides HTTP API service integration.
// The API exposes server state, stream state, and relay state without
// blocking media paths.

package api

import (
	"net/http"
	"time"

	"driftcast/internal/pubsub"
	"driftcast/internal/relay"
	"driftcast/internal/rendezvous"
)

// Service provides HTTP API functionality.
type Service struct {
	directory  *pubsub.Directory
	relayMgr   RelayManager
	rendezvous *rendezvous.Directory
	startTime  int64
}

// RelayManager defines the interface for relay management. This allows
// the API to work with the relay manager without tight coupling.
type RelayManager interface {
	TaskCount() int
	GetTasks() []relay.TaskInfo
}

// RelayTaskInfo represents information about a relay task for API responses.
type RelayTaskInfo struct {
	App       string `json:"app"`
	Name      string `json:"name"`
	Mode      string `json:"mode"`
	RemoteURL string `json:"remote_url"`
	Running   bool   `json:"running"`
}

// NewService creates a new API service.
func NewService(directory *pubsub.Directory, relayMgr RelayManager, rendezvousDir *rendezvous.Directory) *Service {
	return &Service{
		directory:  directory,
		relayMgr:   relayMgr,
		rendezvous: rendezvousDir,
		startTime:  getCurrentTime(),
	}
}

// RegisterRoutes registers API routes on the provided mux.
func (s *Service) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/server", s.handleServer)
	mux.HandleFunc("/api/streams", s.handleStreams)
	mux.HandleFunc("/api/relay", s.handleRelay)
	mux.HandleFunc("/api/relay/restart", s.handleRelayRestart)
	mux.HandleFunc("/api/rendezvous", s.handleRendezvous)
}

// getCurrentTime returns current Unix timestamp. Extracted for testability.
func getCurrentTime() int64 {
	return time.Now().Unix()
}
