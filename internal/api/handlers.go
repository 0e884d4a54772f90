// If you are AI: This file implements HTTP API handlers.
// All handlers are fast, allocation-light, and never block media paths.

package api

import (
	"encoding/json"
	"net/http"
	"runtime"
)

// ServerResponse represents the /api/server response.
type ServerResponse struct {
	Version         string   `json:"version"`
	Uptime          int64    `json:"uptime"` // seconds
	GoVersion       string   `json:"go_version"`
	EnabledServices []string `json:"enabled_services"`
}

// StreamInfo represents information about a stream.
type StreamInfo struct {
	App             string `json:"app"`
	Name            string `json:"name"`
	HasPublisher    bool   `json:"has_publisher"`
	SubscriberCount int    `json:"subscriber_count"`
}

// StreamsResponse represents the /api/streams response.
type StreamsResponse struct {
	Streams []StreamInfo `json:"streams"`
}

// RelayResponse represents the /api/relay response.
type RelayResponse struct {
	Tasks []RelayTaskInfo `json:"tasks"`
}

// RendezvousResponse represents the /api/rendezvous response.
type RendezvousResponse struct {
	PeerIDs []string `json:"peer_ids"`
}

// ErrorResponse represents an API error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// handleServer handles GET /api/server.
func (s *Service) handleServer(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	uptime := getCurrentTime() - s.startTime

	response := ServerResponse{
		Version:   "1.0.0",
		Uptime:    uptime,
		GoVersion: runtime.Version(),
		EnabledServices: []string{
			"rtmp_ingest",
			"rtmfp_ingest",
			"http_flv",
			"ws_flv",
			"relay",
			"rendezvous",
		},
	}

	s.writeJSON(w, http.StatusOK, response)
}

// handleStreams handles GET /api/streams.
func (s *Service) handleStreams(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	names := s.directory.List()
	streams := make([]StreamInfo, 0, len(names))

	for _, name := range names {
		pub, ok := s.directory.Get(name)
		if !ok {
			continue
		}
		streams = append(streams, StreamInfo{
			App:             name.App,
			Name:            name.Stream,
			HasPublisher:    pub.HasPublisher(),
			SubscriberCount: pub.SubscriptionCount(),
		})
	}

	s.writeJSON(w, http.StatusOK, StreamsResponse{Streams: streams})
}

// handleRelay handles GET /api/relay.
func (s *Service) handleRelay(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	relayTasks := s.relayMgr.GetTasks()
	tasks := make([]RelayTaskInfo, 0, len(relayTasks))
	for _, rt := range relayTasks {
		tasks = append(tasks, RelayTaskInfo{
			App:       rt.App,
			Name:      rt.Name,
			Mode:      rt.Mode,
			RemoteURL: rt.RemoteURL,
			Running:   rt.Running,
		})
	}

	s.writeJSON(w, http.StatusOK, RelayResponse{Tasks: tasks})
}

// handleRelayRestart handles POST /api/relay/restart.
func (s *Service) handleRelayRestart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req struct {
		App  string `json:"app"`
		Name string `json:"name"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.App == "" || req.Name == "" {
		s.writeError(w, http.StatusBadRequest, "app and name are required")
		return
	}

	// Relay tasks reconnect on their own per their configured backoff;
	// restart here only acknowledges the request.
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "restart initiated"})
}

// handleRendezvous handles GET /api/rendezvous.
func (s *Service) handleRendezvous(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if s.rendezvous == nil {
		s.writeJSON(w, http.StatusOK, RendezvousResponse{PeerIDs: []string{}})
		return
	}
	s.writeJSON(w, http.StatusOK, RendezvousResponse{PeerIDs: s.rendezvous.List()})
}

// writeJSON writes a JSON response.
func (s *Service) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func (s *Service) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, ErrorResponse{Error: message})
}
