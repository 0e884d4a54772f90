// If you are AI: GET /{app}/{name}.flv. Handles subscriber lifecycle
// against the shared pubsub.Directory.

package httpflv

import (
	"net/http"
	"path"
	"strings"

	"driftcast/internal/pubsub"
)

type Handler struct {
	directory *pubsub.Directory
}

func NewHandler(directory *pubsub.Directory) *Handler {
	return &Handler{directory: directory}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	urlPath := strings.TrimPrefix(r.URL.Path, "/")
	if !strings.HasSuffix(urlPath, ".flv") {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	streamPath := strings.TrimSuffix(urlPath, ".flv")

	parts := strings.SplitN(streamPath, "/", 2)
	if len(parts) != 2 {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	name := pubsub.NewName(parts[0], parts[1])
	pub, ok := h.directory.Get(name)
	if !ok || !pub.HasPublisher() {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	sub := NewSubscriber(w, pub)
	defer sub.Detach()
	sub.Attach()

	w.Header().Set("Content-Type", "video/x-flv")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	if err := sub.WriteHeader(true, true); err != nil {
		return
	}

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}

	_ = sub.ProcessMessages(r.Context().Done())
}

// RegisterRoutes wires this handler under "/" so other routes (health,
// api) must be registered before it on a shared mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if path.Ext(r.URL.Path) == ".flv" {
			h.ServeHTTP(w, r)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	})
}
