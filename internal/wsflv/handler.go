// If you are AI: GET /ws/{app}/{name} — WebSocket-FLV egress, same
// publication lookup and backpressure strategy as httpflv for consistency.

package wsflv

import (
	"net/http"
	"strings"

	"github.com/gorilla/websocket"

	"driftcast/internal/pubsub"
)

type Handler struct {
	directory *pubsub.Directory
	upgrader  websocket.Upgrader
}

func NewHandler(directory *pubsub.Directory) *Handler {
	return &Handler{
		directory: directory,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	urlPath := strings.TrimPrefix(r.URL.Path, "/ws/")
	if urlPath == r.URL.Path {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	parts := strings.SplitN(urlPath, "/", 2)
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

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	sub := NewSubscriber(conn, pub)
	defer func() {
		sub.Detach()
		conn.Close()
	}()
	sub.Attach()

	if err := sub.WriteHeader(true, true); err != nil {
		return
	}

	_ = sub.ProcessMessages(r.Context().Done())
}

func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/ws/", h.ServeHTTP)
}
