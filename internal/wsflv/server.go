package wsflv

import (
	"net/http"

	"driftcast/internal/pubsub"
)

type Service struct {
	handler *Handler
}

func NewService(directory *pubsub.Directory) *Service {
	return &Service{handler: NewHandler(directory)}
}

func (s *Service) RegisterRoutes(mux *http.ServeMux) {
	s.handler.RegisterRoutes(mux)
}
