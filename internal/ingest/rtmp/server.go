// If you are AI: Server accepts RTMP TCP connections and drives one
// Session per connection. Grounded on the teacher's svc/rtmp.Server
// accept-loop shape.

package rtmp

import (
	"io"
	"net"
	"sync/atomic"

	"go.uber.org/zap"

	"driftcast/internal/pubsub"
)

// Server accepts RTMP connections and dispatches each to its own Session.
type Server struct {
	directory *pubsub.Directory
	log       *zap.Logger
	listener  net.Listener
	nextPeer  atomic.Uint64
}

func NewServer(directory *pubsub.Directory, log *zap.Logger) *Server {
	return &Server{directory: directory, log: log}
}

func (s *Server) Listen(addr string) error {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	s.listener = l
	return nil
}

// Accept runs the accept loop until the listener closes.
func (s *Server) Accept() error {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			return err
		}
		go s.handleConnection(conn)
	}
}

func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()

	peerID := s.nextPeer.Add(1)
	session := NewSession(conn, s.directory, s.log, peerID)
	defer session.Close()

	if err := session.PerformHandshake(); err != nil {
		s.log.Debug("rtmp handshake failed", zap.Error(err))
		return
	}

	if err := session.Serve(); err != nil && err != io.EOF {
		s.log.Debug("rtmp session ended", zap.Error(err))
	}
}

func (s *Server) Close() error {
	if s.listener != nil {
		return s.listener.Close()
	}
	return nil
}
