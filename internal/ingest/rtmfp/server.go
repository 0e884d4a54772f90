// If you are AI: Server owns the RTMFP UDP socket lifecycle (bind/serve/
// close), mirroring the RTMP ingest Server's Listen/Accept/Close shape so
// both transports start and stop the same way from internal/server. Peer
// Flow establishment itself is out of scope (see rtmfp.Listener's doc
// comment) — this type only carries the demux loop.

package rtmfp

import (
	"net"

	"go.uber.org/zap"

	"driftcast/internal/rtmfp"
)

// Server binds one UDP socket and runs the rtmfp.Listener demux loop
// against it until closed.
type Server struct {
	log      *zap.Logger
	listener *rtmfp.Listener
}

func NewServer(log *zap.Logger) *Server {
	return &Server{log: log}
}

// Listen binds addr (":1936"-style) as a UDP socket.
func (s *Server) Listen(addr string) error {
	pconn, err := net.ListenPacket("udp", addr)
	if err != nil {
		return err
	}
	s.listener = rtmfp.NewListener(pconn, s.log)
	return nil
}

// Listener exposes the bound rtmfp.Listener so peer Flows can be
// registered once they're established by whatever introduction path
// (rendezvous) produced them.
func (s *Server) Listener() *rtmfp.Listener { return s.listener }

// Serve runs the demux loop until the socket closes.
func (s *Server) Serve() error {
	return s.listener.Serve()
}

func (s *Server) Close() error {
	if s.listener == nil {
		return nil
	}
	return s.listener.Close()
}
