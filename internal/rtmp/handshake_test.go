// If you are AI: Covers the C0/C1/S0/S1/S2/C2 handshake round trip over
// a real net.Pipe connection, and the invalid-version rejection on each
// side.

package rtmp

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHandshakeRoundTrip(t *testing.T) {
	clientConn, serverConn := net.Pipe()
	defer clientConn.Close()
	defer serverConn.Close()

	serverErr := make(chan error, 1)
	go func() { serverErr <- PerformServerHandshake(serverConn) }()

	clientErr := make(chan error, 1)
	go func() { clientErr <- PerformClientHandshake(clientConn) }()

	select {
	case err := <-serverErr:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server handshake timed out")
	}

	select {
	case err := <-clientErr:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("client handshake timed out")
	}
}

func TestServerHandshakeRejectsBadVersion(t *testing.T) {
	clientConn, serverConn := net.Pipe()
	defer clientConn.Close()
	defer serverConn.Close()

	go func() { clientConn.Write([]byte{0x42}) }()

	err := PerformServerHandshake(serverConn)
	assert.ErrorIs(t, err, ErrInvalidVersion)
}
