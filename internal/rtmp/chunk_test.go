// If you are AI: Covers one message round-tripping through
// WriteMessage → ReadChunk → GetCompleteMessage, a message split across
// several chunks, and the Set Chunk Size body round trip.

package rtmp

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// loopbackConn pipes writes from one side into reads on the other,
// standing in for a net.Conn without a real socket.
type loopbackConn struct {
	io.Reader
	io.Writer
}

func newLoopback() (a, b *loopbackConn) {
	ar, bw := io.Pipe()
	br, aw := io.Pipe()
	return &loopbackConn{Reader: ar, Writer: aw}, &loopbackConn{Reader: br, Writer: bw}
}

func TestWriteMessageRoundTripsThroughChunkSession(t *testing.T) {
	client, server := newLoopback()

	cs := NewChunkSession(client)
	done := make(chan error, 1)
	go func() {
		done <- cs.WriteMessage(3, 0x14, 0, 1, []byte("hello invocation"))
	}()

	serverSession := NewChunkSession(server)
	_, err := serverSession.ReadChunk()
	require.NoError(t, err)

	require.NoError(t, <-done)

	body, msgType, timestamp, ok := serverSession.GetCompleteMessage(3)
	require.True(t, ok)
	assert.Equal(t, byte(0x14), msgType)
	assert.EqualValues(t, 0, timestamp)
	assert.Equal(t, "hello invocation", string(body))
}

func TestWriteMessageSplitsAcrossMultipleChunksPastChunkSize(t *testing.T) {
	var buf bytes.Buffer
	body := bytes.Repeat([]byte("x"), 300)

	require.NoError(t, WriteChunk(&buf, 4, 0x09, 0, 1, body, 128))

	// Basic chunk header(1) + message header(11) + first 128 bytes, then a
	// type-3 continuation header(1) + next 128, then another + remaining 44.
	assert.Greater(t, buf.Len(), len(body), "framing overhead must be present for a multi-chunk message")
}

func TestParseAndCreateSetChunkSizeRoundTrip(t *testing.T) {
	body := CreateSetChunkSize(4096)
	size, err := ParseSetChunkSize(body)
	require.NoError(t, err)
	assert.EqualValues(t, 4096, size)
}
