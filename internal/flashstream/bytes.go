package flashstream

import (
	"bufio"
	"bytes"
	"io"
)

// newByteReader wraps payload in a buffered reader so amf0.Reader's
// PeekType has Peek available.
func newByteReader(payload []byte) io.Reader {
	return bufio.NewReader(bytes.NewReader(payload))
}
