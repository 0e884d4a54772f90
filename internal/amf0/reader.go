// If you are AI: Reader wraps an io.Reader with the AMF reader primitives
// named in the external interfaces section: readString, readNumber,
// readNull, readBoolean, readBytes, nextType.

package amf0

import (
	"encoding/binary"
	"io"
)

// Reader is a small stateful cursor over an AMF0 byte stream, used by
// FlashStream.process when decoding invocation/data messages frame by
// frame rather than all at once via Decode.
type Reader struct {
	r io.Reader
}

func NewReader(r io.Reader) *Reader { return &Reader{r: r} }

// NextType reads and returns the next type marker byte. The marker is
// consumed from the underlying reader; PeekType returns it without
// consuming it when the reader supports Peek (e.g. *bufio.Reader).
func (r *Reader) NextType() (byte, error) {
	var b [1]byte
	if _, err := io.ReadFull(r.r, b[:]); err != nil {
		return 0, err
	}
	return b[0], nil
}

// PeekType requires the underlying reader support Peek (e.g. *bufio.Reader).
func (r *Reader) PeekType() (byte, error) {
	type peeker interface {
		Peek(int) ([]byte, error)
	}
	p, ok := r.r.(peeker)
	if !ok {
		return 0, io.ErrUnexpectedEOF
	}
	b, err := p.Peek(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// ReadString reads an AMF0 string value, including its leading type marker.
func (r *Reader) ReadString() (string, error) {
	return DecodeString(r.r)
}

// ReadNumber reads an AMF0 number value, including its leading type marker.
func (r *Reader) ReadNumber() (float64, error) {
	v, err := Decode(r.r)
	if err != nil {
		return 0, err
	}
	n, _ := v.(float64)
	return n, nil
}

// ReadBoolean reads an AMF0 boolean value, including its leading type marker.
func (r *Reader) ReadBoolean() (bool, error) {
	v, err := Decode(r.r)
	if err != nil {
		return false, err
	}
	b, _ := v.(bool)
	return b, nil
}

// ReadNull consumes a null or undefined marker.
func (r *Reader) ReadNull() error {
	var b [1]byte
	if _, err := io.ReadFull(r.r, b[:]); err != nil {
		return err
	}
	if b[0] != TypeNull && b[0] != TypeUndefined {
		return ErrUnexpectedType
	}
	return nil
}

// ReadValue reads any AMF0 value generically.
func (r *Reader) ReadValue() (Value, error) {
	return Decode(r.r)
}

// ReadBytes reads n raw bytes with no AMF framing — used for RAW message
// bodies (e.g. the sync-type prefix).
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(r.r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// ReadUint16 is a small helper for raw wire prefixes (e.g. RAW message
// two-byte type).
func (r *Reader) ReadUint16() (uint16, error) {
	var v uint16
	err := binary.Read(r.r, binary.BigEndian, &v)
	return v, err
}

// Skip discards the next value without decoding it.
func (r *Reader) Skip() error {
	return SkipAny(r.r)
}
