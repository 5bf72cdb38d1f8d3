package wire

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
)

// DefaultMaxFrameSize bounds a declared frame length. A peer announcing more
// than this is misbehaving and must not be allowed to grow the buffer.
const DefaultMaxFrameSize = 4 * 1024 * 1024

const headerSize = 4

// FramingError is fatal to the stream: the buffer state can no longer be
// trusted and has been cleared.
type FramingError struct {
	Declared uint32
	Max      uint32
}

func (e *FramingError) Error() string {
	return fmt.Sprintf("frame length %d out of bounds (max %d)", e.Declared, e.Max)
}

// Encode wraps a value as one wire frame: 4-byte big-endian length followed
// by the compact JSON encoding of v.
func Encode(v interface{}) ([]byte, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}

	frame := make([]byte, headerSize+len(payload))
	binary.BigEndian.PutUint32(frame, uint32(len(payload)))
	copy(frame[headerSize:], payload)
	return frame, nil
}

// Decoder reassembles frames from a byte stream. Bytes arrive in arbitrary
// chunks via Feed; Next yields complete payloads until none remain.
type Decoder struct {
	maxFrame uint32
	buf      []byte
}

func NewDecoder(maxFrame uint32) *Decoder {
	if maxFrame == 0 {
		maxFrame = DefaultMaxFrameSize
	}
	return &Decoder{maxFrame: maxFrame}
}

// Feed appends raw bytes from the transport.
func (d *Decoder) Feed(p []byte) {
	d.buf = append(d.buf, p...)
}

// Next returns the payload of the next complete frame, or nil when the
// buffer holds no complete frame yet. A zero or oversized declared length
// returns a FramingError and clears the buffer.
func (d *Decoder) Next() ([]byte, error) {
	if len(d.buf) < headerSize {
		return nil, nil
	}

	length := binary.BigEndian.Uint32(d.buf)
	if length == 0 || length > d.maxFrame {
		d.buf = nil
		return nil, &FramingError{Declared: length, Max: d.maxFrame}
	}

	total := headerSize + int(length)
	if len(d.buf) < total {
		return nil, nil
	}

	payload := make([]byte, length)
	copy(payload, d.buf[headerSize:total])
	d.buf = d.buf[total:]
	return payload, nil
}

// Buffered reports how many unconsumed bytes the decoder holds.
func (d *Decoder) Buffered() int {
	return len(d.buf)
}
