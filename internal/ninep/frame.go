package ninep

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Frame layout: size u32 (total length including itself), type u8,
// tag u16, body. The length prefix is little-endian, offset 0, width
// 4, with adjustment -4 so the body length the decoder hands upward
// excludes the 4-byte size field itself.

// Decoder reads framed 9P2000.L messages from a stream.
type Decoder struct {
	r     io.Reader
	msize uint32
	buf   []byte
}

// NewDecoder creates a decoder bounded by msize (the negotiated or
// default maximum frame size).
func NewDecoder(r io.Reader, msize uint32) *Decoder {
	return &Decoder{r: r, msize: msize, buf: make([]byte, msize)}
}

// SetMsize updates the maximum frame size, e.g. after Tversion
// negotiation shrinks it.
func (d *Decoder) SetMsize(msize uint32) {
	if msize > uint32(len(d.buf)) {
		d.buf = make([]byte, msize)
	}
	d.msize = msize
}

// ReadMessage reads one complete frame and returns its type, tag, and
// body. Legacy 9P2000 types and Tlerror are rejected as protocol
// errors once the whole frame has been read.
func (d *Decoder) ReadMessage() (msgType uint8, tag uint16, payload []byte, err error) {
	var head [4]byte
	if _, err := io.ReadFull(d.r, head[:]); err != nil {
		return 0, 0, nil, err
	}
	size := binary.LittleEndian.Uint32(head[:])
	if size < 7 {
		return 0, 0, nil, newProtocolError(fmt.Sprintf("frame too small: %d", size))
	}
	if size > d.msize {
		return 0, 0, nil, newProtocolError(fmt.Sprintf("frame too large: %d > %d", size, d.msize))
	}

	body := d.buf[:size-4]
	if _, err := io.ReadFull(d.r, body); err != nil {
		return 0, 0, nil, err
	}

	msgType = body[0]
	if legacyTypes[msgType] {
		return 0, 0, nil, newProtocolError(fmt.Sprintf("legacy message type %d rejected", msgType))
	}
	tag = binary.LittleEndian.Uint16(body[1:3])
	payload = body[3:]
	return msgType, tag, payload, nil
}

// Encoder writes framed 9P2000.L messages to a stream. Callers MUST
// serialize calls to WriteMessage themselves (see server.go's writer
// mutex) — Encoder holds no lock of its own.
type Encoder struct {
	w   io.Writer
	buf []byte
}

// NewEncoder creates an encoder with an msize-byte frame buffer;
// WriteMessage grows the buffer for a larger frame.
func NewEncoder(w io.Writer, msize uint32) *Encoder {
	return &Encoder{w: w, buf: make([]byte, msize)}
}

// WriteMessage frames and writes a single message.
func (e *Encoder) WriteMessage(msgType uint8, tag uint16, body []byte) error {
	size := uint32(4 + 1 + 2 + len(body))
	if int(size) > len(e.buf) {
		e.buf = make([]byte, size)
	}
	binary.LittleEndian.PutUint32(e.buf[0:4], size)
	e.buf[4] = msgType
	binary.LittleEndian.PutUint16(e.buf[5:7], tag)
	copy(e.buf[7:], body)
	_, err := e.w.Write(e.buf[:size])
	return err
}
