package message

import (
	"encoding/binary"

	binpkg "github.com/baltrad/vpconvert/internal/binary"
)

// Serializable is implemented by the messages the writer emits.
type Serializable interface {
	Message
	Serialize(w *binpkg.Writer) error
	SerializedSize(w *binpkg.Writer) int
}

// encoder appends message fields using the address and length widths of
// the file being written.
type encoder struct {
	b       []byte
	order   binary.ByteOrder
	offSize int
	lenSize int
}

func newEncoder(w *binpkg.Writer) *encoder {
	if w == nil {
		cfg := binpkg.DefaultConfig()
		return &encoder{order: cfg.ByteOrder, offSize: cfg.OffsetSize, lenSize: cfg.LengthSize}
	}
	return &encoder{order: w.ByteOrder(), offSize: w.OffsetSize(), lenSize: w.LengthSize()}
}

// sub returns an empty encoder with the same widths, for nested messages
// whose size is written ahead of them.
func (e *encoder) sub() *encoder {
	return &encoder{order: e.order, offSize: e.offSize, lenSize: e.lenSize}
}

func (e *encoder) uint(v uint64, n int) {
	buf := make([]byte, n)
	binpkg.EncodeUint(e.order, buf, v)
	e.b = append(e.b, buf...)
}

func (e *encoder) u8(v ...uint8)    { e.b = append(e.b, v...) }
func (e *encoder) u16(v uint16)     { e.uint(uint64(v), 2) }
func (e *encoder) u32(v uint32)     { e.uint(uint64(v), 4) }
func (e *encoder) offset(v uint64)  { e.uint(v, e.offSize) }
func (e *encoder) length(v uint64)  { e.uint(v, e.lenSize) }
func (e *encoder) bytes(b []byte)   { e.b = append(e.b, b...) }
func (e *encoder) cstring(s string) { e.b = append(append(e.b, s...), 0) }

// encodable messages describe their body to an encoder; Serialize and
// SerializedSize are derived from that single description.
type encodable interface {
	encode(e *encoder) error
}

func serialize(w *binpkg.Writer, m encodable) error {
	e := newEncoder(w)
	if err := m.encode(e); err != nil {
		return err
	}
	return w.WriteBytes(e.b)
}

func serializedSize(w *binpkg.Writer, m encodable) int {
	e := newEncoder(w)
	if err := m.encode(e); err != nil {
		return 0
	}
	return len(e.b)
}
