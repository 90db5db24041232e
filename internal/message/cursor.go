package message

import (
	"bytes"
	"encoding/binary"
	"fmt"

	binpkg "github.com/baltrad/vpconvert/internal/binary"
)

// cursor walks a message body and remembers the first short read, so a
// parser can decode all fields and check for truncation once.
type cursor struct {
	data    []byte
	pos     int
	order   binary.ByteOrder
	offSize int
	lenSize int
	what    string
	err     error
}

func newCursor(data []byte, r *binpkg.Reader, what string) *cursor {
	return &cursor{
		data:    data,
		order:   r.ByteOrder(),
		offSize: r.OffsetSize(),
		lenSize: r.LengthSize(),
		what:    what,
	}
}

func (c *cursor) take(n int) []byte {
	if c.err != nil {
		return nil
	}
	if n < 0 || c.pos+n > len(c.data) {
		c.err = fmt.Errorf("%s message truncated at byte %d", c.what, c.pos)
		return nil
	}
	b := c.data[c.pos : c.pos+n]
	c.pos += n
	return b
}

func (c *cursor) next(n int) uint64 {
	b := c.take(n)
	if b == nil {
		return 0
	}
	return binpkg.DecodeUint(c.order, b)
}

func (c *cursor) u8() uint8       { return uint8(c.next(1)) }
func (c *cursor) u16() uint16     { return uint16(c.next(2)) }
func (c *cursor) u32() uint32     { return uint32(c.next(4)) }
func (c *cursor) offset() uint64  { return c.next(c.offSize) }
func (c *cursor) length() uint64  { return c.next(c.lenSize) }
func (c *cursor) rest() []byte    { return c.take(len(c.data) - c.pos) }
func (c *cursor) remaining() bool { return c.err == nil && c.pos < len(c.data) }

// str reads an n byte field and cuts it at the first NUL.
func (c *cursor) str(n int) string {
	b := c.take(n)
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}

// align skips forward to the next multiple of n counted from base.
func (c *cursor) align(base, n int) {
	if rem := (c.pos - base) % n; rem != 0 {
		c.take(n - rem)
	}
}
