package heap

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/baltrad/vpconvert/internal/binary"
)

var (
	ErrSignature = errors.New("heap: bad signature")
	ErrVersion   = errors.New("heap: unsupported version")
	ErrNotFound  = errors.New("heap: object not found")
)

// prefix checks the 8 byte signature/version/reserved header shared by
// both heap kinds and leaves r positioned after it.
func prefix(r *binary.Reader, sig string, version uint8) error {
	b, err := r.ReadBytes(8)
	if err != nil {
		return err
	}
	if string(b[:4]) != sig {
		return fmt.Errorf("%w: %q at %#x", ErrSignature, b[:4], r.Pos()-8)
	}
	if b[4] != version {
		return fmt.Errorf("%w: %s version %d", ErrVersion, sig, b[4])
	}
	return nil
}

// Local is a local heap. Only its data segment is kept.
type Local struct {
	DataAddress uint64
	data        []byte
}

// ReadLocal reads the local heap at addr together with its data segment.
func ReadLocal(r *binary.Reader, addr uint64) (*Local, error) {
	hr := r.At(int64(addr))
	if err := prefix(hr, "HEAP", 0); err != nil {
		return nil, err
	}
	size, err := hr.ReadLength()
	if err != nil {
		return nil, err
	}
	if _, err := hr.ReadLength(); err != nil { // free list head
		return nil, err
	}
	dataAddr, err := hr.ReadOffset()
	if err != nil {
		return nil, err
	}
	data, err := r.At(int64(dataAddr)).ReadBytes(int(size))
	if err != nil {
		return nil, fmt.Errorf("local heap data at %#x: %w", dataAddr, err)
	}
	return &Local{DataAddress: dataAddr, data: data}, nil
}

// String returns the NUL terminated string starting at off, or "" when off
// lies outside the data segment.
func (h *Local) String(off uint64) string {
	if off >= uint64(len(h.data)) {
		return ""
	}
	return cstring(h.data[off:])
}

func cstring(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}

// Collection is a global heap collection, indexed by heap object index.
type Collection struct {
	Size    uint64
	objects map[uint16][]byte
}

// ID addresses one object of a global heap collection.
type ID struct {
	Collection uint64
	Index      uint32
}

// ParseID decodes a heap ID as stored in variable-length data: an
// address followed by a four byte object index.
func ParseID(r *binary.Reader, b []byte) (ID, error) {
	n := r.OffsetSize()
	if len(b) < n+4 {
		return ID{}, fmt.Errorf("heap: ID needs %d bytes, have %d", n+4, len(b))
	}
	order := r.ByteOrder()
	return ID{
		Collection: binary.DecodeUint(order, b[:n]),
		Index:      order.Uint32(b[n : n+4]),
	}, nil
}

// ReadCollection reads the global heap collection at addr. Parsing stops at
// the free space object (index 0) or at the end of the collection.
func ReadCollection(r *binary.Reader, addr uint64) (*Collection, error) {
	if addr == 0 || r.IsUndefinedOffset(addr) {
		return nil, fmt.Errorf("heap: invalid collection address %#x", addr)
	}
	hr := r.At(int64(addr))
	if err := prefix(hr, "GCOL", 1); err != nil {
		return nil, err
	}
	size, err := hr.ReadLength()
	if err != nil {
		return nil, err
	}
	c := &Collection{Size: size, objects: make(map[uint16][]byte)}

	ls := int64(r.LengthSize())
	end := int64(addr) + int64(size)
	for hr.Pos()+8+ls <= end {
		index, err := hr.ReadUint16()
		if err != nil || index == 0 {
			break
		}
		hr.Skip(6) // reference count and reserved
		n, err := hr.ReadLength()
		if err != nil {
			break
		}
		obj, err := hr.ReadBytes(int(n))
		if err != nil {
			break
		}
		c.objects[index] = obj
		hr.Skip(int64((8 - n%8) % 8))
	}
	return c, nil
}

// Object returns a copy of the object stored under index.
func (c *Collection) Object(index uint16) ([]byte, error) {
	obj, ok := c.objects[index]
	if !ok {
		return nil, fmt.Errorf("%w: index %d", ErrNotFound, index)
	}
	return append([]byte(nil), obj...), nil
}

// String returns the object under index up to its first NUL byte.
func (c *Collection) String(index uint16) (string, error) {
	obj, ok := c.objects[index]
	if !ok {
		return "", fmt.Errorf("%w: index %d", ErrNotFound, index)
	}
	return cstring(obj), nil
}
