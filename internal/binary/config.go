// Package binary reads and writes the fixed and variable width integers
// of HDF5 files at explicit file positions.
package binary

import (
	"encoding/binary"
	"math"
)

// Config holds the byte order and the address and length widths of a
// file, as recorded in its superblock.
type Config struct {
	ByteOrder  binary.ByteOrder
	OffsetSize int
	LengthSize int
}

// DefaultConfig is used until the superblock has been read.
func DefaultConfig() Config {
	return Config{ByteOrder: binary.LittleEndian, OffsetSize: 8, LengthSize: 8}
}

// allOnes is the undefined value of a size byte field.
func allOnes(size int) uint64 {
	if size >= 8 {
		return math.MaxUint64
	}
	return 1<<(8*size) - 1
}

// DecodeUint decodes an unsigned integer of len(b) bytes.
func DecodeUint(order binary.ByteOrder, b []byte) uint64 {
	switch len(b) {
	case 1:
		return uint64(b[0])
	case 2:
		return uint64(order.Uint16(b))
	case 4:
		return uint64(order.Uint32(b))
	case 8:
		return order.Uint64(b)
	}
	var v uint64
	for i := range b {
		if order == binary.BigEndian {
			v = v<<8 | uint64(b[i])
		} else {
			v = v<<8 | uint64(b[len(b)-1-i])
		}
	}
	return v
}

// EncodeUint encodes v into all of b.
func EncodeUint(order binary.ByteOrder, b []byte, v uint64) {
	switch len(b) {
	case 1:
		b[0] = uint8(v)
	case 2:
		order.PutUint16(b, uint16(v))
	case 4:
		order.PutUint32(b, uint32(v))
	case 8:
		order.PutUint64(b, v)
	default:
		for i := range b {
			shift := 8 * i
			if order == binary.BigEndian {
				shift = 8 * (len(b) - 1 - i)
			}
			b[i] = byte(v >> shift)
		}
	}
}
