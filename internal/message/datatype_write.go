package message

import (
	"fmt"

	"github.com/baltrad/vpconvert/internal/binary"
)

// ieeeProperties holds the 12 property bytes of the IEEE 754 formats:
// bit offset, bit precision, exponent location and size, mantissa location
// and size, exponent bias.
var ieeeProperties = map[uint32][]byte{
	4: {0, 0, 32, 0, 23, 8, 0, 23, 127, 0, 0, 0},
	8: {0, 0, 64, 0, 52, 11, 0, 52, 0xFF, 0x03, 0, 0},
}

// Datatypes are written as version 1. Only the atomic classes the writer
// produces are supported.
func (m *Datatype) encode(e *encoder) error {
	e.u8(uint8(m.Class)|1<<4, uint8(m.ClassBits), uint8(m.ClassBits>>8), uint8(m.ClassBits>>16))
	e.u32(m.Size)

	switch m.Class {
	case ClassFixedPoint:
		e.u16(m.BitOffset)
		e.u16(m.BitPrecision)
	case ClassFloatPoint:
		props := m.Properties
		if len(props) < 12 {
			props = ieeeProperties[m.Size]
		}
		if props == nil {
			return fmt.Errorf("no IEEE properties for a %d byte float", m.Size)
		}
		e.bytes(props[:12])
	case ClassString:
	default:
		return fmt.Errorf("writing datatype class %d is not supported", m.Class)
	}
	return nil
}

func (m *Datatype) Serialize(w *binary.Writer) error    { return serialize(w, m) }
func (m *Datatype) SerializedSize(w *binary.Writer) int { return serializedSize(w, m) }

// NewFixedPointDatatype creates a new fixed-point (integer) datatype.
func NewFixedPointDatatype(size uint32, signed bool, byteOrder ByteOrder) *Datatype {
	classBits := uint32(byteOrder)
	if signed {
		classBits |= 0x08
	}
	return &Datatype{
		Class:        ClassFixedPoint,
		ClassBits:    classBits,
		Size:         size,
		ByteOrder:    byteOrder,
		BitPrecision: uint16(size * 8),
		Signed:       signed,
	}
}

// NewFloatDatatype creates an IEEE 754 floating-point datatype of 4 or 8
// bytes.
func NewFloatDatatype(size uint32, byteOrder ByteOrder) *Datatype {
	// Bit 5 marks a normalized mantissa; byte 1 holds the sign bit position.
	signLocation := size*8 - 1
	return &Datatype{
		Class:      ClassFloatPoint,
		ClassBits:  uint32(byteOrder) | 1<<5 | signLocation<<8,
		Size:       size,
		ByteOrder:  byteOrder,
		Properties: ieeeProperties[size],
	}
}

// NewStringDatatype creates a new fixed-length string datatype.
func NewStringDatatype(size uint32, padding StringPadding, charset CharacterSet) *Datatype {
	return &Datatype{
		Class:         ClassString,
		ClassBits:     uint32(padding) | uint32(charset)<<4,
		Size:          size,
		StringPadding: padding,
		CharSet:       charset,
	}
}
