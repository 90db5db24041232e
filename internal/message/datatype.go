package message

import (
	"encoding/binary"
	"fmt"
)

// DatatypeClass is the storage class of a datatype.
type DatatypeClass uint8

const (
	ClassFixedPoint DatatypeClass = 0
	ClassFloatPoint DatatypeClass = 1
	ClassTime       DatatypeClass = 2
	ClassString     DatatypeClass = 3
	ClassBitfield   DatatypeClass = 4
	ClassOpaque     DatatypeClass = 5
	ClassCompound   DatatypeClass = 6
	ClassReference  DatatypeClass = 7
	ClassEnum       DatatypeClass = 8
	ClassVarLen     DatatypeClass = 9
	ClassArray      DatatypeClass = 10
)

type ByteOrder uint8

const (
	OrderLE ByteOrder = 0
	OrderBE ByteOrder = 1
)

type StringPadding uint8

const (
	PadNullTerm StringPadding = 0
	PadNullPad  StringPadding = 1
	PadSpacePad StringPadding = 2
)

type CharacterSet uint8

const (
	CharsetASCII CharacterSet = 0
	CharsetUTF8  CharacterSet = 1
)

// Datatype is the datatype message (type 0x0003). Only the atomic classes
// and variable-length strings are decoded in detail; other classes keep
// their class, size and raw properties.
type Datatype struct {
	Class     DatatypeClass
	ClassBits uint32
	Size      uint32
	ByteOrder ByteOrder

	// Fixed point.
	BitOffset    uint16
	BitPrecision uint16
	Signed       bool

	// Strings.
	StringPadding StringPadding
	CharSet       CharacterSet

	// Variable length. The element type is not needed to read strings.
	IsVarLenString bool

	// Properties holds the raw class properties.
	Properties []byte
}

func (m *Datatype) Type() Type { return TypeDatatype }

func parseDatatype(data []byte) (*Datatype, error) {
	if len(data) < 8 {
		return nil, fmt.Errorf("datatype message too short")
	}
	bits := uint32(data[1]) | uint32(data[2])<<8 | uint32(data[3])<<16
	dt := &Datatype{
		Class:      DatatypeClass(data[0] & 0x0F),
		ClassBits:  bits,
		Size:       binary.LittleEndian.Uint32(data[4:8]),
		Properties: data[8:],
	}
	props := data[8:]

	switch dt.Class {
	case ClassFixedPoint, ClassBitfield:
		if len(props) < 4 {
			return nil, fmt.Errorf("fixed-point properties truncated")
		}
		dt.ByteOrder = ByteOrder(bits & 0x01)
		dt.Signed = bits&0x08 != 0
		dt.BitOffset = binary.LittleEndian.Uint16(props[0:2])
		dt.BitPrecision = binary.LittleEndian.Uint16(props[2:4])
		dt.Properties = props[:4]
	case ClassFloatPoint:
		if len(props) < 12 {
			return nil, fmt.Errorf("floating-point properties truncated")
		}
		dt.ByteOrder = ByteOrder(bits & 0x01)
		dt.Properties = props[:12]
	case ClassString:
		dt.StringPadding = StringPadding(bits & 0x0F)
		dt.CharSet = CharacterSet(bits >> 4 & 0x0F)
		dt.Properties = nil
	case ClassVarLen:
		dt.IsVarLenString = bits&0x0F == 1
		dt.CharSet = CharacterSet(bits >> 8 & 0x0F)
	}
	return dt, nil
}

func (m *Datatype) IsInteger() bool { return m.Class == ClassFixedPoint }

func (m *Datatype) IsFloat() bool { return m.Class == ClassFloatPoint }

// IsString reports fixed-length and variable-length strings alike.
func (m *Datatype) IsString() bool {
	return m.Class == ClassString || (m.Class == ClassVarLen && m.IsVarLenString)
}
