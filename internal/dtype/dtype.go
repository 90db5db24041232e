package dtype

import (
	"encoding/binary"
	"errors"
	"fmt"
	"reflect"

	"github.com/baltrad/vpconvert/internal/message"
)

// ErrUnsupportedClass is returned for datatype classes without a Go mapping.
var ErrUnsupportedClass = errors.New("unsupported datatype class")

var (
	signedTypes   = map[uint32]reflect.Type{1: reflect.TypeFor[int8](), 2: reflect.TypeFor[int16](), 4: reflect.TypeFor[int32](), 8: reflect.TypeFor[int64]()}
	unsignedTypes = map[uint32]reflect.Type{1: reflect.TypeFor[uint8](), 2: reflect.TypeFor[uint16](), 4: reflect.TypeFor[uint32](), 8: reflect.TypeFor[uint64]()}
	floatTypes    = map[uint32]reflect.Type{4: reflect.TypeFor[float32](), 8: reflect.TypeFor[float64]()}
)

// GoType returns the Go element type that holds values of dt.
func GoType(dt *message.Datatype) (reflect.Type, error) {
	if dt == nil {
		return nil, fmt.Errorf("nil datatype")
	}

	var t reflect.Type
	switch {
	case dt.IsString():
		return reflect.TypeFor[string](), nil
	case dt.Class == message.ClassFixedPoint && dt.Signed:
		t = signedTypes[dt.Size]
	case dt.Class == message.ClassFixedPoint:
		t = unsignedTypes[dt.Size]
	case dt.Class == message.ClassFloatPoint:
		t = floatTypes[dt.Size]
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedClass, dt.Class)
	}
	if t == nil {
		return nil, fmt.Errorf("unsupported size %d for datatype class %d", dt.Size, dt.Class)
	}
	return t, nil
}

// GoTypeToDatatype returns the little-endian datatype used to store t, or
// the element type of t when it is a slice, array or pointer. Strings have
// no fixed size and are sized by the caller with message.NewStringDatatype.
func GoTypeToDatatype(t reflect.Type) (*message.Datatype, error) {
	for t.Kind() == reflect.Pointer || t.Kind() == reflect.Slice || t.Kind() == reflect.Array {
		t = t.Elem()
	}

	switch t.Kind() {
	case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return message.NewFixedPointDatatype(uint32(t.Size()), true, message.OrderLE), nil
	case reflect.Int:
		return message.NewFixedPointDatatype(8, true, message.OrderLE), nil
	case reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return message.NewFixedPointDatatype(uint32(t.Size()), false, message.OrderLE), nil
	case reflect.Uint:
		return message.NewFixedPointDatatype(8, false, message.OrderLE), nil
	case reflect.Float32, reflect.Float64:
		return message.NewFloatDatatype(uint32(t.Size()), message.OrderLE), nil
	}
	return nil, fmt.Errorf("unsupported Go type: %v", t)
}

// ByteOrder returns the byte order of dt's stored values.
func ByteOrder(dt *message.Datatype) binary.ByteOrder {
	if dt.ByteOrder == message.OrderBE {
		return binary.BigEndian
	}
	return binary.LittleEndian
}
