package odim

import (
	"fmt"
	"reflect"
	"slices"
)

// Element type tags of trees produced by Load.
const (
	TypeInt8    = "int8"
	TypeUint8   = "uint8"
	TypeInt16   = "int16"
	TypeUint16  = "uint16"
	TypeInt32   = "int32"
	TypeUint32  = "uint32"
	TypeInt64   = "int64"
	TypeUint64  = "uint64"
	TypeFloat32 = "float32"
	TypeFloat64 = "float64"
	TypeString  = "string"
)

// Array is an n-dimensional dataset payload. Data holds a flat slice in
// row-major order whose element type matches ElementType.
type Array struct {
	Shape       []uint64
	ElementType string
	Data        any
}

// NewArray wraps a flat typed slice, deriving the element type tag from
// the slice type. A nil shape means a one-dimensional array.
func NewArray(data any, shape ...uint64) (Array, error) {
	tag, ok := tagForType(reflect.TypeOf(data))
	if !ok {
		return Array{}, fmt.Errorf("%w: %T", ErrUnsupportedElementType, data)
	}
	n := reflect.ValueOf(data).Len()
	if shape == nil {
		shape = []uint64{uint64(n)}
	}
	a := Array{Shape: slices.Clone(shape), ElementType: tag, Data: data}
	if err := a.validate(); err != nil {
		return Array{}, err
	}
	return a, nil
}

// Len returns the number of elements held in Data.
func (a Array) Len() int {
	if a.Data == nil {
		return 0
	}
	v := reflect.ValueOf(a.Data)
	if v.Kind() != reflect.Slice {
		return 0
	}
	return v.Len()
}

// NumElements returns the product of the shape.
func (a Array) NumElements() uint64 {
	n := uint64(1)
	for _, d := range a.Shape {
		n *= d
	}
	return n
}

// Clone returns a deep copy of the array.
func (a Array) Clone() Array {
	out := Array{Shape: slices.Clone(a.Shape), ElementType: a.ElementType}
	if a.Data == nil {
		return out
	}
	src := reflect.ValueOf(a.Data)
	if src.Kind() != reflect.Slice {
		out.Data = a.Data
		return out
	}
	dst := reflect.MakeSlice(src.Type(), src.Len(), src.Len())
	reflect.Copy(dst, src)
	out.Data = dst.Interface()
	return out
}

func (a Array) validate() error {
	if a.Data == nil {
		return nil
	}
	if reflect.ValueOf(a.Data).Kind() != reflect.Slice {
		return fmt.Errorf("array data must be a slice, got %T", a.Data)
	}
	if uint64(a.Len()) != a.NumElements() {
		return fmt.Errorf("array shape %v holds %d elements, data has %d", a.Shape, a.NumElements(), a.Len())
	}
	return nil
}

var sliceTags = map[reflect.Type]string{
	reflect.TypeOf([]int8(nil)):    TypeInt8,
	reflect.TypeOf([]uint8(nil)):   TypeUint8,
	reflect.TypeOf([]int16(nil)):   TypeInt16,
	reflect.TypeOf([]uint16(nil)):  TypeUint16,
	reflect.TypeOf([]int32(nil)):   TypeInt32,
	reflect.TypeOf([]uint32(nil)):  TypeUint32,
	reflect.TypeOf([]int64(nil)):   TypeInt64,
	reflect.TypeOf([]uint64(nil)):  TypeUint64,
	reflect.TypeOf([]float32(nil)): TypeFloat32,
	reflect.TypeOf([]float64(nil)): TypeFloat64,
	reflect.TypeOf([]string(nil)):  TypeString,
}

func tagForType(t reflect.Type) (string, bool) {
	if t == nil {
		return "", false
	}
	tag, ok := sliceTags[t]
	return tag, ok
}
