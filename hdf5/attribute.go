package hdf5

import (
	"fmt"
	"reflect"

	"github.com/baltrad/vpconvert/internal/binary"
	"github.com/baltrad/vpconvert/internal/dtype"
	"github.com/baltrad/vpconvert/internal/message"
)

// Attribute is an attribute of a group or dataset. A dataspace that
// could not be decoded is treated as scalar.
type Attribute struct {
	msg    *message.Attribute
	reader *binary.Reader
}

func (a *Attribute) Name() string { return a.msg.Name }

// Shape returns the dimensions, or nil for a scalar.
func (a *Attribute) Shape() []uint64 {
	if a.IsScalar() {
		return nil
	}
	return a.msg.Dataspace.Dimensions
}

func (a *Attribute) NumElements() uint64 {
	if a.msg.Dataspace == nil {
		return 1
	}
	return a.msg.Dataspace.NumElements()
}

func (a *Attribute) IsScalar() bool {
	return a.msg.Dataspace == nil || a.msg.Dataspace.IsScalar()
}

// DtypeClass returns the datatype class, or fixed point when the datatype
// could not be decoded.
func (a *Attribute) DtypeClass() message.DatatypeClass {
	if a.msg.Datatype == nil {
		return message.ClassFixedPoint
	}
	return a.msg.Datatype.Class
}

// Read decodes the value into dest, a pointer to a slice.
func (a *Attribute) Read(dest interface{}) error {
	switch {
	case a.msg.Datatype == nil:
		return fmt.Errorf("attribute %s: undecodable datatype", a.msg.Name)
	case a.msg.Data == nil:
		return fmt.Errorf("attribute %s has no data", a.msg.Name)
	}
	return dtype.Convert(a.msg.Datatype, a.msg.Data, a.NumElements(), dest, a.reader)
}

func (a *Attribute) ReadFloat64() ([]float64, error) {
	var out []float64
	err := a.Read(&out)
	return out, err
}

func (a *Attribute) ReadInt64() ([]int64, error) {
	var out []int64
	err := a.Read(&out)
	return out, err
}

func (a *Attribute) ReadString() ([]string, error) {
	var out []string
	err := a.Read(&out)
	return out, err
}

// Value decodes the attribute as int64, uint64, float64 or string values
// chosen by datatype class. Scalars yield one value, anything else a slice.
func (a *Attribute) Value() (interface{}, error) {
	dt := a.msg.Datatype
	var dest interface{}
	switch {
	case dt == nil:
		return nil, fmt.Errorf("attribute %s: undecodable datatype", a.msg.Name)
	case dt.IsString():
		dest = new([]string)
	case dt.IsInteger() && dt.Signed:
		dest = new([]int64)
	case dt.IsInteger():
		dest = new([]uint64)
	case dt.IsFloat():
		dest = new([]float64)
	default:
		return nil, fmt.Errorf("attribute %s: %w: %d", a.msg.Name, dtype.ErrUnsupportedClass, dt.Class)
	}
	if err := a.Read(dest); err != nil {
		return nil, err
	}

	vals := reflect.ValueOf(dest).Elem()
	if a.IsScalar() && vals.Len() == 1 {
		return vals.Index(0).Interface(), nil
	}
	return vals.Interface(), nil
}
