package dtype

import (
	"fmt"
	"math"
	"reflect"

	"github.com/baltrad/vpconvert/internal/message"
)

// Encode returns the stored form of src, a scalar or a slice or array of
// scalars, under dt. Fixed-length strings are truncated or padded to the
// datatype size.
func Encode(dt *message.Datatype, src interface{}) ([]byte, error) {
	if dt == nil {
		return nil, fmt.Errorf("nil datatype")
	}
	v := reflect.ValueOf(src)
	if v.Kind() == reflect.Pointer {
		v = v.Elem()
	}
	if v.Kind() != reflect.Slice && v.Kind() != reflect.Array {
		s := reflect.MakeSlice(reflect.SliceOf(v.Type()), 1, 1)
		s.Index(0).Set(v)
		v = s
	}

	size := int(dt.Size)
	order := ByteOrder(dt)
	out := make([]byte, v.Len()*size)
	for i := 0; i < v.Len(); i++ {
		b := out[i*size : (i+1)*size]
		e := v.Index(i)

		var bits uint64
		switch {
		case dt.Class == message.ClassFixedPoint && e.CanInt():
			bits = uint64(e.Int())
		case dt.Class == message.ClassFixedPoint && e.CanUint():
			bits = e.Uint()
		case dt.Class == message.ClassFloatPoint && e.CanFloat() && size == 4:
			bits = uint64(math.Float32bits(float32(e.Float())))
		case dt.Class == message.ClassFloatPoint && e.CanFloat():
			bits = math.Float64bits(e.Float())
		case dt.Class == message.ClassString && e.Kind() == reflect.String:
			n := copy(b, e.String())
			if dt.StringPadding == message.PadSpacePad {
				for j := n; j < size; j++ {
					b[j] = ' '
				}
			}
			continue
		default:
			return nil, fmt.Errorf("cannot encode %v as datatype class %d", e.Type(), dt.Class)
		}

		switch size {
		case 1:
			b[0] = byte(bits)
		case 2:
			order.PutUint16(b, uint16(bits))
		case 4:
			order.PutUint32(b, uint32(bits))
		case 8:
			order.PutUint64(b, bits)
		default:
			return nil, fmt.Errorf("unsupported element size %d", size)
		}
	}
	return out, nil
}
