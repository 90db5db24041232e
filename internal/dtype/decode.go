package dtype

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"reflect"

	binpkg "github.com/baltrad/vpconvert/internal/binary"
	"github.com/baltrad/vpconvert/internal/heap"
	"github.com/baltrad/vpconvert/internal/message"
)

// Convert decodes n stored elements into dest, which points at a slice or at
// a single value. Values are converted to the destination element type.
// r resolves variable-length strings through the global heap and may be nil
// for every other class.
func Convert(dt *message.Datatype, data []byte, n uint64, dest interface{}, r *binpkg.Reader) error {
	if dt == nil {
		return fmt.Errorf("nil datatype")
	}
	ptr := reflect.ValueOf(dest)
	if ptr.Kind() != reflect.Pointer || ptr.IsNil() {
		return fmt.Errorf("dest must be a non-nil pointer, got %T", dest)
	}
	out := ptr.Elem()

	size := int(dt.Size)
	if dt.Class == message.ClassVarLen && r != nil {
		size = 4 + r.OffsetSize() + 4
	}
	if size <= 0 {
		return fmt.Errorf("datatype has zero size")
	}
	if need := n * uint64(size); uint64(len(data)) < need {
		return fmt.Errorf("need %d bytes for %d elements, have %d", need, n, len(data))
	}

	if out.Kind() != reflect.Slice {
		if n == 0 {
			return fmt.Errorf("no element to decode into %T", dest)
		}
		n = 1
	}
	if out.Kind() == reflect.Slice && directDecode(dt, data, n, out) {
		return nil
	}

	decode, err := decoder(dt, r)
	if err != nil {
		return err
	}
	target := out
	if out.Kind() == reflect.Slice {
		target = reflect.MakeSlice(out.Type(), int(n), int(n))
	}
	for i := 0; i < int(n); i++ {
		v, err := decode(data[i*size : (i+1)*size])
		if err != nil {
			return fmt.Errorf("element %d: %w", i, err)
		}
		dst := target
		if out.Kind() == reflect.Slice {
			dst = target.Index(i)
		}
		if err := assign(dst, v); err != nil {
			return err
		}
	}
	if out.Kind() == reflect.Slice {
		out.Set(target)
	}
	return nil
}

// directDecode fills numeric slices whose element type matches the stored
// type exactly without going through reflection per element.
func directDecode(dt *message.Datatype, data []byte, n uint64, out reflect.Value) bool {
	t, err := GoType(dt)
	if err != nil || t != out.Type().Elem() || t.Kind() == reflect.String {
		return false
	}
	s := reflect.MakeSlice(out.Type(), int(n), int(n))
	if _, err := binary.Decode(data[:n*uint64(dt.Size)], ByteOrder(dt), s.Interface()); err != nil {
		return false
	}
	out.Set(s)
	return true
}

func assign(dst reflect.Value, v interface{}) error {
	src := reflect.ValueOf(v)
	if dst.Kind() == reflect.Interface {
		dst.Set(src)
		return nil
	}
	if (src.Kind() == reflect.String) != (dst.Kind() == reflect.String) || !src.CanConvert(dst.Type()) {
		return fmt.Errorf("cannot store %T in %v", v, dst.Type())
	}
	dst.Set(src.Convert(dst.Type()))
	return nil
}

type decodeFunc func(b []byte) (interface{}, error)

func decoder(dt *message.Datatype, r *binpkg.Reader) (decodeFunc, error) {
	order := ByteOrder(dt)

	switch {
	case dt.Class == message.ClassFixedPoint:
		if _, err := GoType(dt); err != nil {
			return nil, err
		}
		return func(b []byte) (interface{}, error) {
			var u uint64
			switch len(b) {
			case 1:
				u = uint64(b[0])
			case 2:
				u = uint64(order.Uint16(b))
			case 4:
				u = uint64(order.Uint32(b))
			default:
				u = order.Uint64(b)
			}
			if !dt.Signed {
				return u, nil
			}
			// Sign-extend from the stored width.
			shift := 64 - 8*uint(len(b))
			return int64(u<<shift) >> shift, nil
		}, nil

	case dt.Class == message.ClassFloatPoint:
		switch dt.Size {
		case 4:
			return func(b []byte) (interface{}, error) { return math.Float32frombits(order.Uint32(b)), nil }, nil
		case 8:
			return func(b []byte) (interface{}, error) { return math.Float64frombits(order.Uint64(b)), nil }, nil
		}
		return nil, fmt.Errorf("unsupported float size %d", dt.Size)

	case dt.Class == message.ClassString:
		return func(b []byte) (interface{}, error) {
			if i := bytes.IndexByte(b, 0); i >= 0 {
				b = b[:i]
			}
			if dt.StringPadding == message.PadSpacePad {
				b = bytes.TrimRight(b, " ")
			}
			return string(b), nil
		}, nil

	case dt.IsString():
		if r == nil {
			return nil, fmt.Errorf("variable-length strings need a file reader")
		}
		heaps := make(map[uint64]*heap.Collection)
		return func(b []byte) (interface{}, error) {
			id, err := heap.ParseID(r, b[4:])
			if err != nil {
				return nil, err
			}
			if id.Collection == 0 {
				return "", nil
			}
			gh, ok := heaps[id.Collection]
			if !ok {
				if gh, err = heap.ReadCollection(r, id.Collection); err != nil {
					return nil, fmt.Errorf("reading global heap at %#x: %w", id.Collection, err)
				}
				heaps[id.Collection] = gh
			}
			return gh.String(uint16(id.Index))
		}, nil
	}
	return nil, fmt.Errorf("%w: %d", ErrUnsupportedClass, dt.Class)
}
