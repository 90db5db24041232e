package odim

import (
	"fmt"
	"math"
	"strconv"
)

// ValueKind identifies the type held by a Value.
type ValueKind int

const (
	InvalidValue ValueKind = iota
	StringValue
	IntValue
	FloatValue
)

func (k ValueKind) String() string {
	switch k {
	case StringValue:
		return "string"
	case IntValue:
		return "int"
	case FloatValue:
		return "float"
	default:
		return "invalid"
	}
}

// Value is a scalar attribute value. The zero Value is invalid.
type Value struct {
	kind ValueKind
	s    string
	i    int64
	f    float64
}

// String returns a string Value.
func String(s string) Value { return Value{kind: StringValue, s: s} }

// Int returns an integer Value.
func Int(i int64) Value { return Value{kind: IntValue, i: i} }

// Float returns a floating-point Value.
func Float(f float64) Value { return Value{kind: FloatValue, f: f} }

// NewValue wraps a Go scalar. Strings, all integer kinds and both float
// kinds are accepted; integers are widened to int64 and floats to float64.
// Unsigned values above math.MaxInt64 and any other kind fail with
// ErrUnsupportedAttributeValueType.
func NewValue(v any) (Value, error) {
	switch x := v.(type) {
	case Value:
		if x.kind == InvalidValue {
			break
		}
		return x, nil
	case string:
		return String(x), nil
	case int:
		return Int(int64(x)), nil
	case int8:
		return Int(int64(x)), nil
	case int16:
		return Int(int64(x)), nil
	case int32:
		return Int(int64(x)), nil
	case int64:
		return Int(x), nil
	case uint:
		return fromUnsigned(uint64(x))
	case uint8:
		return Int(int64(x)), nil
	case uint16:
		return Int(int64(x)), nil
	case uint32:
		return Int(int64(x)), nil
	case uint64:
		return fromUnsigned(x)
	case float32:
		return Float(float64(x)), nil
	case float64:
		return Float(x), nil
	}
	return Value{}, fmt.Errorf("%w: %T", ErrUnsupportedAttributeValueType, v)
}

func fromUnsigned(u uint64) (Value, error) {
	if u > math.MaxInt64 {
		return Value{}, fmt.Errorf("%w: uint64 %d overflows int64", ErrUnsupportedAttributeValueType, u)
	}
	return Int(int64(u)), nil
}

// Kind returns the kind of value held.
func (v Value) Kind() ValueKind { return v.kind }

// AsString returns the string held, if v is a string.
func (v Value) AsString() (string, bool) { return v.s, v.kind == StringValue }

// AsInt returns the integer held, if v is an integer.
func (v Value) AsInt() (int64, bool) { return v.i, v.kind == IntValue }

// AsFloat returns the float held, if v is a float.
func (v Value) AsFloat() (float64, bool) { return v.f, v.kind == FloatValue }

// Interface returns the value as a string, int64 or float64.
func (v Value) Interface() any {
	switch v.kind {
	case StringValue:
		return v.s
	case IntValue:
		return v.i
	case FloatValue:
		return v.f
	default:
		return nil
	}
}

func (v Value) String() string {
	switch v.kind {
	case StringValue:
		return strconv.Quote(v.s)
	case IntValue:
		return strconv.FormatInt(v.i, 10)
	case FloatValue:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	default:
		return "<invalid>"
	}
}
