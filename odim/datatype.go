package odim

import (
	"fmt"
	"reflect"
)

// Element type tags of converted trees.
const (
	TypeChar   = "char"
	TypeUchar  = "uchar"
	TypeShort  = "short"
	TypeUshort = "ushort"
	TypeInt    = "int"
	TypeLong   = "long"
	TypeFloat  = "float"
	TypeDouble = "double"
)

var typeTranslations = map[string]string{
	TypeChar:    TypeChar,
	TypeInt8:    TypeChar,
	TypeUint8:   TypeUchar,
	TypeInt16:   TypeShort,
	TypeUint16:  TypeUshort,
	TypeInt32:   TypeInt,
	TypeInt64:   TypeLong,
	TypeFloat32: TypeFloat,
	TypeFloat64: TypeDouble,
}

// TranslateType maps a source element type tag onto the tag used by the
// 2.1 layout.
func TranslateType(tag string) (string, error) {
	out, ok := typeTranslations[tag]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedElementType, tag)
	}
	return out, nil
}

// storageKinds maps both tag vocabularies onto the Go element kind the
// payload slice must have.
var storageKinds = map[string]reflect.Kind{
	TypeChar:    reflect.Int8,
	TypeInt8:    reflect.Int8,
	TypeUchar:   reflect.Uint8,
	TypeUint8:   reflect.Uint8,
	TypeShort:   reflect.Int16,
	TypeInt16:   reflect.Int16,
	TypeUshort:  reflect.Uint16,
	TypeUint16:  reflect.Uint16,
	TypeInt:     reflect.Int32,
	TypeInt32:   reflect.Int32,
	TypeUint32:  reflect.Uint32,
	TypeLong:    reflect.Int64,
	TypeInt64:   reflect.Int64,
	TypeUint64:  reflect.Uint64,
	TypeFloat:   reflect.Float32,
	TypeFloat32: reflect.Float32,
	TypeDouble:  reflect.Float64,
	TypeFloat64: reflect.Float64,
}

// checkStorage verifies that the array payload can be written under its
// element type tag.
func checkStorage(a Array) error {
	kind, ok := storageKinds[a.ElementType]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnsupportedElementType, a.ElementType)
	}
	t := reflect.TypeOf(a.Data)
	if t == nil || t.Kind() != reflect.Slice || t.Elem().Kind() != kind {
		return fmt.Errorf("%w: %q payload is %T", ErrUnsupportedElementType, a.ElementType, a.Data)
	}
	return nil
}
