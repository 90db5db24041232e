package odim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranslateType(t *testing.T) {
	tests := map[string]string{
		"char":    "char",
		"int8":    "char",
		"uint8":   "uchar",
		"int16":   "short",
		"uint16":  "ushort",
		"int32":   "int",
		"int64":   "long",
		"float32": "float",
		"float64": "double",
	}
	for in, want := range tests {
		got, err := TranslateType(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}

func TestTranslateTypeUnsupported(t *testing.T) {
	for _, in := range []string{"uint32", "uint64", "string", "compound", "double", "", "Float64"} {
		_, err := TranslateType(in)
		assert.ErrorIs(t, err, ErrUnsupportedElementType, in)
	}
}

func TestCheckStorage(t *testing.T) {
	ok := []Array{
		{ElementType: TypeChar, Data: []int8{1}},
		{ElementType: TypeUchar, Data: []uint8{1}},
		{ElementType: TypeShort, Data: []int16{1}},
		{ElementType: TypeUshort, Data: []uint16{1}},
		{ElementType: TypeInt, Data: []int32{1}},
		{ElementType: TypeLong, Data: []int64{1}},
		{ElementType: TypeFloat, Data: []float32{1}},
		{ElementType: TypeDouble, Data: []float64{1}},
		{ElementType: TypeUint32, Data: []uint32{1}},
		{ElementType: TypeFloat64, Data: []float64{1}},
	}
	for _, a := range ok {
		assert.NoError(t, checkStorage(a), a.ElementType)
	}

	bad := []Array{
		{ElementType: TypeDouble, Data: []float32{1}},
		{ElementType: TypeString, Data: []string{"x"}},
		{ElementType: "compound"},
		{ElementType: TypeInt, Data: 3},
	}
	for _, a := range bad {
		assert.ErrorIs(t, checkStorage(a), ErrUnsupportedElementType, a.ElementType)
	}
}
