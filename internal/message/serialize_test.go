package message

import (
	"bytes"
	"reflect"
	"strings"
	"testing"
)

func TestDataspaceRoundTrip(t *testing.T) {
	for _, ds := range []*Dataspace{
		NewScalarDataspace(),
		NewDataspace([]uint64{3, 4}, nil),
		NewDataspace([]uint64{2}, []uint64{UndefinedAddress}),
	} {
		got := roundTrip(t, ds)
		if !reflect.DeepEqual(got, ds) {
			t.Errorf("got %+v, want %+v", got, ds)
		}
	}
}

func TestDatatypeRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		dt   *Datatype
	}{
		{"int32", NewFixedPointDatatype(4, true, OrderLE)},
		{"big-endian uint16", NewFixedPointDatatype(2, false, OrderBE)},
		{"float32", NewFloatDatatype(4, OrderLE)},
		{"float64", NewFloatDatatype(8, OrderLE)},
		{"utf-8 string", NewStringDatatype(16, PadSpacePad, CharsetUTF8)},
		{"null terminated string", NewStringDatatype(1, PadNullTerm, CharsetASCII)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := roundTrip(t, tt.dt).(*Datatype)
			want := tt.dt
			if got.Class != want.Class || got.ClassBits != want.ClassBits || got.Size != want.Size ||
				got.ByteOrder != want.ByteOrder || got.Signed != want.Signed ||
				got.BitPrecision != want.BitPrecision || got.StringPadding != want.StringPadding ||
				got.CharSet != want.CharSet {
				t.Errorf("got %+v, want %+v", got, want)
			}
			if want.IsFloat() && !bytes.Equal(got.Properties, want.Properties) {
				t.Errorf("properties = %v, want %v", got.Properties, want.Properties)
			}
		})
	}
}

func TestDatatypeSerializeUnsupported(t *testing.T) {
	for name, dt := range map[string]*Datatype{
		"compound": {Class: ClassCompound, Size: 8},
		"float16":  {Class: ClassFloatPoint, Size: 2},
	} {
		if err := dt.Serialize(nil); err == nil {
			t.Errorf("%s: expected an error", name)
		}
		if n := dt.SerializedSize(nil); n != 0 {
			t.Errorf("%s: SerializedSize = %d, want 0", name, n)
		}
	}
}

func TestAttributeRoundTrip(t *testing.T) {
	t.Run("string", func(t *testing.T) {
		a := NewAttribute("units", NewStringDatatype(4, PadNullTerm, CharsetASCII), NewScalarDataspace(), []byte("m/s\x00"))
		got := roundTrip(t, a).(*Attribute)
		if got.Name != "units" || !got.Datatype.IsString() || !got.Dataspace.IsScalar() || !bytes.Equal(got.Data, a.Data) {
			t.Errorf("got %+v", got)
		}
	})

	t.Run("integer array", func(t *testing.T) {
		data := concat(le32(1), le32(2))
		a := NewAttribute("nbins", NewFixedPointDatatype(4, true, OrderLE), NewDataspace([]uint64{2}, nil), data)
		got := roundTrip(t, a).(*Attribute)
		if got.Name != "nbins" || !got.Datatype.Signed || got.Dataspace.NumElements() != 2 || !bytes.Equal(got.Data, data) {
			t.Errorf("got %+v", got)
		}
	})

	t.Run("missing datatype", func(t *testing.T) {
		a := NewAttribute("x", nil, NewScalarDataspace(), nil)
		if err := a.Serialize(nil); err == nil {
			t.Error("expected an error")
		}
	})
}

func TestFilterPipelineRoundTrip(t *testing.T) {
	for _, fp := range []*FilterPipeline{
		NewDeflatePipeline(6),
		{Version: 2, Filters: []FilterInfo{
			{ID: FilterShuffle, ClientData: []uint32{4}},
			{ID: 32000, Flags: 1, Name: "lzf", ClientData: []uint32{1, 2}},
		}},
	} {
		got := roundTrip(t, fp).(*FilterPipeline)
		if !reflect.DeepEqual(got, fp) {
			t.Errorf("got %+v, want %+v", got, fp)
		}
	}
}

func TestLinkRoundTrip(t *testing.T) {
	long := strings.Repeat("n", 300)
	for _, l := range []*Link{
		NewHardLink("dataset1", 0x800),
		NewHardLink(long, 0x40),
		NewSoftLink("alias", "/dataset1/data1"),
	} {
		got := roundTrip(t, l).(*Link)
		if !reflect.DeepEqual(got, l) {
			t.Errorf("got %+v, want %+v", got, l)
		}
	}

	ext := &Link{Version: 1, LinkType: LinkTypeExternal, Name: "ext"}
	if err := ext.Serialize(nil); err == nil {
		t.Error("expected an error writing an external link")
	}
}

func TestContiguousLayoutRoundTrip(t *testing.T) {
	got := roundTrip(t, NewContiguousLayout(0x1000, 64)).(*DataLayout)
	if !got.IsContiguous() || got.Address != 0x1000 || got.Size != 64 {
		t.Errorf("got %+v", got)
	}
}

func TestGroupMessageSizes(t *testing.T) {
	tests := []struct {
		name string
		m    Serializable
		want int
	}{
		{"link info", NewLinkInfo(), 18},
		{"link info with creation order", &LinkInfo{Flags: 3}, 34},
		{"group info", NewGroupInfo(), 2},
		{"group info with estimates", &GroupInfo{Flags: 3}, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, ok := roundTrip(t, tt.m).(*Unknown)
			if !ok {
				t.Fatalf("expected the message to parse as Unknown")
			}
			if len(u.Data()) != tt.want {
				t.Errorf("wrote %d bytes, want %d", len(u.Data()), tt.want)
			}
		})
	}
}
