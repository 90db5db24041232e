package binary

import (
	"bytes"
	"encoding/binary"
	"testing"
)

// buffer is a growable io.ReaderAt and io.WriterAt.
type buffer struct{ b []byte }

func (m *buffer) ReadAt(p []byte, off int64) (int, error) {
	if off >= int64(len(m.b)) {
		return 0, nil
	}
	return copy(p, m.b[off:]), nil
}

func (m *buffer) WriteAt(p []byte, off int64) (int, error) {
	if end := int(off) + len(p); end > len(m.b) {
		m.b = append(m.b, make([]byte, end-len(m.b))...)
	}
	return copy(m.b[off:], p), nil
}

func TestReaderIntegers(t *testing.T) {
	data := &buffer{b: []byte{
		0x42,
		0x02, 0x01,
		0x78, 0x56, 0x34, 0x12,
		0x08, 0x07, 0x06, 0x05, 0x04, 0x03, 0x02, 0x01,
		0x03, 0x02, 0x01,
	}}
	r := NewReader(data, DefaultConfig())

	if v, err := r.ReadUint8(); err != nil || v != 0x42 {
		t.Errorf("ReadUint8 = %#x, %v", v, err)
	}
	if v, err := r.ReadUint16(); err != nil || v != 0x0102 {
		t.Errorf("ReadUint16 = %#x, %v", v, err)
	}
	if v, err := r.ReadUint32(); err != nil || v != 0x12345678 {
		t.Errorf("ReadUint32 = %#x, %v", v, err)
	}
	if v, err := r.ReadUint64(); err != nil || v != 0x0102030405060708 {
		t.Errorf("ReadUint64 = %#x, %v", v, err)
	}
	if v, err := r.ReadUintN(3); err != nil || v != 0x010203 {
		t.Errorf("ReadUintN(3) = %#x, %v", v, err)
	}
	if r.Pos() != 18 {
		t.Errorf("Pos = %d, want 18", r.Pos())
	}
}

func TestReaderOffsetWidths(t *testing.T) {
	data := &buffer{b: []byte{0x34, 0x12, 0x78, 0x56, 0x34, 0x12}}
	for _, tt := range []struct {
		size int
		want uint64
	}{
		{2, 0x1234},
		{4, 0x56781234},
	} {
		r := NewReader(data, Config{ByteOrder: binary.LittleEndian, OffsetSize: tt.size, LengthSize: tt.size})
		if v, err := r.ReadOffset(); err != nil || v != tt.want {
			t.Errorf("size %d: ReadOffset = %#x, %v", tt.size, v, err)
		}
		if v, err := r.At(0).ReadLength(); err != nil || v != tt.want {
			t.Errorf("size %d: ReadLength = %#x, %v", tt.size, v, err)
		}
	}
}

func TestReaderPositioning(t *testing.T) {
	data := &buffer{b: []byte{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16}}
	r := NewReader(data, DefaultConfig())

	sub := r.At(10)
	if v, _ := sub.ReadUint8(); v != 10 {
		t.Errorf("At(10) read %d", v)
	}
	if r.Pos() != 0 {
		t.Error("At moved the parent reader")
	}

	peek, err := r.Peek(2)
	if err != nil || !bytes.Equal(peek, []byte{0, 1}) || r.Pos() != 0 {
		t.Errorf("Peek = %v, %v at %d", peek, err, r.Pos())
	}

	r.Skip(3)
	r.Align(8)
	if r.Pos() != 8 {
		t.Errorf("Align(8) from 3 = %d", r.Pos())
	}
	r.Align(8)
	if r.Pos() != 8 {
		t.Errorf("Align on a boundary moved to %d", r.Pos())
	}
	r.Skip(1)
	r.Align(1)
	if r.Pos() != 9 {
		t.Errorf("Align(1) moved to %d", r.Pos())
	}
}

func TestUndefinedOffset(t *testing.T) {
	for _, tt := range []struct {
		size int
		want uint64
	}{
		{2, 0xFFFF},
		{4, 0xFFFFFFFF},
		{8, 0xFFFFFFFFFFFFFFFF},
	} {
		cfg := Config{ByteOrder: binary.LittleEndian, OffsetSize: tt.size, LengthSize: 8}
		r := NewReader(&buffer{}, cfg)
		if !r.IsUndefinedOffset(tt.want) || r.IsUndefinedOffset(tt.want-1) {
			t.Errorf("size %d: IsUndefinedOffset is wrong", tt.size)
		}
		if got := NewWriter(&buffer{}, cfg).UndefinedOffset(); got != tt.want {
			t.Errorf("size %d: UndefinedOffset = %#x", tt.size, got)
		}
	}
}

func TestWriterRoundTrip(t *testing.T) {
	for _, order := range []binary.ByteOrder{binary.LittleEndian, binary.BigEndian} {
		t.Run(order.String(), func(t *testing.T) {
			buf := &buffer{}
			cfg := Config{ByteOrder: order, OffsetSize: 4, LengthSize: 8}
			w := NewWriter(buf, cfg)

			must := func(err error) {
				t.Helper()
				if err != nil {
					t.Fatal(err)
				}
			}
			must(w.WriteUint8(0xAB))
			must(w.WriteUint16(0x1234))
			must(w.WriteUint32(0xDEADBEEF))
			must(w.WriteUint64(0x0102030405060708))
			must(w.WriteOffset(0x1000))
			must(w.WriteLength(0x2000))
			must(w.WriteUintN(0x030201, 3))
			must(w.WriteBytes([]byte("end")))
			if w.Pos() != 1+2+4+8+4+8+3+3 {
				t.Errorf("Pos = %d", w.Pos())
			}

			r := NewReader(buf, cfg)
			u8, _ := r.ReadUint8()
			u16, _ := r.ReadUint16()
			u32, _ := r.ReadUint32()
			u64, _ := r.ReadUint64()
			off, _ := r.ReadOffset()
			length, _ := r.ReadLength()
			n3, _ := r.ReadUintN(3)
			tail, _ := r.ReadBytes(3)
			if u8 != 0xAB || u16 != 0x1234 || u32 != 0xDEADBEEF || u64 != 0x0102030405060708 ||
				off != 0x1000 || length != 0x2000 || n3 != 0x030201 || string(tail) != "end" {
				t.Errorf("round trip mismatch: %#x %#x %#x %#x %#x %#x %#x %q", u8, u16, u32, u64, off, length, n3, tail)
			}
		})
	}
}

func TestWriterBigEndianLayout(t *testing.T) {
	buf := &buffer{}
	w := NewWriter(buf, Config{ByteOrder: binary.BigEndian, OffsetSize: 8, LengthSize: 8})
	if err := w.WriteUint32(0x01020304); err != nil {
		t.Fatal(err)
	}
	if err := w.At(8).WriteUintN(0x0A0B0C, 3); err != nil {
		t.Fatal(err)
	}
	want := []byte{1, 2, 3, 4, 0, 0, 0, 0, 0x0A, 0x0B, 0x0C}
	if !bytes.Equal(buf.b, want) {
		t.Errorf("got % x, want % x", buf.b, want)
	}
}
