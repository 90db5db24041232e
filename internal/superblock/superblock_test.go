package superblock

import (
	"bytes"
	stdbinary "encoding/binary"
	"errors"
	"io"
	"testing"

	"github.com/baltrad/vpconvert/internal/binary"
)

type image []byte

func (m image) ReadAt(p []byte, off int64) (int, error) {
	if off >= int64(len(m)) {
		return 0, io.EOF
	}
	n := copy(p, m[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

type sink struct{ buf []byte }

func (s *sink) WriteAt(p []byte, off int64) (int, error) {
	if end := int(off) + len(p); end > len(s.buf) {
		s.buf = append(s.buf, make([]byte, end-len(s.buf))...)
	}
	return copy(s.buf[off:], p), nil
}

func le16(v uint16) []byte { return stdbinary.LittleEndian.AppendUint16(nil, v) }
func le32(v uint32) []byte { return stdbinary.LittleEndian.AppendUint32(nil, v) }
func le64(v uint64) []byte { return stdbinary.LittleEndian.AppendUint64(nil, v) }

func pad(b []byte, n int) []byte { return append(b, make([]byte, n-len(b))...) }

func TestEncodeReadRoundTrip(t *testing.T) {
	for _, version := range []uint8{2, 3} {
		sb := NewSuperblock()
		sb.Version = version
		sb.RootGroupAddress = uint64(sb.Size())
		sb.EOFAddress = 4096

		var s sink
		n, err := sb.Write(binary.NewWriter(&s, sb.ReaderConfig()))
		if err != nil {
			t.Fatalf("v%d Write: %v", version, err)
		}
		if n != int64(sb.Size()) || len(s.buf) != 48 {
			t.Fatalf("v%d wrote %d bytes (%d buffered), Size() = %d", version, n, len(s.buf), sb.Size())
		}

		got, err := Read(image(pad(s.buf, 128)))
		if err != nil {
			t.Fatalf("v%d Read: %v", version, err)
		}
		if got.Version != version || got.RootGroupAddress != 48 || got.EOFAddress != 4096 {
			t.Errorf("v%d read back %+v", version, got)
		}
		if got.ExtensionAddress != ^uint64(0) {
			t.Errorf("v%d extension address = %#x, want undefined", version, got.ExtensionAddress)
		}
	}
}

func TestReadAtSearchOffset(t *testing.T) {
	sb := NewSuperblock()
	sb.RootGroupAddress = 600
	b, err := sb.Encode()
	if err != nil {
		t.Fatal(err)
	}
	data := append(make([]byte, 512), b...)

	if !HasSignature(image(data)) {
		t.Fatal("HasSignature = false")
	}
	got, err := Read(image(data))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got.Offset != 512 || got.RootGroupAddress != 600 {
		t.Errorf("Offset = %d, RootGroupAddress = %d", got.Offset, got.RootGroupAddress)
	}
}

func TestReadChecksumMismatch(t *testing.T) {
	b, _ := NewSuperblock().Encode()
	b[20] ^= 0xFF
	if _, err := Read(image(b)); !errors.Is(err, ErrChecksumMismatch) {
		t.Errorf("err = %v, want ErrChecksumMismatch", err)
	}
}

func v0Superblock(version uint8, cache uint32) []byte {
	var b bytes.Buffer
	b.Write(Signature)
	b.Write([]byte{version, 0, 0, 0, 0, 8, 8, 0})
	b.Write(le16(4))
	b.Write(le16(16))
	b.Write(le32(0))
	if version == 1 {
		b.Write(le16(32))
		b.Write(le16(0))
	}
	b.Write(le64(0))          // base
	b.Write(le64(^uint64(0))) // free space info
	b.Write(le64(2048))       // EOF
	b.Write(le64(^uint64(0))) // driver info
	b.Write(le64(0))          // root link name offset
	b.Write(le64(0x60))       // root object header
	b.Write(le32(cache))
	b.Write(le32(0))
	b.Write(le64(0x88))  // B-tree
	b.Write(le64(0x2A8)) // local heap
	return b.Bytes()
}

func TestReadV0V1(t *testing.T) {
	for _, version := range []uint8{0, 1} {
		sb, err := Read(image(v0Superblock(version, cacheSymbolTable)))
		if err != nil {
			t.Fatalf("v%d Read: %v", version, err)
		}
		if sb.Version != version || sb.GroupLeafK != 4 || sb.GroupInternalK != 16 {
			t.Errorf("v%d fixed fields: %+v", version, sb)
		}
		if sb.EOFAddress != 2048 || sb.RootGroupAddress != 0x60 {
			t.Errorf("v%d EOF = %d, root = %#x", version, sb.EOFAddress, sb.RootGroupAddress)
		}
		if sb.RootGroupBTreeAddress != 0x88 || sb.RootGroupLocalHeapAddress != 0x2A8 {
			t.Errorf("v%d scratch pad = %#x, %#x", version, sb.RootGroupBTreeAddress, sb.RootGroupLocalHeapAddress)
		}
	}

	sb, err := Read(image(v0Superblock(0, 0)))
	if err != nil {
		t.Fatalf("Read without cache: %v", err)
	}
	if sb.RootGroupBTreeAddress != 0 || sb.RootGroupLocalHeapAddress != 0 {
		t.Errorf("scratch pad read without cache type: %+v", sb)
	}
}

func TestReadErrors(t *testing.T) {
	badSize := v0Superblock(0, 0)
	badSize[13] = 3

	tests := map[string]struct {
		data []byte
		want error
	}{
		"no signature": {make([]byte, 4096), ErrNotHDF5},
		"short file":   {[]byte("\x89HD"), ErrNotHDF5},
		"version":      {pad(append(append([]byte(nil), Signature...), 9), 64), ErrUnsupportedVersion},
		"offset size":  {badSize, ErrInvalid},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := Read(image(tt.data)); !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestEncodeErrors(t *testing.T) {
	sb := NewSuperblock()
	sb.Version = 0
	if _, err := sb.Encode(); !errors.Is(err, ErrUnsupportedVersion) {
		t.Errorf("version 0: err = %v", err)
	}
	sb = NewSuperblock()
	sb.OffsetSize = 5
	if _, err := sb.Encode(); !errors.Is(err, ErrInvalid) {
		t.Errorf("offset size 5: err = %v", err)
	}
}

func TestReaderConfig(t *testing.T) {
	sb := &Superblock{OffsetSize: 4, LengthSize: 8}
	cfg := sb.ReaderConfig()
	if cfg.OffsetSize != 4 || cfg.LengthSize != 8 || cfg.ByteOrder != stdbinary.LittleEndian {
		t.Errorf("ReaderConfig = %+v", cfg)
	}
}
