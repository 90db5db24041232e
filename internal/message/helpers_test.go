package message

import (
	"bytes"
	"encoding/binary"
	"testing"

	binpkg "github.com/baltrad/vpconvert/internal/binary"
)

func le64(v uint64) []byte { return binary.LittleEndian.AppendUint64(nil, v) }
func le32(v uint32) []byte { return binary.LittleEndian.AppendUint32(nil, v) }
func le16(v uint16) []byte { return binary.LittleEndian.AppendUint16(nil, v) }

func concat(parts ...[]byte) []byte { return bytes.Join(parts, nil) }

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

func mockReader() *binpkg.Reader {
	return binpkg.NewReader(&buffer{}, binpkg.DefaultConfig())
}

// roundTrip serializes m, checks that SerializedSize matches the bytes
// written and parses them back.
func roundTrip(t *testing.T, m Serializable) Message {
	t.Helper()
	buf := &buffer{}
	w := binpkg.NewWriter(buf, binpkg.DefaultConfig())
	if err := m.Serialize(w); err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	if size := m.SerializedSize(w); int(w.Pos()) != size {
		t.Errorf("wrote %d bytes, SerializedSize = %d", w.Pos(), size)
	}
	got, err := Parse(m.Type(), buf.b, binpkg.NewReader(buf, binpkg.DefaultConfig()))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return got
}
