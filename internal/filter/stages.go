package filter

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math/bits"

	"github.com/klauspost/compress/zlib"

	binpkg "github.com/baltrad/vpconvert/internal/binary"
)

const defaultLevel = 6

var ErrChecksum = errors.New("filter: fletcher32 checksum mismatch")

func inflate(b []byte) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	return io.ReadAll(zr)
}

func deflate(b []byte, level int) ([]byte, error) {
	var buf bytes.Buffer
	zw, err := zlib.NewWriterLevel(&buf, level)
	if err != nil {
		return nil, err
	}
	if _, err := zw.Write(b); err != nil {
		zw.Close()
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// shuffle groups byte k of every element together. A trailing partial
// element is copied unchanged.
func shuffle(b []byte, size int) []byte {
	n := len(b) / size
	if size <= 1 || n <= 1 {
		return b
	}
	out := make([]byte, len(b))
	for i := 0; i < n; i++ {
		for k := 0; k < size; k++ {
			out[k*n+i] = b[i*size+k]
		}
	}
	copy(out[n*size:], b[n*size:])
	return out
}

func unshuffle(b []byte, size int) []byte {
	n := len(b) / size
	if size <= 1 || n <= 1 {
		return b
	}
	out := make([]byte, len(b))
	for i := 0; i < n; i++ {
		for k := 0; k < size; k++ {
			out[i*size+k] = b[k*n+i]
		}
	}
	copy(out[n*size:], b[n*size:])
	return out
}

func verifyFletcher32(b []byte) ([]byte, error) {
	if len(b) < 4 {
		return nil, fmt.Errorf("fletcher32: %d bytes is too short", len(b))
	}
	data := b[:len(b)-4]
	stored := binary.LittleEndian.Uint32(b[len(b)-4:])
	// Files from old big-endian writers carry the checksum byte swapped.
	if sum := binpkg.Fletcher32(data); sum != stored && bits.ReverseBytes32(sum) != stored {
		return nil, fmt.Errorf("%w: stored %#08x, computed %#08x", ErrChecksum, stored, sum)
	}
	return data, nil
}

func appendFletcher32(b []byte) ([]byte, error) {
	out := append(make([]byte, 0, len(b)+4), b...)
	return binary.LittleEndian.AppendUint32(out, binpkg.Fletcher32(b)), nil
}
