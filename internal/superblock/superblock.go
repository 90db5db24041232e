package superblock

import (
	"bytes"
	stdbinary "encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/baltrad/vpconvert/internal/binary"
)

// Signature opens every superblock.
var Signature = []byte{0x89, 'H', 'D', 'F', '\r', '\n', 0x1a, '\n'}

var searchOffsets = []int64{0, 512, 1024, 2048}

var (
	ErrNotHDF5            = errors.New("superblock: HDF5 signature not found")
	ErrUnsupportedVersion = errors.New("superblock: unsupported version")
	ErrInvalid            = errors.New("superblock: invalid")
	ErrChecksumMismatch   = errors.New("superblock: checksum mismatch")
)

// cacheSymbolTable marks a root symbol table entry whose scratch pad holds
// the root group's B-tree and local heap addresses.
const cacheSymbolTable = 1

type Superblock struct {
	Version    uint8
	OffsetSize uint8
	LengthSize uint8
	Flags      uint8

	BaseAddress      uint64
	ExtensionAddress uint64 // versions 2 and 3
	EOFAddress       uint64
	RootGroupAddress uint64

	// Versions 0 and 1 only, taken from the root symbol table entry when
	// its scratch pad is populated.
	GroupLeafK                uint16
	GroupInternalK            uint16
	RootGroupBTreeAddress     uint64
	RootGroupLocalHeapAddress uint64

	// Offset is where the signature was found.
	Offset int64
}

// NewSuperblock returns a version 2 superblock with 8 byte addresses and
// lengths. The caller fills in the root group and EOF addresses.
func NewSuperblock() *Superblock {
	return &Superblock{Version: 2, OffsetSize: 8, LengthSize: 8}
}

// ReaderConfig is the binary configuration for the rest of the file.
func (sb *Superblock) ReaderConfig() binary.Config {
	return binary.Config{
		ByteOrder:  stdbinary.LittleEndian,
		OffsetSize: int(sb.OffsetSize),
		LengthSize: int(sb.LengthSize),
	}
}

// HasSignature reports whether r carries the HDF5 signature at any of the
// offsets a superblock may start at.
func HasSignature(r io.ReaderAt) bool {
	_, ok := find(r)
	return ok
}

func find(r io.ReaderAt) (int64, bool) {
	buf := make([]byte, len(Signature))
	for _, off := range searchOffsets {
		if _, err := r.ReadAt(buf, off); err != nil {
			return 0, false
		}
		if bytes.Equal(buf, Signature) {
			return off, true
		}
	}
	return 0, false
}

// Read locates and decodes the superblock.
func Read(r io.ReaderAt) (*Superblock, error) {
	off, ok := find(r)
	if !ok {
		return nil, ErrNotHDF5
	}
	// Addresses are read with a provisional config; the sizes are validated
	// before any of them is used.
	br := binary.NewReader(r, binary.DefaultConfig()).At(off + int64(len(Signature)))
	version, err := br.ReadUint8()
	if err != nil {
		return nil, err
	}

	var sb *Superblock
	switch version {
	case 0, 1:
		sb, err = readV0(r, br, version)
	case 2, 3:
		sb, err = readV2(r, br, off, version)
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, version)
	}
	if err != nil {
		return nil, err
	}
	sb.Offset = off
	return sb, nil
}

func validSize(n uint8) bool { return n == 2 || n == 4 || n == 8 }

// sized rebinds br to the offset and length widths of sb.
func sized(r io.ReaderAt, br *binary.Reader, sb *Superblock) (*binary.Reader, error) {
	if !validSize(sb.OffsetSize) || !validSize(sb.LengthSize) {
		return nil, fmt.Errorf("%w: offset size %d, length size %d", ErrInvalid, sb.OffsetSize, sb.LengthSize)
	}
	return binary.NewReader(r, sb.ReaderConfig()).At(br.Pos()), nil
}

func readAddresses(br *binary.Reader, dst ...*uint64) error {
	for _, p := range dst {
		v, err := br.ReadOffset()
		if err != nil {
			return err
		}
		if p != nil {
			*p = v
		}
	}
	return nil
}

func readV0(r io.ReaderAt, br *binary.Reader, version uint8) (*Superblock, error) {
	// free space version, root entry version, reserved, shared header
	// version, offset size, length size, reserved, leaf K, internal K, flags
	fixed, err := br.ReadBytes(15)
	if err != nil {
		return nil, err
	}
	sb := &Superblock{
		Version:        version,
		OffsetSize:     fixed[4],
		LengthSize:     fixed[5],
		GroupLeafK:     stdbinary.LittleEndian.Uint16(fixed[7:9]),
		GroupInternalK: stdbinary.LittleEndian.Uint16(fixed[9:11]),
		Flags:          fixed[11],
	}
	if version == 1 {
		br.Skip(4) // indexed storage K and reserved
	}
	if br, err = sized(r, br, sb); err != nil {
		return nil, err
	}
	// base, free space info, EOF, driver info, then the root symbol table
	// entry's link name offset and object header address
	if err := readAddresses(br, &sb.BaseAddress, nil, &sb.EOFAddress, nil, nil, &sb.RootGroupAddress); err != nil {
		return nil, err
	}
	cache, err := br.ReadUint32()
	if err != nil {
		return nil, err
	}
	br.Skip(4)
	if cache == cacheSymbolTable {
		if err := readAddresses(br, &sb.RootGroupBTreeAddress, &sb.RootGroupLocalHeapAddress); err != nil {
			return nil, err
		}
	}
	return sb, nil
}

func readV2(r io.ReaderAt, br *binary.Reader, start int64, version uint8) (*Superblock, error) {
	fixed, err := br.ReadBytes(3)
	if err != nil {
		return nil, err
	}
	sb := &Superblock{Version: version, OffsetSize: fixed[0], LengthSize: fixed[1], Flags: fixed[2]}
	if br, err = sized(r, br, sb); err != nil {
		return nil, err
	}
	if err := readAddresses(br, &sb.BaseAddress, &sb.ExtensionAddress, &sb.EOFAddress, &sb.RootGroupAddress); err != nil {
		return nil, err
	}
	end := br.Pos()
	stored, err := br.ReadUint32()
	if err != nil {
		return nil, err
	}
	body, err := br.At(start).ReadBytes(int(end - start))
	if err != nil {
		return nil, err
	}
	if sum := binary.Lookup3Checksum(body); sum != stored {
		return nil, fmt.Errorf("%w: stored %#08x, computed %#08x", ErrChecksumMismatch, stored, sum)
	}
	return sb, nil
}

// Size is the encoded length of a version 2 or 3 superblock.
func (sb *Superblock) Size() int {
	return len(Signature) + 4 + 4*int(sb.OffsetSize) + 4
}

// Encode returns the version 2 or 3 encoding of sb. An unset extension
// address is written as undefined.
func (sb *Superblock) Encode() ([]byte, error) {
	if sb.Version < 2 || sb.Version > 3 {
		return nil, fmt.Errorf("%w: cannot write version %d", ErrUnsupportedVersion, sb.Version)
	}
	if !validSize(sb.OffsetSize) || !validSize(sb.LengthSize) {
		return nil, fmt.Errorf("%w: offset size %d, length size %d", ErrInvalid, sb.OffsetSize, sb.LengthSize)
	}
	ext := sb.ExtensionAddress
	if ext == 0 {
		ext = ^uint64(0)
	}
	order := stdbinary.LittleEndian
	b := make([]byte, 0, sb.Size())
	b = append(b, Signature...)
	b = append(b, sb.Version, sb.OffsetSize, sb.LengthSize, sb.Flags)
	for _, v := range []uint64{sb.BaseAddress, ext, sb.EOFAddress, sb.RootGroupAddress} {
		field := make([]byte, sb.OffsetSize)
		binary.EncodeUint(order, field, v)
		b = append(b, field...)
	}
	return order.AppendUint32(b, binary.Lookup3Checksum(b)), nil
}

// Write encodes sb at the writer's position and returns the bytes written.
func (sb *Superblock) Write(w *binary.Writer) (int64, error) {
	b, err := sb.Encode()
	if err != nil {
		return 0, err
	}
	if err := w.WriteBytes(b); err != nil {
		return 0, err
	}
	return int64(len(b)), nil
}
