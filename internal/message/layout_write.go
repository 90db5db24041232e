package message

import (
	"fmt"

	"github.com/baltrad/vpconvert/internal/binary"
)

// FixedArrayPageBits is the page bits value recorded for fixed array
// indexes. It must match the index header.
const FixedArrayPageBits = 10

// Layouts are written as version 3 unless a chunk index other than the
// version 1 B-tree needs version 4.
func (m *DataLayout) encode(e *encoder) error {
	version := m.Version
	if version == 0 {
		version = 3
		if m.IsChunked() && m.ChunkIndexType != ChunkIndexBTreeV1 {
			version = 4
		}
	}
	if m.IsChunked() {
		switch {
		case version == 3 && m.ChunkIndexType != ChunkIndexBTreeV1:
			return fmt.Errorf("version 3 chunked layouts are indexed by a v1 B-tree, not index type %d", m.ChunkIndexType)
		case version != 3 && version != 4:
			return fmt.Errorf("chunked layouts are only written as version 3 or 4")
		}
	}
	e.u8(version, uint8(m.Class))

	switch m.Class {
	case LayoutCompact:
		e.u16(uint16(len(m.CompactData)))
		e.bytes(m.CompactData)
		return nil
	case LayoutContiguous:
		e.offset(m.Address)
		e.length(m.Size)
		return nil
	case LayoutChunked:
	default:
		return fmt.Errorf("cannot serialize layout class %d", m.Class)
	}

	if version == 3 {
		e.u8(uint8(len(m.ChunkDims)))
		e.offset(m.ChunkIndexAddr)
		for _, d := range m.ChunkDims {
			e.u32(d)
		}
		return nil
	}

	width := int(m.dimSizeBytes())
	e.u8(m.ChunkFlags, uint8(len(m.ChunkDims)), uint8(width))
	for _, d := range m.ChunkDims {
		e.uint(uint64(d), width)
	}
	e.u8(uint8(m.ChunkIndexType))
	switch m.ChunkIndexType {
	case ChunkIndexSingleChunk:
		if m.ChunkFlags&LayoutFlagFilteredSingleChunk != 0 {
			e.length(m.FilteredChunkSize)
			e.u32(m.FilterMask)
		}
	case ChunkIndexImplicit:
	case ChunkIndexFixedArray:
		e.u8(m.pageBits())
	default:
		return fmt.Errorf("cannot serialize chunk index type %d", m.ChunkIndexType)
	}
	e.offset(m.ChunkIndexAddr)
	return nil
}

func (m *DataLayout) Serialize(w *binary.Writer) error    { return serialize(w, m) }
func (m *DataLayout) SerializedSize(w *binary.Writer) int { return serializedSize(w, m) }

func (m *DataLayout) dimSizeBytes() uint8 {
	if m.DimensionSizeBytes == 0 {
		return 4
	}
	return m.DimensionSizeBytes
}

func (m *DataLayout) pageBits() uint8 {
	if m.PageBits == 0 {
		return FixedArrayPageBits
	}
	return m.PageBits
}

// NewContiguousLayout returns a version 3 contiguous layout.
func NewContiguousLayout(address, size uint64) *DataLayout {
	return &DataLayout{
		Version: 3,
		Class:   LayoutContiguous,
		Address: address,
		Size:    size,
	}
}

// NewChunkedLayout returns a chunked layout for chunks of the given
// dataset-rank dimensions. The element size is appended as the extra
// trailing dimension the format requires. A version 1 B-tree index yields a
// version 3 message; other indexes need version 4, whose dimensions are
// encoded in the fewest bytes that hold the largest of them.
func NewChunkedLayout(chunkDims []uint32, elementSize uint32, indexType ChunkIndexType) *DataLayout {
	dims := append(append([]uint32(nil), chunkDims...), elementSize)

	var width uint8 = 1
	for _, d := range dims {
		switch {
		case d > 0xFFFFFF:
			width = max(width, 4)
		case d > 0xFFFF:
			width = max(width, 3)
		case d > 0xFF:
			width = max(width, 2)
		}
	}

	m := &DataLayout{
		Version:            4,
		Class:              LayoutChunked,
		ChunkDims:          dims,
		ChunkIndexType:     indexType,
		DimensionSizeBytes: width,
	}
	switch indexType {
	case ChunkIndexBTreeV1:
		m.Version = 3
		m.DimensionSizeBytes = 0
	case ChunkIndexFixedArray:
		m.PageBits = FixedArrayPageBits
	}
	return m
}
