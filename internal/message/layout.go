package message

import (
	"fmt"

	binpkg "github.com/baltrad/vpconvert/internal/binary"
)

// LayoutClass represents the storage layout class.
type LayoutClass uint8

const (
	LayoutCompact    LayoutClass = 0
	LayoutContiguous LayoutClass = 1
	LayoutChunked    LayoutClass = 2
	LayoutVirtual    LayoutClass = 3
)

// ChunkIndexType is the chunk indexing type recorded by version 4 layouts.
// Older layouts always index chunks with a v1 B-tree.
type ChunkIndexType uint8

const (
	ChunkIndexBTreeV1         ChunkIndexType = 0
	ChunkIndexSingleChunk     ChunkIndexType = 1
	ChunkIndexImplicit        ChunkIndexType = 2
	ChunkIndexFixedArray      ChunkIndexType = 3
	ChunkIndexExtensibleArray ChunkIndexType = 4
	ChunkIndexBTreeV2         ChunkIndexType = 5
)

// Version 4 chunked layout flags.
const (
	LayoutFlagDontFilterPartialEdge uint8 = 0x01
	LayoutFlagFilteredSingleChunk   uint8 = 0x02
)

// DataLayout represents a data layout message (type 0x0008).
type DataLayout struct {
	Version uint8
	Class   LayoutClass

	CompactData []byte

	Address uint64
	Size    uint64

	// ChunkDims holds the stored chunk dimensions. The last entry is the
	// element size in bytes, so it has one more entry than the dataspace rank.
	ChunkDims      []uint32
	ChunkIndexAddr uint64
	ChunkIndexType ChunkIndexType

	// Version 4 only.
	ChunkFlags         uint8
	DimensionSizeBytes uint8
	PageBits           uint8

	// Set when a single filtered chunk is stored without an index.
	FilteredChunkSize uint64
	FilterMask        uint32
}

func (m *DataLayout) Type() Type { return TypeDataLayout }

func parseDataLayout(data []byte, r *binpkg.Reader) (*DataLayout, error) {
	if len(data) < 2 {
		return nil, fmt.Errorf("data layout message too short")
	}

	m := &DataLayout{Version: data[0]}
	c := newCursor(data, r, "data layout")
	c.pos = 1

	switch m.Version {
	case 1, 2:
		parseLayoutV1(m, c)
	case 3, 4:
		parseLayoutV3(m, c)
	default:
		return nil, fmt.Errorf("unsupported data layout version: %d", m.Version)
	}
	if c.err != nil {
		return nil, c.err
	}
	return m, nil
}

// parseLayoutV1 reads the layout written by HDF5 1.4 and earlier.
func parseLayoutV1(m *DataLayout, c *cursor) {
	ndims := int(c.u8())
	m.Class = LayoutClass(c.u8())
	c.take(5)

	if m.Class != LayoutCompact {
		m.Address = c.offset()
	}
	dims := make([]uint32, ndims)
	for i := range dims {
		dims[i] = c.u32()
	}

	switch m.Class {
	case LayoutChunked:
		m.ChunkIndexAddr = m.Address
		m.Address = 0
		m.ChunkDims = dims
		c.u32() // dataset element size
	case LayoutCompact:
		size := int(c.u32())
		m.CompactData = append([]byte(nil), c.take(size)...)
	}
}

// parseLayoutV3 reads version 3 and 4 layouts. They differ only in how
// chunked storage is described.
func parseLayoutV3(m *DataLayout, c *cursor) {
	m.Class = LayoutClass(c.u8())

	switch m.Class {
	case LayoutCompact:
		size := int(c.u16())
		m.CompactData = append([]byte(nil), c.take(size)...)

	case LayoutContiguous:
		m.Address = c.offset()
		m.Size = c.length()

	case LayoutChunked:
		if m.Version == 3 {
			ndims := int(c.u8())
			m.ChunkIndexAddr = c.offset()
			m.ChunkDims = make([]uint32, ndims)
			for i := range m.ChunkDims {
				m.ChunkDims[i] = c.u32()
			}
			m.ChunkIndexType = ChunkIndexBTreeV1
			return
		}
		parseChunkedV4(m, c)

	case LayoutVirtual:
		c.err = fmt.Errorf("virtual dataset layouts are not supported")
	}
}

func parseChunkedV4(m *DataLayout, c *cursor) {
	m.ChunkFlags = c.u8()
	ndims := int(c.u8())
	m.DimensionSizeBytes = c.u8()
	m.ChunkDims = make([]uint32, ndims)
	for i := range m.ChunkDims {
		m.ChunkDims[i] = uint32(c.next(int(m.DimensionSizeBytes)))
	}

	m.ChunkIndexType = ChunkIndexType(c.u8())
	switch m.ChunkIndexType {
	case ChunkIndexSingleChunk:
		if m.ChunkFlags&LayoutFlagFilteredSingleChunk != 0 {
			m.FilteredChunkSize = c.length()
			m.FilterMask = c.u32()
		}
	case ChunkIndexImplicit:
	case ChunkIndexFixedArray:
		m.PageBits = c.u8()
	case ChunkIndexExtensibleArray:
		c.take(5)
	case ChunkIndexBTreeV2:
		c.take(6)
	default:
		c.err = fmt.Errorf("unknown chunk index type %d", m.ChunkIndexType)
		return
	}
	m.ChunkIndexAddr = c.offset()
}

// IsChunked returns true if data is stored in chunks.
func (m *DataLayout) IsChunked() bool {
	return m.Class == LayoutChunked
}

// IsCompact returns true if data is stored in the object header.
func (m *DataLayout) IsCompact() bool {
	return m.Class == LayoutCompact
}

// IsContiguous returns true if data is stored contiguously.
func (m *DataLayout) IsContiguous() bool {
	return m.Class == LayoutContiguous
}
