package layout

import (
	"fmt"

	"github.com/baltrad/vpconvert/internal/binary"
	"github.com/baltrad/vpconvert/internal/btree"
	"github.com/baltrad/vpconvert/internal/filter"
	"github.com/baltrad/vpconvert/internal/message"
)

// Chunked storage splits the dataset into equally shaped chunks that are
// located through an index and may be filtered.
type Chunked struct {
	msg      *message.DataLayout
	dims     []uint64
	elemSize uint64
	pipeline *filter.Pipeline
	reader   *binary.Reader
}

// NewChunked returns a chunked reader. A nil pipeline message means the
// chunks are stored unfiltered.
func NewChunked(
	dl *message.DataLayout,
	space *message.Dataspace,
	dt *message.Datatype,
	fp *message.FilterPipeline,
	r *binary.Reader,
) (*Chunked, error) {
	c := &Chunked{msg: dl, reader: r}
	if space != nil {
		c.dims = space.Dimensions
	}
	if len(c.dims) == 0 {
		c.dims = []uint64{1}
	}
	if dt != nil {
		c.elemSize = uint64(dt.Size)
	}
	if fp != nil {
		p, err := filter.NewPipeline(fp)
		if err != nil {
			return nil, fmt.Errorf("creating filter pipeline: %w", err)
		}
		c.pipeline = p
	}
	return c, nil
}

func (c *Chunked) Class() message.LayoutClass { return message.LayoutChunked }

// Read assembles the dataset from its chunks. Chunks that were never written
// leave their region zeroed.
func (c *Chunked) Read() ([]byte, error) {
	shape, err := c.chunkShape()
	if err != nil {
		return nil, err
	}

	total := c.elemSize
	for _, d := range c.dims {
		total *= d
	}
	if total == 0 {
		return nil, nil
	}
	out := make([]byte, total)

	entries, err := c.entries(shape)
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		data, err := c.readChunk(e)
		if err != nil {
			return nil, fmt.Errorf("chunk at %v: %w", e.Offset, err)
		}
		scatter(out, data, e.Offset, c.dims, shape, c.elemSize)
	}
	return out, nil
}

// chunkShape drops the trailing element-size dimension of the stored chunk
// dimensions.
func (c *Chunked) chunkShape() ([]uint64, error) {
	rank := len(c.dims)
	if len(c.msg.ChunkDims) < rank {
		return nil, fmt.Errorf("chunked layout has %d chunk dimensions for rank %d", len(c.msg.ChunkDims), rank)
	}
	shape := make([]uint64, rank)
	for i := range shape {
		shape[i] = uint64(c.msg.ChunkDims[i])
		if shape[i] == 0 {
			return nil, fmt.Errorf("chunk dimension %d is zero", i)
		}
	}
	return shape, nil
}

func (c *Chunked) chunkBytes(shape []uint64) uint64 {
	n := c.elemSize
	for _, d := range shape {
		n *= d
	}
	return n
}

// entries locates every allocated chunk.
func (c *Chunked) entries(shape []uint64) ([]btree.ChunkEntry, error) {
	addr := c.msg.ChunkIndexAddr
	if c.reader.IsUndefinedOffset(addr) {
		return nil, nil
	}
	rank := len(c.dims)

	switch c.msg.ChunkIndexType {
	case message.ChunkIndexBTreeV1:
		idx, err := btree.ReadChunkIndex(c.reader, addr, rank)
		if err != nil {
			return nil, fmt.Errorf("reading chunk B-tree: %w", err)
		}
		return idx.Entries, nil

	case message.ChunkIndexSingleChunk:
		e := btree.ChunkEntry{
			Offset:  make([]uint64, rank),
			Address: addr,
			Size:    uint32(c.chunkBytes(shape)),
		}
		if c.msg.ChunkFlags&message.LayoutFlagFilteredSingleChunk != 0 {
			e.Size = uint32(c.msg.FilteredChunkSize)
			e.FilterMask = c.msg.FilterMask
		}
		return []btree.ChunkEntry{e}, nil

	case message.ChunkIndexImplicit:
		size := c.chunkBytes(shape)
		offsets := chunkOffsets(c.dims, shape)
		entries := make([]btree.ChunkEntry, len(offsets))
		for i, off := range offsets {
			entries[i] = btree.ChunkEntry{Offset: off, Address: addr + uint64(i)*size, Size: uint32(size)}
		}
		return entries, nil

	case message.ChunkIndexFixedArray:
		return readFixedArray(c.reader, addr, chunkOffsets(c.dims, shape), uint32(c.chunkBytes(shape)))
	}
	return nil, fmt.Errorf("%w: type %d", ErrUnsupportedIndex, c.msg.ChunkIndexType)
}

func (c *Chunked) readChunk(e btree.ChunkEntry) ([]byte, error) {
	data, err := c.reader.At(int64(e.Address)).ReadBytes(int(e.Size))
	if err != nil {
		return nil, err
	}
	if c.pipeline == nil || c.pipeline.Empty() {
		return data, nil
	}
	return c.pipeline.Decode(data, e.FilterMask)
}

// chunkOffsets lists the element coordinates of every chunk origin in
// row-major chunk order, the order used by implicit and array indexes.
func chunkOffsets(dims, shape []uint64) [][]uint64 {
	rank := len(dims)
	counts := make([]uint64, rank)
	n := uint64(1)
	for d := range dims {
		counts[d] = (dims[d] + shape[d] - 1) / shape[d]
		n *= counts[d]
	}

	offsets := make([][]uint64, n)
	for i := range offsets {
		off := make([]uint64, rank)
		rem := uint64(i)
		for d := rank - 1; d >= 0; d-- {
			off[d] = (rem % counts[d]) * shape[d]
			rem /= counts[d]
		}
		offsets[i] = off
	}
	return offsets
}

// scatter copies one decoded chunk into the dataset buffer. Chunks on the
// upper edges are clipped to the dataset extent.
func scatter(out, chunk []byte, origin, dims, shape []uint64, elem uint64) {
	rank := len(dims)
	if len(origin) < rank {
		return
	}
	extent := make([]uint64, rank)
	for d := range dims {
		if origin[d] >= dims[d] {
			return
		}
		extent[d] = min(shape[d], dims[d]-origin[d])
	}
	row := extent[rank-1] * elem

	idx := make([]uint64, rank)
	for {
		var src, dst uint64
		srcStride, dstStride := elem, elem
		for d := rank - 1; d >= 0; d-- {
			src += idx[d] * srcStride
			dst += (origin[d] + idx[d]) * dstStride
			srcStride *= shape[d]
			dstStride *= dims[d]
		}
		if src+row <= uint64(len(chunk)) && dst+row <= uint64(len(out)) {
			copy(out[dst:dst+row], chunk[src:src+row])
		}

		// Advance over every dimension but the innermost, which is copied
		// as one row.
		d := rank - 2
		for ; d >= 0; d-- {
			idx[d]++
			if idx[d] < extent[d] {
				break
			}
			idx[d] = 0
		}
		if d < 0 {
			return
		}
	}
}
