package btree

import (
	"github.com/baltrad/vpconvert/internal/binary"
)

// ChunkEntry locates one stored chunk.
type ChunkEntry struct {
	// Offset is the chunk origin in dataset element coordinates.
	Offset []uint64
	// FilterMask has bit i set when filter i was skipped for this chunk.
	FilterMask uint32
	// Size is the stored, possibly filtered, size in bytes.
	Size    uint32
	Address uint64
}

type ChunkIndex struct {
	NDims   int
	Entries []ChunkEntry
}

// ReadChunkIndex reads the chunk B-tree of a dataset of rank ndims. Keys
// carry one more offset than the rank; the extra one is always zero.
func ReadChunkIndex(r *binary.Reader, addr uint64, ndims int) (*ChunkIndex, error) {
	idx := &ChunkIndex{NDims: ndims}
	order := r.ByteOrder()

	err := walk(r, addr, nodeChunk, 8+8*(ndims+1), func(key []byte, child uint64) error {
		size := order.Uint32(key[0:4])
		if size == 0 || r.IsUndefinedOffset(child) {
			return nil
		}
		off := make([]uint64, ndims)
		for d := range off {
			off[d] = order.Uint64(key[8+8*d:])
		}
		idx.Entries = append(idx.Entries, ChunkEntry{
			Offset:     off,
			FilterMask: order.Uint32(key[4:8]),
			Size:       size,
			Address:    child,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return idx, nil
}
