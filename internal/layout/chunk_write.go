package layout

import (
	"fmt"

	"github.com/baltrad/vpconvert/internal/binary"
)

// ChunkWriter writes chunk data and the B-tree index that locates it.
type ChunkWriter struct {
	w           *binary.Writer
	chunkDims   []uint32
	elementSize uint32
	allocator   func(size int64) uint64
}

func NewChunkWriter(w *binary.Writer, chunkDims []uint32, elementSize uint32, allocator func(size int64) uint64) *ChunkWriter {
	return &ChunkWriter{w: w, chunkDims: chunkDims, elementSize: elementSize, allocator: allocator}
}

// ChunkSize returns the unfiltered size in bytes of one chunk.
func (cw *ChunkWriter) ChunkSize() uint64 {
	size := uint64(cw.elementSize)
	for _, d := range cw.chunkDims {
		size *= uint64(d)
	}
	return size
}

// WriteChunks stores each chunk in freshly allocated space and returns the
// addresses in the same order.
func (cw *ChunkWriter) WriteChunks(chunks [][]byte) ([]uint64, error) {
	addrs := make([]uint64, len(chunks))
	for i, chunk := range chunks {
		addr := cw.allocator(int64(len(chunk)))
		if err := cw.w.At(int64(addr)).WriteBytes(chunk); err != nil {
			return nil, fmt.Errorf("writing chunk %d: %w", i, err)
		}
		addrs[i] = addr
	}
	return addrs, nil
}

// indexedStorageK is the chunk B-tree K implied by a version 2
// superblock. Readers size every chunk B-tree node from it, so a node
// always occupies room for 2K children even when fewer are used.
const indexedStorageK = 32

// WriteBTreeIndex writes a version 1 chunk B-tree holding one leaf node and
// returns its address. offsets are the chunk origins in element
// coordinates, in ascending order. A nil sizes slice records every chunk
// at its unfiltered size.
func (cw *ChunkWriter) WriteBTreeIndex(addrs []uint64, sizes []uint32, offsets [][]uint64) (uint64, error) {
	n := len(addrs)
	switch {
	case n == 0:
		return 0, fmt.Errorf("chunk B-tree needs at least one chunk")
	case n > 2*indexedStorageK:
		return 0, fmt.Errorf("chunk B-tree leaf holds at most %d chunks, got %d", 2*indexedStorageK, n)
	case len(offsets) != n:
		return 0, fmt.Errorf("chunk offsets: expected %d entries, got %d", n, len(offsets))
	case sizes != nil && len(sizes) != n:
		return 0, fmt.Errorf("chunk sizes: expected %d entries, got %d", n, len(sizes))
	}
	rank := len(cw.chunkDims)
	offSize := cw.w.OffsetSize()
	keySize := 8 + 8*(rank+1)
	nodeSize := 8 + 2*offSize + 2*indexedStorageK*offSize + (2*indexedStorageK+1)*keySize

	key := func(b []byte, size uint32, origin []uint64) []byte {
		b = appendLE(b, uint64(size), 4)
		b = appendLE(b, 0, 4) // filter mask
		for _, o := range origin {
			b = appendLE(b, o, 8)
		}
		return appendLE(b, 0, 8) // element dimension
	}

	node := append(make([]byte, 0, nodeSize), "TREE"...)
	node = append(node, 1, 0) // chunk node, leaf
	node = appendLE(node, uint64(n), 2)
	node = appendLE(node, cw.w.UndefinedOffset(), offSize)
	node = appendLE(node, cw.w.UndefinedOffset(), offSize)
	for i, addr := range addrs {
		if len(offsets[i]) != rank {
			return 0, fmt.Errorf("chunk %d origin has rank %d, want %d", i, len(offsets[i]), rank)
		}
		size := uint32(cw.ChunkSize())
		if sizes != nil {
			size = sizes[i]
		}
		node = key(node, size, offsets[i])
		node = appendLE(node, addr, offSize)
	}
	// The closing key bounds the last chunk.
	end := make([]uint64, rank)
	for d := range end {
		end[d] = offsets[n-1][d] + uint64(cw.chunkDims[d])
	}
	node = key(node, 0, end)
	node = append(node, make([]byte, nodeSize-len(node))...)

	addr := cw.allocator(int64(nodeSize))
	if err := cw.w.At(int64(addr)).WriteBytes(node); err != nil {
		return 0, fmt.Errorf("writing chunk B-tree: %w", err)
	}
	return addr, nil
}

func appendLE(b []byte, v uint64, size int) []byte {
	for i := 0; i < size; i++ {
		b = append(b, byte(v>>(8*i)))
	}
	return b
}
