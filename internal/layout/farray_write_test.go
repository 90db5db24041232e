package layout

import (
	"fmt"
	"math/bits"

	"github.com/baltrad/vpconvert/internal/binary"
	"github.com/baltrad/vpconvert/internal/message"
)

// Files written by libhdf5 1.10 and later index their chunks with fixed
// arrays. The converter emits chunk B-trees, so the encoder lives here to
// feed the fixed array reader.

// writeFixedArrayIndex writes a fixed array header and its data block and
// returns the header address. A non-nil sizes slice marks the chunks as
// filtered, so every entry also records the stored size and filter mask.
// The data block is never paged, which limits the index to
// 1<<message.FixedArrayPageBits chunks.
func (cw *ChunkWriter) writeFixedArrayIndex(addrs []uint64, sizes []uint32) (uint64, error) {
	n := len(addrs)
	if n == 0 {
		return 0, nil
	}
	if n > 1<<message.FixedArrayPageBits {
		return 0, fmt.Errorf("fixed array index holds at most %d chunks, got %d", 1<<message.FixedArrayPageBits, n)
	}
	filtered := sizes != nil
	if filtered && len(sizes) != n {
		return 0, fmt.Errorf("chunk sizes: expected %d entries, got %d", n, len(sizes))
	}

	offSize, lenSize := cw.w.OffsetSize(), cw.w.LengthSize()
	entrySize, sizeBytes := offSize, 0
	var clientID uint8
	if filtered {
		clientID = 1
		sizeBytes = chunkSizeBytes(cw.ChunkSize())
		entrySize += sizeBytes + 4
	}

	headerSize := 8 + lenSize + offSize + 4
	blockSize := 6 + offSize + n*entrySize + 4
	headerAddr := cw.allocator(int64(headerSize))
	blockAddr := cw.allocator(int64(blockSize))

	block := append(make([]byte, 0, blockSize), "FADB"...)
	block = append(block, 0, clientID)
	block = appendLE(block, headerAddr, offSize)
	for i, addr := range addrs {
		block = appendLE(block, addr, offSize)
		if filtered {
			block = appendLE(block, uint64(sizes[i]), sizeBytes)
			block = appendLE(block, 0, 4)
		}
	}
	block = appendLE(block, uint64(binary.Lookup3Checksum(block)), 4)

	header := append(make([]byte, 0, headerSize), "FAHD"...)
	header = append(header, 0, clientID, uint8(entrySize), message.FixedArrayPageBits)
	header = appendLE(header, uint64(n), lenSize)
	header = appendLE(header, blockAddr, offSize)
	header = appendLE(header, uint64(binary.Lookup3Checksum(header)), 4)

	if err := cw.w.At(int64(blockAddr)).WriteBytes(block); err != nil {
		return 0, fmt.Errorf("writing fixed array data block: %w", err)
	}
	if err := cw.w.At(int64(headerAddr)).WriteBytes(header); err != nil {
		return 0, fmt.Errorf("writing fixed array header: %w", err)
	}
	return headerAddr, nil
}

// chunkSizeBytes is the width of the stored size of a filtered chunk. It is
// derived from the unfiltered chunk size, leaving room for filters that grow
// the data.
func chunkSizeBytes(chunkSize uint64) int {
	if chunkSize == 0 {
		return 1
	}
	return min(1+(bits.Len64(chunkSize)-1+8)/8, 8)
}
