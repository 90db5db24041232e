package layout

import (
	"bytes"
	"fmt"

	"github.com/baltrad/vpconvert/internal/binary"
	"github.com/baltrad/vpconvert/internal/btree"
)

// readFixedArray reads a fixed array chunk index. offsets holds the chunk
// origins in index order. chunkSize is the stored size of unfiltered chunks.
func readFixedArray(r *binary.Reader, addr uint64, offsets [][]uint64, chunkSize uint32) ([]btree.ChunkEntry, error) {
	offSize, lenSize := r.OffsetSize(), r.LengthSize()

	header, err := readChecked(r, addr, 8+lenSize+offSize, "FAHD")
	if err != nil {
		return nil, fmt.Errorf("fixed array header: %w", err)
	}
	clientID, entrySize, pageBits := header[5], int(header[6]), header[7]
	count := leUint(header[8 : 8+lenSize])
	blockAddr := leUint(header[8+lenSize : 8+lenSize+offSize])

	if clientID > 1 {
		return nil, fmt.Errorf("fixed array client %d is not a chunk index", clientID)
	}
	filtered := clientID == 1
	sizeBytes := entrySize - offSize - 4
	if entrySize < offSize || (filtered && sizeBytes < 1) {
		return nil, fmt.Errorf("fixed array entry size %d is too small", entrySize)
	}
	if count > uint64(len(offsets)) {
		return nil, fmt.Errorf("fixed array holds %d entries for %d chunks", count, len(offsets))
	}
	if count == 0 || r.IsUndefinedOffset(blockAddr) {
		return nil, nil
	}

	decode := func(raw []byte, first uint64) []btree.ChunkEntry {
		var entries []btree.ChunkEntry
		for i := 0; (i+1)*entrySize <= len(raw); i++ {
			e := raw[i*entrySize : (i+1)*entrySize]
			ea := leUint(e[:offSize])
			if r.IsUndefinedOffset(ea) || ea == 0 {
				continue
			}
			entry := btree.ChunkEntry{Offset: offsets[first+uint64(i)], Address: ea, Size: chunkSize}
			if filtered {
				entry.Size = uint32(leUint(e[offSize : offSize+sizeBytes]))
				entry.FilterMask = uint32(leUint(e[offSize+sizeBytes:]))
			}
			entries = append(entries, entry)
		}
		return entries
	}

	prefix := 6 + offSize
	perPage := uint64(1) << pageBits
	if count <= perPage {
		block, err := readChecked(r, blockAddr, prefix+int(count)*entrySize, "FADB")
		if err != nil {
			return nil, fmt.Errorf("fixed array data block: %w", err)
		}
		return decode(block[prefix:], 0), nil
	}

	// Paged data block: the prefix carries an initialisation bitmap and its
	// own checksum, and every page is checksummed separately.
	pages := (count + perPage - 1) / perPage
	prefix += int((pages + 7) / 8)
	block, err := readChecked(r, blockAddr, prefix, "FADB")
	if err != nil {
		return nil, fmt.Errorf("fixed array data block: %w", err)
	}
	bitmap := block[6+offSize:]

	var entries []btree.ChunkEntry
	pageAddr := blockAddr + uint64(prefix) + 4
	for p := uint64(0); p < pages; p++ {
		n := min(perPage, count-p*perPage)
		size := uint64(n)*uint64(entrySize) + 4
		if bitmap[p/8]&(0x80>>(p%8)) != 0 {
			page, err := readChecked(r, pageAddr, int(size)-4, "")
			if err != nil {
				return nil, fmt.Errorf("fixed array page %d: %w", p, err)
			}
			entries = append(entries, decode(page, p*perPage)...)
		}
		pageAddr += size
	}
	return entries, nil
}

// readChecked reads n bytes plus a trailing lookup3 checksum and verifies
// both the checksum and, when given, the leading signature.
func readChecked(r *binary.Reader, addr uint64, n int, sig string) ([]byte, error) {
	buf, err := r.At(int64(addr)).ReadBytes(n + 4)
	if err != nil {
		return nil, err
	}
	if sig != "" && !bytes.HasPrefix(buf, []byte(sig)) {
		return nil, fmt.Errorf("bad signature %q", buf[:min(4, len(buf))])
	}
	if want, got := uint32(leUint(buf[n:])), binary.Lookup3Checksum(buf[:n]); want != got {
		return nil, fmt.Errorf("checksum mismatch: stored %#x, computed %#x", want, got)
	}
	return buf[:n], nil
}

// leUint decodes a little-endian unsigned integer of up to eight bytes.
func leUint(b []byte) uint64 {
	var v uint64
	for i := len(b) - 1; i >= 0; i-- {
		v = v<<8 | uint64(b[i])
	}
	return v
}
