package btree

import (
	"fmt"

	"github.com/baltrad/vpconvert/internal/binary"
)

const (
	nodeGroup uint8 = 0
	nodeChunk uint8 = 1
)

// walk visits every child of the level-0 nodes below addr in key order.
// Each child is passed together with the key that precedes it.
func walk(r *binary.Reader, addr uint64, kind uint8, keySize int, visit func(key []byte, child uint64) error) error {
	nr := r.At(int64(addr))

	head, err := nr.ReadBytes(8)
	if err != nil {
		return fmt.Errorf("reading B-tree node at %#x: %w", addr, err)
	}
	if string(head[:4]) != "TREE" {
		return fmt.Errorf("invalid B-tree signature %q at %#x", head[:4], addr)
	}
	if head[4] != kind {
		return fmt.Errorf("unexpected B-tree node type %d, want %d", head[4], kind)
	}
	level := head[5]
	used := int(r.ByteOrder().Uint16(head[6:8]))
	nr.Skip(int64(2 * r.OffsetSize())) // siblings

	for i := 0; i < used; i++ {
		key, err := nr.ReadBytes(keySize)
		if err != nil {
			return err
		}
		child, err := nr.ReadOffset()
		if err != nil {
			return err
		}
		if level > 0 {
			err = walk(r, child, kind, keySize, visit)
		} else {
			err = visit(key, child)
		}
		if err != nil {
			return err
		}
	}
	return nil
}
