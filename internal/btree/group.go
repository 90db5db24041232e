package btree

import (
	"fmt"

	"github.com/baltrad/vpconvert/internal/binary"
	"github.com/baltrad/vpconvert/internal/heap"
)

// cacheSoftLink marks a symbol table entry whose scratch pad holds the heap
// offset of a soft link target.
const cacheSoftLink uint32 = 2

// GroupEntry is one member of an old-style group.
type GroupEntry struct {
	Name          string
	ObjectAddress uint64
	LinkType      uint32 // 0 hard, 1 soft
	SoftLinkValue string
}

// ReadGroupEntries lists the members of a group indexed by the B-tree at
// addr. Member names are resolved through the group's local heap.
func ReadGroupEntries(r *binary.Reader, addr uint64, names *heap.Local) ([]GroupEntry, error) {
	var entries []GroupEntry
	err := walk(r, addr, nodeGroup, r.LengthSize(), func(_ []byte, snod uint64) error {
		got, err := readSymbolNode(r, snod, names)
		if err != nil {
			return fmt.Errorf("reading symbol table node: %w", err)
		}
		entries = append(entries, got...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func readSymbolNode(r *binary.Reader, addr uint64, names *heap.Local) ([]GroupEntry, error) {
	nr := r.At(int64(addr))
	head, err := nr.ReadBytes(8)
	if err != nil {
		return nil, err
	}
	if string(head[:4]) != "SNOD" {
		return nil, fmt.Errorf("invalid symbol table node signature %q", head[:4])
	}
	if head[4] != 1 {
		return nil, fmt.Errorf("unsupported symbol table node version %d", head[4])
	}
	count := int(r.ByteOrder().Uint16(head[6:8]))

	var entries []GroupEntry
	for i := 0; i < count; i++ {
		e, err := readSymbolEntry(nr, names)
		if err != nil {
			return nil, fmt.Errorf("symbol %d: %w", i, err)
		}
		if e.Name != "" {
			entries = append(entries, e)
		}
	}
	return entries, nil
}

func readSymbolEntry(r *binary.Reader, names *heap.Local) (GroupEntry, error) {
	var e GroupEntry
	nameOff, err := r.ReadOffset()
	if err != nil {
		return e, err
	}
	if e.ObjectAddress, err = r.ReadOffset(); err != nil {
		return e, err
	}
	cacheType, err := r.ReadUint32()
	if err != nil {
		return e, err
	}
	r.Skip(4)
	scratch, err := r.ReadBytes(16)
	if err != nil {
		return e, err
	}

	e.Name = names.String(nameOff)
	if cacheType == cacheSoftLink {
		e.LinkType = 1
		e.SoftLinkValue = names.String(uint64(r.ByteOrder().Uint32(scratch[:4])))
		e.ObjectAddress = 0
	}
	return e, nil
}
