package message

import binpkg "github.com/baltrad/vpconvert/internal/binary"

// UndefinedAddress is the all-ones address of unallocated structures.
const UndefinedAddress = ^uint64(0)

// LinkInfo is the link info message (type 0x0002) of new-style groups.
// Groups that keep their links in the object header leave the dense
// storage addresses undefined.
type LinkInfo struct {
	Version                uint8
	Flags                  uint8
	MaxCreationIndex       uint64
	FractalHeapAddr        uint64
	NameIndexBTreeAddr     uint64
	CreationOrderBTreeAddr uint64
}

func (m *LinkInfo) Type() Type { return TypeLinkInfo }

func (m *LinkInfo) encode(e *encoder) error {
	e.u8(m.Version, m.Flags)
	if m.Flags&0x01 != 0 {
		e.uint(m.MaxCreationIndex, 8)
	}
	e.offset(m.FractalHeapAddr)
	e.offset(m.NameIndexBTreeAddr)
	if m.Flags&0x03 == 0x03 {
		e.offset(m.CreationOrderBTreeAddr)
	}
	return nil
}

func (m *LinkInfo) Serialize(w *binpkg.Writer) error    { return serialize(w, m) }
func (m *LinkInfo) SerializedSize(w *binpkg.Writer) int { return serializedSize(w, m) }

func NewLinkInfo() *LinkInfo {
	return &LinkInfo{FractalHeapAddr: UndefinedAddress, NameIndexBTreeAddr: UndefinedAddress}
}

// GroupInfo is the group info message (type 0x000A). The zero value
// keeps the library defaults for link storage.
type GroupInfo struct {
	Version         uint8
	Flags           uint8
	MaxCompactLinks uint16
	MinDenseLinks   uint16
	EstNumEntries   uint16
	EstLinkNameLen  uint16
}

func (m *GroupInfo) Type() Type { return TypeGroupInfo }

func (m *GroupInfo) encode(e *encoder) error {
	e.u8(m.Version, m.Flags)
	if m.Flags&0x01 != 0 {
		e.u16(m.MaxCompactLinks)
		e.u16(m.MinDenseLinks)
	}
	if m.Flags&0x02 != 0 {
		e.u16(m.EstNumEntries)
		e.u16(m.EstLinkNameLen)
	}
	return nil
}

func (m *GroupInfo) Serialize(w *binpkg.Writer) error    { return serialize(w, m) }
func (m *GroupInfo) SerializedSize(w *binpkg.Writer) int { return serializedSize(w, m) }

func NewGroupInfo() *GroupInfo { return &GroupInfo{} }
