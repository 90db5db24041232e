package message

import (
	"fmt"
	"math/bits"

	binpkg "github.com/baltrad/vpconvert/internal/binary"
)

type LinkType uint8

const (
	LinkTypeHard     LinkType = 0
	LinkTypeSoft     LinkType = 1
	LinkTypeExternal LinkType = 64
)

// Link is the link message (type 0x0006). Hard links carry an object
// address and soft links a path; other link types keep only their name.
type Link struct {
	Version       uint8
	LinkType      LinkType
	CreationOrder uint64
	Name          string
	Charset       uint8
	ObjectAddress uint64
	SoftLinkValue string
}

func (m *Link) Type() Type { return TypeLink }

func (m *Link) IsHard() bool { return m.LinkType == LinkTypeHard }
func (m *Link) IsSoft() bool { return m.LinkType == LinkTypeSoft }

// Link message flags.
const (
	linkNameWidth  = 0x03
	linkHasOrder   = 0x04
	linkHasType    = 0x08
	linkHasCharset = 0x10
)

func parseLink(data []byte, r *binpkg.Reader) (*Link, error) {
	c := newCursor(data, r, "link")
	link := &Link{Version: c.u8()}
	flags := c.u8()

	if flags&linkHasType != 0 {
		link.LinkType = LinkType(c.u8())
	}
	if flags&linkHasOrder != 0 {
		link.CreationOrder = c.next(8)
	}
	if flags&linkHasCharset != 0 {
		link.Charset = c.u8()
	}
	nameLen := c.next(1 << (flags & linkNameWidth))
	if c.err == nil && nameLen > uint64(len(data)) {
		return nil, fmt.Errorf("link name length %d exceeds message", nameLen)
	}
	link.Name = string(c.take(int(nameLen)))

	switch link.LinkType {
	case LinkTypeHard:
		link.ObjectAddress = c.offset()
	case LinkTypeSoft:
		link.SoftLinkValue = string(c.take(int(c.u16())))
	}
	if c.err != nil {
		return nil, c.err
	}
	return link, nil
}

// Links are written as version 1 without creation order or charset.
func (m *Link) encode(e *encoder) error {
	// The name length is stored in 1, 2, 4 or 8 bytes.
	width := uint8(bits.Len64(uint64(len(m.Name)))+7) / 8
	code := uint8(bits.Len8(max(width, 1) - 1))
	flags := code
	if m.LinkType != LinkTypeHard {
		flags |= linkHasType
	}
	e.u8(1, flags)
	if m.LinkType != LinkTypeHard {
		e.u8(uint8(m.LinkType))
	}
	e.uint(uint64(len(m.Name)), 1<<code)
	e.bytes([]byte(m.Name))

	switch m.LinkType {
	case LinkTypeHard:
		e.offset(m.ObjectAddress)
	case LinkTypeSoft:
		e.u16(uint16(len(m.SoftLinkValue)))
		e.bytes([]byte(m.SoftLinkValue))
	default:
		return fmt.Errorf("writing link type %d is not supported", m.LinkType)
	}
	return nil
}

func (m *Link) Serialize(w *binpkg.Writer) error    { return serialize(w, m) }
func (m *Link) SerializedSize(w *binpkg.Writer) int { return serializedSize(w, m) }

func NewHardLink(name string, objectAddress uint64) *Link {
	return &Link{Version: 1, LinkType: LinkTypeHard, Name: name, ObjectAddress: objectAddress}
}

// NewSoftLink returns a link that resolves target by path.
func NewSoftLink(name, target string) *Link {
	return &Link{Version: 1, LinkType: LinkTypeSoft, Name: name, SoftLinkValue: target}
}
