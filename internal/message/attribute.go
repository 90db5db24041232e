package message

import (
	"bytes"
	"encoding/binary"
	"fmt"

	binpkg "github.com/baltrad/vpconvert/internal/binary"
)

// Attribute is the attribute message (type 0x000C). A datatype or
// dataspace that cannot be decoded is left nil so that the attribute can
// still be listed by name.
type Attribute struct {
	Version       uint8
	Name          string
	DatatypeSize  uint16
	DataspaceSize uint16
	Datatype      *Datatype
	Dataspace     *Dataspace
	Data          []byte
}

func (m *Attribute) Type() Type { return TypeAttribute }

func parseAttribute(data []byte, r *binpkg.Reader) (*Attribute, error) {
	if len(data) < 8 {
		return nil, fmt.Errorf("attribute message too short")
	}
	attr := &Attribute{
		Version:       data[0],
		DatatypeSize:  binary.LittleEndian.Uint16(data[4:6]),
		DataspaceSize: binary.LittleEndian.Uint16(data[6:8]),
	}
	nameSize := int(binary.LittleEndian.Uint16(data[2:4]))

	// Version 1 pads every field to eight bytes; version 3 adds the name
	// encoding before the name.
	pad := func(n int) int { return n }
	pos := 8
	switch attr.Version {
	case 1:
		pad = func(n int) int { return (n + 7) &^ 7 }
	case 2:
	case 3:
		pos = 9
	default:
		return nil, fmt.Errorf("unsupported attribute version: %d", attr.Version)
	}

	field := func(n int, what string) ([]byte, error) {
		if pos+n > len(data) {
			return nil, fmt.Errorf("attribute %s truncated", what)
		}
		b := data[pos : pos+n]
		pos += pad(n)
		return b, nil
	}

	name, err := field(nameSize, "name")
	if err != nil {
		return nil, err
	}
	if i := bytes.IndexByte(name, 0); i >= 0 {
		name = name[:i]
	}
	attr.Name = string(name)

	dt, err := field(int(attr.DatatypeSize), "datatype")
	if err != nil {
		return nil, err
	}
	attr.Datatype, _ = parseDatatype(dt)

	ds, err := field(int(attr.DataspaceSize), "dataspace")
	if err != nil {
		return nil, err
	}
	attr.Dataspace, _ = parseDataspace(ds, r)

	if pos < len(data) {
		attr.Data = bytes.Clone(data[pos:])
	}
	return attr, nil
}

// NewAttribute returns a version 3 attribute message.
func NewAttribute(name string, datatype *Datatype, dataspace *Dataspace, data []byte) *Attribute {
	return &Attribute{Version: 3, Name: name, Datatype: datatype, Dataspace: dataspace, Data: data}
}

func (m *Attribute) encode(e *encoder) error {
	if m.Datatype == nil || m.Dataspace == nil {
		return fmt.Errorf("attribute %q has no datatype or dataspace", m.Name)
	}
	dt := e.sub()
	if err := m.Datatype.encode(dt); err != nil {
		return err
	}
	ds := e.sub()
	if err := m.Dataspace.encode(ds); err != nil {
		return err
	}

	// Version 3 with an ASCII name and no shared components.
	e.u8(3, 0)
	e.u16(uint16(len(m.Name) + 1))
	e.u16(uint16(len(dt.b)))
	e.u16(uint16(len(ds.b)))
	e.u8(uint8(CharsetASCII))
	e.cstring(m.Name)
	e.bytes(dt.b)
	e.bytes(ds.b)
	e.bytes(m.Data)
	return nil
}

func (m *Attribute) Serialize(w *binpkg.Writer) error    { return serialize(w, m) }
func (m *Attribute) SerializedSize(w *binpkg.Writer) int { return serializedSize(w, m) }
