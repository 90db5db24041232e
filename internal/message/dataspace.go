package message

import (
	"fmt"

	binpkg "github.com/baltrad/vpconvert/internal/binary"
)

type DataspaceType uint8

const (
	DataspaceScalar DataspaceType = 0
	DataspaceSimple DataspaceType = 1
	DataspaceNull   DataspaceType = 2
)

// Dataspace is the dataspace message (type 0x0001).
type Dataspace struct {
	Version    uint8
	Rank       int
	SpaceType  DataspaceType
	Dimensions []uint64
	MaxDims    []uint64 // nil when the maximum equals the current extent
}

func (m *Dataspace) Type() Type { return TypeDataspace }

// NumElements returns the number of elements the dataspace selects.
func (m *Dataspace) NumElements() uint64 {
	switch m.SpaceType {
	case DataspaceScalar:
		return 1
	case DataspaceSimple:
		if len(m.Dimensions) == 0 {
			return 0
		}
		n := uint64(1)
		for _, d := range m.Dimensions {
			n *= d
		}
		return n
	}
	return 0
}

func (m *Dataspace) IsScalar() bool { return m.SpaceType == DataspaceScalar }

func parseDataspace(data []byte, r *binpkg.Reader) (*Dataspace, error) {
	c := newCursor(data, r, "dataspace")
	ds := &Dataspace{Version: c.u8(), Rank: int(c.u8())}
	flags := c.u8()

	switch ds.Version {
	case 1:
		// Version 1 has no type field; a rank of zero is a scalar.
		ds.SpaceType = DataspaceSimple
		if ds.Rank == 0 {
			ds.SpaceType = DataspaceScalar
		}
		c.take(5)
	case 2:
		ds.SpaceType = DataspaceType(c.u8())
	default:
		if c.err == nil {
			return nil, fmt.Errorf("unsupported dataspace version: %d", ds.Version)
		}
	}
	if c.err != nil {
		return nil, c.err
	}
	if ds.SpaceType != DataspaceSimple || ds.Rank == 0 {
		return ds, nil
	}

	ds.Dimensions = make([]uint64, ds.Rank)
	for i := range ds.Dimensions {
		ds.Dimensions[i] = c.length()
	}
	if flags&0x01 != 0 {
		ds.MaxDims = make([]uint64, ds.Rank)
		for i := range ds.MaxDims {
			ds.MaxDims[i] = c.length()
		}
	}
	if c.err != nil {
		return nil, c.err
	}
	return ds, nil
}

// Dataspaces are written as version 2.
func (m *Dataspace) encode(e *encoder) error {
	var flags uint8
	if len(m.MaxDims) > 0 {
		flags = 0x01
	}
	e.u8(2, uint8(m.Rank), flags, uint8(m.SpaceType))
	for _, d := range m.Dimensions {
		e.length(d)
	}
	if flags != 0 {
		for _, d := range m.MaxDims {
			e.length(d)
		}
	}
	return nil
}

func (m *Dataspace) Serialize(w *binpkg.Writer) error    { return serialize(w, m) }
func (m *Dataspace) SerializedSize(w *binpkg.Writer) int { return serializedSize(w, m) }

// NewDataspace returns a simple dataspace. A nil maxDims fixes the extent.
func NewDataspace(dims, maxDims []uint64) *Dataspace {
	return &Dataspace{Version: 2, Rank: len(dims), SpaceType: DataspaceSimple, Dimensions: dims, MaxDims: maxDims}
}

func NewScalarDataspace() *Dataspace {
	return &Dataspace{Version: 2, SpaceType: DataspaceScalar}
}
