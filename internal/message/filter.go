package message

import (
	"fmt"

	binpkg "github.com/baltrad/vpconvert/internal/binary"
)

// Filter identifiers.
const (
	FilterDeflate     uint16 = 1
	FilterShuffle     uint16 = 2
	FilterFletcher32  uint16 = 3
	FilterSZIP        uint16 = 4
	FilterNBit        uint16 = 5
	FilterScaleOffset uint16 = 6
)

// FilterInfo is one stage of a filter pipeline.
type FilterInfo struct {
	ID         uint16
	Flags      uint16
	Name       string
	ClientData []uint32
}

// IsOptional reports whether the filter may be skipped when it fails.
func (f *FilterInfo) IsOptional() bool { return f.Flags&0x01 != 0 }

// FilterPipeline is the filter pipeline message (type 0x000B).
type FilterPipeline struct {
	Version uint8
	Filters []FilterInfo
}

func (m *FilterPipeline) Type() Type { return TypeFilterPipeline }

func parseFilterPipeline(data []byte, r *binpkg.Reader) (*FilterPipeline, error) {
	c := newCursor(data, r, "filter pipeline")
	fp := &FilterPipeline{Version: c.u8()}
	n := int(c.u8())
	if fp.Version == 1 {
		c.take(6)
	}
	if c.err != nil {
		return nil, c.err
	}
	if fp.Version != 1 && fp.Version != 2 {
		return nil, fmt.Errorf("unsupported filter pipeline version: %d", fp.Version)
	}

	for i := 0; i < n; i++ {
		f := FilterInfo{ID: c.u16()}

		// Version 2 drops the name of the predefined filters.
		var nameLen int
		if fp.Version == 1 || f.ID >= 256 {
			nameLen = int(c.u16())
		}
		f.Flags = c.u16()
		values := int(c.u16())
		if nameLen > 0 {
			f.Name = c.str(nameLen)
			if fp.Version == 1 {
				c.take((8 - nameLen%8) % 8)
			}
		}
		f.ClientData = make([]uint32, values)
		for j := range f.ClientData {
			f.ClientData[j] = c.u32()
		}
		if fp.Version == 1 && values%2 != 0 {
			c.take(4)
		}
		if c.err != nil {
			return nil, fmt.Errorf("parsing filter %d: %w", i, c.err)
		}
		fp.Filters = append(fp.Filters, f)
	}
	return fp, nil
}

// HasCompression reports whether any stage compresses.
func (m *FilterPipeline) HasCompression() bool {
	return m.HasFilter(FilterDeflate) || m.HasFilter(FilterSZIP)
}

func (m *FilterPipeline) HasFilter(id uint16) bool {
	for _, f := range m.Filters {
		if f.ID == id {
			return true
		}
	}
	return false
}

// Pipelines are written as version 2.
func (m *FilterPipeline) encode(e *encoder) error {
	e.u8(2, uint8(len(m.Filters)))
	for _, f := range m.Filters {
		e.u16(f.ID)
		if f.ID >= 256 {
			e.u16(uint16(len(f.Name) + 1))
		}
		e.u16(f.Flags)
		e.u16(uint16(len(f.ClientData)))
		if f.ID >= 256 {
			e.cstring(f.Name)
		}
		for _, v := range f.ClientData {
			e.u32(v)
		}
	}
	return nil
}

func (m *FilterPipeline) Serialize(w *binpkg.Writer) error    { return serialize(w, m) }
func (m *FilterPipeline) SerializedSize(w *binpkg.Writer) int { return serializedSize(w, m) }

// NewDeflatePipeline returns a pipeline with one deflate stage.
func NewDeflatePipeline(level int) *FilterPipeline {
	return &FilterPipeline{
		Version: 2,
		Filters: []FilterInfo{{ID: FilterDeflate, ClientData: []uint32{uint32(level)}}},
	}
}
