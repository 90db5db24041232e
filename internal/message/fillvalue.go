package message

import (
	"bytes"
	"fmt"

	binpkg "github.com/baltrad/vpconvert/internal/binary"
)

// FillValue is the fill value message (type 0x0005).
type FillValue struct {
	Version        uint8
	SpaceAllocTime uint8
	FillWriteTime  uint8
	IsDefined      bool
	Size           uint32
	Value          []byte
}

func (m *FillValue) Type() Type { return TypeFillValue }

func parseFillValue(data []byte, r *binpkg.Reader) (*FillValue, error) {
	c := newCursor(data, r, "fill value")
	fv := &FillValue{Version: c.u8()}

	present := false
	switch fv.Version {
	case 1, 2:
		fv.SpaceAllocTime = c.u8()
		fv.FillWriteTime = c.u8()
		fv.IsDefined = c.u8() != 0
		present = fv.IsDefined && c.remaining()
	case 3:
		flags := c.u8()
		fv.SpaceAllocTime = flags & 0x03
		fv.FillWriteTime = flags >> 2 & 0x03
		fv.IsDefined = flags&0x10 == 0
		present = fv.IsDefined && flags&0x20 != 0
	default:
		if c.err == nil {
			return nil, fmt.Errorf("unsupported fill value version: %d", fv.Version)
		}
	}
	if present {
		fv.Size = c.u32()
		fv.Value = bytes.Clone(c.take(int(fv.Size)))
	}
	if c.err != nil {
		return nil, c.err
	}
	return fv, nil
}
