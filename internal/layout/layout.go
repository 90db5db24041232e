package layout

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/baltrad/vpconvert/internal/binary"
	"github.com/baltrad/vpconvert/internal/message"
)

// ErrUnsupportedIndex is returned for chunk indexes this package cannot read.
var ErrUnsupportedIndex = errors.New("unsupported chunk index")

// Layout reads the raw, unfiltered bytes of a dataset in row-major order.
type Layout interface {
	Read() ([]byte, error)
	Class() message.LayoutClass
}

// New returns the reader for a dataset's layout message.
func New(
	dl *message.DataLayout,
	space *message.Dataspace,
	dt *message.Datatype,
	pipeline *message.FilterPipeline,
	r *binary.Reader,
) (Layout, error) {
	if dl == nil {
		return nil, fmt.Errorf("nil layout message")
	}

	switch dl.Class {
	case message.LayoutCompact:
		return &Compact{data: dl.CompactData}, nil
	case message.LayoutContiguous:
		return NewContiguous(dl, space, dt, r), nil
	case message.LayoutChunked:
		return NewChunked(dl, space, dt, pipeline, r)
	}
	return nil, fmt.Errorf("unsupported layout class: %d", dl.Class)
}

// dataSize is the in-memory size of the whole dataset.
func dataSize(space *message.Dataspace, dt *message.Datatype) uint64 {
	if space == nil || dt == nil {
		return 0
	}
	return space.NumElements() * uint64(dt.Size)
}

// Compact storage keeps the data inside the object header.
type Compact struct {
	data []byte
}

func (c *Compact) Class() message.LayoutClass { return message.LayoutCompact }

// Read returns a copy of the header-resident data.
func (c *Compact) Read() ([]byte, error) {
	return bytes.Clone(c.data), nil
}

// Contiguous storage is a single block in the file.
type Contiguous struct {
	address uint64
	size    uint64
	reader  *binary.Reader
}

// NewContiguous returns a contiguous reader. When the message does not record
// the size it is derived from the dataspace and datatype.
func NewContiguous(dl *message.DataLayout, space *message.Dataspace, dt *message.Datatype, r *binary.Reader) *Contiguous {
	size := dl.Size
	if size == 0 {
		size = dataSize(space, dt)
	}
	return &Contiguous{address: dl.Address, size: size, reader: r}
}

func (c *Contiguous) Class() message.LayoutClass { return message.LayoutContiguous }

func (c *Contiguous) Read() ([]byte, error) {
	if c.reader.IsUndefinedOffset(c.address) {
		return nil, fmt.Errorf("contiguous data not allocated")
	}
	if c.size == 0 {
		return []byte{}, nil
	}
	data, err := c.reader.At(int64(c.address)).ReadBytes(int(c.size))
	if err != nil {
		return nil, fmt.Errorf("reading contiguous data: %w", err)
	}
	return data, nil
}
