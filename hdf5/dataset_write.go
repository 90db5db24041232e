package hdf5

import (
	"fmt"
	"path"
	"reflect"

	"github.com/baltrad/vpconvert/internal/dtype"
	"github.com/baltrad/vpconvert/internal/filter"
	"github.com/baltrad/vpconvert/internal/layout"
	"github.com/baltrad/vpconvert/internal/message"
	"github.com/baltrad/vpconvert/internal/object"
)

// CreateDataset writes data, a scalar or a flat slice of numbers, as a new
// dataset called name. The datatype follows the Go element type.
func (g *Group) CreateDataset(name string, data interface{}, opts ...DatasetOption) (*Dataset, error) {
	if err := g.checkName(name); err != nil {
		return nil, err
	}
	o := &datasetOptions{}
	for _, opt := range opts {
		opt(o)
	}

	v := reflect.Indirect(reflect.ValueOf(data))
	elem, dims := v.Type(), []uint64{1}
	if k := v.Kind(); k == reflect.Slice || k == reflect.Array {
		elem, dims = elem.Elem(), []uint64{uint64(v.Len())}
	}
	n := dims[0]
	if o.shape != nil {
		if product(o.shape) != n {
			return nil, fmt.Errorf("shape %v does not hold %d elements", o.shape, n)
		}
		dims = o.shape
	}

	dt, err := dtype.GoTypeToDatatype(elem)
	if err != nil {
		return nil, fmt.Errorf("dataset %q: %w", name, err)
	}
	raw, err := dtype.Encode(dt, data)
	if err != nil {
		return nil, fmt.Errorf("encoding dataset %q: %w", name, err)
	}

	// Compressed data is one chunk spanning the whole extent. Empty
	// datasets cannot be chunked.
	var dl *message.DataLayout
	var pipeline *message.FilterPipeline
	if o.level > 0 && n > 0 {
		dl, pipeline, err = g.file.writeDeflated(raw, dims, dt.Size, o.level)
	} else {
		var addr uint64
		addr, err = g.file.writeBlock(raw)
		dl = message.NewContiguousLayout(addr, uint64(len(raw)))
	}
	if err != nil {
		return nil, fmt.Errorf("writing dataset %q: %w", name, err)
	}

	attrs := make([]*message.Attribute, 0, len(o.attrs))
	for _, a := range o.attrs {
		m, err := newAttributeMessage(a.name, a.value)
		if err != nil {
			return nil, fmt.Errorf("attribute %q: %w", a.name, err)
		}
		attrs = append(attrs, m)
	}

	space := message.NewDataspace(dims, nil)
	addr, err := g.file.writeHeader(object.DatasetMessages(space, dt, dl, pipeline, attrs), 0)
	if err != nil {
		return nil, fmt.Errorf("writing dataset header: %w", err)
	}
	if err := g.addLink(message.NewHardLink(name, addr)); err != nil {
		return nil, err
	}
	return &Dataset{file: g.file, path: childPath(g.path, name), space: space, dt: dt, attrs: attrs}, nil
}

func childPath(parent, name string) string {
	return path.Join(parent, name)
}

func product(dims []uint64) uint64 {
	n := uint64(1)
	for _, d := range dims {
		n *= d
	}
	return n
}

// newAttributeMessage encodes a scalar or flat slice of numbers or
// strings. Strings are stored null terminated with the width of the
// longest one.
func newAttributeMessage(name string, value interface{}) (*message.Attribute, error) {
	v := reflect.Indirect(reflect.ValueOf(value))
	if !v.IsValid() {
		return nil, fmt.Errorf("nil value")
	}
	elem, space := v.Type(), message.NewScalarDataspace()
	if k := v.Kind(); k == reflect.Slice || k == reflect.Array {
		if v.Len() == 0 {
			return nil, fmt.Errorf("empty slice")
		}
		elem, space = elem.Elem(), message.NewDataspace([]uint64{uint64(v.Len())}, nil)
	}

	var dt *message.Datatype
	if elem.Kind() == reflect.String {
		width := 0
		if space.IsScalar() {
			width = v.Len()
		}
		for i := 0; !space.IsScalar() && i < v.Len(); i++ {
			width = max(width, v.Index(i).Len())
		}
		dt = message.NewStringDatatype(uint32(width+1), message.PadNullTerm, message.CharsetASCII)
	} else {
		var err error
		if dt, err = dtype.GoTypeToDatatype(elem); err != nil {
			return nil, err
		}
	}

	data, err := dtype.Encode(dt, v.Interface())
	if err != nil {
		return nil, err
	}
	return message.NewAttribute(name, dt, space, data), nil
}

// writeDeflated compresses raw as a single chunk indexed by a version 1
// B-tree, which libhdf5 1.8 and later can read.
func (f *File) writeDeflated(raw []byte, dims []uint64, elemSize uint32, level int) (*message.DataLayout, *message.FilterPipeline, error) {
	fp := message.NewDeflatePipeline(level)
	p, err := filter.NewPipeline(fp)
	if err != nil {
		return nil, nil, err
	}
	encoded, err := p.Encode(raw)
	if err != nil {
		return nil, nil, fmt.Errorf("compressing: %w", err)
	}

	chunk := make([]uint32, len(dims))
	for i, d := range dims {
		chunk[i] = uint32(d)
	}
	cw := layout.NewChunkWriter(f.writer, chunk, elemSize, f.allocate)
	addrs, err := cw.WriteChunks([][]byte{encoded})
	if err != nil {
		return nil, nil, err
	}
	index, err := cw.WriteBTreeIndex(addrs, []uint32{uint32(len(encoded))}, [][]uint64{make([]uint64, len(dims))})
	if err != nil {
		return nil, nil, err
	}

	dl := message.NewChunkedLayout(chunk, elemSize, message.ChunkIndexBTreeV1)
	dl.ChunkIndexAddr = index
	return dl, fp, nil
}
