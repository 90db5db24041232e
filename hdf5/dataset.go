package hdf5

import (
	"fmt"
	"path"
	"reflect"

	"github.com/baltrad/vpconvert/internal/dtype"
	"github.com/baltrad/vpconvert/internal/layout"
	"github.com/baltrad/vpconvert/internal/message"
	"github.com/baltrad/vpconvert/internal/object"
)

// Dataset is an HDF5 dataset. Datasets returned by CreateDataset describe
// what was written and cannot be read back until the file is reopened.
type Dataset struct {
	file   *File
	path   string
	space  *message.Dataspace
	dt     *message.Datatype
	attrs  []*message.Attribute
	layout layout.Layout
}

func newDataset(f *File, p string, h *object.Header) (*Dataset, error) {
	d := &Dataset{file: f, path: p, space: h.Dataspace(), dt: h.Datatype(), attrs: h.Attributes()}
	dl := h.DataLayout()
	switch {
	case d.dt == nil:
		return nil, fmt.Errorf("dataset %s has no datatype message", p)
	case dl == nil:
		return nil, fmt.Errorf("dataset %s has no layout message", p)
	}
	var err error
	if d.layout, err = layout.New(dl, d.space, d.dt, h.FilterPipeline(), f.reader); err != nil {
		return nil, fmt.Errorf("dataset %s: %w", p, err)
	}
	return d, nil
}

func (d *Dataset) Name() string { return path.Base(d.path) }
func (d *Dataset) Path() string { return d.path }

// Shape returns the dimensions, or nil for a scalar.
func (d *Dataset) Shape() []uint64 {
	if d.space.IsScalar() {
		return nil
	}
	return d.space.Dimensions
}

func (d *Dataset) Rank() int           { return d.space.Rank }
func (d *Dataset) NumElements() uint64 { return d.space.NumElements() }
func (d *Dataset) IsScalar() bool      { return d.space.IsScalar() }

func (d *Dataset) DtypeClass() message.DatatypeClass { return d.dt.Class }

// IsString reports fixed-length and variable-length strings alike.
func (d *Dataset) IsString() bool { return d.dt.IsString() }

// GoType returns the Go element type Read produces by default.
func (d *Dataset) GoType() (reflect.Type, error) { return dtype.GoType(d.dt) }

// Read decodes every element into dest, a pointer to a slice.
func (d *Dataset) Read(dest interface{}) error {
	if d.layout == nil {
		return fmt.Errorf("dataset %s was created in this session and cannot be read", d.path)
	}
	raw, err := d.layout.Read()
	if err != nil {
		return fmt.Errorf("reading %s: %w", d.path, err)
	}
	return dtype.Convert(d.dt, raw, d.space.NumElements(), dest, d.file.reader)
}

func readSlice[T any](d *Dataset) ([]T, error) {
	var out []T
	err := d.Read(&out)
	return out, err
}

func (d *Dataset) ReadFloat64() ([]float64, error) { return readSlice[float64](d) }
func (d *Dataset) ReadInt64() ([]int64, error)     { return readSlice[int64](d) }
func (d *Dataset) ReadUint8() ([]uint8, error)     { return readSlice[uint8](d) }
func (d *Dataset) ReadUint16() ([]uint16, error)   { return readSlice[uint16](d) }
func (d *Dataset) ReadUint32() ([]uint32, error)   { return readSlice[uint32](d) }
func (d *Dataset) ReadUint64() ([]uint64, error)   { return readSlice[uint64](d) }
func (d *Dataset) ReadString() ([]string, error)   { return readSlice[string](d) }

// Attrs returns the attribute names in header order.
func (d *Dataset) Attrs() []string { return attrNames(d.attrs) }

// Attr returns the named attribute, or nil.
func (d *Dataset) Attr(name string) *Attribute { return findAttr(d.attrs, name, d.file.reader) }
