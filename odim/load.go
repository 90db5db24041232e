package odim

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/baltrad/vpconvert/hdf5"
	"github.com/baltrad/vpconvert/internal/message"
)

// Load reads the HDF5 file at path into a tree. Groups, datasets and their
// attributes are added in the order the file lists them. Attributes whose
// values cannot be held by a Value are recorded as unreadable; reading
// them from the tree fails.
func Load(path string, opts ...Option) (*Tree, error) {
	o := newOptions(opts)
	if !hdf5.IsHDF5(path) {
		return nil, fmt.Errorf("%w: %s", ErrNotAContainer, path)
	}

	f, err := hdf5.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrNotAContainer, path, err)
	}
	defer f.Close()

	l := &loader{tree: NewTree(), opts: o}
	err = hdf5.Walk(f.Root(), func(p string, obj interface{}, err error) error {
		if err != nil {
			return fmt.Errorf("opening %s: %w", p, err)
		}
		switch v := obj.(type) {
		case *hdf5.Group:
			return l.group(p, v)
		case *hdf5.Dataset:
			return l.dataset(p, v)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}

	o.logger.Debug("loaded file", "path", path, "nodes", l.tree.Len())
	return l.tree, nil
}

type attrHolder interface {
	Attrs() []string
	Attr(name string) *hdf5.Attribute
}

type loader struct {
	tree *Tree
	opts *options
}

func (l *loader) group(p string, g *hdf5.Group) error {
	if p != "/" {
		if err := l.tree.AddGroup(p); err != nil {
			return err
		}
	}
	return l.attrs(p, g)
}

func (l *loader) dataset(p string, d *hdf5.Dataset) error {
	arr, err := readArray(d)
	if err != nil {
		return fmt.Errorf("reading %s: %w", p, err)
	}
	if err := l.tree.AddDataset(p, arr); err != nil {
		return err
	}
	return l.attrs(p, d)
}

func (l *loader) attrs(owner string, h attrHolder) error {
	for _, name := range h.Attrs() {
		p := joinPath(owner, name)
		v, err := attrValue(h.Attr(name))
		if err != nil {
			l.opts.logger.Debug("unreadable attribute", "path", p, "error", err)
			if err := l.tree.addUnreadable(p, err); err != nil {
				return err
			}
			continue
		}
		if err := l.tree.AddAttribute(p, v); err != nil {
			return err
		}
	}
	return nil
}

func attrValue(a *hdf5.Attribute) (Value, error) {
	if a == nil {
		return Value{}, errors.New("attribute vanished")
	}
	raw, err := a.Value()
	if err != nil {
		return Value{}, err
	}
	// Single-element arrays are treated as scalars.
	if rv := reflect.ValueOf(raw); rv.Kind() == reflect.Slice {
		if rv.Len() != 1 {
			return Value{}, fmt.Errorf("%w: %d-element %T", ErrUnsupportedAttributeValueType, rv.Len(), raw)
		}
		raw = rv.Index(0).Interface()
	}
	return NewValue(raw)
}

// readArray reads a dataset payload. Datasets of classes without a Go
// element type are kept with their class name as tag and no data.
func readArray(d *hdf5.Dataset) (Array, error) {
	shape := d.Shape()
	if d.IsString() {
		data, err := d.ReadString()
		if err != nil {
			return Array{}, err
		}
		return Array{Shape: shape, ElementType: TypeString, Data: data}, nil
	}

	elem, err := d.GoType()
	if err != nil {
		return Array{Shape: shape, ElementType: className(d.DtypeClass())}, nil
	}
	slice := reflect.New(reflect.SliceOf(elem))
	tag, ok := tagForType(slice.Elem().Type())
	if !ok {
		return Array{Shape: shape, ElementType: className(d.DtypeClass())}, nil
	}
	if err := d.Read(slice.Interface()); err != nil {
		return Array{}, err
	}
	return Array{Shape: shape, ElementType: tag, Data: slice.Elem().Interface()}, nil
}

var classNames = map[message.DatatypeClass]string{
	message.ClassFixedPoint: "integer",
	message.ClassFloatPoint: "float",
	message.ClassTime:       "time",
	message.ClassString:     "string",
	message.ClassBitfield:   "bitfield",
	message.ClassOpaque:     "opaque",
	message.ClassCompound:   "compound",
	message.ClassReference:  "reference",
	message.ClassEnum:       "enum",
	message.ClassVarLen:     "vlen",
	message.ClassArray:      "array",
}

func className(c message.DatatypeClass) string {
	if name, ok := classNames[c]; ok {
		return name
	}
	return fmt.Sprintf("class%d", int(c))
}

func joinPath(parent, name string) string {
	if parent == "/" {
		return "/" + name
	}
	return parent + "/" + name
}
