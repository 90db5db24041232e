package hdf5

import (
	"fmt"
	"os"
	"strings"

	"github.com/baltrad/vpconvert/internal/alloc"
	"github.com/baltrad/vpconvert/internal/binary"
	"github.com/baltrad/vpconvert/internal/object"
	"github.com/baltrad/vpconvert/internal/superblock"
)

// File is an HDF5 file opened with Open or created with Create. A file is
// either read-only or write-only; created files are read back with Open
// after Close or Flush.
type File struct {
	path   string
	file   *os.File
	sb     *superblock.Superblock
	root   *Group
	closed bool

	reader *binary.Reader

	writer    *binary.Writer
	allocator *alloc.Allocator
	// groups holds the groups of a created file by path, so that moving a
	// child header can update the link its parent holds.
	groups map[string]*Group
}

// Open opens an HDF5 file for reading.
func Open(path string) (*File, error) {
	osf, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	sb, err := superblock.Read(osf)
	if err != nil {
		osf.Close()
		return nil, fmt.Errorf("reading superblock: %w", err)
	}

	f := &File{path: path, file: osf, sb: sb, reader: binary.NewReader(osf, sb.ReaderConfig())}
	obj, err := f.openAt(sb.RootGroupAddress, "/")
	if err == nil {
		var ok bool
		if f.root, ok = obj.(*Group); !ok {
			err = ErrNotGroup
		}
	}
	if err != nil {
		osf.Close()
		return nil, fmt.Errorf("opening root group: %w", err)
	}
	return f, nil
}

// IsHDF5 reports whether the file at path starts with an HDF5 signature.
// Unreadable files are reported as false.
func IsHDF5(path string) bool {
	osf, err := os.Open(path)
	if err != nil {
		return false
	}
	defer osf.Close()
	return superblock.HasSignature(osf)
}

// Close flushes a created file and closes it. Closing twice is a no-op.
func (f *File) Close() error {
	if f.closed {
		return nil
	}
	f.closed = true
	if err := f.Flush(); err != nil {
		f.file.Close()
		return err
	}
	return f.file.Close()
}

func (f *File) Root() *Group { return f.root }

func (f *File) Path() string { return f.path }

// Version returns the superblock version.
func (f *File) Version() int { return int(f.sb.Version) }

func (f *File) writable() bool { return f.writer != nil }

// OpenGroup opens a group by absolute path.
func (f *File) OpenGroup(path string) (*Group, error) {
	if f.closed {
		return nil, ErrClosed
	}
	return f.root.OpenGroup(path)
}

// OpenDataset opens a dataset by absolute path.
func (f *File) OpenDataset(path string) (*Dataset, error) {
	if f.closed {
		return nil, ErrClosed
	}
	return f.root.OpenDataset(path)
}

// openAt decodes the object header at address. Headers with a dataspace
// are datasets; everything else is a group.
func (f *File) openAt(address uint64, path string) (interface{}, error) {
	h, err := object.Read(f.reader, address)
	if err != nil {
		return nil, fmt.Errorf("reading object header at %d: %w", address, err)
	}
	if h.Dataspace() != nil {
		return newDataset(f, path, h)
	}
	return &Group{file: f, path: path, header: h, addr: address, links: h.Links(), attrs: h.Attributes()}, nil
}

// resolve follows an absolute soft link target from the root group.
func (f *File) resolve(target string, depth int) (interface{}, error) {
	var obj interface{} = f.root
	for _, name := range splitPath(target) {
		g, ok := obj.(*Group)
		if !ok {
			return nil, fmt.Errorf("soft link %s: %w", target, ErrNotGroup)
		}
		next, err := g.child(name, depth)
		if err != nil {
			return nil, fmt.Errorf("soft link %s: %w", target, err)
		}
		obj = next
	}
	return obj, nil
}

func splitPath(p string) []string {
	p = strings.Trim(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}

// GetAttr returns the attribute addressed as "/group/object@name".
func (f *File) GetAttr(path string) (*Attribute, error) {
	if f.closed {
		return nil, ErrClosed
	}
	objectPath, name, err := ParseAttrPath(path)
	if err != nil {
		return nil, err
	}
	obj, err := f.root.open(objectPath)
	if err != nil {
		return nil, fmt.Errorf("opening object %s: %w", objectPath, err)
	}

	var attr *Attribute
	switch o := obj.(type) {
	case *Group:
		attr = o.Attr(name)
	case *Dataset:
		attr = o.Attr(name)
	}
	if attr == nil {
		return nil, fmt.Errorf("%w: attribute %s", ErrNotFound, path)
	}
	return attr, nil
}

// ReadAttr returns the decoded value of the attribute at path, for
// example "/what@object".
func (f *File) ReadAttr(path string) (interface{}, error) {
	attr, err := f.GetAttr(path)
	if err != nil {
		return nil, err
	}
	return attr.Value()
}
