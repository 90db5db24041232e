package odim

import (
	"errors"
	"fmt"
	"os"
	"path"

	"github.com/baltrad/vpconvert/hdf5"
)

// Store writes the tree to a new HDF5 file at filename, replacing any
// existing file. Datasets are deflate-compressed at the configured level.
// A partially written file is removed on failure.
func Store(t *Tree, filename string, opts ...Option) (err error) {
	o := newOptions(opts)

	f, err := hdf5.Create(filename)
	if err != nil {
		return fmt.Errorf("creating %s: %w", filename, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("closing %s: %w", filename, cerr)
		}
		if err != nil {
			os.Remove(filename)
		}
	}()

	s := &storer{
		tree:      t,
		opts:      o,
		groups:    map[string]*hdf5.Group{"/": f.Root()},
		dsetAttrs: make(map[string][]*Node),
	}
	for _, p := range t.order {
		n := t.nodes[p]
		if n.Kind != AttributeNode {
			continue
		}
		if parent := t.nodes[path.Dir(p)]; parent.Kind == DatasetNode {
			s.dsetAttrs[parent.Path] = append(s.dsetAttrs[parent.Path], n)
		}
	}

	for _, p := range t.order {
		if p == "/" {
			continue
		}
		if err := s.node(t.nodes[p]); err != nil {
			return err
		}
	}

	st := f.AllocStats()
	o.logger.Debug("stored file", "path", filename, "nodes", t.Len(),
		"allocations", st.Allocations, "bytes", st.Bytes)
	return nil
}

type storer struct {
	tree      *Tree
	opts      *options
	groups    map[string]*hdf5.Group
	dsetAttrs map[string][]*Node
}

func (s *storer) node(n *Node) error {
	dir, name := path.Split(n.Path)
	parentPath := path.Clean(dir)

	switch n.Kind {
	case GroupNode:
		parent, err := s.parent(parentPath, n.Path)
		if err != nil {
			return err
		}
		g, err := parent.CreateGroup(name)
		if err != nil {
			return fmt.Errorf("group %s: %w", n.Path, err)
		}
		s.groups[n.Path] = g

	case DatasetNode:
		parent, err := s.parent(parentPath, n.Path)
		if err != nil {
			return err
		}
		return s.dataset(parent, name, n)

	case AttributeNode:
		if n.readErr != nil {
			return fmt.Errorf("attribute %s: %w", n.Path, n.readErr)
		}
		// Dataset attributes are written with the dataset.
		if s.tree.nodes[parentPath].Kind == DatasetNode {
			return nil
		}
		parent, err := s.parent(parentPath, n.Path)
		if err != nil {
			return err
		}
		if err := parent.SetAttr(name, n.Value.Interface()); err != nil {
			return fmt.Errorf("attribute %s: %w", n.Path, err)
		}
	}
	return nil
}

func (s *storer) parent(p, child string) (*hdf5.Group, error) {
	g, ok := s.groups[p]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrParentMissing, child)
	}
	return g, nil
}

func (s *storer) dataset(parent *hdf5.Group, name string, n *Node) error {
	a := n.Array
	if err := checkStorage(a); err != nil {
		return fmt.Errorf("dataset %s: %w", n.Path, err)
	}

	shape := a.Shape
	if len(shape) == 0 {
		shape = []uint64{1}
	}
	opts := []hdf5.DatasetOption{hdf5.WithShape(shape...)}
	if a.NumElements() > 0 {
		opts = append(opts, hdf5.WithCompression(s.opts.compression))
	}
	for _, attr := range s.dsetAttrs[n.Path] {
		if attr.readErr != nil {
			return fmt.Errorf("attribute %s: %w", attr.Path, attr.readErr)
		}
		opts = append(opts, hdf5.WithAttribute(attr.Name(), attr.Value.Interface()))
	}

	if _, err := parent.CreateDataset(name, a.Data, opts...); err != nil {
		if errors.Is(err, hdf5.ErrExists) {
			return fmt.Errorf("%w: %s", ErrPathExists, n.Path)
		}
		return fmt.Errorf("dataset %s: %w", n.Path, err)
	}
	return nil
}
