package hdf5

import (
	"errors"
	"fmt"
	"path"

	"github.com/baltrad/vpconvert/internal/message"
	"github.com/baltrad/vpconvert/internal/object"
)

var errReadOnly = errors.New("file is not writable")

// CreateGroup creates an empty subgroup called name.
func (g *Group) CreateGroup(name string) (*Group, error) {
	if err := g.checkName(name); err != nil {
		return nil, err
	}
	addr, err := g.file.writeHeader(object.GroupMessages(nil, nil), 0)
	if err != nil {
		return nil, fmt.Errorf("writing group header: %w", err)
	}
	if err := g.addLink(message.NewHardLink(name, addr)); err != nil {
		return nil, err
	}

	child := &Group{file: g.file, path: childPath(g.path, name), addr: addr}
	g.file.groups[child.path] = child
	return child, nil
}

// CreateSoftLink adds a member called name that resolves to the absolute
// path target when the file is read.
func (g *Group) CreateSoftLink(name, target string) error {
	if err := g.checkName(name); err != nil {
		return err
	}
	if !path.IsAbs(target) {
		return fmt.Errorf("%w: soft link target %q is not absolute", ErrInvalidPath, target)
	}
	return g.addLink(message.NewSoftLink(name, target))
}

// SetAttr sets an attribute on the group, replacing one of the same name.
// value is a scalar or slice of integers, floats or strings.
func (g *Group) SetAttr(name string, value interface{}) error {
	if !g.file.writable() {
		return errReadOnly
	}
	if name == "" {
		return fmt.Errorf("attribute name cannot be empty")
	}
	attr, err := newAttributeMessage(name, value)
	if err != nil {
		return fmt.Errorf("attribute %q: %w", name, err)
	}

	for i, a := range g.attrs {
		if a.Name == name {
			g.attrs[i] = attr
			return g.rewriteHeader()
		}
	}
	g.attrs = append(g.attrs, attr)
	return g.rewriteHeader()
}

func (g *Group) checkName(name string) error {
	switch {
	case !g.file.writable():
		return errReadOnly
	case name == "" || name == "." || name == "..":
		return fmt.Errorf("%w: member name %q", ErrInvalidPath, name)
	case path.Base(name) != name:
		return fmt.Errorf("%w: member name %q contains a slash", ErrInvalidPath, name)
	}
	return nil
}

func (g *Group) addLink(link *message.Link) error {
	for _, l := range g.links {
		if l.Name == link.Name {
			return fmt.Errorf("%w: %s", ErrExists, childPath(g.path, link.Name))
		}
	}
	g.links = append(g.links, link)
	return g.rewriteHeader()
}

// rewriteHeader writes the group header anew and points the parent, or
// the superblock for the root group, at the new copy. The old copy is
// left in place as unused space.
func (g *Group) rewriteHeader() error {
	addr, err := g.file.writeHeader(object.GroupMessages(g.links, g.attrs), object.MinGroupChunkSize)
	if err != nil {
		return fmt.Errorf("rewriting header of %s: %w", g.path, err)
	}
	g.addr = addr
	if g.path == "/" {
		g.file.sb.RootGroupAddress = addr
		return nil
	}

	parent, ok := g.file.groups[path.Dir(g.path)]
	if !ok {
		return fmt.Errorf("parent of %s is not open for writing", g.path)
	}
	name := path.Base(g.path)
	for _, l := range parent.links {
		if l.Name == name {
			l.ObjectAddress = addr
		}
	}
	return parent.rewriteHeader()
}
