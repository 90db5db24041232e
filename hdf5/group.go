package hdf5

import (
	"fmt"
	"path"

	"github.com/baltrad/vpconvert/internal/binary"
	"github.com/baltrad/vpconvert/internal/btree"
	"github.com/baltrad/vpconvert/internal/heap"
	"github.com/baltrad/vpconvert/internal/message"
	"github.com/baltrad/vpconvert/internal/object"
)

// Group is an HDF5 group.
type Group struct {
	file   *File
	path   string
	header *object.Header
	addr   uint64

	// In a created file every change rewrites the header from these.
	links []*message.Link
	attrs []*message.Attribute
}

// member is one entry of a link table. Soft links carry their absolute
// target instead of an address.
type member struct {
	name   string
	addr   uint64
	target string
}

// Name returns the last component of the group path.
func (g *Group) Name() string {
	if g.path == "/" {
		return "/"
	}
	return path.Base(g.path)
}

func (g *Group) Path() string { return g.path }

// OpenGroup opens a subgroup by relative path.
func (g *Group) OpenGroup(relativePath string) (*Group, error) {
	obj, err := g.open(relativePath)
	if err != nil {
		return nil, err
	}
	if group, ok := obj.(*Group); ok {
		return group, nil
	}
	return nil, ErrNotGroup
}

// OpenDataset opens a dataset by relative path.
func (g *Group) OpenDataset(relativePath string) (*Dataset, error) {
	obj, err := g.open(relativePath)
	if err != nil {
		return nil, err
	}
	if ds, ok := obj.(*Dataset); ok {
		return ds, nil
	}
	return nil, ErrNotDataset
}

// open walks relativePath and returns the *Group or *Dataset it names.
func (g *Group) open(relativePath string) (interface{}, error) {
	var obj interface{} = g
	for _, name := range splitPath(relativePath) {
		cur, ok := obj.(*Group)
		if !ok {
			return nil, fmt.Errorf("%s: %w", obj.(*Dataset).Path(), ErrNotGroup)
		}
		next, err := cur.child(name, 0)
		if err != nil {
			return nil, fmt.Errorf("finding %q: %w", name, err)
		}
		obj = next
	}
	return obj, nil
}

// child opens the member called name. depth counts the soft links
// followed so far.
func (g *Group) child(name string, depth int) (interface{}, error) {
	if g.file.writable() {
		if c, ok := g.file.groups[childPath(g.path, name)]; ok {
			return c, nil
		}
		return nil, ErrNotFound
	}

	members, err := g.members()
	if err != nil {
		return nil, err
	}
	for _, m := range members {
		switch {
		case m.name != name:
			continue
		case m.target == "":
			return g.file.openAt(m.addr, childPath(g.path, name))
		case depth >= MaxLinkDepth:
			return nil, ErrLinkDepth
		default:
			return g.file.resolve(m.target, depth+1)
		}
	}
	return nil, ErrNotFound
}

// members lists the link table. New-style groups hold link messages;
// old-style groups keep a symbol table B-tree whose root group may only be
// known from the superblock.
func (g *Group) members() ([]member, error) {
	if g.file.writable() || len(g.links) > 0 || g.header == nil {
		return linkMembers(g.links)
	}

	st := g.header.SymbolTable()
	if sb := g.file.sb; st == nil && g.path == "/" && sb.RootGroupBTreeAddress != 0 {
		st = &message.SymbolTable{BTreeAddress: sb.RootGroupBTreeAddress, LocalHeapAddress: sb.RootGroupLocalHeapAddress}
	}
	if st == nil {
		return nil, nil
	}

	names, err := heap.ReadLocal(g.file.reader, st.LocalHeapAddress)
	if err != nil {
		return nil, fmt.Errorf("reading local heap: %w", err)
	}
	entries, err := btree.ReadGroupEntries(g.file.reader, st.BTreeAddress, names)
	if err != nil {
		return nil, fmt.Errorf("reading group B-tree: %w", err)
	}
	out := make([]member, len(entries))
	for i, e := range entries {
		out[i] = member{name: e.Name, addr: e.ObjectAddress, target: e.SoftLinkValue}
	}
	return out, nil
}

func linkMembers(links []*message.Link) ([]member, error) {
	out := make([]member, 0, len(links))
	for _, l := range links {
		switch {
		case l.IsHard():
			out = append(out, member{name: l.Name, addr: l.ObjectAddress})
		case l.IsSoft():
			out = append(out, member{name: l.Name, target: l.SoftLinkValue})
		default:
			return nil, fmt.Errorf("%w: link %q of type %d", ErrUnsupported, l.Name, l.LinkType)
		}
	}
	return out, nil
}

// Members returns the member names in link order.
func (g *Group) Members() ([]string, error) {
	members, err := g.members()
	if err != nil {
		return nil, err
	}
	names := make([]string, len(members))
	for i, m := range members {
		names[i] = m.name
	}
	return names, nil
}

// Attrs returns the attribute names in header order.
func (g *Group) Attrs() []string { return attrNames(g.attrs) }

// Attr returns the named attribute, or nil.
func (g *Group) Attr(name string) *Attribute { return findAttr(g.attrs, name, g.file.reader) }

func attrNames(attrs []*message.Attribute) []string {
	var names []string
	for _, a := range attrs {
		names = append(names, a.Name)
	}
	return names
}

// findAttr wraps the named attribute message. r resolves variable-length
// strings and is nil for created files.
func findAttr(attrs []*message.Attribute, name string, r *binary.Reader) *Attribute {
	for _, a := range attrs {
		if a.Name == name {
			return &Attribute{msg: a, reader: r}
		}
	}
	return nil
}
