package odim

import (
	"fmt"
	"path"
	"strings"
)

// NodeKind identifies what a tree node holds.
type NodeKind int

const (
	GroupNode NodeKind = iota + 1
	AttributeNode
	DatasetNode
)

func (k NodeKind) String() string {
	switch k {
	case GroupNode:
		return "group"
	case AttributeNode:
		return "attribute"
	case DatasetNode:
		return "dataset"
	default:
		return fmt.Sprintf("NodeKind(%d)", int(k))
	}
}

// Node is a group, an attribute or a dataset.
type Node struct {
	Path  string
	Kind  NodeKind
	Value Value // AttributeNode
	Array Array // DatasetNode

	// readErr is set for attributes that exist in the source file but whose
	// value cannot be represented.
	readErr error
}

// Name returns the last path component.
func (n *Node) Name() string {
	return path.Base(n.Path)
}

// Tree is an in-memory container tree keyed by absolute path. The root
// group "/" always exists. Nodes keep their insertion order.
type Tree struct {
	nodes map[string]*Node
	order []string
}

// NewTree returns a tree holding only the root group.
func NewTree() *Tree {
	t := &Tree{nodes: make(map[string]*Node)}
	t.nodes["/"] = &Node{Path: "/", Kind: GroupNode}
	t.order = append(t.order, "/")
	return t
}

// AddGroup adds a group at p.
func (t *Tree) AddGroup(p string) error {
	return t.add(&Node{Path: p, Kind: GroupNode})
}

// AddAttribute adds an attribute at p. The parent may be a group or a
// dataset.
func (t *Tree) AddAttribute(p string, v Value) error {
	if v.Kind() == InvalidValue {
		return fmt.Errorf("attribute %s: %w", p, ErrUnsupportedAttributeValueType)
	}
	return t.add(&Node{Path: p, Kind: AttributeNode, Value: v})
}

// AddDataset adds a dataset at p.
func (t *Tree) AddDataset(p string, a Array) error {
	if err := a.validate(); err != nil {
		return fmt.Errorf("dataset %s: %w", p, err)
	}
	return t.add(&Node{Path: p, Kind: DatasetNode, Array: a})
}

// addUnreadable records an attribute that exists but cannot be read.
func (t *Tree) addUnreadable(p string, cause error) error {
	return t.add(&Node{Path: p, Kind: AttributeNode, readErr: cause})
}

func (t *Tree) add(n *Node) error {
	if !validPath(n.Path) || n.Path == "/" {
		return fmt.Errorf("%w: %q", ErrInvalidPath, n.Path)
	}
	if _, ok := t.nodes[n.Path]; ok {
		return fmt.Errorf("%w: %s", ErrPathExists, n.Path)
	}

	parent, ok := t.nodes[path.Dir(n.Path)]
	if !ok {
		return fmt.Errorf("%w: %s", ErrParentMissing, n.Path)
	}
	switch {
	case parent.Kind == GroupNode:
	case parent.Kind == DatasetNode && n.Kind == AttributeNode:
	default:
		return fmt.Errorf("%w: %s is a %s", ErrParentMissing, parent.Path, parent.Kind)
	}

	t.nodes[n.Path] = n
	t.order = append(t.order, n.Path)
	return nil
}

// Node returns the node at p.
func (t *Tree) Node(p string) (*Node, bool) {
	n, ok := t.nodes[p]
	return n, ok
}

// Attribute returns the value of the attribute at p.
func (t *Tree) Attribute(p string) (Value, error) {
	n, ok := t.nodes[p]
	if !ok || n.Kind != AttributeNode {
		return Value{}, fmt.Errorf("%w: attribute %s", ErrNotFound, p)
	}
	if n.readErr != nil {
		return Value{}, fmt.Errorf("attribute %s: %w", p, n.readErr)
	}
	return n.Value, nil
}

// Dataset returns the array of the dataset at p.
func (t *Tree) Dataset(p string) (Array, error) {
	n, ok := t.nodes[p]
	if !ok || n.Kind != DatasetNode {
		return Array{}, fmt.Errorf("%w: dataset %s", ErrNotFound, p)
	}
	return n.Array, nil
}

// Paths returns all node paths in insertion order, starting with "/".
func (t *Tree) Paths() []string {
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}

// Len returns the number of nodes including the root group.
func (t *Tree) Len() int {
	return len(t.order)
}

// Index returns the set of paths present in the tree.
func (t *Tree) Index() Index {
	ix := make(Index, len(t.nodes))
	for p := range t.nodes {
		ix[p] = struct{}{}
	}
	return ix
}

func validPath(p string) bool {
	if p == "/" {
		return true
	}
	if !strings.HasPrefix(p, "/") || strings.HasSuffix(p, "/") {
		return false
	}
	for _, part := range strings.Split(p[1:], "/") {
		if part == "" || part == "." || part == ".." {
			return false
		}
	}
	return true
}
