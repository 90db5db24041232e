package odim

import "fmt"

// Location identifies the /dataset{Dataset}/data{Data} group holding a
// quantity. Both indices start at 1.
type Location struct {
	Dataset int
	Data    int
}

// Group returns the path of the data group.
func (l Location) Group() string {
	return fmt.Sprintf("/dataset%d/data%d", l.Dataset, l.Data)
}

// DataPath returns the path of the dataset holding the quantity's array.
func (l Location) DataPath() string {
	return l.Group() + "/data"
}

// WhatPath returns the path of attribute name in the data group's what
// group.
func (l Location) WhatPath(name string) string {
	return l.Group() + "/what/" + name
}

// Locator finds quantities in a reader tree.
type Locator struct {
	tree  *Tree
	index Index
}

// NewLocator returns a locator for tree.
func NewLocator(tree *Tree) *Locator {
	return &Locator{tree: tree, index: tree.Index()}
}

// Locate returns the first data group whose what/quantity equals quantity.
//
// Dataset groups are tried from /dataset1 upwards and the scan ends at the
// first missing one, even if higher numbers exist. Within a dataset group,
// data groups are tried from data1 upwards until the first missing one.
// A quantity attribute that cannot be read ends the scan of that dataset
// group; a non-string quantity never matches. Every call rescans the tree.
func (l *Locator) Locate(quantity string) (Location, bool) {
	for d := 1; l.index.Has(fmt.Sprintf("/dataset%d", d)); d++ {
		if i, ok := l.scanDataset(d, quantity); ok {
			return Location{Dataset: d, Data: i}, true
		}
	}
	return Location{}, false
}

func (l *Locator) scanDataset(d int, quantity string) (int, bool) {
	for i := 1; ; i++ {
		loc := Location{Dataset: d, Data: i}
		if !l.index.Has(loc.Group()) {
			return 0, false
		}
		qpath := loc.WhatPath("quantity")
		if !l.index.Has(qpath) {
			continue
		}
		v, err := l.tree.Attribute(qpath)
		if err != nil {
			return 0, false
		}
		if s, ok := v.AsString(); ok && s == quantity {
			return i, true
		}
	}
}
