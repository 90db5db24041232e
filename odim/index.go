package odim

// Index is the set of paths present in a tree.
type Index map[string]struct{}

// Has reports whether p is present.
func (ix Index) Has(p string) bool {
	_, ok := ix[p]
	return ok
}
