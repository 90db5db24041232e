package hdf5

// WalkFunc is called for every object visited by Walk. obj is a *Group or a
// *Dataset; when a member cannot be opened obj is nil and err is set.
// Returning a non-nil error stops the walk and is returned by Walk.
type WalkFunc func(path string, obj interface{}, err error) error

// Walk visits g and everything below it, depth first, in member order.
// Groups are reported before their children. Groups reached through a soft
// link are reported but not descended into.
func Walk(g *Group, fn WalkFunc) error {
	if err := fn(g.Path(), g, nil); err != nil {
		return err
	}

	members, err := g.members()
	if err != nil {
		return err
	}
	for _, m := range members {
		p := childPath(g.Path(), m.name)
		obj, err := g.child(m.name, 0)
		if child, ok := obj.(*Group); ok && err == nil && child.Path() == p {
			if err := Walk(child, fn); err != nil {
				return err
			}
			continue
		}
		if err := fn(p, obj, err); err != nil {
			return err
		}
	}
	return nil
}
