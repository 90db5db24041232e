package odim

import (
	"fmt"
	"strings"
)

// Object types
const (
	ObjectVerticalProfile = "VP"
)

// Fixed values of the 2.1 layout.
const (
	Conventions = "ODIM_H5/V2_1"
	Version     = "H5rad 2.1"
)

// DefaultQuantities is used when an empty quantity list is requested.
var DefaultQuantities = []string{"ff", "ff_dev", "dd", "NV", "DBZH", "DBZH_dev", "NZ"}

// Metadata copied unchanged when present in the source.
var (
	whatAttrs     = []string{"date", "object", "time"}
	whereAttrs    = []string{"height", "interval", "lat", "levels", "lon", "maxheight", "minheight"}
	datasetAttrs  = []string{"product", "enddate", "endtime", "startdate", "starttime"}
	howAttrs      = []string{"angles", "maxrange", "minrange", "task"}
	dataWhatAttrs = []string{"gain", "offset", "nodata", "undetect"}
)

// searchAliases maps requested quantity names onto the names used by the
// 2.2 files.
var searchAliases = map[string]string{
	"NV": "n",
	"NZ": "nz",
}

// quantityOverrides replaces the source what/quantity value.
var quantityOverrides = map[string]string{
	"DBZH":     "dbz",
	"DBZH_dev": "dbz_dev",
}

// Result pairs a converted tree with the file name it should be written to.
type Result struct {
	Tree     *Tree
	Filename string
}

// Converter converts a reader tree to the 2.1 layout.
type Converter struct {
	src     *Tree
	locator *Locator
	opts    *options
	results []Result
}

// NewConverter returns a converter reading from src. src must not be
// modified while the converter is in use.
func NewConverter(src *Tree, opts ...Option) *Converter {
	return &Converter{
		src:     src,
		locator: NewLocator(src),
		opts:    newOptions(opts),
	}
}

// Object returns the source /what/object value.
func (c *Converter) Object() (string, error) {
	v, err := c.src.Attribute("/what/object")
	if err != nil {
		return "", err
	}
	s, ok := v.AsString()
	if !ok {
		return "", fmt.Errorf("/what/object is %s, not a string", v.Kind())
	}
	return s, nil
}

// IsSupported reports whether the source can be converted.
func (c *Converter) IsSupported() bool {
	obj, err := c.Object()
	return err == nil && obj == ObjectVerticalProfile
}

// Results returns every result produced so far.
func (c *Converter) Results() []Result {
	out := make([]Result, len(c.results))
	copy(out, c.results)
	return out
}

// Convert builds the 2.1 tree holding the comma-separated quantities in
// request order. Nothing is returned or recorded on failure.
func (c *Converter) Convert(quantities, filename string) (*Result, error) {
	obj, err := c.Object()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedObjectType, err)
	}
	if obj != ObjectVerticalProfile {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedObjectType, obj)
	}

	names := ParseQuantities(quantities)
	c.opts.logger.Debug("converting vertical profile",
		"quantities", strings.Join(names, ","), "filename", filename)

	tree, err := c.convertVP(names)
	if err != nil {
		return nil, err
	}

	res := Result{Tree: tree, Filename: filename}
	c.results = append(c.results, res)
	return &res, nil
}

func (c *Converter) convertVP(quantities []string) (*Tree, error) {
	b := &builder{src: c.src, dst: NewTree()}

	b.group("/how")
	b.group("/what")
	b.group("/where")
	b.group("/dataset1")
	b.group("/dataset1/what")
	for i := range quantities {
		slot := Location{Dataset: 1, Data: i + 1}
		b.group(slot.Group())
		b.group(slot.Group() + "/what")
	}

	b.set("/Conventions", String(Conventions))

	b.copyAll("/what", whatAttrs)
	b.set("/what/version", String(Version))
	b.copy("/what/source", "/what/source")
	b.copyAll("/where", whereAttrs)
	b.copyAll("/dataset1/what", datasetAttrs)
	b.copyAll("/how", howAttrs)
	if b.err != nil {
		return nil, b.err
	}

	for i, q := range quantities {
		slot := Location{Dataset: 1, Data: i + 1}
		if err := c.convertQuantity(b, q, slot); err != nil {
			return nil, err
		}
	}
	return b.dst, nil
}

func (c *Converter) convertQuantity(b *builder, quantity string, slot Location) error {
	key := SearchName(quantity)

	loc, ok := c.locator.Locate(key)
	if !ok {
		return fmt.Errorf("%w: %s (searched as %q)", ErrQuantityNotFound, quantity, key)
	}
	c.opts.logger.Debug("located quantity",
		"quantity", quantity, "source", loc.Group(), "slot", slot.Group())

	arr, err := c.src.Dataset(loc.DataPath())
	if err != nil {
		return fmt.Errorf("quantity %s: %w", quantity, err)
	}
	tag, err := TranslateType(arr.ElementType)
	if err != nil {
		return fmt.Errorf("quantity %s: %w", quantity, err)
	}
	out := arr.Clone()
	out.ElementType = tag
	if err := b.dst.AddDataset(slot.DataPath(), out); err != nil {
		return err
	}

	for _, name := range dataWhatAttrs {
		b.copy(loc.WhatPath(name), slot.WhatPath(name))
	}
	if override, ok := quantityOverrides[quantity]; ok {
		b.set(slot.WhatPath("quantity"), String(override))
	} else {
		b.copy(loc.WhatPath("quantity"), slot.WhatPath("quantity"))
	}
	return b.err
}

// SearchName returns the what/quantity value a requested quantity is
// looked up by.
func SearchName(quantity string) string {
	if alias, ok := searchAliases[quantity]; ok {
		return alias
	}
	return quantity
}

// ParseQuantities splits a comma-separated quantity list. Tokens are
// trimmed and empty ones dropped; an empty list yields DefaultQuantities.
func ParseQuantities(list string) []string {
	var out []string
	for _, tok := range strings.Split(list, ",") {
		if tok = strings.TrimSpace(tok); tok != "" {
			out = append(out, tok)
		}
	}
	if len(out) == 0 {
		return append([]string(nil), DefaultQuantities...)
	}
	return out
}

// builder writes into the destination tree and keeps the first error.
type builder struct {
	src *Tree
	dst *Tree
	err error
}

func (b *builder) group(p string) {
	if b.err == nil {
		b.err = b.dst.AddGroup(p)
	}
}

func (b *builder) set(p string, v Value) {
	if b.err == nil {
		b.err = b.dst.AddAttribute(p, v)
	}
}

// copy copies the attribute at from to to when present in the source.
func (b *builder) copy(from, to string) {
	if b.err != nil {
		return
	}
	if _, ok := b.src.Node(from); !ok {
		return
	}
	v, err := b.src.Attribute(from)
	if err != nil {
		b.err = err
		return
	}
	b.err = b.dst.AddAttribute(to, v)
}

func (b *builder) copyAll(group string, names []string) {
	for _, name := range names {
		p := group + "/" + name
		b.copy(p, p)
	}
}
