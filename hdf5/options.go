package hdf5

// DatasetOption configures CreateDataset.
type DatasetOption func(*datasetOptions)

type datasetOptions struct {
	shape []uint64
	level int
	attrs []attrDef
}

type attrDef struct {
	name  string
	value interface{}
}

// WithShape gives a flat slice a multi-dimensional shape. The product of
// dims must equal the slice length.
func WithShape(dims ...uint64) DatasetOption {
	return func(o *datasetOptions) { o.shape = dims }
}

// WithCompression deflates the dataset at level 1 to 9; 0 stores it
// uncompressed and other levels are ignored. Compressed datasets are
// stored as one chunk.
func WithCompression(level int) DatasetOption {
	return func(o *datasetOptions) {
		if level >= 0 && level <= 9 {
			o.level = level
		}
	}
}

// WithAttribute attaches an attribute; see Group.SetAttr for the accepted
// values. It may be given several times.
func WithAttribute(name string, value interface{}) DatasetOption {
	return func(o *datasetOptions) { o.attrs = append(o.attrs, attrDef{name, value}) }
}
