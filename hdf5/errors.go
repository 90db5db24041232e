// Package hdf5 provides a pure Go implementation for reading and writing HDF5 files.
package hdf5

import "errors"

// Common errors
var (
	ErrNotHDF5     = errors.New("not an HDF5 file")
	ErrNotFound    = errors.New("object not found")
	ErrNotDataset  = errors.New("object is not a dataset")
	ErrNotGroup    = errors.New("object is not a group")
	ErrUnsupported = errors.New("unsupported feature")
	ErrInvalidPath = errors.New("invalid path")
	ErrClosed      = errors.New("file is closed")
	ErrLinkDepth   = errors.New("maximum link depth exceeded")
	ErrExists      = errors.New("object already exists")
)

// MaxLinkDepth bounds the number of soft links followed while resolving one
// path.
const MaxLinkDepth = 100
