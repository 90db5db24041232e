package odim

import "errors"

// Conversion errors
var (
	ErrNotAContainer                 = errors.New("not an HDF5 file")
	ErrUnsupportedObjectType         = errors.New("unsupported object type")
	ErrUnsupportedElementType        = errors.New("unsupported element type")
	ErrUnsupportedAttributeValueType = errors.New("unsupported attribute value type")
	ErrQuantityNotFound              = errors.New("quantity not found")
)

// Tree errors
var (
	ErrInvalidPath   = errors.New("invalid path")
	ErrParentMissing = errors.New("parent group missing")
	ErrPathExists    = errors.New("path already exists")
	ErrNotFound      = errors.New("node not found")
)
