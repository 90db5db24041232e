// Package alloc hands out file addresses while an HDF5 container is being
// written. Allocation is append-only: every request is placed at the current
// end of file, optionally aligned, and the end of file moves forward.
package alloc
