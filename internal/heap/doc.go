// Package heap reads local heaps ("HEAP"), which hold member names of
// old-style groups, and global heap collections ("GCOL"), which hold
// variable-length strings such as ODIM /what/source values.
package heap
