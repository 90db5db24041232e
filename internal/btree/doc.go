// Package btree walks the version 1 B-trees that index the members of
// old-style groups and the chunks of datasets written with the earliest
// file format.
package btree
