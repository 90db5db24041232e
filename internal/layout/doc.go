// Package layout reads dataset storage: compact, contiguous and chunked.
//
// Chunked reads locate chunks through whichever index the file uses (single
// chunk, v1 or v2 B-tree, fixed or extensible array), run them through the
// filter pipeline and copy them into the output buffer, clipping edge chunks
// to the dataset extent.
package layout
