// Package superblock locates and parses the superblock, the entry point of
// every HDF5 container. The signature is searched at offsets 0, 512, 1024
// and 2048. Versions 0 through 3 are read; [Superblock.Write] emits version 2.
package superblock
