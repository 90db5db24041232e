// Package object reads and writes object headers. [Read] accepts version 1
// headers and checksummed version 2 ("OHDR") headers and follows their
// continuation blocks; [Encode] always produces version 2.
package object
