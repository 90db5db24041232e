// Package dtype maps HDF5 datatype messages to Go types and back.
//
// Radar products mostly carry fixed-point and IEEE floating-point arrays plus
// fixed or variable-length string attributes. [GoType] and [Convert] decode
// stored bytes into Go slices; [Encode] and [GoTypeToDatatype] produce the
// stored form when a converted file is written.
package dtype
