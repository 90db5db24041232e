// Package filter implements the chunk filter pipeline.
//
// Deflate (1), shuffle (2) and fletcher32 (3) are supported. Filters run in
// reverse order on read, and a chunk's filter mask may skip individual
// filters. SZIP, N-bit and scale-offset are recognised but not decoded.
package filter
