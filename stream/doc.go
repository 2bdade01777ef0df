// Package stream contains the decoding primitives shared by the archive readers.
//
// A Reader wraps any io.Reader and keeps track of the logical number of bytes consumed through it. That count, not
// the position reported by the underlying source, is the one used for alignment because decompressing sources
// cannot report a meaningful position. Skipped bytes are either seeked over (if the source supports it) or drained
// through a scratch buffer owned by the Reader.
//
// Fixed-width header fields are ASCII text; Decode and Encode convert them from and to integers in base 10, 8, or
// 16, while Text and CString recover string fields.
package stream
