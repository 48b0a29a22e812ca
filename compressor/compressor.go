// Package compressor provides the pluggable streaming encoders a
// zipstream.Writer wraps each entry's payload in: an opaque config value
// paired with a 16-bit ZIP method id and a streaming io.Writer that yields
// (uncompressed_size, compressed_size) once finished.
//
// This mirrors the compressor/{mod,store,deflate} split of the original
// source this package was translated from (original_source/src/compressor
// in the retrieval pack): a Config knows how to Build a Compressor around
// an inner io.Writer, and new compression methods are added by providing
// the same pair without touching the core writer.
package compressor

import "io"

// Compressor is a streaming encoder for one archive entry's payload. Write
// consumes uncompressed bytes; Finish is the terminal operation.
//
// After Finish returns successfully, the inner io.Writer has received
// every compressed byte for this entry and no more. UncompressedSize is
// the exact number of bytes the Compressor received via Write.
// CompressedSize is the exact number of bytes it emitted to inner. A
// failing Finish surfaces the error and leaves inner in an
// implementation-defined but caller-visible state.
type Compressor interface {
	io.Writer

	// Method returns the ZIP compression method id this Compressor emits
	// on the wire (0 = stored, 8 = deflate).
	Method() uint16

	// Finish completes the entry and releases the inner writer.
	Finish() (result Result, inner io.Writer, err error)
}

// Result carries the sizes a Compressor only knows once Finish is called.
type Result struct {
	UncompressedSize uint64
	CompressedSize   uint64
}

// Config is an opaque, compressor-specific configuration value (such as a
// DEFLATE level) that knows how to build the Compressor it configures.
type Config interface {
	// Method returns the same id the built Compressor's Method will return.
	Method() uint16

	// Build constructs a Compressor that writes its compressed output to
	// inner.
	Build(inner io.Writer) Compressor
}
