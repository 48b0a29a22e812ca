package compressor

import "io"

// StoreConfig selects the identity (uncompressed) compression method.
type StoreConfig struct{}

// Method implements Config.
func (StoreConfig) Method() uint16 { return 0 }

// Build implements Config.
func (StoreConfig) Build(inner io.Writer) Compressor {
	return &storeCompressor{inner: inner}
}

// storeCompressor is the identity passthrough compressor: every byte
// written is forwarded unchanged, so uncompressed and compressed size are
// always equal.
type storeCompressor struct {
	inner io.Writer
	size  uint64
}

func (s *storeCompressor) Write(p []byte) (int, error) {
	n, err := s.inner.Write(p)
	s.size += uint64(n)
	return n, err
}

// Method implements Compressor.
func (s *storeCompressor) Method() uint16 { return 0 }

// Finish implements Compressor.
func (s *storeCompressor) Finish() (Result, io.Writer, error) {
	return Result{UncompressedSize: s.size, CompressedSize: s.size}, s.inner, nil
}
