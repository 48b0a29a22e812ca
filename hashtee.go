package zipstream

import (
	"hash/crc32"
	"io"
)

// hashTee forwards every byte written through it to an inner writer and
// feeds each byte the inner writer accepted into a running CRC-32 (IEEE
// 802.3, the ZIP-specified variant), then yields the finalized checksum on
// finish. It is composed
// outside the compressor so that the checksum covers the uncompressed
// entry bytes, as ZIP requires — see spec.md §4.3/§9.
type hashTee struct {
	inner  io.Writer
	hasher hash32
}

// hash32 is the subset of hash.Hash32 the tee needs; named so tests can
// substitute a fake without importing hash/crc32.
type hash32 interface {
	io.Writer
	Sum32() uint32
}

func newHashTee(inner io.Writer) *hashTee {
	return &hashTee{inner: inner, hasher: crc32.NewIEEE()}
}

func (t *hashTee) Write(p []byte) (int, error) {
	n, err := t.inner.Write(p)
	if n > 0 {
		// Hash only the bytes actually accepted by the inner writer, so a
		// short write (one that also returns an error) never hashes bytes
		// the sink never saw.
		t.hasher.Write(p[:n])
	}
	return n, err
}

// finish returns the finalized CRC-32 of every byte written so far and the
// inner writer, releasing it back to the caller.
func (t *hashTee) finish() (uint32, io.Writer) {
	return t.hasher.Sum32(), t.inner
}
