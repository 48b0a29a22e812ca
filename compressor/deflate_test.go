package compressor

import (
	"bytes"
	"io"
	"testing"

	"github.com/klauspost/compress/flate"
)

func TestDeflateCompressorRoundTrip(t *testing.T) {
	var out bytes.Buffer
	cfg := DeflateConfig{Level: flate.BestCompression}
	c := cfg.Build(&out)

	if got, want := c.Method(), uint16(8); got != want {
		t.Fatalf("Method() = %d, want %d", got, want)
	}

	payload := bytes.Repeat([]byte("compress me please "), 100)
	if _, err := c.Write(payload); err != nil {
		t.Fatalf("Write: %v", err)
	}

	result, _, err := c.Finish()
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}
	if result.UncompressedSize != uint64(len(payload)) {
		t.Fatalf("UncompressedSize = %d, want %d", result.UncompressedSize, len(payload))
	}
	if result.CompressedSize == 0 || result.CompressedSize >= result.UncompressedSize {
		t.Fatalf("CompressedSize = %d, expected meaningful compression of highly repetitive input (uncompressed %d)", result.CompressedSize, result.UncompressedSize)
	}
	if uint64(out.Len()) != result.CompressedSize {
		t.Fatalf("sink received %d bytes, Result reported CompressedSize %d", out.Len(), result.CompressedSize)
	}

	fr := flate.NewReader(bytes.NewReader(out.Bytes()))
	defer fr.Close()
	got, err := io.ReadAll(fr)
	if err != nil {
		t.Fatalf("decompressing: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("round-trip mismatch: got %d bytes, want %d", len(got), len(payload))
	}
}

// The flate.Writer pool must not leak state between uses at the same
// level: a second compressor at the same level must produce a correct,
// independent stream.
func TestDeflateCompressorPoolReuse(t *testing.T) {
	for i := 0; i < 3; i++ {
		var out bytes.Buffer
		c := DeflateConfig{Level: 6}.Build(&out)
		payload := []byte("round trip through a pooled flate.Writer")
		if _, err := c.Write(payload); err != nil {
			t.Fatalf("iteration %d: Write: %v", i, err)
		}
		if _, _, err := c.Finish(); err != nil {
			t.Fatalf("iteration %d: Finish: %v", i, err)
		}

		fr := flate.NewReader(bytes.NewReader(out.Bytes()))
		got, err := io.ReadAll(fr)
		fr.Close()
		if err != nil {
			t.Fatalf("iteration %d: decompressing: %v", i, err)
		}
		if !bytes.Equal(got, payload) {
			t.Fatalf("iteration %d: round-trip mismatch: got %q, want %q", i, got, payload)
		}
	}
}
