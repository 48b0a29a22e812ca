package compressor

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestStoreCompressor(t *testing.T) {
	var out bytes.Buffer
	c := StoreConfig{}.Build(&out)

	if got, want := c.Method(), uint16(0); got != want {
		t.Fatalf("Method() = %d, want %d", got, want)
	}

	const payload = "the quick brown fox"
	if _, err := c.Write([]byte(payload)); err != nil {
		t.Fatalf("Write: %v", err)
	}

	result, inner, err := c.Finish()
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}
	if inner != &out {
		t.Fatalf("Finish returned an unexpected inner writer")
	}

	want := Result{UncompressedSize: uint64(len(payload)), CompressedSize: uint64(len(payload))}
	if diff := cmp.Diff(want, result); diff != "" {
		t.Fatalf("Result mismatch (-want +got):\n%s", diff)
	}
	if out.String() != payload {
		t.Fatalf("output = %q, want %q (store must pass bytes through unchanged)", out.String(), payload)
	}
}
