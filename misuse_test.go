package zipstream

import (
	"bytes"
	"errors"
	"testing"
)

func wantProtocolMisuse(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected an error, got nil")
	}
	var zerr *Error
	if !errors.As(err, &zerr) {
		t.Fatalf("expected *Error, got %T: %v", err, err)
	}
	if zerr.Kind != ProtocolMisuse {
		t.Fatalf("Kind = %v, want ProtocolMisuse", zerr.Kind)
	}
}

// S8: any EntryWriter method called after FinishEntry returns
// ProtocolMisuse.
func TestWriteAfterFinishEntryIsMisuse(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	ew, err := w.StartEntry("a", EntryOptions{})
	if err != nil {
		t.Fatalf("StartEntry: %v", err)
	}
	if err := w.FinishEntry(ew); err != nil {
		t.Fatalf("FinishEntry: %v", err)
	}

	_, err = ew.Write([]byte("late"))
	wantProtocolMisuse(t, err)
}

// S8: starting a second entry while the first is still open returns
// ProtocolMisuse, and does not disturb the already-open entry.
func TestStartEntryWhileOpenIsMisuse(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	ew, err := w.StartEntry("a", EntryOptions{})
	if err != nil {
		t.Fatalf("StartEntry: %v", err)
	}

	_, err = w.StartEntry("b", EntryOptions{})
	wantProtocolMisuse(t, err)

	// The original entry is still usable.
	if _, err := ew.Write([]byte("payload")); err != nil {
		t.Fatalf("Write on original entry after rejected StartEntry: %v", err)
	}
	if err := w.FinishEntry(ew); err != nil {
		t.Fatalf("FinishEntry: %v", err)
	}
}

// invariant #6: Finalize while an entry is open yields ProtocolMisuse.
func TestFinalizeWhileEntryOpenIsMisuse(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	if _, err := w.StartEntry("a", EntryOptions{}); err != nil {
		t.Fatalf("StartEntry: %v", err)
	}

	_, err := w.Finalize()
	wantProtocolMisuse(t, err)
}

// S8: FinishEntry called with a stale/foreign EntryWriter pointer (not
// the Writer's currently live entry) is rejected.
func TestFinishEntryWithWrongEntryWriterIsMisuse(t *testing.T) {
	var buf1, buf2 bytes.Buffer
	w1 := NewWriter(&buf1)
	w2 := NewWriter(&buf2)

	ew1, err := w1.StartEntry("a", EntryOptions{})
	if err != nil {
		t.Fatalf("StartEntry on w1: %v", err)
	}
	if _, err := w2.StartEntry("b", EntryOptions{}); err != nil {
		t.Fatalf("StartEntry on w2: %v", err)
	}

	err = w2.FinishEntry(ew1)
	wantProtocolMisuse(t, err)
}

// Any Writer-level operation after Finalize returns ProtocolMisuse.
func TestOperationsAfterFinalizeAreMisuse(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	if _, err := w.Finalize(); err != nil {
		t.Fatalf("Finalize: %v", err)
	}

	_, err := w.StartEntry("a", EntryOptions{})
	wantProtocolMisuse(t, err)

	_, err = w.Finalize()
	wantProtocolMisuse(t, err)
}
