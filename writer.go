package zipstream

import (
	"io"
	"os"

	"github.com/Zettroke/zip-stream/compressor"
)

type phase int

const (
	phaseIdle phase = iota
	phaseEntryOpen
	phaseFinalized
)

// Writer builds a ZIP archive by streaming it, forward-only, to a sink.
// It is a strict state machine (spec.md §4.4):
//
//	Idle       --StartEntry-->  EntryOpen
//	EntryOpen  --FinishEntry--> Idle
//	Idle       --Finalize-->    Finalized (terminal)
//
// StartEntry while an entry is already open, Finalize with an entry open,
// or any operation after Finalize all return a *Error with Kind
// ProtocolMisuse rather than mutating the sink. Go has no move semantics,
// so this is enforced dynamically rather than by the type system, per
// spec.md §9's "implementations that cannot prevent this statically".
//
// A Writer is not safe for concurrent use; spec.md §5 specifies a
// single-threaded model with no internal locking.
type Writer struct {
	sink     io.Writer
	position uint64
	entries  []entryDescriptor
	phase    phase
	live     *EntryWriter
	comment  string
}

// NewWriter creates a Writer that will emit the archive to sink.
func NewWriter(sink io.Writer) *Writer {
	return &Writer{sink: sink}
}

// poison marks the Writer as terminally broken after a sink or compressor
// failure, per spec.md §7: "the writer is considered poisoned and no
// further operation is guaranteed to succeed". It releases the open
// entry, if any, without attempting to write anything more.
func (w *Writer) poison() {
	w.live = nil
	w.phase = phaseFinalized
}

// Position returns the number of bytes delivered to the sink so far. It
// never queries the sink: the core advances it by adding the known length
// of every structure it emits, per spec.md §4.4's algorithmic notes.
func (w *Writer) Position() uint64 { return w.position }

// SetComment sets the archive-level comment stored in the classic EOCD
// record. It may be called at any time before Finalize. comment must fit
// in a uint16 byte length.
func (w *Writer) SetComment(comment string) error {
	if w.phase == phaseFinalized {
		return protocolError("SetComment")
	}
	if len(comment) > uint16max {
		return newError(PathTooLong, "SetComment", nil)
	}
	w.comment = comment
	return nil
}

// EntryWriter streams one archive entry's payload. It is returned by
// StartEntry and consumed by FinishEntry; no other way exists to write
// raw bytes into the archive, which is how the core structurally prevents
// out-of-band writes into the sink (spec.md §4.4's misuse prevention).
type EntryWriter struct {
	parent    *Writer
	desc      entryDescriptor
	headerLen uint64
	counted   *countingWriter
	comp      compressor.Compressor
	tee       *hashTee
	closed    bool
}

// StartEntry begins a new archive entry named path. It is permitted only
// when the Writer is Idle. The local header (with ZIP64 sentinel sizes)
// is emitted immediately; the returned EntryWriter owns the sink until
// FinishEntry is called.
func (w *Writer) StartEntry(path string, opts EntryOptions) (*EntryWriter, error) {
	switch w.phase {
	case phaseEntryOpen:
		return nil, protocolError("StartEntry")
	case phaseFinalized:
		return nil, protocolError("StartEntry")
	}
	if len(path) > uint16max {
		return nil, newError(PathTooLong, "StartEntry", nil)
	}

	cfg := opts.resolveCompressor()
	modDate, modTime := timeToMsDos(opts.Modified)
	desc := entryDescriptor{
		method:            cfg.Method(),
		name:              path,
		nonASCII:          !asciiClear(path),
		modDate:           modDate,
		modTime:           modTime,
		localHeaderOffset: w.position,
		externalAttrs:     opts.ExternalAttrs,
	}

	if err := writeLocalHeader(w.sink, &desc); err != nil {
		w.poison()
		return nil, newError(SinkIoFailure, "StartEntry", err)
	}
	headerLen := localHeaderLen(len(path))
	w.position += headerLen

	counted := &countingWriter{w: w.sink}
	comp := cfg.Build(counted)
	ew := &EntryWriter{
		parent:    w,
		desc:      desc,
		headerLen: headerLen,
		counted:   counted,
		comp:      comp,
		tee:       newHashTee(comp),
	}
	w.phase = phaseEntryOpen
	w.live = ew
	return ew, nil
}

// Write streams uncompressed payload bytes into the entry. Each call
// advances the Writer's position by exactly the compressed bytes it
// causes to reach the sink; the hashing tee itself never adds bytes.
func (ew *EntryWriter) Write(p []byte) (int, error) {
	if ew.closed {
		return 0, protocolError("EntryWriter.Write")
	}
	n, err := ew.tee.Write(p)
	ew.parent.position = ew.desc.localHeaderOffset + ew.headerLen + uint64(ew.counted.count)
	if err != nil {
		ew.closed = true
		ew.parent.poison()
		return n, newError(SinkIoFailure, "EntryWriter.Write", err)
	}
	return n, nil
}

// FinishEntry closes the currently open entry: it finalizes the
// compressor, writes the data descriptor, and records the entry for the
// central directory. It is permitted only when ew is the Writer's
// currently live entry.
func (w *Writer) FinishEntry(ew *EntryWriter) error {
	if w.phase != phaseEntryOpen || w.live != ew || ew.closed {
		return protocolError("FinishEntry")
	}

	result, _, err := ew.comp.Finish()
	if err != nil {
		ew.closed = true
		w.poison()
		return newError(CompressorFailure, "FinishEntry", err)
	}
	crc, _ := ew.tee.finish()

	ew.desc.uncompressedSize = result.UncompressedSize
	ew.desc.compressedSize = result.CompressedSize
	ew.desc.crc32 = crc
	ew.closed = true

	descLen, err := writeDataDescriptor(w.sink, &ew.desc)
	if err != nil {
		w.poison()
		return newError(SinkIoFailure, "FinishEntry", err)
	}

	w.position = ew.desc.localHeaderOffset + ew.headerLen + ew.desc.compressedSize + descLen
	w.entries = append(w.entries, ew.desc)
	w.live = nil
	w.phase = phaseIdle
	return nil
}

// Abandon releases the resources held by the currently open entry (if
// any) without writing anything further to the sink, and poisons the
// Writer so that no further operation will succeed. It exists for callers
// that give up on an archive mid-write and want deterministic cleanup of
// compressor resources (e.g. pooled DEFLATE state) without relying on a
// finalizer, mirroring the Drop-based cleanup spec.md §5 describes for
// languages with move semantics.
func (w *Writer) Abandon() {
	if w.live != nil {
		// Route whatever the compressor still has buffered away from the
		// sink, so releasing it writes nothing further to the archive.
		w.live.counted.w = io.Discard
		_, _, _ = w.live.comp.Finish()
		w.live.closed = true
		w.live = nil
	}
	w.phase = phaseFinalized
}

// Finalize emits the central directory, the ZIP64 end-of-central-directory
// record, the ZIP64 locator, and the classic EOCD, then returns the sink.
// It is permitted only when the Writer is Idle; the Writer is consumed
// (any further operation returns ProtocolMisuse).
func (w *Writer) Finalize() (io.Writer, error) {
	if w.phase == phaseEntryOpen || w.phase == phaseFinalized {
		return nil, protocolError("Finalize")
	}

	cdOffset := w.position
	counted := &countingWriter{w: w.sink}
	for i := range w.entries {
		if _, err := writeCentralDirectoryEntry(counted, &w.entries[i]); err != nil {
			w.poison()
			return nil, newError(SinkIoFailure, "Finalize", err)
		}
	}
	cdSize := uint64(counted.count)
	w.position = cdOffset + cdSize

	if err := writeEndOfArchive(w.sink, len(w.entries), cdSize, cdOffset, w.comment); err != nil {
		w.poison()
		return nil, newError(SinkIoFailure, "Finalize", err)
	}
	w.position += directory64EndLen + directory64LocLen + directoryEndLen + uint64(len(w.comment))

	w.phase = phaseFinalized
	sink := w.sink
	w.sink = nil
	return sink, nil
}

// AppendData writes a complete entry from an in-memory byte slice. It is
// exactly StartEntry; Write(data); FinishEntry, and produces byte-for-byte
// identical output to calling those three operations manually with the
// same options (spec.md §8, testable property #4).
func (w *Writer) AppendData(path string, data []byte, opts EntryOptions) error {
	ew, err := w.StartEntry(path, opts)
	if err != nil {
		return err
	}
	if _, err := ew.Write(data); err != nil {
		return err
	}
	return w.FinishEntry(ew)
}

// AppendReader streams a complete entry from an arbitrary io.Reader.
func (w *Writer) AppendReader(path string, r io.Reader, opts EntryOptions) error {
	ew, err := w.StartEntry(path, opts)
	if err != nil {
		return err
	}
	if _, err := io.Copy(ew, r); err != nil {
		return newError(SinkIoFailure, "AppendReader", err)
	}
	return w.FinishEntry(ew)
}

// AppendFile streams a complete entry from an open *os.File. If
// opts.Modified is zero, it is filled in from the file's modification
// time, mirroring the teacher's FileInfoHeader and the original source's
// append_file.
func (w *Writer) AppendFile(path string, f *os.File, opts EntryOptions) error {
	if opts.Modified.IsZero() {
		if info, err := f.Stat(); err == nil {
			opts.Modified = info.ModTime()
		}
	}
	return w.AppendReader(path, f, opts)
}
