package compressor

import (
	"io"
	"sync"

	"github.com/klauspost/compress/flate"
)

// DeflateConfig selects the raw DEFLATE compression method (no zlib or
// gzip header/trailer). Level is in klauspost/compress/flate's native
// range (flate.HuffmanOnly..flate.BestCompression, or
// flate.DefaultCompression).
type DeflateConfig struct {
	Level int
}

// Method implements Config.
func (DeflateConfig) Method() uint16 { return 8 }

// Build implements Config.
func (c DeflateConfig) Build(inner io.Writer) Compressor {
	counted := &countingWriter{w: inner}
	fw := getFlateWriter(counted, c.Level)
	return &deflateCompressor{counted: counted, fw: fw, level: c.Level}
}

// deflateCompressor streams its input through a pooled flate.Writer. The
// raw DEFLATE stream never carries a zlib or gzip wrapper, per spec.md
// §4.2.
type deflateCompressor struct {
	counted *countingWriter
	fw      *flate.Writer
	level   int
	in      uint64
}

func (d *deflateCompressor) Write(p []byte) (int, error) {
	n, err := d.fw.Write(p)
	d.in += uint64(n)
	return n, err
}

// Method implements Compressor.
func (d *deflateCompressor) Method() uint16 { return 8 }

// Finish implements Compressor.
func (d *deflateCompressor) Finish() (Result, io.Writer, error) {
	if err := d.fw.Close(); err != nil {
		return Result{}, d.counted.w, err
	}
	putFlateWriter(d.level, d.fw)
	return Result{UncompressedSize: d.in, CompressedSize: uint64(d.counted.count)}, d.counted.w, nil
}

// countingWriter tracks the number of compressed bytes the flate.Writer
// actually emits downstream, since flate.Writer itself does not expose a
// running output byte count.
type countingWriter struct {
	w     io.Writer
	count int64
}

func (w *countingWriter) Write(p []byte) (int, error) {
	n, err := w.w.Write(p)
	w.count += int64(n)
	return n, err
}

// flateWriterPools keeps one sync.Pool per compression level, so repeated
// entries at the same level reuse their flate.Writer's internal tables
// instead of reallocating them, the same pooling idiom
// philipaconrad-gzipstreamwriter's package comment calls out ("avoid
// excessive memory and CPU burn") and buildbarn-bb-storage applies
// throughout its storage layer for short-lived encoders.
var flateWriterPools sync.Map // map[int]*sync.Pool

func poolForLevel(level int) *sync.Pool {
	if p, ok := flateWriterPools.Load(level); ok {
		return p.(*sync.Pool)
	}
	p := &sync.Pool{New: func() any { return nil }}
	actual, _ := flateWriterPools.LoadOrStore(level, p)
	return actual.(*sync.Pool)
}

func getFlateWriter(w io.Writer, level int) *flate.Writer {
	pool := poolForLevel(level)
	if v := pool.Get(); v != nil {
		fw := v.(*flate.Writer)
		fw.Reset(w)
		return fw
	}
	fw, err := flate.NewWriter(w, level)
	if err != nil {
		// Neither DeflateConfig nor StartEntry validates the level; an
		// invalid one falls back to the default level so Write/Finish
		// still behave sanely rather than panicking deep inside the
		// compressor.
		fw, _ = flate.NewWriter(w, flate.DefaultCompression)
	}
	return fw
}

func putFlateWriter(level int, fw *flate.Writer) {
	poolForLevel(level).Put(fw)
}
