package zipstream

import (
	"time"

	"github.com/Zettroke/zip-stream/compressor"
)

// EntryOptions configures one archive entry, resolved by StartEntry into
// an entryDescriptor. It plays the same role as the teacher's FileHeader
// struct and the original source's HeaderBuilder, trimmed to the fields
// this writer actually needs up front (sizes and CRC are not inputs —
// they are only known once the entry closes).
type EntryOptions struct {
	// Compressor selects and configures the compression method for this
	// entry. A nil Compressor defaults to compressor.StoreConfig{}.
	Compressor compressor.Config

	// Modified is the entry's modification time. The zero Time packs to
	// MS-DOS date/time fields of 0, per spec.md §4.4.
	Modified time.Time

	// ExternalAttrs is passed through verbatim to the central directory
	// record. Preservation of POSIX permissions/xattrs is out of scope
	// (spec.md Non-goals). The record's version-made-by field always names
	// the MS-DOS host (upper byte 0), so readers interpret these bits as
	// MS-DOS attributes; no Unix host marker is written.
	ExternalAttrs uint32
}

func (o EntryOptions) resolveCompressor() compressor.Config {
	if o.Compressor != nil {
		return o.Compressor
	}
	return compressor.StoreConfig{}
}

// entryDescriptor is the in-memory record retained until finalization,
// created when an entry starts and frozen when it closes. It corresponds
// to spec.md §3's EntryDescriptor.
type entryDescriptor struct {
	method            uint16
	name              string
	nonASCII          bool
	modDate, modTime  uint16
	uncompressedSize  uint64
	compressedSize    uint64
	crc32             uint32
	localHeaderOffset uint64
	externalAttrs     uint32
}

// isZip64 reports whether any of this entry's size/offset fields overflow
// 32 bits and therefore require a ZIP64 extra field in the central
// directory, per spec.md §4.4.
func (h *entryDescriptor) isZip64() bool {
	return h.uncompressedSize >= uint32max || h.compressedSize >= uint32max || h.localHeaderOffset >= uint32max
}

func timeToMsDos(t time.Time) (date, timeField uint16) {
	if t.IsZero() {
		return 0, 0
	}
	return msDosTimeDate(t.Second(), t.Minute(), t.Hour(), t.Day(), int(t.Month()), t.Year())
}
