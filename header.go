package zipstream

import "io"

// localHeaderLen returns the exact byte length a local header for a name
// of the given length occupies, including the always-present ZIP64 extra
// field (spec.md §4.4: "the local header always emits sentinel sizes ...
// and a ZIP64 extra field ... regardless of the eventual entry size").
func localHeaderLen(nameLen int) uint64 {
	return fileHeaderLen + uint64(nameLen) + zip64ExtraLen
}

// writeLocalHeader emits the fixed 30-byte local file header, the entry
// name, and the fixed 20-byte ZIP64 extra carrying zeroed placeholder
// sizes, per spec.md §6.
func writeLocalHeader(w io.Writer, d *entryDescriptor) error {
	var buf [fileHeaderLen]byte
	b := putBuf(buf[:])
	b.uint32(fileHeaderSignature)
	b.uint16(readerVersionZip64)
	b.uint16(localHeaderFlags(d))
	b.uint16(d.method)
	b.uint16(d.modTime)
	b.uint16(d.modDate)
	b.uint32(0)         // crc-32 deferred to the data descriptor
	b.uint32(uint32max) // compressed size sentinel
	b.uint32(uint32max) // uncompressed size sentinel
	b.uint16(uint16(len(d.name)))
	b.uint16(zip64ExtraLen)
	if _, err := w.Write(buf[:]); err != nil {
		return err
	}
	if _, err := io.WriteString(w, d.name); err != nil {
		return err
	}

	var extra [zip64ExtraLen]byte
	eb := putBuf(extra[:])
	eb.uint16(zip64ExtraID)
	eb.uint16(16) // data size: two placeholder uint64s
	eb.uint64(0)  // uncompressed size placeholder
	eb.uint64(0)  // compressed size placeholder
	_, err := w.Write(extra[:])
	return err
}

func localHeaderFlags(d *entryDescriptor) uint16 {
	flags := uint16(flagDataDescriptor)
	if d.nonASCII {
		flags |= flagUTF8
	}
	return flags
}

// dataDescriptorWide reports whether an entry's sizes require the 8-byte
// data descriptor fields, per spec.md §6's "the chosen width follows the
// size magnitude at entry close".
func dataDescriptorWide(d *entryDescriptor) bool {
	return d.uncompressedSize >= uint32max || d.compressedSize >= uint32max
}

// writeDataDescriptor emits the post-payload record carrying the CRC-32
// and sizes that were not known at header-write time, and returns its
// exact emitted length (16 or 24 bytes, spec.md §9's open-question note:
// an earlier revision used +=8, which was wrong).
func writeDataDescriptor(w io.Writer, d *entryDescriptor) (uint64, error) {
	wide := dataDescriptorWide(d)
	size := dataDescriptorLen
	if wide {
		size = dataDescriptor64Len
	}
	buf := make([]byte, size)
	b := putBuf(buf)
	b.uint32(dataDescriptorSignature)
	b.uint32(d.crc32)
	if wide {
		b.uint64(d.uncompressedSize)
		b.uint64(d.compressedSize)
	} else {
		b.uint32(uint32(d.uncompressedSize))
		b.uint32(uint32(d.compressedSize))
	}
	if _, err := w.Write(buf); err != nil {
		return 0, err
	}
	return uint64(size), nil
}
