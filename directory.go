package zipstream

import "io"

// zip64OverflowFields returns, in wire order (uncompressed, compressed,
// offset), the uint64 values that overflow 32 bits and therefore must
// appear in this entry's central directory ZIP64 extra field. Per
// spec.md §4.4: "The extra contains only the overflowed fields, in the
// order (uncompressed, compressed, offset)".
//
// Crucially, overflow is decided from the entry's original, unclamped
// values — never from a value already clamped to 0xFFFFFFFF for display.
// spec.md §9 flags this explicitly as a place an implementer can get
// wrong by reordering the clamp-then-decide steps.
func zip64OverflowFields(d *entryDescriptor) []uint64 {
	var fields []uint64
	if d.uncompressedSize >= uint32max {
		fields = append(fields, d.uncompressedSize)
	}
	if d.compressedSize >= uint32max {
		fields = append(fields, d.compressedSize)
	}
	if d.localHeaderOffset >= uint32max {
		fields = append(fields, d.localHeaderOffset)
	}
	return fields
}

func clampUint32(v uint64) uint32 {
	if v >= uint32max {
		return uint32max
	}
	return uint32(v)
}

// writeCentralDirectoryEntry emits one 46-byte fixed record plus name plus
// an optional ZIP64 extra, and returns its exact emitted length.
func writeCentralDirectoryEntry(w io.Writer, d *entryDescriptor) (uint64, error) {
	overflow := zip64OverflowFields(d)
	extraLen := 0
	if len(overflow) > 0 {
		extraLen = zip64ExtraOverflowHdr + 8*len(overflow)
	}

	var buf [directoryHeaderLen]byte
	b := putBuf(buf[:])
	b.uint32(directoryHeaderSignature)
	b.uint16(creatorVersion)
	b.uint16(readerVersionZip64)
	b.uint16(localHeaderFlags(d))
	b.uint16(d.method)
	b.uint16(d.modTime)
	b.uint16(d.modDate)
	b.uint32(d.crc32)
	b.uint32(clampUint32(d.compressedSize))
	b.uint32(clampUint32(d.uncompressedSize))
	b.uint16(uint16(len(d.name)))
	b.uint16(uint16(extraLen))
	b.uint16(0) // file comment length: entries carry no comment
	b.uint16(0) // disk number start
	b.uint16(0) // internal file attributes
	b.uint32(d.externalAttrs)
	b.uint32(clampUint32(d.localHeaderOffset))
	if _, err := w.Write(buf[:]); err != nil {
		return 0, err
	}
	if _, err := io.WriteString(w, d.name); err != nil {
		return 0, err
	}

	if len(overflow) > 0 {
		extra := make([]byte, extraLen)
		eb := putBuf(extra)
		eb.uint16(zip64ExtraID)
		eb.uint16(uint16(8 * len(overflow)))
		for _, v := range overflow {
			eb.uint64(v)
		}
		if _, err := w.Write(extra); err != nil {
			return 0, err
		}
	}

	return directoryHeaderLen + uint64(len(d.name)) + uint64(extraLen), nil
}

// writeEndOfArchive emits the ZIP64 end-of-central-directory record, the
// ZIP64 EOCD locator, and the classic EOCD, always — even for an empty
// archive or one with no overflowing entry — per spec.md §4.4.
// cdOffset/cdSize are the exact offset and length of the central directory
// that precedes these records, and locatorOffset is the position at which
// the ZIP64 EOCD record itself begins (cdOffset + cdSize).
func writeEndOfArchive(w io.Writer, entryCount int, cdSize, cdOffset uint64, comment string) error {
	var end [directory64EndLen]byte
	b := putBuf(end[:])
	b.uint32(directory64EndSignature)
	b.uint64(directory64EndLen - 12) // size of this record, excluding signature and this field
	b.uint16(creatorVersion)
	b.uint16(readerVersionZip64)
	b.uint32(0) // number of this disk
	b.uint32(0) // disk with the start of the central directory
	b.uint64(uint64(entryCount))
	b.uint64(uint64(entryCount))
	b.uint64(cdSize)
	b.uint64(cdOffset)
	if _, err := w.Write(end[:]); err != nil {
		return err
	}

	locatorOffset := cdOffset + cdSize
	var loc [directory64LocLen]byte
	lb := putBuf(loc[:])
	lb.uint32(directory64LocSignature)
	lb.uint32(0) // disk with the start of the ZIP64 EOCD
	lb.uint64(locatorOffset)
	lb.uint32(1) // total number of disks
	if _, err := w.Write(loc[:]); err != nil {
		return err
	}

	clampedEntries := uint16(entryCount)
	if entryCount > uint16max {
		clampedEntries = uint16max
	}

	var eocd [directoryEndLen]byte
	eb := putBuf(eocd[:])
	eb.uint32(directoryEndSignature)
	eb.uint16(0) // number of this disk
	eb.uint16(0) // disk where the central directory starts
	eb.uint16(clampedEntries)
	eb.uint16(clampedEntries)
	eb.uint32(clampUint32(cdSize))
	eb.uint32(clampUint32(cdOffset))
	eb.uint16(uint16(len(comment)))
	if _, err := w.Write(eocd[:]); err != nil {
		return err
	}
	_, err := io.WriteString(w, comment)
	return err
}
