// Copyright 2011 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package zipstream writes ZIP archives to a forward-only byte sink.
//
// Unlike archive/zip's Writer, which seeks back to patch in sizes once an
// entry is known, zipstream never seeks: every local header unconditionally
// carries a ZIP64 extra field with sentinel sizes, and the real sizes and
// CRC-32 are emitted afterwards in a data descriptor. This lets the writer
// target sinks that can only be appended to — a network socket, a pipe, an
// object-storage multipart upload — at the cost of always paying the ZIP64
// local-header overhead (20 bytes) and always emitting a ZIP64
// end-of-central-directory record, even for small archives.
//
// A Writer is a strict state machine: at most one entry may be open at a
// time, and the archive cannot be finalized while an entry is open. See
// Writer for details.
package zipstream
