// Copyright 2024 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

// Package evtx implements a read-only parser for the Windows Event
// Log (EVTX) binary file format. An EVTX file is a container of
// fixed-size chunks; each chunk holds a set of event records; each
// record carries a binary XML payload. The package exposes a
// navigable object model: file, chunks, records, and raw record
// payloads. Interpretation of the binary XML token stream is left to
// the caller.
//
// # Data layout
//
// A file begins with a 4096-byte header block; chunks follow at
// successive multiples of the chunk size (canonically 64KiB). All
// multi-byte integers are little-endian.
//
//	file header :=
//		signature [8]uint8          // "ElfFile\x00"
//		first chunk number uint64
//		last chunk number uint64
//		next record identifier uint64
//		header size uint32          // 128
//		minor version uint16
//		major version uint16
//		header block size uint16    // 4096
//		number of chunks uint16
//		reserved [76]uint8
//		flags uint32                // 0x1 dirty, 0x2 full
//		checksum uint32             // CRC-32 of bytes [0, 120)
//
// Each chunk begins with a 128-byte header followed by 384 bytes of
// record-table data; event records start at chunk offset 512 and run
// up to the free space offset.
//
//	chunk header :=
//		signature [8]uint8          // "ElfChnk\x00"
//		first event record number uint64
//		last event record number uint64
//		first event record identifier uint64
//		last event record identifier uint64
//		header size uint32          // 128
//		last event record offset uint32
//		free space offset uint32
//		event records checksum uint32  // CRC-32 of bytes [512, free space offset)
//		unknown1 [64]uint8
//		unknown2 [4]uint8
//		checksum uint32             // CRC-32 of bytes [0, 120) and [128, 512)
//
//	record :=
//		signature [4]uint8          // 0x2a 0x2a 0x00 0x00
//		size uint32                 // total record length, including both size fields
//		identifier uint64
//		written time uint64         // FILETIME
//		binary XML data [size-28]uint8
//		size copy uint32
//
// # Failure tolerance
//
// The two chunk checksums and the file header checksum are advisory:
// a mismatch sets the corrupted flag on the IO handle and parsing
// continues, because a damaged chunk may still yield usable records.
// Structural violations - a bad signature, a free space offset outside
// the chunk, an inconsistent record header - are hard errors that roll
// the affected load back. Corruption is reported, never concealed.
package evtx
