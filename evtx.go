// Copyright 2024 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package evtx

import (
	"encoding/binary"
	"fmt"
	"io"
)

// DefaultChunkSize is the canonical chunk size of the format. The
// size actually used is taken from the IO handle.
const DefaultChunkSize = 64 << 10

const (
	// fileHeaderSize is the size of the decoded portion of the file
	// header; the header block it starts is 4096 bytes.
	fileHeaderSize      = 128
	fileHeaderBlockSize = 4096

	// chunkHeaderSize is the size of the decoded chunk header. The 384
	// bytes of record-table data that follow it are opaque; records
	// begin at chunkDataStart.
	chunkHeaderSize = 128
	chunkDataStart  = 512

	// checksumDataSize is the number of leading header bytes covered
	// by the file and chunk header checksums. The bytes [120, 128)
	// hold the stored checksum and a reserved word and are excluded.
	checksumDataSize = 120

	// minRecordSize is the smallest well-formed record: a 24-byte
	// header plus the trailing size copy.
	minRecordSize = 28
)

var (
	fileSignature   = []byte("ElfFile\x00")
	chunkSignature  = []byte("ElfChnk\x00")
	recordSignature = []byte{0x2a, 0x2a, 0x00, 0x00}
)

var byteOrder = binary.LittleEndian

// seek positions r at off. It returns a non-nil error if the seek
// pointer does not move to off.
func seek(r io.Seeker, off int64) error {
	n, err := r.Seek(off, io.SeekStart)
	if err != nil {
		return err
	}
	if n != off {
		return fmt.Errorf("seek: got %v, expect %v", n, off)
	}
	return nil
}
