// Copyright 2024 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package evtx

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"io"
	"math"

	"github.com/grailbio/base/log"
	"github.com/grailbio/evtx/checksum"
	"github.com/grailbio/evtx/errors"
)

// ChunkHeader holds the decoded fields of a chunk's 128-byte header.
// The values are exposed as stored; the chunk layer does not
// cross-validate the record numbers or the last record offset against
// the scan, leaving that to upstream policy.
type ChunkHeader struct {
	FirstEventRecordNumber     uint64
	LastEventRecordNumber      uint64
	FirstEventRecordIdentifier uint64
	LastEventRecordIdentifier  uint64
	HeaderSize                 uint32
	LastEventRecordOffset      uint32
	FreeSpaceOffset            uint32
	EventRecordsChecksum       uint32
	Checksum                   uint32
}

func decodeChunkHeader(p []byte) ChunkHeader {
	return ChunkHeader{
		FirstEventRecordNumber:     byteOrder.Uint64(p[8:]),
		LastEventRecordNumber:      byteOrder.Uint64(p[16:]),
		FirstEventRecordIdentifier: byteOrder.Uint64(p[24:]),
		LastEventRecordIdentifier:  byteOrder.Uint64(p[32:]),
		HeaderSize:                 byteOrder.Uint32(p[40:]),
		LastEventRecordOffset:      byteOrder.Uint32(p[44:]),
		FreeSpaceOffset:            byteOrder.Uint32(p[48:]),
		EventRecordsChecksum:       byteOrder.Uint32(p[52:]),
		Checksum:                   byteOrder.Uint32(p[124:]),
	}
}

// Chunk represents one fixed-size block of an EVTX file. The zero
// value is an unloaded chunk; Read populates it exactly once. A chunk
// exclusively owns its byte buffer and its record list: records are
// borrows into the buffer and must not outlive the chunk. A fully
// loaded chunk is safe for concurrent readers; Read and Reset require
// exclusive access.
type Chunk struct {
	fileOffset int64
	data       []byte
	header     ChunkHeader
	records    []*RecordValues
}

// Read loads the chunk at fileOffset from r: it reads the chunk's
// bytes, validates the signature, verifies the two checksums, and
// scans the event records into the chunk's record list. fileOffset
// must be a positive multiple of the handle's chunk size (offset 0
// holds the file header, not a chunk).
//
// Checksum mismatches are not failures: they set FlagCorrupted on h
// and the load continues. Structural violations are failures: they
// leave the chunk in its unloaded state and return an error whose
// kind identifies the violation.
func (c *Chunk) Read(h *IOHandle, r io.ReadSeeker, fileOffset int64) error {
	if c.data != nil {
		return errors.E(errors.Invalid, "chunk data already set")
	}
	if h == nil || h.ChunkSize == 0 {
		return errors.E(errors.Invalid, "invalid IO handle")
	}
	chunkSize := int64(h.ChunkSize)
	if fileOffset <= 0 || fileOffset%chunkSize != 0 {
		return errors.E(errors.Bounds, fmt.Sprintf("chunk offset %d not on a chunk boundary", fileOffset))
	}
	// The chunk number is derived for diagnostics only; it is not
	// trusted to index anything.
	chunkNumber := (fileOffset - chunkSize) / chunkSize
	if log.At(log.Debug) {
		log.Debug.Printf("evtx: reading chunk %d at offset %d (%#x)", chunkNumber, fileOffset, fileOffset)
	}

	if err := seek(r, fileOffset); err != nil {
		return errors.E(errors.IO, fmt.Sprintf("seek chunk offset %d", fileOffset), err)
	}
	data := make([]byte, chunkSize)
	if _, err := io.ReadFull(r, data); err != nil {
		return errors.E(errors.IO, fmt.Sprintf("read chunk %d data", chunkNumber), err)
	}
	if log.At(log.Debug) {
		log.Debug.Printf("evtx: chunk header data:\n%s", hex.Dump(data[:chunkHeaderSize]))
	}
	if !bytes.Equal(data[:7], chunkSignature[:7]) {
		return errors.E(errors.Unsupported, fmt.Sprintf("chunk %d signature", chunkNumber))
	}
	header := decodeChunkHeader(data)

	// The header checksum covers [0, 120) and [128, 512); the gap
	// holds the stored checksum and a reserved word the format's
	// calculator skips.
	sum := checksum.Update(0, data[:checksumDataSize])
	sum = checksum.Update(sum, data[chunkHeaderSize:chunkDataStart])
	if sum != header.Checksum {
		log.Debug.Printf("evtx: mismatch in chunk %d header CRC-32 checksum (%#08x != %#08x)",
			chunkNumber, header.Checksum, sum)
		h.Flags |= FlagCorrupted
	}
	if log.At(log.Debug) {
		log.Debug.Printf("evtx: chunk table data:\n%s", hex.Dump(data[chunkHeaderSize:chunkDataStart]))
	}

	// The free space offset governs the records checksum range and
	// the record walk, so an out-of-bounds value is a hard failure,
	// not mere corruption.
	freeSpaceOffset := int64(header.FreeSpaceOffset)
	if freeSpaceOffset < chunkDataStart || freeSpaceOffset > chunkSize {
		return errors.E(errors.Bounds, fmt.Sprintf("chunk %d free space offset %#x out of bounds",
			chunkNumber, header.FreeSpaceOffset))
	}
	if sum := checksum.Checksum(data[chunkDataStart:freeSpaceOffset]); sum != header.EventRecordsChecksum {
		log.Debug.Printf("evtx: mismatch in chunk %d event records CRC-32 checksum (%#08x != %#08x)",
			chunkNumber, header.EventRecordsChecksum, sum)
		h.Flags |= FlagCorrupted
	}

	records := make([]*RecordValues, 0, 64)
	for offset := int64(chunkDataStart); offset < freeSpaceOffset; {
		recordValues, err := readRecordValues(data, int(offset))
		if err != nil {
			return errors.E(fmt.Sprintf("read chunk %d record values", chunkNumber), err)
		}
		if offset+int64(recordValues.dataSize) > freeSpaceOffset {
			return errors.E(errors.Malformed, fmt.Sprintf("chunk %d record at offset %#x crosses the free space boundary",
				chunkNumber, offset))
		}
		offset += int64(recordValues.dataSize)
		records = append(records, recordValues)
	}

	// The tail past the free space offset is unused padding; it is
	// not interpreted.
	if log.At(log.Debug) && freeSpaceOffset < chunkSize {
		log.Debug.Printf("evtx: free space data:\n%s", hex.Dump(data[freeSpaceOffset:]))
	}

	c.fileOffset = fileOffset
	c.data = data
	c.header = header
	c.records = records
	return nil
}

// Reset returns the chunk to its unloaded state, releasing the byte
// buffer and every record borrowed from it. Reset is idempotent.
func (c *Chunk) Reset() {
	*c = Chunk{}
}

// FileOffset returns the absolute byte offset at which the chunk
// begins in the source file.
func (c *Chunk) FileOffset() int64 {
	return c.fileOffset
}

// Header returns the decoded chunk header.
func (c *Chunk) Header() ChunkHeader {
	return c.header
}

// NumRecords returns the number of event records in the chunk.
// Counts beyond the 16-bit range fail with an Exceeded error; this
// caps the accessor, not the scan.
func (c *Chunk) NumRecords() (uint16, error) {
	if len(c.records) > math.MaxUint16 {
		return 0, errors.E(errors.Exceeded, "number of chunk records exceeds maximum")
	}
	return uint16(len(c.records)), nil
}

// Record returns the record at the given index. The returned record
// is a borrow into the chunk and is valid only while the chunk
// remains loaded.
func (c *Chunk) Record(index uint16) (*RecordValues, error) {
	if int(index) >= len(c.records) {
		return nil, errors.E(errors.NotExist, fmt.Sprintf("record %d", index))
	}
	return c.records[index], nil
}
