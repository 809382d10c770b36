// Copyright 2024 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package evtx

import (
	"bytes"
	"fmt"
	"time"

	"github.com/grailbio/evtx/errors"
)

// RecordValues holds the decoded header of one event record. The
// record's bytes are a borrow of the owning chunk's buffer: a
// RecordValues is valid only while the chunk that produced it remains
// loaded. Callers that need the payload to outlive the chunk must
// copy it.
type RecordValues struct {
	chunkData   []byte
	offset      int
	dataSize    uint32
	identifier  uint64
	writtenTime uint64
}

// readRecordValues decodes the record header at offset within data
// and returns the resulting RecordValues. The declared record size is
// validated against the buffer bounds before any field past the
// header is touched, so a hostile size field cannot move the scan out
// of the chunk.
func readRecordValues(data []byte, offset int) (*RecordValues, error) {
	if offset < 0 || offset+minRecordSize > len(data) {
		return nil, errors.E(errors.Bounds, fmt.Sprintf("record offset %#x out of bounds", offset))
	}
	if !bytes.Equal(data[offset:offset+4], recordSignature) {
		return nil, errors.E(errors.Unsupported, fmt.Sprintf("record signature at offset %#x", offset))
	}
	size := byteOrder.Uint32(data[offset+4:])
	if size < minRecordSize {
		return nil, errors.E(errors.Malformed, fmt.Sprintf("record at offset %#x declares size %d", offset, size))
	}
	if uint64(offset)+uint64(size) > uint64(len(data)) {
		return nil, errors.E(errors.Bounds, fmt.Sprintf("record at offset %#x with size %d out of bounds", offset, size))
	}
	end := offset + int(size)
	if copySize := byteOrder.Uint32(data[end-4:]); copySize != size {
		return nil, errors.E(errors.Malformed,
			fmt.Sprintf("record at offset %#x size copy mismatch (%d != %d)", offset, copySize, size))
	}
	return &RecordValues{
		chunkData:   data,
		offset:      offset,
		dataSize:    size,
		identifier:  byteOrder.Uint64(data[offset+8:]),
		writtenTime: byteOrder.Uint64(data[offset+16:]),
	}, nil
}

// Offset returns the record's byte offset within its chunk.
func (rv *RecordValues) Offset() int {
	return rv.offset
}

// DataSize returns the length in bytes the record occupies inside the
// chunk, including its header and trailing size copy.
func (rv *RecordValues) DataSize() int {
	return int(rv.dataSize)
}

// Identifier returns the event record identifier.
func (rv *RecordValues) Identifier() uint64 {
	return rv.identifier
}

// WrittenTime returns the record's written time. A zero stored
// timestamp yields the zero time.
func (rv *RecordValues) WrittenTime() time.Time {
	return filetimeToTime(rv.writtenTime)
}

// Data returns the record's full byte range inside the chunk buffer.
// The slice aliases the chunk's data.
func (rv *RecordValues) Data() []byte {
	return rv.chunkData[rv.offset : rv.offset+int(rv.dataSize)]
}

// BinaryXML returns the record's binary XML payload: the bytes
// between the record header and the trailing size copy. The slice
// aliases the chunk's data; interpreting the token stream is up to
// the caller.
func (rv *RecordValues) BinaryXML() []byte {
	return rv.chunkData[rv.offset+24 : rv.offset+int(rv.dataSize)-4]
}

// filetimeEpochDelta is the number of seconds between the FILETIME
// epoch (1601-01-01) and the Unix epoch (1970-01-01).
const filetimeEpochDelta = 11644473600

// filetimeToTime converts a FILETIME value (100ns intervals since
// 1601-01-01 UTC) to a time.Time.
func filetimeToTime(ft uint64) time.Time {
	if ft == 0 {
		return time.Time{}
	}
	sec := int64(ft/1e7) - filetimeEpochDelta
	nsec := int64(ft%1e7) * 100
	return time.Unix(sec, nsec).UTC()
}
