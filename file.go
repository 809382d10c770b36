// Copyright 2024 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package evtx

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"io"

	"github.com/grailbio/base/log"
	"github.com/grailbio/evtx/checksum"
	"github.com/grailbio/evtx/errors"
)

// File is an open EVTX file. It owns the IO handle shared by its
// chunks: any chunk whose integrity checks fail marks the whole file
// corrupted. Chunks are loaded on demand and cached; a File and its
// chunks are safe for concurrent readers once loaded, but Chunk calls
// that trigger a load require exclusive access.
type File struct {
	r        io.ReadSeeker
	ioHandle IOHandle
	header   FileHeader
	chunks   []*Chunk
}

// OpenFile parses the file header from r and returns a File
// navigating its chunks. The reader must remain open for the lifetime
// of the File; OpenFile does not take ownership of it.
//
// A header checksum mismatch marks the file corrupted without failing
// the open, matching the chunk-level policy.
func OpenFile(r io.ReadSeeker) (*File, error) {
	if err := seek(r, 0); err != nil {
		return nil, errors.E(errors.IO, "seek file header", err)
	}
	data := make([]byte, fileHeaderSize)
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, errors.E(errors.IO, "read file header", err)
	}
	if log.At(log.Debug) {
		log.Debug.Printf("evtx: file header data:\n%s", hex.Dump(data))
	}
	if !bytes.Equal(data[:8], fileSignature) {
		return nil, errors.E(errors.Unsupported, "file signature")
	}
	header := decodeFileHeader(data)
	if header.MajorVersion != 3 {
		return nil, errors.E(errors.Unsupported,
			fmt.Sprintf("format version %d.%d", header.MajorVersion, header.MinorVersion))
	}
	f := &File{
		r:        r,
		ioHandle: IOHandle{ChunkSize: DefaultChunkSize},
		header:   header,
		chunks:   make([]*Chunk, header.NumberOfChunks),
	}
	if sum := checksum.Checksum(data[:checksumDataSize]); sum != header.Checksum {
		log.Debug.Printf("evtx: mismatch in file header CRC-32 checksum (%#08x != %#08x)", header.Checksum, sum)
		f.ioHandle.Flags |= FlagCorrupted
	}
	return f, nil
}

// Header returns the decoded file header.
func (f *File) Header() FileHeader {
	return f.header
}

// NumChunks returns the number of chunks declared by the file header.
func (f *File) NumChunks() uint16 {
	return f.header.NumberOfChunks
}

// Chunk returns the chunk at the given index, loading it on first
// access. Chunks occupy successive chunk-size slots after the slot
// holding the file header block.
func (f *File) Chunk(index uint16) (*Chunk, error) {
	if index >= f.header.NumberOfChunks {
		return nil, errors.E(errors.NotExist, fmt.Sprintf("chunk %d", index))
	}
	if f.chunks[index] != nil {
		return f.chunks[index], nil
	}
	c := new(Chunk)
	fileOffset := int64(f.ioHandle.ChunkSize) * int64(index+1)
	if err := c.Read(&f.ioHandle, f.r, fileOffset); err != nil {
		return nil, errors.E(fmt.Sprintf("read chunk %d", index), err)
	}
	f.chunks[index] = c
	return c, nil
}

// IsCorrupted reports whether any integrity check has failed while
// reading the file or its chunks so far.
func (f *File) IsCorrupted() bool {
	return f.ioHandle.Corrupted()
}

// CheckFileSignature reports whether r begins with the EVTX file
// signature. A file too short to hold the signature is not an error;
// it simply does not match.
func CheckFileSignature(r io.ReaderAt) (bool, error) {
	var sig [8]byte
	_, err := r.ReadAt(sig[:], 0)
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return false, nil
	}
	if err != nil {
		return false, errors.E(errors.IO, "read file signature", err)
	}
	return bytes.Equal(sig[:], fileSignature), nil
}
