// Copyright 2024 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package evtx

import (
	"bytes"
	"testing"

	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"

	"github.com/grailbio/evtx/checksum"
	"github.com/grailbio/evtx/errors"
)

func makeFileHeader(numChunks uint16, flags uint32) []byte {
	p := make([]byte, fileHeaderSize)
	copy(p, fileSignature)
	var lastChunk uint64
	if numChunks > 0 {
		lastChunk = uint64(numChunks) - 1
	}
	byteOrder.PutUint64(p[8:], 0)          // first chunk number
	byteOrder.PutUint64(p[16:], lastChunk) // last chunk number
	byteOrder.PutUint64(p[24:], 1)                   // next record identifier
	byteOrder.PutUint32(p[32:], fileHeaderSize)
	byteOrder.PutUint16(p[36:], 1) // minor version
	byteOrder.PutUint16(p[38:], 3) // major version
	byteOrder.PutUint16(p[40:], fileHeaderBlockSize)
	byteOrder.PutUint16(p[42:], numChunks)
	byteOrder.PutUint32(p[120:], flags)
	byteOrder.PutUint32(p[124:], checksum.Checksum(p[:checksumDataSize]))
	return p
}

// makeFile assembles a synthetic EVTX file: the header block in the
// first chunk-size slot, then one slot per chunk.
func makeFile(t *testing.T, chunks ...[]byte) []byte {
	t.Helper()
	data := make([]byte, DefaultChunkSize*(1+len(chunks)))
	copy(data, makeFileHeader(uint16(len(chunks)), 0))
	for i, c := range chunks {
		copy(data[DefaultChunkSize*(i+1):], c)
	}
	return data
}

func TestOpenFile(t *testing.T) {
	data := makeFile(t,
		makeChunk(t, makeRecord(t, 1, filetime20200101, 128)),
		makeChunk(t, makeRecord(t, 2, 0, 100), makeRecord(t, 3, 0, 200)),
	)
	f, err := OpenFile(bytes.NewReader(data))
	assert.NoError(t, err)

	header := f.Header()
	expect.EQ(t, header.MajorVersion, uint16(3))
	expect.EQ(t, header.MinorVersion, uint16(1))
	expect.EQ(t, header.NumberOfChunks, uint16(2))
	expect.False(t, header.IsDirty())
	expect.False(t, header.IsFull())
	expect.False(t, f.IsCorrupted())
	expect.EQ(t, f.NumChunks(), uint16(2))

	c0, err := f.Chunk(0)
	assert.NoError(t, err)
	n, err := c0.NumRecords()
	assert.NoError(t, err)
	expect.EQ(t, n, uint16(1))

	c1, err := f.Chunk(1)
	assert.NoError(t, err)
	n, err = c1.NumRecords()
	assert.NoError(t, err)
	expect.EQ(t, n, uint16(2))

	// Chunks are cached after the first load.
	c0again, err := f.Chunk(0)
	assert.NoError(t, err)
	expect.True(t, c0 == c0again)

	_, err = f.Chunk(2)
	expect.True(t, errors.Is(errors.NotExist, err))
	expect.False(t, f.IsCorrupted())
}

func TestOpenFileBadSignature(t *testing.T) {
	data := makeFile(t)
	data[0] = 'X'
	_, err := OpenFile(bytes.NewReader(data))
	expect.True(t, errors.Is(errors.Unsupported, err))
}

func TestOpenFileBadVersion(t *testing.T) {
	data := makeFile(t)
	byteOrder.PutUint16(data[38:], 2)
	byteOrder.PutUint32(data[124:], checksum.Checksum(data[:checksumDataSize]))
	_, err := OpenFile(bytes.NewReader(data))
	expect.True(t, errors.Is(errors.Unsupported, err))
}

func TestOpenFileHeaderCorruption(t *testing.T) {
	data := makeFile(t, makeChunk(t, makeRecord(t, 1, 0, 128)))
	data[100] ^= 0x01
	f, err := OpenFile(bytes.NewReader(data))
	assert.NoError(t, err)
	expect.True(t, f.IsCorrupted())

	// The chunks remain readable.
	c, err := f.Chunk(0)
	assert.NoError(t, err)
	n, err := c.NumRecords()
	assert.NoError(t, err)
	expect.EQ(t, n, uint16(1))
}

func TestCorruptChunkMarksFile(t *testing.T) {
	chunkData := makeChunk(t, makeRecord(t, 1, 0, 128))
	chunkData[600] ^= 0x01
	data := makeFile(t, chunkData)
	f, err := OpenFile(bytes.NewReader(data))
	assert.NoError(t, err)
	expect.False(t, f.IsCorrupted())

	_, err = f.Chunk(0)
	assert.NoError(t, err)
	expect.True(t, f.IsCorrupted())
}

func TestOpenFileShort(t *testing.T) {
	_, err := OpenFile(bytes.NewReader([]byte("ElfFile\x00")))
	expect.True(t, errors.Is(errors.IO, err))
}

func TestCheckFileSignature(t *testing.T) {
	ok, err := CheckFileSignature(bytes.NewReader(makeFile(t)))
	assert.NoError(t, err)
	expect.True(t, ok)

	ok, err = CheckFileSignature(bytes.NewReader([]byte("not an evtx file")))
	assert.NoError(t, err)
	expect.False(t, ok)

	// A file too short to hold the signature simply does not match.
	ok, err = CheckFileSignature(bytes.NewReader([]byte("Elf")))
	assert.NoError(t, err)
	expect.False(t, ok)
}
