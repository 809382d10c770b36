// Copyright 2024 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package evtx

// Header flag bits stored in the file header.
const (
	// HeaderFlagIsDirty indicates the file was not cleanly closed.
	HeaderFlagIsDirty uint32 = 0x00000001
	// HeaderFlagIsFull indicates the file has reached its maximum size.
	HeaderFlagIsFull uint32 = 0x00000002
)

// FileHeader holds the decoded fields of the EVTX file header. The
// header occupies the first 128 bytes of a 4096-byte header block at
// file offset 0.
type FileHeader struct {
	FirstChunkNumber     uint64
	LastChunkNumber      uint64
	NextRecordIdentifier uint64
	HeaderSize           uint32
	MinorVersion         uint16
	MajorVersion         uint16
	HeaderBlockSize      uint16
	NumberOfChunks       uint16
	Flags                uint32
	Checksum             uint32
}

func decodeFileHeader(p []byte) FileHeader {
	return FileHeader{
		FirstChunkNumber:     byteOrder.Uint64(p[8:]),
		LastChunkNumber:      byteOrder.Uint64(p[16:]),
		NextRecordIdentifier: byteOrder.Uint64(p[24:]),
		HeaderSize:           byteOrder.Uint32(p[32:]),
		MinorVersion:         byteOrder.Uint16(p[36:]),
		MajorVersion:         byteOrder.Uint16(p[38:]),
		HeaderBlockSize:      byteOrder.Uint16(p[40:]),
		NumberOfChunks:       byteOrder.Uint16(p[42:]),
		Flags:                byteOrder.Uint32(p[120:]),
		Checksum:             byteOrder.Uint32(p[124:]),
	}
}

// IsDirty reports whether the file was marked dirty at write time.
func (h FileHeader) IsDirty() bool {
	return h.Flags&HeaderFlagIsDirty != 0
}

// IsFull reports whether the file was marked full at write time.
func (h FileHeader) IsFull() bool {
	return h.Flags&HeaderFlagIsFull != 0
}
