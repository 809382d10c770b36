// Copyright 2024 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package evtx

// Flag is a bit-set of file-level status flags carried by an IOHandle.
type Flag uint8

const (
	// FlagCorrupted is set when an integrity check fails. It is
	// advisory: the load that detected the mismatch continues, and
	// records remain accessible.
	FlagCorrupted Flag = 1 << iota
)

// IOHandle carries the file-level configuration and status shared by
// the chunks of one file: the configured chunk size and the advisory
// status flags. Integrity-check failures set FlagCorrupted on the
// handle instead of failing the load.
type IOHandle struct {
	// ChunkSize is the configured chunk length in bytes.
	ChunkSize uint32
	// Flags holds the advisory status flags.
	Flags Flag
}

// NewIOHandle returns an IOHandle configured with the canonical chunk
// size.
func NewIOHandle() *IOHandle {
	return &IOHandle{ChunkSize: DefaultChunkSize}
}

// Corrupted reports whether an integrity check has failed on any load
// through this handle.
func (h *IOHandle) Corrupted() bool {
	return h.Flags&FlagCorrupted != 0
}
