// Copyright 2024 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

// Package checksum computes the little-endian CRC-32 used by the
// Windows Event Log (EVTX) file format. The computation is chainable:
// the checksum of a range split across disjoint segments equals the
// checksum of the concatenated range. The format relies on this to
// checksum the chunk header, which excludes the bytes holding the
// stored checksum itself.
package checksum

import "hash/crc32"

// ieeeTable is the table for the reflected IEEE polynomial, which is
// what the format's calculator uses.
var ieeeTable = crc32.MakeTable(crc32.IEEE)

// Update returns the CRC-32 of p continued from previous. A previous
// value of 0 starts a fresh computation; an empty p returns previous
// unchanged.
func Update(previous uint32, p []byte) uint32 {
	return crc32.Update(previous, ieeeTable, p)
}

// Checksum returns the CRC-32 of p.
func Checksum(p []byte) uint32 {
	return Update(0, p)
}
