// Copyright 2024 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package evtx

import (
	"testing"
	"time"

	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"

	"github.com/grailbio/evtx/errors"
)

// filetime20200101 is 2020-01-01T00:00:00Z expressed as 100ns
// intervals since 1601-01-01.
const filetime20200101 = 132223104000000000

func TestReadRecordValues(t *testing.T) {
	data := make([]byte, 1024)
	rec := makeRecord(t, 42, filetime20200101, 128)
	copy(data[512:], rec)

	rv, err := readRecordValues(data, 512)
	assert.NoError(t, err)
	expect.EQ(t, rv.DataSize(), 128)
	expect.EQ(t, rv.Offset(), 512)
	expect.EQ(t, rv.Identifier(), uint64(42))
	expect.EQ(t, rv.WrittenTime(), time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC))
	expect.EQ(t, len(rv.Data()), 128)
	expect.EQ(t, len(rv.BinaryXML()), 128-minRecordSize)
}

func TestReadRecordValuesBounds(t *testing.T) {
	data := make([]byte, 1024)
	copy(data[512:], makeRecord(t, 1, 0, 128))

	// Not enough room left for a minimal record header.
	_, err := readRecordValues(data, len(data)-minRecordSize+1)
	expect.True(t, errors.Is(errors.Bounds, err))
	_, err = readRecordValues(data, -1)
	expect.True(t, errors.Is(errors.Bounds, err))

	// A declared size running past the buffer must not be followed.
	byteOrder.PutUint32(data[512+4:], 4096)
	_, err = readRecordValues(data, 512)
	expect.True(t, errors.Is(errors.Bounds, err))
}

func TestReadRecordValuesSignature(t *testing.T) {
	data := make([]byte, 1024)
	copy(data[512:], makeRecord(t, 1, 0, 128))
	data[512] = 0x00
	_, err := readRecordValues(data, 512)
	expect.True(t, errors.Is(errors.Unsupported, err))
}

func TestReadRecordValuesMalformed(t *testing.T) {
	data := make([]byte, 1024)

	// Declared size below the minimum.
	copy(data[512:], makeRecord(t, 1, 0, 128))
	byteOrder.PutUint32(data[512+4:], 8)
	_, err := readRecordValues(data, 512)
	expect.True(t, errors.Is(errors.Malformed, err))

	// Trailing size copy disagrees with the leading size field.
	copy(data[512:], makeRecord(t, 1, 0, 128))
	byteOrder.PutUint32(data[512+128-4:], 127)
	_, err = readRecordValues(data, 512)
	expect.True(t, errors.Is(errors.Malformed, err))
}

func TestFiletimeToTime(t *testing.T) {
	expect.True(t, filetimeToTime(0).IsZero())
	expect.EQ(t, filetimeToTime(filetime20200101), time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC))
	// Sub-second precision is preserved at 100ns granularity.
	expect.EQ(t, filetimeToTime(filetime20200101+3), time.Date(2020, 1, 1, 0, 0, 0, 300, time.UTC))
}
