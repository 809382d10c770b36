// Copyright 2024 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

// Package mmapio provides a read-only memory-mapped view of a file
// that satisfies io.ReadSeeker, io.ReaderAt, and io.Closer. Mapping
// avoids double-buffering when a parser, like package evtx, reads
// large fixed-size regions by offset.
package mmapio

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/edsrzf/mmap-go"
)

// ErrEmpty is returned by Open for zero-length files, which cannot be
// mapped.
var ErrEmpty = errors.New("mmapio: empty file")

// File is a read-only memory-mapped file. The methods of the io
// interfaces it implements are not safe for concurrent use with each
// other (Read and Seek share a cursor); ReadAt is stateless and may
// be used concurrently.
type File struct {
	f    *os.File
	data mmap.MMap
	off  int64
}

var (
	_ io.ReadSeeker = (*File)(nil)
	_ io.ReaderAt   = (*File)(nil)
	_ io.Closer     = (*File)(nil)
)

// Open maps the named file read-only.
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if info.Size() == 0 {
		f.Close()
		return nil, ErrEmpty
	}
	data, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("mmapio: could not map %s: %w", path, err)
	}
	return &File{f: f, data: data}, nil
}

// Size returns the length of the mapped region.
func (f *File) Size() int64 {
	return int64(len(f.data))
}

// Bytes returns the mapped region. The slice is valid until Close.
func (f *File) Bytes() []byte {
	return f.data
}

// Read implements io.Reader.
func (f *File) Read(p []byte) (int, error) {
	if f.off >= int64(len(f.data)) {
		return 0, io.EOF
	}
	n := copy(p, f.data[f.off:])
	f.off += int64(n)
	return n, nil
}

// ReadAt implements io.ReaderAt.
func (f *File) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, fmt.Errorf("mmapio: negative offset %d", off)
	}
	if off >= int64(len(f.data)) {
		return 0, io.EOF
	}
	n := copy(p, f.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// Seek implements io.Seeker.
func (f *File) Seek(offset int64, whence int) (int64, error) {
	var off int64
	switch whence {
	case io.SeekStart:
		off = offset
	case io.SeekCurrent:
		off = f.off + offset
	case io.SeekEnd:
		off = int64(len(f.data)) + offset
	default:
		return 0, fmt.Errorf("mmapio: invalid whence %d", whence)
	}
	if off < 0 {
		return 0, fmt.Errorf("mmapio: negative position %d", off)
	}
	f.off = off
	return off, nil
}

// Close unmaps the region and closes the underlying file. Close is
// idempotent.
func (f *File) Close() error {
	var err error
	if f.data != nil {
		err = f.data.Unmap()
		f.data = nil
	}
	if f.f != nil {
		if cerr := f.f.Close(); cerr != nil && err == nil {
			err = cerr
		}
		f.f = nil
	}
	return err
}
