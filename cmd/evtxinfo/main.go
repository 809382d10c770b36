// Copyright 2024 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

// Command evtxinfo prints summary information about Windows Event
// Log (EVTX) files: the file header fields, the number of chunks,
// per-chunk record counts, and whether any integrity check failed.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/grailbio/base/log"
	"github.com/grailbio/base/must"
	"github.com/grailbio/evtx"
	"github.com/grailbio/evtx/mmapio"
)

var useMmap = flag.Bool("mmap", true, "read files through a read-only memory map")

func main() {
	log.AddFlags()
	log.SetFlags(0)
	log.SetPrefix("evtxinfo: ")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: evtxinfo [-mmap=false] file...\n")
		flag.PrintDefaults()
		os.Exit(2)
	}
	flag.Parse()
	if flag.NArg() == 0 {
		flag.Usage()
	}

	status := 0
	for _, path := range flag.Args() {
		if err := info(path); err != nil {
			log.Error.Printf("%s: %v", path, err)
			status = 1
		}
	}
	os.Exit(status)
}

func open(path string) (io.ReadSeeker, io.Closer, error) {
	if *useMmap {
		f, err := mmapio.Open(path)
		if err != nil {
			return nil, nil, err
		}
		return f, f, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	return f, f, nil
}

func info(path string) error {
	r, closer, err := open(path)
	if err != nil {
		return err
	}
	defer func() { must.Nil(closer.Close()) }()

	f, err := evtx.OpenFile(r)
	if err != nil {
		return err
	}
	header := f.Header()
	fmt.Printf("%s:\n", path)
	fmt.Printf("\tformat version:\t\t%d.%d\n", header.MajorVersion, header.MinorVersion)
	fmt.Printf("\tfirst chunk number:\t%d\n", header.FirstChunkNumber)
	fmt.Printf("\tlast chunk number:\t%d\n", header.LastChunkNumber)
	fmt.Printf("\tnext record identifier:\t%d\n", header.NextRecordIdentifier)
	fmt.Printf("\tnumber of chunks:\t%d\n", header.NumberOfChunks)
	fmt.Printf("\tdirty:\t\t\t%t\n", header.IsDirty())
	fmt.Printf("\tfull:\t\t\t%t\n", header.IsFull())

	var total int
	for i := uint16(0); i < f.NumChunks(); i++ {
		c, err := f.Chunk(i)
		if err != nil {
			return err
		}
		n, err := c.NumRecords()
		if err != nil {
			return err
		}
		fmt.Printf("\tchunk %d:\t\t%d records\n", i, n)
		total += int(n)
	}
	fmt.Printf("\ttotal records:\t\t%d\n", total)
	fmt.Printf("\tcorrupted:\t\t%t\n", f.IsCorrupted())
	return nil
}
