// Copyright 2024 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

// Command evtxdump dumps the event records of a Windows Event Log
// (EVTX) file: each record's identifier, written time, and a hex dump
// of its binary XML payload. The payload token stream itself is not
// interpreted.
package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/grailbio/base/log"
	"github.com/grailbio/base/must"
	"github.com/grailbio/evtx"
	"github.com/grailbio/evtx/mmapio"
)

var chunkIndex = flag.Int("chunk", -1, "dump only the chunk with this index")

func main() {
	log.AddFlags()
	log.SetFlags(0)
	log.SetPrefix("evtxdump: ")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: evtxdump [-chunk N] file\n")
		flag.PrintDefaults()
		os.Exit(2)
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
	}

	path := flag.Arg(0)
	r, err := mmapio.Open(path)
	if err != nil {
		log.Fatalf("%s: %v", path, err)
	}
	defer func() { must.Nil(r.Close()) }()

	f, err := evtx.OpenFile(r)
	if err != nil {
		log.Fatalf("%s: %v", path, err)
	}
	for i := uint16(0); i < f.NumChunks(); i++ {
		if *chunkIndex >= 0 && int(i) != *chunkIndex {
			continue
		}
		if err := dumpChunk(f, i); err != nil {
			log.Fatalf("%s: %v", path, err)
		}
	}
	if f.IsCorrupted() {
		log.Error.Printf("%s: integrity checks failed; output may be incomplete", path)
	}
}

func dumpChunk(f *evtx.File, index uint16) error {
	c, err := f.Chunk(index)
	if err != nil {
		return err
	}
	n, err := c.NumRecords()
	if err != nil {
		return err
	}
	for j := uint16(0); j < n; j++ {
		rec, err := c.Record(j)
		if err != nil {
			return err
		}
		fmt.Printf("chunk %d record %d: identifier %d written %s\n",
			index, j, rec.Identifier(), rec.WrittenTime().Format(time.RFC3339Nano))
		fmt.Print(hex.Dump(rec.BinaryXML()))
	}
	return nil
}
