// Copyright 2024 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package errors_test

import (
	goerrors "errors"
	"testing"

	"github.com/grailbio/evtx/errors"
)

func TestError(t *testing.T) {
	cause := goerrors.New("unexpected end of file")
	e1 := errors.E(errors.IO, "read chunk data", cause)
	if got, want := e1.Error(), "read chunk data: I/O error: unexpected end of file"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	e2 := errors.E(errors.Bounds, "free space offset out of bounds")
	if got, want := e2.Error(), "free space offset out of bounds: value out of bounds"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	if !errors.Is(errors.IO, e1) {
		t.Errorf("error %v should be IO", e1)
	}
	if errors.Is(errors.Bounds, e1) {
		t.Errorf("error %v should not be Bounds", e1)
	}
}

func TestErrorChaining(t *testing.T) {
	err := errors.E(errors.Malformed, "record size field mismatch")
	err = errors.E("read record at offset 512", err)
	if got, want := err.Error(), "read record at offset 512: malformed data:\n\trecord size field mismatch"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	// The outer error inherits the kind of its cause.
	if !errors.Is(errors.Malformed, err) {
		t.Errorf("error %v should be Malformed", err)
	}
}

func TestUnwrap(t *testing.T) {
	cause := goerrors.New("seek: got 0, expect 65536")
	err := errors.E(errors.IO, "seek chunk offset", cause)
	if got, want := goerrors.Unwrap(err), cause; got != want {
		t.Errorf("got %v, want %v", got, want)
	}
	if !goerrors.Is(err, cause) {
		t.Errorf("error %v should wrap %v", err, cause)
	}
}

func TestMatch(t *testing.T) {
	for _, c := range []struct {
		err1, err2 error
		match      bool
	}{
		{errors.E(errors.Invalid), errors.E(errors.Invalid, "chunk already read"), true},
		{errors.E(errors.Invalid), errors.E(errors.Bounds), false},
		{errors.E("a message"), errors.E("a message"), true},
		{errors.E("a message"), errors.E("another message"), false},
		{errors.E(errors.NotExist, errors.E("inner")), errors.E(errors.NotExist, errors.E("inner")), true},
	} {
		if got, want := errors.Match(c.err1, c.err2), c.match; got != want {
			t.Errorf("Match(%v, %v): got %v, want %v", c.err1, c.err2, got, want)
		}
	}
}

func TestVisit(t *testing.T) {
	inner := errors.E(errors.Bounds, "record length out of range")
	outer := errors.E("scan records", inner)
	var n int
	errors.Visit(outer, func(err error) { n++ })
	if got, want := n, 3; got != want {
		t.Errorf("got %v, want %v", got, want)
	}
}
