// Copyright 2024 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

// Package errors implements the error type used throughout the evtx
// module. Errors carry a kind that classifies the failure (an invalid
// argument, an I/O failure, a bounds violation, and so on) so that
// callers can react to the class of failure without string matching.
// Errors can be chained, attributing one error to another.
//
// Note that checksum mismatches are deliberately not represented as
// errors by the parser: they are advisory and reported through the
// corrupted flag on the IO handle. The Integrity kind exists for
// callers that want to surface such conditions as errors themselves.
package errors

import (
	"bytes"
	"errors"
	"strings"
)

// Separator defines the separation string inserted between
// chained errors in error messages.
var Separator = ":\n\t"

// Kind defines the type of error. Kinds are semantically meaningful,
// and may be interpreted by the receiver of an error, e.g., to
// distinguish data corruption from caller misuse.
type Kind int

const (
	// Other indicates an unknown error.
	Other Kind = iota
	// Invalid indicates that the caller supplied invalid parameters,
	// or misused an object (for example, loading an already loaded
	// chunk).
	Invalid
	// IO indicates an underlying I/O error, including short reads.
	IO
	// Unsupported indicates an unsupported value, such as a signature
	// mismatch.
	Unsupported
	// Bounds indicates an offset or length that violates buffer bounds.
	Bounds
	// Malformed indicates structurally inconsistent data, such as a
	// record header whose length fields disagree.
	Malformed
	// Integrity indicates an integrity failure, such as a checksum
	// mismatch.
	Integrity
	// Exceeded indicates a value that overflows its return type.
	Exceeded
	// NotExist indicates a nonexistent entry, such as a record index
	// past the end of a chunk.
	NotExist

	maxKind
)

var kinds = map[Kind]string{
	Other:       "unknown error",
	Invalid:     "invalid argument",
	IO:          "I/O error",
	Unsupported: "unsupported value",
	Bounds:      "value out of bounds",
	Malformed:   "malformed data",
	Integrity:   "integrity error",
	Exceeded:    "value exceeds maximum",
	NotExist:    "entry does not exist",
}

// String returns a human-readable explanation of the error kind k.
func (k Kind) String() string {
	return kinds[k]
}

// Error is the standard error type, carrying a kind (error code),
// message (error message), and potentially an underlying error.
// Errors should be constructed by errors.E, which interprets
// arguments according to a set of rules.
type Error struct {
	// Kind is the error's type.
	Kind Kind
	// Message is an optional error message associated with this error.
	Message string
	// Err is the error that caused this error, if any.
	// Errors can form chains through Err: the full chain is printed
	// by Error().
	Err error
}

// E constructs a new error from the provided arguments. It is meant
// as a convenient way to construct, annotate, and wrap errors.
//
// Arguments are interpreted according to their types:
//
//   - Kind: sets the Error's kind
//   - string: sets the Error's message; multiple strings are
//     separated by a single space
//   - *Error: copies the error and sets the error's cause
//   - error: sets the Error's cause
//
// If an unrecognized argument type is encountered, E panics: such a
// call is a programming error.
//
// If the underlying error is another *Error and a kind is not
// provided, the returned error inherits that error's kind.
func E(args ...interface{}) error {
	if len(args) == 0 {
		panic("errors.E: no args")
	}
	e := new(Error)
	var msg strings.Builder
	for _, arg := range args {
		switch arg := arg.(type) {
		case Kind:
			e.Kind = arg
		case string:
			if msg.Len() > 0 {
				msg.WriteString(" ")
			}
			msg.WriteString(arg)
		case *Error:
			errCopy := *arg
			if len(args) == 1 {
				// In this case, we're not adding anything new;
				// just return the copy.
				return &errCopy
			}
			e.Err = &errCopy
		case error:
			e.Err = arg
		default:
			panic("errors.E: bad argument type")
		}
	}
	e.Message = msg.String()
	if prev, ok := e.Err.(*Error); ok {
		if prev.Kind == e.Kind || e.Kind == Other {
			e.Kind = prev.Kind
			prev.Kind = Other
		}
	}
	return e
}

// Recover recovers any error into an *Error. If the passed-in error is
// already an *Error, it is simply returned; otherwise it is wrapped in
// one.
func Recover(err error) *Error {
	if err == nil {
		return nil
	}
	if err, ok := err.(*Error); ok {
		return err
	}
	return E(err).(*Error)
}

// Error returns a human readable string describing this error.
// It uses the separator defined by errors.Separator.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	var b bytes.Buffer
	e.writeError(&b)
	return b.String()
}

func (e *Error) writeError(b *bytes.Buffer) {
	if e.Message != "" {
		pad(b, ": ")
		b.WriteString(e.Message)
	}
	if e.Kind != Other {
		pad(b, ": ")
		b.WriteString(e.Kind.String())
	}
	if e.Err == nil {
		return
	}
	if err, ok := e.Err.(*Error); ok {
		pad(b, Separator)
		b.WriteString(err.Error())
	} else {
		pad(b, ": ")
		b.WriteString(e.Err.Error())
	}
}

// Unwrap returns e's cause, if any, or nil. It lets the standard
// library's errors.Unwrap work with *Error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is tells whether an error has a specified kind, except for the
// indeterminate kind Other. In the case an error has kind Other, the
// chain is traversed until a non-Other error is encountered.
func Is(kind Kind, err error) bool {
	if err == nil {
		return false
	}
	return is(kind, Recover(err))
}

func is(kind Kind, e *Error) bool {
	if e.Kind != Other {
		return e.Kind == kind
	}
	if e.Err != nil {
		if e2, ok := e.Err.(*Error); ok {
			return is(kind, e2)
		}
	}
	return false
}

// Match tells whether every nonempty field in err1 matches the
// corresponding fields in err2. The comparison recurses on chained
// errors. Match is designed to aid in testing errors.
func Match(err1, err2 error) bool {
	var (
		e1 = Recover(err1)
		e2 = Recover(err2)
	)
	if e1.Kind != Other && e1.Kind != e2.Kind {
		return false
	}
	if e1.Message != "" && e1.Message != e2.Message {
		return false
	}
	if e1.Err != nil {
		if e2.Err == nil {
			return false
		}
		switch e1.Err.(type) {
		case *Error:
			return Match(e1.Err, e2.Err)
		default:
			return e1.Err.Error() == e2.Err.Error()
		}
	}
	return true
}

// Visit calls the given function for every error object in the chain,
// including itself. Recursion stops after the function finds an error
// object of type other than *Error; when the chain ends in a nil
// cause, the function is called once more with nil.
func Visit(err error, callback func(err error)) {
	callback(err)
	for {
		next, ok := err.(*Error)
		if !ok {
			break
		}
		err = next.Err
		callback(err)
	}
}

// New is synonymous with the standard library's errors.New, and is
// provided here so that users need only import one errors package.
func New(msg string) error {
	return errors.New(msg)
}

func pad(b *bytes.Buffer, s string) {
	if b.Len() == 0 {
		return
	}
	b.WriteString(s)
}
