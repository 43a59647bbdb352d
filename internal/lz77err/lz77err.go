// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// Package lz77err provides the shared Kind taxonomy and *Error type
// returned across every internal package boundary in this module, plus
// the Assert/Panic/Recover propagation trio (Assert and Panic built on
// github.com/dsnet/golib/errs, the same package xflate/meta uses) that
// collapses a chain of internal checks into one deferred recovery at
// each codec entry point instead of an if-err-return-err at every
// step.
package lz77err

import (
	"fmt"
	"runtime"

	"github.com/dsnet/golib/errs"
)

// Assert panics with err if cond is false.
func Assert(cond bool, err error) { errs.Assert(cond, err) }

// Panic panics with err if err is non-nil.
func Panic(err error) { errs.Panic(err) }

// Recover recovers a panic raised by Assert or Panic and stores it
// into the caller's named error return. It must be called with defer
// at the top of the function establishing the recovery boundary. It
// calls recover itself instead of delegating to errs.Recover, because
// recover only stops a panic when called directly by the deferred
// function. Runtime errors and non-error panic values are re-raised.
func Recover(err *error) {
	switch ex := recover().(type) {
	case nil:
	case runtime.Error:
		panic(ex)
	case error:
		*err = ex
	default:
		panic(ex)
	}
}

// Kind classifies an Error.
type Kind int

const (
	InvalidArgument Kind = iota
	IOError
	OutOfMemory
	CorruptStream
	UnexpectedEOF
)

func (k Kind) String() string {
	switch k {
	case InvalidArgument:
		return "invalid argument"
	case IOError:
		return "I/O error"
	case OutOfMemory:
		return "out of memory"
	case CorruptStream:
		return "corrupt stream"
	case UnexpectedEOF:
		return "unexpected EOF"
	default:
		return "unknown error"
	}
}

// Error is the concrete error type surfaced by this module's public API.
type Error struct {
	Kind Kind
	Msg  string
	Err  error // wrapped cause, if any
}

func (e *Error) Error() string {
	if e.Err != nil {
		return "lz77ppm: " + e.Kind.String() + ": " + e.Msg + ": " + e.Err.Error()
	}
	return "lz77ppm: " + e.Kind.String() + ": " + e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// New returns an *Error of the given kind.
func New(kind Kind, msg string) *Error { return &Error{Kind: kind, Msg: msg} }

// Newf returns an *Error of the given kind with a formatted message.
func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap returns an *Error of the given kind that wraps err.
func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}
