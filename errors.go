// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package lz77ppm

import "github.com/dsnet-lz/lz77ppm/internal/lz77err"

// Kind classifies why a Compress or Decompress call failed.
type Kind int

const (
	// InvalidArgument covers malformed parameters passed by the caller:
	// a window/look-ahead pair outside the allowed range, or a
	// look-ahead larger than the window.
	InvalidArgument Kind = Kind(lz77err.InvalidArgument)
	// IOError covers a failed read from the source or write to the
	// sink.
	IOError = Kind(lz77err.IOError)
	// OutOfMemory covers a fixed-size output buffer that ran out of
	// room, or a failed reallocation of a growable one.
	OutOfMemory = Kind(lz77err.OutOfMemory)
	// CorruptStream covers a bad magic, unsupported version, invalid
	// header parameters, or a decoded value outside its valid range.
	CorruptStream = Kind(lz77err.CorruptStream)
	// UnexpectedEOF covers a stream that ended in the middle of a
	// token.
	UnexpectedEOF = Kind(lz77err.UnexpectedEOF)
)

func (k Kind) String() string { return lz77err.Kind(k).String() }

// Error is the concrete error type returned by this package's
// exported functions.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	inner := &lz77err.Error{Kind: lz77err.Kind(e.Kind), Msg: e.Msg, Err: e.Err}
	return inner.Error()
}

func (e *Error) Unwrap() error { return e.Err }

func fromInternal(err error) error {
	if err == nil {
		return nil
	}
	if ie, ok := err.(*lz77err.Error); ok {
		return &Error{Kind: Kind(ie.Kind), Msg: ie.Msg, Err: ie.Err}
	}
	return err
}
