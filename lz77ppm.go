// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// Package lz77ppm implements a from-scratch LZ77 compressor and
// decompressor: a bounded sliding-window/look-ahead model backed by
// either an in-memory buffer or an io.Reader/io.Writer, a longest-match
// search accelerated by a binary search tree over a circular window
// array, and a self-describing bitstream with a static variable-length
// length code. It is a direct translation of
// _examples/original_source/liblz77ppm, generalized from raw POSIX
// file descriptors to Go's io.Reader/io.Writer.
package lz77ppm

import (
	"io"

	"github.com/dsnet-lz/lz77ppm/internal/config"
	"github.com/dsnet-lz/lz77ppm/internal/cstream"
	"github.com/dsnet-lz/lz77ppm/internal/lengthcode"
	"github.com/dsnet-lz/lz77ppm/internal/lz77err"
	"github.com/dsnet-lz/lz77ppm/internal/token"
	"github.com/dsnet-lz/lz77ppm/internal/ustream"
)

// VersionMajor and VersionMinor make up the version byte written to
// (and checked against) every stream's header.
const (
	VersionMajor = 1
	VersionMinor = 0
)

// Compress reads every token from u and writes it to c, emitting the
// terminator token once u is exhausted. It opens and closes both
// streams and returns the number of compressed bytes written.
//
// progress, if non-nil, is called after every token with the number
// of input bytes consumed so far and, when totalBytes is nonzero, the
// percentage of the input processed - the Go analogue of the
// original's report_progress callback and its fstat-derived size.
func Compress(u *ustream.Stream, c *cstream.Stream, progress ProgressFunc, totalBytes uint64) (n int64, err error) {
	n = -1
	defer lz77err.Recover(&err)
	lz77err.Panic(fromInternal(u.Open()))
	lz77err.Panic(fromInternal(c.Open()))
	lz77err.Panic(fromInternal(compressLoop(u, c, progress, totalBytes)))
	lz77err.Panic(fromInternal(u.Close()))
	lz77err.Panic(fromInternal(c.Close()))
	return int64((c.ProcessedBits() + 7) / 8), nil
}

// compressLoop assumes u and c are already open.
func compressLoop(u *ustream.Stream, c *cstream.Stream, progress ProgressFunc, totalBytes uint64) error {
	lc := newLengthCode(u.Params())

	for {
		tok, err := u.NextToken()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		if err := c.WriteToken(tok, lc); err != nil {
			return err
		}
		reportProgress(progress, u.ProcessedBytes(), totalBytes)
	}
	return c.WriteToken(token.NewTerminator(), lc)
}

// Decompress reads tokens from c, replaying each into u, until the
// terminator token is reached. It opens and closes both streams and
// returns the number of decompressed bytes produced.
func Decompress(c *cstream.Stream, u *ustream.Stream, progress ProgressFunc, totalBytes uint64) (n int64, err error) {
	n = -1
	defer lz77err.Recover(&err)
	lz77err.Panic(fromInternal(c.Open()))
	lz77err.Panic(fromInternal(u.Open()))
	lz77err.Panic(fromInternal(decompressLoop(c, u, progress, totalBytes)))
	lz77err.Panic(fromInternal(c.Close()))
	lz77err.Panic(fromInternal(u.Close()))
	return int64(u.ProcessedBytes()), nil
}

// decompressLoop assumes c and u are already open.
func decompressLoop(c *cstream.Stream, u *ustream.Stream, progress ProgressFunc, totalBytes uint64) error {
	lc := newLengthCode(u.Params())

	for {
		tok, err := c.ReadToken(lc)
		if err != nil {
			return err
		}
		if tok.Kind == token.Terminator {
			return nil
		}
		if err := u.AppendToken(tok); err != nil {
			return err
		}
		reportProgress(progress, (c.ProcessedBits()+7)/8, totalBytes)
	}
}

// newLengthCode builds the lengthcode.Code passed to WriteToken (when
// compressing) or ReadToken (when decompressing) for one stream. cstream.Stream takes it as an
// explicit argument rather than owning one itself, since the codec
// (not cstream) is what ties it to the ustream side computing matches;
// ustream.Stream, in contrast, derives an identical instance
// internally in Open, since nothing outside ustream needs to see it.
func newLengthCode(p config.Params) *lengthcode.Code {
	d := p.Derive()
	lz77err.Assert(d.MinLen >= 1, lz77err.New(lz77err.InvalidArgument, "derived minimum match length below the format's floor of 1"))
	return lengthcode.New(d.MinLen, int(p.Lookahead))
}
