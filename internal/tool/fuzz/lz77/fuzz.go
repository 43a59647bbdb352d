// Copyright 2016, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

//go:build gofuzz
// +build gofuzz

// Package lz77 is a go-fuzz entry point that round-trips arbitrary
// input through Compress and Decompress, checking that the output
// matches the original and that no code path panics.
package lz77

import (
	"bytes"

	lz77ppm "github.com/dsnet-lz/lz77ppm"
	"github.com/dsnet-lz/lz77ppm/internal/config"
	"github.com/dsnet-lz/lz77ppm/internal/cstream"
	"github.com/dsnet-lz/lz77ppm/internal/ustream"
)

// params is fixed rather than derived from the fuzz corpus: go-fuzz
// mutates data, not our own parameter space, and a small window keeps
// each run's search tree cheap while still exercising every wrap-around
// and compaction path (the window is far smaller than most corpus
// entries go-fuzz will grow into).
var params = config.Params{Window: 64, Lookahead: 16}

// Fuzz round-trips data through the codec and returns 1 if it decodes
// back to the original, 0 otherwise (go-fuzz's "interesting" signal).
// It panics (rather than returning 0) on any internal error, since a
// non-nil error from a well-formed in-memory round-trip indicates a
// bug worth go-fuzz minimizing towards.
func Fuzz(data []byte) int {
	u, err := ustream.NewFromBytes(data, params)
	if err != nil {
		return 0
	}
	compressed := make([]byte, 0, len(data)+64)
	c := cstream.NewWriterBytes(params, compressed, true)
	if _, err := lz77ppm.Compress(u, c, nil, 0); err != nil {
		panic(err)
	}
	compressed = c.Bytes()

	rc := cstream.NewReaderBytes(compressed)
	out := make([]byte, 0, len(data))
	ru, err := ustream.NewToBytes(rc, out, true)
	if err != nil {
		panic(err)
	}
	if _, err := lz77ppm.Decompress(rc, ru, nil, 0); err != nil {
		panic(err)
	}
	if !bytes.Equal(ru.Bytes(), data) {
		panic("round-trip mismatch")
	}
	return 1
}
