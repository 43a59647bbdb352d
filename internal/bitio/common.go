// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// Package bitio implements the MSB-first bit-level reader and writer
// used by the compressed stream format: bit 0 of the first byte is the
// most significant bit. It is grounded on
// _examples/original_source/liblz77ppm/src/bit.c's bit_get/bit_set
// helpers and src/cstream.c's peek/consume/write_bits logic, adapted
// from descriptor+bit-index state to Go's io.Reader/io.Writer.
package bitio

import "github.com/dsnet-lz/lz77ppm/internal/lz77err"

// minBufBytes is the minimum size of the internal buffer maintained for
// a stream-backed Reader, per the format's buffering contract.
const minBufBytes = 1024

// readChunkBytes is how much is pulled from the underlying io.Reader on
// each refill.
const readChunkBytes = 4096

// getBit reports the value of bit i (MSB-first) in data.
func getBit(data []byte, i uint64) bool {
	return data[i/8]&(0x80>>(i%8)) != 0
}

// setBit sets bit i (MSB-first) in data to v. It never clears a bit
// that is already set when v is false and the caller only calls it with
// v == true, which is how Peek uses it: destinations are assumed
// pre-zeroed and only ORed into.
func setBit(data []byte, i uint64, v bool) {
	if v {
		data[i/8] |= 0x80 >> (i % 8)
	}
}

func minU64(a, b uint64) uint64 {
	if a < b {
		return a
	}
	return b
}

// growSize returns the next buffer size to grow to, given the current
// size, per the format's max(1024, size*1.1) growth rule.
func growSize(size int) int {
	g := size * 11 / 10
	if g < 1024 {
		g = 1024
	}
	return g
}

var errOutOfMemory = lz77err.New(lz77err.OutOfMemory, "fixed-size buffer exhausted")
