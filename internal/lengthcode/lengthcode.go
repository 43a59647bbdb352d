// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// Package lengthcode implements the static prefix code used to encode
// match lengths (and the end-of-stream marker), ported from
// _examples/original_source/liblz77ppm/src/tinyhuff.c.
package lengthcode

import "github.com/dsnet-lz/lz77ppm/internal/lz77err"

// entry is one row of the fixed encoding table: values 0, minValue,
// minValue+1, ..., minValue+5, and minValue+6+ (the tail bucket).
type entry struct {
	code  uint16
	nbits uint
}

// encodingTable is the exact table from tinyhuff.c: index 0 is the
// terminator (value 0), indices 1..6 are minValue+0..minValue+5,
// index 7 is the minValue+6-and-above tail bucket.
var encodingTable = [8]entry{
	{code: 0, nbits: 6}, // 0 (terminator)
	{code: 3, nbits: 2}, // minValue
	{code: 2, nbits: 2}, // minValue+1
	{code: 1, nbits: 2}, // minValue+2
	{code: 1, nbits: 3}, // minValue+3
	{code: 1, nbits: 4}, // minValue+4
	{code: 1, nbits: 5}, // minValue+5
	{code: 1, nbits: 6}, // minValue+6 or more (tail bucket, needs diffBits suffix)
}

// decodeEntry is one row of the 64-entry direct-mapped decode table.
type decodeEntry struct {
	base  int  // decoded base value (before adding any tail suffix)
	nbits uint // number of bits consumed from the peeked 6-bit prefix
}

// Code is a length code instantiated for a specific (minValue, maxValue)
// pair, as derived from a stream's window/look-ahead parameters.
type Code struct {
	minValue   int
	maxValue   int
	maxEncoded int
	diffBits   uint

	decodeTable [64]decodeEntry
}

// New builds a Code for the given range. minValue must be >= 1 so
// that no length collides with the terminator value 0; config.Derive
// yields a minimum match length of 1 for windows of 32 bytes or less.
func New(minValue, maxValue int) *Code {
	c := &Code{minValue: minValue, maxValue: maxValue, maxEncoded: minValue + 6}
	if maxValue > c.maxEncoded {
		c.diffBits = bitWidth(uint(maxValue - c.maxEncoded))
	}
	c.buildDecodeTable()
	return c
}

func bitWidth(v uint) uint {
	n := uint(0)
	for v > 0 {
		n++
		v >>= 1
	}
	return n
}

// buildDecodeTable fills the 64-entry table, direct-mapped on the 6-bit
// prefix that Decode peeks first.
func (c *Code) buildDecodeTable() {
	for row, e := range encodingTable {
		value := 0
		switch row {
		case 0:
			value = 0
		default:
			value = c.minValue + row - 1
		}
		// Every 6-bit pattern whose top e.nbits bits equal e.code (and
		// whose remaining bits are "don't care") decodes to this value.
		freeBits := 6 - e.nbits
		prefix := uint(e.code) << freeBits
		for suffix := uint(0); suffix < (1 << freeBits); suffix++ {
			idx := prefix | suffix
			c.decodeTable[idx] = decodeEntry{base: value, nbits: e.nbits}
		}
	}
}

// MaxEncoded returns minValue+6, the boundary at which the tail suffix
// is used.
func (c *Code) MaxEncoded() int { return c.maxEncoded }

// DiffBits returns the width of the tail suffix.
func (c *Code) DiffBits() uint { return c.diffBits }

// CanEncode reports whether v is representable: either 0 (terminator)
// or within [minValue, maxValue].
func (c *Code) CanEncode(v int) bool {
	return v == 0 || (v >= c.minValue && v <= c.maxValue)
}

// Encode returns the bit pattern and its width for v. The caller must
// have already checked CanEncode(v).
func (c *Code) Encode(v int) (code uint32, nbits uint) {
	switch {
	case v == 0:
		e := encodingTable[0]
		return uint32(e.code), e.nbits
	case v < c.maxEncoded:
		e := encodingTable[v-c.minValue+1]
		return uint32(e.code), e.nbits
	default:
		e := encodingTable[7]
		diff := uint32(v - c.maxEncoded)
		return uint32(e.code)<<c.diffBits | diff, e.nbits + c.diffBits
	}
}

// bitReader is the minimal interface Decode needs from a bit source: a
// peek that never consumes, and an explicit consume.
type bitReader interface {
	PeekUint64(n int) (val uint64, avail int, err error)
	Consume(n int) int
}

// Decode reads one length-code value from r, returning ok=false if
// fewer bits are available than the code requires (EOF mid-code). It
// peeks exactly the prefix first, then re-peeks the exact total width
// once the tail suffix width is known, rather than assuming a fixed
// 16-bit window: max_value (and so diff_bits) is caller-controlled and
// can exceed what a 16-bit peek can hold. This also means a single
// peek/decode pass is always conclusive - there is no "need more,
// retry with a bigger peek" loop for a caller to get stuck in.
func (c *Code) Decode(r bitReader) (value int, ok bool, err error) {
	prefixBits, avail, err := r.PeekUint64(6)
	if err != nil {
		return 0, false, err
	}
	if avail < 6 {
		return 0, false, nil
	}
	de := c.decodeTable[prefixBits&0x3f]

	total := de.nbits
	if de.base == c.maxEncoded {
		total += c.diffBits
	}

	peeked, avail, err := r.PeekUint64(int(total))
	if err != nil {
		return 0, false, err
	}
	if uint(avail) < total {
		return 0, false, nil
	}

	base := de.base
	if base == c.maxEncoded {
		diff := int(peeked & ((1 << c.diffBits) - 1))
		base += diff
	}
	r.Consume(int(total))

	if base != 0 && (base < c.minValue || base > c.maxValue) {
		return 0, false, lz77err.New(lz77err.CorruptStream, "decoded length outside valid range")
	}
	return base, true, nil
}
