// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// Package config derives and validates the runtime parameters shared by
// every other package in this module: the window size, the look-ahead
// size, and the values computed from them (offset width and minimum
// match length; the length code's tail width is derived by
// lengthcode.New).
package config

import "github.com/dsnet-lz/lz77ppm/internal/lz77err"

// Params holds the two knobs a caller chooses; everything else is derived.
type Params struct {
	Window    uint16 // W: maximum sliding-window size in bytes, in [4, 65535]
	Lookahead uint16 // L: maximum look-ahead length, in [2, Window]
}

// Derived holds the values computed from Params, used throughout the
// window/tree/length-code machinery. lengthcode.New derives its own
// notion of the tail-suffix boundary and width directly from MinLen
// and Lookahead, so Derived stops at the two values every other
// package actually needs off the shelf.
type Derived struct {
	WBits  uint // bit-width of an offset into the window
	MinLen int  // shortest match length worth encoding as a phrase
}

// Validate reports an InvalidArgument error if p does not describe a
// usable window/look-ahead pair.
func (p Params) Validate() error {
	if p.Window < 4 {
		return lz77err.Newf(lz77err.InvalidArgument, "window size %d below minimum of 4", p.Window)
	}
	if p.Lookahead < 2 {
		return lz77err.Newf(lz77err.InvalidArgument, "look-ahead size %d below minimum of 2", p.Lookahead)
	}
	if p.Lookahead > p.Window {
		return lz77err.Newf(lz77err.InvalidArgument, "look-ahead size %d exceeds window size %d", p.Lookahead, p.Window)
	}
	return nil
}

// Derive computes wbits and min_len from p. p is assumed to have
// already passed Validate.
func (p Params) Derive() Derived {
	wbits := bitWidth(uint32(p.Window) - 1)
	minLen := int((1+wbits+2)/9) + 1
	return Derived{
		WBits:  wbits,
		MinLen: minLen,
	}
}

// bitWidth returns the number of bits needed to represent v, i.e.
// 1 + floor(log2(max(1, v))).
func bitWidth(v uint32) uint {
	if v == 0 {
		v = 1
	}
	n := uint(0)
	for v > 0 {
		n++
		v >>= 1
	}
	return n
}
