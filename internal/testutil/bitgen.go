// Copyright 2016, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package testutil

import (
	"bytes"
	"encoding/hex"
	"errors"
	"regexp"
	"strconv"
	"strings"
)

var (
	reBin = regexp.MustCompile("^[01]{1,64}$")
	reDec = regexp.MustCompile("^D[0-9]+:[0-9]+$")
	reHex = regexp.MustCompile("^H[0-9]+:[0-9a-fA-F]{1,16}$")
	reRaw = regexp.MustCompile("^X:[0-9a-fA-F]+$")
	reQnt = regexp.MustCompile("[*][0-9]+$")
)

// DecodeBitGen decodes a BitGen formatted string into the raw bytes it
// describes.
//
// The BitGen format allows bit-streams to be generated from a series of
// tokens describing bits in the resulting string. The format is designed for
// testing purposes by aiding a human in the manual scripting of a compressed
// stream from individual bit-strings, and to allow the presence of comments
// to encode authorial intent.
//
// The format consists of a series of tokens separated by white space of any
// kind. The '#' character starts a comment that runs to the end of the line.
//
// This is the most-significant-bit-first subset of the format: unlike
// DEFLATE or Brotli, this library's bitstream has no little-endian mode, so
// every token is packed starting with the most-significant bit of a byte and
// there is no "<<<"/"<"/">" mode-switch machinery to parse.
//
// A token of the pattern "[01]{1,64}" forms a bit-string (e.g. 11010) whose
// left-most bit is written first to the resulting bit-stream.
//
// A token of the pattern "D[0-9]+:[0-9]+" or "H[0-9]+:[0-9a-fA-F]{1,16}"
// represents a decimal or hexadecimal value, respectively. The first number
// gives the bit-width (0 to 64), the second the value; the value's
// most-significant bit is written first.
//
// A token of the pattern "X:[0-9a-fA-F]+" represents literal bytes in
// hexadecimal, written directly to the stream. It may only be used when the
// stream is already byte-aligned.
//
// A token trailed by "[*][0-9]+" is repeated that many times.
//
// If the total bit-stream does not end on a byte-aligned edge, it is padded
// up to the nearest byte with 0 bits.
//
// Example BitGen string, for this library's 12-byte stream header:
//
//	X:4c5a3737 # magic "LZ77"
//	D8:16      # version 0x10
//	X:000000   # reserved
//	D16:4096   # window size
//	D16:64     # look-ahead size
func DecodeBitGen(str string) ([]byte, error) {
	var toks []string
	for _, s := range strings.Split(str, "\n") {
		if i := strings.IndexByte(s, '#'); i >= 0 {
			s = s[:i]
		}
		for _, t := range strings.Split(s, " ") {
			t = strings.TrimSpace(t)
			if len(t) > 0 {
				toks = append(toks, t)
			}
		}
	}

	var bw bitBuffer
	for _, t := range toks {
		rep := 1
		if reQnt.MatchString(t) {
			i := strings.LastIndexByte(t, '*')
			tt, tn := t[:i], t[i+1:]
			n, err := strconv.Atoi(tn)
			if err != nil {
				return nil, errors.New("testutil: invalid quantified token: " + t)
			}
			t, rep = tt, n
		}

		switch {
		case reBin.MatchString(t):
			var v uint64
			for _, b := range t {
				v <<= 1
				v |= uint64(b - '0')
			}
			for i := 0; i < rep; i++ {
				bw.WriteBits64(v, uint(len(t)))
			}
		case reDec.MatchString(t) || reHex.MatchString(t):
			i := strings.IndexByte(t, ':')
			tb, tn, tv := t[0], t[1:i], t[i+1:]

			base := 10
			if tb == 'H' {
				base = 16
			}

			n, err1 := strconv.Atoi(tn)
			v, err2 := strconv.ParseUint(tv, base, 64)
			if err1 != nil || err2 != nil || n > 64 {
				return nil, errors.New("testutil: invalid numeric token: " + t)
			}
			if n < 64 && v&((1<<uint(n))-1) != v {
				return nil, errors.New("testutil: integer overflow on token: " + t)
			}
			for i := 0; i < rep; i++ {
				bw.WriteBits64(v, uint(n))
			}
		case reRaw.MatchString(t):
			tx := t[2:]
			b, err := hex.DecodeString(tx)
			if err != nil {
				return nil, errors.New("testutil: invalid raw bytes token: " + t)
			}
			b = bytes.Repeat(b, rep)
			if _, err := bw.Write(b); err != nil {
				return nil, err
			}
		default:
			return nil, errors.New("testutil: invalid token: " + t)
		}
	}
	return bw.Bytes(), nil
}

// bitBuffer is a minimal most-significant-bit-first bit buffer, kept
// separate from internal/bitio to avoid a test-only import cycle.
type bitBuffer struct {
	b []byte
	m byte // next bit to set within b's last byte, MSB-first: 0x80, 0x40, ...
}

func (b *bitBuffer) Write(buf []byte) (int, error) {
	if b.m != 0x00 {
		return 0, errors.New("testutil: unaligned write")
	}
	b.b = append(b.b, buf...)
	return len(buf), nil
}

func (b *bitBuffer) WriteBits64(v uint64, n uint) {
	for i := n; i > 0; i-- {
		if b.m == 0x00 {
			b.m = 0x80
			b.b = append(b.b, 0x00)
		}
		if v&(1<<(i-1)) != 0 {
			b.b[len(b.b)-1] |= b.m
		}
		b.m >>= 1
	}
}

func (b *bitBuffer) Bytes() []byte {
	return b.b
}
