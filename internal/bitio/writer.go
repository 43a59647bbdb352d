// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package bitio

import (
	"io"

	"github.com/dsnet/golib/bits"

	"github.com/dsnet-lz/lz77ppm/internal/lz77err"
)

// Writer satisfies bits.BitsWriter, the interface xflate/meta's own
// encoders are written against.
var _ bits.BitsWriter = (*Writer)(nil)

// Writer writes MSB-first bits, buffering up to 64 pending bits before
// flushing whole bytes to a growable/fixed in-memory buffer or to an
// underlying io.Writer.
type Writer struct {
	buf        []byte
	canRealloc bool
	fixed      bool // memory-backed with a caller-supplied, non-growable buffer
	dst        io.Writer

	cached      uint64
	cachedNBits uint

	processed uint64
}

// NewWriterBytes creates a Writer over an in-memory buffer. If
// canRealloc is false, the buffer's capacity is a hard limit and
// WriteBits fails with an out-of-memory error once it is exhausted.
func NewWriterBytes(buf []byte, canRealloc bool) *Writer {
	return &Writer{buf: buf[:0], canRealloc: canRealloc, fixed: !canRealloc}
}

// NewWriterStream creates a Writer that flushes completed bytes to w.
func NewWriterStream(w io.Writer) *Writer {
	return &Writer{dst: w, canRealloc: true}
}

// ProcessedBits reports the number of bits written or cached so far.
func (w *Writer) ProcessedBits() uint64 { return w.processed + uint64(w.cachedNBits) }

// Bytes returns the currently owned buffer of a memory-backed Writer.
// Bits still cached are not in it until Close flushes them, padded to
// a whole byte.
func (w *Writer) Bytes() []byte { return w.buf }

// OnesCount returns the number of set bits among the whole bytes
// already flushed to Bytes(), for reporting output bit density; it
// does not include any bits still cached and unflushed.
func (w *Writer) OnesCount() int { return bits.Count(w.buf) }

// appendByte appends a single completed byte to the buffer, growing or
// flushing it as required.
func (w *Writer) appendByte(b byte) error {
	if w.dst != nil {
		w.buf = append(w.buf, b)
		return nil
	}
	if len(w.buf) == cap(w.buf) {
		if w.fixed {
			return errOutOfMemory
		}
		grown := make([]byte, len(w.buf), growSize(cap(w.buf)))
		copy(grown, w.buf)
		w.buf = grown
	}
	w.buf = append(w.buf, b)
	return nil
}

// WriteBits writes the low num bits of val (num <= 64), most
// significant of those bits first, and implements bits.BitsWriter. It
// returns the number of bits actually written, which is always num on
// a nil error.
func (w *Writer) WriteBits(val uint, num int) (int, error) {
	if num < 0 || num > 64 {
		return 0, lz77err.Newf(lz77err.InvalidArgument, "cannot write %d bits at once", num)
	}
	value, nbits := uint64(val), uint(num)
	for i := uint(0); i < nbits; i++ {
		bit := (value >> (nbits - 1 - i)) & 1
		w.cached = (w.cached << 1) | bit
		w.cachedNBits++
		if w.cachedNBits == 64 {
			if err := w.flushWholeBytes(); err != nil {
				return 0, err
			}
		}
	}
	if err := w.flushWholeBytes(); err != nil {
		return 0, err
	}
	return num, nil
}

// flushWholeBytes emits every whole byte currently cached, left in
// place if fewer than 8 bits remain buffered.
func (w *Writer) flushWholeBytes() error {
	for w.cachedNBits >= 8 {
		shift := w.cachedNBits - 8
		b := byte(w.cached >> shift)
		if err := w.appendByte(b); err != nil {
			return err
		}
		w.processed += 8
		w.cachedNBits -= 8
		w.cached &= (uint64(1) << w.cachedNBits) - 1
	}
	if w.dst != nil && len(w.buf) > 0 {
		if _, err := w.dst.Write(w.buf); err != nil {
			return lz77err.Wrap(lz77err.IOError, "writing compressed stream", err)
		}
		w.buf = w.buf[:0]
	}
	return nil
}

// Close flushes any remaining cached bits, right-padded with zero bits
// to the next byte boundary.
func (w *Writer) Close() error {
	if w.cachedNBits > 0 {
		pad := 8 - w.cachedNBits%8
		if pad == 8 {
			pad = 0
		}
		if err := bits.WriteSameBit(w, false, int(pad)); err != nil {
			return err
		}
	}
	if w.dst != nil && len(w.buf) > 0 {
		if _, err := w.dst.Write(w.buf); err != nil {
			return lz77err.Wrap(lz77err.IOError, "writing compressed stream", err)
		}
		w.buf = w.buf[:0]
	}
	return nil
}
