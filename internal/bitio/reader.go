// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package bitio

import (
	"io"

	"github.com/dsnet/golib/bits"

	"github.com/dsnet-lz/lz77ppm/internal/lz77err"
)

// Reader satisfies bits.BitsReader, the interface xflate/meta's own
// decoders are written against, so any peek/consume-free consumer in
// that mold can be handed one of these instead of a bits.Reader.
var _ bits.BitsReader = (*Reader)(nil)

// Reader reads MSB-first bits, either from a fixed in-memory buffer or
// from an underlying io.Reader that is pulled from on demand.
type Reader struct {
	buf       []byte    // backing bytes; end is always a multiple of 8 bits
	pos       uint64    // bit index of the next unread bit within buf
	end       uint64    // bit index one past the last valid bit within buf
	processed uint64    // total bits consumed so far
	src       io.Reader // nil for a fixed memory-backed reader
	srcEOF    bool
	ioErr     error
}

// NewReaderBytes creates a Reader over a fixed in-memory buffer.
func NewReaderBytes(data []byte) *Reader {
	return &Reader{buf: data, end: uint64(len(data)) * 8}
}

// NewReaderStream creates a Reader that pulls bytes from r on demand.
func NewReaderStream(r io.Reader) *Reader {
	return &Reader{buf: make([]byte, 0, minBufBytes), src: r}
}

// ProcessedBits reports the total number of bits consumed so far.
func (r *Reader) ProcessedBits() uint64 { return r.processed }

// compact discards whole bytes already consumed, shifting the buffer's
// remaining valid bytes to the front, mirroring the descriptor-backed
// original's compaction step before every refill.
func (r *Reader) compact() {
	byteOff := r.pos / 8
	if byteOff == 0 {
		return
	}
	validBytes := r.end/8 - byteOff
	copy(r.buf, r.buf[byteOff:r.end/8])
	r.buf = r.buf[:validBytes]
	r.pos -= byteOff * 8
	r.end -= byteOff * 8
}

// ensure grows the buffer, pulling from src, until at least n bits are
// available past pos, src is exhausted, or an I/O error occurs.
func (r *Reader) ensure(n uint64) {
	if r.src == nil {
		return
	}
	for r.end-r.pos < n && !r.srcEOF {
		r.compact()
		chunk := make([]byte, readChunkBytes)
		nRead, err := r.src.Read(chunk)
		if nRead > 0 {
			r.buf = append(r.buf, chunk[:nRead]...)
			r.end += uint64(nRead) * 8
		}
		if err != nil {
			r.srcEOF = true
			if err != io.EOF {
				r.ioErr = err
			}
		}
	}
}

// Peek copies up to n bits from the stream, without consuming them,
// into dst starting at bit position startBit (MSB-first). dst must
// already be zeroed in the affected range: Peek only ORs in set bits,
// never clears any. It returns the number of bits actually available,
// which is less than n only at EOF.
func (r *Reader) Peek(dst []byte, startBit, n int) (int, error) {
	r.ensure(uint64(n))
	if r.ioErr != nil {
		return 0, lz77err.Wrap(lz77err.IOError, "reading compressed stream", r.ioErr)
	}
	avail := r.end - r.pos
	toCopy := minU64(uint64(n), avail)
	for i := uint64(0); i < toCopy; i++ {
		if getBit(r.buf, r.pos+i) {
			setBit(dst, uint64(startBit)+i, true)
		}
	}
	return int(toCopy), nil
}

// Consume advances past n bits, clipped to the number currently
// buffered, and returns the number actually consumed.
func (r *Reader) Consume(n int) int {
	avail := r.end - r.pos
	c := minU64(uint64(n), avail)
	r.pos += c
	r.processed += c
	return int(c)
}

// Read peeks up to n bits into dst then consumes exactly that many.
func (r *Reader) Read(dst []byte, startBit, n int) (int, error) {
	got, err := r.Peek(dst, startBit, n)
	if err != nil {
		return 0, err
	}
	r.Consume(got)
	return got, nil
}

// PeekUint64 peeks up to n bits (n <= 64) and packs them MSB-first into
// the low n bits of the returned value. avail reports how many bits
// were actually available.
func (r *Reader) PeekUint64(n int) (val uint64, avail int, err error) {
	var tmp [8]byte
	avail, err = r.Peek(tmp[:], 0, n)
	if err != nil {
		return 0, 0, err
	}
	for i := 0; i < n; i++ {
		val <<= 1
		if getBit(tmp[:], uint64(i)) {
			val |= 1
		}
	}
	return val, avail, nil
}

// ReadUint64 is PeekUint64 followed by consuming the bits actually read.
func (r *Reader) ReadUint64(n int) (val uint64, avail int, err error) {
	val, avail, err = r.PeekUint64(n)
	if err != nil {
		return 0, 0, err
	}
	r.Consume(avail)
	return val, avail, nil
}

// ReadBits implements bits.BitsReader in terms of ReadUint64.
func (r *Reader) ReadBits(num int) (val uint, n int, err error) {
	v, avail, err := r.ReadUint64(num)
	return uint(v), avail, err
}
