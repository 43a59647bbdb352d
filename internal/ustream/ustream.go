// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// Package ustream implements the uncompressed side of the codec: the
// sliding window, the look-ahead buffer, and the search tree used to
// find matches while compressing, or to replay tokens while
// decompressing. It is a direct port of
// _examples/original_source/liblz77ppm/src/ustream.c, with the
// original's raw pointer arithmetic replaced by explicit integer
// offsets into a Go byte slice (see DESIGN.md's "Circular index
// mapping" note).
package ustream

import (
	"io"

	"github.com/dsnet-lz/lz77ppm/internal/config"
	"github.com/dsnet-lz/lz77ppm/internal/cstream"
	"github.com/dsnet-lz/lz77ppm/internal/lengthcode"
	"github.com/dsnet-lz/lz77ppm/internal/lz77err"
	"github.com/dsnet-lz/lz77ppm/internal/searchtree"
	"github.com/dsnet-lz/lz77ppm/internal/token"
)

// descriptorBufferFactor mirrors the original's data_size = (window +
// lookahead) * 10 sizing rule for a descriptor-backed input stream.
const descriptorBufferFactor = 10

// Stream owns the sliding window, the look-ahead buffer (input side
// only), and the search tree (input side only) over a single backing
// byte slice.
type Stream struct {
	isInput bool
	params  config.Params

	buf     []byte
	dataLen int // number of valid bytes currently held in buf, from index 0

	windowStart int
	windowCur   int
	windowMax   int

	lookaheadPos int // input side only: offset of the look-ahead's first byte
	lookaheadCur int
	lookaheadMax int

	tree *searchtree.Tree
	lc   *lengthcode.Code

	src io.Reader // input side, descriptor-backed
	dst io.Writer // output side, descriptor-backed

	// cs is the paired compressed stream an output-side Stream reads
	// its window/look-ahead parameters from once cs is open, rather
	// than from a value the caller supplied up front. This mirrors
	// ustream_open() taking the already-opened cstream as its source
	// of window_maxsize/lookahead_maxsize instead of separate
	// arguments.
	cs *cstream.Stream

	canRealloc bool // output side, memory-backed

	processed uint64
}

// NewFromBytes creates an input stream reading from a fixed in-memory
// buffer.
func NewFromBytes(data []byte, p config.Params) (*Stream, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &Stream{
		isInput:      true,
		params:       p,
		buf:          data,
		dataLen:      len(data),
		windowMax:    int(p.Window),
		lookaheadMax: int(p.Lookahead),
	}, nil
}

// NewFromReader creates an input stream that pulls bytes from r on
// demand, buffering at most (window+lookahead)*10 bytes at a time.
func NewFromReader(r io.Reader, p config.Params) (*Stream, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	size := (int(p.Window) + int(p.Lookahead)) * descriptorBufferFactor
	return &Stream{
		isInput:      true,
		params:       p,
		buf:          make([]byte, size),
		src:          r,
		windowMax:    int(p.Window),
		lookaheadMax: int(p.Lookahead),
	}, nil
}

// NewToBytes creates an output stream that appends decompressed bytes
// to buf. Its window/look-ahead parameters are not given directly but
// read from c's header once c is open (see Open), the way
// ustream_open() reads them from the paired cstream in the original —
// a decompressor's window size is a property of the compressed stream
// it is decoding, never a value the caller should have to guess. If
// canRealloc is false, buf's capacity is a hard ceiling.
func NewToBytes(c *cstream.Stream, buf []byte, canRealloc bool) (*Stream, error) {
	if c == nil {
		return nil, lz77err.New(lz77err.InvalidArgument, "output stream requires its paired compressed stream")
	}
	return &Stream{
		cs:         c,
		buf:        buf[:0],
		canRealloc: canRealloc,
	}, nil
}

// NewToWriter creates an output stream that flushes bytes older than
// the current window to w as they fall out of range. Its window/
// look-ahead parameters are read from c's header once c is open, per
// NewToBytes.
func NewToWriter(w io.Writer, c *cstream.Stream) (*Stream, error) {
	if c == nil {
		return nil, lz77err.New(lz77err.InvalidArgument, "output stream requires its paired compressed stream")
	}
	return &Stream{
		cs:         c,
		dst:        w,
		canRealloc: true,
	}, nil
}

// Open fills the look-ahead buffer (input side) and initializes the
// search tree and this stream's own length code (used to decide
// whether a match is worth encoding as a phrase). On an output-side
// Stream constructed with NewToBytes/NewToWriter it also derives
// Params from the already-opened paired cstream.Stream first.
func (s *Stream) Open() error {
	if s.cs != nil {
		s.params = s.cs.Params()
		s.windowMax = int(s.params.Window)
		s.lookaheadMax = int(s.params.Lookahead)
		if s.dst != nil && cap(s.buf) == 0 {
			s.buf = make([]byte, 0, s.windowMax*descriptorBufferFactor)
		}
	}
	d := s.params.Derive()
	s.lc = lengthcode.New(d.MinLen, int(s.params.Lookahead))
	if s.isInput {
		if s.src != nil {
			n, err := io.ReadFull(s.src, s.buf)
			if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
				return lz77err.Wrap(lz77err.IOError, "filling look-ahead buffer", err)
			}
			s.dataLen = n
		}
		s.lookaheadCur = s.dataLen
		if s.lookaheadCur > s.lookaheadMax {
			s.lookaheadCur = s.lookaheadMax
		}
		s.tree = searchtree.New(s.windowMax)
	}
	return nil
}

// Bytes returns the buffer owned by a memory-backed stream.
func (s *Stream) Bytes() []byte {
	if s.isInput {
		return s.buf[:s.dataLen]
	}
	return s.buf
}

// ProcessedBytes reports the total number of bytes consumed (input
// side) or produced (output side) so far.
func (s *Stream) ProcessedBytes() uint64 { return s.processed }

// Params returns the window/look-ahead configuration: the one an
// input-side s was constructed with, or, for an output-side s, the one
// read from the paired compressed stream's header during Open.
func (s *Stream) Params() config.Params { return s.params }

// Close flushes any buffered output for a descriptor-backed output
// stream.
func (s *Stream) Close() error {
	if !s.isInput && s.dst != nil && len(s.buf) > 0 {
		if _, err := s.dst.Write(s.buf); err != nil {
			return lz77err.Wrap(lz77err.IOError, "flushing output stream", err)
		}
		s.buf = s.buf[:0]
	}
	return nil
}

// slotFor returns the arena slot associated with buffer offset pos.
func (s *Stream) slotFor(pos int) int {
	return ((pos % s.windowMax) + s.windowMax) % s.windowMax
}

// posForSlot recovers the buffer offset currently associated with a
// slot, given the window's current start offset.
func (s *Stream) posForSlot(slot int) int {
	begin := s.slotFor(s.windowStart)
	k := ((slot - begin) % s.windowMax + s.windowMax) % s.windowMax
	return s.windowStart + k
}

// cmp is the searchtree.Comparator over this stream's window bytes.
// The slot being inserted always belongs to the look-ahead position;
// once the window is full that slot is shared with the oldest window
// position, so currSlot alone cannot tell the two apart.
func (s *Stream) cmp(testSlot, currSlot int) (int, int) {
	testPos := s.posForSlot(testSlot)
	currPos := s.lookaheadPos
	n := s.lookaheadCur
	for i := 0; i < n; i++ {
		a, b := s.buf[currPos+i], s.buf[testPos+i]
		if a != b {
			return i, int(a) - int(b)
		}
	}
	return n, 0
}

// offsetFromSlot returns the window-relative offset (0..windowCur) of
// the position associated with slot.
func (s *Stream) offsetFromSlot(slot int) int {
	return s.posForSlot(slot) - s.windowStart
}

// NextToken produces the next compression token: a Symbol, a Phrase,
// or io.EOF once the look-ahead is exhausted.
func (s *Stream) NextToken() (token.Token, error) {
	if s.lookaheadCur == 0 {
		return token.Token{}, io.EOF
	}

	currSlot := s.slotFor(s.lookaheadPos)
	var tok token.Token
	var count int

	if s.windowCur == 0 {
		s.tree.SeedRoot(currSlot)
		tok = token.NewSymbol(s.buf[s.lookaheadPos])
		count = 1
	} else {
		length, bestSlot := s.tree.FindAndInsert(currSlot, s.lookaheadCur, s.cmp)
		if length == 0 || !s.lc.CanEncode(length) {
			tok = token.NewSymbol(s.buf[s.lookaheadPos])
			count = 1
		} else {
			offset := s.offsetFromSlot(bestSlot)
			tok = token.NewPhrase(uint16(offset), uint16(length))
			count = length
		}
	}

	if err := s.advance(count); err != nil {
		return token.Token{}, err
	}
	s.processed += uint64(count)
	return tok, nil
}

// advance consumes count bytes from the look-ahead, sliding the window
// and maintaining the search tree, per §4.4 step 6.
func (s *Stream) advance(count int) error {
	for i := 0; i < count; i++ {
		if i < count-1 {
			nextSlot := s.slotFor(s.lookaheadPos + 1)
			s.tree.Delete(nextSlot)
		}

		if s.windowCur == s.windowMax {
			s.windowStart++
		} else {
			s.windowCur++
		}
		s.lookaheadPos++

		dataEnd := s.dataLen
		lkahEnd := s.lookaheadPos + s.lookaheadCur
		if lkahEnd > dataEnd {
			eof := s.lookaheadCur < s.lookaheadMax
			canMove := s.windowStart > 0
			if s.src != nil && !eof && canMove {
				if err := s.compactAndRefill(dataEnd); err != nil {
					return err
				}
			} else {
				s.lookaheadCur--
			}
		}

		if i < count-1 {
			curSlot := s.slotFor(s.lookaheadPos)
			s.tree.FindAndInsert(curSlot, s.lookaheadCur, s.cmp)
		}
	}
	return nil
}

// compactAndRefill discards bytes before the window start, refills the
// freed space from the source, and rotates the search tree to match
// the resulting relabelling of slot->position.
func (s *Stream) compactAndRefill(dataEnd int) error {
	lookahSize := dataEnd - s.lookaheadPos
	dataSize := s.windowMax + lookahSize

	copy(s.buf, s.buf[s.windowStart:s.windowStart+dataSize])

	newLookahead := s.windowMax
	dest := newLookahead + lookahSize
	maxCount := len(s.buf) - dataSize

	n, err := s.src.Read(s.buf[dest : dest+maxCount])
	if err != nil && err != io.EOF {
		return lz77err.Wrap(lz77err.IOError, "refilling look-ahead buffer", err)
	}

	shift := s.windowStart % s.windowMax
	s.tree.Rotate(shift)

	s.windowStart = 0
	s.lookaheadPos = newLookahead
	s.dataLen = dataSize + n
	s.lookaheadCur = lookahSize + n
	if s.lookaheadCur > s.lookaheadMax {
		s.lookaheadCur = s.lookaheadMax
	}
	return nil
}

// AppendToken replays a decompression token, writing bytes to the
// output buffer and sliding the window. tok must be Symbol or Phrase;
// Terminator tokens are handled by the codec and never reach here.
func (s *Stream) AppendToken(tok token.Token) error {
	var length int
	switch tok.Kind {
	case token.Symbol:
		length = 1
	case token.Phrase:
		length = int(tok.Length)
		if int(tok.Offset) >= s.windowCur || length > s.lookaheadMax {
			return lz77err.New(lz77err.CorruptStream, "phrase offset/length out of range")
		}
	default:
		return lz77err.New(lz77err.InvalidArgument, "AppendToken called with a Terminator token")
	}

	if err := s.ensureCapacity(length); err != nil {
		return err
	}

	end := len(s.buf)
	if tok.Kind == token.Symbol {
		s.buf = append(s.buf, tok.Next)
	} else {
		offset, srcStart := int(tok.Offset), s.windowStart+int(tok.Offset)
		s.buf = s.buf[:end+length]
		if offset+length > s.windowCur {
			for i := 0; i < length; i++ {
				s.buf[end+i] = s.buf[srcStart+i]
			}
		} else {
			copy(s.buf[end:end+length], s.buf[srcStart:srcStart+length])
		}
	}

	s.slideOutput(length)
	s.processed += uint64(length)
	return nil
}

// ensureCapacity makes room for n more bytes at the end of the output
// buffer: growing it (memory sink), flushing and compacting it
// (descriptor sink), or failing with OutOfMemory (fixed memory sink).
func (s *Stream) ensureCapacity(n int) error {
	end := len(s.buf)
	if end+n <= cap(s.buf) {
		return nil
	}

	if s.dst != nil {
		flushLen := end - s.windowCur
		if flushLen > 0 {
			if _, err := s.dst.Write(s.buf[:flushLen]); err != nil {
				return lz77err.Wrap(lz77err.IOError, "flushing decompressed stream", err)
			}
			copy(s.buf, s.buf[flushLen:end])
			s.buf = s.buf[:end-flushLen]
			s.windowStart = 0
		}
		if len(s.buf)+n > cap(s.buf) {
			grown := make([]byte, len(s.buf), growSize(cap(s.buf)+n))
			copy(grown, s.buf)
			s.buf = grown
		}
		return nil
	}

	if !s.canRealloc {
		return lz77err.New(lz77err.OutOfMemory, "fixed-size output buffer exhausted")
	}
	grown := make([]byte, len(s.buf), growSize(cap(s.buf)+n))
	copy(grown, s.buf)
	s.buf = grown
	return nil
}

func growSize(size int) int {
	g := size * 11 / 10
	if g < 1024 {
		g = 1024
	}
	return g
}

// slideOutput grows or slides the output-side window after n bytes
// have been appended.
func (s *Stream) slideOutput(n int) {
	if s.windowCur == s.windowMax {
		s.windowStart += n
	} else {
		maxIncrement := s.windowMax - s.windowCur
		if n <= maxIncrement {
			s.windowCur += n
		} else {
			s.windowStart += n - maxIncrement
			s.windowCur = s.windowMax
		}
	}
}
