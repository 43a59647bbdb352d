// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// Package cstream implements the compressed side of the codec: the
// 12-byte stream header and the tokenized bit layout described in
// _examples/original_source/liblz77ppm/src/cstream.c.
package cstream

import (
	"encoding/binary"
	"io"

	"github.com/dsnet-lz/lz77ppm/internal/bitio"
	"github.com/dsnet-lz/lz77ppm/internal/config"
	"github.com/dsnet-lz/lz77ppm/internal/lengthcode"
	"github.com/dsnet-lz/lz77ppm/internal/lz77err"
	"github.com/dsnet-lz/lz77ppm/internal/token"
)

var magic = [4]byte{'L', 'Z', '7', '7'}

const version = 0x10
const headerSize = 12

// Stream wraps a bitio.Reader or bitio.Writer with the header and
// token framing above it. It does not own a *lengthcode.Code: the
// caller (the root package's Compress/Decompress) derives one from
// the stream's Params and passes it to WriteToken/ReadToken, since the
// same Code instance is also what the paired ustream.Stream uses to
// decide symbol-vs-phrase, and both sides must agree on it.
type Stream struct {
	r *bitio.Reader
	w *bitio.Writer

	params config.Params
	wbits  uint
}

// NewReaderBytes creates a Stream that reads a compressed stream from
// a fixed in-memory buffer.
func NewReaderBytes(data []byte) *Stream {
	return &Stream{r: bitio.NewReaderBytes(data)}
}

// NewReaderStream creates a Stream that reads a compressed stream from
// an io.Reader.
func NewReaderStream(r io.Reader) *Stream {
	return &Stream{r: bitio.NewReaderStream(r)}
}

// NewWriterBytes creates a Stream that writes a compressed stream
// described by p to an in-memory buffer, growing it unless canRealloc
// is false.
func NewWriterBytes(p config.Params, buf []byte, canRealloc bool) *Stream {
	return &Stream{w: bitio.NewWriterBytes(buf, canRealloc), params: p}
}

// NewWriterStream creates a Stream that writes a compressed stream
// described by p to an io.Writer.
func NewWriterStream(w io.Writer, p config.Params) *Stream {
	return &Stream{w: bitio.NewWriterStream(w), params: p}
}

// Params returns the window/look-ahead parameters read from (or
// written to) the header. Only meaningful after Open.
func (s *Stream) Params() config.Params { return s.params }

// Open reads and validates the 12-byte header (reader side) or emits
// it from the Params supplied at construction (writer side).
func (s *Stream) Open() error {
	if s.r != nil {
		return s.openReader()
	}
	return s.openWriter()
}

func (s *Stream) openReader() error {
	buf := make([]byte, headerSize)
	got, err := readBytes(s.r, buf)
	if err != nil {
		return err
	}
	if got < headerSize {
		return lz77err.New(lz77err.CorruptStream, "truncated header")
	}
	if buf[0] != magic[0] || buf[1] != magic[1] || buf[2] != magic[2] || buf[3] != magic[3] {
		return lz77err.New(lz77err.CorruptStream, "bad magic")
	}
	if buf[4] != version {
		return lz77err.Newf(lz77err.CorruptStream, "unsupported version 0x%02x", buf[4])
	}
	p := config.Params{
		Window:    binary.BigEndian.Uint16(buf[8:10]),
		Lookahead: binary.BigEndian.Uint16(buf[10:12]),
	}
	if err := p.Validate(); err != nil {
		return lz77err.Wrap(lz77err.CorruptStream, "invalid header parameters", err)
	}
	s.params = p
	s.wbits = p.Derive().WBits
	return nil
}

func (s *Stream) openWriter() error {
	if err := s.params.Validate(); err != nil {
		return err
	}
	s.wbits = s.params.Derive().WBits

	var buf [headerSize]byte
	copy(buf[0:4], magic[:])
	buf[4] = version
	binary.BigEndian.PutUint16(buf[8:10], s.params.Window)
	binary.BigEndian.PutUint16(buf[10:12], s.params.Lookahead)
	for _, b := range buf {
		if _, err := s.w.WriteBits(uint(b), 8); err != nil {
			return err
		}
	}
	return nil
}

// readBytes fills buf entirely from r's bit stream, byte by byte.
func readBytes(r *bitio.Reader, buf []byte) (int, error) {
	for i := range buf {
		v, avail, err := r.ReadUint64(8)
		if err != nil {
			return i, err
		}
		if avail < 8 {
			return i, nil
		}
		buf[i] = byte(v)
	}
	return len(buf), nil
}

// ProcessedBits reports the total number of bits read or written so
// far, header included.
func (s *Stream) ProcessedBits() uint64 {
	if s.r != nil {
		return s.r.ProcessedBits()
	}
	return s.w.ProcessedBits()
}

// Bytes returns the buffer owned by a memory-backed writer Stream.
func (s *Stream) Bytes() []byte { return s.w.Bytes() }

// OnesCount reports the number of set bits in a memory-backed writer
// Stream's buffer, a coarse output-density diagnostic.
func (s *Stream) OnesCount() int { return s.w.OnesCount() }

// Close flushes a writer Stream. It is a no-op for a reader Stream.
func (s *Stream) Close() error {
	if s.w != nil {
		return s.w.Close()
	}
	return nil
}

// WriteToken emits tok in the wire format from spec §4.5: a Symbol is
// `0` followed by 8 literal bits; a Phrase or Terminator is `1`
// followed by a wbits-wide offset (zero for a Terminator) and lc's
// encoding of the match length (zero for a Terminator).
func (s *Stream) WriteToken(tok token.Token, lc *lengthcode.Code) error {
	switch tok.Kind {
	case token.Symbol:
		if _, err := s.w.WriteBits(0, 1); err != nil {
			return err
		}
		_, err := s.w.WriteBits(uint(tok.Next), 8)
		return err
	case token.Phrase:
		if _, err := s.w.WriteBits(1, 1); err != nil {
			return err
		}
		if _, err := s.w.WriteBits(uint(tok.Offset), int(s.wbits)); err != nil {
			return err
		}
		return s.writeLength(lc, int(tok.Length))
	case token.Terminator:
		if _, err := s.w.WriteBits(1, 1); err != nil {
			return err
		}
		if _, err := s.w.WriteBits(0, int(s.wbits)); err != nil {
			return err
		}
		return s.writeLength(lc, 0)
	default:
		return lz77err.New(lz77err.InvalidArgument, "unknown token kind")
	}
}

func (s *Stream) writeLength(lc *lengthcode.Code, v int) error {
	code, nbits := lc.Encode(v)
	_, err := s.w.WriteBits(uint(code), int(nbits))
	return err
}

// ReadToken decodes the next token from the wire, or io.EOF if the
// stream ends before any bit of a new token is available.
func (s *Stream) ReadToken(lc *lengthcode.Code) (token.Token, error) {
	bit, avail, err := s.r.ReadUint64(1)
	if err != nil {
		return token.Token{}, err
	}
	if avail < 1 {
		return token.Token{}, io.EOF
	}
	if bit == 0 {
		v, avail, err := s.r.ReadUint64(8)
		if err != nil {
			return token.Token{}, err
		}
		if avail < 8 {
			return token.Token{}, lz77err.New(lz77err.UnexpectedEOF, "truncated symbol token")
		}
		return token.NewSymbol(byte(v)), nil
	}

	offset, avail, err := s.r.ReadUint64(int(s.wbits))
	if err != nil {
		return token.Token{}, err
	}
	if uint(avail) < s.wbits {
		return token.Token{}, lz77err.New(lz77err.UnexpectedEOF, "truncated phrase offset")
	}

	length, ok, err := lc.Decode(s.r)
	if err != nil {
		return token.Token{}, err
	}
	if !ok {
		return token.Token{}, lz77err.New(lz77err.UnexpectedEOF, "truncated phrase length")
	}
	if length == 0 {
		return token.NewTerminator(), nil
	}
	return token.NewPhrase(uint16(offset), uint16(length)), nil
}
