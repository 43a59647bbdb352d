// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package lz77ppm

import (
	"io"

	"github.com/dsnet-lz/lz77ppm/internal/config"
	"github.com/dsnet-lz/lz77ppm/internal/cstream"
	"github.com/dsnet-lz/lz77ppm/internal/ustream"
)

// Reader decompresses a stream produced by Writer, in the style of
// compress/flate's Reader: bytes become available as soon as they are
// decoded, without waiting for the whole stream.
//
// The token loop that drives ustream/cstream is push-based end to end
// (each side pulls from or pushes to the other as fast as it can), so
// Reader runs it on a background goroutine feeding an io.Pipe; Read
// blocks on that pipe the same way it would block reading straight off
// the underlying compressed stream.
type Reader struct {
	pr   *io.PipeReader
	done chan error
}

// NewReader opens r as a compressed stream, reading and validating its
// header eagerly (as flate.NewReader does), and returns a Reader ready
// to produce decompressed bytes.
func NewReader(r io.Reader) (*Reader, error) {
	c := cstream.NewReaderStream(r)
	if err := c.Open(); err != nil {
		return nil, fromInternal(err)
	}

	pr, pw := io.Pipe()
	rd := &Reader{pr: pr, done: make(chan error, 1)}
	go rd.run(c, pw)
	return rd, nil
}

func (rd *Reader) run(c *cstream.Stream, pw *io.PipeWriter) {
	u, err := ustream.NewToWriter(pw, c)
	if err != nil {
		pw.CloseWithError(err)
		rd.done <- fromInternal(err)
		return
	}
	if err := u.Open(); err != nil {
		pw.CloseWithError(err)
		rd.done <- fromInternal(err)
		return
	}
	err = decompressLoop(c, u, nil, 0)
	if err == nil {
		err = u.Close()
	}
	pw.CloseWithError(err)
	rd.done <- fromInternal(err)
}

// Read implements io.Reader, blocking until decompressed bytes are
// available, the stream ends, or a decode error occurs.
func (rd *Reader) Read(p []byte) (int, error) { return rd.pr.Read(p) }

// Close releases the resources backing rd. It does not wait for
// decompression to finish; a partially-read Reader may still have a
// goroutine unwinding until its underlying source is drained or fails.
func (rd *Reader) Close() error {
	return rd.pr.Close()
}

// Writer compresses bytes written to it and writes the result to w, in
// the style of compress/flate's Writer. Write blocks until the
// background compressor has read its bytes; Close must be called to
// flush the final phrase and terminator token.
type Writer struct {
	pw   *io.PipeWriter
	done chan error
}

// NewWriter opens w as a compressed stream described by p, writing its
// header immediately, and returns a Writer ready to accept bytes.
func NewWriter(w io.Writer, p config.Params) (*Writer, error) {
	c := cstream.NewWriterStream(w, p)
	if err := c.Open(); err != nil {
		return nil, fromInternal(err)
	}

	pr, pw := io.Pipe()
	wr := &Writer{pw: pw, done: make(chan error, 1)}
	go wr.run(c, p, pr)
	return wr, nil
}

func (wr *Writer) run(c *cstream.Stream, p config.Params, pr *io.PipeReader) {
	u, err := ustream.NewFromReader(pr, p)
	if err != nil {
		pr.CloseWithError(err)
		wr.done <- fromInternal(err)
		return
	}
	if err := u.Open(); err != nil {
		pr.CloseWithError(err)
		wr.done <- fromInternal(err)
		return
	}
	err = compressLoop(u, c, nil, 0)
	if err == nil {
		err = c.Close()
	}
	pr.CloseWithError(err)
	wr.done <- fromInternal(err)
}

// Write implements io.Writer, blocking until the background compressor
// has consumed p.
func (wr *Writer) Write(p []byte) (int, error) { return wr.pw.Write(p) }

// Close signals end of input and waits for the background compressor
// to emit the terminator token and flush w, returning its error if
// any.
func (wr *Writer) Close() error {
	wr.pw.Close()
	return <-wr.done
}
