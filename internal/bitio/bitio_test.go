// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package bitio

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/dsnet-lz/lz77ppm/internal/lz77err"
	"github.com/dsnet-lz/lz77ppm/internal/testutil"
)

func TestWriterBytesRoundTrip(t *testing.T) {
	w := NewWriterBytes(nil, true)
	if _, err := w.WriteBits(0b101, 3); err != nil {
		t.Fatal(err)
	}
	if _, err := w.WriteBits(0xFF, 8); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	want, err := testutil.DecodeBitGen("101 H8:ff 00000")
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(w.Bytes(), want) {
		t.Errorf("Bytes() = %08b, want %08b", w.Bytes(), want)
	}
}

func TestWriterFixedBufferOutOfMemory(t *testing.T) {
	w := NewWriterBytes(make([]byte, 0, 1), false)
	if _, err := w.WriteBits(0xAB, 8); err != nil {
		t.Fatal(err)
	}
	_, err := w.WriteBits(0xCD, 8)
	var ie *lz77err.Error
	if !errors.As(err, &ie) || ie.Kind != lz77err.OutOfMemory {
		t.Fatalf("WriteBits() err = %v, want OutOfMemory", err)
	}
}

func TestWriterStream(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriterStream(&buf)
	for i := 0; i < 1000; i++ {
		if _, err := w.WriteBits(uint(i%2), 1); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	if got := buf.Len(); got != 125 {
		t.Fatalf("wrote %d bytes, want 125", got)
	}
}

func TestReaderBytesReadUint64(t *testing.T) {
	data, err := testutil.DecodeBitGen("H8:ff D4:5 000")
	if err != nil {
		t.Fatal(err)
	}
	r := NewReaderBytes(data)

	v, avail, err := r.ReadUint64(8)
	if err != nil || avail != 8 || v != 0xFF {
		t.Fatalf("ReadUint64(8) = %d, %d, %v; want 255, 8, nil", v, avail, err)
	}
	v, avail, err = r.ReadUint64(4)
	if err != nil || avail != 4 || v != 5 {
		t.Fatalf("ReadUint64(4) = %d, %d, %v; want 5, 4, nil", v, avail, err)
	}
	if r.ProcessedBits() != 12 {
		t.Fatalf("ProcessedBits() = %d, want 12", r.ProcessedBits())
	}
}

func TestReaderPeekDoesNotConsume(t *testing.T) {
	r := NewReaderBytes([]byte{0xF0})
	v1, _, err := r.PeekUint64(4)
	if err != nil {
		t.Fatal(err)
	}
	v2, _, err := r.PeekUint64(4)
	if err != nil {
		t.Fatal(err)
	}
	if v1 != v2 || v1 != 0xF {
		t.Fatalf("PeekUint64 not idempotent: %x, %x", v1, v2)
	}
	if r.ProcessedBits() != 0 {
		t.Fatalf("Peek consumed bits: ProcessedBits() = %d", r.ProcessedBits())
	}
}

func TestReaderStreamEOF(t *testing.T) {
	r := NewReaderStream(bytes.NewReader([]byte{0xAB}))
	v, avail, err := r.ReadUint64(8)
	if err != nil || avail != 8 || v != 0xAB {
		t.Fatalf("ReadUint64(8) = %d, %d, %v", v, avail, err)
	}
	_, avail, err = r.ReadUint64(8)
	if err != nil || avail != 0 {
		t.Fatalf("ReadUint64 past EOF = avail %d, err %v; want avail 0, err nil", avail, err)
	}
}

type errReader struct{ err error }

func (e errReader) Read([]byte) (int, error) { return 0, e.err }

func TestReaderIOError(t *testing.T) {
	r := NewReaderStream(errReader{errors.New("disk fell over")})
	_, _, err := r.PeekUint64(8)
	var ie *lz77err.Error
	if !errors.As(err, &ie) || ie.Kind != lz77err.IOError {
		t.Fatalf("PeekUint64() err = %v, want IOError", err)
	}
}

func TestWriterReaderRoundTripStream(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriterStream(&buf)
	values := []struct {
		v uint64
		n uint
	}{
		{0x1, 1}, {0x2A, 6}, {0xDEAD, 16}, {0, 3}, {0xFFFFFFFF, 32},
	}
	for _, tc := range values {
		if _, err := w.WriteBits(uint(tc.v), int(tc.n)); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	r := NewReaderStream(&buf)
	for _, tc := range values {
		got, avail, err := r.ReadUint64(int(tc.n))
		if err != nil || uint(avail) != tc.n || got != tc.v {
			t.Fatalf("ReadUint64(%d) = %d, %d, %v; want %d, %d, nil", tc.n, got, avail, err, tc.v, tc.n)
		}
	}
}

func TestReaderCompactsAcrossManyChunks(t *testing.T) {
	data := bytes.Repeat([]byte{0x5A}, readChunkBytes*3)
	r := NewReaderStream(bytes.NewReader(data))
	for i := 0; i < len(data); i++ {
		v, avail, err := r.ReadUint64(8)
		if err != nil || avail != 8 || byte(v) != 0x5A {
			t.Fatalf("byte %d: ReadUint64(8) = %#x, %d, %v", i, v, avail, err)
		}
	}
	if _, avail, err := r.ReadUint64(8); err != nil || avail != 0 {
		t.Fatalf("past end: avail = %d, err = %v", avail, err)
	}
}

func TestOnesCount(t *testing.T) {
	w := NewWriterBytes(nil, true)
	if _, err := w.WriteBits(0b1011, 4); err != nil { // three set bits
		t.Fatal(err)
	}
	if _, err := w.WriteBits(0xFF, 8); err != nil { // eight more
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	if got, want := w.OnesCount(), 11; got != want {
		t.Fatalf("OnesCount() = %d, want %d", got, want)
	}
}

func TestWriteBitsRejectsOversizedWidth(t *testing.T) {
	w := NewWriterBytes(nil, true)
	_, err := w.WriteBits(0, 65)
	var ie *lz77err.Error
	if !errors.As(err, &ie) || ie.Kind != lz77err.InvalidArgument {
		t.Fatalf("WriteBits(_, 65) err = %v, want InvalidArgument", err)
	}
}

var _ io.Reader = errReader{}
