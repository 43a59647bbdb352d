// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package lz77ppm

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/dsnet-lz/lz77ppm/internal/config"
	"github.com/dsnet-lz/lz77ppm/internal/cstream"
	"github.com/dsnet-lz/lz77ppm/internal/ustream"
)

func compressToBytes(t *testing.T, data []byte, p config.Params) []byte {
	t.Helper()
	u, err := ustream.NewFromBytes(data, p)
	if err != nil {
		t.Fatal(err)
	}
	c := cstream.NewWriterBytes(p, nil, true)
	if _, err := Compress(u, c, nil, uint64(len(data))); err != nil {
		t.Fatalf("Compress() = %v", err)
	}
	return append([]byte(nil), c.Bytes()...)
}

func decompressFromBytes(t *testing.T, compressed []byte) []byte {
	t.Helper()
	c := cstream.NewReaderBytes(compressed)
	u, err := ustream.NewToBytes(c, nil, true)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Decompress(c, u, nil, 0); err != nil {
		t.Fatalf("Decompress() = %v", err)
	}
	return append([]byte(nil), u.Bytes()...)
}

func TestCompressDecompressRoundTripMemory(t *testing.T) {
	tests := []struct {
		name string
		p    config.Params
		data []byte
	}{
		{"empty", config.Params{Window: 64, Lookahead: 16}, nil},
		{"single byte", config.Params{Window: 64, Lookahead: 16}, []byte("x")},
		{"repetitive", config.Params{Window: 256, Lookahead: 32}, bytes.Repeat([]byte("banana"), 200)},
		{"no repeats", config.Params{Window: 64, Lookahead: 8}, []byte("qwzxjkpv")},
		{"tiny window", config.Params{Window: 4, Lookahead: 2}, []byte("aaaaaaaaaaaaaaaaaaaa")},
		{"large window", config.Params{Window: 32768, Lookahead: 256}, bytes.Repeat([]byte("The quick brown fox jumps over the lazy dog. "), 500)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			compressed := compressToBytes(t, tc.data, tc.p)
			got := decompressFromBytes(t, compressed)
			if diff := cmp.Diff(tc.data, got); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

// TestDecompressIgnoresCallerGuessedParams guards against a decoder
// that trusts a caller-supplied config.Params instead of the header
// actually written by the encoder. It compresses with one Params and
// decompresses through the low-level ustream/cstream constructors with
// no Params of its own to get wrong: ustream.NewToBytes takes the
// cstream itself and reads window/look-ahead from its header once
// Decompress opens it, the way a CLI guessing -w/-l defaults before
// ever reading the real header must not be allowed to derail decoding.
func TestDecompressIgnoresCallerGuessedParams(t *testing.T) {
	p := config.Params{Window: 256, Lookahead: 32}
	data := bytes.Repeat([]byte("the header carries the real parameters "), 40)
	compressed := compressToBytes(t, data, p)

	c := cstream.NewReaderBytes(compressed)
	u, err := ustream.NewToBytes(c, nil, true)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Decompress(c, u, nil, 0); err != nil {
		t.Fatalf("Decompress() = %v", err)
	}
	if diff := cmp.Diff(data, u.Bytes()); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
	if got := u.Params(); got != p {
		t.Fatalf("u.Params() = %+v, want %+v (derived from the header)", got, p)
	}
}

func TestCompressDecompressRoundTripStream(t *testing.T) {
	p := config.Params{Window: 128, Lookahead: 32}
	data := bytes.Repeat([]byte("mississippi river "), 100)

	var compressed bytes.Buffer
	w, err := NewWriter(&compressed, p)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.Write(data); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	r, err := NewReader(&compressed)
	if err != nil {
		t.Fatal(err)
	}
	got, err := readAll(r)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(data, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func readAll(r *Reader) ([]byte, error) {
	var buf bytes.Buffer
	tmp := make([]byte, 4096)
	for {
		n, err := r.Read(tmp)
		buf.Write(tmp[:n])
		if err != nil {
			if errors.Is(err, io.EOF) {
				return buf.Bytes(), nil
			}
			return buf.Bytes(), err
		}
	}
}

func TestCompressEmptyReader(t *testing.T) {
	p := config.Params{Window: 64, Lookahead: 16}
	u, err := ustream.NewFromReader(strings.NewReader(""), p)
	if err != nil {
		t.Fatal(err)
	}
	c := cstream.NewWriterBytes(p, nil, true)
	n, err := Compress(u, c, nil, 0)
	if err != nil {
		t.Fatalf("Compress(empty) = %v", err)
	}
	if n <= 0 {
		t.Fatalf("Compress(empty) wrote %d bytes, want at least the header", n)
	}

	got := decompressFromBytes(t, c.Bytes())
	if len(got) != 0 {
		t.Fatalf("Decompress(empty) = %q, want empty", got)
	}
}

func TestDecompressRejectsCorruptHeader(t *testing.T) {
	c := cstream.NewReaderBytes([]byte("not a valid lz77ppm header!!"))
	u, err := ustream.NewToBytes(c, nil, true)
	if err != nil {
		t.Fatal(err)
	}
	_, err = Decompress(c, u, nil, 0)
	var ce *Error
	if !errors.As(err, &ce) || ce.Kind != CorruptStream {
		t.Fatalf("Decompress(corrupt header) err = %v, want CorruptStream", err)
	}
}

func TestCompressFixedOutputBufferOutOfMemory(t *testing.T) {
	p := config.Params{Window: 64, Lookahead: 16}
	data := bytes.Repeat([]byte("abcdefgh"), 1000)
	u, err := ustream.NewFromBytes(data, p)
	if err != nil {
		t.Fatal(err)
	}
	c := cstream.NewWriterBytes(p, make([]byte, 0, 4), false)
	_, err = Compress(u, c, nil, uint64(len(data)))
	var ce *Error
	if !errors.As(err, &ce) || ce.Kind != OutOfMemory {
		t.Fatalf("Compress(undersized fixed buffer) err = %v, want OutOfMemory", err)
	}
}

func TestDecompressUnexpectedEOFOnTruncatedStream(t *testing.T) {
	p := config.Params{Window: 128, Lookahead: 32}
	data := bytes.Repeat([]byte("truncate me please "), 50)
	compressed := compressToBytes(t, data, p)

	truncated := compressed[:len(compressed)/2]
	c := cstream.NewReaderBytes(truncated)
	u, err := ustream.NewToBytes(c, nil, true)
	if err != nil {
		t.Fatal(err)
	}
	_, err = Decompress(c, u, nil, 0)
	if err == nil {
		t.Fatal("Decompress(truncated) succeeded, want an error")
	}
	var ce *Error
	if errors.As(err, &ce) && ce.Kind != UnexpectedEOF && ce.Kind != CorruptStream {
		t.Fatalf("Decompress(truncated) err = %v, want UnexpectedEOF or CorruptStream", err)
	}
}

func TestProgressCallbackReportsMonotonicProgress(t *testing.T) {
	p := config.Params{Window: 64, Lookahead: 16}
	data := bytes.Repeat([]byte("progress"), 100)
	u, err := ustream.NewFromBytes(data, p)
	if err != nil {
		t.Fatal(err)
	}
	c := cstream.NewWriterBytes(p, nil, true)

	var last uint64
	var lastPercent float64
	calls := 0
	progress := func(processed uint64, percent float64) {
		calls++
		if processed < last {
			t.Errorf("processed regressed: %d -> %d", last, processed)
		}
		if percent < lastPercent {
			t.Errorf("percent regressed: %v -> %v", lastPercent, percent)
		}
		last, lastPercent = processed, percent
	}
	if _, err := Compress(u, c, progress, uint64(len(data))); err != nil {
		t.Fatal(err)
	}
	if calls == 0 {
		t.Fatal("progress callback was never called")
	}
	if last != uint64(len(data)) {
		t.Fatalf("final processed = %d, want %d", last, len(data))
	}
}
