// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// +build ignore

// Command lz77ppmbench compares this module's codec against
// github.com/klauspost/compress/flate and github.com/ulikunitz/xz on a
// single input file, reporting compression ratio and encode/decode
// throughput for each. It is a scaled-down, single-format rendition of
// internal/tool/bench's multi-codec harness: that tool compares many
// implementations of the *same* format (DEFLATE, BZip2, Brotli)
// against each other, while this one compares this module's format
// against established general-purpose codecs, so the encoder/decoder
// registry abstraction that harness builds around has nothing to
// register on this format's side.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"time"

	"github.com/klauspost/compress/flate"
	"github.com/ulikunitz/xz"

	lz77ppm "github.com/dsnet-lz/lz77ppm"
	"github.com/dsnet-lz/lz77ppm/internal/config"
	"github.com/dsnet-lz/lz77ppm/internal/cstream"
	"github.com/dsnet-lz/lz77ppm/internal/ustream"
)

func main() {
	file := flag.String("file", "", "input file to benchmark (required)")
	window := flag.Uint("w", 4096, "lz77ppm window size")
	lookahead := flag.Uint("l", 32, "lz77ppm look-ahead size")
	flag.Parse()

	if *file == "" {
		fmt.Fprintln(os.Stderr, "usage: lz77ppmbench -file=<path> [-w=N] [-l=N]")
		os.Exit(2)
	}
	data, err := ioutil.ReadFile(*file)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}

	results := []result{
		benchLZ77ppm(data, config.Params{Window: uint16(*window), Lookahead: uint16(*lookahead)}),
		benchFlate(data),
		benchXZ(data),
	}

	fmt.Printf("%-10s %10s %8s %12s %12s\n", "codec", "size", "ratio", "enc MB/s", "dec MB/s")
	for _, r := range results {
		fmt.Printf("%-10s %10d %7.2fx %12.2f %12.2f\n",
			r.name, r.compressedSize, r.ratio(len(data)), r.encRate(len(data)), r.decRate(len(data)))
	}
}

type result struct {
	name           string
	compressedSize int
	encTime        time.Duration
	decTime        time.Duration
}

func (r result) ratio(inputSize int) float64 {
	if r.compressedSize == 0 {
		return 0
	}
	return float64(inputSize) / float64(r.compressedSize)
}

func (r result) encRate(inputSize int) float64 {
	return mbPerSec(inputSize, r.encTime)
}

func (r result) decRate(inputSize int) float64 {
	return mbPerSec(inputSize, r.decTime)
}

func mbPerSec(n int, d time.Duration) float64 {
	if d <= 0 {
		return 0
	}
	return float64(n) / 1e6 / d.Seconds()
}

func benchLZ77ppm(data []byte, p config.Params) result {
	var buf bytes.Buffer
	t0 := time.Now()
	u, err := ustream.NewFromBytes(data, p)
	if err != nil {
		panic(err)
	}
	c := cstream.NewWriterStream(&buf, p)
	if _, err := lz77ppm.Compress(u, c, nil, 0); err != nil {
		panic(err)
	}
	encTime := time.Since(t0)

	compressed := buf.Bytes()
	t1 := time.Now()
	rc := cstream.NewReaderBytes(compressed)
	out := make([]byte, 0, len(data))
	ru, err := ustream.NewToBytes(rc, out, true)
	if err != nil {
		panic(err)
	}
	if _, err := lz77ppm.Decompress(rc, ru, nil, 0); err != nil {
		panic(err)
	}
	decTime := time.Since(t1)

	return result{name: "lz77ppm", compressedSize: len(compressed), encTime: encTime, decTime: decTime}
}

func benchFlate(data []byte) result {
	var buf bytes.Buffer
	t0 := time.Now()
	zw, err := flate.NewWriter(&buf, flate.DefaultCompression)
	if err != nil {
		panic(err)
	}
	if _, err := zw.Write(data); err != nil {
		panic(err)
	}
	if err := zw.Close(); err != nil {
		panic(err)
	}
	encTime := time.Since(t0)

	compressed := buf.Bytes()
	t1 := time.Now()
	zr := flate.NewReader(bytes.NewReader(compressed))
	if _, err := io.Copy(ioutil.Discard, zr); err != nil {
		panic(err)
	}
	zr.Close()
	decTime := time.Since(t1)

	return result{name: "flate", compressedSize: len(compressed), encTime: encTime, decTime: decTime}
}

func benchXZ(data []byte) result {
	var buf bytes.Buffer
	t0 := time.Now()
	zw, err := xz.NewWriter(&buf)
	if err != nil {
		panic(err)
	}
	if _, err := zw.Write(data); err != nil {
		panic(err)
	}
	if err := zw.Close(); err != nil {
		panic(err)
	}
	encTime := time.Since(t0)

	compressed := buf.Bytes()
	t1 := time.Now()
	zr, err := xz.NewReader(bytes.NewReader(compressed))
	if err != nil {
		panic(err)
	}
	if _, err := io.Copy(ioutil.Discard, zr); err != nil {
		panic(err)
	}
	decTime := time.Since(t1)

	return result{name: "xz", compressedSize: len(compressed), encTime: encTime, decTime: decTime}
}
