// Copyright 2016, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// Command lz77ppm compresses or decompresses a file using the LZ77
// codec implemented by this module. It is a Go rendition of
// _examples/original_source/lz77ppm/src/main.c, using the flag
// package in place of getopt_long and os.File in place of raw file
// descriptors.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	lz77ppm "github.com/dsnet-lz/lz77ppm"
	"github.com/dsnet-lz/lz77ppm/internal/config"
	"github.com/dsnet-lz/lz77ppm/internal/cstream"
	"github.com/dsnet-lz/lz77ppm/internal/ustream"
)

const (
	programVersion       = "1.0"
	defaultWindowSize    = 4096
	defaultLookaheadSize = 32
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("lz77ppm", flag.ContinueOnError)
	decompress := fs.Bool("d", false, "decompress the input instead of compressing it")
	window := fs.Uint("w", defaultWindowSize, "size of the sliding window in bytes")
	lookahead := fs.Uint("l", defaultLookaheadSize, "size of the look-ahead buffer in bytes")
	output := fs.String("o", "", "output file (default: standard output)")
	force := fs.Bool("f", false, "overwrite the output file if it already exists")
	summary := fs.Bool("s", false, "show a summary of the operation before running it")
	stats := fs.Bool("t", false, "show statistics after the operation completes")
	verbose := fs.Bool("v", false, "log diagnostic messages to standard error")
	version := fs.Bool("V", false, "show the version and exit")
	fs.Usage = func() { usage(fs) }
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *version {
		fmt.Printf("lz77ppm: v%s (library %d.%d)\n", programVersion, lz77ppm.VersionMajor, lz77ppm.VersionMinor)
		return 0
	}
	if fs.NArg() > 1 {
		fmt.Fprintln(os.Stderr, "too many files specified")
		return 1
	}

	var logger lz77ppm.Logger
	if *verbose {
		logger = lz77ppm.NewDefaultLogger()
	}

	inputName := "(standard input)"
	in := io.Reader(os.Stdin)
	if fs.NArg() == 1 {
		inputName = fs.Arg(0)
		f, err := os.Open(inputName)
		if err != nil {
			fmt.Fprintln(os.Stderr, "cannot open input file:", err)
			return 2
		}
		defer f.Close()
		in = f
	}

	outputName := "(standard output)"
	out := io.Writer(os.Stdout)
	if *output != "" {
		outputName = *output
		flags := os.O_WRONLY | os.O_CREATE
		if *force {
			flags |= os.O_TRUNC
		} else {
			flags |= os.O_EXCL
		}
		f, err := os.OpenFile(*output, flags, 0644)
		if err != nil {
			fmt.Fprintln(os.Stderr, "cannot open output file:", err)
			return 2
		}
		defer f.Close()
		out = f
	}

	var progress lz77ppm.ProgressFunc
	if *summary || *stats {
		progress = cliProgress()
	}

	start := time.Now()
	var (
		outSize int64
		err     error
	)
	if *decompress {
		// -w/-l describe the window/look-ahead to use while
		// compressing; a compressed stream already carries its own in
		// the 12-byte header (cstream.Open reads it), so decompression
		// never consults the flags.
		if logger != nil {
			logger.Debugf("input=%s output=%s (window/look-ahead read from the stream header)", inputName, outputName)
		}
		if *summary {
			fmt.Fprintf(os.Stderr, "Decompression:\n  Input file:  %s\n  Output file: %s\n", inputName, outputName)
		}
		c := cstream.NewReaderStream(in)
		u, uerr := ustream.NewToWriter(out, c)
		if uerr != nil {
			if logger != nil {
				logger.Errorf("invalid parameters: %v", uerr)
			}
			fmt.Fprintln(os.Stderr, "error:", uerr)
			return 1
		}
		outSize, err = lz77ppm.Decompress(c, u, progress, 0)
	} else {
		p := config.Params{Window: uint16(*window), Lookahead: uint16(*lookahead)}
		if logger != nil {
			logger.Debugf("window=%d lookahead=%d input=%s output=%s", p.Window, p.Lookahead, inputName, outputName)
		}
		if *summary {
			fmt.Fprintf(os.Stderr, "Compression:\n  Input file:      %s\n  Output file:     %s\n  Window size:     %d bytes\n  Look-ahead size: %d bytes\n",
				inputName, outputName, p.Window, p.Lookahead)
		}
		u, uerr := ustream.NewFromReader(in, p)
		if uerr != nil {
			if logger != nil {
				logger.Errorf("invalid parameters: %v", uerr)
			}
			fmt.Fprintln(os.Stderr, "error:", uerr)
			return 1
		}
		c := cstream.NewWriterStream(out, p)
		size := inputSizeOf(in)
		if size == 0 && logger != nil && progress != nil {
			logger.Warnf("input size unavailable, progress will not report a percentage")
		}
		outSize, err = lz77ppm.Compress(u, c, progress, size)
	}
	elapsed := time.Since(start)

	verb := "Compression"
	if *decompress {
		verb = "Decompression"
	}
	if err != nil {
		if logger != nil {
			logger.Errorf("%s failed after %s: %v", verb, elapsed.Round(time.Millisecond), err)
		}
		fmt.Fprintf(os.Stderr, "%s failed: %v\n", verb, err)
		return 1
	}
	if logger != nil {
		logger.Infof("%s of %s wrote %d bytes in %s", verb, inputName, outSize, elapsed.Round(time.Millisecond))
	}
	if *summary {
		fmt.Fprintf(os.Stderr, "%s done.\n", verb)
	}
	if *stats {
		printStats(outSize, elapsed)
	}
	return 0
}

func inputSizeOf(r io.Reader) uint64 {
	f, ok := r.(*os.File)
	if !ok {
		return 0
	}
	fi, err := f.Stat()
	if err != nil || !fi.Mode().IsRegular() {
		return 0
	}
	return uint64(fi.Size())
}

func printStats(outSize int64, elapsed time.Duration) {
	fmt.Fprintf(os.Stderr, "\nStatistics:\n")
	fmt.Fprintf(os.Stderr, "  Output size:  %s\n", printSize(outSize))
	fmt.Fprintf(os.Stderr, "  Elapsed time: %s\n", elapsed.Round(10*time.Millisecond))
	if elapsed > 0 {
		rate := float64(outSize) / elapsed.Seconds()
		fmt.Fprintf(os.Stderr, "  Data rate:    %s/s\n", printSize(int64(rate)))
	}
}

func printSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

// cliProgress prints a carriage-return-updated percentage line to
// stderr, mirroring main.c's cli_report_progress.
func cliProgress() lz77ppm.ProgressFunc {
	last := -1
	return func(_ uint64, percent float64) {
		if int(percent) == last {
			return
		}
		last = int(percent)
		fmt.Fprintf(os.Stderr, "\rProgress %d%%...    ", last)
	}
}

func usage(fs *flag.FlagSet) {
	fmt.Fprintln(os.Stderr, "Compress or decompress a file using the LZ77 algorithm.")
	fmt.Fprintln(os.Stderr, "\nUsage:\n  lz77ppm [-d] [options] [-o output-file] [input-file]")
	fmt.Fprintln(os.Stderr, "\nIf -o is not given, the result is written to standard output.")
	fmt.Fprintln(os.Stderr, "If no input file is given, standard input is used.")
	fmt.Fprintln(os.Stderr, "\nOptions:")
	fs.PrintDefaults()
}
