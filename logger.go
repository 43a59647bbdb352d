// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package lz77ppm

import (
	"fmt"
	"os"
	"time"
)

// Logger receives diagnostic messages at four levels, replacing the
// original's process-wide `void (*lz77_log)(...)` function pointer
// (see _examples/original_source/liblz77ppm/api/lz77ppm/logger.h)
// with a value the caller holds. No stream constructor, Compress or
// Decompress takes a Logger, and the library itself logs nothing;
// cmd/lz77ppm is the only caller that logs through one.
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// discardLogger drops every message. Nothing in the module uses it:
// cmd/lz77ppm keeps a nil Logger when -v is absent.
type discardLogger struct{}

func (discardLogger) Debugf(string, ...interface{}) {}
func (discardLogger) Infof(string, ...interface{})  {}
func (discardLogger) Warnf(string, ...interface{})  {}
func (discardLogger) Errorf(string, ...interface{}) {}

// defaultLogger writes to os.Stderr with a "[<time>] [<level>] "
// prefix, matching logger.c's lz77_log_print_header.
type defaultLogger struct{}

// NewDefaultLogger returns a Logger that writes to os.Stderr in the
// original CLI's log format.
func NewDefaultLogger() Logger { return defaultLogger{} }

func (defaultLogger) Debugf(format string, args ...interface{}) { logf("debug", format, args...) }
func (defaultLogger) Infof(format string, args ...interface{})  { logf("info", format, args...) }
func (defaultLogger) Warnf(format string, args ...interface{})  { logf("warning", format, args...) }
func (defaultLogger) Errorf(format string, args ...interface{}) { logf("error", format, args...) }

func logf(level, format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "[%s] [%s] %s\n", time.Now().Format(time.ANSIC), level, fmt.Sprintf(format, args...))
}
