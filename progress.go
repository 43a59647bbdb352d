// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package lz77ppm

import "io"

// ProgressFunc is called after each token is processed by Compress or
// Decompress, reporting the fraction of the input consumed so far as
// a percentage. It replaces the original's process-wide
// `report_progress` function pointer (lz77.h) with an explicit
// per-call parameter, per spec.md §9's design note against shared
// mutable globals. A nil ProgressFunc disables reporting entirely.
// The total used for the percentage is the totalBytes argument the
// caller passes to Compress or Decompress.
type ProgressFunc func(processedBytes uint64, percent float64)

// inputSize mirrors lz77_compress/lz77_decompress's fstat-based size
// lookup, generalized to io.Seeker: it returns the bytes remaining in
// src if src supports seeking, and 0 otherwise. Compress and
// Decompress do not call it; they take the total as an argument.
func inputSize(src io.Reader) uint64 {
	seeker, ok := src.(io.Seeker)
	if !ok {
		return 0
	}
	cur, err := seeker.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0
	}
	end, err := seeker.Seek(0, io.SeekEnd)
	if err != nil {
		return 0
	}
	if _, err := seeker.Seek(cur, io.SeekStart); err != nil {
		return 0
	}
	if end < cur {
		return 0
	}
	return uint64(end - cur)
}

func reportProgress(fn ProgressFunc, processed, total uint64) {
	if fn == nil {
		return
	}
	var percent float64
	if total > 0 {
		percent = 100 * float64(processed) / float64(total)
	}
	fn(processed, percent)
}
