// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package lz77err

import "testing"

func TestRecoverCatchesPanic(t *testing.T) {
	f := func() (err error) {
		defer Recover(&err)
		Panic(New(CorruptStream, "boom"))
		t.Fatal("unreachable after Panic")
		return nil
	}
	err := f()
	e, ok := err.(*Error)
	if !ok || e.Kind != CorruptStream || e.Msg != "boom" {
		t.Fatalf("Recover(after Panic) = %v, want *Error{CorruptStream, \"boom\"}", err)
	}
}

func TestPanicNoopOnNilError(t *testing.T) {
	f := func() (err error) {
		defer Recover(&err)
		Panic(nil)
		return nil
	}
	if err := f(); err != nil {
		t.Fatalf("Recover(after Panic(nil)) = %v, want nil", err)
	}
}

func TestAssertPanicsOnFalseCondition(t *testing.T) {
	f := func(cond bool) (err error) {
		defer Recover(&err)
		Assert(cond, New(InvalidArgument, "invariant violated"))
		return nil
	}
	if err := f(true); err != nil {
		t.Fatalf("Recover(after Assert(true, ...)) = %v, want nil", err)
	}
	err := f(false)
	e, ok := err.(*Error)
	if !ok || e.Kind != InvalidArgument {
		t.Fatalf("Recover(after Assert(false, ...)) = %v, want *Error{InvalidArgument}", err)
	}
}
