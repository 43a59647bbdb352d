// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package searchtree

import "testing"

func TestFindAndInsertEmptyTree(t *testing.T) {
	tr := New(4)
	called := false
	cmp := func(test, curr int) (int, int) { called = true; return 0, 0 }
	length, slot := tr.FindAndInsert(0, 5, cmp)
	if called {
		t.Fatal("cmp should not be called against an empty tree")
	}
	if length != 0 || slot != 0 {
		t.Fatalf("FindAndInsert(empty) = %d, %d; want 0, 0", length, slot)
	}
	if tr.nodes[tr.sentinel()].larger != 0 {
		t.Fatalf("sentinel.larger = %d, want 0", tr.nodes[tr.sentinel()].larger)
	}
	if tr.nodes[0].parent != tr.sentinel() {
		t.Fatalf("nodes[0].parent = %d, want sentinel %d", tr.nodes[0].parent, tr.sentinel())
	}
}

func TestSeedRoot(t *testing.T) {
	tr := New(4)
	tr.SeedRoot(2)
	if tr.nodes[tr.sentinel()].larger != 2 {
		t.Fatalf("sentinel.larger = %d, want 2", tr.nodes[tr.sentinel()].larger)
	}
	if tr.nodes[2].parent != tr.sentinel() {
		t.Fatalf("nodes[2].parent = %d, want sentinel", tr.nodes[2].parent)
	}
	if tr.nodes[2].smaller != Unused || tr.nodes[2].larger != Unused {
		t.Fatalf("nodes[2] = %+v, want both children Unused", tr.nodes[2])
	}
}

// intKeyComparator treats keys[slot] as the byte a slot stands for: a
// full match (commonLen == maxLen) on equal keys, otherwise no shared
// prefix and a sign toward the smaller or larger subtree.
func intKeyComparator(keys []int, maxLen int) Comparator {
	return func(test, curr int) (int, int) {
		if keys[test] == keys[curr] {
			return maxLen, 0
		}
		if keys[curr] > keys[test] {
			return 0, 1
		}
		return 0, -1
	}
}

func inOrderKeys(tr *Tree, keys []int) []int {
	var out []int
	var walk func(idx int)
	walk = func(idx int) {
		if idx == Unused {
			return
		}
		walk(tr.nodes[idx].smaller)
		out = append(out, keys[idx])
		walk(tr.nodes[idx].larger)
	}
	walk(tr.nodes[tr.sentinel()].larger)
	return out
}

func TestFindAndInsertBuildsOrderedTree(t *testing.T) {
	keys := []int{50, 20, 70, 10, 30, 60, 80, 5, 90, 40}
	tr := New(len(keys))
	cmp := intKeyComparator(keys, 100)
	for i := range keys {
		tr.FindAndInsert(i, 100, cmp)
	}

	got := inOrderKeys(tr, keys)
	want := append([]int(nil), keys...)
	for i := 0; i < len(want); i++ {
		for j := i + 1; j < len(want); j++ {
			if want[j] < want[i] {
				want[i], want[j] = want[j], want[i]
			}
		}
	}
	if len(got) != len(want) {
		t.Fatalf("in-order traversal has %d entries, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("in-order traversal = %v, want sorted %v", got, want)
		}
	}
}

func TestFindAndInsertFullMatchMergesInPlace(t *testing.T) {
	keys := []int{7, 7}
	tr := New(2)
	cmp := intKeyComparator(keys, 4)
	tr.SeedRoot(0)

	length, slot := tr.FindAndInsert(1, 4, cmp)
	if length != 4 || slot != 0 {
		t.Fatalf("FindAndInsert(duplicate) = %d, %d; want 4, 0", length, slot)
	}
	if tr.nodes[tr.sentinel()].larger != 1 {
		t.Fatalf("root slot = %d, want 1 (new slot takes over)", tr.nodes[tr.sentinel()].larger)
	}
	if tr.nodes[0].parent != Unused {
		t.Fatalf("old slot 0 still linked: parent = %d, want Unused", tr.nodes[0].parent)
	}
}

func TestFindAndInsertTracksLongestPrefix(t *testing.T) {
	// Root (slot 0) shares only a 1-byte prefix with curr; its smaller
	// child (slot 1) shares 3 bytes. FindAndInsert must report the
	// longer match found deeper in the walk, not the first one seen.
	tr := New(3)
	tr.SeedRoot(0)
	tr.nodes[0].smaller = 1
	tr.nodes[1] = node{parent: 0, smaller: Unused, larger: Unused}

	cmp := func(test, curr int) (int, int) {
		if test == 0 {
			return 1, -1
		}
		return 3, -1
	}

	length, slot := tr.FindAndInsert(2, 5, cmp)
	if length != 3 || slot != 1 {
		t.Fatalf("FindAndInsert = %d, %d; want longest match 3 against slot 1", length, slot)
	}
}

func TestDeleteLeaf(t *testing.T) {
	keys := []int{50, 20, 70}
	tr := New(3)
	cmp := intKeyComparator(keys, 100)
	for i := range keys {
		tr.FindAndInsert(i, 100, cmp)
	}
	tr.Delete(1) // leaf: 20

	if tr.nodes[1].parent != Unused {
		t.Fatalf("deleted leaf still linked: parent = %d", tr.nodes[1].parent)
	}
	got := inOrderKeys(tr, keys)
	want := []int{50, 70}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("after deleting leaf, in-order = %v, want %v", got, want)
	}
}

func TestDeleteNodeWithOneChild(t *testing.T) {
	keys := []int{50, 20, 10}
	tr := New(3)
	cmp := intKeyComparator(keys, 100)
	for i := range keys {
		tr.FindAndInsert(i, 100, cmp)
	}
	tr.Delete(1) // 20, which has one child (10)

	got := inOrderKeys(tr, keys)
	want := []int{10, 50}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("after deleting one-child node, in-order = %v, want %v", got, want)
	}
}

func TestDeleteNodeWithTwoChildren(t *testing.T) {
	keys := []int{50, 20, 70, 10, 30}
	tr := New(5)
	cmp := intKeyComparator(keys, 100)
	for i := range keys {
		tr.FindAndInsert(i, 100, cmp)
	}
	tr.Delete(0) // root 50, has both children

	got := inOrderKeys(tr, keys)
	want := []int{10, 20, 30, 70}
	if len(got) != len(want) {
		t.Fatalf("after deleting two-child root, in-order = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("after deleting two-child root, in-order = %v, want %v", got, want)
		}
	}
	if tr.nodes[0].parent != Unused {
		t.Fatalf("deleted root still linked: parent = %d", tr.nodes[0].parent)
	}
}

func TestRotate(t *testing.T) {
	tr := New(4)
	tr.Init()
	sentinel := tr.sentinel()
	tr.nodes[sentinel].larger = 0
	tr.nodes[0] = node{parent: sentinel, smaller: Unused, larger: 1}
	tr.nodes[1] = node{parent: 0, smaller: Unused, larger: Unused}

	tr.Rotate(1)

	if tr.nodes[sentinel].larger != 3 {
		t.Fatalf("sentinel.larger = %d, want 3", tr.nodes[sentinel].larger)
	}
	if tr.nodes[3] != (node{parent: sentinel, smaller: Unused, larger: 0}) {
		t.Fatalf("nodes[3] = %+v, want root moved here with larger child at 0", tr.nodes[3])
	}
	if tr.nodes[0] != (node{parent: 3, smaller: Unused, larger: Unused}) {
		t.Fatalf("nodes[0] = %+v, want leaf pointing back at parent 3", tr.nodes[0])
	}
}

func TestRotateZeroShiftIsNoOp(t *testing.T) {
	tr := New(4)
	tr.SeedRoot(2)
	before := append([]node(nil), tr.nodes...)
	tr.Rotate(0)
	for i := range before {
		if tr.nodes[i] != before[i] {
			t.Fatalf("Rotate(0) changed nodes[%d]: %+v -> %+v", i, before[i], tr.nodes[i])
		}
	}
}
