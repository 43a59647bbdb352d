// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// Package searchtree implements the unbalanced binary search tree used
// to find the longest match in the sliding window, ported from
// _examples/original_source/liblz77ppm/src/tree.c. The tree itself
// never touches window bytes directly: callers supply a Comparator
// that compares the candidate key against an existing slot's key,
// keeping this package ignorant of ustream's buffer layout.
package searchtree

// Unused marks an empty child/parent link, matching the C original's
// 0xFFFF sentinel.
const Unused = 0xFFFF

// node is one arena slot: {parent, smaller, larger}.
type node struct {
	parent, smaller, larger int
}

// Comparator compares the key associated with slot test against the
// key associated with slot curr (the one being inserted), returning
// the length of their common prefix and the sign of the first
// differing byte (or 0 if a full-length match was found).
type Comparator func(test, curr int) (commonLen int, sign int)

// Tree is an arena of W+1 slots; slot W is the sentinel root whose
// larger child is the real root.
type Tree struct {
	w     int
	nodes []node
}

// New allocates a tree over window size w.
func New(w int) *Tree {
	t := &Tree{w: w, nodes: make([]node, w+1)}
	t.Init()
	return t
}

// sentinel returns the arena index of the sentinel root.
func (t *Tree) sentinel() int { return t.w }

// Init resets the sentinel root's children, discarding any existing
// tree contents.
func (t *Tree) Init() {
	for i := range t.nodes {
		t.nodes[i] = node{parent: Unused, smaller: Unused, larger: Unused}
	}
}

// SeedRoot attaches slot as the sentinel root's larger child with no
// comparison performed, matching the first call of ustream's token
// loop which seeds the tree with window position 0 before any search
// is possible.
func (t *Tree) SeedRoot(slot int) {
	t.nodes[t.sentinel()].larger = slot
	t.nodes[slot] = node{parent: t.sentinel(), smaller: Unused, larger: Unused}
}

// FindAndInsert walks the tree looking for the longest match against
// curr's key, inserting curr into the tree in the process (per §4.3:
// on a full-length match the existing slot is replaced in place; on a
// partial match curr is attached as a new leaf). maxLen bounds how
// long a match can be before it is considered "full".
func (t *Tree) FindAndInsert(curr, maxLen int, cmp Comparator) (bestLen, bestSlot int) {
	test := t.nodes[t.sentinel()].larger
	if test == Unused {
		// Empty tree: curr becomes the whole tree.
		t.nodes[t.sentinel()].larger = curr
		t.nodes[curr] = node{parent: t.sentinel(), smaller: Unused, larger: Unused}
		return 0, curr
	}

	longest := 0
	for {
		common, sign := cmp(test, curr)
		if common > longest {
			bestLen = common
			bestSlot = test
			longest = common
			if longest == maxLen {
				// Full-length match: duplicate keys are merged by
				// replacing the old slot with the new one in place.
				if test != curr {
					t.Delete(curr)
					t.Replace(test, curr)
				}
				return longest, bestSlot
			}
		}

		var child *int
		if sign > 0 {
			child = &t.nodes[test].larger
		} else {
			child = &t.nodes[test].smaller
		}
		if *child == Unused {
			if test == curr {
				return longest, bestSlot
			}
			if t.nodes[curr].parent != Unused {
				t.Delete(curr)
			}
			if *child == Unused {
				*child = curr
				t.nodes[curr] = node{parent: test, smaller: Unused, larger: Unused}
				return longest, bestSlot
			}
		}
		test = *child
	}
}

// contract splices out a node with at most one child, linking that
// child (or Unused) directly to old's parent.
func (t *Tree) contract(old, next int) {
	parent := t.nodes[old].parent
	if next != Unused {
		t.nodes[next].parent = parent
	}
	if t.nodes[parent].larger == old {
		t.nodes[parent].larger = next
	} else {
		t.nodes[parent].smaller = next
	}
	t.nodes[old].parent = Unused
}

// Replace performs a structural splice: new takes old's exact place
// (parent link and both children), preserving the tree's shape.
func (t *Tree) Replace(old, next int) {
	parent := t.nodes[old].parent
	if parent != Unused {
		if t.nodes[parent].smaller == old {
			t.nodes[parent].smaller = next
		} else {
			t.nodes[parent].larger = next
		}
	}
	t.nodes[next] = t.nodes[old]
	if t.nodes[next].smaller != Unused {
		t.nodes[t.nodes[next].smaller].parent = next
	}
	if t.nodes[next].larger != Unused {
		t.nodes[t.nodes[next].larger].parent = next
	}
	t.nodes[old].parent = Unused
}

// findNext returns the in-order predecessor of index: the rightmost
// descendant of its smaller subtree.
func (t *Tree) findNext(index int) int {
	next := t.nodes[index].smaller
	for t.nodes[next].larger != Unused {
		next = t.nodes[next].larger
	}
	return next
}

// Delete removes index from the tree, if it is currently linked in.
func (t *Tree) Delete(index int) {
	if t.nodes[index].parent == Unused {
		return
	}
	small, large := t.nodes[index].smaller, t.nodes[index].larger
	switch {
	case small != Unused && large != Unused:
		replacement := t.findNext(index)
		t.Delete(replacement)
		t.Replace(index, replacement)
	case small != Unused:
		t.contract(index, small)
	default:
		t.contract(index, large)
	}
}

// Rotate left-rotates the slot array by shift positions and decrements
// every stored parent/smaller/larger index by shift modulo w, leaving
// Unused and the sentinel index w unchanged. It is invoked by ustream
// after compacting a descriptor-backed buffer, where the slot→window
// mapping has itself rotated by the same amount.
func (t *Tree) Rotate(shift int) {
	if shift == 0 {
		return
	}
	shift = ((shift % t.w) + t.w) % t.w

	rotated := make([]node, t.w+1)
	for i := 0; i < t.w; i++ {
		rotated[(i-shift+t.w)%t.w] = t.nodes[i]
	}
	rotated[t.w] = t.nodes[t.w] // sentinel stays at index w
	t.nodes = rotated

	shiftIdx := func(i int) int {
		if i == Unused || i == t.w {
			return i
		}
		return ((i - shift) % t.w + t.w) % t.w
	}
	for i := range t.nodes {
		t.nodes[i].parent = shiftIdx(t.nodes[i].parent)
		t.nodes[i].smaller = shiftIdx(t.nodes[i].smaller)
		t.nodes[i].larger = shiftIdx(t.nodes[i].larger)
	}
}
