// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package sufftree

import (
	"github.com/gaissmai/sufftree/internal/arena"
	"github.com/gaissmai/sufftree/internal/codeunit"
	"github.com/gaissmai/sufftree/internal/window"
)

// slBranch is one branching node under the SL representation, spec.md
// §4.4: children form a first-child/next-sibling linked list rather
// than a hash table, so adding, removing, or walking a parent's
// children never touches any structure beyond the parent's own record
// and its children's brother pointers.
type slBranch struct {
	parent       NID // sign-encoded: creditOf/encodeCredit
	depth        int64
	headPosition int64
	suffixLink   NID

	firstChild    NID // head of this branch's child chain
	branchBrother NID // next sibling in *this branch's parent's* chain
}

// SL leaves use arena.LeafRecord unchanged; its NextSibling field
// holds the next sibling's NID in a branch's child chain.

// slTree is the SL node representation: Nodes backed by a growable
// branch arena (spec.md §4.1's tbranch array with tbranch_deleted
// reuse) and the fixed-size leaf ring, with children addressed by
// walking a linked list rather than hashing. Grounded on spec.md §4.4's
// "Variation SL" description; there is no teacher analog (the CIDR
// trie's node children are addressed by address-bit allotment, not a
// sibling chain), so the list walk itself is written directly from the
// spec, while the arena/ring machinery it sits on is the shared
// internal/arena package.
type slTree struct {
	branches *arena.Arena[slBranch]
	leaves   *arena.LeafRing
	buf      *window.Buffer
	n        int64 // total window size, for Advance

	freed []bool // parallel to the branch arena; true once FreeBranch'd
}

func newSLTree(buf *window.Buffer, leafRingSize int64) *slTree {
	t := &slTree{
		branches: arena.New[slBranch](64),
		leaves:   arena.NewLeafRing(leafRingSize),
		buf:      buf,
		n:        buf.TotalWindowSize(),
	}
	root := t.branches.Alloc() // always index 0 -> NID Root
	*t.branches.At(root) = slBranch{parent: Undefined, depth: 0}
	t.freed = append(t.freed, false)
	return t
}

// BranchArenaLen/BranchLive satisfy branchIntrospector (validate.go),
// letting Validate walk every live branch without Nodes needing a
// general "list all branches" operation construction itself never
// calls.
func (t *slTree) BranchArenaLen() int { return t.branches.Len() }

func (t *slTree) BranchLive(b NID) bool {
	idx := int(branchIndex(b))
	if idx < 0 || idx >= len(t.freed) {
		return false
	}
	return !t.freed[idx]
}

func (t *slTree) rec(n NID) *slBranch { return t.branches.At(arena.ID(branchIndex(n))) }

func (t *slTree) Depth(n NID) int64 { return t.rec(n).depth }

// HeadPosition returns a branch's head_position, or a leaf's cached
// Start: both name "the window offset the root-path/suffix begins
// at," so edge-letter lookup (head_position + depth) works uniformly
// over either kind of node.
func (t *slTree) HeadPosition(n NID) int64 {
	if n.IsLeaf() {
		return t.leaves.At(leafSlot(n)).Start
	}
	return t.rec(n).headPosition
}

func (t *slTree) SetHeadPosition(n NID, pos int64) {
	if n.IsLeaf() {
		t.leaves.At(leafSlot(n)).Start = pos
		return
	}
	t.rec(n).headPosition = pos
}

func (t *slTree) Parent(n NID) NID {
	if n.IsLeaf() {
		p, _ := creditOf(NID(t.leaves.At(leafSlot(n)).Parent))
		return p
	}
	p, _ := creditOf(t.rec(n).parent)
	return p
}

func (t *slTree) SetParent(n NID, parent NID) {
	if n.IsLeaf() {
		rec := t.leaves.At(leafSlot(n))
		rec.Parent = arena.ID(parent)
		return
	}
	r := t.rec(n)
	_, credit := creditOf(r.parent)
	r.parent = encodeCredit(parent, credit)
}

func (t *slTree) Credit(n NID) bool {
	_, credit := creditOf(t.rec(n).parent)
	return credit
}

func (t *slTree) SetCredit(n NID, credit bool) {
	r := t.rec(n)
	parent, _ := creditOf(r.parent)
	r.parent = encodeCredit(parent, credit)
}

func (t *slTree) SuffixLink(n NID) NID          { return t.rec(n).suffixLink }
func (t *slTree) SetSuffixLink(n NID, link NID) { t.rec(n).suffixLink = link }

// edgeLetter returns the code unit labeling the edge from a child back
// up to its parent, read directly out of the window at the child's
// own start-of-label position (a branch's head_position, a leaf's
// cached Start).
func (t *slTree) edgeLetter(child NID) codeunit.CU {
	return t.buf.At(t.HeadPosition(child))
}

func (t *slTree) BranchOnce(parent NID, c codeunit.CU) NID {
	for child := t.rec(parent).firstChild; child != Undefined; child = t.nextBrother(child) {
		if t.edgeLetter(child) == c {
			return child
		}
	}
	return Undefined
}

func (t *slTree) nextBrother(n NID) NID {
	if n.IsLeaf() {
		return NID(t.leaves.At(leafSlot(n)).NextSibling)
	}
	return t.rec(n).branchBrother
}

func (t *slTree) setNextBrother(n, brother NID) {
	if n.IsLeaf() {
		t.leaves.At(leafSlot(n)).NextSibling = arena.ID(brother)
		return
	}
	t.rec(n).branchBrother = brother
}

// AddChild prepends child onto parent's chain; spec.md's SL variant
// does not require any particular child order, so insertion at the
// head (O(1), no scan) is the natural choice.
func (t *slTree) AddChild(parent NID, c codeunit.CU, child NID) {
	p := t.rec(parent)
	t.setNextBrother(child, p.firstChild)
	p.firstChild = child
}

func (t *slTree) RemoveChild(parent NID, c codeunit.CU) {
	p := t.rec(parent)
	var prev NID
	for cur := p.firstChild; cur != Undefined; cur = t.nextBrother(cur) {
		if t.edgeLetter(cur) == c {
			next := t.nextBrother(cur)
			if prev == Undefined {
				p.firstChild = next
			} else {
				t.setNextBrother(prev, next)
			}
			return
		}
		prev = cur
	}
}

func (t *slTree) ChildCount(parent NID) int {
	n := 0
	for cur := t.rec(parent).firstChild; cur != Undefined; cur = t.nextBrother(cur) {
		n++
	}
	return n
}

func (t *slTree) SoleChild(parent NID) (child NID, key codeunit.CU) {
	child = t.rec(parent).firstChild
	return child, t.edgeLetter(child)
}

func (t *slTree) NewBranch(parent NID, depth, headPosition int64) NID {
	id := t.branches.Alloc()
	*t.branches.At(id) = slBranch{parent: parent, depth: depth, headPosition: headPosition}
	for int(id) >= len(t.freed) {
		t.freed = append(t.freed, false)
	}
	t.freed[id] = false
	return branchNID(int32(id))
}

func (t *slTree) FreeBranch(n NID) {
	t.branches.Free(arena.ID(branchIndex(n)))
	t.freed[branchIndex(n)] = true
}

func (t *slTree) ExtendLeafRing() int64   { return t.leaves.Extend() }
func (t *slTree) Leaves() *arena.LeafRing { return t.leaves }

func (t *slTree) NewLeaf(parent NID, slot int64, start int64) NID {
	t.leaves.Install(slot, arena.LeafRecord{Parent: arena.ID(parent), Start: start})
	return leafNID(slot)
}
