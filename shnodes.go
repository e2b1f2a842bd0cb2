// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package sufftree

import (
	"github.com/gaissmai/sufftree/internal/arena"
	"github.com/gaissmai/sufftree/internal/childindex"
	"github.com/gaissmai/sufftree/internal/codeunit"
	"github.com/gaissmai/sufftree/internal/hashsettings"
	"github.com/gaissmai/sufftree/internal/window"
)

// shBranch is one branching node under the SH representation, spec.md
// §4.4: children are looked up through a global hash table keyed by
// (parent, edge letter) rather than carried inline, so a branch record
// itself stays fixed-size regardless of its fan-out.
type shBranch struct {
	parent       NID
	depth        int64
	headPosition int64
	suffixLink   NID
}

// shTree is the SH node representation. Primary child lookup goes
// through edgeTable (the shared global hash table, spec.md §4.1/§4.8)
// so the SH variant keeps its intended memory advantage over SL for
// wide-alphabet, low-fan-out trees; a per-branch childindex.List is
// maintained alongside purely to answer "enumerate this branch's
// children" (SoleChild, traversal, dump), which a hash table has no
// native way to do. DESIGN NOTES §9 calls for exactly this pairing.
type shTree struct {
	branches *arena.Arena[shBranch]
	leaves   *arena.LeafRing
	edges    *edgeTable
	children []childindex.List // indexed identically to branches
	width    codeunit.Width
	buf      *window.Buffer

	freed []bool // parallel to the branch arena; true once FreeBranch'd
}

func newSHTree(buf *window.Buffer, leafRingSize int64, mode hashsettings.Mode, tableHint uint64, cuckooFuncs int, width codeunit.Width) (*shTree, error) {
	edges, err := newEdgeTable(mode, tableHint, cuckooFuncs)
	if err != nil {
		return nil, err
	}

	t := &shTree{
		branches: arena.New[shBranch](64),
		leaves:   arena.NewLeafRing(leafRingSize),
		edges:    edges,
		width:    width,
		buf:      buf,
	}

	root := t.branches.Alloc() // index 0 -> NID Root
	*t.branches.At(root) = shBranch{parent: Undefined, depth: 0}
	t.children = append(t.children, childindex.New(width))
	t.freed = append(t.freed, false)
	return t, nil
}

// BranchArenaLen/BranchLive satisfy branchIntrospector (validate.go),
// mirroring slTree's.
func (t *shTree) BranchArenaLen() int { return t.branches.Len() }

func (t *shTree) BranchLive(b NID) bool {
	idx := int(branchIndex(b))
	if idx < 0 || idx >= len(t.freed) {
		return false
	}
	return !t.freed[idx]
}

func (t *shTree) rec(n NID) *shBranch { return t.branches.At(arena.ID(branchIndex(n))) }

func (t *shTree) Depth(n NID) int64 { return t.rec(n).depth }

func (t *shTree) HeadPosition(n NID) int64 {
	if n.IsLeaf() {
		return t.leaves.At(leafSlot(n)).Start
	}
	return t.rec(n).headPosition
}

func (t *shTree) SetHeadPosition(n NID, pos int64) {
	if n.IsLeaf() {
		t.leaves.At(leafSlot(n)).Start = pos
		return
	}
	t.rec(n).headPosition = pos
}

func (t *shTree) Parent(n NID) NID {
	if n.IsLeaf() {
		p, _ := creditOf(NID(t.leaves.At(leafSlot(n)).Parent))
		return p
	}
	p, _ := creditOf(t.rec(n).parent)
	return p
}

func (t *shTree) SetParent(n NID, parent NID) {
	if n.IsLeaf() {
		t.leaves.At(leafSlot(n)).Parent = arena.ID(parent)
		return
	}
	r := t.rec(n)
	_, credit := creditOf(r.parent)
	r.parent = encodeCredit(parent, credit)
}

func (t *shTree) Credit(n NID) bool {
	_, credit := creditOf(t.rec(n).parent)
	return credit
}

func (t *shTree) SetCredit(n NID, credit bool) {
	r := t.rec(n)
	parent, _ := creditOf(r.parent)
	r.parent = encodeCredit(parent, credit)
}

func (t *shTree) SuffixLink(n NID) NID          { return t.rec(n).suffixLink }
func (t *shTree) SetSuffixLink(n NID, link NID) { t.rec(n).suffixLink = link }

func (t *shTree) BranchOnce(parent NID, c codeunit.CU) NID {
	target, ok := t.edges.lookup(parent, c)
	if !ok {
		return Undefined
	}
	return target
}

func (t *shTree) AddChild(parent NID, c codeunit.CU, child NID) {
	// edgeTable grows only when an insert reports the table full (a
	// Cuckoo chain over budget, or a double-hash probe that found no
	// free slot); there is no load-factor trigger. insertWithGrowth
	// then rehashes and retries once.
	// A second failure is a sizing bug (the rehashed table still
	// full), which would indicate a programming error elsewhere, so
	// it is not otherwise handled here.
	_ = t.edges.insertWithGrowth(parent, c, child)

	idx := arena.ID(branchIndex(parent))
	t.children[idx].Insert(c, childIndexID(child))
}

func (t *shTree) RemoveChild(parent NID, c codeunit.CU) {
	t.edges.delete(parent, c)
	idx := arena.ID(branchIndex(parent))
	t.children[idx].Delete(c)
}

func (t *shTree) ChildCount(parent NID) int {
	return t.children[arena.ID(branchIndex(parent))].Len()
}

func (t *shTree) SoleChild(parent NID) (child NID, key codeunit.CU) {
	list := t.children[arena.ID(branchIndex(parent))]
	keys := list.Keys()
	key = keys[0]
	id, _ := list.Get(key)
	return nidFromChildIndexID(id), key
}

// childIndexID/nidFromChildIndexID translate between NID (this
// package's signed branch/leaf id) and arena.ID (childindex's payload
// type, a signed int32 arena slot): childindex has no notion of "leaf vs.
// branch," it just stores opaque ids, so the sign has to be carried
// through unchanged rather than stripped.
func childIndexID(n NID) arena.ID         { return arena.ID(n) }
func nidFromChildIndexID(id arena.ID) NID { return NID(id) }

func (t *shTree) NewBranch(parent NID, depth, headPosition int64) NID {
	id := t.branches.Alloc()
	*t.branches.At(id) = shBranch{parent: parent, depth: depth, headPosition: headPosition}
	for int(id) >= len(t.children) {
		t.children = append(t.children, childindex.New(t.width))
	}
	t.children[id] = childindex.New(t.width)
	for int(id) >= len(t.freed) {
		t.freed = append(t.freed, false)
	}
	t.freed[id] = false
	return branchNID(int32(id))
}

func (t *shTree) FreeBranch(n NID) {
	t.branches.Free(arena.ID(branchIndex(n)))
	t.freed[branchIndex(n)] = true
}

func (t *shTree) ExtendLeafRing() int64   { return t.leaves.Extend() }
func (t *shTree) Leaves() *arena.LeafRing { return t.leaves }

func (t *shTree) NewLeaf(parent NID, slot int64, start int64) NID {
	t.leaves.Install(slot, arena.LeafRecord{Parent: arena.ID(parent), Start: start})
	return leafNID(slot)
}
