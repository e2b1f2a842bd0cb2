// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package sufftree

import (
	"github.com/gaissmai/sufftree/internal/arena"
	"github.com/gaissmai/sufftree/internal/codeunit"
)

// Nodes abstracts the two branching-record representations spec.md
// §4.4 names (SL: first-child/next-sibling linked list; SH:
// hash-table child lookup), so the construction engine, delete path,
// and edge-label maintenance in this package are written once and run
// against either. Everything outside this interface boundary (the
// Ukkonen state machine, delete_longest_suffix, head_position upkeep)
// is representation-agnostic, per DESIGN NOTES §9's "encapsulate
// behind one interface."
type Nodes interface {
	// Depth returns a branching node's depth (root is 0). Undefined for
	// leaves: a leaf's edge always extends to the active point, so
	// callers compare against it as "unbounded" rather than asking its
	// depth (see scan.go's depthscan).
	Depth(n NID) int64
	// HeadPosition returns the window offset at which n's root-path (a
	// branch's head_position) or suffix (a leaf's cached start) begins,
	// so edge-letter lookup (head_position + depth) is uniform over
	// both kinds of node.
	HeadPosition(n NID) int64
	// SetHeadPosition updates it.
	SetHeadPosition(n NID, pos int64)
	// Parent returns the real (credit-stripped) parent of a branch or leaf.
	Parent(n NID) NID
	// SetParent rewrites a node's parent, preserving its credit bit
	// when n is a branch (leaves carry no credit bit).
	SetParent(n NID, parent NID)
	// Credit reports a branch's credit bit (spec.md §3/§4.7).
	Credit(n NID) bool
	// SetCredit sets it.
	SetCredit(n NID, credit bool)
	// SuffixLink returns a branch's suffix link target, or Undefined.
	SuffixLink(n NID) NID
	// SetSuffixLink sets it.
	SetSuffixLink(n NID, link NID)

	// BranchOnce returns the child of parent reached by code unit c,
	// or Undefined if no such child exists (spec.md §4.4
	// slli_branch_once, generalized to both representations).
	BranchOnce(parent NID, c codeunit.CU) NID
	// AddChild installs child under parent keyed by c.
	AddChild(parent NID, c codeunit.CU, child NID)
	// RemoveChild unlinks the child keyed by c from parent.
	RemoveChild(parent NID, c codeunit.CU)
	// ChildCount returns parent's number of children.
	ChildCount(parent NID) int
	// SoleChild returns parent's only child and the code unit it is
	// keyed by; valid only when ChildCount(parent) == 1.
	SoleChild(parent NID) (child NID, key codeunit.CU)

	// NewBranch allocates a branching node with the given parent,
	// depth, and head_position, and returns its id.
	NewBranch(parent NID, depth, headPosition int64) NID
	// FreeBranch releases a branching node's slot (tbranch_deleted).
	FreeBranch(n NID)

	// NewLeaf installs a new leaf at the given leaf-ring slot (spec.md
	// §3's "-(tleaf_first + depth_order(p) mod tleaf_size)" id) under
	// parent, recording start as the window offset where the leaf's
	// suffix begins, and returns its id.
	NewLeaf(parent NID, slot int64, start int64) NID

	// ExtendLeafRing grows the leaf ring by one slot and returns the new
	// slot. The engine calls it once per new leaf, right before NewLeaf
	// installs that leaf under its already chosen parent.
	ExtendLeafRing() int64

	// Leaves exposes the backing leaf ring directly, for callers
	// (batch maintenance, validation, traversal) that need to walk
	// every live leaf rather than address one by id.
	Leaves() *arena.LeafRing
}
