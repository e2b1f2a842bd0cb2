// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package sufftree

import "github.com/gaissmai/sufftree/internal/window"

// DeleteLongestSuffix retires the oldest (deepest) leaf, per spec.md
// §4.6. Preconditions: the leaf ring's tleaf_first slot holds a valid
// leaf.
func (e *Engine) DeleteLongestSuffix() error {
	leafSlotNum := e.nodes.Leaves().First()
	leaf := leafNID(leafSlotNum)
	parent := e.nodes.Parent(leaf)

	if e.activeNode == parent && e.onEdgeToLongestLeaf(parent, leaf) {
		return e.shortenInsteadOfDelete(parent)
	}

	return e.deleteAndMaybeContract(parent, leaf)
}

// onEdgeToLongestLeaf reports whether the active point currently sits
// on the edge from parent to leaf: activeIndex lies strictly between
// parent's depth and the leaf's full (unbounded) extent, which is
// always true once activeNode == parent and the edge is the one
// reached by the letter at activeIndex.
func (e *Engine) onEdgeToLongestLeaf(parent, leaf NID) bool {
	if e.activeIndex == e.endingPosition {
		return false
	}
	child := e.scan.descend(parent, e.activeIndex)
	return child == leaf
}

// shortenInsteadOfDelete implements spec.md §4.6 step 2: instead of
// deleting the edge the active point sits on, replace the leaf with a
// shorter one representing the same suffix's new starting offset.
func (e *Engine) shortenInsteadOfDelete(parent NID) error {
	oldSlot := e.nodes.Leaves().First()
	e.nodes.RemoveChild(parent, e.buf.At(e.nodes.HeadPosition(leafNID(oldSlot))))

	e.startingPosition = window.Advance(e.startingPosition, 1, e.n)

	// Step 6 (advance tleaf_first) applies unconditionally at the end
	// of delete_longest_suffix, including this "shorten" branch: the
	// retiring slot is popped and a fresh one taken for the
	// replacement leaf, net zero change in live-leaf count.
	e.nodes.Leaves().PopOldest()
	newSlot := e.nodes.Leaves().Extend()

	newLeaf := e.nodes.NewLeaf(parent, newSlot, e.startingPosition)
	e.nodes.AddChild(parent, e.buf.At(e.startingPosition), newLeaf)

	if _, isCreditCounter := e.maint.(*CreditCounterMaintenance); isCreditCounter {
		e.maint.OnNewLeaf(parent, e.startingPosition)
	}

	if e.activeNode != Root {
		e.hopSuffixLink()
	} else {
		e.activeIndex = window.Advance(e.activeIndex, 1, e.n)
	}

	if e.startingPosition == e.endingPosition {
		return nil
	}

	target, err := e.goDown(e.activeNode, e.nodes.Depth(e.activeNode)+(e.endingPosition-e.startingPosition+e.n)%e.n, e.activeIndex)
	if err != nil {
		return err
	}
	if target != Undefined {
		e.activeNode = target
		e.activeIndex = window.Advance(e.startingPosition, e.nodes.Depth(target), e.n)
	}
	return nil
}

// deleteAndMaybeContract implements spec.md §4.6 steps 3-6: remove
// the P->L edge outright, then contract P out of the tree if it is
// left with exactly one child.
func (e *Engine) deleteAndMaybeContract(parent, leaf NID) error {
	e.nodes.RemoveChild(parent, e.buf.At(e.nodes.HeadPosition(leaf)))

	if parent != Root && e.nodes.ChildCount(parent) == 1 {
		child, key := e.nodes.SoleChild(parent)
		grandparent := e.nodes.Parent(parent)
		credit := e.nodes.Credit(parent)

		e.nodes.RemoveChild(grandparent, e.buf.At(e.nodes.HeadPosition(parent)))
		e.nodes.SetParent(child, grandparent)
		e.nodes.AddChild(grandparent, key, child)
		if child.IsBranch() {
			e.nodes.SetCredit(child, credit)
		}

		if parent == e.activeNode {
			e.activeNode = grandparent
			e.activeIndex = window.Advance(e.nodes.HeadPosition(parent), e.nodes.Depth(grandparent)-e.nodes.Depth(parent), e.n)
		}

		e.nodes.FreeBranch(parent)
		parent = grandparent
	}

	e.nodes.Leaves().PopOldest() // step 6: advance tleaf_first

	if _, isCreditCounter := e.maint.(*CreditCounterMaintenance); isCreditCounter && e.nodes.Leaves().Count() > 0 {
		deepest := e.nodes.Leaves().First()
		e.maint.OnNewLeaf(parent, e.nodes.HeadPosition(leafNID(deepest)))
	}

	return nil
}

