// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package sufftree

import (
	"fmt"

	"github.com/gaissmai/sufftree/internal/window"
)

// SuffixLinkStrategy selects how a newly split branch's suffix link is
// located: by walking down from the root's child (the default), or by
// walking up from the most recently touched leaf/branch ("minimized
// branching").
type SuffixLinkStrategy int

const (
	TopDown SuffixLinkStrategy = iota
	BottomUp
)

// Engine runs the on-line construction over a Nodes representation
// and the window it reads code units from. It is the sole mutator of
// active-point state (startingPosition, endingPosition, activeNode,
// activeIndex); Nodes only ever sees point operations (BranchOnce,
// AddChild, NewBranch, ...) and has no notion of "where construction
// currently stands."
type Engine struct {
	nodes Nodes
	scan  *scanner
	buf   *window.Buffer
	n     int64
	maint MaintenanceStrategy
	strat SuffixLinkStrategy

	startingPosition int64
	endingPosition   int64
	activeNode       NID
	activeIndex      int64

	// pendingSource is the most recently split branch still waiting
	// for its suffix link to be resolved (spec.md §4.5 Rule 2's
	// "record B as the new pending source").
	pendingSource      NID
	pendingTargetDepth int64

	lastTouched NID // for the bottom-up suffix-link simulation
}

// NewEngine builds an Engine over nodes/buf, starting construction at
// window offset 1 (the first position any real session will fill).
func NewEngine(nodes Nodes, buf *window.Buffer, maint MaintenanceStrategy, strat SuffixLinkStrategy) *Engine {
	n := buf.TotalWindowSize()
	return &Engine{
		nodes:            nodes,
		scan:             &scanner{nodes: nodes, buf: buf, n: n},
		buf:              buf,
		n:                n,
		maint:            maint,
		strat:            strat,
		startingPosition: 1,
		endingPosition:   0,
		activeNode:       Root,
		activeIndex:      1,
	}
}

// ActivePoint returns the current (startingPosition, endingPosition,
// activeNode, activeIndex) tuple, mainly for tests and dump printing.
func (e *Engine) ActivePoint() (startingPosition, endingPosition int64, activeNode NID, activeIndex int64) {
	return e.startingPosition, e.endingPosition, e.activeNode, e.activeIndex
}

// ErrStructuralInvariant reports a condition the construction engine
// treats as a programming bug rather than a runtime failure (spec.md
// §7's "structural invariant violations"): a non-branching parent, an
// edge climb reaching the root without finding the target depth, and
// similar conditions that should never arise from well-formed input.
type ErrStructuralInvariant struct {
	Msg string
}

func (e *ErrStructuralInvariant) Error() string { return "sufftree: invariant violated: " + e.Msg }

// ProlongSuffixes absorbs one newly available window code unit
// (spec.md §4.5): extends endingPosition, then repeatedly extends
// suffixes starting at startingPosition until Rule 3 fires.
func (e *Engine) ProlongSuffixes() error {
	e.endingPosition = window.Advance(e.endingPosition, 1, e.n)

	for {
		done, err := e.prolongSuffix()
		if err != nil {
			return err
		}
		if done {
			return nil
		}
		e.startingPosition = window.Advance(e.startingPosition, 1, e.n)
	}
}

// prolongSuffix extends the single suffix starting at
// startingPosition, reporting whether Rule 3 fired (stop this phase).
func (e *Engine) prolongSuffix() (ruleThree bool, err error) {
	pos := e.activeIndex
	child := e.scan.descend(e.activeNode, pos)

	if child == Undefined {
		return e.rule2NoChild()
	}

	result, lastMatch := e.scan.slowscan(e.activeNode, child, pos, e.endingPosition)
	switch result {
	case boundaryReached:
		return e.rule3Implicit(lastMatch)
	case prefixMismatch:
		return e.rule2Split(child, lastMatch)
	case allMatch:
		return e.rule3Exact(child)
	default:
		return false, &ErrStructuralInvariant{Msg: fmt.Sprintf("unexpected slowscan result %d", result)}
	}
}

// rule3Implicit: the suffix is already implicit inside an edge
// (slowscan ran out of available text before the edge did). Nothing
// new is created; update activeIndex to the new active point and stop
// this phase.
func (e *Engine) rule3Implicit(lastMatch int64) (bool, error) {
	e.activeIndex = lastMatch
	return true, nil
}

// rule3Exact: descent landed exactly on a branching node (slowscan
// matched the whole edge). Move the active point there and stop.
func (e *Engine) rule3Exact(child NID) (bool, error) {
	if child.IsLeaf() {
		// Rule 3 (reached a leaf): the leaf's edge is implicitly
		// extended as the window grows. Restore active_node, hop via
		// suffix link if not root, advance active_index.
		e.hopSuffixLink()
		e.activeIndex = window.Advance(e.activeIndex, 1, e.n)
		return true, nil
	}
	parentDepth := e.nodes.Depth(e.activeNode)
	e.activeNode = child
	e.activeIndex = window.Advance(e.activeIndex, e.nodes.Depth(child)-parentDepth, e.n)
	return true, nil
}

// rule2NoChild: no child of activeNode starts with the current
// letter. Create a leaf directly under activeNode.
func (e *Engine) rule2NoChild() (bool, error) {
	slot := e.nodes.ExtendLeafRing()
	leaf := e.nodes.NewLeaf(e.activeNode, slot, e.startingPosition)
	e.nodes.AddChild(e.activeNode, e.buf.At(e.activeIndex), leaf)

	if _, isCreditCounter := e.maint.(*CreditCounterMaintenance); isCreditCounter && e.activeNode != Root {
		e.maint.OnNewLeaf(e.activeNode, e.startingPosition)
	}

	e.hopSuffixLink()
	e.activeIndex = window.Advance(e.activeIndex, 1, e.n)
	return false, nil
}

// rule2Split: the text mismatches partway along an existing edge.
// Split it at lastMatch, insert a new branch B there and a fresh
// leaf for the current suffix, then resolve any pending suffix link
// and schedule this split's own.
func (e *Engine) rule2Split(child NID, lastMatch int64) (bool, error) {
	parent := e.activeNode
	parentDepth := e.nodes.Depth(parent)
	newDepth := parentDepth + (lastMatch-e.activeIndex+e.n)%e.n
	if lastMatch == e.activeIndex {
		newDepth = parentDepth
	}

	branch := e.nodes.NewBranch(parent, newDepth, e.nodes.HeadPosition(child))
	e.nodes.RemoveChild(parent, e.buf.At(e.nodes.HeadPosition(child)))
	e.nodes.AddChild(parent, e.buf.At(e.nodes.HeadPosition(child)), branch)
	e.nodes.SetParent(child, branch)
	e.nodes.AddChild(branch, e.buf.At(lastMatch), child)

	slot := e.nodes.ExtendLeafRing()
	leaf := e.nodes.NewLeaf(branch, slot, e.startingPosition)
	e.nodes.AddChild(branch, e.buf.At(e.activeIndex), leaf)

	if e.pendingSource != Undefined {
		e.nodes.SetSuffixLink(e.pendingSource, branch)
	}
	e.pendingSource = branch
	e.pendingTargetDepth = newDepth - 1
	e.lastTouched = child

	if err := e.simulateSuffixLink(parent, newDepth); err != nil {
		return false, err
	}

	if _, isCreditCounter := e.maint.(*CreditCounterMaintenance); isCreditCounter {
		e.maint.OnNewLeaf(branch, e.startingPosition)
	}

	e.activeIndex = window.Advance(e.activeIndex, 1, e.n)
	return false, nil
}

// hopSuffixLink moves activeNode to its suffix link target, or to the
// root if activeNode is already the root (spec.md §4.5 "suffix-link-hop
// on active_node if not root").
func (e *Engine) hopSuffixLink() {
	if e.activeNode == Root {
		return
	}
	if link := e.nodes.SuffixLink(e.activeNode); link != Undefined {
		e.activeNode = link
		return
	}
	e.activeNode = Root
}

// simulateSuffixLink locates and, if possible, immediately resolves
// the suffix link for the branch just created at newDepth below
// parent, per spec.md §4.5.
func (e *Engine) simulateSuffixLink(parent NID, newDepth int64) error {
	if e.strat == BottomUp {
		return e.simulateSuffixLinkBottomUp(newDepth)
	}
	return e.simulateSuffixLinkTopDown(parent, newDepth)
}

func (e *Engine) simulateSuffixLinkTopDown(parent NID, newDepth int64) error {
	grandpa := e.nodes.Parent(parent)
	if parent == Root {
		grandpa = Root
	}
	if grandpa != Root {
		link := e.nodes.SuffixLink(grandpa)
		if link != Undefined {
			grandpa = link
		}
	}

	startPos := window.Advance(e.startingPosition, e.nodes.Depth(grandpa), e.n)
	target, err := e.goDown(grandpa, newDepth-1, startPos)
	if err != nil {
		return err
	}
	if target != Undefined {
		e.nodes.SetSuffixLink(e.pendingSource, target)
		e.pendingSource = Undefined
	}
	return nil
}

func (e *Engine) simulateSuffixLinkBottomUp(newDepth int64) error {
	c := e.lastTouched
	var start NID
	if c.IsLeaf() {
		k := leafSlot(c)
		prev := k - 1
		if prev < 1 {
			// slot 1's predecessor wraps around to the ring's last slot.
			prev = e.nodes.Leaves().Size()
		}
		start = leafNID(prev)
	} else {
		link := e.nodes.SuffixLink(c)
		if link == Undefined {
			return nil
		}
		start = link
	}

	target, err := e.goUp(start, newDepth-1)
	if err != nil {
		return err
	}
	if target != Undefined {
		e.nodes.SetSuffixLink(e.pendingSource, target)
		e.pendingSource = Undefined
	}
	return nil
}

// goDown walks from grandpa toward targetDepth by repeated
// branch_once + depthscan, per spec.md §4.5. Returns the node at
// exactly targetDepth, or Undefined if the edge ends too deep (the
// node that would resolve this doesn't exist yet).
func (e *Engine) goDown(grandpa NID, targetDepth, position int64) (NID, error) {
	node := grandpa
	pos := position

	for e.nodes.Depth(node) < targetDepth {
		child := e.scan.descend(node, pos)
		if child == Undefined {
			return Undefined, &ErrStructuralInvariant{Msg: "go_down: branch failure"}
		}
		switch e.scan.depthscan(child, targetDepth) {
		case tooShallow:
			if child.IsLeaf() {
				return Undefined, nil
			}
			pos = window.Advance(pos, e.nodes.Depth(child)-e.nodes.Depth(node), e.n)
			node = child
		case exactDepth:
			return child, nil
		case tooDeep:
			return Undefined, nil
		}
	}
	return node, nil
}

// goUp climbs from child toward targetDepth, stopping exactly on it
// or just below, per spec.md §4.5.
func (e *Engine) goUp(child NID, targetDepth int64) (NID, error) {
	node := child
	for {
		if node.IsLeaf() {
			node = e.nodes.Parent(node)
			continue
		}
		if e.nodes.Depth(node) <= targetDepth {
			if e.nodes.Depth(node) == targetDepth {
				return node, nil
			}
			return Undefined, nil
		}
		parent := e.nodes.Parent(node)
		if parent == node {
			return Undefined, &ErrStructuralInvariant{Msg: "go_up: reached root without finding target depth"}
		}
		node = parent
	}
}
