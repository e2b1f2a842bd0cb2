// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package sufftree

import "github.com/gaissmai/sufftree/internal/arena"

// ringWalker adapts an arena.LeafRing into the leafWalker interface
// BatchMaintenance needs, walking from tleaf_first to tleaf_last (the
// "depth order" spec.md §4.7's batch update requires).
type ringWalker struct {
	ring *arena.LeafRing
}

func (w ringWalker) Walk(fn func(leaf NID)) {
	if w.ring.Count() == 0 {
		return
	}
	slot := w.ring.First()
	last := w.ring.Last()
	size := w.ring.Size()
	for {
		fn(leafNID(slot))
		if slot == last {
			return
		}
		slot++
		if slot > size {
			slot = 1
		}
	}
}

// MaintenanceStrategy keeps every branch's head_position pointing at
// a still-valid window cell as the window slides, per spec.md §4.7's
// two consistency contracts over the same field. DESIGN NOTES §9
// calls for encapsulating both behind one interface so the
// construction loop only ever calls OnNewLeaf/BatchRefresh, never
// open-codes either contract's bookkeeping.
type MaintenanceStrategy interface {
	// OnNewLeaf is called whenever a new leaf is created or an
	// existing leaf is shortened, with the leaf's parent and the
	// window offset the leaf's suffix begins at.
	OnNewLeaf(parent NID, windowOffset int64)
	// BatchRefresh walks every currently-present leaf and refreshes
	// head_position along its root path. A no-op for the
	// credit-counter strategy, which keeps head_position current
	// incrementally instead.
	BatchRefresh() error
}

// isMoreValid reports whether candidate is a strictly better
// head_position for a branch than current, given the active window's
// bounds: a position is more valid the closer it sits to
// apWindowBegin without being older than the current one, per spec.md
// I4's "first window offset of the walked leaf whenever doing so
// strictly improves validity."
func isMoreValid(current, candidate, apWindowBegin, n int64) bool {
	distCurrent := (current - apWindowBegin + n) % n
	distCandidate := (candidate - apWindowBegin + n) % n
	return distCandidate < distCurrent
}

// BatchMaintenance implements spec.md §4.7's default batch update:
// every ap_scale_factor processed blocks, walk all present leaves in
// depth order and refresh head_position along each one's root path,
// stopping early once a node's head_position is already at least as
// valid. Credit bits are unused under this strategy.
type BatchMaintenance struct {
	nodes         Nodes
	leaves        leafWalker
	apWindowBegin func() int64
	n             int64
}

// leafWalker enumerates leaves in depth order (deepest/oldest first)
// for BatchRefresh; the engine supplies this from its LeafRing view
// since MaintenanceStrategy has no direct arena access.
type leafWalker interface {
	Walk(func(leaf NID))
}

// NewBatchMaintenance builds the batch strategy over nodes, reading
// the active window's begin offset from apWindowBegin on each refresh.
func NewBatchMaintenance(nodes Nodes, leaves leafWalker, apWindowBegin func() int64, n int64) *BatchMaintenance {
	return &BatchMaintenance{nodes: nodes, leaves: leaves, apWindowBegin: apWindowBegin, n: n}
}

func (m *BatchMaintenance) OnNewLeaf(parent NID, windowOffset int64) {
	// Batch strategy refreshes head positions in bulk; nothing to do
	// per-leaf.
}

func (m *BatchMaintenance) BatchRefresh() error {
	begin := m.apWindowBegin()
	m.leaves.Walk(func(leaf NID) {
		parent := m.nodes.Parent(leaf)
		offset := m.nodes.HeadPosition(leaf)

		node := parent
		for node != Undefined && node != Root {
			if isMoreValid(m.nodes.HeadPosition(node), offset, begin, m.n) {
				m.nodes.SetHeadPosition(node, offset)
			} else {
				break
			}
			node = m.nodes.Parent(node)
		}
	})
	return nil
}

// CreditCounterMaintenance implements spec.md §4.7's Fiala-Greene
// credit-bit discipline: every new or shortened leaf sends one credit
// rootward; a node with no outstanding credit absorbs it and stops, a
// node that already had one clears it and forwards the credit to its
// own parent.
type CreditCounterMaintenance struct {
	nodes Nodes
}

func NewCreditCounterMaintenance(nodes Nodes) *CreditCounterMaintenance {
	return &CreditCounterMaintenance{nodes: nodes}
}

func (m *CreditCounterMaintenance) OnNewLeaf(parent NID, windowOffset int64) {
	node := parent
	for node != Undefined && node != Root {
		if m.nodes.HeadPosition(node) != windowOffset {
			m.nodes.SetHeadPosition(node, windowOffset)
		}
		if m.nodes.Credit(node) {
			m.nodes.SetCredit(node, false)
			node = m.nodes.Parent(node)
			continue
		}
		m.nodes.SetCredit(node, true)
		return
	}
}

// BatchRefresh is a no-op: credit-counter maintenance keeps
// head_position current incrementally via OnNewLeaf.
func (m *CreditCounterMaintenance) BatchRefresh() error { return nil }
