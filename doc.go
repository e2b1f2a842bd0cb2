// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

// Package sufftree constructs and maintains a suffix tree over a
// sliding window of streaming text. Unlike an in-memory suffix tree
// built once for a fixed string, the tree continuously absorbs new
// code units at one end and retires the longest (oldest) suffix at
// the other, so it always represents the suffixes of a bounded-length
// text window moving across an arbitrarily long input.
//
// Two node representations are available:
//
//   - SL: each branching node stores first-child/next-brother indices;
//     children of a node form a linked list.
//   - SH: children are looked up in a global hash table keyed by
//     (parent id, first edge code unit), resolved by either Cuckoo
//     hashing or double hashing.
//
// Construction runs an on-line Ukkonen variant adapted to circular
// window indexing, with a choice of suffix-link simulation strategy
// (top-down from the root, or bottom-up from the most recently
// touched node) and a choice of edge-label maintenance discipline
// (periodic batch refresh, or incremental Fiala-Greene credit
// counters) to keep stored edge coordinates pointing into the
// currently valid window as it slides.
//
// Open binds a Tree to an io.Reader; Build drains it to completion,
// running the reader concurrently with construction by default.
package sufftree
