// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package arena

// LeafRing is the fixed-size circular leaf table, spec.md §2/§4.1:
// "Leaves live in tleaf[1..tleaf_size]. tleaf_first is the slot of the
// deepest (oldest) leaf currently in the tree; tleaf_last is the
// shallowest (newest). The range is logically circular." Unlike
// branch records (Arena[T], a growable free list), the leaf table's
// size is fixed up front at tleaf_size and addressed purely by modular
// arithmetic on window offset, so it gets its own type rather than
// reusing Arena's grow-and-free-list discipline.
type LeafRing struct {
	records []LeafRecord // length size+1; records[0] unused (1-indexed, like the window buffer)
	size    int64

	first int64 // tleaf_first: slot of the oldest (deepest) leaf
	last  int64 // tleaf_last: slot of the newest (shallowest) leaf
	count int64 // number of live leaf slots between first and last, inclusive
}

// LeafRecord holds both variants' leaf fields: Parent (both), NextSibling
// (SL only, the next child sharing Parent in its sibling chain; always
// 0 for SH), and Start, the window offset where this leaf's suffix
// begins. spec.md's data model does not name Start explicitly (unlike
// a branch's head_position, which the spec already requires), but a
// leaf's edge letter lookup needs a start-of-suffix offset exactly the
// way a branch's does, and re-deriving it from tleaf_first/depth_order
// on every lookup is needless work for an int64 that never changes
// once the leaf is created. See DESIGN.md for this deliberate
// deviation.
type LeafRecord struct {
	Parent      ID
	NextSibling ID // SL only: next child sharing Parent; 0 if none
	Start       int64
}

// wrap maps a 1-based slot index, possibly out of [1,size], back into
// [1,size]. Mirrors window.Advance's "one function owns every
// wraparound" discipline (spec.md DESIGN NOTES §9), kept local here to
// avoid an arena→window import for one three-line helper.
func wrap(slot, size int64) int64 {
	return ((slot-1)%size+size)%size + 1
}

// NewLeafRing allocates an empty ring of the given fixed size
// (tleaf_size, per spec.md §4.1 sizing: next_prime(max_ap_window_size)
// or similar, computed by the caller via internal/primality).
func NewLeafRing(size int64) *LeafRing {
	return &LeafRing{
		records: make([]LeafRecord, size+1),
		size:    size,
		first:   1,
		last:    0,
	}
}

// Size returns tleaf_size.
func (r *LeafRing) Size() int64 { return r.size }

// Count returns the number of currently live leaves.
func (r *LeafRing) Count() int64 { return r.count }

// SlotForDepthOrder returns the 1-based ring slot for a leaf whose
// depth_order (window-offset distance from the active-part begin,
// already reduced mod N by the caller) is depthOrder: slot =
// wrap(tleaf_first + depthOrder, tleaf_size), per spec.md §4.1's leaf
// id formula.
func (r *LeafRing) SlotForDepthOrder(depthOrder int64) int64 {
	return wrap(r.first+depthOrder, r.size)
}

// Extend grows the ring by one (spec.md §4.1 construction step 1:
// "Extend the leaf ring by one: advance tleaf_last cyclically"),
// zeroing the new slot, and returns it. The slot's fields are filled
// in later by Install once the engine knows which parent/suffix this
// leaf actually represents.
func (r *LeafRing) Extend() int64 {
	r.last = wrap(r.last+1, r.size)
	r.records[r.last] = LeafRecord{}
	r.count++
	return r.last
}

// Install sets slot's fields. slot must already have been produced by
// Extend (or be a live slot being overwritten in place, as
// delete_longest_suffix's shorter-leaf replacement does).
func (r *LeafRing) Install(slot int64, rec LeafRecord) {
	r.records[slot] = rec
}

// PopOldest retires the deepest leaf (spec.md §4.6 delete_longest_suffix
// step 6: "Advance tleaf_first cyclically"), returning the slot and the
// record it held before being cleared.
func (r *LeafRing) PopOldest() (slot int64, rec LeafRecord) {
	slot = r.first
	rec = r.records[slot]
	r.records[slot] = LeafRecord{}
	r.first = wrap(r.first+1, r.size)
	r.count--
	return slot, rec
}

// At returns a pointer to the leaf record at the given 1-based slot
// (the absolute value of a leaf id, per spec.md's "leaf id -k encodes
// the k-th leaf record").
func (r *LeafRing) At(slot int64) *LeafRecord { return &r.records[slot] }

// First returns tleaf_first, the oldest live slot.
func (r *LeafRing) First() int64 { return r.first }

// Last returns tleaf_last, the newest live slot.
func (r *LeafRing) Last() int64 { return r.last }
