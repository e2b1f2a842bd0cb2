// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

// Package arena stores branch and leaf records by stable integer index
// rather than by pointer, since the construction engine's suffix links
// and parent references (spec.md §2-3) must survive a record being
// freed and its slot later reused for a different record: a GC-managed
// *T would make a stale reference silently point at someone else's
// node without a way to detect it, whereas with indices a slot is
// reused only through Free and Alloc. The arena keeps no generation
// counter, so it does not detect a stale index either. Branches are freed onto
// tbranch_deleted and handed back out before the backing slice ever
// grows, per spec.md §4.1/§4.6.
package arena

import "sync"

// ID indexes into an Arena's backing slice. The zero value is a valid
// index (slot 0); callers needing a sentinel "no node" value use a
// type with its own reserved constant (see Root/Undefined in the root
// package) rather than relying on ID's zero value meaning "absent".
type ID int32

// Arena is a slice-backed, index-addressed store of T records with
// free-list reuse. It generalizes the teacher's pool[V] (sync.Pool +
// live/allocated counters, see pool.go) from a GC-backed pointer pool
// to an explicit, deterministically-reused free list, because branch
// and leaf records are referenced by index from other records
// (parent, suffix link, sibling chains) and must not be reclaimed by
// the garbage collector out from under a live reference.
type Arena[T any] struct {
	mu      sync.Mutex
	records []T
	deleted []ID // free list, LIFO (tbranch_deleted)

	allocated int64 // total records ever grown into records
	live      int64 // records currently checked out (not on the free list)
}

// New returns an empty arena. Capacity hints the initial backing slice
// size; 0 is fine and just means the first Alloc grows from scratch.
func New[T any](capacityHint int) *Arena[T] {
	a := &Arena[T]{}
	if capacityHint > 0 {
		a.records = make([]T, 0, capacityHint)
	}
	return a
}

// Alloc returns the index of a record ready for use: first from the
// free list (§4.1 "reuse deleted branch/leaf slots before extending
// the array"), falling back to growing the backing slice. The record
// at that index is zeroed before being handed out.
func (a *Arena[T]) Alloc() ID {
	a.mu.Lock()
	defer a.mu.Unlock()

	if n := len(a.deleted); n > 0 {
		id := a.deleted[n-1]
		a.deleted = a.deleted[:n-1]
		var zero T
		a.records[id] = zero
		a.live++
		return id
	}

	id := ID(len(a.records))
	var zero T
	a.records = append(a.records, zero)
	a.allocated++
	a.live++
	return id
}

// Free pushes id onto the free list for future reuse by Alloc. It does
// not shrink the backing slice; the slot is simply marked available.
func (a *Arena[T]) Free(id ID) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.deleted = append(a.deleted, id)
	a.live--
}

// At returns a pointer to the record at id, valid until the next Free
// of that same id. The caller is responsible for external
// synchronization of concurrent record mutation; Arena only guards its
// own bookkeeping (records slice growth, free list).
func (a *Arena[T]) At(id ID) *T {
	return &a.records[id]
}

// Len reports the current backing-slice length (allocated slots,
// including any presently on the free list).
func (a *Arena[T]) Len() int {
	return len(a.records)
}

// Stats returns the number of currently live (not-freed) records and
// the total number ever grown into the backing slice, mirroring the
// teacher's pool.Stats().
func (a *Arena[T]) Stats() (live int64, allocated int64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.live, a.allocated
}
