// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

// Package childindex is the SH node representation's auxiliary
// per-parent child list: DESIGN NOTES §9 calls for keeping a per-branch
// child list alongside the (parent, first-edge-character) hash table,
// since the hash table alone supports point lookup but not "enumerate
// every child of this branch in first-edge-character order," which
// §4.4's traversal and dump printing need.
//
// List's Width1 path wraps the teacher's internal/sparse.Array256[T]
// directly (popcount-compressed sparse array over a fixed 256-slot
// bitset, itself keyed by a byte — an IPv4/IPv6 address octet there, a
// single-width code unit here). For wider code-unit alphabets
// (Width2/Width4) the fixed 256-slot bitset cannot address the full
// key space, so List falls back to a plain map for those widths.
package childindex

import (
	"sort"

	"github.com/gaissmai/sufftree/internal/arena"
	"github.com/gaissmai/sufftree/internal/codeunit"
	"github.com/gaissmai/sufftree/internal/sparse"
)

// List is one branch's children, keyed by the code unit labeling the
// first character of the edge leading to each child.
type List interface {
	// Insert adds or overwrites the child for key, reporting whether a
	// child was already present under that key.
	Insert(key codeunit.CU, child arena.ID) (existed bool)
	// Delete removes the child for key, reporting whether it was present.
	Delete(key codeunit.CU) (existed bool)
	// Get looks up the child for key.
	Get(key codeunit.CU) (child arena.ID, ok bool)
	// Len reports the number of children.
	Len() int
	// Keys returns the children's keys in ascending order, the order
	// spec.md §4.4's "probe every code-unit value from MIN_CU to
	// MAX_CU-1" traversal and the dump printer walk children in.
	Keys() []codeunit.CU
}

// New returns the List implementation appropriate for width.
func New(width codeunit.Width) List {
	if width == codeunit.Width1 {
		return &byteList{}
	}
	return &mapList{children: make(map[codeunit.CU]arena.ID)}
}

// byteList is the Array256-shaped fast path for a single-byte
// alphabet, a thin key-type wrapper (codeunit.CU in, uint out) around
// sparse.Array256[arena.ID] — InsertAt/DeleteAt/Get/Len/popcount
// machinery are reused unchanged.
type byteList struct {
	sparse.Array256[arena.ID]
}

func (l *byteList) Insert(key codeunit.CU, child arena.ID) (existed bool) {
	return l.InsertAt(uint(key), child)
}

func (l *byteList) Delete(key codeunit.CU) (existed bool) {
	_, existed = l.DeleteAt(uint(key))
	return existed
}

func (l *byteList) Get(key codeunit.CU) (child arena.ID, ok bool) {
	return l.Array256.Get(uint(key))
}

func (l *byteList) Keys() []codeunit.CU {
	all := l.All()
	keys := make([]codeunit.CU, len(all))
	for i, bit := range all {
		keys[i] = codeunit.CU(bit)
	}
	return keys
}

// mapList is the fallback for Width2/Width4 alphabets, where a fixed
// 256-slot bitset cannot address the key space.
type mapList struct {
	children map[codeunit.CU]arena.ID
}

func (l *mapList) Insert(key codeunit.CU, child arena.ID) (existed bool) {
	_, existed = l.children[key]
	l.children[key] = child
	return existed
}

func (l *mapList) Delete(key codeunit.CU) (existed bool) {
	_, existed = l.children[key]
	delete(l.children, key)
	return existed
}

func (l *mapList) Get(key codeunit.CU) (child arena.ID, ok bool) {
	child, ok = l.children[key]
	return
}

func (l *mapList) Len() int { return len(l.children) }

func (l *mapList) Keys() []codeunit.CU {
	keys := make([]codeunit.CU, 0, len(l.children))
	for k := range l.children {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
