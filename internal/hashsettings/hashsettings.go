// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

// Package hashsettings configures the two edge-hash resolution
// strategies (Cuckoo, double hashing) used by the SH suffix-tree
// variant's child lookup table, per spec.md §4.1.
package hashsettings

import (
	"errors"
	"math/rand/v2"

	"github.com/gaissmai/sufftree/internal/primality"
)

// ErrZeroCapacity is returned when a zero-sized table is requested.
var ErrZeroCapacity = errors.New("hashsettings: zero-sized table requested")

// ErrUnknownMode is returned for an unrecognized resolution mode.
var ErrUnknownMode = errors.New("hashsettings: unknown resolution mode")

// Mode selects the collision-resolution strategy for the edge table.
type Mode byte

const (
	// Cuckoo resolves collisions with k independent hash functions,
	// each owning a disjoint sub-range of the table.
	Cuckoo Mode = iota
	// DoubleHash resolves collisions with a primary and a secondary
	// probe step over one flat table.
	DoubleHash
)

// largest32BitPrime is P in the Cuckoo hash family h_i(x) = ((a*x+b) mod P) mod size + offset.
const largest32BitPrime = 4_294_967_291

// DefaultCuckooFuncs is the default number of Cuckoo hash functions.
const DefaultCuckooFuncs = 8

// MinCuckooFuncs is the minimum allowed number of Cuckoo hash functions.
const MinCuckooFuncs = 2

// cuckooFunc is one of the k independent hash functions for Cuckoo hashing.
// Partition i owns table slots [offset, offset+size).
type cuckooFunc struct {
	a, b   uint64
	size   uint64
	offset uint64
}

func (f cuckooFunc) hash(key uint64) uint64 {
	return (f.a*key+f.b)%largest32BitPrime%f.size + f.offset
}

// Settings holds the configured parameters for one edge table instance.
// It is immutable once built; a rehash builds a fresh Settings.
type Settings struct {
	mode Mode

	// Cuckoo
	funcs []cuckooFunc

	// DoubleHash
	tableSize uint64

	size uint64 // total table size (== tedge_size)
}

// Mode reports the configured resolution strategy.
func (s *Settings) Mode() Mode { return s.mode }

// Size reports tedge_size, the total backing-array length required.
func (s *Settings) Size() uint64 { return s.size }

// NumFuncs reports k for Cuckoo mode, or 0 for double hashing.
func (s *Settings) NumFuncs() int { return len(s.funcs) }

// FuncOffset reports Cuckoo function i's sub-partition start offset
// into the flat tedge array.
func (s *Settings) FuncOffset(i int) uint64 { return s.funcs[i].offset }

// FuncSize reports Cuckoo function i's sub-partition size.
func (s *Settings) FuncSize(i int) uint64 { return s.funcs[i].size }

// NewCuckoo builds Cuckoo settings sized for at least n entries, using k
// independent hash functions (k is clamped to [MinCuckooFuncs, ...], 0
// meaning "use DefaultCuckooFuncs").
//
// Sub-range 0 has size next_prime(ceil(n/k)); sub-range i>0 has size
// next_prime(size of sub-range i-1). tedge_size is the sum of all
// sub-range sizes.
func NewCuckoo(n uint64, k int) (*Settings, error) {
	if n == 0 {
		return nil, ErrZeroCapacity
	}
	if k == 0 {
		k = DefaultCuckooFuncs
	}
	if k < MinCuckooFuncs {
		k = MinCuckooFuncs
	}

	funcs := make([]cuckooFunc, k)

	size := primality.NextPrime(ceilDiv(n, uint64(k)))
	var offset uint64

	for i := 0; i < k; i++ {
		if i > 0 {
			size = primality.NextPrime(size)
		}

		funcs[i] = cuckooFunc{
			a:      randRange(1, largest32BitPrime),
			b:      randRange(0, largest32BitPrime),
			size:   size,
			offset: offset,
		}
		offset += size
	}

	return &Settings{mode: Cuckoo, funcs: funcs, size: offset}, nil
}

// NewDoubleHash builds double-hashing settings sized for at least n entries.
func NewDoubleHash(n uint64) (*Settings, error) {
	if n == 0 {
		return nil, ErrZeroCapacity
	}

	size := primality.NextPrime(max(n, 3))
	return &Settings{
		mode:      DoubleHash,
		tableSize: size,
		size:      size,
	}, nil
}

// New builds Settings for the requested mode. k is only meaningful for Cuckoo.
func New(mode Mode, n uint64, k int) (*Settings, error) {
	switch mode {
	case Cuckoo:
		return NewCuckoo(n, k)
	case DoubleHash:
		return NewDoubleHash(n)
	default:
		return nil, ErrUnknownMode
	}
}

// CuckooHash returns h_i(key) for the i-th Cuckoo function.
// Panics (a bug, not a runtime condition) if called outside Cuckoo mode or i is out of range.
func (s *Settings) CuckooHash(i int, key uint64) uint64 {
	return s.funcs[i].hash(key)
}

// PrimaryHash returns the primary double-hashing probe index.
func (s *Settings) PrimaryHash(key uint64) uint64 {
	return key % s.tableSize
}

// SecondaryHash returns the double-hashing probe step. It is always
// positive and, because tableSize is prime and >= 3, never equal to a
// multiple of tableSize, so the probe sequence visits every slot before
// repeating.
func (s *Settings) SecondaryHash(key uint64) uint64 {
	return key%(s.tableSize-2) + 1
}

// Key composes the Cuckoo/double-hash lookup key from a parent node id
// and an edge letter, per spec.md §4.1: source_node XOR (letter << 32).
func Key(sourceNode int64, letter uint32) uint64 {
	return uint64(sourceNode) ^ (uint64(letter) << 32)
}

func ceilDiv(n, d uint64) uint64 {
	return (n + d - 1) / d
}

func randRange(lo, hi uint64) uint64 {
	return lo + rand.Uint64N(hi-lo)
}
