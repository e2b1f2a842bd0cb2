// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package sufftree

import (
	"errors"

	"github.com/bits-and-blooms/bitset"
	"github.com/gaissmai/sufftree/internal/codeunit"
	"github.com/gaissmai/sufftree/internal/hashsettings"
)

// ErrEdgeTableFull is returned by edgeTable.insert when no free slot
// could be found for a Cuckoo displacement chain within the iteration
// budget, or when double hashing has probed every slot. The caller
// (shTree) responds by rehashing into a larger table, per spec.md
// §4.8's ht_rehash.
var ErrEdgeTableFull = errors.New("sufftree: edge table full, rehash required")

// cuckooBudget bounds a single insert's displacement chain length
// before giving up and asking the caller to rehash, per spec.md §4.8
// ("bounded retry count, default 1024, to avoid an unbounded
// displacement cycle").
const cuckooBudget = 1024

// edgeSlot is one entry of the SH variant's global edge table,
// spec.md §4.1's "(source_node, target_node)" hash table record. The
// edge letter is stored alongside the pair: spec.md's composite hash
// key already folds (source_node, letter) together before hashing, so
// two different letters under the same parent usually probe different
// candidate slots, but a genuine hash collision between
// unrelated keys can still park an unrelated entry at a slot this
// parent also probes. Without the letter recorded in the slot there
// would be no way to tell that apart from "this is my edge" by
// inspecting source_node alone, since source_node is the parent id and
// is shared by every one of that parent's children. Recording the
// letter is the cheapest fix and the only correct one short of a
// collision-free hash family.
type edgeSlot struct {
	Source    NID
	Letter    codeunit.CU
	Target    NID
	Tombstone bool // double hashing only: deleted-but-probed-through marker
}

func (s edgeSlot) isEmpty() bool { return s.Source == Undefined && !s.Tombstone }

func (s edgeSlot) matches(parent NID, c codeunit.CU) bool {
	return !s.isEmpty() && !s.Tombstone && s.Source == parent && s.Letter == c
}

// edgeTable is the SH variant's global child-lookup table: one flat
// array shared by every branching node, addressed by hashsettings'
// Cuckoo or double-hashing scheme (spec.md §4.1/§4.8). It holds only
// primary lookup; per-parent enumeration (Keys, SoleChild) is served
// separately by internal/childindex, since a hash table has no native
// "list this parent's children" operation.
type edgeTable struct {
	settings *hashsettings.Settings
	slots    []edgeSlot

	// occupied tracks live (non-empty, non-tombstone) slots so
	// rehash can walk only occupied entries instead of the whole
	// backing array. One bitset per Cuckoo sub-partition (indexed by
	// local offset within the partition); a single whole-table
	// bitset for double hashing.
	occupied []*bitset.BitSet

	live     uint64 // count of occupied entries
	capHint  uint64 // n last passed to hashsettings.New, for rehash growth
	funcHint int    // k last passed to hashsettings.New (Cuckoo only)
}

// newEdgeTable builds an edge table sized for at least n entries.
func newEdgeTable(mode hashsettings.Mode, n uint64, k int) (*edgeTable, error) {
	settings, err := hashsettings.New(mode, n, k)
	if err != nil {
		return nil, err
	}

	t := &edgeTable{
		settings: settings,
		slots:    make([]edgeSlot, settings.Size()),
		capHint:  n,
		funcHint: k,
	}

	if mode == hashsettings.Cuckoo {
		t.occupied = make([]*bitset.BitSet, settings.NumFuncs())
		for i := range t.occupied {
			t.occupied[i] = bitset.New(uint(settings.FuncSize(i)))
		}
	} else {
		t.occupied = []*bitset.BitSet{bitset.New(uint(settings.Size()))}
	}

	return t, nil
}

func (t *edgeTable) key(parent NID, c codeunit.CU) uint64 {
	return hashsettings.Key(int64(parent), uint32(c))
}

func (t *edgeTable) markOccupied(idx uint64, occupied bool) {
	if t.settings.Mode() == hashsettings.Cuckoo {
		for i := 0; i < t.settings.NumFuncs(); i++ {
			off := t.settings.FuncOffset(i)
			size := t.settings.FuncSize(i)
			if idx >= off && idx < off+size {
				if occupied {
					t.occupied[i].Set(uint(idx - off))
				} else {
					t.occupied[i].Clear(uint(idx - off))
				}
				return
			}
		}
		return
	}
	if occupied {
		t.occupied[0].Set(uint(idx))
	} else {
		t.occupied[0].Clear(uint(idx))
	}
}

// lookup returns the child reached from parent by c, per spec.md
// §4.8's ht_lookup.
func (t *edgeTable) lookup(parent NID, c codeunit.CU) (NID, bool) {
	key := t.key(parent, c)

	if t.settings.Mode() == hashsettings.Cuckoo {
		for i := 0; i < t.settings.NumFuncs(); i++ {
			idx := t.settings.CuckooHash(i, key)
			if t.slots[idx].matches(parent, c) {
				return t.slots[idx].Target, true
			}
		}
		return Undefined, false
	}

	tableSize := t.settings.Size()
	primary := t.settings.PrimaryHash(key)
	step := t.settings.SecondaryHash(key)
	idx := primary
	for i := uint64(0); i < tableSize; i++ {
		slot := t.slots[idx]
		if slot.isEmpty() {
			return Undefined, false
		}
		if slot.matches(parent, c) {
			return slot.Target, true
		}
		idx = (idx + step) % tableSize
	}
	return Undefined, false
}

// insert records or overwrites the edge (parent, c) -> target, per
// spec.md §4.8's ht_insert. Returns ErrEdgeTableFull if the caller
// must rehash into a larger table before retrying.
func (t *edgeTable) insert(parent NID, c codeunit.CU, target NID) error {
	key := t.key(parent, c)

	if t.settings.Mode() == hashsettings.Cuckoo {
		return t.cuckooInsert(parent, c, target, key)
	}
	return t.doubleHashInsert(parent, c, target, key)
}

func (t *edgeTable) cuckooInsert(parent NID, c codeunit.CU, target NID, key uint64) error {
	// Overwrite in place, or take the first empty candidate slot,
	// before resorting to displacement.
	for i := 0; i < t.settings.NumFuncs(); i++ {
		idx := t.settings.CuckooHash(i, key)
		if t.slots[idx].matches(parent, c) {
			t.slots[idx].Target = target
			return nil
		}
		if t.slots[idx].isEmpty() {
			t.slots[idx] = edgeSlot{Source: parent, Letter: c, Target: target}
			t.markOccupied(idx, true)
			t.live++
			return nil
		}
	}

	// Every candidate slot occupied by someone else: displace,
	// rotating which function's slot we evict from so a single
	// unlucky key doesn't get bounced between the same two slots.
	evict := edgeSlot{Source: parent, Letter: c, Target: target}
	funcIdx := 0

	type move struct {
		idx  uint64
		prev edgeSlot
	}
	var path []move

	for iter := 0; iter < cuckooBudget; iter++ {
		idx := t.settings.CuckooHash(funcIdx, t.key(evict.Source, evict.Letter))
		displaced := t.slots[idx]
		path = append(path, move{idx: idx, prev: displaced})
		t.slots[idx] = evict
		t.markOccupied(idx, true)

		if displaced.isEmpty() {
			t.live++
			return nil
		}

		evict = displaced
		funcIdx = (funcIdx + 1) % t.settings.NumFuncs()
	}

	// Over budget: undo the chain so every entry present before this
	// call is back in its slot for rehash to carry over.
	for i := len(path) - 1; i >= 0; i-- {
		t.slots[path[i].idx] = path[i].prev
	}
	return ErrEdgeTableFull
}

func (t *edgeTable) doubleHashInsert(parent NID, c codeunit.CU, target NID, key uint64) error {
	tableSize := t.settings.Size()
	primary := t.settings.PrimaryHash(key)
	step := t.settings.SecondaryHash(key)
	idx := primary

	firstTombstone := int64(-1)

	for i := uint64(0); i < tableSize; i++ {
		slot := t.slots[idx]
		switch {
		case slot.matches(parent, c):
			t.slots[idx].Target = target
			return nil
		case slot.isEmpty():
			at := idx
			if firstTombstone >= 0 {
				at = uint64(firstTombstone)
			}
			t.slots[at] = edgeSlot{Source: parent, Letter: c, Target: target}
			t.markOccupied(at, true)
			t.live++
			return nil
		case slot.Tombstone && firstTombstone < 0:
			firstTombstone = int64(idx)
		}
		idx = (idx + step) % tableSize
	}

	if firstTombstone >= 0 {
		at := uint64(firstTombstone)
		t.slots[at] = edgeSlot{Source: parent, Letter: c, Target: target}
		t.markOccupied(at, true)
		t.live++
		return nil
	}

	return ErrEdgeTableFull
}

// delete removes the edge (parent, c), per spec.md §4.8's ht_delete.
// Reports whether an entry was found.
func (t *edgeTable) delete(parent NID, c codeunit.CU) bool {
	key := t.key(parent, c)

	if t.settings.Mode() == hashsettings.Cuckoo {
		for i := 0; i < t.settings.NumFuncs(); i++ {
			idx := t.settings.CuckooHash(i, key)
			if t.slots[idx].matches(parent, c) {
				t.slots[idx] = edgeSlot{}
				t.markOccupied(idx, false)
				t.live--
				return true
			}
		}
		return false
	}

	tableSize := t.settings.Size()
	primary := t.settings.PrimaryHash(key)
	step := t.settings.SecondaryHash(key)
	idx := primary
	for i := uint64(0); i < tableSize; i++ {
		slot := t.slots[idx]
		if slot.isEmpty() {
			return false
		}
		if slot.matches(parent, c) {
			t.slots[idx] = edgeSlot{Tombstone: true}
			t.markOccupied(idx, false)
			t.live--
			return true
		}
		idx = (idx + step) % tableSize
	}
	return false
}

// rehash rebuilds the table at a larger capacity and reinserts every
// live entry, walking only the occupied bitsets rather than the full
// backing array (spec.md §4.8's ht_rehash).
func (t *edgeTable) rehash(newN uint64) error {
	if newN < t.capHint*2 {
		newN = t.capHint * 2
	}

	fresh, err := newEdgeTable(t.settings.Mode(), newN, t.funcHint)
	if err != nil {
		return err
	}

	if t.settings.Mode() == hashsettings.Cuckoo {
		for i := 0; i < t.settings.NumFuncs(); i++ {
			off := t.settings.FuncOffset(i)
			bs := t.occupied[i]
			for local, ok := bs.NextSet(0); ok; local, ok = bs.NextSet(local + 1) {
				slot := t.slots[off+uint64(local)]
				if err := fresh.insert(slot.Source, slot.Letter, slot.Target); err != nil {
					return err
				}
			}
		}
	} else {
		bs := t.occupied[0]
		for local, ok := bs.NextSet(0); ok; local, ok = bs.NextSet(local + 1) {
			slot := t.slots[local]
			if !slot.isEmpty() && !slot.Tombstone {
				if err := fresh.insert(slot.Source, slot.Letter, slot.Target); err != nil {
					return err
				}
			}
		}
	}

	*t = *fresh
	return nil
}

// insertWithGrowth is insert, automatically rehashing and retrying
// once if the table reports itself full.
func (t *edgeTable) insertWithGrowth(parent NID, c codeunit.CU, target NID) error {
	err := t.insert(parent, c, target)
	if err == nil {
		return nil
	}
	if !errors.Is(err, ErrEdgeTableFull) {
		return err
	}
	if rerr := t.rehash(t.settings.Size() + 1); rerr != nil {
		return rerr
	}
	return t.insert(parent, c, target)
}
