// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package sufftree

import (
	"errors"
	"fmt"
	"io"

	"github.com/gaissmai/sufftree/internal/codeunit"
	"github.com/gaissmai/sufftree/internal/hashsettings"
	"github.com/gaissmai/sufftree/internal/primality"
	"github.com/gaissmai/sufftree/internal/window"
)

// Variant selects the node representation, spec.md §4.4.
type Variant byte

const (
	SL Variant = iota // first-child/next-brother linked list
	SH                // global (parent, letter) hash table
)

func (v Variant) String() string {
	if v == SH {
		return "SH"
	}
	return "SL"
}

// Algorithm selects the Ukkonen construction variant, spec.md §4.5.
type Algorithm byte

const (
	Ukkonen           Algorithm = iota // "U": top-down suffix-link simulation
	MinimizedBranching                 // "UB": bottom-up simulation
)

// MaintenanceMode selects the edge-label upkeep discipline, spec.md §4.7.
type MaintenanceMode byte

const (
	Batch         MaintenanceMode = iota // "B"
	CreditCounter                        // "F" (Fiala-Greene)
)

// Options configures Open. Mandatory fields have no usable zero value
// and must be set explicitly by the caller (the CLI driver validates
// this before calling Open); library callers get the same contract.
type Options struct {
	Variant   Variant
	Algorithm Algorithm
	Maint     MaintenanceMode

	HashMode    hashsettings.Mode // SH only
	CuckooFuncs int               // SH + Cuckoo only; 0 -> hashsettings.DefaultCuckooFuncs

	Width     codeunit.Width
	BlockSize uint64 // code units per block; 0 -> window.DefaultBlockSize
	APScale   int    // ap_scale_factor, >= 1
	SWScale   int    // sw_scale_factor; 0 -> derived default (see deriveSWScale)

	// Concurrent selects whether the reader runs on its own goroutine
	// (spec.md §4.3's default) or inline on the consumer's goroutine
	// ("if concurrency is unavailable"). The zero value false runs the
	// reader inline; the CLI driver sets it to true.
	Concurrent bool
}

// deriveSWScale implements spec.md §6's "-S n window scale factor
// (default = 2*A under batch, else A+2; must exceed A)".
func deriveSWScale(maint MaintenanceMode, apScale int) int {
	if maint == Batch {
		return 2 * apScale
	}
	return apScale + 2
}

func (o *Options) validate() error {
	if o.APScale < 1 {
		return errors.New("sufftree: ap_scale_factor must be >= 1")
	}
	if o.SWScale <= o.APScale {
		return fmt.Errorf("sufftree: sw_scale_factor (%d) must exceed ap_scale_factor (%d)", o.SWScale, o.APScale)
	}
	if !o.Width.Valid() {
		return fmt.Errorf("sufftree: invalid code-unit width %v", o.Width)
	}
	return nil
}

// Tree is the top-level handle over one sliding-window suffix-tree
// construction session: the window buffer, its reader handshake, the
// chosen Nodes representation, and the construction engine driving
// them together per spec.md §2's control flow.
type Tree struct {
	opts Options

	buf *window.Buffer
	hs  *window.Handshake
	nid Nodes
	eng *Engine
	n   int64

	maxAPWindowSize int64

	blocksSinceRefresh int

	stats Stats
}

// Stats reports construction-session counters, a supplemented feature
// (SPEC_FULL.md): spec.md describes these quantities individually
// (leaf count via the ring, branch count via the arena, rehash count
// in hashtable.go) but never names a single place to read them back
// from, which both the CLI's "-v 2" verbose mode and tests want.
type Stats struct {
	LeavesCreated   int64
	BranchesCreated int64
	Deletions       int64
	BatchRefreshes  int64
	CreditFlips     int64
	BlocksRead      int
}

// Open allocates a window buffer bound to src, builds the chosen Nodes
// representation and construction engine, and returns a ready-to-Build
// Tree. It does not read anything yet.
func Open(src io.Reader, opts Options) (*Tree, error) {
	if opts.BlockSize == 0 {
		opts.BlockSize = window.DefaultBlockSize
	}
	if opts.SWScale == 0 {
		opts.SWScale = deriveSWScale(opts.Maint, opts.APScale)
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}

	buf, err := window.Open(src, window.Config{
		Width:     opts.Width,
		BlockSize: opts.BlockSize,
		SWScale:   opts.SWScale,
	})
	if err != nil {
		return nil, err
	}

	maxAP := int64(opts.BlockSize) * int64(opts.APScale)
	leafRingSize := primality.NextPrime(uint64(maxAP))

	var nodes Nodes
	switch opts.Variant {
	case SL:
		nodes = newSLTree(buf, int64(leafRingSize))
	case SH:
		nodes, err = newSHTree(buf, int64(leafRingSize), opts.HashMode, leafRingSize, opts.CuckooFuncs, opts.Width)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("sufftree: unknown variant %v", opts.Variant)
	}

	var maint MaintenanceStrategy
	t := &Tree{opts: opts, buf: buf, nid: nodes, n: buf.TotalWindowSize(), maxAPWindowSize: maxAP}

	switch opts.Maint {
	case Batch:
		maint = NewBatchMaintenance(nodes, ringWalker{ring: nodes.Leaves()}, func() int64 { return t.eng.startingPosition }, t.n)
	case CreditCounter:
		maint = NewCreditCounterMaintenance(nodes)
	default:
		return nil, fmt.Errorf("sufftree: unknown maintenance mode %v", opts.Maint)
	}

	strat := TopDown
	if opts.Algorithm == MinimizedBranching {
		strat = BottomUp
	}

	t.eng = NewEngine(nodes, buf, maint, strat)
	t.hs = window.NewHandshake(buf)
	return t, nil
}

// Nodes exposes the backing representation, mainly for Dumper/Validate
// callers that need it directly rather than through Tree's own
// convenience wrappers.
func (t *Tree) Nodes() Nodes { return t.nid }

// Engine exposes the construction engine, for Validate and tests.
func (t *Tree) Engine() *Engine { return t.eng }

// Buffer exposes the window buffer, for Dumper.
func (t *Tree) Buffer() *window.Buffer { return t.buf }

// Stats returns a snapshot of the session's running counters.
func (t *Tree) Stats() Stats { return t.stats }

// Build drives the entire session to completion: the reader (inline or
// on its own goroutine), one prolong_suffixes per code unit, one
// delete_longest_suffix per code unit once the active-part window has
// reached max_ap_window_size, and periodic batch edge-label refreshes
// every ap_scale_factor processed blocks, per spec.md §2's control-flow
// summary.
func (t *Tree) Build() error {
	if t.opts.Concurrent {
		go t.hs.RunReader()
		defer t.hs.Cancel()
	}

	for block := 0; ; block++ {
		if !t.opts.Concurrent {
			finished, err := t.hs.RunInline()
			if err != nil {
				return err
			}
			if finished && t.buf.Flag(block%t.buf.NumBlocks()) != window.ReadUnprocessed {
				break
			}
		}

		ready, err := t.hs.AwaitBlock(block % t.buf.NumBlocks())
		if err != nil {
			return err
		}
		if !ready {
			break
		}

		if err := t.consumeBlock(block); err != nil {
			return err
		}
		t.stats.BlocksRead++

		t.blocksSinceRefresh++
		if t.opts.Maint == Batch && t.blocksSinceRefresh >= t.opts.APScale {
			if err := t.eng.maint.BatchRefresh(); err != nil {
				return err
			}
			t.stats.BatchRefreshes++
			t.releaseInUseBlocks()
			t.blocksSinceRefresh = 0
		} else if t.opts.Maint == CreditCounter {
			t.hs.ReleaseBlock(block%t.buf.NumBlocks(), window.Unknown)
		}

		finished, _ := t.hs.Finished()
		if finished && t.buf.Flag(block%t.buf.NumBlocks()) != window.ReadUnprocessed {
			// the block just consumed was the final one
			if t.isFinalBlock(block) {
				break
			}
		}
	}

	return nil
}

func (t *Tree) isFinalBlock(block int) bool {
	num, _ := t.hs.FinalBlock()
	return block%t.buf.NumBlocks() == num
}

// consumeBlock issues one prolong_suffixes (and, once the window is
// saturated, one delete_longest_suffix) per code unit in block.
func (t *Tree) consumeBlock(block int) error {
	blockIdx := block % t.buf.NumBlocks()
	lo := int64(blockIdx)*int64(t.opts.BlockSize) + 1
	hi := lo + int64(t.opts.BlockSize) - 1

	if num, chars := t.hs.FinalBlock(); num == blockIdx && chars > 0 {
		hi = lo + int64(chars) - 1
	}

	for pos := lo; pos <= hi; pos++ {
		if err := t.eng.ProlongSuffixes(); err != nil {
			return err
		}
		t.stats.LeavesCreated++

		for t.windowSize() > t.maxAPWindowSize {
			if err := t.eng.DeleteLongestSuffix(); err != nil {
				return err
			}
			t.stats.Deletions++
		}
	}

	if t.opts.Maint == Batch {
		t.buf.SetFlag(blockIdx, window.StillInUse)
	}
	return nil
}

func (t *Tree) windowSize() int64 {
	start, end, _, _ := t.eng.ActivePoint()
	return (end - start + t.n) % t.n
}

// releaseInUseBlocks flips every StillInUse block back to Unknown:
// once a batch refresh completes, every branch's head_position has
// been rewritten to fall inside the currently valid window, so no
// edge label references raw text in an older block anymore.
func (t *Tree) releaseInUseBlocks() {
	for i := 0; i < t.buf.NumBlocks(); i++ {
		if t.buf.Flag(i) == window.StillInUse {
			t.hs.ReleaseBlock(i, window.Unknown)
		}
	}
}
