// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

// Package window implements the sliding-window buffer (SWB) and its
// producer-thread reader, per spec.md §4.2-§4.3 and §5. The buffer is
// a circular array of code units, organized into fixed-size blocks that
// the reader fills and the consumer (the construction engine) drains.
package window

import (
	"errors"
	"fmt"
	"io"

	"github.com/gaissmai/sufftree/internal/codeunit"
)

// ErrEmptyInput is returned when EOF is reached with zero code units
// ever produced (spec.md §4.2 Failure semantics).
var ErrEmptyInput = errors.New("window: empty input")

// ReadState reports how a read_blocks call terminated.
type ReadState byte

const (
	Complete ReadState = iota
	PartialEOF
	// NoMoreData reports that EOF was reached before any code unit of
	// a new block was produced: there is no new block to hand to the
	// consumer, only the end-of-input signal itself.
	NoMoreData
)

func (s ReadState) String() string {
	switch s {
	case PartialEOF:
		return "partial-EOF"
	case NoMoreData:
		return "no-more-data"
	default:
		return "complete"
	}
}

// Advance is the sole circular-position primitive: it maps pos (in
// [1, n]) advanced by delta (which may be negative) back into [1, n].
// Per DESIGN NOTES §9, every scattered "if > n then wrap" normalization
// in this module funnels through this one function.
func Advance(pos, delta int64, n int64) int64 {
	return ((pos-1+delta)%n+n)%n + 1
}

// Buffer is the circular window: totalWindowSize = blockSize *
// swScaleFactor code units, indexed 1..N (index 0 unused), organized
// into swScaleFactor same-size blocks.
//
// Buffer owns the code-unit storage and the block-flag handshake words;
// it does not own tree-construction state. A Buffer is created by Open
// and must be closed with Close.
type Buffer struct {
	src  io.Reader
	conv codeunit.Converter

	blockSize uint64
	swBlocks  int
	n         int64 // total window size N

	data []codeunit.CU // length N+1; data[0] unused

	flags []BlockFlag // length swBlocks

	mrrBlock int // sw_mrr_block: index of most-recently-read block

	finalBlockNumber     int
	finalBlockCharacters int

	readBuf []byte // scratch raw-byte read buffer, reused across Read calls
	pending []byte // raw bytes already read from src but not yet converted
	srcEOF  bool    // true once src.Read has reported io.EOF

	totalProduced uint64 // code units ever produced, across the buffer's lifetime
}

// Config configures Open.
type Config struct {
	Width     codeunit.Width
	BlockSize uint64 // code units per block; spec.md default 8 MiC (8_388_608)
	SWScale   int    // sw_scale_factor, number of blocks; must be > ApScale
}

// DefaultBlockSize is the spec.md §6 default block size (8 MiC).
const DefaultBlockSize = 8 * 1024 * 1024

// Open allocates the circular buffer and block-flag array and binds it
// to src. It does not read anything yet.
func Open(src io.Reader, cfg Config) (*Buffer, error) {
	if cfg.BlockSize == 0 {
		cfg.BlockSize = DefaultBlockSize
	}
	if cfg.SWScale < 1 {
		return nil, fmt.Errorf("window: sw_scale_factor must be >= 1, got %d", cfg.SWScale)
	}
	if !cfg.Width.Valid() {
		return nil, fmt.Errorf("window: invalid code-unit width %v", cfg.Width)
	}

	n := int64(cfg.BlockSize) * int64(cfg.SWScale)

	b := &Buffer{
		src:       src,
		conv:      codeunit.NewConverter(cfg.Width),
		blockSize: cfg.BlockSize,
		swBlocks:  cfg.SWScale,
		n:         n,
		data:      make([]codeunit.CU, n+1),
		flags:     make([]BlockFlag, cfg.SWScale),
		mrrBlock:  -1,
		readBuf:   make([]byte, cfg.BlockSize*4), // worst case 4 bytes/code-unit source
	}
	return b, nil
}

// TotalWindowSize returns N, the full circular buffer capacity in code units.
func (b *Buffer) TotalWindowSize() int64 { return b.n }

// BlockSize returns the configured block size in code units.
func (b *Buffer) BlockSize() uint64 { return b.blockSize }

// NumBlocks returns sw_scale_factor.
func (b *Buffer) NumBlocks() int { return b.swBlocks }

// At returns the code unit at circular window position pos (1..N).
func (b *Buffer) At(pos int64) codeunit.CU { return b.data[pos] }

// blockRange returns the 1-indexed, inclusive window-position range
// covered by block i (0-based).
func (b *Buffer) blockRange(i int) (lo, hi int64) {
	lo = int64(i)*int64(b.blockSize) + 1
	hi = lo + int64(b.blockSize) - 1
	return
}

// ReadBlocks attempts to fill the next k blocks circularly, starting
// after the most-recently-read block. It never touches block flags;
// that is the caller's contract (spec.md §4.2).
func (b *Buffer) ReadBlocks(k int) (blocksRead int, codeUnitsConverted uint64, bytesConsumed uint64, state ReadState, err error) {
	for i := 0; i < k; i++ {
		blk := (b.mrrBlock + 1) % b.swBlocks
		lo, _ := b.blockRange(blk)

		n, bytesN, st, rerr := b.fillOneBlock(lo)
		codeUnitsConverted += uint64(n)
		bytesConsumed += uint64(bytesN)
		b.totalProduced += uint64(n)
		if rerr != nil {
			return blocksRead, codeUnitsConverted, bytesConsumed, state, rerr
		}

		if st == NoMoreData {
			return blocksRead, codeUnitsConverted, bytesConsumed, NoMoreData, nil
		}

		b.mrrBlock = blk
		blocksRead++

		if st == PartialEOF {
			b.finalBlockNumber = blk
			b.finalBlockCharacters = n
			return blocksRead, codeUnitsConverted, bytesConsumed, PartialEOF, nil
		}
	}
	return blocksRead, codeUnitsConverted, bytesConsumed, Complete, nil
}

// fillOneBlock converts code units into data[lo:lo+blockSize] from src,
// returning how many code units landed and how many raw bytes were
// consumed to produce them. Raw bytes read but not consumed by the
// converter (because dst filled up, or because they are an incomplete
// trailing multi-byte sequence) are kept in b.pending for the next
// call, across block boundaries.
func (b *Buffer) fillOneBlock(lo int64) (produced int, bytesConsumed int, state ReadState, err error) {
	dst := b.data[lo : lo+int64(b.blockSize)]

	for produced < len(dst) {
		if len(b.pending) > 0 {
			c, p, cerr := b.conv.Convert(dst[produced:], b.pending)
			b.pending = b.pending[c:]
			bytesConsumed += c
			produced += p
			if cerr != nil {
				return produced, bytesConsumed, Complete, fmt.Errorf("window: %w", cerr)
			}
			if c > 0 || p > 0 {
				continue
			}
			// c == p == 0: pending holds an incomplete trailing
			// sequence too short to decode even one code unit. Need
			// more raw bytes, unless there is nothing more to read.
			if b.srcEOF {
				return produced, bytesConsumed, Complete, fmt.Errorf("window: truncated multi-byte sequence at end of input")
			}
		} else if b.srcEOF {
			if produced == 0 {
				if b.totalProduced == 0 {
					return 0, 0, NoMoreData, ErrEmptyInput
				}
				return 0, bytesConsumed, NoMoreData, nil
			}
			return produced, bytesConsumed, PartialEOF, nil
		}

		nr, rerr := b.src.Read(b.readBuf)
		if nr > 0 {
			b.pending = append(b.pending, b.readBuf[:nr]...)
		}
		switch {
		case rerr == io.EOF:
			b.srcEOF = true
		case rerr != nil:
			return produced, bytesConsumed, Complete, fmt.Errorf("window: read failed: %w", rerr)
		case nr == 0:
			// Reader contract violation guard: a Read returning
			// (0, nil) indefinitely would spin; io.Reader forbids
			// this, but we do not trust external sources blindly.
			return produced, bytesConsumed, Complete, fmt.Errorf("window: reader returned no data and no error")
		}
	}
	return produced, bytesConsumed, Complete, nil
}

// Close releases the buffer. There is nothing to release beyond GC-
// visible slices; Close exists so callers have one symmetric
// acquire/release pair regardless of what a future backing store needs.
func (b *Buffer) Close() error { return nil }

// Flag returns the current flag of block i.
func (b *Buffer) Flag(i int) BlockFlag { return b.flags[i] }

// SetFlag sets the flag of block i. Callers must hold whatever lock
// guards concurrent access (see Handshake); Buffer itself is not
// thread-safe on its own.
func (b *Buffer) SetFlag(i int, f BlockFlag) { b.flags[i] = f }

// MRRBlock returns sw_mrr_block, the most-recently-read block index, or
// -1 if nothing has been read yet.
func (b *Buffer) MRRBlock() int { return b.mrrBlock }

// FinalBlock reports the block number and code-unit count of the final
// (possibly partial) block, valid only once ReadingFinished is true.
func (b *Buffer) FinalBlock() (number, characters int) {
	return b.finalBlockNumber, b.finalBlockCharacters
}
