// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package window

import "sync"

// Handshake is the shared state between the reader (producer) goroutine
// and the consumer, per spec.md §5: the block-flag array plus the
// reading_finished/final_block_number/final_block_characters words, all
// protected by one mutex and one condition variable.
//
// Everything else — the tree, the window bytes outside the flags, the
// circular-buffer arithmetic, construction state — is owned by the
// consumer alone and never touched here.
type Handshake struct {
	mu   sync.Mutex
	cond *sync.Cond

	buf *Buffer

	readingFinished bool
	readErr         error
	cancelled       bool
}

// NewHandshake builds the shared reader/consumer state around buf.
func NewHandshake(buf *Buffer) *Handshake {
	h := &Handshake{buf: buf}
	h.cond = sync.NewCond(&h.mu)
	return h
}

// RunReader runs the producer loop until EOF, a fatal read error, or
// cancellation. It is meant to be called as `go h.RunReader()`.
//
// Each cycle: wait for the next block's flag to become Unknown (or for
// cancellation), call ReadBlocks(1), then under the mutex set that
// block's flag to ReadUnprocessed and broadcast. On EOF or error it
// records the handshake words and returns without setting any further
// block flag.
func (h *Handshake) RunReader() {
	for {
		h.mu.Lock()
		next := (h.buf.MRRBlock() + 1) % h.buf.NumBlocks()
		for !h.cancelled && h.buf.Flag(next) != Unknown {
			h.cond.Wait()
		}
		if h.cancelled {
			h.mu.Unlock()
			return
		}
		h.mu.Unlock()

		_, _, _, state, err := h.buf.ReadBlocks(1)

		h.mu.Lock()
		if err != nil {
			h.readingFinished = true
			h.readErr = err
			h.cond.Broadcast()
			h.mu.Unlock()
			return
		}

		if state == NoMoreData {
			h.readingFinished = true
			h.cond.Broadcast()
			h.mu.Unlock()
			return
		}

		h.buf.SetFlag(next, ReadUnprocessed)
		h.cond.Broadcast()

		if state == PartialEOF {
			h.readingFinished = true
			h.cond.Broadcast()
			h.mu.Unlock()
			return
		}
		h.mu.Unlock()
	}
}

// RunInline runs the reader loop inline on the caller's goroutine,
// for when concurrency is unavailable or not desired (spec.md §4.3:
// "If concurrency is unavailable, the reader is absent and the
// consumer calls read_blocks inline"). One call fills exactly one
// block, returning whether reading has now finished.
func (h *Handshake) RunInline() (finished bool, err error) {
	next := (h.buf.MRRBlock() + 1) % h.buf.NumBlocks()
	_, _, _, state, rerr := h.buf.ReadBlocks(1)
	if rerr != nil {
		h.readingFinished = true
		h.readErr = rerr
		return true, rerr
	}
	if state == NoMoreData {
		h.readingFinished = true
		return true, nil
	}
	h.buf.SetFlag(next, ReadUnprocessed)
	if state == PartialEOF {
		h.readingFinished = true
	}
	return h.readingFinished, nil
}

// AwaitBlock blocks until block i's flag is ReadUnprocessed or reading
// has finished. It returns false if reading finished before the block
// ever became available (meaning there is no more input to process).
func (h *Handshake) AwaitBlock(i int) (ready bool, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for h.buf.Flag(i) != ReadUnprocessed {
		if h.readingFinished {
			if h.readErr != nil {
				return false, h.readErr
			}
			return false, nil
		}
		h.cond.Wait()
	}
	return true, nil
}

// ReleaseBlock flips block i back to Unknown (batch mode: once its
// lifetime under edge-label maintenance has ended) or transitions it to
// StillInUse (processed but still referenced by edge labels), and wakes
// the reader.
func (h *Handshake) ReleaseBlock(i int, f BlockFlag) {
	h.mu.Lock()
	h.buf.SetFlag(i, f)
	h.cond.Broadcast()
	h.mu.Unlock()
}

// Cancel tells the reader to stop at its next wakeup and wakes it
// immediately.
func (h *Handshake) Cancel() {
	h.mu.Lock()
	h.cancelled = true
	h.cond.Broadcast()
	h.mu.Unlock()
}

// Finished reports whether the reader has stopped producing, and why.
func (h *Handshake) Finished() (finished bool, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.readingFinished, h.readErr
}

// FinalBlock reports the terminal block number and code-unit count,
// valid once Finished reports true with a nil error.
func (h *Handshake) FinalBlock() (number, characters int) {
	return h.buf.FinalBlock()
}
