// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package sufftree

import (
	"sort"
	"strings"
	"testing"

	"github.com/gaissmai/sufftree/internal/codeunit"
	"github.com/gaissmai/sufftree/internal/hashsettings"
	"github.com/gaissmai/sufftree/internal/window"
)

// collectBranchHeadPositions returns every live non-root branch's
// head_position, sorted, for assertions against spec.md §8's named
// scenarios.
func collectBranchHeadPositions(e *Engine) []int64 {
	var positions []int64
	e.walkBranches(func(b NID) {
		if b == Root {
			return
		}
		positions = append(positions, e.nodes.HeadPosition(b))
	})
	sort.Slice(positions, func(i, j int) bool { return positions[i] < positions[j] })
	return positions
}

// TestScenarioAbabTwoBranchesWithSuffixLink is spec.md §8 scenario 1:
// T = "abab" produces exactly two branching nodes below root, labelled
// "ab" and "b", linked by a suffix link from the deeper to the
// shallower.
func TestScenarioAbabTwoBranchesWithSuffixLink(t *testing.T) {
	e, tr := buildEngine(t, "abab", TopDown)

	abBranch := tr.BranchOnce(Root, codeunit.CU('a'))
	if abBranch == Undefined || !abBranch.IsBranch() {
		t.Fatalf("child of root keyed by 'a' = %d, want a branching node", abBranch)
	}
	if got := tr.Depth(abBranch); got != 2 {
		t.Errorf("depth(\"ab\" branch) = %d, want 2", got)
	}

	bBranch := tr.BranchOnce(Root, codeunit.CU('b'))
	if bBranch == Undefined || !bBranch.IsBranch() {
		t.Fatalf("child of root keyed by 'b' = %d, want a branching node", bBranch)
	}
	if got := tr.Depth(bBranch); got != 1 {
		t.Errorf("depth(\"b\" branch) = %d, want 1", got)
	}

	if got := tr.SuffixLink(abBranch); got != bBranch {
		t.Errorf("suffix_link(\"ab\") = %d, want %d (\"b\" branch)", got, bBranch)
	}

	// The "ab" branch's root-path must actually spell "ab".
	head := tr.HeadPosition(abBranch)
	if got := tr.buf.At(head); got != codeunit.CU('a') {
		t.Errorf("\"ab\" branch head_position %d reads %q, want 'a'", head, got)
	}
	if got := tr.buf.At(window.Advance(head, 1, tr.buf.TotalWindowSize())); got != codeunit.CU('b') {
		t.Errorf("\"ab\" branch's second code unit is %q, want 'b'", got)
	}

	// The "b" branch's root-path must spell "b".
	if got := tr.buf.At(tr.HeadPosition(bBranch)); got != codeunit.CU('b') {
		t.Errorf("\"b\" branch head_position reads %q, want 'b'", got)
	}

	if errs := e.Validate(); len(errs) != 0 {
		t.Errorf("Validate reported %d violations: %v", len(errs), errs)
	}
}

// TestScenarioMississippiElevenLeavesNoDeletion is spec.md §8 scenario
// 2: T = "mississippi" with max_ap_window_size = 11 (block_size=11,
// ap_scale_factor=1, so the active-part window exactly fits the
// input) produces 11 leaves, branching head positions exactly
// {1,2,3,5,6,9}, and never invokes delete_longest_suffix.
func TestScenarioMississippiElevenLeavesNoDeletion(t *testing.T) {
	tr, err := Open(strings.NewReader("mississippi"), Options{
		Variant:   SL,
		Algorithm: Ukkonen,
		Maint:     Batch,
		Width:     codeunit.Width1,
		BlockSize: 11,
		APScale:   1,
		SWScale:   3,

		HashMode:    hashsettings.Cuckoo,
		CuckooFuncs: hashsettings.DefaultCuckooFuncs,

		Concurrent: false,
	})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := tr.Build(); err != nil {
		t.Fatalf("Build: %v", err)
	}

	if errs := tr.Engine().Validate(); len(errs) != 0 {
		t.Errorf("Validate reported %d violations: %v", len(errs), errs)
	}

	if got := tr.Nodes().Leaves().Count(); got != 11 {
		t.Errorf("leaf count = %d, want 11", got)
	}

	if got := tr.Stats().Deletions; got != 0 {
		t.Errorf("Deletions = %d, want 0 (input exactly fills max_ap_window_size)", got)
	}

	got := collectBranchHeadPositions(tr.Engine())
	want := []int64{1, 2, 3, 5, 6, 9}
	if len(got) != len(want) {
		t.Fatalf("branch head positions = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("branch head positions = %v, want %v", got, want)
			break
		}
	}
}
