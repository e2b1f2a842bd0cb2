// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package sufftree

import (
	"strings"
	"testing"

	"github.com/gaissmai/sufftree/internal/codeunit"
)

// buildEngine constructs an Engine over a fresh slTree fixture and
// processes every code unit of text through ProlongSuffixes, mirroring
// spec.md §4.5's one-phase-per-code-unit loop.
func buildEngine(t *testing.T, text string, strat SuffixLinkStrategy) (*Engine, *slTree) {
	t.Helper()
	buf := newTestBuffer(t, text)
	tr := newSLTree(buf, buf.TotalWindowSize())
	maint := NewCreditCounterMaintenance(tr)
	e := NewEngine(tr, buf, maint, strat)

	for range text {
		if err := e.ProlongSuffixes(); err != nil {
			t.Fatalf("ProlongSuffixes: %v", err)
		}
	}
	return e, tr
}

func TestEngineRule2NoChildCreatesLeaf(t *testing.T) {
	e, tr := buildEngine(t, "a", TopDown)

	child := tr.BranchOnce(Root, codeunit.CU('a'))
	if child == Undefined {
		t.Fatal("expected a leaf under root keyed by 'a'")
	}
	if !child.IsLeaf() {
		t.Errorf("child = %d, want a leaf NID", child)
	}

	_, ending, activeNode, activeIndex := e.ActivePoint()
	if ending != 1 {
		t.Errorf("endingPosition = %d, want 1", ending)
	}
	if activeNode != Root {
		t.Errorf("activeNode = %d, want Root", activeNode)
	}
	if activeIndex != 2 {
		t.Errorf("activeIndex = %d, want 2", activeIndex)
	}
}

func TestEngineBuildsDistinctEdgesForDistinctLetters(t *testing.T) {
	_, tr := buildEngine(t, "abc", TopDown)

	for _, c := range []byte{'a', 'b', 'c'} {
		if got := tr.BranchOnce(Root, codeunit.CU(c)); got == Undefined {
			t.Errorf("no child for %q", c)
		}
	}
}

func TestEngineRepeatedLetterSplitsEdge(t *testing.T) {
	// "aab": the second 'a' forces the implicit suffix to progress past
	// the first edge, and the third letter forces Rule 2's split path
	// to run, producing an internal branch below root keyed by 'a'.
	_, tr := buildEngine(t, "aab", TopDown)

	root := tr.BranchOnce(Root, codeunit.CU('a'))
	if root == Undefined {
		t.Fatal("expected an edge from root keyed by 'a'")
	}
	if !root.IsBranch() {
		t.Fatalf("child keyed by 'a' = %d, want a branching node (rule2Split never fired)", root)
	}
	if n := tr.ChildCount(root); n < 2 {
		t.Errorf("branch below root has %d children, want >= 2 (spec.md I2)", n)
	}
}

func TestEngineDumpProducesNoError(t *testing.T) {
	buf := newTestBuffer(t, "banana")
	tr := newSLTree(buf, buf.TotalWindowSize())
	maint := NewCreditCounterMaintenance(tr)
	e := NewEngine(tr, buf, maint, TopDown)

	for range "banana" {
		if err := e.ProlongSuffixes(); err != nil {
			t.Fatalf("ProlongSuffixes: %v", err)
		}
	}

	var sb strings.Builder
	d := NewDumper(tr, buf, Full)
	endingPosition := int64(6)
	if err := d.Dump(&sb, endingPosition); err != nil {
		t.Fatalf("Dump: %v", err)
	}
	if sb.Len() == 0 {
		t.Error("expected at least one edge dumped for a 6-letter text")
	}
}

func TestEngineBottomUpStrategyMatchesTopDown(t *testing.T) {
	_, trTop := buildEngine(t, "abab", TopDown)
	_, trBottom := buildEngine(t, "abab", BottomUp)

	for _, c := range []byte{'a', 'b'} {
		gotTop := trTop.BranchOnce(Root, codeunit.CU(c))
		gotBottom := trBottom.BranchOnce(Root, codeunit.CU(c))
		if (gotTop == Undefined) != (gotBottom == Undefined) {
			t.Errorf("presence of edge %q differs between strategies: top=%v bottom=%v",
				c, gotTop != Undefined, gotBottom != Undefined)
		}
	}
}
