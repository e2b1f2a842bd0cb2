// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package sufftree

import (
	"strings"
	"testing"

	"github.com/gaissmai/sufftree/internal/codeunit"
	"github.com/gaissmai/sufftree/internal/window"
)

func newTestBuffer(t *testing.T, text string) *window.Buffer {
	t.Helper()
	buf, err := window.Open(strings.NewReader(text), window.Config{
		Width:     codeunit.Width1,
		BlockSize: uint64(len(text)),
		SWScale:   4,
	})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, _, _, _, err := buf.ReadBlocks(4); err != nil {
		t.Fatalf("ReadBlocks: %v", err)
	}
	return buf
}

func TestSLTreeNewBranchAndChildren(t *testing.T) {
	buf := newTestBuffer(t, "abcd")
	tr := newSLTree(buf, buf.TotalWindowSize())

	if tr.Depth(Root) != 0 {
		t.Fatalf("root depth = %d, want 0", tr.Depth(Root))
	}

	child := tr.NewBranch(Root, 1, 1) // head_position=1 -> edge letter 'a'
	tr.AddChild(Root, codeunit.CU('a'), child)

	if got := tr.BranchOnce(Root, codeunit.CU('a')); got != child {
		t.Fatalf("BranchOnce('a') = %d, want %d", got, child)
	}
	if got := tr.BranchOnce(Root, codeunit.CU('z')); got != Undefined {
		t.Fatalf("BranchOnce('z') = %d, want Undefined", got)
	}
	if n := tr.ChildCount(Root); n != 1 {
		t.Fatalf("ChildCount = %d, want 1", n)
	}

	sole, key := tr.SoleChild(Root)
	if sole != child || key != codeunit.CU('a') {
		t.Fatalf("SoleChild = (%d,%c), want (%d,a)", sole, key, child)
	}

	tr.RemoveChild(Root, codeunit.CU('a'))
	if n := tr.ChildCount(Root); n != 0 {
		t.Fatalf("ChildCount after remove = %d, want 0", n)
	}
}

func TestSLTreeMultipleChildrenOrder(t *testing.T) {
	buf := newTestBuffer(t, "abcd")
	tr := newSLTree(buf, buf.TotalWindowSize())

	a := tr.NewBranch(Root, 1, 1) // 'a'
	b := tr.NewBranch(Root, 1, 2) // 'b'
	c := tr.NewBranch(Root, 1, 3) // 'c'
	tr.AddChild(Root, codeunit.CU('a'), a)
	tr.AddChild(Root, codeunit.CU('b'), b)
	tr.AddChild(Root, codeunit.CU('c'), c)

	if n := tr.ChildCount(Root); n != 3 {
		t.Fatalf("ChildCount = %d, want 3", n)
	}
	for _, tc := range []struct {
		c    byte
		want NID
	}{{'a', a}, {'b', b}, {'c', c}} {
		if got := tr.BranchOnce(Root, codeunit.CU(tc.c)); got != tc.want {
			t.Errorf("BranchOnce(%c) = %d, want %d", tc.c, got, tc.want)
		}
	}

	tr.RemoveChild(Root, codeunit.CU('b'))
	if n := tr.ChildCount(Root); n != 2 {
		t.Fatalf("ChildCount after remove = %d, want 2", n)
	}
	if got := tr.BranchOnce(Root, codeunit.CU('b')); got != Undefined {
		t.Fatalf("BranchOnce('b') after remove = %d, want Undefined", got)
	}
}

func TestSLTreeCreditBitPreservedAcrossSetParent(t *testing.T) {
	buf := newTestBuffer(t, "abcd")
	tr := newSLTree(buf, buf.TotalWindowSize())

	n := tr.NewBranch(Root, 1, 1)
	tr.SetCredit(n, true)
	if !tr.Credit(n) {
		t.Fatal("expected credit bit set")
	}

	other := tr.NewBranch(Root, 1, 2)
	tr.SetParent(n, other)
	if !tr.Credit(n) {
		t.Fatal("SetParent must preserve credit bit")
	}
	if got := tr.Parent(n); got != other {
		t.Fatalf("Parent = %d, want %d", got, other)
	}
}

func TestSLTreeLeafHeadPositionAndParent(t *testing.T) {
	buf := newTestBuffer(t, "abcd")
	tr := newSLTree(buf, buf.TotalWindowSize())

	slot := tr.ExtendLeafRing()
	leaf := tr.NewLeaf(Root, slot, 3)

	if got := tr.HeadPosition(leaf); got != 3 {
		t.Fatalf("HeadPosition(leaf) = %d, want 3", got)
	}
	if got := tr.Parent(leaf); got != Root {
		t.Fatalf("Parent(leaf) = %d, want Root", got)
	}

	tr.SetHeadPosition(leaf, 4)
	if got := tr.HeadPosition(leaf); got != 4 {
		t.Fatalf("HeadPosition(leaf) after set = %d, want 4", got)
	}
}

func TestSLTreeFreeBranchMarksDead(t *testing.T) {
	buf := newTestBuffer(t, "abcd")
	tr := newSLTree(buf, buf.TotalWindowSize())

	n := tr.NewBranch(Root, 1, 1)
	if !tr.BranchLive(n) {
		t.Fatal("newly allocated branch should be live")
	}
	tr.FreeBranch(n)
	if tr.BranchLive(n) {
		t.Fatal("freed branch should not be live")
	}
	if tr.BranchLive(Root) == false {
		t.Fatal("root should remain live")
	}
}
