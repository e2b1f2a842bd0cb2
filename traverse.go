// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package sufftree

import (
	"fmt"
	"io"
	"strings"

	"github.com/gaissmai/sufftree/internal/arena"
	"github.com/gaissmai/sufftree/internal/codeunit"
	"github.com/gaissmai/sufftree/internal/window"
)

// DumpFormat selects how much detail Dump prints per edge.
type DumpFormat int

const (
	// Full prints the suffix-link target alongside every edge.
	Full DumpFormat = iota
	// Simple suppresses the trailing {suffix-link-target}.
	Simple
)

// labelTruncateThreshold/labelTruncateHalf implement spec.md §6's edge
// label truncation rule: labels at or above the threshold print their
// first and last labelTruncateHalf code units, joined by "...".
const labelTruncateThreshold = 33
const labelTruncateHalf = 15

// Dumper walks a built tree depth-first and prints its edges in the
// format spec.md §6 names:
// P(<id>)[<depth>]--"<label>"(<len>)-->C(<id>)[<depth>]{<link>}
// Grounded on dumper.go's recursive-descent-over-an-io.Writer shape,
// generalized from a fixed two-root (IPv4/IPv6) CIDR dump to a single
// arbitrary-depth tree.
type Dumper struct {
	nodes  Nodes
	buf    *window.Buffer
	n      int64
	format DumpFormat
}

// NewDumper builds a Dumper over nodes/buf.
func NewDumper(nodes Nodes, buf *window.Buffer, format DumpFormat) *Dumper {
	return &Dumper{nodes: nodes, buf: buf, n: buf.TotalWindowSize(), format: format}
}

// Dump writes every edge reachable from root to w.
func (d *Dumper) Dump(w io.Writer, endingPosition int64) error {
	return d.dumpRec(w, Root, endingPosition)
}

func (d *Dumper) dumpRec(w io.Writer, parent NID, endingPosition int64) error {
	for _, c := range d.children(parent) {
		child := d.nodes.BranchOnce(parent, c)
		if child == Undefined {
			continue
		}
		if err := d.dumpEdge(w, parent, child, endingPosition); err != nil {
			return err
		}
		if child.IsBranch() {
			if err := d.dumpRec(w, child, endingPosition); err != nil {
				return err
			}
		}
	}

	return nil
}

// children enumerates parent's children: slTree in sibling-chain order
// (most recently added first), shTree in ascending key order. slTree
// walks its sibling chain; shTree walks its parallel
// childindex.List — either way this is the only place Dump needs to
// know the representation differs at all.
func (d *Dumper) children(parent NID) []codeunit.CU {
	switch t := d.nodes.(type) {
	case *slTree:
		var keys []codeunit.CU
		for c := t.rec(parent).firstChild; c != Undefined; c = t.nextBrother(c) {
			keys = append(keys, t.edgeLetter(c))
		}
		return keys
	case *shTree:
		return t.children[arena.ID(branchIndex(parent))].Keys()
	default:
		return nil
	}
}

func (d *Dumper) dumpEdge(w io.Writer, parent, child NID, endingPosition int64) error {
	label, length := d.label(child, endingPosition)
	linkSuffix := ""
	if d.format == Full && child.IsBranch() {
		if link := d.nodes.SuffixLink(child); link != Undefined {
			linkSuffix = fmt.Sprintf("{%d}", link)
		} else {
			linkSuffix = "{}"
		}
	}

	childDepth := "?"
	if child.IsBranch() {
		childDepth = fmt.Sprintf("%d", d.nodes.Depth(child))
	}

	_, err := fmt.Fprintf(w, "P(%d)[%d]--%q(%d)-->C(%d)[%s]%s\n",
		parent, d.nodes.Depth(parent), label, length, child, childDepth, linkSuffix)
	return err
}

// label reads the code units labeling the edge into parent that ends
// at child, truncating to 15 leading + 15 trailing code units when
// the label is >= 33 code units long (spec.md §6).
func (d *Dumper) label(child NID, endingPosition int64) (string, int64) {
	parentDepth := d.nodes.Depth(d.nodes.Parent(child))
	start := window.Advance(d.nodes.HeadPosition(child), parentDepth, d.n)
	var length int64
	if child.IsLeaf() {
		length = (endingPosition - start + d.n) % d.n
	} else {
		length = d.nodes.Depth(child) - parentDepth
	}

	if length < labelTruncateThreshold {
		return d.readRun(start, length), length
	}

	lead := d.readRun(start, labelTruncateHalf)
	tailStart := window.Advance(start, length-labelTruncateHalf, d.n)
	tail := d.readRun(tailStart, labelTruncateHalf)
	return lead + "..." + tail, length
}

func (d *Dumper) readRun(start, length int64) string {
	var sb strings.Builder
	pos := start
	for i := int64(0); i < length; i++ {
		sb.WriteRune(rune(d.buf.At(pos)))
		pos = window.Advance(pos, 1, d.n)
	}
	return sb.String()
}
