// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

// Package codeunit defines the fixed-width code-unit type the window
// buffer and tree are built over. The byte-to-code-unit converter
// itself is out of scope (spec.md §1); this package is only the
// contract boundary the converter must honor: the CU type, its width,
// and the reserved sentinel value.
package codeunit

import "fmt"

// CU is a fixed-width code unit. The tree and window buffer operate on
// CU uniformly regardless of the configured Width; Width only bounds
// the legal value range and selects the external encoding.
type CU = uint32

// Width is the byte width of one code unit: 1 (ASCII/Latin-1), 2
// (UCS-2LE), or 4 (UCS-4LE). Variable-width internal code units are a
// declared Non-goal (spec.md §1).
type Width byte

const (
	Width1 Width = 1
	Width2 Width = 2
	Width4 Width = 4
)

// Valid reports whether w is one of the three supported widths.
func (w Width) Valid() bool {
	switch w {
	case Width1, Width2, Width4:
		return true
	default:
		return false
	}
}

func (w Width) String() string {
	switch w {
	case Width1:
		return "1 (ASCII)"
	case Width2:
		return "2 (UCS-2LE)"
	case Width4:
		return "4 (UCS-4LE)"
	default:
		return fmt.Sprintf("invalid(%d)", byte(w))
	}
}

// Max returns MAX_CU for this width: the reserved terminating sentinel,
// one past the largest representable ordinary code unit.
func (w Width) Max() CU {
	switch w {
	case Width1:
		return 0xFF
	case Width2:
		return 0xFFFF
	case Width4:
		return 0xFFFFFFFF
	default:
		panic(fmt.Sprintf("codeunit: invalid width %d", byte(w)))
	}
}

// Min is the smallest ordinary (non-sentinel) code unit, always 0.
const Min CU = 0

// FromEncoding picks the internal Width implied by sizeof(CU) for a
// named external encoding, matching spec.md §4.2's open/default rule:
// 1 byte -> ASCII, 2 bytes -> UCS-2LE, 4 bytes -> UCS-4LE.
func FromEncoding(name string) (Width, bool) {
	switch name {
	case "ASCII", "ascii", "UTF-8", "utf-8", "":
		return Width1, true
	case "UCS-2LE", "ucs-2le", "UTF-16LE", "utf-16le":
		return Width2, true
	case "UCS-4LE", "ucs-4le", "UTF-32LE", "utf-32le":
		return Width4, true
	default:
		return 0, false
	}
}
