// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

// Command sufftree drives a sliding-window suffix-tree construction
// session over a file, per spec.md §6:
//
//	sufftree -t {SL|SH} -a U[B] -b {C|T} [options] <filename>
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/gaissmai/sufftree"
	"github.com/gaissmai/sufftree/internal/codeunit"
	"github.com/gaissmai/sufftree/internal/hashsettings"
)

func main() {
	log.SetFlags(log.Lmicroseconds)

	if err := run(os.Args[1:]); err != nil {
		log.Printf("sufftree: %v", err)
		os.Exit(1)
	}
}

type config struct {
	variant   string
	algorithm string
	behavior  string

	hashResolution string
	cuckooFuncs    int
	maintenance    string
	simple         bool
	dumpFile       string

	inputEncoding    string
	internalEncoding string
	blockSize        uint64
	apScale          int
	swScale          int
	verbosity        int
	help             bool

	filename string
}

func run(args []string) error {
	fs := flag.NewFlagSet("sufftree", flag.ContinueOnError)

	cfg := config{}
	fs.StringVar(&cfg.variant, "t", "", "node representation: SL or SH (mandatory)")
	fs.StringVar(&cfg.algorithm, "a", "", "algorithm: U (Ukkonen) or UB (minimized branching) (mandatory)")
	fs.StringVar(&cfg.behavior, "b", "", "behavior: C (construct+delete) or T (construct+traverse+delete) (mandatory)")
	fs.StringVar(&cfg.hashResolution, "r", "C", "SH hash resolution: C (Cuckoo) or D (double hashing)")
	fs.IntVar(&cfg.cuckooFuncs, "c", hashsettings.DefaultCuckooFuncs, "cuckoo hash function count (min 2)")
	fs.StringVar(&cfg.maintenance, "m", "B", "edge-label maintenance: B (batch) or F (Fiala-Greene credit bits)")
	fs.BoolVar(&cfg.simple, "s", false, "simple traversal format (suppresses suffix-link targets)")
	fs.StringVar(&cfg.dumpFile, "d", "", "dump traversal to file (requires -b T)")
	fs.StringVar(&cfg.inputEncoding, "e", "UTF-8", "input encoding")
	fs.StringVar(&cfg.internalEncoding, "i", "", "internal encoding (default derives from code-unit width)")
	fs.Uint64Var(&cfg.blockSize, "k", 8*1024*1024, "block size in code units")
	fs.IntVar(&cfg.apScale, "A", 1, "active-part scale factor (>= 1)")
	fs.IntVar(&cfg.swScale, "S", 0, "window scale factor (default derived; must exceed -A)")
	fs.IntVar(&cfg.verbosity, "v", 0, "verbosity: 0, 1, or 2")
	fs.BoolVar(&cfg.help, "h", false, "show help")

	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil
		}
		return err
	}
	if cfg.help {
		fs.Usage()
		return nil
	}

	if fs.NArg() != 1 {
		return fmt.Errorf("expected exactly one filename argument, got %d", fs.NArg())
	}
	cfg.filename = fs.Arg(0)

	opts, format, err := cfg.toOptions()
	if err != nil {
		return err
	}

	f, err := os.Open(cfg.filename)
	if err != nil {
		return fmt.Errorf("open %s: %w", cfg.filename, err)
	}
	defer f.Close()

	tree, err := sufftree.Open(f, opts)
	if err != nil {
		return fmt.Errorf("initialize: %w", err)
	}

	if cfg.verbosity >= 1 {
		log.Printf("constructing: variant=%s algorithm=%s behavior=%s maintenance=%s block_size=%d ap_scale=%d sw_scale=%d",
			cfg.variant, cfg.algorithm, cfg.behavior, cfg.maintenance, opts.BlockSize, opts.APScale, opts.SWScale)
	}

	if err := tree.Build(); err != nil {
		return fmt.Errorf("construct: %w", err)
	}

	if cfg.verbosity >= 2 {
		stats := tree.Stats()
		log.Printf("done: blocks=%d leaves_created=%d deletions=%d batch_refreshes=%d credit_flips=%d",
			stats.BlocksRead, stats.LeavesCreated, stats.Deletions, stats.BatchRefreshes, stats.CreditFlips)
	}

	if errs := tree.Engine().Validate(); len(errs) > 0 {
		for _, e := range errs {
			log.Printf("invariant violation: %v", e)
		}
		return fmt.Errorf("%d invariant violation(s) found", len(errs))
	}

	if cfg.behavior == "T" {
		if err := cfg.dump(tree, format); err != nil {
			return fmt.Errorf("dump: %w", err)
		}
	}

	return nil
}

// toOptions validates and translates the parsed flags into
// sufftree.Options, per spec.md §6/§7's "configuration errors reported
// at startup, session fails."
func (cfg *config) toOptions() (sufftree.Options, sufftree.DumpFormat, error) {
	var opts sufftree.Options

	switch cfg.variant {
	case "SL":
		opts.Variant = sufftree.SL
	case "SH":
		opts.Variant = sufftree.SH
	default:
		return opts, 0, fmt.Errorf("-t must be SL or SH, got %q", cfg.variant)
	}

	switch cfg.algorithm {
	case "U":
		opts.Algorithm = sufftree.Ukkonen
	case "UB":
		opts.Algorithm = sufftree.MinimizedBranching
	default:
		return opts, 0, fmt.Errorf("-a must be U or UB, got %q", cfg.algorithm)
	}

	switch cfg.behavior {
	case "C", "T":
	default:
		return opts, 0, fmt.Errorf("-b must be C or T, got %q", cfg.behavior)
	}

	if cfg.dumpFile != "" && cfg.behavior != "T" {
		return opts, 0, fmt.Errorf("-d requires -b T")
	}

	switch cfg.maintenance {
	case "B":
		opts.Maint = sufftree.Batch
	case "F":
		opts.Maint = sufftree.CreditCounter
	default:
		return opts, 0, fmt.Errorf("-m must be B or F, got %q", cfg.maintenance)
	}

	switch cfg.hashResolution {
	case "C":
		opts.HashMode = hashsettings.Cuckoo
	case "D":
		opts.HashMode = hashsettings.DoubleHash
	default:
		return opts, 0, fmt.Errorf("-r must be C or D, got %q", cfg.hashResolution)
	}
	if cfg.cuckooFuncs < hashsettings.MinCuckooFuncs {
		return opts, 0, fmt.Errorf("-c must be >= %d, got %d", hashsettings.MinCuckooFuncs, cfg.cuckooFuncs)
	}
	opts.CuckooFuncs = cfg.cuckooFuncs

	// The byte-to-code-unit converter is an external collaborator
	// (spec.md §1's "out of scope"); the one built into this module
	// only decodes UTF-8 source bytes, so -e is accepted only at its
	// default.
	if cfg.inputEncoding != "UTF-8" {
		return opts, 0, fmt.Errorf("-e: only UTF-8 input encoding is supported, got %q", cfg.inputEncoding)
	}

	width, err := internalWidth(cfg.internalEncoding)
	if err != nil {
		return opts, 0, err
	}
	opts.Width = width

	opts.BlockSize = cfg.blockSize
	opts.APScale = cfg.apScale
	opts.SWScale = cfg.swScale
	opts.Concurrent = true

	format := sufftree.Full
	if cfg.simple {
		format = sufftree.Simple
	}

	return opts, format, nil
}

// internalWidth maps the -i flag to a code-unit width; an empty value
// derives from the default (Width1, ASCII superset), per spec.md §6's
// "default derives from code-unit width."
func internalWidth(enc string) (codeunit.Width, error) {
	switch enc {
	case "":
		return codeunit.Width1, nil
	case "ASCII", "Latin-1", "1":
		return codeunit.Width1, nil
	case "UCS-2", "UCS-2LE", "2":
		return codeunit.Width2, nil
	case "UCS-4", "UCS-4LE", "4":
		return codeunit.Width4, nil
	default:
		return 0, fmt.Errorf("-i: unknown internal encoding %q", enc)
	}
}

func (cfg *config) dump(tree *sufftree.Tree, format sufftree.DumpFormat) error {
	w := os.Stdout
	if cfg.dumpFile != "" {
		f, err := os.Create(cfg.dumpFile)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}

	_, end, _, _ := tree.Engine().ActivePoint()
	dumper := sufftree.NewDumper(tree.Nodes(), tree.Buffer(), format)
	return dumper.Dump(w, end)
}
