// Copyright 2026 The Bitforge Authors
// SPDX-License-Identifier: Apache-2.0

// Package artifact handles the files a build produces and consumes:
// deterministic per-kind naming derived from the target name, BLAKE3
// product digests, and compressed archives of completed build roots.
package artifact

import (
	"fmt"
	"path/filepath"
)

// Kind identifies one class of build artifact. Each kind has a fixed
// suffix; the full file name is always target name + suffix, so paths
// are deterministic given the target.
type Kind int

const (
	// KindSynthesisDesign is the RTLIL design text consumed by the
	// synthesis script (<name>.il).
	KindSynthesisDesign Kind = iota

	// KindDebugNetlist is the debug Verilog netlist emitted alongside
	// the design for waveform and diff inspection (<name>.debug.v).
	KindDebugNetlist

	// KindSynthesisScript is the yosys script (<name>.ys).
	KindSynthesisScript

	// KindSynthesisReport is the yosys log (<name>.rpt).
	KindSynthesisReport

	// KindVendorNetlist is the synthesized Verilog handed to the
	// vendor place-and-route tool (<name>.vg).
	KindVendorNetlist

	// KindPhysicalConstraints is the pin location file (<name>.cst).
	KindPhysicalConstraints

	// KindTimingConstraints is the clock constraint file (<name>.sdc).
	KindTimingConstraints

	// KindProjectScript is the vendor tool's project script
	// (<name>.tcl).
	KindProjectScript

	// KindBitstream is the final output bitstream (<name>.fs).
	KindBitstream

	// KindResultLog is the executor's JSONL result log
	// (<name>.result.jsonl).
	KindResultLog
)

var kindSuffixes = map[Kind]string{
	KindSynthesisDesign:     ".il",
	KindDebugNetlist:        ".debug.v",
	KindSynthesisScript:     ".ys",
	KindSynthesisReport:     ".rpt",
	KindVendorNetlist:       ".vg",
	KindPhysicalConstraints: ".cst",
	KindTimingConstraints:   ".sdc",
	KindProjectScript:       ".tcl",
	KindBitstream:           ".fs",
	KindResultLog:           ".result.jsonl",
}

// Suffix returns the kind's fixed file suffix.
func (k Kind) Suffix() string {
	suffix, known := kindSuffixes[k]
	if !known {
		panic(fmt.Sprintf("artifact: unknown kind %d", k))
	}
	return suffix
}

// FileName returns the deterministic file name for a target and kind,
// e.g. FileName("blinky", KindBitstream) = "blinky.fs".
func FileName(target string, kind Kind) string {
	return target + kind.Suffix()
}

// Path returns the artifact's path under a build root.
func Path(root, target string, kind Kind) string {
	return filepath.Join(root, FileName(target, kind))
}
