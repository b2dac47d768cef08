// Copyright 2026 The Bitforge Authors
// SPDX-License-Identifier: Apache-2.0

package artifact

import (
	"path/filepath"
	"testing"
)

func TestFileNameDeterministic(t *testing.T) {
	t.Parallel()

	tests := []struct {
		kind Kind
		want string
	}{
		{KindSynthesisDesign, "blinky.il"},
		{KindDebugNetlist, "blinky.debug.v"},
		{KindSynthesisScript, "blinky.ys"},
		{KindSynthesisReport, "blinky.rpt"},
		{KindVendorNetlist, "blinky.vg"},
		{KindPhysicalConstraints, "blinky.cst"},
		{KindTimingConstraints, "blinky.sdc"},
		{KindProjectScript, "blinky.tcl"},
		{KindBitstream, "blinky.fs"},
		{KindResultLog, "blinky.result.jsonl"},
	}

	for _, testCase := range tests {
		if got := FileName("blinky", testCase.kind); got != testCase.want {
			t.Errorf("FileName(blinky, %v) = %q, want %q", testCase.kind, got, testCase.want)
		}
	}
}

func TestPathJoinsRoot(t *testing.T) {
	t.Parallel()

	want := filepath.Join("build", "top.fs")
	if got := Path("build", "top", KindBitstream); got != want {
		t.Errorf("Path = %q, want %q", got, want)
	}
}
