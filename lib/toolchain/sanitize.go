// Copyright 2026 The Bitforge Authors
// SPDX-License-Identifier: Apache-2.0

package toolchain

import "strings"

// StripLeadingBanner returns a text transform that removes a maximal
// run of banner lines from the start of captured stdout. A banner line
// is either empty or starts with marker followed by at least one more
// character; the first line that is neither ends the run. A trailing
// fragment with no newline is never stripped. The transform is pure
// and idempotent, so it can be unit-tested without spawning a process.
//
// Yosys builds with an evaluation Verific frontend print license text
// before any real output: empty lines and lines starting with "-- ".
// Those are not part of normal yosys output and can be safely removed.
// The packaged yosys carries no such frontend and uses no transform.
func StripLeadingBanner(marker string) func(string) string {
	return func(text string) string {
		rest := text
		for {
			newline := strings.IndexByte(rest, '\n')
			if newline < 0 {
				return rest
			}
			line := rest[:newline]
			if line != "" && (!strings.HasPrefix(line, marker) || len(line) <= len(marker)) {
				return rest
			}
			rest = rest[newline+1:]
		}
	}
}
