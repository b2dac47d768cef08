// Copyright 2026 The Bitforge Authors
// SPDX-License-Identifier: Apache-2.0

package toolchain

import "testing"

func TestStripLeadingBanner(t *testing.T) {
	t.Parallel()

	strip := StripLeadingBanner("-- ")

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "license banner before real output",
			input: "-- Verific evaluation copy\n-- expires 2026-12-31\n\nYosys 0.9+3503\n",
			want:  "Yosys 0.9+3503\n",
		},
		{
			name:  "no banner returned unchanged",
			input: "Yosys 0.9+3503\n-- not a banner mid-stream\n",
			want:  "Yosys 0.9+3503\n-- not a banner mid-stream\n",
		},
		{
			name:  "only blank lines",
			input: "\n\n\nreal output\n",
			want:  "real output\n",
		},
		{
			name:  "banner only",
			input: "-- all banner\n\n",
			want:  "",
		},
		{
			name:  "empty input",
			input: "",
			want:  "",
		},
		{
			name:  "bare marker line is not banner",
			input: "-- \nreal\n",
			want:  "-- \nreal\n",
		},
		{
			name:  "trailing fragment without newline survives",
			input: "-- banner\npartial",
			want:  "partial",
		},
	}

	for _, testCase := range tests {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			got := strip(testCase.input)
			if got != testCase.want {
				t.Errorf("strip(%q) = %q, want %q", testCase.input, got, testCase.want)
			}

			// Idempotence: a second application changes nothing.
			if again := strip(got); again != got {
				t.Errorf("strip not idempotent: %q -> %q", got, again)
			}
		})
	}
}
