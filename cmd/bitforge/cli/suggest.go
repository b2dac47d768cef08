// Copyright 2026 The Bitforge Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import "github.com/spf13/pflag"

// suggestionThreshold is the maximum edit distance for a typo
// suggestion. Three edits catches transpositions, dropped characters,
// and extra characters without suggesting unrelated names.
const suggestionThreshold = 3

// suggestCommand returns the closest subcommand name to the unknown
// input, or "" when nothing is close enough.
func suggestCommand(unknown string, commands []*Command) string {
	var names []string
	for _, command := range commands {
		names = append(names, command.Name)
	}
	return closest(unknown, names)
}

// suggestFlag returns the closest defined flag to the unknown bare
// name, rendered with its dash prefix, or "" when nothing is close
// enough.
func suggestFlag(name string, flags *pflag.FlagSet) string {
	var defined []string
	flags.VisitAll(func(f *pflag.Flag) {
		defined = append(defined, f.Name)
	})

	match := closest(name, defined)
	if match == "" {
		return ""
	}
	if len(match) == 1 {
		return "-" + match
	}
	return "--" + match
}

// closest returns the candidate with the smallest edit distance from
// input, or "" when every candidate is beyond the threshold.
func closest(input string, candidates []string) string {
	best := ""
	bestDistance := suggestionThreshold + 1

	for _, candidate := range candidates {
		distance := levenshtein(input, candidate)
		if distance < bestDistance {
			bestDistance = distance
			best = candidate
		}
	}
	return best
}

// levenshtein computes the edit distance between two strings using a
// single rolling row, O(min(m,n)) space.
func levenshtein(a, b string) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}
	if len(a) > len(b) {
		a, b = b, a
	}

	previous := make([]int, len(a)+1)
	for i := range previous {
		previous[i] = i
	}

	for j := 1; j <= len(b); j++ {
		current := make([]int, len(a)+1)
		current[0] = j

		for i := 1; i <= len(a); i++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}

			deletion := previous[i] + 1
			insertion := current[i-1] + 1
			substitution := previous[i-1] + cost

			current[i] = min(deletion, min(insertion, substitution))
		}

		previous = current
	}

	return previous[len(a)]
}
