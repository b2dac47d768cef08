// Copyright 2026 The Bitforge Authors
// SPDX-License-Identifier: Apache-2.0

package toolchain

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/Masterminds/semver/v3"
)

// Version is an installed tool's reported version: major and minor
// release numbers plus a distance component counting revisions past
// the last tagged release (git-describe style). Distance is a soft
// recency signal: system installations often report it imprecisely,
// so acceptance predicates should not require it to be exact.
type Version struct {
	Major    int
	Minor    int
	Distance int
}

// Compare returns -1, 0, or +1 ordering v against other
// component-wise: major, then minor, then distance.
func (v Version) Compare(other Version) int {
	if v.Major != other.Major {
		return compareInt(v.Major, other.Major)
	}
	if v.Minor != other.Minor {
		return compareInt(v.Minor, other.Minor)
	}
	return compareInt(v.Distance, other.Distance)
}

// Less reports whether v orders strictly before other.
func (v Version) Less(other Version) bool {
	return v.Compare(other) < 0
}

// AtLeast reports whether v orders at or after other.
func (v Version) AtLeast(other Version) bool {
	return v.Compare(other) >= 0
}

// String renders "major.minor+distance", omitting the distance
// component when it is zero.
func (v Version) String() string {
	if v.Distance == 0 {
		return fmt.Sprintf("%d.%d", v.Major, v.Minor)
	}
	return fmt.Sprintf("%d.%d+%d", v.Major, v.Minor, v.Distance)
}

func compareInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return +1
	default:
		return 0
	}
}

// parseVersion extracts a Version from input using a provider's
// version pattern. The pattern contract: group 1 is the major number,
// group 2 the minor number, and optional group 3 the distance.
// A missing or empty distance group defaults to 0. Returns false when
// the pattern does not match or a matched group is not an integer.
func parseVersion(pattern *regexp.Regexp, input string) (Version, bool) {
	match := pattern.FindStringSubmatch(input)
	if match == nil || len(match) < 3 {
		return Version{}, false
	}

	major, err := strconv.Atoi(match[1])
	if err != nil {
		return Version{}, false
	}
	minor, err := strconv.Atoi(match[2])
	if err != nil {
		return Version{}, false
	}

	distance := 0
	if len(match) > 3 && match[3] != "" {
		distance, err = strconv.Atoi(match[3])
		if err != nil {
			return Version{}, false
		}
	}

	return Version{Major: major, Minor: minor, Distance: distance}, true
}

// AcceptConstraint adapts a semver constraint (e.g. ">= 0.9" from a
// config requirement string) to the resolver's acceptance predicate.
// The tool's distance component maps to the semver patch position,
// so ">= 0.9.100" accepts 0.9+3503 but rejects 0.9+17.
func AcceptConstraint(constraint *semver.Constraints) func(Version) bool {
	return func(v Version) bool {
		return constraint.Check(semver.New(uint64(v.Major), uint64(v.Minor), uint64(v.Distance), "", ""))
	}
}
