// Copyright 2026 The Bitforge Authors
// SPDX-License-Identifier: Apache-2.0

package toolchain

import (
	"fmt"
	"strings"
)

// ConfigError reports a malformed provider order: a clause in the
// BITFORGE_USE_<TOOL> list that names no registered provider. It is
// detected before any provider is probed and is never retried.
type ConfigError struct {
	// Tool is the logical tool being resolved.
	Tool string

	// Clause is the unrecognized provider name from the order list.
	Clause string

	// Valid lists the registered provider names, sorted.
	Valid []string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("provider order for %s contains an unrecognized clause %q (valid: %s)",
		e.Tool, e.Clause, strings.Join(e.Valid, ", "))
}

// VersionError reports a version string that the provider's pattern
// could not parse. During resolution this marks one candidate as
// unacceptable; it never aborts the search.
type VersionError struct {
	// Tool is the logical tool whose version was queried.
	Tool string

	// Provider is the provider mechanism that produced the string.
	Provider string

	// Output is the raw version text that failed to parse.
	Output string
}

func (e *VersionError) Error() string {
	return fmt.Sprintf("cannot parse %s version from %s provider output %q",
		e.Tool, e.Provider, e.Output)
}

// OrderSource records where a provider order came from. Resolution
// failures carry it so callers can react programmatically: an explicit
// environment order means the operator chose the candidates, while the
// built-in default leaves room to suggest the packaged fallback.
type OrderSource int

const (
	// OrderDefault is the built-in order used when the environment
	// variable is unset or empty.
	OrderDefault OrderSource = iota

	// OrderEnvironment is an explicit order from BITFORGE_USE_<TOOL>.
	OrderEnvironment
)

// String returns "default" or "environment".
func (s OrderSource) String() string {
	if s == OrderEnvironment {
		return "environment"
	}
	return "default"
}

// ResolutionError reports that no candidate provider was both
// available and version-acceptable. It carries every candidate that
// was tried, in order, and the source of the order.
type ResolutionError struct {
	// Tool is the logical tool that could not be resolved.
	Tool string

	// Source distinguishes an explicit environment order from the
	// built-in default.
	Source OrderSource

	// Tried lists the candidate provider names probed, in order.
	Tried []string
}

func (e *ResolutionError) Error() string {
	if e.Source == OrderEnvironment {
		return fmt.Sprintf("could not find an acceptable %s binary (searched: %s)",
			e.Tool, strings.Join(e.Tried, ", "))
	}
	return fmt.Sprintf("could not find an acceptable %s binary (searched: %s); "+
		"the packaged bitforge toolchain, if available for this platform, can be used as fallback",
		e.Tool, strings.Join(e.Tried, ", "))
}

// ExecutionError reports a tool process that spawned successfully but
// exited non-zero. The message prefers the trimmed stderr text, which
// is where synthesis and place-and-route tools write their
// diagnostics; stdout and the bare exit code are fallbacks.
type ExecutionError struct {
	// Tool is the logical tool that failed.
	Tool string

	// Command is the rendered invocation, for diagnostics.
	Command string

	// ExitCode is the process exit status.
	ExitCode int

	// Stderr is the trimmed standard error text.
	Stderr string

	// Stdout is the trimmed standard output text, consulted when
	// stderr is empty.
	Stdout string
}

func (e *ExecutionError) Error() string {
	if e.Stderr != "" {
		return e.Stderr
	}
	if e.Stdout != "" {
		return e.Stdout
	}
	return fmt.Sprintf("%s: exit code %d", e.Command, e.ExitCode)
}
