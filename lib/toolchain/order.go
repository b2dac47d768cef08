// Copyright 2026 The Bitforge Authors
// SPDX-License-Identifier: Apache-2.0

package toolchain

import "strings"

// Order is an ordered provider candidate list together with its
// source. The first available and acceptable candidate wins; later
// entries are never probed after a hit.
type Order struct {
	// Names are the candidate provider names, highest priority first.
	Names []string

	// Source records whether the list came from an explicit
	// environment variable or from the built-in default.
	Source OrderSource
}

// OrderVariable returns the environment variable controlling a tool's
// provider order, e.g. "BITFORGE_USE_YOSYS" for yosys. The variable
// holds a comma-separated list of provider names; empty or unset means
// the built-in default order.
func OrderVariable(tool string) string {
	return "BITFORGE_USE_" + strings.ToUpper(tool)
}

// ParseOrder builds an Order from the value of a tool's order
// variable. An empty value yields the given defaults with
// OrderDefault; otherwise the value is split on commas and tagged
// OrderEnvironment. Clauses are not validated here — Resolve checks
// them against the registry before probing anything, so a typo is
// reported as a ConfigError rather than silently skipped.
func ParseOrder(value string, defaults []string) Order {
	if value == "" {
		return Order{Names: defaults, Source: OrderDefault}
	}
	return Order{Names: strings.Split(value, ","), Source: OrderEnvironment}
}

// DefaultOrder returns the built-in provider order for a tool. Tools
// with a packaged redistributable (yosys) try the system installation
// first and fall back to the packaged tree; vendor tools have no
// packaged form and resolve from the system alone.
func DefaultOrder(tool string) []string {
	if tool == YosysTool {
		return []string{ProviderSystem, ProviderBuiltin}
	}
	return []string{ProviderSystem}
}
