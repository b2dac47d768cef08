// Copyright 2026 The Bitforge Authors
// SPDX-License-Identifier: Apache-2.0

package toolchain

import (
	"context"
	"sort"
)

// Registry maps provider names to implementations for one tool. Plain
// maps built at startup, no inheritance: adding a provisioning
// mechanism means adding an entry, not touching Resolve.
type Registry map[string]Provider

// Names returns the registered provider names, sorted.
func (r Registry) Names() []string {
	names := make([]string, 0, len(r))
	for name := range r {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ResolvedTool is the provider selected by resolution, bound as the
// active installation of a tool for the rest of the build session.
// It is immutable once produced and caches no process results.
type ResolvedTool struct {
	tool      string
	provider  Provider
	version   Version
	versioned bool
}

// Tool returns the logical tool name.
func (t *ResolvedTool) Tool() string { return t.tool }

// ProviderName returns the name of the provider that won resolution.
func (t *ResolvedTool) ProviderName() string { return t.provider.Name() }

// Version returns the version the provider reported during
// resolution, and whether a version was queried at all (tools resolved
// on availability alone carry none).
func (t *ResolvedTool) Version() (Version, bool) { return t.version, t.versioned }

// Invoke runs the bound tool. See Provider.Invoke.
func (t *ResolvedTool) Invoke(ctx context.Context, args []string, stdin string) (string, error) {
	return t.provider.Invoke(ctx, args, stdin)
}

// Resolve selects the first provider in order that is available and
// whose version satisfies accept. A nil accept skips the version
// query entirely: availability alone selects the candidate (used for
// vendor tools with no version gate).
//
// Every clause in order is validated against the registry before any
// provider is probed; an unrecognized clause fails with a
// *ConfigError. Per-candidate failures during the walk are absorbed:
// an unavailable provider is skipped, and a version query error (a
// broken installation, an unparsable version string) marks the
// candidate unacceptable without aborting the search. Only exhaustion
// of the whole list fails, with a *ResolutionError carrying the tried
// candidates in order and the order's source.
func Resolve(ctx context.Context, tool string, order Order, accept func(Version) bool, providers Registry) (*ResolvedTool, error) {
	for _, name := range order.Names {
		if _, known := providers[name]; !known {
			return nil, &ConfigError{Tool: tool, Clause: name, Valid: providers.Names()}
		}
	}

	tried := make([]string, 0, len(order.Names))
	for _, name := range order.Names {
		provider := providers[name]
		tried = append(tried, name)

		if !provider.Available() {
			continue
		}
		if accept == nil {
			return &ResolvedTool{tool: tool, provider: provider}, nil
		}

		version, err := provider.Version(ctx)
		if err != nil {
			continue
		}
		if accept(version) {
			return &ResolvedTool{tool: tool, provider: provider, version: version, versioned: true}, nil
		}
	}

	return nil, &ResolutionError{Tool: tool, Source: order.Source, Tried: tried}
}
