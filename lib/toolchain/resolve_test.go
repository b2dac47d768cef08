// Copyright 2026 The Bitforge Authors
// SPDX-License-Identifier: Apache-2.0

package toolchain

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
)

// stubProvider is a scripted provider for resolver tests. It records
// which of its capabilities were exercised so tests can assert that
// lower-priority candidates are never probed after a hit.
type stubProvider struct {
	name       string
	available  bool
	version    Version
	versionErr error

	availableCalls int
	versionCalls   int
	invokeCalls    int
}

func (p *stubProvider) Name() string { return p.name }

func (p *stubProvider) Available() bool {
	p.availableCalls++
	return p.available
}

func (p *stubProvider) Version(ctx context.Context) (Version, error) {
	p.versionCalls++
	if p.versionErr != nil {
		return Version{}, p.versionErr
	}
	return p.version, nil
}

func (p *stubProvider) Invoke(ctx context.Context, args []string, stdin string) (string, error) {
	p.invokeCalls++
	return "", nil
}

func acceptMajorAtLeast(major int) func(Version) bool {
	return func(v Version) bool { return v.Major >= major }
}

func TestResolveFirstAcceptableWins(t *testing.T) {
	t.Parallel()

	system := &stubProvider{name: ProviderSystem, available: true, version: Version{Major: 2, Minor: 1}}
	builtin := &stubProvider{name: ProviderBuiltin, available: true, version: Version{Major: 9, Minor: 9}}
	registry := Registry{ProviderSystem: system, ProviderBuiltin: builtin}

	order := Order{Names: []string{ProviderSystem, ProviderBuiltin}, Source: OrderDefault}
	resolved, err := Resolve(context.Background(), YosysTool, order, acceptMajorAtLeast(2), registry)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if resolved.ProviderName() != ProviderSystem {
		t.Errorf("resolved provider = %q, want %q", resolved.ProviderName(), ProviderSystem)
	}

	// The later candidate must never be probed, even though its
	// version is newer: list order is the only tie-break.
	if builtin.availableCalls != 0 || builtin.versionCalls != 0 {
		t.Errorf("builtin provider was probed (%d availability, %d version calls) after system hit",
			builtin.availableCalls, builtin.versionCalls)
	}
}

func TestResolveSkipsRejectedVersion(t *testing.T) {
	t.Parallel()

	// The end-to-end scenario: both candidates available, the first
	// too old. Resolution must select the second on version
	// rejection, not availability.
	system := &stubProvider{name: ProviderSystem, available: true, version: Version{Major: 1, Minor: 9}}
	builtin := &stubProvider{name: ProviderBuiltin, available: true, version: Version{Major: 2, Minor: 3, Distance: 5}}
	registry := Registry{ProviderSystem: system, ProviderBuiltin: builtin}

	order := Order{Names: []string{ProviderSystem, ProviderBuiltin}, Source: OrderDefault}
	resolved, err := Resolve(context.Background(), YosysTool, order, acceptMajorAtLeast(2), registry)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if resolved.ProviderName() != ProviderBuiltin {
		t.Errorf("resolved provider = %q, want %q", resolved.ProviderName(), ProviderBuiltin)
	}
	version, versioned := resolved.Version()
	if !versioned || version != (Version{Major: 2, Minor: 3, Distance: 5}) {
		t.Errorf("resolved version = %v (%v), want 2.3+5", version, versioned)
	}
	if system.versionCalls != 1 {
		t.Errorf("system version calls = %d, want 1 (probed and rejected)", system.versionCalls)
	}
}

func TestResolveSkipsUnavailable(t *testing.T) {
	t.Parallel()

	system := &stubProvider{name: ProviderSystem, available: false}
	builtin := &stubProvider{name: ProviderBuiltin, available: true, version: Version{Major: 2, Minor: 3}}
	registry := Registry{ProviderSystem: system, ProviderBuiltin: builtin}

	order := Order{Names: []string{ProviderSystem, ProviderBuiltin}, Source: OrderDefault}
	resolved, err := Resolve(context.Background(), YosysTool, order, acceptMajorAtLeast(2), registry)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if resolved.ProviderName() != ProviderBuiltin {
		t.Errorf("resolved provider = %q, want %q", resolved.ProviderName(), ProviderBuiltin)
	}
	if system.versionCalls != 0 {
		t.Errorf("unavailable provider had its version queried %d times", system.versionCalls)
	}
}

func TestResolveAbsorbsVersionQueryError(t *testing.T) {
	t.Parallel()

	// A broken installation must not abort the whole search.
	system := &stubProvider{
		name:       ProviderSystem,
		available:  true,
		versionErr: &VersionError{Tool: YosysTool, Provider: ProviderSystem, Output: "garbage"},
	}
	builtin := &stubProvider{name: ProviderBuiltin, available: true, version: Version{Major: 2, Minor: 3}}
	registry := Registry{ProviderSystem: system, ProviderBuiltin: builtin}

	order := Order{Names: []string{ProviderSystem, ProviderBuiltin}, Source: OrderDefault}
	resolved, err := Resolve(context.Background(), YosysTool, order, acceptMajorAtLeast(1), registry)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if resolved.ProviderName() != ProviderBuiltin {
		t.Errorf("resolved provider = %q, want %q", resolved.ProviderName(), ProviderBuiltin)
	}
}

func TestResolveNilAcceptSkipsVersionQuery(t *testing.T) {
	t.Parallel()

	system := &stubProvider{name: ProviderSystem, available: true}
	registry := Registry{ProviderSystem: system}

	order := Order{Names: []string{ProviderSystem}, Source: OrderDefault}
	resolved, err := Resolve(context.Background(), "gw_sh", order, nil, registry)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if system.versionCalls != 0 {
		t.Errorf("version queried %d times with nil accept, want 0", system.versionCalls)
	}
	if _, versioned := resolved.Version(); versioned {
		t.Error("availability-only resolution should carry no version")
	}
}

func TestResolveExhaustionListsTriedCandidates(t *testing.T) {
	t.Parallel()

	for _, source := range []OrderSource{OrderEnvironment, OrderDefault} {
		source := source
		t.Run(source.String(), func(t *testing.T) {
			t.Parallel()

			system := &stubProvider{name: ProviderSystem, available: false}
			builtin := &stubProvider{name: ProviderBuiltin, available: true, version: Version{Major: 1, Minor: 0}}
			registry := Registry{ProviderSystem: system, ProviderBuiltin: builtin}

			order := Order{Names: []string{ProviderSystem, ProviderBuiltin}, Source: source}
			_, err := Resolve(context.Background(), YosysTool, order, acceptMajorAtLeast(2), registry)
			if err == nil {
				t.Fatal("expected resolution failure")
			}

			var resolution *ResolutionError
			if !errors.As(err, &resolution) {
				t.Fatalf("error = %T %v, want *ResolutionError", err, err)
			}
			if resolution.Source != source {
				t.Errorf("Source = %v, want %v", resolution.Source, source)
			}
			wantTried := []string{ProviderSystem, ProviderBuiltin}
			if !reflect.DeepEqual(resolution.Tried, wantTried) {
				t.Errorf("Tried = %v, want %v", resolution.Tried, wantTried)
			}
		})
	}
}

func TestResolveErrorTextDistinguishesOrderSource(t *testing.T) {
	t.Parallel()

	environment := (&ResolutionError{Tool: YosysTool, Source: OrderEnvironment, Tried: []string{"system"}}).Error()
	builtin := (&ResolutionError{Tool: YosysTool, Source: OrderDefault, Tried: []string{"system", "builtin"}}).Error()

	if environment == builtin {
		t.Error("environment and default resolution errors should differ")
	}
	// Only the default-order variant suggests the packaged fallback.
	if !strings.Contains(builtin, "fallback") {
		t.Errorf("default-order error %q should mention the packaged fallback", builtin)
	}
	if strings.Contains(environment, "fallback") {
		t.Errorf("environment-order error %q should not suggest a fallback", environment)
	}
}

func TestResolveUnrecognizedClauseFailsBeforeProbing(t *testing.T) {
	t.Parallel()

	system := &stubProvider{name: ProviderSystem, available: true, version: Version{Major: 2, Minor: 0}}
	registry := Registry{ProviderSystem: system}

	// The bad clause comes after a perfectly good one: validation
	// still runs first, so nothing is probed.
	order := Order{Names: []string{ProviderSystem, "homebrew"}, Source: OrderEnvironment}
	_, err := Resolve(context.Background(), YosysTool, order, acceptMajorAtLeast(1), registry)

	var configErr *ConfigError
	if !errors.As(err, &configErr) {
		t.Fatalf("error = %T %v, want *ConfigError", err, err)
	}
	if configErr.Clause != "homebrew" {
		t.Errorf("Clause = %q, want %q", configErr.Clause, "homebrew")
	}
	if system.availableCalls != 0 {
		t.Errorf("provider probed %d times before configuration was validated", system.availableCalls)
	}
}

func TestParseOrder(t *testing.T) {
	t.Parallel()

	defaults := DefaultOrder(YosysTool)

	unset := ParseOrder("", defaults)
	if unset.Source != OrderDefault {
		t.Errorf("Source = %v, want OrderDefault", unset.Source)
	}
	if !reflect.DeepEqual(unset.Names, []string{"system", "builtin"}) {
		t.Errorf("Names = %v, want [system builtin]", unset.Names)
	}

	explicit := ParseOrder("builtin,system", defaults)
	if explicit.Source != OrderEnvironment {
		t.Errorf("Source = %v, want OrderEnvironment", explicit.Source)
	}
	if !reflect.DeepEqual(explicit.Names, []string{"builtin", "system"}) {
		t.Errorf("Names = %v, want [builtin system]", explicit.Names)
	}
}

func TestOrderVariable(t *testing.T) {
	t.Parallel()

	if got := OrderVariable("yosys"); got != "BITFORGE_USE_YOSYS" {
		t.Errorf("OrderVariable = %q", got)
	}
	if got := OrderVariable("gw_sh"); got != "BITFORGE_USE_GW_SH" {
		t.Errorf("OrderVariable = %q", got)
	}
}
