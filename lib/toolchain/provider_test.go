// Copyright 2026 The Bitforge Authors
// SPDX-License-Identifier: Apache-2.0

package toolchain

import (
	"context"
	"errors"
	"os/exec"
	"testing"
	"time"

	"github.com/bitforge-eda/bitforge/lib/clock"
	"github.com/bitforge-eda/bitforge/lib/subprocess"
	"github.com/bitforge-eda/bitforge/lib/testutil"
)

func requireShell(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skipf("sh not available: %v", err)
	}
}

func newRunner() *subprocess.Runner {
	return subprocess.NewRunner(clock.Real())
}

func TestSystemProviderVersionFromFakeYosys(t *testing.T) {
	t.Parallel()
	requireShell(t)

	dir := t.TempDir()
	testutil.FakeTool(t, dir, "yosys", `echo "Yosys 0.9+3503 (git sha1 1979e0b)"`)

	provider := SystemYosys(newRunner(), dir, 0)
	if !provider.Available() {
		t.Fatal("provider with fake binary in BinDir should be available")
	}

	version, err := provider.Version(context.Background())
	if err != nil {
		t.Fatalf("Version: %v", err)
	}
	if version != (Version{Major: 0, Minor: 9, Distance: 3503}) {
		t.Errorf("version = %v, want 0.9+3503", version)
	}
}

func TestSystemProviderVersionStripsVerificBanner(t *testing.T) {
	t.Parallel()
	requireShell(t)

	dir := t.TempDir()
	testutil.FakeTool(t, dir, "yosys", `printf -- "-- Verific license notice\n\nYosys 0.9+170\n"`)

	provider := SystemYosys(newRunner(), dir, 0)
	version, err := provider.Version(context.Background())
	if err != nil {
		t.Fatalf("Version: %v", err)
	}
	if version != (Version{Major: 0, Minor: 9, Distance: 170}) {
		t.Errorf("version = %v, want 0.9+170", version)
	}
}

func TestSystemProviderVersionUnparsable(t *testing.T) {
	t.Parallel()
	requireShell(t)

	dir := t.TempDir()
	testutil.FakeTool(t, dir, "yosys", `echo "totally unexpected banner"`)

	provider := SystemYosys(newRunner(), dir, 0)
	_, err := provider.Version(context.Background())

	var versionErr *VersionError
	if !errors.As(err, &versionErr) {
		t.Fatalf("error = %T %v, want *VersionError", err, err)
	}
	if versionErr.Provider != ProviderSystem {
		t.Errorf("Provider = %q, want %q", versionErr.Provider, ProviderSystem)
	}
}

func TestSystemProviderInvokeNonZeroExit(t *testing.T) {
	t.Parallel()
	requireShell(t)

	dir := t.TempDir()
	testutil.FakeTool(t, dir, "yosys", `echo "ERROR: syntax error in top.ys" >&2; exit 1`)

	provider := SystemYosys(newRunner(), dir, 0)
	_, err := provider.Invoke(context.Background(), []string{"-q", "top.ys"}, "")

	var execErr *ExecutionError
	if !errors.As(err, &execErr) {
		t.Fatalf("error = %T %v, want *ExecutionError", err, err)
	}
	if execErr.ExitCode != 1 {
		t.Errorf("ExitCode = %d, want 1", execErr.ExitCode)
	}
	// The error message is the trimmed stderr, the way build failures
	// surface to the operator.
	if execErr.Error() != "ERROR: syntax error in top.ys" {
		t.Errorf("Error() = %q, want trimmed stderr", execErr.Error())
	}
}

func TestSystemProviderMissingBinary(t *testing.T) {
	t.Parallel()

	provider := &SystemProvider{
		Tool:   "bitforge-test-no-such-tool",
		BinDir: t.TempDir(),
		Runner: newRunner(),
	}
	if provider.Available() {
		t.Error("provider without a binary should not be available")
	}

	_, err := provider.Invoke(context.Background(), nil, "")
	var notFound *subprocess.NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("error = %T %v, want *subprocess.NotFoundError", err, err)
	}
}

func TestSystemProviderEnvScript(t *testing.T) {
	requireShell(t)

	dir := testutil.ToolDir(t)
	testutil.FakeTool(t, dir, "gw_sh", `printf %s "$GOWIN_HOME"`)
	script := testutil.FakeTool(t, dir, "gowin-env.sh", `GOWIN_HOME=/opt/gowin; export GOWIN_HOME`)

	provider := &SystemProvider{
		Tool:      "gw_sh",
		BinDir:    dir,
		EnvScript: script,
		Runner:    newRunner(),
	}
	output, err := provider.Invoke(context.Background(), nil, "")
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if output != "/opt/gowin" {
		t.Errorf("output = %q, want environment from sourced script", output)
	}
}

func TestPackagedProviderAvailability(t *testing.T) {
	t.Parallel()
	requireShell(t)

	root := t.TempDir()
	provider := PackagedYosys(newRunner(), root, 0)
	if provider.Available() {
		t.Error("empty packaged root should not be available")
	}

	testutil.PackagedToolchain(t, root, "yosys", "v0.9-3503-g1979e0b", `echo packaged`)
	if !provider.Available() {
		t.Error("packaged tree with VERSION and binary should be available")
	}
}

func TestPackagedProviderVersionFromRecord(t *testing.T) {
	t.Parallel()
	requireShell(t)

	root := t.TempDir()
	// The stub binary exits non-zero to prove the version comes from
	// the package record, not a subprocess.
	testutil.PackagedToolchain(t, root, "yosys", "v0.9-3503-g1979e0b", `exit 1`)

	provider := PackagedYosys(newRunner(), root, 0)
	version, err := provider.Version(context.Background())
	if err != nil {
		t.Fatalf("Version: %v", err)
	}
	if version != (Version{Major: 0, Minor: 9, Distance: 3503}) {
		t.Errorf("version = %v, want 0.9+3503", version)
	}
}

func TestPackagedProviderVersionUnparsable(t *testing.T) {
	t.Parallel()
	requireShell(t)

	root := t.TempDir()
	testutil.PackagedToolchain(t, root, "yosys", "nightly-build", `echo packaged`)

	provider := PackagedYosys(newRunner(), root, 0)
	_, err := provider.Version(context.Background())

	var versionErr *VersionError
	if !errors.As(err, &versionErr) {
		t.Fatalf("error = %T %v, want *VersionError", err, err)
	}
	if versionErr.Output != "nightly-build" {
		t.Errorf("Output = %q, want raw record", versionErr.Output)
	}
}

func TestPackagedProviderInvoke(t *testing.T) {
	t.Parallel()
	requireShell(t)

	root := t.TempDir()
	testutil.PackagedToolchain(t, root, "yosys", "v0.9", `cat`)

	provider := PackagedYosys(newRunner(), root, time.Second)
	output, err := provider.Invoke(context.Background(), nil, "read_ilang top.il")
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if output != "read_ilang top.il" {
		t.Errorf("output = %q, want stdin echoed", output)
	}
}

func TestEndToEndResolutionAgainstRealProviders(t *testing.T) {
	requireShell(t)

	// System yosys too old, packaged yosys acceptable: resolution
	// must skip system on version rejection and land on builtin.
	binDir := testutil.ToolDir(t)
	testutil.FakeTool(t, binDir, "yosys", `echo "Yosys 1.9 (git sha1 0000000)"`)

	root := t.TempDir()
	testutil.PackagedToolchain(t, root, "yosys", "v2.3-5-gabcdef0", `echo packaged-run`)

	registry := YosysRegistry(newRunner(), "", root, "", 0)
	order := ParseOrder("", DefaultOrder(YosysTool))
	resolved, err := Resolve(context.Background(), YosysTool, order, func(v Version) bool {
		return v.Major >= 2
	}, registry)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if resolved.ProviderName() != ProviderBuiltin {
		t.Errorf("resolved provider = %q, want %q", resolved.ProviderName(), ProviderBuiltin)
	}

	output, err := resolved.Invoke(context.Background(), nil, "")
	if err != nil {
		t.Fatalf("Invoke on resolved tool: %v", err)
	}
	if output != "packaged-run\n" {
		t.Errorf("output = %q", output)
	}
}
