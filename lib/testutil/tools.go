// Copyright 2026 The Bitforge Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// FakeTool writes an executable shell script into dir and returns its
// absolute path. Tests use this to stand in for external toolchain
// binaries (yosys, gw_sh) without requiring real installations. The
// script body runs under /bin/sh; a typical stub prints a version
// banner or exits non-zero:
//
//	testutil.FakeTool(t, dir, "yosys", `echo "Yosys 0.9+3503 (git sha1 deadbeef)"`)
//	testutil.FakeTool(t, dir, "gw_sh", `echo "syntax error" >&2; exit 1`)
func FakeTool(t *testing.T, dir, name, script string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	content := "#!/bin/sh\n" + script + "\n"
	if err := os.WriteFile(path, []byte(content), 0755); err != nil {
		t.Fatalf("writing fake tool %s: %v", name, err)
	}
	return path
}

// ToolDir creates a temporary directory and prepends it to PATH for
// the duration of the test. Binaries written into the directory with
// FakeTool become visible to PATH lookup, shadowing any real
// installation of the same name.
//
// ToolDir calls t.Setenv, so tests using it must not call t.Parallel.
func ToolDir(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	t.Setenv("PATH", dir+string(os.PathListSeparator)+os.Getenv("PATH"))
	return dir
}

// PackagedToolchain lays out a packaged toolchain tree for one tool
// under root: a VERSION file with the given content and an executable
// bin/<name> stub running the given script. Returns the tool's
// directory (<root>/<name>).
func PackagedToolchain(t *testing.T, root, name, version, script string) string {
	t.Helper()

	toolDir := filepath.Join(root, name)
	if err := os.MkdirAll(filepath.Join(toolDir, "bin"), 0755); err != nil {
		t.Fatalf("creating packaged toolchain tree: %v", err)
	}
	if err := os.WriteFile(filepath.Join(toolDir, "VERSION"), []byte(version+"\n"), 0644); err != nil {
		t.Fatalf("writing VERSION file: %v", err)
	}
	FakeTool(t, filepath.Join(toolDir, "bin"), name, script)
	return toolDir
}
