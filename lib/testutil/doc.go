// Copyright 2026 The Bitforge Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers for bitforge packages.
//
// [FakeTool] writes an executable shell-script stub into a directory,
// standing in for external toolchain binaries (yosys, gw_sh) so that
// provider and pipeline tests run without real installations. [ToolDir]
// creates a temporary directory and prepends it to PATH for the
// duration of the test, making FakeTool stubs visible to PATH lookup.
// ToolDir uses t.Setenv and is therefore incompatible with t.Parallel.
//
// [PackagedToolchain] lays out a packaged toolchain tree (VERSION file
// plus bin/<name> stub) under a root directory, matching the layout the
// builtin provider expects.
//
// [UniqueID] generates monotonically increasing identifiers for test
// disambiguation. Use it instead of time.Now() when tests need unique
// build target names or artifact paths.
//
// All helpers call t.Fatalf on failure rather than returning errors,
// since test setup failures are not recoverable.
//
// This package has no bitforge-internal dependencies.
package testutil
