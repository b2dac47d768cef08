// Copyright 2026 The Bitforge Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides YAML configuration loading for bitforge.
//
// Configuration is loaded from a single file specified by either the
// BITFORGE_CONFIG environment variable (via [Load]) or a --config flag
// (via [LoadFile]). There is no ~/.config discovery and no automatic
// file search; when BITFORGE_CONFIG is unset, [Load] returns the
// built-in defaults, which work for a machine with the tools on PATH.
//
// Variable expansion is performed on path fields after loading:
// ${HOME}, ${BITFORGE_ROOT}, and ${VAR:-default} patterns are
// expanded. No other environment variables override config values;
// tool resolution order is the one exception and is read separately
// by the toolchain package.
//
// Key exports:
//
//   - [Config] -- master struct with Paths, Tools, Platforms, Build, Log
//   - [Default] -- returns a Config with working defaults
//   - [Load] and [LoadFile] -- the two entry points for loading
package config
