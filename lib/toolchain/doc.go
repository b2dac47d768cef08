// Copyright 2026 The Bitforge Authors
// SPDX-License-Identifier: Apache-2.0

// Package toolchain locates and binds external synthesis and
// place-and-route tools. Each tool can be provisioned by more than one
// mechanism (a system installation on PATH, a bitforge-managed packaged
// tree); a provider wraps one mechanism behind a uniform capability
// set: availability check, version query, invocation.
//
// Resolution walks an ordered candidate list and binds the first
// provider that is both available and version-acceptable. The order
// comes from a BITFORGE_USE_<TOOL> environment variable (read once at
// the program boundary and passed in as an explicit Order value) or
// from the tool's built-in default. Order is the only tie-break: a
// later candidate is never probed once an earlier one is accepted,
// even if it would report a newer version.
//
// Version-extraction patterns are provider configuration data, not
// resolver logic, so new provisioning mechanisms can be added without
// touching Resolve.
package toolchain
