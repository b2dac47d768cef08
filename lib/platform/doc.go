// Copyright 2026 The Bitforge Authors
// SPDX-License-Identifier: Apache-2.0

// Package platform defines vendor FPGA platforms: the tools a
// platform requires and the build plan that carries a design from
// RTLIL to a bitstream with that vendor's toolchain.
//
// A [Platform] names its required tools with version constraints and
// the environment variable whose script bootstraps the vendor
// environment. A plan builder such as [GowinPlan] turns a [Design]
// into a buildplan.Plan: the artifact steps write the scripts and
// constraint files, the command steps run synthesis and
// place-and-route, and a final relocation step collects the bitstream
// from the vendor tool's nested output directory.
//
// Key exports:
//
//   - [Platform], [Requirement] -- platform descriptors
//   - [Design], [PinConstraint], [ClockConstraint] -- design metadata
//   - [Gowin], [GowinPlan] -- the Gowin GW1N flow
package platform
