// Copyright 2026 The Bitforge Authors
// SPDX-License-Identifier: Apache-2.0

// Package executor runs build pipelines: ordered sequences of
// artifact, command, and relocation steps produced by lib/platform or
// loaded from plan files. Steps run strictly in order, one at a time;
// later steps read files earlier steps wrote, so there is no
// dependency graph and no parallelism to hide ordering bugs.
//
// Execution is fail-fast. The first step to fail (render error, write
// error, tool invocation error, missing relocation source) aborts the
// remaining pipeline; the failure is wrapped in a StepError naming the
// step's position and name, with the underlying error untouched for
// errors.Is and errors.As. There are no retries: a transient external
// tool failure is surfaced, never masked.
//
// Alongside step execution the executor writes a JSONL result log into
// the build root (one line per event, synced after each write, so a
// killed build preserves every completed step) and, on success,
// records each declared product with its BLAKE3 digest.
package executor
