// Copyright 2026 The Bitforge Authors
// SPDX-License-Identifier: Apache-2.0

package executor

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"
)

// Status reports the outcome of one step.
type Status string

const (
	StatusOK     Status = "ok"
	StatusFailed Status = "failed"
)

// Result is the outcome of one Execute call.
type Result struct {
	// Target is the plan name.
	Target string

	// Steps records every step that ran, in order. On failure the
	// final record is the failing step.
	Steps []StepRecord

	// Products lists the plan's declared outputs with digests.
	// Populated only on success.
	Products []Product

	// Duration is the wall time of the whole run.
	Duration time.Duration
}

// StepRecord is the per-step entry in a Result.
type StepRecord struct {
	Index    int
	Name     string
	Status   Status
	Duration time.Duration
}

// Product is a declared build output with its content digest.
type Product struct {
	// Path is relative to the build root.
	Path string `json:"path"`

	// Digest is the hex BLAKE3 product digest of the file.
	Digest string `json:"digest"`
}

// resultLog appends one JSON object per line to the run's result log
// file. Each line is synced to disk before the run proceeds, so a
// build killed mid-flight still leaves a record of every completed
// step. Log write failures are reported to the logger but never abort
// the build; the pipeline's own outputs take priority over its
// journal.
type resultLog struct {
	file   *os.File
	logger *slog.Logger
}

func newResultLog(path string, logger *slog.Logger) (*resultLog, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating result log %s: %w", path, err)
	}
	return &resultLog{file: file, logger: logger}, nil
}

func (l *resultLog) Close() error {
	return l.file.Close()
}

func (l *resultLog) writeStart(target string, steps int) {
	l.write(map[string]any{
		"event":  "start",
		"target": target,
		"steps":  steps,
	})
}

func (l *resultLog) writeStep(index int, name string, status Status, duration time.Duration, message string) {
	entry := map[string]any{
		"event":       "step",
		"index":       index,
		"name":        name,
		"status":      status,
		"duration_ms": duration.Milliseconds(),
	}
	if message != "" {
		entry["error"] = message
	}
	l.write(entry)
}

func (l *resultLog) writeComplete(duration time.Duration, products []Product) {
	l.write(map[string]any{
		"event":       "complete",
		"duration_ms": duration.Milliseconds(),
		"products":    products,
	})
}

func (l *resultLog) writeFailed(step, message string, duration time.Duration) {
	entry := map[string]any{
		"event":       "failed",
		"error":       message,
		"duration_ms": duration.Milliseconds(),
	}
	if step != "" {
		entry["step"] = step
	}
	l.write(entry)
}

func (l *resultLog) write(entry map[string]any) {
	line, err := json.Marshal(entry)
	if err != nil {
		l.logger.Warn("result log entry not serializable", "error", err)
		return
	}
	if _, err := l.file.Write(append(line, '\n')); err != nil {
		l.logger.Warn("result log write failed", "error", err)
		return
	}
	if err := l.file.Sync(); err != nil {
		l.logger.Warn("result log sync failed", "error", err)
	}
}
