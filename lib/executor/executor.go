// Copyright 2026 The Bitforge Authors
// SPDX-License-Identifier: Apache-2.0

package executor

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/bitforge-eda/bitforge/lib/artifact"
	"github.com/bitforge-eda/bitforge/lib/buildplan"
	"github.com/bitforge-eda/bitforge/lib/clock"
)

// Tool is the invocation capability of a resolved toolchain binary.
// *toolchain.ResolvedTool satisfies it; tests substitute scripted
// stubs.
type Tool interface {
	Invoke(ctx context.Context, args []string, stdin string) (string, error)
}

// Executor runs one build plan at a time inside a build root. It
// holds no shared mutable state across Execute calls; concurrent
// invocations are safe as long as they use distinct roots (nothing
// locks the filesystem paths).
type Executor struct {
	// Root is the build root directory. Artifact paths, command
	// working directories, and relocation paths all resolve under it.
	Root string

	// Tools maps logical tool names to their resolved installations.
	Tools map[string]Tool

	// StepTimeout bounds each step. Zero means unbounded, matching
	// the observed behavior of long-running place-and-route jobs;
	// operators opt in to a bound via build.step_timeout.
	StepTimeout time.Duration

	// Clock supplies step timestamps and durations. Nil means the
	// real clock.
	Clock clock.Clock

	// Logger receives per-step progress. Nil discards it.
	Logger *slog.Logger
}

// StepError wraps a step failure with the failing step's position and
// name. The underlying error is preserved unmodified: errors.Is and
// errors.As reach the tool's ExecutionError, the runner's
// NotFoundError, or the artifact write failure exactly as the step
// produced it.
type StepError struct {
	// Index is the zero-based position of the failing step.
	Index int

	// Name is the failing step's name.
	Name string

	// Err is the step's failure, untouched.
	Err error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (%s): %v", e.Index+1, e.Name, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// ArtifactError reports a failure to render or write a build artifact.
type ArtifactError struct {
	// Path is the artifact's target path.
	Path string

	// Err is the render or filesystem error.
	Err error
}

func (e *ArtifactError) Error() string {
	return fmt.Sprintf("artifact %s: %v", e.Path, e.Err)
}

func (e *ArtifactError) Unwrap() error { return e.Err }

// Execute runs the plan's steps strictly in order, stopping at the
// first failure. The returned Result records every step that ran; on
// failure the error is a *StepError for the aborting step and no later
// step has executed. On success the Result additionally carries each
// declared product with its digest.
//
// A JSONL result log is written to <name>.result.jsonl in the build
// root as execution proceeds, one line per event, synced after each
// write so a killed build preserves every completed step.
func (e *Executor) Execute(ctx context.Context, plan *buildplan.Plan) (*Result, error) {
	clk := e.Clock
	if clk == nil {
		clk = clock.Real()
	}
	logger := e.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	if err := os.MkdirAll(e.Root, 0755); err != nil {
		return nil, fmt.Errorf("creating build root %s: %w", e.Root, err)
	}

	log, err := newResultLog(artifact.Path(e.Root, plan.Name, artifact.KindResultLog), logger)
	if err != nil {
		return nil, err
	}
	defer log.Close()

	started := clk.Now()
	log.writeStart(plan.Name, len(plan.Steps))
	logger.Info("build started", "target", plan.Name, "steps", len(plan.Steps))

	result := &Result{Target: plan.Name}
	for index, step := range plan.Steps {
		stepStarted := clk.Now()
		err := e.executeStep(ctx, step)
		duration := clk.Now().Sub(stepStarted)

		if err != nil {
			stepErr := &StepError{Index: index, Name: step.Name, Err: err}
			result.Steps = append(result.Steps, StepRecord{
				Index:    index,
				Name:     step.Name,
				Status:   StatusFailed,
				Duration: duration,
			})
			result.Duration = clk.Now().Sub(started)
			log.writeStep(index, step.Name, StatusFailed, duration, err.Error())
			log.writeFailed(step.Name, err.Error(), result.Duration)
			logger.Error("step failed", "target", plan.Name, "step", step.Name, "index", index, "error", err)
			return result, stepErr
		}

		result.Steps = append(result.Steps, StepRecord{
			Index:    index,
			Name:     step.Name,
			Status:   StatusOK,
			Duration: duration,
		})
		log.writeStep(index, step.Name, StatusOK, duration, "")
		logger.Info("step ok", "target", plan.Name, "step", step.Name, "index", index, "duration", duration)
	}

	for _, path := range plan.Products {
		digest, err := artifact.DigestFile(filepath.Join(e.Root, path))
		if err != nil {
			// Products are declared outputs: a successful pipeline
			// that did not leave them behind is a failure, not a
			// warning.
			result.Duration = clk.Now().Sub(started)
			log.writeFailed("", err.Error(), result.Duration)
			return result, fmt.Errorf("recording product: %w", err)
		}
		result.Products = append(result.Products, Product{Path: path, Digest: digest.String()})
	}

	result.Duration = clk.Now().Sub(started)
	log.writeComplete(result.Duration, result.Products)
	logger.Info("build complete", "target", plan.Name, "duration", result.Duration)
	return result, nil
}

// executeStep dispatches one step by kind under the per-step timeout.
func (e *Executor) executeStep(ctx context.Context, step buildplan.Step) error {
	if e.StepTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.StepTimeout)
		defer cancel()
	}

	switch {
	case step.Artifact != nil:
		return e.writeArtifact(step.Artifact)
	case step.Command != nil:
		return e.runCommand(ctx, step.Command)
	case step.Relocate != nil:
		return e.relocate(step.Relocate)
	default:
		return fmt.Errorf("step %q has no action", step.Name)
	}
}

// writeArtifact renders (or takes inline) content and writes it to
// the step's target path under the build root, overwriting any
// existing file.
func (e *Executor) writeArtifact(step *buildplan.ArtifactStep) error {
	content := step.Content
	if step.Render != nil {
		rendered, err := step.Render()
		if err != nil {
			return &ArtifactError{Path: step.Path, Err: err}
		}
		content = rendered
	}

	target := filepath.Join(e.Root, step.Path)
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return &ArtifactError{Path: step.Path, Err: err}
	}
	if err := os.WriteFile(target, []byte(content), 0644); err != nil {
		return &ArtifactError{Path: step.Path, Err: err}
	}
	return nil
}

// runCommand invokes the resolved tool bound under the step's tool
// name. Invocation errors pass through untouched.
func (e *Executor) runCommand(ctx context.Context, step *buildplan.CommandStep) error {
	tool, bound := e.Tools[step.Tool]
	if !bound {
		return fmt.Errorf("no resolved tool %q", step.Tool)
	}
	_, err := tool.Invoke(ctx, step.Args, step.Stdin)
	return err
}

// relocate copies the nested source file to its destination under the
// build root. A missing source is a reported failure, never swallowed.
func (e *Executor) relocate(step *buildplan.RelocateStep) error {
	source := filepath.Join(e.Root, step.Source)
	destination := filepath.Join(e.Root, step.Destination)

	input, err := os.Open(source)
	if err != nil {
		return fmt.Errorf("relocating %s: %w", step.Source, err)
	}
	defer input.Close()

	if err := os.MkdirAll(filepath.Dir(destination), 0755); err != nil {
		return fmt.Errorf("relocating %s: %w", step.Source, err)
	}
	output, err := os.Create(destination)
	if err != nil {
		return fmt.Errorf("relocating %s: %w", step.Source, err)
	}
	if _, err := io.Copy(output, input); err != nil {
		output.Close()
		return fmt.Errorf("relocating %s: %w", step.Source, err)
	}
	return output.Close()
}
