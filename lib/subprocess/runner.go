// Copyright 2026 The Bitforge Authors
// SPDX-License-Identifier: Apache-2.0

// Package subprocess executes external toolchain binaries with captured
// standard streams. It is the single place in bitforge that spawns
// processes: tool providers describe what to run, the Runner runs it.
//
// The Runner reports facts, not judgments. A non-zero exit is returned
// in the Result with a nil error — classifying it (tool failure versus
// acceptable outcome) belongs to the caller. The only Runner-level
// failure is a process that could not be spawned at all, reported as a
// NotFoundError so that callers can distinguish "the binary is missing"
// from "the binary ran and rejected its input".
package subprocess

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"syscall"
	"time"

	"github.com/bitforge-eda/bitforge/lib/clock"
)

// Request describes one subprocess invocation.
type Request struct {
	// Path is the executable: an absolute path, or a bare name
	// resolved against PATH.
	Path string

	// Args are the arguments, not including the program name.
	Args []string

	// Stdin is written to the process's standard input.
	Stdin string

	// Dir is the working directory. Empty means inherit the caller's.
	Dir string

	// Env entries are appended to the ambient environment. The map
	// form prevents malformed NAME=VALUE strings at the call site.
	Env map[string]string

	// Grace is the SIGTERM-to-SIGKILL window applied when the context
	// is cancelled. Zero sends SIGKILL immediately. Synthesis and
	// place-and-route tools hold large in-memory state; a grace window
	// lets them flush partial reports before dying.
	Grace time.Duration
}

// Result carries the captured streams and exit status of a completed
// invocation.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// NotFoundError reports an executable that could not be found or
// spawned. During tool resolution this is one provider's failure;
// during pipeline execution it is a hard error, because the tool was
// already resolved and should be runnable.
type NotFoundError struct {
	// Name is the executable as requested (bare name or path).
	Name string

	// Err is the underlying lookup or spawn error.
	Err error
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("executable %q not found or not runnable: %v", e.Name, e.Err)
}

func (e *NotFoundError) Unwrap() error { return e.Err }

// Runner executes subprocesses. The zero value is not usable; construct
// with NewRunner.
type Runner struct {
	clock clock.Clock
}

// NewRunner returns a Runner using the given clock for its SIGKILL
// escalation timer.
func NewRunner(clk clock.Clock) *Runner {
	return &Runner{clock: clk}
}

// Run spawns the requested process, writes stdin, reads stdout and
// stderr to completion, and waits for exit.
//
// Both output streams are drained into buffers by the os/exec machinery
// while stdin is written, so a process producing output larger than the
// pipe buffer cannot deadlock against the stdin write.
//
// The process runs in its own process group. On context cancellation
// the whole group is signalled (SIGTERM then SIGKILL after the grace
// window, or SIGKILL immediately when Grace is zero), so children
// spawned by the tool do not outlive it.
//
// A non-zero exit is not an error: it is reported in Result.ExitCode
// with a nil error. Run returns a *NotFoundError when the executable
// cannot be found or spawned, and the context's error (with ExitCode
// -1) when the invocation is cancelled or times out.
func (r *Runner) Run(ctx context.Context, request Request) (Result, error) {
	path := request.Path
	if !strings.Contains(path, string(os.PathSeparator)) {
		resolved, err := exec.LookPath(path)
		if err != nil {
			return Result{ExitCode: -1}, &NotFoundError{Name: request.Path, Err: err}
		}
		path = resolved
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, path, request.Args...)
	cmd.Stdin = strings.NewReader(request.Stdin)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.Dir = request.Dir

	if len(request.Env) > 0 {
		cmd.Env = os.Environ()
		for name, value := range request.Env {
			cmd.Env = append(cmd.Env, name+"="+value)
		}
	}

	// Put the command in its own process group so that signals reach
	// the tool and all its children (negative PID = all processes in
	// the group).
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	var killTimer *clock.Timer
	if request.Grace > 0 {
		// Graceful: SIGTERM the process group first, then escalate to
		// SIGKILL after the grace window if the process has not exited.
		cmd.Cancel = func() error {
			processGroupID := -cmd.Process.Pid
			if err := syscall.Kill(processGroupID, syscall.SIGTERM); err != nil {
				// SIGTERM failed (process group already gone), escalate.
				return syscall.Kill(processGroupID, syscall.SIGKILL)
			}
			killTimer = r.clock.AfterFunc(request.Grace, func() {
				// Best-effort: the process group may have already
				// exited. ESRCH from a dead group is harmless.
				_ = syscall.Kill(processGroupID, syscall.SIGKILL)
			})
			return nil
		}
	} else {
		// Immediate: SIGKILL the entire process group.
		cmd.Cancel = func() error {
			return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
		}
	}

	if err := cmd.Start(); err != nil {
		return Result{ExitCode: -1}, &NotFoundError{Name: request.Path, Err: err}
	}

	waitErr := cmd.Wait()
	if killTimer != nil {
		killTimer.Stop()
	}

	result := Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	if waitErr == nil {
		return result, nil
	}

	// A cancelled context kills the process, so the resulting exit
	// status is just the signal death. Report the cancellation itself,
	// not the SIGKILL it caused.
	if ctx.Err() != nil {
		result.ExitCode = -1
		return result, fmt.Errorf("%s: %w", request.Path, ctx.Err())
	}

	var exitError *exec.ExitError
	if errors.As(waitErr, &exitError) {
		result.ExitCode = exitError.ExitCode()
		return result, nil
	}

	// Non-exit errors: signal delivery failure, I/O errors on the pipes.
	result.ExitCode = -1
	return result, fmt.Errorf("%s: %w", request.Path, waitErr)
}

// CommandString renders an invocation for log and error messages.
func CommandString(path string, args []string) string {
	if len(args) == 0 {
		return path
	}
	return path + " " + strings.Join(args, " ")
}
