// Copyright 2026 The Bitforge Authors
// SPDX-License-Identifier: Apache-2.0

package toolchain

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/bitforge-eda/bitforge/lib/subprocess"
)

// Provider names. Every provisioning mechanism registers under one of
// these stable names; the BITFORGE_USE_<TOOL> order variable refers to
// them.
const (
	// ProviderSystem is a tool installed on the host: found on PATH,
	// or in a configured binary directory checked first.
	ProviderSystem = "system"

	// ProviderBuiltin is a bitforge-managed packaged toolchain tree.
	ProviderBuiltin = "builtin"
)

// Provider is one provisioning mechanism for an external tool.
// Providers are stateless and constructed once at program start;
// resolution selects among them by name.
type Provider interface {
	// Name returns the stable provider name ("system", "builtin").
	Name() string

	// Available reports whether an installation appears present. It
	// must return quickly and never block on a subprocess. True does
	// not guarantee the binary runs or is new enough.
	Available() bool

	// Version queries the installation for its version. Returns a
	// *VersionError when the version string cannot be parsed.
	Version(ctx context.Context) (Version, error)

	// Invoke runs the installation as a subprocess with the given
	// arguments and standard input, returning captured (and, for
	// providers that declare one, sanitized) stdout. A non-zero exit
	// fails with an *ExecutionError carrying the trimmed stderr text;
	// a binary that cannot be spawned fails with a
	// *subprocess.NotFoundError.
	Invoke(ctx context.Context, args []string, stdin string) (string, error)
}

// SystemProvider runs a tool installed on the host. The binary is
// resolved through an optional configured directory first (hermetic
// override), then PATH.
type SystemProvider struct {
	// Tool is the logical tool name ("yosys", "gw_sh").
	Tool string

	// Binary is the executable name. Defaults to Tool when empty.
	Binary string

	// BinDir, when set, is checked for the binary before PATH.
	BinDir string

	// VersionArgs are the arguments that make the tool print its
	// version (e.g. "-V" for yosys). Unset means the tool has no
	// version query; Version then fails, and resolution should use a
	// nil acceptance predicate.
	VersionArgs []string

	// VersionPattern extracts (major, minor, distance) from the
	// version output: group 1 major, group 2 minor, optional group 3
	// distance. Kept as configuration data so new tools need no
	// resolver changes.
	VersionPattern *regexp.Regexp

	// Sanitize, when set, is applied to captured stdout before it is
	// returned. Nil means no stripping.
	Sanitize func(string) string

	// Dir is the working directory for invocations. Empty means the
	// calling process's current directory. Build pipelines set it to
	// the build root so tools see their inputs by relative path.
	Dir string

	// EnvScript, when set, names a script sourced before every
	// invocation to populate the vendor environment (the
	// BITFORGE_ENV_<Platform> mechanism). The tool then runs through
	// "sh -c '. script && exec ...'". Unset means the ambient
	// environment is used unchanged.
	EnvScript string

	// Grace is the SIGTERM-to-SIGKILL window for cancelled
	// invocations.
	Grace time.Duration

	// Runner executes the subprocess.
	Runner *subprocess.Runner
}

func (p *SystemProvider) Name() string { return ProviderSystem }

func (p *SystemProvider) binary() string {
	if p.Binary != "" {
		return p.Binary
	}
	return p.Tool
}

// findBinary resolves the executable path: BinDir first when
// configured, then PATH.
func (p *SystemProvider) findBinary() (string, error) {
	name := p.binary()
	if p.BinDir != "" {
		candidate := filepath.Join(p.BinDir, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	path, err := exec.LookPath(name)
	if err != nil {
		if p.BinDir != "" {
			return "", fmt.Errorf("%s not found in %s or on PATH", name, p.BinDir)
		}
		return "", fmt.Errorf("%s not found on PATH", name)
	}
	return path, nil
}

func (p *SystemProvider) Available() bool {
	_, err := p.findBinary()
	return err == nil
}

func (p *SystemProvider) Version(ctx context.Context) (Version, error) {
	if len(p.VersionArgs) == 0 || p.VersionPattern == nil {
		return Version{}, fmt.Errorf("%s has no version query; resolve it on availability alone", p.Tool)
	}
	output, err := p.Invoke(ctx, p.VersionArgs, "")
	if err != nil {
		return Version{}, err
	}
	version, ok := parseVersion(p.VersionPattern, output)
	if !ok {
		return Version{}, &VersionError{Tool: p.Tool, Provider: ProviderSystem, Output: firstLine(output)}
	}
	return version, nil
}

func (p *SystemProvider) Invoke(ctx context.Context, args []string, stdin string) (string, error) {
	path, err := p.findBinary()
	if err != nil {
		return "", &subprocess.NotFoundError{Name: p.binary(), Err: err}
	}

	request := subprocess.Request{
		Path:  path,
		Args:  args,
		Stdin: stdin,
		Dir:   p.Dir,
		Grace: p.Grace,
	}
	if p.EnvScript != "" {
		// Source the vendor environment script in the same shell that
		// execs the tool, so its exports apply to the invocation.
		request.Path = "sh"
		request.Args = append([]string{
			"-c",
			fmt.Sprintf(`. %s && exec "$0" "$@"`, shellQuote(p.EnvScript)),
			path,
		}, args...)
	}

	result, err := p.Runner.Run(ctx, request)
	if err != nil {
		return "", err
	}

	stdout := result.Stdout
	if p.Sanitize != nil {
		stdout = p.Sanitize(stdout)
	}
	if result.ExitCode != 0 {
		return "", &ExecutionError{
			Tool:     p.Tool,
			Command:  subprocess.CommandString(path, args),
			ExitCode: result.ExitCode,
			Stderr:   strings.TrimSpace(result.Stderr),
			Stdout:   strings.TrimSpace(stdout),
		}
	}
	return stdout, nil
}

// PackagedProvider runs a tool from a bitforge-managed toolchain tree:
// <root>/<tool>/VERSION holds the packaged version record and
// <root>/<tool>/bin/<tool> is the executable. Availability and version
// come from the package record alone, with no subprocess involved, so
// a packaged tree with a broken binary still reports its version (the
// breakage surfaces as an invocation failure, like any resolved tool).
type PackagedProvider struct {
	// Tool is the logical tool name.
	Tool string

	// Root is the packaged toolchain root directory.
	Root string

	// VersionPattern extracts (major, minor, distance) from the
	// VERSION file content. Same group contract as SystemProvider.
	VersionPattern *regexp.Regexp

	// Dir is the working directory for invocations. Empty means the
	// calling process's current directory.
	Dir string

	// Grace is the SIGTERM-to-SIGKILL window for cancelled
	// invocations.
	Grace time.Duration

	// Runner executes the subprocess.
	Runner *subprocess.Runner
}

func (p *PackagedProvider) Name() string { return ProviderBuiltin }

func (p *PackagedProvider) versionFile() string {
	return filepath.Join(p.Root, p.Tool, "VERSION")
}

func (p *PackagedProvider) binaryPath() string {
	return filepath.Join(p.Root, p.Tool, "bin", p.Tool)
}

func (p *PackagedProvider) Available() bool {
	if _, err := os.Stat(p.versionFile()); err != nil {
		return false
	}
	_, err := os.Stat(p.binaryPath())
	return err == nil
}

func (p *PackagedProvider) Version(ctx context.Context) (Version, error) {
	data, err := os.ReadFile(p.versionFile())
	if err != nil {
		return Version{}, fmt.Errorf("reading packaged %s version record: %w", p.Tool, err)
	}
	record := strings.TrimSpace(string(data))
	version, ok := parseVersion(p.VersionPattern, record)
	if !ok {
		return Version{}, &VersionError{Tool: p.Tool, Provider: ProviderBuiltin, Output: record}
	}
	return version, nil
}

func (p *PackagedProvider) Invoke(ctx context.Context, args []string, stdin string) (string, error) {
	path := p.binaryPath()
	result, err := p.Runner.Run(ctx, subprocess.Request{
		Path:  path,
		Args:  args,
		Stdin: stdin,
		Dir:   p.Dir,
		Grace: p.Grace,
	})
	if err != nil {
		return "", err
	}
	if result.ExitCode != 0 {
		return "", &ExecutionError{
			Tool:     p.Tool,
			Command:  subprocess.CommandString(path, args),
			ExitCode: result.ExitCode,
			Stderr:   strings.TrimSpace(result.Stderr),
			Stdout:   strings.TrimSpace(result.Stdout),
		}
	}
	return result.Stdout, nil
}

// firstLine truncates multi-line tool output for error messages.
func firstLine(text string) string {
	if index := strings.IndexByte(text, '\n'); index >= 0 {
		return text[:index]
	}
	return text
}

// shellQuote wraps a path in single quotes for safe interpolation
// into an sh -c script.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
