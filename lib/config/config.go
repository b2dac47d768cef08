// Copyright 2026 The Bitforge Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/Masterminds/semver/v3"
	"gopkg.in/yaml.v3"

	"github.com/bitforge-eda/bitforge/lib/artifact"
)

// Config is the master configuration for bitforge.
type Config struct {
	// Paths configures directory locations.
	Paths PathsConfig `yaml:"paths"`

	// Tools configures per-tool resolution constraints, keyed by
	// logical tool name (yosys, gw_sh, ...).
	Tools map[string]ToolConfig `yaml:"tools"`

	// Platforms configures per-platform settings, keyed by platform
	// name (gowin, ...).
	Platforms map[string]PlatformConfig `yaml:"platforms"`

	// Build configures pipeline execution.
	Build BuildConfig `yaml:"build"`

	// Log configures logging.
	Log LogConfig `yaml:"log"`
}

// PathsConfig configures directory locations.
type PathsConfig struct {
	// BuildRoot is the base directory for per-target build roots.
	BuildRoot string `yaml:"build_root"`

	// ToolchainRoot is where packaged toolchains are unpacked.
	// Each toolchain lives under <root>/<tool>/ with a VERSION file
	// and a bin/ directory.
	ToolchainRoot string `yaml:"toolchain_root"`

	// Bin is an optional directory searched for tool binaries before
	// PATH. This provides hermetic binary paths independent of the
	// user's shell environment.
	Bin string `yaml:"bin"`
}

// ToolConfig configures one logical tool.
type ToolConfig struct {
	// Require is a semver constraint the resolved tool's version must
	// satisfy, e.g. ">= 0.9". Empty means any version (or no version
	// at all) is acceptable.
	Require string `yaml:"require"`

	// BinDir overrides Paths.Bin for this tool only.
	BinDir string `yaml:"bin_dir"`
}

// PlatformConfig configures one vendor platform.
type PlatformConfig struct {
	// EnvScript is a shell script sourced before invoking the
	// platform's vendor tools. Vendor installations typically ship
	// one to set license and library paths.
	EnvScript string `yaml:"env_script"`
}

// BuildConfig configures pipeline execution.
type BuildConfig struct {
	// StepTimeout bounds each pipeline step. Zero (the default)
	// means unbounded; place-and-route on large parts can run for
	// hours.
	StepTimeout string `yaml:"step_timeout"`

	// TerminationGrace is how long a tool gets between SIGTERM and
	// SIGKILL when a step is cancelled. Default: 5s.
	TerminationGrace string `yaml:"termination_grace"`

	// Archive configures post-build archiving of the build root.
	Archive ArchiveConfig `yaml:"archive"`
}

// ArchiveConfig configures post-build archiving.
type ArchiveConfig struct {
	// Enabled turns on archiving of the build root after a
	// successful build.
	Enabled bool `yaml:"enabled"`

	// Compression selects the archive algorithm: zstd or lz4.
	// Default: zstd.
	Compression string `yaml:"compression"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Level is the minimum log level: debug, info, warn, or error.
	// Default: info.
	Level string `yaml:"level"`
}

// Default returns the default configuration. It works on a machine
// with the tools on PATH and no config file at all.
func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	defaultRoot := filepath.Join(homeDir, ".cache", "bitforge")

	return &Config{
		Paths: PathsConfig{
			BuildRoot:     filepath.Join(defaultRoot, "build"),
			ToolchainRoot: "/opt/bitforge/toolchains",
			Bin:           "",
		},
		Tools:     map[string]ToolConfig{},
		Platforms: map[string]PlatformConfig{},
		Build: BuildConfig{
			StepTimeout:      "0s",
			TerminationGrace: "5s",
			Archive: ArchiveConfig{
				Enabled:     false,
				Compression: "zstd",
			},
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from the path in the BITFORGE_CONFIG
// environment variable. When the variable is unset, the defaults are
// returned; a build on a stock machine needs no config file.
func Load() (*Config, error) {
	configPath := os.Getenv("BITFORGE_CONFIG")
	if configPath == "" {
		return Default(), nil
	}
	return LoadFile(configPath)
}

// LoadFile loads configuration from a specific file path, merging it
// over the defaults. The config file is the single source of truth;
// environment variables do not override config values. The only
// expansion performed is ${VAR} and ${VAR:-default} in path fields.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	cfg.expandVariables()
	return cfg, nil
}

// expandVariables expands ${VAR} and ${VAR:-default} patterns in path
// fields.
func (c *Config) expandVariables() {
	vars := map[string]string{
		"BITFORGE_ROOT": c.Paths.BuildRoot,
		"HOME":          os.Getenv("HOME"),
	}

	c.Paths.BuildRoot = expandVars(c.Paths.BuildRoot, vars)
	vars["BITFORGE_ROOT"] = c.Paths.BuildRoot // Update for dependent paths.

	c.Paths.ToolchainRoot = expandVars(c.Paths.ToolchainRoot, vars)
	c.Paths.Bin = expandVars(c.Paths.Bin, vars)
	for name, tool := range c.Tools {
		tool.BinDir = expandVars(tool.BinDir, vars)
		c.Tools[name] = tool
	}
	for name, platform := range c.Platforms {
		platform.EnvScript = expandVars(platform.EnvScript, vars)
		c.Platforms[name] = platform
	}
}

// expandVars expands ${VAR} and ${VAR:-default} patterns.
var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}

		// Check provided vars first, then environment.
		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if c.Paths.BuildRoot == "" {
		errs = append(errs, fmt.Errorf("paths.build_root is required"))
	}

	if _, err := c.StepTimeout(); err != nil {
		errs = append(errs, fmt.Errorf("build.step_timeout: %w", err))
	}
	if _, err := c.TerminationGrace(); err != nil {
		errs = append(errs, fmt.Errorf("build.termination_grace: %w", err))
	}
	if _, err := artifact.ParseCompression(c.Build.Archive.Compression); err != nil {
		errs = append(errs, fmt.Errorf("build.archive.compression: %w", err))
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level must be one of: debug, info, warn, error"))
	}

	for name, tool := range c.Tools {
		if tool.Require == "" {
			continue
		}
		if _, err := semver.NewConstraint(tool.Require); err != nil {
			errs = append(errs, fmt.Errorf("tools.%s.require: %w", name, err))
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// StepTimeout parses build.step_timeout. Empty means zero, unbounded.
func (c *Config) StepTimeout() (time.Duration, error) {
	return parseDuration(c.Build.StepTimeout)
}

// TerminationGrace parses build.termination_grace.
func (c *Config) TerminationGrace() (time.Duration, error) {
	return parseDuration(c.Build.TerminationGrace)
}

func parseDuration(value string) (time.Duration, error) {
	if value == "" {
		return 0, nil
	}
	return time.ParseDuration(value)
}

// Requirement returns the parsed version constraint for a tool, or
// nil when the tool carries no constraint.
func (c *Config) Requirement(tool string) (*semver.Constraints, error) {
	entry, ok := c.Tools[tool]
	if !ok || entry.Require == "" {
		return nil, nil
	}
	constraint, err := semver.NewConstraint(entry.Require)
	if err != nil {
		return nil, fmt.Errorf("tools.%s.require: %w", tool, err)
	}
	return constraint, nil
}

// ToolBinDir returns the binary search directory for a tool: the
// tool's own bin_dir when set, otherwise the global paths.bin.
func (c *Config) ToolBinDir(tool string) string {
	if entry, ok := c.Tools[tool]; ok && entry.BinDir != "" {
		return entry.BinDir
	}
	return c.Paths.Bin
}

// EnvScript returns the bootstrap script configured for a platform,
// or empty when none is.
func (c *Config) EnvScript(platform string) string {
	return c.Platforms[platform].EnvScript
}
