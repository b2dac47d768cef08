// Copyright 2026 The Bitforge Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/Masterminds/semver/v3"

	"github.com/bitforge-eda/bitforge/lib/config"
	"github.com/bitforge-eda/bitforge/lib/platform"
	"github.com/bitforge-eda/bitforge/lib/subprocess"
	"github.com/bitforge-eda/bitforge/lib/toolchain"
)

// loadConfig loads from an explicit --config path when given,
// otherwise from BITFORGE_CONFIG or the defaults, and validates.
func loadConfig(path string) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if path != "" {
		cfg, err = config.LoadFile(path)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// registryFor builds the provider registry for one tool. yosys gets
// the full system+builtin registry; vendor tools are system-only with
// the platform's environment bootstrap.
func registryFor(cfg *config.Config, plat *platform.Platform, runner *subprocess.Runner, tool, dir string, grace time.Duration) toolchain.Registry {
	binDir := cfg.ToolBinDir(tool)
	if tool == toolchain.YosysTool {
		return toolchain.YosysRegistry(runner, binDir, cfg.Paths.ToolchainRoot, dir, grace)
	}
	return toolchain.VendorTool(tool, runner, binDir, bootstrapScript(cfg, plat), dir, grace)
}

// bootstrapScript returns the vendor environment script for a
// platform: the BITFORGE_ENV_<Platform> variable wins over the
// config's platforms.<name>.env_script.
func bootstrapScript(cfg *config.Config, plat *platform.Platform) string {
	if plat == nil {
		return ""
	}
	if plat.BootstrapVar != "" {
		if script := os.Getenv(plat.BootstrapVar); script != "" {
			return script
		}
	}
	return cfg.EnvScript(plat.Name)
}

// acceptFor builds the version acceptance predicate for a tool: the
// config's tools.<name>.require wins over the platform's built-in
// requirement; no constraint anywhere means availability alone.
func acceptFor(cfg *config.Config, plat *platform.Platform, tool string) (func(toolchain.Version) bool, error) {
	constraint, err := cfg.Requirement(tool)
	if err != nil {
		return nil, err
	}
	if constraint == nil && plat != nil {
		for _, requirement := range plat.Tools {
			if requirement.Tool != tool || requirement.Require == "" {
				continue
			}
			constraint, err = semver.NewConstraint(requirement.Require)
			if err != nil {
				return nil, fmt.Errorf("platform %s requirement for %s: %w", plat.Name, tool, err)
			}
		}
	}
	if constraint == nil {
		return nil, nil
	}
	return toolchain.AcceptConstraint(constraint), nil
}

// resolveTool runs the full resolution for one tool: provider order
// from BITFORGE_USE_<TOOL> (or the default), acceptance from the
// config and platform.
func resolveTool(ctx context.Context, cfg *config.Config, plat *platform.Platform, runner *subprocess.Runner, tool, dir string, grace time.Duration) (*toolchain.ResolvedTool, error) {
	order := toolchain.ParseOrder(os.Getenv(toolchain.OrderVariable(tool)), toolchain.DefaultOrder(tool))
	accept, err := acceptFor(cfg, plat, tool)
	if err != nil {
		return nil, err
	}
	registry := registryFor(cfg, plat, runner, tool, dir, grace)
	return toolchain.Resolve(ctx, tool, order, accept, registry)
}
