// Copyright 2026 The Bitforge Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/spf13/pflag"

	"github.com/bitforge-eda/bitforge/cmd/bitforge/cli"
	"github.com/bitforge-eda/bitforge/lib/clock"
	"github.com/bitforge-eda/bitforge/lib/platform"
	"github.com/bitforge-eda/bitforge/lib/subprocess"
	"github.com/bitforge-eda/bitforge/lib/toolchain"
)

// ToolchainCommand returns the "bitforge toolchain" command group.
func ToolchainCommand() *cli.Command {
	return &cli.Command{
		Name:    "toolchain",
		Summary: "Inspect and resolve external tools",
		Subcommands: []*cli.Command{
			toolchainListCommand(),
			toolchainResolveCommand(),
		},
	}
}

func toolchainListCommand() *cli.Command {
	var configPath string

	return &cli.Command{
		Name:    "list",
		Summary: "Show every provider for every known tool",
		Description: `Show the provider table.

For each known tool, lists each registered provider with its
availability and, where the provider has a version query, the version
it reports. This probes installations but runs no build.`,
		Usage: "bitforge toolchain list [flags]",
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("list", pflag.ContinueOnError)
			flags.StringVar(&configPath, "config", "", "config file (overrides BITFORGE_CONFIG)")
			return flags
		},
		Run: func(args []string) error {
			return runToolchainList(configPath)
		},
	}
}

func runToolchainList(configPath string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	runner := subprocess.NewRunner(clock.Real())

	table := tabwriter.NewWriter(os.Stdout, 2, 0, 3, ' ', 0)
	fmt.Fprintln(table, "TOOL\tPROVIDER\tAVAILABLE\tVERSION")
	for _, entry := range knownTools() {
		registry := registryFor(cfg, entry.platform, runner, entry.tool, "", 0)
		for _, name := range registry.Names() {
			provider := registry[name]
			available := provider.Available()
			versionText := "-"
			if available {
				queryCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
				if version, err := provider.Version(queryCtx); err == nil {
					versionText = version.String()
				}
				cancel()
			}
			fmt.Fprintf(table, "%s\t%s\t%t\t%s\n", entry.tool, name, available, versionText)
		}
	}
	return table.Flush()
}

func toolchainResolveCommand() *cli.Command {
	var (
		configPath   string
		platformName string
		require      string
	)

	return &cli.Command{
		Name:    "resolve",
		Summary: "Dry-run tool resolution",
		Description: `Dry-run tool resolution.

Resolves a tool exactly as a build would: candidate order from
BITFORGE_USE_<TOOL> (or the default), acceptance from --require, the
config, or the platform. Prints the selected provider and version, or
the resolution failure with every tried candidate.`,
		Usage: "bitforge toolchain resolve <tool> [flags]",
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("resolve", pflag.ContinueOnError)
			flags.StringVar(&configPath, "config", "", "config file (overrides BITFORGE_CONFIG)")
			flags.StringVar(&platformName, "platform", "gowin", "platform supplying default requirements")
			flags.StringVar(&require, "require", "", "semver constraint the tool must satisfy, e.g. '>= 0.9'")
			return flags
		},
		Examples: []cli.Example{
			{
				Description: "Resolve yosys with the packaged fallback disabled",
				Command:     "BITFORGE_USE_YOSYS=system bitforge toolchain resolve yosys",
			},
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("expected exactly one tool name, got %d args", len(args))
			}
			return runToolchainResolve(configPath, platformName, require, args[0])
		},
	}
}

func runToolchainResolve(configPath, platformName, require, tool string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	plat, err := platform.ByName(platformName)
	if err != nil {
		return err
	}
	runner := subprocess.NewRunner(clock.Real())

	var resolved *toolchain.ResolvedTool
	if require != "" {
		constraint, err := semver.NewConstraint(require)
		if err != nil {
			return fmt.Errorf("--require: %w", err)
		}
		order := toolchain.ParseOrder(os.Getenv(toolchain.OrderVariable(tool)), toolchain.DefaultOrder(tool))
		registry := registryFor(cfg, plat, runner, tool, "", 0)
		resolved, err = toolchain.Resolve(ctx, tool, order, toolchain.AcceptConstraint(constraint), registry)
		if err != nil {
			return reportResolutionFailure(err)
		}
	} else {
		resolved, err = resolveTool(ctx, cfg, plat, runner, tool, "", 0)
		if err != nil {
			return reportResolutionFailure(err)
		}
	}

	if version, ok := resolved.Version(); ok {
		fmt.Printf("%s: provider %s, version %s\n", resolved.Tool(), resolved.ProviderName(), version.String())
	} else {
		fmt.Printf("%s: provider %s\n", resolved.Tool(), resolved.ProviderName())
	}
	return nil
}

// reportResolutionFailure prints a resolution error on stderr and
// converts it to a bare exit code: the message is the output, not an
// "error:" line.
func reportResolutionFailure(err error) error {
	var resolutionErr *toolchain.ResolutionError
	if errors.As(err, &resolutionErr) {
		fmt.Fprintln(os.Stderr, resolutionErr.Error())
		return &cli.ExitError{Code: 1}
	}
	return err
}

// toolEntry pairs a tool with the platform whose bootstrap applies.
type toolEntry struct {
	tool     string
	platform *platform.Platform
}

// knownTools enumerates every tool any registered platform can need.
// yosys is listed once, without a platform, since its providers take
// no vendor bootstrap.
func knownTools() []toolEntry {
	entries := []toolEntry{{tool: toolchain.YosysTool}}
	for _, plat := range platform.All() {
		for _, requirement := range plat.Tools {
			if requirement.Tool == toolchain.YosysTool {
				continue
			}
			entries = append(entries, toolEntry{tool: requirement.Tool, platform: plat})
		}
	}
	return entries
}
