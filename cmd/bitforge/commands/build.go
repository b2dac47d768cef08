// Copyright 2026 The Bitforge Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/bitforge-eda/bitforge/cmd/bitforge/cli"
	"github.com/bitforge-eda/bitforge/lib/artifact"
	"github.com/bitforge-eda/bitforge/lib/buildplan"
	"github.com/bitforge-eda/bitforge/lib/clock"
	"github.com/bitforge-eda/bitforge/lib/config"
	"github.com/bitforge-eda/bitforge/lib/executor"
	"github.com/bitforge-eda/bitforge/lib/platform"
	"github.com/bitforge-eda/bitforge/lib/subprocess"
)

// BuildCommand returns the "bitforge build" command: load a plan,
// resolve its tools, and run the pipeline.
func BuildCommand() *cli.Command {
	var (
		configPath   string
		planPath     string
		rootDir      string
		platformName string
		stepTimeout  string
		logLevel     string
		archiveAfter bool
		variableSets []string
	)

	return &cli.Command{
		Name:    "build",
		Summary: "Run a build pipeline from a plan file",
		Description: `Run a build pipeline.

Loads a JSONC build plan, resolves every tool the plan's command
steps name, and executes the steps in order inside the build root.
The first failing step aborts the pipeline. On success the declared
products are digested and printed; with --archive the whole build
root is packed into a deterministic tar archive.`,
		Usage: "bitforge build --plan <file.jsonc> [flags]",
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("build", pflag.ContinueOnError)
			flags.StringVar(&configPath, "config", "", "config file (overrides BITFORGE_CONFIG)")
			flags.StringVar(&planPath, "plan", "", "JSONC build plan file (required)")
			flags.StringVar(&rootDir, "root", "", "build root directory (default <paths.build_root>/<target>)")
			flags.StringVar(&platformName, "platform", "gowin", "vendor platform for tool requirements and bootstrap")
			flags.StringVar(&stepTimeout, "step-timeout", "", "per-step timeout, e.g. 2h (default from config)")
			flags.StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
			flags.BoolVar(&archiveAfter, "archive", false, "archive the build root after a successful build")
			flags.StringArrayVar(&variableSets, "set", nil, "plan variable override, NAME=VALUE (repeatable)")
			return flags
		},
		Examples: []cli.Example{
			{
				Description: "Build with the packaged yosys preferred",
				Command:     "BITFORGE_USE_YOSYS=builtin,system bitforge build --plan blinky.jsonc",
			},
			{
				Description: "Override a plan variable",
				Command:     "bitforge build --plan blinky.jsonc --set DEVICE=GW1N-1",
			},
		},
		Run: func(args []string) error {
			if planPath == "" {
				return fmt.Errorf("--plan is required")
			}
			return runBuild(configPath, planPath, rootDir, platformName, stepTimeout, logLevel, archiveAfter, variableSets)
		},
	}
}

func runBuild(configPath, planPath, rootDir, platformName, stepTimeout, logLevel string, archiveAfter bool, variableSets []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	if logLevel == "" {
		logLevel = cfg.Log.Level
	}
	level, err := cli.ParseLevel(logLevel)
	if err != nil {
		return err
	}

	plan, err := buildplan.ReadFile(planPath)
	if err != nil {
		return err
	}
	if issues := buildplan.Validate(plan); len(issues) > 0 {
		return fmt.Errorf("invalid plan %s:\n  %s", planPath, strings.Join(issues, "\n  "))
	}

	overrides, err := parseVariableSets(variableSets)
	if err != nil {
		return err
	}
	variables, err := buildplan.ResolveVariables(plan.Variables, overrides, os.Getenv)
	if err != nil {
		return err
	}
	plan, err = buildplan.ExpandPlan(plan, variables)
	if err != nil {
		return err
	}

	logger := cli.NewCommandLogger(level).With("command", "build", "target", plan.Name)

	plat, err := platform.ByName(platformName)
	if err != nil {
		return err
	}

	buildRoot := rootDir
	if buildRoot == "" {
		buildRoot = filepath.Join(cfg.Paths.BuildRoot, plan.Name)
	}

	timeout, err := buildTimeout(cfg, stepTimeout)
	if err != nil {
		return err
	}
	grace, err := cfg.TerminationGrace()
	if err != nil {
		return err
	}

	runner := subprocess.NewRunner(clock.Real())
	tools := map[string]executor.Tool{}
	for _, tool := range commandTools(plan) {
		resolved, err := resolveTool(ctx, cfg, plat, runner, tool, buildRoot, grace)
		if err != nil {
			return err
		}
		if version, ok := resolved.Version(); ok {
			logger.Info("tool resolved", "tool", tool, "provider", resolved.ProviderName(), "version", version.String())
		} else {
			logger.Info("tool resolved", "tool", tool, "provider", resolved.ProviderName())
		}
		tools[tool] = resolved
	}

	runExecutor := &executor.Executor{
		Root:        buildRoot,
		Tools:       tools,
		StepTimeout: timeout,
		Clock:       clock.Real(),
		Logger:      logger,
	}
	result, err := runExecutor.Execute(ctx, plan)
	if err != nil {
		return err
	}

	for _, product := range result.Products {
		fmt.Printf("%s  %s\n", product.Digest, filepath.Join(buildRoot, product.Path))
	}

	if archiveAfter || cfg.Build.Archive.Enabled {
		compression, err := artifact.ParseCompression(cfg.Build.Archive.Compression)
		if err != nil {
			return err
		}
		destination := filepath.Join(buildRoot, artifact.ArchiveName(plan.Name, compression))
		if err := artifact.WriteArchive(buildRoot, destination, compression); err != nil {
			return err
		}
		fmt.Printf("archived %s\n", destination)
	}

	return nil
}

// commandTools returns the distinct tool names the plan's command
// steps reference, in first-use order.
func commandTools(plan *buildplan.Plan) []string {
	var tools []string
	seen := map[string]bool{}
	for _, step := range plan.Steps {
		if step.Command == nil || seen[step.Command.Tool] {
			continue
		}
		seen[step.Command.Tool] = true
		tools = append(tools, step.Command.Tool)
	}
	return tools
}

// parseVariableSets parses repeated --set NAME=VALUE flags.
func parseVariableSets(sets []string) (map[string]string, error) {
	if len(sets) == 0 {
		return nil, nil
	}
	overrides := make(map[string]string, len(sets))
	for _, entry := range sets {
		name, value, found := strings.Cut(entry, "=")
		if !found || name == "" {
			return nil, fmt.Errorf("--set needs NAME=VALUE, got %q", entry)
		}
		overrides[name] = value
	}
	return overrides, nil
}

// buildTimeout resolves the per-step timeout: flag wins over config.
func buildTimeout(cfg *config.Config, flag string) (time.Duration, error) {
	if flag != "" {
		return time.ParseDuration(flag)
	}
	return cfg.StepTimeout()
}
