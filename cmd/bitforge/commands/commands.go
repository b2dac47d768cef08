// Copyright 2026 The Bitforge Authors
// SPDX-License-Identifier: Apache-2.0

// Package commands builds the complete bitforge CLI command tree.
package commands

import (
	"fmt"

	"github.com/bitforge-eda/bitforge/cmd/bitforge/cli"
	"github.com/bitforge-eda/bitforge/lib/version"
)

// Root builds and returns the complete bitforge CLI command tree.
func Root() *cli.Command {
	return &cli.Command{
		Name: "bitforge",
		Description: `bitforge: FPGA toolchain resolution and build pipeline execution.

Resolve synthesis and vendor tools across provisioning mechanisms,
run build pipelines from RTLIL to bitstream, and ship build roots as
deterministic archives.`,
		Subcommands: []*cli.Command{
			BuildCommand(),
			ToolchainCommand(),
			ArchiveCommand(),
			{
				Name:    "version",
				Summary: "Print version information",
				Run: func(args []string) error {
					fmt.Printf("bitforge %s\n", version.Full())
					return nil
				},
			},
		},
		Examples: []cli.Example{
			{
				Description: "Run a build plan",
				Command:     "bitforge build --plan blinky.jsonc",
			},
			{
				Description: "See which providers can supply each tool",
				Command:     "bitforge toolchain list",
			},
			{
				Description: "Dry-run resolution for yosys with a version gate",
				Command:     "bitforge toolchain resolve yosys --require '>= 0.9'",
			},
			{
				Description: "Pack a finished build root for CI",
				Command:     "bitforge archive blinky --compression lz4",
			},
		},
	}
}
