// Copyright 2026 The Bitforge Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"

	"github.com/bitforge-eda/bitforge/cmd/bitforge/cli"
	"github.com/bitforge-eda/bitforge/lib/artifact"
	"github.com/bitforge-eda/bitforge/lib/executor"
)

// ArchiveCommand returns the "bitforge archive" command: pack an
// existing build root into a deterministic compressed tar, or unpack
// and verify one.
func ArchiveCommand() *cli.Command {
	var (
		configPath  string
		rootDir     string
		output      string
		compression string
		unpack      bool
	)

	return &cli.Command{
		Name:    "archive",
		Summary: "Pack a finished build root into a compressed archive",
		Description: `Pack or unpack a build root.

Writes a deterministic tar (sorted entries, zeroed timestamps,
normalized modes) of the target's build root, compressed with zstd or
lz4. Archiving the same build root twice yields byte-identical
output, so CI can cache on the archive digest.

With --unpack, extracts an archive into a build root and verifies
every product recorded in the archived result log against its digest,
so a corrupted transfer is caught before the bitstream is used.`,
		Usage: "bitforge archive <target> [flags]\n  bitforge archive --unpack <archive> [flags]",
		Examples: []cli.Example{
			{Description: "Pack the blinky build root", Command: "bitforge archive blinky"},
			{Description: "Unpack and verify a shipped archive", Command: "bitforge archive --unpack blinky.tar.zst --root ./blinky"},
		},
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("archive", pflag.ContinueOnError)
			flags.StringVar(&configPath, "config", "", "config file (overrides BITFORGE_CONFIG)")
			flags.StringVar(&rootDir, "root", "", "build root directory (default <paths.build_root>/<target>)")
			flags.StringVar(&output, "output", "", "archive path (default <root>/<target>.tar.<suffix>)")
			flags.StringVar(&compression, "compression", "", "zstd or lz4 (default from config)")
			flags.BoolVar(&unpack, "unpack", false, "extract an archive and verify its products")
			return flags
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				if unpack {
					return fmt.Errorf("expected exactly one archive path, got %d args", len(args))
				}
				return fmt.Errorf("expected exactly one target name, got %d args", len(args))
			}
			if unpack {
				return runUnpack(configPath, rootDir, args[0])
			}
			return runArchive(configPath, rootDir, output, compression, args[0])
		},
	}
}

func runArchive(configPath, rootDir, output, compressionName, target string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	if compressionName == "" {
		compressionName = cfg.Build.Archive.Compression
	}
	compression, err := artifact.ParseCompression(compressionName)
	if err != nil {
		return err
	}

	buildRoot := rootDir
	if buildRoot == "" {
		buildRoot = filepath.Join(cfg.Paths.BuildRoot, target)
	}
	if info, err := os.Stat(buildRoot); err != nil || !info.IsDir() {
		return fmt.Errorf("build root %s does not exist; run the build first", buildRoot)
	}

	destination := output
	if destination == "" {
		destination = filepath.Join(buildRoot, artifact.ArchiveName(target, compression))
	}

	if err := artifact.WriteArchive(buildRoot, destination, compression); err != nil {
		return err
	}
	fmt.Printf("archived %s\n", destination)
	return nil
}

func runUnpack(configPath, rootDir, archivePath string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	target, err := archiveTarget(archivePath)
	if err != nil {
		return err
	}

	destination := rootDir
	if destination == "" {
		destination = filepath.Join(cfg.Paths.BuildRoot, target)
	}
	if err := artifact.ExtractArchive(archivePath, destination); err != nil {
		return err
	}

	products, err := executor.VerifyProducts(destination, target)
	if err != nil {
		return fmt.Errorf("verifying %s: %w", destination, err)
	}

	fmt.Printf("unpacked %s\n", destination)
	for _, product := range products {
		fmt.Printf("%s  %s\n", product.Digest, filepath.Join(destination, product.Path))
	}
	return nil
}

// archiveTarget derives the target name from an archive file name,
// the inverse of artifact.ArchiveName.
func archiveTarget(archivePath string) (string, error) {
	base := filepath.Base(archivePath)
	for _, suffix := range []string{".tar.zst", ".tar.lz4"} {
		if target, found := strings.CutSuffix(base, suffix); found && target != "" {
			return target, nil
		}
	}
	return "", fmt.Errorf("cannot derive target from %s (want <target>.tar.zst or <target>.tar.lz4)", base)
}
