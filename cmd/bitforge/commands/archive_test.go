// Copyright 2026 The Bitforge Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bitforge-eda/bitforge/lib/buildplan"
	"github.com/bitforge-eda/bitforge/lib/executor"
)

// finishedBuildRoot runs a minimal pipeline so the root carries both a
// product and the result log that records its digest.
func finishedBuildRoot(t *testing.T, target string) string {
	t.Helper()

	root := t.TempDir()
	plan := &buildplan.Plan{
		Name: target,
		Steps: []buildplan.Step{
			{Name: "write bitstream", Artifact: &buildplan.ArtifactStep{
				Path:    target + ".fs",
				Content: "bitstream",
			}},
		},
		Products: []string{target + ".fs"},
	}
	runner := &executor.Executor{Root: root}
	if _, err := runner.Execute(context.Background(), plan); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	return root
}

func TestArchiveUnpackRoundTrip(t *testing.T) {
	t.Setenv("BITFORGE_CONFIG", "")

	buildRoot := finishedBuildRoot(t, "blinky")
	archivePath := filepath.Join(t.TempDir(), "blinky.tar.zst")
	if err := runArchive("", buildRoot, archivePath, "zstd", "blinky"); err != nil {
		t.Fatalf("runArchive: %v", err)
	}

	unpacked := filepath.Join(t.TempDir(), "blinky")
	if err := runUnpack("", unpacked, archivePath); err != nil {
		t.Fatalf("runUnpack: %v", err)
	}

	content, err := os.ReadFile(filepath.Join(unpacked, "blinky.fs"))
	if err != nil {
		t.Fatalf("reading unpacked bitstream: %v", err)
	}
	if string(content) != "bitstream" {
		t.Errorf("unpacked content = %q", content)
	}
}

func TestUnpackRejectsCorruptedProduct(t *testing.T) {
	t.Setenv("BITFORGE_CONFIG", "")

	buildRoot := finishedBuildRoot(t, "blinky")
	// Corrupt the bitstream after the run recorded its digest.
	if err := os.WriteFile(filepath.Join(buildRoot, "blinky.fs"), []byte("flipped"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	archivePath := filepath.Join(t.TempDir(), "blinky.tar.zst")
	if err := runArchive("", buildRoot, archivePath, "zstd", "blinky"); err != nil {
		t.Fatalf("runArchive: %v", err)
	}

	err := runUnpack("", filepath.Join(t.TempDir(), "blinky"), archivePath)
	if err == nil {
		t.Fatal("expected digest mismatch")
	}
	if !strings.Contains(err.Error(), "mismatch") {
		t.Errorf("error = %q, want a digest mismatch", err)
	}
}

func TestArchiveTarget(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path string
		want string
	}{
		{"blinky.tar.zst", "blinky"},
		{"/builds/blinky.tar.lz4", "blinky"},
		{"blinky.tgz", ""},
		{".tar.zst", ""},
	}
	for _, test := range tests {
		got, err := archiveTarget(test.path)
		if test.want == "" {
			if err == nil {
				t.Errorf("archiveTarget(%q) = %q, want error", test.path, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("archiveTarget(%q): %v", test.path, err)
			continue
		}
		if got != test.want {
			t.Errorf("archiveTarget(%q) = %q, want %q", test.path, got, test.want)
		}
	}
}
