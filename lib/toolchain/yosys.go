// Copyright 2026 The Bitforge Authors
// SPDX-License-Identifier: Apache-2.0

package toolchain

import (
	"regexp"
	"time"

	"github.com/bitforge-eda/bitforge/lib/subprocess"
)

// YosysTool is the logical name of the yosys synthesis tool, the one
// tool bitforge ships a packaged redistributable for.
const YosysTool = "yosys"

// DefaultPackagedRoot is where packaged toolchain trees live when the
// config does not override paths.toolchain_root.
const DefaultPackagedRoot = "/opt/bitforge/toolchains"

// SystemYosysVersionPattern extracts the version from "yosys -V"
// output, e.g. "Yosys 0.9+3503 (git sha1 deadbeef)". The distance
// after "+" counts commits past the tagged release and is absent on
// exact-release builds.
var SystemYosysVersionPattern = regexp.MustCompile(`^Yosys (\d+)\.(\d+)(?:\+(\d+))?`)

// PackagedYosysVersionPattern extracts the version from a packaged
// tree's VERSION record, which is git-describe style: "v0.9",
// "0.9-3503-gdeadbee". The distance sits between the dashes.
var PackagedYosysVersionPattern = regexp.MustCompile(`^v?(\d+)\.(\d+)(?:-(\d+)-g[0-9a-f]+)?$`)

// verificBannerMarker prefixes the license lines a Verific-enabled
// yosys prints before real output.
const verificBannerMarker = "-- "

// SystemYosys returns the system provider for yosys: binary from
// binDir (when set) or PATH, version via "yosys -V", stdout filtered
// through the Verific banner transform.
func SystemYosys(runner *subprocess.Runner, binDir string, grace time.Duration) *SystemProvider {
	return &SystemProvider{
		Tool:           YosysTool,
		BinDir:         binDir,
		VersionArgs:    []string{"-V"},
		VersionPattern: SystemYosysVersionPattern,
		Sanitize:       StripLeadingBanner(verificBannerMarker),
		Grace:          grace,
		Runner:         runner,
	}
}

// PackagedYosys returns the builtin provider for yosys under the
// given packaged toolchain root. No sanitization: the packaged build
// carries no Verific frontend.
func PackagedYosys(runner *subprocess.Runner, root string, grace time.Duration) *PackagedProvider {
	if root == "" {
		root = DefaultPackagedRoot
	}
	return &PackagedProvider{
		Tool:           YosysTool,
		Root:           root,
		VersionPattern: PackagedYosysVersionPattern,
		Grace:          grace,
		Runner:         runner,
	}
}

// YosysRegistry returns the full provider registry for yosys. dir is
// the working directory for invocations, normally the build root;
// empty means the calling process's directory.
func YosysRegistry(runner *subprocess.Runner, binDir, packagedRoot, dir string, grace time.Duration) Registry {
	system := SystemYosys(runner, binDir, grace)
	system.Dir = dir
	packaged := PackagedYosys(runner, packagedRoot, grace)
	packaged.Dir = dir
	return Registry{
		ProviderSystem:  system,
		ProviderBuiltin: packaged,
	}
}

// VendorTool returns a system-only registry for a vendor tool with no
// version gate (e.g. Gowin's gw_sh): availability alone selects it,
// and envScript, when non-empty, is sourced before every invocation.
func VendorTool(tool string, runner *subprocess.Runner, binDir, envScript, dir string, grace time.Duration) Registry {
	return Registry{
		ProviderSystem: &SystemProvider{
			Tool:      tool,
			BinDir:    binDir,
			EnvScript: envScript,
			Dir:       dir,
			Grace:     grace,
			Runner:    runner,
		},
	}
}
