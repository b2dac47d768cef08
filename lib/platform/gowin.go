// Copyright 2026 The Bitforge Authors
// SPDX-License-Identifier: Apache-2.0

package platform

import (
	"fmt"
	"path"
	"strconv"
	"strings"

	"github.com/bitforge-eda/bitforge/lib/artifact"
	"github.com/bitforge-eda/bitforge/lib/buildplan"
)

const (
	// GowinShellTool is the Gowin IDE's batch shell, the entry point
	// for place-and-route and bitstream generation.
	GowinShellTool = "gw_sh"

	// yosysTool matches toolchain.YosysTool without importing it;
	// the two packages stay independent.
	yosysTool = "yosys"
)

// Gowin returns the Gowin GW1N platform: yosys for synthesis
// (synth_gowin landed in 0.9), gw_sh for place-and-route. gw_sh
// reports no parsable version, so it resolves on availability alone.
func Gowin() *Platform {
	return &Platform{
		Name:         "gowin",
		BootstrapVar: "BITFORGE_ENV_GOWIN",
		Tools: []Requirement{
			{Tool: yosysTool, Require: ">= 0.9"},
			{Tool: GowinShellTool},
		},
	}
}

// GowinPlan builds the canonical Gowin flow for a design: write the
// design and scripts, synthesize with yosys, place and route with
// gw_sh, and collect the bitstream from the vendor tool's nested
// output directory. The returned plan declares the bitstream as its
// only product.
func GowinPlan(design *Design) (*buildplan.Plan, error) {
	if err := design.Validate(); err != nil {
		return nil, fmt.Errorf("gowin plan for %q: %w", design.Name, err)
	}

	name := design.Name
	steps := []buildplan.Step{
		{
			Name: "write design",
			Artifact: &buildplan.ArtifactStep{
				Path:    artifact.FileName(name, artifact.KindSynthesisDesign),
				Content: design.RTLIL,
			},
		},
		{
			Name: "write debug netlist",
			Artifact: &buildplan.ArtifactStep{
				Path:    artifact.FileName(name, artifact.KindDebugNetlist),
				Content: design.DebugVerilog,
			},
		},
		{
			Name: "write synthesis script",
			Artifact: &buildplan.ArtifactStep{
				Path:    artifact.FileName(name, artifact.KindSynthesisScript),
				Content: gowinSynthesisScript(design),
			},
		},
		{
			Name: "write physical constraints",
			Artifact: &buildplan.ArtifactStep{
				Path:    artifact.FileName(name, artifact.KindPhysicalConstraints),
				Content: gowinPhysicalConstraints(design),
			},
		},
		{
			Name: "write timing constraints",
			Artifact: &buildplan.ArtifactStep{
				Path:    artifact.FileName(name, artifact.KindTimingConstraints),
				Content: gowinTimingConstraints(design),
			},
		},
		{
			Name: "write project script",
			Artifact: &buildplan.ArtifactStep{
				Path:    artifact.FileName(name, artifact.KindProjectScript),
				Content: gowinProjectScript(design),
			},
		},
		{
			Name: "synthesize",
			Command: &buildplan.CommandStep{
				Tool: yosysTool,
				Args: []string{
					"-q",
					"-l", artifact.FileName(name, artifact.KindSynthesisReport),
					artifact.FileName(name, artifact.KindSynthesisScript),
				},
			},
		},
		{
			Name: "place and route",
			Command: &buildplan.CommandStep{
				Tool: GowinShellTool,
				Args: []string{artifact.FileName(name, artifact.KindProjectScript)},
			},
		},
		{
			Name: "collect bitstream",
			Relocate: &buildplan.RelocateStep{
				Source:      path.Join("impl", "pnr", artifact.FileName(name, artifact.KindBitstream)),
				Destination: artifact.FileName(name, artifact.KindBitstream),
			},
		},
	}

	return &buildplan.Plan{
		Name:     name,
		Steps:    steps,
		Products: []string{artifact.FileName(name, artifact.KindBitstream)},
	}, nil
}

// gowinSynthesisScript renders the yosys script. Synthesis writes a
// raw netlist, then a cleaned rewrite of it: the place-and-route tool
// requires IOBUF and TBUF ports to be connected directly, not through
// wires, so the netlist is passed through opt_clean and re-emitted.
func gowinSynthesisScript(design *Design) string {
	var script strings.Builder

	fmt.Fprintf(&script, "read_ilang %s\n", artifact.FileName(design.Name, artifact.KindSynthesisDesign))
	fmt.Fprintf(&script, "synth_gowin -top %s -vout %s_raw.vg\n", design.TopModule, design.Name)
	script.WriteString("\n")
	script.WriteString("# IOBUF and TBUF ports must connect directly, not through wires.\n")
	script.WriteString("opt_clean -purge\n")
	fmt.Fprintf(&script, "write_verilog -decimal -attr2comment -defparam -renameprefix gen %s\n",
		artifact.FileName(design.Name, artifact.KindVendorNetlist))

	return script.String()
}

// gowinPhysicalConstraints renders the .cst file: one IO_LOC line per
// pin, then one IO_PORT line per pin with its IO standard.
func gowinPhysicalConstraints(design *Design) string {
	var constraints strings.Builder

	for _, pin := range design.Pins {
		fmt.Fprintf(&constraints, "IO_LOC \"%s\" %s;\n", pin.Port, pin.Location)
	}
	for _, pin := range design.Pins {
		ioType := pin.IOType
		if ioType == "" {
			ioType = "LVCMOS33"
		}
		fmt.Fprintf(&constraints, "IO_PORT \"%s\" IO_TYPE=%s;\n", pin.Port, ioType)
	}

	return constraints.String()
}

// gowinTimingConstraints renders the .sdc file: one create_clock line
// per declared clock.
func gowinTimingConstraints(design *Design) string {
	var constraints strings.Builder

	for _, clock := range design.Clocks {
		period := formatNS(clock.PeriodNS)
		half := formatNS(clock.PeriodNS / 2)
		fmt.Fprintf(&constraints, "create_clock -name %s -period %s -waveform {0 %s} [get_ports {%s}]\n",
			clock.Port, period, half, clock.Port)
	}

	return constraints.String()
}

// gowinProjectScript renders the gw_sh Tcl script: register the
// constraint files and netlist, select the device, and run
// place-and-route. gen_posp emits the post-place netlist alongside
// the bitstream; the SPI pins are released as GPIO because GW1N dev
// boards commonly route user IO there.
func gowinProjectScript(design *Design) string {
	var script strings.Builder

	fmt.Fprintf(&script, "add_file -type cst %s\n", artifact.FileName(design.Name, artifact.KindPhysicalConstraints))
	fmt.Fprintf(&script, "add_file -type sdc %s\n", artifact.FileName(design.Name, artifact.KindTimingConstraints))
	fmt.Fprintf(&script, "add_file -type netlist %s\n", artifact.FileName(design.Name, artifact.KindVendorNetlist))
	fmt.Fprintf(&script, "set_device -name %s %s\n", design.Device, design.Part)
	script.WriteString("set_option -gen_posp 1\n")
	script.WriteString("set_option -show_all_warn 1\n")
	script.WriteString("set_option -use_sspi_as_gpio 1\n")
	script.WriteString("set_option -use_mspi_as_gpio 1\n")
	script.WriteString("run pnr\n")

	return script.String()
}

// formatNS formats a nanosecond quantity without a trailing zero run.
func formatNS(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}
