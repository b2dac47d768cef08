// Copyright 2026 The Bitforge Authors
// SPDX-License-Identifier: Apache-2.0

package platform

import (
	"errors"
	"fmt"
)

// Platform describes one vendor toolchain target.
type Platform struct {
	// Name is the platform identifier used in configuration and on
	// the command line, e.g. "gowin".
	Name string

	// BootstrapVar is the environment variable naming a shell script
	// that is sourced before invoking the platform's vendor tools.
	// Empty when the platform needs no bootstrap.
	BootstrapVar string

	// Tools lists the tools a build on this platform resolves, in
	// invocation order.
	Tools []Requirement
}

// Requirement names one tool a platform needs.
type Requirement struct {
	// Tool is the logical tool name, e.g. "yosys".
	Tool string

	// Require is a semver constraint on the tool's version. Empty
	// means availability alone is enough; vendor tools often report
	// no parsable version at all.
	Require string
}

// Design is the input to a plan builder: everything about one design
// that the flow's scripts and constraint files need. The RTLIL and
// debug Verilog text come pre-rendered from the HDL layer; this
// package never generates HDL.
type Design struct {
	// Name is the build target name. It names every build artifact.
	Name string

	// TopModule is the design's top-level module.
	TopModule string

	// Device is the vendor device family name, e.g. "GW1N-1".
	Device string

	// Part is the full part ordering code, e.g. "GW1N-LV1QN48C6/I5".
	Part string

	// RTLIL is the design in RTLIL text form.
	RTLIL string

	// DebugVerilog is the readable Verilog rendition of the design,
	// written alongside the build for debugging. Optional.
	DebugVerilog string

	// Pins maps design ports to physical pins.
	Pins []PinConstraint

	// Clocks declares clock ports and their periods.
	Clocks []ClockConstraint
}

// PinConstraint maps one design port to a physical pin.
type PinConstraint struct {
	// Port is the design port name.
	Port string

	// Location is the physical pin, e.g. "35".
	Location string

	// IOType is the IO standard. Empty means LVCMOS33.
	IOType string
}

// ClockConstraint declares one clock port.
type ClockConstraint struct {
	// Port is the clock port name.
	Port string

	// PeriodNS is the clock period in nanoseconds.
	PeriodNS float64
}

// Validate checks that a design carries everything a plan builder
// needs.
func (d *Design) Validate() error {
	var errs []error

	if d.Name == "" {
		errs = append(errs, fmt.Errorf("design name is required"))
	}
	if d.TopModule == "" {
		errs = append(errs, fmt.Errorf("top module is required"))
	}
	if d.Device == "" {
		errs = append(errs, fmt.Errorf("device is required"))
	}
	if d.Part == "" {
		errs = append(errs, fmt.Errorf("part is required"))
	}
	if d.RTLIL == "" {
		errs = append(errs, fmt.Errorf("design has no RTLIL text"))
	}
	for _, pin := range d.Pins {
		if pin.Port == "" || pin.Location == "" {
			errs = append(errs, fmt.Errorf("pin constraint needs both port and location (got port=%q location=%q)", pin.Port, pin.Location))
		}
	}
	for _, clock := range d.Clocks {
		if clock.Port == "" {
			errs = append(errs, fmt.Errorf("clock constraint needs a port"))
		}
		if clock.PeriodNS <= 0 {
			errs = append(errs, fmt.Errorf("clock %s period must be positive (got %v)", clock.Port, clock.PeriodNS))
		}
	}

	return errors.Join(errs...)
}

// ByName returns the registered platform with the given name.
func ByName(name string) (*Platform, error) {
	for _, platform := range All() {
		if platform.Name == name {
			return platform, nil
		}
	}
	return nil, fmt.Errorf("unknown platform %q", name)
}

// All returns the registered platforms.
func All() []*Platform {
	return []*Platform{Gowin()}
}
