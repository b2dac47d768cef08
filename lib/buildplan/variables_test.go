// Copyright 2026 The Bitforge Authors
// SPDX-License-Identifier: Apache-2.0

package buildplan

import (
	"reflect"
	"strings"
	"testing"
)

func TestResolveVariablesPrecedence(t *testing.T) {
	t.Parallel()

	declarations := map[string]Variable{
		"DEVICE": {Default: "GW1N-LV1"},
		"SPEED":  {Default: "C6"},
		"TOP":    {Default: "top"},
	}
	overrides := map[string]string{
		"SPEED": "C7",
		"TOP":   "blinky",
	}
	environ := func(name string) string {
		if name == "TOP" {
			return "from_env"
		}
		return ""
	}

	resolved, err := ResolveVariables(declarations, overrides, environ)
	if err != nil {
		t.Fatalf("ResolveVariables: %v", err)
	}

	want := map[string]string{
		"DEVICE": "GW1N-LV1", // declaration default
		"SPEED":  "C7",       // override beats default
		"TOP":    "from_env", // environment beats override
	}
	if !reflect.DeepEqual(resolved, want) {
		t.Errorf("resolved = %v, want %v", resolved, want)
	}
}

func TestResolveVariablesRequiredMissing(t *testing.T) {
	t.Parallel()

	declarations := map[string]Variable{
		"DEVICE": {Required: true},
		"PART":   {Required: true},
	}

	_, err := ResolveVariables(declarations, nil, nil)
	if err == nil {
		t.Fatal("expected error for unset required variables")
	}
	// Missing names are sorted for a stable message.
	if !strings.Contains(err.Error(), "DEVICE, PART") {
		t.Errorf("error = %v, want sorted missing names", err)
	}
}

func TestResolveVariablesIgnoresUndeclaredEnvironment(t *testing.T) {
	t.Parallel()

	environ := func(name string) string { return "leaked" }
	resolved, err := ResolveVariables(map[string]Variable{"TOP": {Default: "top"}}, nil, environ)
	if err != nil {
		t.Fatalf("ResolveVariables: %v", err)
	}
	if len(resolved) != 1 {
		t.Errorf("resolved = %v, want only declared variables", resolved)
	}
}

func TestExpand(t *testing.T) {
	t.Parallel()

	variables := map[string]string{"NAME": "blinky", "DEVICE": "GW1N-LV1"}

	got, err := Expand("set_device -name ${DEVICE} for ${NAME}", variables)
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if got != "set_device -name GW1N-LV1 for blinky" {
		t.Errorf("Expand = %q", got)
	}

	// Bare $NAME is not a reference.
	got, err = Expand("echo $NAME", variables)
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if got != "echo $NAME" {
		t.Errorf("Expand = %q, want bare dollar left alone", got)
	}
}

func TestExpandUnresolvedReference(t *testing.T) {
	t.Parallel()

	_, err := Expand("read_ilang ${MISSING}.il", map[string]string{})
	if err == nil {
		t.Fatal("expected error for unresolved reference")
	}
	if !strings.Contains(err.Error(), "MISSING") {
		t.Errorf("error = %v, want it to name the unresolved variable", err)
	}
}

func TestExpandStepCoversAllFields(t *testing.T) {
	t.Parallel()

	variables := map[string]string{"NAME": "blinky"}
	step := Step{
		Name:    "synthesize",
		Command: &CommandStep{Tool: "yosys", Args: []string{"-q", "-l", "${NAME}.rpt", "${NAME}.ys"}, Stdin: "# ${NAME}"},
	}

	expanded, err := ExpandStep(step, variables)
	if err != nil {
		t.Fatalf("ExpandStep: %v", err)
	}
	wantArgs := []string{"-q", "-l", "blinky.rpt", "blinky.ys"}
	if !reflect.DeepEqual(expanded.Command.Args, wantArgs) {
		t.Errorf("Args = %v, want %v", expanded.Command.Args, wantArgs)
	}
	if expanded.Command.Stdin != "# blinky" {
		t.Errorf("Stdin = %q", expanded.Command.Stdin)
	}

	// The original step is untouched.
	if step.Command.Args[2] != "${NAME}.rpt" {
		t.Errorf("original step mutated: %v", step.Command.Args)
	}
}

func TestExpandPlan(t *testing.T) {
	t.Parallel()

	plan := &Plan{
		Name: "blinky",
		Steps: []Step{
			{Name: "write", Artifact: &ArtifactStep{Path: "${NAME}.cst", Content: "IO_LOC \"led\" ${PIN};\n"}},
			{Name: "collect", Relocate: &RelocateStep{Source: "impl/pnr/${NAME}.fs", Destination: "${NAME}.fs"}},
		},
		Products: []string{"${NAME}.fs"},
	}

	expanded, err := ExpandPlan(plan, map[string]string{"NAME": "blinky", "PIN": "16"})
	if err != nil {
		t.Fatalf("ExpandPlan: %v", err)
	}
	if expanded.Steps[0].Artifact.Path != "blinky.cst" {
		t.Errorf("artifact path = %q", expanded.Steps[0].Artifact.Path)
	}
	if expanded.Steps[0].Artifact.Content != "IO_LOC \"led\" 16;\n" {
		t.Errorf("artifact content = %q", expanded.Steps[0].Artifact.Content)
	}
	if expanded.Steps[1].Relocate.Source != "impl/pnr/blinky.fs" {
		t.Errorf("relocate source = %q", expanded.Steps[1].Relocate.Source)
	}
	if expanded.Products[0] != "blinky.fs" {
		t.Errorf("product = %q", expanded.Products[0])
	}
}
