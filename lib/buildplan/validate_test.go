// Copyright 2026 The Bitforge Authors
// SPDX-License-Identifier: Apache-2.0

package buildplan

import (
	"strings"
	"testing"
)

func validPlan() *Plan {
	return &Plan{
		Name: "top",
		Steps: []Step{
			{Name: "write-script", Artifact: &ArtifactStep{Path: "top.ys", Content: "read_ilang top.il\n"}},
			{Name: "synthesize", Command: &CommandStep{Tool: "yosys", Args: []string{"-q", "top.ys"}}},
			{Name: "collect", Relocate: &RelocateStep{Source: "impl/pnr/top.fs", Destination: "top.fs"}},
		},
		Products: []string{"top.fs"},
	}
}

func TestValidateAcceptsWellFormedPlan(t *testing.T) {
	t.Parallel()

	if issues := Validate(validPlan()); len(issues) != 0 {
		t.Errorf("unexpected issues: %v", issues)
	}
}

func TestValidateStructuralIssues(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Plan)
		wantIn string
	}{
		{
			name:   "missing plan name",
			mutate: func(p *Plan) { p.Name = "" },
			wantIn: "no name",
		},
		{
			name:   "no steps",
			mutate: func(p *Plan) { p.Steps = nil },
			wantIn: "no steps",
		},
		{
			name:   "step without name",
			mutate: func(p *Plan) { p.Steps[0].Name = "" },
			wantIn: "name is required",
		},
		{
			name:   "step without action",
			mutate: func(p *Plan) { p.Steps[0].Artifact = nil },
			wantIn: "must set one of",
		},
		{
			name: "step with two actions",
			mutate: func(p *Plan) {
				p.Steps[0].Command = &CommandStep{Tool: "yosys"}
			},
			wantIn: "mutually exclusive",
		},
		{
			name:   "artifact without path",
			mutate: func(p *Plan) { p.Steps[0].Artifact.Path = "" },
			wantIn: "artifact.path is required",
		},
		{
			name: "artifact with content and render",
			mutate: func(p *Plan) {
				p.Steps[0].Artifact.Render = func() (string, error) { return "", nil }
			},
			wantIn: "mutually exclusive",
		},
		{
			name:   "command without tool",
			mutate: func(p *Plan) { p.Steps[1].Command.Tool = "" },
			wantIn: "command.tool is required",
		},
		{
			name:   "relocate without source",
			mutate: func(p *Plan) { p.Steps[2].Relocate.Source = "" },
			wantIn: "relocate.source is required",
		},
		{
			name:   "relocate without destination",
			mutate: func(p *Plan) { p.Steps[2].Relocate.Destination = "" },
			wantIn: "relocate.destination is required",
		},
		{
			name:   "empty product path",
			mutate: func(p *Plan) { p.Products = []string{""} },
			wantIn: "path is empty",
		},
	}

	for _, testCase := range tests {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			plan := validPlan()
			testCase.mutate(plan)

			issues := Validate(plan)
			if len(issues) == 0 {
				t.Fatalf("expected an issue containing %q, got none", testCase.wantIn)
			}
			found := false
			for _, issue := range issues {
				if strings.Contains(issue, testCase.wantIn) {
					found = true
					break
				}
			}
			if !found {
				t.Errorf("issues %v contain nothing matching %q", issues, testCase.wantIn)
			}
		})
	}
}
