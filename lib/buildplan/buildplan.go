// Copyright 2026 The Bitforge Authors
// SPDX-License-Identifier: Apache-2.0

// Package buildplan models build pipelines: an ordered list of steps
// that materialize artifacts, invoke resolved tools, and relocate the
// final output to the build root. Plans are produced programmatically
// by lib/platform or authored on disk as JSONC files (JSON extended
// with comments and trailing commas).
//
// The typical flow:
//
//  1. ReadFile or Parse: JSONC bytes → Plan
//  2. Validate: structural checks (step kinds, required fields)
//  3. ResolveVariables: merge declarations + overrides + environment
//  4. ExpandPlan: substitute ${NAME} references before execution
package buildplan

// Plan is one build request: a named target, its variable
// declarations, the ordered step sequence, and the products a
// successful run is expected to leave in the build root. Plans are
// constructed per build request and consumed exactly once by the
// executor.
type Plan struct {
	// Name is the build target name. Artifact paths derive from it.
	Name string `json:"name"`

	// Variables declares the ${NAME} references the plan's strings
	// may use, with optional defaults.
	Variables map[string]Variable `json:"variables,omitempty"`

	// Steps run strictly in order.
	Steps []Step `json:"steps"`

	// Products are build-root-relative paths recorded (with digests)
	// after a successful run.
	Products []string `json:"products,omitempty"`
}

// Variable declares one plan variable.
type Variable struct {
	// Default is the value used when neither an override nor the
	// environment provides one.
	Default string `json:"default,omitempty"`

	// Required marks a variable that must resolve to a value from
	// some source.
	Required bool `json:"required,omitempty"`

	// Description documents the variable for plan authors.
	Description string `json:"description,omitempty"`
}

// Step is one unit of pipeline work. Exactly one of Artifact, Command,
// or Relocate is set; Validate enforces this.
type Step struct {
	// Name identifies the step in logs and failure reports.
	Name string `json:"name"`

	// Artifact materializes a file under the build root.
	Artifact *ArtifactStep `json:"artifact,omitempty"`

	// Command invokes a resolved tool.
	Command *CommandStep `json:"command,omitempty"`

	// Relocate copies a nested output file up to the build root.
	Relocate *RelocateStep `json:"relocate,omitempty"`
}

// Kind returns "artifact", "command", or "relocate", or "" for a step
// with no action set.
func (s Step) Kind() string {
	switch {
	case s.Artifact != nil:
		return "artifact"
	case s.Command != nil:
		return "command"
	case s.Relocate != nil:
		return "relocate"
	default:
		return ""
	}
}

// ArtifactStep writes a file. Content comes either from the inline
// Content string (plan files) or from the Render function
// (programmatic plans, where the HDL layer supplies a pure function
// from design metadata to text). Render takes precedence when both
// are set; Validate rejects that combination in parsed plans.
type ArtifactStep struct {
	// Path is the target path, relative to the build root. An
	// existing file is overwritten.
	Path string `json:"path"`

	// Content is the literal file content.
	Content string `json:"content,omitempty"`

	// Render produces the file content. Never set by the parser.
	Render func() (string, error) `json:"-"`
}

// CommandStep invokes the resolved tool bound under Tool.
type CommandStep struct {
	// Tool is the logical tool name ("yosys", "gw_sh").
	Tool string `json:"tool"`

	// Args are the invocation arguments.
	Args []string `json:"args,omitempty"`

	// Stdin is written to the tool's standard input.
	Stdin string `json:"stdin,omitempty"`
}

// RelocateStep copies Source to Destination, both relative to the
// build root. It is typically the final step, lifting the vendor
// tool's nested output file up to the root; a missing source is a
// step failure like any other.
type RelocateStep struct {
	Source      string `json:"source"`
	Destination string `json:"destination"`
}
