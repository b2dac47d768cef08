// Copyright 2026 The Bitforge Authors
// SPDX-License-Identifier: Apache-2.0

package buildplan

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// variablePattern matches ${NAME} references in plan strings. Only the
// braced form is recognized. Variable names must start with a letter
// or underscore and contain only letters, digits, and underscores.
var variablePattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// ResolveVariables merges variable sources in resolution order
// (lowest to highest priority):
//
//  1. Declared defaults from the plan's variable declarations
//  2. Caller overrides (e.g. --set flags)
//  3. Environment lookup via the environ function
//
// Returns the merged variable map, or an error if any required
// variable has no value from any source.
//
// The environ function is typically os.Getenv in production, or a stub
// in tests. It is only consulted for declared variables — undeclared
// environment variables are never pulled into the result.
func ResolveVariables(declarations map[string]Variable, overrides map[string]string, environ func(string) string) (map[string]string, error) {
	resolved := make(map[string]string, len(declarations)+len(overrides))

	for name, declaration := range declarations {
		if declaration.Default != "" {
			resolved[name] = declaration.Default
		}
	}

	for name, value := range overrides {
		resolved[name] = value
	}

	if environ != nil {
		for name := range declarations {
			if value := environ(name); value != "" {
				resolved[name] = value
			}
		}
	}

	var missing []string
	for name, declaration := range declarations {
		if declaration.Required {
			if _, exists := resolved[name]; !exists {
				missing = append(missing, name)
			}
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, fmt.Errorf("required plan variables not set: %s", strings.Join(missing, ", "))
	}

	return resolved, nil
}

// Expand replaces ${NAME} references in input with values from the
// variables map. Returns an error listing all referenced variables
// that have no value, so plans fail fast on unresolvable references
// rather than producing broken artifacts or commands.
func Expand(input string, variables map[string]string) (string, error) {
	var unresolved []string

	result := variablePattern.ReplaceAllStringFunc(input, func(match string) string {
		name := match[2 : len(match)-1]
		if value, exists := variables[name]; exists {
			return value
		}
		unresolved = append(unresolved, name)
		return match
	})

	if len(unresolved) > 0 {
		return "", fmt.Errorf("unresolved plan variables: %s", strings.Join(unresolved, ", "))
	}

	return result, nil
}

// ExpandStep returns a copy of step with all string fields expanded:
// artifact path and content, command arguments and stdin, relocation
// source and destination. Tool names are deliberately not expanded —
// a tool reference is a binding to a resolved installation, not text.
// The original step is not modified.
func ExpandStep(step Step, variables map[string]string) (Step, error) {
	var err error

	if step.Artifact != nil {
		expanded := *step.Artifact
		if expanded.Path, err = Expand(expanded.Path, variables); err != nil {
			return Step{}, fmt.Errorf("step %q artifact.path: %w", step.Name, err)
		}
		if expanded.Content, err = Expand(expanded.Content, variables); err != nil {
			return Step{}, fmt.Errorf("step %q artifact.content: %w", step.Name, err)
		}
		step.Artifact = &expanded
	}

	if step.Command != nil {
		expanded := *step.Command
		if len(expanded.Args) > 0 {
			args := make([]string, len(expanded.Args))
			for index, argument := range expanded.Args {
				if args[index], err = Expand(argument, variables); err != nil {
					return Step{}, fmt.Errorf("step %q command.args[%d]: %w", step.Name, index, err)
				}
			}
			expanded.Args = args
		}
		if expanded.Stdin, err = Expand(expanded.Stdin, variables); err != nil {
			return Step{}, fmt.Errorf("step %q command.stdin: %w", step.Name, err)
		}
		step.Command = &expanded
	}

	if step.Relocate != nil {
		expanded := *step.Relocate
		if expanded.Source, err = Expand(expanded.Source, variables); err != nil {
			return Step{}, fmt.Errorf("step %q relocate.source: %w", step.Name, err)
		}
		if expanded.Destination, err = Expand(expanded.Destination, variables); err != nil {
			return Step{}, fmt.Errorf("step %q relocate.destination: %w", step.Name, err)
		}
		step.Relocate = &expanded
	}

	return step, nil
}

// ExpandPlan returns a copy of plan with every step and product path
// expanded against the resolved variables. The original plan is not
// modified.
func ExpandPlan(plan *Plan, variables map[string]string) (*Plan, error) {
	expanded := *plan

	expanded.Steps = make([]Step, len(plan.Steps))
	for index, step := range plan.Steps {
		step, err := ExpandStep(step, variables)
		if err != nil {
			return nil, err
		}
		expanded.Steps[index] = step
	}

	if len(plan.Products) > 0 {
		expanded.Products = make([]string, len(plan.Products))
		for index, product := range plan.Products {
			value, err := Expand(product, variables)
			if err != nil {
				return nil, fmt.Errorf("products[%d]: %w", index, err)
			}
			expanded.Products[index] = value
		}
	}

	return &expanded, nil
}
