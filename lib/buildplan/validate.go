// Copyright 2026 The Bitforge Authors
// SPDX-License-Identifier: Apache-2.0

package buildplan

import "fmt"

// Validate checks a Plan for structural issues. Returns a list of
// human-readable issue descriptions; an empty list means the plan is
// valid.
//
// Structural checks include:
//   - The plan must have a name and at least one step
//   - Each step must have a non-empty name
//   - Each step must set exactly one of artifact, command, or relocate
//   - Artifact steps must have a path, and a parsed plan must not
//     carry both inline content and a render function
//   - Command steps must name a tool
//   - Relocate steps must have both source and destination
//   - Product paths must be non-empty
func Validate(plan *Plan) []string {
	var issues []string

	if plan.Name == "" {
		issues = append(issues, "plan has no name")
	}
	if len(plan.Steps) == 0 {
		issues = append(issues, "plan has no steps (at least one step is required)")
	}

	for index, step := range plan.Steps {
		prefix := fmt.Sprintf("steps[%d]", index)

		if step.Name == "" {
			issues = append(issues, fmt.Sprintf("%s: name is required", prefix))
		} else {
			prefix = fmt.Sprintf("steps[%d] %q", index, step.Name)
		}

		kinds := 0
		if step.Artifact != nil {
			kinds++
		}
		if step.Command != nil {
			kinds++
		}
		if step.Relocate != nil {
			kinds++
		}
		switch {
		case kinds == 0:
			issues = append(issues, fmt.Sprintf("%s: must set one of artifact, command, or relocate", prefix))
		case kinds > 1:
			issues = append(issues, fmt.Sprintf("%s: artifact, command, and relocate are mutually exclusive (set exactly one)", prefix))
		}

		if step.Artifact != nil {
			if step.Artifact.Path == "" {
				issues = append(issues, fmt.Sprintf("%s: artifact.path is required", prefix))
			}
			if step.Artifact.Content != "" && step.Artifact.Render != nil {
				issues = append(issues, fmt.Sprintf("%s: artifact content and render function are mutually exclusive", prefix))
			}
		}

		if step.Command != nil && step.Command.Tool == "" {
			issues = append(issues, fmt.Sprintf("%s: command.tool is required", prefix))
		}

		if step.Relocate != nil {
			if step.Relocate.Source == "" {
				issues = append(issues, fmt.Sprintf("%s: relocate.source is required", prefix))
			}
			if step.Relocate.Destination == "" {
				issues = append(issues, fmt.Sprintf("%s: relocate.destination is required", prefix))
			}
		}
	}

	for index, product := range plan.Products {
		if product == "" {
			issues = append(issues, fmt.Sprintf("products[%d]: path is empty", index))
		}
	}

	return issues
}
