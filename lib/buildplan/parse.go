// Copyright 2026 The Bitforge Authors
// SPDX-License-Identifier: Apache-2.0

package buildplan

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"
)

// Parse strips JSONC comments and trailing commas from data, then
// unmarshals the result into a Plan. The input format is plain JSON
// extended with // line comments, /* block comments */, and trailing
// commas.
func Parse(data []byte) (*Plan, error) {
	stripped := jsonc.ToJSON(data)

	var plan Plan
	if err := json.Unmarshal(stripped, &plan); err != nil {
		return nil, fmt.Errorf("parsing build plan: %w", err)
	}

	return &plan, nil
}

// ReadFile reads a JSONC plan file from disk and parses it. When the
// plan declares no name, the file's base name (without extension) is
// used.
func ReadFile(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	plan, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if plan.Name == "" {
		plan.Name = NameFromPath(path)
	}

	return plan, nil
}

// NameFromPath extracts a target name from a plan file path by
// stripping the directory prefix and the file extension. For example,
// "boards/tangnano/blinky.jsonc" returns "blinky".
func NameFromPath(path string) string {
	base := filepath.Base(path)
	extension := filepath.Ext(base)
	return strings.TrimSuffix(base, extension)
}
