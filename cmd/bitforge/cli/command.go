// Copyright 2026 The Bitforge Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli is the small command framework behind the bitforge
// binary: a tree of commands dispatched by name, pflag flag parsing
// with typo suggestions, and tabwriter help output.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/pflag"
)

// Command is one node in the command tree: a group that dispatches to
// subcommands, or a leaf with a Run function.
type Command struct {
	// Name is the command name as typed, e.g. "toolchain", "resolve".
	Name string

	// Summary is the one-line description in the parent's help.
	Summary string

	// Description is the long-form help text. Falls back to Summary.
	Description string

	// Usage overrides the synthesized usage line, e.g.
	// "bitforge build --plan <file.jsonc> [flags]".
	Usage string

	// Examples are appended to the help output.
	Examples []Example

	// Flags builds this command's flag set. Nil means no flags. The
	// function is called fresh for each parse so a failed parse never
	// leaks state into help output.
	Flags func() *pflag.FlagSet

	// Subcommands makes this a group; the first positional argument
	// selects the child.
	Subcommands []*Command

	// Run executes a leaf with the post-flag-parse arguments.
	Run func(args []string) error

	// parent links the dispatch path for full command names in
	// errors and help.
	parent *Command
}

// Example is one worked command line in help output.
type Example struct {
	Description string
	Command     string
}

// Execute dispatches args through the tree and runs the selected
// command. Errors already carry a "Run '... --help'" pointer where
// that helps; the caller just prints them.
func (c *Command) Execute(args []string) error {
	if len(args) > 0 && isHelpFlag(args[0]) {
		c.PrintHelp(os.Stderr)
		return nil
	}

	if len(c.Subcommands) > 0 {
		return c.dispatch(args)
	}
	return c.runLeaf(args)
}

// dispatch routes a group command to the child named by the first
// argument.
func (c *Command) dispatch(args []string) error {
	if len(args) == 0 {
		c.PrintHelp(os.Stderr)
		return fmt.Errorf("subcommand required")
	}
	if strings.HasPrefix(args[0], "-") {
		// Groups take no flags of their own; anything dash-prefixed
		// here is a stray flag ahead of the subcommand.
		c.PrintHelp(os.Stderr)
		return fmt.Errorf("subcommand required (got flag %q)", args[0])
	}

	name := args[0]
	for _, sub := range c.Subcommands {
		if sub.Name == name {
			sub.parent = c
			return sub.Execute(args[1:])
		}
	}

	if suggestion := suggestCommand(name, c.Subcommands); suggestion != "" {
		return fmt.Errorf("unknown command %q (did you mean %q?)\n\nRun '%s --help' for usage.",
			name, suggestion, c.fullName())
	}
	return fmt.Errorf("unknown command %q\n\nRun '%s --help' for usage.", name, c.fullName())
}

// runLeaf parses the leaf's flags and invokes Run.
func (c *Command) runLeaf(args []string) error {
	if c.Flags != nil {
		flagSet := c.Flags()
		// The framework formats its own errors; silence pflag's.
		flagSet.SetOutput(io.Discard)

		if err := flagSet.Parse(args); err != nil {
			// pflag reserves --help when no help flag is defined.
			if errors.Is(err, pflag.ErrHelp) {
				c.PrintHelp(os.Stderr)
				return nil
			}
			return c.flagError(err)
		}
		args = flagSet.Args()
	}

	if c.Run == nil {
		c.PrintHelp(os.Stderr)
		return fmt.Errorf("no action defined for %q", c.fullName())
	}
	return c.Run(args)
}

// flagError decorates a flag parse failure with a typo suggestion
// (pflag names the offender in its message) and a help pointer.
func (c *Command) flagError(err error) error {
	message := err.Error()
	if name, found := strings.CutPrefix(message, "unknown flag: "); found {
		if suggestion := suggestFlag(strings.TrimLeft(name, "-"), c.Flags()); suggestion != "" {
			return fmt.Errorf("%s (did you mean %s?)\n\nRun '%s --help' for usage.",
				message, suggestion, c.fullName())
		}
	}
	return fmt.Errorf("%s\n\nRun '%s --help' for usage.", message, c.fullName())
}

// PrintHelp writes the command's help text to w.
func (c *Command) PrintHelp(w io.Writer) {
	if c.Description != "" {
		fmt.Fprintf(w, "%s\n\n", c.Description)
	} else if c.Summary != "" {
		fmt.Fprintf(w, "%s\n\n", c.Summary)
	}

	fmt.Fprintf(w, "Usage:\n  %s\n", c.usageLine())

	if len(c.Subcommands) > 0 {
		fmt.Fprintf(w, "\nCommands:\n")
		table := tabwriter.NewWriter(w, 2, 0, 3, ' ', 0)
		for _, sub := range c.Subcommands {
			fmt.Fprintf(table, "  %s\t%s\n", sub.Name, sub.Summary)
		}
		table.Flush()
	}

	if c.Flags != nil {
		var flagHelp strings.Builder
		flagSet := c.Flags()
		flagSet.SetOutput(&flagHelp)
		flagSet.PrintDefaults()
		if flagHelp.Len() > 0 {
			fmt.Fprintf(w, "\nFlags:\n%s", flagHelp.String())
		}
	}

	if len(c.Examples) > 0 {
		fmt.Fprintf(w, "\nExamples:\n")
		for _, example := range c.Examples {
			if example.Description != "" {
				fmt.Fprintf(w, "  # %s\n", example.Description)
			}
			fmt.Fprintf(w, "  %s\n", example.Command)
		}
	}

	if len(c.Subcommands) > 0 {
		fmt.Fprintf(w, "\nRun '%s <command> --help' for more information on a command.\n", c.fullName())
	}
}

// usageLine returns the explicit Usage or synthesizes one.
func (c *Command) usageLine() string {
	if c.Usage != "" {
		return c.Usage
	}
	if len(c.Subcommands) > 0 {
		return c.fullName() + " <command> [flags]"
	}
	return c.fullName() + " [flags]"
}

// fullName walks the dispatch path, e.g. "bitforge toolchain resolve".
func (c *Command) fullName() string {
	if c.parent == nil {
		return c.Name
	}
	return c.parent.fullName() + " " + c.Name
}

func isHelpFlag(arg string) bool {
	return arg == "-h" || arg == "--help" || arg == "help"
}
