package cli

import (
	"fmt"
	"io"
	"strings"
)

// CommandInfo describes a subcommand for help output.
type CommandInfo struct {
	Name        string
	Usage       string
	Description string
	Examples    []string
	Flags       []FlagInfo
}

// FlagInfo describes one flag of a subcommand.
type FlagInfo struct {
	Name    string
	Short   string
	Usage   string
	Default string
}

// PrintUsage writes the top-level help of tool.
func PrintUsage(w io.Writer, tool string, commands []CommandInfo) {
	fmt.Fprintf(w, "%s - Aurora compiler front-end\n\n", tool)
	fmt.Fprintf(w, "USAGE:\n    %s [GLOBAL OPTIONS] <command> [ARGS]\n\n", tool)

	if len(commands) > 0 {
		fmt.Fprintln(w, "COMMANDS:")
		for _, c := range commands {
			fmt.Fprintf(w, "    %-12s %s\n", c.Name, c.Description)
		}
		fmt.Fprintln(w)
	}

	fmt.Fprint(w, strings.Join([]string{
		"GLOBAL OPTIONS:",
		"    --config FILE  Project file (default aurora.json)",
		"    --stdlib DIR   Read the standard library from DIR",
		"    --color MODE   auto, always or never",
		"    -v             Verbose output",
		"    --debug        Debug output",
		"",
		"",
	}, "\n"))
	fmt.Fprintf(w, "Use '%s help <command>' for more information about a command.\n", tool)
}

// PrintCommandUsage writes the help of one subcommand.
func PrintCommandUsage(w io.Writer, tool string, c CommandInfo) {
	fmt.Fprintf(w, "%s %s - %s\n\n", tool, c.Name, c.Description)
	fmt.Fprintf(w, "USAGE:\n    %s\n\n", c.Usage)

	if len(c.Flags) > 0 {
		fmt.Fprintln(w, "OPTIONS:")
		for _, f := range c.Flags {
			name := "    -" + f.Name
			if len(f.Name) > 1 {
				name = "    --" + f.Name
			}
			if f.Short != "" {
				name += ", -" + f.Short
			}
			fmt.Fprintf(w, "%-20s %s\n", name, f.Usage)
			if f.Default != "" {
				fmt.Fprintf(w, "%-20s Default: %s\n", "", f.Default)
			}
		}
		fmt.Fprintln(w)
	}

	if len(c.Examples) > 0 {
		fmt.Fprintln(w, "EXAMPLES:")
		for _, ex := range c.Examples {
			fmt.Fprintf(w, "    %s\n", ex)
		}
		fmt.Fprintln(w)
	}
}
