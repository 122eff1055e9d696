// Package main provides aurorac, the command line driver of the Aurora
// front-end. It tokenizes, parses, type-checks and lowers Aurora sources and
// prints the results or the diagnostics.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/aurora-lang/aurora/internal/cli"
	"github.com/aurora-lang/aurora/internal/config"
)

const toolName = "aurorac"

var commands = []cli.CommandInfo{
	{Name: "tokens", Usage: "aurorac tokens FILE", Description: "Print the token stream of a file"},
	{Name: "parse", Usage: "aurorac parse FILE", Description: "Print the syntax tree of a file"},
	{
		Name:        "check",
		Usage:       "aurorac check [-j N] FILE...",
		Description: "Type-check files and report diagnostics",
		Flags:       []cli.FlagInfo{{Name: "j", Usage: "number of files checked concurrently", Default: "number of CPUs"}},
		Examples:    []string{"aurorac check main.aur", "aurorac -v check -j 4 src/*.aur"},
	},
	{
		Name:        "ir",
		Usage:       "aurorac ir [--json] FILE",
		Description: "Print the typed IR of a file",
		Flags:       []cli.FlagInfo{{Name: "json", Usage: "print a JSON summary of the functions"}},
	},
	{Name: "watch", Usage: "aurorac watch FILE...", Description: "Re-check files whenever they change"},
	{Name: "repl", Usage: "aurorac repl", Description: "Type-check declarations and expressions interactively"},
	{Name: "init", Usage: "aurorac init [DIR]", Description: "Write a default aurora.json"},
	{
		Name:        "version",
		Usage:       "aurorac version [--json]",
		Description: "Show version information",
		Flags:       []cli.FlagInfo{{Name: "json", Usage: "output in JSON format"}},
	},
}

type globalOptions struct {
	configPath string
	stdlibDir  string
	color      string
	verbose    bool
	debug      bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes one aurorac invocation and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	var opts globalOptions

	fs := flag.NewFlagSet(toolName, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.configPath, "config", config.DefaultFile, "project configuration file")
	fs.StringVar(&opts.stdlibDir, "stdlib", "", "read the standard library from this directory")
	fs.StringVar(&opts.color, "color", "", "color diagnostics: auto, always or never")
	fs.BoolVar(&opts.verbose, "v", false, "verbose output")
	fs.BoolVar(&opts.debug, "debug", false, "debug output")
	fs.Usage = func() { cli.PrintUsage(stderr, toolName, commands) }

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	rest := fs.Args()
	if len(rest) == 0 {
		fs.Usage()
		return 2
	}

	sub, subArgs := rest[0], rest[1:]

	switch sub {
	case "help", "-h", "--help":
		if len(subArgs) > 0 {
			if info, ok := lookupCommand(subArgs[0]); ok {
				cli.PrintCommandUsage(stdout, toolName, info)
				return 0
			}
		}
		cli.PrintUsage(stdout, toolName, commands)
		return 0
	case "init":
		return cmdInit(subArgs, stdout, stderr)
	}

	s, err := newSession(opts, stdout, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}

	switch sub {
	case "version":
		return s.cmdVersion(subArgs)
	case "tokens":
		return s.cmdTokens(subArgs)
	case "parse":
		return s.cmdParse(subArgs)
	case "check":
		return s.cmdCheck(ctx, subArgs)
	case "ir":
		return s.cmdIR(ctx, subArgs)
	case "watch":
		return s.cmdWatch(ctx, subArgs)
	case "repl":
		return s.cmdRepl(ctx, subArgs)
	default:
		fmt.Fprintf(stderr, "unknown subcommand: %s\n", sub)
		cli.PrintUsage(stderr, toolName, commands)
		return 2
	}
}

func lookupCommand(name string) (cli.CommandInfo, bool) {
	for _, c := range commands {
		if c.Name == name {
			return c, true
		}
	}
	return cli.CommandInfo{}, false
}

// subcommandFlags creates the flag set of a subcommand with the shared
// help output.
func (s *session) subcommandFlags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(s.stderr)
	fs.Usage = func() {
		if info, ok := lookupCommand(name); ok {
			cli.PrintCommandUsage(s.stderr, toolName, info)
		}
	}
	return fs
}

func cmdInit(args []string, stdout, stderr io.Writer) int {
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}

	path := filepath.Join(dir, config.DefaultFile)
	if _, err := config.Init(path); err != nil {
		fmt.Fprintf(stderr, "Error: failed to initialize config: %v\n", err)
		return 1
	}

	fmt.Fprintf(stdout, "Configuration initialized: %s\n", path)
	return 0
}
