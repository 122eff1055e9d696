package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/aurora-lang/aurora/internal/ast"
	"github.com/aurora-lang/aurora/internal/cli"
	"github.com/aurora-lang/aurora/internal/config"
	"github.com/aurora-lang/aurora/internal/diagnostic"
	"github.com/aurora-lang/aurora/internal/hir"
	"github.com/aurora-lang/aurora/internal/lower"
	"github.com/aurora-lang/aurora/internal/modules"
	"github.com/aurora-lang/aurora/internal/parser"
	"github.com/aurora-lang/aurora/internal/position"
	"github.com/aurora-lang/aurora/internal/resolver"
)

// session carries the settings shared by every subcommand of one run.
type session struct {
	config *config.ProjectConfig
	logger *cli.Logger
	stdout io.Writer
	stderr io.Writer
	color  bool

	stdlibOnce sync.Once
	stdlib     *modules.StdlibResolver
	stdlibErr  error
}

func newSession(opts globalOptions, stdout, stderr io.Writer) (*session, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}

	if opts.stdlibDir != "" {
		cfg.StdlibDir = opts.stdlibDir
	}
	if opts.color != "" {
		cfg.Color = opts.color
	}
	cfg.Verbose = cfg.Verbose || opts.verbose
	cfg.Debug = cfg.Debug || opts.debug

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", opts.configPath, err)
	}

	var out *os.File
	if f, ok := stderr.(*os.File); ok {
		out = f
	}

	return &session{
		config: cfg,
		logger: cli.NewLoggerTo(stderr, cfg.Verbose, cfg.Debug),
		stdout: stdout,
		stderr: stderr,
		color:  cfg.ColorMode().Enabled(out),
	}, nil
}

// stdlibResolver returns the session's module resolver. It is built once
// so every file compiled in the session shares its module cache.
func (s *session) stdlibResolver() (*modules.StdlibResolver, error) {
	s.stdlibOnce.Do(func() {
		var opts []modules.Option
		if s.config.StdlibDir != "" {
			opts = append(opts, modules.WithDir(s.config.StdlibDir))
		}
		if s.config.StdlibVersion != "" {
			opts = append(opts, modules.WithConstraint(s.config.StdlibVersion))
		}

		s.stdlib, s.stdlibErr = modules.NewStdlibResolver(opts...)
		if s.stdlibErr == nil && !s.stdlib.Compatible() {
			s.logger.Warn("stdlib %s does not satisfy %q, standard modules are unavailable", s.stdlib.Version(), s.config.StdlibVersion)
		}
	})
	return s.stdlib, s.stdlibErr
}

// resolver returns a view of the session resolver whose relative imports
// are resolved against baseDir.
func (s *session) resolver(baseDir string) (*modules.StdlibResolver, error) {
	r, err := s.stdlibResolver()
	if err != nil {
		return nil, err
	}
	return r.ForDir(baseDir), nil
}

// unit is one compiled source file.
type unit struct {
	path    string
	program *ast.Program
	module  *hir.Module
	types   *resolver.TypeRegistry
	funcs   *resolver.FunctionRegistry
}

func (s *session) readSource(path string, sources *position.SourceMap) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	src := string(data)
	if sources != nil {
		sources.AddFile(path, src)
	}
	return src, nil
}

// compile parses and lowers path. The source is recorded in sources so that
// diagnostics can quote it.
func (s *session) compile(ctx context.Context, path string, sources *position.SourceMap) (*unit, error) {
	src, err := s.readSource(path, sources)
	if err != nil {
		return nil, err
	}
	return s.compileSource(ctx, path, filepath.Dir(path), src)
}

func (s *session) compileSource(ctx context.Context, name, baseDir, src string) (*unit, error) {
	prog, err := parser.ParseSource(name, src)
	if err != nil {
		return nil, err
	}

	r, err := s.resolver(baseDir)
	if err != nil {
		return nil, err
	}

	l := lower.New(
		lower.WithResolver(r),
		lower.WithLogger(s.logger),
		lower.WithFilename(name),
	)

	mod, err := l.LowerContext(ctx, prog)
	if err != nil {
		return nil, err
	}

	return &unit{
		path:    name,
		program: prog,
		module:  mod,
		types:   l.TypeRegistry(),
		funcs:   l.FunctionRegistry(),
	}, nil
}

// report prints err as a diagnostic and returns the exit code for it.
func (s *session) report(err error, sources *position.SourceMap) int {
	engine := diagnostic.NewDiagnosticEngine(diagnostic.NewRenderer(sources, s.color))
	engine.AddError(err)
	engine.Flush(s.stderr)
	return 1
}

func (s *session) singleFile(name string, args []string) (string, bool) {
	if len(args) != 1 {
		if info, ok := lookupCommand(name); ok {
			fmt.Fprintf(s.stderr, "usage: %s\n", info.Usage)
		}
		return "", false
	}
	return args[0], true
}
