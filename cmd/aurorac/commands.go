package main

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/aurora-lang/aurora/internal/ast"
	"github.com/aurora-lang/aurora/internal/cli"
	"github.com/aurora-lang/aurora/internal/diagnostic"
	"github.com/aurora-lang/aurora/internal/hir"
	"github.com/aurora-lang/aurora/internal/lexer"
	"github.com/aurora-lang/aurora/internal/parser"
	"github.com/aurora-lang/aurora/internal/position"
)

func (s *session) cmdVersion(args []string) int {
	fs := s.subcommandFlags("version")
	jsonOutput := fs.Bool("json", false, "output in JSON format")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	info := cli.GetVersionInfo()
	if r, err := s.resolver("."); err == nil {
		info.Stdlib = r.Version()
	}

	if err := cli.PrintVersion(s.stdout, toolName, info, *jsonOutput); err != nil {
		fmt.Fprintf(s.stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func (s *session) cmdTokens(args []string) int {
	path, ok := s.singleFile("tokens", args)
	if !ok {
		return 2
	}

	src, err := s.readSource(path, nil)
	if err != nil {
		return s.report(err, nil)
	}

	for _, tok := range lexer.TokenizeFile(path, src) {
		fmt.Fprintf(s.stdout, "%d:%d\t%s\n", tok.Pos.Line, tok.Pos.Column, tok)
	}
	return 0
}

func (s *session) cmdParse(args []string) int {
	path, ok := s.singleFile("parse", args)
	if !ok {
		return 2
	}

	sources := position.NewSourceMap()
	src, err := s.readSource(path, sources)
	if err != nil {
		return s.report(err, sources)
	}

	prog, err := parser.ParseSource(path, src)
	if err != nil {
		return s.report(err, sources)
	}

	fmt.Fprint(s.stdout, ast.Dump(prog))
	return 0
}

func (s *session) cmdCheck(ctx context.Context, args []string) int {
	fs := s.subcommandFlags("check")
	jobs := fs.Int("j", runtime.NumCPU(), "number of files checked concurrently")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	files := fs.Args()
	if len(files) == 0 {
		fs.Usage()
		return 2
	}

	sources := position.NewSourceMap()
	engine := diagnostic.NewDiagnosticEngine(diagnostic.NewRenderer(sources, s.color))

	checked := s.checkFiles(ctx, files, *jobs, sources, engine)

	if errs := engine.Flush(s.stderr); errs > 0 {
		return 1
	}

	s.logger.Info("checked %d file(s)", checked)
	return 0
}

// checkFiles compiles every file independently, at most jobs at a time, and
// records failures in engine. Each file gets its own Lowerer and registries;
// imported modules are loaded once through the session resolver.
func (s *session) checkFiles(ctx context.Context, files []string, jobs int, sources *position.SourceMap, engine *diagnostic.DiagnosticEngine) int {
	if jobs < 1 {
		jobs = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)

	results := make([]bool, len(files))
	for i, file := range files {
		i, file := i, file
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if _, err := s.compile(gctx, file, sources); err != nil {
				engine.AddError(err)
				return nil
			}
			results[i] = true
			s.logger.Debug("%s: ok", file)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		engine.AddError(err)
	}

	n := 0
	for _, ok := range results {
		if ok {
			n++
		}
	}
	return n
}

// functionSummary is one entry of `aurorac ir --json`.
type functionSummary struct {
	Name      string   `json:"name"`
	Signature string   `json:"signature"`
	Effects   []string `json:"effects"`
	Exported  bool     `json:"exported,omitempty"`
	External  bool     `json:"external,omitempty"`
}

type moduleSummary struct {
	Module    string            `json:"module"`
	Imports   []string          `json:"imports,omitempty"`
	Types     []string          `json:"types,omitempty"`
	Functions []functionSummary `json:"functions"`
}

func (s *session) cmdIR(ctx context.Context, args []string) int {
	fs := s.subcommandFlags("ir")
	jsonOutput := fs.Bool("json", false, "print a JSON summary of the functions")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	path, ok := s.singleFile("ir", fs.Args())
	if !ok {
		return 2
	}

	sources := position.NewSourceMap()
	u, err := s.compile(ctx, path, sources)
	if err != nil {
		return s.report(err, sources)
	}

	if !*jsonOutput {
		fmt.Fprint(s.stdout, hir.Print(u.module))
		return 0
	}

	data, err := json.MarshalIndent(summarize(u.module), "", "  ")
	if err != nil {
		fmt.Fprintf(s.stderr, "Error: failed to marshal IR summary: %v\n", err)
		return 1
	}
	fmt.Fprintln(s.stdout, string(data))
	return 0
}

func summarize(m *hir.Module) *moduleSummary {
	out := &moduleSummary{Module: m.Name, Functions: []functionSummary{}}

	for _, imp := range m.Imports {
		out.Imports = append(out.Imports, imp.Path)
	}

	for _, item := range m.Items {
		switch item := item.(type) {
		case *hir.TypeDecl:
			out.Types = append(out.Types, item.Name)
		case *hir.Func:
			out.Functions = append(out.Functions, functionSummary{
				Name:      item.Name,
				Signature: signature(item),
				Effects:   effectNames(item.Effects),
				Exported:  item.Exported,
				External:  item.External,
			})
		}
	}

	return out
}

func signature(f *hir.Func) string {
	var sb strings.Builder
	sb.WriteString("fn")
	if len(f.TypeParams) > 0 {
		names := make([]string, len(f.TypeParams))
		for i, tp := range f.TypeParams {
			names[i] = tp.Name
			if tp.Constraint != "" {
				names[i] += ": " + tp.Constraint
			}
		}
		sb.WriteString("<" + strings.Join(names, ", ") + ">")
	}

	params := make([]string, len(f.Params))
	for i, p := range f.Params {
		params[i] = p.Type.String()
	}
	fmt.Fprintf(&sb, "(%s) -> %s", strings.Join(params, ", "), f.RetType)

	return sb.String()
}

func effectNames(effects []hir.Effect) []string {
	out := make([]string, len(effects))
	for i, e := range effects {
		out[i] = string(e)
	}
	return out
}
