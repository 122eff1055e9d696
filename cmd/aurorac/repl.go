package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"github.com/aurora-lang/aurora/internal/cli"
	aerrors "github.com/aurora-lang/aurora/internal/errors"
	"github.com/aurora-lang/aurora/internal/parser"
	"github.com/aurora-lang/aurora/internal/position"
)

const (
	replPrompt     = "aurora> "
	replContinue   = "   ...> "
	replHistory    = ".aurora_history"
	replSourceName = "<repl>"
	replFunc       = "__repl"
)

// declarationKeywords start lines that extend the session program instead
// of being evaluated.
var declarationKeywords = []string{"fn", "type", "import", "export", "extern"}

// replSession accumulates declarations and type-checks input against them.
type replSession struct {
	s       *session
	imports []string
	decls   []string
	last    string
}

func isDeclaration(input string) (bool, bool) {
	fields := strings.Fields(input)
	if len(fields) == 0 {
		return false, false
	}
	for _, kw := range declarationKeywords {
		if fields[0] == kw {
			return true, kw == "import"
		}
	}
	return false, false
}

func (r *replSession) source(extraImport, extraDecl string) string {
	var sb strings.Builder
	for _, imp := range r.imports {
		sb.WriteString(imp + "\n")
	}
	if extraImport != "" {
		sb.WriteString(extraImport + "\n")
	}
	for _, d := range r.decls {
		sb.WriteString(d + "\n")
	}
	if extraDecl != "" {
		sb.WriteString(extraDecl + "\n")
	}
	return sb.String()
}

// eval type-checks one input. Declarations are kept when the session still
// compiles with them; other input is wrapped in a function whose body type
// is reported.
func (r *replSession) eval(ctx context.Context, input string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", nil
	}

	if decl, isImport := isDeclaration(input); decl {
		var src string
		if isImport {
			src = r.source(input, "")
		} else {
			src = r.source("", input)
		}
		r.last = src
		if _, err := r.s.compileSource(ctx, replSourceName, ".", src); err != nil {
			return "", err
		}
		if isImport {
			r.imports = append(r.imports, input)
		} else {
			r.decls = append(r.decls, input)
		}
		return "ok", nil
	}

	src := r.source("", fmt.Sprintf("fn %s() -> auto = %s", replFunc, input))
	r.last = src
	u, err := r.s.compileSource(ctx, replSourceName, ".", src)
	if err != nil {
		return "", err
	}

	fn := u.module.Func(replFunc)
	if fn == nil || fn.Body == nil {
		return "void", nil
	}
	return fn.Body.GetType().String(), nil
}

// incomplete reports whether input stops in the middle of a construct and
// more lines should be read before evaluating it.
func incomplete(input string) bool {
	src := input
	if decl, _ := isDeclaration(input); !decl {
		src = fmt.Sprintf("fn %s() -> auto = %s", replFunc, input)
	}
	_, err := parser.ParseSource(replSourceName, src)

	var syn *aerrors.SyntaxError
	return errors.As(err, &syn) && syn.Code == aerrors.CodeUnexpectedEOF
}

func (s *session) cmdRepl(ctx context.Context, args []string) int {
	fs := s.subcommandFlags("repl")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	fmt.Fprintf(s.stdout, "Aurora %s type checker. Type :help for commands.\n", cli.Version)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	histPath := replHistory
	if home, err := os.UserHomeDir(); err == nil {
		histPath = filepath.Join(home, replHistory)
	}
	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	repl := &replSession{s: s}
	for ctx.Err() == nil {
		input, ok := readInput(ln)
		if !ok {
			fmt.Fprintln(s.stdout)
			break
		}

		trimmed := strings.TrimSpace(input)
		if strings.HasPrefix(trimmed, ":") {
			if quit := repl.command(s.stdout, trimmed); quit {
				break
			}
			continue
		}
		if trimmed == "" {
			continue
		}

		ln.AppendHistory(strings.ReplaceAll(input, "\n", " "))

		result, err := repl.eval(ctx, input)
		if err != nil {
			sources := position.NewSourceMap()
			sources.AddFile(replSourceName, repl.last)
			s.report(err, sources)
			continue
		}
		if result != "" {
			fmt.Fprintln(s.stdout, result)
		}
	}

	return 0
}

// command runs a :command and reports whether the REPL should exit.
func (r *replSession) command(w io.Writer, cmd string) bool {
	switch strings.ToLower(cmd) {
	case ":quit", ":q", ":exit":
		return true
	case ":reset":
		r.imports, r.decls = nil, nil
		fmt.Fprintln(w, "session cleared")
	case ":decls":
		fmt.Fprint(w, r.source("", ""))
	case ":help", ":h":
		fmt.Fprintln(w, "  <expr>        print the type of an expression")
		fmt.Fprintln(w, "  fn/type/...   add a declaration to the session")
		fmt.Fprintln(w, "  :decls        show the session declarations")
		fmt.Fprintln(w, "  :reset        forget all declarations")
		fmt.Fprintln(w, "  :quit         exit")
	default:
		fmt.Fprintln(w, "unknown command. Type :help for commands.")
	}
	return false
}

// readInput prompts until the collected lines form a complete input.
func readInput(ln *liner.State) (string, bool) {
	var b strings.Builder

	for {
		prompt := replPrompt
		if b.Len() > 0 {
			prompt = replContinue
		}

		line, err := ln.Prompt(prompt)
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if errors.Is(err, liner.ErrPromptAborted) {
			return "", true
		}
		if err != nil {
			return "", false
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		if strings.HasPrefix(strings.TrimSpace(src), ":") || !incomplete(src) {
			return src, true
		}
	}
}
