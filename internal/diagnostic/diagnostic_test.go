package diagnostic

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	aerrors "github.com/aurora-lang/aurora/internal/errors"
	"github.com/aurora-lang/aurora/internal/position"
)

func span(file string, line, col, offset, length int) position.Span {
	start := position.Position{Filename: file, Line: line, Column: col, Offset: offset}
	end := start
	end.Column += length
	end.Offset += length
	return position.Span{Start: start, End: end}
}

func TestRenderCompileError(t *testing.T) {
	sources := position.NewSourceMap()
	sources.AddFile("main.aur", "fn f() -> i32 = 1\nfn g() -> i32 = h(1)\n")

	err := aerrors.NewCompileError(aerrors.CodeUnknownIdentifier, span("main.aur", 2, 17, 34, 1), "Unknown function '%s'", "h")
	got := Render(fmt.Errorf("check: %w", err), sources)

	expected := strings.Join([]string{
		"main.aur:2:17: error[E0100]: Unknown function 'h'",
		"  |",
		"2 | fn g() -> i32 = h(1)",
		"  |                 ^",
		"",
	}, "\n")
	if got != expected {
		t.Fatalf("render mismatch.\nexpected=%q\ngot=%q", expected, got)
	}
}

func TestRenderWrappedCompileError(t *testing.T) {
	sources := position.NewSourceMap()
	sources.AddFile("main.aur", "import Geo\n")

	cause := aerrors.NewSyntaxError(aerrors.CodeUnexpectedToken, position.Position{Filename: "geo.aur", Line: 1, Column: 4}, "Unexpected token: LPAREN")
	err := aerrors.WrapCompileError(cause, aerrors.CodeUnknownImport, span("main.aur", 1, 1, 0, 10), "Cannot load module '%s'", "Geo")

	expected := strings.Join([]string{
		"main.aur:1:1: error[E0104]: Cannot load module 'Geo'",
		"  |",
		"1 | import Geo",
		"  | ^^^^^^^^^^",
		"  = note: geo.aur:1:4: Unexpected token: LPAREN",
		"",
	}, "\n")
	if got := Render(err, sources); got != expected {
		t.Fatalf("render mismatch.\nexpected=%q\ngot=%q", expected, got)
	}
}

func TestRenderSyntaxErrorWithoutSource(t *testing.T) {
	pos := position.Position{Filename: "x.aur", Line: 3, Column: 5, Offset: 20}
	err := aerrors.NewSyntaxError(aerrors.CodeUnexpectedEOF, pos, "Unexpected end of input")

	got := Render(err, nil)
	if got != "x.aur:3:5: error[E0002]: Unexpected end of input\n" {
		t.Fatalf("unexpected render, got=%q", got)
	}
}

func TestRenderPlainError(t *testing.T) {
	got := Render(errors.New("open a.aur: no such file"), nil)
	if got != "error: open a.aur: no such file\n" {
		t.Fatalf("unexpected render, got=%q", got)
	}
}

func TestCaretLine(t *testing.T) {
	tests := []struct {
		line     string
		column   int
		length   int
		expected string
	}{
		{"let x = 1", 5, 1, "    ^"},
		{"let x = 1", 1, 3, "^^^"},
		{"\tfoo()", 2, 3, "\t^^^"},
		{"s = \"日本\" + y", 14, 1, "           ^"},
		{"名前", 4, 3, "  ^^"},
		{"abc", 10, 1, "   ^"},
		{"", 1, 1, "^"},
	}

	for _, tt := range tests {
		got := caretLine(tt.line, tt.column, tt.length)
		if got != tt.expected {
			t.Fatalf("caretLine(%q, %d, %d) expected=%q, got=%q", tt.line, tt.column, tt.length, tt.expected, got)
		}
	}
}

func TestRenderColor(t *testing.T) {
	sources := position.NewSourceMap()
	sources.AddFile("a.aur", "x")

	d := NewDiagnostic().Code(aerrors.CodeTypeMismatch).Message("bad").Span(span("a.aur", 1, 1, 0, 1)).Build()

	var buf bytes.Buffer
	NewRenderer(sources, true).Write(&buf, d)
	if !strings.Contains(buf.String(), ansiRed) || !strings.HasSuffix(strings.TrimSpace(buf.String()), ansiReset) {
		t.Fatalf("expected ANSI colors, got=%q", buf.String())
	}
	if d.Category != aerrors.CategoryType {
		t.Fatalf("category expected=%q, got=%q", aerrors.CategoryType, d.Category)
	}
}

func TestRenderNotes(t *testing.T) {
	d := NewDiagnostic().Warning().Message("shadowed").Note("first declared here").Build()

	var buf bytes.Buffer
	NewRenderer(nil, false).Write(&buf, d)
	expected := "warning: shadowed\n  = note: first declared here\n"
	if buf.String() != expected {
		t.Fatalf("expected=%q, got=%q", expected, buf.String())
	}
}

func TestEngineSortsAndSummarizes(t *testing.T) {
	engine := NewDiagnosticEngine(NewRenderer(nil, false))

	var wg sync.WaitGroup
	for _, file := range []string{"b.aur", "a.aur", "c.aur"} {
		wg.Add(1)
		go func(file string) {
			defer wg.Done()
			engine.AddError(aerrors.NewCompileError(aerrors.CodeArity, span(file, 1, 1, 0, 1), "in %s", file))
		}(file)
	}
	wg.Wait()
	engine.AddError(nil)

	if got := engine.ErrorCount(); got != 3 {
		t.Fatalf("error count expected=%d, got=%d", 3, got)
	}

	var buf bytes.Buffer
	if errs := engine.Flush(&buf); errs != 3 {
		t.Fatalf("flushed error count expected=%d, got=%d", 3, errs)
	}
	expected := "a.aur:1:1: error[E0201]: in a.aur\n" +
		"b.aur:1:1: error[E0201]: in b.aur\n" +
		"c.aur:1:1: error[E0201]: in c.aur\n" +
		"found 3 error(s)\n"
	if buf.String() != expected {
		t.Fatalf("flush mismatch.\nexpected=%q\ngot=%q", expected, buf.String())
	}
	if engine.HasErrors() {
		t.Fatalf("flush should clear the engine")
	}
}

func TestParseColorMode(t *testing.T) {
	for _, s := range []string{"", "auto", "always", "never"} {
		if _, err := ParseColorMode(s); err != nil {
			t.Fatalf("ParseColorMode(%q) failed: %v", s, err)
		}
	}
	if _, err := ParseColorMode("sometimes"); err == nil {
		t.Fatalf("expected an error for an unknown mode")
	}
	if !ColorAlways.Enabled(nil) || ColorNever.Enabled(nil) || ColorAuto.Enabled(nil) {
		t.Fatalf("color mode resolution is wrong")
	}
}
