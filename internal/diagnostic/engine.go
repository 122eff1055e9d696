package diagnostic

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
)

// DiagnosticEngine collects diagnostics from concurrent compilations and
// prints them in source order. It is safe for concurrent use.
type DiagnosticEngine struct {
	mu          sync.Mutex
	diagnostics []*Diagnostic
	renderer    *Renderer
}

// NewDiagnosticEngine creates an engine that prints through renderer.
func NewDiagnosticEngine(renderer *Renderer) *DiagnosticEngine {
	return &DiagnosticEngine{renderer: renderer}
}

// AddError records err as a diagnostic. A nil err is ignored.
func (de *DiagnosticEngine) AddError(err error) {
	if err == nil {
		return
	}
	de.AddDiagnostic(FromError(err))
}

// AddDiagnostic adds a diagnostic to the engine.
func (de *DiagnosticEngine) AddDiagnostic(d *Diagnostic) {
	de.mu.Lock()
	de.diagnostics = append(de.diagnostics, d)
	de.mu.Unlock()
}

// ErrorCount returns the number of error-level diagnostics.
func (de *DiagnosticEngine) ErrorCount() int {
	de.mu.Lock()
	defer de.mu.Unlock()

	n := 0
	for _, d := range de.diagnostics {
		if d.Level == DiagnosticError {
			n++
		}
	}
	return n
}

// HasErrors returns true if there are any errors.
func (de *DiagnosticEngine) HasErrors() bool {
	return de.ErrorCount() > 0
}

// Diagnostics returns the collected diagnostics sorted by file, line,
// column and then severity.
func (de *DiagnosticEngine) Diagnostics() []*Diagnostic {
	de.mu.Lock()
	out := append([]*Diagnostic(nil), de.diagnostics...)
	de.mu.Unlock()

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Span.Start, out[j].Span.Start
		if a.Filename != b.Filename {
			return a.Filename < b.Filename
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		if a.Column != b.Column {
			return a.Column < b.Column
		}
		return out[i].Level < out[j].Level
	})

	return out
}

// Flush writes every diagnostic followed by a summary line, clears the
// engine and returns the number of errors written.
func (de *DiagnosticEngine) Flush(w io.Writer) int {
	diags := de.Diagnostics()
	errs := 0
	for _, d := range diags {
		if d.Level == DiagnosticError {
			errs++
		}
		de.renderer.Write(w, d)
	}
	if summary := summarize(diags); summary != "" {
		fmt.Fprintln(w, summary)
	}

	de.mu.Lock()
	de.diagnostics = nil
	de.mu.Unlock()

	return errs
}

func summarize(diags []*Diagnostic) string {
	var errs, warnings int
	for _, d := range diags {
		switch d.Level {
		case DiagnosticError:
			errs++
		case DiagnosticWarning:
			warnings++
		}
	}

	var parts []string
	if errs > 0 {
		parts = append(parts, fmt.Sprintf("%d error(s)", errs))
	}
	if warnings > 0 {
		parts = append(parts, fmt.Sprintf("%d warning(s)", warnings))
	}
	if len(parts) == 0 {
		return ""
	}
	return "found " + strings.Join(parts, ", ")
}
