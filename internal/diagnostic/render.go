package diagnostic

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/width"

	"github.com/aurora-lang/aurora/internal/position"
)

const (
	ansiReset = "\x1b[0m"
	ansiBold  = "\x1b[1m"
	ansiRed   = "\x1b[31m"
	ansiBlue  = "\x1b[34m"
)

// Renderer writes diagnostics, quoting source lines from a source map.
type Renderer struct {
	sources *position.SourceMap
	color   bool
}

// NewRenderer creates a renderer. sources may be nil, in which case only
// headers are printed.
func NewRenderer(sources *position.SourceMap, color bool) *Renderer {
	return &Renderer{sources: sources, color: color}
}

// Render formats err without color.
func Render(err error, sources *position.SourceMap) string {
	var sb strings.Builder
	NewRenderer(sources, false).Write(&sb, FromError(err))
	return sb.String()
}

// Write renders one diagnostic to w.
func (r *Renderer) Write(w io.Writer, d *Diagnostic) {
	header := d.Header()
	if r.color {
		header = ansiBold + ansiRed + header + ansiReset
	}
	fmt.Fprintln(w, header)

	if line, ok := r.sourceLine(d.Span.Start); ok {
		gutter := fmt.Sprintf("%d", d.Span.Start.Line)
		pad := strings.Repeat(" ", len(gutter))
		caret := caretLine(line, d.Span.Start.Column, spanLength(d.Span))
		if r.color {
			caret = ansiRed + caret + ansiReset
			gutter = ansiBlue + gutter + ansiReset
		}
		fmt.Fprintf(w, "%s |\n", pad)
		fmt.Fprintf(w, "%s | %s\n", gutter, line)
		fmt.Fprintf(w, "%s | %s\n", pad, caret)
	}

	for _, note := range d.Notes {
		fmt.Fprintf(w, "  = note: %s\n", note)
	}
}

func (r *Renderer) sourceLine(pos position.Position) (string, bool) {
	if r.sources == nil || !pos.IsValid() {
		return "", false
	}
	return r.sources.Line(pos)
}

// spanLength is the number of bytes a single-line span covers, at least 1.
func spanLength(s position.Span) int {
	if !s.IsValid() || s.End.Line != s.Start.Line {
		return 1
	}
	if n := s.End.Offset - s.Start.Offset; n > 1 {
		return n
	}
	return 1
}

// caretLine builds the marker line for a 1-based byte column. Tabs are kept
// so the caret lines up with the quoted source; wide runes take two cells.
func caretLine(line string, column, length int) string {
	start := column - 1
	if start < 0 {
		start = 0
	}
	if start > len(line) {
		start = len(line)
	}
	end := start + length
	if end > len(line) {
		end = len(line)
	}

	var sb strings.Builder
	for _, r := range line[:start] {
		if r == '\t' {
			sb.WriteByte('\t')
			continue
		}
		sb.WriteString(strings.Repeat(" ", cells(r)))
	}

	marks := 0
	for _, r := range line[start:end] {
		marks += cells(r)
	}
	if marks == 0 {
		marks = 1
	}
	sb.WriteString(strings.Repeat("^", marks))

	return sb.String()
}

// cells is the terminal width of r.
func cells(r rune) int {
	if r == utf8.RuneError {
		return 1
	}
	switch width.LookupRune(r).Kind() {
	case width.EastAsianWide, width.EastAsianFullwidth:
		return 2
	}
	return 1
}
