// Package position provides source position tracking for the Aurora
// front-end. Tokens, syntax nodes and compiler errors all refer back to
// the text they came from through the types defined here.
package position

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Position is a point in a source file. Line and Column are 1-based, Column
// counts bytes. Offset is the 0-based byte offset.
type Position struct {
	Filename string
	Line     int
	Column   int
	Offset   int
}

// IsValid reports whether p was produced by the lexer.
func (p Position) IsValid() bool {
	return p.Line >= 1 && p.Column >= 1 && p.Offset >= 0
}

// String formats p as file:line:column, or line:column without a file.
func (p Position) String() string {
	if p.Filename == "" {
		return fmt.Sprintf("%d:%d", p.Line, p.Column)
	}
	return fmt.Sprintf("%s:%d:%d", p.Filename, p.Line, p.Column)
}

// precedes orders positions by file name and then by offset.
func (p Position) precedes(q Position) bool {
	if p.Filename == q.Filename {
		return p.Offset < q.Offset
	}
	return p.Filename < q.Filename
}

// Span is the half-open range [Start, End) of a syntax node.
type Span struct {
	Start Position
	End   Position
}

// At returns an empty span located at pos.
func At(pos Position) Span {
	return Span{Start: pos, End: pos}
}

// IsValid reports whether both ends are valid, in the same file and ordered.
func (s Span) IsValid() bool {
	if !s.Start.IsValid() || !s.End.IsValid() {
		return false
	}
	return s.Start.Filename == s.End.Filename && s.End.Offset >= s.Start.Offset
}

// String returns the start position of the span.
func (s Span) String() string {
	return s.Start.String()
}

// Union returns the smallest span covering s and other. An invalid span, or
// one from another file, does not widen the result.
func (s Span) Union(other Span) Span {
	switch {
	case !s.IsValid():
		return other
	case !other.IsValid(), other.Start.Filename != s.Start.Filename:
		return s
	}

	out := s
	if other.Start.precedes(out.Start) {
		out.Start = other.Start
	}
	if out.End.precedes(other.End) {
		out.End = other.End
	}
	return out
}

// SourceFile is the text of one compiled file with an index of line starts.
type SourceFile struct {
	Filename   string
	Content    string
	lineStarts []int
}

// NewSourceFile indexes content.
func NewSourceFile(filename, content string) *SourceFile {
	starts := []int{0}
	for i := 0; i < len(content); i++ {
		if content[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &SourceFile{Filename: filename, Content: content, lineStarts: starts}
}

// LineCount returns the number of lines, counting a trailing empty line.
func (sf *SourceFile) LineCount() int {
	return len(sf.lineStarts)
}

// Line returns line n (1-based) without its terminator, or "" when n is out
// of range.
func (sf *SourceFile) Line(n int) string {
	if n < 1 || n > len(sf.lineStarts) {
		return ""
	}
	start := sf.lineStarts[n-1]
	end := len(sf.Content)
	if n < len(sf.lineStarts) {
		end = sf.lineStarts[n] - 1
	}
	return strings.TrimSuffix(sf.Content[start:end], "\r")
}

// PositionAt converts a byte offset into a position in this file. Offsets
// past the end clamp to the end of the content.
func (sf *SourceFile) PositionAt(offset int) Position {
	if offset < 0 {
		offset = 0
	}
	if offset > len(sf.Content) {
		offset = len(sf.Content)
	}
	line := sort.Search(len(sf.lineStarts), func(i int) bool { return sf.lineStarts[i] > offset })
	return Position{
		Filename: sf.Filename,
		Line:     line,
		Column:   offset - sf.lineStarts[line-1] + 1,
		Offset:   offset,
	}
}

// Text returns the source covered by span, or "" when the span does not
// belong to this file.
func (sf *SourceFile) Text(span Span) string {
	if !span.IsValid() || span.Start.Filename != sf.Filename || span.End.Offset > len(sf.Content) {
		return ""
	}
	return sf.Content[span.Start.Offset:span.End.Offset]
}

// SourceMap holds the files of one compilation so diagnostics can quote them.
// It is safe for concurrent use.
type SourceMap struct {
	mu    sync.RWMutex
	files map[string]*SourceFile
}

func NewSourceMap() *SourceMap {
	return &SourceMap{files: make(map[string]*SourceFile)}
}

// AddFile records content under filename, replacing any earlier version.
func (sm *SourceMap) AddFile(filename, content string) *SourceFile {
	sf := NewSourceFile(filename, content)

	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.files[filename] = sf

	return sf
}

// File returns the file recorded under filename, or nil.
func (sm *SourceMap) File(filename string) *SourceFile {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.files[filename]
}

// Line returns the source line pos points into.
func (sm *SourceMap) Line(pos Position) (string, bool) {
	sf := sm.File(pos.Filename)
	if sf == nil || pos.Line < 1 || pos.Line > sf.LineCount() {
		return "", false
	}
	return sf.Line(pos.Line), true
}
