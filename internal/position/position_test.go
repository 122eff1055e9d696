package position

import (
	"sync"
	"testing"
)

func TestPosition(t *testing.T) {
	tests := []struct {
		name     string
		expected string
		pos      Position
		isValid  bool
	}{
		{
			name:     "Valid position with filename",
			pos:      Position{Filename: "main.aur", Line: 10, Column: 5, Offset: 100},
			isValid:  true,
			expected: "main.aur:10:5",
		},
		{
			name:     "Valid position without filename",
			pos:      Position{Line: 1, Column: 1},
			isValid:  true,
			expected: "1:1",
		},
		{
			name:    "Invalid position - zero line",
			pos:     Position{Line: 0, Column: 1},
			isValid: false,
		},
		{
			name:    "Invalid position - zero column",
			pos:     Position{Line: 1, Column: 0},
			isValid: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.pos.IsValid(); got != tt.isValid {
				t.Fatalf("IsValid() expected=%v, got=%v", tt.isValid, got)
			}
			if tt.isValid {
				if got := tt.pos.String(); got != tt.expected {
					t.Fatalf("String() expected=%q, got=%q", tt.expected, got)
				}
			}
		})
	}
}

func TestSpanUnion(t *testing.T) {
	a := Span{
		Start: Position{Filename: "a.aur", Line: 1, Column: 1, Offset: 0},
		End:   Position{Filename: "a.aur", Line: 1, Column: 4, Offset: 3},
	}
	b := Span{
		Start: Position{Filename: "a.aur", Line: 2, Column: 1, Offset: 10},
		End:   Position{Filename: "a.aur", Line: 2, Column: 6, Offset: 15},
	}

	u := a.Union(b)
	if u.Start.Offset != 0 || u.End.Offset != 15 {
		t.Fatalf("union wrong. expected=0..15, got=%d..%d", u.Start.Offset, u.End.Offset)
	}
	if got := b.Union(a); got != u {
		t.Fatalf("union should be symmetric, got=%v", got)
	}

	if got := (Span{}).Union(b); got != b {
		t.Fatalf("union with invalid span should return other, got=%v", got)
	}

	other := Span{
		Start: Position{Filename: "b.aur", Line: 1, Column: 1, Offset: 0},
		End:   Position{Filename: "b.aur", Line: 9, Column: 1, Offset: 90},
	}
	if got := a.Union(other); got != a {
		t.Fatalf("union across files should keep the receiver, got=%v", got)
	}
}

func TestSourceFileLines(t *testing.T) {
	sf := NewSourceFile("m.aur", "fn a() -> i32 = 1\r\nfn b() -> i32 = 2\n")

	if got := sf.LineCount(); got != 3 {
		t.Fatalf("line count expected=%d, got=%d", 3, got)
	}
	if got := sf.Line(1); got != "fn a() -> i32 = 1" {
		t.Fatalf("line 1 wrong. got=%q", got)
	}
	if got := sf.Line(2); got != "fn b() -> i32 = 2" {
		t.Fatalf("line 2 wrong. got=%q", got)
	}
	if got := sf.Line(3); got != "" {
		t.Fatalf("trailing line should be empty, got=%q", got)
	}
	if got := sf.Line(9); got != "" {
		t.Fatalf("out of range line should be empty, got=%q", got)
	}

	span := Span{
		Start: Position{Filename: "m.aur", Line: 1, Column: 4, Offset: 3},
		End:   Position{Filename: "m.aur", Line: 1, Column: 5, Offset: 4},
	}
	if got := sf.Text(span); got != "a" {
		t.Fatalf("span text wrong. expected=%q, got=%q", "a", got)
	}
}

func TestPositionAt(t *testing.T) {
	sf := NewSourceFile("m.aur", "ab\ncd\n")

	tests := []struct {
		offset       int
		line, column int
	}{
		{0, 1, 1},
		{2, 1, 3},
		{3, 2, 1},
		{4, 2, 2},
		{6, 3, 1},
		{99, 3, 1},
	}

	for _, tt := range tests {
		pos := sf.PositionAt(tt.offset)
		if pos.Line != tt.line || pos.Column != tt.column || pos.Filename != "m.aur" {
			t.Fatalf("PositionAt(%d) expected=%d:%d, got=%s", tt.offset, tt.line, tt.column, pos)
		}
	}
}

func TestSourceMapConcurrentAccess(t *testing.T) {
	sm := NewSourceMap()

	var wg sync.WaitGroup
	for _, name := range []string{"a.aur", "b.aur", "c.aur"} {
		wg.Add(1)
		go func(name string) {
			defer wg.Done()
			sm.AddFile(name, "fn main() -> i32 = 0")
		}(name)
	}
	wg.Wait()

	line, ok := sm.Line(Position{Filename: "b.aur", Line: 1, Column: 1})
	if !ok || line != "fn main() -> i32 = 0" {
		t.Fatalf("Line wrong. got=%q", line)
	}
	if _, ok := sm.Line(Position{Filename: "b.aur", Line: 2, Column: 1}); ok {
		t.Fatalf("expected no line past the end of the file")
	}
	if sm.File("missing.aur") != nil {
		t.Fatalf("expected nil for unknown file")
	}
}
