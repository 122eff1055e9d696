package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/aurora-lang/aurora/internal/position"
)

func TestCompileErrorFormat(t *testing.T) {
	span := position.Span{
		Start: position.Position{Filename: "main.aur", Line: 3, Column: 7, Offset: 40},
		End:   position.Position{Filename: "main.aur", Line: 3, Column: 12, Offset: 45},
	}
	err := NewCompileError(CodeUnknownIdentifier, span, "Unknown identifier '%s'", "y")

	if err.Category != CategoryName {
		t.Fatalf("category wrong. expected=%q, got=%q", CategoryName, err.Category)
	}
	if got := err.Error(); got != "main.aur:3:7: Unknown identifier 'y'" {
		t.Fatalf("Error() wrong. got=%q", got)
	}
}

func TestSyntaxErrorWithoutPosition(t *testing.T) {
	err := NewSyntaxError(CodeUnexpectedEOF, position.Position{}, "Unexpected end of input, expected %s", "RPAREN")
	if got := err.Error(); got != "Unexpected end of input, expected RPAREN" {
		t.Fatalf("Error() wrong. got=%q", got)
	}
}

func TestErrorsAsThroughWrapping(t *testing.T) {
	inner := NewCompileError(CodeLoopControl, position.Span{}, "'break' used outside of loop")
	wrapped := fmt.Errorf("lowering main.aur: %w", inner)

	var ce *CompileError
	if !stderrors.As(wrapped, &ce) {
		t.Fatalf("errors.As failed to find CompileError")
	}
	if ce.Code != CodeLoopControl || ce.Category != CategoryControl {
		t.Fatalf("unexpected code/category: %s/%s", ce.Code, ce.Category)
	}

	var located Located
	if !stderrors.As(wrapped, &located) {
		t.Fatalf("CompileError should satisfy Located")
	}
}

func TestWrapCompileErrorKeepsCause(t *testing.T) {
	cause := NewSyntaxError(CodeUnexpectedToken, position.Position{Filename: "geo.aur", Line: 1, Column: 4}, "Unexpected token: LPAREN")
	err := WrapCompileError(fmt.Errorf("parse module ./geo: %w", cause), CodeUnknownImport, position.Span{}, "Cannot load module '%s'", "./geo")

	if err.Category != CategoryImport {
		t.Fatalf("category wrong. expected=%q, got=%q", CategoryImport, err.Category)
	}

	var syn *SyntaxError
	if !stderrors.As(err, &syn) || syn.Position().Line != 1 {
		t.Fatalf("cause should be reachable through errors.As, got=%v", err.Cause)
	}
	if NewCompileError(CodeArity, position.Span{}, "x").Unwrap() != nil {
		t.Fatalf("a compile error without a cause should unwrap to nil")
	}
}
