package ast

import (
	"testing"

	"github.com/aurora-lang/aurora/internal/position"
)

func TestDumpFunction(t *testing.T) {
	fn := &FuncDecl{
		Name: "inc",
		Params: []*Param{
			{Name: "x", Type: &PrimType{Name: "i32"}},
		},
		RetType: &PrimType{Name: "i32"},
		Body: &BinaryOp{
			Op:    "+",
			Left:  &VarRef{Name: "x"},
			Right: &IntLit{Value: 1},
		},
		Exported: true,
	}

	expected := `(fn inc (params (param x i32)) i32 (binary + (var x) (int 1)) exported)`
	if got := Dump(fn); got != expected {
		t.Fatalf("dump wrong.\nexpected=%s\ngot=     %s", expected, got)
	}
}

func TestDumpIgnoresSpans(t *testing.T) {
	a := &IfExpr{
		Span: position.At(position.Position{Line: 1, Column: 1}),
		Cond: &VarRef{Name: "c"},
		Then: &IntLit{Value: 1},
	}
	b := &IfExpr{
		Span: position.At(position.Position{Line: 9, Column: 4}),
		Cond: &VarRef{Name: "c"},
		Then: &IntLit{Value: 1},
	}

	if Dump(a) != Dump(b) {
		t.Fatalf("dumps differ: %s vs %s", Dump(a), Dump(b))
	}
	if got := Dump(a); got != "(if (var c) (int 1) _)" {
		t.Fatalf("missing else should dump as _, got=%s", got)
	}
}

func TestDumpPatterns(t *testing.T) {
	m := &MatchExpr{
		Scrutinee: &VarRef{Name: "s"},
		Arms: []*MatchArm{
			{Pattern: &ConstructorPattern{Name: "Circle", Fields: []string{"r"}}, Body: &VarRef{Name: "r"}},
			{Pattern: &RegexPattern{Pattern: "a+", Bindings: []string{"_"}}, Body: &IntLit{Value: 0}},
			{Pattern: &WildcardPattern{}, Guard: &VarRef{Name: "ok"}, Body: &IntLit{Value: 2}},
		},
	}

	expected := `(match (var s) (arm (pctor Circle [r]) _ (var r)) (arm (pregex "a+" "" [_]) _ (int 0)) (arm (pwild) (var ok) (int 2)))`
	if got := Dump(m); got != expected {
		t.Fatalf("dump wrong.\nexpected=%s\ngot=     %s", expected, got)
	}
}
