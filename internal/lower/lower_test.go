package lower

import (
	"errors"
	"strings"
	"testing"

	"github.com/aurora-lang/aurora/internal/ast"
	aerrors "github.com/aurora-lang/aurora/internal/errors"
	"github.com/aurora-lang/aurora/internal/hir"
	"github.com/aurora-lang/aurora/internal/parser"
)

func parseProgram(t *testing.T, input string) *ast.Program {
	t.Helper()
	prog, err := parser.ParseSource("test.aur", input)
	if err != nil {
		t.Fatalf("ParseSource(%q) returned error: %v", input, err)
	}
	return prog
}

func mustLower(t *testing.T, input string, opts ...Option) *hir.Module {
	t.Helper()
	mod, _, _, err := Lower(parseProgram(t, input), opts...)
	if err != nil {
		t.Fatalf("Lower(%q) returned error: %v", input, err)
	}
	return mod
}

func expectCompileError(t *testing.T, input string, code aerrors.Code, message string, opts ...Option) *aerrors.CompileError {
	t.Helper()
	_, _, _, err := Lower(parseProgram(t, input), opts...)
	if err == nil {
		t.Fatalf("Lower(%q) should fail with %q", input, message)
	}

	var ce *aerrors.CompileError
	if !errors.As(err, &ce) {
		t.Fatalf("Lower(%q): expected *CompileError, got %T (%v)", input, err, err)
	}
	if ce.Code != code {
		t.Fatalf("Lower(%q): wrong code. expected=%v, got=%v (%s)", input, code, ce.Code, ce.Message)
	}
	if !strings.Contains(ce.Message, message) {
		t.Fatalf("Lower(%q): wrong message. expected=%q, got=%q", input, message, ce.Message)
	}
	return ce
}

func funcBody(t *testing.T, mod *hir.Module, name string) hir.Expr {
	t.Helper()
	fn := mod.Func(name)
	if fn == nil {
		t.Fatalf("function %s not found in module", name)
	}
	return fn.Body
}

func TestDivisionTypes(t *testing.T) {
	mod := mustLower(t, "fn f(a: i32, b: f32) -> f32 = a / b")

	body := funcBody(t, mod, "f")
	if describe(body.GetType()) != "f32" {
		t.Fatalf("i32 / f32 expected=%q, got=%q", "f32", describe(body.GetType()))
	}

	expectCompileError(t, "fn f(a: i32, b: i32) -> f32 = a / b", aerrors.CodeTypeMismatch, "function 'f' result expected f32, got i32")
}

func TestBinaryOperatorTypes(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"fn f(a: i32, b: i32) -> i32 = a + b", "i32"},
		{"fn f(a: string, b: string) -> string = a + b", "string"},
		{"fn f(a: i32, b: f32) -> f32 = a * b", "f32"},
		{"fn f(a: i32, b: i32) -> bool = a < b", "bool"},
		{"fn f(a: i32, b: i32) -> bool = a == b", "bool"},
		{"fn f(a: bool, b: bool) -> bool = a && !b", "bool"},
		{"fn f(a: i32) -> i32 = -a", "i32"},
	}

	for _, tt := range tests {
		body := funcBody(t, mustLower(t, tt.input), "f")
		if got := describe(body.GetType()); got != tt.expected {
			t.Fatalf("%q: type expected=%q, got=%q", tt.input, tt.expected, got)
		}
	}
}

func TestBinaryOperatorErrors(t *testing.T) {
	tests := []struct {
		input   string
		message string
	}{
		{`fn f(a: string, b: i32) -> i32 = a + b`, "Cannot add string and i32"},
		{`fn f(a: bool) -> i32 = a * 2`, "left operand of '*' must be numeric, got bool"},
		{`fn f(a: i32) -> bool = a && true`, "left operand of '&&' must be bool, got i32"},
		{`fn f(a: i32, b: string) -> bool = a == b`, "comparison '==' expected string, got i32"},
		{`fn f(a: i32) -> bool = !a`, "operand of '!' must be bool, got i32"},
	}

	for _, tt := range tests {
		expectCompileError(t, tt.input, aerrors.CodeTypeMismatch, tt.message)
	}
}

func TestGenericConstructorInstantiation(t *testing.T) {
	mod := mustLower(t, "type Option<T> = Some(T) | None\nfn f() -> Option<i32> = Some(1)")

	call, ok := funcBody(t, mod, "f").(*hir.Call)
	if !ok {
		t.Fatalf("body should be a call, got %T", funcBody(t, mod, "f"))
	}
	g, ok := call.Type.(*hir.GenericType)
	if !ok {
		t.Fatalf("Some(1) should have a generic type, got %s", describe(call.Type))
	}
	if g.TypeName() != "Option" || len(g.Args) != 1 || describe(g.Args[0]) != "i32" {
		t.Fatalf("Some(1) expected=%q, got=%q", "Option<i32>", g.String())
	}
}

func TestNullaryConstructorValue(t *testing.T) {
	mod := mustLower(t, "type Color = enum { Red, Green }\nfn f() -> Color = Red")

	if got := typeName(funcBody(t, mod, "f").GetType()); got != "Color" {
		t.Fatalf("Red expected type %q, got=%q", "Color", got)
	}
}

func TestGenericCallErrors(t *testing.T) {
	expectCompileError(t, "fn id<T>(x: T) -> T = x\nfn f() -> i32 = id(1, 2)", aerrors.CodeArity, "Function 'id' expects 1 argument(s), got 2")
	expectCompileError(t, "fn pair<T>(a: T, b: T) -> T = a\nfn f() -> i32 = pair(1, \"s\")", aerrors.CodeTypeMismatch, "Type variable T bound to both i32 and string")
	expectCompileError(t, "fn g(x: i32) -> i32 = x\nfn f() -> i32 = g(\"s\")", aerrors.CodeTypeMismatch, "argument 1 of 'g' expected i32, got string")
	expectCompileError(t, "fn g() -> i32 = 1\nfn f() -> i32 = g(1)", aerrors.CodeArity, "Function 'g' expects 0 argument(s), got 1")
}

func TestLoopControl(t *testing.T) {
	expectCompileError(t, "fn f() -> void = do break end", aerrors.CodeLoopControl, "'break' used outside of loop")
	expectCompileError(t, "fn f() -> void = do continue end", aerrors.CodeLoopControl, "'continue' used outside of loop")

	mod := mustLower(t, "fn f() -> void = while true do break end")
	if _, ok := funcBody(t, mod, "f").(*hir.WhileLoop); !ok {
		t.Fatalf("body should be a while loop, got %T", funcBody(t, mod, "f"))
	}
}

func TestVoidFunctionResult(t *testing.T) {
	ce := expectCompileError(t, "fn f() -> void = 1", aerrors.CodeReturn, "function 'f' should not return a value")
	if ce.Span.Start.Line != 1 {
		t.Fatalf("error should be located on line 1, got %d", ce.Span.Start.Line)
	}

	mustLower(t, `fn f(c: bool) -> void = if c then print("x")`)
}

func TestReturnStatements(t *testing.T) {
	expectCompileError(t, "fn f() -> i32 = return", aerrors.CodeReturn, "return statement requires a value of type i32")
	expectCompileError(t, "fn f() -> void = return 1", aerrors.CodeReturn, "return value not allowed in void function")
	expectCompileError(t, `fn f() -> i32 = return "s"`, aerrors.CodeTypeMismatch, "return statement expected i32, got string")

	mustLower(t, "fn f() -> void = return")
	mustLower(t, "fn f() -> i32 = return 1")
}

func TestEffects(t *testing.T) {
	mod := mustLower(t, "fn add(a: i32, b: i32) -> i32 = a + b\nfn twice(xs: i32[]) -> i32[] = [x * 2 for x in xs]\nextern fn ext(x: i32) -> i32")

	add := mod.Func("add")
	if !add.HasEffect(hir.EffectPure) || !add.HasEffect(hir.EffectNoThrow) {
		t.Fatalf("add expected constexpr and noexcept, got %v", add.Effects)
	}

	twice := mod.Func("twice")
	if twice.HasEffect(hir.EffectPure) || !twice.HasEffect(hir.EffectNoThrow) {
		t.Fatalf("twice expected only noexcept, got %v", twice.Effects)
	}

	if ext := mod.Func("ext"); len(ext.Effects) != 0 || ext.Body != nil {
		t.Fatalf("extern function should have no body and no effects, got %v", ext.Effects)
	}
}

func TestEffectsRecordedInRegistry(t *testing.T) {
	_, _, funcs, err := Lower(parseProgram(t, "fn add(a: i32, b: i32) -> i32 = a + b"))
	if err != nil {
		t.Fatalf("Lower returned error: %v", err)
	}

	entry, ok := funcs.FetchEntry("add")
	if !ok {
		t.Fatalf("add should be registered")
	}
	if len(entry.Effects) != 2 || entry.Effects[0] != hir.EffectPure {
		t.Fatalf("registered effects expected=[constexpr noexcept], got=%v", entry.Effects)
	}
}

func TestTypeConstraints(t *testing.T) {
	expectCompileError(t, "type Box<T: Numeric> = { value: T }\nfn f(b: Box<bool>) -> i32 = 1", aerrors.CodeConstraint, "Type 'bool' does not satisfy constraint 'Numeric' for 'T'")
	expectCompileError(t, "fn f<T: Sortable>(x: T) -> T = x", aerrors.CodeUnknownConstraint, "Unknown constraint 'Sortable'")

	mustLower(t, "type Box<T: Numeric> = { value: T }\nfn f(b: Box<i32>) -> i32 = 1")
}

func TestMapLambdaParameterInference(t *testing.T) {
	mod := mustLower(t, "fn f(xs: f32[]) -> f32[] = xs.map(x => x * 2.0)")

	call := funcBody(t, mod, "f").(*hir.Call)
	lambda, ok := call.Args[0].(*hir.Lambda)
	if !ok {
		t.Fatalf("map argument should be a lambda, got %T", call.Args[0])
	}
	if got := describe(lambda.Params[0].Type); got != "f32" {
		t.Fatalf("lambda parameter expected=%q, got=%q", "f32", got)
	}
	if got := describe(call.Type); got != "f32[]" {
		t.Fatalf("map result expected=%q, got=%q", "f32[]", got)
	}
}

func TestFoldAccumulator(t *testing.T) {
	mod := mustLower(t, "fn f(xs: i32[]) -> f32 = xs.fold(0.0, (acc, x) => acc + x)")

	call := funcBody(t, mod, "f").(*hir.Call)
	lambda := call.Args[1].(*hir.Lambda)
	if describe(lambda.Params[0].Type) != "f32" || describe(lambda.Params[1].Type) != "i32" {
		t.Fatalf("fold lambda parameters expected=(f32, i32), got=(%s, %s)", describe(lambda.Params[0].Type), describe(lambda.Params[1].Type))
	}
}

func TestBuiltinMethods(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"fn f(xs: i32[]) -> i32 = xs.length()", "i32"},
		{"fn f(xs: i32[]) -> bool = xs.is_empty()", "bool"},
		{"fn f(xs: i32[]) -> i32[] = xs.filter(x => x > 1)", "i32[]"},
		{`fn f(s: string) -> string[] = s.split(",")`, "string[]"},
		{"fn f(s: string) -> string = s.trim()", "string"},
		{"fn f(x: f32) -> f32 = x.sqrt()", "f32"},
		{"fn f(xs: i32[]) -> i32 = xs.size", "i32"},
	}

	for _, tt := range tests {
		body := funcBody(t, mustLower(t, tt.input), "f")
		if got := describe(body.GetType()); got != tt.expected {
			t.Fatalf("%q: type expected=%q, got=%q", tt.input, tt.expected, got)
		}
	}
}

func TestBuiltinMethodErrors(t *testing.T) {
	tests := []struct {
		input   string
		code    aerrors.Code
		message string
	}{
		{"fn f(xs: i32[]) -> i32 = xs.foo()", aerrors.CodeUnknownMember, "Unknown array method 'foo'. Supported methods: length, size, is_empty, map, filter, fold"},
		{"fn f(s: string) -> i32 = s.foo()", aerrors.CodeUnknownMember, "Unknown string method 'foo'"},
		{"fn f(xs: i32[]) -> i32 = xs.foo", aerrors.CodeUnknownMember, "Unknown array member 'foo'. Known members: length, size, is_empty, map, filter, fold"},
		{"fn f(s: string) -> string[] = s.split()", aerrors.CodeArity, "Method 'split' expects 1 argument(s), got 0"},
		{"fn f(x: bool) -> i32 = x.foo", aerrors.CodeUnknownMember, "Unknown member 'foo' for type bool"},
		{"fn f(x: i32) -> i32 = x(1)", aerrors.CodeTypeMismatch, "Cannot call value of type i32"},
	}

	for _, tt := range tests {
		expectCompileError(t, tt.input, tt.code, tt.message)
	}
}

func TestDoBlockTrailingStatement(t *testing.T) {
	mod := mustLower(t, "fn f() -> void = do let x = 1 end")

	block, ok := funcBody(t, mod, "f").(*hir.BlockExpr)
	if !ok {
		t.Fatalf("body should be a block, got %T", funcBody(t, mod, "f"))
	}
	if !isVoid(block.Type) {
		t.Fatalf("block ending in let expected=void, got=%s", describe(block.Type))
	}
	if _, ok := block.Stmts[0].(*hir.VarDecl); !ok || len(block.Stmts) != 1 {
		t.Fatalf("block should hold the declaration, got %d statement(s)", len(block.Stmts))
	}

	mod = mustLower(t, "fn g() -> i32 = do let x = 1; x end")
	if got := describe(funcBody(t, mod, "g").GetType()); got != "i32" {
		t.Fatalf("do block result expected=%q, got=%q", "i32", got)
	}

	if _, ok := funcBody(t, mustLower(t, "fn h() -> void = do end"), "h").(*hir.Literal); !ok {
		t.Fatalf("an empty do block should lower to the void value")
	}
}

func TestStatementForms(t *testing.T) {
	mod := mustLower(t, "fn g() -> i32 =\n  let mut i = 0;\n  while i < 3 do\n    i = i + 1\n  end\n  i")

	block := funcBody(t, mod, "g").(*hir.BlockExpr)
	if len(block.Stmts) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(block.Stmts))
	}
	while, ok := block.Stmts[1].(*hir.WhileStmt)
	if !ok {
		t.Fatalf("a while loop in statement position should become a WhileStmt, got %T", block.Stmts[1])
	}
	if _, ok := while.Body.Stmts[0].(*hir.Assign); !ok {
		t.Fatalf("loop body should hold the assignment, got %T", while.Body.Stmts[0])
	}
}

func TestScopeOfBindings(t *testing.T) {
	src := "type Option<T> = Some(T) | None\n" +
		"fn f(o: Option<i32>) -> i32 = let r = match o { Some(v) => v, None => 0 }; v"
	expectCompileError(t, src, aerrors.CodeUnknownIdentifier, "Unknown identifier 'v' (in scope: o, r)")

	mod := mustLower(t, "type Option<T> = Some(T) | None\nfn f(o: Option<i32>) -> i32 = match o { Some(v) => v, None => 0 }")
	m := funcBody(t, mod, "f").(*hir.Match)
	if got := describe(m.Type); got != "i32" {
		t.Fatalf("match type expected=%q, got=%q", "i32", got)
	}
	if got := m.Arms[0].Pattern.Bindings; len(got) != 1 || got[0] != "v" {
		t.Fatalf("Some(v) should bind v, got %v", got)
	}

	expectCompileError(t, "fn f(x: i32) -> i32 = do let y = 1 end; y", aerrors.CodeUnknownIdentifier, "Unknown identifier 'y' (in scope: x)")
}

func TestMatchArmsMustAgree(t *testing.T) {
	src := "type Option<T> = Some(T) | None\n" +
		`fn f(o: Option<i32>) -> i32 = match o { Some(v) => v, None => "none" }`
	expectCompileError(t, src, aerrors.CodeTypeMismatch, "match arm 2 expected i32, got string")
}

func TestIfBranches(t *testing.T) {
	expectCompileError(t, `fn f(c: bool) -> i32 = if c then 1 else "s"`, aerrors.CodeTypeMismatch, "if expression branches expected i32, got string")
	expectCompileError(t, "fn f(c: i32) -> i32 = if c then 1 else 2", aerrors.CodeTypeMismatch, "if condition must be bool, got i32")
}

func TestPipeDesugaring(t *testing.T) {
	mod := mustLower(t, "fn double(x: i32) -> i32 = x * 2\nfn add(a: i32, b: i32) -> i32 = a + b\nfn f(x: i32) -> i32 = x |> double\nfn g(x: i32) -> i32 = x |> add(1)")

	call := funcBody(t, mod, "f").(*hir.Call)
	if callee := call.Callee.(*hir.Var); callee.Name != "double" || len(call.Args) != 1 {
		t.Fatalf("x |> double expected double(x), got %s", hir.PrintExpr(call))
	}

	call = funcBody(t, mod, "g").(*hir.Call)
	if len(call.Args) != 2 {
		t.Fatalf("x |> add(1) expected 2 arguments, got %d", len(call.Args))
	}
	if v, ok := call.Args[0].(*hir.Var); !ok || v.Name != "x" {
		t.Fatalf("piped value should be the first argument, got %s", hir.PrintExpr(call.Args[0]))
	}
}

func TestRecords(t *testing.T) {
	mod := mustLower(t, "type Point = { x: f32, y: f32 }\nfn f() -> f32 = let p: Point = { x: 1.0, y: 2.0 }; p.x")

	block := funcBody(t, mod, "f").(*hir.BlockExpr)
	decl := block.Stmts[0].(*hir.VarDecl)
	rec, ok := decl.Value.(*hir.RecordExpr)
	if !ok || rec.TypeName != "Point" {
		t.Fatalf("annotated anonymous record should take the name Point, got %s", hir.PrintExpr(decl.Value))
	}
	if got := describe(block.Result.GetType()); got != "f32" {
		t.Fatalf("p.x expected=%q, got=%q", "f32", got)
	}

	mod = mustLower(t, "type Point = { x: f32, y: f32 }\nfn f() -> Point = let p = { x: 1.0, y: 2.0 }; p")
	if got := typeName(funcBody(t, mod, "f").GetType()); got != "Point" {
		t.Fatalf("anonymous record with Point's fields expected=%q, got=%q", "Point", got)
	}

	expectCompileError(t, "type Point = { x: f32, y: f32 }\nfn f() -> Point = Point { x: 1.0, z: 2.0 }", aerrors.CodeUnknownField, "Unknown field 'z' for type Point")
	expectCompileError(t, "type Point = { x: f32, y: f32 }\nfn f(p: Point) -> f32 = p.z", aerrors.CodeUnknownField, "Unknown field 'z' for type Point")
}

func TestGenericRecordFields(t *testing.T) {
	mod := mustLower(t, "type Box<T> = { value: T }\nfn f() -> i32 = let b = Box { value: 1 }; b.value")

	block := funcBody(t, mod, "f").(*hir.BlockExpr)
	decl := block.Stmts[0].(*hir.VarDecl)
	if got := describe(decl.Type); got != "Box<i32>" {
		t.Fatalf("Box { value: 1 } expected=%q, got=%q", "Box<i32>", got)
	}
	if got := describe(block.Result.GetType()); got != "i32" {
		t.Fatalf("b.value expected=%q, got=%q", "i32", got)
	}
}

func TestAssignments(t *testing.T) {
	expectCompileError(t, `fn f() -> i32 = let mut x = 1; x = "s"; x`, aerrors.CodeTypeMismatch, "assignment to 'x' expected i32, got string")
	expectCompileError(t, "fn f() -> i32 = y = 1; 2", aerrors.CodeAssignment, "Assignment to undefined variable 'y'")
	expectCompileError(t, `fn f() -> i32 = let x: i32 = "s"; x`, aerrors.CodeTypeMismatch, "variable 'x' initialization expected i32, got string")
}

func TestIndexing(t *testing.T) {
	mod := mustLower(t, "fn f(xs: i32[]) -> i32 = xs[0]")
	if got := describe(funcBody(t, mod, "f").GetType()); got != "i32" {
		t.Fatalf("xs[0] expected=%q, got=%q", "i32", got)
	}

	expectCompileError(t, "fn f(x: i32) -> i32 = x[0]", aerrors.CodeNotIndexable, "Indexing requires an array, got i32")
	expectCompileError(t, `fn f(xs: i32[]) -> i32 = xs["a"]`, aerrors.CodeTypeMismatch, "array index must be numeric, got string")
	expectCompileError(t, "fn f(x: i32) -> void = for y in x do print(y) end", aerrors.CodeTypeMismatch, "Iterable expression must be an array, got i32")
}

func TestUnknownNames(t *testing.T) {
	expectCompileError(t, "fn f(a: i32) -> i32 = b", aerrors.CodeUnknownIdentifier, "Unknown identifier 'b' (in scope: a)")
	expectCompileError(t, "fn f() -> i32 = nope(1)", aerrors.CodeUnknownIdentifier, "Unknown function 'nope'")
}

func TestLambdaCalls(t *testing.T) {
	mod := mustLower(t, "fn f() -> i32 = let inc = (x: i32) => x + 1; inc(2)")
	if got := describe(funcBody(t, mod, "f").GetType()); got != "i32" {
		t.Fatalf("inc(2) expected=%q, got=%q", "i32", got)
	}

	expectCompileError(t, "fn f() -> i32 = let inc = (x: i32) => x + 1; inc(1, 2)", aerrors.CodeArity, "Function 'inc' expects 1 argument(s), got 2")
}

func TestLoweringIsRepeatable(t *testing.T) {
	l := New()
	prog := parseProgram(t, "fn f(a: i32) -> i32 = a")

	for i := 0; i < 2; i++ {
		mod, err := l.Lower(prog)
		if err != nil {
			t.Fatalf("run %d: Lower returned error: %v", i, err)
		}
		if len(mod.Items) != 1 || mod.Name != "main" {
			t.Fatalf("run %d: unexpected module %s", i, hir.Print(mod))
		}
	}
}

func TestStacksBalancedAfterError(t *testing.T) {
	l := New()
	prog := parseProgram(t, "fn id<T>(x: T) -> T = x\nfn f(xs: i32[]) -> i32 = xs.map(x => x + \"s\").length()")

	if _, err := l.Lower(prog); err == nil {
		t.Fatalf("expected a type error")
	}

	tp, lp, ret := l.tc.Depth()
	if tp != 0 || lp != 0 || ret != 0 {
		t.Fatalf("type context not balanced: typeParams=%d lambdaParams=%d returns=%d", tp, lp, ret)
	}
	if l.loopDepth != 0 {
		t.Fatalf("loop depth not balanced: %d", l.loopDepth)
	}
	if len(l.nodes) != 0 {
		t.Fatalf("node stack not balanced: %d", len(l.nodes))
	}
}
