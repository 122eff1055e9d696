package lower

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aurora-lang/aurora/internal/ast"
	aerrors "github.com/aurora-lang/aurora/internal/errors"
	"github.com/aurora-lang/aurora/internal/hir"
)

// lowerExpr lowers e and infers its type.
func (l *Lowerer) lowerExpr(e ast.Expr) (hir.Expr, error) {
	if e == nil {
		return nil, l.errorf(aerrors.CodeMalformed, "Missing expression")
	}

	defer l.enter(e)()

	switch e := e.(type) {
	case *ast.IntLit:
		return &hir.Literal{Value: e.Value, Type: hir.I32, Span: e.Span}, nil
	case *ast.FloatLit:
		return &hir.Literal{Value: e.Value, Type: hir.F32, Span: e.Span}, nil
	case *ast.StringLit:
		return &hir.Literal{Value: e.Value, Type: hir.Str, Span: e.Span}, nil
	case *ast.RegexLit:
		return &hir.RegexLit{Pattern: e.Pattern, Flags: e.Flags, Type: hir.Regex, Span: e.Span}, nil
	case *ast.VarRef:
		return l.lowerVar(e)
	case *ast.BinaryOp:
		if e.Op == "|>" {
			return l.lowerExpr(desugarPipe(e))
		}
		return l.lowerBinary(e)
	case *ast.UnaryOp:
		return l.lowerUnary(e)
	case *ast.Call:
		return l.lowerCall(e)
	case *ast.MemberAccess:
		return l.lowerMember(e)
	case *ast.IndexAccess:
		return l.lowerIndex(e)
	case *ast.RecordLit:
		return l.lowerRecord(e)
	case *ast.IfExpr:
		return l.lowerIf(e)
	case *ast.MatchExpr:
		return l.lowerMatch(e)
	case *ast.Lambda:
		return l.lowerLambda(e)
	case *ast.Block:
		return l.lowerBlock(e, true)
	case *ast.BlockExpr:
		return l.lowerBlockExpr(e)
	case *ast.DoExpr:
		return l.lowerDo(e)
	case *ast.ArrayLiteral:
		return l.lowerArray(e)
	case *ast.ListComprehension:
		return l.lowerComprehension(e)
	case *ast.ForLoop:
		return l.lowerFor(e)
	case *ast.WhileLoop:
		return l.lowerWhile(e)
	}

	return nil, l.errorf(aerrors.CodeMalformed, "Unsupported expression %T", e)
}

// desugarPipe rewrites x |> f(a) as f(x, a) and x |> f as f(x).
func desugarPipe(e *ast.BinaryOp) ast.Expr {
	if call, ok := e.Right.(*ast.Call); ok {
		args := make([]ast.Expr, 0, len(call.Args)+1)
		args = append(args, e.Left)
		args = append(args, call.Args...)
		return &ast.Call{Span: e.Span, Callee: call.Callee, Args: args}
	}
	return &ast.Call{Span: e.Span, Callee: e.Right, Args: []ast.Expr{e.Left}}
}

func (l *Lowerer) lowerVar(e *ast.VarRef) (hir.Expr, error) {
	if t, ok := l.vars[e.Name]; ok {
		return &hir.Var{Name: e.Name, Type: t, Span: e.Span}, nil
	}

	if info := l.lookupFunction(e.Name); info != nil {
		// A nullary constructor used as a value is the value itself.
		if _, ctor := l.constructors[e.Name]; ctor && len(info.params) == 0 && l.functions[e.Name] == nil {
			return &hir.Var{Name: e.Name, Type: info.ret, Span: e.Span}, nil
		}
		return &hir.Var{Name: e.Name, Type: info.signature(), Span: e.Span}, nil
	}

	switch e.Name {
	case "true":
		return &hir.Literal{Value: true, Type: hir.Bool, Span: e.Span}, nil
	case "false":
		return &hir.Literal{Value: false, Type: hir.Bool, Span: e.Span}, nil
	}

	return nil, l.errorf(aerrors.CodeUnknownIdentifier, "Unknown identifier '%s' (in scope: %s)", e.Name, l.scopeNames())
}

func (l *Lowerer) scopeNames() string {
	names := make([]string, 0, len(l.vars))
	for name := range l.vars {
		names = append(names, name)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

func (l *Lowerer) lowerBinary(e *ast.BinaryOp) (hir.Expr, error) {
	left, err := l.lowerExpr(e.Left)
	if err != nil {
		return nil, err
	}
	right, err := l.lowerExpr(e.Right)
	if err != nil {
		return nil, err
	}

	typ, err := l.inferBinary(e.Op, left.GetType(), right.GetType())
	if err != nil {
		return nil, err
	}

	return &hir.Binary{Op: e.Op, Left: left, Right: right, Type: typ, Span: e.Span}, nil
}

func (l *Lowerer) lowerUnary(e *ast.UnaryOp) (hir.Expr, error) {
	operand, err := l.lowerExpr(e.Operand)
	if err != nil {
		return nil, err
	}

	typ, err := l.inferUnary(e.Op, operand.GetType())
	if err != nil {
		return nil, err
	}

	return &hir.Unary{Op: e.Op, Operand: operand, Type: typ, Span: e.Span}, nil
}

func (l *Lowerer) lowerIndex(e *ast.IndexAccess) (hir.Expr, error) {
	object, err := l.lowerExpr(e.Object)
	if err != nil {
		return nil, err
	}
	index, err := l.lowerExpr(e.Index)
	if err != nil {
		return nil, err
	}

	arr, ok := object.GetType().(*hir.ArrayType)
	if !ok {
		return nil, l.errorf(aerrors.CodeNotIndexable, "Indexing requires an array, got %s", describe(object.GetType()))
	}
	if err := l.ensureNumeric(index.GetType(), "array index"); err != nil {
		return nil, err
	}

	return &hir.Index{Object: object, Index: index, Type: arr.Elem, Span: e.Span}, nil
}

// =============================================================================
// Records
// =============================================================================

func (l *Lowerer) lowerRecord(e *ast.RecordLit) (hir.Expr, error) {
	values := make([]hir.FieldValue, len(e.Fields))
	fields := make([]hir.Field, len(e.Fields))
	for i, f := range e.Fields {
		v, err := l.lowerExpr(f.Value)
		if err != nil {
			return nil, err
		}
		values[i] = hir.FieldValue{Name: f.Name, Value: v}
		fields[i] = hir.Field{Name: f.Name, Type: v.GetType()}
	}

	rec := &hir.RecordExpr{TypeName: e.TypeName, Fields: values, Span: e.Span}

	if e.TypeName == "" {
		rec.Type = l.bestRecordCandidate(fields)
		if rec.Type == nil {
			rec.Type = hir.Record("", fields)
		}
		return rec, nil
	}

	declared, ok := l.typeTable[e.TypeName]
	if !ok {
		if info, found := l.types.Lookup(e.TypeName); found {
			declared = info.Type
		}
	}

	decl, ok := declared.(*hir.RecordType)
	if !ok {
		rec.Type = hir.Record(e.TypeName, fields)
		return rec, nil
	}

	typ, err := l.instantiateRecord(e, decl, fields)
	if err != nil {
		return nil, err
	}
	rec.Type = typ
	return rec, nil
}

// instantiateRecord checks a named record literal against its declaration
// and infers the arguments of a generic record from the field values.
func (l *Lowerer) instantiateRecord(e *ast.RecordLit, decl *hir.RecordType, fields []hir.Field) (hir.Type, error) {
	b := make(typeBindings)
	for i, f := range fields {
		declared, ok := decl.FieldType(f.Name)
		if !ok {
			return nil, l.errorAt(e.Fields[i], aerrors.CodeUnknownField, "Unknown field '%s' for type %s", f.Name, decl.Name)
		}
		if err := l.unify(declared, f.Type, b); err != nil {
			return nil, err
		}
	}

	for i, f := range fields {
		declared, _ := decl.FieldType(f.Name)
		restore := l.enter(e.Fields[i])
		err := l.ensureCompatible(f.Type, substitute(declared, b), fmt.Sprintf("field '%s' of %s", f.Name, decl.Name))
		restore()
		if err != nil {
			return nil, err
		}
	}

	params := l.typeParams[decl.Name]
	if len(params) == 0 {
		return decl, nil
	}

	args := make([]hir.Type, len(params))
	for i, tp := range params {
		bound, ok := b[tp.Name]
		if !ok || l.isUnresolved(bound) {
			return decl, nil
		}
		args[i] = bound
	}
	return hir.Generic(decl, args...), nil
}

// bestRecordCandidate finds a declared record whose ordered field names
// match fields. Among several the one with the most concrete instantiation
// wins, then the first by name.
func (l *Lowerer) bestRecordCandidate(fields []hir.Field) hir.Type {
	var (
		best      hir.Type
		bestScore = -1
	)

	for _, info := range l.types.Records() {
		rec, ok := info.Type.(*hir.RecordType)
		if !ok || !sameFieldNames(rec.Fields, fields) {
			continue
		}

		typ, score := l.constructRecord(rec, fields)
		if score > bestScore {
			best, bestScore = typ, score
		}
	}

	return best
}

// constructRecord instantiates rec from field values. The score counts the
// type arguments that were bound to concrete types.
func (l *Lowerer) constructRecord(rec *hir.RecordType, fields []hir.Field) (hir.Type, int) {
	params := l.typeParams[rec.Name]
	if len(params) == 0 {
		return rec, 0
	}

	b := make(typeBindings)
	for i, f := range rec.Fields {
		if err := l.unify(f.Type, fields[i].Type, b); err != nil {
			return rec, 0
		}
	}

	score := 0
	args := make([]hir.Type, len(params))
	for i, tp := range params {
		bound, ok := b[tp.Name]
		if !ok || l.isUnresolved(bound) {
			return rec, score
		}
		if !isTypeVar(bound) {
			score++
		}
		args[i] = bound
	}
	return hir.Generic(rec, args...), score
}

func sameFieldNames(a, b []hir.Field) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Name != b[i].Name {
			return false
		}
	}
	return true
}

// =============================================================================
// Control flow
// =============================================================================

func (l *Lowerer) lowerIf(e *ast.IfExpr) (hir.Expr, error) {
	cond, err := l.lowerExpr(e.Cond)
	if err != nil {
		return nil, err
	}
	if err := l.ensureBool(cond.GetType(), "if condition"); err != nil {
		return nil, err
	}

	then, err := l.lowerExpr(e.Then)
	if err != nil {
		return nil, err
	}

	out := &hir.If{Cond: cond, Then: then, Type: hir.Prim("unit"), Span: e.Span}
	if e.Else == nil {
		return out, nil
	}

	if out.Else, err = l.lowerExpr(e.Else); err != nil {
		return nil, err
	}
	if err := l.ensureCompatible(out.Else.GetType(), then.GetType(), "if expression branches"); err != nil {
		return nil, err
	}
	out.Type = then.GetType()

	return out, nil
}

func (l *Lowerer) lowerMatch(e *ast.MatchExpr) (hir.Expr, error) {
	scrutinee, err := l.lowerExpr(e.Scrutinee)
	if err != nil {
		return nil, err
	}

	out := &hir.Match{Scrutinee: scrutinee, Type: hir.Auto, Span: e.Span}
	for i, arm := range e.Arms {
		lowered, err := l.lowerArm(arm, scrutinee.GetType())
		if err != nil {
			return nil, err
		}

		if i == 0 {
			out.Type = lowered.Body.GetType()
		} else {
			restore := l.enter(arm.Body)
			err := l.ensureCompatible(lowered.Body.GetType(), out.Type, fmt.Sprintf("match arm %d", i+1))
			restore()
			if err != nil {
				return nil, err
			}
		}

		out.Arms = append(out.Arms, lowered)
	}

	return out, nil
}

// lowerArm lowers one match arm. Pattern bindings are visible to the guard
// and body only.
func (l *Lowerer) lowerArm(arm *ast.MatchArm, scrutinee hir.Type) (*hir.MatchArm, error) {
	defer l.enter(arm)()
	defer l.saveScope()()

	pat, err := l.lowerPattern(arm.Pattern, scrutinee)
	if err != nil {
		return nil, err
	}
	out := &hir.MatchArm{Pattern: pat}

	if arm.Guard != nil {
		if out.Guard, err = l.lowerExpr(arm.Guard); err != nil {
			return nil, err
		}
		if err := l.ensureBool(out.Guard.GetType(), "match guard"); err != nil {
			return nil, err
		}
	}

	if out.Body, err = l.lowerExpr(arm.Body); err != nil {
		return nil, err
	}
	return out, nil
}

// lowerLambda types a lambda. Unannotated parameters take the type the
// call site expects, or i32.
func (l *Lowerer) lowerLambda(e *ast.Lambda) (hir.Expr, error) {
	expected := l.tc.CurrentLambdaParamTypes()

	defer l.saveScope()()

	params := make([]*hir.Param, len(e.Params))
	fields := make([]hir.Field, len(e.Params))
	for i, p := range e.Params {
		var pt hir.Type = hir.I32
		switch {
		case p.Type != nil:
			t, err := l.lowerType(p.Type)
			if err != nil {
				return nil, err
			}
			pt = t
		case i < len(expected) && expected[i] != nil:
			pt = expected[i]
		}

		params[i] = &hir.Param{Name: p.Name, Type: pt}
		fields[i] = hir.Field{Name: p.Name, Type: pt}
		l.vars[p.Name] = pt
	}

	var body hir.Expr
	err := l.tc.WithLambdaParamTypes(nil, func() error {
		var err error
		body, err = l.lowerExpr(e.Body)
		return err
	})
	if err != nil {
		return nil, err
	}

	return &hir.Lambda{
		Params: params,
		Body:   body,
		Type:   hir.FuncType(fields, body.GetType()),
		Span:   e.Span,
	}, nil
}

// =============================================================================
// Arrays and loops
// =============================================================================

func (l *Lowerer) lowerArray(e *ast.ArrayLiteral) (hir.Expr, error) {
	out := &hir.ArrayLit{Span: e.Span}

	var elem hir.Type = hir.Auto
	for i, x := range e.Elems {
		v, err := l.lowerExpr(x)
		if err != nil {
			return nil, err
		}

		if i == 0 {
			elem = v.GetType()
		} else {
			restore := l.enter(x)
			err := l.ensureCompatible(v.GetType(), elem, fmt.Sprintf("array element %d", i+1))
			restore()
			if err != nil {
				return nil, err
			}
		}

		out.Elems = append(out.Elems, v)
	}

	out.Type = hir.Array(elem)
	return out, nil
}

// elementType returns the element type of an iterable.
func (l *Lowerer) elementType(iterable hir.Expr) (hir.Type, error) {
	arr, ok := iterable.GetType().(*hir.ArrayType)
	if !ok {
		return nil, l.errorf(aerrors.CodeTypeMismatch, "Iterable expression must be an array, got %s", describe(iterable.GetType()))
	}
	return arr.Elem, nil
}

func (l *Lowerer) lowerIterable(e ast.Expr) (hir.Expr, hir.Type, error) {
	iterable, err := l.lowerExpr(e)
	if err != nil {
		return nil, nil, err
	}

	defer l.enter(e)()
	elem, err := l.elementType(iterable)
	if err != nil {
		return nil, nil, err
	}
	return iterable, elem, nil
}

func (l *Lowerer) lowerComprehension(e *ast.ListComprehension) (hir.Expr, error) {
	defer l.saveScope()()

	out := &hir.ListComp{Span: e.Span}
	for _, g := range e.Generators {
		iterable, elem, err := l.lowerIterable(g.Iterable)
		if err != nil {
			return nil, err
		}
		l.vars[g.Var] = elem
		out.Generators = append(out.Generators, &hir.Generator{Var: g.Var, VarType: elem, Iterable: iterable})
	}

	for _, f := range e.Filters {
		cond, err := l.lowerExpr(f)
		if err != nil {
			return nil, err
		}
		restore := l.enter(f)
		err = l.ensureBool(cond.GetType(), "comprehension filter")
		restore()
		if err != nil {
			return nil, err
		}
		out.Filters = append(out.Filters, cond)
	}

	output, err := l.lowerExpr(e.Output)
	if err != nil {
		return nil, err
	}
	out.Output = output
	out.ElemType = output.GetType()
	out.Type = hir.Array(output.GetType())

	return out, nil
}

func (l *Lowerer) lowerFor(e *ast.ForLoop) (hir.Expr, error) {
	iterable, elem, err := l.lowerIterable(e.Iterable)
	if err != nil {
		return nil, err
	}

	defer l.saveScope()()
	l.vars[e.Var] = elem

	var body hir.Expr
	err = l.withLoop(func() error {
		var err error
		body, err = l.lowerLoopBody(e.Body)
		return err
	})
	if err != nil {
		return nil, err
	}

	return &hir.ForLoop{Var: e.Var, VarType: elem, Iterable: iterable, Body: body, Span: e.Span}, nil
}

func (l *Lowerer) lowerWhile(e *ast.WhileLoop) (hir.Expr, error) {
	cond, err := l.lowerExpr(e.Cond)
	if err != nil {
		return nil, err
	}
	if err := l.ensureBool(cond.GetType(), "while condition"); err != nil {
		return nil, err
	}

	var body hir.Expr
	err = l.withLoop(func() error {
		var err error
		body, err = l.lowerLoopBody(e.Body)
		return err
	})
	if err != nil {
		return nil, err
	}

	return &hir.WhileLoop{Cond: cond, Body: body, Span: e.Span}, nil
}

// lowerLoopBody lowers a loop body, which need not end in an expression.
func (l *Lowerer) lowerLoopBody(body ast.Expr) (hir.Expr, error) {
	if b, ok := body.(*ast.Block); ok {
		defer l.enter(b)()
		return l.lowerBlock(b, false)
	}
	return l.lowerExpr(body)
}

// =============================================================================
// Blocks
// =============================================================================

// lowerBlock lowers a braced block. With requireValue the block must end in
// an expression, which becomes its result. Otherwise every element is
// lowered as a statement and the block has type void.
func (l *Lowerer) lowerBlock(b *ast.Block, requireValue bool) (hir.Expr, error) {
	defer l.saveScope()()

	out := &hir.BlockExpr{Type: hir.Void, Span: b.Span}
	if len(b.Stmts) == 0 {
		if requireValue {
			return nil, l.errorf(aerrors.CodeMalformed, "Block must end with an expression")
		}
		return out, nil
	}

	last := len(b.Stmts) - 1
	tail, isExpr := b.Stmts[last].(*ast.ExprStmt)
	if !isExpr || !requireValue {
		isExpr = false
		last++
	}

	stmts, err := l.lowerStmts(b.Stmts[:last])
	if err != nil {
		return nil, err
	}
	out.Stmts = stmts

	if isExpr {
		result, err := l.lowerExpr(tail.X)
		if err != nil {
			return nil, err
		}
		out.Result = result
		out.Type = result.GetType()
	}

	return out, nil
}

func (l *Lowerer) lowerBlockExpr(b *ast.BlockExpr) (hir.Expr, error) {
	defer l.saveScope()()

	stmts, err := l.lowerStmts(b.Stmts)
	if err != nil {
		return nil, err
	}

	result, err := l.lowerExpr(b.Result)
	if err != nil {
		return nil, err
	}

	return &hir.BlockExpr{Stmts: stmts, Result: result, Type: result.GetType(), Span: b.Span}, nil
}

// lowerDo lowers do ... end. The last element is the result unless it is
// statement shaped, in which case the block yields the void value.
func (l *Lowerer) lowerDo(d *ast.DoExpr) (hir.Expr, error) {
	if len(d.Body) == 0 {
		return hir.VoidValue(d.Span), nil
	}

	defer l.saveScope()()

	last := len(d.Body) - 1
	stmts, err := l.lowerStmts(d.Body[:last])
	if err != nil {
		return nil, err
	}

	out := &hir.BlockExpr{Stmts: stmts, Span: d.Span}

	if es, ok := d.Body[last].(*ast.ExprStmt); ok && !isWhile(es.X) {
		result, err := l.lowerExpr(es.X)
		if err != nil {
			return nil, err
		}
		out.Result = result
		out.Type = result.GetType()
		return out, nil
	}

	tail, err := l.lowerStmts(d.Body[last:])
	if err != nil {
		return nil, err
	}
	out.Stmts = append(out.Stmts, tail...)
	out.Result = hir.VoidValue(d.Span)
	out.Type = hir.Void

	return out, nil
}

func isWhile(e ast.Expr) bool {
	_, ok := e.(*ast.WhileLoop)
	return ok
}
