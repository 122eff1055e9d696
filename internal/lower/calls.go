package lower

import (
	"fmt"

	"github.com/aurora-lang/aurora/internal/ast"
	aerrors "github.com/aurora-lang/aurora/internal/errors"
	"github.com/aurora-lang/aurora/internal/hir"
	"github.com/aurora-lang/aurora/internal/resolver"
)

const (
	arrayMethods  = "length, size, is_empty, map, filter, fold"
	stringMethods = "split, trim, trim_start, trim_end, upper, lower, is_empty, length"
)

// lookupFunction finds a declared function, then a constructor, then a
// builtin.
func (l *Lowerer) lookupFunction(name string) *funcInfo {
	if info, ok := l.functions[name]; ok {
		return info
	}
	if info, ok := l.constructors[name]; ok {
		return info
	}
	return builtinInfo(name)
}

func builtinInfo(name string) *funcInfo {
	if name == "sqrt" {
		return &funcInfo{name: name, params: []hir.Type{hir.F32}, ret: hir.F32}
	}
	if ret, ok := ioReturnTypes[name]; ok {
		return &funcInfo{name: name, ret: ret, variadic: true}
	}
	return nil
}

func infoFromEntry(entry *resolver.FunctionEntry) *funcInfo {
	info := &funcInfo{
		name:       entry.QualifiedName(),
		ret:        entry.Signature.Ret,
		typeParams: entry.TypeParams,
	}
	for _, p := range entry.Signature.Params {
		info.params = append(info.params, p.Type)
	}
	return info
}

// namespaceMember resolves alias.fn where alias names an imported module
// rather than a variable.
func (l *Lowerer) namespaceMember(m *ast.MemberAccess) (*resolver.FunctionEntry, bool) {
	ref, ok := m.Object.(*ast.VarRef)
	if !ok {
		return nil, false
	}
	if _, shadowed := l.vars[ref.Name]; shadowed {
		return nil, false
	}
	return l.funcs.FetchEntryForMember(ref.Name, m.Member)
}

// opaqueCallee reports whether a call through name targets an import that
// could not be resolved, and so cannot be checked.
func (l *Lowerer) opaqueCallee(callee ast.Expr) (string, bool) {
	switch c := callee.(type) {
	case *ast.VarRef:
		if _, local := l.vars[c.Name]; local {
			return "", false
		}
		if l.opaqueAll || l.opaque[c.Name] {
			return c.Name, true
		}
	case *ast.MemberAccess:
		ref, ok := c.Object.(*ast.VarRef)
		if !ok {
			return "", false
		}
		if _, local := l.vars[ref.Name]; local {
			return "", false
		}
		if l.opaqueAliases[ref.Name] {
			return ref.Name + "::" + c.Member, true
		}
	}
	return "", false
}

// =============================================================================
// Calls
// =============================================================================

type callTarget struct {
	callee hir.Expr
	name   string
	info   *funcInfo
	local  bool
}

func (l *Lowerer) lowerCall(c *ast.Call) (hir.Expr, error) {
	target, err := l.lowerCallee(c.Callee)
	if err != nil {
		return nil, err
	}

	args := make([]hir.Expr, 0, len(c.Args))
	for i, a := range c.Args {
		arg, err := l.lowerArg(a, target, args, i)
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
	}

	typ, err := l.inferCall(target, args)
	if err != nil {
		return nil, err
	}

	return &hir.Call{Callee: target.callee, Args: args, Type: typ, Span: c.Span}, nil
}

func (l *Lowerer) lowerCallee(callee ast.Expr) (*callTarget, error) {
	defer l.enter(callee)()

	if name, ok := l.opaqueCallee(callee); ok {
		l.logger.Debug("%s: call to unresolved %s is unchecked", l.displayName(), name)
		return &callTarget{callee: &hir.Var{Name: name, Type: hir.FuncOf(hir.Auto), Span: callee.GetSpan()}, name: name}, nil
	}

	switch fn := callee.(type) {
	case *ast.VarRef:
		if t, ok := l.vars[fn.Name]; ok {
			return &callTarget{callee: &hir.Var{Name: fn.Name, Type: t, Span: fn.Span}, name: fn.Name, local: true}, nil
		}

		info := l.lookupFunction(fn.Name)
		// Console builtins accept any arguments, even once IO is imported.
		// A function declared in this file keeps its own signature.
		if _, io := ioReturnTypes[fn.Name]; io && (info == nil || info.imported) {
			info = builtinInfo(fn.Name)
		}
		if info == nil {
			return nil, l.errorf(aerrors.CodeUnknownIdentifier, "Unknown function '%s'", fn.Name)
		}
		return &callTarget{callee: &hir.Var{Name: fn.Name, Type: info.signature(), Span: fn.Span}, name: fn.Name, info: info}, nil

	case *ast.MemberAccess:
		if entry, ok := l.namespaceMember(fn); ok {
			info := infoFromEntry(entry)
			return &callTarget{callee: &hir.Var{Name: info.name, Type: info.signature(), Span: fn.Span}, name: info.name, info: info}, nil
		}

		object, err := l.lowerExpr(fn.Object)
		if err != nil {
			return nil, err
		}
		typ, err := l.inferCalleeMember(object.GetType(), fn.Member)
		if err != nil {
			return nil, err
		}
		return &callTarget{callee: &hir.Member{Object: object, Member: fn.Member, Type: typ, Span: fn.Span}, name: fn.Member}, nil
	}

	lowered, err := l.lowerExpr(callee)
	if err != nil {
		return nil, err
	}
	return &callTarget{callee: lowered}, nil
}

// inferCalleeMember types the callee of a method call. Built-in methods of
// arrays and strings are checked by the call itself.
func (l *Lowerer) inferCalleeMember(object hir.Type, member string) (hir.Type, error) {
	if _, ok := object.(*hir.ArrayType); ok || isString(object) {
		return hir.FuncOf(hir.Auto), nil
	}
	return l.inferMember(object, member)
}

// lowerArg lowers argument i. A lambda argument is lowered knowing the
// parameter types its callee will pass it.
func (l *Lowerer) lowerArg(a ast.Expr, target *callTarget, prev []hir.Expr, i int) (hir.Expr, error) {
	if _, ok := a.(*ast.Lambda); !ok {
		return l.lowerExpr(a)
	}

	var arg hir.Expr
	err := l.tc.WithLambdaParamTypes(l.expectedLambdaParams(target, prev, i), func() error {
		var err error
		arg, err = l.lowerExpr(a)
		return err
	})
	return arg, err
}

func (l *Lowerer) expectedLambdaParams(target *callTarget, prev []hir.Expr, i int) []hir.Type {
	if m, ok := target.callee.(*hir.Member); ok {
		arr, ok := m.Object.GetType().(*hir.ArrayType)
		if !ok {
			return nil
		}
		switch {
		case (m.Member == "map" || m.Member == "filter") && i == 0:
			return []hir.Type{arr.Elem}
		case m.Member == "fold" && i == 1 && len(prev) > 0:
			return []hir.Type{prev[0].GetType(), arr.Elem}
		}
		return nil
	}

	var param hir.Type
	switch {
	case target.info != nil && i < len(target.info.params):
		param = target.info.params[i]
	case target.local:
		if ft, ok := target.callee.GetType().(*hir.FunctionType); ok && i < len(ft.Params) {
			param = ft.Params[i].Type
		}
	}

	ft, ok := param.(*hir.FunctionType)
	if !ok {
		return nil
	}

	var b typeBindings
	if target.info != nil && target.info.generic() {
		b, _ = l.inferTypeArguments(target.info.params[:i], exprTypes(prev))
	}

	expected := make([]hir.Type, len(ft.Params))
	for j, p := range ft.Params {
		if t := substitute(p.Type, b); !l.isUnresolved(t) {
			expected[j] = t
		}
	}
	return expected
}

func exprTypes(exprs []hir.Expr) []hir.Type {
	out := make([]hir.Type, len(exprs))
	for i, e := range exprs {
		out[i] = e.GetType()
	}
	return out
}

func (l *Lowerer) inferCall(target *callTarget, args []hir.Expr) (hir.Type, error) {
	switch callee := target.callee.(type) {
	case *hir.Var:
		if target.info != nil {
			return l.applyFunction(target.info, target.name, args)
		}
		if ft, ok := callee.Type.(*hir.FunctionType); ok {
			if target.local {
				return l.applyFunctionValue(ft, fmt.Sprintf("Function '%s'", target.name), target.name, args)
			}
			return ft.Ret, nil
		}

	case *hir.Lambda:
		return l.applyFunctionValue(callee.Type, "Lambda", "lambda", args)

	case *hir.Member:
		return l.inferMethodCall(callee, args)
	}

	if ft, ok := target.callee.GetType().(*hir.FunctionType); ok {
		return l.applyFunctionValue(ft, "Function value", "function value", args)
	}
	if l.isUnresolved(target.callee.GetType()) {
		return hir.Auto, nil
	}

	return nil, l.errorf(aerrors.CodeTypeMismatch, "Cannot call value of type %s", describe(target.callee.GetType()))
}

// applyFunction checks args against a named callable and returns the
// result type, instantiating generic signatures from the arguments.
func (l *Lowerer) applyFunction(info *funcInfo, name string, args []hir.Expr) (hir.Type, error) {
	if info.variadic {
		return info.ret, nil
	}

	params := info.params
	var b typeBindings
	if info.generic() {
		var err error
		if b, err = l.inferTypeArguments(info.params, exprTypes(args)); err != nil {
			return nil, err
		}
		params = make([]hir.Type, len(info.params))
		for i, p := range info.params {
			params[i] = substitute(p, b)
		}
	}

	if len(params) != len(args) {
		return nil, l.errorf(aerrors.CodeArity, "Function '%s' expects %d argument(s), got %d", name, len(params), len(args))
	}

	for i, arg := range args {
		if err := l.ensureCompatible(arg.GetType(), params[i], fmt.Sprintf("argument %d of '%s'", i+1, name)); err != nil {
			return nil, err
		}
	}

	return substitute(info.ret, b), nil
}

// applyFunctionValue checks a call through a lambda or a function-typed
// variable.
func (l *Lowerer) applyFunctionValue(ft *hir.FunctionType, what, argContext string, args []hir.Expr) (hir.Type, error) {
	if len(ft.Params) != len(args) {
		return nil, l.errorf(aerrors.CodeArity, "%s expects %d argument(s), got %d", what, len(ft.Params), len(args))
	}

	for i, arg := range args {
		if err := l.ensureCompatible(arg.GetType(), ft.Params[i].Type, fmt.Sprintf("%s argument %d", argContext, i+1)); err != nil {
			return nil, err
		}
	}

	return ft.Ret, nil
}

func (l *Lowerer) expectArgs(method string, want int, args []hir.Expr) error {
	if len(args) != want {
		return l.errorf(aerrors.CodeArity, "Method '%s' expects %d argument(s), got %d", method, want, len(args))
	}
	return nil
}

// inferMethodCall types a call of a built-in method, or of a function-typed
// record field.
func (l *Lowerer) inferMethodCall(m *hir.Member, args []hir.Expr) (hir.Type, error) {
	object := m.Object.GetType()

	if arr, ok := object.(*hir.ArrayType); ok {
		return l.inferArrayMethod(arr, m.Member, args)
	}

	if isString(object) {
		switch m.Member {
		case "split":
			if err := l.expectArgs(m.Member, 1, args); err != nil {
				return nil, err
			}
			return hir.Array(hir.Str), nil
		case "trim", "trim_start", "trim_end", "upper", "lower":
			if err := l.expectArgs(m.Member, 0, args); err != nil {
				return nil, err
			}
			return hir.Str, nil
		case "is_empty":
			if err := l.expectArgs(m.Member, 0, args); err != nil {
				return nil, err
			}
			return hir.Bool, nil
		case "length":
			if err := l.expectArgs(m.Member, 0, args); err != nil {
				return nil, err
			}
			return hir.I32, nil
		}
		return nil, l.errorf(aerrors.CodeUnknownMember, "Unknown string method '%s'. Supported methods: %s", m.Member, stringMethods)
	}

	if m.Member == "sqrt" && l.isNumeric(object) {
		if err := l.expectArgs(m.Member, 0, args); err != nil {
			return nil, err
		}
		return hir.F32, nil
	}

	if ft, ok := m.Type.(*hir.FunctionType); ok {
		return l.applyFunctionValue(ft, fmt.Sprintf("Field '%s'", m.Member), fmt.Sprintf("field '%s'", m.Member), args)
	}
	if l.isUnresolved(object) {
		return hir.Auto, nil
	}

	return nil, l.errorf(aerrors.CodeUnknownMember, "Unknown member '%s' for type %s", m.Member, describe(object))
}

func (l *Lowerer) inferArrayMethod(arr *hir.ArrayType, method string, args []hir.Expr) (hir.Type, error) {
	switch method {
	case "length", "size":
		if err := l.expectArgs(method, 0, args); err != nil {
			return nil, err
		}
		return hir.I32, nil

	case "is_empty":
		if err := l.expectArgs(method, 0, args); err != nil {
			return nil, err
		}
		return hir.Bool, nil

	case "map":
		if err := l.expectArgs(method, 1, args); err != nil {
			return nil, err
		}
		ft, ok := args[0].GetType().(*hir.FunctionType)
		if !ok || ft.Ret == nil {
			return nil, l.errorf(aerrors.CodeTypeMismatch, "Unable to infer return type of map lambda")
		}
		return hir.Array(ft.Ret), nil

	case "filter":
		if err := l.expectArgs(method, 1, args); err != nil {
			return nil, err
		}
		return arr, nil

	case "fold":
		if err := l.expectArgs(method, 2, args); err != nil {
			return nil, err
		}
		acc := args[0].GetType()
		if acc == nil {
			return nil, l.errorf(aerrors.CodeTypeMismatch, "Unable to determine accumulator type for fold")
		}
		return acc, nil
	}

	return nil, l.errorf(aerrors.CodeUnknownMember, "Unknown array method '%s'. Supported methods: %s", method, arrayMethods)
}

// =============================================================================
// Member access
// =============================================================================

func (l *Lowerer) lowerMember(e *ast.MemberAccess) (hir.Expr, error) {
	if entry, ok := l.namespaceMember(e); ok {
		return &hir.Var{Name: entry.QualifiedName(), Type: entry.Signature, Span: e.Span}, nil
	}

	object, err := l.lowerExpr(e.Object)
	if err != nil {
		return nil, err
	}

	typ, err := l.inferMember(object.GetType(), e.Member)
	if err != nil {
		return nil, err
	}

	return &hir.Member{Object: object, Member: e.Member, Type: typ, Span: e.Span}, nil
}

// inferMember types object.member. Fields of a generic record instance are
// substituted with the instance's arguments.
func (l *Lowerer) inferMember(object hir.Type, member string) (hir.Type, error) {
	t, err := l.inferDeclaredMember(object, member)
	if err != nil {
		return nil, err
	}
	return substitute(t, bindingsFor(l.typeParams[typeName(object)], object)), nil
}

func (l *Lowerer) inferDeclaredMember(object hir.Type, member string) (hir.Type, error) {
	name := typeName(object)

	if l.types.HasType(name) {
		if t, ok := l.types.ResolveMember(name, member); ok {
			return t, nil
		}
	}

	if resolved, ok := l.typeTable[name]; ok && resolved != object {
		return l.inferDeclaredMember(resolved, member)
	}

	switch t := object.(type) {
	case *hir.RecordType:
		if ft, ok := t.FieldType(member); ok {
			return ft, nil
		}
		return nil, l.errorf(aerrors.CodeUnknownField, "Unknown field '%s' for type %s", member, describe(object))

	case *hir.ArrayType:
		switch member {
		case "length", "size":
			return hir.I32, nil
		case "is_empty":
			return hir.Bool, nil
		case "map", "filter", "fold":
			return hir.FuncOf(hir.Auto), nil
		}
		return nil, l.errorf(aerrors.CodeUnknownMember, "Unknown array member '%s'. Known members: %s", member, arrayMethods)
	}

	if isString(object) {
		switch member {
		case "split":
			return hir.FuncOf(hir.Array(hir.Str), hir.Str), nil
		case "trim", "trim_start", "trim_end", "upper", "lower":
			return hir.FuncOf(hir.Str), nil
		case "is_empty":
			return hir.Bool, nil
		case "length":
			return hir.I32, nil
		}
		return nil, l.errorf(aerrors.CodeUnknownMember, "Unknown string member '%s'. Known members: %s", member, stringMethods)
	}

	if member == "sqrt" && l.isNumeric(object) {
		return hir.FuncOf(hir.F32), nil
	}

	if l.isUnresolved(object) {
		return hir.Auto, nil
	}

	return nil, l.errorf(aerrors.CodeUnknownMember, "Unknown member '%s' for type %s", member, describe(object))
}
