package lower

import (
	"github.com/aurora-lang/aurora/internal/ast"
	aerrors "github.com/aurora-lang/aurora/internal/errors"
	"github.com/aurora-lang/aurora/internal/hir"
	"github.com/aurora-lang/aurora/internal/resolver"
)

func (l *Lowerer) lowerTypeParams(params []*ast.TypeParam) ([]*hir.TypeParam, error) {
	out := make([]*hir.TypeParam, 0, len(params))
	for _, tp := range params {
		if tp.Constraint != "" {
			if _, ok := builtinConstraints[tp.Constraint]; !ok {
				return nil, l.errorAt(tp, aerrors.CodeUnknownConstraint, "Unknown constraint '%s'", tp.Constraint)
			}
		}

		out = append(out, &hir.TypeParam{Name: tp.Name, Constraint: tp.Constraint})
	}
	return out, nil
}

// lowerType resolves a written type. Names of active type parameters become
// type variables and names of declared types resolve to their definition.
func (l *Lowerer) lowerType(t ast.TypeExpr) (hir.Type, error) {
	if t == nil {
		return hir.Auto, nil
	}

	defer l.enter(t)()

	switch t := t.(type) {
	case *ast.PrimType:
		if tp, ok := l.tc.TypeParam(t.Name); ok {
			return hir.TypeVar(tp.Name, tp.Constraint), nil
		}
		if declared, ok := l.typeTable[t.Name]; ok {
			return declared, nil
		}
		return hir.Prim(t.Name), nil

	case *ast.OpaqueType:
		return hir.Opaque("opaque"), nil

	case *ast.GenericType:
		if base, ok := t.Base.(*ast.PrimType); ok {
			if err := l.validateTypeConstraints(base.Name, t.Args); err != nil {
				return nil, err
			}
		}

		base, err := l.lowerType(t.Base)
		if err != nil {
			return nil, err
		}
		args := make([]hir.Type, len(t.Args))
		for i, a := range t.Args {
			if args[i], err = l.lowerType(a); err != nil {
				return nil, err
			}
		}
		return hir.Generic(base, args...), nil

	case *ast.FunctionType:
		params := make([]hir.Field, len(t.Params))
		for i, p := range t.Params {
			pt, err := l.lowerType(p)
			if err != nil {
				return nil, err
			}
			params[i] = hir.Field{Name: argName(i), Type: pt}
		}
		ret, err := l.lowerType(t.Ret)
		if err != nil {
			return nil, err
		}
		return hir.FuncType(params, ret), nil

	case *ast.RecordType:
		fields, err := l.lowerFields(t.Fields)
		if err != nil {
			return nil, err
		}
		return hir.Record("", fields), nil

	case *ast.SumType:
		variants := make([]hir.Variant, len(t.Variants))
		for i, v := range t.Variants {
			fields, err := l.lowerFields(v.Fields)
			if err != nil {
				return nil, err
			}
			variants[i] = hir.Variant{Name: v.Name, Fields: fields}
		}
		return hir.Sum("", variants), nil

	case *ast.EnumType:
		variants := make([]hir.Variant, len(t.Variants))
		for i, name := range t.Variants {
			variants[i] = hir.Variant{Name: name}
		}
		return hir.Sum("", variants), nil

	case *ast.ArrayType:
		elem, err := l.lowerType(t.Elem)
		if err != nil {
			return nil, err
		}
		return hir.Array(elem), nil
	}

	return nil, l.errorf(aerrors.CodeUnknownType, "Unsupported type %T", t)
}

func (l *Lowerer) lowerFields(fields []*ast.Field) ([]hir.Field, error) {
	out := make([]hir.Field, len(fields))
	for i, f := range fields {
		ft, err := l.lowerType(f.Type)
		if err != nil {
			return nil, err
		}
		out[i] = hir.Field{Name: f.Name, Type: ft}
	}
	return out, nil
}

// validateTypeConstraints checks the arguments of Base<args...> against the
// constraints declared by Base. Only concrete lowercase type names are
// checked; named and generic arguments are accepted.
func (l *Lowerer) validateTypeConstraints(base string, args []ast.TypeExpr) error {
	params, ok := l.typeParams[base]
	if !ok {
		return nil
	}

	for i, tp := range params {
		if i >= len(args) || tp.Constraint == "" {
			continue
		}

		name := concreteTypeName(args[i])
		if name == "" || l.isActiveParam(name) {
			continue
		}

		if !satisfiesConstraint(tp.Constraint, name) {
			return l.errorAt(args[i], aerrors.CodeConstraint, "Type '%s' does not satisfy constraint '%s' for '%s'", name, tp.Constraint, tp.Name)
		}
	}

	return nil
}

func concreteTypeName(t ast.TypeExpr) string {
	p, ok := t.(*ast.PrimType)
	if !ok || p.Name == "" {
		return ""
	}
	if c := p.Name[0]; c >= 'A' && c <= 'Z' {
		return ""
	}
	return p.Name
}

// lowerTypeDecl lowers a type declaration and registers it, together with
// the constructors of a sum type. ns is empty for the program's own types.
func (l *Lowerer) lowerTypeDecl(td *ast.TypeDecl, ns string) (*hir.TypeDecl, error) {
	defer l.enter(td)()

	params, err := l.lowerTypeParams(td.TypeParams)
	if err != nil {
		return nil, err
	}
	l.typeParams[td.Name] = params
	l.typeDecls[td.Name] = td

	var typ hir.Type
	err = l.tc.WithTypeParams(params, func() error {
		if _, ok := td.Type.(*ast.OpaqueType); ok {
			typ = hir.Opaque(td.Name)
			return nil
		}

		lowered, err := l.lowerType(td.Type)
		if err != nil {
			return err
		}

		switch t := lowered.(type) {
		case *hir.RecordType:
			typ = hir.Record(td.Name, t.Fields)
		case *hir.SumType:
			typ = hir.Sum(td.Name, t.Variants)
		default:
			typ = lowered
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	l.typeTable[td.Name] = typ
	l.types.Register(resolver.TypeInfo{
		Name:      td.Name,
		Namespace: ns,
		Type:      typ,
		Kind:      resolver.KindOf(typ),
		Exported:  td.Exported,
	})

	if sum, ok := typ.(*hir.SumType); ok {
		l.registerConstructors(sum, params, ns, td.Exported)
	}

	l.logger.Debug("%s: type %s = %s", l.displayName(), td.Name, hir.Describe(typ))

	return &hir.TypeDecl{
		Name:       td.Name,
		Type:       typ,
		TypeParams: params,
		Exported:   td.Exported,
		Span:       td.Span,
	}, nil
}

// registerConstructors makes every variant of sum callable. Constructors of
// a generic sum are generic functions returning sum<params...>.
func (l *Lowerer) registerConstructors(sum *hir.SumType, params []*hir.TypeParam, ns string, exported bool) {
	var ret hir.Type = sum
	if len(params) > 0 {
		vars := make([]hir.Type, len(params))
		for i, tp := range params {
			vars[i] = hir.TypeVar(tp.Name, tp.Constraint)
		}
		ret = hir.Generic(sum, vars...)
	}

	for _, v := range sum.Variants {
		info := &funcInfo{name: v.Name, ret: ret, typeParams: params}
		for _, f := range v.Fields {
			info.params = append(info.params, f.Type)
			info.fields = append(info.fields, f.Name)
		}

		l.constructors[v.Name] = info
		l.funcs.Register(resolver.FunctionEntry{
			Name:        v.Name,
			Namespace:   ns,
			Signature:   info.signature(),
			TypeParams:  params,
			Exported:    exported,
			Constructor: true,
		})
	}
}

// registerFunction records the declared signature of fd. A name registered
// earlier keeps its first signature.
func (l *Lowerer) registerFunction(fd *ast.FuncDecl, ns string) (*funcInfo, error) {
	// a declaration in this file replaces an imported function of the same name.
	if info, ok := l.functions[fd.Name]; ok && (ns != "" || !info.imported) {
		return info, nil
	}

	defer l.enter(fd)()

	params, err := l.lowerTypeParams(fd.TypeParams)
	if err != nil {
		return nil, err
	}

	info := &funcInfo{name: fd.Name, typeParams: params, imported: ns != ""}
	fields := make([]hir.Field, len(fd.Params))

	err = l.tc.WithTypeParams(params, func() error {
		for i, p := range fd.Params {
			pt, err := l.lowerType(p.Type)
			if err != nil {
				return err
			}
			info.params = append(info.params, pt)
			fields[i] = hir.Field{Name: p.Name, Type: pt}
		}

		ret, err := l.lowerType(fd.RetType)
		if err != nil {
			return err
		}
		info.ret = ret
		return nil
	})
	if err != nil {
		return nil, err
	}

	l.functions[fd.Name] = info
	l.funcs.Register(resolver.FunctionEntry{
		Name:       fd.Name,
		Namespace:  ns,
		Signature:  hir.FuncType(fields, info.ret),
		TypeParams: params,
		Exported:   fd.Exported,
		External:   fd.External,
	})

	return info, nil
}

// lowerFunction lowers fd against its pre-registered signature and infers
// its effects. External functions have no body and no effects.
func (l *Lowerer) lowerFunction(fd *ast.FuncDecl) (*hir.Func, error) {
	defer l.enter(fd)()

	info, err := l.registerFunction(fd, "")
	if err != nil {
		return nil, err
	}

	if len(info.params) != len(fd.Params) {
		return nil, l.errorf(aerrors.CodeArity, "Function '%s' expects %d parameter(s), got %d", fd.Name, len(info.params), len(fd.Params))
	}

	fn := &hir.Func{
		Name:       fd.Name,
		RetType:    info.ret,
		TypeParams: info.typeParams,
		External:   fd.External,
		Exported:   fd.Exported,
		Span:       fd.Span,
	}
	for i, p := range fd.Params {
		fn.Params = append(fn.Params, &hir.Param{Name: p.Name, Type: info.params[i]})
	}

	if fd.External {
		return fn, nil
	}

	defer l.saveScope()()

	err = l.tc.WithTypeParams(info.typeParams, func() error {
		return l.tc.WithFunctionReturn(info.ret, func() error {
			for _, p := range fn.Params {
				l.vars[p.Name] = p.Type
			}

			body, err := l.lowerExpr(fd.Body)
			if err != nil {
				return err
			}
			fn.Body = body

			return l.checkResult(fd, info.ret, body)
		})
	})
	if err != nil {
		return nil, err
	}

	fn.Effects = inferEffects(fn.Body)

	return fn, nil
}

// checkResult validates a function body against the declared return type.
// A body ending in a return statement was already checked by that return.
func (l *Lowerer) checkResult(fd *ast.FuncDecl, ret hir.Type, body hir.Expr) error {
	if isVoid(ret) {
		if !isVoidLike(body.GetType()) {
			return l.errorAt(fd.Body, aerrors.CodeReturn, "function '%s' should not return a value", fd.Name)
		}
		return nil
	}

	if endsInReturn(fd.Body) {
		return nil
	}

	defer l.enter(fd.Body)()
	return l.ensureCompatible(body.GetType(), ret, "function '"+fd.Name+"' result")
}

func endsInReturn(body ast.Expr) bool {
	var stmts []ast.Stmt
	switch b := body.(type) {
	case *ast.Block:
		stmts = b.Stmts
	case *ast.DoExpr:
		stmts = b.Body
	default:
		return false
	}

	if len(stmts) == 0 {
		return false
	}
	_, ok := stmts[len(stmts)-1].(*ast.Return)
	return ok
}
