package lower

import (
	"github.com/aurora-lang/aurora/internal/ast"
	aerrors "github.com/aurora-lang/aurora/internal/errors"
	"github.com/aurora-lang/aurora/internal/hir"
)

// lowerPattern lowers p against a scrutinee of type scrutinee and binds the
// names it introduces in the current scope.
func (l *Lowerer) lowerPattern(p ast.Pattern, scrutinee hir.Type) (*hir.Pattern, error) {
	defer l.enter(p)()

	switch p := p.(type) {
	case *ast.WildcardPattern:
		return &hir.Pattern{Kind: hir.PatternWildcard}, nil

	case *ast.LiteralPattern:
		return &hir.Pattern{Kind: hir.PatternLiteral, Value: p.Value}, nil

	case *ast.VarPattern:
		out := &hir.Pattern{Kind: hir.PatternVar, Name: p.Name}
		if p.Name != "_" {
			l.vars[p.Name] = scrutinee
			out.Bindings = []string{p.Name}
		}
		return out, nil

	case *ast.RegexPattern:
		out := &hir.Pattern{Kind: hir.PatternRegex, Regex: p.Pattern, Flags: p.Flags, Fields: p.Bindings}
		for _, name := range p.Bindings {
			if name == "_" {
				continue
			}
			l.vars[name] = hir.Str
			out.Bindings = append(out.Bindings, name)
		}
		return out, nil

	case *ast.ConstructorPattern:
		return l.lowerConstructorPattern(p, scrutinee)
	}

	return nil, l.errorf(aerrors.CodeMalformed, "Unsupported pattern %T", p)
}

// lowerConstructorPattern binds the fields of a variant. Field types of a
// generic sum are instantiated from the scrutinee's type arguments.
// Positional fields bind by index, named fields by field name.
func (l *Lowerer) lowerConstructorPattern(p *ast.ConstructorPattern, scrutinee hir.Type) (*hir.Pattern, error) {
	out := &hir.Pattern{Kind: hir.PatternConstructor, Name: p.Name, Fields: p.Fields, Named: p.Named}

	info := l.constructors[p.Name]

	var b typeBindings
	if info != nil && typeName(scrutinee) == typeName(info.ret) {
		b = bindingsFor(info.typeParams, scrutinee)
	}

	for i, name := range p.Fields {
		if name == "_" {
			continue
		}

		var ft hir.Type = hir.Auto
		switch {
		case info == nil:
		case p.Named:
			idx := indexOf(info.fields, name)
			if idx < 0 {
				return nil, l.errorf(aerrors.CodeUnknownField, "Unknown field '%s' for variant %s", name, p.Name)
			}
			ft = substitute(info.params[idx], b)
		case i < len(info.params):
			ft = substitute(info.params[i], b)
		}

		l.vars[name] = ft
		out.Bindings = append(out.Bindings, name)
	}

	return out, nil
}

func indexOf(list []string, s string) int {
	for i, x := range list {
		if x == s {
			return i
		}
	}
	return -1
}
