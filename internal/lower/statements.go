package lower

import (
	"fmt"

	"github.com/aurora-lang/aurora/internal/ast"
	aerrors "github.com/aurora-lang/aurora/internal/errors"
	"github.com/aurora-lang/aurora/internal/hir"
)

// lowerStmts lowers a statement list. Conditionals and loops in statement
// position become statement forms and nested blocks are flattened into the
// list.
func (l *Lowerer) lowerStmts(stmts []ast.Stmt) ([]hir.Stmt, error) {
	var out []hir.Stmt
	for _, s := range stmts {
		lowered, err := l.lowerStmt(s)
		if err != nil {
			return nil, err
		}
		out = append(out, lowered...)
	}
	return out, nil
}

func (l *Lowerer) lowerStmt(s ast.Stmt) ([]hir.Stmt, error) {
	defer l.enter(s)()

	switch s := s.(type) {
	case *ast.ExprStmt:
		return l.lowerExprStmt(s)

	case *ast.VariableDecl:
		decl, err := l.lowerVarDecl(s)
		if err != nil {
			return nil, err
		}
		return []hir.Stmt{decl}, nil

	case *ast.Assignment:
		assign, err := l.lowerAssignment(s)
		if err != nil {
			return nil, err
		}
		return []hir.Stmt{assign}, nil

	case *ast.Return:
		ret, err := l.lowerReturn(s)
		if err != nil {
			return nil, err
		}
		return []hir.Stmt{ret}, nil

	case *ast.Break:
		if l.loopDepth <= 0 {
			return nil, l.errorf(aerrors.CodeLoopControl, "'break' used outside of loop")
		}
		return []hir.Stmt{&hir.Break{Span: s.Span}}, nil

	case *ast.Continue:
		if l.loopDepth <= 0 {
			return nil, l.errorf(aerrors.CodeLoopControl, "'continue' used outside of loop")
		}
		return []hir.Stmt{&hir.Continue{Span: s.Span}}, nil
	}

	return nil, l.errorf(aerrors.CodeMalformed, "Unsupported statement %T", s)
}

func (l *Lowerer) lowerExprStmt(s *ast.ExprStmt) ([]hir.Stmt, error) {
	switch x := s.X.(type) {
	case *ast.IfExpr:
		stmt, err := l.lowerIfStmt(x)
		if err != nil {
			return nil, err
		}
		return []hir.Stmt{stmt}, nil

	case *ast.WhileLoop:
		stmt, err := l.lowerWhileStmt(x)
		if err != nil {
			return nil, err
		}
		return []hir.Stmt{stmt}, nil

	case *ast.ForLoop:
		stmt, err := l.lowerForStmt(x)
		if err != nil {
			return nil, err
		}
		return []hir.Stmt{stmt}, nil

	case *ast.Block:
		block, err := l.lowerStmtBlock(x)
		if err != nil {
			return nil, err
		}
		return block.Stmts, nil
	}

	x, err := l.lowerExpr(s.X)
	if err != nil {
		return nil, err
	}
	return []hir.Stmt{&hir.ExprStmt{X: x, Span: s.Span}}, nil
}

// lowerStmtBlock lowers a branch or loop body in statement position.
// Declarations inside it do not leak out.
func (l *Lowerer) lowerStmtBlock(e ast.Expr) (*hir.Block, error) {
	defer l.enter(e)()
	defer l.saveScope()()

	var stmts []ast.Stmt
	switch b := e.(type) {
	case *ast.Block:
		stmts = b.Stmts
	case *ast.DoExpr:
		stmts = b.Body
	default:
		stmts = []ast.Stmt{&ast.ExprStmt{Span: e.GetSpan(), X: e}}
	}

	lowered, err := l.lowerStmts(stmts)
	if err != nil {
		return nil, err
	}
	return &hir.Block{Stmts: lowered, Span: e.GetSpan()}, nil
}

func (l *Lowerer) lowerIfStmt(e *ast.IfExpr) (*hir.IfStmt, error) {
	defer l.enter(e)()

	cond, err := l.lowerExpr(e.Cond)
	if err != nil {
		return nil, err
	}
	if err := l.ensureBool(cond.GetType(), "if condition"); err != nil {
		return nil, err
	}

	out := &hir.IfStmt{Cond: cond, Span: e.Span}
	if out.Then, err = l.lowerStmtBlock(e.Then); err != nil {
		return nil, err
	}
	if e.Else != nil {
		if out.Else, err = l.lowerStmtBlock(e.Else); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (l *Lowerer) lowerWhileStmt(e *ast.WhileLoop) (*hir.WhileStmt, error) {
	defer l.enter(e)()

	cond, err := l.lowerExpr(e.Cond)
	if err != nil {
		return nil, err
	}
	if err := l.ensureBool(cond.GetType(), "while condition"); err != nil {
		return nil, err
	}

	out := &hir.WhileStmt{Cond: cond, Span: e.Span}
	err = l.withLoop(func() error {
		var err error
		out.Body, err = l.lowerStmtBlock(e.Body)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (l *Lowerer) lowerForStmt(e *ast.ForLoop) (*hir.ForStmt, error) {
	defer l.enter(e)()

	iterable, elem, err := l.lowerIterable(e.Iterable)
	if err != nil {
		return nil, err
	}

	defer l.saveScope()()
	l.vars[e.Var] = elem

	out := &hir.ForStmt{Var: e.Var, VarType: elem, Iterable: iterable, Span: e.Span}
	err = l.withLoop(func() error {
		var err error
		out.Body, err = l.lowerStmtBlock(e.Body)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// lowerVarDecl binds a local. An annotation takes precedence over the
// inferred type, and an anonymous record literal takes the annotated name.
func (l *Lowerer) lowerVarDecl(s *ast.VariableDecl) (*hir.VarDecl, error) {
	var declared hir.Type
	if s.Type != nil {
		t, err := l.lowerType(s.Type)
		if err != nil {
			return nil, err
		}
		declared = t
	}

	var expected []hir.Type
	if ft, ok := declared.(*hir.FunctionType); ok {
		for _, p := range ft.Params {
			expected = append(expected, p.Type)
		}
	}

	var value hir.Expr
	err := l.tc.WithLambdaParamTypes(expected, func() error {
		var err error
		value, err = l.lowerExpr(s.Value)
		return err
	})
	if err != nil {
		return nil, err
	}

	typ := value.GetType()
	if declared != nil {
		if rec, ok := value.(*hir.RecordExpr); ok && rec.TypeName == "" {
			value = &hir.RecordExpr{TypeName: declared.TypeName(), Fields: rec.Fields, Type: declared, Span: rec.Span}
		} else if err := l.ensureCompatible(typ, declared, fmt.Sprintf("variable '%s' initialization", s.Name)); err != nil {
			return nil, err
		}
		typ = declared
	}

	l.vars[s.Name] = typ

	return &hir.VarDecl{Name: s.Name, Type: typ, Value: value, Mutable: s.Mutable, Span: s.Span}, nil
}

func (l *Lowerer) lowerAssignment(s *ast.Assignment) (*hir.Assign, error) {
	existing, ok := l.vars[s.Target.Name]
	if !ok {
		return nil, l.errorf(aerrors.CodeAssignment, "Assignment to undefined variable '%s'", s.Target.Name)
	}

	value, err := l.lowerExpr(s.Value)
	if err != nil {
		return nil, err
	}
	if err := l.ensureCompatible(value.GetType(), existing, fmt.Sprintf("assignment to '%s'", s.Target.Name)); err != nil {
		return nil, err
	}

	return &hir.Assign{
		Target: &hir.Var{Name: s.Target.Name, Type: existing, Span: s.Target.Span},
		Value:  value,
		Span:   s.Span,
	}, nil
}

func (l *Lowerer) lowerReturn(s *ast.Return) (*hir.Return, error) {
	expected := l.tc.CurrentFunctionReturn()
	if expected == nil {
		return nil, l.errorf(aerrors.CodeReturn, "return statement outside of function")
	}

	if s.Value == nil {
		if !isVoid(expected) {
			return nil, l.errorf(aerrors.CodeReturn, "return statement requires a value of type %s", describe(expected))
		}
		return &hir.Return{Span: s.Span}, nil
	}

	if isVoid(expected) {
		return nil, l.errorf(aerrors.CodeReturn, "return value not allowed in void function")
	}

	value, err := l.lowerExpr(s.Value)
	if err != nil {
		return nil, err
	}
	if err := l.ensureCompatible(value.GetType(), expected, "return statement"); err != nil {
		return nil, err
	}

	return &hir.Return{Value: value, Span: s.Span}, nil
}
