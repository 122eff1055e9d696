package lower

import (
	"github.com/aurora-lang/aurora/internal/hir"
)

// inferEffects tags a function body. Every lowered function is noexcept;
// bodies built only from pure expressions are also constexpr.
func inferEffects(body hir.Expr) []hir.Effect {
	var effects []hir.Effect
	if isPure(body) {
		effects = append(effects, hir.EffectPure)
	}
	return append(effects, hir.EffectNoThrow)
}

// isPure treats calls as pure and anything that loops, matches, branches
// or allocates a closure or array as impure.
func isPure(e hir.Expr) bool {
	switch e := e.(type) {
	case *hir.Literal, *hir.RegexLit, *hir.Var, *hir.Call:
		return true
	case *hir.Binary:
		return isPure(e.Left) && isPure(e.Right)
	case *hir.Unary:
		return isPure(e.Operand)
	case *hir.Member:
		return isPure(e.Object)
	case *hir.RecordExpr:
		for _, f := range e.Fields {
			if !isPure(f.Value) {
				return false
			}
		}
		return true
	case *hir.BlockExpr:
		for _, s := range e.Stmts {
			if !isPureStmt(s) {
				return false
			}
		}
		return e.Result == nil || isPure(e.Result)
	}
	return false
}

func isPureStmt(s hir.Stmt) bool {
	switch s := s.(type) {
	case *hir.VarDecl:
		return !s.Mutable && isPure(s.Value)
	case *hir.ExprStmt:
		return isPure(s.X)
	}
	return false
}
