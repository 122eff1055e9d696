package lower

import (
	"github.com/aurora-lang/aurora/internal/hir"
)

// TypeContext tracks the scoped typing state of the lowering pass: the
// generic parameters of the enclosing declaration, the parameter types
// expected by an argument lambda and the return type of the enclosing
// function. Each With method pushes on entry and pops when fn returns, on
// every path.
type TypeContext struct {
	typeParams   [][]*hir.TypeParam
	lambdaParams [][]hir.Type
	returns      []hir.Type
}

// NewTypeContext returns an empty context.
func NewTypeContext() *TypeContext {
	return &TypeContext{}
}

// WithTypeParams runs fn with params as the active generic parameters.
func (tc *TypeContext) WithTypeParams(params []*hir.TypeParam, fn func() error) error {
	tc.typeParams = append(tc.typeParams, params)
	defer func() { tc.typeParams = tc.typeParams[:len(tc.typeParams)-1] }()

	return fn()
}

// WithLambdaParamTypes runs fn with types as the expected parameter types of
// the next lambda. A nil entry means no expectation for that position.
func (tc *TypeContext) WithLambdaParamTypes(types []hir.Type, fn func() error) error {
	tc.lambdaParams = append(tc.lambdaParams, types)
	defer func() { tc.lambdaParams = tc.lambdaParams[:len(tc.lambdaParams)-1] }()

	return fn()
}

// WithFunctionReturn runs fn with ret as the enclosing function's return type.
func (tc *TypeContext) WithFunctionReturn(ret hir.Type, fn func() error) error {
	tc.returns = append(tc.returns, ret)
	defer func() { tc.returns = tc.returns[:len(tc.returns)-1] }()

	return fn()
}

// CurrentTypeParams returns the innermost generic parameters.
func (tc *TypeContext) CurrentTypeParams() []*hir.TypeParam {
	if len(tc.typeParams) == 0 {
		return nil
	}
	return tc.typeParams[len(tc.typeParams)-1]
}

// CurrentLambdaParamTypes returns the innermost expected lambda parameter
// types.
func (tc *TypeContext) CurrentLambdaParamTypes() []hir.Type {
	if len(tc.lambdaParams) == 0 {
		return nil
	}
	return tc.lambdaParams[len(tc.lambdaParams)-1]
}

// CurrentFunctionReturn returns the return type of the enclosing function,
// or nil outside a function.
func (tc *TypeContext) CurrentFunctionReturn() hir.Type {
	if len(tc.returns) == 0 {
		return nil
	}
	return tc.returns[len(tc.returns)-1]
}

// TypeParam returns the active generic parameter called name.
func (tc *TypeContext) TypeParam(name string) (*hir.TypeParam, bool) {
	for _, tp := range tc.CurrentTypeParams() {
		if tp.Name == name {
			return tp, true
		}
	}
	return nil, false
}

// Depth reports the height of each stack, outermost first.
func (tc *TypeContext) Depth() (typeParams, lambdaParams, returns int) {
	return len(tc.typeParams), len(tc.lambdaParams), len(tc.returns)
}
