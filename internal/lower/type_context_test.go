package lower

import (
	"errors"
	"testing"

	"github.com/aurora-lang/aurora/internal/hir"
)

func TestTypeContextNesting(t *testing.T) {
	tc := NewTypeContext()
	outer := []*hir.TypeParam{{Name: "T"}}
	inner := []*hir.TypeParam{{Name: "U", Constraint: "Numeric"}}

	err := tc.WithTypeParams(outer, func() error {
		if _, ok := tc.TypeParam("T"); !ok {
			t.Fatalf("T should be active")
		}

		return tc.WithTypeParams(inner, func() error {
			if _, ok := tc.TypeParam("T"); ok {
				t.Fatalf("only the innermost parameters are active")
			}
			tp, ok := tc.TypeParam("U")
			if !ok || tp.Constraint != "Numeric" {
				t.Fatalf("U should be active with its constraint, got %+v", tp)
			}
			return nil
		})
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if tc.CurrentTypeParams() != nil {
		t.Fatalf("no parameters should be active after the outermost scope")
	}
}

func TestTypeContextPopsOnError(t *testing.T) {
	tc := NewTypeContext()
	boom := errors.New("boom")

	err := tc.WithFunctionReturn(hir.I32, func() error {
		return tc.WithLambdaParamTypes([]hir.Type{hir.F32}, func() error {
			if got := tc.CurrentLambdaParamTypes(); len(got) != 1 || got[0] != hir.F32 {
				t.Fatalf("lambda parameter types not visible: %v", got)
			}
			if tc.CurrentFunctionReturn() != hir.I32 {
				t.Fatalf("function return not visible")
			}
			return boom
		})
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected the callback error, got %v", err)
	}

	tp, lp, ret := tc.Depth()
	if tp != 0 || lp != 0 || ret != 0 {
		t.Fatalf("stacks not empty after error: %d %d %d", tp, lp, ret)
	}
	if tc.CurrentFunctionReturn() != nil {
		t.Fatalf("no function return outside a function")
	}
}
