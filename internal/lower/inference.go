package lower

import (
	"fmt"

	aerrors "github.com/aurora-lang/aurora/internal/errors"
	"github.com/aurora-lang/aurora/internal/hir"
)

// builtinConstraints lists the types satisfying each known constraint.
var builtinConstraints = map[string][]string{
	"Numeric": {"i32", "f32", "i64", "f64", "u32", "u64"},
}

var numericPrimitives = map[string]bool{
	"i32": true, "f32": true, "i64": true, "f64": true, "u32": true, "u64": true,
}

// ioReturnTypes are the console builtins. They accept any arguments.
var ioReturnTypes = map[string]hir.Type{
	"print":     hir.I32,
	"println":   hir.I32,
	"eprint":    hir.I32,
	"eprintln":  hir.I32,
	"read_line": hir.Str,
	"input":     hir.Str,
	"to_string": hir.Str,
	"format":    hir.Str,
	"args":      hir.Array(hir.Str),
}

func argName(i int) string { return fmt.Sprintf("arg%d", i) }

// normalizeName treats the two spellings of the string type as one.
func normalizeName(name string) string {
	if name == "str" {
		return "string"
	}
	return name
}

func typeName(t hir.Type) string {
	if t == nil {
		return ""
	}
	return normalizeName(t.TypeName())
}

// describe renders t for error messages.
func describe(t hir.Type) string {
	switch t := t.(type) {
	case nil:
		return "unknown"
	case *hir.PrimType:
		return normalizeName(t.Name)
	default:
		return t.String()
	}
}

func isVoid(t hir.Type) bool { return typeName(t) == "void" }

// isVoidLike also accepts unit, the type of an if without else.
func isVoidLike(t hir.Type) bool {
	name := typeName(t)
	return name == "void" || name == "unit"
}

func isString(t hir.Type) bool { return typeName(t) == "string" }

func isFloat(t hir.Type) bool { return typeName(t) == "f32" }

func isTypeVar(t hir.Type) bool {
	_, ok := t.(*hir.TypeVariable)
	return ok
}

// isActiveParam reports whether name is a generic parameter of the
// declaration being lowered.
func (l *Lowerer) isActiveParam(name string) bool {
	_, ok := l.tc.TypeParam(name)
	return ok
}

// isUnresolved reports whether t is a placeholder that any type satisfies:
// auto, or a type variable left unbound outside its declaration.
func (l *Lowerer) isUnresolved(t hir.Type) bool {
	name := typeName(t)
	if name == "" || name == "auto" {
		return true
	}
	return isTypeVar(t) && !l.isActiveParam(name)
}

// isGenericPlaceholder reports whether checks on t must be deferred until
// it is instantiated.
func (l *Lowerer) isGenericPlaceholder(t hir.Type) bool {
	return isTypeVar(t) || l.isActiveParam(typeName(t))
}

func (l *Lowerer) isNumeric(t hir.Type) bool {
	if isTypeVar(t) {
		return true
	}

	name := typeName(t)
	if numericPrimitives[name] {
		return true
	}

	tp, ok := l.tc.TypeParam(name)
	return ok && tp.Constraint == "Numeric"
}

func satisfiesConstraint(constraint, name string) bool {
	for _, allowed := range builtinConstraints[constraint] {
		if allowed == name {
			return true
		}
	}
	return false
}

// ensureCompatible checks that actual may be used where expected is
// required. Types compare by normalised name only.
func (l *Lowerer) ensureCompatible(actual, expected hir.Type, context string) error {
	if l.isUnresolved(expected) || l.isUnresolved(actual) {
		return nil
	}

	expectedName := typeName(expected)
	if l.isActiveParam(expectedName) {
		return nil
	}

	if typeName(actual) == expectedName {
		return nil
	}

	return l.errorf(aerrors.CodeTypeMismatch, "%s expected %s, got %s", context, describe(expected), describe(actual))
}

func (l *Lowerer) ensureBool(t hir.Type, context string) error {
	if l.isGenericPlaceholder(t) || typeName(t) == "bool" {
		return nil
	}
	return l.errorf(aerrors.CodeTypeMismatch, "%s must be bool, got %s", context, describe(t))
}

func (l *Lowerer) ensureNumeric(t hir.Type, context string) error {
	if l.isGenericPlaceholder(t) || l.isNumeric(t) {
		return nil
	}
	return l.errorf(aerrors.CodeTypeMismatch, "%s must be numeric, got %s", context, describe(t))
}

// combineNumeric returns the result type of arithmetic on left and right.
// There is no implicit widening except to f32.
func (l *Lowerer) combineNumeric(left, right hir.Type) (hir.Type, error) {
	switch {
	case isTypeVar(left) && isTypeVar(right):
		return hir.I32, nil
	case isTypeVar(left):
		return right, nil
	case isTypeVar(right):
		return left, nil
	case typeName(left) == typeName(right):
		return left, nil
	case isFloat(left) || isFloat(right):
		return hir.F32, nil
	}

	return nil, l.errorf(aerrors.CodeTypeMismatch, "Numeric operands must have matching types, got %s and %s", describe(left), describe(right))
}

func (l *Lowerer) inferBinary(op string, left, right hir.Type) (hir.Type, error) {
	switch op {
	case "+":
		if isString(left) && isString(right) {
			return hir.Str, nil
		}
		if l.isNumeric(left) && l.isNumeric(right) {
			return l.combineNumeric(left, right)
		}
		return nil, l.errorf(aerrors.CodeTypeMismatch, "Cannot add %s and %s", describe(left), describe(right))

	case "-", "*", "%":
		if err := l.ensureNumericOperands(op, left, right); err != nil {
			return nil, err
		}
		return l.combineNumeric(left, right)

	case "/":
		if err := l.ensureNumericOperands(op, left, right); err != nil {
			return nil, err
		}
		if isFloat(left) || isFloat(right) {
			return hir.F32, nil
		}
		return hir.I32, nil

	case "==", "!=":
		if err := l.ensureCompatible(left, right, fmt.Sprintf("comparison '%s'", op)); err != nil {
			return nil, err
		}
		return hir.Bool, nil

	case "<", ">", "<=", ">=":
		if err := l.ensureNumericOperands(op, left, right); err != nil {
			return nil, err
		}
		if _, err := l.combineNumeric(left, right); err != nil {
			return nil, err
		}
		return hir.Bool, nil

	case "&&", "||":
		if err := l.ensureBool(left, fmt.Sprintf("left operand of '%s'", op)); err != nil {
			return nil, err
		}
		if err := l.ensureBool(right, fmt.Sprintf("right operand of '%s'", op)); err != nil {
			return nil, err
		}
		return hir.Bool, nil
	}

	return nil, l.errorf(aerrors.CodeMalformed, "Unknown binary operator '%s'", op)
}

func (l *Lowerer) ensureNumericOperands(op string, left, right hir.Type) error {
	if err := l.ensureNumeric(left, fmt.Sprintf("left operand of '%s'", op)); err != nil {
		return err
	}
	return l.ensureNumeric(right, fmt.Sprintf("right operand of '%s'", op))
}

func (l *Lowerer) inferUnary(op string, operand hir.Type) (hir.Type, error) {
	switch op {
	case "!":
		if err := l.ensureBool(operand, "operand of '!'"); err != nil {
			return nil, err
		}
		return hir.Bool, nil
	case "-", "+":
		if err := l.ensureNumeric(operand, fmt.Sprintf("operand of '%s'", op)); err != nil {
			return nil, err
		}
		return operand, nil
	}

	return nil, l.errorf(aerrors.CodeMalformed, "Unknown unary operator '%s'", op)
}

// =============================================================================
// Generic instantiation
// =============================================================================

// typeBindings maps type parameter names to the types they stand for.
type typeBindings map[string]hir.Type

// bindsCompatible is the looser check used when a type variable is bound
// twice: same name, or both numeric.
func (l *Lowerer) bindsCompatible(a, b hir.Type) bool {
	if a == b || typeName(a) == typeName(b) {
		return true
	}
	return l.isNumeric(a) && l.isNumeric(b)
}

// unify walks pattern and concrete in parallel and binds the type variables
// of pattern. Positions missing on the concrete side are skipped.
func (l *Lowerer) unify(pattern, concrete hir.Type, b typeBindings) error {
	if concrete == nil {
		return nil
	}

	switch p := pattern.(type) {
	case *hir.TypeVariable:
		existing, ok := b[p.Name]
		if !ok || (l.isUnresolved(existing) && !l.isUnresolved(concrete)) {
			b[p.Name] = concrete
			return nil
		}
		if l.isUnresolved(concrete) {
			return nil
		}
		if !l.bindsCompatible(existing, concrete) {
			return l.errorf(aerrors.CodeTypeMismatch, "Type variable %s bound to both %s and %s", p.Name, describe(existing), describe(concrete))
		}

	case *hir.GenericType:
		c, ok := concrete.(*hir.GenericType)
		if !ok {
			return nil
		}
		if err := l.unify(p.Base, c.Base, b); err != nil {
			return err
		}
		for i, arg := range p.Args {
			if i >= len(c.Args) {
				break
			}
			if err := l.unify(arg, c.Args[i], b); err != nil {
				return err
			}
		}

	case *hir.ArrayType:
		if c, ok := concrete.(*hir.ArrayType); ok {
			return l.unify(p.Elem, c.Elem, b)
		}

	case *hir.FunctionType:
		c, ok := concrete.(*hir.FunctionType)
		if !ok {
			return nil
		}
		for i, param := range p.Params {
			if i >= len(c.Params) {
				break
			}
			if err := l.unify(param.Type, c.Params[i].Type, b); err != nil {
				return err
			}
		}
		return l.unify(p.Ret, c.Ret, b)
	}

	return nil
}

// inferTypeArguments binds the type variables of params against the
// argument types at the same positions.
func (l *Lowerer) inferTypeArguments(params, args []hir.Type) (typeBindings, error) {
	b := make(typeBindings)
	for i, p := range params {
		if i >= len(args) {
			break
		}
		if err := l.unify(p, args[i], b); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// substitute replaces bound type variables in t, recursing through generic,
// array, function, record and sum shapes. Unchanged subtrees are shared.
func substitute(t hir.Type, b typeBindings) hir.Type {
	if len(b) == 0 {
		return t
	}

	switch t := t.(type) {
	case *hir.TypeVariable:
		if bound, ok := b[t.Name]; ok {
			return bound
		}
		return t

	case *hir.GenericType:
		base := substitute(t.Base, b)
		changed := base != t.Base
		args := make([]hir.Type, len(t.Args))
		for i, a := range t.Args {
			args[i] = substitute(a, b)
			changed = changed || args[i] != a
		}
		if !changed {
			return t
		}
		return hir.Generic(base, args...)

	case *hir.ArrayType:
		if elem := substitute(t.Elem, b); elem != t.Elem {
			return hir.Array(elem)
		}
		return t

	case *hir.FunctionType:
		params, changed := substituteFields(t.Params, b)
		ret := substitute(t.Ret, b)
		if !changed && ret == t.Ret {
			return t
		}
		return hir.FuncType(params, ret)

	case *hir.RecordType:
		if fields, changed := substituteFields(t.Fields, b); changed {
			return hir.Record(t.Name, fields)
		}
		return t

	case *hir.SumType:
		changed := false
		variants := make([]hir.Variant, len(t.Variants))
		for i, v := range t.Variants {
			fields, c := substituteFields(v.Fields, b)
			variants[i] = hir.Variant{Name: v.Name, Fields: fields}
			changed = changed || c
		}
		if !changed {
			return t
		}
		return hir.Sum(t.Name, variants)
	}

	return t
}

func substituteFields(fields []hir.Field, b typeBindings) ([]hir.Field, bool) {
	changed := false
	out := make([]hir.Field, len(fields))
	for i, f := range fields {
		out[i] = hir.Field{Name: f.Name, Type: substitute(f.Type, b)}
		changed = changed || out[i].Type != f.Type
	}
	return out, changed
}

// bindingsFor maps the declared parameters of a generic type to the
// arguments of an instantiation of it, position by position.
func bindingsFor(params []*hir.TypeParam, instance hir.Type) typeBindings {
	g, ok := instance.(*hir.GenericType)
	if !ok {
		return nil
	}

	b := make(typeBindings)
	for i, tp := range params {
		if i >= len(g.Args) {
			break
		}
		b[tp.Name] = g.Args[i]
	}
	return b
}
