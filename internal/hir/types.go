// Package hir defines the typed intermediate representation produced by the
// lowering pass. Every expression carries a resolved, non-nil type, so a
// backend consuming a Module never re-infers anything.
package hir

import (
	"strings"
)

// TypeKind classifies a Type.
type TypeKind int

const (
	TypeKindPrimitive TypeKind = iota
	TypeKindRecord
	TypeKindSum
	TypeKindArray
	TypeKindGeneric
	TypeKindFunction
	TypeKindVariable
	TypeKindOpaque
)

func (tk TypeKind) String() string {
	switch tk {
	case TypeKindPrimitive:
		return "primitive"
	case TypeKindRecord:
		return "record"
	case TypeKindSum:
		return "sum"
	case TypeKindArray:
		return "array"
	case TypeKindGeneric:
		return "generic"
	case TypeKindFunction:
		return "function"
	case TypeKindVariable:
		return "variable"
	case TypeKindOpaque:
		return "opaque"
	default:
		return "unknown"
	}
}

// Type is a resolved type.
type Type interface {
	// Kind returns the variant of the type.
	Kind() TypeKind
	// TypeName returns the name used when two types are compared. Generic
	// instantiations compare by their base name, arrays as "array" and
	// function types as "function".
	TypeName() string
	// String renders the type in surface syntax.
	String() string
	hirType()
}

// =============================================================================
// Type variants
// =============================================================================

// Field is a named, typed slot of a record, a sum variant or a function
// parameter list.
type Field struct {
	Name string
	Type Type
}

// Variant is one alternative of a sum type.
type Variant struct {
	Name   string
	Fields []Field
}

// PrimType is a primitive or otherwise nominal type referenced by name.
type PrimType struct {
	Name string
}

// RecordType is a named record with ordered fields. Anonymous record
// literals have an empty name until they are matched to a declared type.
type RecordType struct {
	Name   string
	Fields []Field
}

// SumType is a tagged union of variants.
type SumType struct {
	Name     string
	Variants []Variant
}

// ArrayType is a homogeneous array.
type ArrayType struct {
	Elem Type
}

// GenericType is an instantiation Base<Args...>.
type GenericType struct {
	Base Type
	Args []Type
}

// FunctionType is the type of a function value or lambda.
type FunctionType struct {
	Params []Field
	Ret    Type
}

// TypeVariable is a declared type parameter, optionally constrained.
type TypeVariable struct {
	Name       string
	Constraint string
}

// OpaqueType is a type whose representation is hidden, such as a body-less
// library type declaration.
type OpaqueType struct {
	Name string
}

func (t *PrimType) Kind() TypeKind     { return TypeKindPrimitive }
func (t *RecordType) Kind() TypeKind   { return TypeKindRecord }
func (t *SumType) Kind() TypeKind      { return TypeKindSum }
func (t *ArrayType) Kind() TypeKind    { return TypeKindArray }
func (t *GenericType) Kind() TypeKind  { return TypeKindGeneric }
func (t *FunctionType) Kind() TypeKind { return TypeKindFunction }
func (t *TypeVariable) Kind() TypeKind { return TypeKindVariable }
func (t *OpaqueType) Kind() TypeKind   { return TypeKindOpaque }

func (t *PrimType) TypeName() string     { return t.Name }
func (t *RecordType) TypeName() string   { return t.Name }
func (t *SumType) TypeName() string      { return t.Name }
func (t *ArrayType) TypeName() string    { return "array" }
func (t *GenericType) TypeName() string  { return t.Base.TypeName() }
func (t *FunctionType) TypeName() string { return "function" }
func (t *TypeVariable) TypeName() string { return t.Name }
func (t *OpaqueType) TypeName() string   { return t.Name }

func (t *PrimType) hirType()     {}
func (t *RecordType) hirType()   {}
func (t *SumType) hirType()      {}
func (t *ArrayType) hirType()    {}
func (t *GenericType) hirType()  {}
func (t *FunctionType) hirType() {}
func (t *TypeVariable) hirType() {}
func (t *OpaqueType) hirType()   {}

func (t *PrimType) String() string { return t.Name }

func (t *RecordType) String() string {
	if t.Name != "" {
		return t.Name
	}
	return formatFields(t.Fields)
}

func (t *SumType) String() string { return t.Name }

func (t *ArrayType) String() string { return t.Elem.String() + "[]" }

func (t *GenericType) String() string {
	args := make([]string, len(t.Args))
	for i, a := range t.Args {
		args[i] = a.String()
	}
	return t.Base.String() + "<" + strings.Join(args, ", ") + ">"
}

func (t *FunctionType) String() string {
	params := make([]string, len(t.Params))
	for i, p := range t.Params {
		params[i] = p.Type.String()
	}
	return "fn(" + strings.Join(params, ", ") + ") -> " + t.Ret.String()
}

func (t *TypeVariable) String() string { return t.Name }

func (t *OpaqueType) String() string { return t.Name }

func formatFields(fields []Field) string {
	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = f.Name + ": " + f.Type.String()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// Describe renders the full shape of a declared type: record fields and sum
// variants are spelled out instead of being referred to by name.
func Describe(t Type) string {
	switch t := t.(type) {
	case *RecordType:
		return formatFields(t.Fields)
	case *SumType:
		variants := make([]string, len(t.Variants))
		for i, v := range t.Variants {
			variants[i] = v.Name
			if len(v.Fields) > 0 {
				variants[i] += formatFields(v.Fields)
			}
		}
		return strings.Join(variants, " | ")
	case nil:
		return "<nil>"
	default:
		return t.String()
	}
}

// FieldType returns the type of the named field.
func (t *RecordType) FieldType(name string) (Type, bool) {
	for _, f := range t.Fields {
		if f.Name == name {
			return f.Type, true
		}
	}
	return nil, false
}

// FieldNames returns the field names in declaration order.
func (t *RecordType) FieldNames() []string {
	names := make([]string, len(t.Fields))
	for i, f := range t.Fields {
		names[i] = f.Name
	}
	return names
}

// Variant returns the variant with the given name.
func (t *SumType) Variant(name string) (*Variant, bool) {
	for i := range t.Variants {
		if t.Variants[i].Name == name {
			return &t.Variants[i], true
		}
	}
	return nil, false
}
