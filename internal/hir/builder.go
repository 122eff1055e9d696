package hir

// Shared primitive types. They are never mutated, so a single instance of
// each is handed out.
var (
	I32   Type = &PrimType{Name: "i32"}
	F32   Type = &PrimType{Name: "f32"}
	Bool  Type = &PrimType{Name: "bool"}
	Void  Type = &PrimType{Name: "void"}
	Str   Type = &PrimType{Name: "string"}
	Regex Type = &PrimType{Name: "regex"}
	Auto  Type = &PrimType{Name: "auto"}
)

// Prim returns the primitive type called name.
func Prim(name string) Type {
	switch name {
	case "i32":
		return I32
	case "f32":
		return F32
	case "bool":
		return Bool
	case "void":
		return Void
	case "string":
		return Str
	case "regex":
		return Regex
	case "auto":
		return Auto
	}
	return &PrimType{Name: name}
}

// Record returns a record type.
func Record(name string, fields []Field) *RecordType {
	return &RecordType{Name: name, Fields: fields}
}

// Sum returns a sum type.
func Sum(name string, variants []Variant) *SumType {
	return &SumType{Name: name, Variants: variants}
}

// Array returns elem[].
func Array(elem Type) *ArrayType {
	return &ArrayType{Elem: elem}
}

// Generic returns base<args...>.
func Generic(base Type, args ...Type) *GenericType {
	return &GenericType{Base: base, Args: args}
}

// FuncType returns a function type.
func FuncType(params []Field, ret Type) *FunctionType {
	return &FunctionType{Params: params, Ret: ret}
}

// FuncOf returns a function type with unnamed parameters.
func FuncOf(ret Type, params ...Type) *FunctionType {
	fields := make([]Field, len(params))
	for i, p := range params {
		fields[i] = Field{Type: p}
	}
	return &FunctionType{Params: fields, Ret: ret}
}

// TypeVar returns a type variable.
func TypeVar(name, constraint string) *TypeVariable {
	return &TypeVariable{Name: name, Constraint: constraint}
}

// Opaque returns an opaque type.
func Opaque(name string) *OpaqueType {
	return &OpaqueType{Name: name}
}

// IsVoid reports whether t is the void type.
func IsVoid(t Type) bool {
	return t != nil && t.Kind() == TypeKindPrimitive && t.TypeName() == "void"
}
