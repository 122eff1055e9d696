// Type and function registries for the Aurora compiler front-end.
// The lowering pass populates them incrementally and consults them for
// member access, constructor calls and stdlib imports.

package resolver

import (
	"sort"
	"sync"

	"github.com/aurora-lang/aurora/internal/hir"
)

// TypeKind classifies a registered type.
type TypeKind int

const (
	TypeKindUnknown TypeKind = iota
	TypeKindPrimitive
	TypeKindRecord
	TypeKindSum
	TypeKindOpaque
)

// String returns the string representation of TypeKind.
func (tk TypeKind) String() string {
	switch tk {
	case TypeKindPrimitive:
		return "primitive"
	case TypeKindRecord:
		return "record"
	case TypeKindSum:
		return "sum"
	case TypeKindOpaque:
		return "opaque"
	default:
		return "unknown"
	}
}

// KindOf derives the registry kind of a lowered type.
func KindOf(t hir.Type) TypeKind {
	switch t.(type) {
	case *hir.PrimType:
		return TypeKindPrimitive
	case *hir.RecordType:
		return TypeKindRecord
	case *hir.SumType:
		return TypeKindSum
	case *hir.OpaqueType:
		return TypeKindOpaque
	default:
		return TypeKindUnknown
	}
}

// TypeInfo describes one named type.
type TypeInfo struct {
	Type      hir.Type
	Name      string
	Namespace string
	Kind      TypeKind
	Exported  bool
}

// QualifiedName returns Namespace::Name, or Name for types without a
// namespace.
func (ti *TypeInfo) QualifiedName() string {
	if ti.Namespace == "" {
		return ti.Name
	}
	return ti.Namespace + "::" + ti.Name
}

// Field returns the named record field.
func (ti *TypeInfo) Field(name string) (hir.Field, bool) {
	if rec, ok := ti.Type.(*hir.RecordType); ok {
		for _, f := range rec.Fields {
			if f.Name == name {
				return f, true
			}
		}
	}
	return hir.Field{}, false
}

// HasVariant reports whether the type is a sum with the named variant.
func (ti *TypeInfo) HasVariant(name string) bool {
	if sum, ok := ti.Type.(*hir.SumType); ok {
		_, found := sum.Variant(name)
		return found
	}
	return false
}

var primitiveNames = []string{"i32", "f32", "bool", "void", "unit", "str", "string", "regex"}

// TypeRegistry is the single source of truth for named types.
// It is safe for concurrent use.
type TypeRegistry struct {
	types      map[string]*TypeInfo
	namespaces map[string][]string
	mu         sync.RWMutex
}

// NewTypeRegistry creates a registry with the primitive types registered.
func NewTypeRegistry() *TypeRegistry {
	tr := &TypeRegistry{
		types:      make(map[string]*TypeInfo),
		namespaces: make(map[string][]string),
	}
	tr.registerPrimitives()

	return tr
}

func (tr *TypeRegistry) registerPrimitives() {
	for _, name := range primitiveNames {
		tr.types[name] = &TypeInfo{Name: name, Type: hir.Prim(name), Kind: TypeKindPrimitive}
	}
}

// Register adds or replaces a type and returns the stored entry.
func (tr *TypeRegistry) Register(info TypeInfo) *TypeInfo {
	tr.mu.Lock()
	defer tr.mu.Unlock()

	entry := &info
	tr.types[info.Name] = entry

	if info.Namespace != "" {
		names := tr.namespaces[info.Namespace]
		for _, n := range names {
			if n == info.Name {
				return entry
			}
		}
		tr.namespaces[info.Namespace] = append(names, info.Name)
	}

	return entry
}

// Lookup returns the type registered under name.
func (tr *TypeRegistry) Lookup(name string) (*TypeInfo, bool) {
	tr.mu.RLock()
	defer tr.mu.RUnlock()

	info, ok := tr.types[name]

	return info, ok
}

// HasType reports whether name is registered.
func (tr *TypeRegistry) HasType(name string) bool {
	_, ok := tr.Lookup(name)
	return ok
}

// ResolveMember returns the type of a record field. Only record types have
// members.
func (tr *TypeRegistry) ResolveMember(typeName, member string) (hir.Type, bool) {
	info, ok := tr.Lookup(typeName)
	if !ok || info.Kind != TypeKindRecord {
		return nil, false
	}

	field, ok := info.Field(member)
	if !ok {
		return nil, false
	}

	return field.Type, true
}

// TypesInNamespace returns the types of ns in registration order.
func (tr *TypeRegistry) TypesInNamespace(ns string) []*TypeInfo {
	tr.mu.RLock()
	defer tr.mu.RUnlock()

	result := make([]*TypeInfo, 0, len(tr.namespaces[ns]))
	for _, name := range tr.namespaces[ns] {
		if info, ok := tr.types[name]; ok {
			result = append(result, info)
		}
	}

	return result
}

// Exported returns the exported types sorted by name.
func (tr *TypeRegistry) Exported() []*TypeInfo {
	var result []*TypeInfo
	for _, info := range tr.Types() {
		if info.Exported {
			result = append(result, info)
		}
	}

	return result
}

// Records returns every registered record type sorted by name.
func (tr *TypeRegistry) Records() []*TypeInfo {
	var result []*TypeInfo
	for _, info := range tr.Types() {
		if info.Kind == TypeKindRecord {
			result = append(result, info)
		}
	}

	return result
}

// Types returns all registered types sorted by name.
func (tr *TypeRegistry) Types() []*TypeInfo {
	tr.mu.RLock()
	defer tr.mu.RUnlock()

	result := make([]*TypeInfo, 0, len(tr.types))
	for _, info := range tr.types {
		result = append(result, info)
	}

	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })

	return result
}

// Clear removes everything except the primitives.
func (tr *TypeRegistry) Clear() {
	tr.mu.Lock()
	defer tr.mu.Unlock()

	tr.types = make(map[string]*TypeInfo)
	tr.namespaces = make(map[string][]string)
	tr.registerPrimitives()
}
