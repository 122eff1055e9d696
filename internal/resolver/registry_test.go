package resolver

import (
	"fmt"
	"sync"
	"testing"

	"github.com/aurora-lang/aurora/internal/hir"
)

func TestPrimitivesArePreregistered(t *testing.T) {
	tr := NewTypeRegistry()

	for _, name := range []string{"i32", "f32", "bool", "void", "unit", "str", "string", "regex"} {
		info, ok := tr.Lookup(name)
		if !ok {
			t.Fatalf("primitive %q not registered", name)
		}
		if info.Kind != TypeKindPrimitive {
			t.Fatalf("kind of %q. expected=%s, got=%s", name, TypeKindPrimitive, info.Kind)
		}
	}

	if tr.HasType("Point") {
		t.Fatalf("unexpected type Point in a fresh registry")
	}
}

func TestResolveMember(t *testing.T) {
	tr := NewTypeRegistry()
	point := hir.Record("Point", []hir.Field{{Name: "x", Type: hir.I32}, {Name: "y", Type: hir.F32}})
	tr.Register(TypeInfo{Name: "Point", Type: point, Kind: KindOf(point)})

	shape := hir.Sum("Shape", []hir.Variant{{Name: "Circle", Fields: []hir.Field{{Name: "r", Type: hir.F32}}}})
	tr.Register(TypeInfo{Name: "Shape", Type: shape, Kind: KindOf(shape)})

	tests := []struct {
		typeName string
		member   string
		expected string
		found    bool
	}{
		{"Point", "x", "i32", true},
		{"Point", "y", "f32", true},
		{"Point", "z", "", false},
		{"Shape", "r", "", false},
		{"Missing", "x", "", false},
	}

	for _, tt := range tests {
		typ, ok := tr.ResolveMember(tt.typeName, tt.member)
		if ok != tt.found {
			t.Fatalf("ResolveMember(%s, %s) found. expected=%v, got=%v", tt.typeName, tt.member, tt.found, ok)
		}
		if ok && typ.String() != tt.expected {
			t.Fatalf("ResolveMember(%s, %s). expected=%q, got=%q", tt.typeName, tt.member, tt.expected, typ.String())
		}
	}

	info, _ := tr.Lookup("Shape")
	if !info.HasVariant("Circle") || info.HasVariant("Square") {
		t.Fatalf("HasVariant misreported the variants of Shape")
	}
}

func TestNamespacesAndExports(t *testing.T) {
	tr := NewTypeRegistry()
	tr.Register(TypeInfo{Name: "File", Namespace: "io", Type: hir.Opaque("File"), Kind: TypeKindOpaque, Exported: true})
	tr.Register(TypeInfo{Name: "Buffer", Namespace: "io", Type: hir.Opaque("Buffer"), Kind: TypeKindOpaque})
	tr.Register(TypeInfo{Name: "File", Namespace: "io", Type: hir.Opaque("File"), Kind: TypeKindOpaque, Exported: true})

	in := tr.TypesInNamespace("io")
	if len(in) != 2 || in[0].Name != "File" || in[1].Name != "Buffer" {
		t.Fatalf("TypesInNamespace(io) returned %d entries", len(in))
	}

	info, _ := tr.Lookup("File")
	if got := info.QualifiedName(); got != "io::File" {
		t.Fatalf("QualifiedName expected=%q, got=%q", "io::File", got)
	}

	exported := tr.Exported()
	if len(exported) != 1 || exported[0].Name != "File" {
		t.Fatalf("Exported expected=[File], got %d entries", len(exported))
	}

	tr.Clear()
	if tr.HasType("File") || !tr.HasType("i32") {
		t.Fatalf("Clear should keep only primitives")
	}
}

func TestFunctionRegistry(t *testing.T) {
	fr := NewFunctionRegistry()
	fr.Register(FunctionEntry{Name: "add", Signature: hir.FuncOf(hir.I32, hir.I32, hir.I32)})
	fr.Register(FunctionEntry{Name: "sqrt", Namespace: "math", Signature: hir.FuncOf(hir.F32, hir.F32), External: true})
	fr.RegisterAlias("M", "math")

	if sig, ok := fr.Fetch("add"); !ok || sig.String() != "fn(i32, i32) -> i32" {
		t.Fatalf("Fetch(add) returned %v", sig)
	}
	if _, ok := fr.FetchEntry("math::sqrt"); !ok {
		t.Fatalf("qualified lookup of math::sqrt failed")
	}
	if entry, ok := fr.FetchEntryForMember("M", "sqrt"); !ok || entry.QualifiedName() != "math::sqrt" {
		t.Fatalf("FetchEntryForMember(M, sqrt) failed")
	}
	if _, ok := fr.FetchEntryForMember("math", "sqrt"); !ok {
		t.Fatalf("FetchEntryForMember(math, sqrt) failed")
	}
	if _, ok := fr.FetchEntryForMember("M", "add"); ok {
		t.Fatalf("add has no namespace and should not resolve through M")
	}
	if !fr.IsAlias("M") || fr.IsAlias("math") {
		t.Fatalf("IsAlias misreported aliases")
	}
	if fr.Registered("missing") {
		t.Fatalf("missing should not be registered")
	}

	fr.SetEffects("add", []hir.Effect{hir.EffectPure})
	entry, _ := fr.FetchEntry("add")
	if len(entry.Effects) != 1 || entry.Effects[0] != hir.EffectPure {
		t.Fatalf("SetEffects did not update add")
	}

	names := ""
	for _, e := range fr.Entries() {
		names += e.Name + " "
	}
	if names != "add sqrt " {
		t.Fatalf("Entries order. expected=%q, got=%q", "add sqrt ", names)
	}
}

func TestRegistriesAreSafeForConcurrentUse(t *testing.T) {
	tr := NewTypeRegistry()
	fr := NewFunctionRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			name := fmt.Sprintf("T%d", i)
			tr.Register(TypeInfo{Name: name, Namespace: "ns", Type: hir.Opaque(name), Kind: TypeKindOpaque})
			fr.Register(FunctionEntry{Name: fmt.Sprintf("f%d", i), Signature: hir.FuncOf(hir.Void)})
			_ = tr.Types()
			_ = fr.Entries()
		}(i)
	}
	wg.Wait()

	if got := len(tr.TypesInNamespace("ns")); got != 8 {
		t.Fatalf("namespace size. expected=8, got=%d", got)
	}
	if got := len(fr.Entries()); got != 8 {
		t.Fatalf("function count. expected=8, got=%d", got)
	}
}
