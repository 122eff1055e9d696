package modules

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"testing/fstest"
	"time"

	aerrors "github.com/aurora-lang/aurora/internal/errors"
)

func testFS(version string) fstest.MapFS {
	return fstest.MapFS{
		ManifestFile: {Data: []byte(`{
  "version": "` + version + `",
  "modules": {
    "Math": {"file": "math.aur", "since": "1.0.0"},
    "Future": {"file": "future.aur", "since": "2.0.0"},
    "Broken": {"file": "broken.aur"}
  }
}`)},
		"math.aur":   {Data: []byte("module Math\nexport extern fn sqrt(x: f32) -> f32\n")},
		"future.aur": {Data: []byte("module Future\n")},
		"broken.aur": {Data: []byte("fn (")},
	}
}

func TestEmbeddedStdlib(t *testing.T) {
	r, err := NewStdlibResolver()
	if err != nil {
		t.Fatalf("NewStdlibResolver failed: %v", err)
	}

	expected := "Collections IO Math Option Result String"
	if got := strings.Join(r.Modules(), " "); got != expected {
		t.Fatalf("Modules mismatch. expected=%q, got=%q", expected, got)
	}
	if r.Version() != "1.2.0" {
		t.Fatalf("Version expected=%q, got=%q", "1.2.0", r.Version())
	}

	for _, name := range r.Modules() {
		src, err := r.Load(context.Background(), name)
		if err != nil {
			t.Fatalf("Load(%s) failed: %v", name, err)
		}
		if src.Program.Module == nil || src.Program.Module.Name != name {
			t.Fatalf("module header of %s does not match its manifest name", name)
		}
		if len(src.Program.Decls) == 0 {
			t.Fatalf("stdlib module %s declares nothing", name)
		}
	}
}

func TestResolve(t *testing.T) {
	r, err := NewStdlibResolver(WithFS(testFS("1.0.0")))
	if err != nil {
		t.Fatalf("NewStdlibResolver failed: %v", err)
	}

	loc, err := r.Resolve("Math")
	if err != nil {
		t.Fatalf("Resolve(Math) failed: %v", err)
	}
	if loc.File != "math.aur" || loc.Namespace != "math" || !loc.Stdlib {
		t.Fatalf("unexpected location %+v", loc)
	}

	if _, err := r.Resolve("Nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Resolve(Nope) expected ErrNotFound, got %v", err)
	}

	// Future is only available from 2.0.0.
	if r.IsKnownModule("Future") {
		t.Fatalf("Future should be hidden in a 1.0.0 stdlib")
	}

	if r.IsKnownModule("./local") {
		t.Fatalf("relative imports need a base directory")
	}
}

func TestVersionConstraint(t *testing.T) {
	tests := []struct {
		constraint string
		version    string
		compatible bool
	}{
		{"^1.0", "1.2.0", true},
		{"~1.1", "1.2.0", false},
		{">=2.0.0", "2.1.0", true},
		{"<1.0.0", "1.0.0", false},
	}

	for _, tt := range tests {
		r, err := NewStdlibResolver(WithFS(testFS(tt.version)), WithConstraint(tt.constraint))
		if err != nil {
			t.Fatalf("NewStdlibResolver(%s) failed: %v", tt.constraint, err)
		}
		if r.Compatible() != tt.compatible {
			t.Fatalf("Compatible(%s, %s). expected=%v, got=%v", tt.constraint, tt.version, tt.compatible, r.Compatible())
		}
		if r.IsKnownModule("Math") != tt.compatible {
			t.Fatalf("Math visibility with %s against %s. expected=%v", tt.constraint, tt.version, tt.compatible)
		}
	}

	if _, err := NewStdlibResolver(WithFS(testFS("1.0.0")), WithConstraint("not a constraint")); err == nil {
		t.Fatalf("expected an error for an invalid constraint")
	}
}

func TestBadManifest(t *testing.T) {
	tests := []fstest.MapFS{
		{},
		{ManifestFile: {Data: []byte("{")}},
		{ManifestFile: {Data: []byte(`{"version": "one", "modules": {}}`)}},
	}

	for i, fsys := range tests {
		if _, err := NewStdlibResolver(WithFS(fsys)); err == nil {
			t.Fatalf("case %d: expected a manifest error", i)
		}
	}
}

func TestLoadCachesAndCollapses(t *testing.T) {
	r, err := NewStdlibResolver(WithFS(testFS("1.0.0")))
	if err != nil {
		t.Fatalf("NewStdlibResolver failed: %v", err)
	}

	var wg sync.WaitGroup
	results := make([]*Source, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			src, err := r.Load(context.Background(), "Math")
			if err != nil {
				t.Errorf("Load failed: %v", err)
				return
			}
			results[i] = src
		}(i)
	}
	wg.Wait()

	for _, src := range results {
		if src != results[0] {
			t.Fatalf("concurrent loads returned different sources")
		}
	}
	if !r.Cached("Math") {
		t.Fatalf("Math should be cached after loading")
	}
}

func TestLoadReportsSyntaxErrors(t *testing.T) {
	r, err := NewStdlibResolver(WithFS(testFS("1.0.0")))
	if err != nil {
		t.Fatalf("NewStdlibResolver failed: %v", err)
	}

	_, err = r.Load(context.Background(), "Broken")
	var syntaxErr *aerrors.SyntaxError
	if !errors.As(err, &syntaxErr) {
		t.Fatalf("expected a SyntaxError, got %v", err)
	}
	if r.Cached("Broken") {
		t.Fatalf("failed loads must not be cached")
	}
}

func TestLoadHonoursContext(t *testing.T) {
	r, err := NewStdlibResolver(WithFS(testFS("1.0.0")))
	if err != nil {
		t.Fatalf("NewStdlibResolver failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := r.Load(ctx, "Math"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestRelativeImports(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "geometry.aur")
	if err := os.WriteFile(file, []byte("export fn area(w: f32, h: f32) -> f32 = w * h\n"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	r, err := NewStdlibResolver(WithFS(testFS("1.0.0")), WithBaseDir(dir))
	if err != nil {
		t.Fatalf("NewStdlibResolver failed: %v", err)
	}

	if !r.IsKnownModule("./geometry") {
		t.Fatalf("./geometry should resolve next to the importing file")
	}
	if r.IsKnownModule("./missing") {
		t.Fatalf("./missing should not resolve")
	}

	src, err := r.Load(context.Background(), "./geometry")
	if err != nil {
		t.Fatalf("Load(./geometry) failed: %v", err)
	}
	if src.Namespace != "geometry" || src.Stdlib || src.File != file {
		t.Fatalf("unexpected location %+v", src.Location)
	}
	if len(src.Program.Decls) != 1 {
		t.Fatalf("expected 1 declaration, got %d", len(src.Program.Decls))
	}
}

func TestForDirSharesCacheByFile(t *testing.T) {
	root := t.TempDir()
	sub := filepath.Join(root, "sub")
	other := filepath.Join(root, "other")
	for _, dir := range []string{sub, other} {
		if err := os.Mkdir(dir, 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
	}
	if err := os.WriteFile(filepath.Join(root, "util.aur"), []byte("export fn one() -> i32 = 1\n"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if err := os.WriteFile(filepath.Join(sub, "util.aur"), []byte("export fn two() -> i32 = 2\nexport fn three() -> i32 = 3\n"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	base, err := NewStdlibResolver(WithFS(testFS("1.0.0")))
	if err != nil {
		t.Fatalf("NewStdlibResolver failed: %v", err)
	}
	fromRoot := base.ForDir(root)
	fromSub := base.ForDir(sub)
	fromOther := base.ForDir(other)

	ctx := context.Background()
	rootUtil, err := fromRoot.Load(ctx, "./util")
	if err != nil {
		t.Fatalf("Load from root failed: %v", err)
	}
	subUtil, err := fromSub.Load(ctx, "./util")
	if err != nil {
		t.Fatalf("Load from sub failed: %v", err)
	}
	if len(rootUtil.Program.Decls) != 1 || len(subUtil.Program.Decls) != 2 {
		t.Fatalf("same import path in different directories must not collide: got %d and %d declarations",
			len(rootUtil.Program.Decls), len(subUtil.Program.Decls))
	}

	if !fromOther.Cached("../util") {
		t.Fatalf("../util from %s names a file already loaded from %s", other, root)
	}
	again, err := fromOther.Load(ctx, "../util")
	if err != nil {
		t.Fatalf("Load from other failed: %v", err)
	}
	if again.Program != rootUtil.Program {
		t.Fatalf("expected the cached parse to be reused")
	}
	if again.Path != "../util" || rootUtil.Path != "./util" {
		t.Fatalf("paths should be reported as written, got %q and %q", again.Path, rootUtil.Path)
	}
	if _, err := base.Load(ctx, "Math"); err != nil {
		t.Fatalf("Load(Math) failed: %v", err)
	}
	if !fromSub.Cached("Math") {
		t.Fatalf("views should share the stdlib cache")
	}
}

func TestEditedModuleIsReloaded(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "shapes.aur")
	if err := os.WriteFile(file, []byte("export fn a() -> i32 = 1\n"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	r, err := NewStdlibResolver(WithFS(testFS("1.0.0")), WithBaseDir(dir))
	if err != nil {
		t.Fatalf("NewStdlibResolver failed: %v", err)
	}

	first, err := r.Load(context.Background(), "./shapes")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if err := os.WriteFile(file, []byte("export fn a() -> i32 = 1\nexport fn b() -> i32 = 2\n"), 0o644); err != nil {
		t.Fatalf("rewrite fixture: %v", err)
	}
	later := time.Now().Add(time.Hour)
	if err := os.Chtimes(file, later, later); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	if r.Cached("./shapes") {
		t.Fatalf("an edited module should not be reported as cached")
	}
	second, err := r.Load(context.Background(), "./shapes")
	if err != nil {
		t.Fatalf("Load after edit failed: %v", err)
	}
	if second == first || len(second.Program.Decls) != 2 {
		t.Fatalf("expected the edited module to be parsed again, got %d declarations", len(second.Program.Decls))
	}
}
