// Package lower turns a parsed Aurora program into the typed IR. It resolves
// names, infers and checks types, instantiates generics, desugars pipes and
// statement-shaped control flow, validates loop jumps and returns, and tags
// functions with their inferred effects.
//
// Lowering is fatal on the first error: Lower returns a *errors.CompileError
// located at the most specific node being processed and no module.
package lower

import (
	"context"

	"github.com/aurora-lang/aurora/internal/ast"
	"github.com/aurora-lang/aurora/internal/cli"
	aerrors "github.com/aurora-lang/aurora/internal/errors"
	"github.com/aurora-lang/aurora/internal/hir"
	"github.com/aurora-lang/aurora/internal/modules"
	"github.com/aurora-lang/aurora/internal/position"
	"github.com/aurora-lang/aurora/internal/resolver"
)

// Option configures a Lowerer.
type Option func(*Lowerer)

// WithResolver sets the resolver used to load imported modules. Without one
// imports are recorded but contribute no signatures.
func WithResolver(r modules.Resolver) Option {
	return func(l *Lowerer) { l.modules = r }
}

// WithTypeRegistry shares an existing type registry.
func WithTypeRegistry(tr *resolver.TypeRegistry) Option {
	return func(l *Lowerer) { l.types = tr }
}

// WithFunctionRegistry shares an existing function registry.
func WithFunctionRegistry(fr *resolver.FunctionRegistry) Option {
	return func(l *Lowerer) { l.funcs = fr }
}

// WithLogger enables debug logging of the passes.
func WithLogger(logger *cli.Logger) Option {
	return func(l *Lowerer) { l.logger = logger }
}

// WithFilename names the file being lowered in log output.
func WithFilename(name string) Option {
	return func(l *Lowerer) { l.filename = name }
}

// funcInfo is the declared signature of something callable. A variadic
// builtin accepts any arguments. Imported functions came from another
// module's exports.
type funcInfo struct {
	name       string
	params     []hir.Type
	fields     []string
	ret        hir.Type
	typeParams []*hir.TypeParam
	variadic   bool
	imported   bool
}

func (fi *funcInfo) generic() bool { return len(fi.typeParams) > 0 }

// signature returns the function type of fi with parameters arg0, arg1, ...
func (fi *funcInfo) signature() *hir.FunctionType {
	params := make([]hir.Field, len(fi.params))
	for i, p := range fi.params {
		params[i] = hir.Field{Name: argName(i), Type: p}
	}
	return hir.FuncType(params, fi.ret)
}

// Lowerer lowers programs. A Lowerer is not safe for concurrent use; its
// registries may be read by other goroutines once Lower returns.
type Lowerer struct {
	types    *resolver.TypeRegistry
	funcs    *resolver.FunctionRegistry
	modules  modules.Resolver
	logger   *cli.Logger
	filename string

	ctx          context.Context
	tc           *TypeContext
	vars         map[string]hir.Type
	typeTable    map[string]hir.Type
	typeDecls    map[string]*ast.TypeDecl
	typeParams   map[string][]*hir.TypeParam
	functions    map[string]*funcInfo
	constructors map[string]*funcInfo
	nodes        []ast.Node
	loopDepth    int

	// Names brought in by imports that could not be resolved. Calls
	// through them are accepted unchecked.
	opaque        map[string]bool
	opaqueAliases map[string]bool
	opaqueAll     bool
}

// New creates a Lowerer. Registries not supplied through options are
// created fresh.
func New(opts ...Option) *Lowerer {
	l := &Lowerer{}
	for _, opt := range opts {
		opt(l)
	}

	if l.types == nil {
		l.types = resolver.NewTypeRegistry()
	}
	if l.funcs == nil {
		l.funcs = resolver.NewFunctionRegistry()
	}

	return l
}

// Lower lowers prog with a fresh Lowerer and returns the module together
// with the registries it populated.
func Lower(prog *ast.Program, opts ...Option) (*hir.Module, *resolver.TypeRegistry, *resolver.FunctionRegistry, error) {
	l := New(opts...)

	mod, err := l.Lower(prog)
	if err != nil {
		return nil, nil, nil, err
	}

	return mod, l.types, l.funcs, nil
}

// TypeRegistry returns the type registry the Lowerer populates.
func (l *Lowerer) TypeRegistry() *resolver.TypeRegistry { return l.types }

// FunctionRegistry returns the function registry the Lowerer populates.
func (l *Lowerer) FunctionRegistry() *resolver.FunctionRegistry { return l.funcs }

// Lower lowers prog.
func (l *Lowerer) Lower(prog *ast.Program) (*hir.Module, error) {
	return l.LowerContext(context.Background(), prog)
}

// LowerContext lowers prog. ctx bounds the loading of imported modules.
func (l *Lowerer) LowerContext(ctx context.Context, prog *ast.Program) (*hir.Module, error) {
	l.reset(ctx)

	st := &passState{program: prog, module: &hir.Module{Name: "main"}}
	if prog.Module != nil {
		st.module.Name = prog.Module.Name
	}

	for _, p := range l.passes() {
		l.logger.Debug("%s: pass %s", l.displayName(), p.name)

		if err := p.run(st); err != nil {
			return nil, err
		}
	}

	st.module.Items = append(st.module.Items, st.typeItems...)
	st.module.Items = append(st.module.Items, st.funcItems...)

	return st.module, nil
}

func (l *Lowerer) reset(ctx context.Context) {
	l.ctx = ctx
	l.tc = NewTypeContext()
	l.vars = make(map[string]hir.Type)
	l.typeTable = make(map[string]hir.Type)
	l.typeDecls = make(map[string]*ast.TypeDecl)
	l.typeParams = make(map[string][]*hir.TypeParam)
	l.functions = make(map[string]*funcInfo)
	l.constructors = make(map[string]*funcInfo)
	l.nodes = l.nodes[:0]
	l.loopDepth = 0
	l.opaque = make(map[string]bool)
	l.opaqueAliases = make(map[string]bool)
	l.opaqueAll = false
}

func (l *Lowerer) displayName() string {
	if l.filename == "" {
		return "<input>"
	}
	return l.filename
}

// =============================================================================
// Passes
// =============================================================================

type passState struct {
	program   *ast.Program
	module    *hir.Module
	typeItems []hir.Item
	funcItems []hir.Item
}

type pass struct {
	name string
	run  func(*passState) error
}

func (l *Lowerer) passes() []pass {
	return []pass{
		{"collect-imports", l.collectImports},
		{"preregister-types", l.preregisterTypes},
		{"preregister-functions", l.preregisterFunctions},
		{"lower-declarations", l.lowerDeclarations},
	}
}

// preregisterTypes lowers every type declaration up front so that function
// signatures and bodies may refer to types declared later in the file.
func (l *Lowerer) preregisterTypes(st *passState) error {
	for _, decl := range st.program.Decls {
		td, ok := decl.(*ast.TypeDecl)
		if !ok {
			continue
		}

		params, err := l.lowerTypeParams(td.TypeParams)
		if err != nil {
			return err
		}
		l.typeDecls[td.Name] = td
		l.typeParams[td.Name] = params
	}

	for _, decl := range st.program.Decls {
		td, ok := decl.(*ast.TypeDecl)
		if !ok {
			continue
		}

		item, err := l.lowerTypeDecl(td, "")
		if err != nil {
			return err
		}

		st.typeItems = append(st.typeItems, item)
	}

	return nil
}

func (l *Lowerer) preregisterFunctions(st *passState) error {
	for _, decl := range st.program.Decls {
		fd, ok := decl.(*ast.FuncDecl)
		if !ok {
			continue
		}

		if _, err := l.registerFunction(fd, ""); err != nil {
			return err
		}
	}

	return nil
}

func (l *Lowerer) lowerDeclarations(st *passState) error {
	for _, decl := range st.program.Decls {
		fd, ok := decl.(*ast.FuncDecl)
		if !ok {
			continue
		}

		fn, err := l.lowerFunction(fd)
		if err != nil {
			return err
		}

		l.funcs.SetEffects(fn.Name, fn.Effects)
		st.funcItems = append(st.funcItems, fn)
	}

	return nil
}

// =============================================================================
// Errors and the current node
// =============================================================================

// enter pushes n as the node errors are reported against. Call the result to
// pop it.
func (l *Lowerer) enter(n ast.Node) func() {
	l.nodes = append(l.nodes, n)
	return func() { l.nodes = l.nodes[:len(l.nodes)-1] }
}

// span returns the span of the innermost node that has one.
func (l *Lowerer) span() position.Span {
	for i := len(l.nodes) - 1; i >= 0; i-- {
		if s := l.nodes[i].GetSpan(); s.IsValid() {
			return s
		}
	}
	return position.Span{}
}

func (l *Lowerer) errorf(code aerrors.Code, format string, args ...interface{}) error {
	return aerrors.NewCompileError(code, l.span(), format, args...)
}

// errorAt reports against n, falling back to the current node.
func (l *Lowerer) errorAt(n ast.Node, code aerrors.Code, format string, args ...interface{}) error {
	defer l.enter(n)()
	return l.errorf(code, format, args...)
}

// =============================================================================
// Scope
// =============================================================================

// saveScope snapshots the variable scope. Call the result to restore it.
func (l *Lowerer) saveScope() func() {
	saved := make(map[string]hir.Type, len(l.vars))
	for k, v := range l.vars {
		saved[k] = v
	}
	return func() { l.vars = saved }
}

// withLoop runs fn one loop level deeper.
func (l *Lowerer) withLoop(fn func() error) error {
	l.loopDepth++
	defer func() { l.loopDepth-- }()

	return fn()
}
