package lower

import (
	"strings"

	"github.com/aurora-lang/aurora/internal/ast"
	aerrors "github.com/aurora-lang/aurora/internal/errors"
	"github.com/aurora-lang/aurora/internal/hir"
)

// collectImports records every import on the module and registers the
// signatures of the exported declarations it brings in. Imported bodies are
// not lowered.
func (l *Lowerer) collectImports(st *passState) error {
	for _, imp := range st.program.Imports {
		rec := &hir.Import{Path: imp.Path, Alias: imp.Alias}
		if !imp.Wildcard {
			rec.Items = imp.Items
		}
		st.module.Imports = append(st.module.Imports, rec)

		if err := l.importModule(imp); err != nil {
			return err
		}
	}
	return nil
}

type exportedDecls struct {
	types     []*ast.TypeDecl
	funcs     []*ast.FuncDecl
	typeNames map[string]*ast.TypeDecl
	funcNames map[string]*ast.FuncDecl
	variants  map[string]*ast.TypeDecl
}

func exportsOf(prog *ast.Program) *exportedDecls {
	ex := &exportedDecls{
		typeNames: make(map[string]*ast.TypeDecl),
		funcNames: make(map[string]*ast.FuncDecl),
		variants:  make(map[string]*ast.TypeDecl),
	}
	for _, decl := range prog.Decls {
		switch d := decl.(type) {
		case *ast.TypeDecl:
			if !d.Exported {
				continue
			}
			ex.types = append(ex.types, d)
			ex.typeNames[d.Name] = d
			for _, v := range variantNames(d.Type) {
				ex.variants[v] = d
			}
		case *ast.FuncDecl:
			if d.Exported || d.External {
				ex.funcs = append(ex.funcs, d)
				ex.funcNames[d.Name] = d
			}
		}
	}
	return ex
}

func (l *Lowerer) importModule(imp *ast.ImportDecl) error {
	defer l.enter(imp)()

	if l.modules == nil || !l.modules.IsKnownModule(imp.Path) {
		l.logger.Debug("%s: import %q not resolved, its names are unchecked", l.displayName(), imp.Path)
		l.markOpaque(imp)
		return nil
	}

	src, err := l.modules.Load(l.ctx, imp.Path)
	if err != nil {
		return aerrors.WrapCompileError(err, aerrors.CodeUnknownImport, l.span(), "Cannot load module '%s'", imp.Path)
	}

	ns := src.Namespace
	ex := exportsOf(src.Program)

	if !strings.HasPrefix(imp.Path, ".") {
		l.funcs.RegisterAlias(imp.Path, ns)
	}
	if imp.Alias != "" {
		l.funcs.RegisterAlias(imp.Alias, ns)
	}

	if imp.Wildcard {
		for _, td := range ex.types {
			if err := l.importType(td, ns); err != nil {
				return err
			}
		}
		for _, fd := range ex.funcs {
			if _, err := l.registerFunction(fd, ns); err != nil {
				return err
			}
		}
		l.logger.Debug("%s: imported %d type(s) and %d function(s) from %s", l.displayName(), len(ex.types), len(ex.funcs), imp.Path)
		return nil
	}

	for _, item := range imp.Items {
		td, ok := ex.typeNames[item]
		if !ok {
			td, ok = ex.variants[item]
		}
		if ok {
			if err := l.importType(td, ns); err != nil {
				return err
			}
		}
	}
	for _, item := range imp.Items {
		if fd, ok := ex.funcNames[item]; ok {
			if _, err := l.registerFunction(fd, ns); err != nil {
				return err
			}
			continue
		}
		_, isType := ex.typeNames[item]
		_, isVariant := ex.variants[item]
		if !isType && !isVariant {
			return l.errorf(aerrors.CodeUnknownImport, "Unknown item '%s' in import '%s'", item, imp.Path)
		}
	}

	return nil
}

// variantNames lists the constructors a type declaration introduces.
func variantNames(t ast.TypeExpr) []string {
	switch t := t.(type) {
	case *ast.SumType:
		names := make([]string, len(t.Variants))
		for i, v := range t.Variants {
			names[i] = v.Name
		}
		return names
	case *ast.EnumType:
		return t.Variants
	}
	return nil
}

func (l *Lowerer) importType(td *ast.TypeDecl, ns string) error {
	if _, ok := l.typeTable[td.Name]; ok {
		return nil
	}
	_, err := l.lowerTypeDecl(td, ns)
	return err
}

func (l *Lowerer) markOpaque(imp *ast.ImportDecl) {
	if imp.Alias != "" {
		l.opaqueAliases[imp.Alias] = true
	}
	if imp.Wildcard {
		if !strings.HasPrefix(imp.Path, ".") {
			l.opaqueAliases[imp.Path] = true
		}
		l.opaqueAll = true
		return
	}
	for _, item := range imp.Items {
		l.opaque[item] = true
	}
}
