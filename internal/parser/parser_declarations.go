package parser

import (
	"strings"

	"github.com/aurora-lang/aurora/internal/ast"
	"github.com/aurora-lang/aurora/internal/lexer"
)

// ParseProgram parses an optional module header, imports and top-level
// declarations up to end of input.
func (p *Parser) ParseProgram() (*ast.Program, error) {
	start := p.current()
	prog := &ast.Program{}

	if p.at(lexer.TokenModule) {
		mod, err := p.parseModuleDecl()
		if err != nil {
			return nil, err
		}
		prog.Module = mod
	}

	for !p.atEOF() {
		switch {
		case p.at(lexer.TokenImport):
			imp, err := p.parseImport()
			if err != nil {
				return nil, err
			}
			prog.Imports = append(prog.Imports, imp)
		default:
			decl, err := p.parseDeclaration()
			if err != nil {
				return nil, err
			}
			prog.Decls = append(prog.Decls, decl)
		}
	}

	prog.Span = p.spanFrom(start)
	return prog, nil
}

func (p *Parser) parseModuleDecl() (*ast.ModuleDecl, error) {
	start := p.advance()
	name, err := p.parseModulePath()
	if err != nil {
		return nil, err
	}
	p.accept(lexer.TokenSemicolon)
	return &ast.ModuleDecl{Span: p.spanFrom(start), Name: name}, nil
}

// parseModulePath parses Name(::Name)* and joins the segments with '/'.
// A '::' followed by '{' is left for the selective import form.
func (p *Parser) parseModulePath() (string, error) {
	first, err := p.expectIdent()
	if err != nil {
		return "", err
	}
	segments := []string{first}
	for p.at(lexer.TokenDoubleColon) && p.peekAt(1).Type == lexer.TokenIdentifier {
		p.advance()
		segments = append(segments, p.advance().Literal)
	}
	return strings.Join(segments, "/"), nil
}

// parseImportSource parses the path after 'from': a module path or a
// string literal such as "./math".
func (p *Parser) parseImportSource() (string, error) {
	if p.at(lexer.TokenString) {
		return p.advance().Literal, nil
	}
	return p.parseModulePath()
}

func (p *Parser) parseImport() (*ast.ImportDecl, error) {
	start := p.advance()
	imp := &ast.ImportDecl{}

	switch {
	case p.at(lexer.TokenLBrace):
		items, err := p.parseImportItems()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.TokenFrom); err != nil {
			return nil, err
		}
		path, err := p.parseImportSource()
		if err != nil {
			return nil, err
		}
		imp.Path, imp.Items = path, items

	case p.at(lexer.TokenStar):
		p.advance()
		if _, err := p.expect(lexer.TokenAs); err != nil {
			return nil, err
		}
		alias, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.TokenFrom); err != nil {
			return nil, err
		}
		path, err := p.parseImportSource()
		if err != nil {
			return nil, err
		}
		imp.Path, imp.Wildcard, imp.Alias = path, true, alias

	default:
		path, err := p.parseModulePath()
		if err != nil {
			return nil, err
		}
		imp.Path = path
		if p.at(lexer.TokenDoubleColon) && p.peekAt(1).Type == lexer.TokenLBrace {
			p.advance()
			items, err := p.parseImportItems()
			if err != nil {
				return nil, err
			}
			imp.Items = items
		} else {
			imp.Wildcard = true
		}
	}

	p.accept(lexer.TokenSemicolon)
	imp.Span = p.spanFrom(start)
	return imp, nil
}

// parseImportItems parses { a, b, c }.
func (p *Parser) parseImportItems() ([]string, error) {
	if _, err := p.expect(lexer.TokenLBrace); err != nil {
		return nil, err
	}
	var items []string
	for !p.at(lexer.TokenRBrace) {
		name, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		items = append(items, name)
		if !p.accept(lexer.TokenComma) {
			break
		}
	}
	if _, err := p.expect(lexer.TokenRBrace); err != nil {
		return nil, err
	}
	return items, nil
}

func (p *Parser) parseDeclaration() (ast.Decl, error) {
	start := p.current()
	exported := p.accept(lexer.TokenExport)
	external := p.accept(lexer.TokenExtern)

	switch {
	case p.at(lexer.TokenFn):
		return p.parseFunction(start, exported, external)
	case p.at(lexer.TokenTypeDecl) && !external:
		return p.parseTypeDecl(start, exported)
	}
	return nil, p.unexpected()
}

func (p *Parser) parseFunction(start lexer.Token, exported, external bool) (*ast.FuncDecl, error) {
	if _, err := p.expect(lexer.TokenFn); err != nil {
		return nil, err
	}
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}

	typeParams, err := p.parseOptionalTypeParams()
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(lexer.TokenLParen); err != nil {
		return nil, err
	}
	params, err := p.parseParams()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.TokenRParen); err != nil {
		return nil, err
	}

	if _, err := p.expect(lexer.TokenArrow); err != nil {
		return nil, err
	}
	retType, err := p.parseType()
	if err != nil {
		return nil, err
	}

	fn := &ast.FuncDecl{
		Name:       name,
		TypeParams: typeParams,
		Params:     params,
		RetType:    retType,
		Exported:   exported,
		External:   external,
	}

	if external {
		p.accept(lexer.TokenSemicolon)
		fn.Span = p.spanFrom(start)
		return fn, nil
	}

	if _, err := p.expect(lexer.TokenAssign); err != nil {
		return nil, err
	}
	body, err := p.parseFunctionBody()
	if err != nil {
		return nil, err
	}
	fn.Body = body
	fn.Span = p.spanFrom(start)
	return fn, nil
}

// parseParams parses name: type pairs up to the closing parenthesis.
func (p *Parser) parseParams() ([]*ast.Param, error) {
	var params []*ast.Param
	for !p.at(lexer.TokenRParen) {
		start := p.current()
		name, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.TokenColon); err != nil {
			return nil, err
		}
		typ, err := p.parseType()
		if err != nil {
			return nil, err
		}
		params = append(params, &ast.Param{Span: p.spanFrom(start), Name: name, Type: typ})
		if !p.accept(lexer.TokenComma) {
			break
		}
	}
	return params, nil
}

// parseOptionalTypeParams parses <T, U: Numeric> when present.
func (p *Parser) parseOptionalTypeParams() ([]*ast.TypeParam, error) {
	if !p.accept(lexer.TokenLt) {
		return nil, nil
	}

	var params []*ast.TypeParam
	for {
		start := p.current()
		name, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		tp := &ast.TypeParam{Name: name}
		if p.accept(lexer.TokenColon) {
			if !p.at(lexer.TokenIdentifier) {
				return nil, p.malformed(p.current(), "Expected constraint identifier, got %s", p.current().Type)
			}
			tp.Constraint = p.advance().Literal
		}
		tp.Span = p.spanFrom(start)
		params = append(params, tp)
		if !p.accept(lexer.TokenComma) {
			break
		}
	}

	if _, err := p.expect(lexer.TokenGt); err != nil {
		return nil, err
	}
	return params, nil
}

func (p *Parser) parseTypeDecl(start lexer.Token, exported bool) (*ast.TypeDecl, error) {
	if _, err := p.expect(lexer.TokenTypeDecl); err != nil {
		return nil, err
	}
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	typeParams, err := p.parseOptionalTypeParams()
	if err != nil {
		return nil, err
	}

	decl := &ast.TypeDecl{Name: name, TypeParams: typeParams, Exported: exported}

	if !p.accept(lexer.TokenAssign) {
		p.accept(lexer.TokenSemicolon)
		decl.Type = &ast.OpaqueType{Span: p.spanFrom(start)}
		decl.Span = p.spanFrom(start)
		return decl, nil
	}

	var typ ast.TypeExpr
	switch p.current().Type {
	case lexer.TokenLBrace:
		typ, err = p.parseRecordType()
	case lexer.TokenEnum:
		typ, err = p.parseEnumType()
	case lexer.TokenBar:
		typ, err = p.parseSumType()
	case lexer.TokenIdentifier:
		typ, err = p.parseTypeOrSum()
	default:
		typ, err = p.parseType()
	}
	if err != nil {
		return nil, err
	}

	p.accept(lexer.TokenSemicolon)
	decl.Type = typ
	decl.Span = p.spanFrom(start)
	return decl, nil
}
