package parser

import (
	"fmt"

	"github.com/aurora-lang/aurora/internal/ast"
	"github.com/aurora-lang/aurora/internal/lexer"
)

var primitiveTypeTokens = map[lexer.TokenType]string{
	lexer.TokenI32:  "i32",
	lexer.TokenF32:  "f32",
	lexer.TokenBool: "bool",
	lexer.TokenVoid: "void",
	lexer.TokenStr:  "str",
}

// parseType parses a type reference: a primitive, a named type, a record
// type, a function type, optionally followed by <args> and any number of []
// suffixes.
func (p *Parser) parseType() (ast.TypeExpr, error) {
	start := p.current()

	var base ast.TypeExpr
	switch tok := p.current(); {
	case primitiveTypeTokens[tok.Type] != "":
		p.advance()
		base = &ast.PrimType{Span: p.spanFrom(start), Name: primitiveTypeTokens[tok.Type]}
	case tok.Type == lexer.TokenIdentifier:
		p.advance()
		base = &ast.PrimType{Span: p.spanFrom(start), Name: tok.Literal}
	case tok.Type == lexer.TokenLBrace:
		rec, err := p.parseRecordType()
		if err != nil {
			return nil, err
		}
		base = rec
	case tok.Type == lexer.TokenFn:
		fn, err := p.parseFunctionType()
		if err != nil {
			return nil, err
		}
		base = fn
	default:
		return nil, p.unexpected()
	}

	if p.accept(lexer.TokenLt) {
		var args []ast.TypeExpr
		for {
			arg, err := p.parseType()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if !p.accept(lexer.TokenComma) {
				break
			}
		}
		if _, err := p.expect(lexer.TokenGt); err != nil {
			return nil, err
		}
		base = &ast.GenericType{Span: p.spanFrom(start), Base: base, Args: args}
	}

	for p.at(lexer.TokenLBracket) && p.peekAt(1).Type == lexer.TokenRBracket {
		p.advance()
		p.advance()
		base = &ast.ArrayType{Span: p.spanFrom(start), Elem: base}
	}

	return base, nil
}

// parseFunctionType parses fn(T, U) -> V
func (p *Parser) parseFunctionType() (*ast.FunctionType, error) {
	start := p.advance()
	if _, err := p.expect(lexer.TokenLParen); err != nil {
		return nil, err
	}
	var params []ast.TypeExpr
	for !p.at(lexer.TokenRParen) {
		t, err := p.parseType()
		if err != nil {
			return nil, err
		}
		params = append(params, t)
		if !p.accept(lexer.TokenComma) {
			break
		}
	}
	if _, err := p.expect(lexer.TokenRParen); err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.TokenArrow); err != nil {
		return nil, err
	}
	ret, err := p.parseType()
	if err != nil {
		return nil, err
	}
	return &ast.FunctionType{Span: p.spanFrom(start), Params: params, Ret: ret}, nil
}

// parseFieldList parses name: type entries up to the closing brace. The
// opening brace has already been consumed.
func (p *Parser) parseFieldList() ([]*ast.Field, error) {
	var fields []*ast.Field
	for !p.at(lexer.TokenRBrace) {
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
		fields = append(fields, &ast.Field{Span: p.spanFrom(start), Name: name, Type: typ})
		if !p.accept(lexer.TokenComma) {
			break
		}
	}
	if _, err := p.expect(lexer.TokenRBrace); err != nil {
		return nil, err
	}
	return fields, nil
}

// parseRecordType parses { name: type, ... }
func (p *Parser) parseRecordType() (*ast.RecordType, error) {
	start, err := p.expect(lexer.TokenLBrace)
	if err != nil {
		return nil, err
	}
	fields, err := p.parseFieldList()
	if err != nil {
		return nil, err
	}
	return &ast.RecordType{Span: p.spanFrom(start), Fields: fields}, nil
}

// parseEnumType parses enum { A, B, C }
func (p *Parser) parseEnumType() (*ast.EnumType, error) {
	start := p.advance()
	if _, err := p.expect(lexer.TokenLBrace); err != nil {
		return nil, err
	}
	var variants []string
	for !p.at(lexer.TokenRBrace) {
		name, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		variants = append(variants, name)
		if !p.accept(lexer.TokenComma) {
			break
		}
	}
	if _, err := p.expect(lexer.TokenRBrace); err != nil {
		return nil, err
	}
	return &ast.EnumType{Span: p.spanFrom(start), Variants: variants}, nil
}

// parseSumType parses [|] Variant(T, ...) | Variant { f: T } | Variant ...
// Positional fields are named field0, field1, ...
func (p *Parser) parseSumType() (*ast.SumType, error) {
	start := p.current()
	p.accept(lexer.TokenBar)

	var variants []*ast.Variant
	for {
		vstart := p.current()
		name, err := p.expectIdent()
		if err != nil {
			return nil, err
		}

		var fields []*ast.Field
		switch {
		case p.accept(lexer.TokenLParen):
			for i := 0; !p.at(lexer.TokenRParen); i++ {
				fstart := p.current()
				typ, err := p.parseType()
				if err != nil {
					return nil, err
				}
				fields = append(fields, &ast.Field{Span: p.spanFrom(fstart), Name: fmt.Sprintf("field%d", i), Type: typ})
				if !p.accept(lexer.TokenComma) {
					break
				}
			}
			if _, err := p.expect(lexer.TokenRParen); err != nil {
				return nil, err
			}
		case p.accept(lexer.TokenLBrace):
			fields, err = p.parseFieldList()
			if err != nil {
				return nil, err
			}
		}

		variants = append(variants, &ast.Variant{Span: p.spanFrom(vstart), Name: name, Fields: fields})
		if !p.accept(lexer.TokenBar) {
			break
		}
	}

	return &ast.SumType{Span: p.spanFrom(start), Variants: variants}, nil
}

// parseTypeOrSum decides between a sum type and a plain type reference on
// the right-hand side of a type declaration. It tentatively consumes the
// leading identifier and backtracks either way.
func (p *Parser) parseTypeOrSum() (ast.TypeExpr, error) {
	m := p.mark()
	p.advance()

	isSum := p.at(lexer.TokenLParen) ||
		(p.at(lexer.TokenLBrace) && p.bracedVariantFollowedByBar()) ||
		p.at(lexer.TokenBar)

	p.reset(m)
	if isSum {
		return p.parseSumType()
	}
	return p.parseType()
}

// bracedVariantFollowedByBar scans the balanced braces starting at the
// cursor and reports whether a '|' follows the closing brace.
func (p *Parser) bracedVariantFollowedByBar() bool {
	m := p.mark()
	defer p.reset(m)

	depth := 0
	for !p.atEOF() {
		switch p.advance().Type {
		case lexer.TokenLBrace:
			depth++
		case lexer.TokenRBrace:
			depth--
			if depth == 0 {
				return p.at(lexer.TokenBar)
			}
		}
	}
	return false
}
