package parser

import (
	"unicode"
	"unicode/utf8"

	"github.com/aurora-lang/aurora/internal/ast"
	"github.com/aurora-lang/aurora/internal/lexer"
)

// parseMatchExpression parses both surface forms of a match:
//
//	match e { pat => body, pat if guard => body }
//	match e | pat => body | pat => body
//
// Both produce the same MatchExpr shape.
func (p *Parser) parseMatchExpression() (*ast.MatchExpr, error) {
	start := p.advance()
	scrutinee, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	m := &ast.MatchExpr{Scrutinee: scrutinee}

	switch {
	case p.accept(lexer.TokenLBrace):
		for !p.at(lexer.TokenRBrace) {
			arm, err := p.parseMatchArm()
			if err != nil {
				return nil, err
			}
			m.Arms = append(m.Arms, arm)
			if !p.accept(lexer.TokenComma) {
				break
			}
		}
		if _, err := p.expect(lexer.TokenRBrace); err != nil {
			return nil, err
		}
	case p.at(lexer.TokenBar):
		for p.accept(lexer.TokenBar) {
			arm, err := p.parseMatchArm()
			if err != nil {
				return nil, err
			}
			m.Arms = append(m.Arms, arm)
		}
	default:
		_, err := p.expect(lexer.TokenLBrace)
		return nil, err
	}

	m.Span = p.spanFrom(start)
	return m, nil
}

func (p *Parser) parseMatchArm() (*ast.MatchArm, error) {
	start := p.current()
	pat, err := p.parsePattern()
	if err != nil {
		return nil, err
	}

	arm := &ast.MatchArm{Pattern: pat}
	if p.accept(lexer.TokenIf) {
		guard, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		arm.Guard = guard
	}

	if _, err := p.expect(lexer.TokenFatArrow); err != nil {
		return nil, err
	}
	body, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	arm.Body = body
	arm.Span = p.spanFrom(start)
	return arm, nil
}

// parsePattern parses one pattern. An identifier starting with an
// uppercase letter is a constructor, any other identifier binds a variable.
func (p *Parser) parsePattern() (ast.Pattern, error) {
	start := p.current()

	switch start.Type {
	case lexer.TokenInt, lexer.TokenFloat:
		p.advance()
		return &ast.LiteralPattern{Span: p.spanFrom(start), Value: start.Literal, IsFloat: start.Type == lexer.TokenFloat}, nil

	case lexer.TokenMinus:
		next := p.peekAt(1)
		if next.Type != lexer.TokenInt && next.Type != lexer.TokenFloat {
			return nil, p.unexpected()
		}
		p.advance()
		p.advance()
		return &ast.LiteralPattern{Span: p.spanFrom(start), Value: "-" + next.Literal, IsFloat: next.Type == lexer.TokenFloat}, nil

	case lexer.TokenRegex:
		p.advance()
		pat := &ast.RegexPattern{Pattern: start.Literal, Flags: start.Flags}
		if p.accept(lexer.TokenAs) {
			bindings, err := p.parseBindingList(lexer.TokenLBracket, lexer.TokenRBracket)
			if err != nil {
				return nil, err
			}
			pat.Bindings = bindings
		}
		pat.Span = p.spanFrom(start)
		return pat, nil

	case lexer.TokenIdentifier:
		p.advance()
		name := start.Literal
		switch {
		case p.at(lexer.TokenLParen):
			fields, err := p.parseBindingList(lexer.TokenLParen, lexer.TokenRParen)
			if err != nil {
				return nil, err
			}
			return &ast.ConstructorPattern{Span: p.spanFrom(start), Name: name, Fields: fields}, nil
		case p.at(lexer.TokenLBrace):
			fields, err := p.parseBindingList(lexer.TokenLBrace, lexer.TokenRBrace)
			if err != nil {
				return nil, err
			}
			return &ast.ConstructorPattern{Span: p.spanFrom(start), Name: name, Fields: fields, Named: true}, nil
		case name == "_":
			return &ast.WildcardPattern{Span: p.spanFrom(start)}, nil
		case startsUpper(name):
			return &ast.ConstructorPattern{Span: p.spanFrom(start), Name: name}, nil
		default:
			return &ast.VarPattern{Span: p.spanFrom(start), Name: name}, nil
		}
	}

	return nil, p.unexpected()
}

// parseBindingList parses a delimited list of identifiers or '_'.
func (p *Parser) parseBindingList(openTok, closeTok lexer.TokenType) ([]string, error) {
	if _, err := p.expect(openTok); err != nil {
		return nil, err
	}
	names := []string{}
	for !p.at(closeTok) {
		if !p.at(lexer.TokenIdentifier) {
			return nil, p.malformed(p.current(), "Expected identifier or _ in pattern, got %s", p.current().Type)
		}
		names = append(names, p.advance().Literal)
		if !p.accept(lexer.TokenComma) {
			break
		}
	}
	if _, err := p.expect(closeTok); err != nil {
		return nil, err
	}
	return names, nil
}

func startsUpper(name string) bool {
	r, _ := utf8.DecodeRuneInString(name)
	return unicode.IsUpper(r)
}
