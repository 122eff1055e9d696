package parser

import (
	"github.com/aurora-lang/aurora/internal/ast"
	"github.com/aurora-lang/aurora/internal/lexer"
)

// bodyTerminators end a function body statement sequence.
var bodyTerminators = map[lexer.TokenType]bool{
	lexer.TokenFn:       true,
	lexer.TokenTypeDecl: true,
	lexer.TokenExport:   true,
	lexer.TokenExtern:   true,
	lexer.TokenImport:   true,
	lexer.TokenModule:   true,
	lexer.TokenEOF:      true,
	lexer.TokenRBrace:   true,
}

// parseStatement parses one statement and reports whether a trailing ';'
// was consumed.
func (p *Parser) parseStatement() (ast.Stmt, bool, error) {
	start := p.current()

	var (
		stmt ast.Stmt
		err  error
	)
	switch {
	case p.at(lexer.TokenLet):
		stmt, err = p.parseVariableDecl()
	case p.at(lexer.TokenReturn):
		stmt, err = p.parseReturn()
	case p.at(lexer.TokenBreak):
		p.advance()
		stmt = &ast.Break{Span: p.spanFrom(start)}
	case p.at(lexer.TokenContinue):
		p.advance()
		stmt = &ast.Continue{Span: p.spanFrom(start)}
	case p.at(lexer.TokenIdentifier) && p.peekAt(1).Type == lexer.TokenAssign:
		stmt, err = p.parseAssignment()
	default:
		var x ast.Expr
		x, err = p.parseExpression()
		if err == nil {
			stmt = &ast.ExprStmt{Span: p.spanFrom(start), X: x}
		}
	}
	if err != nil {
		return nil, false, err
	}

	return stmt, p.accept(lexer.TokenSemicolon), nil
}

// parseVariableDecl parses let [mut] name [: type] = value
func (p *Parser) parseVariableDecl() (*ast.VariableDecl, error) {
	start := p.advance()
	decl := &ast.VariableDecl{Mutable: p.accept(lexer.TokenMut)}

	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	decl.Name = name

	if p.accept(lexer.TokenColon) {
		typ, err := p.parseType()
		if err != nil {
			return nil, err
		}
		decl.Type = typ
	}

	if _, err := p.expect(lexer.TokenAssign); err != nil {
		return nil, err
	}
	value, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	decl.Value = value
	decl.Span = p.spanFrom(start)
	return decl, nil
}

func (p *Parser) parseReturn() (*ast.Return, error) {
	start := p.advance()
	switch p.current().Type {
	case lexer.TokenSemicolon, lexer.TokenRBrace, lexer.TokenEnd, lexer.TokenEOF:
		return &ast.Return{Span: p.spanFrom(start)}, nil
	}
	value, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	return &ast.Return{Span: p.spanFrom(start), Value: value}, nil
}

func (p *Parser) parseAssignment() (*ast.Assignment, error) {
	start := p.advance()
	target := &ast.VarRef{Span: p.spanFrom(start), Name: start.Literal}
	if _, err := p.expect(lexer.TokenAssign); err != nil {
		return nil, err
	}
	value, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	return &ast.Assignment{Span: p.spanFrom(start), Target: target, Value: value}, nil
}

// endsWithBlock reports whether the last consumed token closes a block, in
// which case the next statement needs no separating ';'.
func (p *Parser) endsWithBlock() bool {
	switch p.previous().Type {
	case lexer.TokenRBrace, lexer.TokenEnd:
		return true
	}
	return false
}

// parseFunctionBody parses the statement sequence after '=' in a function
// declaration. A lone expression is returned as is; a sequence ending in an
// expression becomes a BlockExpr with that expression as its result.
func (p *Parser) parseFunctionBody() (ast.Expr, error) {
	start := p.current()
	var stmts []ast.Stmt

	for {
		stmt, semi, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)

		if bodyTerminators[p.current().Type] {
			break
		}
		if !semi && !p.endsWithBlock() {
			break
		}
	}

	if len(stmts) == 1 {
		if es, ok := stmts[0].(*ast.ExprStmt); ok {
			return es.X, nil
		}
	}
	if last, ok := stmts[len(stmts)-1].(*ast.ExprStmt); ok {
		return &ast.BlockExpr{Span: p.spanFrom(start), Stmts: stmts[:len(stmts)-1], Result: last.X}, nil
	}
	return &ast.Block{Span: p.spanFrom(start), Stmts: stmts}, nil
}

// parseStatementsUntil parses statements separated by optional ';' until
// the closing token, which is consumed.
func (p *Parser) parseStatementsUntil(closeTok lexer.TokenType) ([]ast.Stmt, error) {
	var stmts []ast.Stmt
	for !p.at(closeTok) {
		if p.atEOF() {
			_, err := p.expect(closeTok)
			return nil, err
		}
		if p.accept(lexer.TokenSemicolon) {
			continue
		}
		stmt, _, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
	p.advance()
	return stmts, nil
}

// parseBlock parses { stmt* }
func (p *Parser) parseBlock() (*ast.Block, error) {
	start, err := p.expect(lexer.TokenLBrace)
	if err != nil {
		return nil, err
	}
	stmts, err := p.parseStatementsUntil(lexer.TokenRBrace)
	if err != nil {
		return nil, err
	}
	return &ast.Block{Span: p.spanFrom(start), Stmts: stmts}, nil
}

// parseDoExpression parses do stmt* end
func (p *Parser) parseDoExpression() (*ast.DoExpr, error) {
	start, err := p.expect(lexer.TokenDo)
	if err != nil {
		return nil, err
	}
	stmts, err := p.parseStatementsUntil(lexer.TokenEnd)
	if err != nil {
		return nil, err
	}
	return &ast.DoExpr{Span: p.spanFrom(start), Body: stmts}, nil
}
