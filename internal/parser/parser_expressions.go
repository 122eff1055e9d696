package parser

import (
	"strconv"

	"github.com/aurora-lang/aurora/internal/ast"
	"github.com/aurora-lang/aurora/internal/lexer"
)

// Binary precedence, lowest first:
//
//	||  &&  == !=  |>  < > <= >=  + -  * / %
//
// followed by right-associative unary ! - +, postfix member/call/index and
// primary expressions.
type binaryLevel struct {
	ops  map[lexer.TokenType]bool
	next func(*Parser) (ast.Expr, error)
}

func (p *Parser) parseExpression() (ast.Expr, error) {
	return p.parseLogicalOr()
}

func (p *Parser) parseLogicalOr() (ast.Expr, error) {
	return p.parseBinary(binaryLevel{ops: opSet(lexer.TokenOr), next: (*Parser).parseLogicalAnd})
}

func (p *Parser) parseLogicalAnd() (ast.Expr, error) {
	return p.parseBinary(binaryLevel{ops: opSet(lexer.TokenAnd), next: (*Parser).parseEquality})
}

func (p *Parser) parseEquality() (ast.Expr, error) {
	return p.parseBinary(binaryLevel{ops: opSet(lexer.TokenEq, lexer.TokenNotEq), next: (*Parser).parsePipe})
}

func (p *Parser) parsePipe() (ast.Expr, error) {
	return p.parseBinary(binaryLevel{ops: opSet(lexer.TokenPipe), next: (*Parser).parseComparison})
}

func (p *Parser) parseComparison() (ast.Expr, error) {
	return p.parseBinary(binaryLevel{
		ops:  opSet(lexer.TokenLt, lexer.TokenGt, lexer.TokenLe, lexer.TokenGe),
		next: (*Parser).parseAdditive,
	})
}

func (p *Parser) parseAdditive() (ast.Expr, error) {
	return p.parseBinary(binaryLevel{ops: opSet(lexer.TokenPlus, lexer.TokenMinus), next: (*Parser).parseMultiplicative})
}

func (p *Parser) parseMultiplicative() (ast.Expr, error) {
	return p.parseBinary(binaryLevel{
		ops:  opSet(lexer.TokenStar, lexer.TokenSlash, lexer.TokenPercent),
		next: (*Parser).parseUnary,
	})
}

func opSet(types ...lexer.TokenType) map[lexer.TokenType]bool {
	set := make(map[lexer.TokenType]bool, len(types))
	for _, t := range types {
		set[t] = true
	}
	return set
}

// parseBinary parses a left-associative chain of one precedence level.
func (p *Parser) parseBinary(level binaryLevel) (ast.Expr, error) {
	start := p.current()
	left, err := level.next(p)
	if err != nil {
		return nil, err
	}
	for level.ops[p.current().Type] {
		op := p.advance().Literal
		right, err := level.next(p)
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryOp{Span: p.spanFrom(start), Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseUnary() (ast.Expr, error) {
	switch p.current().Type {
	case lexer.TokenBang, lexer.TokenMinus, lexer.TokenPlus:
		start := p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.UnaryOp{Span: p.spanFrom(start), Op: start.Literal, Operand: operand}, nil
	}
	return p.parsePostfix()
}

// parsePostfix parses member access, calls and indexing. A '(' or '[' only
// continues the expression when it is on the same line as the token before
// it, so an expression on the next line is never swallowed as an argument
// list.
func (p *Parser) parsePostfix() (ast.Expr, error) {
	start := p.current()
	expr, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}

	for {
		switch {
		case p.at(lexer.TokenDot):
			p.advance()
			member, err := p.expectIdent()
			if err != nil {
				return nil, err
			}
			expr = &ast.MemberAccess{Span: p.spanFrom(start), Object: expr, Member: member}
		case p.at(lexer.TokenLParen) && p.sameLine():
			p.advance()
			args, err := p.parseArgs()
			if err != nil {
				return nil, err
			}
			expr = &ast.Call{Span: p.spanFrom(start), Callee: expr, Args: args}
		case p.at(lexer.TokenLBracket) && p.sameLine():
			p.advance()
			index, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(lexer.TokenRBracket); err != nil {
				return nil, err
			}
			expr = &ast.IndexAccess{Span: p.spanFrom(start), Object: expr, Index: index}
		default:
			return expr, nil
		}
	}
}

// parseArgs parses call arguments; the opening parenthesis is consumed.
func (p *Parser) parseArgs() ([]ast.Expr, error) {
	var args []ast.Expr
	for !p.at(lexer.TokenRParen) {
		arg, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if !p.accept(lexer.TokenComma) {
			break
		}
	}
	if _, err := p.expect(lexer.TokenRParen); err != nil {
		return nil, err
	}
	return args, nil
}

func (p *Parser) parsePrimary() (ast.Expr, error) {
	tok := p.current()

	switch tok.Type {
	case lexer.TokenInt:
		p.advance()
		v, err := strconv.ParseInt(tok.Literal, 10, 64)
		if err != nil {
			return nil, p.malformed(tok, "Invalid integer literal %s", tok.Literal)
		}
		return &ast.IntLit{Span: p.spanFrom(tok), Value: v}, nil
	case lexer.TokenFloat:
		p.advance()
		v, err := strconv.ParseFloat(tok.Literal, 64)
		if err != nil {
			return nil, p.malformed(tok, "Invalid float literal %s", tok.Literal)
		}
		return &ast.FloatLit{Span: p.spanFrom(tok), Value: v}, nil
	case lexer.TokenString:
		p.advance()
		return &ast.StringLit{Span: p.spanFrom(tok), Value: tok.Literal}, nil
	case lexer.TokenRegex:
		p.advance()
		return &ast.RegexLit{Span: p.spanFrom(tok), Pattern: tok.Literal, Flags: tok.Flags}, nil

	case lexer.TokenIdentifier:
		if p.peekAt(1).Type == lexer.TokenFatArrow {
			return p.parseLambda()
		}
		if p.peekAt(1).Type == lexer.TokenLBrace && p.looksLikeRecordLiteral(1) {
			p.advance()
			return p.parseRecordLiteral(tok, tok.Literal)
		}
		p.advance()
		return &ast.VarRef{Span: p.spanFrom(tok), Name: tok.Literal}, nil

	case lexer.TokenLParen:
		if p.looksLikeLambda() {
			return p.parseLambda()
		}
		p.advance()
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.TokenRParen); err != nil {
			return nil, err
		}
		return expr, nil

	case lexer.TokenLBrace:
		if p.looksLikeRecordLiteral(0) {
			return p.parseRecordLiteral(tok, "")
		}
		return p.parseBlock()

	case lexer.TokenLBracket:
		return p.parseArrayLiteralOrComprehension()
	case lexer.TokenIf:
		return p.parseIfExpression()
	case lexer.TokenMatch:
		return p.parseMatchExpression()
	case lexer.TokenWhile:
		return p.parseWhileLoop()
	case lexer.TokenFor:
		return p.parseForLoop()
	case lexer.TokenDo:
		return p.parseDoExpression()
	}

	return nil, p.unexpected()
}

// looksLikeRecordLiteral inspects the tokens after the '{' found offset
// tokens ahead. Only "IDENT :" starts a record literal. A regex, '_', '}',
// "IDENT =>" and any other identifier start are match arms.
func (p *Parser) looksLikeRecordLiteral(offset int) bool {
	return p.peekAt(offset+1).Type == lexer.TokenIdentifier &&
		p.peekAt(offset+2).Type == lexer.TokenColon
}

// looksLikeLambda scans past the balanced parentheses at the cursor and
// reports whether '=>' follows.
func (p *Parser) looksLikeLambda() bool {
	m := p.mark()
	defer p.reset(m)

	depth := 0
	for !p.atEOF() {
		switch p.advance().Type {
		case lexer.TokenLParen:
			depth++
		case lexer.TokenRParen:
			depth--
			if depth == 0 {
				return p.at(lexer.TokenFatArrow)
			}
		}
	}
	return false
}

// parseLambda parses x => body or (x, y: T) => body.
func (p *Parser) parseLambda() (*ast.Lambda, error) {
	start := p.current()
	var params []*ast.Param

	if p.at(lexer.TokenIdentifier) {
		tok := p.advance()
		params = append(params, &ast.Param{Span: p.spanFrom(tok), Name: tok.Literal})
	} else {
		if _, err := p.expect(lexer.TokenLParen); err != nil {
			return nil, err
		}
		for !p.at(lexer.TokenRParen) {
			pstart := p.current()
			name, err := p.expectIdent()
			if err != nil {
				return nil, err
			}
			param := &ast.Param{Name: name}
			if p.accept(lexer.TokenColon) {
				typ, err := p.parseType()
				if err != nil {
					return nil, err
				}
				param.Type = typ
			}
			param.Span = p.spanFrom(pstart)
			params = append(params, param)
			if !p.accept(lexer.TokenComma) {
				break
			}
		}
		if _, err := p.expect(lexer.TokenRParen); err != nil {
			return nil, err
		}
	}

	if _, err := p.expect(lexer.TokenFatArrow); err != nil {
		return nil, err
	}
	body, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	return &ast.Lambda{Span: p.spanFrom(start), Params: params, Body: body}, nil
}

// parseRecordLiteral parses { name: value, ... } after an optional type
// name. Fields keep their source order.
func (p *Parser) parseRecordLiteral(start lexer.Token, typeName string) (*ast.RecordLit, error) {
	if _, err := p.expect(lexer.TokenLBrace); err != nil {
		return nil, err
	}
	lit := &ast.RecordLit{TypeName: typeName}
	for !p.at(lexer.TokenRBrace) {
		fstart := p.current()
		name, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.TokenColon); err != nil {
			return nil, err
		}
		value, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		lit.Fields = append(lit.Fields, &ast.FieldInit{Span: p.spanFrom(fstart), Name: name, Value: value})
		if !p.accept(lexer.TokenComma) {
			break
		}
	}
	if _, err := p.expect(lexer.TokenRBrace); err != nil {
		return nil, err
	}
	lit.Span = p.spanFrom(start)
	return lit, nil
}

func (p *Parser) parseArrayLiteralOrComprehension() (ast.Expr, error) {
	start := p.advance()

	if p.accept(lexer.TokenRBracket) {
		return &ast.ArrayLiteral{Span: p.spanFrom(start)}, nil
	}

	first, err := p.parseExpression()
	if err != nil {
		return nil, err
	}

	if p.at(lexer.TokenFor) {
		comp := &ast.ListComprehension{Output: first}
		for p.at(lexer.TokenFor) {
			gstart := p.advance()
			name, err := p.expectIdent()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(lexer.TokenIn); err != nil {
				return nil, err
			}
			iterable, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			comp.Generators = append(comp.Generators, &ast.Generator{Span: p.spanFrom(gstart), Var: name, Iterable: iterable})

			for p.accept(lexer.TokenIf) {
				filter, err := p.parseExpression()
				if err != nil {
					return nil, err
				}
				comp.Filters = append(comp.Filters, filter)
			}
		}
		if _, err := p.expect(lexer.TokenRBracket); err != nil {
			return nil, err
		}
		comp.Span = p.spanFrom(start)
		return comp, nil
	}

	elems := []ast.Expr{first}
	for p.accept(lexer.TokenComma) {
		if p.at(lexer.TokenRBracket) {
			break
		}
		elem, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		elems = append(elems, elem)
	}
	if _, err := p.expect(lexer.TokenRBracket); err != nil {
		return nil, err
	}
	return &ast.ArrayLiteral{Span: p.spanFrom(start), Elems: elems}, nil
}

// parseIfExpression parses if cond [then] expr [else expr].
func (p *Parser) parseIfExpression() (*ast.IfExpr, error) {
	start := p.advance()
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	p.accept(lexer.TokenThen)

	then, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	ifExpr := &ast.IfExpr{Cond: cond, Then: then}

	if p.accept(lexer.TokenElse) {
		els, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		ifExpr.Else = els
	}
	ifExpr.Span = p.spanFrom(start)
	return ifExpr, nil
}

// parseLoopBody parses the body of a while or for loop: do ... end or a
// braced block.
func (p *Parser) parseLoopBody() (ast.Expr, error) {
	switch {
	case p.at(lexer.TokenDo):
		return p.parseDoExpression()
	case p.at(lexer.TokenLBrace):
		return p.parseBlock()
	}
	_, err := p.expect(lexer.TokenDo)
	return nil, err
}

func (p *Parser) parseWhileLoop() (*ast.WhileLoop, error) {
	start := p.advance()
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	body, err := p.parseLoopBody()
	if err != nil {
		return nil, err
	}
	return &ast.WhileLoop{Span: p.spanFrom(start), Cond: cond, Body: body}, nil
}

func (p *Parser) parseForLoop() (*ast.ForLoop, error) {
	start := p.advance()
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.TokenIn); err != nil {
		return nil, err
	}
	iterable, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	body, err := p.parseLoopBody()
	if err != nil {
		return nil, err
	}
	return &ast.ForLoop{Span: p.spanFrom(start), Var: name, Iterable: iterable, Body: body}, nil
}
