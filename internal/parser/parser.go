// Package parser implements the Aurora recursive descent parser.
//
// The parser works over a fully materialised token slice with an integer
// cursor, which makes backtracking a matter of saving and restoring the
// cursor. It stops at the first problem and returns a *errors.SyntaxError;
// there is no error recovery and no partial tree.
package parser

import (
	"github.com/aurora-lang/aurora/internal/ast"
	aerrors "github.com/aurora-lang/aurora/internal/errors"
	"github.com/aurora-lang/aurora/internal/lexer"
	"github.com/aurora-lang/aurora/internal/position"
)

// Parser represents the recursive descent parser
type Parser struct {
	tokens []lexer.Token
	pos    int
}

// New creates a parser over tokens. A trailing EOF token is appended when
// the slice does not already end with one.
func New(tokens []lexer.Token) *Parser {
	if len(tokens) == 0 || tokens[len(tokens)-1].Type != lexer.TokenEOF {
		var eof lexer.Token
		if len(tokens) > 0 {
			eof.Pos = tokens[len(tokens)-1].Pos
		}
		eof.Type = lexer.TokenEOF
		tokens = append(tokens[:len(tokens):len(tokens)], eof)
	}
	return &Parser{tokens: tokens}
}

// Parse parses a complete program from tokens.
func Parse(tokens []lexer.Token) (*ast.Program, error) {
	return New(tokens).ParseProgram()
}

// ParseSource tokenizes and parses source. Positions carry filename.
func ParseSource(filename, source string) (*ast.Program, error) {
	return Parse(lexer.TokenizeFile(filename, source))
}

// ParseExpressionSource parses source as a single expression followed by
// end of input.
func ParseExpressionSource(source string) (ast.Expr, error) {
	p := New(lexer.Tokenize(source))
	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.TokenEOF); err != nil {
		return nil, err
	}
	return expr, nil
}

// ===== Cursor =====

func (p *Parser) current() lexer.Token {
	if p.pos >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[p.pos]
}

// peekAt returns the token offset positions ahead of the cursor.
func (p *Parser) peekAt(offset int) lexer.Token {
	i := p.pos + offset
	if i >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[i]
}

func (p *Parser) previous() lexer.Token {
	if p.pos == 0 {
		return p.tokens[0]
	}
	return p.tokens[p.pos-1]
}

func (p *Parser) at(tt lexer.TokenType) bool {
	return p.current().Type == tt
}

func (p *Parser) atEOF() bool {
	return p.at(lexer.TokenEOF)
}

func (p *Parser) advance() lexer.Token {
	tok := p.current()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}

// accept consumes the current token when it has type tt.
func (p *Parser) accept(tt lexer.TokenType) bool {
	if p.at(tt) {
		p.advance()
		return true
	}
	return false
}

// mark and reset implement backtracking over the token slice.
func (p *Parser) mark() int      { return p.pos }
func (p *Parser) reset(mark int) { p.pos = mark }

// expect consumes a token of type tt or fails with "Expected X, got Y".
func (p *Parser) expect(tt lexer.TokenType) (lexer.Token, error) {
	tok := p.current()
	if tok.Type == tt {
		return p.advance(), nil
	}
	if tok.Type == lexer.TokenEOF {
		return tok, aerrors.NewSyntaxError(aerrors.CodeUnexpectedEOF, tok.Pos,
			"Unexpected end of input, expected %s", tt)
	}
	return tok, aerrors.NewSyntaxError(aerrors.CodeUnexpectedToken, tok.Pos,
		"Expected %s, got %s", tt, tok.Type)
}

func (p *Parser) expectIdent() (string, error) {
	tok, err := p.expect(lexer.TokenIdentifier)
	if err != nil {
		return "", err
	}
	return tok.Literal, nil
}

// unexpected reports the current token as out of place.
func (p *Parser) unexpected() error {
	tok := p.current()
	if tok.Type == lexer.TokenEOF {
		return aerrors.NewSyntaxError(aerrors.CodeUnexpectedEOF, tok.Pos, "Unexpected end of input")
	}
	return aerrors.NewSyntaxError(aerrors.CodeUnexpectedToken, tok.Pos, "Unexpected token: %s", tok)
}

func (p *Parser) malformed(tok lexer.Token, format string, args ...interface{}) error {
	return aerrors.NewSyntaxError(aerrors.CodeMalformed, tok.Pos, format, args...)
}

// spanFrom returns the span from start to the end of the last consumed token.
func (p *Parser) spanFrom(start lexer.Token) position.Span {
	end := p.previous()
	endPos := end.Pos
	endPos.Column += len(end.Literal)
	endPos.Offset += len(end.Literal)
	if p.pos == 0 || endPos.Offset < start.Pos.Offset {
		endPos = start.Pos
	}
	return position.Span{Start: start.Pos, End: endPos}
}

// sameLine reports whether the current token starts on the line where the
// previously consumed token ends.
func (p *Parser) sameLine() bool {
	return p.current().Pos.Line == p.previous().Pos.Line
}
