// Package lexer implements the Aurora lexical analyzer.
//
// The lexer is deliberately permissive: characters it does not recognise
// are skipped rather than reported, and the token stream always ends with
// a TokenEOF token.
package lexer

import "github.com/aurora-lang/aurora/internal/position"

// Lexer represents the lexical analyzer
type Lexer struct {
	input        string
	filename     string
	position     int  // current position in input (points to current char)
	readPosition int  // current reading position in input (after current char)
	ch           byte // current char under examination
	line         int  // line of ch
	column       int  // column of ch

	last TokenType // type of the previously emitted token
	seen bool      // whether any token has been emitted
}

// New creates a new lexer instance
func New(input string) *Lexer {
	return NewWithFilename(input, "")
}

// NewWithFilename creates a new lexer whose positions carry filename
func NewWithFilename(input, filename string) *Lexer {
	l := &Lexer{
		input:    input,
		filename: filename,
		line:     1,
	}
	l.readChar()
	return l
}

// Tokenize returns the full token stream of source.
func Tokenize(source string) []Token {
	return TokenizeFile("", source)
}

// TokenizeFile is Tokenize with positions attributed to filename.
func TokenizeFile(filename, source string) []Token {
	l := NewWithFilename(source, filename)
	tokens := make([]Token, 0, len(source)/3+1)
	for {
		tok := l.NextToken()
		tokens = append(tokens, tok)
		if tok.Type == TokenEOF {
			return tokens
		}
	}
}

func (l *Lexer) readChar() {
	if l.ch == '\n' {
		l.line++
		l.column = 0
	}
	if l.readPosition >= len(l.input) {
		l.ch = 0
	} else {
		l.ch = l.input[l.readPosition]
	}
	l.position = l.readPosition
	l.readPosition++
	l.column++
}

func (l *Lexer) peekChar() byte {
	if l.readPosition >= len(l.input) {
		return 0
	}
	return l.input[l.readPosition]
}

func (l *Lexer) atEOF() bool {
	return l.position >= len(l.input)
}

func (l *Lexer) currentPosition() position.Position {
	return position.Position{
		Filename: l.filename,
		Line:     l.line,
		Column:   l.column,
		Offset:   l.position,
	}
}

func (l *Lexer) skipWhitespaceAndComments() {
	for !l.atEOF() {
		switch {
		case l.ch == ' ' || l.ch == '\t' || l.ch == '\r' || l.ch == '\n' || l.ch == '\f' || l.ch == '\v':
			l.readChar()
		case l.ch == '/' && l.peekChar() == '/':
			for !l.atEOF() && l.ch != '\n' {
				l.readChar()
			}
		default:
			return
		}
	}
}

// NextToken scans and returns the next token.
func (l *Lexer) NextToken() Token {
	for {
		l.skipWhitespaceAndComments()
		if l.atEOF() {
			return l.emit(Token{Type: TokenEOF, Pos: l.currentPosition()})
		}
		if tok, ok := l.scan(); ok {
			return l.emit(tok)
		}
	}
}

func (l *Lexer) emit(tok Token) Token {
	l.last = tok.Type
	l.seen = true
	return tok
}

// scan reads one token starting at the current character. It returns false
// when the character is not part of the language and was skipped.
func (l *Lexer) scan() (Token, bool) {
	pos := l.currentPosition()
	single := func(tt TokenType) (Token, bool) {
		lit := string(l.ch)
		l.readChar()
		return Token{Type: tt, Literal: lit, Pos: pos}, true
	}
	double := func(tt TokenType) (Token, bool) {
		lit := l.input[l.position : l.position+2]
		l.readChar()
		l.readChar()
		return Token{Type: tt, Literal: lit, Pos: pos}, true
	}

	switch ch := l.ch; {
	case isLetter(ch):
		ident := l.readIdentifier()
		return Token{Type: LookupIdent(ident), Literal: ident, Pos: pos}, true
	case isDigit(ch):
		lit, isFloat := l.readNumber()
		if isFloat {
			return Token{Type: TokenFloat, Literal: lit, Pos: pos}, true
		}
		return Token{Type: TokenInt, Literal: lit, Pos: pos}, true
	case ch == '"':
		return Token{Type: TokenString, Literal: l.readString(), Pos: pos}, true
	}

	next := l.peekChar()
	switch l.ch {
	case '-':
		if next == '>' {
			return double(TokenArrow)
		}
		return single(TokenMinus)
	case '=':
		switch next {
		case '>':
			return double(TokenFatArrow)
		case '=':
			return double(TokenEq)
		}
		return single(TokenAssign)
	case '|':
		switch next {
		case '>':
			return double(TokenPipe)
		case '|':
			return double(TokenOr)
		}
		return single(TokenBar)
	case '!':
		if next == '=' {
			return double(TokenNotEq)
		}
		return single(TokenBang)
	case '<':
		if next == '=' {
			return double(TokenLe)
		}
		return single(TokenLt)
	case '>':
		if next == '=' {
			return double(TokenGe)
		}
		return single(TokenGt)
	case '&':
		if next == '&' {
			return double(TokenAnd)
		}
		l.readChar()
		return Token{}, false
	case ':':
		if next == ':' {
			return double(TokenDoubleColon)
		}
		return single(TokenColon)
	case '/':
		if l.regexAllowed() {
			if tok, ok := l.readRegex(pos); ok {
				return tok, true
			}
		}
		return single(TokenSlash)
	case '+':
		return single(TokenPlus)
	case '*':
		return single(TokenStar)
	case '%':
		return single(TokenPercent)
	case '.':
		return single(TokenDot)
	case ',':
		return single(TokenComma)
	case ';':
		return single(TokenSemicolon)
	case '(':
		return single(TokenLParen)
	case ')':
		return single(TokenRParen)
	case '{':
		return single(TokenLBrace)
	case '}':
		return single(TokenRBrace)
	case '[':
		return single(TokenLBracket)
	case ']':
		return single(TokenRBracket)
	}

	l.readChar()
	return Token{}, false
}

func (l *Lexer) readIdentifier() string {
	start := l.position
	for !l.atEOF() && (isLetter(l.ch) || isDigit(l.ch)) {
		l.readChar()
	}
	return l.input[start:l.position]
}

// readNumber reads a decimal integer or a float of the form digits.digits.
// No sign is consumed here.
func (l *Lexer) readNumber() (string, bool) {
	start := l.position
	for !l.atEOF() && isDigit(l.ch) {
		l.readChar()
	}
	isFloat := false
	if l.ch == '.' && isDigit(l.peekChar()) {
		isFloat = true
		l.readChar()
		for !l.atEOF() && isDigit(l.ch) {
			l.readChar()
		}
	}
	return l.input[start:l.position], isFloat
}

// readString returns the raw characters between the quotes. Escapes are not
// processed and an unterminated string runs to the end of input.
func (l *Lexer) readString() string {
	l.readChar()
	start := l.position
	for !l.atEOF() && l.ch != '"' {
		l.readChar()
	}
	end := l.position
	if !l.atEOF() {
		l.readChar()
	}
	return l.input[start:end]
}

// regexAllowed reports whether a '/' at this point starts an operand.
func (l *Lexer) regexAllowed() bool {
	if !l.seen {
		return true
	}
	switch l.last {
	case TokenIdentifier, TokenInt, TokenFloat, TokenString, TokenRegex,
		TokenRParen, TokenRBracket, TokenRBrace, TokenEnd,
		TokenI32, TokenF32, TokenBool, TokenVoid, TokenStr:
		return false
	}
	return true
}

// readRegex scans /body/flags on a single line. Backslash escapes inside
// the body are kept verbatim. Nothing is consumed when no closing slash
// exists on the line.
func (l *Lexer) readRegex(pos position.Position) (Token, bool) {
	i := l.position + 1
	for i < len(l.input) && l.input[i] != '/' && l.input[i] != '\n' {
		if l.input[i] == '\\' && i+1 < len(l.input) && l.input[i+1] != '\n' {
			i++
		}
		i++
	}
	if i >= len(l.input) || l.input[i] != '/' {
		return Token{}, false
	}

	body := l.input[l.position+1 : i]
	for l.position < i {
		l.readChar()
	}
	l.readChar()

	start := l.position
	for !l.atEOF() && isASCIILetter(l.ch) {
		l.readChar()
	}
	return Token{Type: TokenRegex, Literal: body, Flags: l.input[start:l.position], Pos: pos}, true
}

func isLetter(ch byte) bool {
	return isASCIILetter(ch) || ch == '_'
}

func isASCIILetter(ch byte) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z'
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}
