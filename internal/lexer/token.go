package lexer

import (
	"fmt"

	"github.com/aurora-lang/aurora/internal/position"
)

// TokenType represents the type of a token
type TokenType int

// String returns a string representation of the token type
func (tt TokenType) String() string {
	if name, ok := tokenNames[tt]; ok {
		return name
	}
	return fmt.Sprintf("UNKNOWN(%d)", int(tt))
}

const (
	TokenEOF TokenType = iota

	// Literals
	TokenIdentifier
	TokenInt
	TokenFloat
	TokenString
	TokenRegex

	// Keywords
	TokenFn
	TokenTypeDecl
	TokenLet
	TokenMut
	TokenReturn
	TokenIf
	TokenThen
	TokenElse
	TokenWhile
	TokenFor
	TokenIn
	TokenDo
	TokenEnd
	TokenMatch
	TokenModule
	TokenExport
	TokenImport
	TokenExtern
	TokenEnum
	TokenFrom
	TokenAs
	TokenBreak
	TokenContinue
	TokenI32
	TokenF32
	TokenBool
	TokenVoid
	TokenStr

	// Operators
	TokenPlus     // +
	TokenMinus    // -
	TokenStar     // *
	TokenSlash    // /
	TokenPercent  // %
	TokenEq       // ==
	TokenNotEq    // !=
	TokenLt       // <
	TokenGt       // >
	TokenLe       // <=
	TokenGe       // >=
	TokenAnd      // &&
	TokenOr       // ||
	TokenBang     // !
	TokenAssign   // =
	TokenBar      // |
	TokenArrow    // ->
	TokenFatArrow // =>
	TokenPipe     // |>

	// Punctuation
	TokenDot
	TokenDoubleColon
	TokenComma
	TokenSemicolon
	TokenColon
	TokenLParen
	TokenRParen
	TokenLBrace
	TokenRBrace
	TokenLBracket
	TokenRBracket
)

var tokenNames = map[TokenType]string{
	TokenEOF: "EOF",

	TokenIdentifier: "IDENTIFIER",
	TokenInt:        "INT_LITERAL",
	TokenFloat:      "FLOAT_LITERAL",
	TokenString:     "STRING_LITERAL",
	TokenRegex:      "REGEX_LITERAL",

	TokenFn:       "FN",
	TokenTypeDecl: "TYPE",
	TokenLet:      "LET",
	TokenMut:      "MUT",
	TokenReturn:   "RETURN",
	TokenIf:       "IF",
	TokenThen:     "THEN",
	TokenElse:     "ELSE",
	TokenWhile:    "WHILE",
	TokenFor:      "FOR",
	TokenIn:       "IN",
	TokenDo:       "DO",
	TokenEnd:      "END",
	TokenMatch:    "MATCH",
	TokenModule:   "MODULE",
	TokenExport:   "EXPORT",
	TokenImport:   "IMPORT",
	TokenExtern:   "EXTERN",
	TokenEnum:     "ENUM",
	TokenFrom:     "FROM",
	TokenAs:       "AS",
	TokenBreak:    "BREAK",
	TokenContinue: "CONTINUE",
	TokenI32:      "I32",
	TokenF32:      "F32",
	TokenBool:     "BOOL",
	TokenVoid:     "VOID",
	TokenStr:      "STR",

	TokenPlus:     "PLUS",
	TokenMinus:    "MINUS",
	TokenStar:     "STAR",
	TokenSlash:    "SLASH",
	TokenPercent:  "PERCENT",
	TokenEq:       "EQ",
	TokenNotEq:    "NOT_EQ",
	TokenLt:       "LT",
	TokenGt:       "GT",
	TokenLe:       "LE",
	TokenGe:       "GE",
	TokenAnd:      "AND",
	TokenOr:       "OR",
	TokenBang:     "BANG",
	TokenAssign:   "EQUAL",
	TokenBar:      "BAR",
	TokenArrow:    "ARROW",
	TokenFatArrow: "FAT_ARROW",
	TokenPipe:     "PIPE",

	TokenDot:         "DOT",
	TokenDoubleColon: "DOUBLE_COLON",
	TokenComma:       "COMMA",
	TokenSemicolon:   "SEMICOLON",
	TokenColon:       "COLON",
	TokenLParen:      "LPAREN",
	TokenRParen:      "RPAREN",
	TokenLBrace:      "LBRACE",
	TokenRBrace:      "RBRACE",
	TokenLBracket:    "LBRACKET",
	TokenRBracket:    "RBRACKET",
}

var keywords = map[string]TokenType{
	"fn":       TokenFn,
	"type":     TokenTypeDecl,
	"let":      TokenLet,
	"mut":      TokenMut,
	"return":   TokenReturn,
	"if":       TokenIf,
	"then":     TokenThen,
	"else":     TokenElse,
	"while":    TokenWhile,
	"for":      TokenFor,
	"in":       TokenIn,
	"do":       TokenDo,
	"end":      TokenEnd,
	"match":    TokenMatch,
	"module":   TokenModule,
	"export":   TokenExport,
	"import":   TokenImport,
	"extern":   TokenExtern,
	"enum":     TokenEnum,
	"from":     TokenFrom,
	"as":       TokenAs,
	"break":    TokenBreak,
	"continue": TokenContinue,
	"i32":      TokenI32,
	"f32":      TokenF32,
	"bool":     TokenBool,
	"void":     TokenVoid,
	"str":      TokenStr,
}

// LookupIdent returns the keyword token type for ident, or TokenIdentifier.
func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return TokenIdentifier
}

// IsKeyword reports whether tt is a reserved word.
func (tt TokenType) IsKeyword() bool {
	return tt >= TokenFn && tt <= TokenStr
}

// Token represents a lexical token.
type Token struct {
	Type    TokenType
	Literal string
	Flags   string // regex flags, only set for TokenRegex
	Pos     position.Position
}

// String returns a string representation of the token
func (t Token) String() string {
	if t.Type == TokenEOF {
		return "EOF"
	}
	return fmt.Sprintf("%s(%s)", t.Type, t.Literal)
}
