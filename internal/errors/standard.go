// Package errors defines the fatal error taxonomy of the Aurora front-end.
// The parser reports *SyntaxError and the lowering pass reports
// *CompileError; both abort the current compilation immediately.
package errors

import (
	"fmt"

	"github.com/aurora-lang/aurora/internal/position"
)

// ErrorCategory represents different categories of errors
type ErrorCategory string

const (
	CategorySyntax  ErrorCategory = "SYNTAX"
	CategoryName    ErrorCategory = "NAME"
	CategoryType    ErrorCategory = "TYPE"
	CategoryArity   ErrorCategory = "ARITY"
	CategoryMember  ErrorCategory = "MEMBER"
	CategoryControl ErrorCategory = "CONTROL"
	CategoryGeneric ErrorCategory = "GENERIC"
	CategoryImport  ErrorCategory = "IMPORT"
)

// Code identifies a specific diagnostic.
type Code string

const (
	CodeUnexpectedToken Code = "E0001"
	CodeUnexpectedEOF   Code = "E0002"
	CodeMalformed       Code = "E0003"

	CodeUnknownIdentifier Code = "E0100"
	CodeUnknownType       Code = "E0101"
	CodeUnknownMember     Code = "E0102"
	CodeUnknownField      Code = "E0103"
	CodeUnknownImport     Code = "E0104"

	CodeTypeMismatch      Code = "E0200"
	CodeArity             Code = "E0201"
	CodeConstraint        Code = "E0202"
	CodeUnknownConstraint Code = "E0203"
	CodeReturn            Code = "E0204"
	CodeLoopControl       Code = "E0205"
	CodeAssignment        Code = "E0206"
	CodeNotIndexable      Code = "E0207"
)

var codeCategories = map[Code]ErrorCategory{
	CodeUnexpectedToken:   CategorySyntax,
	CodeUnexpectedEOF:     CategorySyntax,
	CodeMalformed:         CategorySyntax,
	CodeUnknownIdentifier: CategoryName,
	CodeUnknownType:       CategoryName,
	CodeUnknownMember:     CategoryMember,
	CodeUnknownField:      CategoryMember,
	CodeUnknownImport:     CategoryImport,
	CodeTypeMismatch:      CategoryType,
	CodeArity:             CategoryArity,
	CodeConstraint:        CategoryGeneric,
	CodeUnknownConstraint: CategoryGeneric,
	CodeReturn:            CategoryControl,
	CodeLoopControl:       CategoryControl,
	CodeAssignment:        CategoryName,
	CodeNotIndexable:      CategoryType,
}

// Category returns the category a code belongs to.
func (c Code) Category() ErrorCategory {
	if cat, ok := codeCategories[c]; ok {
		return cat
	}
	return CategoryType
}

// StandardError provides a consistent error format
type StandardError struct {
	Category ErrorCategory
	Code     Code
	Message  string
	Span     position.Span
	// Cause is the error that led to this one, if any.
	Cause error
}

// Error implements the error interface
func (e *StandardError) Error() string {
	if e.Span.Start.IsValid() {
		return fmt.Sprintf("%s: %s", e.Span.Start, e.Message)
	}
	return e.Message
}

// Unwrap returns the cause so errors.Is and errors.As can reach it.
func (e *StandardError) Unwrap() error {
	return e.Cause
}

// Position returns where the error was detected.
func (e *StandardError) Position() position.Position {
	return e.Span.Start
}

// SyntaxError is raised by the parser. There is no partial result.
type SyntaxError struct {
	StandardError
}

// CompileError is raised by the lowering pass on any static-semantics
// violation. Span is the most specific node being processed.
type CompileError struct {
	StandardError
}

// NewSyntaxError creates a syntax error located at pos.
func NewSyntaxError(code Code, pos position.Position, format string, args ...interface{}) *SyntaxError {
	return &SyntaxError{StandardError{
		Category: CategorySyntax,
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
		Span:     position.At(pos),
	}}
}

// NewCompileError creates a compile error covering span.
func NewCompileError(code Code, span position.Span, format string, args ...interface{}) *CompileError {
	return &CompileError{StandardError{
		Category: code.Category(),
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
		Span:     span,
	}}
}

// WrapCompileError creates a compile error covering span that was caused by
// cause, for example a failed module load.
func WrapCompileError(cause error, code Code, span position.Span, format string, args ...interface{}) *CompileError {
	err := NewCompileError(code, span, format, args...)
	err.Cause = cause
	return err
}

// Located is implemented by errors that know their source position.
type Located interface {
	error
	Position() position.Position
}
