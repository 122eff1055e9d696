// Package diagnostic turns compiler errors into the human readable reports
// printed by aurorac: a location header, the offending source line and a
// caret under the reported column.
package diagnostic

import (
	"errors"
	"fmt"

	aerrors "github.com/aurora-lang/aurora/internal/errors"
	"github.com/aurora-lang/aurora/internal/position"
)

// DiagnosticLevel represents the severity level of a diagnostic.
type DiagnosticLevel int

const (
	DiagnosticError DiagnosticLevel = iota
	DiagnosticWarning
	DiagnosticInfo
	DiagnosticHint
)

func (dl DiagnosticLevel) String() string {
	switch dl {
	case DiagnosticError:
		return "error"
	case DiagnosticWarning:
		return "warning"
	case DiagnosticInfo:
		return "info"
	case DiagnosticHint:
		return "hint"
	default:
		return "unknown"
	}
}

// Diagnostic is one reportable problem.
type Diagnostic struct {
	Code     aerrors.Code
	Message  string
	Notes    []string
	Span     position.Span
	Level    DiagnosticLevel
	Category aerrors.ErrorCategory
}

// DiagnosticBuilder provides a fluent interface for building diagnostics.
type DiagnosticBuilder struct {
	diagnostic *Diagnostic
}

// NewDiagnostic creates a new diagnostic builder. The level defaults to error.
func NewDiagnostic() *DiagnosticBuilder {
	return &DiagnosticBuilder{diagnostic: &Diagnostic{Level: DiagnosticError}}
}

func (db *DiagnosticBuilder) Error() *DiagnosticBuilder {
	db.diagnostic.Level = DiagnosticError

	return db
}

func (db *DiagnosticBuilder) Warning() *DiagnosticBuilder {
	db.diagnostic.Level = DiagnosticWarning

	return db
}

func (db *DiagnosticBuilder) Hint() *DiagnosticBuilder {
	db.diagnostic.Level = DiagnosticHint

	return db
}

// Code sets the code and derives the category from it.
func (db *DiagnosticBuilder) Code(code aerrors.Code) *DiagnosticBuilder {
	db.diagnostic.Code = code
	db.diagnostic.Category = code.Category()

	return db
}

func (db *DiagnosticBuilder) Message(format string, args ...interface{}) *DiagnosticBuilder {
	db.diagnostic.Message = fmt.Sprintf(format, args...)

	return db
}

func (db *DiagnosticBuilder) Span(span position.Span) *DiagnosticBuilder {
	db.diagnostic.Span = span

	return db
}

func (db *DiagnosticBuilder) Note(note string) *DiagnosticBuilder {
	db.diagnostic.Notes = append(db.diagnostic.Notes, note)

	return db
}

func (db *DiagnosticBuilder) Build() *Diagnostic {
	return db.diagnostic
}

// FromError converts a front-end error into a diagnostic. Errors that carry
// no position (I/O failures, wrapped resolver errors) become a bare error
// diagnostic with the error text as message.
func FromError(err error) *Diagnostic {
	var (
		syn *aerrors.SyntaxError
		ce  *aerrors.CompileError
	)
	switch {
	case errors.As(err, &ce):
		return fromStandard(&ce.StandardError)
	case errors.As(err, &syn):
		return fromStandard(&syn.StandardError)
	}

	return NewDiagnostic().Message("%s", err.Error()).Build()
}

func fromStandard(se *aerrors.StandardError) *Diagnostic {
	b := NewDiagnostic().Code(se.Code).Message("%s", se.Message).Span(se.Span)
	if se.Cause != nil {
		b.Note(se.Cause.Error())
	}
	d := b.Build()
	if se.Category != "" {
		d.Category = se.Category
	}

	return d
}

// Header returns the first report line, `file:line:column: error[CODE]: message`.
func (d *Diagnostic) Header() string {
	level := d.Level.String()
	if d.Code != "" {
		level = fmt.Sprintf("%s[%s]", level, d.Code)
	}
	if !d.Span.Start.IsValid() {
		return fmt.Sprintf("%s: %s", level, d.Message)
	}

	return fmt.Sprintf("%s: %s: %s", d.Span.Start, level, d.Message)
}
