// Package diagnostics defines the error values produced by every
// compilation stage and their terminal rendering.
package diagnostics

import (
	"fmt"
	"strings"

	"github.com/angel-lang/angel/internal/token"
)

// Code identifies an error category.
type Code string

const (
	SyntaxError                    Code = "SyntaxError"
	UndefinedName                  Code = "UndefinedName"
	DuplicateDefinition            Code = "DuplicateDefinition"
	WriteToAlreadyAssignedConstant Code = "WriteToAlreadyAssignedConstant"
	TypeMismatch                   Code = "TypeMismatch"
	LiteralOutOfRange              Code = "LiteralOutOfRange"
	MissingInterfaceMember         Code = "MissingInterfaceMember"
	PrivateMemberAccess            Code = "PrivateMemberAccess"
	PrivateFieldNotInitialized     Code = "PrivateFieldNotInitialized"
	UnresolvedMember               Code = "UnresolvedMember"
	AmbiguousConversion            Code = "AmbiguousConversion"
	GenericArityMismatch           Code = "GenericArityMismatch"
	EvaluationError                Code = "EvaluationError"
)

// Error is a positioned compilation error. SourceLine, when set, is echoed
// beneath the message with a caret marking the column.
type Error struct {
	Code       Code
	Message    string
	Line       int
	Column     int
	SourceLine string
}

func (e *Error) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s (line %d): %s", e.Code, e.Line, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewError builds an error positioned at the given token.
func NewError(code Code, tok token.Token, format string, args ...interface{}) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Line:    tok.Line,
		Column:  tok.Column,
	}
}

const (
	colorRed   = "\x1b[31m"
	colorBold  = "\x1b[1m"
	colorReset = "\x1b[0m"
)

// Render formats the error for the terminal. With color enabled the code is
// printed red; the echoed source line gets a caret under the offending
// column.
func (e *Error) Render(color bool) string {
	var b strings.Builder
	if color {
		b.WriteString(colorBold + colorRed)
	}
	b.WriteString(string(e.Code))
	if color {
		b.WriteString(colorReset)
	}
	if e.Line > 0 {
		fmt.Fprintf(&b, " (line %d)", e.Line)
	}
	b.WriteString(": ")
	b.WriteString(e.Message)
	if e.SourceLine != "" {
		b.WriteString("\n    ")
		b.WriteString(e.SourceLine)
		if e.Column > 0 && e.Column <= len(e.SourceLine)+1 {
			b.WriteString("\n    ")
			b.WriteString(strings.Repeat(" ", e.Column-1))
			b.WriteString("^")
		}
	}
	return b.String()
}

// WithSource attaches the offending source line for rendering.
func (e *Error) WithSource(line string) *Error {
	e.SourceLine = line
	return e
}
