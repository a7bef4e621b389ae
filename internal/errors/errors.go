// Package errors formats the parse- and validation-time errors the core
// surfaces to callers before a task ever runs.
package errors

import (
	"fmt"
	"strings"

	"github.com/phillarmonic/deskflow/internal/lexer"
)

// ParseError is a single lexer/parser error tied to a source line.
type ParseError struct {
	Message  string
	Token    lexer.Token
	Filename string
	Source   string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d: %s", e.Filename, e.Token.Line, e.Message)
}

// FormatError renders the error with the offending source line. Tokens
// carry no column, so no caret marks a position within the line.
func (e *ParseError) FormatError() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("\033[31mError\033[0m: %s\n", e.Message))
	b.WriteString(fmt.Sprintf("  \033[36m--> %s:%d\033[0m\n", e.Filename, e.Token.Line))

	lines := strings.Split(e.Source, "\n")
	if e.Token.Line > 0 && e.Token.Line <= len(lines) {
		sourceLine := lines[e.Token.Line-1]
		lineNumStr := fmt.Sprintf("%d", e.Token.Line)
		b.WriteString(fmt.Sprintf("   \033[34m%s\033[0m | %s\n", lineNumStr, sourceLine))
	}
	return b.String()
}

// NewParseError builds a ParseError anchored at tok.
func NewParseError(message string, tok lexer.Token, filename, source string) *ParseError {
	return &ParseError{Message: message, Token: tok, Filename: filename, Source: source}
}

// ParseErrorList accumulates parser errors so multiple problems can be
// reported from a single pass instead of stopping at the first one.
type ParseErrorList struct {
	Errors   []*ParseError
	Filename string
	Source   string
}

// NewParseErrorList creates an empty accumulator for filename/source.
func NewParseErrorList(filename, source string) *ParseErrorList {
	return &ParseErrorList{Filename: filename, Source: source}
}

// Add records a new error anchored at tok.
func (l *ParseErrorList) Add(message string, tok lexer.Token) {
	l.Errors = append(l.Errors, NewParseError(message, tok, l.Filename, l.Source))
}

// HasErrors reports whether any error has been recorded.
func (l *ParseErrorList) HasErrors() bool {
	return len(l.Errors) > 0
}

func (l *ParseErrorList) Error() string {
	if len(l.Errors) == 0 {
		return "no errors"
	}
	msgs := make([]string, len(l.Errors))
	for i, e := range l.Errors {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "; ")
}

// FormatErrors renders every accumulated error with source context.
func (l *ParseErrorList) FormatErrors() string {
	var b strings.Builder
	for i, e := range l.Errors {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(e.FormatError())
	}
	return b.String()
}

// ValidationError wraps the ordered list of human-readable problems the
// validator found in an otherwise syntactically valid TaskDefinition.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Messages, "; ")
}

// NewValidationError builds a ValidationError from a non-empty message list.
func NewValidationError(messages []string) *ValidationError {
	return &ValidationError{Messages: messages}
}
