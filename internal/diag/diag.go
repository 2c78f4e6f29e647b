// Package diag defines the diagnostic type threaded through every compiler
// phase, modeled on this codebase's usual (Code, Msg, Err) error shape but
// keyed by compile phase and source span instead of an RPC status code.
package diag

import (
	"fmt"

	"github.com/kazz187/sh2c/internal/ast"
)

// Kind identifies which phase raised a diagnostic.
type Kind int

const (
	LexError Kind = iota
	ParseError
	ResolveError
	EmitError
)

func (k Kind) String() string {
	switch k {
	case LexError:
		return "lex error"
	case ParseError:
		return "parse error"
	case ResolveError:
		return "resolve error"
	case EmitError:
		return "emit error"
	default:
		return "error"
	}
}

// Error is the diagnostic value every compiler phase returns on failure.
// EmitError is defensive: codegen only ever sees a resolved, validated
// tree, so reaching it means an earlier phase let something through it
// shouldn't have.
type Error struct {
	Kind    Kind
	Span    ast.Span
	Message string
	Err     error // underlying cause, if any; nil for most user-facing diagnostics
}

func New(kind Kind, span ast.Span, message string) *Error {
	return &Error{Kind: kind, Span: span, Message: message}
}

func Wrap(kind Kind, span ast.Span, message string, err error) *Error {
	return &Error{Kind: kind, Span: span, Message: message, Err: err}
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s: %s", e.Span, e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s: %s", e.Span, e.Kind, e.Message, e.Err.Error())
}

func (e *Error) Unwrap() error {
	return e.Err
}
