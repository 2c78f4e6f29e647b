// Package panicsafe wraps a compiler phase function so that a panic inside
// it — an unreachable case in an exhaustive kind switch, a nil dereference
// on a malformed tree — surfaces as an ordinary diagnostic instead of
// crashing the driver.
package panicsafe

import (
	"github.com/sourcegraph/conc/panics"

	"github.com/kazz187/sh2c/internal/ast"
	"github.com/kazz187/sh2c/internal/diag"
)

// Safe wraps fn, converting any recovered panic into a *diag.Error of the
// given kind, spanned at span.
func Safe(kind diag.Kind, span ast.Span, fn func() *diag.Error) *diag.Error {
	var (
		catcher panics.Catcher
		result  *diag.Error
	)
	catcher.Try(func() {
		result = fn()
	})
	if recovered := catcher.Recovered(); recovered != nil {
		return diag.Wrap(kind, span, "internal compiler error", recovered.AsError())
	}
	return result
}
