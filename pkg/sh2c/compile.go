// Package sh2c is the public entry point for the SL-to-shell compiler: one
// function, Compile, wrapping the internal lex/parse/desugar/resolve/codegen
// pipeline, in the same one-file-wrapper shape as this corpus's
// pkg/obfusps.Obfuscate wraps its own internal engine.
package sh2c

import (
	"context"

	"github.com/kazz187/sh2c/internal/ast"
	"github.com/kazz187/sh2c/internal/codegen"
	"github.com/kazz187/sh2c/internal/desugar"
	"github.com/kazz187/sh2c/internal/diag"
	"github.com/kazz187/sh2c/internal/parser"
	"github.com/kazz187/sh2c/internal/resolve"
	"github.com/kazz187/sh2c/internal/target"
	"github.com/kazz187/sh2c/pkg/clog"
	"github.com/kazz187/sh2c/pkg/panicsafe"
)

// Target re-exports internal/target.Target so callers never need to import
// an internal package to call Compile.
type Target = target.Target

const (
	Bash  = target.Bash
	Posix = target.Posix
)

// Compile translates an SL source file into a complete shell script for
// tgt. file is used only for diagnostic spans. The returned error, if any,
// is a *diag.Error identifying the phase, location, and message; Compile
// never panics even on a malformed or adversarial source, since every
// phase runs under panicsafe.Safe.
func Compile(ctx context.Context, file, source string, tgt target.Target) (string, *diag.Error) {
	ctx = clog.ContextWithSlog(ctx)
	clog.AddAttribute(ctx, "source_file", file)
	clog.AddAttribute(ctx, "target", tgt.String())

	var prog *ast.Program
	if err := panicsafe.Safe(diag.ParseError, ast.Span{Line: 1, Col: 1}, func() *diag.Error {
		var perr *diag.Error
		// lexer.Lex runs implicitly inside parser.Parse; surfacing a
		// LexError here still reports under its own Kind since the
		// returned *diag.Error carries its own Kind field.
		prog, perr = parser.Parse(file, source)
		return perr
	}); err != nil {
		return "", err
	}

	if err := panicsafe.Safe(diag.ParseError, ast.Span{Line: 1, Col: 1}, func() *diag.Error {
		var derr *diag.Error
		prog, derr = desugar.Desugar(prog)
		return derr
	}); err != nil {
		return "", err
	}

	var ann *ast.Annotations
	var resolveErrs []*diag.Error
	if err := panicsafe.Safe(diag.ResolveError, ast.Span{Line: 1, Col: 1}, func() *diag.Error {
		ann, resolveErrs = resolve.Resolve(prog, tgt)
		return nil
	}); err != nil {
		return "", err
	}
	if len(resolveErrs) > 0 {
		return "", resolveErrs[0]
	}

	var out string
	if err := panicsafe.Safe(diag.EmitError, ast.Span{Line: 1, Col: 1}, func() *diag.Error {
		var eerr *diag.Error
		out, eerr = codegen.Emit(prog, ann, tgt)
		return eerr
	}); err != nil {
		return "", err
	}

	return out, nil
}
