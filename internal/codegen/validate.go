package codegen

import (
	"bytes"
	"strings"

	"mvdan.cc/sh/v3/syntax"

	"github.com/kazz187/sh2c/internal/ast"
	"github.com/kazz187/sh2c/internal/diag"
	"github.com/kazz187/sh2c/internal/target"
)

// Validate parses src with the shell grammar matching tgt and reprints it,
// exactly the two-step pipeline pkg/shellformat uses to turn one-liners
// into readable shell — here repurposed as the emitter's own "run it
// through a real parser" check rather than a formatting step for a
// caller's input. A parse failure here means the emitter produced text
// that is not valid shell for a validated AST, which is what EmitError
// exists to report (see internal/diag).
func Validate(src string, tgt target.Target) (string, *diag.Error) {
	variant := syntax.LangBash
	if tgt == target.Posix {
		variant = syntax.LangPOSIX
	}

	parser := syntax.NewParser(syntax.Variant(variant), syntax.KeepComments(true))
	file, err := parser.Parse(strings.NewReader(src), "")
	if err != nil {
		return "", diag.Wrap(diag.EmitError, ast.Span{Line: 1, Col: 1}, "emitted script failed to parse", err)
	}

	printer := syntax.NewPrinter(syntax.Indent(2), syntax.SpaceRedirects(true))
	var buf bytes.Buffer
	if err := printer.Print(&buf, file); err != nil {
		return "", diag.Wrap(diag.EmitError, ast.Span{Line: 1, Col: 1}, "emitted script failed to reprint", err)
	}
	return buf.String(), nil
}
