package codegen

import "github.com/kazz187/sh2c/internal/ast"

// casePattern renders one arm's match pattern. The wildcard case is its
// own AST field, Case.Default, not a pattern an author writes, so a
// string-literal pattern is glob-escaped to match the literal text exactly
// rather than as a glob. A non-literal pattern (a variable, a
// concatenation) is emitted unquoted via wordInner, so its value is
// matched as a glob.
func (e *Emitter) casePattern(x *ast.Expr) string {
	if lit, ok := x.Kind.(ast.Literal); ok {
		return escapeGlob(lit.Value)
	}
	return e.wordInner(x)
}

func (e *Emitter) emitCase(s *ast.Stmt, k ast.Case) {
	e.writeLine("case %s in", e.word(k.Scrutinee))
	e.indent++
	for _, arm := range k.Arms {
		e.writeLine("%s)", e.casePattern(arm.Pattern))
		e.indent++
		e.emitStmts(arm.Body)
		e.writeLine(";;")
		e.indent--
	}
	if len(k.Default) > 0 {
		e.writeLine("*)")
		e.indent++
		e.emitStmts(k.Default)
		e.writeLine(";;")
		e.indent--
	}
	e.indent--
	e.writeLine("esac")
}
