package codegen

import "github.com/kazz187/sh2c/internal/ast"

// emitWithEnv opens an export scope: each binding's prior value (if any)
// is saved, the new value exported for the body's duration, and the
// saved state restored on exit — so nested WithEnv scopes shadow exactly
// the way a lexical scope would, per §4.4.
func (e *Emitter) emitWithEnv(k ast.WithEnv) {
	var savedVars []string
	for _, b := range k.Bindings {
		saved := e.newTemp()
		hasPrior := e.newTemp()
		e.writeLine(`%s="${%s:-}"`, saved, b.Name)
		e.writeLine(`%s="${%s+1}"`, hasPrior, b.Name)
		e.writeLine("export %s=%s", b.Name, e.word(b.Value))
		savedVars = append(savedVars, saved, hasPrior, b.Name)
	}

	e.emitStmts(k.Body)

	for i := len(k.Bindings) - 1; i >= 0; i-- {
		saved, hasPrior, name := savedVars[i*3], savedVars[i*3+1], savedVars[i*3+2]
		e.writeLine(`if [ -n "${%s}" ]; then`, hasPrior)
		e.indent++
		e.writeLine(`export %s="${%s}"`, name, saved)
		e.indent--
		e.writeLine("else")
		e.indent++
		e.writeLine("unset %s", name)
		e.indent--
		e.writeLine("fi")
	}
}
