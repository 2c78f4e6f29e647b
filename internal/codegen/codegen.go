// Package codegen turns a resolved AST into a complete shell script for one
// of the two supported targets. It is a single forward pass: no
// backtracking, no multi-pass optimization (the core does not optimize for
// script size). The emitter tracks a temp-variable counter and an indent
// depth, and the generated script keeps the last command's status in the
// running __st variable; WithEnv scopes restore via inline save/restore
// temp variables rather than a stack on the Emitter.
//
// The assembled text is never handed to a caller directly: Emit's last
// step parses it back with mvdan.cc/sh/v3/syntax and reprints it, the same
// two-stage pipeline this codebase already uses in pkg/shellformat to turn
// one-liners into readable multi-line shell. Here that pipeline doubles as
// a correctness check — a parse failure means the emitter produced
// non-shell text from a validated tree, which is the one case EmitError
// exists for.
package codegen

import (
	"bytes"
	"fmt"

	"github.com/kazz187/sh2c/internal/ast"
	"github.com/kazz187/sh2c/internal/diag"
	"github.com/kazz187/sh2c/internal/target"
)

// Emitter assembles a script for a single compilation unit. It is not
// reentrant across programs; construct a fresh one per Emit call.
type Emitter struct {
	tgt    target.Target
	ann    *ast.Annotations
	prog   *ast.Program
	buf    bytes.Buffer
	indent int
	tmpSeq int
	stSeq  int
}

// Emit compiles prog into a complete script text for tgt, using the
// annotations resolve.Resolve produced over the same (desugared) program.
func Emit(prog *ast.Program, ann *ast.Annotations, tgt target.Target) (string, *diag.Error) {
	e := &Emitter{tgt: tgt, ann: ann, prog: prog}
	e.writePrelude()

	for _, fn := range prog.Functions {
		if fn.Name == "main" {
			continue
		}
		e.emitFunctionDecl(fn)
	}
	if main := prog.Lookup("main"); main != nil {
		e.emitFunctionDecl(main)
	}
	e.writeLine(`main "$@"`)

	return Validate(e.buf.String(), tgt)
}

func (e *Emitter) emitFunctionDecl(fn *ast.Function) {
	e.writeLine("%s() {", fn.Name)
	e.indent++
	e.enterBlock()
	for i, p := range fn.Params {
		e.writeLine(`%s="${%d}"`, p.Name, i+1)
	}
	e.emitStmts(fn.Body)
	e.indent--
	e.writeLine("}")
	e.writeLine("")
}

// --- low-level buffer plumbing, in the style of pkg/shellformat's
// formatter: a bytes.Buffer plus an indent counter, written to with small
// line-at-a-time helpers rather than building strings ad hoc. ---

func (e *Emitter) writeIndent() {
	for i := 0; i < e.indent; i++ {
		e.buf.WriteString("  ")
	}
}

// writeLine writes one fully-indented, newline-terminated line.
func (e *Emitter) writeLine(format string, args ...any) {
	e.writeIndent()
	fmt.Fprintf(&e.buf, format, args...)
	e.buf.WriteByte('\n')
}

// writeRaw writes pre-indented multi-line text verbatim (used for the
// prelude, which carries its own formatting).
func (e *Emitter) writeRaw(s string) {
	e.buf.WriteString(s)
}

func (e *Emitter) newTemp() string {
	e.tmpSeq++
	return fmt.Sprintf("__sh2_tmp%d", e.tmpSeq)
}

// enterBlock resets the status slot at block entry, per §4.6: status() is
// 0 at block entry and otherwise reflects the last command statement.
func (e *Emitter) enterBlock() {
	e.writeLine("__st=0")
}

// recordStatusSlot assigns id a codegen-visible slot number, purely for
// traceability in the annotation table; the emitted script always reads
// the single running __st variable, since a generated script is a single
// sequential command stream (see §5: no parallel statement execution
// outside spawn/pipe, which have their own status handling).
func (e *Emitter) recordStatusSlot(id ast.NodeID) {
	e.stSeq++
	e.ann.StatusSlot[id] = e.stSeq
}
