package codegen

import (
	"github.com/kazz187/sh2c/internal/ast"
)

func (e *Emitter) emitStmts(stmts []*ast.Stmt) {
	for _, s := range stmts {
		e.emitStmt(s)
	}
}

func (e *Emitter) emitStmt(s *ast.Stmt) {
	switch k := s.Kind.(type) {
	case ast.Let:
		e.writeLine("%s=%s", k.Name, e.word(k.Value))
	case ast.Set:
		e.writeLine("%s=%s", k.Target.Name, e.word(k.Value))
	case ast.Print:
		e.writeLine("printf '%%s\\n' %s", e.word(k.X))
	case ast.Return:
		if k.X == nil {
			e.writeLine("return")
		} else {
			e.writeLine("printf '%%s' %s", e.word(k.X))
			e.writeLine("return 0")
		}
	case ast.Exec:
		// exec replaces the current process image; nothing after this
		// line in the block runs on success, so there is no status to
		// record the way other command statements do.
		e.writeLine("exec %s", e.argv(k.Args))
	case ast.Run:
		e.emitRunStmt(s, k.Call)
	case ast.Pipe:
		e.emitPipe(s, k.Segments)
	case ast.PipeBlocks:
		e.emitPipeBlocks(s, k.Segments)
	case ast.If:
		e.emitIf(k)
	case ast.For:
		e.emitFor(k)
	case ast.Group:
		e.writeLine("{")
		e.indent++
		e.emitStmts(k.Body)
		e.indent--
		e.writeLine("}")
	case ast.Case:
		e.emitCase(s, k)
	case ast.TryCatch:
		e.emitTryCatch(k)
	case ast.WithEnv:
		e.emitWithEnv(k)
	case ast.Spawn:
		e.emitSpawn(k)
	case ast.Wait:
		e.emitWait(k)
	case ast.WriteFile:
		e.emitWriteFile(k)
	case ast.ReadFile:
		e.emitReadFile(k)
	case ast.Log:
		e.emitLog(k)
	case ast.ExprStmt:
		e.writeLine("%s", e.invoke(k.X))
		e.writeLine("__st=$?")
	}
}

// argv renders a list of expressions as a space-separated sequence of
// shell words, for exec() and similar "spawn this argv" builtins.
func (e *Emitter) argv(args []*ast.Expr) string {
	out := ""
	for i, a := range args {
		if i > 0 {
			out += " "
		}
		out += e.word(a)
	}
	return out
}

// runCommandLine renders a RunCall's command line: run/sh/sudo all share
// the same "command + args" shape, differing only in the prefix.
func (e *Emitter) runCommandLine(call ast.RunCall) string {
	switch call.Kind {
	case ast.RunSudo:
		return e.sudoCommandLine(call)
	case ast.RunSh:
		return e.shCommandLine(call)
	default:
		line := e.wordInner(call.Cmd)
		for _, a := range call.Args {
			line += " " + e.word(a)
		}
		return line
	}
}

func (e *Emitter) sudoCommandLine(call ast.RunCall) string {
	prefix := "sudo"
	for _, o := range call.Options {
		switch o.Name {
		case "user":
			prefix += " -u " + e.word(o.Value)
		case "env_keep":
			prefix += " --preserve-env=" + e.wordInner(o.Value)
		}
	}
	line := prefix + " " + e.wordInner(call.Cmd)
	for _, a := range call.Args {
		line += " " + e.word(a)
	}
	return line
}

func (e *Emitter) shCommandLine(call ast.RunCall) string {
	shell := "sh"
	for _, o := range call.Options {
		if o.Name == "shell" {
			shell = e.wordInner(o.Value)
		}
	}
	line := shell + " -c " + e.word(call.Cmd)
	line += " --"
	for _, a := range call.Args {
		line += " " + e.word(a)
	}
	return line
}

// emitRunStmt emits a run()/sudo()/sh() statement. Default behavior
// aborts the script on non-zero exit via a location-stamped diagnostic;
// allow_fail: true instead just records the status for status(). The
// allow_fail branch must keep the command as the condition of an if so a
// non-zero exit never reaches set -e/-eu unguarded.
func (e *Emitter) emitRunStmt(s *ast.Stmt, call ast.RunCall) {
	line := e.runCommandLine(call)
	if call.AllowFail {
		e.writeLine("if %s; then", line)
		e.indent++
		e.writeLine("__st=0")
		e.indent--
		e.writeLine("else")
		e.indent++
		e.writeLine("__st=$?")
		e.indent--
		e.writeLine("fi")
		return
	}
	e.writeLine("if ! %s; then", line)
	e.indent++
	e.writeLine("__st=$?")
	e.writeLine(`printf 'runtime error at %s: %%s\n' %s >&2`, s.Span.String(), e.word(call.Cmd))
	e.writeLine(`exit "${__st}"`)
	e.indent--
	e.writeLine("fi")
	e.writeLine("__st=0")
}

// emitPipe emits a single-statement-per-segment pipeline; under Bash,
// `set -o pipefail` (already in the prelude) makes any segment's
// non-zero status fail the whole pipe, so the emitted form is the
// ordinary shell `|`. Under POSIX, which has no pipefail, the pipeline is
// emitted the same way and __st records only the last segment's status;
// a failure in an earlier segment is not seen.
func (e *Emitter) emitPipe(s *ast.Stmt, segs []*ast.Stmt) {
	e.emitPipeline(s, segStmtLines(e, segs))
}

func (e *Emitter) emitPipeBlocks(s *ast.Stmt, segs [][]*ast.Stmt) {
	lines := make([]string, len(segs))
	for i, seg := range segs {
		lines[i] = e.groupLine(seg)
	}
	e.emitPipeline(s, lines)
}

func segStmtLines(e *Emitter, segs []*ast.Stmt) []string {
	lines := make([]string, len(segs))
	for i, seg := range segs {
		lines[i] = e.stmtLine(seg)
	}
	return lines
}

// stmtLine renders a single statement as one shell command line, for use
// as a pipeline segment. Only the statement kinds that make sense as a
// pipe segment (Run, Exec, ExprStmt) are expected here.
func (e *Emitter) stmtLine(s *ast.Stmt) string {
	switch k := s.Kind.(type) {
	case ast.Run:
		return e.runCommandLine(k.Call)
	case ast.Exec:
		return "exec " + e.argv(k.Args)
	case ast.ExprStmt:
		return e.invoke(k.X)
	default:
		return ""
	}
}

func (e *Emitter) groupLine(stmts []*ast.Stmt) string {
	out := "{ "
	for _, s := range stmts {
		out += e.stmtLine(s) + "; "
	}
	out += "}"
	return out
}

func (e *Emitter) emitPipeline(s *ast.Stmt, segs []string) {
	line := ""
	for i, seg := range segs {
		if i > 0 {
			line += " | "
		}
		line += seg
	}
	if e.condUsesBash() {
		e.writeLine("%s", line)
		e.writeLine("__st=$?")
		return
	}
	// POSIX: no pipefail. Capture the last segment's status directly
	// ($? already reflects it after a pipeline) and accept that an
	// earlier segment's failure is invisible, same as plain POSIX sh.
	e.writeLine("%s", line)
	e.writeLine("__st=$?")
}

// commandPipeInline renders a `$( stmt1 | stmt2 )` capture's segments as
// one inline pipeline string, for splicing into a command substitution.
func (e *Emitter) commandPipeInline(segs []*ast.Stmt) string {
	lines := segStmtLines(e, segs)
	out := ""
	for i, l := range lines {
		if i > 0 {
			out += " | "
		}
		out += l
	}
	return out
}

func (e *Emitter) emitIf(k ast.If) {
	e.writeLine("if %s; then", e.condition(k.Cond))
	e.indent++
	e.emitStmts(k.Then)
	e.indent--
	if len(k.Else) > 0 {
		e.writeLine("else")
		e.indent++
		e.emitStmts(k.Else)
		e.indent--
	}
	e.writeLine("fi")
}

func (e *Emitter) emitFor(k ast.For) {
	if lines, ok := k.Iter.Kind.(ast.Lines); ok {
		e.emitForLines(k.Binder, lines, k.Body)
		return
	}
	e.writeLine("for %s in %s; do", k.Binder, e.word(k.Iter))
	e.indent++
	e.enterBlock()
	e.emitStmts(k.Body)
	e.indent--
	e.writeLine("done")
}

// emitForLines lowers `for x in lines(src)`: Bash reads the source into
// an array with mapfile and iterates it (POSIX never reaches here — the
// resolver rejects lines() on that target before codegen runs).
func (e *Emitter) emitForLines(binder string, lines ast.Lines, body []*ast.Stmt) {
	arr := e.newTemp()
	e.writeLine("mapfile -t %s < %s", arr, e.word(lines.Target))
	e.writeLine(`for %s in "${%s[@]}"; do`, binder, arr)
	e.indent++
	e.enterBlock()
	e.emitStmts(body)
	e.indent--
	e.writeLine("done")
}

func (e *Emitter) emitTryCatch(k ast.TryCatch) {
	flag := e.newTemp()
	e.writeLine("%s=0", flag)
	e.writeLine("(")
	e.indent++
	e.enterBlock()
	e.emitStmts(k.Try)
	e.indent--
	e.writeLine(`) || %s=1`, flag)
	e.writeLine(`if [ "${%s}" -ne 0 ]; then`, flag)
	e.indent++
	e.enterBlock()
	e.emitStmts(k.Catch)
	e.indent--
	e.writeLine("fi")
}

func (e *Emitter) emitSpawn(k ast.Spawn) {
	e.writeLine("(")
	e.indent++
	e.enterBlock()
	e.emitStmt(k.Stmt)
	e.indent--
	e.writeLine(") &")
}

func (e *Emitter) emitWait(k ast.Wait) {
	if len(k.Targets) == 0 {
		e.writeLine("wait")
		e.writeLine("__st=$?")
		return
	}
	line := "wait"
	for _, t := range k.Targets {
		line += " " + e.word(t)
	}
	e.writeLine("%s", line)
	e.writeLine("__st=$?")
}

func (e *Emitter) emitWriteFile(k ast.WriteFile) {
	redir := ">"
	if k.Append {
		redir = ">>"
	}
	e.writeLine("printf '%%s' %s %s %s", e.word(k.Content), redir, e.word(k.Path))
	e.writeLine("__st=$?")
}

func (e *Emitter) emitReadFile(k ast.ReadFile) {
	bind := k.Bind
	if bind == "" {
		bind = "__sh2_read"
	}
	e.writeLine("%s=\"$(cat %s)\"", bind, e.word(k.Path))
	e.writeLine("__st=$?")
}

// emitLog lowers a Bash-only `log { ... }` / `log.LEVEL { ... }` block:
// each print directly in the block body is prefixed with a level tag and
// timestamp (prints nested inside other statements are emitted as is), the
// simplest structured-logging shape that needs no external dependency in
// the generated script.
func (e *Emitter) emitLog(k ast.Log) {
	level := k.Level
	if level == "" {
		level = "info"
	}
	e.writeLine(`__sh2_log_prefix="$(date -u +%%Y-%%m-%%dT%%H:%%M:%%SZ) [%s]"`, level)
	e.indent++
	e.emitLogBody(k.Body)
	e.indent--
}

func (e *Emitter) emitLogBody(stmts []*ast.Stmt) {
	for _, s := range stmts {
		if p, ok := s.Kind.(ast.Print); ok {
			e.writeLine(`printf '%%s %%s\n' "${__sh2_log_prefix}" %s`, e.word(p.X))
			continue
		}
		e.emitStmt(s)
	}
}
