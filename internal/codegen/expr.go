package codegen

import (
	"fmt"
	"strconv"

	"github.com/kazz187/sh2c/internal/ast"
	"github.com/kazz187/sh2c/internal/target"
)

// word renders e as a complete, double-quoted (or single-quoted, for a raw
// string) shell word. This is what gets interpolated into a command line,
// an assignment's right-hand side, or a condition's operand.
func (e *Emitter) word(x *ast.Expr) string {
	if x == nil {
		return `""`
	}
	switch k := x.Kind.(type) {
	case ast.Literal:
		return `"` + escapeDouble(k.Value) + `"`
	case ast.Number:
		return `"` + strconv.FormatInt(k.Value, 10) + `"`
	case ast.Bool:
		if k.Value {
			return `"true"`
		}
		return `"false"`
	default:
		return `"` + e.wordInner(x) + `"`
	}
}

// rawWord renders a raw string (r"...") as a single-quoted word; only
// ast.Literal reaches here, since raw strings never interpolate and the
// lexer/parser fold them straight to a Literal with IsLit semantics lost
// by the time codegen sees them. Callers that know they have a raw string
// (desugar never distinguishes the two at the AST level beyond this) use
// word() uniformly; rawWord exists for call sites that want the
// POSIX-safest form regardless.
func (e *Emitter) rawWord(x *ast.Expr) string {
	if lit, ok := x.Kind.(ast.Literal); ok {
		return singleQuote(lit.Value)
	}
	return e.word(x)
}

// wordInner renders the contents of x without the surrounding quotes, so
// Concat can splice operands together into a single word instead of
// nesting quoted fragments.
func (e *Emitter) wordInner(x *ast.Expr) string {
	switch k := x.Kind.(type) {
	case ast.Literal:
		return escapeDouble(k.Value)
	case ast.Number:
		return strconv.FormatInt(k.Value, 10)
	case ast.Bool:
		if k.Value {
			return "true"
		}
		return "false"
	case ast.Var:
		return "${" + k.Name + "}"
	case ast.Concat:
		return e.wordInner(k.Left) + e.wordInner(k.Right)
	case ast.EnvDot:
		return "${" + k.Name + "}"
	case ast.Env:
		return e.envIndirect(k.Name)
	case ast.Capture:
		return e.captureInner(k)
	case ast.CommandPipe:
		return "$(" + e.commandPipeInline(k.Segments) + ")"
	case ast.Status:
		return "${__st}"
	case ast.Pid:
		return "$!"
	case ast.Uid:
		return "$(id -u)"
	case ast.Ppid:
		return "${PPID}"
	case ast.Pwd:
		return "$(pwd)"
	case ast.IsExec:
		return e.testInner(x)
	case ast.IsFile:
		return e.testInner(x)
	case ast.IsDir:
		return e.testInner(x)
	case ast.IsNonEmpty:
		return e.testInner(x)
	case ast.Contains:
		return e.testInner(x)
	case ast.ContainsLine:
		return e.testInner(x)
	case ast.BoolStr:
		return "$(__sh2_bool_str " + e.word(k.X) + ")"
	case ast.Which:
		return "$(__sh2_which " + e.word(k.Name) + ")"
	case ast.Matches:
		return e.testInner(x)
	case ast.Arg:
		return e.argInner(k.Index)
	case ast.FindFiles:
		return "$(__sh2_find_files " + e.word(k.Dir) + " " + e.word(k.Pattern) + ")"
	case ast.Input:
		return e.inputInner(k)
	case ast.List:
		return e.listInner(k)
	case ast.Call:
		return e.callInner(x, k)
	default:
		return ""
	}
}

// testInner turns a boolean-shaped expression into a `$(if ...; then
// printf 1; else printf 0; fi)` string value, for the (uncommon) case where a
// condition expression is interpolated into a word rather than used
// directly as an if/while test. Direct condition use goes through
// condition() in cond.go instead and never calls this.
func (e *Emitter) testInner(x *ast.Expr) string {
	return "$(if " + e.condition(x) + "; then printf 1; else printf 0; fi)"
}

func (e *Emitter) envIndirect(name *ast.Expr) string {
	// Dynamic environment lookup by a computed name: POSIX has no
	// `${!name}` indirection, so both targets go through eval.
	return fmt.Sprintf(`$(eval "printf '%%s' \"\${%s}\"")`, e.wordInner(name))
}

func (e *Emitter) captureInner(c ast.Capture) string {
	line := e.invoke(c.Cmd)
	if call, ok := c.Cmd.Kind.(ast.Call); ok {
		if run := e.asRunCall(call); run != nil {
			line = e.runCommandLine(*run)
		}
	}
	if !c.AllowFail {
		return "$(" + line + ")"
	}
	// capture(run(..., allow_fail: true)): the substitution's own exit
	// status must not reach set -e/-eu through the enclosing assignment,
	// but status() still needs to see it afterward, so the assignment
	// itself is the guard and __st is set from its branch.
	tmp := e.newTemp()
	e.writeLine(`if %s="$(%s)"; then`, tmp, line)
	e.indent++
	e.writeLine("__st=0")
	e.indent--
	e.writeLine("else")
	e.indent++
	e.writeLine("__st=$?")
	e.indent--
	e.writeLine("fi")
	return "${" + tmp + "}"
}

// invoke renders x as a standalone command to execute for its effect or
// exit status (statement position, or the Cmd slot of capture()/run()),
// as opposed to word()/wordInner() which render x as a *value*. A Call
// becomes a direct invocation (no $(...) wrapper — that would capture
// its stdout instead of running it); anything else is a boolean-shaped
// expression and becomes the same standalone test condition() builds for
// if/while.
func (e *Emitter) invoke(x *ast.Expr) string {
	if call, ok := x.Kind.(ast.Call); ok {
		resolved := e.ann.ResolvedCalls[x.ID]
		switch {
		case resolved.IsBuiltin && call.Name == "confirm":
			return e.confirmCommand(call)
		case resolved.IsBuiltin && (call.Name == "run" || call.Name == "sudo" || call.Name == "sh"):
			run := e.asRunCall(call)
			return e.runCommandLine(*run)
		case resolved.MangledName != "":
			return e.userCallLine(resolved.MangledName, call.Args)
		case resolved.UserFunc != nil:
			return e.userCallLine(resolved.UserFunc.Name, call.Args)
		default:
			return e.userCallLine(call.Name, call.Args)
		}
	}
	return e.condition(x)
}

func (e *Emitter) argInner(idx *ast.Expr) string {
	if n, ok := idx.Kind.(ast.Number); ok {
		return fmt.Sprintf("${%d}", n.Value+1)
	}
	// Dynamic index: the original's syntax_arg_dynamic.rs accepts any
	// integer-valued expression, not just literals.
	return `${@:$((` + e.wordInner(idx) + `+1)):1}`
}

func (e *Emitter) inputInner(k ast.Input) string {
	if k.Prompt != nil {
		return "$(printf '%s' " + e.word(k.Prompt) + ` >&2; read -r __sh2_in; printf '%s' "${__sh2_in}")`
	}
	return `$(read -r __sh2_in; printf '%s' "${__sh2_in}")`
}

func (e *Emitter) listInner(k ast.List) string {
	items := make([]string, len(k.Items))
	for i, it := range k.Items {
		items[i] = e.wordInner(it)
	}
	out := ""
	for i, s := range items {
		if i > 0 {
			out += " "
		}
		out += s
	}
	return out
}

// callInner handles a Call expression that survived desugaring: a
// builtin with no dedicated ExprKind (confirm, or run/sudo/sh used
// directly as a value instead of through capture()), a qualified
// (alias.func) call, or a plain user-function call. A bare function call
// used where a string value is expected captures its stdout, the same
// way capture(run(...)) does — there is no separate "return value"
// mechanism in the generated shell beyond stdout and exit status.
func (e *Emitter) callInner(x *ast.Expr, k ast.Call) string {
	resolved := e.ann.ResolvedCalls[x.ID]
	switch {
	case resolved.IsBuiltin && k.Name == "confirm":
		return "$(" + e.confirmCommand(k) + " && printf 1 || printf 0)"
	case resolved.IsBuiltin && (k.Name == "run" || k.Name == "sudo" || k.Name == "sh"):
		run := e.asRunCall(k)
		return "$(" + e.runCommandLine(*run) + ")"
	case resolved.MangledName != "":
		return "$(" + e.userCallLine(resolved.MangledName, k.Args) + ")"
	case resolved.UserFunc != nil:
		return "$(" + e.userCallLine(resolved.UserFunc.Name, k.Args) + ")"
	default:
		return "$(" + e.userCallLine(k.Name, k.Args) + ")"
	}
}

func (e *Emitter) userCallLine(name string, args []*ast.Expr) string {
	line := name
	for _, a := range args {
		line += " " + e.word(a)
	}
	return line
}

// asRunCall reconstructs a RunCall from a generic Call named run/sudo/sh
// that desugar left untouched because it appeared in expression rather
// than statement position (desugarExprStmt only fires for statements).
func (e *Emitter) asRunCall(k ast.Call) *ast.RunCall {
	kind := ast.RunPlain
	switch k.Name {
	case "sudo":
		kind = ast.RunSudo
	case "sh":
		kind = ast.RunSh
	case "run":
	default:
		return nil
	}
	var cmd *ast.Expr
	var args []*ast.Expr
	if len(k.Args) > 0 {
		cmd = k.Args[0]
		args = k.Args[1:]
	}
	allowFail := false
	for _, o := range k.Options {
		if o.Name == "allow_fail" {
			if b, ok := o.Value.Kind.(ast.Bool); ok {
				allowFail = b.Value
			}
		}
	}
	return &ast.RunCall{Kind: kind, Cmd: cmd, Args: args, Options: k.Options, AllowFail: allowFail}
}

func (e *Emitter) confirmCommand(k ast.Call) string {
	prompt := `""`
	def := `"n"`
	if len(k.Args) > 0 {
		prompt = e.word(k.Args[0])
	}
	for _, o := range k.Options {
		if o.Name == "default" {
			def = e.word(o.Value)
		}
	}
	return "__sh2_confirm " + prompt + " " + def
}

// condUsesBash reports whether condition lowering for the current target
// should use Bash-only test syntax ([[ ]], =~) rather than POSIX [ ].
func (e *Emitter) condUsesBash() bool {
	return e.tgt != target.Posix
}
