// Package resolve validates a desugared AST against the builtin catalog
// and the active target, and annotates it with the side tables codegen
// needs: expression context, resolved call identity, and target-gating.
package resolve

import (
	"strconv"
	"strings"

	"github.com/kazz187/sh2c/internal/ast"
	"github.com/kazz187/sh2c/internal/diag"
	"github.com/kazz187/sh2c/internal/target"
)

type resolver struct {
	prog   *ast.Program
	tgt    target.Target
	ann    *ast.Annotations
	errs   []*diag.Error
}

// Resolve validates prog against tgt, returning the annotations and every
// error found in a single pass. See DESIGN.md for why resolve collects
// rather than aborting at the first error, unlike lex/parse.
func Resolve(prog *ast.Program, tgt target.Target) (*ast.Annotations, []*diag.Error) {
	r := &resolver{prog: prog, tgt: tgt, ann: ast.NewAnnotations()}
	for _, fn := range prog.Functions {
		r.resolveStmts(fn.Body)
	}
	return r.ann, r.errs
}

func (r *resolver) fail(span ast.Span, msg string) {
	r.errs = append(r.errs, diag.New(diag.ResolveError, span, msg))
}

func (r *resolver) resolveStmts(stmts []*ast.Stmt) {
	for _, s := range stmts {
		r.resolveStmt(s)
	}
}

func (r *resolver) classifyStmt(s *ast.Stmt, ctx ast.ExprContext) {
	// Only CommandPipe segments need their inner expressions forced into
	// CtxCommandSub; reuse the statement-walking logic for that one case.
	switch k := s.Kind.(type) {
	case ast.ExprStmt:
		r.classify(k.X, ctx)
	case ast.Run:
		r.resolveRunCall(s.Span, k.Call, ctx)
	case ast.Let:
		r.classify(k.Value, ctx)
	case ast.Set:
		r.classify(k.Value, ctx)
	}
}

func (r *resolver) resolveStmt(s *ast.Stmt) {
	switch k := s.Kind.(type) {
	case ast.Let:
		r.classify(k.Value, ast.CtxStringCoercion)
	case ast.Set:
		r.classify(k.Value, ast.CtxStringCoercion)
	case ast.Print:
		r.classify(k.X, ast.CtxStringCoercion)
		if isBooleanExpr(k.X) {
			r.fail(s.Span, "Cannot emit boolean/list value as string")
		}
	case ast.Return:
		r.classify(k.X, ast.CtxStringCoercion)
	case ast.Exec:
		for _, a := range k.Args {
			r.classify(a, ast.CtxStringCoercion)
		}
	case ast.Run:
		r.resolveRunCall(s.Span, k.Call, ast.CtxStatement)
	case ast.Pipe:
		for _, seg := range k.Segments {
			r.resolveStmt(seg)
		}
	case ast.PipeBlocks:
		for _, seg := range k.Segments {
			r.resolveStmts(seg)
		}
	case ast.If:
		r.classify(k.Cond, ast.CtxCondition)
		r.resolveStmts(k.Then)
		r.resolveStmts(k.Else)
	case ast.For:
		// POSIX rejection of lines() iteration is handled uniformly by
		// classify's ast.Lines case in context.go.
		r.classify(k.Iter, ast.CtxStringCoercion)
		r.resolveStmts(k.Body)
	case ast.Group:
		r.resolveStmts(k.Body)
	case ast.Case:
		r.classify(k.Scrutinee, ast.CtxStringCoercion)
		for _, arm := range k.Arms {
			r.classify(arm.Pattern, ast.CtxStringCoercion)
			r.resolveStmts(arm.Body)
		}
		r.resolveStmts(k.Default)
	case ast.TryCatch:
		r.resolveStmts(k.Try)
		r.resolveStmts(k.Catch)
	case ast.WithEnv:
		for _, b := range k.Bindings {
			r.classify(b.Value, ast.CtxStringCoercion)
		}
		r.resolveStmts(k.Body)
	case ast.Spawn:
		r.resolveStmt(k.Stmt)
	case ast.Wait:
		for _, t := range k.Targets {
			r.classify(t, ast.CtxStringCoercion)
		}
	case ast.WriteFile:
		r.classify(k.Path, ast.CtxStringCoercion)
		r.classify(k.Content, ast.CtxStringCoercion)
	case ast.ReadFile:
		r.classify(k.Path, ast.CtxStringCoercion)
	case ast.Log:
		if r.tgt == target.Posix {
			r.fail(s.Span, "with log(...) is not supported in POSIX sh target")
		}
		r.resolveStmts(k.Body)
	case ast.ExprStmt:
		r.resolveCallStmt(s, k.X, ast.CtxStatement)
	}
}

// resolveCallStmt handles a bare call used as a statement: validates the
// call if it names a builtin, and rejects lines() used as a standalone
// statement. Other positions of lines() outside a for-iterator or let
// right-hand side are not checked here.
func (r *resolver) resolveCallStmt(s *ast.Stmt, x *ast.Expr, ctx ast.ExprContext) {
	r.classify(x, ctx)
	if _, ok := x.Kind.(ast.Lines); ok {
		r.fail(s.Span, "lines() is only valid in 'for' loops or 'let'")
	}
}

func (r *resolver) resolveRunCall(span ast.Span, call ast.RunCall, ctx ast.ExprContext) {
	name := runCallName(call.Kind)
	if ctx == ast.CtxCommandSub && len(call.Options) > 0 {
		r.fail(span, "run() options are not allowed in command substitution $(...)")
		return
	}
	r.checkOptions(span, name, call.Options)
	r.classify(call.Cmd, ast.CtxStringCoercion)
	for _, a := range call.Args {
		r.classify(a, ast.CtxStringCoercion)
	}
}

func runCallName(k ast.RunKind) string {
	switch k {
	case ast.RunSudo:
		return "sudo"
	case ast.RunSh:
		return "sh"
	default:
		return "run"
	}
}

// resolveCall validates a generic Call expression — either a recognized
// builtin or a user function reference, possibly name-mangled
// (alias.func(...)) — and tags it via ResolvedCalls.
func (r *resolver) resolveCall(e *ast.Expr, ctx ast.ExprContext) {
	call := e.Kind.(ast.Call)
	span := e.Span

	if alias, fn, ok := splitQualified(call.Name); ok {
		mangled := "__imp_" + alias + "__" + fn
		r.ann.ResolvedCalls[e.ID] = ast.ResolvedCall{IsBuiltin: false, MangledName: mangled}
		r.checkOptions(span, call.Name, call.Options)
		return
	}

	sig, isBuiltin := Builtins[call.Name]
	if !isBuiltin {
		fn := r.prog.Lookup(call.Name)
		if fn == nil {
			r.fail(span, "call to undefined function '"+call.Name+"'")
			return
		}
		if len(call.Args) != len(fn.Params) {
			r.fail(span, "function '"+call.Name+"' expects "+strconv.Itoa(len(fn.Params))+" argument(s)")
		}
		r.ann.ResolvedCalls[e.ID] = ast.ResolvedCall{IsBuiltin: false, UserFunc: fn}
		r.checkOptions(span, call.Name, call.Options)
		return
	}

	if sig.MinArgs >= 0 && len(call.Args) < sig.MinArgs {
		r.fail(span, "too few arguments to '"+call.Name+"'")
	}
	if sig.MaxArgs >= 0 && len(call.Args) > sig.MaxArgs {
		r.fail(span, "too many arguments to '"+call.Name+"'")
	}
	if r.tgt == target.Posix && !sig.TargetPosix {
		r.fail(span, targetGateMessage(call.Name))
		r.ann.TargetGated[e.ID] = call.Name
	}
	r.ann.ResolvedCalls[e.ID] = ast.ResolvedCall{IsBuiltin: true, Builtin: sig}
	r.checkOptions(span, call.Name, call.Options)
}

func targetGateMessage(name string) string {
	switch name {
	case "input":
		return "input() is not supported in POSIX sh target"
	case "find_files":
		return "find_files() is not supported in POSIX sh target"
	case "lines":
		return "lines() iteration not supported in POSIX"
	default:
		return "'" + name + "' is not supported in POSIX sh target"
	}
}

// checkOptions enforces the shared option policy: named arguments are only
// legal on run/sudo/sh/capture/confirm; unknown or duplicate options are
// rejected; allow_fail must be a boolean literal.
func (r *resolver) checkOptions(span ast.Span, name string, opts []ast.Option) {
	if len(opts) == 0 {
		return
	}
	if !AllowsNamedOptions(name) {
		r.fail(span, "Named arguments are only supported for builtins: run, sudo, sh, capture, confirm")
		return
	}
	sig := Builtins[name]
	seen := make(map[string]bool, len(opts))
	for _, o := range opts {
		if seen[o.Name] {
			if o.Name == "allow_fail" {
				r.fail(span, "allow_fail specified more than once")
			} else {
				r.fail(span, "option '"+o.Name+"' specified more than once")
			}
			continue
		}
		seen[o.Name] = true
		if sig != nil && !contains(sig.NamedOptions, o.Name) {
			r.fail(span, "Unknown option '"+o.Name+"' for "+name+"()")
			continue
		}
		if o.Name == "allow_fail" {
			if _, ok := o.Value.Kind.(ast.Bool); !ok {
				r.fail(span, "allow_fail must be a boolean literal")
			}
		}
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func splitQualified(name string) (alias, fn string, ok bool) {
	i := strings.IndexByte(name, '.')
	if i < 0 {
		return "", "", false
	}
	return name[:i], name[i+1:], true
}

// isBooleanExpr reports whether x is, syntactically, a value that would
// stringify to something other than what bool_str produces — i.e. a raw
// boolean not already wrapped.
func isBooleanExpr(x *ast.Expr) bool {
	switch x.Kind.(type) {
	case ast.Bool, ast.Not, ast.And, ast.Or, ast.Compare,
		ast.IsExec, ast.IsFile, ast.IsDir, ast.IsNonEmpty,
		ast.Contains, ast.ContainsLine:
		return true
	default:
		return false
	}
}

