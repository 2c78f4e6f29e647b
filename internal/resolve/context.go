package resolve

import (
	"github.com/kazz187/sh2c/internal/ast"
	"github.com/kazz187/sh2c/internal/target"
)

// classify records ctx for e (and, transitively, operands where the
// context is inherited — the operands of Not/And/Or stay in whatever
// context the parent expression was evaluated in, while both sides of a
// Compare are classified as string coercion).
func (r *resolver) classify(e *ast.Expr, ctx ast.ExprContext) {
	if e == nil {
		return
	}
	r.ann.Context[e.ID] = ctx
	switch k := e.Kind.(type) {
	case ast.Not:
		r.classify(k.X, ctx)
	case ast.And:
		r.classify(k.Left, ctx)
		r.classify(k.Right, ctx)
	case ast.Or:
		r.classify(k.Left, ctx)
		r.classify(k.Right, ctx)
	case ast.Compare:
		r.classify(k.Left, ast.CtxStringCoercion)
		r.classify(k.Right, ast.CtxStringCoercion)
	case ast.Concat:
		r.classify(k.Left, ast.CtxStringCoercion)
		r.classify(k.Right, ast.CtxStringCoercion)
	case ast.Env:
		r.classify(k.Name, ast.CtxStringCoercion)
	case ast.Capture:
		r.classify(k.Cmd, ast.CtxCommandSub)
	case ast.CommandPipe:
		for _, s := range k.Segments {
			r.classifyStmt(s, ast.CtxCommandSub)
		}
	case ast.Call:
		for _, a := range k.Args {
			r.classify(a, ast.CtxStringCoercion)
		}
		for _, o := range k.Options {
			r.classify(o.Value, ast.CtxStringCoercion)
		}
		r.resolveCall(e, ctx)
	case ast.List:
		for _, item := range k.Items {
			r.classify(item, ast.CtxStringCoercion)
		}
	case ast.Lines:
		r.gateTarget(e.ID, e.Span, "lines")
		r.classify(k.Target, ast.CtxStringCoercion)
	case ast.FindFiles:
		r.gateTarget(e.ID, e.Span, "find_files")
		r.classify(k.Dir, ast.CtxStringCoercion)
		r.classify(k.Pattern, ast.CtxStringCoercion)
	case ast.Input:
		r.gateTarget(e.ID, e.Span, "input")
		r.classify(k.Prompt, ast.CtxStringCoercion)
	}
}

// gateTarget rejects a POSIX-unsupported builtin that desugar already
// lowered into a dedicated ExprKind, so it never reaches resolveCall's
// generic Call-name lookup.
func (r *resolver) gateTarget(id ast.NodeID, span ast.Span, name string) {
	if r.tgt != target.Posix {
		return
	}
	r.fail(span, targetGateMessage(name))
	r.ann.TargetGated[id] = name
}
