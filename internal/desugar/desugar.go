// Package desugar lowers the parser's untyped AST into the shape the
// resolver expects: generic builtin Call expressions become their
// dedicated ExprKind/StmtKind variants, sudo/sh normalize into Run, and
// the implicit-main requirement is enforced.
package desugar

import (
	"github.com/kazz187/sh2c/internal/ast"
	"github.com/kazz187/sh2c/internal/diag"
)

// Desugar returns a rewritten copy of prog (prog itself is not modified —
// see the lifecycle invariant in internal/ast) and checks that a
// zero-arity "main" function exists.
func Desugar(prog *ast.Program) (*ast.Program, *diag.Error) {
	out := &ast.Program{Functions: make([]*ast.Function, len(prog.Functions))}
	for i, fn := range prog.Functions {
		out.Functions[i] = desugarFunction(fn)
	}
	main := out.Lookup("main")
	if main == nil {
		return nil, diag.New(diag.ParseError, ast.Span{File: "", Line: 1, Col: 1}, "missing required entrypoint 'main'")
	}
	if len(main.Params) != 0 {
		return nil, diag.New(diag.ParseError, main.Span, "'main' must take zero parameters")
	}
	return out, nil
}

func desugarFunction(fn *ast.Function) *ast.Function {
	return &ast.Function{
		ID:     fn.ID,
		Span:   fn.Span,
		Name:   fn.Name,
		Params: fn.Params,
		Body:   desugarStmts(fn.Body),
	}
}

func desugarStmts(stmts []*ast.Stmt) []*ast.Stmt {
	out := make([]*ast.Stmt, len(stmts))
	for i, s := range stmts {
		out[i] = desugarStmt(s)
	}
	return out
}

func desugarStmt(s *ast.Stmt) *ast.Stmt {
	switch k := s.Kind.(type) {
	case ast.Let:
		return ast.NewStmt(s.Span, ast.Let{Name: k.Name, Value: desugarExpr(k.Value)})
	case ast.Set:
		return ast.NewStmt(s.Span, ast.Set{Target: k.Target, Value: desugarExpr(k.Value)})
	case ast.Print:
		return ast.NewStmt(s.Span, ast.Print{X: desugarExpr(k.X)})
	case ast.Return:
		if k.X == nil {
			return s
		}
		return ast.NewStmt(s.Span, ast.Return{X: desugarExpr(k.X)})
	case ast.Exec:
		return ast.NewStmt(s.Span, ast.Exec{Args: desugarExprs(k.Args)})
	case ast.If:
		return ast.NewStmt(s.Span, ast.If{Cond: desugarExpr(k.Cond), Then: desugarStmts(k.Then), Else: desugarStmts(k.Else)})
	case ast.For:
		return ast.NewStmt(s.Span, ast.For{Binder: k.Binder, Iter: desugarExpr(k.Iter), Body: desugarStmts(k.Body)})
	case ast.Group:
		return ast.NewStmt(s.Span, ast.Group{Body: desugarStmts(k.Body)})
	case ast.Pipe:
		return ast.NewStmt(s.Span, ast.Pipe{Segments: desugarStmts(k.Segments)})
	case ast.PipeBlocks:
		segs := make([][]*ast.Stmt, len(k.Segments))
		for i, seg := range k.Segments {
			segs[i] = desugarStmts(seg)
		}
		return ast.NewStmt(s.Span, ast.PipeBlocks{Segments: segs})
	case ast.Case:
		arms := make([]ast.CaseArm, len(k.Arms))
		for i, arm := range k.Arms {
			arms[i] = ast.CaseArm{Pattern: desugarExpr(arm.Pattern), Body: desugarStmts(arm.Body)}
		}
		return ast.NewStmt(s.Span, ast.Case{Scrutinee: desugarExpr(k.Scrutinee), Arms: arms, Default: desugarStmts(k.Default)})
	case ast.TryCatch:
		return ast.NewStmt(s.Span, ast.TryCatch{Try: desugarStmts(k.Try), Catch: desugarStmts(k.Catch)})
	case ast.WithEnv:
		bindings := make([]ast.EnvBinding, len(k.Bindings))
		for i, b := range k.Bindings {
			bindings[i] = ast.EnvBinding{Name: b.Name, Value: desugarExpr(b.Value)}
		}
		return ast.NewStmt(s.Span, ast.WithEnv{Bindings: bindings, Body: desugarStmts(k.Body)})
	case ast.Spawn:
		return ast.NewStmt(s.Span, ast.Spawn{Stmt: desugarStmt(k.Stmt)})
	case ast.Wait:
		return ast.NewStmt(s.Span, ast.Wait{Targets: desugarExprs(k.Targets)})
	case ast.WriteFile:
		return ast.NewStmt(s.Span, ast.WriteFile{Path: desugarExpr(k.Path), Content: desugarExpr(k.Content), Append: k.Append})
	case ast.ReadFile:
		return ast.NewStmt(s.Span, ast.ReadFile{Path: desugarExpr(k.Path), Bind: k.Bind})
	case ast.Log:
		return ast.NewStmt(s.Span, ast.Log{Level: k.Level, Body: desugarStmts(k.Body)})
	case ast.Run:
		return s // already normalized
	case ast.ExprStmt:
		return desugarExprStmt(s.Span, desugarExpr(k.X))
	default:
		return s
	}
}

// desugarExprStmt recognizes a bare call used as a statement and, when it
// names one of the builtins with a dedicated Stmt kind, rewrites it into
// that kind. Anything else (a user-function call, or a side-effect-only
// builtin like which()/confirm() used for its exit status alone) stays an
// ExprStmt.
func desugarExprStmt(span ast.Span, x *ast.Expr) *ast.Stmt {
	call, ok := x.Kind.(ast.Call)
	if !ok {
		return ast.NewStmt(span, ast.ExprStmt{X: x})
	}
	if len(call.Options) > 0 && call.Name != "run" && call.Name != "sudo" && call.Name != "sh" {
		// Keep the generic Call so the resolver applies its named-argument
		// policy instead of the options being dropped here.
		return ast.NewStmt(span, ast.ExprStmt{X: x})
	}
	switch call.Name {
	case "print":
		if len(call.Args) == 1 {
			return ast.NewStmt(span, ast.Print{X: call.Args[0]})
		}
	case "exec":
		return ast.NewStmt(span, ast.Exec{Args: call.Args})
	case "write_file":
		if len(call.Args) >= 2 {
			appendFlag := false
			if len(call.Args) > 2 {
				if b, ok := call.Args[2].Kind.(ast.Bool); ok {
					appendFlag = b.Value
				}
			}
			return ast.NewStmt(span, ast.WriteFile{Path: call.Args[0], Content: call.Args[1], Append: appendFlag})
		}
	case "read_file":
		if len(call.Args) >= 1 {
			bind := ""
			if len(call.Args) > 1 {
				if v, ok := call.Args[1].Kind.(ast.Var); ok {
					bind = v.Name
				}
			}
			return ast.NewStmt(span, ast.ReadFile{Path: call.Args[0], Bind: bind})
		}
	case "wait":
		return ast.NewStmt(span, ast.Wait{Targets: call.Args})
	case "run":
		return ast.NewStmt(span, ast.Run{Call: ast.RunCall{
			Kind: ast.RunPlain, Cmd: firstOrNil(call.Args), Args: restOf(call.Args),
			Options: call.Options, AllowFail: optBool(call.Options, "allow_fail"),
		}})
	case "sudo":
		return ast.NewStmt(span, ast.Run{Call: ast.RunCall{
			Kind: ast.RunSudo, Cmd: firstOrNil(call.Args), Args: restOf(call.Args),
			Options: call.Options, AllowFail: optBool(call.Options, "allow_fail"),
		}})
	case "sh":
		return ast.NewStmt(span, ast.Run{Call: ast.RunCall{
			Kind: ast.RunSh, Cmd: firstOrNil(call.Args), Args: restOf(call.Args),
			Options: call.Options, AllowFail: optBool(call.Options, "allow_fail"),
		}})
	}
	return ast.NewStmt(span, ast.ExprStmt{X: x})
}

func firstOrNil(args []*ast.Expr) *ast.Expr {
	if len(args) == 0 {
		return nil
	}
	return args[0]
}

func restOf(args []*ast.Expr) []*ast.Expr {
	if len(args) <= 1 {
		return nil
	}
	return args[1:]
}

func optBool(opts []ast.Option, name string) bool {
	for _, o := range opts {
		if o.Name != name {
			continue
		}
		if b, ok := o.Value.Kind.(ast.Bool); ok {
			return b.Value
		}
	}
	return false
}

func desugarExprs(exprs []*ast.Expr) []*ast.Expr {
	out := make([]*ast.Expr, len(exprs))
	for i, e := range exprs {
		out[i] = desugarExpr(e)
	}
	return out
}

// exprBuiltins maps a bare call name to the zero-value dedicated ExprKind
// it lowers to, for builtins whose arity and argument shape is fixed and
// purely positional. The resolver still validates arity; this table only
// decides structural identity.
var exprBuiltins = map[string]func(args []*ast.Expr) (ast.ExprKind, bool){
	"status": func(a []*ast.Expr) (ast.ExprKind, bool) { return ast.Status{}, len(a) == 0 },
	"pid":    func(a []*ast.Expr) (ast.ExprKind, bool) { return ast.Pid{}, len(a) == 0 },
	"uid":    func(a []*ast.Expr) (ast.ExprKind, bool) { return ast.Uid{}, len(a) == 0 },
	"ppid":   func(a []*ast.Expr) (ast.ExprKind, bool) { return ast.Ppid{}, len(a) == 0 },
	"pwd":    func(a []*ast.Expr) (ast.ExprKind, bool) { return ast.Pwd{}, len(a) == 0 },
	"is_exec": func(a []*ast.Expr) (ast.ExprKind, bool) {
		if len(a) != 1 {
			return nil, false
		}
		return ast.IsExec{Path: a[0]}, true
	},
	"is_file": func(a []*ast.Expr) (ast.ExprKind, bool) {
		if len(a) != 1 {
			return nil, false
		}
		return ast.IsFile{Path: a[0]}, true
	},
	"is_dir": func(a []*ast.Expr) (ast.ExprKind, bool) {
		if len(a) != 1 {
			return nil, false
		}
		return ast.IsDir{Path: a[0]}, true
	},
	"is_non_empty": func(a []*ast.Expr) (ast.ExprKind, bool) {
		if len(a) != 1 {
			return nil, false
		}
		return ast.IsNonEmpty{X: a[0]}, true
	},
	"contains": func(a []*ast.Expr) (ast.ExprKind, bool) {
		if len(a) != 2 {
			return nil, false
		}
		return ast.Contains{Haystack: a[0], Needle: a[1]}, true
	},
	"contains_line": func(a []*ast.Expr) (ast.ExprKind, bool) {
		if len(a) != 2 {
			return nil, false
		}
		return ast.ContainsLine{Haystack: a[0], Needle: a[1]}, true
	},
	"bool_str": func(a []*ast.Expr) (ast.ExprKind, bool) {
		if len(a) != 1 {
			return nil, false
		}
		return ast.BoolStr{X: a[0]}, true
	},
	"which": func(a []*ast.Expr) (ast.ExprKind, bool) {
		if len(a) != 1 {
			return nil, false
		}
		return ast.Which{Name: a[0]}, true
	},
	"matches": func(a []*ast.Expr) (ast.ExprKind, bool) {
		if len(a) != 2 {
			return nil, false
		}
		return ast.Matches{X: a[0], Pattern: a[1]}, true
	},
	"arg": func(a []*ast.Expr) (ast.ExprKind, bool) {
		if len(a) != 1 {
			return nil, false
		}
		return ast.Arg{Index: a[0]}, true
	},
	"lines": func(a []*ast.Expr) (ast.ExprKind, bool) {
		if len(a) != 1 {
			return nil, false
		}
		return ast.Lines{Target: a[0]}, true
	},
	"find_files": func(a []*ast.Expr) (ast.ExprKind, bool) {
		if len(a) != 2 {
			return nil, false
		}
		return ast.FindFiles{Dir: a[0], Pattern: a[1]}, true
	},
	"input": func(a []*ast.Expr) (ast.ExprKind, bool) {
		if len(a) > 1 {
			return nil, false
		}
		return ast.Input{Prompt: firstOrNil(a)}, true
	},
}

// desugarExpr recursively lowers a Concat/boolean/comparison tree and
// rewrites recognized builtin Call nodes into their dedicated ExprKind.
func desugarExpr(e *ast.Expr) *ast.Expr {
	if e == nil {
		return nil
	}
	switch k := e.Kind.(type) {
	case ast.Concat:
		return ast.NewExpr(e.Span, ast.Concat{Left: desugarExpr(k.Left), Right: desugarExpr(k.Right)})
	case ast.Not:
		return ast.NewExpr(e.Span, ast.Not{X: desugarExpr(k.X)})
	case ast.And:
		return ast.NewExpr(e.Span, ast.And{Left: desugarExpr(k.Left), Right: desugarExpr(k.Right)})
	case ast.Or:
		return ast.NewExpr(e.Span, ast.Or{Left: desugarExpr(k.Left), Right: desugarExpr(k.Right)})
	case ast.Compare:
		return ast.NewExpr(e.Span, ast.Compare{Left: desugarExpr(k.Left), Op: k.Op, Right: desugarExpr(k.Right)})
	case ast.Env:
		return ast.NewExpr(e.Span, ast.Env{Name: desugarExpr(k.Name)})
	case ast.List:
		return ast.NewExpr(e.Span, ast.List{Items: desugarExprs(k.Items)})
	case ast.CommandPipe:
		return ast.NewExpr(e.Span, ast.CommandPipe{Segments: desugarStmts(k.Segments)})
	case ast.Call:
		args := desugarExprs(k.Args)
		switch k.Name {
		case "capture":
			if len(args) == 1 {
				return ast.NewExpr(e.Span, ast.Capture{Cmd: args[0], AllowFail: innerAllowFail(args[0])})
			}
		default:
			if mk, ok := exprBuiltins[k.Name]; ok {
				if kind, okArity := mk(args); okArity {
					return ast.NewExpr(e.Span, kind)
				}
			}
		}
		return ast.NewExpr(e.Span, ast.Call{Name: k.Name, Args: args, Options: k.Options})
	default:
		return e
	}
}

func innerAllowFail(cmd *ast.Expr) bool {
	call, ok := cmd.Kind.(ast.Call)
	if !ok {
		return false
	}
	return optBool(call.Options, "allow_fail")
}
