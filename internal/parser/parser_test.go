package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kazz187/sh2c/internal/ast"
)

func TestParse_MinimalMain(t *testing.T) {
	prog, err := Parse("t.sl", "func main() { }")
	require.Nil(t, err)
	require.Len(t, prog.Functions, 1)
	assert.Equal(t, "main", prog.Functions[0].Name)
}

func TestParse_LetAndPrintCall(t *testing.T) {
	prog, err := Parse("t.sl", `func main() { let x = "hi"; print(x) }`)
	require.Nil(t, err)
	body := prog.Functions[0].Body
	require.Len(t, body, 2)

	let, ok := body[0].Kind.(ast.Let)
	require.True(t, ok)
	assert.Equal(t, "x", let.Name)

	exprStmt, ok := body[1].Kind.(ast.ExprStmt)
	require.True(t, ok)
	call, ok := exprStmt.X.Kind.(ast.Call)
	require.True(t, ok)
	assert.Equal(t, "print", call.Name)
}

func TestParse_StringInterpolationBuildsConcat(t *testing.T) {
	prog, err := Parse("t.sl", `func main() { let g = "hi ${name}" }`)
	require.Nil(t, err)
	let := prog.Functions[0].Body[0].Kind.(ast.Let)
	concat, ok := let.Value.Kind.(ast.Concat)
	require.True(t, ok)
	lit, ok := concat.Left.Kind.(ast.Literal)
	require.True(t, ok)
	assert.Equal(t, "hi ", lit.Value)
	v, ok := concat.Right.Kind.(ast.Var)
	require.True(t, ok)
	assert.Equal(t, "name", v.Name)
}

func TestParse_IfElse(t *testing.T) {
	prog, err := Parse("t.sl", `func main() { if true { print("a") } else { print("b") } }`)
	require.Nil(t, err)
	ifStmt, ok := prog.Functions[0].Body[0].Kind.(ast.If)
	require.True(t, ok)
	require.Len(t, ifStmt.Then, 1)
	require.Len(t, ifStmt.Else, 1)
}

func TestParse_ForLoop(t *testing.T) {
	prog, err := Parse("t.sl", `func main() { for x in items { print(x) } }`)
	require.Nil(t, err)
	forStmt, ok := prog.Functions[0].Body[0].Kind.(ast.For)
	require.True(t, ok)
	assert.Equal(t, "x", forStmt.Binder)
}

func TestParse_NamedOptions(t *testing.T) {
	prog, err := Parse("t.sl", `func main() { run("false", allow_fail: true) }`)
	require.Nil(t, err)
	exprStmt := prog.Functions[0].Body[0].Kind.(ast.ExprStmt)
	call := exprStmt.X.Kind.(ast.Call)
	require.Len(t, call.Options, 1)
	assert.Equal(t, "allow_fail", call.Options[0].Name)
}

func TestParse_CompareAndBoolOps(t *testing.T) {
	prog, err := Parse("t.sl", `func main() { if x == "1" and not y { print("ok") } }`)
	require.Nil(t, err)
	ifStmt := prog.Functions[0].Body[0].Kind.(ast.If)
	and, ok := ifStmt.Cond.Kind.(ast.And)
	require.True(t, ok)
	_, ok = and.Left.Kind.(ast.Compare)
	require.True(t, ok)
	_, ok = and.Right.Kind.(ast.Not)
	require.True(t, ok)
}

func TestParse_Pipe(t *testing.T) {
	prog, err := Parse("t.sl", `func main() { run("echo","a") | run("grep","a") }`)
	require.Nil(t, err)
	pipe, ok := prog.Functions[0].Body[0].Kind.(ast.Pipe)
	require.True(t, ok)
	assert.Len(t, pipe.Segments, 2)
}

func TestParse_CommandPipeCapture(t *testing.T) {
	prog, err := Parse("t.sl", `func main() { let x = $( run("echo","a") | run("grep","a") ) }`)
	require.Nil(t, err)
	let := prog.Functions[0].Body[0].Kind.(ast.Let)
	cp, ok := let.Value.Kind.(ast.CommandPipe)
	require.True(t, ok)
	assert.Len(t, cp.Segments, 2)
}

func TestParse_WithEnv(t *testing.T) {
	prog, err := Parse("t.sl", `func main() { with env { FOO = "bar" } { print(env("FOO")) } }`)
	require.Nil(t, err)
	we, ok := prog.Functions[0].Body[0].Kind.(ast.WithEnv)
	require.True(t, ok)
	require.Len(t, we.Bindings, 1)
	assert.Equal(t, "FOO", we.Bindings[0].Name)
}

func TestParse_SpawnWaitPid(t *testing.T) {
	prog, err := Parse("t.sl", `func main() { spawn run("sleep","0"); let p = pid(); wait(p) }`)
	require.Nil(t, err)
	_, ok := prog.Functions[0].Body[0].Kind.(ast.Spawn)
	require.True(t, ok)
}

func TestParse_MatchCaseDefault(t *testing.T) {
	prog, err := Parse("t.sl", `func main() { match x { case "a" { print("1") } default { print("2") } } }`)
	require.Nil(t, err)
	c, ok := prog.Functions[0].Body[0].Kind.(ast.Case)
	require.True(t, ok)
	require.Len(t, c.Arms, 1)
	require.Len(t, c.Default, 1)
}

func TestParse_QualifiedCall(t *testing.T) {
	prog, err := Parse("t.sl", `func main() { helpers.greet("x") }`)
	require.Nil(t, err)
	exprStmt := prog.Functions[0].Body[0].Kind.(ast.ExprStmt)
	call := exprStmt.X.Kind.(ast.Call)
	assert.Equal(t, "helpers.greet", call.Name)
}

func TestParse_MissingClosingBrace(t *testing.T) {
	_, err := Parse("t.sl", `func main() { print("x")`)
	require.NotNil(t, err)
}
