package desugar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kazz187/sh2c/internal/ast"
	"github.com/kazz187/sh2c/internal/parser"
)

func mustParse(t *testing.T, src string) *ast.Program {
	t.Helper()
	prog, err := parser.Parse("t.sl", src)
	require.Nil(t, err)
	return prog
}

func TestDesugar_RequiresMain(t *testing.T) {
	prog := mustParse(t, "func foo() { }")
	_, err := Desugar(prog)
	require.NotNil(t, err)
	assert.Contains(t, err.Message, "main")
}

func TestDesugar_MainMustBeZeroArity(t *testing.T) {
	prog := mustParse(t, "func main(x) { }")
	_, err := Desugar(prog)
	require.NotNil(t, err)
	assert.Contains(t, err.Message, "zero parameters")
}

func TestDesugar_RunStatementNormalizes(t *testing.T) {
	prog := mustParse(t, `func main() { run("false", allow_fail: true) }`)
	out, err := Desugar(prog)
	require.Nil(t, err)
	run, ok := out.Functions[0].Body[0].Kind.(ast.Run)
	require.True(t, ok)
	assert.Equal(t, ast.RunPlain, run.Call.Kind)
	assert.True(t, run.Call.AllowFail)
}

func TestDesugar_SudoNormalizesToRun(t *testing.T) {
	prog := mustParse(t, `func main() { sudo("reboot", user: "root") }`)
	out, err := Desugar(prog)
	require.Nil(t, err)
	run, ok := out.Functions[0].Body[0].Kind.(ast.Run)
	require.True(t, ok)
	assert.Equal(t, ast.RunSudo, run.Call.Kind)
}

func TestDesugar_ShNormalizesToRun(t *testing.T) {
	prog := mustParse(t, `func main() { sh("echo hi", shell: "bash") }`)
	out, err := Desugar(prog)
	require.Nil(t, err)
	run, ok := out.Functions[0].Body[0].Kind.(ast.Run)
	require.True(t, ok)
	assert.Equal(t, ast.RunSh, run.Call.Kind)
}

func TestDesugar_PrintBecomesDedicatedKind(t *testing.T) {
	prog := mustParse(t, `func main() { print("hi") }`)
	out, err := Desugar(prog)
	require.Nil(t, err)
	_, ok := out.Functions[0].Body[0].Kind.(ast.Print)
	require.True(t, ok)
}

func TestDesugar_StatusPidBuiltinsBecomeDedicatedExprs(t *testing.T) {
	prog := mustParse(t, `func main() { let s = status(); let p = pid() }`)
	out, err := Desugar(prog)
	require.Nil(t, err)
	sLet := out.Functions[0].Body[0].Kind.(ast.Let)
	_, ok := sLet.Value.Kind.(ast.Status)
	require.True(t, ok)
	pLet := out.Functions[0].Body[1].Kind.(ast.Let)
	_, ok = pLet.Value.Kind.(ast.Pid)
	require.True(t, ok)
}

func TestDesugar_CaptureTracksAllowFail(t *testing.T) {
	prog := mustParse(t, `func main() { let o = capture(run("false", allow_fail: true)) }`)
	out, err := Desugar(prog)
	require.Nil(t, err)
	let := out.Functions[0].Body[0].Kind.(ast.Let)
	cap, ok := let.Value.Kind.(ast.Capture)
	require.True(t, ok)
	assert.True(t, cap.AllowFail)
}

func TestDesugar_UserFunctionCallStaysExprStmt(t *testing.T) {
	prog := mustParse(t, `func greet() { } func main() { greet() }`)
	out, err := Desugar(prog)
	require.Nil(t, err)
	_, ok := out.Functions[1].Body[0].Kind.(ast.ExprStmt)
	require.True(t, ok)
}

func TestDesugar_WaitBecomesDedicatedKind(t *testing.T) {
	prog := mustParse(t, `func main() { spawn run("sleep","0"); let p = pid(); wait(p) }`)
	out, err := Desugar(prog)
	require.Nil(t, err)
	_, ok := out.Functions[0].Body[2].Kind.(ast.Wait)
	require.True(t, ok)
}
