package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kazz187/sh2c/internal/ast"
	"github.com/kazz187/sh2c/internal/desugar"
	"github.com/kazz187/sh2c/internal/parser"
	"github.com/kazz187/sh2c/internal/target"
)

func mustResolve(t *testing.T, src string, tgt target.Target) (*ast.Program, *ast.Annotations, []error) {
	t.Helper()
	prog, perr := parser.Parse("t.sl", src)
	require.Nil(t, perr)
	prog, derr := desugar.Desugar(prog)
	require.Nil(t, derr)
	ann, errs := Resolve(prog, tgt)
	out := make([]error, len(errs))
	for i, e := range errs {
		out[i] = e
	}
	return prog, ann, out
}

func firstMsg(t *testing.T, errs []error) string {
	t.Helper()
	require.NotEmpty(t, errs)
	type messager interface{ Error() string }
	return errs[0].(messager).Error()
}

func TestResolve_AllowFailMustBeBoolLiteral(t *testing.T) {
	_, _, errs := mustResolve(t, `func main() { run("false", allow_fail: "yes") }`, target.Bash)
	require.NotEmpty(t, errs)
	assert.Contains(t, firstMsg(t, errs), "allow_fail must be a boolean literal")
}

func TestResolve_DuplicateAllowFail(t *testing.T) {
	_, _, errs := mustResolve(t, `func main() { run("false", allow_fail: true, allow_fail: false) }`, target.Bash)
	require.NotEmpty(t, errs)
	assert.Contains(t, firstMsg(t, errs), "allow_fail specified more than once")
}

func TestResolve_UnknownOption(t *testing.T) {
	_, _, errs := mustResolve(t, `func main() { run("false", bogus: true) }`, target.Bash)
	require.NotEmpty(t, errs)
	assert.Contains(t, firstMsg(t, errs), "Unknown option 'bogus' for run()")
}

func TestResolve_NamedArgsOnDisallowedBuiltin(t *testing.T) {
	_, _, errs := mustResolve(t, `func main() { print("x", foo: 1) }`, target.Bash)
	require.NotEmpty(t, errs)
	assert.Contains(t, firstMsg(t, errs), "Named arguments are only supported for builtins: run, sudo, sh, capture, confirm")
}

func TestResolve_BooleanPrintRejected(t *testing.T) {
	_, _, errs := mustResolve(t, `func main() { print(true) }`, target.Bash)
	require.NotEmpty(t, errs)
	assert.Contains(t, firstMsg(t, errs), "Cannot emit boolean/list value as string")
}

func TestResolve_ComparisonPrintRejected(t *testing.T) {
	_, _, errs := mustResolve(t, `func main() { let n = 1; print(n > 0) }`, target.Bash)
	require.NotEmpty(t, errs)
	assert.Contains(t, firstMsg(t, errs), "Cannot emit boolean/list value as string")
}

func TestResolve_BoolStrPrintAccepted(t *testing.T) {
	_, _, errs := mustResolve(t, `func main() { let t = true; print(bool_str(t)) }`, target.Bash)
	assert.Empty(t, errs)
}

func TestResolve_LinesRejectedOnPosix(t *testing.T) {
	_, _, errs := mustResolve(t, `func main() { for l in lines("f.txt") { print(l) } }`, target.Posix)
	require.NotEmpty(t, errs)
	assert.Contains(t, firstMsg(t, errs), "lines() iteration not supported in POSIX")
}

func TestResolve_LinesAllowedOnBash(t *testing.T) {
	_, _, errs := mustResolve(t, `func main() { for l in lines("f.txt") { print(l) } }`, target.Bash)
	assert.Empty(t, errs)
}

func TestResolve_LinesOutsideForOrLetRejected(t *testing.T) {
	_, _, errs := mustResolve(t, `func main() { lines("f.txt") }`, target.Bash)
	require.NotEmpty(t, errs)
	assert.Contains(t, firstMsg(t, errs), "lines() is only valid in 'for' loops or 'let'")
}

func TestResolve_LogRejectedOnPosix(t *testing.T) {
	_, _, errs := mustResolve(t, `func main() { log { print("hi") } }`, target.Posix)
	require.NotEmpty(t, errs)
	assert.Contains(t, firstMsg(t, errs), "with log(...) is not supported in POSIX sh target")
}

func TestResolve_InputRejectedOnPosix(t *testing.T) {
	_, _, errs := mustResolve(t, `func main() { let x = input() }`, target.Posix)
	require.NotEmpty(t, errs)
}

func TestResolve_UndefinedFunctionCall(t *testing.T) {
	_, _, errs := mustResolve(t, `func main() { nope() }`, target.Bash)
	require.NotEmpty(t, errs)
	assert.Contains(t, firstMsg(t, errs), "undefined function")
}

func TestResolve_QualifiedCallMangles(t *testing.T) {
	prog, ann, errs := mustResolve(t, `func main() { helpers.greet("x") }`, target.Bash)
	assert.Empty(t, errs)
	call := prog.Functions[0].Body[0].Kind.(ast.ExprStmt).X
	resolved := ann.ResolvedCalls[call.ID]
	assert.Equal(t, "__imp_helpers__greet", resolved.MangledName)
}

func TestResolve_CommandPipeForbidsOptions(t *testing.T) {
	_, _, errs := mustResolve(t, `func main() { let x = $( run("echo", allow_fail: true) ) }`, target.Bash)
	require.NotEmpty(t, errs)
	assert.Contains(t, firstMsg(t, errs), "run() options are not allowed in command substitution $(...)")
}

func TestResolve_CaptureRunAllowsOptions(t *testing.T) {
	_, _, errs := mustResolve(t, `func main() { let x = capture(run("echo", allow_fail: true)) }`, target.Bash)
	assert.Empty(t, errs)
}
