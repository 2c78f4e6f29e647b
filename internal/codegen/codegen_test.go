package codegen

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kazz187/sh2c/internal/desugar"
	"github.com/kazz187/sh2c/internal/parser"
	"github.com/kazz187/sh2c/internal/resolve"
	"github.com/kazz187/sh2c/internal/target"
)

func mustCompile(t *testing.T, src string, tgt target.Target) string {
	t.Helper()
	prog, perr := parser.Parse("t.sl", src)
	require.Nil(t, perr)
	prog, derr := desugar.Desugar(prog)
	require.Nil(t, derr)
	ann, errs := resolve.Resolve(prog, tgt)
	require.Empty(t, errs)
	out, eerr := Emit(prog, ann, tgt)
	require.Nil(t, eerr)
	return out
}

func TestEmit_MinimalMainHasShebangAndPrelude(t *testing.T) {
	out := mustCompile(t, `func main() { print("hi") }`, target.Bash)
	assert.True(t, strings.HasPrefix(out, "#!/usr/bin/env bash"))
	assert.Contains(t, out, "set -euo pipefail")
	assert.Contains(t, out, `printf '%s\n' "hi"`)
	assert.Contains(t, out, `main "$@"`)
}

func TestEmit_PosixShebang(t *testing.T) {
	out := mustCompile(t, `func main() { print("hi") }`, target.Posix)
	assert.True(t, strings.HasPrefix(out, "#!/bin/sh"))
	assert.Contains(t, out, "set -eu")
}

func TestEmit_StringInterpolationBecomesConcatenatedWord(t *testing.T) {
	out := mustCompile(t, `func main() { let name = "world"; print("hello ${name}") }`, target.Bash)
	assert.Contains(t, out, `name="world"`)
	assert.Contains(t, out, `"hello ${name}"`)
}

func TestEmit_RunAbortsOnFailureByDefault(t *testing.T) {
	out := mustCompile(t, `func main() { run("false") }`, target.Bash)
	assert.Contains(t, out, "if ! false; then")
	assert.Contains(t, out, "runtime error at")
	assert.Contains(t, out, "exit")
}

func TestEmit_RunAllowFailSkipsTrap(t *testing.T) {
	out := mustCompile(t, `func main() { run("false", allow_fail: true) }`, target.Bash)
	assert.NotContains(t, out, "runtime error at")
	assert.Contains(t, out, "false")
}

func TestEmit_ExecReplacesProcessImage(t *testing.T) {
	out := mustCompile(t, `func main() { exec("ls", "-la") }`, target.Bash)
	assert.Contains(t, out, `exec "ls" "-la"`)
	assert.NotContains(t, out, `$("ls"`)
	assert.NotContains(t, out, "__st=$?\nexec")
}

func TestEmit_CaptureWrapsCommandSubstitution(t *testing.T) {
	out := mustCompile(t, `func main() { let out = capture(run("echo", "hi")); print(out) }`, target.Bash)
	assert.Contains(t, out, `out="$(echo "hi")"`)
}

func TestEmit_IfElseLowersComparison(t *testing.T) {
	out := mustCompile(t, `func main() { let n = 1; if n > 0 { print("pos") } else { print("neg") } }`, target.Bash)
	assert.Contains(t, out, `if [ "${n}" -gt "0" ]; then`)
	assert.Contains(t, out, "else")
	assert.Contains(t, out, "fi")
}

func TestEmit_ForLoopOverList(t *testing.T) {
	out := mustCompile(t, `func main() { for x in ["a", "b"] { print(x) } }`, target.Bash)
	assert.Contains(t, out, "for x in")
	assert.Contains(t, out, "done")
}

func TestEmit_LinesForLoopUsesMapfile(t *testing.T) {
	out := mustCompile(t, `func main() { for l in lines("f.txt") { print(l) } }`, target.Bash)
	assert.Contains(t, out, "mapfile -t")
	assert.Contains(t, out, `for l in "${`)
}

func TestEmit_WriteFileRedirects(t *testing.T) {
	out := mustCompile(t, `func main() { write_file("out.txt", "data") }`, target.Bash)
	assert.Contains(t, out, `> "out.txt"`)
}

func TestEmit_WriteFileAppend(t *testing.T) {
	out := mustCompile(t, `func main() { write_file("out.txt", "data", true) }`, target.Bash)
	assert.Contains(t, out, `>> "out.txt"`)
}

func TestEmit_CaseStatementEscapesLiteralPatterns(t *testing.T) {
	out := mustCompile(t, `func main() { let x = "a"; match x { case "a*" { print("star") } } }`, target.Bash)
	assert.Contains(t, out, `a\*)`)
	assert.Contains(t, out, "esac")
}

func TestEmit_SpawnAndWait(t *testing.T) {
	out := mustCompile(t, `func main() { spawn run("sleep", "1"); let p = pid(); wait(p) }`, target.Bash)
	assert.Contains(t, out, ") &")
	assert.Contains(t, out, "wait")
}

func TestEmit_WithEnvRestoresPriorValue(t *testing.T) {
	out := mustCompile(t, `func main() { with env { FOO = "bar" } { print(env.FOO) } }`, target.Bash)
	assert.Contains(t, out, `export FOO="bar"`)
	assert.Contains(t, out, "unset FOO")
}

func TestEmit_QualifiedCallMangled(t *testing.T) {
	out := mustCompile(t, `func main() { helpers.greet("x") }`, target.Bash)
	assert.Contains(t, out, `__imp_helpers__greet "x"`)
}

func TestEmit_SudoAddsUserFlag(t *testing.T) {
	out := mustCompile(t, `func main() { sudo("apt", "update", user: "deploy") }`, target.Bash)
	assert.Contains(t, out, "sudo -u")
}

func TestEmit_PrintBooleanLiteralRejectedByResolve(t *testing.T) {
	prog, perr := parser.Parse("t.sl", `func main() { print(true) }`)
	require.Nil(t, perr)
	prog, derr := desugar.Desugar(prog)
	require.Nil(t, derr)
	_, errs := resolve.Resolve(prog, target.Bash)
	assert.NotEmpty(t, errs)
}
