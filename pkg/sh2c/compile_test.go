package sh2c

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompile_BashTargetProducesScript(t *testing.T) {
	out, err := Compile(context.Background(), "t.sl", `func main() { print("hi") }`, Bash)
	require.Nil(t, err)
	assert.True(t, strings.HasPrefix(out, "#!/usr/bin/env bash"))
}

func TestCompile_PosixTargetProducesScript(t *testing.T) {
	out, err := Compile(context.Background(), "t.sl", `func main() { print("hi") }`, Posix)
	require.Nil(t, err)
	assert.True(t, strings.HasPrefix(out, "#!/bin/sh"))
}

func TestCompile_LexErrorSurfacesWithSpan(t *testing.T) {
	_, err := Compile(context.Background(), "t.sl", `func main() { let s = "unterminated }`, Bash)
	require.NotNil(t, err)
	assert.Equal(t, 1, err.Span.Line)
}

func TestCompile_ParseErrorOnMissingMain(t *testing.T) {
	_, err := Compile(context.Background(), "t.sl", `func helper() { print("x") }`, Bash)
	require.NotNil(t, err)
}

func TestCompile_ResolveErrorOnPosixOnlyBuiltinUnderPosix(t *testing.T) {
	_, err := Compile(context.Background(), "t.sl", `func main() { let x = input("q: ") }`, Posix)
	require.NotNil(t, err)
}

func TestCompile_ResolveErrorReturnsFirstDiagnostic(t *testing.T) {
	_, err := Compile(context.Background(), "t.sl", `func main() { print(true) }`, Bash)
	require.NotNil(t, err)
	assert.Contains(t, err.Error(), "resolve error")
}
