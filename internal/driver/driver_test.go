package driver

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kazz187/sh2c/internal/target"
)

func TestExitCode_SourceCodeInRangePassesThrough(t *testing.T) {
	assert.Equal(t, 1, ExitCode(1))
	assert.Equal(t, 255, ExitCode(255))
	assert.Equal(t, 42, ExitCode(42))
}

func TestExitCode_OutOfRangeClampsToOne(t *testing.T) {
	assert.Equal(t, 1, ExitCode(256))
	assert.Equal(t, 1, ExitCode(-1))
	assert.Equal(t, 1, ExitCode(1000))
}

func TestExitCode_GenericSentinelMapsToTwo(t *testing.T) {
	assert.Equal(t, 2, ExitCode(0))
}

func TestRun_CompilesValidSourceToStdout(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ok.sl")
	require.NoError(t, os.WriteFile(path, []byte(`func main() { print("hi") }`), 0o644))

	var stdout, stderr bytes.Buffer
	code := Run(context.Background(), Options{
		SourcePath: path,
		Target:     target.Bash,
		Stdout:     &stdout,
		Stderr:     &stderr,
	})

	assert.Equal(t, 0, code)
	assert.Contains(t, stdout.String(), "#!/usr/bin/env bash")
	assert.Empty(t, stderr.String())
}

func TestRun_CompileErrorReportsAndMapsToGenericCode(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.sl")
	require.NoError(t, os.WriteFile(path, []byte(`func main() { print(true) }`), 0o644))

	var stdout, stderr bytes.Buffer
	code := Run(context.Background(), Options{
		SourcePath: path,
		Target:     target.Bash,
		Stdout:     &stdout,
		Stderr:     &stderr,
	})

	assert.Equal(t, 2, code)
	assert.Empty(t, stdout.String())
	assert.NotEmpty(t, stderr.String())
}

func TestRun_MissingFileReportsAndExitsOne(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := Run(context.Background(), Options{
		SourcePath: filepath.Join(t.TempDir(), "missing.sl"),
		Target:     target.Bash,
		Stdout:     &stdout,
		Stderr:     &stderr,
	})

	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "missing.sl")
}
