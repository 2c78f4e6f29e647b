// Package driver implements the CLI's compile-and-report workflow: read a
// source file, call pkg/sh2c.Compile, write the result (or a diagnostic)
// and map the outcome to a process exit code per spec §6.4.
package driver

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/kazz187/sh2c/internal/diag"
	"github.com/kazz187/sh2c/internal/target"
	"github.com/kazz187/sh2c/pkg/clog"
	"github.com/kazz187/sh2c/pkg/sh2c"
)

// genericErrorCode is the driver's own "no more specific code available"
// sentinel, distinct from any exit code a compiled script can produce.
const genericErrorCode = 0

// Options configures a single Run invocation.
type Options struct {
	SourcePath string
	Target     target.Target
	Stdout     io.Writer
	Stderr     io.Writer
	Logger     *slog.Logger
}

// Run compiles Opts.SourcePath for Opts.Target, writes the script to
// Opts.Stdout on success or a message to Opts.Stderr on failure, and
// returns the process exit code: 0 on success, 1 if the source file
// couldn't be read at all, or the §6.4 mapping of the compiler's failure
// code otherwise.
func Run(ctx context.Context, opts Options) int {
	ctx = clog.ContextWithSlog(ctx)
	clog.AddAttribute(ctx, "source_file", opts.SourcePath)
	clog.AddAttribute(ctx, "target", opts.Target.String())

	source, err := os.ReadFile(opts.SourcePath)
	if err != nil {
		fmt.Fprintf(opts.Stderr, "sh2c: %s: %v\n", opts.SourcePath, err)
		return 1
	}

	out, cerr := sh2c.Compile(ctx, opts.SourcePath, string(source), opts.Target)
	if cerr != nil {
		logDiag(ctx, opts.Logger, cerr)
		fmt.Fprintln(opts.Stderr, cerr.Error())
		return ExitCode(genericErrorCode)
	}

	fmt.Fprint(opts.Stdout, out)
	return 0
}

func logDiag(ctx context.Context, logger *slog.Logger, err *diag.Error) {
	if logger == nil {
		return
	}
	clog.AddAttribute(ctx, clog.PhaseAttributeKey, err.Kind.String())
	clog.AddAttribute(ctx, clog.SpanAttributeKey, err.Span.String())
	clog.AddError(ctx, err)
	level := clog.DiagKindToLevel(err.Kind)
	logger.Log(ctx, slogLevel(level), err.Message)
}

func slogLevel(l clog.Level) slog.Level {
	switch l {
	case clog.LevelDebug:
		return slog.LevelDebug
	case clog.LevelWarn:
		return slog.LevelWarn
	case clog.LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ExitCode implements spec §6.4's driver error-kind-to-exit-code mapping,
// pinned exactly by sh2do::from_driver_code in the original: a source
// code already in [0,255] passes through unchanged, an out-of-range or
// negative code clamps to 1, and the driver's own genericErrorCode (0,
// meaning "no script ran, the failure is the compiler's") maps to 2 so it
// is never confused with a successful compile.
func ExitCode(code int) int {
	if code == genericErrorCode {
		return 2
	}
	if code < 0 || code > 255 {
		return 1
	}
	return code
}
