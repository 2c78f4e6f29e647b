package clog

import "github.com/kazz187/sh2c/internal/diag"

type Level int

const (
	LevelDebug Level = iota + 1
	LevelInfo
	LevelWarn
	LevelError
)

// DiagKindToLevel maps a diagnostic's phase to the log level used when the
// driver reports it with debug logging on. All diagnostic kinds are
// user-facing compile failures, not internal faults, so they all log at
// warn except EmitError, which indicates a compiler bug and logs as error.
func DiagKindToLevel(kind diag.Kind) Level {
	if kind == diag.EmitError {
		return LevelError
	}
	return LevelWarn
}
