package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/alecthomas/kingpin/v2"

	"github.com/kazz187/sh2c/internal/config"
	"github.com/kazz187/sh2c/internal/driver"
	"github.com/kazz187/sh2c/internal/target"
	"github.com/kazz187/sh2c/pkg/clog"
)

const version = "0.1.0"

var (
	app         = kingpin.New("sh2c", "Compile SL scripts to portable shell")
	targetFlag  = app.Flag("target", "Output dialect: bash or posix").Default("").String()
	versionFlag = app.Flag("version", "Show version and exit").Short('V').Bool()
	sourceArg   = app.Arg("source", "SL source file").String()
)

func main() {
	kingpin.MustParse(app.Parse(os.Args[1:]))

	if *versionFlag {
		fmt.Printf("sh2c %s\n", version)
		return
	}
	if *sourceArg == "" {
		fmt.Fprintln(os.Stderr, "sh2c: source file required")
		os.Exit(2)
	}

	env, err := config.LoadEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "sh2c: %v\n", err)
		os.Exit(2)
	}

	tgt := resolveTarget(*targetFlag, env.DefaultTarget)

	ctx := context.Background()
	var logger *slog.Logger
	if env.Debug {
		handler := clog.NewAttributesHandler(clog.NewTextHandler(os.Stderr, clog.WithLevel(env.SlogLevel())))
		logger = slog.New(handler)
	}

	code := driver.Run(ctx, driver.Options{
		SourcePath: *sourceArg,
		Target:     tgt,
		Stdout:     os.Stdout,
		Stderr:     os.Stderr,
		Logger:     logger,
	})
	os.Exit(code)
}

// resolveTarget applies the CLI --target flag over SH2C_DEFAULT_TARGET,
// falling back to Bash if neither names a known dialect.
func resolveTarget(flagValue, envDefault string) target.Target {
	if flagValue != "" {
		if t, ok := target.Parse(flagValue); ok {
			return t
		}
	}
	if t, ok := target.Parse(envDefault); ok {
		return t
	}
	return target.Bash
}
