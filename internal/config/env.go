// Package config loads sh2c's environment-driven settings, following this
// codebase's usual envconfig.Process pattern.
package config

import (
	"fmt"
	"log/slog"

	"github.com/kelseyhightower/envconfig"
)

type Env struct {
	Debug         bool   `envconfig:"DEBUG" default:"false"`
	LogLevel      string `envconfig:"LOG_LEVEL" default:"info"`
	DefaultTarget string `envconfig:"DEFAULT_TARGET" default:"bash"`
}

const namespace = "SH2C"

func LoadEnv() (*Env, error) {
	var env Env
	if err := envconfig.Process(namespace, &env); err != nil {
		return nil, fmt.Errorf("failed to load env: %w", err)
	}
	return &env, nil
}

func (e *Env) SlogLevel() slog.Level {
	if e == nil {
		return slog.LevelInfo
	}
	if e.Debug {
		return slog.LevelDebug
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(e.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}
