package resolve

import (
	_ "embed"

	"gopkg.in/yaml.v3"

	"github.com/kazz187/sh2c/internal/ast"
)

//go:embed builtins.yaml
var builtinsYAML []byte

type builtinEntry struct {
	Name        string   `yaml:"name"`
	MinArgs     int      `yaml:"min_args"`
	MaxArgs     int      `yaml:"max_args"`
	Options     []string `yaml:"options"`
	TargetBash  bool     `yaml:"target_bash"`
	TargetPosix bool     `yaml:"target_posix"`
}

// Builtins is the loaded catalog of builtin signatures, keyed by name.
// optionedBuiltins holds the subset of names for which named arguments
// (`name: value`) are permitted at all, per spec §3.
var (
	Builtins         map[string]*ast.BuiltinSig
	optionedBuiltins = map[string]bool{
		"run": true, "sudo": true, "sh": true, "capture": true, "confirm": true,
	}
)

func init() {
	var entries []builtinEntry
	if err := yaml.Unmarshal(builtinsYAML, &entries); err != nil {
		panic("resolve: malformed builtins.yaml: " + err.Error())
	}
	Builtins = make(map[string]*ast.BuiltinSig, len(entries))
	for _, e := range entries {
		Builtins[e.Name] = &ast.BuiltinSig{
			Name:         e.Name,
			MinArgs:      e.MinArgs,
			MaxArgs:      e.MaxArgs,
			NamedOptions: e.Options,
			TargetBash:   e.TargetBash,
			TargetPosix:  e.TargetPosix,
		}
	}
}

// AllowsNamedOptions reports whether name is one of the builtins that may
// carry `name: value` arguments at all.
func AllowsNamedOptions(name string) bool {
	return optionedBuiltins[name]
}
