package codegen

import (
	"fmt"

	"github.com/kazz187/sh2c/internal/ast"
)

// condition renders x as a complete shell test suitable to follow `if `,
// `while `, or `elif `, per §4.4's condition-lowering rules: Compare,
// IsNonEmpty, and the filesystem predicates become `[ ... ]` (or `[[ ]]`
// for matches() under Bash); And/Or/Not stay short-circuit with
// &&/||/!.
func (e *Emitter) condition(x *ast.Expr) string {
	switch k := x.Kind.(type) {
	case ast.Not:
		return "! " + e.condition(k.X)
	case ast.And:
		return e.condition(k.Left) + " && " + e.condition(k.Right)
	case ast.Or:
		return e.condition(k.Left) + " || " + e.condition(k.Right)
	case ast.Compare:
		return e.compareTest(k)
	case ast.IsNonEmpty:
		return "[ -n " + e.word(k.X) + " ]"
	case ast.IsExec:
		return "[ -x " + e.word(k.Path) + " ]"
	case ast.IsFile:
		return "[ -f " + e.word(k.Path) + " ]"
	case ast.IsDir:
		return "[ -d " + e.word(k.Path) + " ]"
	case ast.Contains:
		return e.containsTest(k.Haystack, k.Needle)
	case ast.ContainsLine:
		return e.containsLineTest(k.Haystack, k.Needle)
	case ast.Matches:
		return e.matchesTest(k)
	case ast.Bool:
		if k.Value {
			return "true"
		}
		return "false"
	default:
		// A bare value used as a condition ("truthy string" idiom): true
		// unless it is the empty string.
		return "[ -n " + e.word(x) + " ]"
	}
}

// compareTest lowers a comparison to a `[ ... ]` test. The language has
// no string-ordering operator, so Lt/Le/Ge/Gt always mean a numeric
// comparison (`-lt`/`-le`/`-ge`/`-gt`) regardless of operand shape; Eq/Ne
// use `-eq`/`-ne` when both operands are intish (a numeric literal or an
// int-valued builtin) and string `=`/`!=` otherwise.
func (e *Emitter) compareTest(c ast.Compare) string {
	if c.Op != ast.Eq && c.Op != ast.Ne {
		return fmt.Sprintf("[ %s %s %s ]", e.word(c.Left), intOp(c.Op), e.word(c.Right))
	}
	if isIntish(c.Left) && isIntish(c.Right) {
		return fmt.Sprintf("[ %s %s %s ]", e.word(c.Left), intOp(c.Op), e.word(c.Right))
	}
	op := "="
	if c.Op == ast.Ne {
		op = "!="
	}
	return fmt.Sprintf("[ %s %s %s ]", e.word(c.Left), op, e.word(c.Right))
}

func isIntish(x *ast.Expr) bool {
	switch k := x.Kind.(type) {
	case ast.Number:
		return true
	case ast.Call:
		switch k.Name {
		case "status", "pid", "ppid", "uid":
			return true
		}
	case ast.Status, ast.Pid, ast.Ppid, ast.Uid:
		return true
	}
	return false
}

func intOp(op ast.CompareOp) string {
	switch op {
	case ast.Lt:
		return "-lt"
	case ast.Le:
		return "-le"
	case ast.Eq:
		return "-eq"
	case ast.Ne:
		return "-ne"
	case ast.Ge:
		return "-ge"
	case ast.Gt:
		return "-gt"
	default:
		return "-eq"
	}
}

func (e *Emitter) containsTest(haystack, needle *ast.Expr) string {
	if e.condUsesBash() {
		return fmt.Sprintf("[[ %s == *%s* ]]", e.word(haystack), e.wordInner(needle))
	}
	return fmt.Sprintf("case %s in (*%s*) true ;; (*) false ;; esac", e.word(haystack), e.wordInner(needle))
}

func (e *Emitter) containsLineTest(haystack, needle *ast.Expr) string {
	return fmt.Sprintf("printf '%%s\\n' %s | grep -qF %s", e.word(haystack), e.word(needle))
}

// matchesTest lowers matches(s, pattern): Bash gets a real regex test via
// [[ =~ ]]; POSIX has no regex test construct, so it falls back to glob
// matching through case, which is what the pattern is documented to mean
// there (§4.4: "<regex-as-glob>" under POSIX).
func (e *Emitter) matchesTest(k ast.Matches) string {
	if e.condUsesBash() {
		return fmt.Sprintf("[[ %s =~ %s ]]", e.word(k.X), e.wordInner(k.Pattern))
	}
	return fmt.Sprintf("case %s in (%s) true ;; (*) false ;; esac", e.word(k.X), e.wordInner(k.Pattern))
}
