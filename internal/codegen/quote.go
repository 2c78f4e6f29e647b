package codegen

import "strings"

// escapeDouble escapes the characters that are special inside a
// double-quoted shell word: the closing quote itself, backslash, the
// substitution sigil, and backtick (legacy command substitution).
func escapeDouble(s string) string {
	r := strings.NewReplacer(
		`\`, `\\`,
		`"`, `\"`,
		`$`, `\$`,
		"`", "\\`",
	)
	return r.Replace(s)
}

// singleQuote wraps s as a single-quoted shell word. Raw strings (r"...")
// never interpolate, so this is all they ever need: no character inside a
// single-quoted word needs escaping except a literal single quote, which
// has to close the quote, emit an escaped quote, and reopen it.
func singleQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// escapeGlob escapes the shell glob metacharacters in a literal string so
// it matches itself exactly when used as a case pattern, per §4.4's case
// arm rule ("literal values are escaped").
func escapeGlob(s string) string {
	r := strings.NewReplacer(
		`\`, `\\`,
		`*`, `\*`,
		`?`, `\?`,
		`[`, `\[`,
	)
	return r.Replace(s)
}
