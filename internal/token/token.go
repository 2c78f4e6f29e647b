// Package token defines the lexical symbols the lexer produces and the
// parser consumes.
package token

import "github.com/kazz187/sh2c/internal/ast"

// Kind identifies a lexical category.
type Kind int

const (
	EOF Kind = iota
	Ident
	Number
	String    // a fully-lexed double-quoted string with interpolation pieces attached
	RawString // r"..." — no escapes, no interpolation

	// keywords
	KwFunc
	KwLet
	KwIf
	KwElse
	KwFor
	KwIn
	KwReturn
	KwTry
	KwCatch
	KwWith
	KwEnv
	KwSpawn
	KwWait
	KwMatch
	KwCase
	KwDefault
	KwTrue
	KwFalse
	KwAnd
	KwOr
	KwNot
	KwLog

	// punctuation & operators
	LParen
	RParen
	LBrace
	RBrace
	LBracket
	RBracket
	Comma
	Colon
	Semicolon
	Dot
	Assign
	Eq
	Ne
	Lt
	Le
	Gt
	Ge
	Plus // string concatenation
	Arrow
	Pipe       // statement pipeline '|'
	DollarParen // '$(' opening a CommandPipe capture expression
)

var keywords = map[string]Kind{
	"func":    KwFunc,
	"let":     KwLet,
	"if":      KwIf,
	"else":    KwElse,
	"for":     KwFor,
	"in":      KwIn,
	"return":  KwReturn,
	"try":     KwTry,
	"catch":   KwCatch,
	"with":    KwWith,
	"env":     KwEnv,
	"spawn":   KwSpawn,
	"match":   KwMatch,
	"case":    KwCase,
	"default": KwDefault,
	"true":    KwTrue,
	"false":   KwFalse,
	"and":     KwAnd,
	"or":      KwOr,
	"not":     KwNot,
	"log":     KwLog,
}

// Lookup returns the keyword Kind for ident, or (Ident, false) if ident is
// not a reserved word.
func Lookup(ident string) (Kind, bool) {
	k, ok := keywords[ident]
	if !ok {
		return Ident, false
	}
	return k, true
}

// StringPiece is one segment of a lexed double-quoted string: either a
// literal run of text or an interpolated variable name.
type StringPiece struct {
	Lit  string
	Var  string // set when this piece came from ${name} or $name
	IsLit bool
}

// Token is one lexical unit with its source span.
type Token struct {
	Kind    Kind
	Value   string
	Pieces  []StringPiece // populated only for Kind == String
	Span    ast.Span
}

func (k Kind) String() string {
	switch k {
	case EOF:
		return "EOF"
	case Ident:
		return "identifier"
	case Number:
		return "number"
	case String:
		return "string"
	case RawString:
		return "raw string"
	case LParen:
		return "'('"
	case RParen:
		return "')'"
	case LBrace:
		return "'{'"
	case RBrace:
		return "'}'"
	case LBracket:
		return "'['"
	case RBracket:
		return "']'"
	case Comma:
		return "','"
	case Colon:
		return "':'"
	case Semicolon:
		return "';'"
	case Dot:
		return "'.'"
	case Assign:
		return "'='"
	case Eq:
		return "'=='"
	case Ne:
		return "'!='"
	case Lt:
		return "'<'"
	case Le:
		return "'<='"
	case Gt:
		return "'>'"
	case Ge:
		return "'>='"
	case Plus:
		return "'+'"
	case Arrow:
		return "'=>'"
	case Pipe:
		return "'|'"
	case DollarParen:
		return "'$('"
	default:
		for word, kind := range keywords {
			if kind == k {
				return "'" + word + "'"
			}
		}
		return "token"
	}
}
