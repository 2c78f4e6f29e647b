package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kazz187/sh2c/internal/token"
)

func kinds(toks []token.Token) []token.Kind {
	out := make([]token.Kind, len(toks))
	for i, t := range toks {
		out[i] = t.Kind
	}
	return out
}

func TestLex_KeywordsAndIdents(t *testing.T) {
	toks, err := Lex("t.sl", "func main let x if else for in return")
	require.Nil(t, err)
	assert.Equal(t, []token.Kind{
		token.KwFunc, token.Ident, token.KwLet, token.Ident,
		token.KwIf, token.KwElse, token.KwFor, token.KwIn, token.KwReturn, token.EOF,
	}, kinds(toks))
}

func TestLex_Number(t *testing.T) {
	toks, err := Lex("t.sl", "42")
	require.Nil(t, err)
	require.Len(t, toks, 2)
	assert.Equal(t, token.Number, toks[0].Kind)
	assert.Equal(t, "42", toks[0].Value)
}

func TestLex_StringInterpolation(t *testing.T) {
	toks, err := Lex("t.sl", `"hello ${name}!"`)
	require.Nil(t, err)
	require.Len(t, toks, 2)
	require.Equal(t, token.String, toks[0].Kind)
	require.Len(t, toks[0].Pieces, 3)
	assert.True(t, toks[0].Pieces[0].IsLit)
	assert.Equal(t, "hello ", toks[0].Pieces[0].Lit)
	assert.Equal(t, "name", toks[0].Pieces[1].Var)
	assert.True(t, toks[0].Pieces[2].IsLit)
	assert.Equal(t, "!", toks[0].Pieces[2].Lit)
}

func TestLex_BareDollarInterpolation(t *testing.T) {
	toks, err := Lex("t.sl", `"$name done"`)
	require.Nil(t, err)
	require.Len(t, toks[0].Pieces, 2)
	assert.Equal(t, "name", toks[0].Pieces[0].Var)
	assert.Equal(t, " done", toks[0].Pieces[1].Lit)
}

func TestLex_RawString(t *testing.T) {
	toks, err := Lex("t.sl", `r"no \n escapes here"`)
	require.Nil(t, err)
	assert.Equal(t, token.RawString, toks[0].Kind)
	assert.Equal(t, `no \n escapes here`, toks[0].Value)
}

func TestLex_Operators(t *testing.T) {
	toks, err := Lex("t.sl", "== != <= >= < > = =>")
	require.Nil(t, err)
	assert.Equal(t, []token.Kind{
		token.Eq, token.Ne, token.Le, token.Ge, token.Lt, token.Gt, token.Assign, token.Arrow, token.EOF,
	}, kinds(toks))
}

func TestLex_Comments(t *testing.T) {
	toks, err := Lex("t.sl", "let x = 1 # a comment\n// another\nlet y = 2")
	require.Nil(t, err)
	assert.Equal(t, []token.Kind{
		token.KwLet, token.Ident, token.Assign, token.Number,
		token.KwLet, token.Ident, token.Assign, token.Number, token.EOF,
	}, kinds(toks))
}

func TestLex_UnterminatedString(t *testing.T) {
	_, err := Lex("t.sl", `"unterminated`)
	require.NotNil(t, err)
	assert.Contains(t, err.Message, "unterminated string")
}

func TestLex_UnexpectedCharacter(t *testing.T) {
	_, err := Lex("t.sl", "@")
	require.NotNil(t, err)
	assert.Contains(t, err.Message, "unexpected character")
}
