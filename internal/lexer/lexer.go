// Package lexer turns SL source text into a token stream. It stops at the
// first malformed token, mirroring how the parser stops at the first
// malformed construct: syntax errors compound too fast downstream to make
// collecting more than one of them worthwhile.
package lexer

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/kazz187/sh2c/internal/ast"
	"github.com/kazz187/sh2c/internal/diag"
	"github.com/kazz187/sh2c/internal/token"
)

type Lexer struct {
	file   string
	src    string
	pos    int
	line   int
	col    int
}

func New(file, src string) *Lexer {
	return &Lexer{file: file, src: src, pos: 0, line: 1, col: 1}
}

// Lex runs the lexer to completion, returning every token up to and
// including a trailing EOF, or the first error encountered.
func Lex(file, src string) ([]token.Token, *diag.Error) {
	l := New(file, src)
	var toks []token.Token
	for {
		tok, err := l.next()
		if err != nil {
			return nil, err
		}
		toks = append(toks, tok)
		if tok.Kind == token.EOF {
			return toks, nil
		}
	}
}

func (l *Lexer) span() ast.Span {
	return ast.Span{File: l.file, Line: l.line, Col: l.col}
}

func (l *Lexer) peek() rune {
	if l.pos >= len(l.src) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.src[l.pos:])
	return r
}

func (l *Lexer) peekAt(offset int) rune {
	p := l.pos
	for i := 0; i < offset && p < len(l.src); i++ {
		_, w := utf8.DecodeRuneInString(l.src[p:])
		p += w
	}
	if p >= len(l.src) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.src[p:])
	return r
}

func (l *Lexer) advance() rune {
	r, w := utf8.DecodeRuneInString(l.src[l.pos:])
	l.pos += w
	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return r
}

func (l *Lexer) skipSpaceAndComments() {
	for {
		switch {
		case l.pos >= len(l.src):
			return
		case l.peek() == ' ' || l.peek() == '\t' || l.peek() == '\r' || l.peek() == '\n':
			l.advance()
		case l.peek() == '#':
			for l.pos < len(l.src) && l.peek() != '\n' {
				l.advance()
			}
		case l.peek() == '/' && l.peekAt(1) == '/':
			for l.pos < len(l.src) && l.peek() != '\n' {
				l.advance()
			}
		default:
			return
		}
	}
}

func isIdentStart(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isIdentCont(r rune) bool {
	return isIdentStart(r) || (r >= '0' && r <= '9')
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func (l *Lexer) next() (token.Token, *diag.Error) {
	l.skipSpaceAndComments()
	span := l.span()

	if l.pos >= len(l.src) {
		return token.Token{Kind: token.EOF, Span: span}, nil
	}

	r := l.peek()

	switch {
	case r == 'r' && l.peekAt(1) == '"':
		l.advance() // consume 'r'
		return l.lexRawString(span)
	case isIdentStart(r):
		return l.lexIdent(span), nil
	case isDigit(r):
		return l.lexNumber(span)
	case r == '"':
		return l.lexString(span)
	case r == '$' && l.peekAt(1) == '(':
		l.advance()
		l.advance()
		return token.Token{Kind: token.DollarParen, Span: span}, nil
	}

	return l.lexOperator(span)
}

func (l *Lexer) lexIdent(span ast.Span) token.Token {
	start := l.pos
	for l.pos < len(l.src) && isIdentCont(l.peek()) {
		l.advance()
	}
	text := l.src[start:l.pos]
	if kind, ok := token.Lookup(text); ok {
		return token.Token{Kind: kind, Value: text, Span: span}
	}
	return token.Token{Kind: token.Ident, Value: text, Span: span}
}

func (l *Lexer) lexNumber(span ast.Span) (token.Token, *diag.Error) {
	start := l.pos
	for l.pos < len(l.src) && isDigit(l.peek()) {
		l.advance()
	}
	text := l.src[start:l.pos]
	if _, err := strconv.ParseInt(text, 10, 64); err != nil {
		return token.Token{}, diag.New(diag.LexError, span, "invalid number literal '"+text+"'")
	}
	return token.Token{Kind: token.Number, Value: text, Span: span}, nil
}

// lexString lexes a double-quoted string, splitting it into literal and
// interpolated pieces as it goes so the parser never has to re-scan the
// text. ${name} and bare $name are both recognized; a literal '$' not
// followed by an identifier or '{' is passed through unchanged.
func (l *Lexer) lexString(span ast.Span) (token.Token, *diag.Error) {
	l.advance() // opening quote
	var (
		pieces  []token.StringPiece
		literal strings.Builder
	)
	flush := func() {
		if literal.Len() > 0 {
			pieces = append(pieces, token.StringPiece{Lit: literal.String(), IsLit: true})
			literal.Reset()
		}
	}
	for {
		if l.pos >= len(l.src) {
			return token.Token{}, diag.New(diag.LexError, span, "unterminated string literal")
		}
		r := l.peek()
		switch {
		case r == '"':
			l.advance()
			flush()
			return token.Token{Kind: token.String, Pieces: pieces, Span: span}, nil
		case r == '\\':
			l.advance()
			if l.pos >= len(l.src) {
				return token.Token{}, diag.New(diag.LexError, span, "unterminated escape sequence")
			}
			esc := l.advance()
			switch esc {
			case 'n':
				literal.WriteByte('\n')
			case 't':
				literal.WriteByte('\t')
			case '"':
				literal.WriteByte('"')
			case '\\':
				literal.WriteByte('\\')
			case '$':
				literal.WriteByte('$')
			default:
				return token.Token{}, diag.New(diag.LexError, span, "unknown escape sequence '\\"+string(esc)+"'")
			}
		case r == '$' && (l.peekAt(1) == '{' || isIdentStart(l.peekAt(1))):
			l.advance()
			braced := l.peek() == '{'
			if braced {
				l.advance()
			}
			nameStart := l.pos
			for l.pos < len(l.src) && isIdentCont(l.peek()) {
				l.advance()
			}
			name := l.src[nameStart:l.pos]
			if name == "" {
				return token.Token{}, diag.New(diag.LexError, span, "empty interpolation placeholder")
			}
			if braced {
				if l.peek() != '}' {
					return token.Token{}, diag.New(diag.LexError, span, "unterminated '${' interpolation")
				}
				l.advance()
			}
			flush()
			pieces = append(pieces, token.StringPiece{Var: name})
		default:
			literal.WriteRune(r)
			l.advance()
		}
	}
}

func (l *Lexer) lexRawString(span ast.Span) (token.Token, *diag.Error) {
	l.advance() // opening quote
	start := l.pos
	for {
		if l.pos >= len(l.src) {
			return token.Token{}, diag.New(diag.LexError, span, "unterminated raw string literal")
		}
		if l.peek() == '"' {
			text := l.src[start:l.pos]
			l.advance()
			return token.Token{Kind: token.RawString, Value: text, Span: span}, nil
		}
		l.advance()
	}
}

func (l *Lexer) lexOperator(span ast.Span) (token.Token, *diag.Error) {
	r := l.advance()
	two := func(next rune, twoKind, oneKind token.Kind) token.Token {
		if l.peek() == next {
			l.advance()
			return token.Token{Kind: twoKind, Span: span}
		}
		return token.Token{Kind: oneKind, Span: span}
	}
	switch r {
	case '(':
		return token.Token{Kind: token.LParen, Span: span}, nil
	case ')':
		return token.Token{Kind: token.RParen, Span: span}, nil
	case '{':
		return token.Token{Kind: token.LBrace, Span: span}, nil
	case '}':
		return token.Token{Kind: token.RBrace, Span: span}, nil
	case '[':
		return token.Token{Kind: token.LBracket, Span: span}, nil
	case ']':
		return token.Token{Kind: token.RBracket, Span: span}, nil
	case ',':
		return token.Token{Kind: token.Comma, Span: span}, nil
	case ':':
		return token.Token{Kind: token.Colon, Span: span}, nil
	case ';':
		return token.Token{Kind: token.Semicolon, Span: span}, nil
	case '.':
		return token.Token{Kind: token.Dot, Span: span}, nil
	case '+':
		return token.Token{Kind: token.Plus, Span: span}, nil
	case '=':
		if l.peek() == '=' {
			l.advance()
			return token.Token{Kind: token.Eq, Span: span}, nil
		}
		if l.peek() == '>' {
			l.advance()
			return token.Token{Kind: token.Arrow, Span: span}, nil
		}
		return token.Token{Kind: token.Assign, Span: span}, nil
	case '!':
		if l.peek() == '=' {
			l.advance()
			return token.Token{Kind: token.Ne, Span: span}, nil
		}
		return token.Token{}, diag.New(diag.LexError, span, "unexpected character '!'")
	case '<':
		return two('=', token.Le, token.Lt), nil
	case '>':
		return two('=', token.Ge, token.Gt), nil
	case '|':
		return token.Token{Kind: token.Pipe, Span: span}, nil
	default:
		return token.Token{}, diag.New(diag.LexError, span, "unexpected character '"+string(r)+"'")
	}
}
