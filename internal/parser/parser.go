// Package parser builds an untyped AST from a token stream. It is a plain
// recursive-descent parser with precedence climbing for expressions; like
// the lexer, it aborts at the first error rather than attempting recovery.
package parser

import (
	"strconv"

	"github.com/kazz187/sh2c/internal/ast"
	"github.com/kazz187/sh2c/internal/diag"
	"github.com/kazz187/sh2c/internal/lexer"
	"github.com/kazz187/sh2c/internal/token"
)

type Parser struct {
	file string
	toks []token.Token
	pos  int
}

// Parse lexes and parses file's source into a Program, or returns the
// first lex or parse error encountered.
func Parse(file, src string) (*ast.Program, *diag.Error) {
	toks, err := lexer.Lex(file, src)
	if err != nil {
		return nil, err
	}
	p := &Parser{file: file, toks: toks}
	return p.parseProgram()
}

func (p *Parser) cur() token.Token  { return p.toks[p.pos] }
func (p *Parser) at(k token.Kind) bool { return p.cur().Kind == k }

func (p *Parser) advance() token.Token {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *Parser) expect(k token.Kind) (token.Token, *diag.Error) {
	if !p.at(k) {
		return token.Token{}, diag.New(diag.ParseError, p.cur().Span,
			"expected "+k.String()+", found "+p.cur().Kind.String())
	}
	return p.advance(), nil
}

// skipSemis consumes any number of optional statement separators. SL has
// no significant newlines in this lexer, so ';' is an optional separator
// rather than a mandatory terminator.
func (p *Parser) skipSemis() {
	for p.at(token.Semicolon) {
		p.advance()
	}
}

func (p *Parser) parseProgram() (*ast.Program, *diag.Error) {
	prog := &ast.Program{}
	p.skipSemis()
	for !p.at(token.EOF) {
		fn, err := p.parseFunction()
		if err != nil {
			return nil, err
		}
		prog.Functions = append(prog.Functions, fn)
		p.skipSemis()
	}
	return prog, nil
}

func (p *Parser) parseFunction() (*ast.Function, *diag.Error) {
	span := p.cur().Span
	if _, err := p.expect(token.KwFunc); err != nil {
		return nil, err
	}
	name, err := p.expect(token.Ident)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LParen); err != nil {
		return nil, err
	}
	var params []ast.Param
	for !p.at(token.RParen) {
		pn, err := p.expect(token.Ident)
		if err != nil {
			return nil, err
		}
		params = append(params, ast.Param{Name: pn.Value})
		if p.at(token.Comma) {
			p.advance()
		}
	}
	if _, err := p.expect(token.RParen); err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.Function{ID: ast.NewNodeID(), Span: span, Name: name.Value, Params: params, Body: body}, nil
}

func (p *Parser) parseBlock() ([]*ast.Stmt, *diag.Error) {
	if _, err := p.expect(token.LBrace); err != nil {
		return nil, err
	}
	var stmts []*ast.Stmt
	p.skipSemis()
	for !p.at(token.RBrace) {
		s, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, s)
		p.skipSemis()
	}
	if _, err := p.expect(token.RBrace); err != nil {
		return nil, err
	}
	return stmts, nil
}

func (p *Parser) parseStmt() (*ast.Stmt, *diag.Error) {
	switch p.cur().Kind {
	case token.KwLet:
		return p.parseLet()
	case token.KwIf:
		return p.parseIf()
	case token.KwFor:
		return p.parseFor()
	case token.KwReturn:
		return p.parseReturn()
	case token.KwTry:
		return p.parseTryCatch()
	case token.KwWith:
		return p.parseWithEnv()
	case token.KwSpawn:
		return p.parseSpawn()
	case token.KwMatch:
		return p.parseMatch()
	case token.KwLog:
		return p.parseLog()
	case token.LBrace:
		span := p.cur().Span
		body, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		return ast.NewStmt(span, ast.Group{Body: body}), nil
	default:
		return p.parsePipeOrSimpleStmt()
	}
}

func (p *Parser) parseLet() (*ast.Stmt, *diag.Error) {
	span := p.cur().Span
	p.advance() // 'let'
	name, err := p.expect(token.Ident)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.Assign); err != nil {
		return nil, err
	}
	value, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return ast.NewStmt(span, ast.Let{Name: name.Value, Value: value}), nil
}

func (p *Parser) parseIf() (*ast.Stmt, *diag.Error) {
	span := p.cur().Span
	p.advance() // 'if'
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	then, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	var els []*ast.Stmt
	if p.at(token.KwElse) {
		p.advance()
		if p.at(token.KwIf) {
			elif, err := p.parseIf()
			if err != nil {
				return nil, err
			}
			els = []*ast.Stmt{elif}
		} else {
			els, err = p.parseBlock()
			if err != nil {
				return nil, err
			}
		}
	}
	return ast.NewStmt(span, ast.If{Cond: cond, Then: then, Else: els}), nil
}

func (p *Parser) parseFor() (*ast.Stmt, *diag.Error) {
	span := p.cur().Span
	p.advance() // 'for'
	binder, err := p.expect(token.Ident)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.KwIn); err != nil {
		return nil, err
	}
	iter, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return ast.NewStmt(span, ast.For{Binder: binder.Value, Iter: iter, Body: body}), nil
}

func (p *Parser) parseReturn() (*ast.Stmt, *diag.Error) {
	span := p.cur().Span
	p.advance() // 'return'
	if p.at(token.Semicolon) || p.at(token.RBrace) {
		return ast.NewStmt(span, ast.Return{}), nil
	}
	x, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return ast.NewStmt(span, ast.Return{X: x}), nil
}

func (p *Parser) parseTryCatch() (*ast.Stmt, *diag.Error) {
	span := p.cur().Span
	p.advance() // 'try'
	tryBody, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.KwCatch); err != nil {
		return nil, err
	}
	catchBody, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return ast.NewStmt(span, ast.TryCatch{Try: tryBody, Catch: catchBody}), nil
}

// parseWithEnv parses the block form `with env { K = v; ... } { body }`.
func (p *Parser) parseWithEnv() (*ast.Stmt, *diag.Error) {
	span := p.cur().Span
	p.advance() // 'with'
	if _, err := p.expect(token.KwEnv); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LBrace); err != nil {
		return nil, err
	}
	var bindings []ast.EnvBinding
	for !p.at(token.RBrace) {
		name, err := p.expect(token.Ident)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.Assign); err != nil {
			return nil, err
		}
		value, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		bindings = append(bindings, ast.EnvBinding{Name: name.Value, Value: value})
		if p.at(token.Comma) || p.at(token.Semicolon) {
			p.advance()
		}
	}
	if _, err := p.expect(token.RBrace); err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return ast.NewStmt(span, ast.WithEnv{Bindings: bindings, Body: body}), nil
}

func (p *Parser) parseSpawn() (*ast.Stmt, *diag.Error) {
	span := p.cur().Span
	p.advance() // 'spawn'
	inner, err := p.parsePipeOrSimpleStmt()
	if err != nil {
		return nil, err
	}
	return ast.NewStmt(span, ast.Spawn{Stmt: inner}), nil
}

func (p *Parser) parseMatch() (*ast.Stmt, *diag.Error) {
	span := p.cur().Span
	p.advance() // 'match'
	scrutinee, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LBrace); err != nil {
		return nil, err
	}
	var arms []ast.CaseArm
	var def []*ast.Stmt
	p.skipSemis()
	for !p.at(token.RBrace) {
		if p.at(token.KwDefault) {
			p.advance()
			def, err = p.parseBlock()
			if err != nil {
				return nil, err
			}
		} else {
			if _, err := p.expect(token.KwCase); err != nil {
				return nil, err
			}
			pattern, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			body, err := p.parseBlock()
			if err != nil {
				return nil, err
			}
			arms = append(arms, ast.CaseArm{Pattern: pattern, Body: body})
		}
		p.skipSemis()
	}
	if _, err := p.expect(token.RBrace); err != nil {
		return nil, err
	}
	return ast.NewStmt(span, ast.Case{Scrutinee: scrutinee, Arms: arms, Default: def}), nil
}

func (p *Parser) parseLog() (*ast.Stmt, *diag.Error) {
	span := p.cur().Span
	p.advance() // 'log'
	level := "info"
	if p.at(token.Dot) {
		p.advance()
		lvl, err := p.expect(token.Ident)
		if err != nil {
			return nil, err
		}
		level = lvl.Value
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return ast.NewStmt(span, ast.Log{Level: level, Body: body}), nil
}

// parsePipeOrSimpleStmt parses one statement "unit" (an assignment or a
// bare expression), then chains it with further units separated by '|'
// into a Pipe or PipeBlocks statement, per spec §3/§4.4.
func (p *Parser) parsePipeOrSimpleStmt() (*ast.Stmt, *diag.Error) {
	first, firstBlock, err := p.parsePipeSegment()
	if err != nil {
		return nil, err
	}
	if !p.at(token.Pipe) {
		if firstBlock != nil {
			return ast.NewStmt(first.Span, ast.Group{Body: firstBlock}), nil
		}
		return first, nil
	}

	span := first.Span
	var blockSegs [][]*ast.Stmt
	var simpleSegs []*ast.Stmt
	anyBlock := firstBlock != nil

	appendSeg := func(stmt *ast.Stmt, block []*ast.Stmt) {
		if block != nil {
			blockSegs = append(blockSegs, block)
		} else {
			blockSegs = append(blockSegs, []*ast.Stmt{stmt})
			simpleSegs = append(simpleSegs, stmt)
		}
	}
	appendSeg(first, firstBlock)

	for p.at(token.Pipe) {
		p.advance()
		seg, segBlock, err := p.parsePipeSegment()
		if err != nil {
			return nil, err
		}
		if segBlock != nil {
			anyBlock = true
		}
		appendSeg(seg, segBlock)
	}

	if anyBlock {
		return ast.NewStmt(span, ast.PipeBlocks{Segments: blockSegs}), nil
	}
	return ast.NewStmt(span, ast.Pipe{Segments: simpleSegs}), nil
}

// parsePipeSegment parses a single pipe segment, either a `{ ... }` group
// (returned via the block slice) or one assignment/expression statement.
func (p *Parser) parsePipeSegment() (*ast.Stmt, []*ast.Stmt, *diag.Error) {
	if p.at(token.LBrace) {
		span := p.cur().Span
		block, err := p.parseBlock()
		if err != nil {
			return nil, nil, err
		}
		return ast.NewStmt(span, ast.Group{Body: block}), block, nil
	}
	stmt, err := p.parseAssignOrExprStmt()
	return stmt, nil, err
}

func (p *Parser) parseAssignOrExprStmt() (*ast.Stmt, *diag.Error) {
	span := p.cur().Span
	if p.at(token.Ident) && p.toks[p.pos+1].Kind == token.Assign {
		name := p.advance()
		p.advance() // '='
		value, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		return ast.NewStmt(span, ast.Set{Target: ast.LValue{Name: name.Value}, Value: value}), nil
	}
	x, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return ast.NewStmt(span, ast.ExprStmt{X: x}), nil
}

// --- expressions ---

func (p *Parser) parseExpr() (*ast.Expr, *diag.Error) {
	return p.parseOr()
}

func (p *Parser) parseOr() (*ast.Expr, *diag.Error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.at(token.KwOr) {
		span := p.cur().Span
		p.advance()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = ast.NewExpr(span, ast.Or{Left: left, Right: right})
	}
	return left, nil
}

func (p *Parser) parseAnd() (*ast.Expr, *diag.Error) {
	left, err := p.parseComparison()
	if err != nil {
		return nil, err
	}
	for p.at(token.KwAnd) {
		span := p.cur().Span
		p.advance()
		right, err := p.parseComparison()
		if err != nil {
			return nil, err
		}
		left = ast.NewExpr(span, ast.And{Left: left, Right: right})
	}
	return left, nil
}

var compareOps = map[token.Kind]ast.CompareOp{
	token.Lt: ast.Lt, token.Le: ast.Le, token.Eq: ast.Eq,
	token.Ne: ast.Ne, token.Ge: ast.Ge, token.Gt: ast.Gt,
}

func (p *Parser) parseComparison() (*ast.Expr, *diag.Error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	if op, ok := compareOps[p.cur().Kind]; ok {
		span := p.cur().Span
		p.advance()
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return ast.NewExpr(span, ast.Compare{Left: left, Op: op, Right: right}), nil
	}
	return left, nil
}

func (p *Parser) parseNot() (*ast.Expr, *diag.Error) {
	if p.at(token.KwNot) {
		span := p.cur().Span
		p.advance()
		x, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return ast.NewExpr(span, ast.Not{X: x}), nil
	}
	return p.parseAdditive()
}

// parseAdditive handles '+', which always lowers to a Concat AST node,
// whatever its operands: `1 + 2` yields the string "12"; no numeric
// addition is performed.
func (p *Parser) parseAdditive() (*ast.Expr, *diag.Error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.at(token.Plus) {
		span := p.cur().Span
		p.advance()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = ast.NewExpr(span, ast.Concat{Left: left, Right: right})
	}
	return left, nil
}

func (p *Parser) parseUnary() (*ast.Expr, *diag.Error) {
	return p.parsePrimary()
}

func (p *Parser) parsePrimary() (*ast.Expr, *diag.Error) {
	tok := p.cur()
	switch tok.Kind {
	case token.Number:
		p.advance()
		n, convErr := strconv.ParseInt(tok.Value, 10, 64)
		if convErr != nil {
			return nil, diag.New(diag.ParseError, tok.Span, "invalid number literal '"+tok.Value+"'")
		}
		return ast.NewExpr(tok.Span, ast.Number{Value: n}), nil
	case token.KwTrue:
		p.advance()
		return ast.NewExpr(tok.Span, ast.Bool{Value: true}), nil
	case token.KwFalse:
		p.advance()
		return ast.NewExpr(tok.Span, ast.Bool{Value: false}), nil
	case token.RawString:
		p.advance()
		return ast.NewExpr(tok.Span, ast.Literal{Value: tok.Value}), nil
	case token.String:
		p.advance()
		return stringPiecesToExpr(tok.Span, tok.Pieces), nil
	case token.KwEnv:
		return p.parseEnvAccess()
	case token.LParen:
		p.advance()
		x, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RParen); err != nil {
			return nil, err
		}
		return x, nil
	case token.LBracket:
		return p.parseList()
	case token.DollarParen:
		return p.parseCommandPipe()
	case token.Pipe:
		// '$( stmt | stmt )' is lexed as Dollar-paren below; a bare '|'
		// here is a syntax error.
		return nil, diag.New(diag.ParseError, tok.Span, "unexpected '|'")
	case token.Ident:
		return p.parseIdentExpr()
	default:
		return nil, diag.New(diag.ParseError, tok.Span, "unexpected "+tok.Kind.String())
	}
}

// parseCommandPipe parses the '$( stmt1 | stmt2 )' capture-of-a-pipe form.
// Segments are plain assignment/expression statements; options on any
// component run() are rejected later by the resolver, not here.
func (p *Parser) parseCommandPipe() (*ast.Expr, *diag.Error) {
	span := p.cur().Span
	p.advance() // '$('
	var segments []*ast.Stmt
	for {
		seg, err := p.parseAssignOrExprStmt()
		if err != nil {
			return nil, err
		}
		segments = append(segments, seg)
		if p.at(token.Pipe) {
			p.advance()
			continue
		}
		break
	}
	if _, err := p.expect(token.RParen); err != nil {
		return nil, err
	}
	return ast.NewExpr(span, ast.CommandPipe{Segments: segments}), nil
}

func (p *Parser) parseList() (*ast.Expr, *diag.Error) {
	span := p.cur().Span
	p.advance() // '['
	var items []*ast.Expr
	for !p.at(token.RBracket) {
		item, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
		if p.at(token.Comma) {
			p.advance()
		}
	}
	if _, err := p.expect(token.RBracket); err != nil {
		return nil, err
	}
	return ast.NewExpr(span, ast.List{Items: items}), nil
}

// parseEnvAccess parses either the dynamic form env(name) or the static
// dotted form env.NAME.
func (p *Parser) parseEnvAccess() (*ast.Expr, *diag.Error) {
	span := p.cur().Span
	p.advance() // 'env'
	switch p.cur().Kind {
	case token.LParen:
		p.advance()
		name, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RParen); err != nil {
			return nil, err
		}
		return ast.NewExpr(span, ast.Env{Name: name}), nil
	case token.Dot:
		p.advance()
		name, err := p.expect(token.Ident)
		if err != nil {
			return nil, err
		}
		return ast.NewExpr(span, ast.EnvDot{Name: name.Value}), nil
	default:
		return nil, diag.New(diag.ParseError, p.cur().Span, "expected '(' or '.' after 'env'")
	}
}

// parseIdentExpr parses a variable reference, a call, or a qualified call
// (alias.func(...)) used for the name-mangled import form.
func (p *Parser) parseIdentExpr() (*ast.Expr, *diag.Error) {
	span := p.cur().Span
	name := p.advance().Value

	if p.at(token.Dot) && p.toks[p.pos+1].Kind == token.Ident && p.toks[p.pos+2].Kind == token.LParen {
		p.advance() // '.'
		fn := p.advance().Value
		args, opts, err := p.parseCallArgs()
		if err != nil {
			return nil, err
		}
		return ast.NewExpr(span, ast.Call{Name: name + "." + fn, Args: args, Options: opts}), nil
	}

	if p.at(token.LParen) {
		args, opts, err := p.parseCallArgs()
		if err != nil {
			return nil, err
		}
		return ast.NewExpr(span, ast.Call{Name: name, Args: args, Options: opts}), nil
	}

	return ast.NewExpr(span, ast.Var{Name: name}), nil
}

// parseCallArgs parses the '(' ... ')' of a call, splitting positional
// arguments from trailing `name: value` named options. Positional
// arguments must all precede named options.
func (p *Parser) parseCallArgs() ([]*ast.Expr, []ast.Option, *diag.Error) {
	if _, err := p.expect(token.LParen); err != nil {
		return nil, nil, err
	}
	var args []*ast.Expr
	var opts []ast.Option
	for !p.at(token.RParen) {
		if p.at(token.Ident) && p.toks[p.pos+1].Kind == token.Colon {
			name := p.advance().Value
			p.advance() // ':'
			value, err := p.parseExpr()
			if err != nil {
				return nil, nil, err
			}
			opts = append(opts, ast.Option{Name: name, Value: value})
		} else {
			arg, err := p.parseExpr()
			if err != nil {
				return nil, nil, err
			}
			args = append(args, arg)
		}
		if p.at(token.Comma) {
			p.advance()
		}
	}
	if _, err := p.expect(token.RParen); err != nil {
		return nil, nil, err
	}
	return args, opts, nil
}

// stringPiecesToExpr folds lexed string pieces into a Literal (when there
// was no interpolation) or a right-leaning Concat tree, per spec §4.2's
// micro-desugar for interpolation.
func stringPiecesToExpr(span ast.Span, pieces []token.StringPiece) *ast.Expr {
	if len(pieces) == 0 {
		return ast.NewExpr(span, ast.Literal{Value: ""})
	}
	exprs := make([]*ast.Expr, len(pieces))
	for i, piece := range pieces {
		if piece.IsLit {
			exprs[i] = ast.NewExpr(span, ast.Literal{Value: piece.Lit})
		} else {
			exprs[i] = ast.NewExpr(span, ast.Var{Name: piece.Var})
		}
	}
	result := exprs[len(exprs)-1]
	for i := len(exprs) - 2; i >= 0; i-- {
		result = ast.NewExpr(span, ast.Concat{Left: exprs[i], Right: result})
	}
	return result
}
