// Package parser implements a recursive-descent, Pratt-style expression parser for
// ScriptLang, producing the [ast.Program] shape fixed by §3.
//
// Precedence climbing for expressions is adapted directly from the teacher's
// parser.Parser (a token-kind -> precedence table plus prefix/infix parse function
// maps); statement parsing is new, built for ScriptLang's line-terminated,
// ENDxxx-delimited block grammar (§6) rather than Monkey's brace-delimited one.
//
// Like the lexer, the parser is technically an external collaborator per §1 (the
// grammar is assumed fixed) — it exists here so the pipeline is runnable end-to-end
// from source text. It never aborts: syntax errors are appended to a [diag.Bag] as
// [diag.SyntaxError] diagnostics, the parser skips to the next statement boundary,
// and parsing continues, mirroring the teacher's non-fatal `p.errors []string`.
package parser

import (
	"strconv"
	"strings"

	"github.com/dr8co/vsc/ast"
	"github.com/dr8co/vsc/diag"
	"github.com/dr8co/vsc/lexer"
	"github.com/dr8co/vsc/source"
	"github.com/dr8co/vsc/token"
)

// Precedence levels for expression parsing, lowest to highest.
const (
	_ int = iota
	LOWEST
	OR
	AND
	EQUALS
	RELATIONAL
	BITOR
	BITXOR
	BITAND
	SUM
	PRODUCT
	PREFIX
	CALL
	INDEX
	MEMBER
)

var precedences = map[token.Kind]int{
	token.OR:      OR,
	token.AND:     AND,
	token.EQ:      EQUALS,
	token.NOT_EQ:  EQUALS,
	token.LT:      RELATIONAL,
	token.GT:      RELATIONAL,
	token.LTE:     RELATIONAL,
	token.GTE:     RELATIONAL,
	token.PIPE:    BITOR,
	token.CARET:   BITXOR,
	token.AMP:     BITAND,
	token.PLUS:    SUM,
	token.MINUS:   SUM,
	token.STAR:    PRODUCT,
	token.SLASH:   PRODUCT,
	token.LPAREN:  CALL,
	token.LBRACKET: INDEX,
	token.DOT:     MEMBER,
}

type (
	prefixParseFn func() ast.Expression
	infixParseFn  func(ast.Expression) ast.Expression
)

// Parser turns a token stream into an [ast.Program].
type Parser struct {
	l    *lexer.Lexer
	bag  *diag.Bag
	file string

	cur  token.Token
	peek token.Token

	prefixFns map[token.Kind]prefixParseFn
	infixFns  map[token.Kind]infixParseFn

	// typeNames tracks every STRUCT name seen so far (upper-cased), the same way a
	// C-style parser tracks typedefs, so a local declaration like "Vector3 v" or
	// "Vector3[3] v" can be told apart from an assignment/call statement that also
	// starts with an IDENT, without backtracking.
	typeNames map[string]bool
}

// New creates a Parser reading from l, reporting syntax errors into bag under the
// given file name (used only for diagnostic ranges).
func New(l *lexer.Lexer, bag *diag.Bag, file string) *Parser {
	p := &Parser{l: l, bag: bag, file: file, typeNames: make(map[string]bool)}

	p.prefixFns = map[token.Kind]prefixParseFn{
		token.IDENT:    p.parseIdentifier,
		token.INT:      p.parseIntLiteral,
		token.FLOAT:    p.parseFloatLiteral,
		token.STRING:   p.parseStringLiteral,
		token.TRUE:     p.parseBoolLiteral,
		token.FALSE:    p.parseBoolLiteral,
		token.BANG:     p.parseUnary,
		token.NOT:      p.parseUnary,
		token.MINUS:    p.parseUnary,
		token.LPAREN:   p.parseParenExpr,
		token.LSHIFT2:  p.parseVectorExpr,
	}
	p.infixFns = map[token.Kind]infixParseFn{
		token.PLUS:     p.parseBinary,
		token.MINUS:    p.parseBinary,
		token.STAR:     p.parseBinary,
		token.SLASH:    p.parseBinary,
		token.AMP:      p.parseBinary,
		token.PIPE:     p.parseBinary,
		token.CARET:    p.parseBinary,
		token.EQ:       p.parseBinary,
		token.NOT_EQ:   p.parseBinary,
		token.LT:       p.parseBinary,
		token.GT:       p.parseBinary,
		token.LTE:      p.parseBinary,
		token.GTE:      p.parseBinary,
		token.AND:      p.parseBinary,
		token.OR:       p.parseBinary,
		token.LPAREN:   p.parseCall,
		token.LBRACKET: p.parseIndex,
		token.DOT:      p.parseMember,
	}

	p.next()
	p.next()
	return p
}

func (p *Parser) next() {
	p.cur = p.peek
	p.peek = p.l.NextToken()
}

func (p *Parser) rng() source.Range {
	return source.Range{
		File:  p.file,
		Begin: source.Pos{Line: p.cur.Line, Column: p.cur.Column},
		End:   source.Pos{Line: p.cur.Line, Column: p.cur.Column + len(p.cur.Literal)},
	}
}

func (p *Parser) errorf(format string, args ...any) {
	p.bag.Errorf(p.rng(), diag.SyntaxError, format, args...)
}

func (p *Parser) curIs(k token.Kind) bool  { return p.cur.Kind == k }
func (p *Parser) peekIs(k token.Kind) bool { return p.peek.Kind == k }

// expect advances past the current token if it has kind k, else reports a syntax
// error and does not advance (so the caller's resync logic can recover).
func (p *Parser) expect(k token.Kind) bool {
	if p.curIs(k) {
		p.next()
		return true
	}
	p.errorf("expected %s, got %s %q", k, p.cur.Kind, p.cur.Literal)
	return false
}

// skipNewlines consumes zero or more NEWLINE tokens (blank lines are allowed
// anywhere a statement boundary is).
func (p *Parser) skipNewlines() {
	for p.curIs(token.NEWLINE) {
		p.next()
	}
}

// endStatement consumes the NEWLINE or EOF ending the current statement/decl.
func (p *Parser) endStatement() {
	if p.curIs(token.NEWLINE) || p.curIs(token.EOF) {
		p.skipNewlines()
		return
	}
	p.errorf("expected end of line, got %s %q", p.cur.Kind, p.cur.Literal)
	p.syncToNewline()
}

// syncToNewline skips tokens until a NEWLINE or EOF, allowing the parser to recover
// from a syntax error and keep finding independent problems (§7).
func (p *Parser) syncToNewline() {
	for !p.curIs(token.NEWLINE) && !p.curIs(token.EOF) {
		p.next()
	}
	p.skipNewlines()
}

// ParseProgram parses a whole translation unit.
func (p *Parser) ParseProgram() *ast.Program {
	start := p.rng()
	prog := &ast.Program{}
	p.skipNewlines()
	for !p.curIs(token.EOF) {
		if d := p.parseTopLevel(); d != nil {
			prog.Decls = append(prog.Decls, d)
		}
		p.skipNewlines()
	}
	prog.Rng = source.Span(start, p.rng())
	return prog
}

func (p *Parser) parseTopLevel() ast.TopLevel {
	switch p.cur.Kind {
	case token.SCRIPT_NAME:
		return p.parseScriptName()
	case token.SCRIPT_HASH:
		return p.parseScriptHash()
	case token.USING:
		return p.parseUsing()
	case token.STRUCT:
		return p.parseStruct()
	case token.CONST:
		return p.parseVarDecl(true)
	case token.GLOBAL:
		return p.parseGlobalBlock()
	case token.PROC:
		return p.parseProc()
	case token.FUNC:
		return p.parseFunc()
	case token.PROTO:
		return p.parseProto()
	case token.NATIVE:
		return p.parseNative()
	case token.INT_KW, token.FLOAT_KW, token.BOOL_KW, token.STRING_KW, token.ANY_KW, token.IDENT:
		return p.parseVarDecl(false)
	default:
		p.errorf("unexpected token %s %q at top level", p.cur.Kind, p.cur.Literal)
		p.syncToNewline()
		return nil
	}
}

func (p *Parser) parseScriptName() *ast.ScriptNameDecl {
	start := p.rng()
	p.next()
	name := p.cur.Literal
	p.expect(token.IDENT)
	d := &ast.ScriptNameDecl{Name: name}
	d.Rng = source.Span(start, p.rng())
	p.endStatement()
	return d
}

func (p *Parser) parseScriptHash() *ast.ScriptHashDecl {
	start := p.rng()
	p.next()
	v, _ := strconv.ParseInt(p.cur.Literal, 0, 64)
	p.expect(token.INT)
	d := &ast.ScriptHashDecl{Value: v}
	d.Rng = source.Span(start, p.rng())
	p.endStatement()
	return d
}

func (p *Parser) parseUsing() *ast.UsingDecl {
	start := p.rng()
	p.next()
	path := p.cur.Literal
	p.expect(token.STRING)
	d := &ast.UsingDecl{Path: path}
	d.Rng = source.Span(start, p.rng())
	p.endStatement()
	return d
}

// parseDeclarator parses a base type name followed by zero or more `[len]`/`&`
// wrappers (§3).
func (p *Parser) parseDeclarator() *ast.Declarator {
	start := p.rng()
	base := p.cur.Literal
	p.next()
	d := &ast.Declarator{BaseName: base}
	for {
		switch p.cur.Kind {
		case token.LBRACKET:
			p.next()
			n, _ := strconv.ParseInt(p.cur.Literal, 0, 64)
			p.expect(token.INT)
			p.expect(token.RBRACKET)
			d.Wrappers = append(d.Wrappers, ast.ArrayWrapper{Length: int(n)})
		case token.AMP:
			p.next()
			d.Wrappers = append(d.Wrappers, ast.RefWrapper{})
		default:
			d.Rng = source.Span(start, p.rng())
			return d
		}
	}
}

func (p *Parser) parseStruct() *ast.StructDecl {
	start := p.rng()
	p.next()
	name := p.cur.Literal
	p.typeNames[strings.ToUpper(name)] = true
	p.expect(token.IDENT)
	p.endStatement()

	decl := &ast.StructDecl{Name: name}
	for !p.curIs(token.ENDSTRUCT) && !p.curIs(token.EOF) {
		fstart := p.rng()
		declType := p.parseDeclarator()
		var names []string
		names = append(names, p.cur.Literal)
		p.expect(token.IDENT)
		for p.curIs(token.COMMA) {
			p.next()
			names = append(names, p.cur.Literal)
			p.expect(token.IDENT)
		}
		decl.Fields = append(decl.Fields, &ast.FieldDecl{
			Rng: source.Span(fstart, p.rng()), Declarator: declType, Names: names,
		})
		p.endStatement()
	}
	p.expect(token.ENDSTRUCT)
	decl.Rng = source.Span(start, p.rng())
	p.endStatement()
	return decl
}

// parseVarDecl parses both `CONST decl` and plain static `decl`.
func (p *Parser) parseVarDecl(isConst bool) *ast.VarDecl {
	start := p.rng()
	if isConst {
		p.next()
	}
	declType := p.parseDeclarator()
	name := p.cur.Literal
	p.expect(token.IDENT)
	var init ast.Expression
	if p.curIs(token.ASSIGN) {
		p.next()
		init = p.parseExpression(LOWEST)
	}
	d := &ast.VarDecl{Declarator: declType, Name: name, Initializer: init, IsConst: isConst}
	d.Rng = source.Span(start, p.rng())
	p.endStatement()
	return d
}

func (p *Parser) parseGlobalBlock() *ast.GlobalBlock {
	start := p.rng()
	p.next()
	blk, _ := strconv.ParseInt(p.cur.Literal, 0, 64)
	p.expect(token.INT)
	owner := p.cur.Literal
	p.expect(token.IDENT)
	p.endStatement()

	g := &ast.GlobalBlock{Block: int(blk), Owner: owner}
	for !p.curIs(token.ENDGLOBAL) && !p.curIs(token.EOF) {
		g.Decls = append(g.Decls, p.parseVarDecl(false))
	}
	p.expect(token.ENDGLOBAL)
	g.Rng = source.Span(start, p.rng())
	p.endStatement()
	return g
}

func (p *Parser) parseParamList() []ast.Param {
	p.expect(token.LPAREN)
	var params []ast.Param
	for !p.curIs(token.RPAREN) && !p.curIs(token.EOF) {
		start := p.rng()
		declType := p.parseDeclarator()
		name := p.cur.Literal
		p.expect(token.IDENT)
		params = append(params, ast.Param{Rng: source.Span(start, p.rng()), Declarator: declType, Name: name})
		if p.curIs(token.COMMA) {
			p.next()
		}
	}
	p.expect(token.RPAREN)
	return params
}

func (p *Parser) parseProc() *ast.ProcDecl {
	start := p.rng()
	p.next()
	name := p.cur.Literal
	p.expect(token.IDENT)
	params := p.parseParamList()
	p.endStatement()
	body := p.parseBlock(token.ENDPROC)
	p.expect(token.ENDPROC)
	d := &ast.ProcDecl{Name: name, Params: params, Body: body}
	d.Rng = source.Span(start, p.rng())
	p.endStatement()
	return d
}

func (p *Parser) parseFunc() *ast.FuncDecl {
	start := p.rng()
	p.next()
	retType := p.parseDeclarator()
	name := p.cur.Literal
	p.expect(token.IDENT)
	params := p.parseParamList()
	p.endStatement()
	body := p.parseBlock(token.ENDFUNC)
	p.expect(token.ENDFUNC)
	d := &ast.FuncDecl{Name: name, ReturnType: retType, Params: params, Body: body}
	d.Rng = source.Span(start, p.rng())
	p.endStatement()
	return d
}

func (p *Parser) parseProto() *ast.ProtoDecl {
	start := p.rng()
	p.next()
	d := &ast.ProtoDecl{}
	if p.curIs(token.FUNC) {
		p.next()
		d.IsFunc = true
		d.ReturnType = p.parseDeclarator()
	} else {
		p.expect(token.PROC)
	}
	d.Name = p.cur.Literal
	p.expect(token.IDENT)
	d.Params = p.parseParamList()
	d.Rng = source.Span(start, p.rng())
	p.endStatement()
	return d
}

func (p *Parser) parseNative() *ast.NativeDecl {
	start := p.rng()
	p.next()
	d := &ast.NativeDecl{}
	if p.curIs(token.FUNC) {
		p.next()
		d.IsFunc = true
		d.ReturnType = p.parseDeclarator()
	} else {
		p.expect(token.PROC)
	}
	d.Name = p.cur.Literal
	p.expect(token.IDENT)
	d.Params = p.parseParamList()
	d.Rng = source.Span(start, p.rng())
	p.endStatement()
	return d
}

// parseBlock parses statements until one of the given terminator keywords is seen.
func (p *Parser) parseBlock(terminators ...token.Kind) []ast.Statement {
	var stmts []ast.Statement
	for !p.curIs(token.EOF) && !p.atAny(terminators) {
		if s := p.parseStatement(); s != nil {
			stmts = append(stmts, s)
		}
	}
	return stmts
}

func (p *Parser) atAny(kinds []token.Kind) bool {
	for _, k := range kinds {
		if p.curIs(k) {
			return true
		}
	}
	return false
}

func (p *Parser) parseStatement() ast.Statement {
	switch p.cur.Kind {
	case token.IF:
		return p.parseIf()
	case token.WHILE:
		return p.parseWhile()
	case token.REPEAT:
		return p.parseRepeat()
	case token.SWITCH:
		return p.parseSwitch()
	case token.RETURN:
		return p.parseReturn()
	case token.BREAK:
		start := p.rng()
		p.next()
		s := &ast.BreakStatement{}
		s.Rng = start
		p.endStatement()
		return s
	case token.CONTINUE:
		start := p.rng()
		p.next()
		s := &ast.ContinueStatement{}
		s.Rng = start
		p.endStatement()
		return s
	case token.INT_KW, token.FLOAT_KW, token.BOOL_KW, token.STRING_KW, token.ANY_KW:
		return p.parseLocalVarDecl()
	case token.IDENT:
		if p.typeNames[strings.ToUpper(p.cur.Literal)] {
			return p.parseLocalVarDecl()
		}
		return p.parseAssignOrExpr()
	default:
		p.errorf("unexpected token %s %q in statement", p.cur.Kind, p.cur.Literal)
		p.syncToNewline()
		return nil
	}
}

func (p *Parser) parseLocalVarDecl() ast.Statement {
	start := p.rng()
	declType := p.parseDeclarator()
	name := p.cur.Literal
	p.expect(token.IDENT)
	var init ast.Expression
	if p.curIs(token.ASSIGN) {
		p.next()
		init = p.parseExpression(LOWEST)
	}
	d := &ast.VarDecl{Declarator: declType, Name: name, Initializer: init}
	d.Rng = source.Span(start, p.rng())
	p.endStatement()
	return d
}

var compoundOps = map[token.Kind]string{
	token.ASSIGN:   "=",
	token.PLUS_EQ:  "+=",
	token.MINUS_EQ: "-=",
	token.STAR_EQ:  "*=",
	token.SLASH_EQ: "/=",
}

func (p *Parser) parseAssignOrExpr() ast.Statement {
	start := p.rng()
	expr := p.parseExpression(LOWEST)
	if op, ok := compoundOps[p.cur.Kind]; ok {
		p.next()
		value := p.parseExpression(LOWEST)
		s := &ast.AssignStatement{Target: expr, Op: op, Value: value}
		s.Rng = source.Span(start, p.rng())
		p.endStatement()
		return s
	}
	s := &ast.ExprStatement{Expression: expr}
	s.Rng = source.Span(start, p.rng())
	p.endStatement()
	return s
}

func (p *Parser) parseIf() *ast.IfStatement {
	start := p.rng()
	p.next()
	cond := p.parseExpression(LOWEST)
	p.endStatement()
	then := p.parseBlock(token.ELSE, token.ENDIF)
	var els []ast.Statement
	if p.curIs(token.ELSE) {
		p.next()
		p.endStatement()
		els = p.parseBlock(token.ENDIF)
	}
	p.expect(token.ENDIF)
	s := &ast.IfStatement{Cond: cond, Then: then, Else: els}
	s.Rng = source.Span(start, p.rng())
	p.endStatement()
	return s
}

func (p *Parser) parseWhile() *ast.WhileStatement {
	start := p.rng()
	p.next()
	cond := p.parseExpression(LOWEST)
	p.endStatement()
	body := p.parseBlock(token.ENDWHILE)
	p.expect(token.ENDWHILE)
	s := &ast.WhileStatement{Cond: cond, Body: body}
	s.Rng = source.Span(start, p.rng())
	p.endStatement()
	return s
}

func (p *Parser) parseRepeat() *ast.RepeatStatement {
	start := p.rng()
	p.next()
	limit := p.parseExpression(LOWEST)
	p.expect(token.COMMA)
	counter := p.parseExpression(LOWEST)
	p.endStatement()
	body := p.parseBlock(token.ENDREPEAT)
	p.expect(token.ENDREPEAT)
	s := &ast.RepeatStatement{Limit: limit, Counter: counter, Body: body}
	s.Rng = source.Span(start, p.rng())
	p.endStatement()
	return s
}

func (p *Parser) parseSwitch() *ast.SwitchStatement {
	start := p.rng()
	p.next()
	value := p.parseExpression(LOWEST)
	p.endStatement()

	s := &ast.SwitchStatement{Value: value}
	for p.curIs(token.CASE) {
		cstart := p.rng()
		p.next()
		cv := p.parseExpression(LOWEST)
		p.endStatement()
		body := p.parseBlock(token.CASE, token.DEFAULT, token.ENDSWITCH)
		s.Cases = append(s.Cases, ast.SwitchCase{Rng: source.Span(cstart, p.rng()), Value: cv, Body: body})
	}
	if p.curIs(token.DEFAULT) {
		p.next()
		p.endStatement()
		s.Default = p.parseBlock(token.ENDSWITCH)
	}
	p.expect(token.ENDSWITCH)
	s.Rng = source.Span(start, p.rng())
	p.endStatement()
	return s
}

func (p *Parser) parseReturn() *ast.ReturnStatement {
	start := p.rng()
	p.next()
	var v ast.Expression
	if !p.curIs(token.NEWLINE) && !p.curIs(token.EOF) {
		v = p.parseExpression(LOWEST)
	}
	s := &ast.ReturnStatement{Value: v}
	s.Rng = source.Span(start, p.rng())
	p.endStatement()
	return s
}

// --- Expressions -----------------------------------------------------------

func (p *Parser) parseExpression(prec int) ast.Expression {
	prefix, ok := p.prefixFns[p.cur.Kind]
	if !ok {
		p.errorf("unexpected token %s %q in expression", p.cur.Kind, p.cur.Literal)
		p.next()
		return &ast.IntLiteral{Value: 0}
	}
	left := prefix()

	for !p.curIs(token.NEWLINE) && !p.curIs(token.EOF) && prec < p.curPrecedence() {
		infix, ok := p.infixFns[p.cur.Kind]
		if !ok {
			return left
		}
		left = infix(left)
	}
	return left
}

func (p *Parser) curPrecedence() int {
	if pr, ok := precedences[p.cur.Kind]; ok {
		return pr
	}
	return LOWEST
}

func (p *Parser) parseIdentifier() ast.Expression {
	e := &ast.Identifier{Name: p.cur.Literal}
	e.Rng = p.rng()
	p.next()
	return e
}

func (p *Parser) parseIntLiteral() ast.Expression {
	r := p.rng()
	v, err := strconv.ParseInt(p.cur.Literal, 0, 64)
	if err != nil {
		p.errorf("invalid integer literal %q", p.cur.Literal)
	}
	p.next()
	e := &ast.IntLiteral{Value: v}
	e.Rng = r
	return e
}

func (p *Parser) parseFloatLiteral() ast.Expression {
	r := p.rng()
	v, err := strconv.ParseFloat(p.cur.Literal, 64)
	if err != nil {
		p.errorf("invalid float literal %q", p.cur.Literal)
	}
	p.next()
	e := &ast.FloatLiteral{Value: v}
	e.Rng = r
	return e
}

func (p *Parser) parseBoolLiteral() ast.Expression {
	r := p.rng()
	v := strings.EqualFold(p.cur.Literal, "TRUE")
	p.next()
	e := &ast.BoolLiteral{Value: v}
	e.Rng = r
	return e
}

func (p *Parser) parseStringLiteral() ast.Expression {
	r := p.rng()
	v := p.cur.Literal
	p.next()
	e := &ast.StringLiteral{Value: v}
	e.Rng = r
	return e
}

func (p *Parser) parseParenExpr() ast.Expression {
	start := p.rng()
	p.next()
	inner := p.parseExpression(LOWEST)
	p.expect(token.RPAREN)
	e := &ast.ParenExpr{Inner: inner}
	e.Rng = source.Span(start, p.rng())
	return e
}

func (p *Parser) parseUnary() ast.Expression {
	start := p.rng()
	op := p.cur.Literal
	if p.curIs(token.NOT) || p.curIs(token.BANG) {
		op = "NOT"
	}
	p.next()
	operand := p.parseExpression(PREFIX)
	e := &ast.UnaryExpr{Op: op, Operand: operand}
	e.Rng = source.Span(start, p.rng())
	return e
}

func (p *Parser) parseBinary(left ast.Expression) ast.Expression {
	start := left.Range()
	op := p.cur.Literal
	prec := p.curPrecedence()
	p.next()
	right := p.parseExpression(prec)
	e := &ast.BinaryExpr{Op: op, Left: left, Right: right}
	e.Rng = source.Span(start, p.rng())
	return e
}

func (p *Parser) parseCall(callee ast.Expression) ast.Expression {
	start := callee.Range()
	p.next() // consume '('
	var args []ast.Expression
	for !p.curIs(token.RPAREN) && !p.curIs(token.EOF) {
		args = append(args, p.parseExpression(LOWEST))
		if p.curIs(token.COMMA) {
			p.next()
		}
	}
	p.expect(token.RPAREN)
	e := &ast.CallExpr{Callee: callee, Args: args}
	e.Rng = source.Span(start, p.rng())
	return e
}

func (p *Parser) parseIndex(target ast.Expression) ast.Expression {
	start := target.Range()
	p.next() // consume '['
	idx := p.parseExpression(LOWEST)
	p.expect(token.RBRACKET)
	e := &ast.IndexExpr{Target: target, Index: idx}
	e.Rng = source.Span(start, p.rng())
	return e
}

func (p *Parser) parseMember(target ast.Expression) ast.Expression {
	start := target.Range()
	p.next() // consume '.'
	field := p.cur.Literal
	p.expect(token.IDENT)
	e := &ast.MemberExpr{Target: target, Field: field}
	e.Rng = source.Span(start, p.rng())
	return e
}

func (p *Parser) parseVectorExpr() ast.Expression {
	start := p.rng()
	p.next() // consume '<<'
	var comps []ast.Expression
	for !p.curIs(token.RSHIFT2) && !p.curIs(token.EOF) {
		comps = append(comps, p.parseExpression(LOWEST))
		if p.curIs(token.COMMA) {
			p.next()
		}
	}
	p.expect(token.RSHIFT2)
	e := &ast.VectorExpr{Components: comps}
	e.Rng = source.Span(start, p.rng())
	return e
}
