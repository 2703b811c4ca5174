// Package parser implements a recursive-descent parser producing the
// untyped syntax tree. Each grammar production is a dedicated method;
// operator precedence and the dangling-else problem are resolved
// structurally by the grammar's shape, not by a precedence table. All
// token consumption goes through the cursor's peek/pop/pushback and
// expected-consume operations.
package parser

import (
	"github.com/cwbudde/dws-front/internal/ast"
	"github.com/cwbudde/dws-front/internal/cursor"
	"github.com/cwbudde/dws-front/internal/token"
)

// Parser turns a token stream into the untyped syntax tree. No error
// recovery is attempted: the first diagnostic aborts the pipeline,
// so Errors() holds at most one entry; follow-on diagnostics raised while
// the failed productions unwind are dropped.
type Parser struct {
	c     *cursor.Cursor
	errs  []*Error
	warns []string

	// blockStack names the enclosing constructs ("if", "for", "procedure
	// foo") so diagnostics can report where in the tree they occurred.
	blockStack []string
}

// New creates a Parser over tokens (which must end with exactly one EOF).
func New(tokens []token.Token) *Parser {
	return &Parser{c: cursor.New(tokens)}
}

// Errors returns accumulated parser diagnostics.
func (p *Parser) Errors() []*Error { return p.errs }

// Warnings returns non-fatal notices (currently only the tolerated
// missing terminating period).
func (p *Parser) Warnings() []string { return p.warns }

func (p *Parser) peek() token.Token {
	return p.c.PeekFront()
}

// pop consumes the next token unconditionally. A well-formed stream
// carries its EOF last; an interior EOF (tokens still queued behind it)
// is diagnosed as EarlyEOF rather than silently truncating the parse.
func (p *Parser) pop() token.Token {
	tok := p.c.PopFront()
	if tok.Type == token.EOF && p.c.Remaining() > 0 {
		p.fail(newEarlyEOF(tok.Pos))
	}
	return tok
}

func (p *Parser) pushBlock(name string) { p.blockStack = append(p.blockStack, name) }
func (p *Parser) popBlock() {
	if n := len(p.blockStack); n > 0 {
		p.blockStack = p.blockStack[:n-1]
	}
}
func (p *Parser) enclosing() string {
	if n := len(p.blockStack); n > 0 {
		return p.blockStack[n-1]
	}
	return ""
}

func (p *Parser) fail(err *Error) {
	if len(p.errs) > 0 {
		return
	}
	err.EnclosingIn = p.enclosing()
	p.errs = append(p.errs, err)
}

// failAtEOF records the diagnostic for a consume that failed at an EOF
// token: an interior EOF is EarlyEOF, a genuine end of input is the
// caller-supplied expectation error.
func (p *Parser) failAtEOF(tok token.Token, expected *Error) {
	if p.c.Remaining() > 1 {
		p.fail(newEarlyEOF(tok.Pos))
		return
	}
	p.fail(expected)
}

// expect consumes the next token iff it has type t. On failure it
// records a diagnostic appropriate to whether the stream is at EOF.
func (p *Parser) expect(t token.Type) bool {
	if p.c.ConsumeExpected(t) {
		return true
	}
	tok := p.peek()
	if tok.Type == token.EOF {
		p.failAtEOF(tok, newUnexpectedEOFToken(tok.Pos, t))
		return false
	}
	p.fail(newUnexpectedToken(tok.Pos, t.String(), tok))
	return false
}

// expectIdentifier consumes an IDENT token, returning its payload.
func (p *Parser) expectIdentifier() (string, bool) {
	if name, ok := p.c.ConsumeIdentifier(); ok {
		return name, true
	}
	tok := p.peek()
	if tok.Type == token.EOF {
		p.failAtEOF(tok, newUnexpectedEOF(tok.Pos, "identifier"))
		return "", false
	}
	p.fail(newUnexpectedToken(tok.Pos, "identifier", tok))
	return "", false
}

// ParseProgram parses `Program = "program" IDENT "is" ProgBody "." EOF`.
func (p *Parser) ParseProgram() *ast.Program {
	prog := &ast.Program{Token: p.peek()}
	if !p.expect(token.PROGRAM) {
		return prog
	}

	nameTok := p.peek()
	name, ok := p.expectIdentifier()
	if !ok {
		return prog
	}
	prog.Name = &ast.Identifier{Token: nameTok, Value: name}

	if !p.expect(token.IS) {
		return prog
	}

	decls, stmts := p.parseBody("program")
	prog.Declarations = decls
	prog.Statements = stmts

	// Terminating period: warn-and-continue if missing (non-fatal).
	if !p.c.ConsumeAsBool(token.DOT) {
		p.warns = append(p.warns, "missing terminating '.' after \"end program\"")
	}

	// The subsequent EOF requirement is strict; consuming EOF on an
	// already-empty queue also succeeds.
	if !p.c.ConsumeExpected(token.EOF) {
		tok := p.peek()
		p.fail(newExpectedEOF(tok.Pos, tok))
	}

	return prog
}

// parseBody parses `{Decl ";"} "begin" {Stmt ";"} "end" <closer>`, shared
// by the program body and every procedure body.
func (p *Parser) parseBody(closer string) ([]ast.Declaration, []ast.Statement) {
	var decls []ast.Declaration
	for p.atDeclStart() {
		d := p.parseDecl()
		if d != nil {
			decls = append(decls, d)
		}
		if !p.expect(token.SEMICOLON) {
			return decls, nil
		}
	}

	if !p.expect(token.BEGIN) {
		return decls, nil
	}

	var stmts []ast.Statement
	for !p.atBlockEnd() {
		if p.peek().Type == token.EOF {
			p.failAtEOF(p.peek(), newUnexpectedEOFToken(p.peek().Pos, token.END))
			return decls, stmts
		}
		s := p.parseStatement()
		if s != nil {
			stmts = append(stmts, s)
		}
		if !p.expect(token.SEMICOLON) {
			return decls, stmts
		}
	}

	if !p.expect(token.END) {
		return decls, stmts
	}
	var closerType token.Type
	switch closer {
	case "program":
		closerType = token.PROGRAM
	case "procedure":
		closerType = token.PROCEDURE
	}
	p.expect(closerType)

	return decls, stmts
}

func (p *Parser) atDeclStart() bool {
	switch p.peek().Type {
	case token.GLOBAL, token.VARIABLE, token.PROCEDURE:
		return true
	default:
		return false
	}
}

// atBlockEnd reports whether the next token is one of the terminators
// that close a statement list: "end" (block close), or "else" (so a
// then-branch stops before the else keyword).
func (p *Parser) atBlockEnd() bool {
	return p.peek().Type == token.END || p.peek().Type == token.ELSE
}

// parseDecl parses `Decl = ["global"] (VarDecl | ProcDecl)`.
func (p *Parser) parseDecl() ast.Declaration {
	global := p.c.ConsumeAsBool(token.GLOBAL)

	switch p.peek().Type {
	case token.VARIABLE:
		return p.parseVarDecl(global)
	case token.PROCEDURE:
		return p.parseProcDecl(global)
	default:
		p.fail(newUnexpectedToken(p.peek().Pos, "'variable' or 'procedure'", p.peek()))
		return nil
	}
}

// parseVarDecl parses `VarDecl = "variable" IDENT ":" TypeMark ["[" Number "]"]`.
func (p *Parser) parseVarDecl(global bool) *ast.VarDecl {
	tok := p.peek()
	if !p.expect(token.VARIABLE) {
		return nil
	}
	nameTok := p.peek()
	name, ok := p.expectIdentifier()
	if !ok {
		return nil
	}
	if !p.expect(token.COLON) {
		return nil
	}
	typ := p.parseTypeMark()
	if typ == nil {
		return nil
	}

	v := &ast.VarDecl{
		Token:  tok,
		Global: global,
		Name:   &ast.Identifier{Token: nameTok, Value: name},
		Type:   typ,
	}

	if p.c.ConsumeAsBool(token.LBRACK) {
		boundTok := p.peek()
		if boundTok.Type != token.NUMBER {
			p.fail(newUnexpectedToken(boundTok.Pos, "array bound (number)", boundTok))
			return nil
		}
		p.pop()
		v.ArrayBound = &ast.NumberLiteral{Token: boundTok, Value: boundTok.Literal}
		if !p.expect(token.RBRACK) {
			return nil
		}
	}

	return v
}

func (p *Parser) parseTypeMark() *ast.TypeMark {
	tok := p.peek()
	var name string
	switch tok.Type {
	case token.INTEGER:
		name = "integer"
	case token.FLOAT:
		name = "float"
	case token.STRING_TYPE:
		name = "string"
	case token.BOOL:
		name = "bool"
	default:
		p.fail(newUnexpectedToken(tok.Pos, "type (integer/float/string/bool)", tok))
		return nil
	}
	p.pop()
	return &ast.TypeMark{Token: tok, Name: name}
}

// parseProcDecl parses `ProcDecl = ProcHeader ProcBody`.
func (p *Parser) parseProcDecl(global bool) *ast.ProcDecl {
	tok := p.peek()
	if !p.expect(token.PROCEDURE) {
		return nil
	}
	nameTok := p.peek()
	name, ok := p.expectIdentifier()
	if !ok {
		return nil
	}
	if !p.expect(token.COLON) {
		return nil
	}
	retType := p.parseTypeMark()
	if retType == nil {
		return nil
	}
	if !p.expect(token.LPAREN) {
		return nil
	}

	proc := &ast.ProcDecl{
		Token:      tok,
		Global:     global,
		Name:       &ast.Identifier{Token: nameTok, Value: name},
		ReturnType: retType,
	}

	if p.peek().Type != token.RPAREN {
		proc.Params = p.parseParamList()
	}
	if !p.expect(token.RPAREN) {
		return proc
	}

	p.pushBlock("procedure " + name)
	defer p.popBlock()

	decls, stmts := p.parseBody("procedure")
	proc.Declarations = decls
	proc.Statements = stmts
	return proc
}

// parseParamList parses `ParamList = VarDecl {"," VarDecl}`.
func (p *Parser) parseParamList() []*ast.Param {
	var params []*ast.Param
	for {
		v := p.parseVarDecl(false)
		if v == nil {
			return params
		}
		params = append(params, &ast.Param{Name: v.Name, Type: v.Type, ArrayBound: v.ArrayBound})
		if !p.c.ConsumeAsBool(token.COMMA) {
			break
		}
	}
	return params
}

// parseStatement parses `Stmt = Assign | If | For | Return`.
func (p *Parser) parseStatement() ast.Statement {
	switch p.peek().Type {
	case token.IF:
		return p.parseIf()
	case token.FOR:
		return p.parseFor()
	case token.RETURN:
		return p.parseReturn()
	case token.IDENT:
		return p.parseAssign()
	default:
		p.fail(newUnexpectedToken(p.peek().Pos, "statement", p.peek()))
		return nil
	}
}

// parseDestination parses `Dest = IDENT ["[" Expr "]"]`.
func (p *Parser) parseDestination() *ast.Destination {
	nameTok := p.peek()
	name, ok := p.expectIdentifier()
	if !ok {
		return nil
	}
	dest := &ast.Destination{Token: nameTok, Name: &ast.Identifier{Token: nameTok, Value: name}}
	if p.c.ConsumeAsBool(token.LBRACK) {
		dest.Index = p.parseExpression()
		if dest.Index == nil {
			return nil
		}
		if !p.expect(token.RBRACK) {
			return nil
		}
	}
	return dest
}

// parseAssign parses `Assign = Dest ":=" Expr`.
func (p *Parser) parseAssign() *ast.AssignStatement {
	dest := p.parseDestination()
	if dest == nil {
		return nil
	}
	tok := p.peek()
	if !p.expect(token.ASSIGN) {
		return nil
	}
	value := p.parseExpression()
	if value == nil {
		return nil
	}
	return &ast.AssignStatement{Token: tok, Dest: dest, Value: value}
}

// parseIf parses
// `If = "if" "(" Expr ")" "then" {Stmt ";"} ["else" {Stmt ";"}] "end" "if"`.
// The dangling-else is resolved structurally: "else" is recognized as a
// terminator of the innermost then-branch's statement list before that
// branch's own "end if", so it always binds to the nearest open "if".
func (p *Parser) parseIf() *ast.IfStatement {
	tok := p.pop() // "if"
	if !p.expect(token.LPAREN) {
		return nil
	}
	cond := p.parseExpression()
	if cond == nil {
		return nil
	}
	if !p.expect(token.RPAREN) {
		return nil
	}
	if !p.expect(token.THEN) {
		return nil
	}

	p.pushBlock("if")
	defer p.popBlock()

	stmt := &ast.IfStatement{Token: tok, Condition: cond}

	stmt.Consequence = p.parseStatementListUntil(func() bool {
		return p.peek().Type == token.END || p.peek().Type == token.ELSE
	})

	if p.c.ConsumeAsBool(token.ELSE) {
		stmt.Alternative = p.parseStatementListUntil(func() bool {
			return p.peek().Type == token.END
		})
	}

	if !p.expect(token.END) {
		return stmt
	}
	p.expect(token.IF)
	return stmt
}

// parseFor parses `For = "for" "(" Assign ";" Expr ")" {Stmt ";"} "end" "for"`.
func (p *Parser) parseFor() *ast.ForStatement {
	tok := p.pop() // "for"
	if !p.expect(token.LPAREN) {
		return nil
	}
	init := p.parseAssign()
	if init == nil {
		return nil
	}
	if !p.expect(token.SEMICOLON) {
		return nil
	}
	cond := p.parseExpression()
	if cond == nil {
		return nil
	}
	if !p.expect(token.RPAREN) {
		return nil
	}

	p.pushBlock("for")
	defer p.popBlock()

	stmt := &ast.ForStatement{Token: tok, Init: init, Condition: cond}
	stmt.Body = p.parseStatementListUntil(func() bool {
		return p.peek().Type == token.END
	})

	if !p.expect(token.END) {
		return stmt
	}
	p.expect(token.FOR)
	return stmt
}

// parseReturn parses `Return = "return" Expr`.
func (p *Parser) parseReturn() *ast.ReturnStatement {
	tok := p.pop() // "return"
	value := p.parseExpression()
	if value == nil {
		return nil
	}
	return &ast.ReturnStatement{Token: tok, Value: value}
}

// parseStatementListUntil parses `{Stmt ";"}` until stop() reports true
// or EOF is reached.
func (p *Parser) parseStatementListUntil(stop func() bool) []ast.Statement {
	var stmts []ast.Statement
	for !stop() {
		if p.peek().Type == token.EOF {
			p.failAtEOF(p.peek(), newUnexpectedEOFToken(p.peek().Pos, token.END))
			return stmts
		}
		s := p.parseStatement()
		if s != nil {
			stmts = append(stmts, s)
		}
		if !p.expect(token.SEMICOLON) {
			return stmts
		}
	}
	return stmts
}

// --- Expressions -----------------------------------------------------
//
// Expression  = ["not"] ArithOp {("&" | "|") ArithOp}
// ArithOp     = Relation {("+" | "-") Relation}
// Relation    = Term {("<" | "<=" | ">" | ">=" | "==" | "!=") Term}
// Term        = Factor {("*" | "/") Factor}
// Factor      = "(" Expr ")" | IDENT "(" [Args] ")" | IDENT ["[" Expr "]"]
//             | Number | StringLiteral | "true" | "false"
//
// Every level is a left-associative chain: consume the tighter level
// first, then iteratively extend leftward. The language has no "and"/
// "or" keywords; '&' and '|' are its conjunction operators (bitwise or
// logical depending on operand types), so Expression's outer level
// chains over those, with a leading "not" binding to the chain's
// leftmost operand only.

func (p *Parser) parseExpression() ast.Expression {
	return p.parseArithOrLogical()
}

// parseArithOrLogical realizes the top grammar level: a left-associative
// chain of '&'/'|' over ArithOp, with an optional leading "not" binding
// only to the chain's leftmost operand (not the chain as a whole) — so
// `not a & b` parses as `(not a) & b`.
func (p *Parser) parseArithOrLogical() ast.Expression {
	var left ast.Expression
	if p.peek().Type == token.NOT {
		tok := p.pop()
		operand := p.parseArithOp()
		if operand == nil {
			return nil
		}
		left = &ast.UnaryExpression{Token: tok, Operator: "not", Right: operand}
	} else {
		left = p.parseArithOp()
	}
	if left == nil {
		return nil
	}
	for p.peek().Type == token.AMP || p.peek().Type == token.PIPE {
		opTok := p.pop()
		right := p.parseArithOp()
		if right == nil {
			return nil
		}
		left = &ast.BinaryExpression{Token: opTok, Left: left, Operator: opTok.Literal, Right: right}
	}
	return left
}

// parseArithOp realizes the `+`/`-` level over Relation.
func (p *Parser) parseArithOp() ast.Expression {
	left := p.parseRelation()
	if left == nil {
		return nil
	}
	for p.peek().Type == token.PLUS || p.peek().Type == token.MINUS {
		opTok := p.pop()
		right := p.parseRelation()
		if right == nil {
			return nil
		}
		left = &ast.BinaryExpression{Token: opTok, Left: left, Operator: opTok.Literal, Right: right}
	}
	return left
}

// parseRelation realizes the comparison level over Term.
func (p *Parser) parseRelation() ast.Expression {
	left := p.parseTerm()
	if left == nil {
		return nil
	}
	for isRelOp(p.peek().Type) {
		opTok := p.pop()
		right := p.parseTerm()
		if right == nil {
			return nil
		}
		left = &ast.BinaryExpression{Token: opTok, Left: left, Operator: opTok.Literal, Right: right}
	}
	return left
}

func isRelOp(t token.Type) bool {
	switch t {
	case token.LESS, token.LESS_EQ, token.GREATER, token.GREATER_EQ, token.EQ, token.NOT_EQ:
		return true
	default:
		return false
	}
}

// parseTerm realizes the `*`/`/` level over Factor.
func (p *Parser) parseTerm() ast.Expression {
	left := p.parseFactor()
	if left == nil {
		return nil
	}
	for p.peek().Type == token.ASTERISK || p.peek().Type == token.SLASH {
		opTok := p.pop()
		right := p.parseFactor()
		if right == nil {
			return nil
		}
		left = &ast.BinaryExpression{Token: opTok, Left: left, Operator: opTok.Literal, Right: right}
	}
	return left
}

// parseFactor parses a single Factor, with one-token lookahead on IDENT
// to distinguish a call (`IDENT (`) from a name (`IDENT` or `IDENT
// [index]`), and the leading unary-minus prefix.
func (p *Parser) parseFactor() ast.Expression {
	switch p.peek().Type {
	case token.MINUS:
		tok := p.pop()
		return p.parseNegatedOperand(tok)

	case token.LPAREN:
		tok := p.pop()
		inner := p.parseExpression()
		if inner == nil {
			return nil
		}
		if !p.expect(token.RPAREN) {
			return nil
		}
		return &ast.GroupedExpression{Token: tok, Inner: inner}

	case token.NUMBER:
		tok := p.pop()
		return &ast.NumberLiteral{Token: tok, Value: tok.Literal}

	case token.STRING:
		tok := p.pop()
		return &ast.StringLiteral{Token: tok, Value: tok.Literal}

	case token.TRUE:
		tok := p.pop()
		return &ast.BoolLiteral{Token: tok, Value: true}

	case token.FALSE:
		tok := p.pop()
		return &ast.BoolLiteral{Token: tok, Value: false}

	case token.IDENT:
		return p.parseIdentifierFactor()

	default:
		tok := p.peek()
		if tok.Type == token.EOF {
			p.failAtEOF(tok, newUnexpectedEOF(tok.Pos, "expression"))
		} else {
			p.fail(newUnexpectedToken(tok.Pos, "expression", tok))
		}
		return nil
	}
}

// parseNegatedOperand parses the operand of a unary minus: only a name
// or a number may carry the optional unary '-'.
func (p *Parser) parseNegatedOperand(minusTok token.Token) ast.Expression {
	switch p.peek().Type {
	case token.NUMBER:
		tok := p.pop()
		return &ast.NumberLiteral{Token: tok, Value: tok.Literal, Negative: true}
	case token.IDENT:
		name := p.parseIdentifierFactor()
		if ne, ok := name.(*ast.NameExpression); ok {
			ne.Negative = true
			return ne
		}
		return name
	default:
		p.fail(newUnexpectedToken(minusTok.Pos, "name or number after unary '-'", p.peek()))
		return nil
	}
}

// parseIdentifierFactor disambiguates `IDENT (` (call) from `IDENT` or
// `IDENT [index]` (name) with one token of lookahead: the token after
// the identifier is popped, inspected, and pushed back onto the cursor
// when it belongs to whatever follows the bare name.
func (p *Parser) parseIdentifierFactor() ast.Expression {
	nameTok := p.peek()
	name, ok := p.expectIdentifier()
	if !ok {
		return nil
	}
	ident := &ast.Identifier{Token: nameTok, Value: name}

	next := p.pop()
	switch next.Type {
	case token.LPAREN:
		var args []ast.Expression
		if p.peek().Type != token.RPAREN {
			args = p.parseArgList()
		}
		if !p.expect(token.RPAREN) {
			return nil
		}
		return &ast.CallExpression{Token: next, Procedure: ident, Args: args}

	case token.LBRACK:
		ne := &ast.NameExpression{Token: nameTok, Name: ident}
		ne.Index = p.parseExpression()
		if ne.Index == nil {
			return nil
		}
		if !p.expect(token.RBRACK) {
			return nil
		}
		return ne

	default:
		p.c.PushFront(next)
		return &ast.NameExpression{Token: nameTok, Name: ident}
	}
}

func (p *Parser) parseArgList() []ast.Expression {
	var args []ast.Expression
	for {
		a := p.parseExpression()
		if a == nil {
			return args
		}
		args = append(args, a)
		if !p.c.ConsumeAsBool(token.COMMA) {
			break
		}
	}
	return args
}
