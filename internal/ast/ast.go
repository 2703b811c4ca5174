// Package ast defines the untyped syntax tree the parser produces: a
// syntax-level mirror of the source with operator precedence and
// associativity baked into the node shapes, but no type information.
package ast

import (
	"bytes"
	"strings"

	"github.com/cwbudde/dws-front/internal/token"
)

// Node is the base interface every tree node implements.
type Node interface {
	TokenLiteral() string
	String() string
	Pos() token.Position
}

// Expression is any node that produces a value.
type Expression interface {
	Node
	expressionNode()
}

// Statement is any node that performs an action but produces no value.
type Statement interface {
	Node
	statementNode()
}

// Declaration is either a Variable or Procedure declaration at program or
// procedure-body scope.
type Declaration interface {
	Node
	declarationNode()
	IsGlobal() bool
}

// Program is the root node: a header identifier and a body of
// declarations followed by statements.
type Program struct {
	Token        token.Token // the "program" token
	Name         *Identifier
	Declarations []Declaration
	Statements   []Statement
}

func (p *Program) TokenLiteral() string { return p.Token.Literal }
func (p *Program) Pos() token.Position  { return p.Token.Pos }
func (p *Program) String() string {
	var out bytes.Buffer
	out.WriteString("program ")
	out.WriteString(p.Name.String())
	out.WriteString(" is\n")
	for _, d := range p.Declarations {
		out.WriteString(d.String())
		out.WriteString(";\n")
	}
	out.WriteString("begin\n")
	for _, s := range p.Statements {
		out.WriteString("  ")
		out.WriteString(s.String())
		out.WriteString(";\n")
	}
	out.WriteString("end program.")
	return out.String()
}

// Identifier is a bare name reference.
type Identifier struct {
	Token token.Token
	Value string
}

func (i *Identifier) expressionNode()      {}
func (i *Identifier) TokenLiteral() string { return i.Token.Literal }
func (i *Identifier) Pos() token.Position  { return i.Token.Pos }
func (i *Identifier) String() string       { return i.Value }

// TypeMark names a type atom in declaration syntax (Integer/Float/
// String/Bool); array-ness is expressed by VarDecl.ArrayBound, not here.
type TypeMark struct {
	Token token.Token
	Name  string // "integer" | "float" | "string" | "bool"
}

func (t *TypeMark) TokenLiteral() string { return t.Token.Literal }
func (t *TypeMark) Pos() token.Position  { return t.Token.Pos }
func (t *TypeMark) String() string       { return t.Name }

// VarDecl declares one variable, optionally as a fixed-length array.
type VarDecl struct {
	Token      token.Token // the "variable" token
	Global     bool
	Name       *Identifier
	Type       *TypeMark
	ArrayBound *NumberLiteral // nil if not an array
}

func (v *VarDecl) declarationNode()     {}
func (v *VarDecl) IsGlobal() bool       { return v.Global }
func (v *VarDecl) TokenLiteral() string { return v.Token.Literal }
func (v *VarDecl) Pos() token.Position  { return v.Token.Pos }
func (v *VarDecl) String() string {
	var out bytes.Buffer
	if v.Global {
		out.WriteString("global ")
	}
	out.WriteString("variable ")
	out.WriteString(v.Name.String())
	out.WriteString(": ")
	out.WriteString(v.Type.String())
	if v.ArrayBound != nil {
		out.WriteString("[")
		out.WriteString(v.ArrayBound.String())
		out.WriteString("]")
	}
	return out.String()
}

// Param is one entry in a procedure's parameter list (syntactically
// identical to a VarDecl without the global flag).
type Param struct {
	Name       *Identifier
	Type       *TypeMark
	ArrayBound *NumberLiteral // nil if not an array
}

// ProcDecl declares a procedure: its header (name, return type, params)
// and a body structurally identical to a program body.
type ProcDecl struct {
	Token        token.Token // the "procedure" token
	Global       bool
	Name         *Identifier
	ReturnType   *TypeMark
	Params       []*Param
	Declarations []Declaration
	Statements   []Statement
}

func (p *ProcDecl) declarationNode()     {}
func (p *ProcDecl) IsGlobal() bool       { return p.Global }
func (p *ProcDecl) TokenLiteral() string { return p.Token.Literal }
func (p *ProcDecl) Pos() token.Position  { return p.Token.Pos }
func (p *ProcDecl) String() string {
	var out bytes.Buffer
	if p.Global {
		out.WriteString("global ")
	}
	out.WriteString("procedure ")
	out.WriteString(p.Name.String())
	out.WriteString(": ")
	out.WriteString(p.ReturnType.String())
	out.WriteString("(")
	parts := make([]string, len(p.Params))
	for i, prm := range p.Params {
		parts[i] = prm.Name.String() + ": " + prm.Type.String()
		if prm.ArrayBound != nil {
			parts[i] += "[" + prm.ArrayBound.String() + "]"
		}
	}
	out.WriteString(strings.Join(parts, ", "))
	out.WriteString(")")
	return out.String()
}

// Destination is the target of an assignment: a name, optionally indexed.
type Destination struct {
	Token token.Token // the identifier token
	Name  *Identifier
	Index Expression // nil if not indexed
}

func (d *Destination) TokenLiteral() string { return d.Token.Literal }
func (d *Destination) Pos() token.Position  { return d.Token.Pos }
func (d *Destination) String() string {
	if d.Index != nil {
		return d.Name.String() + "[" + d.Index.String() + "]"
	}
	return d.Name.String()
}

// AssignStatement represents `Dest := Expr`.
type AssignStatement struct {
	Token token.Token // the ":=" token
	Dest  *Destination
	Value Expression
}

func (a *AssignStatement) statementNode()      {}
func (a *AssignStatement) TokenLiteral() string { return a.Token.Literal }
func (a *AssignStatement) Pos() token.Position  { return a.Token.Pos }
func (a *AssignStatement) String() string {
	return a.Dest.String() + " := " + a.Value.String()
}

// IfStatement represents `if (Expr) then {Stmt} [else {Stmt}] end if`.
type IfStatement struct {
	Token       token.Token // the "if" token
	Condition   Expression
	Consequence []Statement
	Alternative []Statement // nil if no else
}

func (i *IfStatement) statementNode()      {}
func (i *IfStatement) TokenLiteral() string { return i.Token.Literal }
func (i *IfStatement) Pos() token.Position  { return i.Token.Pos }
func (i *IfStatement) String() string {
	var out bytes.Buffer
	out.WriteString("if (")
	out.WriteString(i.Condition.String())
	out.WriteString(") then ")
	for _, s := range i.Consequence {
		out.WriteString(s.String())
		out.WriteString("; ")
	}
	if i.Alternative != nil {
		out.WriteString("else ")
		for _, s := range i.Alternative {
			out.WriteString(s.String())
			out.WriteString("; ")
		}
	}
	out.WriteString("end if")
	return out.String()
}

// ForStatement represents `for (Assign; Expr) {Stmt} end for`.
type ForStatement struct {
	Token     token.Token // the "for" token
	Init      *AssignStatement
	Condition Expression
	Body      []Statement
}

func (f *ForStatement) statementNode()      {}
func (f *ForStatement) TokenLiteral() string { return f.Token.Literal }
func (f *ForStatement) Pos() token.Position  { return f.Token.Pos }
func (f *ForStatement) String() string {
	var out bytes.Buffer
	out.WriteString("for (")
	out.WriteString(f.Init.String())
	out.WriteString("; ")
	out.WriteString(f.Condition.String())
	out.WriteString(") ")
	for _, s := range f.Body {
		out.WriteString(s.String())
		out.WriteString("; ")
	}
	out.WriteString("end for")
	return out.String()
}

// ReturnStatement represents `return Expr`.
type ReturnStatement struct {
	Token token.Token // the "return" token
	Value Expression
}

func (r *ReturnStatement) statementNode()      {}
func (r *ReturnStatement) TokenLiteral() string { return r.Token.Literal }
func (r *ReturnStatement) Pos() token.Position  { return r.Token.Pos }
func (r *ReturnStatement) String() string {
	return "return " + r.Value.String()
}

// BinaryExpression is a left-associative chain link: And|Or, ArithOp,
// Relation, or Term, depending on Operator.
type BinaryExpression struct {
	Token    token.Token
	Left     Expression
	Operator string
	Right    Expression
}

func (b *BinaryExpression) expressionNode()      {}
func (b *BinaryExpression) TokenLiteral() string { return b.Token.Literal }
func (b *BinaryExpression) Pos() token.Position  { return b.Token.Pos }
func (b *BinaryExpression) String() string {
	return "(" + b.Left.String() + " " + b.Operator + " " + b.Right.String() + ")"
}

// UnaryExpression is a prefixed Not. A unary minus on a name or number is
// carried by the Negative flag of NameExpression or NumberLiteral instead.
type UnaryExpression struct {
	Token    token.Token
	Operator string
	Right    Expression
}

func (u *UnaryExpression) expressionNode()      {}
func (u *UnaryExpression) TokenLiteral() string { return u.Token.Literal }
func (u *UnaryExpression) Pos() token.Position  { return u.Token.Pos }
func (u *UnaryExpression) String() string {
	return "(" + u.Operator + " " + u.Right.String() + ")"
}

// GroupedExpression is a parenthesized sub-expression.
type GroupedExpression struct {
	Token token.Token // the "(" token
	Inner Expression
}

func (g *GroupedExpression) expressionNode()      {}
func (g *GroupedExpression) TokenLiteral() string { return g.Token.Literal }
func (g *GroupedExpression) Pos() token.Position  { return g.Token.Pos }
func (g *GroupedExpression) String() string       { return "(" + g.Inner.String() + ")" }

// CallExpression is a procedure call: `name(args)`.
type CallExpression struct {
	Token     token.Token // the "(" token
	Procedure *Identifier
	Args      []Expression
}

func (c *CallExpression) expressionNode()      {}
func (c *CallExpression) TokenLiteral() string { return c.Token.Literal }
func (c *CallExpression) Pos() token.Position  { return c.Procedure.Pos() }
func (c *CallExpression) String() string {
	parts := make([]string, len(c.Args))
	for i, a := range c.Args {
		parts[i] = a.String()
	}
	return c.Procedure.String() + "(" + strings.Join(parts, ", ") + ")"
}

// NameExpression is a variable reference, optionally indexed, optionally
// negated.
type NameExpression struct {
	Token    token.Token
	Name     *Identifier
	Index    Expression // nil if not indexed
	Negative bool
}

func (n *NameExpression) expressionNode()      {}
func (n *NameExpression) TokenLiteral() string { return n.Token.Literal }
func (n *NameExpression) Pos() token.Position  { return n.Token.Pos }
func (n *NameExpression) String() string {
	s := n.Name.String()
	if n.Index != nil {
		s += "[" + n.Index.String() + "]"
	}
	if n.Negative {
		s = "-" + s
	}
	return s
}

// NumberLiteral is a numeric literal; whether it denotes Int or Float is
// determined by whether its payload contains a '.'.
type NumberLiteral struct {
	Token    token.Token
	Value    string // raw lexeme, underscores intact
	Negative bool
}

func (n *NumberLiteral) expressionNode()      {}
func (n *NumberLiteral) TokenLiteral() string { return n.Token.Literal }
func (n *NumberLiteral) Pos() token.Position  { return n.Token.Pos }
func (n *NumberLiteral) String() string {
	if n.Negative {
		return "-" + n.Value
	}
	return n.Value
}

// IsFloat reports whether the literal's payload contains a decimal point.
func (n *NumberLiteral) IsFloat() bool {
	return strings.Contains(n.Value, ".")
}

// StringLiteral is a string literal; Value is the payload without quotes.
type StringLiteral struct {
	Token token.Token
	Value string
}

func (s *StringLiteral) expressionNode()      {}
func (s *StringLiteral) TokenLiteral() string { return s.Token.Literal }
func (s *StringLiteral) Pos() token.Position  { return s.Token.Pos }
func (s *StringLiteral) String() string       { return "\"" + s.Value + "\"" }

// BoolLiteral is the `true` or `false` literal.
type BoolLiteral struct {
	Token token.Token
	Value bool
}

func (b *BoolLiteral) expressionNode()      {}
func (b *BoolLiteral) TokenLiteral() string { return b.Token.Literal }
func (b *BoolLiteral) Pos() token.Position  { return b.Token.Pos }
func (b *BoolLiteral) String() string {
	if b.Value {
		return "true"
	}
	return "false"
}
