// Package semantic implements the type checker and the typed
// ("analyzed") tree: declarations are resolved against the
// two-level scope model, every implicit coercion becomes an explicit
// Cast node, and every binary arithmetic/bitwise operator is resolved to
// its scalar/array-broadcast variant so nothing downstream re-derives
// typing decisions.
package semantic

import (
	"strconv"
	"strings"

	"github.com/cwbudde/dws-front/internal/ast"
	"github.com/cwbudde/dws-front/internal/scope"
	"github.com/cwbudde/dws-front/internal/types"
)

// Analyzer walks an untyped Program and produces the typed tree,
// collecting every diagnostic rather than stopping at the first one: a
// single compile should report as many independent problems as safely
// determinable.
type Analyzer struct {
	ctx  *scope.Context
	root *Program
	errs []*Error
}

// New creates an Analyzer with a fresh scope Context.
func New() *Analyzer {
	return &Analyzer{ctx: scope.New()}
}

// Errors returns every diagnostic collected during Analyze.
func (a *Analyzer) Errors() []*Error { return a.errs }

func (a *Analyzer) fail(err *Error) { a.errs = append(a.errs, err) }

// Analyze type-checks prog and returns the typed tree. The returned
// Program is usable even when errors were collected, for tooling that
// wants a best-effort tree; callers that require a clean compile should
// check Errors() first. Declarations appear in the output in source
// order.
//
// The program's top level is the global scope: every top-level
// declaration lands in the global tier whether or not it carries the
// `global` keyword, so procedures can refer to top-level names and to
// each other.
func (a *Analyzer) Analyze(prog *ast.Program) *Program {
	out := &Program{Name: prog.Name.Value}
	a.root = out

	for _, d := range prog.Declarations {
		switch decl := d.(type) {
		case *ast.VarDecl:
			if vd := a.analyzeVarDecl(decl, true); vd != nil {
				out.Globals = append(out.Globals, vd)
			}
		case *ast.ProcDecl:
			if pd := a.analyzeProcDecl(decl, true); pd != nil {
				out.Procedures = append(out.Procedures, pd)
			}
		}
	}

	out.Body = a.analyzeStatements(prog.Statements)

	return out
}

// declaredType resolves a TypeMark plus an optional array bound to the
// declared Type. The bound must parse as a positive integer.
func (a *Analyzer) declaredType(tm *ast.TypeMark, bound *ast.NumberLiteral) (types.Type, bool) {
	base := typeMarkToType(tm)
	if bound == nil {
		return base, true
	}
	n, err := strconv.Atoi(strings.ReplaceAll(bound.Value, "_", ""))
	if err != nil || n <= 0 {
		a.fail(errInvalidArrayBound(bound.Pos(), bound.Value))
		return types.Type{}, false
	}
	return types.NewArray(base, n), true
}

// analyzeVarDecl records one variable declaration. atGlobal reports
// whether the surrounding scope is the program top level; either it or
// the declaration's own `global` keyword selects the global tier.
func (a *Analyzer) analyzeVarDecl(decl *ast.VarDecl, atGlobal bool) *VarDecl {
	declType, ok := a.declaredType(decl.Type, decl.ArrayBound)
	if !ok {
		return nil
	}

	isGlobal := atGlobal || decl.Global
	if err := a.ctx.SetType(isGlobal, decl.Name.Value, declType); err != nil {
		a.fail(errRedeclared(decl.Name.Pos(), decl.Name.Value))
		return nil
	}

	return &VarDecl{Name: decl.Name.Value, Global: isGlobal, Type: declType}
}

func typeMarkToType(tm *ast.TypeMark) types.Type {
	switch tm.Name {
	case "integer":
		return types.Int
	case "float":
		return types.Float
	case "string":
		return types.String
	case "bool":
		return types.Bool
	default:
		return types.Void
	}
}

// analyzeProcDecl records a procedure's signature and type-checks its
// body in a fresh local frame. atGlobal selects the global tier the same
// way it does for variables.
func (a *Analyzer) analyzeProcDecl(decl *ast.ProcDecl, atGlobal bool) *ProcDecl {
	retType := typeMarkToType(decl.ReturnType)

	var params []types.NamedValue
	for _, p := range decl.Params {
		pt, ok := a.declaredType(p.Type, p.ArrayBound)
		if !ok {
			continue
		}
		params = append(params, types.NamedValue{Name: p.Name.Value, Type: pt})
	}
	sig := types.ProcedureSignature{Parameters: params, ReturnType: retType}

	// Registered in the scope the procedure is declared into, before its
	// body is analyzed, so a procedure in the global tier can call itself
	// recursively. A nested procedure registered in its enclosing body's
	// local scope cannot: that scope is a saved frame while its own body
	// is analyzed.
	isGlobal := atGlobal || decl.Global
	if err := a.ctx.SetProcedure(isGlobal, decl.Name.Value, sig); err != nil {
		a.fail(errRedeclared(decl.Name.Pos(), decl.Name.Value))
	}

	a.ctx.StartStack(retType)
	for _, p := range params {
		_ = a.ctx.SetType(false, p.Name, p.Type)
	}

	out := &ProcDecl{
		Name:       decl.Name.Value,
		Global:     isGlobal,
		Params:     params,
		ReturnType: retType,
	}

	// Inside a body the surrounding scope is local: only a nested
	// declaration's own `global` keyword lets it escape into the
	// program-wide scope and tree; everything else is local to this
	// body. Nested procedures are collected on the enclosing procedure,
	// each an independent unit owning its own finalized scope.
	for _, d := range decl.Declarations {
		switch nd := d.(type) {
		case *ast.VarDecl:
			vd := a.analyzeVarDecl(nd, false)
			if vd == nil {
				continue
			}
			if vd.Global {
				a.root.Globals = append(a.root.Globals, vd)
			} else {
				out.Locals = append(out.Locals, vd)
			}
		case *ast.ProcDecl:
			if pd := a.analyzeProcDecl(nd, false); pd != nil {
				out.Procedures = append(out.Procedures, pd)
			}
		}
	}

	out.Body = a.analyzeStatements(decl.Statements)

	if _, err := a.ctx.EndStack(); err != nil {
		a.fail(&Error{Kind: ErrUndefinedRef, Pos: decl.Pos(), Message: "internal: scope stack underflow"})
	}

	return out
}

func (a *Analyzer) analyzeStatements(stmts []ast.Statement) []Statement {
	var out []Statement
	for _, s := range stmts {
		if r := a.analyzeStatement(s); r != nil {
			out = append(out, r)
		}
	}
	return out
}

func (a *Analyzer) analyzeStatement(s ast.Statement) Statement {
	switch st := s.(type) {
	case *ast.AssignStatement:
		return a.analyzeAssign(st)
	case *ast.IfStatement:
		return a.analyzeIf(st)
	case *ast.ForStatement:
		return a.analyzeFor(st)
	case *ast.ReturnStatement:
		return a.analyzeReturn(st)
	default:
		return nil
	}
}

func (a *Analyzer) analyzeAssign(st *ast.AssignStatement) *AssignStmt {
	dest := a.analyzeDestination(st.Dest)
	if dest == nil {
		return nil
	}
	value := a.analyzeExpr(st.Value)
	if value == nil {
		return nil
	}
	cast, ok := a.coerceTo(value, dest.T)
	if !ok {
		a.fail(errNotAssignable(st.Value.Pos(), dest.T, value.Type()))
		return nil
	}
	return &AssignStmt{Dest: dest, Value: cast}
}

func (a *Analyzer) analyzeDestination(d *ast.Destination) *Destination {
	t, global, err := a.ctx.ResolveVariable(d.Name.Value)
	if err != nil {
		a.fail(errUndefinedRef(d.Name.Pos(), d.Name.Value))
		return nil
	}

	out := &Destination{Name: d.Name.Value, Global: global, T: t}
	if d.Index != nil {
		if t.Kind != types.KindArray {
			a.fail(errNotAnArray(d.Name.Pos(), d.Name.Value, t))
			return nil
		}
		idx := a.analyzeExpr(d.Index)
		if idx == nil {
			return nil
		}
		idxCast, ok := a.coerceTo(idx, types.Int)
		if !ok {
			a.fail(errTypeMismatch(d.Index.Pos(), "array index", types.Int, idx.Type()))
			return nil
		}
		out.Index = idxCast
		out.T = *t.Element
	}
	return out
}

// analyzeCondition types an if/for condition and coerces it to Bool:
// an Int condition gets an explicit Cast, anything else non-Bool is a
// diagnostic.
func (a *Analyzer) analyzeCondition(e ast.Expression) Expr {
	cond := a.analyzeExpr(e)
	if cond == nil {
		return nil
	}
	if cond.Type().Kind == types.KindInt {
		return &Cast{Child: cond, Target: types.Bool}
	}
	if !cond.Type().Equals(types.Bool) {
		a.fail(errNonBooleanCondition(e.Pos(), cond.Type()))
	}
	return cond
}

func (a *Analyzer) analyzeIf(st *ast.IfStatement) *IfStmt {
	cond := a.analyzeCondition(st.Condition)
	if cond == nil {
		return nil
	}
	return &IfStmt{
		Cond: cond,
		Then: a.analyzeStatements(st.Consequence),
		Else: a.analyzeStatements(st.Alternative),
	}
}

func (a *Analyzer) analyzeFor(st *ast.ForStatement) *ForStmt {
	init := a.analyzeAssign(st.Init)
	cond := a.analyzeCondition(st.Condition)
	if cond == nil {
		return nil
	}
	return &ForStmt{
		Init: init,
		Cond: cond,
		Body: a.analyzeStatements(st.Body),
	}
}

func (a *Analyzer) analyzeReturn(st *ast.ReturnStatement) *ReturnStmt {
	value := a.analyzeExpr(st.Value)
	if value == nil {
		return nil
	}
	want := a.ctx.Local().ReturnType
	if want.Kind == types.KindVoid {
		a.fail(errUnexpectedReturn(st.Pos()))
		return nil
	}
	cast, ok := a.coerceTo(value, want)
	if !ok {
		a.fail(errReturnTypeMismatch(st.Value.Pos(), want, value.Type()))
		return nil
	}
	return &ReturnStmt{Value: cast}
}

// coerceTo wraps expr in a Cast if needed to reach target, per the
// assignment/return coercion table. ok is false if the pairing is not
// assignable at all.
func (a *Analyzer) coerceTo(expr Expr, target types.Type) (Expr, bool) {
	needsCast, ok := types.Coercible(expr.Type(), target)
	if !ok {
		return nil, false
	}
	if !needsCast {
		return expr, true
	}
	return &Cast{Child: expr, Target: target}, true
}

func (a *Analyzer) analyzeExpr(e ast.Expression) Expr {
	switch expr := e.(type) {
	case *ast.NumberLiteral:
		return a.analyzeNumberLiteral(expr)
	case *ast.StringLiteral:
		return &StringLiteral{Value: expr.Value}
	case *ast.BoolLiteral:
		return &BoolLiteral{Value: expr.Value}
	case *ast.GroupedExpression:
		return a.analyzeExpr(expr.Inner)
	case *ast.NameExpression:
		return a.analyzeName(expr)
	case *ast.CallExpression:
		return a.analyzeCall(expr)
	case *ast.UnaryExpression:
		return a.analyzeUnary(expr)
	case *ast.BinaryExpression:
		return a.analyzeBinary(expr)
	default:
		return nil
	}
}

// analyzeNumberLiteral classifies a Number payload as Float iff it
// contains a '.', else Int, and parses it with the platform's semantics
// (underscore separators removed first).
func (a *Analyzer) analyzeNumberLiteral(lit *ast.NumberLiteral) Expr {
	clean := strings.ReplaceAll(lit.Value, "_", "")
	if lit.IsFloat() {
		f, err := strconv.ParseFloat(clean, 64)
		if err != nil {
			a.fail(errInvalidFloatLiteral(lit.Pos(), lit.Value))
			return nil
		}
		if lit.Negative {
			f = -f
		}
		return &FloatLiteral{Value: f}
	}
	n, err := strconv.ParseInt(clean, 10, 64)
	if err != nil {
		a.fail(errInvalidIntLiteral(lit.Pos(), lit.Value))
		return nil
	}
	if lit.Negative {
		n = -n
	}
	return &IntLiteral{Value: n}
}

func (a *Analyzer) analyzeName(n *ast.NameExpression) Expr {
	t, global, err := a.ctx.ResolveVariable(n.Name.Value)
	if err != nil {
		a.fail(errUndefinedRef(n.Name.Pos(), n.Name.Value))
		return nil
	}

	ref := VarRef{Name: n.Name.Value, Global: global, T: t}
	var result Expr = &ref

	if n.Index != nil {
		if t.Kind != types.KindArray {
			a.fail(errNotAnArray(n.Name.Pos(), n.Name.Value, t))
			return nil
		}
		idx := a.analyzeExpr(n.Index)
		if idx == nil {
			return nil
		}
		idxCast, ok := a.coerceTo(idx, types.Int)
		if !ok {
			a.fail(errTypeMismatch(n.Index.Pos(), "array index", types.Int, idx.Type()))
			return nil
		}
		result = &IndexRef{Base: ref, Index: idxCast, T: *t.Element}
	}

	if n.Negative {
		rt := result.Type()
		if rt.Kind != types.KindInt && rt.Kind != types.KindFloat {
			a.fail(errTypeMismatch(n.Pos(), "unary '-'", types.Int, rt))
			return result
		}
		return &Negate{Operand: result, T: rt}
	}
	return result
}

func (a *Analyzer) analyzeCall(c *ast.CallExpression) Expr {
	sig, err := a.ctx.GetProcedureSignature(c.Procedure.Value)
	if err != nil {
		a.fail(errUndefinedRef(c.Procedure.Pos(), c.Procedure.Value))
		return nil
	}
	if len(c.Args) != len(sig.Parameters) {
		a.fail(errArityMismatch(c.Pos(), c.Procedure.Value, len(sig.Parameters), len(c.Args)))
		return nil
	}

	args := make([]Expr, len(c.Args))
	for i, argExpr := range c.Args {
		arg := a.analyzeExpr(argExpr)
		if arg == nil {
			return nil
		}
		cast, ok := a.coerceTo(arg, sig.Parameters[i].Type)
		if !ok {
			a.fail(errTypeMismatch(argExpr.Pos(), "argument "+strconv.Itoa(i+1), sig.Parameters[i].Type, arg.Type()))
			return nil
		}
		args[i] = cast
	}

	return &Call{Name: c.Procedure.Value, Args: args, T: sig.ReturnType}
}

func (a *Analyzer) analyzeUnary(u *ast.UnaryExpression) Expr {
	right := a.analyzeExpr(u.Right)
	if right == nil {
		return nil
	}
	if u.Operator == "not" {
		switch right.Type().Kind {
		case types.KindInt, types.KindBool:
			return &Not{Operand: right, T: right.Type()}
		default:
			a.fail(errTypeMismatch(u.Pos(), "operand of 'not'", types.Int, right.Type()))
			return nil
		}
	}
	return nil
}

func (a *Analyzer) analyzeBinary(b *ast.BinaryExpression) Expr {
	left := a.analyzeExpr(b.Left)
	right := a.analyzeExpr(b.Right)
	if left == nil || right == nil {
		return nil
	}

	switch b.Operator {
	case "+", "-", "*", "/":
		return a.analyzeArith(b, left, right)
	case "&", "|":
		return a.analyzeBitwise(b, left, right)
	case "<", "<=", ">", ">=", "==", "!=":
		return a.analyzeComparison(b, left, right)
	default:
		return nil
	}
}

func arithOpFor(operator string, kind types.CoercionKind) Op {
	table := map[string][4]Op{
		"+": {OpPlus, OpArrayScalarPlus, OpScalarArrayPlus, OpArrayPlus},
		"-": {OpMinus, OpArrayScalarMinus, OpScalarArrayMinus, OpArrayMinus},
		"*": {OpMul, OpArrayScalarMul, OpScalarArrayMul, OpArrayMul},
		"/": {OpDiv, OpArrayScalarDiv, OpScalarArrayDiv, OpArrayDiv},
	}
	variants := table[operator]
	switch kind {
	case types.CoerceArrayScalar:
		return variants[1]
	case types.CoerceScalarArray:
		return variants[2]
	case types.CoerceArrayArray:
		return variants[3]
	default:
		return variants[0]
	}
}

func (a *Analyzer) analyzeArith(b *ast.BinaryExpression, left, right Expr) Expr {
	result, kind, ok := types.ArithResult(left.Type(), right.Type())
	if !ok {
		a.fail(errOperatorMismatch(b.Pos(), b.Operator, left.Type(), right.Type()))
		return nil
	}

	left, right = a.promoteArithOperands(left, right, kind, result)

	return &BinaryExpr{Op: arithOpFor(b.Operator, kind), Left: left, Right: right, T: result}
}

// promoteArithOperands inserts the Cast nodes ArithResult's scalar/array
// broadcast implies: scalar-scalar Int/Float promotion, or an
// array-scalar/scalar-array scalar operand cast to the array's element
// type when they differ.
func (a *Analyzer) promoteArithOperands(left, right Expr, kind types.CoercionKind, result types.Type) (Expr, Expr) {
	switch kind {
	case types.CoerceScalarScalar:
		if !left.Type().Equals(result) {
			left = &Cast{Child: left, Target: result}
		}
		if !right.Type().Equals(result) {
			right = &Cast{Child: right, Target: result}
		}
	case types.CoerceArrayScalar:
		elem := *result.Element
		if !right.Type().Equals(elem) {
			if needsCast, ok := types.Coercible(right.Type(), elem); ok && needsCast {
				right = &Cast{Child: right, Target: elem}
			}
		}
	case types.CoerceScalarArray:
		elem := *result.Element
		if !left.Type().Equals(elem) {
			if needsCast, ok := types.Coercible(left.Type(), elem); ok && needsCast {
				left = &Cast{Child: left, Target: elem}
			}
		}
	}
	return left, right
}

// analyzeBitwise types the `& |` operators: both operands
// Int selects the bitwise variant, both Bool selects the logical
// variant, anything else (including arrays, Float, or String, and any
// Int/Bool mix) is a mismatch. Unlike the arithmetic operators, there is
// no array broadcast and no Int/Float promotion here.
func (a *Analyzer) analyzeBitwise(b *ast.BinaryExpression, left, right Expr) Expr {
	lt, rt := left.Type(), right.Type()

	var op Op
	var result types.Type
	switch {
	case lt.Kind == types.KindInt && rt.Kind == types.KindInt:
		result = types.Int
		if b.Operator == "&" {
			op = OpBitAnd
		} else {
			op = OpBitOr
		}
	case lt.Kind == types.KindBool && rt.Kind == types.KindBool:
		result = types.Bool
		if b.Operator == "&" {
			op = OpLogicalAnd
		} else {
			op = OpLogicalOr
		}
	default:
		a.fail(errOperatorMismatch(b.Pos(), b.Operator, lt, rt))
		return nil
	}

	return &BinaryExpr{Op: op, Left: left, Right: right, T: result}
}

// analyzeComparison types the comparison operators: Bool operands
// are first cast to Int; String is then only legal for == and != (and
// only String-with-String); remaining Int/Float mismatches promote to
// Float. The result is always Bool.
func (a *Analyzer) analyzeComparison(b *ast.BinaryExpression, left, right Expr) Expr {
	if left.Type().Kind == types.KindBool {
		left = &Cast{Child: left, Target: types.Int}
	}
	if right.Type().Kind == types.KindBool {
		right = &Cast{Child: right, Target: types.Int}
	}

	lt, rt := left.Type(), right.Type()
	isEquality := b.Operator == "==" || b.Operator == "!="

	switch {
	case lt.Kind == types.KindString && rt.Kind == types.KindString:
		if !isEquality {
			a.fail(errOperatorMismatch(b.Pos(), b.Operator, lt, rt))
			return nil
		}
	case lt.Kind == types.KindString || rt.Kind == types.KindString:
		a.fail(errOperatorMismatch(b.Pos(), b.Operator, lt, rt))
		return nil
	default:
		if !lt.Equals(rt) {
			numeric := (lt.Kind == types.KindInt || lt.Kind == types.KindFloat) &&
				(rt.Kind == types.KindInt || rt.Kind == types.KindFloat)
			if !numeric {
				a.fail(errOperatorMismatch(b.Pos(), b.Operator, lt, rt))
				return nil
			}
			if lt.Kind == types.KindInt {
				left = &Cast{Child: left, Target: types.Float}
			}
			if rt.Kind == types.KindInt {
				right = &Cast{Child: right, Target: types.Float}
			}
		}
	}

	var op Op
	switch b.Operator {
	case "<":
		op = OpLt
	case "<=":
		op = OpLe
	case ">":
		op = OpGt
	case ">=":
		op = OpGe
	case "==":
		op = OpEq
	case "!=":
		op = OpNe
	}

	return &BinaryExpr{Op: op, Left: left, Right: right, T: types.Bool}
}
