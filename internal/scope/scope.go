// Package scope implements the two-level (global + current local) scope
// model: a Context owns exactly one global scope,
// exactly one current local scope, and a LIFO stack of saved local
// frames for nested procedures. Only the current local scope and the
// global scope are ever consulted during name resolution; saved frames
// are not visible until popped back into place.
package scope

import (
	"fmt"

	"golang.org/x/text/cases"

	"github.com/cwbudde/dws-front/internal/types"
)

// foldKey normalizes an identifier for map keying: identifier lookup is
// case-insensitive, while tree nodes keep the source spelling.
var foldKey = cases.Fold()

// Error reports a scope-management failure.
type Error struct {
	Kind string // "Redeclared" | "UndefinedRef" | "OutOfScope"
	Name string
}

func (e *Error) Error() string {
	switch e.Kind {
	case "Redeclared":
		return fmt.Sprintf("%q is already declared in this scope", e.Name)
	case "UndefinedRef":
		return fmt.Sprintf("undefined reference to %q", e.Name)
	case "OutOfScope":
		return "no enclosing local scope to return to"
	default:
		return "scope error"
	}
}

// ScopeContext holds one scope's declarations: variables, callables, and
// (for local scopes only) the return type of the enclosing procedure.
type ScopeContext struct {
	Variables  map[string]types.Type
	Procedures map[string]types.ProcedureSignature
	ReturnType types.Type
}

func newScopeContext(returnType types.Type) *ScopeContext {
	return &ScopeContext{
		Variables:  make(map[string]types.Type),
		Procedures: make(map[string]types.ProcedureSignature),
		ReturnType: returnType,
	}
}

// newGlobalScope builds the initial global scope, pre-populated with the
// built-in I/O and math procedures.
func newGlobalScope() *ScopeContext {
	sc := newScopeContext(types.Void)
	sc.Procedures["getbool"] = types.ProcedureSignature{ReturnType: types.Bool}
	sc.Procedures["getinteger"] = types.ProcedureSignature{ReturnType: types.Int}
	sc.Procedures["getfloat"] = types.ProcedureSignature{ReturnType: types.Float}
	sc.Procedures["getstring"] = types.ProcedureSignature{ReturnType: types.String}
	sc.Procedures["putbool"] = types.ProcedureSignature{
		Parameters: []types.NamedValue{{Name: "value", Type: types.Bool}},
		ReturnType: types.Bool,
	}
	sc.Procedures["putinteger"] = types.ProcedureSignature{
		Parameters: []types.NamedValue{{Name: "value", Type: types.Int}},
		ReturnType: types.Bool,
	}
	sc.Procedures["putfloat"] = types.ProcedureSignature{
		Parameters: []types.NamedValue{{Name: "value", Type: types.Float}},
		ReturnType: types.Bool,
	}
	sc.Procedures["putstring"] = types.ProcedureSignature{
		Parameters: []types.NamedValue{{Name: "value", Type: types.String}},
		ReturnType: types.Bool,
	}
	sc.Procedures["sqrt"] = types.ProcedureSignature{
		Parameters: []types.NamedValue{{Name: "value", Type: types.Int}},
		ReturnType: types.Float,
	}
	return sc
}

// Context owns the global scope, the current local scope, and the saved
// local-scope stack for nested procedures.
type Context struct {
	global     *ScopeContext
	local      *ScopeContext
	savedLocal []*ScopeContext
}

// New creates a Context with a fresh, built-in-seeded global scope and
// an empty (Void-returning) current local scope, matching the
// top-level program's own "local" block before any procedure is entered.
func New() *Context {
	return &Context{
		global: newGlobalScope(),
		local:  newScopeContext(types.Void),
	}
}

// Global returns the global ScopeContext (read-only use expected; the
// only mutators are SetType/SetProcedure below).
func (c *Context) Global() *ScopeContext { return c.global }

// Local returns the current local ScopeContext.
func (c *Context) Local() *ScopeContext { return c.local }

func (c *Context) targetScope(isGlobal bool) *ScopeContext {
	if isGlobal {
		return c.global
	}
	return c.local
}

// SetType inserts identifier -> typ into the selected scope. Fails with
// Redeclared on a key collision within that scope.
func (c *Context) SetType(isGlobal bool, identifier string, typ types.Type) error {
	s := c.targetScope(isGlobal)
	key := foldKey.String(identifier)
	if _, exists := s.Variables[key]; exists {
		return &Error{Kind: "Redeclared", Name: identifier}
	}
	s.Variables[key] = typ
	return nil
}

// SetProcedure inserts identifier -> signature into the selected scope.
// Fails with Redeclared on a key collision within that scope.
func (c *Context) SetProcedure(isGlobal bool, identifier string, sig types.ProcedureSignature) error {
	s := c.targetScope(isGlobal)
	key := foldKey.String(identifier)
	if _, exists := s.Procedures[key]; exists {
		return &Error{Kind: "Redeclared", Name: identifier}
	}
	s.Procedures[key] = sig
	return nil
}

// GetVariableType looks up identifier, local scope first, falling back
// to global. Fails with UndefinedRef if absent in both.
func (c *Context) GetVariableType(identifier string) (types.Type, error) {
	t, _, err := c.ResolveVariable(identifier)
	return t, err
}

// ResolveVariable is GetVariableType plus which tier the name resolved
// in: global reports true only for names found in the global scope after
// the local scope missed.
func (c *Context) ResolveVariable(identifier string) (t types.Type, global bool, err error) {
	key := foldKey.String(identifier)
	if t, ok := c.local.Variables[key]; ok {
		return t, false, nil
	}
	if t, ok := c.global.Variables[key]; ok {
		return t, true, nil
	}
	return types.Type{}, false, &Error{Kind: "UndefinedRef", Name: identifier}
}

// GetProcedureSignature looks up identifier with the same lookup order
// as GetVariableType.
func (c *Context) GetProcedureSignature(identifier string) (types.ProcedureSignature, error) {
	key := foldKey.String(identifier)
	if s, ok := c.local.Procedures[key]; ok {
		return s, nil
	}
	if s, ok := c.global.Procedures[key]; ok {
		return s, nil
	}
	return types.ProcedureSignature{}, &Error{Kind: "UndefinedRef", Name: identifier}
}

// StartStack pushes the current local scope onto the saved-frame stack
// and installs a fresh, empty local scope with the given return type —
// entered when analysis descends into a procedure body.
func (c *Context) StartStack(returnType types.Type) {
	c.savedLocal = append(c.savedLocal, c.local)
	c.local = newScopeContext(returnType)
}

// EndStack pops the saved local scope back into place, returning the
// scope that was just replaced (the procedure's own finalized
// declaration set, captured for the analyzed tree). Fails with
// OutOfScope if the stack is empty.
func (c *Context) EndStack() (*ScopeContext, error) {
	finished := c.local
	n := len(c.savedLocal)
	if n == 0 {
		return nil, &Error{Kind: "OutOfScope"}
	}
	c.local = c.savedLocal[n-1]
	c.savedLocal = c.savedLocal[:n-1]
	return finished, nil
}
