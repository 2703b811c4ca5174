package scope

import (
	"testing"

	"github.com/cwbudde/dws-front/internal/types"
)

func TestBuiltinsSeeded(t *testing.T) {
	c := New()

	tests := []struct {
		name    string
		params  int
		returns types.Type
	}{
		{"getbool", 0, types.Bool},
		{"getinteger", 0, types.Int},
		{"getfloat", 0, types.Float},
		{"getstring", 0, types.String},
		{"putbool", 1, types.Bool},
		{"putinteger", 1, types.Bool},
		{"putfloat", 1, types.Bool},
		{"putstring", 1, types.Bool},
		{"sqrt", 1, types.Float},
	}

	for _, tt := range tests {
		sig, err := c.GetProcedureSignature(tt.name)
		if err != nil {
			t.Errorf("builtin %q not registered: %v", tt.name, err)
			continue
		}
		if len(sig.Parameters) != tt.params {
			t.Errorf("%q: %d parameter(s), want %d", tt.name, len(sig.Parameters), tt.params)
		}
		if !sig.ReturnType.Equals(tt.returns) {
			t.Errorf("%q: returns %s, want %s", tt.name, sig.ReturnType, tt.returns)
		}
	}
}

func TestSetTypeRedeclared(t *testing.T) {
	c := New()
	if err := c.SetType(false, "x", types.Int); err != nil {
		t.Fatalf("first SetType: %v", err)
	}
	err := c.SetType(false, "x", types.Float)
	if err == nil {
		t.Fatal("redeclaration should fail")
	}
	if se, ok := err.(*Error); !ok || se.Kind != "Redeclared" {
		t.Errorf("expected Redeclared, got %v", err)
	}

	// Same name in the other tier is a different key space.
	if err := c.SetType(true, "x", types.Float); err != nil {
		t.Errorf("global x should not collide with local x: %v", err)
	}
}

func TestIdentifiersCaseInsensitive(t *testing.T) {
	c := New()
	if err := c.SetType(false, "Count", types.Int); err != nil {
		t.Fatalf("SetType: %v", err)
	}
	if _, err := c.GetVariableType("COUNT"); err != nil {
		t.Errorf("lookup should be case-insensitive: %v", err)
	}
	if err := c.SetType(false, "count", types.Float); err == nil {
		t.Error("redeclaration under different case should fail")
	}
	if _, err := c.GetProcedureSignature("PutInteger"); err != nil {
		t.Errorf("builtin lookup should be case-insensitive: %v", err)
	}
}

func TestLookupLocalFirst(t *testing.T) {
	c := New()
	if err := c.SetType(true, "x", types.Float); err != nil {
		t.Fatal(err)
	}
	if err := c.SetType(false, "x", types.Int); err != nil {
		t.Fatal(err)
	}

	got, global, err := c.ResolveVariable("x")
	if err != nil {
		t.Fatal(err)
	}
	if global {
		t.Error("local x should shadow global x")
	}
	if !got.Equals(types.Int) {
		t.Errorf("got %s, want integer", got)
	}
}

func TestLookupFallsBackToGlobal(t *testing.T) {
	c := New()
	if err := c.SetType(true, "g", types.String); err != nil {
		t.Fatal(err)
	}

	got, global, err := c.ResolveVariable("g")
	if err != nil {
		t.Fatal(err)
	}
	if !global {
		t.Error("g resolved locally, want global")
	}
	if !got.Equals(types.String) {
		t.Errorf("got %s, want string", got)
	}

	if _, err := c.GetVariableType("missing"); err == nil {
		t.Error("undefined name should fail")
	}
}

func TestStartEndStack(t *testing.T) {
	c := New()
	if err := c.SetType(false, "outer", types.Int); err != nil {
		t.Fatal(err)
	}

	c.StartStack(types.Float)

	// The saved frame is not visible while the new scope is current.
	if _, err := c.GetVariableType("outer"); err == nil {
		t.Error("outer should not be visible inside the pushed scope")
	}
	if !c.Local().ReturnType.Equals(types.Float) {
		t.Errorf("pushed scope return type = %s, want float", c.Local().ReturnType)
	}
	if err := c.SetType(false, "inner", types.Bool); err != nil {
		t.Fatal(err)
	}

	finished, err := c.EndStack()
	if err != nil {
		t.Fatalf("EndStack: %v", err)
	}
	if _, ok := finished.Variables["inner"]; !ok {
		t.Error("EndStack should return the finished scope with its declarations")
	}
	if _, err := c.GetVariableType("outer"); err != nil {
		t.Errorf("outer should be visible again after EndStack: %v", err)
	}
	if _, err := c.GetVariableType("inner"); err == nil {
		t.Error("inner should be gone after EndStack")
	}
}

func TestNestedStacks(t *testing.T) {
	c := New()
	c.StartStack(types.Int)
	c.StartStack(types.Bool)
	if !c.Local().ReturnType.Equals(types.Bool) {
		t.Errorf("innermost return type = %s, want bool", c.Local().ReturnType)
	}
	if _, err := c.EndStack(); err != nil {
		t.Fatal(err)
	}
	if !c.Local().ReturnType.Equals(types.Int) {
		t.Errorf("after one pop, return type = %s, want integer", c.Local().ReturnType)
	}
	if _, err := c.EndStack(); err != nil {
		t.Fatal(err)
	}
}

func TestEndStackOutOfScope(t *testing.T) {
	c := New()
	_, err := c.EndStack()
	if err == nil {
		t.Fatal("EndStack on empty stack should fail")
	}
	if se, ok := err.(*Error); !ok || se.Kind != "OutOfScope" {
		t.Errorf("expected OutOfScope, got %v", err)
	}
}
