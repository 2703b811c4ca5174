package cursor

import (
	"testing"

	"github.com/cwbudde/dws-front/internal/token"
)

func toks(types ...token.Type) []token.Token {
	out := make([]token.Token, len(types))
	for i, t := range types {
		out[i] = token.Token{Type: t}
	}
	return out
}

func TestPeekPop(t *testing.T) {
	c := New(toks(token.PROGRAM, token.IDENT, token.EOF))

	if got := c.PeekFront().Type; got != token.PROGRAM {
		t.Fatalf("PeekFront = %s, want PROGRAM", got)
	}
	// Peek does not consume.
	if got := c.PeekFront().Type; got != token.PROGRAM {
		t.Fatalf("second PeekFront = %s, want PROGRAM", got)
	}
	if got := c.PopFront().Type; got != token.PROGRAM {
		t.Fatalf("PopFront = %s, want PROGRAM", got)
	}
	if got := c.PeekFront().Type; got != token.IDENT {
		t.Fatalf("PeekFront after pop = %s, want IDENT", got)
	}
}

func TestPopPastEnd(t *testing.T) {
	c := New(toks(token.EOF))
	c.PopFront()
	// Past the end, the cursor degrades to synthetic EOF tokens.
	if got := c.PopFront().Type; got != token.EOF {
		t.Fatalf("PopFront past end = %s, want EOF", got)
	}
	if c.Remaining() != 0 {
		t.Errorf("Remaining = %d, want 0", c.Remaining())
	}
}

func TestPushFront(t *testing.T) {
	c := New(toks(token.IDENT, token.LPAREN, token.EOF))

	first := c.PopFront()
	second := c.PopFront()
	c.PushFront(second)
	c.PushFront(first)

	if got := c.PopFront().Type; got != token.IDENT {
		t.Fatalf("after pushback, PopFront = %s, want IDENT", got)
	}
	if got := c.PopFront().Type; got != token.LPAREN {
		t.Fatalf("after pushback, second PopFront = %s, want LPAREN", got)
	}
}

func TestPushFrontOnFreshCursor(t *testing.T) {
	c := New(toks(token.EOF))
	c.PushFront(token.Token{Type: token.SEMICOLON})
	if got := c.PopFront().Type; got != token.SEMICOLON {
		t.Fatalf("PopFront = %s, want SEMICOLON", got)
	}
	if got := c.PopFront().Type; got != token.EOF {
		t.Fatalf("PopFront = %s, want EOF", got)
	}
}

func TestRemaining(t *testing.T) {
	c := New(toks(token.IDENT, token.SEMICOLON, token.EOF))
	if c.Remaining() != 3 {
		t.Fatalf("Remaining = %d, want 3", c.Remaining())
	}
	c.PopFront()
	if c.Remaining() != 2 {
		t.Fatalf("Remaining = %d, want 2", c.Remaining())
	}
}

func TestConsumeExpected(t *testing.T) {
	c := New(toks(token.BEGIN, token.END, token.EOF))

	if !c.ConsumeExpected(token.BEGIN) {
		t.Fatal("ConsumeExpected(BEGIN) = false, want true")
	}
	if c.ConsumeExpected(token.BEGIN) {
		t.Fatal("ConsumeExpected(BEGIN) on END should fail")
	}
	if !c.ConsumeExpected(token.END) {
		t.Fatal("ConsumeExpected(END) = false, want true")
	}
	// Expecting EOF succeeds on an exhausted queue.
	if !c.ConsumeExpected(token.EOF) {
		t.Fatal("ConsumeExpected(EOF) = false, want true")
	}
	if !c.ConsumeExpected(token.EOF) {
		t.Fatal("ConsumeExpected(EOF) on empty queue should still succeed")
	}
}

func TestConsumeIdentifier(t *testing.T) {
	c := New([]token.Token{
		{Type: token.IDENT, Literal: "foo"},
		{Type: token.BEGIN},
		{Type: token.EOF},
	})

	name, ok := c.ConsumeIdentifier()
	if !ok || name != "foo" {
		t.Fatalf("ConsumeIdentifier = (%q, %v), want (foo, true)", name, ok)
	}
	if _, ok := c.ConsumeIdentifier(); ok {
		t.Fatal("ConsumeIdentifier on BEGIN should fail")
	}
	// A failed consume leaves the token in place.
	if got := c.PeekFront().Type; got != token.BEGIN {
		t.Fatalf("PeekFront after failed consume = %s, want BEGIN", got)
	}
}

func TestConsumeAsBool(t *testing.T) {
	c := New(toks(token.GLOBAL, token.VARIABLE, token.EOF))

	if !c.ConsumeAsBool(token.GLOBAL) {
		t.Fatal("ConsumeAsBool(GLOBAL) = false, want true")
	}
	if c.ConsumeAsBool(token.GLOBAL) {
		t.Fatal("ConsumeAsBool(GLOBAL) on VARIABLE should be false")
	}
	if got := c.PeekFront().Type; got != token.VARIABLE {
		t.Fatalf("non-matching ConsumeAsBool must not consume, next is %s", got)
	}
}
