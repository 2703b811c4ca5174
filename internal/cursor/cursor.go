// Package cursor wraps a token slice in a mutable queue with the
// peek/pop/pushback/expected-consume operations the parser needs for
// one-token lookahead disambiguation.
package cursor

import (
	"github.com/cwbudde/dws-front/internal/token"
)

// Cursor is a mutable queue over a token stream. It supports pushing a
// token back onto the front (used by the parser to disambiguate
// `IDENT (` / `IDENT [` / bare `IDENT` without a dedicated multi-token
// peek buffer).
type Cursor struct {
	tokens []token.Token
	pos    int
}

// New wraps tokens, which must end with exactly one EOF.
func New(tokens []token.Token) *Cursor {
	return &Cursor{tokens: tokens}
}

// PeekFront returns the next token without consuming it. Past the end of
// the queue it returns a synthetic EOF token.
func (c *Cursor) PeekFront() token.Token {
	if c.pos >= len(c.tokens) {
		return token.Token{Type: token.EOF}
	}
	return c.tokens[c.pos]
}

// PopFront consumes and returns the next token.
func (c *Cursor) PopFront() token.Token {
	tok := c.PeekFront()
	if c.pos < len(c.tokens) {
		c.pos++
	}
	return tok
}

// PushFront un-consumes tok, making it the next token again.
func (c *Cursor) PushFront(tok token.Token) {
	if c.pos > 0 {
		c.pos--
		c.tokens[c.pos] = tok
		return
	}
	c.tokens = append([]token.Token{tok}, c.tokens...)
}

// Remaining reports how many tokens (including a trailing EOF, if not yet
// consumed) are left in the queue.
func (c *Cursor) Remaining() int {
	if c.pos >= len(c.tokens) {
		return 0
	}
	return len(c.tokens) - c.pos
}

// ConsumeExpected consumes and reports success iff the next token has
// type t. Consuming past the end of an otherwise-empty queue succeeds
// only when t == token.EOF.
func (c *Cursor) ConsumeExpected(t token.Type) bool {
	if c.PeekFront().Type != t {
		return false
	}
	c.PopFront()
	return true
}

// ConsumeIdentifier consumes an IDENT token and returns its payload, or
// fails if the next token is not an identifier.
func (c *Cursor) ConsumeIdentifier() (string, bool) {
	tok := c.PeekFront()
	if tok.Type != token.IDENT {
		return "", false
	}
	c.PopFront()
	return tok.Literal, true
}

// ConsumeAsBool reports whether the next token has type t, consuming it
// only on a match (used for optional grammar elements like "global").
func (c *Cursor) ConsumeAsBool(t token.Type) bool {
	if c.PeekFront().Type != t {
		return false
	}
	c.PopFront()
	return true
}
