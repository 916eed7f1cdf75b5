// Package cursor implements the character stream shared by the HTML and CSS
// grammars: a read position over an immutable input string with lookahead,
// matching and consuming primitives.
package cursor

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Cursor walks an input string forward one rune at a time.
// The position never moves backwards.
type Cursor struct {
	pos   int
	input string
}

// New returns a cursor positioned at the first byte of input.
func New(input string) *Cursor {
	return &Cursor{input: input}
}

// Pos returns the current byte offset.
func (c *Cursor) Pos() int {
	return c.pos
}

// Input returns the text being read.
func (c *Cursor) Input() string {
	return c.input
}

// AtEnd reports whether all input has been consumed.
func (c *Cursor) AtEnd() bool {
	return c.pos >= len(c.input)
}

// Peek returns the current rune without consuming it.
func (c *Cursor) Peek() (rune, error) {
	if c.AtEnd() {
		return 0, c.eof()
	}
	r, _ := utf8.DecodeRuneInString(c.input[c.pos:])
	return r, nil
}

// StartsWith reports whether the remaining input begins with s.
func (c *Cursor) StartsWith(s string) bool {
	return strings.HasPrefix(c.input[c.pos:], s)
}

// Expect consumes s if the remaining input begins with it.
func (c *Cursor) Expect(s string) error {
	if !c.StartsWith(s) {
		return c.Mismatch(s)
	}
	c.pos += len(s)
	return nil
}

// Advance returns the current rune and moves past its encoded width.
func (c *Cursor) Advance() (rune, error) {
	if c.AtEnd() {
		return 0, c.eof()
	}
	r, w := utf8.DecodeRuneInString(c.input[c.pos:])
	c.pos += w
	return r, nil
}

// ConsumeWhile consumes runes for as long as test accepts them and returns
// the consumed run, which may be empty.
func (c *Cursor) ConsumeWhile(test func(rune) bool) string {
	start := c.pos
	for !c.AtEnd() {
		r, w := utf8.DecodeRuneInString(c.input[c.pos:])
		if !test(r) {
			break
		}
		c.pos += w
	}
	return c.input[start:c.pos]
}

// SkipWhitespace consumes and discards a run of whitespace.
func (c *Cursor) SkipWhitespace() {
	c.ConsumeWhile(unicode.IsSpace)
}
