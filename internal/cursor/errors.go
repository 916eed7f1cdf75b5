package cursor

import (
	"errors"
	"fmt"
	"strings"

	parse "github.com/tdewolff/parse/v2"
)

// Sentinel errors matched by errors.Is against an *Error of the same kind.
var (
	ErrMismatch      = errors.New("unexpected input")
	ErrDecode        = errors.New("invalid value")
	ErrUnexpectedEOF = errors.New("unexpected end of input")
)

// Kind classifies a parse failure.
type Kind int

const (
	// KindMismatch is a structural failure: an expected literal was not found.
	KindMismatch Kind = iota
	// KindDecode is a failure to decode a value literal (color, number, unit).
	KindDecode
	// KindEOF means input ended where a character was required.
	KindEOF
)

func (k Kind) String() string {
	switch k {
	case KindMismatch:
		return "mismatch"
	case KindDecode:
		return "decode"
	case KindEOF:
		return "eof"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Error describes why a parse was aborted. No partial result accompanies it.
type Error struct {
	Kind     Kind
	Offset   int    // byte offset into the input
	Expected string // token that was expected, for KindMismatch
	Literal  string // offending literal, for KindDecode
	Err      error  // underlying cause, if any
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindMismatch:
		return fmt.Sprintf("expected %s at byte %d", e.Expected, e.Offset)
	case KindDecode:
		if e.Err != nil {
			return fmt.Sprintf("invalid value %q at byte %d: %v", e.Literal, e.Offset, e.Err)
		}
		return fmt.Sprintf("invalid value %q at byte %d", e.Literal, e.Offset)
	default:
		return fmt.Sprintf("unexpected end of input at byte %d", e.Offset)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the sentinel that corresponds to the error kind.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrMismatch:
		return e.Kind == KindMismatch
	case ErrDecode:
		return e.Kind == KindDecode
	case ErrUnexpectedEOF:
		return e.Kind == KindEOF
	}
	return false
}

// Position translates the byte offset into a 1-based line and column of
// input, along with the text of that line.
func (e *Error) Position(input string) (line, col int, context string) {
	offset := min(max(e.Offset, 0), len(input))
	return parse.Position(strings.NewReader(input), offset)
}

// Mismatch returns a structural error for the current position, naming
// the literal that was expected.
func (c *Cursor) Mismatch(expected string) *Error {
	return &Error{Kind: KindMismatch, Offset: c.pos, Expected: quote(expected)}
}

// MismatchDesc is like Mismatch but takes a free-form description of what
// was expected.
func (c *Cursor) MismatchDesc(desc string) *Error {
	return &Error{Kind: KindMismatch, Offset: c.pos, Expected: desc}
}

// Decode returns a value decoding error for literal found at offset.
func (c *Cursor) Decode(offset int, literal string, cause error) *Error {
	return &Error{Kind: KindDecode, Offset: offset, Literal: literal, Err: cause}
}

func (c *Cursor) eof() *Error {
	return &Error{Kind: KindEOF, Offset: c.pos, Err: ErrUnexpectedEOF}
}

func quote(s string) string {
	return fmt.Sprintf("%q", s)
}
