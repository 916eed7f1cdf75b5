package css

import (
	"errors"
	"slices"
	"strconv"
	"strings"
	"unicode"

	"go.uber.org/zap"

	"webparse/internal/cursor"
)

// Parser parses CSS stylesheets into rules. Only simple selectors and
// keyword, px length and hex color values are understood.
type Parser struct {
	log          *zap.Logger
	trimKeywords bool
}

// Option configures a Parser.
type Option func(*Parser)

// WithTrimmedKeywords strips trailing whitespace from keyword values. By
// default a keyword is everything between the colon (after whitespace) and
// the semicolon, as written.
func WithTrimmedKeywords(trim bool) Option {
	return func(p *Parser) {
		p.trimKeywords = trim
	}
}

// NewParser creates a new CSS parser.
func NewParser(log *zap.Logger, opts ...Option) *Parser {
	if log == nil {
		log = zap.NewNop()
	}
	p := &Parser{log: log.Named("css-parser")}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse parses CSS text into a Stylesheet. The first grammar violation
// aborts the parse and is returned as a *cursor.Error.
func (p *Parser) Parse(text string) (*Stylesheet, error) {
	p.log.Debug("Parsing CSS", zap.Int("bytes", len(text)))

	st := &cssState{cur: cursor.New(text), trimKeywords: p.trimKeywords}
	sheet := &Stylesheet{Rules: make([]Rule, 0)}

	st.cur.SkipWhitespace()
	for !st.cur.AtEnd() {
		rule, err := st.parseRule()
		if err != nil {
			p.log.Debug("CSS parse failed", zap.Error(err))
			return nil, err
		}
		sheet.Rules = append(sheet.Rules, rule)
		st.cur.SkipWhitespace()
	}

	p.log.Debug("Parsed CSS", zap.Int("rules", len(sheet.Rules)), zap.Int("selectors", sheet.SelectorCount()))
	return sheet, nil
}

type cssState struct {
	cur          *cursor.Cursor
	trimKeywords bool
}

func isIdentChar(r rune) bool {
	return r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '-' || r == '_'
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func (s *cssState) parseIdentifier() (string, error) {
	ident := s.cur.ConsumeWhile(isIdentChar)
	if ident == "" {
		return "", s.cur.MismatchDesc("identifier")
	}
	return ident, nil
}

// parseRule reads `selectors { declarations }`.
func (s *cssState) parseRule() (Rule, error) {
	selectors, err := s.parseSelectors()
	if err != nil {
		return Rule{}, err
	}
	declarations, err := s.parseDeclarations()
	if err != nil {
		return Rule{}, err
	}
	return Rule{Selectors: selectors, Declarations: declarations}, nil
}

// parseSelectors reads a comma separated selector list up to the opening
// brace and returns it most specific first. Equal selectors keep their
// source order.
func (s *cssState) parseSelectors() ([]Selector, error) {
	var selectors []Selector
loop:
	for {
		sel, err := s.parseSimpleSelector()
		if err != nil {
			return nil, err
		}
		selectors = append(selectors, sel)

		s.cur.SkipWhitespace()
		r, err := s.cur.Peek()
		if err != nil {
			return nil, err
		}
		switch r {
		case ',':
			_, _ = s.cur.Advance()
			s.cur.SkipWhitespace()
		case '{':
			break loop
		default:
			return nil, s.cur.MismatchDesc(`"," or "{"`)
		}
	}

	slices.SortStableFunc(selectors, func(a, b Selector) int {
		return b.Specificity().Compare(a.Specificity())
	})
	return selectors, nil
}

// parseSimpleSelector reads `tag#id.class1.class2` components in any order.
// A repeated tag or id replaces the earlier one; '*' is accepted and
// contributes nothing.
func (s *cssState) parseSimpleSelector() (SimpleSelector, error) {
	var sel SimpleSelector
	for !s.cur.AtEnd() {
		r, _ := s.cur.Peek()
		switch {
		case r == '#':
			_, _ = s.cur.Advance()
			id, err := s.parseIdentifier()
			if err != nil {
				return SimpleSelector{}, err
			}
			sel.ID = id
		case r == '.':
			_, _ = s.cur.Advance()
			class, err := s.parseIdentifier()
			if err != nil {
				return SimpleSelector{}, err
			}
			sel.Classes = append(sel.Classes, class)
		case r == '*':
			_, _ = s.cur.Advance()
		case isIdentChar(r):
			sel.TagName = s.cur.ConsumeWhile(isIdentChar)
		default:
			return sel, nil
		}
	}
	return sel, nil
}

// parseDeclarations reads a `{ ... }` block.
func (s *cssState) parseDeclarations() ([]Declaration, error) {
	if err := s.cur.Expect("{"); err != nil {
		return nil, err
	}
	declarations := make([]Declaration, 0)
	for {
		s.cur.SkipWhitespace()
		r, err := s.cur.Peek()
		if err != nil {
			return nil, err
		}
		if r == '}' {
			break
		}
		decl, err := s.parseDeclaration()
		if err != nil {
			return nil, err
		}
		declarations = append(declarations, decl)
	}
	if err := s.cur.Expect("}"); err != nil {
		return nil, err
	}
	return declarations, nil
}

// parseDeclaration reads `name: value;`. The value kind is chosen by its
// first character: '#' starts a color, a digit starts a length, anything
// else is a keyword.
func (s *cssState) parseDeclaration() (Declaration, error) {
	name := s.cur.ConsumeWhile(func(r rune) bool { return r != ':' })
	if err := s.cur.Expect(":"); err != nil {
		return Declaration{}, err
	}
	s.cur.SkipWhitespace()

	r, err := s.cur.Peek()
	if err != nil {
		return Declaration{}, err
	}

	var value Value
	switch {
	case r == '#':
		value, err = s.parseColor()
	case isDigit(r):
		value, err = s.parseLength()
	default:
		value = s.parseKeyword()
	}
	if err != nil {
		return Declaration{}, err
	}

	if err := s.cur.Expect(";"); err != nil {
		return Declaration{}, err
	}
	return Declaration{Name: name, Value: value}, nil
}

func untilSemicolon(r rune) bool {
	return r != ';'
}

func (s *cssState) parseColor() (Value, error) {
	start := s.cur.Pos()
	literal := s.cur.ConsumeWhile(untilSemicolon)
	c, err := ParseColor(literal)
	if err != nil {
		return nil, s.cur.Decode(start, literal, err)
	}
	return c, nil
}

// parseLength reads a number made of digits and dots followed by a unit.
func (s *cssState) parseLength() (Value, error) {
	start := s.cur.Pos()
	literal := s.cur.ConsumeWhile(func(r rune) bool { return isDigit(r) || r == '.' })
	// an overlong digit run saturates to +Inf instead of failing
	num, err := strconv.ParseFloat(literal, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return nil, s.cur.Decode(start, literal, err)
	}

	unitStart := s.cur.Pos()
	unitText := s.cur.ConsumeWhile(unicode.IsLetter)
	unit, err := ParseUnit(unitText)
	if err != nil {
		return nil, s.cur.Decode(unitStart, unitText, err)
	}
	return Length{Value: num, Unit: unit}, nil
}

func (s *cssState) parseKeyword() Value {
	kw := s.cur.ConsumeWhile(untilSemicolon)
	if s.trimKeywords {
		kw = strings.TrimRightFunc(kw, unicode.IsSpace)
	}
	return Keyword(kw)
}
