package html

import (
	"go.uber.org/zap"

	"webparse/internal/cursor"
)

// Parser reads a subset of HTML into a node tree: elements with quoted
// attributes, text and comments. There are no entities, void or
// self-closing tags, and every element must be closed explicitly.
type Parser struct {
	log *zap.Logger
}

// NewParser creates a new HTML parser.
func NewParser(log *zap.Logger) *Parser {
	if log == nil {
		log = zap.NewNop()
	}
	return &Parser{log: log.Named("html-parser")}
}

// Parse parses an HTML document and returns its root node. A document with
// exactly one top-level node returns that node; any other number of
// top-level nodes is wrapped in an implicit html element.
//
// The first grammar violation aborts the parse and is returned as a
// *cursor.Error.
func (p *Parser) Parse(text string) (Node, error) {
	p.log.Debug("Parsing HTML", zap.Int("bytes", len(text)))

	st := &htmlState{cur: cursor.New(text), log: p.log}
	nodes, err := st.parseNodes()
	if err != nil {
		p.log.Debug("HTML parse failed", zap.Error(err))
		return nil, err
	}

	var root Node
	if len(nodes) == 1 {
		root = nodes[0]
	} else {
		root = NewElement("html", AttrMap{}, nodes)
	}

	elements, texts := CountNodes(root)
	p.log.Debug("Parsed HTML", zap.Int("elements", elements), zap.Int("texts", texts))
	return root, nil
}

// htmlState is the per-call parser state. Each Parse owns its cursor.
type htmlState struct {
	cur *cursor.Cursor
	log *zap.Logger
}

func isNameChar(r rune) bool {
	return r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9'
}

// parseName reads a tag or attribute name.
func (s *htmlState) parseName() string {
	return s.cur.ConsumeWhile(isNameChar)
}

// parseNodes reads sibling nodes until end of input or a closing tag.
// Whitespace between siblings is dropped.
func (s *htmlState) parseNodes() ([]Node, error) {
	var nodes []Node
	for {
		s.cur.SkipWhitespace()
		if s.cur.AtEnd() || s.cur.StartsWith("</") {
			return nodes, nil
		}
		n, err := s.parseNode()
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
}

func (s *htmlState) parseNode() (Node, error) {
	switch {
	case s.cur.StartsWith("<!--"):
		if err := s.skipComment(); err != nil {
			return nil, err
		}
		return s.parseNode()
	case s.cur.StartsWith("<"):
		return s.parseElement()
	default:
		return s.parseText(), nil
	}
}

// skipComment consumes a comment and the whitespace after it. The body is
// read up to the first '-', so a comment containing a dash does not parse.
func (s *htmlState) skipComment() error {
	if err := s.cur.Expect("<!--"); err != nil {
		return err
	}
	body := s.cur.ConsumeWhile(func(r rune) bool { return r != '-' })
	if err := s.cur.Expect("-->"); err != nil {
		return err
	}
	s.cur.SkipWhitespace()
	s.log.Debug("Skipped comment", zap.String("body", body))
	return nil
}

func (s *htmlState) parseText() Node {
	return NewText(s.cur.ConsumeWhile(func(r rune) bool { return r != '<' }))
}

// parseElement reads an opening tag, its contents and the matching
// closing tag.
func (s *htmlState) parseElement() (Node, error) {
	if err := s.cur.Expect("<"); err != nil {
		return nil, err
	}
	tagName := s.parseName()
	attrs, err := s.parseAttributes()
	if err != nil {
		return nil, err
	}
	if err := s.cur.Expect(">"); err != nil {
		return nil, err
	}

	children, err := s.parseNodes()
	if err != nil {
		return nil, err
	}

	if err := s.cur.Expect("</"); err != nil {
		return nil, err
	}
	if err := s.cur.Expect(tagName); err != nil {
		return nil, err
	}
	if err := s.cur.Expect(">"); err != nil {
		return nil, err
	}

	return NewElement(tagName, attrs, children), nil
}

// parseAttributes reads whitespace separated name="value" pairs up to the
// closing '>' of a tag. A repeated name keeps the last value.
func (s *htmlState) parseAttributes() (AttrMap, error) {
	attrs := AttrMap{}
	for {
		s.cur.SkipWhitespace()
		r, err := s.cur.Peek()
		if err != nil {
			return nil, err
		}
		if r == '>' {
			return attrs, nil
		}
		name, value, err := s.parseAttr()
		if err != nil {
			return nil, err
		}
		attrs[name] = value
	}
}

func (s *htmlState) parseAttr() (string, string, error) {
	name := s.parseName()
	if err := s.cur.Expect("="); err != nil {
		return "", "", err
	}
	value, err := s.parseAttrValue()
	if err != nil {
		return "", "", err
	}
	return name, value, nil
}

// parseAttrValue reads a value delimited by matching single or double quotes.
func (s *htmlState) parseAttrValue() (string, error) {
	r, err := s.cur.Peek()
	if err != nil {
		return "", err
	}
	if r != '"' && r != '\'' {
		return "", s.cur.MismatchDesc(`'"' or "'"`)
	}
	open, _ := s.cur.Advance()
	value := s.cur.ConsumeWhile(func(r rune) bool { return r != open })
	if err := s.cur.Expect(string(open)); err != nil {
		return "", err
	}
	return value, nil
}
