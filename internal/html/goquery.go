package html

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"

	"webparse/internal/css"
)

// Document wraps a parsed tree in a goquery document so that selectors can
// be evaluated against it. The tree itself is not modified.
type Document struct {
	root     Node
	doc      *goquery.Document
	elements map[*html.Node]*Element
}

// NewDocument converts root into golang.org/x/net/html nodes and indexes
// the result so query results map back to the parsed elements.
func NewDocument(root Node) *Document {
	d := &Document{
		root:     root,
		elements: make(map[*html.Node]*Element),
	}
	top := &html.Node{Type: html.DocumentNode}
	top.AppendChild(d.convert(root))
	d.doc = goquery.NewDocumentFromNode(top)
	return d
}

// Root returns the tree the document was built from.
func (d *Document) Root() Node {
	return d.root
}

// Elements returns every element in document order.
func (d *Document) Elements() []*Element {
	return d.wrap(d.doc.Find("*"))
}

// Select returns the elements matched by sel, in document order. Tag names
// compare case-sensitively, exactly as they were parsed.
func (d *Document) Select(sel css.SimpleSelector) []*Element {
	return d.wrap(d.doc.FindMatcher(selectorMatcher{sel: sel, elements: d.elements}))
}

// Query evaluates a full CSS selector string (combinators, attribute and
// pseudo-class selectors included) against the document. Unlike Select,
// type selectors match tag names case-insensitively, as in HTML.
func (d *Document) Query(selector string) ([]*Element, error) {
	compiled, err := cascadia.Compile(selector)
	if err != nil {
		return nil, fmt.Errorf("invalid selector %q: %w", selector, err)
	}
	return d.wrap(d.doc.FindMatcher(compiled)), nil
}

// Matches reports whether el is matched by sel.
func (d *Document) Matches(el *Element, sel css.SimpleSelector) bool {
	return matchElement(el, sel)
}

func (d *Document) wrap(selection *goquery.Selection) []*Element {
	out := make([]*Element, 0, selection.Length())
	selection.Each(func(_ int, s *goquery.Selection) {
		if el, ok := d.elements[s.Get(0)]; ok {
			out = append(out, el)
		}
	})
	return out
}

func (d *Document) convert(n Node) *html.Node {
	switch n := n.(type) {
	case *Text:
		return &html.Node{Type: html.TextNode, Data: n.Data}
	case *Element:
		out := ToNetHTML(&Element{TagName: n.TagName, Attrs: n.Attrs})
		// cascadia lower-cases type selectors
		out.Data = strings.ToLower(n.TagName)
		d.elements[out] = n
		for _, child := range n.Children {
			out.AppendChild(d.convert(child))
		}
		return out
	default:
		panic(fmt.Sprintf("html: unexpected node type %T", n))
	}
}

// ToNetHTML converts a tree into golang.org/x/net/html nodes. Attributes
// are emitted sorted by name.
func ToNetHTML(n Node) *html.Node {
	switch n := n.(type) {
	case *Text:
		return &html.Node{Type: html.TextNode, Data: n.Data}
	case *Element:
		out := &html.Node{Type: html.ElementNode, Data: n.TagName}
		names := make([]string, 0, len(n.Attrs))
		for name := range n.Attrs {
			names = append(names, name)
		}
		slices.Sort(names)
		for _, name := range names {
			out.Attr = append(out.Attr, html.Attribute{Key: name, Val: n.Attrs[name]})
		}
		for _, child := range n.Children {
			out.AppendChild(ToNetHTML(child))
		}
		return out
	default:
		panic(fmt.Sprintf("html: unexpected node type %T", n))
	}
}

// Render writes n as HTML markup.
func Render(w io.Writer, n Node) error {
	if err := html.Render(w, ToNetHTML(n)); err != nil {
		return fmt.Errorf("failed to render HTML: %w", err)
	}
	return nil
}

// selectorMatcher implements goquery.Matcher for a simple selector.
type selectorMatcher struct {
	sel      css.SimpleSelector
	elements map[*html.Node]*Element
}

func (m selectorMatcher) Match(n *html.Node) bool {
	el, ok := m.elements[n]
	return ok && matchElement(el, m.sel)
}

func (m selectorMatcher) MatchAll(n *html.Node) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && m.Match(n) {
			out = append(out, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return out
}

func (m selectorMatcher) Filter(nodes []*html.Node) []*html.Node {
	var out []*html.Node
	for _, n := range nodes {
		if m.Match(n) {
			out = append(out, n)
		}
	}
	return out
}

func matchElement(el *Element, sel css.SimpleSelector) bool {
	if sel.TagName != "" && sel.TagName != el.TagName {
		return false
	}
	if sel.ID != "" && sel.ID != el.ID() {
		return false
	}
	for _, class := range sel.Classes {
		if !el.HasClass(class) {
			return false
		}
	}
	return true
}
