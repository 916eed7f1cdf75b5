package html

import (
	"slices"
	"strings"
)

// Node is a node of a parsed document. It is either a *Text or an
// *Element; use a type switch to tell them apart.
type Node interface {
	isNode()
}

// AttrMap maps attribute names to values. Names are unique.
type AttrMap map[string]string

// Text is a run of character data. It never has children.
type Text struct {
	Data string
}

// Element is a tag with its attributes and child nodes. Each child belongs
// to exactly one element.
type Element struct {
	TagName  string
	Attrs    AttrMap
	Children []Node
}

func (*Text) isNode()    {}
func (*Element) isNode() {}

// NewText returns a text node holding data.
func NewText(data string) *Text {
	return &Text{Data: data}
}

// NewElement returns an element node. A nil attrs is replaced with an empty map.
func NewElement(tagName string, attrs AttrMap, children []Node) *Element {
	if attrs == nil {
		attrs = AttrMap{}
	}
	return &Element{TagName: tagName, Attrs: attrs, Children: children}
}

// Attr returns the value of the named attribute.
func (e *Element) Attr(name string) (string, bool) {
	v, ok := e.Attrs[name]
	return v, ok
}

// ID returns the id attribute, or "" when absent.
func (e *Element) ID() string {
	return e.Attrs["id"]
}

// Classes returns the whitespace separated entries of the class attribute.
func (e *Element) Classes() []string {
	return strings.Fields(e.Attrs["class"])
}

// HasClass reports whether name is one of the element's classes.
func (e *Element) HasClass(name string) bool {
	return slices.Contains(e.Classes(), name)
}

// Walk visits n and its descendants in document order. Children of a node
// are skipped when fn returns false for it.
func Walk(n Node, fn func(Node) bool) {
	if !fn(n) {
		return
	}
	if el, ok := n.(*Element); ok {
		for _, child := range el.Children {
			Walk(child, fn)
		}
	}
}

// CountNodes returns the number of element and text nodes under and
// including n.
func CountNodes(n Node) (elements, texts int) {
	Walk(n, func(n Node) bool {
		switch n.(type) {
		case *Element:
			elements++
		case *Text:
			texts++
		}
		return true
	})
	return elements, texts
}
