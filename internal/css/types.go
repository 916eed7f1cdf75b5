package css

import (
	"fmt"
	"strconv"
	"strings"
)

// Specificity represents CSS specificity of a simple selector: the number
// of id, class and tag components, compared in that order.
type Specificity struct {
	IDs     int // #id
	Classes int // .class, duplicates included
	Tags    int // element name
}

// Compare returns -1 if s < other, 0 if equal, 1 if s > other
func (s Specificity) Compare(other Specificity) int {
	if s.IDs != other.IDs {
		if s.IDs > other.IDs {
			return 1
		}
		return -1
	}
	if s.Classes != other.Classes {
		if s.Classes > other.Classes {
			return 1
		}
		return -1
	}
	if s.Tags != other.Tags {
		if s.Tags > other.Tags {
			return 1
		}
		return -1
	}
	return 0
}

func (s Specificity) String() string {
	return fmt.Sprintf("(%d,%d,%d)", s.IDs, s.Classes, s.Tags)
}

// Selector is a parsed selector. SimpleSelector is currently the only kind.
type Selector interface {
	Specificity() Specificity
	String() string
	isSelector()
}

// SimpleSelector is a compound of an optional tag name, an optional id and
// any number of classes, e.g. `div#main.note.wide`. Empty strings mean the
// component is absent.
type SimpleSelector struct {
	TagName string
	ID      string
	Classes []string
}

func (SimpleSelector) isSelector() {}

// Specificity implements Selector.
func (s SimpleSelector) Specificity() Specificity {
	var spec Specificity
	if s.ID != "" {
		spec.IDs = 1
	}
	spec.Classes = len(s.Classes)
	if s.TagName != "" {
		spec.Tags = 1
	}
	return spec
}

// String formats the selector as CSS. A selector with no components is
// the universal selector.
func (s SimpleSelector) String() string {
	var sb strings.Builder
	sb.WriteString(s.TagName)
	if s.ID != "" {
		sb.WriteString("#" + s.ID)
	}
	for _, class := range s.Classes {
		sb.WriteString("." + class)
	}
	if sb.Len() == 0 {
		return "*"
	}
	return sb.String()
}

// Unit is the unit of a Length.
type Unit int

const (
	Px Unit = iota
)

func (u Unit) String() string {
	switch u {
	case Px:
		return "px"
	default:
		return fmt.Sprintf("Unit(%d)", int(u))
	}
}

// ParseUnit maps unit text to a Unit.
func ParseUnit(s string) (Unit, error) {
	switch s {
	case "px":
		return Px, nil
	default:
		return 0, fmt.Errorf("unsupported unit %q", s)
	}
}

// Value is a declared property value: Keyword, Length or Color.
// Consumers are expected to type switch over it.
type Value interface {
	String() string
	isValue()
}

// Keyword is any value that is neither a length nor a color, kept as written.
type Keyword string

// Length is a number with a unit, e.g. 20px.
type Length struct {
	Value float64
	Unit  Unit
}

func (Keyword) isValue() {}
func (Length) isValue()  {}
func (Color) isValue()   {}

func (k Keyword) String() string {
	return string(k)
}

func (l Length) String() string {
	return strconv.FormatFloat(l.Value, 'f', -1, 64) + l.Unit.String()
}

// Declaration is a single `name: value` pair.
type Declaration struct {
	Name  string
	Value Value
}

func (d Declaration) String() string {
	return d.Name + ": " + d.Value.String()
}

// Rule is a selector list and its declaration block. Selectors are kept
// sorted with the most specific first; declarations stay in source order.
type Rule struct {
	Selectors    []Selector
	Declarations []Declaration
}

// Stylesheet is the parsed form of a CSS text: its rules in source order.
type Stylesheet struct {
	Rules []Rule
}

// RulesBySelector returns the rules having a selector whose text equals sel.
func (s *Stylesheet) RulesBySelector(sel string) []Rule {
	var out []Rule
	for _, rule := range s.Rules {
		for _, rs := range rule.Selectors {
			if rs.String() == sel {
				out = append(out, rule)
				break
			}
		}
	}
	return out
}

// SelectorCount returns the total number of selectors over all rules.
func (s *Stylesheet) SelectorCount() int {
	n := 0
	for _, rule := range s.Rules {
		n += len(rule.Selectors)
	}
	return n
}
