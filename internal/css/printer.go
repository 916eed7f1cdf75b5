package css

import (
	"fmt"
	"io"
	"strings"

	yaml "gopkg.in/yaml.v3"
)

// Fprint writes the stylesheet as CSS text, one rule block per rule, with
// selectors in their stored (most specific first) order.
func Fprint(w io.Writer, sheet *Stylesheet) error {
	for i, rule := range sheet.Rules {
		if i > 0 {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, FormatRule(rule)); err != nil {
			return err
		}
	}
	return nil
}

// FormatRule converts a rule back to CSS text.
func FormatRule(rule Rule) string {
	var sb strings.Builder
	for i, sel := range rule.Selectors {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(sel.String())
	}
	sb.WriteString(" {\n")
	for _, decl := range rule.Declarations {
		fmt.Fprintf(&sb, "  %s;\n", decl)
	}
	sb.WriteString("}\n")
	return sb.String()
}

type yamlSelector struct {
	Selector    string `yaml:"selector"`
	Specificity string `yaml:"specificity"`
}

type yamlDeclaration struct {
	Property string `yaml:"property"`
	Kind     string `yaml:"kind"`
	Value    string `yaml:"value"`
}

type yamlRule struct {
	Selectors    []yamlSelector    `yaml:"selectors"`
	Declarations []yamlDeclaration `yaml:"declarations"`
}

// MarshalYAML renders the stylesheet as a YAML document listing every rule
// with its selectors, their specificity and typed declarations.
func MarshalYAML(sheet *Stylesheet) ([]byte, error) {
	rules := make([]yamlRule, 0, len(sheet.Rules))
	for _, rule := range sheet.Rules {
		yr := yamlRule{
			Selectors:    make([]yamlSelector, 0, len(rule.Selectors)),
			Declarations: make([]yamlDeclaration, 0, len(rule.Declarations)),
		}
		for _, sel := range rule.Selectors {
			yr.Selectors = append(yr.Selectors, yamlSelector{
				Selector:    sel.String(),
				Specificity: sel.Specificity().String(),
			})
		}
		for _, decl := range rule.Declarations {
			yr.Declarations = append(yr.Declarations, yamlDeclaration{
				Property: decl.Name,
				Kind:     ValueKind(decl.Value),
				Value:    decl.Value.String(),
			})
		}
		rules = append(rules, yr)
	}
	out, err := yaml.Marshal(map[string][]yamlRule{"rules": rules})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal stylesheet: %w", err)
	}
	return out, nil
}

// ValueKind names the variant of v.
func ValueKind(v Value) string {
	switch v.(type) {
	case Keyword:
		return "keyword"
	case Length:
		return "length"
	case Color:
		return "color"
	default:
		return "unknown"
	}
}
