// Package resolver matches the rules of a parsed stylesheet against the
// elements of a parsed document.
package resolver

import (
	"slices"

	"go.uber.org/zap"

	"webparse/internal/css"
	"webparse/internal/html"
)

// MatchedRule is a rule that applies to an element, along with the
// selector that matched it.
type MatchedRule struct {
	Rule        *css.Rule
	SourceOrder int             // index of the rule in the stylesheet
	Selector    css.Selector    // most specific selector of the rule that matched
	Specificity css.Specificity // specificity of Selector
}

// ElementMatch lists the rules matching one element.
type ElementMatch struct {
	Element *html.Element
	Rules   []MatchedRule
}

// Stats summarizes a resolution.
type Stats struct {
	Elements         int // elements in the document
	MatchedElements  int // elements with at least one matching rule
	SelectorsMatched int // total (selector, element) matches
}

// Resolver matches stylesheet rules against document elements.
type Resolver struct {
	stylesheet *css.Stylesheet
	doc        *html.Document
	log        *zap.Logger

	// selector matches, indexed by rule then by selector position
	matches [][]map[*html.Element]bool
	stats   Stats
}

// New creates a resolver for the given stylesheet and document tree.
// Selectors are evaluated once, up front.
func New(stylesheet *css.Stylesheet, root html.Node, log *zap.Logger) *Resolver {
	if log == nil {
		log = zap.NewNop()
	}
	r := &Resolver{
		stylesheet: stylesheet,
		doc:        html.NewDocument(root),
		log:        log.Named("resolver"),
	}
	r.index()
	return r
}

func (r *Resolver) index() {
	matched := make(map[*html.Element]bool)
	r.matches = make([][]map[*html.Element]bool, len(r.stylesheet.Rules))
	for i, rule := range r.stylesheet.Rules {
		r.matches[i] = make([]map[*html.Element]bool, len(rule.Selectors))
		for j, sel := range rule.Selectors {
			set := make(map[*html.Element]bool)
			if simple, ok := sel.(css.SimpleSelector); ok {
				for _, el := range r.doc.Select(simple) {
					set[el] = true
					matched[el] = true
				}
			}
			r.matches[i][j] = set
			r.stats.SelectorsMatched += len(set)
		}
	}
	r.stats.Elements = len(r.doc.Elements())
	r.stats.MatchedElements = len(matched)
}

// MatchedRules returns the rules that apply to el, in the order a cascade
// would apply them: ascending specificity, then source order. For each rule
// the first matching selector in its stored order is used, which is the
// most specific one.
func (r *Resolver) MatchedRules(el *html.Element) []MatchedRule {
	var out []MatchedRule
	for i := range r.stylesheet.Rules {
		rule := &r.stylesheet.Rules[i]
		for j, sel := range rule.Selectors {
			if r.matches[i][j][el] {
				out = append(out, MatchedRule{
					Rule:        rule,
					SourceOrder: i,
					Selector:    sel,
					Specificity: sel.Specificity(),
				})
				break
			}
		}
	}
	slices.SortStableFunc(out, func(a, b MatchedRule) int {
		if c := a.Specificity.Compare(b.Specificity); c != 0 {
			return c
		}
		return a.SourceOrder - b.SourceOrder
	})
	return out
}

// Resolve returns, in document order, every element with at least one
// matching rule.
func (r *Resolver) Resolve() []ElementMatch {
	var out []ElementMatch
	for _, el := range r.doc.Elements() {
		rules := r.MatchedRules(el)
		if len(rules) == 0 {
			continue
		}
		out = append(out, ElementMatch{Element: el, Rules: rules})
	}

	r.log.Debug("Resolved selectors",
		zap.Int("elements", r.stats.Elements),
		zap.Int("matched", r.stats.MatchedElements),
		zap.Int("selector matches", r.stats.SelectorsMatched))
	return out
}

// Stats returns counters collected when the resolver was created.
func (r *Resolver) Stats() Stats {
	return r.stats
}
