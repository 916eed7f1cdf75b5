// Package webparse turns HTML and CSS text into a node tree and a
// stylesheet ready for a style and layout stage.
package webparse

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"webparse/internal/config"
	"webparse/internal/css"
	"webparse/internal/html"
	"webparse/internal/resolver"
)

// Engine parses documents and stylesheets with a fixed configuration.
// It holds no per-parse state and may be shared between goroutines.
type Engine struct {
	config     config.Config
	log        *zap.Logger
	htmlParser *html.Parser
	cssParser  *css.Parser
}

// New creates an engine with the given configuration
func New(cfg config.Config, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{
		config:     cfg,
		log:        log,
		htmlParser: html.NewParser(log),
		cssParser:  css.NewParser(log, css.WithTrimmedKeywords(cfg.Parser.TrimKeywords)),
	}
}

// NewWithDefaults creates an engine with the default configuration and no logging
func NewWithDefaults() *Engine {
	return New(config.Default(), nil)
}

// Config returns the engine configuration.
func (e *Engine) Config() config.Config {
	return e.config
}

// ParseHTML parses an HTML document and returns its single root node.
func (e *Engine) ParseHTML(text string) (html.Node, error) {
	root, err := e.htmlParser.Parse(text)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return root, nil
}

// ParseCSS parses a stylesheet.
func (e *Engine) ParseCSS(text string) (*css.Stylesheet, error) {
	sheet, err := e.cssParser.Parse(text)
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSS: %w", err)
	}
	return sheet, nil
}

// MatchResult contains the outcome of matching a stylesheet against a document
type MatchResult struct {
	Root            html.Node
	Stylesheet      *css.Stylesheet
	Matches         []resolver.ElementMatch // elements with at least one matching rule, document order
	ProcessingStats ProcessingStats
}

// ProcessingStats contains counters and timing from a Match call
type ProcessingStats struct {
	HTMLElementsParsed int           // elements in the parsed tree
	CSSRulesParsed     int           // rules in the parsed stylesheet
	ElementsMatched    int           // elements with at least one matching rule
	SelectorsMatched   int           // total (selector, element) matches
	ProcessingTime     time.Duration // parse and match time
}

// Match parses both texts and reports, for each element, the rules whose
// selectors match it.
func (e *Engine) Match(htmlText, cssText string) (*MatchResult, error) {
	start := time.Now()

	root, err := e.ParseHTML(htmlText)
	if err != nil {
		return nil, err
	}
	sheet, err := e.ParseCSS(cssText)
	if err != nil {
		return nil, err
	}
	return e.match(root, sheet, start), nil
}

// MatchParsed is like Match for a document and stylesheet that were already
// parsed. ProcessingTime then covers matching only.
func (e *Engine) MatchParsed(root html.Node, sheet *css.Stylesheet) *MatchResult {
	return e.match(root, sheet, time.Now())
}

func (e *Engine) match(root html.Node, sheet *css.Stylesheet, start time.Time) *MatchResult {
	r := resolver.New(sheet, root, e.log)
	matches := r.Resolve()
	stats := r.Stats()

	result := &MatchResult{
		Root:       root,
		Stylesheet: sheet,
		Matches:    matches,
		ProcessingStats: ProcessingStats{
			HTMLElementsParsed: stats.Elements,
			CSSRulesParsed:     len(sheet.Rules),
			ElementsMatched:    stats.MatchedElements,
			SelectorsMatched:   stats.SelectorsMatched,
			ProcessingTime:     time.Since(start),
		},
	}
	e.log.Debug("Matched stylesheet",
		zap.Int("elements", result.ProcessingStats.HTMLElementsParsed),
		zap.Int("rules", result.ProcessingStats.CSSRulesParsed),
		zap.Duration("elapsed", result.ProcessingStats.ProcessingTime))
	return result
}

// ParseHTML is a convenience function that parses an HTML document with the
// default configuration
func ParseHTML(text string) (html.Node, error) {
	return NewWithDefaults().ParseHTML(text)
}

// ParseCSS is a convenience function that parses a stylesheet with the
// default configuration
func ParseCSS(text string) (*css.Stylesheet, error) {
	return NewWithDefaults().ParseCSS(text)
}
