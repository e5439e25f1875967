// Package search implements the keyword matching used to filter entry notes.
//
// Matching is a case-insensitive substring test. Both sides are case-folded
// with golang.org/x/text/cases so that non-ASCII notes ("Café", "STRASSE")
// compare the way a user expects. A Matcher is immutable and safe for
// concurrent use; cases.Caser is stateful, so each call gets its own.
package search

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Option configures a Matcher.
type Option func(*config)

type config struct {
	locale language.Tag
}

func defaultConfig() config {
	return config{locale: language.Und}
}

// WithLocale selects locale-specific lower-casing (e.g. Turkish dotted I).
// language.Und keeps locale-independent case folding.
func WithLocale(tag language.Tag) Option {
	return func(c *config) { c.locale = tag }
}

// Matcher tests notes against one keyword.
type Matcher struct {
	locale language.Tag
	needle string
	empty  bool
}

// NewMatcher prepares keyword for repeated matching. The keyword is used
// verbatim apart from case; surrounding spaces are significant.
func NewMatcher(keyword string, opts ...Option) *Matcher {
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}
	return &Matcher{
		locale: cfg.locale,
		needle: newCaser(cfg.locale).String(keyword),
		empty:  keyword == "",
	}
}

func newCaser(tag language.Tag) cases.Caser {
	if tag == language.Und {
		return cases.Fold()
	}
	return cases.Lower(tag)
}

// Empty reports whether the keyword was empty. An empty keyword matches
// every note.
func (m *Matcher) Empty() bool { return m.empty }

// Match reports whether note contains the keyword, ignoring case.
func (m *Matcher) Match(note string) bool {
	if m.empty {
		return true
	}
	return strings.Contains(newCaser(m.locale).String(note), m.needle)
}

// Contains is a one-shot convenience for NewMatcher(keyword).Match(note).
func Contains(note, keyword string) bool {
	return NewMatcher(keyword).Match(note)
}
