// Package query evaluates JSONPath expressions against outlines.
//
// An outline is queried through its generic value (see outline.Value):
// a list whose items are either leaf headline strings or
// {"headline": ..., "children": [...]} objects. For example
//
//	$[?(@.headline == 'posts')].children[*].headline
//
// lists the headlines directly under a top-level "posts" node.
package query

import (
	"fmt"

	"github.com/ohler55/ojg/jp"

	"github.com/agentic-research/sitetree/internal/outline"
)

// Match is a single JSONPath result.
type Match interface {
	// Context returns the raw matched value.
	Context() any
}

// Walker runs JSONPath selectors over generic values.
type Walker struct{}

func NewWalker() *Walker {
	return &Walker{}
}

// Query evaluates selector against root.
func (w *Walker) Query(root any, selector string) ([]Match, error) {
	x, err := jp.ParseString(selector)
	if err != nil {
		return nil, fmt.Errorf("invalid jsonpath %q: %w", selector, err)
	}

	results := x.Get(root)
	matches := make([]Match, len(results))
	for i, r := range results {
		matches[i] = &valueMatch{value: r}
	}
	return matches, nil
}

// QueryOutline evaluates selector against the generic value of o.
func (w *Walker) QueryOutline(o outline.Outline, selector string) ([]Match, error) {
	return w.Query(o.Value(), selector)
}

// Headlines returns the headline of every match: the string itself for a
// leaf, the "headline" field for a node. Other results are skipped.
func Headlines(matches []Match) []string {
	var out []string
	for _, m := range matches {
		switch v := m.Context().(type) {
		case string:
			out = append(out, v)
		case map[string]any:
			if h, ok := v["headline"].(string); ok {
				out = append(out, h)
			}
		}
	}
	return out
}

type valueMatch struct {
	value any
}

func (m *valueMatch) Context() any {
	return m.value
}
