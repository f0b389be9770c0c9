// Package topic derives tag-to-topic closures from a hierarchy outline and
// applies them to the tag lists of content items.
//
// In a hierarchy outline every leaf headline is a tag and every headline
// above it is one of its topics:
//
//	math
//	  topology
//	    knots
//
// gives knots the topics {math, topology} and topology nothing, since only
// leaves are tags. A tag appearing in several places collects the topics of
// every occurrence.
package topic

import (
	"sort"
	"strings"

	"github.com/RoaringBitmap/roaring"

	"github.com/agentic-research/sitetree/internal/outline"
)

// Closure maps each tag to the full set of its ancestor topics.
// Topic names are interned into a sorted table and each tag's set is a
// bitmap over that table, so iterating a set yields topics in name order.
//
// A Closure is immutable after Build and safe for concurrent reads.
type Closure struct {
	topics []string                   // sorted, unique
	sets   map[string]*roaring.Bitmap // tag -> indices into topics
}

// Build walks the hierarchy and collects, for every leaf, the headlines of
// all its ancestors. Blank headlines are neither tags nor topics. An empty
// hierarchy yields an empty closure.
func Build(hierarchy outline.Outline) *Closure {
	var leaves []outline.Path
	for _, leaf := range hierarchy.Leaves() {
		if blank(leaf.Leaf) {
			continue
		}
		var ancestors []string
		for _, a := range leaf.Ancestors {
			if !blank(a) {
				ancestors = append(ancestors, a)
			}
		}
		leaves = append(leaves, outline.Path{Leaf: leaf.Leaf, Ancestors: ancestors})
	}

	seen := make(map[string]struct{})
	for _, leaf := range leaves {
		for _, a := range leaf.Ancestors {
			seen[a] = struct{}{}
		}
	}
	topics := make([]string, 0, len(seen))
	for name := range seen {
		topics = append(topics, name)
	}
	sort.Strings(topics)

	index := make(map[string]uint32, len(topics))
	for i, name := range topics {
		index[name] = uint32(i)
	}

	sets := make(map[string]*roaring.Bitmap)
	for _, leaf := range leaves {
		bm, ok := sets[leaf.Leaf]
		if !ok {
			bm = roaring.New()
			sets[leaf.Leaf] = bm
		}
		for _, a := range leaf.Ancestors {
			bm.Add(index[a])
		}
	}
	for _, bm := range sets {
		bm.RunOptimize()
	}

	return &Closure{topics: topics, sets: sets}
}

func blank(headline string) bool {
	return strings.TrimSpace(headline) == ""
}

// Topics returns the topics implied by tag in name order, or nil if tag is
// not a leaf of the hierarchy.
func (c *Closure) Topics(tag string) []string {
	bm, ok := c.sets[tag]
	if !ok || bm.IsEmpty() {
		return nil
	}
	out := make([]string, 0, bm.GetCardinality())
	it := bm.Iterator()
	for it.HasNext() {
		out = append(out, c.topics[it.Next()])
	}
	return out
}

// Has reports whether tag is a leaf of the hierarchy.
func (c *Closure) Has(tag string) bool {
	_, ok := c.sets[tag]
	return ok
}

// Tags returns every tag in the closure, sorted.
func (c *Closure) Tags() []string {
	out := make([]string, 0, len(c.sets))
	for tag := range c.sets {
		out = append(out, tag)
	}
	sort.Strings(out)
	return out
}

// AllTopics returns every topic that some tag implies, sorted.
func (c *Closure) AllTopics() []string {
	return append([]string(nil), c.topics...)
}

// Len is the number of tags.
func (c *Closure) Len() int {
	return len(c.sets)
}

// Apply runs one propagation pass over tags. Topics implied by a tag that
// are not already in the list are collected in discovery order and placed
// before the original tags. Implied topics that are already present are
// returned as redundant, each once.
//
// Apply performs exactly one pass. The closure already holds complete
// ancestor chains, so a second pass over the result only finds redundancy.
func (c *Closure) Apply(tags []string) (result, redundant []string) {
	present := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		present[t] = struct{}{}
	}

	var added []string
	staged := make(map[string]struct{})
	flagged := make(map[string]struct{})
	for _, t := range tags {
		bm, ok := c.sets[t]
		if !ok {
			continue
		}
		it := bm.Iterator()
		for it.HasNext() {
			u := c.topics[it.Next()]
			if _, ok := present[u]; ok {
				if _, dup := flagged[u]; !dup {
					flagged[u] = struct{}{}
					redundant = append(redundant, u)
				}
				continue
			}
			if _, ok := staged[u]; !ok {
				staged[u] = struct{}{}
				added = append(added, u)
			}
		}
	}

	result = make([]string, 0, len(added)+len(tags))
	result = append(result, added...)
	result = append(result, tags...)
	return result, redundant
}
