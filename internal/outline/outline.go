// Package outline implements the ordered headline tree shared by the
// directory reader, the directory materializer and the topic hierarchy, and
// its indentation text encoding.
package outline

import "errors"

// Node is one headline together with the subtree below it.
type Node struct {
	Headline string
	Children Outline
}

// Outline is an ordered sequence of nodes. A node owns its children.
type Outline []Node

// Leaf returns a node without children.
func Leaf(headline string) Node {
	return Node{Headline: headline}
}

// New returns a node with the given children.
func New(headline string, children ...Node) Node {
	return Node{Headline: headline, Children: Outline(children)}
}

// IsLeaf reports whether n has no children.
func (n Node) IsLeaf() bool {
	return len(n.Children) == 0
}

// Path is a leaf headline plus the headlines of every node above it,
// outermost first.
type Path struct {
	Leaf      string
	Ancestors []string
}

// SkipChildren can be returned by a Walk callback to skip the subtree
// below the current node.
var SkipChildren = errors.New("skip children")

type cursor struct {
	nodes Outline
	next  int
}

// Walk visits every node in pre-order. depth is 0 for top-level nodes.
// Returning SkipChildren skips the node's subtree; any other non-nil error
// stops the walk and is returned.
func (o Outline) Walk(fn func(depth int, n *Node) error) error {
	stack := []cursor{{nodes: o}}
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if top.next >= len(top.nodes) {
			stack = stack[:len(stack)-1]
			continue
		}
		n := &top.nodes[top.next]
		top.next++
		if err := fn(len(stack)-1, n); err != nil {
			if errors.Is(err, SkipChildren) {
				continue
			}
			return err
		}
		if len(n.Children) > 0 {
			stack = append(stack, cursor{nodes: n.Children})
		}
	}
	return nil
}

// Leaves lists every leaf with its ancestor chain, in document order.
func (o Outline) Leaves() []Path {
	var (
		out    []Path
		prefix []string
	)
	_ = o.Walk(func(depth int, n *Node) error {
		prefix = prefix[:depth]
		if n.IsLeaf() {
			ancestors := make([]string, len(prefix))
			copy(ancestors, prefix)
			out = append(out, Path{Leaf: n.Headline, Ancestors: ancestors})
			return nil
		}
		prefix = append(prefix, n.Headline)
		return nil
	})
	return out
}

// Len returns the total number of nodes.
func (o Outline) Len() int {
	count := 0
	_ = o.Walk(func(int, *Node) error {
		count++
		return nil
	})
	return count
}

// Equal reports structural equality. Nil and empty child lists are equal.
func (o Outline) Equal(other Outline) bool {
	type pair struct{ a, b Outline }
	stack := []pair{{o, other}}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if len(p.a) != len(p.b) {
			return false
		}
		for i := range p.a {
			if p.a[i].Headline != p.b[i].Headline {
				return false
			}
			stack = append(stack, pair{p.a[i].Children, p.b[i].Children})
		}
	}
	return true
}
