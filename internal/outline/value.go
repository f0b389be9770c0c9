package outline

// Value converts o into plain nested Go values suitable for JSON encoding
// and JSONPath evaluation: an Outline becomes []any, a leaf becomes its
// headline string, and any other node becomes
// {"headline": ..., "children": [...]}.
//
// Recursion depth equals outline depth, which Parse and the directory
// reader bound when the outline is built.
func (o Outline) Value() []any {
	out := make([]any, 0, len(o))
	for _, n := range o {
		if n.IsLeaf() {
			out = append(out, n.Headline)
			continue
		}
		out = append(out, map[string]any{
			"headline": n.Headline,
			"children": n.Children.Value(),
		})
	}
	return out
}
