package outline

import (
	"errors"
	"fmt"
	"strings"

	"github.com/agentic-research/sitetree/api"
)

// ErrTooDeep is wrapped by a FormatError when text nests deeper than the
// codec's MaxDepth.
var ErrTooDeep = errors.New("outline nesting exceeds maximum depth")

// FormatError reports inconsistent indentation in outline text.
type FormatError struct {
	Line   int // 1-based
	Text   string
	Reason string
	Err    error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("outline line %d: %s: %q", e.Line, e.Reason, e.Text)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

// Codec converts between Outline values and indentation text.
type Codec struct {
	// Unit is the number of spaces per depth level.
	Unit int
	// MaxDepth is the deepest level Parse accepts, counting top-level
	// nodes as level 1. Zero means unbounded.
	MaxDepth int
}

// NewCodec returns a codec using the indent unit and depth bound of cfg.
func NewCodec(cfg api.Config) Codec {
	return Codec{Unit: cfg.IndentUnit, MaxDepth: cfg.MaxDepth}
}

// DefaultCodec uses the stock two-space indentation.
func DefaultCodec() Codec {
	return NewCodec(api.DefaultConfig())
}

func (c Codec) unit() int {
	if c.Unit < 1 {
		return 2
	}
	return c.Unit
}

// Indent returns the leading spaces for a line at depth.
func (c Codec) Indent(depth int) string {
	return strings.Repeat(" ", depth*c.unit())
}

// Render writes one line per node in pre-order, indented by Unit spaces per
// depth level. The result is newline-terminated unless o is empty.
func (c Codec) Render(o Outline) string {
	var b strings.Builder
	_ = o.Walk(func(depth int, n *Node) error {
		b.WriteString(c.Indent(depth))
		b.WriteString(n.Headline)
		b.WriteByte('\n')
		return nil
	})
	return b.String()
}

type scope struct {
	indent int
	list   *Outline
}

// Parse is the inverse of Render.
//
// A line indented further than its predecessor opens a child scope under
// the predecessor. A line at or above the current scope closes scopes until
// it reaches its own level. When a line jumps more than one level deeper,
// the child scope still opens a single level down and the surplus spaces
// stay in the headline, so deeper-indented blocks of file content survive
// a round trip unchanged.
//
// Indentation of a blank line, or of spaces that end in a tab, is rounded
// down to the unit and the rest kept in the headline. An empty line never
// moves the scope: it joins the list that the next non-empty line lands in,
// or the top level at the end of the text.
func (c Codec) Parse(text string) (Outline, error) {
	unit := c.unit()
	var root Outline
	scopes := []scope{{indent: 0, list: &root}}
	prevIndent := -1
	blanks := 0

	for i, line := range SplitLines(text) {
		if line == "" {
			blanks++
			continue
		}

		indent := 0
		for indent < len(line) && line[indent] == ' ' {
			indent++
		}
		if indent == len(line) || line[indent] == '\t' {
			indent -= indent % unit
		}
		if indent%unit != 0 {
			return nil, &FormatError{
				Line:   i + 1,
				Text:   line,
				Reason: fmt.Sprintf("indent of %d is not a multiple of %d", indent, unit),
			}
		}
		if prevIndent < 0 && indent != 0 {
			return nil, &FormatError{Line: i + 1, Text: line, Reason: "first line is indented"}
		}

		if prevIndent >= 0 && indent > prevIndent {
			top := scopes[len(scopes)-1]
			if c.MaxDepth > 0 && len(scopes) >= c.MaxDepth {
				return nil, &FormatError{Line: i + 1, Text: line, Reason: "too deep", Err: ErrTooDeep}
			}
			parent := &(*top.list)[len(*top.list)-1]
			scopes = append(scopes, scope{indent: top.indent + unit, list: &parent.Children})
		} else {
			for len(scopes) > 1 && scopes[len(scopes)-1].indent > indent {
				scopes = scopes[:len(scopes)-1]
			}
		}

		top := scopes[len(scopes)-1]
		for ; blanks > 0; blanks-- {
			*top.list = append(*top.list, Node{})
		}
		headline := line[indent:]
		if extra := indent - top.indent; extra > 0 {
			headline = strings.Repeat(" ", extra) + headline
		}
		*top.list = append(*top.list, Node{Headline: headline})
		prevIndent = indent
	}

	for ; blanks > 0; blanks-- {
		root = append(root, Node{})
	}
	return root, nil
}

// Render renders o with the default codec.
func Render(o Outline) string {
	return DefaultCodec().Render(o)
}

// Parse parses text with the default codec.
func Parse(text string) (Outline, error) {
	return DefaultCodec().Parse(text)
}

// String renders o with the default codec.
func (o Outline) String() string {
	return Render(o)
}

// SplitLines splits text on '\n', dropping a trailing '\r' from each line.
// A final newline does not produce an empty trailing line.
func SplitLines(text string) []string {
	if text == "" {
		return nil
	}
	text = strings.TrimSuffix(text, "\n")
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}
