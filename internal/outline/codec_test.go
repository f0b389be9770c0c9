package outline

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleOutline() Outline {
	return Outline{
		New("posts",
			New("hello-world",
				Leaf("title: Hello"),
				Leaf("tags: intro"),
			),
			Leaf("draft"),
		),
		New("links"),
		New("a", New("b", New("c", Leaf("d")))),
		Leaf("tail"),
	}
}

func TestRender(t *testing.T) {
	got := Render(sampleOutline())
	want := strings.Join([]string{
		"posts",
		"  hello-world",
		"    title: Hello",
		"    tags: intro",
		"  draft",
		"links",
		"a",
		"  b",
		"    c",
		"      d",
		"tail",
		"",
	}, "\n")
	assert.Equal(t, want, got)
}

func TestRender_Empty(t *testing.T) {
	assert.Equal(t, "", Render(nil))
	assert.Equal(t, "", Render(Outline{}))
}

func TestRender_CustomUnit(t *testing.T) {
	c := Codec{Unit: 4}
	assert.Equal(t, "a\n    b\n", c.Render(Outline{New("a", Leaf("b"))}))
}

func TestParse_RoundTrip(t *testing.T) {
	tests := []struct {
		name string
		in   Outline
	}{
		{"empty", Outline{}},
		{"single leaf", Outline{Leaf("x")}},
		{"sample", sampleOutline()},
		{"empty headline", Outline{New("a", Leaf(""), Leaf("b"))}},
		{"empty top-level headlines", Outline{Leaf(""), New("a", Leaf("x")), Leaf(""), Leaf("b"), Leaf("")}},
		{"punctuation", Outline{New("_wrapper", New("x.html", Leaf("<p>body</p>")))}},
		{"trailing spaces", Outline{Leaf("a  "), New("b", Leaf("c\t"))}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, unit := range []int{1, 2, 3} {
				c := Codec{Unit: unit}
				parsed, err := c.Parse(c.Render(tt.in))
				require.NoError(t, err)
				assert.True(t, tt.in.Equal(parsed), "unit %d: got\n%s", unit, c.Render(parsed))
			}
		})
	}
}

func TestParse_Nesting(t *testing.T) {
	got, err := Parse("a\n  b\n    c\n  d\ne\n")
	require.NoError(t, err)
	want := Outline{
		New("a", New("b", Leaf("c")), Leaf("d")),
		Leaf("e"),
	}
	assert.True(t, want.Equal(got))
}

func TestParse_CRLFAndMissingNewline(t *testing.T) {
	got, err := Parse("a\r\n  b\r\nc")
	require.NoError(t, err)
	assert.True(t, Outline{New("a", Leaf("b")), Leaf("c")}.Equal(got))
}

func TestParse_ExcessIndentStaysInHeadline(t *testing.T) {
	text := "post\n  paragraph\n      code line\n      more code\n  after\n"
	got, err := Parse(text)
	require.NoError(t, err)

	want := Outline{
		New("post",
			New("paragraph", Leaf("  code line"), Leaf("  more code")),
			Leaf("after"),
		),
	}
	assert.True(t, want.Equal(got), "got\n%#v", got)
	assert.Equal(t, text, Render(got))
}

func TestParse_FormatErrors(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		line   int
		reason string
	}{
		{"first line indented", "  a\nb\n", 1, "first line is indented"},
		{"odd indent", "a\n   b\n", 2, "not a multiple"},
		{"odd dedent", "a\n  b\n    c\n a\n", 4, "not a multiple"},
		{"odd spaces before text", "a\n  b\n     c\n", 3, "not a multiple"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.text)
			require.Error(t, err)
			var fe *FormatError
			require.True(t, errors.As(err, &fe))
			assert.Equal(t, tt.line, fe.Line)
			assert.Contains(t, fe.Reason, tt.reason)
		})
	}
}

func TestParse_BlankAndTabLinesKeepBytes(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Outline
	}{
		{
			"space-only line",
			"p.md\n  para one\n   \n  para two\n",
			Outline{New("p.md", Leaf("para one"), Leaf(" "), Leaf("para two"))},
		},
		{
			"deep space-only line",
			"p.md\n  para\n       \n  next\n",
			Outline{New("p.md", New("para", Leaf("   ")), Leaf("next"))},
		},
		{
			"tab after aligned spaces",
			"list.md\n  list\n    \titem\n",
			Outline{New("list.md", New("list", Leaf("\titem")))},
		},
		{
			"tab after odd spaces",
			"list.md\n  list\n   \titem\n",
			Outline{New("list.md", Leaf("list"), Leaf(" \titem"))},
		},
		{
			"tab at top level",
			"a\n\tb\n",
			Outline{Leaf("a"), Leaf("\tb")},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.text)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got\n%#v", got)
			assert.Equal(t, tt.text, Render(got))
		})
	}
}

func TestParse_EmptyLineKeepsScope(t *testing.T) {
	got, err := Parse("math\n  topology\n\n  algebra\n\nphysics\n\n  mechanics\n\n")
	require.NoError(t, err)

	want := Outline{
		New("math", Leaf("topology"), Leaf(""), Leaf("algebra")),
		Leaf(""),
		New("physics", Leaf(""), Leaf("mechanics")),
		Leaf(""),
	}
	assert.True(t, want.Equal(got), "got\n%#v", got)
}

func TestParse_LeadingEmptyLines(t *testing.T) {
	got, err := Parse("\n\na\n  b\n")
	require.NoError(t, err)
	assert.True(t, Outline{Leaf(""), Leaf(""), New("a", Leaf("b"))}.Equal(got))
}

func TestParse_MaxDepth(t *testing.T) {
	c := Codec{Unit: 2, MaxDepth: 3}

	_, err := c.Parse("a\n  b\n    c\n")
	require.NoError(t, err)

	_, err = c.Parse("a\n  b\n    c\n      d\n")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTooDeep)
}

func TestSplitLines(t *testing.T) {
	assert.Nil(t, SplitLines(""))
	assert.Equal(t, []string{""}, SplitLines("\n"))
	assert.Equal(t, []string{"a", "", "b"}, SplitLines("a\n\nb\n"))
	assert.Equal(t, []string{"a", "b"}, SplitLines("a\r\nb"))
}
