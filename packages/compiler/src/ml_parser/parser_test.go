package ml_parser_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ngtools-go/packages/compiler/src/ml_parser"
)

// humanize flattens a node tree into [kind, name/value, depth] rows.
func humanize(nodes []ml_parser.Node) [][]any {
	var rows [][]any
	var walk func(nodes []ml_parser.Node, depth int)
	walk = func(nodes []ml_parser.Node, depth int) {
		for _, node := range nodes {
			switch n := node.(type) {
			case *ml_parser.Element:
				rows = append(rows, []any{"Element", n.Name, depth})
				for _, attr := range n.Attrs {
					rows = append(rows, []any{"Attribute", attr.Name + "=" + attr.Value, depth + 1})
				}
				walk(n.Children, depth+1)
			case *ml_parser.Text:
				rows = append(rows, []any{"Text", n.Value, depth})
			case *ml_parser.Comment:
				rows = append(rows, []any{"Comment", n.Value, depth})
			}
		}
	}
	walk(nodes, 0)
	return rows
}

func parse(t *testing.T, source string) *ml_parser.ParseTreeResult {
	t.Helper()
	return ml_parser.NewHtmlParser().Parse(source, "TestComp")
}

func TestParseTree(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   [][]any
	}{
		{
			name:   "nested elements",
			source: "<div><span>a</span>b</div>",
			want: [][]any{
				{"Element", "div", 0},
				{"Element", "span", 1},
				{"Text", "a", 2},
				{"Text", "b", 1},
			},
		},
		{
			name:   "attributes",
			source: `<input [value]="name" (input)='onInput($event)' disabled #ref=x>`,
			want: [][]any{
				{"Element", "input", 0},
				{"Attribute", "[value]=name", 1},
				{"Attribute", "(input)=onInput($event)", 1},
				{"Attribute", "disabled=", 1},
				{"Attribute", "#ref=x", 1},
			},
		},
		{
			name:   "void and self closing",
			source: "<br><my-cmp/><p>x</p>",
			want: [][]any{
				{"Element", "br", 0},
				{"Element", "my-cmp", 0},
				{"Element", "p", 0},
				{"Text", "x", 1},
			},
		},
		{
			name:   "comments",
			source: "a<!-- {{ hidden }} -->b",
			want: [][]any{
				{"Text", "a", 0},
				{"Comment", "{{ hidden }}", 0},
				{"Text", "b", 0},
			},
		},
		{
			name:   "less than inside interpolation",
			source: "<div>{{ a < b }}</div>",
			want: [][]any{
				{"Element", "div", 0},
				{"Text", "{{ a < b }}", 1},
			},
		},
		{
			name:   "raw text",
			source: "<script>if (a<b) {}</script>",
			want: [][]any{
				{"Element", "script", 0},
				{"Text", "if (a<b) {}", 1},
			},
		},
		{
			name:   "implicitly closed",
			source: "<div><span>a</div>",
			want: [][]any{
				{"Element", "div", 0},
				{"Element", "span", 1},
				{"Text", "a", 2},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := parse(t, tt.source)
			assert.Empty(t, result.Errors)
			if diff := cmp.Diff(tt.want, humanize(result.RootNodes)); diff != "" {
				t.Errorf("tree mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseSpans(t *testing.T) {
	source := `<div title="hi">text</div>`
	result := parse(t, source)
	require.Empty(t, result.Errors)
	require.Len(t, result.RootNodes, 1)

	div := result.RootNodes[0].(*ml_parser.Element)
	assert.Equal(t, source, div.SourceSpan().String())
	assert.Equal(t, `<div title="hi">`, div.StartSourceSpan.String())
	assert.Equal(t, "</div>", div.EndSourceSpan.String())

	attr := div.Attrs[0]
	assert.Equal(t, "title", attr.KeySpan.String())
	assert.Equal(t, "hi", attr.ValueSpan.String())
	assert.Equal(t, 12, attr.ValueSpan.Start.Offset)
	assert.Equal(t, `title="hi"`, attr.SourceSpan().String())

	text := div.Children[0].(*ml_parser.Text)
	assert.Equal(t, 16, text.SourceSpan().Start.Offset)
	assert.Equal(t, "TestComp@0:16", text.SourceSpan().Start.String())
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		source  string
		message string
	}{
		{source: "<div></span></div>", message: `Unexpected closing tag "span"`},
		{source: "<br></br>", message: `Void elements do not have end tags "br"`},
		{source: "<!-- open", message: `Unexpected character "EOF"`},
	}
	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			result := parse(t, tt.source)
			require.NotEmpty(t, result.Errors)
			assert.Contains(t, result.Errors[0].Msg, tt.message)
		})
	}
}

func TestRemoveWhitespaces(t *testing.T) {
	source := "<div>\n  <span>  a \n\n b  </span>\n  <pre>  keep  </pre>\n</div>"
	result := parse(t, source)
	require.Empty(t, result.Errors)

	nodes := ml_parser.RemoveWhitespaces(result.RootNodes)
	want := [][]any{
		{"Element", "div", 0},
		{"Element", "span", 1},
		{"Text", " a b ", 2},
		{"Element", "pre", 1},
		{"Text", "  keep  ", 2},
	}
	if diff := cmp.Diff(want, humanize(nodes)); diff != "" {
		t.Errorf("tree mismatch (-want +got):\n%s", diff)
	}

	// The collapsed text keeps the span of the literal source.
	span := nodes[0].(*ml_parser.Element).Children[0].(*ml_parser.Element).Children[0].SourceSpan()
	assert.Equal(t, "  a \n\n b  ", span.String())

	// The original tree is untouched.
	original := result.RootNodes[0].(*ml_parser.Element)
	assert.Len(t, original.Children, 5)
}

func TestRemoveWhitespacesPreserveAttr(t *testing.T) {
	result := parse(t, "<div ngPreserveWhitespaces class=a>  x   y  </div>")
	nodes := ml_parser.RemoveWhitespaces(result.RootNodes)
	want := [][]any{
		{"Element", "div", 0},
		{"Attribute", "class=a", 1},
		{"Text", "  x   y  ", 1},
	}
	if diff := cmp.Diff(want, humanize(nodes)); diff != "" {
		t.Errorf("tree mismatch (-want +got):\n%s", diff)
	}
}

func TestInterpolationConfig(t *testing.T) {
	config, err := ml_parser.NewInterpolationConfig([]string{"[[", "]]"})
	require.NoError(t, err)
	assert.False(t, config.IsDefault())

	config, err = ml_parser.NewInterpolationConfig(nil)
	require.NoError(t, err)
	assert.True(t, config.IsDefault())

	for _, markers := range [][]string{{"<%", "%>"}, {"", "}}"}, {"{", "}"}, {"//", "x"}, {"{{"}} {
		_, err := ml_parser.NewInterpolationConfig(markers)
		assert.Error(t, err, "markers %v", markers)
	}
}
