package expression_parser_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ngtools-go/packages/compiler/src/expression_parser"
	"ngtools-go/packages/compiler/src/ml_parser"
)

func newParser() *expression_parser.Parser {
	return expression_parser.NewParser(expression_parser.NewLexer())
}

func parseBinding(input string) *expression_parser.ASTWithSource {
	return newParser().ParseBinding(input, nil, 0)
}

func parseAction(input string) *expression_parser.ASTWithSource {
	return newParser().ParseAction(input, nil, 0)
}

func unparse(ast expression_parser.AST) string {
	return expression_parser.Unparse(ast, ml_parser.DefaultInterpolationConfig)
}

func TestParseBinding(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{input: "a", want: "a"},
		{input: "a.b.c", want: "a.b.c"},
		{input: "a?.b", want: "a?.b"},
		{input: "a[b]", want: "a[b]"},
		{input: "a?.[0]", want: "a?.[0]"},
		{input: "a(1, 2)", want: "a(1, 2)"},
		{input: "a?.(x)", want: "a?.(x)"},
		{input: "a ? b : c", want: "a ? b : c"},
		{input: "a | p:1:x", want: "(a | p:1:x)"},
		{input: "{a: 1, 'b': 2}", want: `{a: 1, "b": 2}`},
		{input: "{a}", want: "{a: a}"},
		{input: "[1, 'x']", want: `[1, "x"]`},
		{input: "!a", want: "!a"},
		{input: "-a", want: "-a"},
		{input: "a!", want: "a!"},
		{input: "(a + b) * c", want: "(a + b) * c"},
		{input: "a + b * c", want: "a + b * c"},
		{input: "true && null", want: "true && null"},
		{input: "undefined ?? 1.5", want: "undefined ?? 1.5"},
		{input: "this.a", want: "a"},
		{input: "a === b || c >= d", want: "a === b || c >= d"},
		{input: "a // trailing comment", want: "a"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			ast := parseBinding(tt.input)
			require.Empty(t, ast.Errors)
			assert.Equal(t, tt.want, unparse(ast))
		})
	}
}

func TestParseAction(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{input: "a = 1", want: "a = 1"},
		{input: "a.b = c", want: "a.b = c"},
		{input: "a[0] = b; c()", want: "a[0] = b; c()"},
		{input: "a += 1", want: "a += 1"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			ast := parseAction(tt.input)
			require.Empty(t, ast.Errors)
			assert.Equal(t, tt.want, unparse(ast))
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		ast     *expression_parser.ASTWithSource
		message string
	}{
		{name: "assignment in binding", ast: parseBinding("a = 1"), message: "Bindings cannot contain assignments"},
		{name: "chain in binding", ast: parseBinding("a; b"), message: "Binding expression cannot contain chained expression"},
		{name: "pipe in action", ast: parseAction("a | b"), message: "Cannot have a pipe in an action expression"},
		{name: "interpolation in binding", ast: parseBinding("{{a}}"), message: "Got interpolation ({{}}) where expression was expected"},
		{name: "missing paren", ast: parseBinding("(a"), message: "Missing closing parentheses"},
		{name: "incomplete conditional", ast: parseBinding("a ? b"), message: "requires all 3 expressions"},
		{name: "private identifier", ast: parseBinding("#a"), message: "Private identifiers are not supported. Unexpected private identifier: #a"},
		{name: "private member", ast: parseBinding("a.#b"), message: "Unexpected private identifier: #b, expected identifier or keyword"},
		{name: "missing member name", ast: parseBinding("a."), message: "Unexpected end of input, expected identifier or keyword"},
		{name: "lexer error", ast: parseBinding("a ~ b"), message: "Lexer Error: Unexpected character [~]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NotEmpty(t, tt.ast.Errors)
			var messages []string
			for _, err := range tt.ast.Errors {
				messages = append(messages, err.Msg)
			}
			assert.Contains(t, strings.Join(messages, "\n"), tt.message)
		})
	}
}

func TestParseQuote(t *testing.T) {
	ast := parseBinding("javascript:alert(1)")
	quote, ok := ast.AST.(*expression_parser.Quote)
	require.True(t, ok, "expected a quote, got %T", ast.AST)
	assert.Equal(t, "javascript", quote.Prefix)
	assert.Equal(t, "alert(1)", quote.UninterpretedExpression)
	assert.Equal(t, "javascript:alert(1)", unparse(ast))

	// A prefix that is not an identifier is parsed normally.
	ast = parseBinding("a ? b : c")
	_, ok = ast.AST.(*expression_parser.Conditional)
	assert.True(t, ok)
}

func TestPropertyReadSpans(t *testing.T) {
	ast := newParser().ParseBinding("a.bc", nil, 10)
	read, ok := ast.AST.(*expression_parser.PropertyRead)
	require.True(t, ok)
	assert.Equal(t, expression_parser.NewParseSpan(0, 4), read.Span())
	assert.Equal(t, expression_parser.NewAbsoluteSourceSpan(10, 14), read.SourceSpan())
	assert.Equal(t, expression_parser.NewAbsoluteSourceSpan(12, 14), read.NameSpan)

	receiver, ok := read.Receiver.(*expression_parser.PropertyRead)
	require.True(t, ok)
	assert.Equal(t, expression_parser.NewAbsoluteSourceSpan(10, 11), receiver.NameSpan)
}

func TestParseInterpolation(t *testing.T) {
	p := newParser()

	t.Run("no interpolation", func(t *testing.T) {
		assert.Nil(t, p.ParseInterpolation("plain text", nil, 0, ml_parser.DefaultInterpolationConfig))
	})

	t.Run("spans relative to input", func(t *testing.T) {
		ast := p.ParseInterpolation("a {{ b }} c", nil, 100, ml_parser.DefaultInterpolationConfig)
		require.NotNil(t, ast)
		interp, ok := ast.AST.(*expression_parser.Interpolation)
		require.True(t, ok)
		if diff := cmp.Diff([]string{"a ", " c"}, interp.Strings); diff != "" {
			t.Errorf("strings mismatch (-want +got):\n%s", diff)
		}
		require.Len(t, interp.Expressions, 1)
		read := interp.Expressions[0].(*expression_parser.PropertyRead)
		assert.Equal(t, expression_parser.NewParseSpan(5, 6), read.Span())
		assert.Equal(t, expression_parser.NewAbsoluteSourceSpan(105, 106), read.NameSpan)
		assert.Equal(t, "a {{ b }} c", unparse(ast))
	})

	t.Run("quoted end marker", func(t *testing.T) {
		ast := p.ParseInterpolation("{{ '}}' + a }}", nil, 0, ml_parser.DefaultInterpolationConfig)
		require.NotNil(t, ast)
		assert.Empty(t, ast.Errors)
		assert.Equal(t, `{{ "}}" + a }}`, unparse(ast))
	})

	t.Run("blank expression", func(t *testing.T) {
		ast := p.ParseInterpolation("{{ }}", nil, 0, ml_parser.DefaultInterpolationConfig)
		require.NotNil(t, ast)
		require.NotEmpty(t, ast.Errors)
		assert.Contains(t, ast.Errors[0].Msg, "Blank expressions are not allowed")
	})

	t.Run("custom markers", func(t *testing.T) {
		config := ml_parser.InterpolationConfig{Start: "[[", End: "]]"}
		ast := p.ParseInterpolation("x [[y]]", nil, 0, config)
		require.NotNil(t, ast)
		assert.Equal(t, "x [[ y ]]", expression_parser.Unparse(ast, config))
		assert.Equal(t, "x {{ y }}", unparse(ast))
	})

	t.Run("unterminated", func(t *testing.T) {
		split := p.SplitInterpolation("a {{ b", ml_parser.DefaultInterpolationConfig)
		assert.Empty(t, split.Expressions)
		require.Len(t, split.Strings, 1)
		assert.Equal(t, "a {{ b", split.Strings[0].Text)
	})
}

func TestParseTemplateBindings(t *testing.T) {
	result := newParser().ParseTemplateBindings("ngFor", "let item of items; trackBy: byId", nil, 1, 10)
	require.Empty(t, result.Errors)
	require.Len(t, result.TemplateBindings, 4)

	type binding struct {
		Key   string
		Value string
		IsVar bool
	}
	var got []binding
	for _, b := range result.TemplateBindings {
		switch b := b.(type) {
		case *expression_parser.VariableBinding:
			value := ""
			if b.Value != nil {
				value = b.Value.Source
			}
			got = append(got, binding{Key: b.Key.Source, Value: value, IsVar: true})
		case *expression_parser.ExpressionBinding:
			value := ""
			if b.Value != nil {
				value = b.Value.Source
			}
			got = append(got, binding{Key: b.Key.Source, Value: value})
		}
	}
	want := []binding{
		{Key: "ngFor"},
		{Key: "item", IsVar: true},
		{Key: "ngForOf", Value: "items"},
		{Key: "ngForTrackBy", Value: "byId"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("bindings mismatch (-want +got):\n%s", diff)
	}

	of := result.TemplateBindings[2].(*expression_parser.ExpressionBinding)
	assert.Equal(t, 22, of.Value.AbsoluteOffset)
	assert.Equal(t, expression_parser.NewAbsoluteSourceSpan(22, 27), of.Value.AST.SourceSpan())
}

func TestParseTemplateBindingsAs(t *testing.T) {
	result := newParser().ParseTemplateBindings("ngIf", "cond as c", nil, 0, 0)
	require.Empty(t, result.Errors)
	require.Len(t, result.TemplateBindings, 2)

	expr := result.TemplateBindings[0].(*expression_parser.ExpressionBinding)
	assert.Equal(t, "ngIf", expr.Key.Source)
	assert.Equal(t, "cond", expr.Value.Source)

	variable := result.TemplateBindings[1].(*expression_parser.VariableBinding)
	assert.Equal(t, "c", variable.Key.Source)
	require.NotNil(t, variable.Value)
	assert.Equal(t, "ngIf", variable.Value.Source)
}
