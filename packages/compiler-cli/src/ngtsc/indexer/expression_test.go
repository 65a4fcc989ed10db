package indexer_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ngtools-go/packages/compiler-cli/src/ngtsc/indexer"
	"ngtools-go/packages/compiler/src/expression_parser"
	"ngtools-go/packages/compiler/src/util"
)

func entity(name string, start int) indexer.Entity {
	return indexer.Entity{Name: name, Span: expression_parser.NewParseSpan(start, start+len(name))}
}

func TestExpressionEntities(t *testing.T) {
	tests := []struct {
		input string
		want  []indexer.Entity
	}{
		{input: "'s' + 1 + true"},
		{input: "this.a", want: []indexer.Entity{entity("a", 5)}},
		{input: "a.b(c) + d[e]", want: []indexer.Entity{
			entity("a", 0), entity("b", 2), entity("c", 4), entity("d", 9), entity("e", 11),
		}},
		{input: "a + a", want: []indexer.Entity{entity("a", 0), entity("a", 4)}},
		{input: "x | p:y", want: []indexer.Entity{entity("x", 0), entity("y", 6)}},
		{input: "c ? [t] : {k: f}", want: []indexer.Entity{entity("c", 0), entity("t", 5), entity("f", 14)}},
		{input: "!a?.b!", want: []indexer.Entity{entity("a", 1), entity("b", 4)}},
	}
	parser := expression_parser.NewParser(expression_parser.NewLexer())
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			file := util.NewParseSourceFile("0123456789"+tt.input, "TestComp.html")
			ast := parser.ParseBinding(tt.input, file.SpanAt(10, len(file.Content)), 10)
			require.Empty(t, ast.Errors)
			if diff := cmp.Diff(tt.want, indexer.ExpressionEntities(ast)); diff != "" {
				t.Errorf("ExpressionEntities mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestExpressionEntitiesCallWithoutReceiver(t *testing.T) {
	assert.Panics(t, func() {
		indexer.ExpressionEntities(&expression_parser.Call{})
	})
}
