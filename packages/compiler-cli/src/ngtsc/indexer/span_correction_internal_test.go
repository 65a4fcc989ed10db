package indexer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"ngtools-go/packages/compiler/src/expression_parser"
	"ngtools-go/packages/compiler/src/ml_parser"
)

func TestFilterReferences(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{input: "a = b", want: []string{"b"}},
		{input: "a == b", want: []string{"a", "b"}},
		{input: "x | async", want: []string{"x"}},
		{input: "a || b", want: []string{"a", "b"}},
		{input: "{k: v, w: z}", want: []string{"v", "z"}},
		{input: "{k, w}", want: []string{"k", "w"}},
		{input: "c ? t : f", want: []string{"c", "t", "f"}},
		{input: "null ?? a.null", want: []string{"a", "null"}},
		{input: "typeof a", want: []string{"a"}},
	}
	lexer := expression_parser.NewLexer()
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			var got []string
			for _, token := range filterReferences(lexer.Tokenize(tt.input), 0) {
				got = append(got, token.StrValue)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFilterReferencesShiftsIndexes(t *testing.T) {
	tokens := filterReferences(expression_parser.NewLexer().Tokenize(" ab"), 10)
	if assert.Len(t, tokens, 1) {
		assert.Equal(t, 11, tokens[0].Index)
		assert.Equal(t, 13, tokens[0].End)
	}
}

func TestSpanCorrectorCountMismatch(t *testing.T) {
	corrector := newSpanCorrector(ml_parser.DefaultInterpolationConfig)
	entities := []Entity{{Name: "a", Span: expression_parser.NewParseSpan(0, 1)}}
	assert.Panics(t, func() {
		corrector.correct("a + b", &expression_parser.EmptyExpr{}, entities)
	})
	assert.Equal(t, []Entity{{Name: "a", Span: expression_parser.NewParseSpan(3, 4)}},
		corrector.correct("   a", &expression_parser.EmptyExpr{}, entities))
}

func TestAddIdentifiersRequiresScope(t *testing.T) {
	visitor := &templateVisitor{corrector: newSpanCorrector(ml_parser.DefaultInterpolationConfig)}
	assert.Panics(t, func() {
		visitor.addIdentifiers(&expression_parser.EmptyExpr{}, nil)
	})
}
