package indexer

import (
	"fmt"

	"ngtools-go/packages/compiler/src/core"
	"ngtools-go/packages/compiler/src/expression_parser"
	"ngtools-go/packages/compiler/src/ml_parser"
)

// spanCorrector realigns entities with the literal source of the node their
// expression was parsed from. Parsing may have seen whitespace-collapsed
// text, so entity offsets cannot be trusted; the literal text is re-lexed
// and its identifier tokens are zipped against the entities.
type spanCorrector struct {
	lexer  *expression_parser.Lexer
	parser *expression_parser.Parser
	config ml_parser.InterpolationConfig
}

func newSpanCorrector(config ml_parser.InterpolationConfig) *spanCorrector {
	lexer := expression_parser.NewLexer()
	return &spanCorrector{lexer: lexer, parser: expression_parser.NewParser(lexer), config: config}
}

// correct returns entities with spans relative to the start of source.
// Token and entity sequences must agree in length and names.
func (c *spanCorrector) correct(source string, root expression_parser.AST, entities []Entity) []Entity {
	tokens := c.referenceTokens(source, root)
	if len(tokens) != len(entities) {
		panic(fmt.Sprintf("indexer: found %d identifiers in %q but the expression reads %d", len(tokens), source, len(entities)))
	}

	corrected := make([]Entity, len(entities))
	for i, entity := range entities {
		token := tokens[i]
		if token.StrValue != entity.Name {
			panic(fmt.Sprintf("indexer: identifier %q at %d of %q does not match %q", token.StrValue, token.Index, source, entity.Name))
		}
		shift := token.Index - entity.Span.Start
		corrected[i] = Entity{
			Name: entity.Name,
			Span: expression_parser.NewParseSpan(entity.Span.Start+shift, entity.Span.End+shift),
		}
	}
	return corrected
}

// referenceTokens lexes the expression regions of source and keeps the
// tokens that name a read. Token indexes are relative to source.
func (c *spanCorrector) referenceTokens(source string, root expression_parser.AST) []*expression_parser.Token {
	if withSource, ok := root.(*expression_parser.ASTWithSource); ok {
		root = withSource.AST
	}
	if _, ok := root.(*expression_parser.Interpolation); !ok {
		return filterReferences(c.lexer.Tokenize(source), 0)
	}

	var tokens []*expression_parser.Token
	split := c.parser.SplitInterpolation(source, c.config)
	for i, expression := range split.Expressions {
		region := expression_parser.StripComments(expression.Text)
		tokens = append(tokens, filterReferences(c.lexer.Tokenize(region), split.Offsets[i])...)
	}
	return tokens
}

// filterReferences drops identifier tokens that are not reads: pipe names,
// literal map keys and assignment targets. Keywords count as identifiers
// after a property access operator.
func filterReferences(tokens []*expression_parser.Token, base int) []*expression_parser.Token {
	var result []*expression_parser.Token
	for i, token := range tokens {
		var prev, next *expression_parser.Token
		if i > 0 {
			prev = tokens[i-1]
		}
		if i+1 < len(tokens) {
			next = tokens[i+1]
		}

		afterAccess := prev != nil && (prev.IsCharacter(core.CharPERIOD) || prev.IsOperator("?."))
		if !token.IsIdentifier() && !(token.IsKeyword() && afterAccess) {
			continue
		}
		if prev != nil && prev.IsOperator("|") {
			continue
		}
		if prev != nil && next != nil && next.IsCharacter(core.CharCOLON) &&
			(prev.IsCharacter(core.CharLBRACE) || prev.IsCharacter(core.CharCOMMA)) {
			continue
		}
		if next != nil && next.IsOperator("=") {
			continue
		}

		shifted := *token
		shifted.Index += base
		shifted.End += base
		result = append(result, &shifted)
	}
	return result
}
