package indexer

import (
	"fmt"

	"ngtools-go/packages/compiler/src/expression_parser"
)

// ExpressionEntities returns the identifiers read in ast, in pre-order and
// left to right. A read's receiver is reported before the read itself.
// Duplicates are kept. Spans are relative to the text ast was parsed from.
func ExpressionEntities(ast expression_parser.AST) []Entity {
	offset := ast.SourceSpan().Start - ast.Span().Start
	return visitExpression(ast, offset, nil)
}

func visitExpression(ast expression_parser.AST, offset int, entities []Entity) []Entity {
	switch n := ast.(type) {
	case nil:
		return entities
	case *expression_parser.ASTWithSource:
		return visitExpression(n.AST, offset, entities)
	case *expression_parser.EmptyExpr, *expression_parser.ImplicitReceiver, *expression_parser.ThisReceiver,
		*expression_parser.LiteralPrimitive, *expression_parser.Quote:
		return entities
	case *expression_parser.PropertyRead:
		entities = visitExpression(n.Receiver, offset, entities)
		return append(entities, entityAt(n.Name, n.NameSpan, offset))
	case *expression_parser.SafePropertyRead:
		entities = visitExpression(n.Receiver, offset, entities)
		return append(entities, entityAt(n.Name, n.NameSpan, offset))
	case *expression_parser.PropertyWrite:
		entities = visitExpression(n.Receiver, offset, entities)
		return visitExpression(n.Value, offset, entities)
	case *expression_parser.KeyedRead:
		entities = visitExpression(n.Receiver, offset, entities)
		return visitExpression(n.Key, offset, entities)
	case *expression_parser.SafeKeyedRead:
		entities = visitExpression(n.Receiver, offset, entities)
		return visitExpression(n.Key, offset, entities)
	case *expression_parser.KeyedWrite:
		entities = visitExpression(n.Receiver, offset, entities)
		entities = visitExpression(n.Key, offset, entities)
		return visitExpression(n.Value, offset, entities)
	case *expression_parser.Call:
		if n.Receiver == nil {
			panic("indexer: call expression without a receiver")
		}
		entities = visitExpression(n.Receiver, offset, entities)
		return visitAll(n.Args, offset, entities)
	case *expression_parser.SafeCall:
		if n.Receiver == nil {
			panic("indexer: call expression without a receiver")
		}
		entities = visitExpression(n.Receiver, offset, entities)
		return visitAll(n.Args, offset, entities)
	case *expression_parser.BindingPipe:
		entities = visitExpression(n.Exp, offset, entities)
		return visitAll(n.Args, offset, entities)
	case *expression_parser.Binary:
		entities = visitExpression(n.Left, offset, entities)
		return visitExpression(n.Right, offset, entities)
	case *expression_parser.Conditional:
		entities = visitExpression(n.Condition, offset, entities)
		entities = visitExpression(n.TrueExp, offset, entities)
		return visitExpression(n.FalseExp, offset, entities)
	case *expression_parser.Chain:
		return visitAll(n.Expressions, offset, entities)
	case *expression_parser.Interpolation:
		return visitAll(n.Expressions, offset, entities)
	case *expression_parser.LiteralArray:
		return visitAll(n.Expressions, offset, entities)
	case *expression_parser.LiteralMap:
		return visitAll(n.Values, offset, entities)
	case *expression_parser.PrefixNot:
		return visitExpression(n.Expression, offset, entities)
	case *expression_parser.Unary:
		return visitExpression(n.Expr, offset, entities)
	case *expression_parser.NonNullAssert:
		return visitExpression(n.Expression, offset, entities)
	case *expression_parser.ParenthesizedExpression:
		return visitExpression(n.Expression, offset, entities)
	default:
		panic(fmt.Sprintf("indexer: unhandled expression %T", ast))
	}
}

func visitAll(asts []expression_parser.AST, offset int, entities []Entity) []Entity {
	for _, ast := range asts {
		entities = visitExpression(ast, offset, entities)
	}
	return entities
}

func entityAt(name string, span expression_parser.AbsoluteSourceSpan, offset int) Entity {
	return Entity{Name: name, Span: expression_parser.NewParseSpan(span.Start-offset, span.End-offset)}
}
