package expression_parser

import (
	"fmt"
	"strconv"
	"strings"

	"ngtools-go/packages/compiler/src/ml_parser"
)

// Unparse reconstructs expression text from ast. Interpolations are
// rendered with the markers of config. The output is canonical and need not
// match the original source byte for byte.
func Unparse(ast AST, config ml_parser.InterpolationConfig) string {
	u := &unparser{config: config}
	u.visit(ast)
	return u.expression.String()
}

type unparser struct {
	expression strings.Builder
	config     ml_parser.InterpolationConfig
}

func (u *unparser) write(s string) {
	u.expression.WriteString(s)
}

func (u *unparser) visitAll(asts []AST, separator string) {
	for i, ast := range asts {
		if i > 0 {
			u.write(separator)
		}
		u.visit(ast)
	}
}

func isImplicit(ast AST) bool {
	switch ast.(type) {
	case *ImplicitReceiver, *ThisReceiver:
		return true
	}
	return false
}

func (u *unparser) visit(ast AST) {
	switch ast := ast.(type) {
	case *ASTWithSource:
		u.visit(ast.AST)
	case *EmptyExpr, *ImplicitReceiver, *ThisReceiver:
		// nothing to write
	case *Chain:
		u.visitAll(ast.Expressions, "; ")
	case *Conditional:
		u.visit(ast.Condition)
		u.write(" ? ")
		u.visit(ast.TrueExp)
		u.write(" : ")
		u.visit(ast.FalseExp)
	case *PropertyRead:
		u.visit(ast.Receiver)
		if !isImplicit(ast.Receiver) {
			u.write(".")
		}
		u.write(ast.Name)
	case *PropertyWrite:
		u.visit(ast.Receiver)
		if !isImplicit(ast.Receiver) {
			u.write(".")
		}
		u.write(ast.Name)
		u.write(" = ")
		u.visit(ast.Value)
	case *SafePropertyRead:
		u.visit(ast.Receiver)
		u.write("?.")
		u.write(ast.Name)
	case *KeyedRead:
		u.visit(ast.Receiver)
		u.write("[")
		u.visit(ast.Key)
		u.write("]")
	case *KeyedWrite:
		u.visit(ast.Receiver)
		u.write("[")
		u.visit(ast.Key)
		u.write("] = ")
		u.visit(ast.Value)
	case *SafeKeyedRead:
		u.visit(ast.Receiver)
		u.write("?.[")
		u.visit(ast.Key)
		u.write("]")
	case *BindingPipe:
		u.write("(")
		u.visit(ast.Exp)
		u.write(" | ")
		u.write(ast.Name)
		for _, arg := range ast.Args {
			u.write(":")
			u.visit(arg)
		}
		u.write(")")
	case *LiteralPrimitive:
		u.write(formatPrimitive(ast.Value))
	case *LiteralArray:
		u.write("[")
		u.visitAll(ast.Expressions, ", ")
		u.write("]")
	case *LiteralMap:
		u.write("{")
		for i, key := range ast.Keys {
			if i > 0 {
				u.write(", ")
			}
			if key.Quoted {
				u.write(strconv.Quote(key.Key))
			} else {
				u.write(key.Key)
			}
			u.write(": ")
			u.visit(ast.Values[i])
		}
		u.write("}")
	case *Interpolation:
		for i, s := range ast.Strings {
			u.write(s)
			if i < len(ast.Expressions) {
				u.write(u.config.Start + " ")
				u.visit(ast.Expressions[i])
				u.write(" " + u.config.End)
			}
		}
	case *Binary:
		u.visit(ast.Left)
		u.write(" " + ast.Operation + " ")
		u.visit(ast.Right)
	case *Unary:
		u.write(ast.Operator)
		u.visit(ast.Expr)
	case *PrefixNot:
		u.write("!")
		u.visit(ast.Expression)
	case *NonNullAssert:
		u.visit(ast.Expression)
		u.write("!")
	case *Call:
		u.visit(ast.Receiver)
		u.write("(")
		u.visitAll(ast.Args, ", ")
		u.write(")")
	case *SafeCall:
		u.visit(ast.Receiver)
		u.write("?.(")
		u.visitAll(ast.Args, ", ")
		u.write(")")
	case *ParenthesizedExpression:
		u.write("(")
		u.visit(ast.Expression)
		u.write(")")
	case *Quote:
		u.write(ast.Prefix + ":" + ast.UninterpretedExpression)
	default:
		panic(fmt.Sprintf("unparser: unhandled expression %T", ast))
	}
}

func formatPrimitive(value any) string {
	switch v := value.(type) {
	case nil:
		return "null"
	case undefinedValue:
		return "undefined"
	case string:
		return strconv.Quote(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}
