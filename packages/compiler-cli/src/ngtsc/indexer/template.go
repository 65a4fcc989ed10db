package indexer

import (
	"fmt"

	"ngtools-go/packages/compiler/src/expression_parser"
	"ngtools-go/packages/compiler/src/ml_parser"
	"ngtools-go/packages/compiler/src/render3"
	"ngtools-go/packages/compiler/src/util"
)

// IdentifierOptions configures GetTemplateIdentifiers.
type IdentifierOptions struct {
	// InterpolationConfig holds the delimiters the template was parsed with.
	InterpolationConfig ml_parser.InterpolationConfig
}

// IdentifierOption is a function that modifies IdentifierOptions
type IdentifierOption func(*IdentifierOptions)

// WithInterpolationConfig sets the interpolation delimiters
func WithInterpolationConfig(config ml_parser.InterpolationConfig) IdentifierOption {
	return func(o *IdentifierOptions) {
		o.InterpolationConfig = config
	}
}

// scopeFrame is one enclosing node. Anonymous frames (empty name) cover the
// expression of a bound text or bound attribute.
type scopeFrame struct {
	name string
	span *util.ParseSourceSpan
}

// scope is the stack of enclosing frames, outermost first. push never
// modifies the receiver, so sibling subtrees cannot observe each other.
type scope []scopeFrame

func (s scope) push(name string, span *util.ParseSourceSpan) scope {
	next := make(scope, len(s), len(s)+1)
	copy(next, s)
	return append(next, scopeFrame{name: name, span: span})
}

func (s scope) names() []string {
	names := make([]string, 0, len(s))
	for _, frame := range s {
		if frame.name != "" {
			names = append(names, frame.name)
		}
	}
	return names
}

// GetTemplateIdentifiers returns the identifiers read by the bindings of a
// template in document order. Event handlers are not indexed.
func GetTemplateIdentifiers(nodes []render3.Node, opts ...IdentifierOption) []TemplateIdentifier {
	options := IdentifierOptions{InterpolationConfig: ml_parser.DefaultInterpolationConfig}
	for _, opt := range opts {
		opt(&options)
	}
	visitor := &templateVisitor{corrector: newSpanCorrector(options.InterpolationConfig)}
	visitor.visitAll(nodes, nil)
	return visitor.identifiers
}

type templateVisitor struct {
	corrector   *spanCorrector
	identifiers []TemplateIdentifier
}

func (v *templateVisitor) visitAll(nodes []render3.Node, s scope) {
	for _, node := range nodes {
		v.visit(node, s)
	}
}

func (v *templateVisitor) visit(node render3.Node, s scope) {
	switch n := node.(type) {
	case *render3.Element:
		inner := s.push(n.Name, n.SourceSpan())
		for _, input := range n.Inputs {
			v.visit(input, inner)
		}
		v.visitAll(n.Children, inner)
	case *render3.Template:
		name := n.TagName
		if name == "" {
			name = "ng-template"
		}
		inner := s.push(name, n.SourceSpan())
		for _, input := range n.Inputs {
			v.visit(input, inner)
		}
		v.visitAll(n.TemplateAttrs, inner)
		v.visitAll(n.Children, inner)
	case *render3.Content:
		v.visitAll(n.Children, s.push("ng-content", n.SourceSpan()))
	case *render3.BoundText:
		v.addIdentifiers(n.Value, s.push("", n.SourceSpan()))
	case *render3.BoundAttribute:
		v.addIdentifiers(n.Value, s.push("", n.ValueSpan))
	case *render3.Text, *render3.TextAttribute, *render3.BoundEvent, *render3.Reference,
		*render3.Variable, *render3.Comment:
	default:
		panic(fmt.Sprintf("indexer: unhandled template node %T", node))
	}
}

// addIdentifiers records the reads of ast against the innermost frame of s.
// Expressions that failed to parse are skipped.
func (v *templateVisitor) addIdentifiers(ast expression_parser.AST, s scope) {
	if len(s) == 0 {
		panic("indexer: identifiers recorded outside of any scope")
	}
	if withSource, ok := ast.(*expression_parser.ASTWithSource); ok && len(withSource.Errors) > 0 {
		return
	}
	entities := ExpressionEntities(ast)
	if len(entities) == 0 {
		return
	}

	frame := s[len(s)-1]
	start := frame.span.Start.Offset
	names := s.names()
	for _, entity := range v.corrector.correct(frame.span.String(), ast, entities) {
		v.identifiers = append(v.identifiers, TemplateIdentifier{
			Name:  entity.Name,
			Scope: append([]string(nil), names...),
			Span:  entity.Span.ToAbsolute(start),
			File:  frame.span.Start.File,
		})
	}
}
