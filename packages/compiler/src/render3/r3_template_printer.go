package render3

import (
	"fmt"
	"strings"

	"ngtools-go/packages/compiler/src/expression_parser"
	"ngtools-go/packages/compiler/src/ml_parser"
)

const printerIndent = "  "

// PrintDesugaredTemplate renders nodes the way the compiler sees them:
// `*dir` attributes become explicit `<ng-template>` wrappers, two-way
// bindings become a property and an event binding, and interpolations are
// re-rendered from their expression trees.
func PrintDesugaredTemplate(nodes []Node) string {
	return NewTemplatePrinter(ml_parser.DefaultInterpolationConfig).Print(nodes)
}

// TemplatePrinter renders R3 nodes as markup. Expressions are unparsed
// with the printer's interpolation markers.
type TemplatePrinter struct {
	config ml_parser.InterpolationConfig
}

// NewTemplatePrinter creates a new TemplatePrinter
func NewTemplatePrinter(config ml_parser.InterpolationConfig) *TemplatePrinter {
	return &TemplatePrinter{config: config}
}

// Print renders nodes, one top-level node per line group.
func (p *TemplatePrinter) Print(nodes []Node) string {
	var lines []string
	for _, node := range nodes {
		lines = p.printNode(node, 0, lines)
	}
	return strings.Join(lines, "\n")
}

func (p *TemplatePrinter) printNode(node Node, depth int, lines []string) []string {
	indent := strings.Repeat(printerIndent, depth)
	switch n := node.(type) {
	case *Element:
		attrs := p.formatAttributes(n.Attributes, n.Inputs, n.Outputs, n.References, nil)
		return p.printTag(n.Name, attrs, n.Children, n.EndSourceSpan == nil, depth, lines)
	case *Template:
		var attrs []string
		for _, attr := range n.TemplateAttrs {
			attrs = append(attrs, p.formatTemplateAttr(attr))
		}
		textAttrs := n.Attributes
		if n.TagName != "ng-template" {
			// hoisted from the wrapped element, which prints them itself
			textAttrs = nil
		}
		attrs = append(attrs, p.formatAttributes(textAttrs, n.Inputs, n.Outputs, n.References, n.Variables)...)
		return p.printTag("ng-template", attrs, n.Children, n.EndSourceSpan == nil, depth, lines)
	case *Content:
		attrs := p.formatAttributes(n.Attributes, nil, nil, nil, nil)
		return p.printTag("ng-content", attrs, n.Children, n.EndSourceSpan == nil, depth, lines)
	case *Text:
		return append(lines, indent+n.Value)
	case *BoundText:
		return append(lines, indent+expression_parser.Unparse(n.Value, p.config))
	case *Comment:
		return append(lines, indent+"<!--"+n.Value+"-->")
	case *TextAttribute:
		return append(lines, indent+p.FormatTextAttribute(n))
	case *BoundAttribute:
		return append(lines, indent+p.FormatBoundAttribute(n))
	case *BoundEvent:
		return append(lines, indent+p.FormatBoundEvent(n))
	case *Reference:
		return append(lines, indent+p.FormatReference(n))
	case *Variable:
		return append(lines, indent+p.FormatVariable(n))
	default:
		panic(fmt.Sprintf("template printer: unhandled node %T", node))
	}
}

// printTag prints an open tag, the children one level deeper and the close
// tag. A childless tag without an end tag in the source is printed as void.
func (p *TemplatePrinter) printTag(name string, attrs []string, children []Node, noEndTag bool, depth int, lines []string) []string {
	indent := strings.Repeat(printerIndent, depth)
	open := "<" + name
	if len(attrs) > 0 {
		open += " " + strings.Join(attrs, " ")
	}
	if len(children) == 0 {
		if noEndTag {
			return append(lines, indent+open+"/>")
		}
		return append(lines, indent+open+"></"+name+">")
	}
	lines = append(lines, indent+open+">")
	for _, child := range children {
		lines = p.printNode(child, depth+1, lines)
	}
	return append(lines, indent+"</"+name+">")
}

func (p *TemplatePrinter) formatAttributes(
	attributes []*TextAttribute,
	inputs []*BoundAttribute,
	outputs []*BoundEvent,
	references []*Reference,
	variables []*Variable,
) []string {
	var result []string
	for _, attr := range attributes {
		result = append(result, p.FormatTextAttribute(attr))
	}
	for _, input := range inputs {
		result = append(result, p.FormatBoundAttribute(input))
	}
	for _, output := range outputs {
		result = append(result, p.FormatBoundEvent(output))
	}
	for _, ref := range references {
		result = append(result, p.FormatReference(ref))
	}
	for _, variable := range variables {
		result = append(result, p.FormatVariable(variable))
	}
	return result
}

func (p *TemplatePrinter) formatTemplateAttr(attr Node) string {
	switch a := attr.(type) {
	case *TextAttribute:
		return p.FormatTextAttribute(a)
	case *BoundAttribute:
		return p.FormatBoundAttribute(a)
	default:
		panic(fmt.Sprintf("template printer: unexpected template attribute %T", attr))
	}
}

func quoteAttrValue(value string) string {
	return `"` + strings.ReplaceAll(value, `"`, "&quot;") + `"`
}

// FormatTextAttribute renders `name="value"`, or `name` without a value.
func (p *TemplatePrinter) FormatTextAttribute(attr *TextAttribute) string {
	if attr.Value == "" {
		return attr.Name
	}
	return attr.Name + "=" + quoteAttrValue(attr.Value)
}

// FormatBoundAttribute renders `[name]="expr"`. Two-way bindings print as
// their property half.
func (p *TemplatePrinter) FormatBoundAttribute(attr *BoundAttribute) string {
	name := attr.Name
	switch attr.Type {
	case BindingTypeAttribute:
		name = "attr." + name
	case BindingTypeClass:
		name = "class." + name
	case BindingTypeStyle:
		name = "style." + name
		if attr.Unit != "" {
			name += "." + attr.Unit
		}
	}
	return "[" + name + "]=" + quoteAttrValue(expression_parser.Unparse(attr.Value, p.config))
}

// FormatBoundEvent renders `(name)="handler"`
func (p *TemplatePrinter) FormatBoundEvent(event *BoundEvent) string {
	name := event.Name
	if event.Target != "" {
		name = event.Target + ":" + name
	}
	return "(" + name + ")=" + quoteAttrValue(expression_parser.Unparse(event.Handler, p.config))
}

// FormatReference renders `#name` or `#name="value"`
func (p *TemplatePrinter) FormatReference(ref *Reference) string {
	if ref.Value == "" {
		return "#" + ref.Name
	}
	return "#" + ref.Name + "=" + quoteAttrValue(ref.Value)
}

// FormatVariable renders `let-name` or `let-name="value"`
func (p *TemplatePrinter) FormatVariable(variable *Variable) string {
	if variable.Value == "" || variable.Value == implicitValue {
		return "let-" + variable.Name
	}
	return "let-" + variable.Name + "=" + quoteAttrValue(variable.Value)
}
