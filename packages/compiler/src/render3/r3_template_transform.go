package render3

import (
	"fmt"
	"regexp"
	"strings"

	"ngtools-go/packages/compiler/src/expression_parser"
	"ngtools-go/packages/compiler/src/ml_parser"
	"ngtools-go/packages/compiler/src/util"
)

const (
	// Group 1 = "bind-"
	kwBindIdx = 1
	// Group 2 = "let-"
	kwLetIdx = 2
	// Group 3 = "ref-/#"
	kwRefIdx = 3
	// Group 4 = "on-"
	kwOnIdx = 4
	// Group 5 = "bindon-"
	kwBindonIdx = 5
	// Group 6 = the identifier after "bind-", "let-", "ref-/#", "on-" or "bindon-"
	identifierIdx = 6

	templateAttrPrefix = "*"
	implicitValue      = "$implicit"
	twoWayEventSuffix  = "Change"
)

var bindNameRegexp = regexp.MustCompile(`^(?:(bind-)|(let-)|(ref-|#)|(on-)|(bindon-))(.*)$`)

// htmlAstToR3 converts an HTML tree into R3 nodes. Errors are collected and
// never abort the conversion.
type htmlAstToR3 struct {
	file   *util.ParseSourceFile
	parser *expression_parser.Parser
	config ml_parser.InterpolationConfig

	errors             []*util.ParseError
	ngContentSelectors []string
	commentNodes       []*Comment
}

func newHtmlAstToR3(file *util.ParseSourceFile, config ml_parser.InterpolationConfig) *htmlAstToR3 {
	return &htmlAstToR3{
		file:   file,
		parser: expression_parser.NewParser(expression_parser.NewLexer()),
		config: config,
	}
}

func (t *htmlAstToR3) visitAll(nodes []ml_parser.Node) []Node {
	var result []Node
	for _, node := range nodes {
		if n := t.visit(node); n != nil {
			result = append(result, n)
		}
	}
	return result
}

func (t *htmlAstToR3) visit(node ml_parser.Node) Node {
	switch n := node.(type) {
	case *ml_parser.Element:
		return t.visitElement(n)
	case *ml_parser.Text:
		return t.visitText(n)
	case *ml_parser.Comment:
		t.commentNodes = append(t.commentNodes, NewComment(n.Value, n.Span))
		return nil
	default:
		return nil
	}
}

func (t *htmlAstToR3) visitText(text *ml_parser.Text) Node {
	ast := t.parser.ParseInterpolation(text.Value, text.Span, text.Span.Start.Offset, t.config)
	if ast == nil {
		return NewText(text.Value, text.Span)
	}
	t.errors = append(t.errors, ast.Errors...)
	return NewBoundText(ast, text.Span)
}

// parsedAttributes gathers the categorised attributes of one element.
type parsedAttributes struct {
	attributes []*TextAttribute
	inputs     []*BoundAttribute
	outputs    []*BoundEvent
	references []*Reference
	variables  []*Variable

	templateAttrs     []Node
	templateVariables []*Variable
	hasTemplate       bool
}

func (t *htmlAstToR3) visitElement(element *ml_parser.Element) Node {
	name := strings.ToLower(element.Name)
	if name == "script" || name == "style" {
		return nil
	}

	isTemplateElement := ml_parser.IsNgTemplate(element.Name)
	parsed := &parsedAttributes{}
	for _, attr := range element.Attrs {
		if strings.HasPrefix(attr.Name, templateAttrPrefix) {
			if parsed.hasTemplate {
				t.reportError(attr.Span, "Can't have multiple template bindings on one element. Use only one attribute prefixed with *")
				continue
			}
			parsed.hasTemplate = true
			t.parseInlineTemplateBinding(attr, parsed)
			continue
		}
		t.parseAttribute(isTemplateElement, attr, parsed)
	}

	children := t.visitAll(element.Children)

	var result Node
	switch {
	case ml_parser.IsNgContent(element.Name):
		selector := "*"
		for _, attr := range parsed.attributes {
			if strings.ToLower(attr.Name) == "select" && strings.TrimSpace(attr.Value) != "" {
				selector = strings.TrimSpace(attr.Value)
			}
		}
		t.ngContentSelectors = append(t.ngContentSelectors, selector)
		result = &Content{
			Selector:        selector,
			Attributes:      parsed.attributes,
			Children:        children,
			IsSelfClosing:   element.IsSelfClosing,
			Span:            element.Span,
			StartSourceSpan: element.StartSourceSpan,
			EndSourceSpan:   element.EndSourceSpan,
		}
	case isTemplateElement:
		result = &Template{
			TagName:         element.Name,
			Attributes:      parsed.attributes,
			Inputs:          parsed.inputs,
			Outputs:         parsed.outputs,
			Children:        children,
			References:      parsed.references,
			Variables:       parsed.variables,
			IsSelfClosing:   element.IsSelfClosing,
			Span:            element.Span,
			StartSourceSpan: element.StartSourceSpan,
			EndSourceSpan:   element.EndSourceSpan,
		}
	default:
		result = &Element{
			Name:            element.Name,
			Attributes:      parsed.attributes,
			Inputs:          parsed.inputs,
			Outputs:         parsed.outputs,
			Children:        children,
			References:      parsed.references,
			IsSelfClosing:   element.IsSelfClosing,
			Span:            element.Span,
			StartSourceSpan: element.StartSourceSpan,
			EndSourceSpan:   element.EndSourceSpan,
		}
	}

	if !parsed.hasTemplate {
		return result
	}

	// `*dir` wraps the element in an implicit template. Static attributes are
	// hoisted so selectors can match on the template.
	tagName := ""
	var hoisted []*TextAttribute
	if el, ok := result.(*Element); ok {
		tagName = el.Name
		hoisted = el.Attributes
	}
	return &Template{
		TagName:         tagName,
		Attributes:      hoisted,
		TemplateAttrs:   parsed.templateAttrs,
		Children:        []Node{result},
		Variables:       parsed.templateVariables,
		Span:            element.Span,
		StartSourceSpan: element.StartSourceSpan,
		EndSourceSpan:   element.EndSourceSpan,
	}
}

// normalizeAttributeName strips the `data-` prefix
func normalizeAttributeName(attrName string) string {
	if strings.HasPrefix(strings.ToLower(attrName), "data-") {
		return attrName[len("data-"):]
	}
	return attrName
}

// keySpanAfter returns the span of the identifier that follows a prefix of
// prefixLen characters in the attribute key.
func keySpanAfter(attr *ml_parser.Attribute, prefixLen int, identifier string) *util.ParseSourceSpan {
	start := attr.KeySpan.Start.MoveBy(prefixLen)
	end := start.MoveBy(len(identifier))
	return util.NewParseSourceSpan(start, end, start, &identifier)
}

func (t *htmlAstToR3) parseAttribute(isTemplateElement bool, attr *ml_parser.Attribute, parsed *parsedAttributes) {
	name := normalizeAttributeName(attr.Name)
	value := attr.Value
	srcSpan := attr.Span
	prefixLen := len(attr.Name) - len(name)

	if match := bindNameRegexp.FindStringSubmatch(name); match != nil {
		identifier := match[identifierIdx]
		switch {
		case match[kwBindIdx] != "":
			keySpan := keySpanAfter(attr, prefixLen+len(match[kwBindIdx]), identifier)
			t.parsePropertyBinding(identifier, value, attr, keySpan, parsed)
		case match[kwLetIdx] != "":
			keySpan := keySpanAfter(attr, prefixLen+len(match[kwLetIdx]), identifier)
			if isTemplateElement {
				t.parseVariable(identifier, value, srcSpan, keySpan, attr.ValueSpan, &parsed.variables)
			} else {
				t.reportError(srcSpan, `"let-" is only supported on ng-template elements.`)
			}
		case match[kwRefIdx] != "":
			keySpan := keySpanAfter(attr, prefixLen+len(match[kwRefIdx]), identifier)
			t.parseReference(identifier, value, srcSpan, keySpan, attr.ValueSpan, &parsed.references)
		case match[kwOnIdx] != "":
			keySpan := keySpanAfter(attr, prefixLen+len(match[kwOnIdx]), identifier)
			t.parseEvent(identifier, value, attr, keySpan, parsed)
		case match[kwBindonIdx] != "":
			keySpan := keySpanAfter(attr, prefixLen+len(match[kwBindonIdx]), identifier)
			t.parsePropertyBinding(identifier, value, attr, keySpan, parsed)
			parsed.inputs[len(parsed.inputs)-1].Type = BindingTypeTwoWay
			t.parseTwoWayEvent(identifier, value, attr, keySpan, parsed)
		}
		return
	}

	switch {
	case strings.HasPrefix(name, "[(") && strings.HasSuffix(name, ")]"):
		identifier := name[2 : len(name)-2]
		keySpan := keySpanAfter(attr, prefixLen+2, identifier)
		t.parsePropertyBinding(identifier, value, attr, keySpan, parsed)
		parsed.inputs[len(parsed.inputs)-1].Type = BindingTypeTwoWay
		t.parseTwoWayEvent(identifier, value, attr, keySpan, parsed)
		return
	case strings.HasPrefix(name, "[") && strings.HasSuffix(name, "]"):
		identifier := name[1 : len(name)-1]
		keySpan := keySpanAfter(attr, prefixLen+1, identifier)
		t.parsePropertyBinding(identifier, value, attr, keySpan, parsed)
		return
	case strings.HasPrefix(name, "(") && strings.HasSuffix(name, ")"):
		identifier := name[1 : len(name)-1]
		keySpan := keySpanAfter(attr, prefixLen+1, identifier)
		t.parseEvent(identifier, value, attr, keySpan, parsed)
		return
	}

	if attr.ValueSpan != nil {
		ast := t.parser.ParseInterpolation(value, attr.ValueSpan, attr.ValueSpan.Start.Offset, t.config)
		if ast != nil {
			t.errors = append(t.errors, ast.Errors...)
			propName, bindingType, unit := parsePropertyName(name)
			parsed.inputs = append(parsed.inputs, NewBoundAttribute(propName, bindingType, ast, unit, srcSpan, attr.KeySpan, attr.ValueSpan))
			return
		}
	}
	parsed.attributes = append(parsed.attributes, NewTextAttribute(attr.Name, value, srcSpan, attr.KeySpan, attr.ValueSpan))
}

// parsePropertyName splits `attr.x`, `class.x` and `style.x.unit` bindings.
func parsePropertyName(name string) (string, BindingType, string) {
	parts := strings.Split(name, ".")
	if len(parts) > 1 {
		switch parts[0] {
		case "attr":
			return strings.Join(parts[1:], "."), BindingTypeAttribute, ""
		case "class":
			return parts[1], BindingTypeClass, ""
		case "style":
			unit := ""
			if len(parts) > 2 {
				unit = parts[2]
			}
			return parts[1], BindingTypeStyle, unit
		}
	}
	return name, BindingTypeProperty, ""
}

// valueSpanOrKey is the span expressions of attr are parsed against. A
// binding without a value is parsed as empty text at the end of the key.
func valueSpanOrKey(attr *ml_parser.Attribute) *util.ParseSourceSpan {
	if attr.ValueSpan != nil {
		return attr.ValueSpan
	}
	return util.NewParseSourceSpan(attr.KeySpan.End, attr.KeySpan.End, nil, nil)
}

func (t *htmlAstToR3) parsePropertyBinding(identifier, value string, attr *ml_parser.Attribute, keySpan *util.ParseSourceSpan, parsed *parsedAttributes) {
	if identifier == "" {
		t.reportError(attr.Span, "Property name is missing in binding")
	}
	valueSpan := valueSpanOrKey(attr)
	ast := t.parser.ParseBinding(value, valueSpan, valueSpan.Start.Offset)
	t.errors = append(t.errors, ast.Errors...)
	propName, bindingType, unit := parsePropertyName(identifier)
	parsed.inputs = append(parsed.inputs, NewBoundAttribute(propName, bindingType, ast, unit, attr.Span, keySpan, valueSpan))
}

// splitAtColon splits `window:resize` into target and name
func splitAtColon(name string) (string, string) {
	if idx := strings.IndexByte(name, ':'); idx != -1 {
		return strings.TrimSpace(name[:idx]), strings.TrimSpace(name[idx+1:])
	}
	return "", name
}

func (t *htmlAstToR3) parseEvent(identifier, value string, attr *ml_parser.Attribute, keySpan *util.ParseSourceSpan, parsed *parsedAttributes) {
	if identifier == "" {
		t.reportError(attr.Span, "Event name is missing in binding")
	}
	valueSpan := valueSpanOrKey(attr)
	handler := t.parser.ParseAction(value, valueSpan, valueSpan.Start.Offset)
	t.errors = append(t.errors, handler.Errors...)
	target, name := splitAtColon(identifier)
	parsed.outputs = append(parsed.outputs, NewBoundEvent(name, target, handler, attr.Span, attr.ValueSpan, keySpan))
}

// parseTwoWayEvent adds the `xChange` event that writes `$event` back.
func (t *htmlAstToR3) parseTwoWayEvent(identifier, value string, attr *ml_parser.Attribute, keySpan *util.ParseSourceSpan, parsed *parsedAttributes) {
	valueSpan := valueSpanOrKey(attr)
	handler := t.parser.ParseAction(value+" = $event", valueSpan, valueSpan.Start.Offset)
	t.errors = append(t.errors, handler.Errors...)
	parsed.outputs = append(parsed.outputs, NewBoundEvent(identifier+twoWayEventSuffix, "", handler, attr.Span, attr.ValueSpan, keySpan))
}

func (t *htmlAstToR3) parseVariable(identifier, value string, sourceSpan, keySpan, valueSpan *util.ParseSourceSpan, variables *[]*Variable) {
	if strings.Contains(identifier, "-") {
		t.reportError(sourceSpan, `"-" is not allowed in variable names`)
	} else if identifier == "" {
		t.reportError(sourceSpan, "Variable does not have a name")
	}
	if value == "" {
		value = implicitValue
	}
	*variables = append(*variables, NewVariable(identifier, value, sourceSpan, keySpan, valueSpan))
}

func (t *htmlAstToR3) parseReference(identifier, value string, sourceSpan, keySpan, valueSpan *util.ParseSourceSpan, references *[]*Reference) {
	if strings.Contains(identifier, "-") {
		t.reportError(sourceSpan, `"-" is not allowed in reference names`)
	} else if identifier == "" {
		t.reportError(sourceSpan, "Reference does not have a name")
	}
	*references = append(*references, NewReference(identifier, value, sourceSpan, keySpan, valueSpan))
}

func (t *htmlAstToR3) absoluteSpan(span expression_parser.AbsoluteSourceSpan) *util.ParseSourceSpan {
	return t.file.SpanAt(span.Start, span.End)
}

// parseInlineTemplateBinding handles microsyntax such as
// `*ngFor="let item of items; index as i"`.
func (t *htmlAstToR3) parseInlineTemplateBinding(attr *ml_parser.Attribute, parsed *parsedAttributes) {
	templateKey := attr.Name[len(templateAttrPrefix):]
	absoluteKeyOffset := attr.KeySpan.Start.Offset + len(templateAttrPrefix)
	absoluteValueOffset := attr.KeySpan.End.Offset
	if attr.ValueSpan != nil {
		absoluteValueOffset = attr.ValueSpan.Start.Offset
	}

	result := t.parser.ParseTemplateBindings(templateKey, attr.Value, attr.Span, absoluteKeyOffset, absoluteValueOffset)
	t.errors = append(t.errors, result.Errors...)

	for _, binding := range result.TemplateBindings {
		sourceSpan := t.absoluteSpan(binding.BindingSourceSpan())
		key := binding.BindingKey()
		keySpan := t.absoluteSpan(key.Span)
		switch b := binding.(type) {
		case *expression_parser.VariableBinding:
			value := ""
			var valueSpan *util.ParseSourceSpan
			if b.Value != nil {
				value = b.Value.Source
				valueSpan = t.absoluteSpan(b.Value.Span)
			}
			t.parseVariable(key.Source, value, sourceSpan, keySpan, valueSpan, &parsed.templateVariables)
		case *expression_parser.ExpressionBinding:
			if b.Value == nil {
				parsed.templateAttrs = append(parsed.templateAttrs, NewTextAttribute(key.Source, "", sourceSpan, keySpan, nil))
				continue
			}
			valueSpan := t.absoluteSpan(b.Value.AST.SourceSpan())
			parsed.templateAttrs = append(parsed.templateAttrs, NewBoundAttribute(key.Source, BindingTypeProperty, b.Value, "", sourceSpan, keySpan, valueSpan))
		}
	}
}

func (t *htmlAstToR3) reportError(span *util.ParseSourceSpan, format string, args ...any) {
	t.errors = append(t.errors, util.NewParseError(span, fmt.Sprintf(format, args...)))
}
