package render3

import (
	"ngtools-go/packages/compiler/src/expression_parser"
	"ngtools-go/packages/compiler/src/util"
)

// Node represents a node in the R3 AST. The set of implementations is
// closed; consumers dispatch with a type switch.
type Node interface {
	SourceSpan() *util.ParseSourceSpan
	isNode()
}

// BindingType is the kind of a property binding
type BindingType int

const (
	BindingTypeProperty BindingType = iota
	BindingTypeAttribute
	BindingTypeClass
	BindingTypeStyle
	BindingTypeTwoWay
)

// Comment represents a comment node
type Comment struct {
	Value string
	Span  *util.ParseSourceSpan
}

// NewComment creates a new Comment node
func NewComment(value string, sourceSpan *util.ParseSourceSpan) *Comment {
	return &Comment{Value: value, Span: sourceSpan}
}

// SourceSpan returns the source span
func (c *Comment) SourceSpan() *util.ParseSourceSpan { return c.Span }

func (*Comment) isNode() {}

// Text represents a text node
type Text struct {
	Value string
	Span  *util.ParseSourceSpan
}

// NewText creates a new Text node
func NewText(value string, sourceSpan *util.ParseSourceSpan) *Text {
	return &Text{Value: value, Span: sourceSpan}
}

// SourceSpan returns the source span
func (t *Text) SourceSpan() *util.ParseSourceSpan { return t.Span }

func (*Text) isNode() {}

// BoundText represents a text node containing interpolations. Value is the
// *expression_parser.ASTWithSource of the (possibly whitespace-collapsed)
// text while Span covers the literal source.
type BoundText struct {
	Value expression_parser.AST
	Span  *util.ParseSourceSpan
}

// NewBoundText creates a new BoundText node
func NewBoundText(value expression_parser.AST, sourceSpan *util.ParseSourceSpan) *BoundText {
	return &BoundText{Value: value, Span: sourceSpan}
}

// SourceSpan returns the source span
func (bt *BoundText) SourceSpan() *util.ParseSourceSpan { return bt.Span }

func (*BoundText) isNode() {}

// TextAttribute represents a static attribute
type TextAttribute struct {
	Name      string
	Value     string
	Span      *util.ParseSourceSpan
	KeySpan   *util.ParseSourceSpan
	ValueSpan *util.ParseSourceSpan
}

// NewTextAttribute creates a new TextAttribute
func NewTextAttribute(name, value string, sourceSpan, keySpan, valueSpan *util.ParseSourceSpan) *TextAttribute {
	return &TextAttribute{
		Name:      name,
		Value:     value,
		Span:      sourceSpan,
		KeySpan:   keySpan,
		ValueSpan: valueSpan,
	}
}

// SourceSpan returns the source span
func (ta *TextAttribute) SourceSpan() *util.ParseSourceSpan { return ta.Span }

func (*TextAttribute) isNode() {}

// BoundAttribute represents a property binding. Name excludes the binding
// prefix (`attr.`, `class.`, `style.`); Unit holds a style unit such as `px`.
type BoundAttribute struct {
	Name      string
	Type      BindingType
	Value     expression_parser.AST
	Unit      string
	Span      *util.ParseSourceSpan
	KeySpan   *util.ParseSourceSpan
	ValueSpan *util.ParseSourceSpan
}

// NewBoundAttribute creates a new BoundAttribute
func NewBoundAttribute(
	name string,
	bindingType BindingType,
	value expression_parser.AST,
	unit string,
	sourceSpan, keySpan, valueSpan *util.ParseSourceSpan,
) *BoundAttribute {
	return &BoundAttribute{
		Name:      name,
		Type:      bindingType,
		Value:     value,
		Unit:      unit,
		Span:      sourceSpan,
		KeySpan:   keySpan,
		ValueSpan: valueSpan,
	}
}

// SourceSpan returns the source span
func (ba *BoundAttribute) SourceSpan() *util.ParseSourceSpan { return ba.Span }

func (*BoundAttribute) isNode() {}

// BoundEvent represents an event binding. Target is set for global targets
// such as `(window:resize)`.
type BoundEvent struct {
	Name        string
	Target      string
	Handler     expression_parser.AST
	Span        *util.ParseSourceSpan
	HandlerSpan *util.ParseSourceSpan
	KeySpan     *util.ParseSourceSpan
}

// NewBoundEvent creates a new BoundEvent
func NewBoundEvent(name, target string, handler expression_parser.AST, sourceSpan, handlerSpan, keySpan *util.ParseSourceSpan) *BoundEvent {
	return &BoundEvent{
		Name:        name,
		Target:      target,
		Handler:     handler,
		Span:        sourceSpan,
		HandlerSpan: handlerSpan,
		KeySpan:     keySpan,
	}
}

// SourceSpan returns the source span
func (be *BoundEvent) SourceSpan() *util.ParseSourceSpan { return be.Span }

func (*BoundEvent) isNode() {}

// Element represents an element node
type Element struct {
	Name            string
	Attributes      []*TextAttribute
	Inputs          []*BoundAttribute
	Outputs         []*BoundEvent
	Children        []Node
	References      []*Reference
	IsSelfClosing   bool
	Span            *util.ParseSourceSpan
	StartSourceSpan *util.ParseSourceSpan
	EndSourceSpan   *util.ParseSourceSpan
}

// SourceSpan returns the source span
func (e *Element) SourceSpan() *util.ParseSourceSpan { return e.Span }

func (*Element) isNode() {}

// Template represents an `<ng-template>` or the implicit template created by
// a `*dir` attribute. TagName is empty for a `*dir` placed on an
// `<ng-template>`. TemplateAttrs holds the *TextAttribute and
// *BoundAttribute nodes produced by microsyntax.
type Template struct {
	TagName         string
	Attributes      []*TextAttribute
	Inputs          []*BoundAttribute
	Outputs         []*BoundEvent
	TemplateAttrs   []Node
	Children        []Node
	References      []*Reference
	Variables       []*Variable
	IsSelfClosing   bool
	Span            *util.ParseSourceSpan
	StartSourceSpan *util.ParseSourceSpan
	EndSourceSpan   *util.ParseSourceSpan
}

// SourceSpan returns the source span
func (t *Template) SourceSpan() *util.ParseSourceSpan { return t.Span }

func (*Template) isNode() {}

// Content represents an `<ng-content>` projection slot
type Content struct {
	Selector        string
	Attributes      []*TextAttribute
	Children        []Node
	IsSelfClosing   bool
	Span            *util.ParseSourceSpan
	StartSourceSpan *util.ParseSourceSpan
	EndSourceSpan   *util.ParseSourceSpan
}

// SourceSpan returns the source span
func (c *Content) SourceSpan() *util.ParseSourceSpan { return c.Span }

func (*Content) isNode() {}

// Variable represents a template variable (`let-x` or microsyntax `let`)
type Variable struct {
	Name      string
	Value     string
	Span      *util.ParseSourceSpan
	KeySpan   *util.ParseSourceSpan
	ValueSpan *util.ParseSourceSpan
}

// NewVariable creates a new Variable
func NewVariable(name, value string, sourceSpan, keySpan, valueSpan *util.ParseSourceSpan) *Variable {
	return &Variable{
		Name:      name,
		Value:     value,
		Span:      sourceSpan,
		KeySpan:   keySpan,
		ValueSpan: valueSpan,
	}
}

// SourceSpan returns the source span
func (v *Variable) SourceSpan() *util.ParseSourceSpan { return v.Span }

func (*Variable) isNode() {}

// Reference represents a template reference (`#x` or `ref-x`)
type Reference struct {
	Name      string
	Value     string
	Span      *util.ParseSourceSpan
	KeySpan   *util.ParseSourceSpan
	ValueSpan *util.ParseSourceSpan
}

// NewReference creates a new Reference
func NewReference(name, value string, sourceSpan, keySpan, valueSpan *util.ParseSourceSpan) *Reference {
	return &Reference{
		Name:      name,
		Value:     value,
		Span:      sourceSpan,
		KeySpan:   keySpan,
		ValueSpan: valueSpan,
	}
}

// SourceSpan returns the source span
func (r *Reference) SourceSpan() *util.ParseSourceSpan { return r.Span }

func (*Reference) isNode() {}
