package ml_parser

import "ngtools-go/packages/compiler/src/util"

// Node represents a node in the HTML AST. The implementations are Element,
// Attribute, Text and Comment.
type Node interface {
	SourceSpan() *util.ParseSourceSpan
	isNode()
}

// Text represents a text node. Value is the raw text, possibly with
// whitespace collapsed; the source span always covers the literal source.
type Text struct {
	Value string
	Span  *util.ParseSourceSpan
}

// SourceSpan returns the source span
func (t *Text) SourceSpan() *util.ParseSourceSpan { return t.Span }

func (*Text) isNode() {}

// Attribute represents an attribute node. ValueSpan is nil for an attribute
// without a value and excludes the quotes otherwise.
type Attribute struct {
	Name      string
	Value     string
	Span      *util.ParseSourceSpan
	KeySpan   *util.ParseSourceSpan
	ValueSpan *util.ParseSourceSpan
}

// SourceSpan returns the source span
func (a *Attribute) SourceSpan() *util.ParseSourceSpan { return a.Span }

func (*Attribute) isNode() {}

// Element represents an element node. EndSourceSpan is nil when the element
// has no end tag (void, self-closing or implicitly closed).
type Element struct {
	Name            string
	Attrs           []*Attribute
	Children        []Node
	IsSelfClosing   bool
	IsVoid          bool
	Span            *util.ParseSourceSpan
	StartSourceSpan *util.ParseSourceSpan
	EndSourceSpan   *util.ParseSourceSpan
}

// SourceSpan returns the source span
func (e *Element) SourceSpan() *util.ParseSourceSpan { return e.Span }

func (*Element) isNode() {}

// Comment represents a comment node
type Comment struct {
	Value string
	Span  *util.ParseSourceSpan
}

// SourceSpan returns the source span
func (c *Comment) SourceSpan() *util.ParseSourceSpan { return c.Span }

func (*Comment) isNode() {}
