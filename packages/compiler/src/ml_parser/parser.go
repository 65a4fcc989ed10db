package ml_parser

import (
	"fmt"
	"strings"

	"ngtools-go/packages/compiler/src/core"
	"ngtools-go/packages/compiler/src/util"
)

// ParseTreeResult represents the result of parsing a template
type ParseTreeResult struct {
	RootNodes []Node
	Errors    []*util.ParseError
}

// HtmlParser builds an HTML node tree from template text.
type HtmlParser struct{}

// NewHtmlParser creates a new HtmlParser
func NewHtmlParser() *HtmlParser {
	return &HtmlParser{}
}

// Parse parses source, reporting spans against a file named url. Malformed
// markup is reported in Errors and never aborts the parse.
func (p *HtmlParser) Parse(source, url string) *ParseTreeResult {
	return p.ParseFile(util.NewParseSourceFile(source, url))
}

// ParseFile is Parse over an existing source file.
func (p *HtmlParser) ParseFile(file *util.ParseSourceFile) *ParseTreeResult {
	b := &treeBuilder{file: file, input: file.Content}
	b.build()
	return &ParseTreeResult{RootNodes: b.rootNodes, Errors: b.errors}
}

type treeBuilder struct {
	file      *util.ParseSourceFile
	input     string
	pos       int
	rootNodes []Node
	stack     []*Element
	errors    []*util.ParseError
}

func (b *treeBuilder) build() {
	for b.pos < len(b.input) {
		switch {
		case strings.HasPrefix(b.input[b.pos:], "<!--"):
			b.consumeComment()
		case b.startTagAt(b.pos):
			b.consumeStartTag()
		case b.endTagAt(b.pos):
			b.consumeEndTag()
		default:
			b.consumeText()
		}
	}
}

func (b *treeBuilder) peekAt(i int) rune {
	if i < 0 || i >= len(b.input) {
		return core.CharEOF
	}
	return rune(b.input[i])
}

// startTagAt reports whether `<name` starts at i. `{{ a < b }}` is text.
func (b *treeBuilder) startTagAt(i int) bool {
	return b.peekAt(i) == core.CharLT && core.IsAsciiLetter(b.peekAt(i+1))
}

func (b *treeBuilder) endTagAt(i int) bool {
	return b.peekAt(i) == core.CharLT && b.peekAt(i+1) == core.CharSLASH && core.IsAsciiLetter(b.peekAt(i+2))
}

func (b *treeBuilder) span(start, end int) *util.ParseSourceSpan {
	return b.file.SpanAt(start, end)
}

func (b *treeBuilder) reportError(start, end int, format string, args ...any) {
	b.errors = append(b.errors, util.NewParseError(b.span(start, end), fmt.Sprintf(format, args...)))
}

func (b *treeBuilder) addNode(node Node) {
	if len(b.stack) == 0 {
		b.rootNodes = append(b.rootNodes, node)
		return
	}
	parent := b.stack[len(b.stack)-1]
	parent.Children = append(parent.Children, node)
}

func (b *treeBuilder) consumeComment() {
	start := b.pos
	contentStart := start + len("<!--")
	idx := strings.Index(b.input[contentStart:], "-->")
	if idx == -1 {
		b.reportError(start, len(b.input), "Unexpected character \"EOF\"")
		b.addNode(&Comment{Value: strings.TrimSpace(b.input[contentStart:]), Span: b.span(start, len(b.input))})
		b.pos = len(b.input)
		return
	}
	end := contentStart + idx + len("-->")
	b.addNode(&Comment{Value: strings.TrimSpace(b.input[contentStart : contentStart+idx]), Span: b.span(start, end)})
	b.pos = end
}

// consumeText reads up to the next tag, end tag or comment.
func (b *treeBuilder) consumeText() {
	start := b.pos
	b.pos++
	for b.pos < len(b.input) {
		if b.startTagAt(b.pos) || b.endTagAt(b.pos) || strings.HasPrefix(b.input[b.pos:], "<!--") {
			break
		}
		b.pos++
	}
	b.addText(start, b.pos)
}

func (b *treeBuilder) addText(start, end int) {
	if start == end {
		return
	}
	b.addNode(&Text{Value: b.input[start:end], Span: b.span(start, end)})
}

func isNameEnd(c rune) bool {
	return core.IsWhitespace(c) || c == core.CharGT || c == core.CharSLASH || c == core.CharEQ ||
		c == core.CharSQ || c == core.CharDQ || c == core.CharEOF
}

func (b *treeBuilder) readName() string {
	start := b.pos
	for b.pos < len(b.input) && !isNameEnd(rune(b.input[b.pos])) {
		b.pos++
	}
	return b.input[start:b.pos]
}

func (b *treeBuilder) skipWhitespace() {
	for b.pos < len(b.input) && core.IsWhitespace(rune(b.input[b.pos])) {
		b.pos++
	}
}

func (b *treeBuilder) consumeStartTag() {
	start := b.pos
	b.pos++ // <
	name := b.readName()
	var attrs []*Attribute
	selfClosing := false
	closed := false

	for b.pos < len(b.input) {
		b.skipWhitespace()
		if strings.HasPrefix(b.input[b.pos:], "/>") {
			b.pos += 2
			selfClosing = true
			closed = true
			break
		}
		if b.peekAt(b.pos) == core.CharGT {
			b.pos++
			closed = true
			break
		}
		if b.peekAt(b.pos) == core.CharLT {
			break
		}
		if attr := b.consumeAttribute(); attr != nil {
			attrs = append(attrs, attr)
		} else {
			// stray character such as a lone `/` or quote
			b.pos++
		}
	}
	if !closed {
		b.reportError(start, b.pos, "Opening tag %q not terminated.", name)
	}

	startSpan := b.span(start, b.pos)
	el := &Element{
		Name:            name,
		Attrs:           attrs,
		IsSelfClosing:   selfClosing,
		IsVoid:          IsVoidElement(name),
		Span:            startSpan,
		StartSourceSpan: startSpan,
	}
	b.addNode(el)
	if selfClosing || el.IsVoid {
		return
	}
	if isRawTextElement(name) {
		b.consumeRawText(el)
		return
	}
	b.stack = append(b.stack, el)
}

func (b *treeBuilder) consumeAttribute() *Attribute {
	start := b.pos
	name := b.readName()
	if name == "" {
		return nil
	}
	keySpan := b.span(start, b.pos)
	end := b.pos
	b.skipWhitespace()
	if b.peekAt(b.pos) != core.CharEQ {
		b.pos = end
		return &Attribute{Name: name, Span: keySpan, KeySpan: keySpan}
	}
	b.pos++ // =
	b.skipWhitespace()

	var valueStart, valueEnd int
	if quote := b.peekAt(b.pos); quote == core.CharSQ || quote == core.CharDQ {
		valueStart = b.pos + 1
		idx := strings.IndexRune(b.input[valueStart:], quote)
		if idx == -1 {
			b.reportError(start, len(b.input), "Unterminated attribute value for %q", name)
			valueEnd = len(b.input)
			b.pos = valueEnd
		} else {
			valueEnd = valueStart + idx
			b.pos = valueEnd + 1
		}
	} else {
		valueStart = b.pos
		for b.pos < len(b.input) && !core.IsWhitespace(rune(b.input[b.pos])) && b.input[b.pos] != '>' {
			b.pos++
		}
		valueEnd = b.pos
	}
	return &Attribute{
		Name:      name,
		Value:     b.input[valueStart:valueEnd],
		Span:      b.span(start, b.pos),
		KeySpan:   keySpan,
		ValueSpan: b.span(valueStart, valueEnd),
	}
}

func (b *treeBuilder) consumeRawText(el *Element) {
	closing := "</" + el.Name
	contentStart := b.pos
	idx := strings.Index(strings.ToLower(b.input[contentStart:]), strings.ToLower(closing))
	if idx == -1 {
		b.addRawChild(el, contentStart, len(b.input))
		b.pos = len(b.input)
		return
	}
	b.addRawChild(el, contentStart, contentStart+idx)
	b.pos = contentStart + idx
	b.stack = append(b.stack, el)
	b.consumeEndTag()
}

func (b *treeBuilder) addRawChild(el *Element, start, end int) {
	if start < end {
		el.Children = append(el.Children, &Text{Value: b.input[start:end], Span: b.span(start, end)})
	}
}

func (b *treeBuilder) consumeEndTag() {
	start := b.pos
	b.pos += 2 // </
	name := b.readName()
	b.skipWhitespace()
	if b.peekAt(b.pos) == core.CharGT {
		b.pos++
	} else {
		b.reportError(start, b.pos, "Closing tag %q not terminated.", name)
	}
	endSpan := b.span(start, b.pos)

	if IsVoidElement(name) {
		b.reportError(start, b.pos, "Void elements do not have end tags %q", name)
		return
	}
	for i := len(b.stack) - 1; i >= 0; i-- {
		el := b.stack[i]
		if !strings.EqualFold(el.Name, name) {
			continue
		}
		// elements above el are implicitly closed
		b.stack = b.stack[:i]
		el.EndSourceSpan = endSpan
		el.Span = util.NewParseSourceSpan(el.StartSourceSpan.Start, endSpan.End, el.StartSourceSpan.FullStart, nil)
		return
	}
	b.reportError(start, b.pos, "Unexpected closing tag %q. It may happen when the tag has already been closed by another tag.", name)
}
