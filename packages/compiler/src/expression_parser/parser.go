package expression_parser

import (
	"fmt"
	"strings"

	"ngtools-go/packages/compiler/src/core"
	"ngtools-go/packages/compiler/src/ml_parser"
	"ngtools-go/packages/compiler/src/util"
)

// InterpolationPiece represents a piece of interpolation
type InterpolationPiece struct {
	Text  string
	Start int
	End   int
}

// SplitInterpolation is the result of splitting text on interpolation
// markers. Expressions[i].Start/End cover the markers; Offsets[i] is where the
// expression text itself starts.
type SplitInterpolation struct {
	Strings     []InterpolationPiece
	Expressions []InterpolationPiece
	Offsets     []int
}

// TemplateBindingParseResult represents the result of parsing template bindings
type TemplateBindingParseResult struct {
	TemplateBindings []TemplateBinding
	Errors           []*util.ParseError
}

// ParseFlags represents the possible parse modes to be used as a bitmask
type ParseFlags int

const (
	ParseFlagsNone ParseFlags = 0
	// ParseFlagsAction indicates whether an output binding is being parsed
	ParseFlagsAction ParseFlags = 1 << 0
)

func getLocation(span *util.ParseSourceSpan) string {
	if span != nil && span.Start != nil {
		return span.Start.String()
	}
	return "(unknown)"
}

// Parser parses expressions
type Parser struct {
	lexer *Lexer
}

// NewParser creates a new Parser
func NewParser(lexer *Lexer) *Parser {
	return &Parser{lexer: lexer}
}

// ParseAction parses an event handler expression. Assignments and chains are
// allowed, pipes are not.
func (p *Parser) ParseAction(input string, parseSourceSpan *util.ParseSourceSpan, absoluteOffset int) *ASTWithSource {
	errors := []*util.ParseError{}
	p.checkNoInterpolation(&errors, input, parseSourceSpan)
	stripped := StripComments(input)
	tokens := p.lexer.Tokenize(stripped)
	ast := newParseAST(input, parseSourceSpan, absoluteOffset, tokens, ParseFlagsAction, &errors, 0).parseChain()
	return NewASTWithSource(ast, input, getLocation(parseSourceSpan), absoluteOffset, errors)
}

// ParseBinding parses a property binding expression
func (p *Parser) ParseBinding(input string, parseSourceSpan *util.ParseSourceSpan, absoluteOffset int) *ASTWithSource {
	errors := []*util.ParseError{}
	ast := p.parseBindingAST(input, parseSourceSpan, absoluteOffset, &errors)
	return NewASTWithSource(ast, input, getLocation(parseSourceSpan), absoluteOffset, errors)
}

func (p *Parser) parseBindingAST(input string, parseSourceSpan *util.ParseSourceSpan, absoluteOffset int, errors *[]*util.ParseError) AST {
	if quote := p.parseQuote(input, parseSourceSpan, absoluteOffset); quote != nil {
		return quote
	}
	p.checkNoInterpolation(errors, input, parseSourceSpan)
	stripped := StripComments(input)
	tokens := p.lexer.Tokenize(stripped)
	return newParseAST(input, parseSourceSpan, absoluteOffset, tokens, ParseFlagsNone, errors, 0).parseChain()
}

// parseQuote recognises `prefix:rest` where prefix is an identifier. The rest
// is left uninterpreted.
func (p *Parser) parseQuote(input string, parseSourceSpan *util.ParseSourceSpan, absoluteOffset int) AST {
	sep := strings.IndexByte(input, ':')
	if sep == -1 {
		return nil
	}
	prefix := strings.TrimSpace(input[:sep])
	if !IsIdentifier(prefix) {
		return nil
	}
	span := NewParseSpan(0, len(input))
	return NewQuote(span, span.ToAbsolute(absoluteOffset), prefix, input[sep+1:], getLocation(parseSourceSpan))
}

// ParseTemplateBindings parses microsyntax (`*ngFor="let item of items"`)
// and returns a list of bindings. The first binding is always for the
// template key itself.
func (p *Parser) ParseTemplateBindings(
	templateKey string,
	templateValue string,
	parseSourceSpan *util.ParseSourceSpan,
	absoluteKeyOffset int,
	absoluteValueOffset int,
) *TemplateBindingParseResult {
	tokens := p.lexer.Tokenize(templateValue)
	errors := []*util.ParseError{}
	parser := newParseAST(templateValue, parseSourceSpan, absoluteValueOffset, tokens, ParseFlagsNone, &errors, 0)
	return parser.parseTemplateBindings(TemplateBindingIdentifier{
		Source: templateKey,
		Span:   NewAbsoluteSourceSpan(absoluteKeyOffset, absoluteKeyOffset+len(templateKey)),
	})
}

// ParseInterpolation parses text containing interpolations. It returns nil
// when input has no interpolation.
func (p *Parser) ParseInterpolation(
	input string,
	parseSourceSpan *util.ParseSourceSpan,
	absoluteOffset int,
	config ml_parser.InterpolationConfig,
) *ASTWithSource {
	errors := []*util.ParseError{}
	split := p.splitInterpolation(input, parseSourceSpan, &errors, config)
	if len(split.Expressions) == 0 {
		return nil
	}

	expressionNodes := make([]AST, 0, len(split.Expressions))
	for i, expression := range split.Expressions {
		stripped := StripComments(expression.Text)
		tokens := p.lexer.Tokenize(stripped)
		if len(stripped) != len(expression.Text) && strings.TrimSpace(stripped) == "" && len(tokens) == 0 {
			errors = append(errors, getParseError(
				"Interpolation expression cannot only contain a comment",
				input,
				fmt.Sprintf("at column %d in", expression.Start),
				parseSourceSpan,
			))
			continue
		}
		ast := newParseAST(expression.Text, parseSourceSpan, absoluteOffset, tokens, ParseFlagsNone, &errors, split.Offsets[i]).parseChain()
		expressionNodes = append(expressionNodes, ast)
	}

	strs := make([]string, len(split.Strings))
	for i, s := range split.Strings {
		strs[i] = s.Text
	}
	span := NewParseSpan(0, len(input))
	interpolation := NewInterpolation(span, span.ToAbsolute(absoluteOffset), strs, expressionNodes)
	return NewASTWithSource(interpolation, input, getLocation(parseSourceSpan), absoluteOffset, errors)
}

// SplitInterpolation splits input on the markers of config without
// reporting errors.
func (p *Parser) SplitInterpolation(input string, config ml_parser.InterpolationConfig) *SplitInterpolation {
	errors := []*util.ParseError{}
	return p.splitInterpolation(input, nil, &errors, config)
}

func (p *Parser) checkNoInterpolation(errors *[]*util.ParseError, input string, parseSourceSpan *util.ParseSourceSpan) {
	config := ml_parser.DefaultInterpolationConfig
	startIndex := -1
	endIndex := -1

	forEachUnquotedChar(input, 0, func(charIndex int) bool {
		if startIndex == -1 {
			if strings.HasPrefix(input[charIndex:], config.Start) {
				startIndex = charIndex
			}
			return true
		}
		endIndex = getInterpolationEndIndex(input, config.End, charIndex)
		return endIndex == -1
	})

	if startIndex > -1 && endIndex > -1 {
		*errors = append(*errors, getParseError(
			fmt.Sprintf("Got interpolation (%s%s) where expression was expected", config.Start, config.End),
			input,
			fmt.Sprintf("at column %d in", startIndex),
			parseSourceSpan,
		))
	}
}

// StripComments drops a trailing `//` comment outside of quotes.
func StripComments(input string) string {
	if i := commentStart(input); i != -1 {
		return input[:i]
	}
	return input
}

func commentStart(input string) int {
	var outerQuote rune
	for i := 0; i < len(input)-1; i++ {
		char := rune(input[i])
		nextChar := rune(input[i+1])

		if char == core.CharSLASH && nextChar == core.CharSLASH && outerQuote == 0 {
			return i
		}

		if outerQuote != 0 && outerQuote == char {
			outerQuote = 0
		} else if outerQuote == 0 && core.IsQuote(char) {
			outerQuote = char
		}
	}
	return -1
}

func getInterpolationEndIndex(input string, expressionEnd string, start int) int {
	result := -1
	forEachUnquotedChar(input, start, func(charIndex int) bool {
		if strings.HasPrefix(input[charIndex:], expressionEnd) {
			result = charIndex
			return false
		}
		// Nothing else in the expression matters after we've
		// hit a comment so look directly for the end token.
		if strings.HasPrefix(input[charIndex:], "//") {
			if idx := strings.Index(input[charIndex:], expressionEnd); idx != -1 {
				result = charIndex + idx
			}
			return false
		}
		return true
	})
	return result
}

// forEachUnquotedChar calls fn with every index of input outside of quotes
// until fn returns false.
func forEachUnquotedChar(input string, start int, fn func(int) bool) {
	var currentQuote rune
	escapeCount := 0
	for i := start; i < len(input); i++ {
		char := rune(input[i])
		// Only the outer-most quotes need to match up, accounting for escapes.
		if core.IsQuote(char) && (currentQuote == 0 || currentQuote == char) && escapeCount%2 == 0 {
			if currentQuote == 0 {
				currentQuote = char
			} else {
				currentQuote = 0
			}
		} else if currentQuote == 0 {
			if !fn(i) {
				return
			}
		}
		if char == core.CharBACKSLASH {
			escapeCount++
		} else {
			escapeCount = 0
		}
	}
}

func (p *Parser) splitInterpolation(
	input string,
	parseSourceSpan *util.ParseSourceSpan,
	errors *[]*util.ParseError,
	config ml_parser.InterpolationConfig,
) *SplitInterpolation {
	result := &SplitInterpolation{}
	i := 0
	atInterpolation := false
	extendLastString := false
	interpStart, interpEnd := config.Start, config.End
	for i < len(input) {
		if !atInterpolation {
			// parse until starting {{
			start := i
			if idx := strings.Index(input[i:], interpStart); idx == -1 {
				i = len(input)
			} else {
				i += idx
			}
			result.Strings = append(result.Strings, InterpolationPiece{Text: input[start:i], Start: start, End: i})
			atInterpolation = true
			continue
		}

		// parse from starting {{ to ending }} while ignoring content inside quotes.
		fullStart := i
		exprStart := fullStart + len(interpStart)
		exprEnd := getInterpolationEndIndex(input, interpEnd, exprStart)
		if exprEnd == -1 {
			// No end marker; the rest of the input extends the last raw string.
			atInterpolation = false
			extendLastString = true
			break
		}
		fullEnd := exprEnd + len(interpEnd)

		text := input[exprStart:exprEnd]
		if strings.TrimSpace(text) == "" {
			*errors = append(*errors, getParseError(
				"Blank expressions are not allowed in interpolated strings",
				input,
				fmt.Sprintf("at column %d in", i),
				parseSourceSpan,
			))
		}
		result.Expressions = append(result.Expressions, InterpolationPiece{Text: text, Start: fullStart, End: fullEnd})
		result.Offsets = append(result.Offsets, exprStart)

		i = fullEnd
		atInterpolation = false
	}
	if !atInterpolation {
		if extendLastString {
			piece := &result.Strings[len(result.Strings)-1]
			piece.Text += input[i:]
			piece.End = len(input)
		} else {
			result.Strings = append(result.Strings, InterpolationPiece{Text: input[i:], Start: i, End: len(input)})
		}
	}
	return result
}

type parseAST struct {
	input             string
	parseSourceSpan   *util.ParseSourceSpan
	absoluteOffset    int
	tokens            []*Token
	parseFlags        ParseFlags
	errors            *[]*util.ParseError
	offset            int
	index             int
	rparensExpected   int
	rbracketsExpected int
	rbracesExpected   int
	writable          bool
}

func newParseAST(
	input string,
	parseSourceSpan *util.ParseSourceSpan,
	absoluteOffset int,
	tokens []*Token,
	parseFlags ParseFlags,
	errors *[]*util.ParseError,
	offset int,
) *parseAST {
	return &parseAST{
		input:           input,
		parseSourceSpan: parseSourceSpan,
		absoluteOffset:  absoluteOffset,
		tokens:          tokens,
		parseFlags:      parseFlags,
		errors:          errors,
		offset:          offset,
	}
}

func (p *parseAST) peek(offset int) *Token {
	i := p.index + offset
	if i < len(p.tokens) {
		return p.tokens[i]
	}
	return EOF
}

func (p *parseAST) next() *Token {
	return p.peek(0)
}

func (p *parseAST) atEOF() bool {
	return p.index >= len(p.tokens)
}

// inputIndex returns the index of the next token to be processed
func (p *parseAST) inputIndex() int {
	if p.atEOF() {
		return p.currentEndIndex()
	}
	return p.next().Index + p.offset
}

// currentEndIndex returns the end index of the last processed token
func (p *parseAST) currentEndIndex() int {
	if p.index > 0 {
		return p.peek(-1).End + p.offset
	}
	if len(p.tokens) == 0 {
		return len(p.input) + p.offset
	}
	return p.next().Index + p.offset
}

func (p *parseAST) currentAbsoluteOffset() int {
	return p.absoluteOffset + p.inputIndex()
}

func (p *parseAST) span(start int, artificialEndIndex ...int) ParseSpan {
	endIndex := p.currentEndIndex()
	if len(artificialEndIndex) > 0 && artificialEndIndex[0] > endIndex {
		endIndex = artificialEndIndex[0]
	}
	if start > endIndex {
		start, endIndex = endIndex, start
	}
	return NewParseSpan(start, endIndex)
}

func (p *parseAST) sourceSpan(start int, artificialEndIndex ...int) AbsoluteSourceSpan {
	return p.span(start, artificialEndIndex...).ToAbsolute(p.absoluteOffset)
}

func (p *parseAST) advance() {
	p.index++
}

func (p *parseAST) consumeOptionalCharacter(code rune) bool {
	if p.next().IsCharacter(code) {
		p.advance()
		return true
	}
	return false
}

func (p *parseAST) expectCharacter(code rune) {
	if !p.consumeOptionalCharacter(code) {
		p.error(fmt.Sprintf("Missing expected %c", code))
	}
}

func (p *parseAST) consumeOptionalOperator(op string) bool {
	if p.next().IsOperator(op) {
		p.advance()
		return true
	}
	return false
}

func (p *parseAST) isAssignmentOperator(token *Token) bool {
	return token.Type == TokenTypeOperator && IsAssignmentOperation(token.StrValue)
}

// expectName consumes an identifier or keyword, or also a string when
// allowString is set.
func (p *parseAST) expectName(allowString bool) (string, bool) {
	n := p.next()
	expected := "identifier or keyword"
	if allowString {
		expected = "identifier, keyword or string"
	}
	switch {
	case n.IsIdentifier(), n.IsKeyword(), allowString && n.Type == TokenTypeString:
		p.advance()
		return n.String(), true
	case n.Type == TokenTypePrivateIdentifier:
		p.privateIdentifierError(n, expected)
	case n == EOF:
		p.error("Unexpected end of input, expected " + expected)
	default:
		p.error(fmt.Sprintf("Unexpected token %s, expected %s", n, expected))
	}
	return "", false
}

func (p *parseAST) parseChain() AST {
	var exprs []AST
	start := p.inputIndex()
	for p.index < len(p.tokens) {
		exprs = append(exprs, p.parsePipe())

		if p.consumeOptionalCharacter(core.CharSEMICOLON) {
			if p.parseFlags&ParseFlagsAction == 0 {
				p.error("Binding expression cannot contain chained expression")
			}
			for p.consumeOptionalCharacter(core.CharSEMICOLON) {
				// read all semicolons
			}
		} else if p.index < len(p.tokens) {
			errorIndex := p.index
			p.error(fmt.Sprintf("Unexpected token '%s'", p.next()))
			if p.index == errorIndex {
				break
			}
		}
	}
	switch len(exprs) {
	case 0:
		artificialStart := p.offset
		artificialEnd := p.offset + len(p.input)
		return NewEmptyExpr(p.span(artificialStart, artificialEnd), p.sourceSpan(artificialStart, artificialEnd))
	case 1:
		return exprs[0]
	}
	return NewChain(p.span(start), p.sourceSpan(start), exprs)
}

func (p *parseAST) parsePipe() AST {
	start := p.inputIndex()
	result := p.parseExpression()
	if !p.consumeOptionalOperator("|") {
		return result
	}
	if p.parseFlags&ParseFlagsAction != 0 {
		p.error("Cannot have a pipe in an action expression")
	}

	for {
		nameStart := p.inputIndex()
		name, ok := p.expectName(false)
		var nameSpan AbsoluteSourceSpan
		fullSpanEnd := -1
		if ok {
			nameSpan = p.sourceSpan(nameStart)
		} else {
			// An empty pipe name sits at the end of any whitespace after the
			// pipe character, so the pipe span covers that whitespace.
			if nextIdx := p.next().Index; nextIdx != -1 {
				fullSpanEnd = nextIdx + p.offset
			} else {
				fullSpanEnd = len(p.input) + p.offset
			}
			nameSpan = NewParseSpan(fullSpanEnd, fullSpanEnd).ToAbsolute(p.absoluteOffset)
		}

		var args []AST
		for p.consumeOptionalCharacter(core.CharCOLON) {
			args = append(args, p.parseExpression())
		}

		if fullSpanEnd != -1 {
			result = NewBindingPipe(p.span(start, fullSpanEnd), p.sourceSpan(start, fullSpanEnd), result, name, args, nameSpan)
		} else {
			result = NewBindingPipe(p.span(start), p.sourceSpan(start), result, name, args, nameSpan)
		}
		if !p.consumeOptionalOperator("|") {
			return result
		}
	}
}

func (p *parseAST) parseExpression() AST {
	return p.parseConditional()
}

func (p *parseAST) parseConditional() AST {
	start := p.inputIndex()
	result := p.parseLogicalOr()

	if !p.consumeOptionalOperator("?") {
		return result
	}
	yes := p.parsePipe()
	var no AST
	if !p.consumeOptionalCharacter(core.CharCOLON) {
		end := p.inputIndex()
		expression := p.input[start-p.offset : end-p.offset]
		p.error(fmt.Sprintf("Conditional expression %s requires all 3 expressions", expression))
		no = NewEmptyExpr(p.span(start), p.sourceSpan(start))
	} else {
		no = p.parsePipe()
	}
	return NewConditional(p.span(start), p.sourceSpan(start), result, yes, no)
}

// binaryLevels lists operators from the loosest to the tightest binding.
var binaryLevels = [][]string{
	{"||"},
	{"&&"},
	{"??"},
	{"==", "===", "!=", "!=="},
	{"<", ">", "<=", ">="},
	{"+", "-"},
	{"*", "%", "/"},
}

func (p *parseAST) parseLogicalOr() AST {
	return p.parseBinaryLevel(0)
}

func (p *parseAST) parseBinaryLevel(level int) AST {
	if level == len(binaryLevels) {
		return p.parseExponentiation()
	}
	start := p.inputIndex()
	result := p.parseBinaryLevel(level + 1)
	for {
		operator, ok := p.matchOperator(binaryLevels[level])
		if !ok {
			return result
		}
		p.advance()
		right := p.parseBinaryLevel(level + 1)
		result = NewBinary(p.span(start), p.sourceSpan(start), operator, result, right)
	}
}

func (p *parseAST) matchOperator(operators []string) (string, bool) {
	n := p.next()
	if n.Type != TokenTypeOperator {
		return "", false
	}
	for _, op := range operators {
		if n.StrValue == op {
			return op, true
		}
	}
	return "", false
}

func (p *parseAST) parseExponentiation() AST {
	// '**'
	start := p.inputIndex()
	result := p.parsePrefix()
	for p.next().IsOperator("**") {
		// A unary operator directly before `**` must be grouped explicitly.
		switch result.(type) {
		case *Unary, *PrefixNot:
			p.error("Unary operator used immediately before exponentiation expression. Parenthesis must be used to disambiguate operator precedence")
		}
		p.advance()
		right := p.parseExponentiation()
		result = NewBinary(p.span(start), p.sourceSpan(start), "**", result, right)
	}
	return result
}

func (p *parseAST) parsePrefix() AST {
	if p.next().Type == TokenTypeOperator {
		start := p.inputIndex()
		switch operator := p.next().StrValue; operator {
		case "+", "-":
			p.advance()
			result := p.parsePrefix()
			return NewUnary(p.span(start), p.sourceSpan(start), operator, result)
		case "!":
			p.advance()
			result := p.parsePrefix()
			return NewPrefixNot(p.span(start), p.sourceSpan(start), result)
		}
	}
	return p.parseCallChain()
}

func (p *parseAST) parseCallChain() AST {
	start := p.inputIndex()
	result := p.parsePrimary()
	for {
		switch {
		case p.consumeOptionalCharacter(core.CharPERIOD):
			result = p.parseAccessMember(result, start, false)
		case p.consumeOptionalOperator("?."):
			if p.consumeOptionalCharacter(core.CharLPAREN) {
				result = p.parseCall(result, start, true)
			} else if p.consumeOptionalCharacter(core.CharLBRACKET) {
				result = p.parseKeyedReadOrWrite(result, start, true)
			} else {
				result = p.parseAccessMember(result, start, true)
			}
		case p.consumeOptionalCharacter(core.CharLBRACKET):
			result = p.parseKeyedReadOrWrite(result, start, false)
		case p.consumeOptionalCharacter(core.CharLPAREN):
			result = p.parseCall(result, start, false)
		case p.consumeOptionalOperator("!"):
			result = NewNonNullAssert(p.span(start), p.sourceSpan(start), result)
		default:
			return result
		}
	}
}

func (p *parseAST) parsePrimary() AST {
	start := p.inputIndex()
	n := p.next()
	switch {
	case p.consumeOptionalCharacter(core.CharLPAREN):
		p.rparensExpected++
		result := p.parsePipe()
		if !p.consumeOptionalCharacter(core.CharRPAREN) {
			p.error("Missing closing parentheses")
			// error() skips up to the next closing paren; consume it to recover.
			p.consumeOptionalCharacter(core.CharRPAREN)
		}
		p.rparensExpected--
		return NewParenthesizedExpression(p.span(start), p.sourceSpan(start), result)
	case n.IsKeywordValue("null"):
		p.advance()
		return NewLiteralPrimitive(p.span(start), p.sourceSpan(start), nil)
	case n.IsKeywordValue("undefined"):
		p.advance()
		return NewLiteralPrimitive(p.span(start), p.sourceSpan(start), Undefined)
	case n.IsKeywordValue("true"):
		p.advance()
		return NewLiteralPrimitive(p.span(start), p.sourceSpan(start), true)
	case n.IsKeywordValue("false"):
		p.advance()
		return NewLiteralPrimitive(p.span(start), p.sourceSpan(start), false)
	case n.IsKeywordValue("this"):
		p.advance()
		return NewThisReceiver(p.span(start), p.sourceSpan(start))
	case p.consumeOptionalCharacter(core.CharLBRACKET):
		p.rbracketsExpected++
		elements := p.parseExpressionList(core.CharRBRACKET)
		p.rbracketsExpected--
		p.expectCharacter(core.CharRBRACKET)
		return NewLiteralArray(p.span(start), p.sourceSpan(start), elements)
	case n.IsCharacter(core.CharLBRACE):
		return p.parseLiteralMap()
	case n.IsIdentifier():
		return p.parseAccessMember(NewImplicitReceiver(p.span(start), p.sourceSpan(start)), start, false)
	case n.Type == TokenTypeNumber:
		p.advance()
		return NewLiteralPrimitive(p.span(start), p.sourceSpan(start), n.NumValue)
	case n.Type == TokenTypeString:
		p.advance()
		return NewLiteralPrimitive(p.span(start), p.sourceSpan(start), n.StrValue)
	case n.Type == TokenTypePrivateIdentifier:
		p.privateIdentifierError(n, "")
		return NewEmptyExpr(p.span(start), p.sourceSpan(start))
	case p.atEOF():
		p.error(fmt.Sprintf("Unexpected end of expression: %s", p.input))
		return NewEmptyExpr(p.span(start), p.sourceSpan(start))
	default:
		p.error(fmt.Sprintf("Unexpected token %s", n))
		return NewEmptyExpr(p.span(start), p.sourceSpan(start))
	}
}

func (p *parseAST) parseExpressionList(terminator rune) []AST {
	var result []AST
	for !p.next().IsCharacter(terminator) {
		result = append(result, p.parsePipe())
		if !p.consumeOptionalCharacter(core.CharCOMMA) {
			break
		}
	}
	return result
}

func (p *parseAST) parseLiteralMap() *LiteralMap {
	var keys []LiteralMapKey
	var values []AST
	start := p.inputIndex()
	p.expectCharacter(core.CharLBRACE)
	if !p.consumeOptionalCharacter(core.CharRBRACE) {
		p.rbracesExpected++
		for {
			keyStart := p.inputIndex()
			quoted := p.next().Type == TokenTypeString
			key, _ := p.expectName(true)
			literalMapKey := LiteralMapKey{Key: key, Quoted: quoted}

			// Properties with quoted keys can't use the shorthand syntax.
			if quoted {
				p.expectCharacter(core.CharCOLON)
				values = append(values, p.parsePipe())
			} else if p.consumeOptionalCharacter(core.CharCOLON) {
				values = append(values, p.parsePipe())
			} else {
				literalMapKey.IsShorthandInitialized = true
				span := p.span(keyStart)
				sourceSpan := p.sourceSpan(keyStart)
				values = append(values, NewPropertyRead(span, sourceSpan, sourceSpan, NewImplicitReceiver(span, sourceSpan), key))
			}
			keys = append(keys, literalMapKey)
			if !p.consumeOptionalCharacter(core.CharCOMMA) || p.next().IsCharacter(core.CharRBRACE) {
				break
			}
		}
		p.rbracesExpected--
		p.expectCharacter(core.CharRBRACE)
	}
	return NewLiteralMap(p.span(start), p.sourceSpan(start), keys, values)
}

func (p *parseAST) parseAccessMember(readReceiver AST, start int, isSafe bool) AST {
	nameStart := p.inputIndex()
	p.writable = true
	id, _ := p.expectName(false)
	if id == "" {
		p.error("Expected identifier for property access", readReceiver.Span().End)
	}
	p.writable = false
	nameSpan := p.sourceSpan(nameStart)

	if isSafe {
		if p.isAssignmentOperator(p.next()) {
			p.advance()
			p.error("The '?.' operator cannot be used in the assignment")
			return NewEmptyExpr(p.span(start), p.sourceSpan(start))
		}
		return NewSafePropertyRead(p.span(start), p.sourceSpan(start), nameSpan, readReceiver, id)
	}
	if !p.isAssignmentOperator(p.next()) {
		return NewPropertyRead(p.span(start), p.sourceSpan(start), nameSpan, readReceiver, id)
	}

	operation := p.next().StrValue
	if p.parseFlags&ParseFlagsAction == 0 {
		p.advance()
		p.error("Bindings cannot contain assignments")
		return NewEmptyExpr(p.span(start), p.sourceSpan(start))
	}
	p.advance()
	value := p.parseConditional()
	if operation == "=" {
		return NewPropertyWrite(p.span(start), p.sourceSpan(start), nameSpan, readReceiver, id, value)
	}
	receiver := NewPropertyRead(p.span(start), p.sourceSpan(start), nameSpan, readReceiver, id)
	return NewBinary(p.span(start), p.sourceSpan(start), operation, receiver, value)
}

func (p *parseAST) parseCall(receiver AST, start int, isSafe bool) AST {
	argumentStart := p.inputIndex()
	p.rparensExpected++
	args := p.parseCallArguments()
	argumentSpan := p.span(argumentStart, p.inputIndex()).ToAbsolute(p.absoluteOffset)
	p.expectCharacter(core.CharRPAREN)
	p.rparensExpected--
	if isSafe {
		return NewSafeCall(p.span(start), p.sourceSpan(start), receiver, args, argumentSpan)
	}
	return NewCall(p.span(start), p.sourceSpan(start), receiver, args, argumentSpan)
}

func (p *parseAST) parseCallArguments() []AST {
	if p.next().IsCharacter(core.CharRPAREN) {
		return nil
	}
	var positionals []AST
	for {
		positionals = append(positionals, p.parsePipe())
		if !p.consumeOptionalCharacter(core.CharCOMMA) {
			return positionals
		}
	}
}

func (p *parseAST) parseKeyedReadOrWrite(receiver AST, start int, isSafe bool) AST {
	p.writable = true
	defer func() { p.writable = false }()

	p.rbracketsExpected++
	key := p.parsePipe()
	if _, ok := key.(*EmptyExpr); ok {
		p.error("Key access cannot be empty")
	}
	p.rbracketsExpected--
	p.expectCharacter(core.CharRBRACKET)

	if !p.isAssignmentOperator(p.next()) {
		if isSafe {
			return NewSafeKeyedRead(p.span(start), p.sourceSpan(start), receiver, key)
		}
		return NewKeyedRead(p.span(start), p.sourceSpan(start), receiver, key)
	}

	operation := p.next().StrValue
	if isSafe {
		p.advance()
		p.error("The '?.' operator cannot be used in the assignment")
		return NewEmptyExpr(p.span(start), p.sourceSpan(start))
	}
	if p.parseFlags&ParseFlagsAction == 0 {
		p.advance()
		p.error("Bindings cannot contain assignments")
		return NewEmptyExpr(p.span(start), p.sourceSpan(start))
	}
	p.advance()
	value := p.parseConditional()
	if operation == "=" {
		return NewKeyedWrite(p.span(start), p.sourceSpan(start), receiver, key, value)
	}
	read := NewKeyedRead(p.span(start), p.sourceSpan(start), receiver, key)
	return NewBinary(p.span(start), p.sourceSpan(start), operation, read, value)
}

func (p *parseAST) expectTemplateBindingKey() TemplateBindingIdentifier {
	var result strings.Builder
	start := p.currentAbsoluteOffset()
	for {
		name, _ := p.expectName(true)
		result.WriteString(name)
		if !p.consumeOptionalOperator("-") {
			break
		}
		result.WriteString("-")
	}
	source := result.String()
	return TemplateBindingIdentifier{Source: source, Span: NewAbsoluteSourceSpan(start, start+len(source))}
}

func (p *parseAST) parseTemplateBindings(templateKey TemplateBindingIdentifier) *TemplateBindingParseResult {
	bindings := p.parseDirectiveKeywordBindings(templateKey)

	for p.index < len(p.tokens) {
		// If it starts with 'let', then this must be variable declaration
		if letBinding := p.parseLetBinding(); letBinding != nil {
			bindings = append(bindings, letBinding)
		} else {
			// Either `value "as" key` or `directive-keyword expression`. Both
			// start with a binding key, so consume that first.
			key := p.expectTemplateBindingKey()
			if binding := p.parseAsBinding(key); binding != nil {
				bindings = append(bindings, binding)
			} else {
				// A directive keyword like "of" becomes "ngForOf".
				if len(key.Source) > 0 {
					key.Source = templateKey.Source + strings.ToUpper(key.Source[:1]) + key.Source[1:]
				}
				bindings = append(bindings, p.parseDirectiveKeywordBindings(key)...)
			}
		}
		p.consumeStatementTerminator()
	}

	return &TemplateBindingParseResult{TemplateBindings: bindings, Errors: *p.errors}
}

func (p *parseAST) parseDirectiveKeywordBindings(key TemplateBindingIdentifier) []TemplateBinding {
	p.consumeOptionalCharacter(core.CharCOLON) // trackBy: trackByFunction
	value := p.getDirectiveBoundTarget()
	spanEnd := p.currentAbsoluteOffset()
	// `*ngIf="cond | pipe as x"` binds x to the template key itself.
	asBinding := p.parseAsBinding(key)
	if asBinding == nil {
		p.consumeStatementTerminator()
		spanEnd = p.currentAbsoluteOffset()
	}
	bindings := []TemplateBinding{&ExpressionBinding{
		SourceSpan: NewAbsoluteSourceSpan(key.Span.Start, spanEnd),
		Key:        key,
		Value:      value,
	}}
	if asBinding != nil {
		bindings = append(bindings, asBinding)
	}
	return bindings
}

func (p *parseAST) getDirectiveBoundTarget() *ASTWithSource {
	if p.next() == EOF || p.next().IsKeywordValue("as") || p.next().IsKeywordValue("let") {
		return nil
	}
	ast := p.parsePipe() // example: "condition | async"
	span := ast.Span()
	value := p.input[span.Start-p.offset : span.End-p.offset]
	return NewASTWithSource(ast, value, getLocation(p.parseSourceSpan), p.absoluteOffset+span.Start, *p.errors)
}

func (p *parseAST) parseAsBinding(value TemplateBindingIdentifier) TemplateBinding {
	if !p.next().IsKeywordValue("as") {
		return nil
	}
	p.advance() // consume the 'as' keyword
	key := p.expectTemplateBindingKey()
	p.consumeStatementTerminator()
	return &VariableBinding{
		SourceSpan: NewAbsoluteSourceSpan(value.Span.Start, p.currentAbsoluteOffset()),
		Key:        key,
		Value:      &value,
	}
}

func (p *parseAST) parseLetBinding() TemplateBinding {
	if !p.next().IsKeywordValue("let") {
		return nil
	}
	spanStart := p.currentAbsoluteOffset()
	p.advance() // consume the 'let' keyword
	key := p.expectTemplateBindingKey()
	var value *TemplateBindingIdentifier
	if p.consumeOptionalOperator("=") {
		v := p.expectTemplateBindingKey()
		value = &v
	}
	p.consumeStatementTerminator()
	return &VariableBinding{
		SourceSpan: NewAbsoluteSourceSpan(spanStart, p.currentAbsoluteOffset()),
		Key:        key,
		Value:      value,
	}
}

func (p *parseAST) consumeStatementTerminator() {
	if !p.consumeOptionalCharacter(core.CharSEMICOLON) {
		p.consumeOptionalCharacter(core.CharCOMMA)
	}
}

// error records an error and skips tokens until a recoverable point
func (p *parseAST) error(message string, index ...int) {
	idx := p.index
	if len(index) > 0 {
		idx = index[0]
	}
	*p.errors = append(*p.errors, getParseError(message, p.input, p.getErrorLocationText(idx), p.parseSourceSpan))
	p.skip()
}

func (p *parseAST) getErrorLocationText(index int) string {
	if index < len(p.tokens) {
		return fmt.Sprintf("at column %d in", p.tokens[index].Index+1)
	}
	return "at the end of the expression"
}

func (p *parseAST) privateIdentifierError(token *Token, expected string) {
	message := "Private identifiers are not supported. Unexpected private identifier: " + token.String()
	if expected != "" {
		message += ", expected " + expected
	}
	p.error(message)
}

// recoverable reports whether parsing can resume at n after an error.
func (p *parseAST) recoverable(n *Token) bool {
	switch {
	case n.IsCharacter(core.CharSEMICOLON), n.IsOperator("|"):
		return true
	case n.IsCharacter(core.CharRPAREN):
		return p.rparensExpected > 0
	case n.IsCharacter(core.CharRBRACE):
		return p.rbracesExpected > 0
	case n.IsCharacter(core.CharRBRACKET):
		return p.rbracketsExpected > 0
	}
	return p.writable && p.isAssignmentOperator(n)
}

// skip drops tokens up to the next recoverable one, reporting lexer errors
// on the way.
func (p *parseAST) skip() {
	for ; p.index < len(p.tokens); p.advance() {
		n := p.next()
		if p.recoverable(n) {
			return
		}
		if n.Type == TokenTypeError {
			*p.errors = append(*p.errors, getParseError(n.String(), p.input, p.getErrorLocationText(p.index), p.parseSourceSpan))
		}
	}
}

func getParseError(message, input, locationText string, parseSourceSpan *util.ParseSourceSpan) *util.ParseError {
	if locationText != "" {
		locationText = " " + locationText + " "
	}
	errorMsg := fmt.Sprintf("Parser Error: %s%s[%s] in %s", message, locationText, input, getLocation(parseSourceSpan))
	return util.NewParseError(parseSourceSpan, errorMsg)
}
