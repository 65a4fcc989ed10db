package expression_parser

import (
	"ngtools-go/packages/compiler/src/util"
)

// ParseSpan represents a span within an expression
type ParseSpan struct {
	Start int
	End   int
}

// NewParseSpan creates a new ParseSpan
func NewParseSpan(start, end int) ParseSpan {
	return ParseSpan{Start: start, End: end}
}

// ToAbsolute converts a ParseSpan to an AbsoluteSourceSpan
func (ps ParseSpan) ToAbsolute(absoluteOffset int) AbsoluteSourceSpan {
	return AbsoluteSourceSpan{Start: absoluteOffset + ps.Start, End: absoluteOffset + ps.End}
}

// AbsoluteSourceSpan records the absolute position of a text span in a source file
type AbsoluteSourceSpan struct {
	Start int
	End   int
}

// NewAbsoluteSourceSpan creates a new AbsoluteSourceSpan
func NewAbsoluteSourceSpan(start, end int) AbsoluteSourceSpan {
	return AbsoluteSourceSpan{Start: start, End: end}
}

// AST is implemented by every expression node. The set of implementations is
// closed; consumers dispatch with a type switch.
type AST interface {
	Span() ParseSpan
	SourceSpan() AbsoluteSourceSpan
	isAST()
}

// Base carries the spans shared by all nodes.
type Base struct {
	ParseSpan    ParseSpan
	AbsoluteSpan AbsoluteSourceSpan
}

// Span returns the span relative to the parsed input
func (b *Base) Span() ParseSpan { return b.ParseSpan }

// SourceSpan returns the absolute source span
func (b *Base) SourceSpan() AbsoluteSourceSpan { return b.AbsoluteSpan }

func (*Base) isAST() {}

func base(span ParseSpan, sourceSpan AbsoluteSourceSpan) Base {
	return Base{ParseSpan: span, AbsoluteSpan: sourceSpan}
}

// EmptyExpr represents an empty expression
type EmptyExpr struct {
	Base
}

// NewEmptyExpr creates a new EmptyExpr
func NewEmptyExpr(span ParseSpan, sourceSpan AbsoluteSourceSpan) *EmptyExpr {
	return &EmptyExpr{Base: base(span, sourceSpan)}
}

// ImplicitReceiver is the receiver of a bare identifier read.
type ImplicitReceiver struct {
	Base
}

// NewImplicitReceiver creates a new ImplicitReceiver
func NewImplicitReceiver(span ParseSpan, sourceSpan AbsoluteSourceSpan) *ImplicitReceiver {
	return &ImplicitReceiver{Base: base(span, sourceSpan)}
}

// ThisReceiver represents a receiver when something is accessed through `this`
type ThisReceiver struct {
	Base
}

// NewThisReceiver creates a new ThisReceiver
func NewThisReceiver(span ParseSpan, sourceSpan AbsoluteSourceSpan) *ThisReceiver {
	return &ThisReceiver{Base: base(span, sourceSpan)}
}

// Chain represents multiple expressions separated by a semicolon
type Chain struct {
	Base
	Expressions []AST
}

// NewChain creates a new Chain
func NewChain(span ParseSpan, sourceSpan AbsoluteSourceSpan, expressions []AST) *Chain {
	return &Chain{Base: base(span, sourceSpan), Expressions: expressions}
}

// Conditional represents a conditional expression (ternary operator)
type Conditional struct {
	Base
	Condition AST
	TrueExp   AST
	FalseExp  AST
}

// NewConditional creates a new Conditional
func NewConditional(span ParseSpan, sourceSpan AbsoluteSourceSpan, condition, trueExp, falseExp AST) *Conditional {
	return &Conditional{Base: base(span, sourceSpan), Condition: condition, TrueExp: trueExp, FalseExp: falseExp}
}

// PropertyRead represents `receiver.name`
type PropertyRead struct {
	Base
	NameSpan AbsoluteSourceSpan
	Receiver AST
	Name     string
}

// NewPropertyRead creates a new PropertyRead
func NewPropertyRead(span ParseSpan, sourceSpan, nameSpan AbsoluteSourceSpan, receiver AST, name string) *PropertyRead {
	return &PropertyRead{Base: base(span, sourceSpan), NameSpan: nameSpan, Receiver: receiver, Name: name}
}

// PropertyWrite represents `receiver.name = value`
type PropertyWrite struct {
	Base
	NameSpan AbsoluteSourceSpan
	Receiver AST
	Name     string
	Value    AST
}

// NewPropertyWrite creates a new PropertyWrite
func NewPropertyWrite(span ParseSpan, sourceSpan, nameSpan AbsoluteSourceSpan, receiver AST, name string, value AST) *PropertyWrite {
	return &PropertyWrite{Base: base(span, sourceSpan), NameSpan: nameSpan, Receiver: receiver, Name: name, Value: value}
}

// SafePropertyRead represents `receiver?.name`
type SafePropertyRead struct {
	Base
	NameSpan AbsoluteSourceSpan
	Receiver AST
	Name     string
}

// NewSafePropertyRead creates a new SafePropertyRead
func NewSafePropertyRead(span ParseSpan, sourceSpan, nameSpan AbsoluteSourceSpan, receiver AST, name string) *SafePropertyRead {
	return &SafePropertyRead{Base: base(span, sourceSpan), NameSpan: nameSpan, Receiver: receiver, Name: name}
}

// KeyedRead represents `receiver[key]`
type KeyedRead struct {
	Base
	Receiver AST
	Key      AST
}

// NewKeyedRead creates a new KeyedRead
func NewKeyedRead(span ParseSpan, sourceSpan AbsoluteSourceSpan, receiver, key AST) *KeyedRead {
	return &KeyedRead{Base: base(span, sourceSpan), Receiver: receiver, Key: key}
}

// KeyedWrite represents `receiver[key] = value`
type KeyedWrite struct {
	Base
	Receiver AST
	Key      AST
	Value    AST
}

// NewKeyedWrite creates a new KeyedWrite
func NewKeyedWrite(span ParseSpan, sourceSpan AbsoluteSourceSpan, receiver, key, value AST) *KeyedWrite {
	return &KeyedWrite{Base: base(span, sourceSpan), Receiver: receiver, Key: key, Value: value}
}

// SafeKeyedRead represents `receiver?.[key]`
type SafeKeyedRead struct {
	Base
	Receiver AST
	Key      AST
}

// NewSafeKeyedRead creates a new SafeKeyedRead
func NewSafeKeyedRead(span ParseSpan, sourceSpan AbsoluteSourceSpan, receiver, key AST) *SafeKeyedRead {
	return &SafeKeyedRead{Base: base(span, sourceSpan), Receiver: receiver, Key: key}
}

// BindingPipe represents `exp | name:arg1:arg2`
type BindingPipe struct {
	Base
	NameSpan AbsoluteSourceSpan
	Exp      AST
	Name     string
	Args     []AST
}

// NewBindingPipe creates a new BindingPipe
func NewBindingPipe(span ParseSpan, sourceSpan AbsoluteSourceSpan, exp AST, name string, args []AST, nameSpan AbsoluteSourceSpan) *BindingPipe {
	return &BindingPipe{Base: base(span, sourceSpan), NameSpan: nameSpan, Exp: exp, Name: name, Args: args}
}

// Undefined is the value of a LiteralPrimitive for the `undefined` keyword.
var Undefined = undefinedValue{}

type undefinedValue struct{}

// LiteralPrimitive holds a string, float64, bool, nil or Undefined.
type LiteralPrimitive struct {
	Base
	Value any
}

// NewLiteralPrimitive creates a new LiteralPrimitive
func NewLiteralPrimitive(span ParseSpan, sourceSpan AbsoluteSourceSpan, value any) *LiteralPrimitive {
	return &LiteralPrimitive{Base: base(span, sourceSpan), Value: value}
}

// LiteralArray represents `[a, b]`
type LiteralArray struct {
	Base
	Expressions []AST
}

// NewLiteralArray creates a new LiteralArray
func NewLiteralArray(span ParseSpan, sourceSpan AbsoluteSourceSpan, expressions []AST) *LiteralArray {
	return &LiteralArray{Base: base(span, sourceSpan), Expressions: expressions}
}

// LiteralMapKey is one key of a literal map.
type LiteralMapKey struct {
	Key                    string
	Quoted                 bool
	IsShorthandInitialized bool
}

// LiteralMap represents `{a: 1, 'b': 2}`
type LiteralMap struct {
	Base
	Keys   []LiteralMapKey
	Values []AST
}

// NewLiteralMap creates a new LiteralMap
func NewLiteralMap(span ParseSpan, sourceSpan AbsoluteSourceSpan, keys []LiteralMapKey, values []AST) *LiteralMap {
	return &LiteralMap{Base: base(span, sourceSpan), Keys: keys, Values: values}
}

// Interpolation holds the raw strings around each embedded expression.
// len(Strings) == len(Expressions)+1.
type Interpolation struct {
	Base
	Strings     []string
	Expressions []AST
}

// NewInterpolation creates a new Interpolation
func NewInterpolation(span ParseSpan, sourceSpan AbsoluteSourceSpan, strings []string, expressions []AST) *Interpolation {
	return &Interpolation{Base: base(span, sourceSpan), Strings: strings, Expressions: expressions}
}

// Binary represents a binary operation
type Binary struct {
	Base
	Operation string
	Left      AST
	Right     AST
}

// NewBinary creates a new Binary
func NewBinary(span ParseSpan, sourceSpan AbsoluteSourceSpan, operation string, left, right AST) *Binary {
	return &Binary{Base: base(span, sourceSpan), Operation: operation, Left: left, Right: right}
}

// Unary represents `-expr` or `+expr`
type Unary struct {
	Base
	Operator string
	Expr     AST
}

// NewUnary creates a new Unary
func NewUnary(span ParseSpan, sourceSpan AbsoluteSourceSpan, operator string, expr AST) *Unary {
	return &Unary{Base: base(span, sourceSpan), Operator: operator, Expr: expr}
}

// PrefixNot represents `!expr`
type PrefixNot struct {
	Base
	Expression AST
}

// NewPrefixNot creates a new PrefixNot
func NewPrefixNot(span ParseSpan, sourceSpan AbsoluteSourceSpan, expression AST) *PrefixNot {
	return &PrefixNot{Base: base(span, sourceSpan), Expression: expression}
}

// NonNullAssert represents `expr!`
type NonNullAssert struct {
	Base
	Expression AST
}

// NewNonNullAssert creates a new NonNullAssert
func NewNonNullAssert(span ParseSpan, sourceSpan AbsoluteSourceSpan, expression AST) *NonNullAssert {
	return &NonNullAssert{Base: base(span, sourceSpan), Expression: expression}
}

// Call represents `receiver(args)`
type Call struct {
	Base
	Receiver     AST
	Args         []AST
	ArgumentSpan AbsoluteSourceSpan
}

// NewCall creates a new Call
func NewCall(span ParseSpan, sourceSpan AbsoluteSourceSpan, receiver AST, args []AST, argumentSpan AbsoluteSourceSpan) *Call {
	return &Call{Base: base(span, sourceSpan), Receiver: receiver, Args: args, ArgumentSpan: argumentSpan}
}

// SafeCall represents `receiver?.(args)`
type SafeCall struct {
	Base
	Receiver     AST
	Args         []AST
	ArgumentSpan AbsoluteSourceSpan
}

// NewSafeCall creates a new SafeCall
func NewSafeCall(span ParseSpan, sourceSpan AbsoluteSourceSpan, receiver AST, args []AST, argumentSpan AbsoluteSourceSpan) *SafeCall {
	return &SafeCall{Base: base(span, sourceSpan), Receiver: receiver, Args: args, ArgumentSpan: argumentSpan}
}

// ParenthesizedExpression represents `(expr)`
type ParenthesizedExpression struct {
	Base
	Expression AST
}

// NewParenthesizedExpression creates a new ParenthesizedExpression
func NewParenthesizedExpression(span ParseSpan, sourceSpan AbsoluteSourceSpan, expression AST) *ParenthesizedExpression {
	return &ParenthesizedExpression{Base: base(span, sourceSpan), Expression: expression}
}

// Quote represents `prefix:uninterpretedExpression`. The text after the
// colon is kept verbatim and never parsed.
type Quote struct {
	Base
	Prefix                  string
	UninterpretedExpression string
	Location                string
}

// NewQuote creates a new Quote
func NewQuote(span ParseSpan, sourceSpan AbsoluteSourceSpan, prefix, uninterpretedExpression, location string) *Quote {
	return &Quote{Base: base(span, sourceSpan), Prefix: prefix, UninterpretedExpression: uninterpretedExpression, Location: location}
}

// ASTWithSource wraps the root of a parsed expression together with the
// text it was parsed from.
type ASTWithSource struct {
	Base
	AST            AST
	Source         string
	Location       string
	AbsoluteOffset int
	Errors         []*util.ParseError
}

// NewASTWithSource creates a new ASTWithSource
func NewASTWithSource(ast AST, source string, location string, absoluteOffset int, errors []*util.ParseError) *ASTWithSource {
	span := NewParseSpan(0, len(source))
	return &ASTWithSource{
		Base:           base(span, span.ToAbsolute(absoluteOffset)),
		AST:            ast,
		Source:         source,
		Location:       location,
		AbsoluteOffset: absoluteOffset,
		Errors:         errors,
	}
}

// IsAssignmentOperation reports whether op writes to its left operand.
func IsAssignmentOperation(op string) bool {
	switch op {
	case "=", "+=", "-=", "*=", "/=", "%=", "**=", "&&=", "||=", "??=":
		return true
	}
	return false
}

// TemplateBindingIdentifier is a key or value name in microsyntax.
type TemplateBindingIdentifier struct {
	Source string
	Span   AbsoluteSourceSpan
}

// TemplateBinding is either a *VariableBinding or an *ExpressionBinding.
type TemplateBinding interface {
	BindingKey() TemplateBindingIdentifier
	BindingSourceSpan() AbsoluteSourceSpan
	isTemplateBinding()
}

// VariableBinding is `let x = y` or `y as x` in microsyntax. Value is nil
// when the variable binds the implicit context.
type VariableBinding struct {
	SourceSpan AbsoluteSourceSpan
	Key        TemplateBindingIdentifier
	Value      *TemplateBindingIdentifier
}

func (b *VariableBinding) BindingKey() TemplateBindingIdentifier { return b.Key }
func (b *VariableBinding) BindingSourceSpan() AbsoluteSourceSpan { return b.SourceSpan }
func (*VariableBinding) isTemplateBinding() {}

// ExpressionBinding is `ngIf cond` or `of items` in microsyntax. Value is nil
// when the key has no expression.
type ExpressionBinding struct {
	SourceSpan AbsoluteSourceSpan
	Key        TemplateBindingIdentifier
	Value      *ASTWithSource
}

func (b *ExpressionBinding) BindingKey() TemplateBindingIdentifier { return b.Key }
func (b *ExpressionBinding) BindingSourceSpan() AbsoluteSourceSpan { return b.SourceSpan }
func (*ExpressionBinding) isTemplateBinding() {}
