package expression_parser

import (
	"strconv"
	"strings"

	"ngtools-go/packages/compiler/src/core"
)

// TokenType represents the type of a token
type TokenType int

const (
	TokenTypeCharacter TokenType = iota
	TokenTypeIdentifier
	TokenTypePrivateIdentifier
	TokenTypeKeyword
	TokenTypeString
	TokenTypeOperator
	TokenTypeNumber
	TokenTypeError
)

var keywords = []string{
	"var",
	"let",
	"as",
	"null",
	"undefined",
	"true",
	"false",
	"if",
	"else",
	"this",
	"typeof",
	"void",
	"in",
}

// Token represents a token in the expression
type Token struct {
	Index    int
	End      int
	Type     TokenType
	NumValue float64
	StrValue string
}

// NewToken creates a new Token
func NewToken(index, end int, typ TokenType, numValue float64, strValue string) *Token {
	return &Token{
		Index:    index,
		End:      end,
		Type:     typ,
		NumValue: numValue,
		StrValue: strValue,
	}
}

// IsCharacter checks if the token is a character with the given code
func (t *Token) IsCharacter(code rune) bool {
	return t.Type == TokenTypeCharacter && rune(t.NumValue) == code
}

// IsOperator checks if the token is an operator with the given value
func (t *Token) IsOperator(operator string) bool {
	return t.Type == TokenTypeOperator && t.StrValue == operator
}

// IsIdentifier checks if the token is an identifier
func (t *Token) IsIdentifier() bool {
	return t.Type == TokenTypeIdentifier
}

// IsKeyword checks if the token is a keyword
func (t *Token) IsKeyword() bool {
	return t.Type == TokenTypeKeyword
}

// IsKeywordValue checks if the token is the given keyword
func (t *Token) IsKeywordValue(keyword string) bool {
	return t.Type == TokenTypeKeyword && t.StrValue == keyword
}

// String returns the string representation of the token
func (t *Token) String() string {
	switch t.Type {
	case TokenTypeNumber:
		return strconv.FormatFloat(t.NumValue, 'f', -1, 64)
	default:
		return t.StrValue
	}
}

// Lexer tokenizes expressions
type Lexer struct{}

// NewLexer creates a new Lexer
func NewLexer() *Lexer {
	return &Lexer{}
}

// Tokenize tokenizes the given text. Token offsets are relative to text.
func (l *Lexer) Tokenize(text string) []*Token {
	s := newScanner(text)
	return s.scan()
}

// EOF represents the end of file token
var EOF = NewToken(-1, -1, TokenTypeCharacter, 0, "")

type scanner struct {
	input  string
	length int
	peek   rune
	index  int
	tokens []*Token
}

func newScanner(input string) *scanner {
	s := &scanner{
		input:  input,
		length: len(input),
		index:  -1,
	}
	s.advance()
	return s
}

func (s *scanner) advance() {
	s.index++
	if s.index >= s.length {
		s.peek = core.CharEOF
	} else {
		s.peek = rune(s.input[s.index])
	}
}

func (s *scanner) scan() []*Token {
	for token := s.scanToken(); token != nil; token = s.scanToken() {
		s.tokens = append(s.tokens, token)
	}
	return s.tokens
}

func (s *scanner) scanToken() *Token {
	for s.index < s.length && s.peek <= core.CharSPACE {
		s.advance()
	}
	if s.index >= s.length {
		return nil
	}

	peek := s.peek
	start := s.index

	if isIdentifierStart(peek) {
		return s.scanIdentifier()
	}
	if core.IsDigit(peek) {
		return s.scanNumber(start)
	}

	switch peek {
	case core.CharPERIOD:
		s.advance()
		if core.IsDigit(s.peek) {
			return s.scanNumber(start)
		}
		return newCharacterToken(start, s.index, core.CharPERIOD)
	case core.CharLPAREN, core.CharRPAREN, core.CharLBRACE, core.CharRBRACE,
		core.CharLBRACKET, core.CharRBRACKET, core.CharCOMMA, core.CharCOLON, core.CharSEMICOLON:
		s.advance()
		return newCharacterToken(start, s.index, peek)
	case core.CharSQ, core.CharDQ:
		return s.scanString()
	case core.CharHASH:
		return s.scanPrivateIdentifier()
	case core.CharPLUS, core.CharMINUS, core.CharSLASH, core.CharPERCENT, core.CharLT, core.CharGT:
		return s.scanComplexOperator(start, string(peek), core.CharEQ, "=")
	case core.CharCARET:
		s.advance()
		return newOperatorToken(start, s.index, "^")
	case core.CharSTAR:
		return s.scanStar(start)
	case core.CharQUESTION:
		return s.scanQuestion(start)
	case core.CharBANG, core.CharEQ:
		return s.scanComplexOperator(start, string(peek), core.CharEQ, "=", core.CharEQ)
	case core.CharAMPERSAND:
		return s.scanComplexOperator(start, "&", core.CharAMPERSAND, "&", core.CharEQ)
	case core.CharBAR:
		return s.scanComplexOperator(start, "|", core.CharBAR, "|", core.CharEQ)
	case core.CharNBSP:
		for core.IsWhitespace(s.peek) {
			s.advance()
		}
		return s.scanToken()
	}

	s.advance()
	return s.error("Unexpected character ["+string(peek)+"]", 0)
}

func (s *scanner) scanComplexOperator(start int, one string, twoCode rune, two string, threeCode ...rune) *Token {
	s.advance()
	str := one
	if s.peek == twoCode {
		s.advance()
		str += two
	}
	if len(threeCode) > 0 && s.peek == threeCode[0] {
		s.advance()
		str += string(threeCode[0])
	}
	return newOperatorToken(start, s.index, str)
}

func (s *scanner) scanIdentifier() *Token {
	start := s.index
	s.advance()
	for isIdentifierPart(s.peek) {
		s.advance()
	}
	str := s.input[start:s.index]
	for _, keyword := range keywords {
		if str == keyword {
			return NewToken(start, s.index, TokenTypeKeyword, 0, str)
		}
	}
	return NewToken(start, s.index, TokenTypeIdentifier, 0, str)
}

func (s *scanner) scanPrivateIdentifier() *Token {
	start := s.index
	s.advance()
	if !isIdentifierStart(s.peek) {
		return s.error("Invalid character [#]", -1)
	}
	for isIdentifierPart(s.peek) {
		s.advance()
	}
	return NewToken(start, s.index, TokenTypePrivateIdentifier, 0, s.input[start:s.index])
}

func (s *scanner) scanNumber(start int) *Token {
	simple := s.index == start
	hasSeparators := false
	s.advance() // Skip initial digit
	for {
		if core.IsDigit(s.peek) {
			// Do nothing
		} else if s.peek == core.CharUnderscore {
			// Separators are only valid when they're surrounded by digits
			if s.index >= s.length-1 || !core.IsDigit(rune(s.input[s.index-1])) || !core.IsDigit(rune(s.input[s.index+1])) {
				return s.error("Invalid numeric separator", 0)
			}
			hasSeparators = true
		} else if s.peek == core.CharPERIOD {
			simple = false
		} else if s.peek == core.CharE || s.peek == core.CharLowerE {
			s.advance()
			if s.peek == core.CharMINUS || s.peek == core.CharPLUS {
				s.advance()
			}
			if !core.IsDigit(s.peek) {
				return s.error("Invalid exponent", -1)
			}
			simple = false
		} else {
			break
		}
		s.advance()
	}

	str := s.input[start:s.index]
	if hasSeparators {
		str = strings.ReplaceAll(str, "_", "")
	}
	var value float64
	if simple {
		if v, err := strconv.ParseInt(str, 10, 64); err == nil {
			value = float64(v)
		}
	} else if v, err := strconv.ParseFloat(str, 64); err == nil {
		value = v
	}
	return NewToken(start, s.index, TokenTypeNumber, value, "")
}

func (s *scanner) scanString() *Token {
	start := s.index
	quote := s.peek
	s.advance() // Skip initial quote

	var buffer strings.Builder
	marker := s.index

	for s.peek != quote {
		switch s.peek {
		case core.CharBACKSLASH:
			buffer.WriteString(s.input[marker:s.index])
			s.advance()
			if s.peek == core.CharLowerU {
				// 4 character hex code for unicode character
				if s.index+5 > s.length {
					return s.error("Invalid unicode escape", 0)
				}
				hex := s.input[s.index+1 : s.index+5]
				val, err := strconv.ParseInt(hex, 16, 32)
				if err != nil {
					return s.error("Invalid unicode escape [\\u"+hex+"]", 0)
				}
				buffer.WriteRune(rune(val))
				for i := 0; i < 5; i++ {
					s.advance()
				}
			} else {
				buffer.WriteRune(unescape(s.peek))
				s.advance()
			}
			marker = s.index
		case core.CharEOF:
			return s.error("Unterminated quote", 0)
		default:
			s.advance()
		}
	}

	buffer.WriteString(s.input[marker:s.index])
	s.advance() // Skip terminating quote
	return NewToken(start, s.index, TokenTypeString, 0, buffer.String())
}

func (s *scanner) scanQuestion(start int) *Token {
	s.advance()
	operator := "?"
	// `a ?? b` or `a ??= b`
	if s.peek == core.CharQUESTION {
		operator += "?"
		s.advance()
		if s.peek == core.CharEQ {
			operator += "="
			s.advance()
		}
	} else if s.peek == core.CharPERIOD {
		// `a?.b`
		operator += "."
		s.advance()
	}
	return newOperatorToken(start, s.index, operator)
}

func (s *scanner) scanStar(start int) *Token {
	s.advance()
	operator := "*"
	// `*`, `**`, `**=` or `*=`
	if s.peek == core.CharSTAR {
		operator += "*"
		s.advance()
	}
	if s.peek == core.CharEQ {
		operator += "="
		s.advance()
	}
	return newOperatorToken(start, s.index, operator)
}

func (s *scanner) error(message string, offset int) *Token {
	position := s.index + offset
	message = "Lexer Error: " + message + " at column " + strconv.Itoa(position) + " in expression [" + s.input + "]"
	return NewToken(position, s.index, TokenTypeError, 0, message)
}

func isIdentifierStart(code rune) bool {
	return core.IsAsciiLetter(code) || code == core.CharUnderscore || code == core.CharDollar
}

func isIdentifierPart(code rune) bool {
	return isIdentifierStart(code) || core.IsDigit(code)
}

// IsIdentifier reports whether input is a single identifier.
func IsIdentifier(input string) bool {
	if input == "" {
		return false
	}
	s := newScanner(input)
	if !isIdentifierStart(s.peek) {
		return false
	}
	s.advance()
	for s.peek != core.CharEOF {
		if !isIdentifierPart(s.peek) {
			return false
		}
		s.advance()
	}
	return true
}

func unescape(code rune) rune {
	switch code {
	case core.CharLowerN:
		return core.CharLF
	case core.CharLowerF:
		return core.CharFF
	case core.CharLowerR:
		return core.CharCR
	case core.CharLowerT:
		return core.CharTAB
	case core.CharLowerV:
		return core.CharVTAB
	default:
		return code
	}
}

func newCharacterToken(index, end int, code rune) *Token {
	return NewToken(index, end, TokenTypeCharacter, float64(code), string(code))
}

func newOperatorToken(index, end int, text string) *Token {
	return NewToken(index, end, TokenTypeOperator, 0, text)
}
