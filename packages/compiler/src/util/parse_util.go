package util

import (
	"fmt"
)

// ParseSourceFile is the text of one template or source file together with
// the URL it is reported under.
type ParseSourceFile struct {
	Content string
	URL     string

	lineStarts []int
}

// NewParseSourceFile creates a new ParseSourceFile
func NewParseSourceFile(content, url string) *ParseSourceFile {
	return &ParseSourceFile{
		Content: content,
		URL:     url,
	}
}

// LineStarts returns the cached line-start table of the file.
func (f *ParseSourceFile) LineStarts() []int {
	if f.lineStarts == nil {
		f.lineStarts = ComputeLineStartsMap(f.Content)
	}
	return f.lineStarts
}

// LocationAt returns the location of the given offset within the file.
func (f *ParseSourceFile) LocationAt(offset int) *ParseLocation {
	lc := GetLineAndCharacterFromPosition(f.LineStarts(), offset)
	return NewParseLocation(f, offset, lc.Line, lc.Character)
}

// SpanAt returns a span covering [start, end) of the file.
func (f *ParseSourceFile) SpanAt(start, end int) *ParseSourceSpan {
	return NewParseSourceSpan(f.LocationAt(start), f.LocationAt(end), nil, nil)
}

// ParseLocation represents a location in the source file. Line and Col are
// 0-based.
type ParseLocation struct {
	File   *ParseSourceFile
	Offset int
	Line   int
	Col    int
}

// NewParseLocation creates a new ParseLocation
func NewParseLocation(file *ParseSourceFile, offset, line, col int) *ParseLocation {
	return &ParseLocation{
		File:   file,
		Offset: offset,
		Line:   line,
		Col:    col,
	}
}

// String returns a string representation of the location
func (p *ParseLocation) String() string {
	if p.Offset >= 0 {
		return fmt.Sprintf("%s@%d:%d", p.File.URL, p.Line, p.Col)
	}
	return p.File.URL
}

// MoveBy returns a new location delta characters away, clamped to the file.
func (p *ParseLocation) MoveBy(delta int) *ParseLocation {
	offset := p.Offset + delta
	if offset < 0 {
		offset = 0
	}
	if offset > len(p.File.Content) {
		offset = len(p.File.Content)
	}
	return p.File.LocationAt(offset)
}

// ParseSourceSpan represents a span of source code. FullStart differs from
// Start when leading trivia was skipped.
type ParseSourceSpan struct {
	Start     *ParseLocation
	End       *ParseLocation
	FullStart *ParseLocation
	Details   *string
}

// NewParseSourceSpan creates a new ParseSourceSpan
func NewParseSourceSpan(start, end *ParseLocation, fullStart *ParseLocation, details *string) *ParseSourceSpan {
	if fullStart == nil {
		fullStart = start
	}
	return &ParseSourceSpan{
		Start:     start,
		End:       end,
		FullStart: fullStart,
		Details:   details,
	}
}

// String returns the source code in this span
func (p *ParseSourceSpan) String() string {
	return p.Start.File.Content[p.Start.Offset:p.End.Offset]
}

// ParseErrorLevel represents the level of a parse error
type ParseErrorLevel int

const (
	ParseErrorLevelWarning ParseErrorLevel = iota
	ParseErrorLevelError
)

// ParseError represents a parse error
type ParseError struct {
	Span  *ParseSourceSpan
	Msg   string
	Level ParseErrorLevel
}

// NewParseError creates a new ParseError
func NewParseError(span *ParseSourceSpan, msg string) *ParseError {
	return &ParseError{
		Span:  span,
		Msg:   msg,
		Level: ParseErrorLevelError,
	}
}

// Error implements the error interface
func (p *ParseError) Error() string {
	if p.Span == nil || p.Span.Start == nil {
		return p.Msg
	}
	return fmt.Sprintf("%s: %s", p.Msg, p.Span.Start)
}
