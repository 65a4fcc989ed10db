package utils

import (
	"ngtools-go/packages/compiler/src/util"
)

// LineMappings maps offsets of one text to line and column positions.
type LineMappings struct {
	lineStarts []int
}

// NewLineMappings computes the line starts of text
func NewLineMappings(text string) *LineMappings {
	return &LineMappings{lineStarts: util.ComputeLineStartsMap(text)}
}

// LineAndCharacter returns the 0-based line and character of offset.
func (m *LineMappings) LineAndCharacter(offset int) util.LineAndCharacter {
	return util.GetLineAndCharacterFromPosition(m.lineStarts, offset)
}

// Position returns the 1-based line and column of offset, as shown to users.
func (m *LineMappings) Position(offset int) (line, column int) {
	lc := m.LineAndCharacter(offset)
	return lc.Line + 1, lc.Character + 1
}

// Offset is the inverse of LineAndCharacter.
func (m *LineMappings) Offset(line, character int) int {
	return util.GetPositionFromLineAndCharacter(m.lineStarts, line, character)
}
