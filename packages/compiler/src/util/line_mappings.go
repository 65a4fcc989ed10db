package util

import "sort"

// LineAndCharacter is a 0-based line/character pair.
type LineAndCharacter struct {
	Line      int
	Character int
}

// ComputeLineStartsMap returns the offset of the first character of every
// line in text. "\r\n" and a lone "\r" each count as a single line break.
func ComputeLineStartsMap(text string) []int {
	result := []int{0}
	pos := 0
	for pos < len(text) {
		ch := text[pos]
		pos++
		if ch == '\r' {
			if pos < len(text) && text[pos] == '\n' {
				pos++
			}
			result = append(result, pos)
		} else if ch == '\n' {
			result = append(result, pos)
		}
	}
	return result
}

// GetLineAndCharacterFromPosition maps an offset to its 0-based line and
// character using a table from ComputeLineStartsMap.
func GetLineAndCharacterFromPosition(lineStarts []int, position int) LineAndCharacter {
	// index of the first line start greater than position, minus one
	line := sort.SearchInts(lineStarts, position+1) - 1
	if line < 0 {
		line = 0
	}
	return LineAndCharacter{Line: line, Character: position - lineStarts[line]}
}

// GetPositionFromLineAndCharacter is the inverse of
// GetLineAndCharacterFromPosition. Lines past the end clamp to the last line.
func GetPositionFromLineAndCharacter(lineStarts []int, line, character int) int {
	if line >= len(lineStarts) {
		line = len(lineStarts) - 1
	}
	if line < 0 {
		line = 0
	}
	return lineStarts[line] + character
}
