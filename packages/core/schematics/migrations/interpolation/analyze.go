package interpolation

import (
	"strings"
)

// Fix is one rewritten interpolation. Start and End are offsets in the
// template content before any rule ran.
type Fix struct {
	Rule         string
	OriginalText string
	Start        int
	End          int
	Replacement  string
}

// TemplateAnalysis is the result of running every rule over a template.
type TemplateAnalysis struct {
	// Content is the rewritten template.
	Content string
	// Fixes are ordered by rule, then by position.
	Fixes []Fix
}

// replacement is a rewrite made by one rule, in the coordinates of that
// rule's input.
type replacement struct {
	start, end, length int
}

// AnalyzeTemplate rewrites the malformed interpolations of content. quote is
// the character delimiting an inline template, 0 for template files.
func AnalyzeTemplate(content string, quote byte) *TemplateAnalysis {
	analysis := &TemplateAnalysis{Content: content}
	var passes [][]replacement

	for _, r := range rules {
		source := analysis.Content
		var out strings.Builder
		var made []replacement
		cursor := 0
		for _, loc := range r.pattern.FindAllStringSubmatchIndex(source, -1) {
			groups := make([]string, len(loc)/2)
			for i := range groups {
				if loc[2*i] >= 0 {
					groups[i] = source[loc[2*i]:loc[2*i+1]]
				}
			}
			text, ok := r.rewrite(groups, quote)
			if !ok {
				continue
			}

			start, end := originalOffset(passes, loc[0]), originalOffset(passes, loc[1])
			analysis.Fixes = append(analysis.Fixes, Fix{
				Rule:         r.name,
				OriginalText: groups[0],
				Start:        start,
				End:          end,
				Replacement:  text,
			})
			made = append(made, replacement{start: loc[0], end: loc[1], length: len(text)})
			out.WriteString(source[cursor:loc[0]])
			out.WriteString(text)
			cursor = loc[1]
		}
		if len(made) == 0 {
			continue
		}
		out.WriteString(source[cursor:])
		analysis.Content = out.String()
		passes = append(passes, made)
	}
	return analysis
}

// originalOffset maps an offset in the output of the last pass back to the
// text before the first one. Offsets inside a replacement map to its start.
func originalOffset(passes [][]replacement, offset int) int {
	for i := len(passes) - 1; i >= 0; i-- {
		offset = back(passes[i], offset)
	}
	return offset
}

func back(made []replacement, offset int) int {
	delta := 0
	for _, r := range made {
		start := r.start + delta
		if offset < start {
			break
		}
		if offset < start+r.length {
			return r.start
		}
		delta += r.length - (r.end - r.start)
	}
	return offset - delta
}
