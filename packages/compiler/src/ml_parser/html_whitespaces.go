package ml_parser

import (
	"regexp"
)

// PreserveWsAttrName marks an element whose whitespace is kept verbatim.
const PreserveWsAttrName = "ngPreserveWhitespaces"

var skipWsTrimTags = map[string]bool{
	"pre":      true,
	"template": true,
	"textarea": true,
	"script":   true,
	"style":    true,
}

// Equivalent to \s with \u00a0 (non-breaking space) excluded
const wsChars = " \f\n\r\t\v\u1680\u180e\u2000-\u200a\u2028\u2029\u202f\u205f\u3000\ufeff"

var (
	noWsRegexp      = regexp.MustCompile(`[^` + wsChars + `]`)
	wsReplaceRegexp = regexp.MustCompile(`[` + wsChars + `]{2,}`)
)

// HasPreserveWhitespacesAttr checks if attributes contain preserve whitespaces attribute
func HasPreserveWhitespacesAttr(attrs []*Attribute) bool {
	for _, attr := range attrs {
		if attr.Name == PreserveWsAttrName {
			return true
		}
	}
	return false
}

// RemoveWhitespaces drops whitespace-only text nodes and collapses runs of
// whitespace in the remaining ones to a single space. Source spans are left
// pointing at the literal text, so offsets inside a collapsed value no
// longer line up with the source.
func RemoveWhitespaces(nodes []Node) []Node {
	var result []Node
	for _, node := range nodes {
		if n := removeWhitespaces(node); n != nil {
			result = append(result, n)
		}
	}
	return result
}

func removeWhitespaces(node Node) Node {
	switch n := node.(type) {
	case *Element:
		el := *n
		if skipWsTrimTags[n.Name] || HasPreserveWhitespacesAttr(n.Attrs) {
			// keep children, only drop the marker attribute
			el.Attrs = nil
			for _, attr := range n.Attrs {
				if attr.Name != PreserveWsAttrName {
					el.Attrs = append(el.Attrs, attr)
				}
			}
			return &el
		}
		el.Children = RemoveWhitespaces(n.Children)
		return &el
	case *Text:
		if !noWsRegexp.MatchString(n.Value) {
			return nil
		}
		return &Text{Value: wsReplaceRegexp.ReplaceAllString(n.Value, " "), Span: n.Span}
	default:
		return node
	}
}
