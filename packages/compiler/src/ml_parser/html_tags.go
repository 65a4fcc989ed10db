package ml_parser

import "strings"

var voidElements = map[string]bool{
	"area":   true,
	"base":   true,
	"br":     true,
	"col":    true,
	"embed":  true,
	"hr":     true,
	"img":    true,
	"input":  true,
	"link":   true,
	"meta":   true,
	"param":  true,
	"source": true,
	"track":  true,
	"wbr":    true,
}

// rawTextElements hold their content as a single text node.
var rawTextElements = map[string]bool{
	"script":   true,
	"style":    true,
	"textarea": true,
	"title":    true,
}

// IsVoidElement reports whether tagName never has content or an end tag.
func IsVoidElement(tagName string) bool {
	return voidElements[strings.ToLower(tagName)]
}

func isRawTextElement(tagName string) bool {
	return rawTextElements[strings.ToLower(tagName)]
}

// IsNgTemplate reports whether tagName is the template element.
func IsNgTemplate(tagName string) bool {
	return tagName == "ng-template"
}

// IsNgContent reports whether tagName is the content projection element.
func IsNgContent(tagName string) bool {
	return tagName == "ng-content"
}
