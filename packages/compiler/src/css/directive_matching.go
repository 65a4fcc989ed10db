package css

import (
	"fmt"
	"regexp"
	"strings"

	"gitlab.com/tozd/go/errors"
)

// selectorGroup indexes the submatches of selectorRegexp
type selectorGroup int

const (
	_                        selectorGroup = iota
	groupNot                               // 1: ":not("
	groupTag                               // 2: tag with prefix
	groupPrefix                            // 3: prefix (. or #)
	groupAttribute                         // 4: attribute name
	groupAttributeDoubleQuot               // 5: attribute value (double quoted)
	groupAttributeSingleQuot               // 6: attribute value (single quoted)
	groupAttributeUnquoted                 // 7: attribute value (unquoted)
	groupNotEnd                            // 8: ")"
	groupSeparator                         // 9: ","
)

// Go regexps have no backreferences, so mismatched quotes are accepted.
var selectorRegexp = regexp.MustCompile(
	`(\:not\()|` +
		`(([\.\#]?)[-\w]+)|` +
		`(?:\[([-.\w*\\$]+)(?:=(?:"([^"]*)"|'([^']*)'|([^\]\s]+)))?\])|` +
		`(\))|` +
		`(\s*,\s*)`,
)

// CssSelector is one compound selector: an optional element, class names,
// attribute name/value pairs and :not() selectors.
type CssSelector struct {
	Element      string
	ClassNames   []string
	Attrs        []string // name, value, name, value, ...
	NotSelectors []*CssSelector
}

// ParseCssSelector parses a selector list such as `my-cmp, [myDir]:not(a)`.
func ParseCssSelector(selector string) ([]*CssSelector, error) {
	var results []*CssSelector
	addResult := func(cssSel *CssSelector) {
		if len(cssSel.NotSelectors) > 0 && cssSel.Element == "" &&
			len(cssSel.ClassNames) == 0 && len(cssSel.Attrs) == 0 {
			cssSel.Element = "*"
		}
		results = append(results, cssSel)
	}

	cssSelector := &CssSelector{}
	current := cssSelector
	inNot := false

	for _, match := range selectorRegexp.FindAllStringSubmatch(selector, -1) {
		if match[groupNot] != "" {
			if inNot {
				return nil, errors.New("nesting :not in a selector is not allowed")
			}
			inNot = true
			current = &CssSelector{}
			cssSelector.NotSelectors = append(cssSelector.NotSelectors, current)
		}

		if tag := match[groupTag]; tag != "" {
			switch match[groupPrefix] {
			case "#":
				current.AddAttribute("id", tag[1:])
			case ".":
				current.AddClassName(tag[1:])
			default:
				current.Element = tag
			}
		}

		if attribute := match[groupAttribute]; attribute != "" {
			value := match[groupAttributeDoubleQuot]
			if value == "" {
				value = match[groupAttributeSingleQuot]
			}
			if value == "" {
				value = match[groupAttributeUnquoted]
			}
			name, err := unescapeAttribute(attribute)
			if err != nil {
				return nil, err
			}
			current.AddAttribute(name, value)
		}

		if match[groupNotEnd] != "" {
			inNot = false
			current = cssSelector
		}

		if match[groupSeparator] != "" {
			if inNot {
				return nil, errors.New("multiple selectors in :not are not supported")
			}
			addResult(cssSelector)
			cssSelector = &CssSelector{}
			current = cssSelector
		}
	}

	addResult(cssSelector)
	return results, nil
}

// CreateElementCssSelector builds the selector an element presents to the
// matcher. attrs holds name/value pairs; the class attribute is split into
// class names.
func CreateElementCssSelector(elementName string, attrs [][2]string) *CssSelector {
	cssSelector := &CssSelector{Element: elementName}
	for _, attr := range attrs {
		name, value := attr[0], attr[1]
		cssSelector.AddAttribute(name, value)
		if strings.ToLower(name) == "class" {
			for _, className := range strings.Fields(value) {
				cssSelector.AddClassName(className)
			}
		}
	}
	return cssSelector
}

// unescapeAttribute unescapes \$ sequences from the CSS attribute selector
func unescapeAttribute(attr string) (string, error) {
	var result strings.Builder
	escaping := false
	for i := 0; i < len(attr); i++ {
		char := attr[i]
		if char == '\\' {
			escaping = true
			continue
		}
		if char == '$' && !escaping {
			return "", errors.Errorf(`error in attribute selector "%s". unescaped "$" is not supported. please escape with "\$"`, attr)
		}
		escaping = false
		result.WriteByte(char)
	}
	return result.String(), nil
}

func escapeAttribute(attr string) string {
	result := strings.ReplaceAll(attr, "\\", "\\\\")
	return strings.ReplaceAll(result, "$", "\\$")
}

// AddAttribute adds an attribute. Values are matched case-insensitively.
func (cs *CssSelector) AddAttribute(name, value string) {
	cs.Attrs = append(cs.Attrs, name, strings.ToLower(value))
}

// AddClassName adds a class name
func (cs *CssSelector) AddClassName(name string) {
	cs.ClassNames = append(cs.ClassNames, strings.ToLower(name))
}

func (cs *CssSelector) String() string {
	var res strings.Builder
	res.WriteString(cs.Element)
	for _, klass := range cs.ClassNames {
		res.WriteString("." + klass)
	}
	for i := 0; i < len(cs.Attrs); i += 2 {
		name, value := escapeAttribute(cs.Attrs[i]), cs.Attrs[i+1]
		if value != "" {
			fmt.Fprintf(&res, "[%s=%s]", name, value)
		} else {
			fmt.Fprintf(&res, "[%s]", name)
		}
	}
	for _, notSelector := range cs.NotSelectors {
		fmt.Fprintf(&res, ":not(%s)", notSelector)
	}
	return res.String()
}

// SelectorMatcher finds the values registered for selectors matching an
// element selector.
type SelectorMatcher[T any] struct {
	elementMap          map[string][]*selectorContext[T]
	elementPartialMap   map[string]*SelectorMatcher[T]
	classMap            map[string][]*selectorContext[T]
	classPartialMap     map[string]*SelectorMatcher[T]
	attrValueMap        map[string]map[string][]*selectorContext[T]
	attrValuePartialMap map[string]map[string]*SelectorMatcher[T]
	listContexts        []*selectorListContext
}

// NewSelectorMatcher creates a new SelectorMatcher
func NewSelectorMatcher[T any]() *SelectorMatcher[T] {
	return &SelectorMatcher[T]{
		elementMap:          make(map[string][]*selectorContext[T]),
		elementPartialMap:   make(map[string]*SelectorMatcher[T]),
		classMap:            make(map[string][]*selectorContext[T]),
		classPartialMap:     make(map[string]*SelectorMatcher[T]),
		attrValueMap:        make(map[string]map[string][]*selectorContext[T]),
		attrValuePartialMap: make(map[string]map[string]*SelectorMatcher[T]),
	}
}

// AddSelectables registers value for every selector of a selector list. A
// list matches at most once per Match call.
func (sm *SelectorMatcher[T]) AddSelectables(cssSelectors []*CssSelector, value T) {
	var listContext *selectorListContext
	if len(cssSelectors) > 1 {
		listContext = &selectorListContext{}
		sm.listContexts = append(sm.listContexts, listContext)
	}
	for _, cssSelector := range cssSelectors {
		sm.addSelectable(cssSelector, value, listContext)
	}
}

func (sm *SelectorMatcher[T]) addSelectable(cssSelector *CssSelector, value T, listContext *selectorListContext) {
	matcher := sm
	selectable := &selectorContext[T]{selector: cssSelector, value: value, listContext: listContext}

	if cssSelector.Element != "" {
		if len(cssSelector.Attrs) == 0 && len(cssSelector.ClassNames) == 0 {
			addTerminal(matcher.elementMap, cssSelector.Element, selectable)
		} else {
			matcher = addPartial(matcher.elementPartialMap, cssSelector.Element)
		}
	}

	for i, className := range cssSelector.ClassNames {
		if len(cssSelector.Attrs) == 0 && i == len(cssSelector.ClassNames)-1 {
			addTerminal(matcher.classMap, className, selectable)
		} else {
			matcher = addPartial(matcher.classPartialMap, className)
		}
	}

	attrs := cssSelector.Attrs
	for i := 0; i < len(attrs); i += 2 {
		name, attrValue := attrs[i], attrs[i+1]
		if i == len(attrs)-2 {
			terminalValuesMap, ok := matcher.attrValueMap[name]
			if !ok {
				terminalValuesMap = make(map[string][]*selectorContext[T])
				matcher.attrValueMap[name] = terminalValuesMap
			}
			addTerminal(terminalValuesMap, attrValue, selectable)
		} else {
			partialValuesMap, ok := matcher.attrValuePartialMap[name]
			if !ok {
				partialValuesMap = make(map[string]*SelectorMatcher[T])
				matcher.attrValuePartialMap[name] = partialValuesMap
			}
			matcher = addPartial(partialValuesMap, attrValue)
		}
	}
}

func addTerminal[T any](m map[string][]*selectorContext[T], name string, selectable *selectorContext[T]) {
	m[name] = append(m[name], selectable)
}

func addPartial[T any](m map[string]*SelectorMatcher[T], name string) *SelectorMatcher[T] {
	matcher, ok := m[name]
	if !ok {
		matcher = NewSelectorMatcher[T]()
		m[name] = matcher
	}
	return matcher
}

// MatchCallback receives each matching selector with its registered value
type MatchCallback[T any] func(selector *CssSelector, value T)

// Match calls matchedCallback for every registered selector matching
// cssSelector and reports whether any matched. matchedCallback may be nil.
func (sm *SelectorMatcher[T]) Match(cssSelector *CssSelector, matchedCallback MatchCallback[T]) bool {
	result := false
	for _, listContext := range sm.listContexts {
		listContext.alreadyMatched = false
	}

	result = sm.matchTerminal(sm.elementMap, cssSelector.Element, cssSelector, matchedCallback) || result
	result = sm.matchPartial(sm.elementPartialMap, cssSelector.Element, cssSelector, matchedCallback) || result

	for _, className := range cssSelector.ClassNames {
		result = sm.matchTerminal(sm.classMap, className, cssSelector, matchedCallback) || result
		result = sm.matchPartial(sm.classPartialMap, className, cssSelector, matchedCallback) || result
	}

	attrs := cssSelector.Attrs
	for i := 0; i < len(attrs); i += 2 {
		name, value := attrs[i], attrs[i+1]
		if terminalValuesMap, ok := sm.attrValueMap[name]; ok {
			if value != "" {
				result = sm.matchTerminal(terminalValuesMap, "", cssSelector, matchedCallback) || result
			}
			result = sm.matchTerminal(terminalValuesMap, value, cssSelector, matchedCallback) || result
		}
		if partialValuesMap, ok := sm.attrValuePartialMap[name]; ok {
			if value != "" {
				result = sm.matchPartial(partialValuesMap, "", cssSelector, matchedCallback) || result
			}
			result = sm.matchPartial(partialValuesMap, value, cssSelector, matchedCallback) || result
		}
	}
	return result
}

func (sm *SelectorMatcher[T]) matchTerminal(m map[string][]*selectorContext[T], name string, cssSelector *CssSelector, matchedCallback MatchCallback[T]) bool {
	selectables := append([]*selectorContext[T](nil), m[name]...)
	selectables = append(selectables, m["*"]...)
	result := false
	for _, selectable := range selectables {
		if selectable.finalize(cssSelector, matchedCallback) {
			result = true
		}
	}
	return result
}

func (sm *SelectorMatcher[T]) matchPartial(m map[string]*SelectorMatcher[T], name string, cssSelector *CssSelector, matchedCallback MatchCallback[T]) bool {
	nested, ok := m[name]
	if !ok {
		return false
	}
	return nested.Match(cssSelector, matchedCallback)
}

type selectorListContext struct {
	alreadyMatched bool
}

type selectorContext[T any] struct {
	selector    *CssSelector
	value       T
	listContext *selectorListContext
}

func (sc *selectorContext[T]) finalize(cssSelector *CssSelector, callback MatchCallback[T]) bool {
	result := true
	if len(sc.selector.NotSelectors) > 0 && (sc.listContext == nil || !sc.listContext.alreadyMatched) {
		notMatcher := NewSelectorMatcher[struct{}]()
		notMatcher.AddSelectables(sc.selector.NotSelectors, struct{}{})
		result = !notMatcher.Match(cssSelector, nil)
	}
	if result && callback != nil && (sc.listContext == nil || !sc.listContext.alreadyMatched) {
		if sc.listContext != nil {
			sc.listContext.alreadyMatched = true
		}
		callback(sc.selector, sc.value)
	}
	return result
}
