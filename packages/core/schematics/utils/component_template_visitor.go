package utils

import (
	"path"
	"regexp"
	"strings"

	"gitlab.com/tozd/go/errors"

	"ngtools-go/packages/compiler/src/ml_parser"
	"ngtools-go/packages/compiler/src/util"
)

var (
	componentRe     = regexp.MustCompile(`@Component\s*\(\s*\{`)
	classRe         = regexp.MustCompile(`\bclass\s+([A-Za-z_$][\w$]*)`)
	propertyKeyRe   = regexp.MustCompile(`^(?:([A-Za-z_$][\w$]*)|'([^']*)'|"([^"]*)")\s*:`)
	interpolationRe = regexp.MustCompile(`^\[\s*(?:'([^']*)'|"([^"]*)")\s*,\s*(?:'([^']*)'|"([^"]*)")\s*,?\s*\]$`)
)

// InterpolationKind tells how a component configures its interpolation
// delimiters.
type InterpolationKind int

const (
	InterpolationDefault InterpolationKind = iota
	// InterpolationCustom is a literal pair of delimiters other than the default.
	InterpolationCustom
	// InterpolationIndeterminate is a value that cannot be read statically.
	InterpolationIndeterminate
)

// ResolvedTemplate is a component template and where it lives.
type ResolvedTemplate struct {
	ClassName string
	Content   string
	Inline    bool
	// FilePath is the file containing Content: the TypeScript file for
	// inline templates, the template file otherwise.
	FilePath string
	// Start is the offset of Content within FilePath.
	Start int
	// Quote is the quote character delimiting an inline template, 0 for
	// external templates.
	Quote               byte
	Interpolation       InterpolationKind
	InterpolationConfig ml_parser.InterpolationConfig

	mappings *LineMappings
}

// LineAndCharacter returns the 0-based position of an offset in FilePath.
func (t *ResolvedTemplate) LineAndCharacter(offset int) util.LineAndCharacter {
	return t.mappings.LineAndCharacter(offset)
}

// Position returns the 1-based line and column of an offset in FilePath.
func (t *ResolvedTemplate) Position(offset int) (line, column int) {
	return t.mappings.Position(offset)
}

// ComponentDecl is a component class found in a TypeScript file.
type ComponentDecl struct {
	ClassName      string
	Selector       string
	SourceFilePath string
	SourceContent  string
	// Template is nil when the component declares none.
	Template *ResolvedTemplate
}

// NgComponentTemplateVisitor collects the templates of the components
// declared in TypeScript files. An external template shared by several
// components is resolved once; inline templates are resolved per
// occurrence.
type NgComponentTemplateVisitor struct {
	tree *Tree

	// ResolvedTemplates holds each distinct template in discovery order.
	ResolvedTemplates []*ResolvedTemplate
	// Components holds every component in discovery order.
	Components []*ComponentDecl

	externalTemplates map[string]*ResolvedTemplate
}

// NewNgComponentTemplateVisitor creates a visitor reading from tree
func NewNgComponentTemplateVisitor(tree *Tree) *NgComponentTemplateVisitor {
	return &NgComponentTemplateVisitor{tree: tree, externalTemplates: map[string]*ResolvedTemplate{}}
}

// VisitFile collects the components of the TypeScript file at p. When p or
// one of its external templates cannot be read nothing from p is kept.
func (v *NgComponentTemplateVisitor) VisitFile(p string) error {
	p = NormalizePath(p)
	data, err := v.tree.Read(p)
	if err != nil {
		return err
	}
	source := string(data)
	sourceMappings := NewLineMappings(source)

	var components []*ComponentDecl
	var resolved []*ResolvedTemplate
	pendingExternal := map[string]*ResolvedTemplate{}

	for _, loc := range componentRe.FindAllStringIndex(source, -1) {
		open := loc[1] - 1
		end := matchingBrace(source, open)
		if end == -1 {
			continue
		}
		decl := &ComponentDecl{SourceFilePath: p, SourceContent: source}
		if m := classRe.FindStringSubmatch(source[end:]); m != nil {
			decl.ClassName = m[1]
		}

		props := objectProperties(source, open, end)
		if prop, ok := props["selector"]; ok {
			if value, _, ok := stringLiteral(source, prop); ok {
				decl.Selector = value
			}
		}
		kind, config := interpolationOf(source, props)

		if prop, ok := props["template"]; ok {
			if content, start, ok := stringLiteral(source, prop); ok {
				template := &ResolvedTemplate{
					ClassName:           decl.ClassName,
					Content:             content,
					Inline:              true,
					FilePath:            p,
					Start:               start,
					Quote:               source[start-1],
					Interpolation:       kind,
					InterpolationConfig: config,
					mappings:            sourceMappings,
				}
				decl.Template = template
				resolved = append(resolved, template)
			}
		} else if prop, ok := props["templateUrl"]; ok {
			if url, _, ok := stringLiteral(source, prop); ok {
				templatePath := NormalizePath(path.Join(path.Dir(p), url))
				template := v.externalTemplates[templatePath]
				if template == nil {
					template = pendingExternal[templatePath]
				}
				if template == nil {
					content, err := v.tree.Read(templatePath)
					if err != nil {
						return errors.Errorf("%s: resolving template of %s: %w", p, decl.ClassName, err)
					}
					template = &ResolvedTemplate{
						ClassName:           decl.ClassName,
						Content:             string(content),
						FilePath:            templatePath,
						Interpolation:       kind,
						InterpolationConfig: config,
						mappings:            NewLineMappings(string(content)),
					}
					pendingExternal[templatePath] = template
					resolved = append(resolved, template)
				}
				decl.Template = template
			}
		}
		components = append(components, decl)
	}

	for templatePath, template := range pendingExternal {
		v.externalTemplates[templatePath] = template
	}
	v.ResolvedTemplates = append(v.ResolvedTemplates, resolved...)
	v.Components = append(v.Components, components...)
	return nil
}

func interpolationOf(source string, props map[string]span) (InterpolationKind, ml_parser.InterpolationConfig) {
	prop, ok := props["interpolation"]
	if !ok {
		return InterpolationDefault, ml_parser.DefaultInterpolationConfig
	}
	m := interpolationRe.FindStringSubmatch(source[prop.start:prop.end])
	if m == nil {
		return InterpolationIndeterminate, ml_parser.DefaultInterpolationConfig
	}
	config, err := ml_parser.NewInterpolationConfig([]string{m[1] + m[2], m[3] + m[4]})
	if err != nil {
		return InterpolationIndeterminate, ml_parser.DefaultInterpolationConfig
	}
	if config.IsDefault() {
		return InterpolationDefault, config
	}
	return InterpolationCustom, config
}

// span is a [start, end) range of a source text.
type span struct {
	start, end int
}

// objectProperties returns the value ranges of the top level properties of
// the object literal between the braces at open and end. Values are
// trimmed of surrounding whitespace.
func objectProperties(source string, open, end int) map[string]span {
	props := map[string]span{}
	i := open + 1
	for i < end {
		i = skipTrivia(source, i, end)
		if i >= end {
			break
		}
		m := propertyKeyRe.FindStringSubmatch(source[i:end])
		if m == nil {
			// spread, method or shorthand property
			i = skipValue(source, i, end)
			i++
			continue
		}
		name := m[1] + m[2] + m[3]
		valueStart := skipTrivia(source, i+len(m[0]), end)
		valueEnd := skipValue(source, valueStart, end)
		props[name] = span{start: valueStart, end: trimEnd(source, valueStart, valueEnd)}
		i = valueEnd + 1
	}
	return props
}

func trimEnd(source string, start, end int) int {
	for end > start && strings.ContainsRune(" \t\r\n", rune(source[end-1])) {
		end--
	}
	return end
}

// skipValue returns the index of the comma or closing brace that ends the
// value starting at i.
func skipValue(source string, i, end int) int {
	depth := 0
	for i < end {
		switch c := source[i]; {
		case c == '\'' || c == '"' || c == '`':
			i = stringEnd(source, i) + 1
			continue
		case c == '/' && i+1 < end && (source[i+1] == '/' || source[i+1] == '*'):
			i = skipTrivia(source, i, end)
			continue
		case c == '(' || c == '[' || c == '{':
			depth++
		case c == ')' || c == ']' || c == '}':
			depth--
		case c == ',' && depth == 0:
			return i
		}
		i++
	}
	return end
}

// skipTrivia skips whitespace and comments starting at i.
func skipTrivia(source string, i, end int) int {
	for i < end {
		switch {
		case strings.ContainsRune(" \t\r\n", rune(source[i])):
			i++
		case strings.HasPrefix(source[i:], "//"):
			if nl := strings.IndexByte(source[i:], '\n'); nl != -1 {
				i += nl + 1
			} else {
				i = end
			}
		case strings.HasPrefix(source[i:], "/*"):
			if close := strings.Index(source[i+2:], "*/"); close != -1 {
				i += close + 4
			} else {
				i = end
			}
		default:
			return i
		}
	}
	return i
}

// matchingBrace returns the index of the brace closing the one at open, or
// -1 when the source ends first.
func matchingBrace(source string, open int) int {
	depth := 0
	for i := open; i < len(source); i++ {
		switch c := source[i]; {
		case c == '\'' || c == '"' || c == '`':
			i = stringEnd(source, i)
		case c == '/' && i+1 < len(source) && (source[i+1] == '/' || source[i+1] == '*'):
			i = skipTrivia(source, i, len(source)) - 1
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// stringEnd returns the index of the quote closing the literal that starts
// at i, or the last index of source when it is unterminated.
func stringEnd(source string, i int) int {
	quote := source[i]
	for j := i + 1; j < len(source); j++ {
		switch source[j] {
		case '\\':
			j++
		case quote:
			return j
		}
	}
	return len(source) - 1
}

// stringLiteral returns the raw content of the string literal spanning
// value and the offset where that content starts.
func stringLiteral(source string, value span) (string, int, bool) {
	if value.end-value.start < 2 {
		return "", 0, false
	}
	quote := source[value.start]
	if quote != '\'' && quote != '"' && quote != '`' {
		return "", 0, false
	}
	if stringEnd(source, value.start) != value.end-1 {
		return "", 0, false
	}
	return source[value.start+1 : value.end-1], value.start + 1, true
}
