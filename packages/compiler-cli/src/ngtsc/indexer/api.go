package indexer

import (
	"ngtools-go/packages/compiler/src/expression_parser"
	"ngtools-go/packages/compiler/src/render3"
	"ngtools-go/packages/compiler/src/render3/view"
	"ngtools-go/packages/compiler/src/util"
)

// ClassDeclaration is the class a component or directive is declared on.
// Registry entries are identified by pointer, never by Name.
type ClassDeclaration struct {
	Name       string
	SourceFile *util.ParseSourceFile
}

// ComponentMeta describes a declaration to the directive binder. The zero
// value of Directive describes a component.
type ComponentMeta struct {
	Decl      *ClassDeclaration
	Selectors string
	Exports   []string
	Directive bool
}

var _ view.DirectiveMeta = (*ComponentMeta)(nil)

// Name returns the class name of the declaration.
func (m *ComponentMeta) Name() string { return m.Decl.Name }

// Selector returns the selector, or "" when there is none.
func (m *ComponentMeta) Selector() string { return m.Selectors }

// IsComponent reports whether the declaration is a component.
func (m *ComponentMeta) IsComponent() bool { return !m.Directive }

// ExportAs returns the exportAs names.
func (m *ComponentMeta) ExportAs() []string { return m.Exports }

// Ref returns the *ClassDeclaration.
func (m *ComponentMeta) Ref() any { return m.Decl }

// Entity is an identifier found in an expression. Span is relative to the
// text the expression was parsed from.
type Entity struct {
	Name string
	Span expression_parser.ParseSpan
}

// TemplateIdentifier is an identifier read by a template binding.
type TemplateIdentifier struct {
	Name string
	// Scope lists the names of the enclosing nodes, outermost first.
	Scope []string
	// Span is absolute within File.
	Span expression_parser.AbsoluteSourceSpan
	File *util.ParseSourceFile
}

// ComponentInfo is one registry entry. Selector is "" when the component
// has none; BoundTarget is nil when directive matching was not performed.
type ComponentInfo struct {
	Declaration *ClassDeclaration
	Selector    string
	Template    *render3.ParsedTemplate
	BoundTarget view.BoundTarget
}

// TemplateInfo is the indexed form of a component template.
type TemplateInfo struct {
	Identifiers []TemplateIdentifier
	// UsedComponents is meaningful only when UsedComponentsKnown is set.
	UsedComponents      []*ComponentAnalysis
	UsedComponentsKnown bool
	File                *util.ParseSourceFile
}

// ComponentAnalysis is the indexed form of a component. UsedComponents of
// mutually dependent components point at each other.
type ComponentAnalysis struct {
	Name           string
	Selector       string
	Declaration    *ClassDeclaration
	SourceFilePath string
	FileContent    string
	Template       TemplateInfo
}
