package view

import (
	"ngtools-go/packages/compiler/src/render3"
)

// Target represents a logical target for analysis: the nodes of one
// component template.
type Target struct {
	Template []render3.Node
}

// DirectiveMeta represents metadata regarding a directive that's needed to
// match it against template elements. This is provided by a consumer of the
// binder. Implementations must be comparable; usage is deduplicated by
// identity.
type DirectiveMeta interface {
	// Name returns the name of the directive class.
	Name() string

	// Selector returns the selector for the directive, or "" if there isn't one.
	Selector() string

	// IsComponent returns whether the directive is a component.
	IsComponent() bool

	// ExportAs returns the names under which the directive is exported.
	ExportAs() []string

	// Ref returns the declaration the metadata was read from.
	Ref() any
}

// ReferenceTarget is what a template reference resolves to: a directive on
// a node, or the *render3.Element / *render3.Template itself.
type ReferenceTarget struct {
	Directive DirectiveMeta
	Node      render3.Node
}

// BoundTarget represents the result of performing the binding operation
// against a Target.
type BoundTarget interface {
	// Target returns the original Target that was bound.
	Target() *Target

	// GetDirectivesOfNode returns the directives which matched an element or
	// template node, if any.
	GetDirectivesOfNode(node render3.Node) []DirectiveMeta

	// GetReferenceTarget returns the target of a reference, or nil when the
	// reference names an export that no directive on its node provides.
	GetReferenceTarget(ref *render3.Reference) *ReferenceTarget

	// GetUsedDirectives returns the directives used by the target in the
	// order they are first matched, each once.
	GetUsedDirectives() []DirectiveMeta
}
