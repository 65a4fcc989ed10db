package view

import (
	"ngtools-go/packages/compiler/src/css"
	"ngtools-go/packages/compiler/src/render3"
)

// R3TargetBinder processes a template and returns a BoundTarget with
// knowledge about the directives matched in it.
type R3TargetBinder struct {
	directiveMatcher *css.SelectorMatcher[DirectiveMeta]
}

// NewR3TargetBinder creates a new R3TargetBinder
func NewR3TargetBinder(directiveMatcher *css.SelectorMatcher[DirectiveMeta]) *R3TargetBinder {
	return &R3TargetBinder{directiveMatcher: directiveMatcher}
}

// NewDirectiveMatcher builds a matcher over the selectors of directives.
// Directives without a selector, or with one that does not parse, are
// skipped; their selector errors are returned.
func NewDirectiveMatcher(directives []DirectiveMeta) (*css.SelectorMatcher[DirectiveMeta], []error) {
	matcher := css.NewSelectorMatcher[DirectiveMeta]()
	var errs []error
	for _, dir := range directives {
		if dir.Selector() == "" {
			continue
		}
		selectors, err := css.ParseCssSelector(dir.Selector())
		if err != nil {
			errs = append(errs, err)
			continue
		}
		matcher.AddSelectables(selectors, dir)
	}
	return matcher, errs
}

// Bind performs directive matching on the template of target.
func (b *R3TargetBinder) Bind(target *Target) *R3BoundTarget {
	if target.Template == nil {
		panic("Empty bound targets are not supported")
	}
	binder := &directiveBinder{
		matcher:    b.directiveMatcher,
		directives: make(map[render3.Node][]DirectiveMeta),
		references: make(map[*render3.Reference]*ReferenceTarget),
		usedSet:    make(map[DirectiveMeta]bool),
	}
	binder.ingest(target.Template)
	return &R3BoundTarget{
		target:     target,
		directives: binder.directives,
		references: binder.references,
		used:       binder.used,
	}
}

type directiveBinder struct {
	matcher    *css.SelectorMatcher[DirectiveMeta]
	directives map[render3.Node][]DirectiveMeta
	references map[*render3.Reference]*ReferenceTarget
	used       []DirectiveMeta
	usedSet    map[DirectiveMeta]bool
}

func (db *directiveBinder) ingest(nodes []render3.Node) {
	for _, node := range nodes {
		switch n := node.(type) {
		case *render3.Element:
			db.visitElementOrTemplate(n, n.Name, getAttrsForDirectiveMatching(n.Attributes, n.Inputs, n.Outputs, nil), n.References)
			db.ingest(n.Children)
		case *render3.Template:
			attrs := getAttrsForDirectiveMatching(n.Attributes, n.Inputs, n.Outputs, n.TemplateAttrs)
			db.visitElementOrTemplate(n, "ng-template", attrs, n.References)
			db.ingest(n.Children)
		case *render3.Content:
			db.ingest(n.Children)
		}
	}
}

// getAttrsForDirectiveMatching collects the name/value pairs a node presents
// to selectors. Bindings match by name only.
func getAttrsForDirectiveMatching(
	attributes []*render3.TextAttribute,
	inputs []*render3.BoundAttribute,
	outputs []*render3.BoundEvent,
	templateAttrs []render3.Node,
) [][2]string {
	var attrs [][2]string
	for _, attr := range templateAttrs {
		switch a := attr.(type) {
		case *render3.TextAttribute:
			attrs = append(attrs, [2]string{a.Name, a.Value})
		case *render3.BoundAttribute:
			attrs = append(attrs, [2]string{a.Name, ""})
		}
	}
	for _, attr := range attributes {
		attrs = append(attrs, [2]string{attr.Name, attr.Value})
	}
	for _, input := range inputs {
		if input.Type == render3.BindingTypeProperty || input.Type == render3.BindingTypeTwoWay {
			attrs = append(attrs, [2]string{input.Name, ""})
		}
	}
	for _, output := range outputs {
		attrs = append(attrs, [2]string{output.Name, ""})
	}
	return attrs
}

func (db *directiveBinder) visitElementOrTemplate(node render3.Node, tagName string, attrs [][2]string, refs []*render3.Reference) {
	cssSelector := css.CreateElementCssSelector(tagName, attrs)
	var matched []DirectiveMeta
	db.matcher.Match(cssSelector, func(_ *css.CssSelector, dir DirectiveMeta) {
		matched = append(matched, dir)
	})
	if len(matched) > 0 {
		db.directives[node] = matched
		for _, dir := range matched {
			if !db.usedSet[dir] {
				db.usedSet[dir] = true
				db.used = append(db.used, dir)
			}
		}
	}

	for _, ref := range refs {
		db.references[ref] = resolveReference(node, ref, matched)
	}
}

// resolveReference resolves `#ref` to the component on the node, `#ref="x"`
// to the directive exported as x, and anything else to the node.
func resolveReference(node render3.Node, ref *render3.Reference, matched []DirectiveMeta) *ReferenceTarget {
	value := ref.Value
	if value == "" {
		for _, dir := range matched {
			if dir.IsComponent() {
				return &ReferenceTarget{Directive: dir, Node: node}
			}
		}
		return &ReferenceTarget{Node: node}
	}
	for _, dir := range matched {
		for _, exportAs := range dir.ExportAs() {
			if exportAs == value {
				return &ReferenceTarget{Directive: dir, Node: node}
			}
		}
	}
	return nil
}

// R3BoundTarget is the BoundTarget produced by R3TargetBinder.
type R3BoundTarget struct {
	target     *Target
	directives map[render3.Node][]DirectiveMeta
	references map[*render3.Reference]*ReferenceTarget
	used       []DirectiveMeta
}

// Target returns the original Target that was bound.
func (bt *R3BoundTarget) Target() *Target { return bt.target }

// GetDirectivesOfNode returns the directives matched on node
func (bt *R3BoundTarget) GetDirectivesOfNode(node render3.Node) []DirectiveMeta {
	return bt.directives[node]
}

// GetReferenceTarget returns the target of ref
func (bt *R3BoundTarget) GetReferenceTarget(ref *render3.Reference) *ReferenceTarget {
	return bt.references[ref]
}

// GetUsedDirectives returns the used directives in first-match order
func (bt *R3BoundTarget) GetUsedDirectives() []DirectiveMeta {
	return append([]DirectiveMeta(nil), bt.used...)
}
