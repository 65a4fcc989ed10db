package indexer

import (
	"ngtools-go/packages/compiler/src/render3/view"
)

// GenerateAnalysis indexes every component of ctx. Used components are
// resolved by class name once all components are known, so mutually
// dependent components reference each other's analysis. When two
// components share a name the one registered last wins the lookup.
func GenerateAnalysis(ctx *IndexingContext) []*ComponentAnalysis {
	components := ctx.Components()
	analyses := make([]*ComponentAnalysis, 0, len(components))
	byName := make(map[string]*ComponentAnalysis, len(components))
	pending := make([][]view.DirectiveMeta, len(components))

	for i, info := range components {
		analysis := &ComponentAnalysis{
			Name:        info.Declaration.Name,
			Selector:    info.Selector,
			Declaration: info.Declaration,
		}
		if file := info.Declaration.SourceFile; file != nil {
			analysis.SourceFilePath = file.URL
			analysis.FileContent = file.Content
		}
		if info.Template != nil {
			analysis.Template.Identifiers = GetTemplateIdentifiers(info.Template.Nodes,
				WithInterpolationConfig(info.Template.InterpolationConfig))
			analysis.Template.File = info.Template.File
		}
		if info.BoundTarget != nil {
			analysis.Template.UsedComponentsKnown = true
			for _, dir := range info.BoundTarget.GetUsedDirectives() {
				if dir.IsComponent() {
					pending[i] = append(pending[i], dir)
				}
			}
		}
		byName[analysis.Name] = analysis
		analyses = append(analyses, analysis)
	}

	for i, analysis := range analyses {
		if !analysis.Template.UsedComponentsKnown {
			continue
		}
		used := make([]*ComponentAnalysis, 0, len(pending[i]))
		for _, dir := range pending[i] {
			if target, ok := byName[dir.Name()]; ok {
				used = append(used, target)
			}
		}
		analysis.Template.UsedComponents = used
	}
	return analyses
}
