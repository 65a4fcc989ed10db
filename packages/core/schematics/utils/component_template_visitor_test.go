package utils_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ngtools-go/packages/core/schematics/utils"
)

const inlineComponent = `import {Component} from '@angular/core';

@Component({
  selector: 'app-root',
  host: {'(click)': 'onClick()', '[class.on]': "on"},
  // template: 'commented out',
  template: ` + "`" + `
    <p>{{ a }}</p>
  ` + "`" + `,
})
export class AppComponent {}

@Component({selector: 'app-empty'})
export class EmptyComponent {}
`

func TestVisitFileInlineTemplate(t *testing.T) {
	_, tree := newTree(t, map[string]string{"src/app.component.ts": inlineComponent})
	visitor := utils.NewNgComponentTemplateVisitor(tree)
	require.NoError(t, visitor.VisitFile("/src/app.component.ts"))

	require.Len(t, visitor.Components, 2)
	app, empty := visitor.Components[0], visitor.Components[1]
	assert.Equal(t, "AppComponent", app.ClassName)
	assert.Equal(t, "app-root", app.Selector)
	assert.Equal(t, "src/app.component.ts", app.SourceFilePath)
	assert.Equal(t, inlineComponent, app.SourceContent)
	assert.Equal(t, "EmptyComponent", empty.ClassName)
	assert.Equal(t, "app-empty", empty.Selector)
	assert.Nil(t, empty.Template)

	require.Len(t, visitor.ResolvedTemplates, 1)
	template := visitor.ResolvedTemplates[0]
	assert.Same(t, template, app.Template)
	assert.True(t, template.Inline)
	assert.Equal(t, byte('`'), template.Quote)
	assert.Equal(t, "src/app.component.ts", template.FilePath)
	assert.Equal(t, "AppComponent", template.ClassName)
	assert.Equal(t, "\n    <p>{{ a }}</p>\n  ", template.Content)
	assert.Equal(t, strings.Index(inlineComponent, "\n    <p>"), template.Start)
	assert.Equal(t, utils.InterpolationDefault, template.Interpolation)

	offset := template.Start + strings.Index(template.Content, "{{")
	line, column := template.Position(offset)
	assert.Equal(t, 8, line)
	assert.Equal(t, 8, column)
	assert.Equal(t, 7, template.LineAndCharacter(offset).Line)
}

func TestVisitFileExternalTemplates(t *testing.T) {
	_, tree := newTree(t, map[string]string{
		"src/a.component.ts": `@Component({templateUrl: './shared.html', selector: 'app-a'}) export class A {}`,
		"src/lib/b.component.ts": `@Component({
  selector: 'app-b',
  templateUrl: "../shared.html"
})
export class B {}`,
		"src/shared.html": "<b>{{ x }}</b>\n<i>{{ y }}</i>",
	})
	visitor := utils.NewNgComponentTemplateVisitor(tree)
	require.NoError(t, visitor.VisitFile("src/a.component.ts"))
	require.NoError(t, visitor.VisitFile("src/lib/b.component.ts"))

	require.Len(t, visitor.Components, 2)
	require.Len(t, visitor.ResolvedTemplates, 1)
	template := visitor.ResolvedTemplates[0]
	assert.Same(t, template, visitor.Components[0].Template)
	assert.Same(t, template, visitor.Components[1].Template)
	assert.False(t, template.Inline)
	assert.Zero(t, template.Quote)
	assert.Equal(t, "src/shared.html", template.FilePath)
	assert.Equal(t, "A", template.ClassName)
	assert.Equal(t, 0, template.Start)

	line, column := template.Position(strings.Index(template.Content, "{{ y"))
	assert.Equal(t, [2]int{2, 4}, [2]int{line, column})
}

func TestVisitFileInterpolation(t *testing.T) {
	tests := []struct {
		name   string
		config string
		want   utils.InterpolationKind
		start  string
	}{
		{name: "absent", config: "", want: utils.InterpolationDefault, start: "{{"},
		{name: "default literal", config: `interpolation: ["{{", "}}"],`, want: utils.InterpolationDefault, start: "{{"},
		{name: "custom literal", config: `interpolation: ['[[', ']]'],`, want: utils.InterpolationCustom, start: "[["},
		{name: "identifier", config: `interpolation: CUSTOM_DELIMITERS,`, want: utils.InterpolationIndeterminate, start: "{{"},
		{name: "spread", config: `interpolation: [...DELIMITERS],`, want: utils.InterpolationIndeterminate, start: "{{"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source := "@Component({" + tt.config + " template: '<p></p>'}) class C {}"
			_, tree := newTree(t, map[string]string{"c.ts": source})
			visitor := utils.NewNgComponentTemplateVisitor(tree)
			require.NoError(t, visitor.VisitFile("c.ts"))

			require.Len(t, visitor.ResolvedTemplates, 1)
			template := visitor.ResolvedTemplates[0]
			assert.Equal(t, tt.want, template.Interpolation)
			assert.Equal(t, tt.start, template.InterpolationConfig.Start)
			assert.Equal(t, "<p></p>", template.Content)
			assert.Equal(t, byte('\''), template.Quote)
		})
	}
}

func TestVisitFileMissingTemplate(t *testing.T) {
	_, tree := newTree(t, map[string]string{
		"a.ts": `@Component({template: '<p></p>'}) class A {}
@Component({templateUrl: './missing.html'}) class B {}`,
	})
	visitor := utils.NewNgComponentTemplateVisitor(tree)

	assert.Error(t, visitor.VisitFile("a.ts"))
	assert.Empty(t, visitor.Components)
	assert.Empty(t, visitor.ResolvedTemplates)

	assert.Error(t, visitor.VisitFile("gone.ts"))
}

func TestVisitFileIgnoresOtherDecorators(t *testing.T) {
	_, tree := newTree(t, map[string]string{
		"a.ts": `@Directive({selector: '[dir]'}) class D {}
@Injectable() class S {}`,
	})
	visitor := utils.NewNgComponentTemplateVisitor(tree)
	require.NoError(t, visitor.VisitFile("a.ts"))
	assert.Empty(t, visitor.Components)
}
