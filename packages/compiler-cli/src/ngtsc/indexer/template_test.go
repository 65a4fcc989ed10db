package indexer_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ngtools-go/packages/compiler-cli/src/ngtsc/indexer"
	"ngtools-go/packages/compiler/src/expression_parser"
	"ngtools-go/packages/compiler/src/ml_parser"
	"ngtools-go/packages/compiler/src/render3"
	"ngtools-go/packages/compiler/src/util"
)

type identifier struct {
	Name  string
	Scope []string
	Start int
	End   int
}

func identifiers(t *testing.T, template string, opts ...render3.ParseTemplateOption) []identifier {
	t.Helper()
	parsed := render3.ParseTemplate(template, "TestComp.html", opts...)
	require.Empty(t, parsed.Errors)

	var result []identifier
	for _, id := range indexer.GetTemplateIdentifiers(parsed.Nodes, indexer.WithInterpolationConfig(parsed.InterpolationConfig)) {
		assert.Same(t, parsed.File, id.File)
		assert.Equal(t, id.Name, template[id.Span.Start:id.Span.End])
		result = append(result, identifier{Name: id.Name, Scope: id.Scope, Start: id.Span.Start, End: id.Span.End})
	}
	return result
}

func TestGetTemplateIdentifiers(t *testing.T) {
	tests := []struct {
		name     string
		template string
		want     []identifier
	}{
		{
			name:     "static markup",
			template: `<div class="a"><span title="b">hi</span></div>`,
		},
		{
			name:     "bindings inside comments",
			template: `<!-- {{ foo }} <b [x]="bar"></b> --><div></div>`,
		},
		{
			name:     "interpolation",
			template: `<div>{{foo}}</div>`,
			want:     []identifier{{Name: "foo", Scope: []string{"div"}, Start: 7, End: 10}},
		},
		{
			name:     "nested scope",
			template: `<div><span>{{foo}}</span></div>`,
			want:     []identifier{{Name: "foo", Scope: []string{"div", "span"}, Start: 13, End: 16}},
		},
		{
			name:     "interpolations separated by whitespace",
			template: "<div>{{foo}}\n\n    {{bar}}</div>",
			want: []identifier{
				{Name: "foo", Scope: []string{"div"}, Start: 7, End: 10},
				{Name: "bar", Scope: []string{"div"}, Start: 20, End: 23},
			},
		},
		{
			name:     "whitespace inside an interpolation",
			template: `<p>{{ a   +   b }}</p>`,
			want: []identifier{
				{Name: "a", Scope: []string{"p"}, Start: 6, End: 7},
				{Name: "b", Scope: []string{"p"}, Start: 14, End: 15},
			},
		},
		{
			name:     "property binding",
			template: `<div [title]="user.name"></div>`,
			want: []identifier{
				{Name: "user", Scope: []string{"div"}, Start: 14, End: 18},
				{Name: "name", Scope: []string{"div"}, Start: 19, End: 23},
			},
		},
		{
			name:     "pipes and literal maps",
			template: `<b [x]="{on: flag} | fmt:arg"></b>`,
			want: []identifier{
				{Name: "flag", Scope: []string{"b"}, Start: 13, End: 17},
				{Name: "arg", Scope: []string{"b"}, Start: 25, End: 28},
			},
		},
		{
			name:     "duplicates are kept",
			template: `<i [x]="a + a"></i>`,
			want: []identifier{
				{Name: "a", Scope: []string{"i"}, Start: 8, End: 9},
				{Name: "a", Scope: []string{"i"}, Start: 12, End: 13},
			},
		},
		{
			name:     "event handlers are not indexed",
			template: `<button (click)="go(x)" [(ngModel)]="model">{{ label }}</button>`,
			want: []identifier{
				{Name: "model", Scope: []string{"button"}, Start: 37, End: 42},
				{Name: "label", Scope: []string{"button"}, Start: 47, End: 52},
			},
		},
		{
			name:     "interpolated attribute",
			template: `<img src="{{ base }}/{{ file }}.png">`,
			want: []identifier{
				{Name: "base", Scope: []string{"img"}, Start: 13, End: 17},
				{Name: "file", Scope: []string{"img"}, Start: 24, End: 28},
			},
		},
		{
			name:     "inline template",
			template: `<li *ngFor="let item of items">{{item.name}}</li>`,
			want: []identifier{
				{Name: "items", Scope: []string{"li"}, Start: 24, End: 29},
				{Name: "item", Scope: []string{"li", "li"}, Start: 33, End: 37},
				{Name: "name", Scope: []string{"li", "li"}, Start: 38, End: 42},
			},
		},
		{
			name:     "explicit template",
			template: `<ng-template [ngIf]="show"><span>{{ a }}</span></ng-template>`,
			want: []identifier{
				{Name: "show", Scope: []string{"ng-template"}, Start: 21, End: 25},
				{Name: "a", Scope: []string{"ng-template", "span"}, Start: 36, End: 37},
			},
		},
		{
			name:     "content projection",
			template: `<ng-content><b>{{x}}</b></ng-content>`,
			want:     []identifier{{Name: "x", Scope: []string{"ng-content", "b"}, Start: 17, End: 18}},
		},
		{
			name:     "keyword property names",
			template: `<p>{{ this.value?.if }}</p>`,
			want: []identifier{
				{Name: "value", Scope: []string{"p"}, Start: 11, End: 16},
				{Name: "if", Scope: []string{"p"}, Start: 18, End: 20},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := identifiers(t, tt.template)
			if diff := cmp.Diff(tt.want, got, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("GetTemplateIdentifiers mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestGetTemplateIdentifiersCustomInterpolation(t *testing.T) {
	config, err := ml_parser.NewInterpolationConfig([]string{"[[", "]]"})
	require.NoError(t, err)

	got := identifiers(t, "<p>{{ literal }} [[ a ]]\n  [[ b ]]</p>", render3.WithInterpolationConfig(config))
	want := []identifier{
		{Name: "a", Scope: []string{"p"}, Start: 20, End: 21},
		{Name: "b", Scope: []string{"p"}, Start: 30, End: 31},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("GetTemplateIdentifiers mismatch (-want +got):\n%s", diff)
	}
}

func TestGetTemplateIdentifiersSkipsInvalidExpressions(t *testing.T) {
	parsed := render3.ParseTemplate(`<div [x]="a +"></div>`, "TestComp.html")
	require.NotEmpty(t, parsed.Errors)
	assert.Empty(t, indexer.GetTemplateIdentifiers(parsed.Nodes))
}

func TestGetTemplateIdentifiersPanicsOnMismatch(t *testing.T) {
	file := util.NewParseSourceFile("{{ b }}", "TestComp.html")
	span := file.SpanAt(0, len(file.Content))
	parser := expression_parser.NewParser(expression_parser.NewLexer())
	value := parser.ParseInterpolation("{{ a }}", span, 0, ml_parser.DefaultInterpolationConfig)
	require.NotNil(t, value)

	node := &render3.BoundText{Value: value, Span: span}
	assert.Panics(t, func() {
		indexer.GetTemplateIdentifiers([]render3.Node{node})
	})
}
