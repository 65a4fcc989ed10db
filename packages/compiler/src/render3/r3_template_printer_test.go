package render3_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ngtools-go/packages/compiler/src/ml_parser"
	"ngtools-go/packages/compiler/src/render3"
)

func lines(l ...string) string {
	return strings.Join(l, "\n")
}

func TestPrintDesugaredTemplate(t *testing.T) {
	tests := []struct {
		name     string
		template string
		want     string
	}{
		{
			name:     "structural directive",
			template: `<div *ngIf="show" class="box">{{ name }}</div>`,
			want: lines(
				`<ng-template [ngIf]="show">`,
				`  <div class="box">`,
				`    {{ name }}`,
				`  </div>`,
				`</ng-template>`,
			),
		},
		{
			name:     "microsyntax variables",
			template: `<li *ngFor="let item of items; index as i">{{item}}</li>`,
			want: lines(
				`<ng-template ngFor [ngForOf]="items" let-item let-i="index">`,
				`  <li>`,
				`    {{ item }}`,
				`  </li>`,
				`</ng-template>`,
			),
		},
		{
			name:     "two-way binding and events",
			template: `<input [(ngModel)]="name" (keyup.enter)="save()" #box>`,
			want:     `<input [ngModel]="name" (ngModelChange)="name = $event" (keyup.enter)="save()" #box/>`,
		},
		{
			name:     "binding types",
			template: `<div [attr.role]="r" [class.on]="isOn" [style.width.px]="w"></div>`,
			want:     `<div [attr.role]="r" [class.on]="isOn" [style.width.px]="w"></div>`,
		},
		{
			name:     "explicit template",
			template: `<ng-template let-row="data" [ngIf]="ok">x</ng-template>`,
			want: lines(
				`<ng-template [ngIf]="ok" let-row="data">`,
				`  x`,
				`</ng-template>`,
			),
		},
		{
			name:     "content projection",
			template: `<ng-content select=".x"></ng-content><ng-content/>`,
			want: lines(
				`<ng-content select=".x"></ng-content>`,
				`<ng-content/>`,
			),
		},
		{
			name:     "interpolated attribute and pipes",
			template: `<img src="{{base}}/a.png" [alt]="title | uppercase">`,
			want:     `<img [src]="{{ base }}/a.png" [alt]="(title | uppercase)"/>`,
		},
		{
			name:     "string literals are escaped",
			template: `<p [title]="'hi'">{{ 'a' + b }}</p>`,
			want: lines(
				`<p [title]="&quot;hi&quot;">`,
				`  {{ "a" + b }}`,
				`</p>`,
			),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parsed := parse(t, tt.template)
			if diff := cmp.Diff(tt.want, render3.PrintDesugaredTemplate(parsed.Nodes)); diff != "" {
				t.Errorf("PrintDesugaredTemplate mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestTemplatePrinterInterpolationConfig(t *testing.T) {
	config, err := ml_parser.NewInterpolationConfig([]string{"[[", "]]"})
	require.NoError(t, err)

	parsed := parse(t, "<p>[[a]]</p>", render3.WithInterpolationConfig(config))
	assert.Equal(t, lines("<p>", "  [[ a ]]", "</p>"), render3.NewTemplatePrinter(config).Print(parsed.Nodes))
}

func TestTemplatePrinterFormatters(t *testing.T) {
	printer := render3.NewTemplatePrinter(ml_parser.DefaultInterpolationConfig)
	assert.Equal(t, "disabled", printer.FormatTextAttribute(&render3.TextAttribute{Name: "disabled"}))
	assert.Equal(t, `id="x"`, printer.FormatTextAttribute(&render3.TextAttribute{Name: "id", Value: "x"}))
	assert.Equal(t, "#ref", printer.FormatReference(&render3.Reference{Name: "ref"}))
	assert.Equal(t, `#f="ngForm"`, printer.FormatReference(&render3.Reference{Name: "f", Value: "ngForm"}))
	assert.Equal(t, "let-item", printer.FormatVariable(&render3.Variable{Name: "item", Value: "$implicit"}))
	assert.Equal(t, `let-i="index"`, printer.FormatVariable(&render3.Variable{Name: "i", Value: "index"}))
}
