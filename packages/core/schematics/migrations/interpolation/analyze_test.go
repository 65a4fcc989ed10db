package interpolation_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"ngtools-go/packages/core/schematics/migrations/interpolation"
)

func TestAnalyzeTemplate(t *testing.T) {
	tests := []struct {
		name    string
		content string
		quote   byte
		want    string
		fixes   []interpolation.Fix
	}{
		{
			name:    "brace after a comment",
			content: "{{expr}<!-- cmt -->}",
			want:    "{{ '{{' }} expr {{ '}}' }}<!--cmt-->",
			fixes: []interpolation.Fix{{
				Rule:         "commented-brace",
				OriginalText: "{{expr}<!-- cmt -->}",
				Start:        0,
				End:          20,
				Replacement:  "{{ '{{' }} expr {{ '}}' }}<!--cmt-->",
			}},
		},
		{
			name:    "multi-line comment",
			content: "{{ a }<!--\n  note\n-->}",
			want:    "{{ '{{' }} a {{ '}}' }}<!--note-->",
			fixes: []interpolation.Fix{{
				Rule:         "commented-brace",
				OriginalText: "{{ a }<!--\n  note\n-->}",
				Start:        0,
				End:          22,
				Replacement:  "{{ '{{' }} a {{ '}}' }}<!--note-->",
			}},
		},
		{
			name:    "single closing brace",
			content: "<p>{{ a }</p>",
			want:    "<p>{{ '{{' }} a {{ '}}' }}</p>",
			fixes: []interpolation.Fix{{
				Rule:         "single-brace",
				OriginalText: "{{ a }",
				Start:        3,
				End:          9,
				Replacement:  "{{ '{{' }} a {{ '}}' }}",
			}},
		},
		{
			name:    "later rules map back to the original text",
			content: "<b>{{x}<!--c-->}</b><i>{{ y }</i>{{ok}}",
			want:    "<b>{{ '{{' }} x {{ '}}' }}<!--c--></b><i>{{ '{{' }} y {{ '}}' }}</i>{{ok}}",
			fixes: []interpolation.Fix{
				{
					Rule:         "commented-brace",
					OriginalText: "{{x}<!--c-->}",
					Start:        3,
					End:          16,
					Replacement:  "{{ '{{' }} x {{ '}}' }}<!--c-->",
				},
				{
					Rule:         "single-brace",
					OriginalText: "{{ y }",
					Start:        23,
					End:          29,
					Replacement:  "{{ '{{' }} y {{ '}}' }}",
				},
			},
		},
		{
			name:    "single quoted inline template",
			content: "<p>{{ a }</p>",
			quote:   '\'',
			want:    `<p>{{ "{{" }} a {{ "}}" }}</p>`,
			fixes: []interpolation.Fix{{
				Rule:         "single-brace",
				OriginalText: "{{ a }",
				Start:        3,
				End:          9,
				Replacement:  `{{ "{{" }} a {{ "}}" }}`,
			}},
		},
		{
			name:    "valid interpolations",
			content: "<p>{{ a }}</p>{{ {k: v} }}{{ '{' }}",
			want:    "<p>{{ a }}</p>{{ {k: v} }}{{ '{' }}",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := interpolation.AnalyzeTemplate(tt.content, tt.quote)
			assert.Equal(t, tt.want, got.Content)
			if diff := cmp.Diff(tt.fixes, got.Fixes); diff != "" {
				t.Errorf("AnalyzeTemplate fixes mismatch (-want +got):\n%s", diff)
			}
			for _, fix := range got.Fixes {
				assert.Equal(t, fix.OriginalText, tt.content[fix.Start:fix.End])
			}

			again := interpolation.AnalyzeTemplate(got.Content, tt.quote)
			assert.Empty(t, again.Fixes)
			assert.Equal(t, got.Content, again.Content)
		})
	}
}
