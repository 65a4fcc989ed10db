package interpolation_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"ngtools-go/packages/core/schematics/migrations/interpolation"
	"ngtools-go/packages/core/schematics/utils"
)

const (
	appComponent = `@Component({
  selector: 'app-root',
  template: '<p>{{ a }</p>',
})
export class AppComponent {}
`
	listComponent = `@Component({selector: 'app-list', templateUrl: './list.component.html'})
export class ListComponent {}

@Component({selector: 'app-other', templateUrl: './list.component.html'})
export class OtherComponent {}
`
	listTemplate     = "<ul>\n  <li>{{item}<!-- item -->}</li>\n</ul>\n"
	customComponent  = `@Component({interpolation: ['[[', ']]'], template: '{{ a }'}) class Custom {}`
	dynamicComponent = `@Component({interpolation: DELIMITERS, template: '{{ b }'}) class Dynamic {}`
)

func newProject(t *testing.T, files map[string]string) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	for name, content := range files {
		require.NoError(t, afero.WriteFile(fs, name, []byte(content), 0o644))
	}
	return fs
}

func workspaceFiles() map[string]string {
	return map[string]string{
		"angular.json":             `{"projects": {"app": {"architect": {"build": {"options": {"tsConfig": "tsconfig.app.json"}}}}}}`,
		"tsconfig.app.json":        `{"include": ["src/**/*.ts"]}`,
		"src/app.component.ts":     appComponent,
		"src/list.component.ts":    listComponent,
		"src/list.component.html":  listTemplate,
		"src/custom.component.ts":  customComponent,
		"src/dynamic.component.ts": dynamicComponent,
	}
}

func readFile(t *testing.T, fs afero.Fs, name string) string {
	t.Helper()
	data, err := afero.ReadFile(fs, name)
	require.NoError(t, err)
	return string(data)
}

func TestMigrate(t *testing.T) {
	fs := newProject(t, workspaceFiles())
	var logs bytes.Buffer
	ctx := zerolog.New(&logs).WithContext(context.Background())

	result, err := interpolation.Migrate(ctx, utils.NewTree(fs), "")
	require.NoError(t, err)

	wantReport := []string{
		"src/app.component.ts@3:17: {{ a }",
		"src/list.component.html@2:7: {{item}<!-- item -->}",
	}
	if diff := cmp.Diff(wantReport, result.Report); diff != "" {
		t.Errorf("Migrate report mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []string{"src/app.component.ts", "src/list.component.html"}, result.ChangedFiles)

	assert.Contains(t, readFile(t, fs, "src/app.component.ts"), `template: '<p>{{ "{{" }} a {{ "}}" }}</p>',`)
	assert.Equal(t, "<ul>\n  <li>{{ '{{' }} item {{ '}}' }}<!--item--></li>\n</ul>\n", readFile(t, fs, "src/list.component.html"))
	assert.Equal(t, customComponent, readFile(t, fs, "src/custom.component.ts"))
	assert.Equal(t, dynamicComponent, readFile(t, fs, "src/dynamic.component.ts"))
	assert.Contains(t, logs.String(), "src/app.component.ts@3:17")

	again, err := interpolation.Migrate(ctx, utils.NewTree(fs), "")
	require.NoError(t, err)
	assert.Empty(t, again.Report)
	assert.Empty(t, again.ChangedFiles)
}

func TestMigrateRootTsConfig(t *testing.T) {
	fs := newProject(t, map[string]string{
		"tsconfig.json":        `{}`,
		"src/app.component.ts": appComponent,
	})

	result, err := interpolation.Migrate(context.Background(), utils.NewTree(fs), "")
	require.NoError(t, err)
	assert.Equal(t, []string{"src/app.component.ts@3:17: {{ a }"}, result.Report)
}

func TestMigrateWithoutTsConfig(t *testing.T) {
	fs := newProject(t, map[string]string{"src/app.component.ts": appComponent})

	result, err := interpolation.Migrate(context.Background(), utils.NewTree(fs), "")
	assert.Nil(t, result)
	assert.ErrorIs(t, err, interpolation.ErrNoTsConfig)
	assert.EqualError(t, err, "Could not find any tsconfig file. Cannot fix invalid interpolations.")
	assert.Equal(t, appComponent, readFile(t, fs, "src/app.component.ts"))
}

func TestMigrateUnreadableTemplate(t *testing.T) {
	files := workspaceFiles()
	files["src/broken.component.ts"] = `@Component({template: '{{ c }'}) class Inline {}
@Component({templateUrl: './missing.html'}) class Broken {}`
	fs := newProject(t, files)

	result, err := interpolation.Migrate(context.Background(), utils.NewTree(fs), "")
	require.Error(t, err)
	assert.Len(t, multierr.Errors(err), 1)
	assert.Len(t, result.Report, 2)

	assert.Equal(t, files["src/broken.component.ts"], readFile(t, fs, "src/broken.component.ts"))
	assert.Contains(t, readFile(t, fs, "src/app.component.ts"), `{{ "{{" }} a {{ "}}" }}`)
}
