package config_test

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ngtools-go/packages/compiler/src/config"
	"ngtools-go/packages/compiler/src/ml_parser"
	"ngtools-go/packages/compiler/src/render3"
)

func writeConfig(t *testing.T, content string) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, config.DefaultFile, []byte(content), 0o644))
	return fs
}

func TestNewConfig(t *testing.T) {
	c := config.NewConfig()
	assert.Equal(t, "info", c.LogLevel)
	assert.Equal(t, ".", c.Root)
	assert.False(t, c.PreserveWhitespaces)

	c = config.NewConfig(config.WithLogLevel("debug"), config.WithRoot("web"), config.WithProject("workspace.json"))
	assert.Equal(t, "debug", c.LogLevel)
	assert.Equal(t, "web", c.Root)
	assert.Equal(t, "workspace.json", c.Project)
}

func TestLoad(t *testing.T) {
	fs := writeConfig(t, `
log_level = "warn"
preserve_whitespaces = true
interpolation = ["[[", "]]"]
project = "angular.json"
`)

	c, err := config.Load(fs, config.DefaultFile, config.WithLogLevel("debug"))
	require.NoError(t, err)
	assert.Equal(t, &config.Config{
		LogLevel:            "debug",
		PreserveWhitespaces: true,
		Interpolation:       []string{"[[", "]]"},
		Project:             "angular.json",
		Root:                ".",
	}, c)

	interpolation, err := c.InterpolationConfig()
	require.NoError(t, err)
	assert.Equal(t, ml_parser.InterpolationConfig{Start: "[[", End: "]]"}, interpolation)

	level, err := c.Level()
	require.NoError(t, err)
	assert.Equal(t, zerolog.DebugLevel, level)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "syntax", content: `log_level = `},
		{name: "unknown key", content: "log_level = \"info\"\nverbose = true\n"},
		{name: "interpolation arity", content: `interpolation = ["[["]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.Load(writeConfig(t, tt.content), config.DefaultFile)
			assert.Error(t, err)
		})
	}

	_, err := config.Load(afero.NewMemMapFs(), config.DefaultFile)
	assert.Error(t, err)
}

func TestConfigValidation(t *testing.T) {
	_, err := config.NewConfig(config.WithLogLevel("loud")).Level()
	assert.Error(t, err)

	c := config.NewConfig()
	c.Interpolation = []string{"<", ">"}
	_, err = c.ParseOptions()
	assert.Error(t, err)
}

func TestParseOptions(t *testing.T) {
	opts, err := config.NewConfig(config.WithPreserveWhitespaces(true)).ParseOptions()
	require.NoError(t, err)

	parsed := render3.ParseTemplate("<p>  {{ a }}  </p>", "a.html", opts...)
	assert.True(t, parsed.PreserveWhitespaces)
	assert.Equal(t, ml_parser.DefaultInterpolationConfig, parsed.InterpolationConfig)
}
