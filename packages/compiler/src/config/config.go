// Package config holds the settings shared by the ngc-go commands.
package config

import (
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"gitlab.com/tozd/go/errors"

	"ngtools-go/packages/compiler/src/ml_parser"
	"ngtools-go/packages/compiler/src/render3"
)

// DefaultFile is the configuration file looked up in the working directory.
const DefaultFile = ".ngc-go.toml"

// Config represents the tool configuration
type Config struct {
	LogLevel            string `toml:"log_level"`
	PreserveWhitespaces bool   `toml:"preserve_whitespaces"`
	// Interpolation overrides the {{ }} markers of template files.
	Interpolation []string `toml:"interpolation"`
	// Project is the workspace file used by fix-interpolation.
	Project string `toml:"project"`
	// Root is the directory fix-interpolation works in.
	Root string `toml:"root"`
}

// NewConfig creates a new Config with optional parameters
func NewConfig(opts ...Option) *Config {
	config := &Config{
		LogLevel: zerolog.LevelInfoValue,
		Root:     ".",
	}

	for _, opt := range opts {
		opt(config)
	}

	return config
}

// Option is a function that modifies Config
type Option func(*Config)

// WithLogLevel sets the log level
func WithLogLevel(level string) Option {
	return func(c *Config) {
		c.LogLevel = level
	}
}

// WithPreserveWhitespaces sets whether to preserve whitespaces
func WithPreserveWhitespaces(preserve bool) Option {
	return func(c *Config) {
		c.PreserveWhitespaces = preserve
	}
}

// WithProject sets the workspace file
func WithProject(project string) Option {
	return func(c *Config) {
		c.Project = project
	}
}

// WithRoot sets the project root
func WithRoot(root string) Option {
	return func(c *Config) {
		c.Root = root
	}
}

// Load reads the TOML file at path over the defaults and then applies opts.
// Unknown keys are rejected.
func Load(fsys afero.Fs, path string, opts ...Option) (*Config, error) {
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		return nil, errors.Errorf("reading config: %w", err)
	}

	config := NewConfig()
	meta, err := toml.Decode(string(data), config)
	if err != nil {
		return nil, errors.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, key := range undecoded {
			keys = append(keys, key.String())
		}
		sort.Strings(keys)
		return nil, errors.Errorf("%s: unknown keys %s", path, strings.Join(keys, ", "))
	}
	if meta.IsDefined("interpolation") && len(config.Interpolation) != 2 {
		return nil, errors.Errorf("%s: interpolation must hold a start and an end marker", path)
	}

	for _, opt := range opts {
		opt(config)
	}
	return config, nil
}

// Level returns the configured zerolog level.
func (c *Config) Level() (zerolog.Level, error) {
	level, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return zerolog.NoLevel, errors.Errorf("log level %q: %w", c.LogLevel, err)
	}
	return level, nil
}

// InterpolationConfig returns the configured interpolation markers.
func (c *Config) InterpolationConfig() (ml_parser.InterpolationConfig, error) {
	if len(c.Interpolation) == 0 {
		return ml_parser.DefaultInterpolationConfig, nil
	}
	return ml_parser.NewInterpolationConfig(c.Interpolation)
}

// ParseOptions returns the template parse options matching c.
func (c *Config) ParseOptions() ([]render3.ParseTemplateOption, error) {
	interpolation, err := c.InterpolationConfig()
	if err != nil {
		return nil, err
	}
	return []render3.ParseTemplateOption{
		render3.WithPreserveWhitespaces(c.PreserveWhitespaces),
		render3.WithInterpolationConfig(interpolation),
	}, nil
}
