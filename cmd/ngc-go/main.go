package main

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"runtime/debug"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"ngtools-go/packages/compiler/src/config"
	"ngtools-go/packages/core/schematics/utils"
)

func main() {
	if err := run(); err != nil {
		errorColor.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

// rootOptions are shared by every command. config is loaded before any
// command runs.
type rootOptions struct {
	fs         afero.Fs
	logs       io.Writer
	configFile string
	logLevel   string
	config     *config.Config
}

func run() error {
	rootCmd := newRootCommand(&rootOptions{fs: afero.NewOsFs(), logs: os.Stderr})

	info, ok := debug.ReadBuildInfo()
	if !ok {
		rootCmd.Version = "unknown"
	} else {
		rootCmd.Version = info.Main.Version
	}

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		return errors.Errorf("failed to execute command: %w", err)
	}

	return nil
}

func newRootCommand(root *rootOptions) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "ngc-go",
		Short:         "Index, desugar and repair component templates",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&root.configFile, "config", "", "TOML config file (default "+config.DefaultFile+" when present)")
	rootCmd.PersistentFlags().StringVar(&root.logLevel, "log-level", "", "log level: trace, debug, info, warn or error")
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if err := root.load(cmd); err != nil {
			return err
		}
		level, err := root.config.Level()
		if err != nil {
			return err
		}
		logger := zerolog.New(zerolog.ConsoleWriter{Out: root.logs, NoColor: color.NoColor}).
			Level(level).With().Timestamp().Logger()
		cmd.SetContext(logger.WithContext(cmd.Context()))
		return nil
	}

	rootCmd.AddCommand(
		newIndexCommand(root),
		newAnalyzeCommand(root),
		newDesugarCommand(root),
		newFixInterpolationCommand(root),
	)

	return rootCmd
}

// load reads the config file. Without --config the default file is used
// only when it exists.
func (o *rootOptions) load(cmd *cobra.Command) error {
	var overrides []config.Option
	if cmd.Flags().Changed("log-level") {
		overrides = append(overrides, config.WithLogLevel(o.logLevel))
	}

	path := o.configFile
	if path == "" {
		exists, err := afero.Exists(o.fs, config.DefaultFile)
		if err != nil {
			return errors.Errorf("looking up %s: %w", config.DefaultFile, err)
		}
		if !exists {
			o.config = config.NewConfig(overrides...)
			return nil
		}
		path = config.DefaultFile
	}

	c, err := config.Load(o.fs, path, overrides...)
	if err != nil {
		return err
	}
	o.config = c
	return nil
}

// apply sets command flags over the loaded config.
func (o *rootOptions) apply(opts ...config.Option) {
	for _, opt := range opts {
		opt(o.config)
	}
}

// tree returns a Tree rooted at dir.
func (o *rootOptions) tree(dir string) (*utils.Tree, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, errors.Errorf("resolving %s: %w", dir, err)
	}
	return utils.NewTree(afero.NewBasePathFs(o.fs, abs)), nil
}
