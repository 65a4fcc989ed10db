package main

import (
	"github.com/spf13/cobra"

	"ngtools-go/packages/compiler/src/config"
	"ngtools-go/packages/core/schematics/migrations/interpolation"
	"ngtools-go/packages/core/schematics/utils"
)

type fixInterpolationHandler struct {
	root    *rootOptions
	project string
	dir     string
}

func newFixInterpolationCommand(root *rootOptions) *cobra.Command {
	me := &fixInterpolationHandler{root: root}

	cmd := &cobra.Command{
		Use:   "fix-interpolation",
		Short: "Escape interpolations closed by a single brace",
		Args:  cobra.NoArgs,
	}

	cmd.Flags().StringVar(&me.project, "project", "", "workspace file, relative to the root (default "+utils.DefaultWorkspaceConfig+")")
	cmd.Flags().StringVar(&me.dir, "root", "", "project root (default .)")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("project") {
			root.apply(config.WithProject(me.project))
		}
		if cmd.Flags().Changed("root") {
			root.apply(config.WithRoot(me.dir))
		}

		c := root.config
		tree, err := root.tree(c.Root)
		if err != nil {
			return err
		}
		result, err := interpolation.Migrate(cmd.Context(), tree, c.Project)
		if result != nil && len(result.Report) > 0 {
			successColor.Fprintf(cmd.OutOrStdout(), "fixed %d interpolation(s) in %d file(s)\n", len(result.Report), len(result.ChangedFiles))
		}
		return err
	}

	return cmd
}
