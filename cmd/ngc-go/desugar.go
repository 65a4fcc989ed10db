package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"ngtools-go/packages/compiler/src/config"
	"ngtools-go/packages/compiler/src/render3"
)

func newDesugarCommand(root *rootOptions) *cobra.Command {
	var preserveWhitespaces bool

	cmd := &cobra.Command{
		Use:   "desugar <template-file>",
		Short: "Print a template with its structural directives expanded",
		Args:  cobra.ExactArgs(1),
	}

	cmd.Flags().BoolVar(&preserveWhitespaces, "preserve-whitespaces", false, "parse the template without collapsing whitespace")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("preserve-whitespaces") {
			root.apply(config.WithPreserveWhitespaces(preserveWhitespaces))
		}
		opts, err := root.config.ParseOptions()
		if err != nil {
			return err
		}
		parsed, err := parseTemplateFile(cmd.Context(), root.fs, args[0], opts)
		if err != nil {
			return err
		}
		printer := render3.NewTemplatePrinter(parsed.InterpolationConfig)
		fmt.Fprintln(cmd.OutOrStdout(), printer.Print(parsed.Nodes))
		return nil
	}

	return cmd
}
