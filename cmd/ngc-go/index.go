package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"
	"go.uber.org/multierr"

	"ngtools-go/packages/compiler-cli/src/ngtsc/indexer"
	"ngtools-go/packages/compiler/src/config"
)

type indexHandler struct {
	root                *rootOptions
	preserveWhitespaces bool
	json                bool
}

type identifierRecord struct {
	File   string   `json:"file"`
	Name   string   `json:"name"`
	Scope  []string `json:"scope"`
	Start  int      `json:"start"`
	End    int      `json:"end"`
	Line   int      `json:"line"`
	Column int      `json:"column"`
}

func newIndexCommand(root *rootOptions) *cobra.Command {
	me := &indexHandler{root: root}

	cmd := &cobra.Command{
		Use:   "index <template-file>...",
		Short: "List the identifiers read by the bindings of templates",
		Args:  cobra.MinimumNArgs(1),
	}

	cmd.Flags().BoolVar(&me.preserveWhitespaces, "preserve-whitespaces", false, "parse templates without collapsing whitespace")
	cmd.Flags().BoolVar(&me.json, "json", false, "print identifiers as JSON")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("preserve-whitespaces") {
			root.apply(config.WithPreserveWhitespaces(me.preserveWhitespaces))
		}
		return me.Run(cmd.Context(), cmd.OutOrStdout(), args)
	}

	return cmd
}

func (me *indexHandler) Run(ctx context.Context, out io.Writer, files []string) error {
	opts, err := me.root.config.ParseOptions()
	if err != nil {
		return err
	}

	var errs error
	records := []identifierRecord{}
	for _, file := range files {
		parsed, err := parseTemplateFile(ctx, me.root.fs, file, opts)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		ids := indexer.GetTemplateIdentifiers(parsed.Nodes, indexer.WithInterpolationConfig(parsed.InterpolationConfig))
		for _, id := range ids {
			loc := id.File.LocationAt(id.Span.Start)
			records = append(records, identifierRecord{
				File:   id.File.URL,
				Name:   id.Name,
				Scope:  id.Scope,
				Start:  id.Span.Start,
				End:    id.Span.End,
				Line:   loc.Line + 1,
				Column: loc.Col + 1,
			})
		}
	}

	if me.json {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(records); err != nil {
			return errors.Errorf("encoding identifiers: %w", err)
		}
		return errs
	}

	for _, r := range records {
		locationColor.Fprintf(out, "%s:%d:%d", r.File, r.Line, r.Column)
		fmt.Fprintf(out, " %s ", r.Name)
		faintColor.Fprintf(out, "[%d, %d) %s\n", r.Start, r.End, scopeString(r.Scope))
	}
	return errs
}
