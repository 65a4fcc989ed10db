package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"
	"go.uber.org/multierr"

	"ngtools-go/packages/compiler-cli/src/ngtsc/indexer"
	"ngtools-go/packages/compiler/src/render3"
	"ngtools-go/packages/compiler/src/render3/view"
	"ngtools-go/packages/compiler/src/util"
	"ngtools-go/packages/core/schematics/utils"
)

func newAnalyzeCommand(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze <ts-file-or-dir>",
		Short: "Index every component and the components its template uses",
		Args:  cobra.ExactArgs(1),
	}

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		analyses, err := analyzeComponents(cmd.Context(), root, args[0])
		printAnalyses(cmd.OutOrStdout(), analyses)
		return err
	}

	return cmd
}

// analyzeComponents registers every component found under target and binds
// each template against the selectors of all of them.
func analyzeComponents(ctx context.Context, root *rootOptions, target string) ([]*indexer.ComponentAnalysis, error) {
	log := zerolog.Ctx(ctx)

	info, err := root.fs.Stat(target)
	if err != nil {
		return nil, errors.Errorf("analyzing %s: %w", target, err)
	}
	dir, only := target, ""
	if !info.IsDir() {
		dir, only = filepath.Dir(target), filepath.Base(target)
	}
	tree, err := root.tree(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	if only != "" {
		files = []string{only}
	} else {
		err := tree.Visit(".", func(p string) error {
			if strings.HasSuffix(p, ".ts") && !strings.HasSuffix(p, ".d.ts") {
				files = append(files, p)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	var errs error
	visitor := utils.NewNgComponentTemplateVisitor(tree)
	for _, file := range files {
		if err := visitor.VisitFile(file); err != nil {
			errs = multierr.Append(errs, err)
		}
	}

	opts, err := root.config.ParseOptions()
	if err != nil {
		return nil, err
	}

	decls := make([]*indexer.ClassDeclaration, len(visitor.Components))
	metas := make([]view.DirectiveMeta, len(visitor.Components))
	for i, component := range visitor.Components {
		decls[i] = &indexer.ClassDeclaration{
			Name:       component.ClassName,
			SourceFile: util.NewParseSourceFile(component.SourceContent, filepath.Join(dir, component.SourceFilePath)),
		}
		metas[i] = &indexer.ComponentMeta{Decl: decls[i], Selectors: component.Selector}
	}
	matcher, selectorErrs := view.NewDirectiveMatcher(metas)
	for _, err := range selectorErrs {
		log.Warn().Err(err).Msg("ignoring selector")
	}
	binder := view.NewR3TargetBinder(matcher)

	indexing := indexer.NewIndexingContext()
	for i, component := range visitor.Components {
		entry := indexer.ComponentInfo{Declaration: decls[i], Selector: component.Selector}
		if template := component.Template; template != nil {
			if template.Interpolation == utils.InterpolationIndeterminate {
				log.Warn().Str("component", component.ClassName).Msg("interpolation markers cannot be read statically, template not indexed")
			} else {
				templateOpts := append(append([]render3.ParseTemplateOption(nil), opts...),
					render3.WithInterpolationConfig(template.InterpolationConfig))
				parsed := render3.ParseTemplate(template.Content, filepath.Join(dir, template.FilePath), templateOpts...)
				logParseErrors(ctx, parsed)
				entry.Template = parsed
				entry.BoundTarget = binder.Bind(&view.Target{Template: parsed.Nodes})
			}
		}
		indexing.AddComponent(entry)
	}

	analyses := indexer.GenerateAnalysis(indexing)
	log.Debug().Int("components", len(analyses)).Msg("analysis complete")
	return analyses, errs
}

func printAnalyses(out io.Writer, analyses []*indexer.ComponentAnalysis) {
	for _, analysis := range analyses {
		locationColor.Fprint(out, analysis.SourceFilePath)
		fmt.Fprintf(out, " %s", analysis.Name)
		if analysis.Selector != "" {
			faintColor.Fprintf(out, " (%s)", analysis.Selector)
		}
		fmt.Fprintln(out)
		fmt.Fprintf(out, "  identifiers: %d\n", len(analysis.Template.Identifiers))

		if !analysis.Template.UsedComponentsKnown {
			faintColor.Fprintln(out, "  uses: unknown")
			continue
		}
		names := make([]string, 0, len(analysis.Template.UsedComponents))
		for _, used := range analysis.Template.UsedComponents {
			names = append(names, used.Name)
		}
		fmt.Fprintf(out, "  uses: %s\n", strings.Join(names, ", "))
	}
}
