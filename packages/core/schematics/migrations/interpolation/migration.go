// Package interpolation repairs interpolations closed by a single brace, a
// mistake older template parsers tolerated.
package interpolation

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
	"go.uber.org/multierr"

	"ngtools-go/packages/core/schematics/utils"
)

// ErrNoTsConfig is returned when the workspace references no tsconfig file.
var ErrNoTsConfig = errors.Base("Could not find any tsconfig file. Cannot fix invalid interpolations.")

// Result describes a repair run.
type Result struct {
	// Report holds one file@line:column: text line per applied fix.
	Report []string
	// ChangedFiles lists the rewritten files in the order they were committed.
	ChangedFiles []string
}

// Migrate fixes the invalid interpolations of every component template
// reachable from the tsconfig files of the workspace at workspaceConfig.
// Templates with custom or indeterminate delimiters are skipped.
//
// A file that cannot be read or written is reported in the returned error
// and left alone; the other files are still migrated.
func Migrate(ctx context.Context, tree *utils.Tree, workspaceConfig string) (*Result, error) {
	log := zerolog.Ctx(ctx)

	paths, err := utils.GetProjectTsConfigPaths(tree, workspaceConfig)
	if err != nil {
		return nil, err
	}
	tsconfigs := paths.All()
	if len(tsconfigs) == 0 {
		return nil, errors.WithStack(ErrNoTsConfig)
	}

	var errs error
	visitor := utils.NewNgComponentTemplateVisitor(tree)
	visited := map[string]bool{}
	for _, tsconfig := range tsconfigs {
		files, err := utils.ProgramFiles(tree, tsconfig)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		for _, file := range files {
			if visited[file] {
				continue
			}
			visited[file] = true
			if err := visitor.VisitFile(file); err != nil {
				errs = multierr.Append(errs, err)
			}
		}
	}

	recorders := map[string]*utils.UpdateRecorder{}
	reports := map[string][]string{}
	var order []*utils.UpdateRecorder
	for _, template := range visitor.ResolvedTemplates {
		if template.Interpolation != utils.InterpolationDefault {
			continue
		}
		analysis := AnalyzeTemplate(template.Content, template.Quote)
		if len(analysis.Fixes) == 0 {
			continue
		}

		recorder := recorders[template.FilePath]
		if recorder == nil {
			recorder, err = tree.BeginUpdate(template.FilePath)
			if err != nil {
				errs = multierr.Append(errs, err)
				continue
			}
			recorders[template.FilePath] = recorder
			order = append(order, recorder)
		}
		for _, fix := range analysis.Fixes {
			start := template.Start + fix.Start
			recorder.Remove(start, fix.End-fix.Start).InsertRight(start, fix.Replacement)
			line, column := template.Position(start)
			reports[template.FilePath] = append(reports[template.FilePath],
				fmt.Sprintf("%s@%d:%d: %s", template.FilePath, line, column, fix.OriginalText))
		}
	}

	result := &Result{}
	for _, recorder := range order {
		if err := tree.CommitUpdate(recorder); err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		result.ChangedFiles = append(result.ChangedFiles, recorder.Path())
		result.Report = append(result.Report, reports[recorder.Path()]...)
	}

	for _, line := range result.Report {
		log.Info().Msg(line)
	}
	for _, err := range multierr.Errors(errs) {
		log.Error().Err(err).Msg("cannot fix invalid interpolations")
	}
	if len(result.Report) == 0 && errs == nil {
		log.Info().Msg("no invalid interpolations found")
	}
	return result, errs
}
