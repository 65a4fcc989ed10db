package main

import (
	"context"
	"strings"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"gitlab.com/tozd/go/errors"

	"ngtools-go/packages/compiler/src/render3"
)

var (
	locationColor = color.New(color.FgCyan)
	faintColor    = color.New(color.Faint)
	successColor  = color.New(color.FgGreen)
	errorColor    = color.New(color.FgRed)
)

// parseTemplateFile parses the template file at p. Parse errors are logged
// and the partial result is returned.
func parseTemplateFile(ctx context.Context, fsys afero.Fs, p string, opts []render3.ParseTemplateOption) (*render3.ParsedTemplate, error) {
	data, err := afero.ReadFile(fsys, p)
	if err != nil {
		return nil, errors.Errorf("reading template: %w", err)
	}
	parsed := render3.ParseTemplate(string(data), p, opts...)
	logParseErrors(ctx, parsed)
	return parsed, nil
}

func logParseErrors(ctx context.Context, parsed *render3.ParsedTemplate) {
	log := zerolog.Ctx(ctx)
	for _, e := range parsed.Errors {
		log.Warn().Str("file", parsed.File.URL).Msg(e.Error())
	}
}

func scopeString(scope []string) string {
	if len(scope) == 0 {
		return "(root)"
	}
	return strings.Join(scope, " > ")
}
