package render3

import (
	"ngtools-go/packages/compiler/src/ml_parser"
	"ngtools-go/packages/compiler/src/util"
)

// ParseTemplateOptions modify how a template is parsed.
type ParseTemplateOptions struct {
	// PreserveWhitespaces keeps whitespace-only text nodes and runs of
	// whitespace. When false, text values are collapsed while their source
	// spans keep covering the literal text.
	PreserveWhitespaces bool

	// InterpolationConfig holds the interpolation markers of the template.
	InterpolationConfig ml_parser.InterpolationConfig
}

// ParseTemplateOption is a function that modifies ParseTemplateOptions
type ParseTemplateOption func(*ParseTemplateOptions)

// WithPreserveWhitespaces sets whether to preserve whitespaces
func WithPreserveWhitespaces(preserve bool) ParseTemplateOption {
	return func(o *ParseTemplateOptions) {
		o.PreserveWhitespaces = preserve
	}
}

// WithInterpolationConfig sets the interpolation markers
func WithInterpolationConfig(config ml_parser.InterpolationConfig) ParseTemplateOption {
	return func(o *ParseTemplateOptions) {
		o.InterpolationConfig = config
	}
}

// ParsedTemplate contains the parsed template together with the metadata
// collected while parsing it.
type ParsedTemplate struct {
	// File is the source the node spans point into.
	File *util.ParseSourceFile

	// Nodes are the template AST, parsed from the template.
	Nodes []Node

	// Errors are the HTML and expression errors found while parsing. Nodes
	// are produced even when errors are present.
	Errors []*util.ParseError

	// InterpolationConfig is the configuration the template was parsed with.
	InterpolationConfig ml_parser.InterpolationConfig

	PreserveWhitespaces bool

	// NgContentSelectors are the selectors of the ng-content slots.
	NgContentSelectors []string

	// CommentNodes are the comments of the template. They are not part of
	// Nodes.
	CommentNodes []*Comment
}

// ParseTemplate parses a template into render3 Nodes.
//
// template: text of the template to parse
// templateUrl: URL to use for the spans of the parsed template
// opts: options to modify how the template is parsed
func ParseTemplate(template, templateUrl string, opts ...ParseTemplateOption) *ParsedTemplate {
	options := &ParseTemplateOptions{InterpolationConfig: ml_parser.DefaultInterpolationConfig}
	for _, opt := range opts {
		opt(options)
	}

	file := util.NewParseSourceFile(template, templateUrl)
	parseResult := ml_parser.NewHtmlParser().ParseFile(file)

	rootNodes := parseResult.RootNodes
	if !options.PreserveWhitespaces {
		rootNodes = ml_parser.RemoveWhitespaces(rootNodes)
	}

	transformer := newHtmlAstToR3(file, options.InterpolationConfig)
	nodes := transformer.visitAll(rootNodes)

	var errors []*util.ParseError
	errors = append(errors, parseResult.Errors...)
	errors = append(errors, transformer.errors...)

	return &ParsedTemplate{
		File:                file,
		Nodes:               nodes,
		Errors:              errors,
		InterpolationConfig: options.InterpolationConfig,
		PreserveWhitespaces: options.PreserveWhitespaces,
		NgContentSelectors:  transformer.ngContentSelectors,
		CommentNodes:        transformer.commentNodes,
	}
}
