package ml_parser

import (
	"regexp"

	"gitlab.com/tozd/go/errors"
)

// InterpolationConfig represents the configuration for interpolation symbols
type InterpolationConfig struct {
	Start string
	End   string
}

// DefaultInterpolationConfig is the default interpolation configuration
var DefaultInterpolationConfig = InterpolationConfig{
	Start: "{{",
	End:   "}}",
}

// IsDefault reports whether c uses the default `{{`/`}}` markers.
func (c InterpolationConfig) IsDefault() bool {
	return c == DefaultInterpolationConfig
}

// NewInterpolationConfig creates a new InterpolationConfig from a
// [start, end] marker pair.
func NewInterpolationConfig(markers []string) (InterpolationConfig, error) {
	if markers == nil {
		return DefaultInterpolationConfig, nil
	}
	if err := AssertInterpolationSymbols("interpolation", markers); err != nil {
		return InterpolationConfig{}, err
	}
	return InterpolationConfig{Start: markers[0], End: markers[1]}, nil
}

var unusableInterpolationRegexps = []*regexp.Regexp{
	regexp.MustCompile(`@`),              // control flow reserved symbol
	regexp.MustCompile(`^\s*$`),          // empty
	regexp.MustCompile(`[<>]`),           // html tag
	regexp.MustCompile(`^[{}]$`),         // i18n expansion
	regexp.MustCompile(`(?i)&(#|[a-z])`), // character reference
	regexp.MustCompile(`^//`),            // comment
}

// AssertInterpolationSymbols checks that markers is a [start, end] pair and
// that neither marker contains symbols the template syntax reserves.
func AssertInterpolationSymbols(identifier string, markers []string) error {
	if len(markers) != 2 {
		return errors.Errorf("expected '%s' to be an array, [start, end]", identifier)
	}
	start, end := markers[0], markers[1]
	for _, re := range unusableInterpolationRegexps {
		if re.MatchString(start) {
			return errors.Errorf("start symbol '%s' contains unusable interpolation symbol", start)
		}
		if re.MatchString(end) {
			return errors.Errorf("end symbol '%s' contains unusable interpolation symbol", end)
		}
	}
	return nil
}
