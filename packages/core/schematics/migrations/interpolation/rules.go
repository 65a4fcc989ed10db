package interpolation

import (
	"regexp"
	"strings"
)

// rule rewrites one malformed interpolation idiom. rewrite receives the
// submatches of pattern and returns false to leave the match untouched.
type rule struct {
	name    string
	pattern *regexp.Regexp
	rewrite func(groups []string, quote byte) (string, bool)
}

// rules run in order, each over the output of the previous one.
var rules = []rule{
	{
		name:    "commented-brace",
		pattern: regexp.MustCompile(`(?s)\{\{([^{}]*)\}<!--(.*?)-->\}`),
		rewrite: func(groups []string, quote byte) (string, bool) {
			return escapedInterpolation(groups[1], quote) + "<!--" + strings.TrimSpace(groups[2]) + "-->", true
		},
	},
	{
		name:    "single-brace",
		pattern: regexp.MustCompile(`\{\{([^{}]*)\}(\}?)`),
		rewrite: func(groups []string, quote byte) (string, bool) {
			if groups[2] != "" {
				return "", false
			}
			return escapedInterpolation(groups[1], quote), true
		},
	},
}

// escapedInterpolation renders expr between literal braces. The string
// literals avoid the quote delimiting an inline template.
func escapedInterpolation(expr string, quote byte) string {
	q := "'"
	if quote == '\'' {
		q = `"`
	}
	return "{{ " + q + "{{" + q + " }} " + strings.TrimSpace(expr) + " {{ " + q + "}}" + q + " }}"
}
