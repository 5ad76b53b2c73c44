// Package textfilter implements the --filter line predicate: a regular
// expression prefixed with "+" (translate only matching lines) or "-"
// (translate only lines that do not match).
package textfilter

import (
	"fmt"
	"strings"
	"time"

	"github.com/dlclark/regexp2"
	"github.com/oukeidos/filtertranslate/internal/apperrors"
	"github.com/oukeidos/filtertranslate/internal/logger"
)

// MatchTimeout bounds a single regex evaluation so a pathological pattern
// cannot hang the run.
const MatchTimeout = 2 * time.Second

// Filter decides which lines pass through untranslated.
type Filter struct {
	spec      string
	translate bool
	re        *regexp2.Regexp
}

// Parse compiles a filter spec. An empty spec returns (nil, nil): no filter.
func Parse(spec string) (*Filter, error) {
	if spec == "" {
		return nil, nil
	}
	sign := spec[0]
	if sign != '+' && sign != '-' {
		return nil, apperrors.Config("filter argument must begin with + or -", nil)
	}
	re, err := regexp2.Compile(spec[1:], regexp2.None)
	if err != nil {
		return nil, apperrors.Config(fmt.Sprintf("Invalid filter regex %q.", spec[1:]), err)
	}
	re.MatchTimeout = MatchTimeout
	return &Filter{spec: spec, translate: sign == '+', re: re}, nil
}

// String returns the spec the filter was parsed from.
func (f *Filter) String() string {
	if f == nil {
		return ""
	}
	return f.spec
}

// Skip reports whether line must be copied verbatim instead of translated.
// The regex is searched in the line without its line break, so "$" anchors
// before a trailing "\r\n" as well as before "\n".
func (f *Filter) Skip(line string) bool {
	if f == nil {
		return false
	}
	match, err := f.re.MatchString(strings.TrimRight(strings.TrimLeft(line, "\n"), "\r\n"))
	if err != nil {
		// A timed out match counts as no match.
		logger.Warn("Filter evaluation failed", "filter", f.spec, "error", err)
		match = false
	}
	return match != f.translate
}
