// internal/pipeline/filter.go
package pipeline

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/valpere/reachlist/internal/utils"
)

// Filter applies the scheme allow-list and the keyword test to candidates.
// It holds no mutable state and may be shared between goroutines.
type Filter struct {
	prefixes []string
	keyword  string
}

// NewFilter builds a filter. Protocols are expected lower-cased; an empty
// list or keyword disables that test.
func NewFilter(protocols []string, keyword string) *Filter {
	prefixes := make([]string, 0, len(protocols))
	for _, p := range protocols {
		if p != "" {
			prefixes = append(prefixes, p+"://")
		}
	}
	return &Filter{prefixes: prefixes, keyword: keyword}
}

// Match reports whether candidate passes both tests. The keyword is searched
// case-sensitively in the percent-decoded candidate; a candidate that cannot
// be decoded while a keyword is set is rejected with ReasonKeywordDecodeError.
func (f *Filter) Match(candidate string) (bool, Reason) {
	if len(f.prefixes) > 0 {
		lower := cases.Lower(language.Und).String(candidate)
		allowed := false
		for _, prefix := range f.prefixes {
			if strings.HasPrefix(lower, prefix) {
				allowed = true
				break
			}
		}
		if !allowed {
			return false, ReasonProtocolFiltered
		}
	}

	if f.keyword != "" {
		decoded, err := utils.DecodeURIComponent(candidate)
		if err != nil {
			return false, ReasonKeywordDecodeError
		}
		if !strings.Contains(decoded, f.keyword) {
			return false, ReasonKeywordFiltered
		}
	}

	return true, ReasonOK
}
