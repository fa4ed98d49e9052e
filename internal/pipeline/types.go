// internal/pipeline/types.go
package pipeline

import (
	"strings"
	"time"

	"github.com/valpere/reachlist/internal/probe"
)

// Reason classifies what happened to one list entry
type Reason string

const (
	ReasonOK                 Reason = "ok"
	ReasonProtocolFiltered   Reason = "protocol_filtered"
	ReasonKeywordFiltered    Reason = "keyword_filtered"
	ReasonKeywordDecodeError Reason = "keyword_decode_error"
	ReasonInvalidURL         Reason = "invalid_url"
	ReasonUnreachable        Reason = "unreachable"
	ReasonBadStatus          Reason = "bad_status"

	// ReasonAnnotationSkipped keeps the entry but leaves its fragment untouched
	ReasonAnnotationSkipped Reason = "annotation_skipped"
)

// Kept reports whether entries with this reason appear in the output
func (r Reason) Kept() bool {
	return r == ReasonOK || r == ReasonAnnotationSkipped
}

// EntryResult records the fate of one normalized line
type EntryResult struct {
	Index   int
	Entry   string
	Output  string
	Reason  Reason
	Target  *probe.Target
	Outcome *probe.Outcome
	Err     error
}

// Result is the outcome of one filter run
type Result struct {
	// Entries holds the output lines in input order
	Entries []string

	// Results has one record per normalized line, in input order
	Results []EntryResult

	Duration time.Duration
}

// Body joins the output entries with a single newline
func (r *Result) Body() string {
	if r == nil {
		return ""
	}
	return strings.Join(r.Entries, "\n")
}

// Summary counts entries per reason
func (r *Result) Summary() map[Reason]int {
	summary := make(map[Reason]int)
	if r == nil {
		return summary
	}
	for _, res := range r.Results {
		summary[res.Reason]++
	}
	return summary
}
