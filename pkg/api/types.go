package api

import (
	"github.com/valpere/reachlist/internal/config"
	"github.com/valpere/reachlist/internal/pipeline"
	"github.com/valpere/reachlist/internal/utils"
)

// Re-export types from internal packages for public API
type ServiceConfig = config.ServiceConfig
type ProbeConfig = config.ProbeConfig
type SourceConfig = config.SourceConfig
type TLSConfig = config.TLSConfig
type Result = pipeline.Result
type EntryResult = pipeline.EntryResult
type Reason = pipeline.Reason
type Logger = utils.Logger

// Drop and keep reasons reported in EntryResult.Reason
const (
	ReasonOK                 = pipeline.ReasonOK
	ReasonProtocolFiltered   = pipeline.ReasonProtocolFiltered
	ReasonKeywordFiltered    = pipeline.ReasonKeywordFiltered
	ReasonKeywordDecodeError = pipeline.ReasonKeywordDecodeError
	ReasonInvalidURL         = pipeline.ReasonInvalidURL
	ReasonUnreachable        = pipeline.ReasonUnreachable
	ReasonBadStatus          = pipeline.ReasonBadStatus
	ReasonAnnotationSkipped  = pipeline.ReasonAnnotationSkipped
)

// Params mirrors the query parameters of the HTTP service.
type Params struct {
	// SourceURL is the location of the newline separated list (required)
	SourceURL string

	// MaxMs is the per-probe timeout in milliseconds; zero means 1000
	MaxMs int

	// Protocols restricts entries to these schemes, case-insensitively
	Protocols []string

	// Keyword must appear in the percent-decoded entry
	Keyword string

	// AddLatency appends |Nms to the fragment of every kept entry
	AddLatency bool
}
