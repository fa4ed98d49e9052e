// internal/config/params.go
package config

import (
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	reacherrors "github.com/valpere/reachlist/internal/errors"
)

// Parameter names shared by the HTTP query, the CLI and the override sources
const (
	ParamURL        = "url"
	ParamMax        = "max"
	ParamProto      = "proto"
	ParamKeyword    = "keyword"
	ParamAddLatency = "add_latency"
)

// ParamNames lists every recognised parameter name
var ParamNames = []string{ParamURL, ParamMax, ParamProto, ParamKeyword, ParamAddLatency}

// DefaultProbeTimeout is used when max is absent or unusable
const DefaultProbeTimeout = 1000 * time.Millisecond

// Params is the resolved configuration of a single filter run. It is not
// modified after Resolve returns.
type Params struct {
	SourceURL  string
	Timeout    time.Duration
	Protocols  []string
	Keyword    string
	AddLatency bool
}

// TimeoutMs returns the probe timeout in whole milliseconds
func (p *Params) TimeoutMs() int64 {
	return p.Timeout.Milliseconds()
}

// ParamSource supplies raw parameter values. An empty value counts as absent.
type ParamSource interface {
	Lookup(name string) (string, bool)
}

// MapSource is a ParamSource backed by a plain map
type MapSource map[string]string

func (m MapSource) Lookup(name string) (string, bool) {
	v, ok := m[name]
	return v, ok && v != ""
}

// ValuesSource adapts URL query values; the first value of a key is used
type ValuesSource url.Values

func (v ValuesSource) Lookup(name string) (string, bool) {
	value := url.Values(v).Get(name)
	return value, value != ""
}

// Resolve merges sources in precedence order: for every parameter the first
// source holding a non-empty value wins. A missing source URL is a
// ConfigurationError.
func Resolve(sources ...ParamSource) (*Params, error) {
	lookup := func(name string) string {
		for _, src := range sources {
			if src == nil {
				continue
			}
			if v, ok := src.Lookup(name); ok {
				return v
			}
		}
		return ""
	}

	params := &Params{
		SourceURL:  lookup(ParamURL),
		Timeout:    ParseTimeout(lookup(ParamMax)),
		Protocols:  ParseProtocols(lookup(ParamProto)),
		Keyword:    lookup(ParamKeyword),
		AddLatency: lookup(ParamAddLatency) == "true",
	}

	if params.SourceURL == "" {
		return nil, reacherrors.NewConfigurationError(ParamURL, "Missing ?url=...", reacherrors.ErrMissingSourceURL)
	}

	return params, nil
}

// ParseTimeout reads a leading integer millisecond count: optional leading
// whitespace and sign followed by digits, trailing garbage ignored. Anything unusable or non-positive yields DefaultProbeTimeout.
func ParseTimeout(raw string) time.Duration {
	s := strings.TrimLeftFunc(raw, unicode.IsSpace)

	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digitsStart := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digitsStart {
		return DefaultProbeTimeout
	}

	ms, err := strconv.ParseInt(s[:end], 10, 64)
	if err != nil || ms <= 0 {
		return DefaultProbeTimeout
	}
	if ms > int64(time.Duration(1<<63-1)/time.Millisecond) {
		return DefaultProbeTimeout
	}
	return time.Duration(ms) * time.Millisecond
}

// ParseProtocols splits a comma separated scheme list, dropping empty members.
// Members are trimmed and lower-cased so the filter is case-insensitive.
func ParseProtocols(raw string) []string {
	if raw == "" {
		return nil
	}

	lower := cases.Lower(language.Und)
	protocols := make([]string, 0, 2)
	for _, p := range strings.Split(raw, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		protocols = append(protocols, lower.String(p))
	}
	if len(protocols) == 0 {
		return nil
	}
	return protocols
}

func isParamName(name string) bool {
	for _, n := range ParamNames {
		if n == name {
			return true
		}
	}
	return false
}
