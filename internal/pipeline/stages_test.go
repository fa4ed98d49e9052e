package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	reacherrors "github.com/valpere/reachlist/internal/errors"
	"github.com/valpere/reachlist/internal/probe"
)

func TestSplitLines(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{"empty", "", []string{}},
		{"blank lines only", "\n \n\t\n", []string{}},
		{"crlf and padding", "  http://a.com \r\nhttps://b.com\r\n\r\n", []string{"http://a.com", "https://b.com"}},
		{"bom and nbsp", "\ufeffhttp://a.com\u00a0\nhttps://b.com", []string{"http://a.com", "https://b.com"}},
		{"order kept", "c\nb\na", []string{"c", "b", "a"}},
		{"next line is not trimmed", "\u0085x", []string{"\u0085x"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitLines(tt.raw))
		})
	}
}

func TestFilter_Match(t *testing.T) {
	tests := []struct {
		name      string
		protocols []string
		keyword   string
		candidate string
		ok        bool
		reason    Reason
	}{
		{"no filters", nil, "", "anything", true, ReasonOK},
		{"scheme allowed", []string{"https"}, "", "https://b.com", true, ReasonOK},
		{"scheme case-insensitive", []string{"https"}, "", "HTTPS://B.COM", true, ReasonOK},
		{"scheme rejected", []string{"https"}, "", "http://a.com", false, ReasonProtocolFiltered},
		{"scheme needs separator", []string{"http"}, "", "https://b.com", false, ReasonProtocolFiltered},
		{"any of several", []string{"ftp", "http"}, "", "http://a.com", true, ReasonOK},
		{"keyword in decoded label", nil, "Tōkyō", "https://b.com#T%C5%8Dky%C5%8D", true, ReasonOK},
		{"keyword missing", nil, "jp", "https://b.com#de", false, ReasonKeywordFiltered},
		{"keyword is case-sensitive", nil, "JP", "https://b.com#jp", false, ReasonKeywordFiltered},
		{"keyword decode failure", nil, "jp", "https://b.com#jp%E4%B8", false, ReasonKeywordDecodeError},
		{"bad encoding ignored without keyword", nil, "", "https://b.com#%zz", true, ReasonOK},
		{"scheme checked before keyword", []string{"https"}, "jp", "http://a.com#%zz", false, ReasonProtocolFiltered},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, reason := NewFilter(tt.protocols, tt.keyword).Match(tt.candidate)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.reason, reason)
		})
	}
}

func TestResolveTarget(t *testing.T) {
	tests := []struct {
		candidate string
		want      probe.Target
	}{
		{"https://b.com#label", probe.Target{Scheme: "https", Host: "b.com", Port: 443}},
		{"http://a.com", probe.Target{Scheme: "http", Host: "a.com", Port: 80}},
		{"http://a.com:8080/path?q=1", probe.Target{Scheme: "http", Host: "a.com", Port: 8080}},
		{"HTTPS://B.COM", probe.Target{Scheme: "https", Host: "b.com", Port: 443}},
		{"https://b.com:443", probe.Target{Scheme: "https", Host: "b.com", Port: 443}},
		{"http://a.com:443", probe.Target{Scheme: "http", Host: "a.com", Port: 443}},
		{"https://b.com:80", probe.Target{Scheme: "https", Host: "b.com", Port: 80}},
		{"http://[::1]:9000/", probe.Target{Scheme: "http", Host: "[::1]", Port: 9000}},
		{"socks5://10.0.0.1:1080#node", probe.Target{Scheme: "socks5", Host: "10.0.0.1", Port: 1080}},
		{"vless://user@10.0.0.2#x", probe.Target{Scheme: "vless", Host: "10.0.0.2", Port: 80}},
	}

	for _, tt := range tests {
		t.Run(tt.candidate, func(t *testing.T) {
			got, err := ResolveTarget(tt.candidate)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveTarget_Invalid(t *testing.T) {
	for _, candidate := range []string{"not a url", "example.com", "http://", "https://exa mple.com", "mailto:ops@example.com"} {
		t.Run(candidate, func(t *testing.T) {
			_, err := ResolveTarget(candidate)
			require.Error(t, err)
			assert.True(t, reacherrors.Is(err, reacherrors.ErrInvalidURL))
		})
	}
}

func TestAnnotate(t *testing.T) {
	tests := []struct {
		name    string
		entry   string
		latency int64
		enabled bool
		want    string
	}{
		{"disabled", "https://b.com#label", 42, false, "https://b.com#label"},
		{"no fragment", "https://b.com", 42, true, "https://b.com"},
		{"simple label", "https://b.com#label", 42, true, "https://b.com#label%7C42ms"},
		{"encoded label", "https://b.com#my%20node", 7, true, "https://b.com#my%20node%7C7ms"},
		{"empty label", "https://b.com#", 3, true, "https://b.com#%7C3ms"},
		{"second hash is label content", "https://b.com#a#b", 5, true, "https://b.com#a%23b%7C5ms"},
		{"url part untouched", "https://b.com/p%41th?q=%7e#x", 1, true, "https://b.com/p%41th?q=%7e#x%7C1ms"},
		{"zero latency", "https://b.com#x", 0, true, "https://b.com#x%7C0ms"},
		{"undecodable label kept", "https://b.com#bad%zz", 42, true, "https://b.com#bad%zz"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Annotate(tt.entry, tt.latency, tt.enabled))
		})
	}
}

func TestAnnotateEntry_ReportsDecodeError(t *testing.T) {
	out, err := AnnotateEntry("https://b.com#%E4%B8", 42)
	require.Error(t, err)
	assert.True(t, reacherrors.Is(err, reacherrors.ErrDecode))
	assert.Equal(t, "https://b.com#%E4%B8", out)
}

func TestResult_Body(t *testing.T) {
	var nilResult *Result
	assert.Equal(t, "", nilResult.Body())
	assert.Equal(t, "", (&Result{}).Body())
	assert.Equal(t, "a\nb", (&Result{Entries: []string{"a", "b"}}).Body())
}
