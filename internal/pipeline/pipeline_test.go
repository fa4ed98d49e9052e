package pipeline

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valpere/reachlist/internal/config"
	reacherrors "github.com/valpere/reachlist/internal/errors"
	"github.com/valpere/reachlist/internal/probe"
)

// fakeProber answers from a table keyed by target URL; unknown targets are unreachable
type fakeProber struct {
	mu       sync.Mutex
	outcomes map[string]probe.Outcome
	delays   map[string]time.Duration
	calls    []string
	timeouts []time.Duration
}

func (f *fakeProber) Probe(ctx context.Context, target probe.Target, timeout time.Duration) probe.Outcome {
	f.mu.Lock()
	f.calls = append(f.calls, target.URL())
	f.timeouts = append(f.timeouts, timeout)
	delay := f.delays[target.URL()]
	outcome, ok := f.outcomes[target.URL()]
	f.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}
	if !ok {
		return probe.Outcome{Err: errors.New("connection refused")}
	}
	return outcome
}

type fakeLoader struct {
	body string
	err  error
	urls []string
}

func (f *fakeLoader) Load(ctx context.Context, sourceURL string) (string, error) {
	f.urls = append(f.urls, sourceURL)
	return f.body, f.err
}

func params(mutators ...func(*config.Params)) *config.Params {
	p := &config.Params{SourceURL: "https://lists.example/nodes.txt", Timeout: config.DefaultProbeTimeout}
	for _, m := range mutators {
		m(p)
	}
	return p
}

func TestPipeline_LatencyScenario(t *testing.T) {
	prober := &fakeProber{outcomes: map[string]probe.Outcome{
		"https://b.com:443": {Reachable: true, StatusCode: 200, Latency: 42 * time.Millisecond},
	}}
	p := New(nil, prober, Options{})

	result := p.Run(context.Background(), params(func(p *config.Params) { p.AddLatency = true }), "http://a.com\nhttps://b.com#label")

	assert.Equal(t, "https://b.com#label%7C42ms", result.Body())
	assert.Equal(t, []string{"http://a.com:80", "https://b.com:443"}, prober.calls)
	require.Len(t, result.Results, 2)
	assert.Equal(t, ReasonUnreachable, result.Results[0].Reason)
	assert.Equal(t, ReasonOK, result.Results[1].Reason)
}

func TestPipeline_ProtocolScenario(t *testing.T) {
	prober := &fakeProber{outcomes: map[string]probe.Outcome{
		"http://a.com:80":   {Reachable: true, StatusCode: 200, Latency: time.Millisecond},
		"https://b.com:443": {Reachable: true, StatusCode: 200, Latency: time.Millisecond},
	}}
	p := New(nil, prober, Options{})

	result := p.Run(context.Background(), params(func(p *config.Params) { p.Protocols = []string{"https"} }), "http://a.com\nhttps://b.com")

	assert.Equal(t, "https://b.com", result.Body())
	assert.Equal(t, []string{"https://b.com:443"}, prober.calls, "filtered entries are never probed")
	assert.Equal(t, ReasonProtocolFiltered, result.Results[0].Reason)
}

func TestPipeline_KeywordAndMalformedLines(t *testing.T) {
	raw := strings.Join([]string{
		"https://jp1.example#Tokyo%20jp",
		"https://de1.example#Berlin",
		"not a url jp",
		"https://jp2.example#bad%E4%B8jp",
		"https://jp3.example:8443#jp",
	}, "\n")

	prober := &fakeProber{outcomes: map[string]probe.Outcome{
		"https://jp1.example:443":  {Reachable: true, StatusCode: 204},
		"https://jp3.example:8443": {Reachable: true, StatusCode: 404},
	}}
	p := New(nil, prober, Options{})

	result := p.Run(context.Background(), params(func(p *config.Params) { p.Keyword = "jp" }), raw)

	assert.Equal(t, "https://jp1.example#Tokyo%20jp\nhttps://jp3.example:8443#jp", result.Body())
	assert.Equal(t, map[Reason]int{
		ReasonOK:                 2,
		ReasonKeywordFiltered:    1,
		ReasonInvalidURL:         1,
		ReasonKeywordDecodeError: 1,
	}, result.Summary())
}

func TestPipeline_StatusClassificationAndAnnotationFallback(t *testing.T) {
	prober := &fakeProber{outcomes: map[string]probe.Outcome{
		"https://down.example:443":     {Reachable: false, StatusCode: 503, Latency: 5 * time.Millisecond},
		"https://oddlabel.example:443": {Reachable: true, StatusCode: 200, Latency: 9 * time.Millisecond},
		"https://plain.example:443":    {Reachable: true, StatusCode: 301, Latency: 11 * time.Millisecond},
	}}
	p := New(nil, prober, Options{})

	raw := "https://down.example#x\nhttps://oddlabel.example#%zz\nhttps://plain.example"
	result := p.Run(context.Background(), params(func(p *config.Params) { p.AddLatency = true }), raw)

	assert.Equal(t, "https://oddlabel.example#%zz\nhttps://plain.example", result.Body())
	assert.Equal(t, ReasonBadStatus, result.Results[0].Reason)
	assert.Equal(t, 503, result.Results[0].Outcome.StatusCode)
	assert.Equal(t, ReasonAnnotationSkipped, result.Results[1].Reason)
	assert.True(t, reacherrors.Is(result.Results[1].Err, reacherrors.ErrDecode))
	assert.Equal(t, ReasonOK, result.Results[2].Reason)
}

func TestPipeline_PassesTimeoutToProber(t *testing.T) {
	prober := &fakeProber{}
	p := New(nil, prober, Options{})

	p.Run(context.Background(), params(func(p *config.Params) { p.Timeout = 250 * time.Millisecond }), "http://a.com")

	require.Len(t, prober.timeouts, 1)
	assert.Equal(t, 250*time.Millisecond, prober.timeouts[0])
}

func TestPipeline_ConcurrentProbingKeepsOrder(t *testing.T) {
	lines := []string{"https://n1.example#1", "https://n2.example#2", "https://n3.example#3", "https://n4.example#4", "https://n5.example#5"}
	prober := &fakeProber{
		outcomes: map[string]probe.Outcome{},
		delays: map[string]time.Duration{
			"https://n1.example:443": 60 * time.Millisecond,
			"https://n2.example:443": 10 * time.Millisecond,
			"https://n3.example:443": 40 * time.Millisecond,
			"https://n5.example:443": 20 * time.Millisecond,
		},
	}
	for _, host := range []string{"n1", "n2", "n3", "n5"} {
		prober.outcomes["https://"+host+".example:443"] = probe.Outcome{Reachable: true, StatusCode: 200}
	}

	p := New(nil, prober, Options{Concurrency: 4})
	result := p.Run(context.Background(), params(), strings.Join(lines, "\n"))

	assert.Equal(t, "https://n1.example#1\nhttps://n2.example#2\nhttps://n3.example#3\nhttps://n5.example#5", result.Body())
	assert.Len(t, prober.calls, 5)
	for i, res := range result.Results {
		assert.Equal(t, i, res.Index)
	}
}

func TestPipeline_EmptyInput(t *testing.T) {
	p := New(nil, &fakeProber{}, Options{})
	result := p.Run(context.Background(), params(), "\n\n  \n")
	assert.Equal(t, "", result.Body())
	assert.Empty(t, result.Results)
}

func TestPipeline_Execute(t *testing.T) {
	loader := &fakeLoader{body: "https://b.com#label\n"}
	prober := &fakeProber{outcomes: map[string]probe.Outcome{
		"https://b.com:443": {Reachable: true, StatusCode: 200, Latency: 42 * time.Millisecond},
	}}
	p := New(loader, prober, Options{})

	result, err := p.Execute(context.Background(), params())
	require.NoError(t, err)
	assert.Equal(t, "https://b.com#label", result.Body())
	assert.Equal(t, []string{"https://lists.example/nodes.txt"}, loader.urls)
}

func TestPipeline_ExecuteSourceFailure(t *testing.T) {
	loader := &fakeLoader{err: &reacherrors.SourceFetchError{URL: "https://lists.example/nodes.txt", StatusCode: 404}}
	prober := &fakeProber{}
	p := New(loader, prober, Options{})

	result, err := p.Execute(context.Background(), params())
	require.Error(t, err)
	assert.Nil(t, result)
	assert.Empty(t, prober.calls)

	fetchErr, ok := reacherrors.AsSourceFetchError(err)
	require.True(t, ok)
	assert.Equal(t, 404, fetchErr.StatusCode)
}

func TestPipeline_HangingTargetIsBoundedByTimeout(t *testing.T) {
	release := make(chan struct{})
	hanging := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer hanging.Close()
	defer close(release)

	healthy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer healthy.Close()

	p, err := NewFromConfig(config.Default(), nil, nil)
	require.NoError(t, err)

	start := time.Now()
	result := p.Run(context.Background(), params(func(p *config.Params) {
		p.Timeout = 150 * time.Millisecond
		p.AddLatency = true
	}), hanging.URL+"#slow\n"+healthy.URL+"#fast")
	elapsed := time.Since(start)

	require.Len(t, result.Entries, 1)
	assert.True(t, strings.HasPrefix(result.Entries[0], healthy.URL+"#fast%7C"))
	assert.True(t, strings.HasSuffix(result.Entries[0], "ms"))
	assert.Equal(t, ReasonUnreachable, result.Results[0].Reason)
	assert.Less(t, elapsed, 2*time.Second)
}
