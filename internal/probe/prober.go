// internal/probe/prober.go

// Package probe checks whether an endpoint answers an HTTP HEAD request
// within a deadline and measures how long it took.
package probe

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/valpere/reachlist/internal/config"
	"github.com/valpere/reachlist/internal/monitoring"
	"github.com/valpere/reachlist/internal/utils"
)

// Target is the scheme, host and port a probe is sent to
type Target struct {
	Scheme string
	Host   string
	Port   int
}

// URL returns scheme://host:port. IPv6 hosts are expected with brackets.
func (t Target) URL() string {
	return t.Scheme + "://" + t.Host + ":" + strconv.Itoa(t.Port)
}

func (t Target) String() string {
	return t.URL()
}

// Outcome is the result of one probe
type Outcome struct {
	Reachable  bool
	Latency    time.Duration
	StatusCode int
	Err        error
}

// LatencyMs returns the latency in whole milliseconds, truncated
func (o Outcome) LatencyMs() int64 {
	if o.Latency < 0 {
		return 0
	}
	return o.Latency.Milliseconds()
}

// Prober issues a single bounded reachability check
type Prober interface {
	Probe(ctx context.Context, target Target, timeout time.Duration) Outcome
}

// Options controls the HTTP prober transport.
type Options struct {
	UserAgent string
	ProxyURL  string
	TLS       *config.TLSConfig
	Logger    utils.Logger
	Metrics   *monitoring.MetricsManager
}

// HTTPProber probes targets with HEAD requests.
type HTTPProber struct {
	client    *http.Client
	userAgent string
	logger    utils.Logger
	metrics   *monitoring.MetricsManager
}

// NewHTTPProber constructs a prober. Connections are not reused between
// probes, so every measurement includes connection setup.
func NewHTTPProber(opts Options) (*HTTPProber, error) {
	logger := opts.Logger
	if logger == nil {
		logger = utils.NewNopLogger()
	}

	tlsConfig, err := BuildTLSConfig(opts.TLS, logger)
	if err != nil {
		return nil, err
	}

	transport := &http.Transport{
		Proxy:             http.ProxyFromEnvironment,
		DialContext:       (&net.Dialer{KeepAlive: -1}).DialContext,
		TLSClientConfig:   tlsConfig,
		DisableKeepAlives: true,
		ForceAttemptHTTP2: true,
	}

	if strings.TrimSpace(opts.ProxyURL) != "" {
		proxyURL, err := url.Parse(opts.ProxyURL)
		if err != nil {
			return nil, fmt.Errorf("parse proxy url: %w", err)
		}
		transport.Proxy = http.ProxyURL(proxyURL)
	}

	return &HTTPProber{
		client:    &http.Client{Transport: transport},
		userAgent: opts.UserAgent,
		logger:    logger,
		metrics:   opts.Metrics,
	}, nil
}

// Probe sends HEAD to target and waits at most timeout. The deadline cancels
// the request on every path, so a hanging endpoint cannot hold the caller.
// Any completed response with a status in [200, 500) counts as reachable.
func (p *HTTPProber) Probe(ctx context.Context, target Target, timeout time.Duration) Outcome {
	probeCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	outcome := p.do(probeCtx, target)

	result := monitoring.ProbeReachable
	switch {
	case outcome.Err != nil:
		result = monitoring.ProbeUnreachable
	case !outcome.Reachable:
		result = monitoring.ProbeBadStatus
	}
	p.metrics.RecordProbe(result, outcome.Latency)

	return outcome
}

func (p *HTTPProber) do(ctx context.Context, target Target) Outcome {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, target.URL(), nil)
	if err != nil {
		return Outcome{Latency: time.Since(start), Err: fmt.Errorf("build request: %w", err)}
	}
	if p.userAgent != "" {
		req.Header.Set("User-Agent", p.userAgent)
	}

	resp, err := p.client.Do(req)
	latency := time.Since(start)
	if err != nil {
		p.logger.Debugf("probe %s failed after %v: %v", target, latency, err)
		return Outcome{Latency: latency, Err: err}
	}
	resp.Body.Close()

	return Outcome{
		Reachable:  resp.StatusCode >= 200 && resp.StatusCode < 500,
		Latency:    latency,
		StatusCode: resp.StatusCode,
	}
}
