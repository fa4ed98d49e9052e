// internal/pipeline/pipeline.go

// Package pipeline turns a raw candidate list into the filtered, probed and
// optionally latency-annotated output list.
package pipeline

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/valpere/reachlist/internal/config"
	reacherrors "github.com/valpere/reachlist/internal/errors"
	"github.com/valpere/reachlist/internal/monitoring"
	"github.com/valpere/reachlist/internal/probe"
	"github.com/valpere/reachlist/internal/source"
	"github.com/valpere/reachlist/internal/utils"
)

// Options tunes probing.
type Options struct {
	// Concurrency is the number of probes in flight; values below 2 probe
	// one entry at a time.
	Concurrency int

	// RateLimit paces probe starts per second; zero disables pacing
	RateLimit float64

	Logger  utils.Logger
	Metrics *monitoring.MetricsManager
}

// Pipeline orchestrates loading, filtering, probing and annotation.
type Pipeline struct {
	loader      source.Loader
	prober      probe.Prober
	concurrency int
	limiter     *utils.RateLimiter
	logger      utils.Logger
	metrics     *monitoring.MetricsManager
}

// New creates a pipeline around the given loader and prober
func New(loader source.Loader, prober probe.Prober, opts Options) *Pipeline {
	if opts.Logger == nil {
		opts.Logger = utils.NewNopLogger()
	}
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}

	return &Pipeline{
		loader:      loader,
		prober:      prober,
		concurrency: opts.Concurrency,
		limiter:     utils.NewRateLimiter(opts.RateLimit, 1),
		logger:      opts.Logger,
		metrics:     opts.Metrics,
	}
}

// NewFromConfig wires an HTTP loader and prober from the service configuration
func NewFromConfig(cfg *config.ServiceConfig, logger utils.Logger, metrics *monitoring.MetricsManager) (*Pipeline, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = utils.NewNopLogger()
	}

	loader := source.NewHTTPLoader(source.Options{
		Timeout:      cfg.Source.Timeout,
		MaxBodyBytes: cfg.Source.MaxBodyBytes,
		UserAgent:    cfg.Source.UserAgent,
	})

	prober, err := probe.NewHTTPProber(probe.Options{
		UserAgent: cfg.Probe.UserAgent,
		ProxyURL:  cfg.Probe.ProxyURL,
		TLS:       cfg.Probe.TLS,
		Logger:    logger,
		Metrics:   metrics,
	})
	if err != nil {
		return nil, err
	}

	return New(loader, prober, Options{
		Concurrency: cfg.Probe.Concurrency,
		RateLimit:   cfg.Probe.RateLimit,
		Logger:      logger,
		Metrics:     metrics,
	}), nil
}

// Execute fetches the source list and runs it. A fetch failure is returned
// as *errors.SourceFetchError and no entry is processed.
func (p *Pipeline) Execute(ctx context.Context, params *config.Params) (*Result, error) {
	raw, err := p.loader.Load(ctx, params.SourceURL)
	if err != nil {
		result := monitoring.FetchNetworkError
		if fetchErr, ok := reacherrors.AsSourceFetchError(err); ok && fetchErr.StatusCode != 0 {
			result = monitoring.FetchStatusError
		}
		p.metrics.RecordSourceFetch(result, 0)
		utils.LoggerFromContext(ctx, p.logger).Warnf("source fetch failed for %s: %v", params.SourceURL, err)
		return nil, err
	}

	lines := SplitLines(raw)
	p.metrics.RecordSourceFetch(monitoring.FetchOK, len(lines))

	return p.runLines(ctx, params, lines), nil
}

// Run processes already loaded source text. Failures of individual entries
// never abort the run; each one is recorded in Result.Results.
func (p *Pipeline) Run(ctx context.Context, params *config.Params, raw string) *Result {
	return p.runLines(ctx, params, SplitLines(raw))
}

func (p *Pipeline) runLines(ctx context.Context, params *config.Params, lines []string) *Result {
	start := time.Now()
	logger := utils.LoggerFromContext(ctx, p.logger)
	p.metrics.RecordRunStart()

	results := make([]EntryResult, len(lines))
	filter := NewFilter(params.Protocols, params.Keyword)

	pending := make([]int, 0, len(lines))
	for i, line := range lines {
		results[i] = EntryResult{Index: i, Entry: line}

		if ok, reason := filter.Match(line); !ok {
			results[i].Reason = reason
			continue
		}

		target, err := ResolveTarget(line)
		if err != nil {
			results[i].Reason = ReasonInvalidURL
			results[i].Err = err
			continue
		}
		results[i].Target = &target
		pending = append(pending, i)
	}

	if p.concurrency <= 1 {
		for _, i := range pending {
			p.probeEntry(ctx, params, &results[i])
		}
	} else {
		// every worker writes only its own slot, so output order is the input order
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(p.concurrency)
		for _, i := range pending {
			entry := &results[i]
			g.Go(func() error {
				p.probeEntry(gctx, params, entry)
				return nil
			})
		}
		_ = g.Wait()
	}

	result := &Result{
		Entries: make([]string, 0, len(pending)),
		Results: results,
	}
	for _, res := range results {
		p.metrics.RecordEntry(string(res.Reason))
		if res.Reason.Kept() {
			result.Entries = append(result.Entries, res.Output)
			continue
		}
		logDrop(logger, res)
	}

	result.Duration = time.Since(start)
	p.metrics.RecordRunComplete(result.Duration)
	logger.Debugf("processed %d entries, kept %d in %v", len(results), len(result.Entries), result.Duration)

	return result
}

func (p *Pipeline) probeEntry(ctx context.Context, params *config.Params, res *EntryResult) {
	if err := p.limiter.Wait(ctx); err != nil {
		res.Reason = ReasonUnreachable
		res.Err = err
		return
	}

	outcome := p.prober.Probe(ctx, *res.Target, params.Timeout)
	res.Outcome = &outcome

	switch {
	case outcome.Err != nil:
		res.Reason = ReasonUnreachable
		res.Err = outcome.Err
		return
	case !outcome.Reachable:
		res.Reason = ReasonBadStatus
		return
	}

	res.Reason = ReasonOK
	res.Output = res.Entry
	if !params.AddLatency {
		return
	}

	annotated, err := AnnotateEntry(res.Entry, outcome.LatencyMs())
	if err != nil {
		res.Reason = ReasonAnnotationSkipped
		res.Err = err
		return
	}
	res.Output = annotated
}

func logDrop(logger utils.Logger, res EntryResult) {
	fields := map[string]interface{}{
		"index":  res.Index,
		"entry":  res.Entry,
		"reason": string(res.Reason),
	}
	if res.Outcome != nil {
		fields["latency_ms"] = res.Outcome.LatencyMs()
		if res.Outcome.StatusCode != 0 {
			fields["status"] = res.Outcome.StatusCode
		}
	}
	if res.Err != nil {
		fields["error"] = res.Err.Error()
	}
	logger.WithFields(fields).Debug("entry dropped")
}
