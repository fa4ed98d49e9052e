// pkg/api/api.go

// Package api is the library entry point for filtering URL lists without
// running the HTTP service.
package api

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/valpere/reachlist/internal/config"
	"github.com/valpere/reachlist/internal/pipeline"
)

// Client runs the filter pipeline in process
type Client struct {
	config   *ServiceConfig
	pipeline *pipeline.Pipeline
}

// NewClient creates a client. A nil config uses the service defaults.
// Environment and file overrides apply exactly as they do for the service.
func NewClient(cfg *ServiceConfig) (*Client, error) {
	return NewClientWithLogger(cfg, nil)
}

// NewClientWithLogger is NewClient with a caller supplied logger
func NewClientWithLogger(cfg *ServiceConfig, logger Logger) (*Client, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	p, err := pipeline.NewFromConfig(cfg, logger, nil)
	if err != nil {
		return nil, err
	}
	return &Client{config: cfg, pipeline: p}, nil
}

// Filter fetches the list and returns the surviving entries joined by "\n"
func (c *Client) Filter(ctx context.Context, params Params) (string, error) {
	result, err := c.FilterDetailed(ctx, params)
	if err != nil {
		return "", err
	}
	return result.Body(), nil
}

// FilterDetailed is Filter with the per-entry outcome of every line
func (c *Client) FilterDetailed(ctx context.Context, params Params) (*Result, error) {
	resolved, err := c.config.ResolveRequest(params.source())
	if err != nil {
		return nil, err
	}
	return c.pipeline.Execute(ctx, resolved)
}

func (p Params) source() config.MapSource {
	src := config.MapSource{
		config.ParamURL:     p.SourceURL,
		config.ParamProto:   strings.Join(p.Protocols, ","),
		config.ParamKeyword: p.Keyword,
	}
	if p.MaxMs > 0 {
		src[config.ParamMax] = strconv.Itoa(p.MaxMs)
	}
	if p.AddLatency {
		src[config.ParamAddLatency] = "true"
	}
	return src
}
