// internal/source/loader.go

// Package source retrieves the remote candidate list.
package source

import (
	"compress/flate"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/andybalholm/brotli"

	reacherrors "github.com/valpere/reachlist/internal/errors"
)

// DefaultMaxBodyBytes caps the list size when Options leaves it unset
const DefaultMaxBodyBytes = 10 * 1024 * 1024

// Loader fetches the raw text of a source list
type Loader interface {
	Load(ctx context.Context, sourceURL string) (string, error)
}

// Options controls source fetching.
type Options struct {
	// Timeout bounds the whole fetch; zero leaves it to the caller's context
	Timeout      time.Duration
	MaxBodyBytes int64
	UserAgent    string
	Client       *http.Client
}

// HTTPLoader implements Loader with a single GET request.
type HTTPLoader struct {
	client       *http.Client
	userAgent    string
	maxBodyBytes int64
}

// NewHTTPLoader constructs a loader from the provided options.
func NewHTTPLoader(opts Options) *HTTPLoader {
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = DefaultMaxBodyBytes
	}

	client := opts.Client
	if client == nil {
		transport := &http.Transport{
			Proxy:                 http.ProxyFromEnvironment,
			DialContext:           (&net.Dialer{Timeout: 30 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
			TLSHandshakeTimeout:   10 * time.Second,
			MaxIdleConns:          10,
			IdleConnTimeout:       90 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
		}
		client = &http.Client{
			Timeout:   opts.Timeout,
			Transport: transport,
		}
	}

	return &HTTPLoader{
		client:       client,
		userAgent:    opts.UserAgent,
		maxBodyBytes: opts.MaxBodyBytes,
	}
}

// Load downloads sourceURL and returns its body as text. Every failure is a
// *errors.SourceFetchError; StatusCode is set when the server answered with a
// non-2xx status.
func (l *HTTPLoader) Load(ctx context.Context, sourceURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return "", &reacherrors.SourceFetchError{URL: sourceURL, Cause: err}
	}

	if l.userAgent != "" {
		req.Header.Set("User-Agent", l.userAgent)
	}
	req.Header.Set("Accept", "text/plain, */*;q=0.8")
	req.Header.Set("Accept-Encoding", "gzip, deflate, br")

	resp, err := l.client.Do(req)
	if err != nil {
		return "", &reacherrors.SourceFetchError{URL: sourceURL, Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &reacherrors.SourceFetchError{
			URL:        sourceURL,
			StatusCode: resp.StatusCode,
			Cause:      fmt.Errorf("endpoint %s returned %s", sourceURL, resp.Status),
		}
	}

	body, err := l.readBody(resp)
	if err != nil {
		return "", &reacherrors.SourceFetchError{URL: sourceURL, Cause: err}
	}

	return strings.ToValidUTF8(string(body), "\uFFFD"), nil
}

func (l *HTTPLoader) readBody(resp *http.Response) ([]byte, error) {
	reader := io.Reader(resp.Body)

	encoding := strings.ToLower(strings.TrimSpace(resp.Header.Get("Content-Encoding")))
	switch encoding {
	case "gzip":
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("gzip decode: %w", err)
		}
		defer gz.Close()
		reader = gz
	case "br":
		reader = brotli.NewReader(resp.Body)
	case "deflate":
		fl := flate.NewReader(resp.Body)
		defer fl.Close()
		reader = fl
	}

	limited := io.LimitReader(reader, l.maxBodyBytes+1)
	body, err := io.ReadAll(limited)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if int64(len(body)) > l.maxBodyBytes {
		return nil, fmt.Errorf("response body exceeds limit of %d bytes", l.maxBodyBytes)
	}
	return body, nil
}
