package source

import (
	"bytes"
	"compress/gzip"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	reacherrors "github.com/valpere/reachlist/internal/errors"
)

const sampleList = "http://a.example\nhttps://b.example#label\n"

func TestHTTPLoader_Load(t *testing.T) {
	var gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte(sampleList))
	}))
	defer server.Close()

	loader := NewHTTPLoader(Options{UserAgent: "reachlist-test"})
	body, err := loader.Load(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, sampleList, body)
	assert.Equal(t, "reachlist-test", gotUA)
}

func TestHTTPLoader_ContentEncodings(t *testing.T) {
	gzipped := func() []byte {
		var buf bytes.Buffer
		zw := gzip.NewWriter(&buf)
		_, _ = zw.Write([]byte(sampleList))
		_ = zw.Close()
		return buf.Bytes()
	}
	brotlied := func() []byte {
		var buf bytes.Buffer
		bw := brotli.NewWriter(&buf)
		_, _ = bw.Write([]byte(sampleList))
		_ = bw.Close()
		return buf.Bytes()
	}

	tests := []struct {
		encoding string
		payload  []byte
	}{
		{"gzip", gzipped()},
		{"br", brotlied()},
	}

	for _, tt := range tests {
		t.Run(tt.encoding, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Contains(t, r.Header.Get("Accept-Encoding"), tt.encoding)
				w.Header().Set("Content-Encoding", tt.encoding)
				_, _ = w.Write(tt.payload)
			}))
			defer server.Close()

			body, err := NewHTTPLoader(Options{}).Load(context.Background(), server.URL)
			require.NoError(t, err)
			assert.Equal(t, sampleList, body)
		})
	}
}

func TestHTTPLoader_NonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer server.Close()

	_, err := NewHTTPLoader(Options{}).Load(context.Background(), server.URL)
	require.Error(t, err)

	fetchErr, ok := reacherrors.AsSourceFetchError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, fetchErr.StatusCode)
	assert.Equal(t, "Failed to fetch source: Status 404", fetchErr.Error())
}

func TestHTTPLoader_NetworkFailure(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	addr := server.URL
	server.Close()

	_, err := NewHTTPLoader(Options{}).Load(context.Background(), addr)
	require.Error(t, err)

	fetchErr, ok := reacherrors.AsSourceFetchError(err)
	require.True(t, ok)
	assert.Zero(t, fetchErr.StatusCode)
	assert.True(t, strings.HasPrefix(fetchErr.Error(), "Failed to fetch source: "))
}

func TestHTTPLoader_UnsupportedScheme(t *testing.T) {
	_, err := NewHTTPLoader(Options{}).Load(context.Background(), "ftp://lists.example/nodes.txt")
	require.Error(t, err)
	_, ok := reacherrors.AsSourceFetchError(err)
	assert.True(t, ok)
}

func TestHTTPLoader_BodyLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("x", 64)))
	}))
	defer server.Close()

	_, err := NewHTTPLoader(Options{MaxBodyBytes: 16}).Load(context.Background(), server.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds limit of 16 bytes")
}

func TestHTTPLoader_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	start := time.Now()
	_, err := NewHTTPLoader(Options{Timeout: 100 * time.Millisecond}).Load(context.Background(), server.URL)
	require.Error(t, err)
	assert.Less(t, time.Since(start), 2*time.Second)
}
