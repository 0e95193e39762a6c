package collyfetcher

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gocolly/colly/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/logo-discovery/internal/logo"
)

func TestFetcherBuildCollector(t *testing.T) {
	t.Parallel()

	f := New(Config{UserAgent: "coverage-agent", RespectRobots: true, Timeout: time.Second}, nil)
	ctx := context.Background()

	collector := f.buildCollector(ctx)
	assert.Equal(t, "coverage-agent", collector.UserAgent)
	assert.False(t, collector.IgnoreRobotsTxt)
	assert.True(t, collector.AllowURLRevisit)
	assert.Equal(t, ctx, collector.Context)
	assert.Equal(t, DefaultMaxBodyBytes+1, collector.MaxBodySize)
}

func TestConfigDefaults(t *testing.T) {
	t.Parallel()

	cfg := Config{}.withDefaults()
	assert.Equal(t, logo.DefaultUserAgent, cfg.UserAgent)
	assert.Equal(t, DefaultTimeout, cfg.Timeout)
	assert.EqualValues(t, DefaultMaxBodyBytes, cfg.MaxBodyBytes)
	assert.Equal(t, DefaultMaxRedirects, cfg.MaxRedirects)
}

func TestConfigureCollectorHooks(t *testing.T) {
	t.Parallel()

	f := New(Config{}, nil)
	req := logo.FetchRequest{
		URL:     "https://example.com",
		Headers: http.Header{"X-Trace": {"yes"}, "User-Agent": {"override"}},
	}
	start := time.Unix(0, 0)
	var result logo.FetchResponse
	var fetchErr error

	hooks := &stubHooks{}
	f.configureCollectorHooks(hooks, req, start, &result, &fetchErr)
	require.NotNil(t, hooks.onRequest)
	require.NotNil(t, hooks.onResponse)
	require.NotNil(t, hooks.onError)

	collyReq := &colly.Request{Headers: &http.Header{"User-Agent": {"colly"}}}
	hooks.onRequest(collyReq)
	assert.Equal(t, "yes", collyReq.Headers.Get("X-Trace"))
	assert.Equal(t, []string{"override"}, collyReq.Headers.Values("User-Agent"))

	hooks.onResponse(&colly.Response{
		StatusCode: http.StatusOK,
		Body:       []byte("body"),
		Headers:    &http.Header{"X-Resp": {"ok"}},
		Request: &colly.Request{
			URL: mustParseURL(t, "https://example.com/final"),
		},
	})
	assert.Equal(t, http.StatusOK, result.StatusCode)
	assert.Equal(t, "body", string(result.Body))
	assert.Equal(t, "ok", result.Headers.Get("X-Resp"))
	assert.Equal(t, "https://example.com/final", result.URL)

	hooks.onError(&colly.Response{StatusCode: http.StatusNotFound}, errors.New("Not Found"))
	var fe *logo.FetchError
	require.ErrorAs(t, fetchErr, &fe)
	assert.Equal(t, http.StatusNotFound, fe.StatusCode)
	assert.ErrorIs(t, fetchErr, logo.ErrUnexpectedStatus)

	hooks.onError(nil, errors.New("boom"))
	require.ErrorAs(t, fetchErr, &fe)
	assert.Zero(t, fe.StatusCode)
	assert.EqualError(t, fe.Err, "boom")
}

func TestCopyHeadersHandlesNil(t *testing.T) {
	t.Parallel()

	f := New(Config{}, nil)
	collyReq := &colly.Request{Headers: &http.Header{}}
	f.copyHeaders(logo.FetchRequest{}, collyReq)
	assert.Empty(t, *collyReq.Headers)
}

func TestFetchSuccess(t *testing.T) {
	t.Parallel()

	var gotAccept, gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAccept = r.Header.Get("Accept")
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte("\x89PNG\r\n\x1a\nrest"))
	}))
	t.Cleanup(srv.Close)

	f := New(Config{UserAgent: "test-agent", Timeout: 5 * time.Second}, nil)
	resp, err := f.Fetch(context.Background(), logo.FetchRequest{
		URL:     srv.URL + "/logo.png",
		Headers: http.Header{"Accept": {"image/*"}},
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Headers.Get("Content-Type"))
	assert.True(t, strings.HasPrefix(string(resp.Body), "\x89PNG"))
	assert.Equal(t, "image/*", gotAccept)
	assert.Equal(t, "test-agent", gotUA)
}

func TestFetchFollowsRedirects(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/old", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/new", http.StatusMovedPermanently)
	})
	mux.HandleFunc("/new", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html></html>"))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	f := New(Config{}, nil)
	resp, err := f.Fetch(context.Background(), logo.FetchRequest{URL: srv.URL + "/old"})
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/new", resp.URL)
}

func TestFetchErrors(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/missing", func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	})
	mux.HandleFunc("/forbidden", func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	})
	mux.HandleFunc("/empty", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/accepted", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte("later"))
	})
	mux.HandleFunc("/large", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("x", 64)))
	})
	mux.HandleFunc("/loop", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/loop?n="+r.URL.Query().Get("n")+"x", http.StatusFound)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	f := New(Config{MaxBodyBytes: 32, MaxRedirects: 3}, nil)

	tests := []struct {
		name   string
		path   string
		status int
		cause  error
	}{
		{name: "not found", path: "/missing", status: http.StatusNotFound, cause: logo.ErrUnexpectedStatus},
		{name: "forbidden", path: "/forbidden", status: http.StatusForbidden, cause: logo.ErrUnexpectedStatus},
		{name: "empty body", path: "/empty", status: http.StatusOK, cause: logo.ErrEmptyBody},
		{name: "non-200 success", path: "/accepted", status: http.StatusAccepted, cause: logo.ErrUnexpectedStatus},
		{name: "too large", path: "/large", status: http.StatusOK, cause: logo.ErrBodyTooLarge},
		{name: "redirect loop", path: "/loop", cause: logo.ErrTooManyRedirects},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := f.Fetch(context.Background(), logo.FetchRequest{URL: srv.URL + tt.path})
			require.Error(t, err)
			var fe *logo.FetchError
			require.ErrorAs(t, err, &fe)
			assert.Equal(t, tt.status, fe.StatusCode)
			assert.ErrorIs(t, err, tt.cause)
		})
	}
}

func TestFetchHonorsCancellation(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(func() {
		close(release)
		srv.Close()
	})

	f := New(Config{}, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := f.Fetch(ctx, logo.FetchRequest{URL: srv.URL})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestFetchWaitsOnLimiter(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte("<html></html>"))
	}))
	t.Cleanup(srv.Close)

	limiter := &stubLimiter{}
	f := New(Config{Timeout: 5 * time.Second, Limiter: limiter}, nil)
	_, err := f.Fetch(context.Background(), logo.FetchRequest{URL: srv.URL + "/brand"})
	require.NoError(t, err)
	assert.Equal(t, []string{srv.URL + "/brand"}, limiter.urls)

	limiter.err = context.DeadlineExceeded
	_, err = f.Fetch(context.Background(), logo.FetchRequest{URL: srv.URL + "/press"})
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, int32(1), hits.Load())
}

func mustParseURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u
}

type stubHooks struct {
	onRequest  colly.RequestCallback
	onResponse colly.ResponseCallback
	onError    colly.ErrorCallback
}

func (s *stubHooks) OnRequest(cb colly.RequestCallback) {
	s.onRequest = cb
}

func (s *stubHooks) OnResponse(cb colly.ResponseCallback) {
	s.onResponse = cb
}

func (s *stubHooks) OnError(cb colly.ErrorCallback) {
	s.onError = cb
}

type stubLimiter struct {
	urls []string
	err  error
}

func (s *stubLimiter) Wait(_ context.Context, rawURL string) error {
	s.urls = append(s.urls, rawURL)
	return s.err
}
