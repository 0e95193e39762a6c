// Package collyfetcher implements logo.Fetcher using gocolly.
package collyfetcher

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"

	"github.com/JakeFAU/logo-discovery/internal/logo"
	"github.com/JakeFAU/logo-discovery/internal/metrics"
)

// Defaults applied when Config fields are zero.
const (
	DefaultTimeout      = 30 * time.Second
	DefaultMaxBodyBytes = 10 << 20
	DefaultMaxRedirects = 10
)

// RateLimiter gates requests per host.
type RateLimiter interface {
	Wait(ctx context.Context, rawURL string) error
}

// Config controls collector behavior. Limiter is optional.
type Config struct {
	UserAgent     string
	RespectRobots bool
	Timeout       time.Duration
	MaxBodyBytes  int64
	MaxRedirects  int
	Limiter       RateLimiter
}

func (c Config) withDefaults() Config {
	if c.UserAgent == "" {
		c.UserAgent = logo.DefaultUserAgent
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.MaxBodyBytes <= 0 {
		c.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if c.MaxRedirects <= 0 {
		c.MaxRedirects = DefaultMaxRedirects
	}
	return c
}

// Fetcher implements logo.Fetcher using the Colly collector. The base
// collector owns the shared transport and is never mutated after New, so a
// Fetcher is safe for concurrent use.
type Fetcher struct {
	cfg           Config
	baseCollector *colly.Collector
	logger        *zap.Logger
}

type collectorHooks interface {
	OnRequest(colly.RequestCallback)
	OnResponse(colly.ResponseCallback)
	OnError(colly.ErrorCallback)
}

// New builds a Fetcher.
func New(cfg Config, logger *zap.Logger) *Fetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg = cfg.withDefaults()

	c := colly.NewCollector(colly.Async(false))
	c.UserAgent = cfg.UserAgent
	c.AllowURLRevisit = true
	c.IgnoreRobotsTxt = !cfg.RespectRobots
	// One extra byte lets Fetch tell a body at the limit from a truncated one.
	c.MaxBodySize = int(cfg.MaxBodyBytes) + 1
	c.WithTransport(newHTTPTransport())
	c.SetRequestTimeout(cfg.Timeout)
	c.SetRedirectHandler(redirectLimit(cfg.MaxRedirects))

	return &Fetcher{
		cfg:           cfg,
		baseCollector: c,
		logger:        logger,
	}
}

// Fetch executes a single HTTP GET using Colly. Anything other than an
// HTTP 200 with a non-empty body within the size cap is a *logo.FetchError.
func (f *Fetcher) Fetch(ctx context.Context, request logo.FetchRequest) (logo.FetchResponse, error) {
	if f.cfg.Limiter != nil {
		if err := f.cfg.Limiter.Wait(ctx, request.URL); err != nil {
			return logo.FetchResponse{}, fmt.Errorf("fetch %s: %w", request.URL, err)
		}
	}
	start := time.Now()
	collector := f.buildCollector(ctx)

	result, err := f.runCollector(ctx, collector, request, start)
	status := "error"
	if result.StatusCode != 0 {
		status = strconv.Itoa(result.StatusCode)
	}
	metrics.ObserveFetch(request.URL, status, len(result.Body), time.Since(start))
	if err != nil {
		f.logger.Debug("fetch failed", zap.String("url", request.URL), zap.Error(err))
		return logo.FetchResponse{}, err
	}

	switch {
	case result.StatusCode != http.StatusOK:
		return logo.FetchResponse{}, &logo.FetchError{
			URL: request.URL, StatusCode: result.StatusCode, Err: logo.ErrUnexpectedStatus,
		}
	case len(result.Body) == 0:
		return logo.FetchResponse{}, &logo.FetchError{
			URL: request.URL, StatusCode: result.StatusCode, Err: logo.ErrEmptyBody,
		}
	case int64(len(result.Body)) > f.cfg.MaxBodyBytes:
		return logo.FetchResponse{}, &logo.FetchError{
			URL: request.URL, StatusCode: result.StatusCode, Err: logo.ErrBodyTooLarge,
		}
	}
	f.logger.Debug("fetched",
		zap.String("url", request.URL),
		zap.String("final_url", result.URL),
		zap.Int("bytes", len(result.Body)),
		zap.Duration("duration", result.Duration),
	)
	return result, nil
}

// buildCollector clones the base collector and binds it to ctx so that
// cancellation aborts the in-flight request.
func (f *Fetcher) buildCollector(ctx context.Context) *colly.Collector {
	collector := f.baseCollector.Clone()
	collector.Context = ctx
	return collector
}

func (f *Fetcher) configureCollectorHooks(
	hooks collectorHooks,
	request logo.FetchRequest,
	start time.Time,
	result *logo.FetchResponse,
	fetchErr *error,
) {
	hooks.OnRequest(func(r *colly.Request) {
		f.copyHeaders(request, r)
	})

	hooks.OnResponse(func(r *colly.Response) {
		var headers http.Header
		if r.Headers != nil {
			headers = r.Headers.Clone()
		}
		*result = logo.FetchResponse{
			URL:        r.Request.URL.String(),
			StatusCode: r.StatusCode,
			Headers:    headers,
			Body:       append([]byte(nil), r.Body...),
			Duration:   time.Since(start),
		}
	})

	hooks.OnError(func(r *colly.Response, err error) {
		fe := &logo.FetchError{URL: request.URL, Err: err}
		if r != nil && r.StatusCode != 0 {
			fe.StatusCode = r.StatusCode
			fe.Err = fmt.Errorf("%w: %v", logo.ErrUnexpectedStatus, err)
			result.StatusCode = r.StatusCode
		}
		if errors.Is(err, errRedirectLimit) {
			fe.Err = fmt.Errorf("%w: %v", logo.ErrTooManyRedirects, err)
		}
		*fetchErr = fe
	})
}

// runCollector visits the URL on its own goroutine. Hook state lives on that
// goroutine and is handed back over a channel, so an early return on ctx
// cancellation never races with late callbacks.
func (f *Fetcher) runCollector(
	ctx context.Context,
	collector *colly.Collector,
	request logo.FetchRequest,
	start time.Time,
) (logo.FetchResponse, error) {
	type outcome struct {
		result logo.FetchResponse
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		var (
			result   logo.FetchResponse
			fetchErr error
		)
		f.configureCollectorHooks(collector, request, start, &result, &fetchErr)
		visitErr := collector.Visit(request.URL)
		switch {
		case fetchErr != nil:
			done <- outcome{result: result, err: fetchErr}
		case visitErr != nil:
			done <- outcome{result: result, err: &logo.FetchError{
				URL: request.URL, Err: fmt.Errorf("colly visit failed: %w", visitErr),
			}}
		default:
			done <- outcome{result: result}
		}
	}()

	select {
	case <-ctx.Done():
		return logo.FetchResponse{}, &logo.FetchError{
			URL: request.URL, Err: fmt.Errorf("colly fetch canceled: %w", ctx.Err()),
		}
	case out := <-done:
		return out.result, out.err
	}
}

func (f *Fetcher) copyHeaders(request logo.FetchRequest, r *colly.Request) {
	if request.Headers == nil {
		return
	}
	for key, values := range request.Headers {
		r.Headers.Del(key)
		for _, v := range values {
			r.Headers.Add(key, v)
		}
	}
}

var errRedirectLimit = errors.New("redirect limit reached")

func redirectLimit(maxRedirects int) func(*http.Request, []*http.Request) error {
	return func(_ *http.Request, via []*http.Request) error {
		if len(via) >= maxRedirects {
			return fmt.Errorf("%w: stopped after %d redirects", errRedirectLimit, maxRedirects)
		}
		return nil
	}
}

func newHTTPTransport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   15 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   8,
		IdleConnTimeout:       90 * time.Second,
		ForceAttemptHTTP2:     true,
	}
}
