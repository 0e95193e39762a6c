package logo

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
)

const documentAccept = "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8"

// DocumentFetcher retrieves a page with browser-like headers and parses it.
type DocumentFetcher struct {
	fetcher Fetcher
	parser  Parser
	cfg     Config
}

// NewDocumentFetcher builds a DocumentFetcher over the shared transport.
func NewDocumentFetcher(fetcher Fetcher, parser Parser, cfg Config) *DocumentFetcher {
	return &DocumentFetcher{fetcher: fetcher, parser: parser, cfg: cfg.withDefaults()}
}

// FetchDocument performs one GET for rawURL and returns the parsed page.
// Every failure is a *FetchError.
func (f *DocumentFetcher) FetchDocument(ctx context.Context, rawURL string) (Page, error) {
	ctx, cancel := context.WithTimeout(ctx, f.cfg.PageTimeout)
	defer cancel()

	resp, err := f.fetcher.Fetch(ctx, FetchRequest{
		URL:     rawURL,
		Headers: f.headers(documentAccept),
	})
	if err != nil {
		return Page{}, asFetchError(rawURL, err)
	}
	if len(resp.Body) == 0 {
		return Page{}, &FetchError{URL: rawURL, StatusCode: resp.StatusCode, Err: ErrEmptyBody}
	}
	finalURL := resp.URL
	if finalURL == "" {
		finalURL = rawURL
	}
	base, err := url.Parse(finalURL)
	if err != nil {
		return Page{}, &FetchError{URL: rawURL, Err: fmt.Errorf("parse final url: %w", err)}
	}
	doc, err := f.parser.Parse(resp.Body)
	if err != nil {
		return Page{}, &FetchError{URL: rawURL, StatusCode: resp.StatusCode, Err: fmt.Errorf("parse html: %w", err)}
	}
	return Page{URL: rawURL, BaseURL: base, Doc: doc}, nil
}

func (f *DocumentFetcher) headers(accept string) http.Header {
	h := http.Header{}
	h.Set("User-Agent", f.cfg.UserAgent)
	h.Set("Accept", accept)
	h.Set("Accept-Language", f.cfg.AcceptLanguage)
	return h
}

func asFetchError(rawURL string, err error) *FetchError {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe
	}
	return &FetchError{URL: rawURL, Err: err}
}
