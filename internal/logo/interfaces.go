package logo

import (
	"context"
	"net/http"
	"time"
)

// Fetcher performs a single HTTP GET. Implementations must be safe for
// concurrent use and must honor ctx cancellation.
type Fetcher interface {
	Fetch(ctx context.Context, request FetchRequest) (FetchResponse, error)
}

// FetchRequest describes one outbound GET.
type FetchRequest struct {
	URL     string
	Headers http.Header
}

// FetchResponse is a successful (HTTP 200, non-empty) response.
type FetchResponse struct {
	URL        string
	StatusCode int
	Headers    http.Header
	Body       []byte
	Duration   time.Duration
}

// Parser turns an HTML body into a queryable Document.
type Parser interface {
	Parse(body []byte) (Document, error)
}

// Document is a parsed HTML tree that can be queried with CSS selectors.
type Document interface {
	Find(selector string) []Element
}

// Element is a single node matched by a Document query.
type Element interface {
	// Attr returns the attribute value and whether it was present.
	Attr(name string) (string, bool)
	// Text returns the trimmed visible text of the element.
	Text() string
	// HasAncestor reports whether any ancestor matches selector.
	HasAncestor(selector string) bool
}
