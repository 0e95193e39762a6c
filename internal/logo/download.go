package logo

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/JakeFAU/logo-discovery/internal/metrics"
)

const imageAccept = "image/avif,image/webp,image/apng,image/svg+xml,image/*,*/*;q=0.8"

var (
	errNotAnImage  = errors.New("response is not an image")
	errHTMLPayload = errors.New("response body is an html document")
	errNoSVGRoot   = errors.New("svg body has no <svg> element")
)

// Download walks candidates in order and returns the first one whose bytes
// fetch and validate. data: URIs and URLs already attempted are skipped.
func (d *Discoverer) Download(ctx context.Context, ranked []Candidate) (*DiscoveredLogo, error) {
	if len(ranked) == 0 {
		return nil, ErrNoCandidates
	}
	attempted := make(map[string]struct{}, len(ranked))
	for _, c := range ranked {
		if c.IsDataURI() {
			continue
		}
		if _, dup := attempted[c.URL]; dup {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("download interrupted: %w", err)
		}
		attempted[c.URL] = struct{}{}
		result, err := d.downloadCandidate(ctx, c)
		if err != nil {
			metrics.ObserveCandidateDownload("rejected")
			d.logger.Debug("candidate rejected",
				zap.String("url", c.URL),
				zap.Float64("score", c.Score),
				zap.Error(err),
			)
			continue
		}
		metrics.ObserveCandidateDownload("accepted")
		return result, nil
	}
	return nil, fmt.Errorf("%w: %d candidates attempted", ErrNoValidLogo, len(attempted))
}

func (d *Discoverer) downloadCandidate(ctx context.Context, c Candidate) (_ *DiscoveredLogo, err error) {
	ctx, span := tracer().Start(ctx, "logo.downloadCandidate", trace.WithAttributes(
		attribute.String("logo.url", c.URL),
		attribute.String("logo.source", string(c.Source)),
		attribute.Float64("logo.score", c.Score),
	))
	defer func() { endSpan(span, err) }()

	ctx, cancel := context.WithTimeout(ctx, d.cfg.DownloadTimeout)
	defer cancel()

	resp, err := d.fetcher.Fetch(ctx, FetchRequest{
		URL:     c.URL,
		Headers: d.documents.headers(imageAccept),
	})
	if err != nil {
		return nil, asFetchError(c.URL, err)
	}
	if len(resp.Body) == 0 {
		return nil, &FetchError{URL: c.URL, StatusCode: resp.StatusCode, Err: ErrEmptyBody}
	}
	return validateImage(c, resp)
}

// validateImage resolves the final format (declared, then Content-Type,
// then sniffed) and checks that the body plausibly is that image.
func validateImage(c Candidate, resp FetchResponse) (*DiscoveredLogo, error) {
	contentType := resp.Headers.Get("Content-Type")
	sniffed := mimetype.Detect(resp.Body)

	format := c.Format
	if !format.Known() {
		format = FormatFromContentType(contentType)
	}
	if !format.Known() {
		format = FormatFromContentType(sniffed.String())
	}
	lowerCT := strings.ToLower(contentType)
	if !format.Known() && !strings.HasPrefix(lowerCT, "image/") && !strings.Contains(lowerCT, "svg") {
		return nil, fmt.Errorf("%w: content-type %q", errNotAnImage, contentType)
	}

	if format == FormatSVG {
		if !bytes.Contains(bytes.ToLower(resp.Body), []byte("<svg")) {
			return nil, errNoSVGRoot
		}
	} else if sniffed.Is("text/html") {
		return nil, errHTMLPayload
	}

	result := &DiscoveredLogo{
		SourceURL:    c.URL,
		Format:       format,
		Source:       c.Source,
		Width:        c.Width,
		Height:       c.Height,
		QualityScore: c.Score,
		ContentType:  resolvedContentType(contentType, format),
		IsSVG:        format == FormatSVG,
	}
	body := append([]byte(nil), resp.Body...)
	if result.IsSVG {
		result.SVGData = body
	} else {
		result.ImageData = body
	}
	return result, nil
}

func resolvedContentType(header string, format Format) string {
	if format.Known() {
		return format.ContentType()
	}
	if ct := strings.TrimSpace(header); ct != "" {
		return ct
	}
	return FormatUnknown.ContentType()
}
