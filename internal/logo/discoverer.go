package logo

import (
	"context"
	"fmt"
	"net/url"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/JakeFAU/logo-discovery/internal/metrics"
)

// Discoverer runs logo discovery for one website at a time. A single
// Discoverer may serve concurrent calls; each call owns its crawl state.
type Discoverer struct {
	cfg        Config
	fetcher    Fetcher
	documents  *DocumentFetcher
	extractors []Extractor
	logger     *zap.Logger
}

// NewDiscoverer wires a Discoverer over the shared fetcher and HTML parser.
func NewDiscoverer(cfg Config, fetcher Fetcher, parser Parser, logger *zap.Logger) *Discoverer {
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg = cfg.withDefaults()
	return &Discoverer{
		cfg:        cfg,
		fetcher:    fetcher,
		documents:  NewDocumentFetcher(fetcher, parser, cfg),
		extractors: DefaultExtractors(),
		logger:     logger,
	}
}

// Discover crawls website, ranks every candidate and returns the first one
// that downloads and validates.
func (d *Discoverer) Discover(ctx context.Context, website, companyName string) (_ *DiscoveredLogo, err error) {
	ctx, span := tracer().Start(ctx, "logo.Discover", trace.WithAttributes(
		attribute.String("logo.website", website),
	))
	defer func() { endSpan(span, err) }()

	candidates, err := d.Crawl(ctx, website, companyName)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		metrics.ObserveDiscovery("no_candidates")
		return nil, fmt.Errorf("%s: %w", website, ErrNoCandidates)
	}
	result, err := d.Download(ctx, candidates)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("%s: %w", website, ctxErr)
		}
		metrics.ObserveDiscovery("no_valid_logo")
		return nil, fmt.Errorf("%s: %w", website, err)
	}
	metrics.ObserveDiscovery("found")
	span.SetAttributes(
		attribute.String("logo.source_url", result.SourceURL),
		attribute.Float64("logo.score", result.QualityScore),
	)
	d.logger.Info("logo discovered",
		zap.String("website", website),
		zap.String("source_url", result.SourceURL),
		zap.String("format", string(result.Format)),
		zap.String("source", string(result.Source)),
		zap.Float64("score", result.QualityScore),
		zap.Int("candidates", len(candidates)),
	)
	return result, nil
}

// Crawl visits the homepage, then up to MaxPages brand or media pages, and
// returns every candidate found, scored and sorted by descending score.
// When ctx ends mid-crawl the candidates gathered so far are returned along
// with the context error.
func (d *Discoverer) Crawl(ctx context.Context, website, companyName string) (_ []Candidate, err error) {
	ctx, span := tracer().Start(ctx, "logo.Crawl")
	defer func() { endSpan(span, err) }()

	base, err := NormalizeWebsite(website)
	if err != nil {
		return nil, err
	}
	state := newCrawlState(companyName)
	root := base

	homepage := base.String()
	state.markVisited(homepage)
	page, err := d.documents.FetchDocument(ctx, homepage)
	switch {
	case err == nil:
		state.markVisited(page.BaseURL.String())
		root = &url.URL{Scheme: page.BaseURL.Scheme, Host: page.BaseURL.Host}
		state.collect(d.extract(page))
		for _, link := range HarvestLinks(page.Doc, page.BaseURL) {
			if u, perr := url.Parse(link); perr == nil && (sameSite(base, u) || sameSite(root, u)) {
				state.enqueue(link)
			}
		}
		d.logger.Debug("homepage processed",
			zap.String("url", homepage),
			zap.Int("candidates", len(state.candidates)),
			zap.Int("harvested", len(state.pending)),
		)
	case ctx.Err() != nil:
		return state.ranked(), fmt.Errorf("crawl %s: %w", homepage, ctx.Err())
	default:
		d.logger.Debug("homepage fetch failed", zap.String("url", homepage), zap.Error(err))
	}

	for _, p := range d.cfg.CommonPaths {
		state.enqueue(root.ResolveReference(&url.URL{Path: p}).String())
	}

	visits := 0
	for _, link := range state.pending {
		if visits >= d.cfg.MaxPages {
			break
		}
		if state.isVisited(link) {
			continue
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return state.ranked(), fmt.Errorf("crawl %s: %w", homepage, ctxErr)
		}
		visits++
		state.markVisited(link)
		page, err := d.documents.FetchDocument(ctx, link)
		if err != nil {
			d.logger.Debug("page fetch failed", zap.String("url", link), zap.Error(err))
			continue
		}
		state.markVisited(page.BaseURL.String())
		found := state.collect(d.extract(page))
		d.logger.Debug("page processed", zap.String("url", link), zap.Int("candidates", found))
	}

	span.SetAttributes(
		attribute.Int("logo.pages_visited", visits+1),
		attribute.Int("logo.candidates", len(state.candidates)),
	)
	d.logger.Debug("crawl finished",
		zap.String("website", homepage),
		zap.Int("pages_visited", visits+1),
		zap.Int("candidates", len(state.candidates)),
	)
	return state.ranked(), nil
}

func (d *Discoverer) extract(page Page) []Candidate {
	var out []Candidate
	for _, extractor := range d.extractors {
		out = append(out, extractor(page.Doc, page.BaseURL)...)
	}
	return out
}

type candidateKey struct {
	url    string
	source Source
}

// crawlState is owned by a single Crawl call.
type crawlState struct {
	companyName string
	visited     map[string]struct{}
	queued      map[string]struct{}
	pending     []string
	candidates  []Candidate
	seen        map[candidateKey]struct{}
}

func newCrawlState(companyName string) *crawlState {
	return &crawlState{
		companyName: companyName,
		visited:     make(map[string]struct{}),
		queued:      make(map[string]struct{}),
		seen:        make(map[candidateKey]struct{}),
	}
}

func (s *crawlState) markVisited(raw string) {
	s.visited[PageKey(raw)] = struct{}{}
}

func (s *crawlState) isVisited(raw string) bool {
	_, ok := s.visited[PageKey(raw)]
	return ok
}

func (s *crawlState) enqueue(raw string) {
	key := PageKey(raw)
	if _, ok := s.queued[key]; ok {
		return
	}
	s.queued[key] = struct{}{}
	s.pending = append(s.pending, raw)
}

// collect scores and appends new candidates, dropping exact (URL, source)
// repeats such as a header logo present on every page. It returns the
// number of candidates added.
func (s *crawlState) collect(found []Candidate) int {
	added := 0
	for _, c := range found {
		key := candidateKey{url: c.URL, source: c.Source}
		if _, dup := s.seen[key]; dup {
			continue
		}
		s.seen[key] = struct{}{}
		c.Score = Score(c, s.companyName)
		s.candidates = append(s.candidates, c)
		added++
	}
	return added
}

func (s *crawlState) ranked() []Candidate {
	out := make([]Candidate, len(s.candidates))
	copy(out, s.candidates)
	SortByScore(out)
	return out
}
