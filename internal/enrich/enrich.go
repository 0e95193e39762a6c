// Package enrich attaches a discovered logo to a company: it runs discovery,
// stores the bytes under a content hash, records the result and announces it.
package enrich

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/JakeFAU/logo-discovery/internal/logo"
	"github.com/JakeFAU/logo-discovery/internal/metrics"
	"github.com/JakeFAU/logo-discovery/internal/publisher"
	"github.com/JakeFAU/logo-discovery/internal/storage"
)

const tracerName = "github.com/JakeFAU/logo-discovery/internal/enrich"

// ErrInvalidRequest reports a request missing its symbol or website.
var ErrInvalidRequest = errors.New("invalid enrichment request")

// ErrNotFound is returned by RecordStore.GetLogo when no record exists.
var ErrNotFound = errors.New("logo record not found")

// Discoverer finds a validated logo for a website.
type Discoverer interface {
	Discover(ctx context.Context, website, companyName string) (*logo.DiscoveredLogo, error)
}

// RecordStore persists logo records keyed by symbol.
type RecordStore interface {
	SaveLogo(ctx context.Context, record Record) error
	GetLogo(ctx context.Context, symbol string) (Record, error)
}

// Hasher names stored objects by content.
type Hasher interface {
	Hash(data []byte) (string, error)
}

// IDGenerator issues record IDs.
type IDGenerator interface {
	NewID() (string, error)
}

// Clock supplies record timestamps.
type Clock interface {
	Now() time.Time
}

// Request identifies the company to enrich.
type Request struct {
	Symbol      string `json:"symbol"`
	CompanyName string `json:"company_name"`
	Website     string `json:"website"`
}

// Record is the persisted outcome of an enrichment.
type Record struct {
	ID           string      `json:"id"`
	Symbol       string      `json:"symbol"`
	CompanyName  string      `json:"company_name"`
	Website      string      `json:"website"`
	SourceURL    string      `json:"source_url"`
	Format       logo.Format `json:"format"`
	Source       logo.Source `json:"source"`
	ContentType  string      `json:"content_type"`
	Width        int         `json:"width,omitempty"`
	Height       int         `json:"height,omitempty"`
	QualityScore float64     `json:"quality_score"`
	ContentHash  string      `json:"content_hash"`
	BlobURI      string      `json:"blob_uri"`
	ByteSize     int         `json:"byte_size"`
	DiscoveredAt time.Time   `json:"discovered_at"`
}

// Result is returned to callers of EnrichCompany.
type Result struct {
	Record Record
	Logo   *logo.DiscoveredLogo
}

// Config controls object naming.
type Config struct {
	Prefix string
}

// Deps bundles the collaborators of a Service. Records may be nil, in which
// case records are not persisted.
type Deps struct {
	Discoverer Discoverer
	Blobs      storage.BlobStore
	Records    RecordStore
	Publisher  publisher.Publisher
	Hasher     Hasher
	IDs        IDGenerator
	Clock      Clock
	Logger     *zap.Logger
}

// Service runs enrichment requests.
type Service struct {
	cfg  Config
	deps Deps
}

// NewService validates deps and builds a Service.
func NewService(cfg Config, deps Deps) (*Service, error) {
	switch {
	case deps.Discoverer == nil:
		return nil, fmt.Errorf("discoverer is required")
	case deps.Blobs == nil:
		return nil, fmt.Errorf("blob store is required")
	case deps.Hasher == nil:
		return nil, fmt.Errorf("hasher is required")
	case deps.IDs == nil:
		return nil, fmt.Errorf("id generator is required")
	case deps.Clock == nil:
		return nil, fmt.Errorf("clock is required")
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &Service{cfg: cfg, deps: deps}, nil
}

// EnrichCompany discovers, stores, records and publishes a company's logo.
// Storage and record failures are returned; publish failures are logged.
func (s *Service) EnrichCompany(ctx context.Context, req Request) (_ *Result, err error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "enrich.EnrichCompany", trace.WithAttributes(
		attribute.String("enrich.symbol", req.Symbol),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	req.Symbol = strings.ToUpper(strings.TrimSpace(req.Symbol))
	req.Website = strings.TrimSpace(req.Website)
	req.CompanyName = strings.TrimSpace(req.CompanyName)
	if req.Symbol == "" {
		return nil, fmt.Errorf("%w: symbol is required", ErrInvalidRequest)
	}
	if req.Website == "" {
		return nil, fmt.Errorf("%w: website is required", ErrInvalidRequest)
	}
	logger := s.deps.Logger.With(zap.String("symbol", req.Symbol), zap.String("website", req.Website))

	discovered, err := s.deps.Discoverer.Discover(ctx, req.Website, req.CompanyName)
	if err != nil {
		metrics.ObserveEnrichment(outcome(err))
		return nil, fmt.Errorf("discover logo for %s: %w", req.Symbol, err)
	}

	data := discovered.Data()
	hash, err := s.deps.Hasher.Hash(data)
	if err != nil {
		metrics.ObserveEnrichment("error")
		return nil, fmt.Errorf("hash logo: %w", err)
	}
	path := storage.ObjectPath(s.cfg.Prefix, req.Symbol, hash, discovered.Format.Extension())
	uri, err := s.deps.Blobs.PutObject(ctx, path, discovered.ContentType, bytes.NewReader(data))
	if err != nil {
		metrics.ObserveEnrichment("error")
		return nil, fmt.Errorf("store logo: %w", err)
	}

	id, err := s.deps.IDs.NewID()
	if err != nil {
		metrics.ObserveEnrichment("error")
		return nil, fmt.Errorf("record id: %w", err)
	}
	record := Record{
		ID:           id,
		Symbol:       req.Symbol,
		CompanyName:  req.CompanyName,
		Website:      req.Website,
		SourceURL:    discovered.SourceURL,
		Format:       discovered.Format,
		Source:       discovered.Source,
		ContentType:  discovered.ContentType,
		Width:        discovered.Width,
		Height:       discovered.Height,
		QualityScore: discovered.QualityScore,
		ContentHash:  hash,
		BlobURI:      uri,
		ByteSize:     len(data),
		DiscoveredAt: s.deps.Clock.Now(),
	}
	if s.deps.Records != nil {
		if err := s.deps.Records.SaveLogo(ctx, record); err != nil {
			metrics.ObserveEnrichment("error")
			return nil, fmt.Errorf("save logo record: %w", err)
		}
	}

	if s.deps.Publisher != nil {
		msgID, err := s.deps.Publisher.Publish(ctx, publisher.EventLogoDiscovered, record)
		if err != nil {
			logger.Warn("publish logo event failed", zap.Error(err))
		} else {
			logger.Debug("logo event published", zap.String("message_id", msgID))
		}
	}

	metrics.ObserveEnrichment("stored")
	logger.Info("company logo stored",
		zap.String("blob_uri", uri),
		zap.String("format", string(record.Format)),
		zap.Float64("score", record.QualityScore),
	)
	return &Result{Record: record, Logo: discovered}, nil
}

// Lookup returns the stored record for symbol.
func (s *Service) Lookup(ctx context.Context, symbol string) (Record, error) {
	if s.deps.Records == nil {
		return Record{}, ErrNotFound
	}
	rec, err := s.deps.Records.GetLogo(ctx, strings.ToUpper(strings.TrimSpace(symbol)))
	if err != nil {
		return Record{}, fmt.Errorf("lookup %s: %w", symbol, err)
	}
	return rec, nil
}

func outcome(err error) string {
	switch {
	case errors.Is(err, logo.ErrInvalidWebsite):
		return "invalid_website"
	case errors.Is(err, logo.ErrNoCandidates):
		return "no_candidates"
	case errors.Is(err, logo.ErrNoValidLogo):
		return "no_valid_logo"
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "error"
	}
}
