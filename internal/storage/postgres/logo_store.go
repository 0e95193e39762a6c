// Package postgres persists logo records in Postgres.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JakeFAU/logo-discovery/internal/enrich"
	"github.com/JakeFAU/logo-discovery/internal/logo"
)

var validTableName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

const defaultTable = "company_logos"

// LogoStoreConfig controls the Postgres connection pool used for logo rows.
type LogoStoreConfig struct {
	DSN             string
	Table           string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
}

type pool interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	QueryRow(context.Context, string, ...any) pgx.Row
	Ping(context.Context) error
	Close()
}

// LogoStore writes one row per company symbol, replacing earlier discoveries.
type LogoStore struct {
	pool  pool
	table string
}

// NewLogoStore creates a Postgres-backed LogoStore using the provided config.
func NewLogoStore(ctx context.Context, cfg LogoStoreConfig) (*LogoStore, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("database.dsn is required")
	}
	table, err := tableName(cfg.Table)
	if err != nil {
		return nil, err
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	p, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return &LogoStore{pool: p, table: table}, nil
}

// NewLogoStoreWithPool constructs a store from an existing pool (primarily for testing).
func NewLogoStoreWithPool(p pool, table string) (*LogoStore, error) {
	if p == nil {
		return nil, fmt.Errorf("pool is required")
	}
	name, err := tableName(table)
	if err != nil {
		return nil, err
	}
	return &LogoStore{pool: p, table: name}, nil
}

func tableName(table string) (string, error) {
	if table == "" {
		table = defaultTable
	}
	if !validTableName.MatchString(table) {
		return "", fmt.Errorf("invalid table name %q", table)
	}
	return table, nil
}

// Close releases the underlying pool resources.
func (s *LogoStore) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

// Ping checks connectivity for readiness probes.
func (s *LogoStore) Ping(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return fmt.Errorf("ping postgres: %w", err)
	}
	return nil
}

// SaveLogo upserts the record for its symbol.
func (s *LogoStore) SaveLogo(ctx context.Context, r enrich.Record) error {
	if r.ID == "" || r.Symbol == "" {
		return fmt.Errorf("record id and symbol are required")
	}
	query := fmt.Sprintf(`
INSERT INTO %s (
	id,
	symbol,
	company_name,
	website,
	source_url,
	format,
	source,
	content_type,
	width,
	height,
	quality_score,
	content_hash,
	blob_uri,
	byte_size,
	discovered_at
) VALUES (
	$1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15
)
ON CONFLICT (symbol) DO UPDATE SET
	id = EXCLUDED.id,
	company_name = EXCLUDED.company_name,
	website = EXCLUDED.website,
	source_url = EXCLUDED.source_url,
	format = EXCLUDED.format,
	source = EXCLUDED.source,
	content_type = EXCLUDED.content_type,
	width = EXCLUDED.width,
	height = EXCLUDED.height,
	quality_score = EXCLUDED.quality_score,
	content_hash = EXCLUDED.content_hash,
	blob_uri = EXCLUDED.blob_uri,
	byte_size = EXCLUDED.byte_size,
	discovered_at = EXCLUDED.discovered_at`, s.table)

	args := []any{
		r.ID,
		r.Symbol,
		r.CompanyName,
		r.Website,
		r.SourceURL,
		string(r.Format),
		string(r.Source),
		r.ContentType,
		r.Width,
		r.Height,
		r.QualityScore,
		r.ContentHash,
		r.BlobURI,
		r.ByteSize,
		r.DiscoveredAt,
	}
	if _, err := s.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert logo: %w", err)
	}
	return nil
}

// GetLogo loads the record for symbol or returns enrich.ErrNotFound.
func (s *LogoStore) GetLogo(ctx context.Context, symbol string) (enrich.Record, error) {
	query := fmt.Sprintf(`
SELECT id, symbol, company_name, website, source_url, format, source, content_type,
	width, height, quality_score, content_hash, blob_uri, byte_size, discovered_at
FROM %s WHERE symbol = $1`, s.table)

	var (
		r              enrich.Record
		format, source string
	)
	err := s.pool.QueryRow(ctx, query, symbol).Scan(
		&r.ID,
		&r.Symbol,
		&r.CompanyName,
		&r.Website,
		&r.SourceURL,
		&format,
		&source,
		&r.ContentType,
		&r.Width,
		&r.Height,
		&r.QualityScore,
		&r.ContentHash,
		&r.BlobURI,
		&r.ByteSize,
		&r.DiscoveredAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return enrich.Record{}, enrich.ErrNotFound
	}
	if err != nil {
		return enrich.Record{}, fmt.Errorf("select logo: %w", err)
	}
	r.Format = logo.Format(format)
	r.Source = logo.Source(source)
	return r, nil
}
