package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/logo-discovery/internal/enrich"
	"github.com/JakeFAU/logo-discovery/internal/logo"
)

var columns = []string{
	"id", "symbol", "company_name", "website", "source_url", "format", "source", "content_type",
	"width", "height", "quality_score", "content_hash", "blob_uri", "byte_size", "discovered_at",
}

func sampleRecord() enrich.Record {
	return enrich.Record{
		ID:           "0190c3c4-1111-7000-8000-000000000001",
		Symbol:       "ACME",
		CompanyName:  "Acme",
		Website:      "acme.com",
		SourceURL:    "https://acme.com/logo.svg",
		Format:       logo.FormatSVG,
		Source:       logo.SourceImgSVGHeader,
		ContentType:  "image/svg+xml",
		QualityScore: 155,
		ContentHash:  "abc123",
		BlobURI:      "gs://bucket/logos/ACME/abc123.svg",
		ByteSize:     42,
		DiscoveredAt: time.Unix(1700000000, 0).UTC(),
	}
}

func TestSaveLogoUpsertsRow(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewLogoStoreWithPool(mock, "company_logos")
	require.NoError(t, err)

	rec := sampleRecord()
	mock.ExpectExec("INSERT INTO company_logos").
		WithArgs(
			rec.ID,
			rec.Symbol,
			rec.CompanyName,
			rec.Website,
			rec.SourceURL,
			"svg",
			"img_svg_header",
			rec.ContentType,
			rec.Width,
			rec.Height,
			rec.QualityScore,
			rec.ContentHash,
			rec.BlobURI,
			rec.ByteSize,
			rec.DiscoveredAt,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, store.SaveLogo(context.Background(), rec))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveLogoWrapsExecError(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewLogoStoreWithPool(mock, "")
	require.NoError(t, err)

	mock.ExpectExec("INSERT INTO company_logos").WillReturnError(errors.New("connection reset"))
	err = store.SaveLogo(context.Background(), sampleRecord())
	require.ErrorContains(t, err, "upsert logo")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveLogoRequiresIdentity(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewLogoStoreWithPool(mock, "")
	require.NoError(t, err)
	assert.Error(t, store.SaveLogo(context.Background(), enrich.Record{Symbol: "ACME"}))
}

func TestGetLogo(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewLogoStoreWithPool(mock, "company_logos")
	require.NoError(t, err)

	rec := sampleRecord()
	rows := pgxmock.NewRows(columns).AddRow(
		rec.ID, rec.Symbol, rec.CompanyName, rec.Website, rec.SourceURL, "svg", "img_svg_header",
		rec.ContentType, rec.Width, rec.Height, rec.QualityScore, rec.ContentHash, rec.BlobURI,
		rec.ByteSize, rec.DiscoveredAt,
	)
	mock.ExpectQuery("SELECT (.+) FROM company_logos WHERE symbol").WithArgs("ACME").WillReturnRows(rows)

	got, err := store.GetLogo(context.Background(), "ACME")
	require.NoError(t, err)
	assert.Equal(t, rec, got)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetLogoNotFound(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewLogoStoreWithPool(mock, "company_logos")
	require.NoError(t, err)

	mock.ExpectQuery("SELECT (.+) FROM company_logos").WithArgs("NOPE").WillReturnError(pgx.ErrNoRows)
	_, err = store.GetLogo(context.Background(), "NOPE")
	assert.ErrorIs(t, err, enrich.ErrNotFound)
}

func TestPing(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewLogoStoreWithPool(mock, "")
	require.NoError(t, err)

	mock.ExpectPing()
	require.NoError(t, store.Ping(context.Background()))
	mock.ExpectPing().WillReturnError(errors.New("down"))
	require.Error(t, store.Ping(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNewLogoStoreValidation(t *testing.T) {
	t.Parallel()

	_, err := NewLogoStore(context.Background(), LogoStoreConfig{})
	assert.Error(t, err)
	_, err = NewLogoStore(context.Background(), LogoStoreConfig{DSN: "postgres://x", Table: "bad-name;"})
	assert.Error(t, err)
	_, err = NewLogoStoreWithPool(nil, "")
	assert.Error(t, err)
}
