// Package server provides the core application server and dependency injection.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/JakeFAU/logo-discovery/internal/api"
	"github.com/JakeFAU/logo-discovery/internal/clock/system"
	"github.com/JakeFAU/logo-discovery/internal/config"
	goquerydoc "github.com/JakeFAU/logo-discovery/internal/document/goquery"
	"github.com/JakeFAU/logo-discovery/internal/enrich"
	collyfetcher "github.com/JakeFAU/logo-discovery/internal/fetcher/colly"
	"github.com/JakeFAU/logo-discovery/internal/hash/sha256"
	"github.com/JakeFAU/logo-discovery/internal/id/uuid"
	"github.com/JakeFAU/logo-discovery/internal/logging"
	"github.com/JakeFAU/logo-discovery/internal/logo"
	"github.com/JakeFAU/logo-discovery/internal/metrics"
	"github.com/JakeFAU/logo-discovery/internal/policy/ratelimit"
	"github.com/JakeFAU/logo-discovery/internal/publisher"
	memorypublisher "github.com/JakeFAU/logo-discovery/internal/publisher/memory"
	gcppublisher "github.com/JakeFAU/logo-discovery/internal/publisher/pubsub"
	"github.com/JakeFAU/logo-discovery/internal/storage"
	pgstore "github.com/JakeFAU/logo-discovery/internal/storage/postgres"
	"github.com/JakeFAU/logo-discovery/internal/telemetry"
)

// App contains the application's dependencies.
type App struct {
	cfg        config.Config
	logger     *zap.Logger
	discoverer *logo.Discoverer
	enricher   *enrich.Service
	apiServer  *api.Server
	logoStore  *pgstore.LogoStore
	closers    []namedCloser
}

type namedCloser struct {
	name  string
	close func() error
}

// Logger returns the application logger.
func (a *App) Logger() *zap.Logger {
	return a.logger
}

// Discoverer returns the logo discovery engine.
func (a *App) Discoverer() *logo.Discoverer {
	return a.discoverer
}

// Handler returns the HTTP handler of the API server.
func (a *App) Handler() http.Handler {
	return a.apiServer.Handler()
}

// Run serves HTTP until the context is canceled or a termination signal
// arrives, then shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", a.cfg.Server.Port),
		Handler:           a.apiServer.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.logger.Info("http server started", zap.Int("port", a.cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		a.logger.Info("shutdown initiated")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			a.logger.Error("server shutdown error", zap.Error(err))
		}
		return nil
	})

	err := g.Wait()
	a.Close()
	return err
}

// Close releases every client the application owns.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		c := a.closers[i]
		if err := c.close(); err != nil {
			a.logger.Warn("close failed", zap.String("component", c.name), zap.Error(err))
		}
	}
	a.closers = nil
	if a.logoStore != nil {
		a.logoStore.Close()
		a.logoStore = nil
	}
	_ = a.logger.Sync()
}

// Build creates the application's dependencies.
func Build(ctx context.Context, cfg config.Config) (*App, error) {
	logger, err := logging.New(cfg.Logging.Development, cfg.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("logger init failed: %w", err)
	}
	zap.ReplaceGlobals(logger)
	return BuildWithLogger(ctx, cfg, logger)
}

// BuildWithLogger is Build with a caller-supplied logger.
func BuildWithLogger(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	metrics.Init()
	app := &App{cfg: cfg, logger: logger}
	if err := setupTracing(ctx, app); err != nil {
		return nil, err
	}
	logger.Info("building application dependencies",
		zap.Int("server_port", cfg.Server.Port),
		zap.String("storage_backend", cfg.Storage.Backend),
		zap.Int("max_pages", cfg.Discovery.MaxPages),
	)

	app.discoverer = NewDiscoverer(cfg, logger)

	blobs, closeBlobs, err := storage.NewBlobStore(ctx, cfg.Storage)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("storage init failed: %w", err)
	}
	app.closers = append(app.closers, namedCloser{name: "storage", close: closeBlobs})

	if err := setupDatabase(ctx, app); err != nil {
		app.Close()
		return nil, err
	}

	pub, err := setupPublisher(ctx, app)
	if err != nil {
		app.Close()
		return nil, err
	}

	deps := enrich.Deps{
		Discoverer: app.discoverer,
		Blobs:      blobs,
		Publisher:  pub,
		Hasher:     sha256.New(),
		IDs:        uuid.New(),
		Clock:      system.New(),
		Logger:     logger.Named("enrich"),
	}
	readiness := map[string]api.ReadinessCheck{}
	if app.logoStore != nil {
		deps.Records = app.logoStore
		readiness["postgres"] = app.logoStore.Ping
	}
	app.enricher, err = enrich.NewService(enrich.Config{Prefix: cfg.Storage.Prefix}, deps)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("enrich service init failed: %w", err)
	}

	app.apiServer = api.NewServer(api.Deps{
		Discoverer: app.discoverer,
		Enricher:   app.enricher,
		IDs:        uuid.New(),
		Readiness:  readiness,
	}, cfg, logger.Named("api"))

	return app, nil
}

// NewDiscoverer builds the discovery engine over the colly fetcher and the
// goquery parser.
func NewDiscoverer(cfg config.Config, logger *zap.Logger) *logo.Discoverer {
	fetcher := collyfetcher.New(collyfetcher.Config{
		UserAgent:     cfg.Discovery.UserAgent,
		RespectRobots: cfg.Discovery.RespectRobots,
		Timeout:       cfg.FetchTimeout(),
		MaxBodyBytes:  cfg.HTTP.MaxBodyBytes,
		MaxRedirects:  cfg.HTTP.MaxRedirects,
		Limiter: ratelimit.New(ratelimit.Config{
			RPS:   cfg.HTTP.RateLimitRPS,
			Burst: cfg.HTTP.RateLimitBurst,
		}),
	}, logger.Named("fetcher"))
	logger.Info("using colly fetcher",
		zap.String("user_agent", cfg.Discovery.UserAgent),
		zap.Bool("respect_robots", cfg.Discovery.RespectRobots),
		zap.Float64("rate_limit_rps", cfg.HTTP.RateLimitRPS),
	)
	return logo.NewDiscoverer(cfg.DiscoveryOptions(), fetcher, goquerydoc.NewParser(), logger.Named("discoverer"))
}

func setupTracing(ctx context.Context, app *App) error {
	if !app.cfg.Telemetry.Enabled {
		return nil
	}
	shutdown, err := telemetry.InitTracerProvider(ctx, telemetry.Config{
		ServiceName: app.cfg.Telemetry.ServiceName,
		ProjectID:   app.cfg.Telemetry.ProjectID,
		SampleRatio: app.cfg.Telemetry.SampleRatio,
	})
	if err != nil {
		return fmt.Errorf("tracer init failed: %w", err)
	}
	app.closers = append(app.closers, namedCloser{name: "tracer", close: func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return shutdown(ctx)
	}})
	app.logger.Info("tracing enabled",
		zap.String("project", app.cfg.Telemetry.ProjectID),
		zap.Float64("sample_ratio", app.cfg.Telemetry.SampleRatio),
	)
	return nil
}

func setupDatabase(ctx context.Context, app *App) error {
	if app.cfg.Database.DSN == "" {
		app.logger.Warn("no DSN specified for database, logo records will not be persisted")
		return nil
	}
	store, err := pgstore.NewLogoStore(ctx, pgstore.LogoStoreConfig{
		DSN:             app.cfg.Database.DSN,
		Table:           app.cfg.Database.Table,
		MaxConns:        app.cfg.Database.MaxConns,
		MinConns:        app.cfg.Database.MinConns,
		MaxConnLifetime: app.cfg.Database.MaxConnLifetime,
	})
	if err != nil {
		return fmt.Errorf("logo store init failed: %w", err)
	}
	app.logoStore = store
	app.logger.Info("logo store initialized", zap.String("table", app.cfg.Database.Table))
	return nil
}

func setupPublisher(ctx context.Context, app *App) (publisher.Publisher, error) {
	if app.cfg.PubSub.TopicName == "" || app.cfg.PubSub.ProjectID == "" {
		app.logger.Warn("no Pub/Sub topic configured, using in-memory publisher")
		return memorypublisher.New(), nil
	}
	pub, closer, err := gcppublisher.Dial(ctx, app.cfg.PubSub.ProjectID, app.cfg.PubSub.TopicName)
	if err != nil {
		return nil, fmt.Errorf("pubsub publisher init failed: %w", err)
	}
	app.closers = append(app.closers, namedCloser{name: "pubsub", close: closer})
	app.logger.Info("Pub/Sub publisher initialized",
		zap.String("project", app.cfg.PubSub.ProjectID),
		zap.String("topic", app.cfg.PubSub.TopicName),
	)
	return pub, nil
}
