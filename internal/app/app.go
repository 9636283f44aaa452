package app

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/bpipulse/config"
	"github.com/guttosm/bpipulse/internal/api"
	"github.com/guttosm/bpipulse/internal/httputil"
	"github.com/guttosm/bpipulse/internal/logger"
	"github.com/guttosm/bpipulse/internal/service"
	"github.com/guttosm/bpipulse/internal/source"
	"github.com/guttosm/bpipulse/internal/storage"
)

// InitializeApp sets up all application dependencies and returns
// a fully configured Gin router, a cleanup function for graceful shutdown,
// and any error encountered during initialization.
//
// Responsibilities:
//   - Picks the price source from config.AppConfig.Source.Kind.
//   - Connects to PostgreSQL only when the postgres source is selected.
//   - Wires service, handler and router, then the health probes.
//   - Provides a cleanup function to close resources (e.g., DB connection).
func InitializeApp() (*gin.Engine, func(), error) {
	cfg := config.AppConfig

	var (
		db   *sql.DB
		repo storage.PricesRepository
		ping func(ctx context.Context) error
	)
	if cfg.Source.Kind == config.SourcePostgres {
		var err error
		db, err = postgresOpener(cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize postgres: %w", err)
		}
		repo = storage.NewPricesRepository(db)
		ping = db.PingContext
	}

	factory, err := NewSourceFactory(cfg.Source, repo)
	if err != nil {
		if db != nil {
			_ = db.Close()
		}
		return nil, nil, err
	}

	svc := service.NewStatsService(factory)
	handler := api.NewHandler(svc)
	router := api.NewRouter(handler)
	api.NewHealthHandler(ping).Register(router)

	logger.Component("app").Info().Str("source_kind", cfg.Source.Kind).Msg("application initialized")

	cleanup := func() {
		if db != nil {
			_ = db.Close()
		}
	}

	return router, cleanup, nil
}

// NewSourceFactory returns a per-range source builder for cfg.Kind.
// repo is required for the postgres kind and ignored otherwise.
func NewSourceFactory(cfg config.SourceConfig, repo storage.PricesRepository) (service.SourceFactory, error) {
	switch cfg.Kind {
	case config.SourceHTTP, "":
		retry := httputil.DefaultRetry
		if cfg.Retries > 0 {
			retry.MaxAttempts = cfg.Retries
		}
		base := source.HTTPConfig{
			BaseURL: cfg.URL,
			Timeout: cfg.Timeout,
			Retry:   retry,
		}
		return func(r service.Range) source.Source {
			c := base
			c.Start, c.End = r.Start, r.End
			return source.NewHTTP(c)
		}, nil
	case config.SourcePostgres:
		if repo == nil {
			return nil, fmt.Errorf("source kind %q needs a database", cfg.Kind)
		}
		return func(r service.Range) source.Source {
			return source.NewPostgres(repo, r.Start, r.End)
		}, nil
	default:
		return nil, fmt.Errorf("unknown source kind %q", cfg.Kind)
	}
}
