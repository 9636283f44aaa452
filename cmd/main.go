package main

//
//  @title           bpipulse API
//  @version         1.0
//  @description     Bitcoin price index history statistics service.
//  @termsOfService  https://github.com/guttosm/bpipulse
//  @contact.name    API Support
//  @contact.url     https://github.com/guttosm/bpipulse
//  @contact.email   support@example.com
//  @license.name    MIT
//  @license.url     https://opensource.org/licenses/MIT
//  @host            localhost:8080
//  @BasePath        /
//  @schemes         http
//
//  @tag.name        stats
//  @tag.description Price history statistics
//
//  @tag.name        health
//  @tag.description Liveness and readiness probes

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/guttosm/bpipulse/config"
	_ "github.com/guttosm/bpipulse/docs" // swagger docs
	"github.com/guttosm/bpipulse/internal/app"
	"github.com/guttosm/bpipulse/internal/ingestion"
	"github.com/guttosm/bpipulse/internal/logger"
	"github.com/guttosm/bpipulse/internal/report"
	"github.com/guttosm/bpipulse/internal/service"
	"github.com/guttosm/bpipulse/internal/source"
	"github.com/guttosm/bpipulse/internal/storage"
)

// startServer initializes and starts the HTTP server in a separate goroutine.
func startServer(router http.Handler, port string) *http.Server {
	server := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.L().Info().Str("port", port).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.L().Fatal().Err(err).Msg("server failed to start")
		}
	}()

	return server
}

// gracefulShutdown blocks until SIGINT or SIGTERM, then shuts the server
// down within 10 seconds and runs cleanup.
func gracefulShutdown(ctx context.Context, server *http.Server, cleanup func()) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	logger.L().Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.L().Fatal().Err(err).Msg("server forced to shutdown")
	}

	cleanup()
	logger.L().Info().Msg("server exited gracefully")
}

// analyzeOptions carries the analyze-mode flags.
type analyzeOptions struct {
	file    string
	source  string
	start   string
	end     string
	verbose bool
}

// postgresOpener is swapped in tests.
var postgresOpener = app.InitPostgres

// buildSource picks the source for one analyze run and returns a cleanup func.
//
// --file wins over everything; otherwise --source (or SOURCE_KIND) selects
// http or postgres.
func buildSource(opts analyzeOptions, cfg config.Config) (service.SourceFactory, func(), error) {
	noop := func() {}

	kind := opts.source
	if opts.file != "" {
		kind = "file"
	}
	if kind == "" {
		kind = cfg.Source.Kind
	}

	switch kind {
	case "file":
		if opts.file == "" {
			return nil, noop, errors.New("--source=file requires --file")
		}
		src := source.NewFile(nil, opts.file)
		return func(service.Range) source.Source { return src }, noop, nil
	case config.SourcePostgres:
		db, err := postgresOpener(cfg)
		if err != nil {
			return nil, noop, fmt.Errorf("db connect: %w", err)
		}
		f, err := app.NewSourceFactory(config.SourceConfig{Kind: kind}, storage.NewPricesRepository(db))
		return f, func() { _ = db.Close() }, err
	default:
		sc := cfg.Source
		sc.Kind = kind
		f, err := app.NewSourceFactory(sc, nil)
		return f, noop, err
	}
}

// runAnalyze fetches, parses and analyzes one history and prints the result to out.
func runAnalyze(ctx context.Context, opts analyzeOptions, cfg config.Config, out io.Writer) error {
	rng := service.Range{Start: opts.start, End: opts.end}
	if err := rng.Validate(); err != nil {
		return err
	}

	factory, cleanup, err := buildSource(opts, cfg)
	defer cleanup()
	if err != nil {
		return err
	}

	rep, err := service.NewStatsService(factory).GetStats(ctx, rng, opts.verbose)
	if err != nil {
		return err
	}
	return report.Write(out, rep)
}

// main is the entry point of the bpipulse application.
//
// Modes (selected via --mode flag):
//   - analyze: Prints stats for a history read from --file, the HTTP API or Postgres.
//   - ingest:  Imports every *.json bpi document in --dir into Postgres.
//   - api:     Starts the REST API.
func main() {
	ctx := context.Background()

	config.LoadConfig()
	logger.Init()

	mode := flag.String("mode", "analyze", "Mode: analyze, ingest or api")
	file := flag.String("file", "", "JSON file containing history data to analyze")
	src := flag.String("source", "", "Source for analyze mode: http, postgres or file (default SOURCE_KIND)")
	start := flag.String("start", "", "Range start (YYYY-MM-DD); requires --end")
	end := flag.String("end", "", "Range end (YYYY-MM-DD); requires --start")
	verbose := flag.Bool("verbose", false, "List every data point before the stats")
	dir := flag.String("dir", "./data/input", "Directory with *.json bpi documents (ingest mode)")
	parallel := flag.Int("parallel", 0, "How many files to ingest concurrently (0=auto up to CPU, max 8)")
	force := flag.Bool("force", false, "Re-import files already ingested (replaces their points)")
	port := flag.String("port", config.AppConfig.Server.Port, "Port for API mode")
	flag.Parse()

	switch *mode {
	case "analyze":
		sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
		err := runAnalyze(sigCtx, analyzeOptions{
			file:    *file,
			source:  *src,
			start:   *start,
			end:     *end,
			verbose: *verbose,
		}, config.AppConfig, os.Stdout)
		stop()
		if err != nil {
			logger.L().Error().Err(err).Msg("analyze failed")
			fmt.Fprintln(os.Stderr, "error:", err)
			os.Exit(1)
		}

	case "ingest":
		logger.L().Info().Msg("running ingestion")

		db, err := app.InitPostgres(config.AppConfig)
		if err != nil {
			logger.L().Fatal().Err(err).Msg("db connect error")
		}
		defer func() { _ = db.Close() }()

		if err := ingestion.ProcessDirectory(ctx, *dir, db, *parallel, *force); err != nil {
			logger.L().Fatal().Err(err).Msg("ingestion failed")
		}
		logger.L().Info().Msg("ingestion completed successfully")

	case "api":
		logger.L().Info().Msg("starting API server")

		router, cleanup, err := app.InitializeApp()
		if err != nil {
			logger.L().Fatal().Err(err).Msg("app init error")
		}

		server := startServer(router, *port)
		gracefulShutdown(ctx, server, cleanup)

	default:
		logger.L().Fatal().Str("mode", *mode).Msg("unknown mode")
	}
}
