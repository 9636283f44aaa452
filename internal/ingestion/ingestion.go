package ingestion

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"runtime"
	"slices"
	"time"

	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"github.com/guttosm/bpipulse/internal/logger"
	"github.com/guttosm/bpipulse/internal/storage"
)

const (
	filePattern      = "*.json"
	defaultBatchSize = 5000
	maxParallelFiles = 8
)

// repoCtor is an indirection for creating the repository; tests can override this.
var repoCtor = func(db *sql.DB) storage.PricesRepository {
	return storage.NewPricesRepository(db)
}

// fsys is the filesystem ingestion reads from; tests swap in afero.NewMemMapFs().
var fsys afero.Fs = afero.NewOsFs()

// ProcessDirectory imports every bpi document (*.json) found in dir.
//
//   - dir:      directory containing the documents.
//   - db:       open *sql.DB (PostgreSQL).
//   - parallel: files processed at once; <= 0 means min(8, NumCPU).
//   - force:    re-import files already recorded in ingestion_log, replacing their points.
//
// Each file is validated with the history parser before anything is written,
// so a malformed document never reaches the database and a forced re-import
// of one leaves the stored points untouched. The first failing file cancels
// the rest and its error is returned.
func ProcessDirectory(ctx context.Context, dir string, db *sql.DB, parallel int, force bool) error {
	repo := repoCtor(db)
	log := logger.Component("ingestion")

	ok, err := afero.DirExists(fsys, dir)
	if err != nil {
		return fmt.Errorf("stat %s: %w", dir, err)
	}
	if !ok {
		return fmt.Errorf("directory not found: %s", dir)
	}

	files, err := afero.Glob(fsys, filepath.Join(dir, filePattern))
	if err != nil {
		return fmt.Errorf("list %s: %w", dir, err)
	}
	if len(files) == 0 {
		return fmt.Errorf("no %s files in %s", filePattern, dir)
	}
	slices.Sort(files)

	maxParallel := maxParallelFiles
	if parallel > 0 {
		maxParallel = min(parallel, maxParallelFiles)
	} else if c := runtime.NumCPU(); c < maxParallel {
		maxParallel = c
	}

	log.Info().Int("files", len(files)).Str("dir", dir).Int("max_parallel", maxParallel).Bool("force", force).Msg("ingestion start")

	// errgroup cancels siblings on first error.
	g, gctx := errgroup.WithContext(ctx)
	sem := make(chan struct{}, maxParallel)

	for idx, f := range files {
		select {
		case sem <- struct{}{}:
		case <-gctx.Done():
			return waitOr(g, gctx.Err())
		}

		g.Go(func() error {
			defer func() { <-sem }()
			start := time.Now()
			base := filepath.Base(f)
			flog := log.With().Int("idx", idx+1).Int("total", len(files)).Str("file", base).Logger()
			flog.Info().Msg("file start")

			exists, err := repo.HasIngestionForFile(gctx, base)
			if err != nil {
				flog.Error().Err(err).Msg("check ingestion log failed")
				return fmt.Errorf("file %s: check ingestion log: %w", f, err)
			}
			if exists && !force {
				flog.Info().Bool("skipped", true).Msg("already ingested")
				return nil
			}
			points, err := loadPoints(f)
			if err != nil {
				flog.Error().Dur("elapsed", time.Since(start)).Err(err).Msg("file failed")
				return fmt.Errorf("file %s: %w", f, err)
			}

			var total int
			if exists {
				// Forced re-import swaps the old rows in one transaction.
				if err := repo.ReplacePointsByFile(gctx, base, points); err != nil {
					flog.Error().Err(err).Msg("replace existing failed")
					return fmt.Errorf("file %s: replace existing: %w", f, err)
				}
				total = len(points)
			} else {
				total, err = persistPoints(gctx, base, points, repo, defaultBatchSize)
				if err != nil {
					flog.Error().Dur("elapsed", time.Since(start)).Err(err).Msg("file failed")
					return fmt.Errorf("file %s: %w", f, err)
				}
			}
			if err := repo.UpsertIngestionLog(gctx, base, total); err != nil {
				flog.Error().Err(err).Msg("update ingestion log failed")
				return fmt.Errorf("file %s: upsert ingestion log: %w", f, err)
			}
			flog.Info().Int("rows", total).Dur("elapsed", time.Since(start)).Msg("file done")
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info().Int("files", len(files)).Msg("ingestion done")
	return nil
}

// waitOr drains g and prefers its error over fallback.
func waitOr(g *errgroup.Group, fallback error) error {
	if err := g.Wait(); err != nil {
		return err
	}
	return fallback
}
