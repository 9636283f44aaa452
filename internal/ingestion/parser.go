package ingestion

import (
	"cmp"
	"context"
	"fmt"
	"path/filepath"
	"slices"

	"github.com/spf13/afero"

	"github.com/guttosm/bpipulse/internal/domain/models"
	"github.com/guttosm/bpipulse/internal/history"
	"github.com/guttosm/bpipulse/internal/storage"
)

// parseAndPersistFile loads one bpi document, validates it with the history
// parser and writes its points in batches of batch rows, date ascending.
//
// It fails on:
//   - unreadable files
//   - any document the parser rejects (missing bpi, non-numeric price, empty set, ...)
//   - repository errors; points already written for the file are removed again
//
// Returns the number of points written.
func parseAndPersistFile(ctx context.Context, path string, repo storage.PricesRepository, batch int) (int, error) {
	points, err := loadPoints(path)
	if err != nil {
		return 0, err
	}
	return persistPoints(ctx, filepath.Base(path), points, repo, batch)
}

// loadPoints reads and validates one bpi document without touching storage.
// Points come back sorted by date.
func loadPoints(path string) ([]models.DataPoint, error) {
	raw, err := afero.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}

	a := history.NewAnalyzer()
	if err := a.Parse(raw); err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}

	points := a.DataPoints().Clone()
	slices.SortFunc(points, func(x, y models.DataPoint) int { return cmp.Compare(x.Date, y.Date) })
	return points, nil
}

// persistPoints writes points for base in chunks of batch rows.
func persistPoints(ctx context.Context, base string, points []models.DataPoint, repo storage.PricesRepository, batch int) (int, error) {
	if batch <= 0 {
		batch = defaultBatchSize
	}
	written := 0
	for chunk := range slices.Chunk(points, batch) {
		if err := ctx.Err(); err != nil {
			return 0, rollbackFile(ctx, repo, base, written, err)
		}
		if err := repo.InsertPointsBatch(ctx, base, chunk); err != nil {
			return 0, rollbackFile(ctx, repo, base, written, fmt.Errorf("insert batch at row %d: %w", written, err))
		}
		written += len(chunk)
	}

	return written, nil
}

// rollbackFile removes partially written points. ctx is usually already
// canceled here, so the delete runs detached from its cancellation.
func rollbackFile(ctx context.Context, repo storage.PricesRepository, base string, written int, cause error) error {
	if written == 0 {
		return cause
	}
	if err := repo.DeletePointsByFile(context.WithoutCancel(ctx), base); err != nil {
		return fmt.Errorf("%w (cleanup failed: %v)", cause, err)
	}
	return cause
}
