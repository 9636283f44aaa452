package storage

import (
	"context"
	"database/sql"
	"fmt"

	pq "github.com/lib/pq"

	"github.com/guttosm/bpipulse/internal/domain/models"
)

// PricesRepository defines contract for DB operations on stored price points.
//
// Dates are stored as the opaque "YYYY-MM-DD" labels found in the payloads;
// range filters compare them as text, which orders correctly for that layout.
type PricesRepository interface {
	InsertPointsBatch(ctx context.Context, sourceFile string, points []models.DataPoint) error
	GetPoints(ctx context.Context, start, end string) ([]models.DataPoint, error)
	HasIngestionForFile(ctx context.Context, filename string) (bool, error)
	UpsertIngestionLog(ctx context.Context, filename string, rowCount int) error
	DeletePointsByFile(ctx context.Context, filename string) error
	ReplacePointsByFile(ctx context.Context, sourceFile string, points []models.DataPoint) error
}

type pricesRepository struct {
	db *sql.DB
}

// NewPricesRepository returns a PricesRepository backed by db.
func NewPricesRepository(db *sql.DB) PricesRepository {
	return &pricesRepository{db: db}
}

// InsertPointsBatch inserts points into price_points in a single transaction
// using COPY.
func (r *pricesRepository) InsertPointsBatch(ctx context.Context, sourceFile string, points []models.DataPoint) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := copyPoints(ctx, tx, sourceFile, points); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// ReplacePointsByFile swaps every point imported from sourceFile for points
// in one transaction. On error the previous points stay in place.
func (r *pricesRepository) ReplacePointsByFile(ctx context.Context, sourceFile string, points []models.DataPoint) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM price_points WHERE source_file = $1`, sourceFile); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := copyPoints(ctx, tx, sourceFile, points); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// copyPoints streams points into price_points with COPY inside tx. The caller
// owns commit and rollback.
func copyPoints(ctx context.Context, tx *sql.Tx, sourceFile string, points []models.DataPoint) error {
	// Small optimization for bulk load
	if _, err := tx.ExecContext(ctx, `SET LOCAL synchronous_commit = OFF`); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, pq.CopyIn("price_points", "source_file", "price_date", "price"))
	if err != nil {
		return err
	}

	for _, p := range points {
		if _, err := stmt.ExecContext(ctx, sourceFile, p.Date, p.Price); err != nil {
			_ = stmt.Close()
			return err
		}
	}

	if _, err := stmt.ExecContext(ctx); err != nil {
		_ = stmt.Close()
		return err
	}
	return stmt.Close()
}

// HasIngestionForFile checks if a file was already recorded in ingestion_log.
func (r *pricesRepository) HasIngestionForFile(ctx context.Context, filename string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM ingestion_log WHERE filename = $1)`, filename).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

// UpsertIngestionLog records (or updates) an ingestion entry for a file.
func (r *pricesRepository) UpsertIngestionLog(ctx context.Context, filename string, rowCount int) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO ingestion_log (filename, row_count)
		VALUES ($1, $2)
		ON CONFLICT (filename)
		DO UPDATE SET row_count = EXCLUDED.row_count,
					  ingested_at = NOW()
	`, filename, rowCount)
	return err
}

// DeletePointsByFile removes every point previously imported from filename.
func (r *pricesRepository) DeletePointsByFile(ctx context.Context, filename string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM price_points WHERE source_file = $1`, filename)
	return err
}

// GetPoints returns one point per date within [start, end], in ascending
// date order. Empty bounds are open. When several files carried the same
// date, the most recently imported price wins.
func (r *pricesRepository) GetPoints(ctx context.Context, start, end string) ([]models.DataPoint, error) {
	conditions := "TRUE"
	var args []interface{}
	if start != "" {
		args = append(args, start)
		conditions += fmt.Sprintf(" AND price_date >= $%d", len(args))
	}
	if end != "" {
		args = append(args, end)
		conditions += fmt.Sprintf(" AND price_date <= $%d", len(args))
	}

	query := fmt.Sprintf(`
		SELECT DISTINCT ON (price_date) price_date, price
		FROM price_points
		WHERE %s
		ORDER BY price_date, id DESC
	`, conditions)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var points []models.DataPoint
	for rows.Next() {
		var p models.DataPoint
		if err := rows.Scan(&p.Date, &p.Price); err != nil {
			return nil, err
		}
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return points, nil
}
