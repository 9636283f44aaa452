package source

import (
	"context"
	"encoding/json"

	"github.com/guttosm/bpipulse/internal/history"
	"github.com/guttosm/bpipulse/internal/logger"
	"github.com/guttosm/bpipulse/internal/storage"
)

// Postgres serves stored price points as a bpi document.
type Postgres struct {
	repo       storage.PricesRepository
	start, end string
}

// NewPostgres returns a source over repo limited to [start, end]; empty bounds are open.
func NewPostgres(repo storage.PricesRepository, start, end string) *Postgres {
	return &Postgres{repo: repo, start: start, end: end}
}

// Name identifies the source in logs.
func (p *Postgres) Name() string { return "postgres" }

// Get rebuilds a bpi document from the stored points in the configured range.
func (p *Postgres) Get(ctx context.Context) (json.RawMessage, bool) {
	log := logger.Component("source").With().
		Str("source", p.Name()).
		Str("start", p.start).
		Str("end", p.end).
		Logger()

	points, err := p.repo.GetPoints(ctx, p.start, p.end)
	if err != nil {
		log.Error().Err(err).Msg("query stored points")
		return nil, false
	}
	if len(points) == 0 {
		log.Warn().Msg("no stored points in range")
		return nil, false
	}

	b, err := history.EncodeBPI(points)
	if err != nil {
		log.Error().Err(err).Msg("encode stored points")
		return nil, false
	}
	return json.RawMessage(b), true
}
