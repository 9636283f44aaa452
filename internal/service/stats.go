package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/guttosm/bpipulse/internal/domain/models"
	"github.com/guttosm/bpipulse/internal/history"
	"github.com/guttosm/bpipulse/internal/logger"
	"github.com/guttosm/bpipulse/internal/source"
)

// DateLayout is the date format accepted in a Range.
const DateLayout = "2006-01-02"

var (
	// ErrNoData is returned when the source yields no document.
	ErrNoData = errors.New("source returned no data")
	// ErrInvalidRange is returned by Range.Validate.
	ErrInvalidRange = errors.New("invalid date range")
)

// Range is an optional inclusive date window. Both bounds are set or neither.
type Range struct {
	Start string
	End   string
}

// IsZero reports whether no bound is set.
func (r Range) IsZero() bool { return r.Start == "" && r.End == "" }

// Validate checks both-or-neither, the YYYY-MM-DD layout and Start <= End.
func (r Range) Validate() error {
	if r.IsZero() {
		return nil
	}
	if r.Start == "" || r.End == "" {
		return fmt.Errorf("%w: start and end must be given together", ErrInvalidRange)
	}
	start, err := time.Parse(DateLayout, r.Start)
	if err != nil {
		return fmt.Errorf("%w: start %q is not YYYY-MM-DD", ErrInvalidRange, r.Start)
	}
	end, err := time.Parse(DateLayout, r.End)
	if err != nil {
		return fmt.Errorf("%w: end %q is not YYYY-MM-DD", ErrInvalidRange, r.End)
	}
	if start.After(end) {
		return fmt.Errorf("%w: start %s is after end %s", ErrInvalidRange, r.Start, r.End)
	}
	return nil
}

// Report is the outcome of one analysis run.
type Report struct {
	Source string
	Range  Range
	Stats  models.Stats
	// Points is the parsed series (price descending); only filled when verbose.
	Points []models.DataPoint
}

// SourceFactory builds the source for one request range.
type SourceFactory func(r Range) source.Source

// StatsService runs fetch, parse and analyze for a range.
type StatsService interface {
	GetStats(ctx context.Context, r Range, verbose bool) (*Report, error)
}

type statsService struct {
	newSource SourceFactory
}

// NewStatsService returns a StatsService that opens a fresh source per request.
func NewStatsService(newSource SourceFactory) StatsService {
	return &statsService{newSource: newSource}
}

// GetStats builds a fresh analyzer per call, so concurrent requests never
// share a series.
//
// Errors: ErrInvalidRange, ErrNoData, or one of the history sentinels
// (ErrMalformedInput, ErrMissingField, ErrInvalidEntry, ErrEmptyDataSet,
// ErrInsufficientSampleSize) wrapped with context.
func (s *statsService) GetStats(ctx context.Context, r Range, verbose bool) (*Report, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}

	src := s.newSource(r)
	log := logger.Component("service").With().Str("source", src.Name()).Logger()

	raw, ok := src.Get(ctx)
	if !ok {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrNoData, err)
		}
		return nil, ErrNoData
	}

	a := history.NewAnalyzer()
	if err := a.Parse(raw); err != nil {
		log.Warn().Err(err).Msg("parse failed")
		return nil, fmt.Errorf("parse %s: %w", src.Name(), err)
	}

	stats, err := a.Analyze()
	if err != nil {
		log.Warn().Err(err).Int("points", a.DataPoints().Len()).Msg("analyze failed")
		return nil, fmt.Errorf("analyze %s: %w", src.Name(), err)
	}

	rep := &Report{Source: src.Name(), Range: r, Stats: stats}
	if verbose {
		rep.Points = a.DataPoints().Clone()
	}
	log.Debug().Int("points", stats.DataSize).Msg("analysis done")
	return rep, nil
}

// IsAnalysisError reports whether err came from parsing or analyzing the
// document rather than from fetching it.
func IsAnalysisError(err error) bool {
	for _, target := range []error{
		history.ErrMalformedInput,
		history.ErrMissingField,
		history.ErrInvalidEntry,
		history.ErrEmptyDataSet,
		history.ErrInsufficientSampleSize,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
