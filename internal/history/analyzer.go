package history

import (
	"bytes"
	"cmp"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/guttosm/bpipulse/internal/domain/models"
)

// bpiField is the payload key holding the date -> price mapping.
const bpiField = "bpi"

// Analyzer owns one price series: Parse replaces it, Analyze and DataPoints
// read it. The zero value is ready to use and holds no data.
type Analyzer struct {
	mu     sync.RWMutex
	points []models.DataPoint
}

// NewAnalyzer returns an empty Analyzer.
func NewAnalyzer() *Analyzer {
	return &Analyzer{}
}

// Parse validates raw and, on success, replaces the held series with its
// "bpi" entries sorted by price descending.
//
// Expected shape (other top-level fields are ignored):
//
//	{"bpi": {"2018-01-01": 13412.44, "2018-01-02": 14740.7563}}
//
// Errors: ErrMalformedInput, ErrMissingField, ErrInvalidEntry, ErrEmptyDataSet.
// On error the previously held series is left untouched. raw is not retained.
func (a *Analyzer) Parse(raw json.RawMessage) error {
	points, err := decodeBPI(raw)
	if err != nil {
		return err
	}

	a.mu.Lock()
	a.points = points
	a.mu.Unlock()
	return nil
}

// DataPoints returns a read-only view of the current series.
func (a *Analyzer) DataPoints() Series {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return Series{points: a.points}
}

// Analyze computes statistics over the current series.
// It returns ErrEmptyDataSet before any successful Parse and
// ErrInsufficientSampleSize when the series holds a single point.
func (a *Analyzer) Analyze() (models.Stats, error) {
	a.mu.RLock()
	points := a.points
	a.mu.RUnlock()
	return computeStats(points)
}

// decodeBPI builds a fresh, sorted point slice from raw. Keys are visited in
// ascending date order so that the stable price sort is deterministic for
// equal prices.
func decodeBPI(raw json.RawMessage) ([]models.DataPoint, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, ErrMalformedInput
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}

	rawBPI, ok := doc[bpiField]
	if !ok || bytes.Equal(bytes.TrimSpace(rawBPI), []byte("null")) {
		return nil, ErrMissingField
	}

	var entries map[string]json.RawMessage
	if err := json.Unmarshal(rawBPI, &entries); err != nil {
		return nil, fmt.Errorf("%w: bpi: %v", ErrMalformedInput, err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: bpi has no entries", ErrEmptyDataSet)
	}

	points := make([]models.DataPoint, 0, len(entries))
	for _, date := range slices.Sorted(maps.Keys(entries)) {
		price, err := parsePrice(entries[date])
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidEntry, date, err)
		}
		points = append(points, models.DataPoint{Date: date, Price: price})
	}

	slices.SortStableFunc(points, func(x, y models.DataPoint) int {
		return cmp.Compare(y.Price, x.Price)
	})
	return points, nil
}

// parsePrice accepts JSON numbers only. Strings (even numeric ones), booleans,
// null, arrays and objects are rejected.
func parsePrice(v json.RawMessage) (float64, error) {
	v = bytes.TrimSpace(v)
	if len(v) == 0 || (v[0] != '-' && (v[0] < '0' || v[0] > '9')) {
		return 0, fmt.Errorf("not a number: %s", v)
	}
	var price float64
	if err := json.Unmarshal(v, &price); err != nil {
		return 0, err
	}
	return price, nil
}
