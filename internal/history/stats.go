package history

import (
	"fmt"
	"math"

	"github.com/guttosm/bpipulse/internal/domain/models"
)

// computeStats derives Stats from points in their current order.
//
// Highest/Lowest keep the first max/min encountered. MedianPrice is the
// price at index (n+1)/2 of the price-descending series, not the textbook
// median: reports produced by earlier releases rely on that value.
func computeStats(points []models.DataPoint) (models.Stats, error) {
	n := len(points)
	switch n {
	case 0:
		return models.Stats{}, ErrEmptyDataSet
	case 1:
		return models.Stats{}, fmt.Errorf("%w: need at least 2 points, got 1", ErrInsufficientSampleSize)
	}

	highest, lowest := points[0], points[0]
	var sum float64
	for _, p := range points {
		if p.Price > highest.Price {
			highest = p
		}
		if p.Price < lowest.Price {
			lowest = p
		}
		sum += p.Price
	}
	mean := sum / float64(n)

	var sumSq float64
	for _, p := range points {
		d := p.Price - mean
		sumSq += d * d
	}
	stdDev := math.Sqrt(sumSq / float64(n-1))

	if !isFinite(mean) || !isFinite(stdDev) {
		return models.Stats{}, fmt.Errorf("%w: prices overflow float64", ErrInvalidEntry)
	}

	return models.Stats{
		DataSize:          n,
		Highest:           highest,
		Lowest:            lowest,
		MeanPrice:         mean,
		MedianPrice:       points[(n+1)/2].Price,
		StandardDeviation: stdDev,
	}, nil
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
