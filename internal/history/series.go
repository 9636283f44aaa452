package history

import (
	"iter"
	"slices"

	"github.com/guttosm/bpipulse/internal/domain/models"
)

// Series is a read-only view over a parsed price series, ordered by price
// descending. The backing slice is never mutated after a parse, so a Series
// obtained before a later Parse keeps describing the older data set.
type Series struct {
	points []models.DataPoint
}

// Len returns the number of points in the series.
func (s Series) Len() int { return len(s.points) }

// At returns the i-th point. It panics if i is out of range, like a slice index.
func (s Series) At(i int) models.DataPoint { return s.points[i] }

// All iterates over the points in series order.
func (s Series) All() iter.Seq2[int, models.DataPoint] {
	return func(yield func(int, models.DataPoint) bool) {
		for i, p := range s.points {
			if !yield(i, p) {
				return
			}
		}
	}
}

// Clone returns a copy of the points that the caller is free to modify.
func (s Series) Clone() []models.DataPoint { return slices.Clone(s.points) }
