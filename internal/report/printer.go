// Package report renders analysis results as plain text for the CLI.
package report

import (
	"fmt"
	"io"

	"github.com/guttosm/bpipulse/internal/service"
)

// Write prints rep to w. When rep carries points they are listed first,
// one "date: price" line each, in series order.
func Write(w io.Writer, rep *service.Report) error {
	ew := &errWriter{w: w}

	if len(rep.Points) > 0 {
		for _, p := range rep.Points {
			ew.printf("%s: %.4f\n", p.Date, p.Price)
		}
		ew.printf("\n")
	}

	s := rep.Stats
	ew.printf("Stats for %d data points from %s", s.DataSize, rep.Source)
	if !rep.Range.IsZero() {
		ew.printf(" (%s to %s)", rep.Range.Start, rep.Range.End)
	}
	ew.printf("\n")
	ew.printf("Highest price was %.4f on %s\n", s.Highest.Price, s.Highest.Date)
	ew.printf("Lowest price was %.4f on %s\n", s.Lowest.Price, s.Lowest.Date)
	ew.printf("Mean price was %.4f\n", s.MeanPrice)
	ew.printf("Median price was %.4f\n", s.MedianPrice)
	ew.printf("Standard deviation of %.4f\n", s.StandardDeviation)

	return ew.err
}

// errWriter keeps the first write error and skips later writes.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) printf(format string, args ...any) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}
