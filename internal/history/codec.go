package history

import (
	"encoding/json"

	"github.com/guttosm/bpipulse/internal/domain/models"
)

// EncodeBPI serializes points into the wire shape accepted by Parse:
//
//	{"bpi": {"<date>": <price>, ...}}
//
// Keys come out in ascending date order. When a date repeats, the last
// occurrence wins.
func EncodeBPI(points []models.DataPoint) ([]byte, error) {
	bpi := make(map[string]float64, len(points))
	for _, p := range points {
		bpi[p.Date] = p.Price
	}
	return json.Marshal(map[string]map[string]float64{bpiField: bpi})
}
