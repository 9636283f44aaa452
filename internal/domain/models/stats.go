package models

// Stats holds the descriptive statistics computed over one price series.
//
// Fields:
//   - DataSize: number of points analyzed (always >= 2 for a valid Stats).
//   - Highest / Lowest: first point carrying the max / min price in series order.
//   - MeanPrice: arithmetic mean of all prices.
//   - MedianPrice: price at index (DataSize+1)/2 of the price-descending series.
//   - StandardDeviation: sample standard deviation (divides by DataSize-1).
//
// Stats is a value object: it is rebuilt on every analysis and never cached.
//
// swagger:model Stats
type Stats struct {
	DataSize          int       `json:"data_size" example:"20"`
	Highest           DataPoint `json:"highest"`
	Lowest            DataPoint `json:"lowest"`
	MeanPrice         float64   `json:"mean_price" example:"13975.165275"`
	MedianPrice       float64   `json:"median_price" example:"13812.715"`
	StandardDeviation float64   `json:"standard_deviation" example:"1745.37"`
}
