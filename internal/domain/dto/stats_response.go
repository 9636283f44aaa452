package dto

import "github.com/guttosm/bpipulse/internal/domain/models"

// StatsResponse represents the JSON structure returned by the
// GET /api/v1/stats endpoint.
//
// Fields match the API contract and may differ from internal domain models.
type StatsResponse struct {
	Source            string             `json:"source" example:"http"`
	Start             string             `json:"start,omitempty" example:"2018-01-01"`
	End               string             `json:"end,omitempty" example:"2018-01-20"`
	DataSize          int                `json:"data_size" example:"20"`
	Highest           models.DataPoint   `json:"highest"`
	Lowest            models.DataPoint   `json:"lowest"`
	MeanPrice         float64            `json:"mean_price" example:"13975.165275"`
	MedianPrice       float64            `json:"median_price" example:"13812.715"`
	StandardDeviation float64            `json:"standard_deviation" example:"1745.37"`
	Points            []models.DataPoint `json:"points,omitempty"` // Only when verbose=true, price descending
}
