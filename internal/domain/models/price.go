package models

// DataPoint is a single (date, price) observation of the price index.
//
// Date is kept as the opaque "YYYY-MM-DD" label found in the payload; no
// calendar logic is applied to it.
//
// swagger:model DataPoint
type DataPoint struct {
	Date  string  `json:"date" example:"2018-01-06"`
	Price float64 `json:"price" example:"17135.8363"`
}
