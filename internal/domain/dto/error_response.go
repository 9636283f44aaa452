package dto

import "time"

// ErrorResponse is the JSON body returned by every failing endpoint.
//
// It also implements the error interface so middlewares can pass it around
// through gin's error list.
type ErrorResponse struct {
	Message      string    `json:"message" example:"invalid date range"`
	ErrorDetails string    `json:"error,omitempty" example:"start must not be after end"`
	Timestamp    time.Time `json:"timestamp" example:"2025-09-20T12:00:00Z"`
}

// Error returns "message" or "message: details" when details are present.
func (e ErrorResponse) Error() string {
	if e.ErrorDetails == "" {
		return e.Message
	}
	return e.Message + ": " + e.ErrorDetails
}

// NewErrorResponse builds an ErrorResponse stamped with the current UTC time.
// err may be nil.
func NewErrorResponse(message string, err error) ErrorResponse {
	resp := ErrorResponse{
		Message:   message,
		Timestamp: time.Now().UTC(),
	}
	if err != nil {
		resp.ErrorDetails = err.Error()
	}
	return resp
}
