package history

import "errors"

// Parse and analysis failures. Callers match them with errors.Is; the
// returned errors may wrap them with extra context (e.g. the offending date).
var (
	// ErrMalformedInput is returned when the raw document is empty, null,
	// not valid JSON, or not an object (or "bpi" is not an object).
	ErrMalformedInput = errors.New("null or malformed input")

	// ErrMissingField is returned when the document has no "bpi" mapping.
	ErrMissingField = errors.New(`missing field "bpi"`)

	// ErrInvalidEntry is returned when a "bpi" value is not a JSON number.
	ErrInvalidEntry = errors.New("invalid bpi entry")

	// ErrEmptyDataSet is returned when there is nothing to analyze.
	ErrEmptyDataSet = errors.New("empty data set")

	// ErrInsufficientSampleSize is returned when the series holds a single
	// point; the sample standard deviation needs at least two.
	ErrInsufficientSampleSize = errors.New("insufficient sample size")
)
