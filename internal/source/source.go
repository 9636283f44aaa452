// Package source fetches raw bpi documents from files, HTTP endpoints or the
// local price store.
package source

import (
	"bytes"
	"context"
	"encoding/json"
)

// Source yields one raw JSON document per call.
//
// The boolean is false when nothing usable could be retrieved: I/O or
// connectivity failures, a non-200 status, a body that is not JSON, or a
// top-level null. The implementation logs the reason; callers only see
// absence.
type Source interface {
	Get(ctx context.Context) (json.RawMessage, bool)
	Name() string
}

// document returns b as a RawMessage when it holds one valid, non-null JSON value.
func document(b []byte) (json.RawMessage, bool) {
	trimmed := bytes.TrimSpace(b)
	if len(trimmed) == 0 || !json.Valid(trimmed) || bytes.Equal(trimmed, []byte("null")) {
		return nil, false
	}
	return json.RawMessage(trimmed), true
}
