package dto

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestErrorResponse_ErrorText(t *testing.T) {
	cases := []struct {
		name string
		resp ErrorResponse
		want string
	}{
		{name: "message only", resp: ErrorResponse{Message: "invalid date range"}, want: "invalid date range"},
		{
			name: "with details",
			resp: ErrorResponse{Message: "invalid date range", ErrorDetails: "start must not be after end"},
			want: "invalid date range: start must not be after end",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.resp.Error(); got != tc.want {
				t.Fatalf("Error()=%q, want %q", got, tc.want)
			}
		})
	}
}

func TestNewErrorResponse_StampsUTC(t *testing.T) {
	before := time.Now()
	resp := NewErrorResponse("source unavailable", fmt.Errorf("fetch: %w", errors.New("timeout")))

	if resp.ErrorDetails != "fetch: timeout" {
		t.Fatalf("details=%q", resp.ErrorDetails)
	}
	if resp.Timestamp.Location() != time.UTC {
		t.Fatalf("timestamp must be UTC, got %v", resp.Timestamp.Location())
	}
	if resp.Timestamp.Before(before.Add(-time.Second)) || resp.Timestamp.After(time.Now().Add(time.Second)) {
		t.Fatalf("timestamp out of range: %v", resp.Timestamp)
	}
}

func TestErrorResponse_JSONBody(t *testing.T) {
	cases := []struct {
		name        string
		err         error
		wantDetails bool
	}{
		{name: "nil error omits details", err: nil, wantDetails: false},
		{name: "error fills details", err: errors.New("boom"), wantDetails: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			raw, err := json.Marshal(NewErrorResponse("bad request", tc.err))
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			var body map[string]any
			if err := json.Unmarshal(raw, &body); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if body["message"] != "bad request" {
				t.Fatalf("message=%v", body["message"])
			}
			if _, ok := body["timestamp"].(string); !ok {
				t.Fatalf("timestamp missing: %s", raw)
			}
			if _, ok := body["error"]; ok != tc.wantDetails {
				t.Fatalf("error key present=%v, want %v (%s)", ok, tc.wantDetails, raw)
			}
		})
	}
}

func TestErrorResponse_AsError(t *testing.T) {
	var wrapped error = fmt.Errorf("handler: %w", NewErrorResponse("not found", nil))

	var resp ErrorResponse
	if !errors.As(wrapped, &resp) {
		t.Fatalf("errors.As must find ErrorResponse in %v", wrapped)
	}
	if resp.Message != "not found" {
		t.Fatalf("message=%q", resp.Message)
	}
}
