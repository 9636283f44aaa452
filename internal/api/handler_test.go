package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/bpipulse/internal/domain/dto"
	"github.com/guttosm/bpipulse/internal/domain/models"
	"github.com/guttosm/bpipulse/internal/history"
	"github.com/guttosm/bpipulse/internal/service"
)

type mockStatsService struct {
	rep     *service.Report
	err     error
	gotR    service.Range
	verbose bool
}

func (m *mockStatsService) GetStats(_ context.Context, r service.Range, verbose bool) (*service.Report, error) {
	m.gotR, m.verbose = r, verbose
	return m.rep, m.err
}

var _ service.StatsService = (*mockStatsService)(nil)

func sampleReport() *service.Report {
	return &service.Report{
		Source: "http:test",
		Range:  service.Range{Start: "2018-01-01", End: "2018-01-20"},
		Stats: models.Stats{
			DataSize:          20,
			Highest:           models.DataPoint{Date: "2018-01-06", Price: 17135.8363},
			Lowest:            models.DataPoint{Date: "2018-01-17", Price: 11141.2488},
			MeanPrice:         13975.165275,
			MedianPrice:       13812.715,
			StandardDeviation: 1745.37,
		},
	}
}

func setupRouterWithMock(s service.StatsService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(s)
	r := gin.New()
	v1 := r.Group("/api/v1")
	v1.GET("/stats", h.GetStats)
	return r
}

func TestGetStats_TableDriven(t *testing.T) {
	cases := []struct {
		name   string
		svc    *mockStatsService
		query  string
		status int
		assert func(t *testing.T, m *mockStatsService, body []byte)
	}{
		{
			name:   "ok with range",
			svc:    &mockStatsService{rep: sampleReport()},
			query:  "/api/v1/stats?start=2018-01-01&end=2018-01-20",
			status: http.StatusOK,
			assert: func(t *testing.T, m *mockStatsService, body []byte) {
				if m.gotR != (service.Range{Start: "2018-01-01", End: "2018-01-20"}) {
					t.Fatalf("range not forwarded: %+v", m.gotR)
				}
				var out dto.StatsResponse
				if err := json.Unmarshal(body, &out); err != nil {
					t.Fatalf("json: %v", err)
				}
				if out.DataSize != 20 || out.Highest.Date != "2018-01-06" || out.Lowest.Price != 11141.2488 {
					t.Fatalf("unexpected body: %+v", out)
				}
				if out.Points != nil {
					t.Fatalf("points must be omitted when not verbose")
				}
			},
		},
		{
			name: "verbose includes points",
			svc: func() *mockStatsService {
				rep := sampleReport()
				rep.Points = []models.DataPoint{{Date: "2018-01-06", Price: 17135.8363}}
				return &mockStatsService{rep: rep}
			}(),
			query:  "/api/v1/stats?verbose=true",
			status: http.StatusOK,
			assert: func(t *testing.T, m *mockStatsService, body []byte) {
				if !m.verbose {
					t.Fatalf("verbose not forwarded")
				}
				var out dto.StatsResponse
				if err := json.Unmarshal(body, &out); err != nil {
					t.Fatalf("json: %v", err)
				}
				if len(out.Points) != 1 {
					t.Fatalf("points=%+v", out.Points)
				}
			},
		},
		{
			name:   "invalid verbose",
			svc:    &mockStatsService{rep: sampleReport()},
			query:  "/api/v1/stats?verbose=maybe",
			status: http.StatusBadRequest,
		},
		{
			name:   "invalid range",
			svc:    &mockStatsService{err: fmt.Errorf("%w: start after end", service.ErrInvalidRange)},
			query:  "/api/v1/stats?start=2018-02-01&end=2018-01-01",
			status: http.StatusBadRequest,
		},
		{
			name:   "no data",
			svc:    &mockStatsService{err: service.ErrNoData},
			query:  "/api/v1/stats",
			status: http.StatusBadGateway,
		},
		{
			name:   "missing bpi",
			svc:    &mockStatsService{err: fmt.Errorf("parse: %w", history.ErrMissingField)},
			query:  "/api/v1/stats",
			status: http.StatusUnprocessableEntity,
		},
		{
			name:   "single point",
			svc:    &mockStatsService{err: fmt.Errorf("analyze: %w", history.ErrInsufficientSampleSize)},
			query:  "/api/v1/stats",
			status: http.StatusUnprocessableEntity,
		},
		{
			name:   "unexpected error",
			svc:    &mockStatsService{err: errors.New("boom")},
			query:  "/api/v1/stats",
			status: http.StatusInternalServerError,
			assert: func(t *testing.T, _ *mockStatsService, body []byte) {
				var out dto.ErrorResponse
				if err := json.Unmarshal(body, &out); err != nil {
					t.Fatalf("json: %v", err)
				}
				if out.ErrorDetails != "boom" {
					t.Fatalf("details=%q", out.ErrorDetails)
				}
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := setupRouterWithMock(tc.svc)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tc.query, nil))
			if w.Code != tc.status {
				t.Fatalf("want %d got %d (%s)", tc.status, w.Code, w.Body.String())
			}
			if tc.assert != nil {
				tc.assert(t, tc.svc, w.Body.Bytes())
			}
		})
	}
}
