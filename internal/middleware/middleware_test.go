package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/bpipulse/internal/domain/dto"
)

type assertErr struct{}

func (assertErr) Error() string { return "boom" }

func decodeError(t *testing.T, w *httptest.ResponseRecorder) dto.ErrorResponse {
	t.Helper()
	var body dto.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body: %v (%s)", err, w.Body.String())
	}
	return body
}

func TestErrorHandler(t *testing.T) {
	cases := []struct {
		name       string
		handler    gin.HandlerFunc
		wantStatus int
		wantMsg    string
	}{
		{
			name:       "plain error becomes 500",
			handler:    func(c *gin.Context) { _ = c.Error(assertErr{}) },
			wantStatus: http.StatusInternalServerError,
			wantMsg:    "Internal server error",
		},
		{
			name: "error response keeps status and message",
			handler: func(c *gin.Context) {
				c.Status(http.StatusUnprocessableEntity)
				_ = c.Error(dto.NewErrorResponse("cannot analyze", assertErr{}))
			},
			wantStatus: http.StatusUnprocessableEntity,
			wantMsg:    "cannot analyze",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gin.SetMode(gin.TestMode)
			r := gin.New()
			r.Use(ErrorHandler)
			r.GET("/", tc.handler)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
			if w.Code != tc.wantStatus {
				t.Fatalf("code=%d, want %d", w.Code, tc.wantStatus)
			}
			if body := decodeError(t, w); body.Message != tc.wantMsg {
				t.Fatalf("message=%q, want %q", body.Message, tc.wantMsg)
			}
		})
	}
}

func TestErrorHandler_NoErrorsPassesThrough(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(ErrorHandler)
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusOK || w.Body.String() != "ok" {
		t.Fatalf("code=%d body=%q", w.Code, w.Body.String())
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RecoveryMiddleware())
	r.GET("/panic", func(c *gin.Context) { panic("boom") })
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))
	if w.Code != 500 {
		t.Fatalf("code=%d", w.Code)
	}
	if body := decodeError(t, w); body.ErrorDetails != "boom" {
		t.Fatalf("details=%q", body.ErrorDetails)
	}
}

func TestRateLimiter(t *testing.T) {
	cases := []struct {
		name   string
		reqs   int
		lim    int
		expect int
	}{
		{name: "within limit", reqs: 2, lim: 3, expect: http.StatusOK},
		{name: "at limit", reqs: 3, lim: 3, expect: http.StatusOK},
		{name: "exceed limit", reqs: 5, lim: 3, expect: http.StatusTooManyRequests},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gin.SetMode(gin.TestMode)
			r := gin.New()
			r.Use(RateLimiter(tc.lim, time.Minute))
			r.GET("/", func(c *gin.Context) { c.String(200, "ok") })
			var last *httptest.ResponseRecorder
			for i := 0; i < tc.reqs; i++ {
				last = httptest.NewRecorder()
				r.ServeHTTP(last, httptest.NewRequest(http.MethodGet, "/", nil))
			}
			if last.Code != tc.expect {
				t.Fatalf("expected %d, got %d", tc.expect, last.Code)
			}
			if tc.expect == http.StatusTooManyRequests && last.Header().Get("Retry-After") != "60" {
				t.Fatalf("Retry-After=%q", last.Header().Get("Retry-After"))
			}
		})
	}
}

func TestRateLimiter_WindowResets(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RateLimiter(1, 20*time.Millisecond))
	r.GET("/", func(c *gin.Context) { c.String(200, "ok") })

	do := func() int {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		return w.Code
	}
	if code := do(); code != http.StatusOK {
		t.Fatalf("first=%d", code)
	}
	if code := do(); code != http.StatusTooManyRequests {
		t.Fatalf("second=%d", code)
	}
	time.Sleep(40 * time.Millisecond)
	if code := do(); code != http.StatusOK {
		t.Fatalf("after window=%d", code)
	}
}

func TestAbortWithError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/err", func(c *gin.Context) {
		AbortWithError(c, http.StatusBadRequest, "bad stuff", assertErr{})
	})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/err", nil))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("code=%d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct == "" {
		t.Fatalf("expected content-type set")
	}
	body := decodeError(t, w)
	if body.Message != "bad stuff" || body.ErrorDetails != "boom" {
		t.Fatalf("body=%+v", body)
	}
}

func TestTimeout_SetsDeadline(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Timeout(50 * time.Millisecond))
	var hasDeadline bool
	var ctxErr error
	r.GET("/", func(c *gin.Context) {
		_, hasDeadline = c.Request.Context().Deadline()
		<-c.Request.Context().Done()
		ctxErr = c.Request.Context().Err()
		c.Status(http.StatusGatewayTimeout)
	})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if !hasDeadline {
		t.Fatalf("expected deadline on request context")
	}
	if ctxErr != context.DeadlineExceeded {
		t.Fatalf("ctx err=%v", ctxErr)
	}
}
