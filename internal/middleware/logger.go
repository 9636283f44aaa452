package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/bpipulse/internal/domain/dto"
	"github.com/guttosm/bpipulse/internal/logger"
)

// RequestLogger is a Gin middleware that logs one structured line per request.
//
// Fields: request_id, method, path, query, status, latency_ms, client_ip.
// 5xx responses are logged at error level, 4xx at warn, everything else at info.
//
// Usage:
//
//	router := gin.New()
//	router.Use(middleware.RequestID(), middleware.RequestLogger())
//
// Example log output:
//
//	{"level":"info","component":"http","request_id":"123e4567-...","method":"GET","path":"/api/v1/stats","status":200,"latency_ms":15}
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		method := c.Request.Method
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		log := logger.Component("http")
		ev := log.Info()
		switch {
		case status >= http.StatusInternalServerError:
			ev = log.Error()
		case status >= http.StatusBadRequest:
			ev = log.Warn()
		}

		ev.Str("request_id", requestID(c)).
			Str("method", method).
			Str("path", path).
			Str("query", query).
			Int("status", status).
			Int64("latency_ms", latency.Milliseconds()).
			Str("client_ip", c.ClientIP()).
			Msg("http_request")
	}
}

func toString(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

// client represents a rate-limited client with request count and window start.
type client struct {
	windowStart time.Time
	count       int
}

const (
	DefaultRateLimit  = 60
	DefaultRateWindow = time.Minute
)

// RateLimiter is an in-memory fixed-window limiter keyed by client IP.
//
// Each call returns a limiter with its own store, so separate routers do not
// share counters. Requests beyond limit within window receive 429 with a
// dto.ErrorResponse body. Stale entries are swept once per window.
//
// Usage:
//
//	router.Use(middleware.RateLimiter(middleware.DefaultRateLimit, middleware.DefaultRateWindow))
func RateLimiter(limit int, window time.Duration) gin.HandlerFunc {
	if limit <= 0 {
		limit = DefaultRateLimit
	}
	if window <= 0 {
		window = DefaultRateWindow
	}

	var (
		mu        sync.Mutex
		clients   = make(map[string]*client)
		lastSweep = time.Now()
	)

	return func(c *gin.Context) {
		ip := c.ClientIP()
		now := time.Now()

		mu.Lock()
		if now.Sub(lastSweep) > window {
			for k, v := range clients {
				if now.Sub(v.windowStart) > window {
					delete(clients, k)
				}
			}
			lastSweep = now
		}
		cl, ok := clients[ip]
		if !ok || now.Sub(cl.windowStart) > window {
			cl = &client{windowStart: now}
			clients[ip] = cl
		}
		cl.count++
		exceeded := cl.count > limit
		mu.Unlock()

		if exceeded {
			c.Header("Retry-After", retryAfter(window))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, dto.NewErrorResponse("rate limit exceeded", nil))
			return
		}

		c.Next()
	}
}

func retryAfter(window time.Duration) string {
	secs := int(window / time.Second)
	if secs < 1 {
		secs = 1
	}
	return strconv.Itoa(secs)
}
