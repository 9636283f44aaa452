package middleware

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
)

// DefaultRequestTimeout bounds every API request, upstream fetches included.
const DefaultRequestTimeout = 10 * time.Second

// Timeout attaches a deadline to the request context. Sources and the
// repository observe it through ctx.
func Timeout(d time.Duration) gin.HandlerFunc {
	if d <= 0 {
		d = DefaultRequestTimeout
	}
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
