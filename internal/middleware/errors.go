package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/bpipulse/internal/domain/dto"
	"github.com/guttosm/bpipulse/internal/logger"
)

// ErrorHandler renders errors collected in c.Errors when the handler chain
// did not write a response itself.
//
// A dto.ErrorResponse attached with c.Error is rendered as-is; any other
// error becomes a 500 with its text as details. The status is taken from
// the writer when a handler already set a 4xx/5xx code.
var ErrorHandler gin.HandlerFunc = func(c *gin.Context) {
	c.Next()

	if len(c.Errors) == 0 || c.Writer.Written() {
		return
	}

	last := c.Errors.Last().Err
	status := c.Writer.Status()
	if status < http.StatusBadRequest {
		status = http.StatusInternalServerError
	}

	var body dto.ErrorResponse
	if !errors.As(last, &body) {
		body = dto.NewErrorResponse("Internal server error", last)
	}

	logger.Component("http").Error().
		Str("request_id", requestID(c)).
		Int("status", status).
		Err(last).
		Msg("request failed")

	c.AbortWithStatusJSON(status, body)
}

// AbortWithError stops the chain and writes a dto.ErrorResponse with status.
// err is recorded on the context so RequestLogger and ErrorHandler see it.
func AbortWithError(c *gin.Context, status int, message string, err error) {
	if err != nil {
		_ = c.Error(err)
	}
	c.AbortWithStatusJSON(status, dto.NewErrorResponse(message, err))
}
