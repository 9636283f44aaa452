package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/bpipulse/internal/domain/dto"
	"github.com/guttosm/bpipulse/internal/middleware"
	"github.com/guttosm/bpipulse/internal/service"
)

// Handler provides HTTP handlers for price statistics endpoints.
//
// Responsibilities:
//   - Validate incoming query parameters
//   - Call the stats service with the request context
//   - Map service errors to HTTP status codes
//   - Translate reports into response DTOs
type Handler struct {
	svc service.StatsService
}

// NewHandler constructs a new Handler around svc.
func NewHandler(svc service.StatsService) *Handler {
	return &Handler{svc: svc}
}

// GetStats handles GET /api/v1/stats requests.
//
// Query Parameters:
//   - start (string, optional): first date, YYYY-MM-DD. Requires end.
//   - end (string, optional): last date, YYYY-MM-DD. Requires start.
//   - verbose (bool, optional): include the parsed points, price descending.
//
// GetStats godoc
// @Summary      Price statistics
// @Description  Fetches the price history for the optional range and returns highest, lowest, mean, median and standard deviation
// @Tags         stats
// @Accept       json
// @Produce      json
// @Param        start    query     string  false  "Start date in YYYY-MM-DD" example(2018-01-01)
// @Param        end      query     string  false  "End date in YYYY-MM-DD" example(2018-01-20)
// @Param        verbose  query     bool    false  "Include data points"
// @Success      200      {object}  dto.StatsResponse  "Success"
// @Failure      400      {object}  dto.ErrorResponse  "Bad Request"
// @Failure      422      {object}  dto.ErrorResponse  "Unprocessable price history"
// @Failure      502      {object}  dto.ErrorResponse  "Source unavailable"
// @Failure      500      {object}  dto.ErrorResponse  "Internal Error"
// @Router       /api/v1/stats [get]
func (h *Handler) GetStats(c *gin.Context) {
	rng := service.Range{
		Start: strings.TrimSpace(c.Query("start")),
		End:   strings.TrimSpace(c.Query("end")),
	}

	verbose := false
	if v := c.Query("verbose"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			middleware.AbortWithError(c, http.StatusBadRequest, "invalid verbose flag, expected true or false", err)
			return
		}
		verbose = b
	}

	rep, err := h.svc.GetStats(c.Request.Context(), rng, verbose)
	if err != nil {
		status, msg := statusFor(err)
		middleware.AbortWithError(c, status, msg, err)
		return
	}

	c.JSON(http.StatusOK, dto.StatsResponse{
		Source:            rep.Source,
		Start:             rep.Range.Start,
		End:               rep.Range.End,
		DataSize:          rep.Stats.DataSize,
		Highest:           rep.Stats.Highest,
		Lowest:            rep.Stats.Lowest,
		MeanPrice:         rep.Stats.MeanPrice,
		MedianPrice:       rep.Stats.MedianPrice,
		StandardDeviation: rep.Stats.StandardDeviation,
		Points:            rep.Points,
	})
}

func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrInvalidRange):
		return http.StatusBadRequest, "invalid date range"
	case errors.Is(err, service.ErrNoData):
		return http.StatusBadGateway, "price source returned no data"
	case service.IsAnalysisError(err):
		return http.StatusUnprocessableEntity, "cannot analyze price history"
	default:
		return http.StatusInternalServerError, "failed to compute stats"
	}
}
