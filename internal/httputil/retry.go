package httputil

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/guttosm/bpipulse/internal/logger"
)

// RetryConfig bounds the exponential backoff used by Do.
type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// DefaultRetry makes three attempts with delays capped at 10s.
var DefaultRetry = RetryConfig{
	MaxAttempts: 3,
	BaseDelay:   1 * time.Second,
	MaxDelay:    10 * time.Second,
}

// Do executes an HTTP request with exponential backoff retry.
//
// Transport errors and 5xx responses are retried; any other response
// (including 4xx) is returned to the caller as-is. buildReq is called on each
// attempt to produce a fresh request.
func Do(ctx context.Context, client *http.Client, cfg RetryConfig, buildReq func() (*http.Request, error)) (*http.Response, error) {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultRetry.MaxAttempts
	}

	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = cfg.BaseDelay
	eb.MaxInterval = cfg.MaxDelay
	eb.Multiplier = 2
	eb.RandomizationFactor = 0
	eb.MaxElapsedTime = 0
	policy := backoff.WithContext(backoff.WithMaxRetries(eb, uint64(cfg.MaxAttempts-1)), ctx)

	var (
		resp    *http.Response
		attempt int
	)
	op := func() error {
		attempt++
		req, err := buildReq()
		if err != nil {
			return backoff.Permanent(fmt.Errorf("build request: %w", err))
		}

		r, err := client.Do(req)
		if err != nil {
			return err
		}
		if r.StatusCode >= http.StatusInternalServerError {
			body, _ := io.ReadAll(io.LimitReader(r.Body, 512))
			_ = r.Body.Close()
			return fmt.Errorf("HTTP %d: %s", r.StatusCode, string(body))
		}
		resp = r
		return nil
	}
	notify := func(err error, wait time.Duration) {
		logger.L().Warn().
			Err(err).
			Int("attempt", attempt).
			Int("max_attempts", cfg.MaxAttempts).
			Dur("retry_in", wait).
			Msg("http attempt failed")
	}

	if err := backoff.RetryNotify(op, policy, notify); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("all %d attempts failed, last error: %w", attempt, err)
	}
	return resp, nil
}
