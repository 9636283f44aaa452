package source

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/guttosm/bpipulse/internal/httputil"
	"github.com/guttosm/bpipulse/internal/logger"
)

// maxBodyBytes caps the response body read from an upstream.
const maxBodyBytes = 16 << 20

// HTTPConfig configures an HTTP source.
type HTTPConfig struct {
	// BaseURL is the endpoint, e.g. https://api.coindesk.com/v1/bpi/historical/close.json.
	BaseURL string
	// Start and End, when set, are sent as ?start=&end= (YYYY-MM-DD).
	Start, End string
	Timeout    time.Duration
	Retry      httputil.RetryConfig
	// Client overrides the default client; tests inject httptest clients.
	Client *http.Client
}

// HTTP fetches a bpi document with GET.
type HTTP struct {
	cfg    HTTPConfig
	client *http.Client
}

// NewHTTP returns an HTTP source for cfg.
func NewHTTP(cfg HTTPConfig) *HTTP {
	client := cfg.Client
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	if cfg.Retry.MaxAttempts <= 0 {
		cfg.Retry = httputil.DefaultRetry
	}
	return &HTTP{cfg: cfg, client: client}
}

// Name identifies the source in logs as "http:<base url>".
func (h *HTTP) Name() string { return "http:" + h.cfg.BaseURL }

// URL returns the request URL including range parameters.
func (h *HTTP) URL() (string, error) {
	u, err := url.Parse(h.cfg.BaseURL)
	if err != nil {
		return "", err
	}
	q := u.Query()
	if h.cfg.Start != "" {
		q.Set("start", h.cfg.Start)
	}
	if h.cfg.End != "" {
		q.Set("end", h.cfg.End)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Get fetches the document, retrying transient failures.
func (h *HTTP) Get(ctx context.Context) (json.RawMessage, bool) {
	log := logger.Component("source").With().Str("source", h.Name()).Logger()

	target, err := h.URL()
	if err != nil {
		log.Error().Err(err).Msg("invalid source url")
		return nil, false
	}

	start := time.Now()
	resp, err := httputil.Do(ctx, h.client, h.cfg.Retry, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		return req, nil
	})
	if err != nil {
		log.Error().Err(err).Str("url", target).Msg("request failed")
		return nil, false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Error().Int("status", resp.StatusCode).Str("url", target).Msg("unexpected status")
		return nil, false
	}

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		log.Error().Err(err).Msg("read body")
		return nil, false
	}

	raw, ok := document(b)
	if !ok {
		log.Error().Int("bytes", len(b)).Msg("response is not a valid json document")
		return nil, false
	}
	log.Info().
		Str("url", target).
		Int("bytes", len(raw)).
		Int64("latency_ms", time.Since(start).Milliseconds()).
		Msg("fetched history")
	return raw, true
}
