package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/codyseavey/tcg-binder/internal/config"
	"github.com/codyseavey/tcg-binder/internal/logging"
	"github.com/codyseavey/tcg-binder/internal/metrics"
)

// ErrMalformedResponse marks a 200 response whose body could not be decoded.
var ErrMalformedResponse = errors.New("malformed upstream response")

// UpstreamError is a non-2xx answer from the catalog API.
type UpstreamError struct {
	Status  int
	Message string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("catalog API %d: %s", e.Status, e.Message)
}

// Upstream fetches a relative catalog path and decodes the JSON body into out.
type Upstream interface {
	GetJSON(ctx context.Context, path string, out any) error
}

// UpstreamClient talks to the Pokemon TCG API with a per-attempt timeout,
// client side throttling and retries on transient failures.
type UpstreamClient struct {
	client  *http.Client
	baseURL string
	apiKey  string
	timeout time.Duration
	limiter *rate.Limiter
	retry   RetryPolicy
	logger  *logrus.Logger
}

func NewUpstreamClient(conf config.Upstream, logger *logrus.Logger) *UpstreamClient {
	if logger == nil {
		logger = logging.Discard()
	}
	c := &UpstreamClient{
		client:  &http.Client{},
		baseURL: strings.TrimRight(conf.BaseURL, "/"),
		timeout: conf.Timeout,
		logger:  logger,
	}
	if conf.HasAPIKey() {
		c.apiKey = strings.TrimSpace(conf.APIKey)
	}
	if conf.RateLimit > 0 {
		burst := conf.RateBurst
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(conf.RateLimit), burst)
	}

	c.retry = RetryPolicy{
		MaxAttempts:    conf.MaxAttempts,
		InitialBackoff: conf.InitialBackoff,
		OnRetry: func(attempt int, wait time.Duration, err error) {
			metrics.UpstreamRetriesTotal.Inc()
			c.logger.WithError(err).Warnf("Upstream: attempt %d failed, retrying in %s", attempt, wait)
		},
	}
	return c
}

// GetJSON issues GET baseURL+path under the retry policy.
func (c *UpstreamClient) GetJSON(ctx context.Context, path string, out any) error {
	err := c.retry.Run(ctx, func(ctx context.Context) error {
		return c.attempt(ctx, path, out)
	})
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	return nil
}

func (c *UpstreamClient) attempt(ctx context.Context, path string, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-Api-Key", c.apiKey)
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	metrics.UpstreamLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.UpstreamAttemptsTotal.WithLabelValues("transport").Inc()
		return fmt.Errorf("failed to call catalog API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		outcome := "failed"
		if retryableStatuses[resp.StatusCode] {
			outcome = "retryable"
		}
		metrics.UpstreamAttemptsTotal.WithLabelValues(outcome).Inc()
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return &UpstreamError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		metrics.UpstreamAttemptsTotal.WithLabelValues("failed").Inc()
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	metrics.UpstreamAttemptsTotal.WithLabelValues("ok").Inc()
	return nil
}
