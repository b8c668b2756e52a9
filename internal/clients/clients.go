package clients

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"onehealth-labs/internal/model"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
)

// Config holds the settings shared by all outbound lookup clients.
type Config struct {
	// BaseURL is the API gateway fronting the collaborator services.
	BaseURL string

	// Timeout bounds each individual attempt.
	Timeout time.Duration

	// MaxRetries is the retry budget for transient failures. A 404 is a
	// definitive negative answer and is never retried.
	MaxRetries uint64
}

// DefaultConfig returns the client settings used when none are configured.
func DefaultConfig(baseURL string) Config {
	return Config{
		BaseURL:    baseURL,
		Timeout:    5 * time.Second,
		MaxRetries: 2,
	}
}

// httpClient is the shared transport beneath the patient, catalog and cart
// clients: bounded per-attempt timeout, exponential backoff on network
// errors and 5xx responses, typed domain errors on the way out.
type httpClient struct {
	base       string
	client     *http.Client
	timeout    time.Duration
	maxRetries uint64
	logger     zerolog.Logger
}

func newHTTPClient(cfg Config, component string, logger zerolog.Logger) *httpClient {
	return &httpClient{
		base:       cfg.BaseURL,
		client:     &http.Client{},
		timeout:    cfg.Timeout,
		maxRetries: cfg.MaxRetries,
		logger:     logger.With().Str("client", component).Logger(),
	}
}

// getJSON performs a GET and decodes the 200 body into out.
func (c *httpClient) getJSON(ctx context.Context, path, notFoundMsg string, out any) error {
	return c.do(ctx, http.MethodGet, path, notFoundMsg, out)
}

// post performs a POST with an empty body, discarding the response body.
func (c *httpClient) post(ctx context.Context, path, notFoundMsg string) error {
	return c.do(ctx, http.MethodPost, path, notFoundMsg, nil)
}

func (c *httpClient) do(ctx context.Context, method, path, notFoundMsg string, out any) error {
	url := c.base + path

	attempt := func() error {
		attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()

		req, err := http.NewRequestWithContext(attemptCtx, method, url, nil)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("build request: %w", err))
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.client.Do(req)
		if err != nil {
			c.logger.Warn().Err(err).Str("method", method).Str("url", url).Msg("remote call failed")
			return err
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusNotFound:
			return backoff.Permanent(model.NotFound("%s", notFoundMsg))
		case resp.StatusCode >= 500:
			c.logger.Warn().Int("status", resp.StatusCode).Str("url", url).Msg("remote call returned server error")
			return fmt.Errorf("%s %s: status %d", method, url, resp.StatusCode)
		case resp.StatusCode >= 400:
			return backoff.Permanent(fmt.Errorf("%s %s: status %d", method, url, resp.StatusCode))
		}

		if out == nil {
			io.Copy(io.Discard, resp.Body)
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return backoff.Permanent(fmt.Errorf("decode response from %s: %w", url, err))
		}
		return nil
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 100 * time.Millisecond
	policy.MaxInterval = 1 * time.Second

	err := backoff.Retry(attempt, backoff.WithContext(backoff.WithMaxRetries(policy, c.maxRetries), ctx))
	if err != nil {
		var de *model.DomainError
		if errors.As(err, &de) {
			return de
		}
		return model.Unavailable(err, "remote service unreachable at %s", url)
	}
	return nil
}
