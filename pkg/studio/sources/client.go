// Package sources talks to the metadata and lyrics collaborators over HTTP.
package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/himanishpuri/studiokit/pkg/models"
)

const (
	defaultTimeout   = 20 * time.Second
	defaultUserAgent = "studiokit/1.0 (+https://github.com/himanishpuri/studiokit)"
	maxBodyBytes     = 8 << 20
)

type clientConfig struct {
	httpClient *http.Client
	userAgent  string
	headers    map[string]string
}

// Option configures a collaborator client.
type Option func(*clientConfig)

// WithHTTPClient swaps the underlying *http.Client.
func WithHTTPClient(c *http.Client) Option {
	return func(cfg *clientConfig) {
		if c != nil {
			cfg.httpClient = c
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(cfg *clientConfig) {
		if ua != "" {
			cfg.userAgent = ua
		}
	}
}

// WithHeader adds a header sent on every request (API keys, host routing).
func WithHeader(key, value string) Option {
	return func(cfg *clientConfig) {
		if key != "" && value != "" {
			cfg.headers[key] = value
		}
	}
}

func newClientConfig(opts []Option) clientConfig {
	cfg := clientConfig{
		httpClient: &http.Client{Timeout: defaultTimeout},
		userAgent:  defaultUserAgent,
		headers:    map[string]string{},
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// getJSON performs one GET and decodes the body into out. A 404 or an empty
// body wraps models.ErrNotFound; any other failure wraps models.ErrTransport.
// strictNotFound maps every non-2xx status to ErrNotFound.
func (cfg clientConfig) getJSON(ctx context.Context, url string, strictNotFound bool, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", cfg.userAgent)
	for k, v := range cfg.headers {
		req.Header.Set(k, v)
	}

	resp, err := cfg.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("GET %s: %v: %w", req.URL.Host, err, models.ErrTransport)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if resp.StatusCode == http.StatusNotFound || strictNotFound {
			return fmt.Errorf("GET %s: status %d: %w", req.URL.Path, resp.StatusCode, models.ErrNotFound)
		}
		return fmt.Errorf("GET %s: status %d: %w", req.URL.Path, resp.StatusCode, models.ErrTransport)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("reading response: %v: %w", err, models.ErrTransport)
	}
	if len(body) == 0 {
		return fmt.Errorf("GET %s: empty body: %w", req.URL.Path, models.ErrNotFound)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decoding response: %v: %w", err, models.ErrTransport)
	}
	return nil
}
