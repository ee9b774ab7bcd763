// Package advisory queries an external route and weather advisory service.
package advisory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"freight/internal/domain"
)

// ErrNotConfigured is returned when no base URL is set.
var ErrNotConfigured = errors.New("advisory service not configured")

// Config configures the HTTP advisor.
type Config struct {
	BaseURL string
	APIKey  string

	// HTTPClient is an optional custom HTTP client (for testing).
	HTTPClient *http.Client

	// Timeout bounds a single request when HTTPClient is nil.
	Timeout time.Duration
}

// HTTPAdvisor fetches advisories over HTTP as JSON.
type HTTPAdvisor struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// NewHTTPAdvisor creates a new HTTPAdvisor.
func NewHTTPAdvisor(cfg Config) (*HTTPAdvisor, error) {
	if cfg.BaseURL == "" {
		return nil, ErrNotConfigured
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = 3 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	return &HTTPAdvisor{
		httpClient: httpClient,
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
	}, nil
}

type advisoryResponse struct {
	Severe      bool   `json:"severe"`
	Description string `json:"description"`
}

// GetAdvisory returns the advisory for a coordinate. Any transport or
// decoding problem is an error; callers treat it as "unavailable".
func (a *HTTPAdvisor) GetAdvisory(ctx context.Context, lat, lng float64) (domain.Advisory, error) {
	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(lat, 'f', 6, 64))
	q.Set("lng", strconv.FormatFloat(lng, 'f', 6, 64))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"/v1/advisories?"+q.Encode(), nil)
	if err != nil {
		return domain.Advisory{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if a.apiKey != "" {
		req.Header.Set("X-API-Key", a.apiKey)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return domain.Advisory{}, fmt.Errorf("advisory request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return domain.Advisory{}, fmt.Errorf("advisory service returned %d: %s", resp.StatusCode, body)
	}

	var out advisoryResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return domain.Advisory{}, fmt.Errorf("decode advisory: %w", err)
	}

	return domain.Advisory{IsSevere: out.Severe, Description: out.Description}, nil
}
