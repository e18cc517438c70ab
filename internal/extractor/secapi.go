package extractor

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultSECAPIBaseURL is the sec-api.io endpoint root.
const DefaultSECAPIBaseURL = "https://api.sec-api.io"

// maxResponseBytes bounds a single section body.
const maxResponseBytes = 32 << 20

// SECAPIExtractor calls the sec-api.io extractor endpoint.
type SECAPIExtractor struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewSECAPIExtractor creates an extractor for the given API key. An empty
// baseURL uses DefaultSECAPIBaseURL and a nil client gets a 60s timeout.
func NewSECAPIExtractor(apiKey, baseURL string, httpClient *http.Client) (*SECAPIExtractor, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("sec-api key must be provided")
	}
	if baseURL == "" {
		baseURL = DefaultSECAPIBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	return &SECAPIExtractor{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: httpClient,
	}, nil
}

// Extract requests the plain-text representation of sectionID.
func (e *SECAPIExtractor) Extract(ctx context.Context, reference, sectionID string) (string, error) {
	q := url.Values{}
	q.Set("url", reference)
	q.Set("item", sectionID)
	q.Set("type", "text")
	q.Set("token", e.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.baseURL+"/extractor?"+q.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("failed to build extractor request: %w", err)
	}

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("extractor request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", fmt.Errorf("failed to read extractor response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		slog.Warn("Extractor returned non-OK status.", "status", resp.StatusCode, "sectionId", sectionID)
		return "", fmt.Errorf("extractor returned status %d: %s", resp.StatusCode, excerpt(string(body), 200))
	}
	return string(body), nil
}

func excerpt(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
