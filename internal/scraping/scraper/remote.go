package scraper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/listly/listly-backend/internal/logging"
	"github.com/listly/listly-backend/internal/scraping/domain"
	"github.com/listly/listly-backend/internal/weburl"
)

// RemoteClient calls an external scrape service that does the fetching and
// conversion and answers with a ScrapeResult document.
type RemoteClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewRemoteClient creates a client for baseURL. limiter may be nil.
func NewRemoteClient(baseURL, apiKey string, limiter *rate.Limiter) *RemoteClient {
	return &RemoteClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		limiter: limiter,
	}
}

type remoteScrapeRequest struct {
	URL     string   `json:"url"`
	Formats []string `json:"formats"`
}

type remoteScrapeResponse struct {
	Success bool                 `json:"success"`
	Error   string               `json:"error,omitempty"`
	Data    *domain.ScrapeResult `json:"data"`
}

// Scrape posts url to <baseURL>/v1/scrape.
func (c *RemoteClient) Scrape(ctx context.Context, url string) (*domain.ScrapeResult, error) {
	if _, err := weburl.ParsePublic(url); err != nil {
		return nil, err
	}
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}
	}

	jsonData, err := json.Marshal(remoteScrapeRequest{URL: url, Formats: []string{"markdown", "links", "metadata"}})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/scrape", bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call scrape service: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	logging.FromContext(ctx).Zap().Debug("remote scrape",
		zap.String("url", url), zap.Int("status", resp.StatusCode), zap.Duration("took", time.Since(start)))

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: scrape service returned %d: %s", domain.ErrUnexpectedStatus, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var out remoteScrapeResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if !out.Success || out.Data == nil {
		msg := out.Error
		if msg == "" {
			msg = "empty result"
		}
		return nil, fmt.Errorf("scrape service: %s", msg)
	}
	return out.Data, nil
}
