package scraper

import (
	"context"
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

// PageFetcher downloads a page itself and converts it with goquery.
type PageFetcher struct {
	httpClient   *http.Client
	userAgent    string
	limiter      *rate.Limiter
	robots       *robotsCache
	allowPrivate bool
}

type PageOption func(*PageFetcher)

// WithHTTPClient replaces the default client (30s timeout, private
// addresses refused at dial time).
func WithHTTPClient(c *http.Client) PageOption {
	return func(p *PageFetcher) { p.httpClient = c }
}

// WithLimiter throttles outbound requests.
func WithLimiter(l *rate.Limiter) PageOption {
	return func(p *PageFetcher) { p.limiter = l }
}

// WithoutRobots skips robots.txt checks.
func WithoutRobots() PageOption {
	return func(p *PageFetcher) { p.robots = nil }
}

// AllowPrivateNetworks lets the fetcher reach loopback and internal hosts.
// Meant for local tooling and tests, never for user-submitted URLs.
func AllowPrivateNetworks() PageOption {
	return func(p *PageFetcher) { p.allowPrivate = true }
}

func NewPageFetcher(userAgent string, opts ...PageOption) *PageFetcher {
	if strings.TrimSpace(userAgent) == "" {
		userAgent = DefaultUserAgent
	}
	p := &PageFetcher{userAgent: userAgent}
	p.robots = newRobotsCache(nil, userAgent)
	for _, opt := range opts {
		opt(p)
	}
	if p.httpClient == nil {
		if p.allowPrivate {
			p.httpClient = &http.Client{Timeout: 30 * time.Second}
		} else {
			p.httpClient = newGuardedClient(30 * time.Second)
		}
	}
	if p.robots != nil {
		p.robots.client = p.httpClient
	}
	return p
}

func (p *PageFetcher) Scrape(ctx context.Context, rawURL string) (*domain.ScrapeResult, error) {
	parse := weburl.ParsePublic
	if p.allowPrivate {
		parse = weburl.Parse
	}
	u, err := parse(rawURL)
	if err != nil {
		return nil, err
	}
	pageURL := u.String()

	if p.robots != nil {
		ok, err := p.robots.Allowed(ctx, u)
		if err != nil {
			return nil, fmt.Errorf("robots check: %w", err)
		}
		if !ok {
			return nil, domain.ErrDisallowedByRobots
		}
	}

	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", p.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.5")

	start := time.Now()
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %d", domain.ErrUnexpectedStatus, resp.StatusCode)
	}
	contentType := resp.Header.Get("Content-Type")
	if contentType != "" && !strings.Contains(contentType, "html") && !strings.Contains(contentType, "text/plain") {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotHTML, contentType)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if len(body) > maxBodyBytes {
		return nil, domain.ErrBodyTooLarge
	}

	body, err = toUTF8(body, contentType)
	if err != nil {
		return nil, fmt.Errorf("decode charset: %w", err)
	}

	logging.FromContext(ctx).Zap().Debug("page fetched",
		zap.String("url", pageURL), zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(body)), zap.Duration("took", time.Since(start)))

	// Redirects change the base for relative links.
	base := pageURL
	if resp.Request != nil && resp.Request.URL != nil {
		base = resp.Request.URL.String()
	}
	return FromHTML(base, resp.StatusCode, body)
}
