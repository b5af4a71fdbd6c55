// Package scraper fetches a single page and returns it as markdown,
// metadata, links and extracts.
package scraper

import (
	"context"

	"github.com/listly/listly-backend/internal/scraping/domain"
)

// Scraper fetches one page. Implementations never follow links.
type Scraper interface {
	Scrape(ctx context.Context, url string) (*domain.ScrapeResult, error)
}

// Func adapts a function to Scraper.
type Func func(ctx context.Context, url string) (*domain.ScrapeResult, error)

func (f Func) Scrape(ctx context.Context, url string) (*domain.ScrapeResult, error) {
	return f(ctx, url)
}

const (
	DefaultUserAgent = "ListlyBot/1.0 (+https://listly.app/bot)"
	maxBodyBytes     = 10 << 20
)
