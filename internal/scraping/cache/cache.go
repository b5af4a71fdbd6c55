// Package cache keeps recent scrape results in Redis so repeated scrapes of
// the same page within the TTL skip the network.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/listly/listly-backend/internal/logging"
	"github.com/listly/listly-backend/internal/scraping/domain"
	"github.com/listly/listly-backend/internal/scraping/scraper"
	"github.com/listly/listly-backend/internal/weburl"
)

const (
	keyPrefix  = "listly:scrape:" // listly:scrape:{variant}:{xxhash(url)}
	DefaultTTL = 10 * time.Minute
)

// CachedScraper wraps a Scraper with a Redis read-through cache.
// Cache failures are logged and fall through to the wrapped scraper.
type CachedScraper struct {
	next    scraper.Scraper
	client  *redis.Client
	ttl     time.Duration
	variant string
}

// New wraps next. variant separates results of different scrapers
// (e.g. "page" and "chrome") for the same URL.
func New(next scraper.Scraper, client *redis.Client, ttl time.Duration, variant string) *CachedScraper {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &CachedScraper{next: next, client: client, ttl: ttl, variant: variant}
}

// Key returns the cache key for rawURL.
func (c *CachedScraper) Key(rawURL string) string {
	if u, err := weburl.Normalize(rawURL); err == nil {
		rawURL = u
	}
	return keyPrefix + c.variant + ":" + strconv.FormatUint(xxhash.Sum64String(rawURL), 16)
}

func (c *CachedScraper) Scrape(ctx context.Context, url string) (*domain.ScrapeResult, error) {
	log := logging.FromContext(ctx)
	key := c.Key(url)

	data, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var res domain.ScrapeResult
		if err := json.Unmarshal(data, &res); err == nil {
			log.Zap().Debug("scrape cache hit", zap.String("url", url))
			return &res, nil
		}
		log.LogWarn("scrape_cache", "dropping undecodable cache entry", zap.String("key", key))
	case errors.Is(err, redis.Nil):
	default:
		log.LogWarn("scrape_cache", "cache read failed", zap.Error(err))
	}

	res, err := c.next.Scrape(ctx, url)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(res); err == nil {
		if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
			log.LogWarn("scrape_cache", "cache write failed", zap.Error(err))
		}
	}
	return res, nil
}

// Invalidate drops the cached result for url. Rescrapes call it so the user
// gets a fresh page.
func (c *CachedScraper) Invalidate(ctx context.Context, url string) error {
	return c.client.Del(ctx, c.Key(url)).Err()
}
