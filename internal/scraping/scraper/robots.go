package scraper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/temoto/robotstxt"
)

const robotsTTL = time.Hour

type robotsEntry struct {
	data    *robotstxt.RobotsData
	fetched time.Time
}

// robotsCache keeps parsed robots.txt per scheme+host.
type robotsCache struct {
	mu      sync.Mutex
	entries map[string]robotsEntry
	client  *http.Client
	agent   string
	now     func() time.Time
}

func newRobotsCache(client *http.Client, agent string) *robotsCache {
	return &robotsCache{
		entries: make(map[string]robotsEntry),
		client:  client,
		agent:   agent,
		now:     time.Now,
	}
}

// Allowed reports whether the agent may fetch u. Unreachable robots.txt
// files allow everything; robotstxt maps 4xx to allow-all and 5xx to disallow-all.
func (c *robotsCache) Allowed(ctx context.Context, u *url.URL) (bool, error) {
	key := u.Scheme + "://" + u.Host

	c.mu.Lock()
	e, ok := c.entries[key]
	c.mu.Unlock()

	if !ok || c.now().Sub(e.fetched) > robotsTTL {
		data, err := c.fetch(ctx, key+"/robots.txt")
		if err != nil {
			return false, err
		}
		e = robotsEntry{data: data, fetched: c.now()}
		c.mu.Lock()
		c.entries[key] = e
		c.mu.Unlock()
	}

	if e.data == nil {
		return true, nil
	}
	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}
	if u.RawQuery != "" {
		path += "?" + u.RawQuery
	}
	return e.data.TestAgent(path, c.agent), nil
}

func (c *robotsCache) fetch(ctx context.Context, robotsURL string) (*robotstxt.RobotsData, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create robots request: %w", err)
	}
	req.Header.Set("User-Agent", c.agent)

	resp, err := c.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, nil
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 512<<10))
	if err != nil {
		return nil, nil
	}
	data, err := robotstxt.FromStatusAndBytes(resp.StatusCode, body)
	if err != nil {
		return nil, nil
	}
	return data, nil
}
