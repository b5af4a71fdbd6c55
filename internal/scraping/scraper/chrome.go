package scraper

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/fetch"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"golang.org/x/time/rate"

	"github.com/listly/listly-backend/internal/scraping/domain"
	"github.com/listly/listly-backend/internal/weburl"
)

// ChromeRenderer renders pages in headless Chrome for projects that need
// JavaScript, then converts the DOM like PageFetcher does.
type ChromeRenderer struct {
	userAgent string
	timeout   time.Duration
	settle    time.Duration
	limiter   *rate.Limiter

	allowPrivate bool

	once        sync.Once
	allocCtx    context.Context
	allocCancel context.CancelFunc
}

func NewChromeRenderer(userAgent string, limiter *rate.Limiter) *ChromeRenderer {
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	return &ChromeRenderer{
		userAgent: userAgent,
		timeout:   45 * time.Second,
		settle:    1500 * time.Millisecond,
		limiter:   limiter,
	}
}

// AllowPrivateNetworks disables the private address filter on browser
// requests. Local tooling only.
func (r *ChromeRenderer) AllowPrivateNetworks() *ChromeRenderer {
	r.allowPrivate = true
	return r
}

func (r *ChromeRenderer) init() {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(r.userAgent),
	)
	r.allocCtx, r.allocCancel = chromedp.NewExecAllocator(context.Background(), opts...)
}

// Close stops the browser process.
func (r *ChromeRenderer) Close() {
	if r.allocCancel != nil {
		r.allocCancel()
	}
}

func (r *ChromeRenderer) Scrape(ctx context.Context, rawURL string) (*domain.ScrapeResult, error) {
	parse := weburl.NormalizePublic
	if r.allowPrivate {
		parse = weburl.Normalize
	}
	pageURL, err := parse(rawURL)
	if err != nil {
		return nil, err
	}
	if r.limiter != nil {
		if err := r.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}
	}
	r.once.Do(r.init)

	tabCtx, cancel := chromedp.NewContext(r.allocCtx)
	defer cancel()
	tabCtx, cancel = context.WithTimeout(tabCtx, r.timeout)
	defer cancel()

	// Stop the tab when the caller gives up.
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	var actions []chromedp.Action
	if !r.allowPrivate {
		r.filterRequests(tabCtx)
		actions = append(actions, fetch.Enable())
	}

	var html, finalURL string
	actions = append(actions,
		chromedp.Navigate(pageURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(r.settle),
		chromedp.Location(&finalURL),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	err = chromedp.Run(tabCtx, actions...)
	if err != nil {
		return nil, fmt.Errorf("chromedp rendering failed: %w", err)
	}
	if finalURL == "" {
		finalURL = pageURL
	}
	if len(html) > maxBodyBytes {
		return nil, domain.ErrBodyTooLarge
	}
	return FromHTML(finalURL, 200, []byte(html))
}

// filterRequests pauses every browser request (navigations, redirects,
// subresources) and fails the ones that resolve to a private address.
func (r *ChromeRenderer) filterRequests(tabCtx context.Context) {
	var mu sync.Mutex
	verdicts := make(map[string]error)

	chromedp.ListenTarget(tabCtx, func(ev interface{}) {
		paused, ok := ev.(*fetch.EventRequestPaused)
		if !ok {
			return
		}
		// Handlers must not block the event loop.
		go func() {
			execCtx := cdp.WithExecutor(tabCtx, chromedp.FromContext(tabCtx).Target)

			host := requestHost(paused.Request.URL)
			mu.Lock()
			verdict, seen := verdicts[host]
			mu.Unlock()
			if !seen {
				verdict = allowRequest(tabCtx, paused.Request.URL)
				mu.Lock()
				verdicts[host] = verdict
				mu.Unlock()
			}

			if verdict != nil {
				_ = fetch.FailRequest(paused.RequestID, network.ErrorReasonBlockedByClient).Do(execCtx)
				return
			}
			_ = fetch.ContinueRequest(paused.RequestID).Do(execCtx)
		}()
	})
}

func requestHost(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	return u.Scheme + "://" + u.Hostname()
}

// allowRequest lets inline schemes through and checks network hosts.
func allowRequest(ctx context.Context, rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return err
	}
	switch u.Scheme {
	case "data", "blob", "about":
		return nil
	case "http", "https", "ws", "wss":
		return checkPublicHost(ctx, u.Hostname())
	default:
		return fmt.Errorf("%w: scheme %q", domain.ErrPrivateAddress, u.Scheme)
	}
}
