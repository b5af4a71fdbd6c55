package scraper

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"syscall"
	"time"

	"github.com/listly/listly-backend/internal/scraping/domain"
	"github.com/listly/listly-backend/internal/weburl"
)

// guardAddress rejects dials to private addresses. It runs after DNS
// resolution, for every connection, so redirects and rebinding are covered.
func guardAddress(network, address string, _ syscall.RawConn) error {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return fmt.Errorf("%w: %s", domain.ErrPrivateAddress, address)
	}
	if weburl.IsPrivateIP(net.ParseIP(host)) {
		return fmt.Errorf("%w: %s", domain.ErrPrivateAddress, host)
	}
	return nil
}

// newGuardedClient returns a client whose dialer refuses private addresses.
// Proxies are disabled: a proxy dial would bypass the check.
func newGuardedClient(timeout time.Duration) *http.Client {
	dialer := &net.Dialer{
		Timeout:   10 * time.Second,
		KeepAlive: 30 * time.Second,
		Control:   guardAddress,
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = nil
	transport.DialContext = dialer.DialContext
	return &http.Client{Timeout: timeout, Transport: transport}
}

// checkPublicHost resolves host and fails when any address is private.
// Used where the dial itself cannot be hooked (headless Chrome).
func checkPublicHost(ctx context.Context, host string) error {
	if weburl.IsPrivateHost(host) {
		return fmt.Errorf("%w: %s", domain.ErrPrivateAddress, host)
	}
	if ip := net.ParseIP(host); ip != nil {
		return nil
	}
	addrs, err := net.DefaultResolver.LookupIPAddr(ctx, host)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", host, err)
	}
	for _, a := range addrs {
		if weburl.IsPrivateIP(a.IP) {
			return fmt.Errorf("%w: %s resolves to %s", domain.ErrPrivateAddress, host, a.IP)
		}
	}
	return nil
}
