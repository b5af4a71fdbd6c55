package weburl

import (
	"errors"
	"net"
	"net/url"
	"strings"
)

var ErrPrivateHost = errors.New("private network address")

var privateNets = func() []*net.IPNet {
	cidrs := []string{
		"0.0.0.0/8",
		"10.0.0.0/8",
		"100.64.0.0/10",
		"127.0.0.0/8",
		"169.254.0.0/16",
		"172.16.0.0/12",
		"192.0.0.0/24",
		"192.168.0.0/16",
		"198.18.0.0/15",
		"::/128",
		"::1/128",
		"fc00::/7",
		"fe80::/10",
	}
	out := make([]*net.IPNet, 0, len(cidrs))
	for _, c := range cidrs {
		_, n, err := net.ParseCIDR(c)
		if err != nil {
			panic(err)
		}
		out = append(out, n)
	}
	return out
}()

// IsPrivateIP reports whether ip is loopback, link-local (cloud metadata
// included), RFC 1918, CGNAT, unique-local or unspecified.
func IsPrivateIP(ip net.IP) bool {
	if ip == nil {
		return true
	}
	if v4 := ip.To4(); v4 != nil {
		ip = v4
	}
	if ip.IsLoopback() || ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() || ip.IsUnspecified() {
		return true
	}
	for _, n := range privateNets {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}

// IsPrivateHost reports whether host is localhost or a literal private IP.
// Names that need DNS are not resolved here; the dialer checks those.
func IsPrivateHost(host string) bool {
	h := strings.ToLower(strings.TrimSuffix(strings.Trim(host, "[]"), "."))
	if h == "localhost" || strings.HasSuffix(h, ".localhost") {
		return true
	}
	if ip := net.ParseIP(h); ip != nil {
		return IsPrivateIP(ip)
	}
	return false
}

// ParsePublic is Parse plus a rejection of localhost and literal private IPs.
func ParsePublic(raw string) (*url.URL, error) {
	u, err := Parse(raw)
	if err != nil {
		return nil, err
	}
	if IsPrivateHost(u.Hostname()) {
		return nil, ErrPrivateHost
	}
	return u, nil
}

// NormalizePublic is Normalize restricted to public hosts.
func NormalizePublic(raw string) (string, error) {
	u, err := ParsePublic(raw)
	if err != nil {
		return "", err
	}
	return u.String(), nil
}
