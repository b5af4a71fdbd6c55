// Package weburl validates and normalizes page URLs with a WHATWG-compliant parser.
package weburl

import (
	"errors"
	"net/url"
	"strings"

	whatwgUrl "github.com/nlnwa/whatwg-url/url"
)

var ErrInvalidURL = errors.New("invalid URL")

var parser = whatwgUrl.NewParser(whatwgUrl.WithPercentEncodeSinglePercentSign())

// Normalize parses raw and returns its serialized form. Only absolute
// http(s) URLs with a host are accepted.
func Normalize(raw string) (string, error) {
	u, err := Parse(raw)
	if err != nil {
		return "", err
	}
	return u.String(), nil
}

// Parse returns a net/url view of raw after WHATWG normalization.
func Parse(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ErrInvalidURL
	}
	parsed, err := parser.Parse(raw)
	if err != nil {
		return nil, ErrInvalidURL
	}
	u, err := url.Parse(parsed.Href(false))
	if err != nil {
		return nil, ErrInvalidURL
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, ErrInvalidURL
	}
	return u, nil
}

// Resolve resolves href against base. Non-http(s) results (mailto:, javascript:)
// return an error.
func Resolve(base, href string) (string, error) {
	ref, err := parser.ParseRef(base, strings.TrimSpace(href))
	if err != nil {
		return "", ErrInvalidURL
	}
	return Normalize(ref.Href(false))
}
