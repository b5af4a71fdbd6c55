package scraper

import (
	"bytes"

	"github.com/saintfish/chardet"
	"golang.org/x/net/html/charset"
)

var utf8BOM = []byte("\xef\xbb\xbf")

// toUTF8 converts body to UTF-8. The encoding comes from the BOM, the
// Content-Type charset or a <meta> prescan, in that order; chardet only
// guesses when none of those is present.
func toUTF8(body []byte, contentType string) ([]byte, error) {
	if len(body) == 0 {
		return body, nil
	}
	enc, name, certain := charset.DetermineEncoding(body, contentType)
	if !certain && name != "utf-8" {
		if r, err := chardet.NewTextDetector().DetectBest(body); err == nil && r.Confidence >= 50 {
			if e, n := charset.Lookup(r.Charset); e != nil {
				enc, name = e, n
			}
		}
	}
	if name == "utf-8" {
		return bytes.TrimPrefix(body, utf8BOM), nil
	}
	return enc.NewDecoder().Bytes(body)
}
