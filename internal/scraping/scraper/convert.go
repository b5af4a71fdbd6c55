package scraper

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/listly/listly-backend/internal/scraping/domain"
	"github.com/listly/listly-backend/internal/weburl"
)

const blockSelector = "h1, h2, h3, h4, h5, h6, p, li, blockquote, pre"

// FromHTML converts an HTML document into a ScrapeResult. pageURL resolves
// relative links and image sources.
func FromHTML(pageURL string, status int, body []byte) (*domain.ScrapeResult, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	doc.Find("script, style, noscript, template, svg").Remove()

	res := &domain.ScrapeResult{
		Metadata: pageMetadata(doc, pageURL, status),
	}

	var blocks []string
	doc.Find(blockSelector).Each(func(_ int, s *goquery.Selection) {
		if s.ParentsFiltered("p, li, blockquote, pre").Length() > 0 {
			return
		}
		text := collapse(s.Text())
		if text == "" {
			return
		}
		switch tag := goquery.NodeName(s); tag {
		case "h1", "h2", "h3", "h4", "h5", "h6":
			line := strings.Repeat("#", int(tag[1]-'0')) + " " + text
			res.Extract.Headings = append(res.Extract.Headings, line)
			blocks = append(blocks, line)
		case "li":
			blocks = append(blocks, "- "+text)
		case "blockquote":
			blocks = append(blocks, "> "+text)
		default:
			blocks = append(blocks, text)
		}
	})
	res.Markdown = strings.Join(blocks, "\n\n")

	seen := map[string]bool{}
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		abs, err := weburl.Resolve(pageURL, href)
		if err != nil || seen[abs] {
			return
		}
		seen[abs] = true
		text := collapse(s.Text())
		if text == "" {
			text = collapse(s.AttrOr("title", s.AttrOr("aria-label", "")))
		}
		res.Links = append(res.Links, domain.Link{URL: abs, Text: text})
	})

	seenImg := map[string]bool{}
	doc.Find("img").Each(func(_ int, s *goquery.Selection) {
		src := s.AttrOr("src", "")
		if strings.TrimSpace(src) == "" || strings.HasPrefix(src, "data:") {
			src = s.AttrOr("data-src", "")
		}
		if strings.TrimSpace(src) == "" || strings.HasPrefix(src, "data:") {
			return
		}
		abs, err := weburl.Resolve(pageURL, src)
		if err != nil || seenImg[abs] {
			return
		}
		seenImg[abs] = true
		res.Extract.Images = append(res.Extract.Images, domain.Image{Src: abs, Alt: collapse(s.AttrOr("alt", ""))})
	})

	return res, nil
}

func pageMetadata(doc *goquery.Document, pageURL string, status int) *domain.Metadata {
	md := &domain.Metadata{
		Title:         collapse(doc.Find("head title").First().Text()),
		Description:   metaContent(doc, `meta[name="description"]`),
		Keywords:      metaContent(doc, `meta[name="keywords"]`),
		Language:      strings.TrimSpace(doc.Find("html").AttrOr("lang", "")),
		OGTitle:       metaContent(doc, `meta[property="og:title"]`),
		OGDescription: metaContent(doc, `meta[property="og:description"]`),
		SourceURL:     pageURL,
		StatusCode:    status,
	}
	if img := metaContent(doc, `meta[property="og:image"]`); img != "" {
		if abs, err := weburl.Resolve(pageURL, img); err == nil {
			md.OGImage = abs
		}
	}
	if md.Title == "" {
		md.Title = md.OGTitle
	}
	if md.Description == "" {
		md.Description = md.OGDescription
	}
	return md
}

func metaContent(doc *goquery.Document, selector string) string {
	return collapse(doc.Find(selector).First().AttrOr("content", ""))
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
