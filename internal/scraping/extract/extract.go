// Package extract turns a scraped page into item rows.
package extract

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	projectdomain "github.com/listly/listly-backend/internal/projects/domain"
	"github.com/listly/listly-backend/internal/scraping/domain"
)

const (
	maxParagraphs = 10
	maxLinks      = 20
	maxImages     = 10
	maxMatches    = 10
	titleRunes    = 100
	minPhoneLen   = 10
)

var (
	headingPrefix = regexp.MustCompile(`^#+\s*`)
	emailPattern  = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Z|a-z]{2,}\b`)
	phonePattern  = regexp.MustCompile(`(\+?\d{1,4}[-.\s]?)?\(?\d{1,4}\)?[-.\s]?\d{1,4}[-.\s]?\d{1,9}`)
	pricePattern  = regexp.MustCompile(`\$\d+(?:,\d{3})*(?:\.\d{2})?|\d+(?:,\d{3})*(?:\.\d{2})?\s*(?:USD|EUR|GBP|\$)`)
)

// Input is everything BuildItems needs for one scrape.
type Input struct {
	ProjectID string
	UserID    string
	SourceURL string
	Result    *domain.ScrapeResult
	DataTypes []projectdomain.DataType
	Now       time.Time
}

// BuildItems produces rows for the selected data types in a fixed order:
// text, links, images, emails, phones, prices, then one metadata row.
func BuildItems(in Input) []domain.ScrapedItem {
	if in.Result == nil {
		return nil
	}
	if in.Now.IsZero() {
		in.Now = time.Now()
	}
	b := &builder{in: in, ms: in.Now.UnixMilli()}

	if projectdomain.Has(in.DataTypes, projectdomain.DataText) {
		b.headings()
		b.paragraphs()
	}
	if projectdomain.Has(in.DataTypes, projectdomain.DataLinks) {
		b.links()
	}
	if projectdomain.Has(in.DataTypes, projectdomain.DataImages) {
		b.images()
	}
	if projectdomain.Has(in.DataTypes, projectdomain.DataEmails) {
		for i, email := range UniqueMatches(emailPattern, in.Result.Markdown, 0) {
			if i == maxMatches {
				break
			}
			b.add(fmt.Sprintf("email_%d_%d", b.ms, i), email, "Email address found on webpage",
				map[string]any{"type": "email", "email": email}, func(it *domain.ScrapedItem) { it.Email = ptr(email) })
		}
	}
	if projectdomain.Has(in.DataTypes, projectdomain.DataPhones) {
		for i, phone := range UniqueMatches(phonePattern, in.Result.Markdown, minPhoneLen) {
			if i == maxMatches {
				break
			}
			b.add(fmt.Sprintf("phone_%d_%d", b.ms, i), phone, "Phone number found on webpage",
				map[string]any{"type": "phone", "phone": phone}, func(it *domain.ScrapedItem) { it.Phone = ptr(phone) })
		}
	}
	if projectdomain.Has(in.DataTypes, projectdomain.DataPrices) {
		for i, price := range UniqueMatches(pricePattern, in.Result.Markdown, 0) {
			if i == maxMatches {
				break
			}
			b.add(fmt.Sprintf("price_%d_%d", b.ms, i), price, "Price information found on webpage",
				map[string]any{"type": "price", "price": price}, func(it *domain.ScrapedItem) { it.Price = ptr(price) })
		}
	}

	if md := in.Result.Metadata; md != nil {
		b.add(fmt.Sprintf("meta_%d", b.ms), orDefault(md.Title, "Page Metadata"), orDefault(md.Description, "Page metadata information"),
			map[string]any{"type": "metadata", "metadata": md}, nil)
	}
	return b.items
}

type builder struct {
	in    Input
	ms    int64
	items []domain.ScrapedItem
}

func (b *builder) add(id, title, description string, custom map[string]any, set func(*domain.ScrapedItem)) {
	raw, err := json.Marshal(custom)
	if err != nil {
		raw = []byte("{}")
	}
	it := domain.ScrapedItem{
		ID:          id,
		ProjectID:   b.in.ProjectID,
		UserID:      b.in.UserID,
		URL:         b.in.SourceURL,
		Title:       title,
		Description: description,
		CustomData:  string(raw),
		ScrapedAt:   b.in.Now,
	}
	if set != nil {
		set(&it)
	}
	b.items = append(b.items, it)
}

func (b *builder) headings() {
	for i, h := range b.in.Result.Extract.Headings {
		if strings.TrimSpace(h) == "" {
			continue
		}
		b.add(fmt.Sprintf("text_%d_%d", b.ms, i), headingPrefix.ReplaceAllString(h, ""), "Text content extracted from webpage",
			map[string]any{"type": "text", "content": h, "source": "heading"}, nil)
	}
}

func (b *builder) paragraphs() {
	for i, p := range Paragraphs(b.in.Result.Markdown, maxParagraphs) {
		b.add(fmt.Sprintf("para_%d_%d", b.ms, i), Truncate(p, titleRunes), "Paragraph content extracted from webpage",
			map[string]any{"type": "text", "content": p, "source": "paragraph"}, nil)
	}
}

func (b *builder) links() {
	links := b.in.Result.Links
	if len(links) > maxLinks {
		links = links[:maxLinks]
	}
	for i, l := range links {
		if l.URL == "" || l.Text == "" {
			continue
		}
		raw, err := json.Marshal([]domain.Link{l})
		if err != nil {
			continue
		}
		encoded := string(raw)
		b.add(fmt.Sprintf("link_%d_%d", b.ms, i), l.Text, "Link to: "+l.URL,
			map[string]any{"type": "link", "href": l.URL, "text": l.Text}, func(it *domain.ScrapedItem) { it.Links = &encoded })
	}
}

func (b *builder) images() {
	n := 0
	for i, img := range b.in.Result.Extract.Images {
		if n == maxImages {
			break
		}
		if strings.TrimSpace(img.Src) == "" {
			continue
		}
		n++
		src := img.Src
		b.add(fmt.Sprintf("image_%d_%d", b.ms, i), orDefault(strings.TrimSpace(img.Alt), "Untitled Image"), "Image found on webpage",
			map[string]any{"type": "image", "src": src, "alt": img.Alt}, func(it *domain.ScrapedItem) { it.ImageURL = ptr(src) })
	}
}

// Paragraphs splits markdown on blank lines and keeps up to limit blocks
// that are not blank and do not start with a heading marker.
func Paragraphs(markdown string, limit int) []string {
	var out []string
	for _, block := range strings.Split(markdown, "\n\n") {
		if strings.TrimSpace(block) == "" || strings.HasPrefix(block, "#") {
			continue
		}
		out = append(out, block)
		if len(out) == limit {
			break
		}
	}
	return out
}

// UniqueMatches returns the distinct matches of re in s in first-seen order,
// dropping matches shorter than minLen.
func UniqueMatches(re *regexp.Regexp, s string, minLen int) []string {
	seen := map[string]bool{}
	var out []string
	for _, m := range re.FindAllString(s, -1) {
		if seen[m] {
			continue
		}
		seen[m] = true
		if len(m) < minLen {
			continue
		}
		out = append(out, m)
	}
	return out
}

// Truncate cuts s to n runes and appends "..." when it was longer.
func Truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "..."
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func ptr(s string) *string { return &s }
