package domain

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// ScrapeResult is what a Scraper returns for a single page.
type ScrapeResult struct {
	Markdown string    `json:"markdown"`
	Metadata *Metadata `json:"metadata,omitempty"`
	Links    []Link    `json:"links,omitempty"`
	Extract  Extract   `json:"extract"`
}

// Metadata describes the page. Fields the page does not provide stay empty.
//
// Raw keeps the object exactly as a remote scrape service sent it, unknown
// and camelCase keys included. When set it is what gets serialized.
type Metadata struct {
	Title         string `json:"title,omitempty"`
	Description   string `json:"description,omitempty"`
	Language      string `json:"language,omitempty"`
	Keywords      string `json:"keywords,omitempty"`
	OGTitle       string `json:"og_title,omitempty"`
	OGDescription string `json:"og_description,omitempty"`
	OGImage       string `json:"og_image,omitempty"`
	SourceURL     string `json:"source_url,omitempty"`
	StatusCode    int    `json:"status_code,omitempty"`

	Raw map[string]any `json:"-"`
}

type metadataFields Metadata

func (m Metadata) MarshalJSON() ([]byte, error) {
	if m.Raw != nil {
		return json.Marshal(m.Raw)
	}
	return json.Marshal(metadataFields(m))
}

// UnmarshalJSON accepts snake_case and camelCase keys and keeps the whole
// object in Raw.
func (m *Metadata) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*m = Metadata{
		Title:         stringField(raw, "title"),
		Description:   stringField(raw, "description"),
		Language:      stringField(raw, "language", "lang"),
		Keywords:      stringField(raw, "keywords"),
		OGTitle:       stringField(raw, "og_title", "ogTitle"),
		OGDescription: stringField(raw, "og_description", "ogDescription"),
		OGImage:       stringField(raw, "og_image", "ogImage"),
		SourceURL:     stringField(raw, "source_url", "sourceURL", "sourceUrl", "url"),
		StatusCode:    intField(raw, "status_code", "statusCode"),
		Raw:           raw,
	}
	return nil
}

func stringField(raw map[string]any, keys ...string) string {
	for _, k := range keys {
		switch v := raw[k].(type) {
		case string:
			if v != "" {
				return v
			}
		case []any:
			parts := make([]string, 0, len(v))
			for _, p := range v {
				if s, ok := p.(string); ok && s != "" {
					parts = append(parts, s)
				}
			}
			if len(parts) > 0 {
				return strings.Join(parts, ", ")
			}
		}
	}
	return ""
}

func intField(raw map[string]any, keys ...string) int {
	for _, k := range keys {
		switch v := raw[k].(type) {
		case float64:
			return int(v)
		case string:
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
	}
	return 0
}

type Link struct {
	URL  string `json:"url"`
	Text string `json:"text"`
}

type Image struct {
	Src string `json:"src"`
	Alt string `json:"alt,omitempty"`
}

// Extract holds structured pieces pulled out of the page besides markdown.
type Extract struct {
	Headings []string `json:"headings,omitempty"`
	Images   []Image  `json:"images,omitempty"`
}

// ScrapedItem is one row of extracted data. CustomData and Links hold JSON text.
type ScrapedItem struct {
	ID          string    `json:"id"`
	ProjectID   string    `json:"project_id"`
	UserID      string    `json:"user_id"`
	URL         string    `json:"url"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	ImageURL    *string   `json:"image_url"`
	Price       *string   `json:"price"`
	Email       *string   `json:"email"`
	Phone       *string   `json:"phone"`
	Links       *string   `json:"links"`
	CustomData  string    `json:"custom_data"`
	ScrapedAt   time.Time `json:"scraped_at"`
}
