// Package export encodes a project's scraped items as CSV, JSON or Excel.
package export

import (
	"errors"
	"strings"
	"time"

	"github.com/kennygrant/sanitize"

	"github.com/listly/listly-backend/internal/scraping/domain"
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatXLSX Format = "xlsx"
)

var ErrUnsupportedFormat = errors.New("unsupported export format")

// ParseFormat accepts csv, json and xlsx (or "excel"), case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "csv", "":
		return FormatCSV, nil
	case "json":
		return FormatJSON, nil
	case "xlsx", "excel":
		return FormatXLSX, nil
	}
	return "", ErrUnsupportedFormat
}

func (f Format) ContentType() string {
	switch f {
	case FormatJSON:
		return "application/json"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "text/csv; charset=utf-8"
	}
}

// Columns is the header shared by CSV and Excel.
var Columns = []string{"id", "type", "title", "description", "url", "email", "phone", "price", "image_url", "scraped_at"}

// row renders one item for the spreadsheet formats. Scraped text is
// untrusted, so cells a spreadsheet would evaluate as formulas are escaped.
func row(it domain.ScrapedItem) []string {
	kind, _ := domain.DecodeObject(it.CustomData)["type"].(string)
	cells := []string{
		it.ID,
		kind,
		it.Title,
		it.Description,
		it.URL,
		deref(it.Email),
		deref(it.Phone),
		deref(it.Price),
		deref(it.ImageURL),
		it.ScrapedAt.UTC().Format(time.RFC3339),
	}
	for i, c := range cells {
		cells[i] = escapeFormula(c)
	}
	return cells
}

func escapeFormula(s string) string {
	if s == "" {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r':
		return "'" + s
	}
	return s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// Encode renders items in format f.
func Encode(f Format, items []domain.ScrapedItem) ([]byte, error) {
	switch f {
	case FormatCSV:
		return encodeCSV(items)
	case FormatJSON:
		return encodeJSON(items)
	case FormatXLSX:
		return encodeXLSX(items)
	}
	return nil, ErrUnsupportedFormat
}

// FileName turns a project name into a safe download name.
func FileName(projectName string, f Format) string {
	base := sanitize.BaseName(strings.TrimSpace(projectName))
	base = strings.Trim(base, "-.")
	if base == "" {
		base = "scraped-data"
	}
	return base + "." + string(f)
}
