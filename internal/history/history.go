// Package history records scrape and export runs per user.
package history

import (
	"errors"
	"time"
)

const (
	KindScrape = "scrape"
	KindExport = "export"

	StatusCompleted = "completed"
	StatusFailed    = "failed"

	DefaultLimit = 50
	MaxLimit     = 200
)

var ErrInvalidKind = errors.New("invalid history kind")

// Entry is one row of the history table.
type Entry struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	ProjectID string    `json:"project_id"`
	Kind      string    `json:"kind"`
	Status    string    `json:"status"`
	ItemCount int       `json:"item_count"`
	Format    string    `json:"format,omitempty"`
	Detail    string    `json:"detail,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Filter narrows List. Empty Kind means all kinds.
type Filter struct {
	Kind  string
	Limit int
}

func validKind(kind string) bool {
	return kind == "" || kind == KindScrape || kind == KindExport
}

// ClampLimit applies the default and the maximum page size.
func ClampLimit(n int) int {
	switch {
	case n <= 0:
		return DefaultLimit
	case n > MaxLimit:
		return MaxLimit
	default:
		return n
	}
}
