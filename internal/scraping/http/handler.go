package http

import (
	"context"
	"time"

	projectdomain "github.com/listly/listly-backend/internal/projects/domain"
	"github.com/listly/listly-backend/internal/scraping/domain"
	"github.com/listly/listly-backend/internal/scraping/events"
)

type ProjectGetter interface {
	Get(ctx context.Context, userID, id string) (*projectdomain.Project, error)
}

type ItemLister interface {
	ListByProject(ctx context.Context, userID, projectID string) ([]domain.ScrapedItem, error)
}

// Subscriber delivers project events. *events.Bus implements it.
type Subscriber interface {
	Subscribe(ctx context.Context, projectID string) (<-chan events.Event, error)
}

// Handler serves the data preview and the status stream.
type Handler struct {
	projects   ProjectGetter
	items      ItemLister
	subscriber Subscriber

	keepAlive    time.Duration
	pollInterval time.Duration
}

// New creates the handler. subscriber may be nil, in which case the stream
// polls the project row.
func New(projects ProjectGetter, items ItemLister, subscriber Subscriber) *Handler {
	return &Handler{
		projects:     projects,
		items:        items,
		subscriber:   subscriber,
		keepAlive:    15 * time.Second,
		pollInterval: time.Second,
	}
}
