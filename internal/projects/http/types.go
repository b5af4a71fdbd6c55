package http

import (
	"context"

	"github.com/listly/listly-backend/internal/projects/domain"
	"github.com/listly/listly-backend/internal/projects/service"
)

// Runner performs the scrape of a stored project. The scrape service implements it.
type Runner interface {
	Run(ctx context.Context, p *domain.Project) (*domain.Project, error)
	Rescrape(ctx context.Context, p *domain.Project) (*domain.Project, error)
}

// Handler bundles the dependencies for projects HTTP endpoints.
type Handler struct {
	svc    *service.ProjectService
	runner Runner
}

// New creates the handler. With a nil runner created projects stay pending.
func New(svc *service.ProjectService, runner Runner) *Handler {
	return &Handler{svc: svc, runner: runner}
}

type createReq struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	TargetURL   string    `json:"target_url"`
	DataTypes   *[]string `json:"data_types"`
	RenderJS    bool      `json:"render_js"`
}

type updateReq struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

const noDataWarning = "No data found matching your selected criteria"
