package service

import (
	"context"
	"strings"
	"time"

	"github.com/listly/listly-backend/internal/projects/domain"
)

// Repository is the persistence the service needs. *repository.ProjectRepository implements it.
type Repository interface {
	Create(ctx context.Context, p *domain.Project) error
	Get(ctx context.Context, userID, id string) (*domain.Project, error)
	List(ctx context.Context, userID string) ([]domain.Project, error)
	ListStale(ctx context.Context, cutoff time.Time) ([]domain.Project, error)
	SetStatus(ctx context.Context, id, from, to string, counts *domain.Counts) (*domain.Project, error)
	Update(ctx context.Context, userID, id string, req domain.UpdateProjectRequest) (*domain.Project, error)
	Delete(ctx context.Context, userID, id string) (bool, error)
}

// StatusNotifier is told about every status change. Publishing is best effort.
type StatusNotifier interface {
	PublishStatus(ctx context.Context, p *domain.Project)
	PublishDeleted(ctx context.Context, userID, projectID string)
}

// ProjectService handles project-related business logic
type ProjectService struct {
	repo     Repository
	notifier StatusNotifier
}

// NewProjectService creates a new project service. notifier may be nil.
func NewProjectService(repo Repository, notifier StatusNotifier) *ProjectService {
	return &ProjectService{
		repo:     repo,
		notifier: notifier,
	}
}

// Create validates the form and stores a pending project
func (s *ProjectService) Create(ctx context.Context, req domain.CreateProjectRequest) (*domain.Project, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	p := &domain.Project{
		UserID:      req.UserID,
		Name:        req.Name,
		Description: req.Description,
		TargetURL:   req.TargetURL,
		Status:      domain.StatusPending,
		DataTypes:   req.DataTypes,
		RenderJS:    req.RenderJS,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Get returns one of the user's projects
func (s *ProjectService) Get(ctx context.Context, userID, id string) (*domain.Project, error) {
	return s.repo.Get(ctx, userID, id)
}

// List returns the user's projects matching query, and stats over all of them
func (s *ProjectService) List(ctx context.Context, userID, query string) ([]domain.Project, domain.Stats, error) {
	all, err := s.repo.List(ctx, userID)
	if err != nil {
		return nil, domain.Stats{}, err
	}
	return domain.FilterProjects(all, query), domain.ComputeStats(all), nil
}

// Update edits name and description
func (s *ProjectService) Update(ctx context.Context, userID, id string, req domain.UpdateProjectRequest) (*domain.Project, error) {
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, domain.ErrNameRequired
		}
		req.Name = &name
	}
	if req.Description != nil {
		desc := strings.TrimSpace(*req.Description)
		req.Description = &desc
	}
	return s.repo.Update(ctx, userID, id, req)
}

// Delete removes a project and its scraped items
func (s *ProjectService) Delete(ctx context.Context, userID, id string) error {
	ok, err := s.repo.Delete(ctx, userID, id)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrProjectNotFound
	}
	if s.notifier != nil {
		s.notifier.PublishDeleted(ctx, userID, id)
	}
	return nil
}

// Transition moves p to status to. The write is conditional on the stored
// status still being p.Status, so two runs cannot both claim a project.
func (s *ProjectService) Transition(ctx context.Context, p *domain.Project, to string, counts *domain.Counts) (*domain.Project, error) {
	if !domain.IsValidStatus(to) {
		return nil, domain.ErrInvalidStatus
	}
	if !domain.CanTransition(p.Status, to) {
		return nil, domain.ErrInvalidTransition
	}

	updated, err := s.repo.SetStatus(ctx, p.ID, p.Status, to, counts)
	if err != nil {
		return nil, err
	}
	if s.notifier != nil {
		s.notifier.PublishStatus(ctx, updated)
	}
	return updated, nil
}

// ListStale returns projects that have been running since before cutoff
func (s *ProjectService) ListStale(ctx context.Context, cutoff time.Time) ([]domain.Project, error) {
	return s.repo.ListStale(ctx, cutoff)
}
