// Package projectstest provides an in-memory project repository for tests.
package projectstest

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/listly/listly-backend/internal/projects/domain"
)

// MemoryRepo mirrors repository.ProjectRepository semantics in memory.
type MemoryRepo struct {
	mu       sync.Mutex
	projects map[string]domain.Project
	seq      int

	// Now drives created_at/updated_at; defaults to time.Now.
	Now func() time.Time
	// FailOn makes the named method return an error.
	FailOn map[string]error
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{projects: make(map[string]domain.Project), FailOn: map[string]error{}}
}

func (m *MemoryRepo) now() time.Time {
	if m.Now != nil {
		return m.Now()
	}
	return time.Now()
}

func (m *MemoryRepo) Create(_ context.Context, p *domain.Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.FailOn["Create"]; err != nil {
		return err
	}

	if p.ID == "" {
		m.seq++
		p.ID = fmt.Sprintf("proj_%d", m.seq)
	}
	if _, ok := m.projects[p.ID]; ok {
		return domain.ErrProjectExists
	}
	now := m.now()
	p.CreatedAt, p.UpdatedAt = now, now
	m.projects[p.ID] = *p
	return nil
}

func (m *MemoryRepo) Get(_ context.Context, userID, id string) (*domain.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.projects[id]
	if !ok || p.UserID != userID {
		return nil, domain.ErrProjectNotFound
	}
	return &p, nil
}

func (m *MemoryRepo) List(_ context.Context, userID string) ([]domain.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.FailOn["List"]; err != nil {
		return nil, err
	}
	out := []domain.Project{}
	for _, p := range m.projects {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *MemoryRepo) ListStale(_ context.Context, cutoff time.Time) ([]domain.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []domain.Project{}
	for _, p := range m.projects {
		if p.Status == domain.StatusRunning && p.UpdatedAt.Before(cutoff) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.Before(out[j].UpdatedAt) })
	return out, nil
}

func (m *MemoryRepo) SetStatus(_ context.Context, id, from, to string, counts *domain.Counts) (*domain.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.FailOn["SetStatus:"+to]; err != nil {
		return nil, err
	}
	p, ok := m.projects[id]
	if !ok || p.Status != from {
		return nil, domain.ErrInvalidTransition
	}
	p.Status = to
	if counts != nil {
		p.TotalItems, p.ScrapedItems = counts.Total, counts.Scraped
	}
	p.UpdatedAt = m.now()
	m.projects[id] = p
	return &p, nil
}

func (m *MemoryRepo) Update(_ context.Context, userID, id string, req domain.UpdateProjectRequest) (*domain.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.projects[id]
	if !ok || p.UserID != userID {
		return nil, domain.ErrProjectNotFound
	}
	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	p.UpdatedAt = m.now()
	m.projects[id] = p
	return &p, nil
}

func (m *MemoryRepo) Delete(_ context.Context, userID, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.projects[id]
	if !ok || p.UserID != userID {
		return false, nil
	}
	delete(m.projects, id)
	return true, nil
}

// Put stores p as-is, bypassing Create.
func (m *MemoryRepo) Put(p domain.Project) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.projects[p.ID] = p
}

// Snapshot returns the stored copy of id.
func (m *MemoryRepo) Snapshot(id string) (domain.Project, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.projects[id]
	return p, ok
}
