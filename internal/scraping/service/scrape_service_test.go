package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listly/listly-backend/internal/history"
	projectdomain "github.com/listly/listly-backend/internal/projects/domain"
	"github.com/listly/listly-backend/internal/projects/projectstest"
	projectservice "github.com/listly/listly-backend/internal/projects/service"
	"github.com/listly/listly-backend/internal/scraping/domain"
	"github.com/listly/listly-backend/internal/scraping/scraper"
	"github.com/listly/listly-backend/internal/scraping/service"
)

type fakeItems struct {
	mu       sync.Mutex
	created  []domain.ScrapedItem
	replaced map[string][]domain.ScrapedItem
	err      error
}

func (f *fakeItems) CreateMany(_ context.Context, items []domain.ScrapedItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.created = append(f.created, items...)
	return nil
}

func (f *fakeItems) ReplaceForProject(_ context.Context, projectID string, items []domain.ScrapedItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if f.replaced == nil {
		f.replaced = map[string][]domain.ScrapedItem{}
	}
	f.replaced[projectID] = items
	return nil
}

type fakeRecorder struct {
	mu      sync.Mutex
	entries []history.Entry
}

func (f *fakeRecorder) Record(_ context.Context, e history.Entry) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, e)
}

type cachingScraper struct {
	scraper.Func
	invalidated []string
}

func (c *cachingScraper) Invalidate(_ context.Context, url string) error {
	c.invalidated = append(c.invalidated, url)
	return nil
}

var fixedNow = time.UnixMilli(1700000000000)

func page(md string) scraper.Func {
	return func(ctx context.Context, url string) (*domain.ScrapeResult, error) {
		return &domain.ScrapeResult{Markdown: md, Metadata: &domain.Metadata{Title: "Shop"}}, nil
	}
}

type fixture struct {
	repo     *projectstest.MemoryRepo
	projects *projectservice.ProjectService
	items    *fakeItems
	rec      *fakeRecorder
}

func newFixture() *fixture {
	repo := projectstest.NewMemoryRepo()
	return &fixture{
		repo:     repo,
		projects: projectservice.NewProjectService(repo, nil),
		items:    &fakeItems{},
		rec:      &fakeRecorder{},
	}
}

func (f *fixture) create(t *testing.T, types ...projectdomain.DataType) *projectdomain.Project {
	t.Helper()
	p, err := f.projects.Create(context.Background(), projectdomain.CreateProjectRequest{
		UserID:    "user123",
		Name:      "Shop",
		TargetURL: "https://shop.example.com",
		DataTypes: types,
	})
	require.NoError(t, err)
	return p
}

func TestScrapeService_Run_Completes(t *testing.T) {
	f := newFixture()
	svc := service.NewScrapeService(f.projects, f.items, page("Write to sales@shop.example.com\n\nPrices from $9.99"), f.rec,
		service.WithClock(func() time.Time { return fixedNow }))
	p := f.create(t, projectdomain.DataEmails, projectdomain.DataPrices)

	done, err := svc.Run(context.Background(), p)
	require.NoError(t, err)

	assert.Equal(t, projectdomain.StatusCompleted, done.Status)
	assert.Equal(t, 3, done.ScrapedItems, "email, price and metadata rows")
	assert.Equal(t, 3, done.TotalItems)
	require.Len(t, f.items.created, 3)
	assert.Equal(t, "email_1700000000000_0", f.items.created[0].ID)
	assert.Equal(t, "user123", f.items.created[0].UserID)

	stored, _ := f.repo.Snapshot(p.ID)
	assert.Equal(t, projectdomain.StatusCompleted, stored.Status)

	require.Len(t, f.rec.entries, 1)
	assert.Equal(t, history.StatusCompleted, f.rec.entries[0].Status)
	assert.Equal(t, 3, f.rec.entries[0].ItemCount)
}

func TestScrapeService_Run_ZeroItems(t *testing.T) {
	f := newFixture()
	empty := scraper.Func(func(ctx context.Context, url string) (*domain.ScrapeResult, error) {
		return &domain.ScrapeResult{}, nil
	})
	svc := service.NewScrapeService(f.projects, f.items, empty, f.rec)

	done, err := svc.Run(context.Background(), f.create(t, projectdomain.DataEmails))
	require.NoError(t, err)
	assert.Equal(t, projectdomain.StatusCompleted, done.Status)
	assert.Equal(t, 0, done.ScrapedItems)
	assert.Empty(t, f.items.created)
}

func TestScrapeService_Run_ScrapeFails(t *testing.T) {
	f := newFixture()
	boom := errors.New("connection refused")
	failing := scraper.Func(func(ctx context.Context, url string) (*domain.ScrapeResult, error) {
		return nil, boom
	})
	svc := service.NewScrapeService(f.projects, f.items, failing, f.rec)

	out, err := svc.Run(context.Background(), f.create(t, projectdomain.DataText))
	assert.ErrorIs(t, err, boom)
	require.NotNil(t, out)
	assert.Equal(t, projectdomain.StatusFailed, out.Status)

	require.Len(t, f.rec.entries, 1)
	assert.Equal(t, history.StatusFailed, f.rec.entries[0].Status)
	assert.Equal(t, "connection refused", f.rec.entries[0].Detail)
}

func TestScrapeService_Run_StoreFails(t *testing.T) {
	f := newFixture()
	f.items.err = errors.New("tx aborted")
	svc := service.NewScrapeService(f.projects, f.items, page("hello"), f.rec)

	out, err := svc.Run(context.Background(), f.create(t, projectdomain.DataText))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store items")
	assert.Equal(t, projectdomain.StatusFailed, out.Status)
}

func TestScrapeService_Run_CancelledRequestStillFails(t *testing.T) {
	f := newFixture()
	slow := scraper.Func(func(ctx context.Context, url string) (*domain.ScrapeResult, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})
	svc := service.NewScrapeService(f.projects, f.items, slow, f.rec, service.WithTimeout(20*time.Millisecond))

	p := f.create(t, projectdomain.DataText)
	out, err := svc.Run(context.Background(), p)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, projectdomain.StatusFailed, out.Status)
}

func TestScrapeService_Run_AlreadyRunning(t *testing.T) {
	f := newFixture()
	svc := service.NewScrapeService(f.projects, f.items, page("x"), f.rec)
	p := f.create(t, projectdomain.DataText)
	f.repo.Put(projectdomain.Project{ID: p.ID, UserID: p.UserID, Status: projectdomain.StatusRunning})
	p.Status = projectdomain.StatusRunning

	_, err := svc.Run(context.Background(), p)
	assert.ErrorIs(t, err, projectdomain.ErrInvalidTransition)
	assert.Empty(t, f.rec.entries)
}

func TestScrapeService_Run_StartFailsMarksFailed(t *testing.T) {
	f := newFixture()
	f.repo.FailOn["SetStatus:running"] = errors.New("connection reset")
	called := false
	sc := scraper.Func(func(ctx context.Context, url string) (*domain.ScrapeResult, error) {
		called = true
		return &domain.ScrapeResult{}, nil
	})
	svc := service.NewScrapeService(f.projects, f.items, sc, f.rec)

	p := f.create(t, projectdomain.DataText)
	out, err := svc.Run(context.Background(), p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
	assert.False(t, called)
	assert.Equal(t, projectdomain.StatusFailed, out.Status)

	stored, _ := f.repo.Snapshot(p.ID)
	assert.Equal(t, projectdomain.StatusFailed, stored.Status, "project must not stay pending")
	require.Len(t, f.rec.entries, 1)
	assert.Equal(t, history.StatusFailed, f.rec.entries[0].Status)
}

func TestScrapeService_RenderJS(t *testing.T) {
	f := newFixture()
	var used string
	static := scraper.Func(func(ctx context.Context, url string) (*domain.ScrapeResult, error) {
		used = "static"
		return &domain.ScrapeResult{}, nil
	})
	chrome := scraper.Func(func(ctx context.Context, url string) (*domain.ScrapeResult, error) {
		used = "chrome"
		return &domain.ScrapeResult{}, nil
	})

	p := f.create(t, projectdomain.DataText)
	p.RenderJS = true
	f.repo.Put(*p)

	_, err := service.NewScrapeService(f.projects, f.items, static, f.rec).Run(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, "static", used, "falls back without a renderer")
	require.Len(t, f.rec.entries, 1)
	assert.Contains(t, f.rec.entries[0].Detail, domain.ErrRendererDisabled.Error())

	p2 := f.create(t, projectdomain.DataText)
	p2.RenderJS = true
	f.repo.Put(*p2)
	_, err = service.NewScrapeService(f.projects, f.items, static, f.rec, service.WithRenderer(chrome)).Run(context.Background(), p2)
	require.NoError(t, err)
	assert.Equal(t, "chrome", used)
	require.Len(t, f.rec.entries, 2)
	assert.Empty(t, f.rec.entries[1].Detail)
}

func TestScrapeService_Rescrape(t *testing.T) {
	f := newFixture()
	sc := &cachingScraper{Func: page("fresh paragraph")}
	svc := service.NewScrapeService(f.projects, f.items, sc, f.rec)

	p := f.create(t, projectdomain.DataText)
	done, err := svc.Run(context.Background(), p)
	require.NoError(t, err)

	again, err := svc.Rescrape(context.Background(), done)
	require.NoError(t, err)
	assert.Equal(t, projectdomain.StatusCompleted, again.Status)
	assert.Equal(t, []string{p.TargetURL}, sc.invalidated)
	assert.Len(t, f.items.replaced[p.ID], 2)
}

func TestScrapeService_Rescrape_RequiresFinishedProject(t *testing.T) {
	f := newFixture()
	called := false
	sc := scraper.Func(func(ctx context.Context, url string) (*domain.ScrapeResult, error) {
		called = true
		return &domain.ScrapeResult{}, nil
	})
	svc := service.NewScrapeService(f.projects, f.items, sc, f.rec)

	pending := f.create(t, projectdomain.DataText)
	out, err := svc.Rescrape(context.Background(), pending)
	assert.ErrorIs(t, err, projectdomain.ErrInvalidTransition)
	assert.Equal(t, projectdomain.StatusPending, out.Status)

	running := f.create(t, projectdomain.DataText)
	running.Status = projectdomain.StatusRunning
	f.repo.Put(*running)
	_, err = svc.Rescrape(context.Background(), running)
	assert.ErrorIs(t, err, projectdomain.ErrInvalidTransition)

	assert.False(t, called)
	assert.Empty(t, f.rec.entries)
	stored, _ := f.repo.Snapshot(pending.ID)
	assert.Equal(t, projectdomain.StatusPending, stored.Status)
}

func TestScrapeService_SweepStale(t *testing.T) {
	f := newFixture()
	svc := service.NewScrapeService(f.projects, f.items, page(""), f.rec)

	f.repo.Put(projectdomain.Project{ID: "a", UserID: "u1", Status: projectdomain.StatusRunning})
	f.repo.Put(projectdomain.Project{ID: "b", UserID: "u1", Status: projectdomain.StatusCompleted})

	n := svc.SweepStale(context.Background(), []projectdomain.Project{
		{ID: "a", UserID: "u1", Status: projectdomain.StatusRunning},
		{ID: "b", UserID: "u1", Status: projectdomain.StatusCompleted},
		{ID: "gone", UserID: "u1", Status: projectdomain.StatusRunning},
	})
	assert.Equal(t, 1, n)

	a, _ := f.repo.Snapshot("a")
	assert.Equal(t, projectdomain.StatusFailed, a.Status)
	require.Len(t, f.rec.entries, 1)
	assert.Equal(t, "a", f.rec.entries[0].ProjectID)
}
