package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/listly/listly-backend/internal/history"
	"github.com/listly/listly-backend/internal/logging"
	projectdomain "github.com/listly/listly-backend/internal/projects/domain"
	"github.com/listly/listly-backend/internal/scraping/domain"
	"github.com/listly/listly-backend/internal/scraping/extract"
	"github.com/listly/listly-backend/internal/scraping/scraper"
)

var tracer = otel.Tracer("github.com/listly/listly-backend/internal/scraping/service")

// Projects is the slice of the project service the pipeline drives.
type Projects interface {
	Transition(ctx context.Context, p *projectdomain.Project, to string, counts *projectdomain.Counts) (*projectdomain.Project, error)
}

// ItemStore persists extracted items. *repository.ItemRepository implements it.
type ItemStore interface {
	CreateMany(ctx context.Context, items []domain.ScrapedItem) error
	ReplaceForProject(ctx context.Context, projectID string, items []domain.ScrapedItem) error
}

// Recorder stores history entries. *history.Service implements it.
type Recorder interface {
	Record(ctx context.Context, e history.Entry)
}

type invalidator interface {
	Invalidate(ctx context.Context, url string) error
}

// ScrapeService runs a project's scrape: running, fetch, extract, store,
// completed. Any failure marks the project failed.
type ScrapeService struct {
	projects Projects
	items    ItemStore
	scraper  scraper.Scraper
	renderer scraper.Scraper
	history  Recorder
	timeout  time.Duration
	now      func() time.Time
}

type Option func(*ScrapeService)

// WithRenderer sets the scraper used for render_js projects.
func WithRenderer(r scraper.Scraper) Option {
	return func(s *ScrapeService) { s.renderer = r }
}

func WithTimeout(d time.Duration) Option {
	return func(s *ScrapeService) { s.timeout = d }
}

func WithClock(now func() time.Time) Option {
	return func(s *ScrapeService) { s.now = now }
}

func NewScrapeService(projects Projects, items ItemStore, sc scraper.Scraper, rec Recorder, opts ...Option) *ScrapeService {
	s := &ScrapeService{
		projects: projects,
		items:    items,
		scraper:  sc,
		history:  rec,
		timeout:  60 * time.Second,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run scrapes p.TargetURL and stores the items. It returns the project in
// its final state; on failure the error is returned along with the failed
// project so callers can still show it.
func (s *ScrapeService) Run(ctx context.Context, p *projectdomain.Project) (*projectdomain.Project, error) {
	return s.run(ctx, p, false)
}

// Rescrape reruns a completed or failed project, replacing its items.
// Pending and running projects are refused with ErrInvalidTransition.
func (s *ScrapeService) Rescrape(ctx context.Context, p *projectdomain.Project) (*projectdomain.Project, error) {
	if !projectdomain.IsTerminal(p.Status) {
		return p, fmt.Errorf("%w: project is %s", projectdomain.ErrInvalidTransition, p.Status)
	}
	return s.run(ctx, p, true)
}

func (s *ScrapeService) run(ctx context.Context, p *projectdomain.Project, rescrape bool) (*projectdomain.Project, error) {
	ctx, span := tracer.Start(ctx, "scrape.run")
	defer span.End()
	span.SetAttributes(
		attribute.String("project.id", p.ID),
		attribute.String("project.url", p.TargetURL),
		attribute.Bool("project.rescrape", rescrape),
	)

	log := logging.FromContext(ctx)

	running, err := s.projects.Transition(ctx, p, projectdomain.StatusRunning, &projectdomain.Counts{})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		err = fmt.Errorf("start scrape: %w", err)
		// Another run owns the project; leave it alone.
		if errors.Is(err, projectdomain.ErrInvalidTransition) {
			return p, err
		}
		return s.fail(ctx, p, err), err
	}
	log.LogInfo("scrape", "scrape started", zap.String("project_id", p.ID), zap.String("url", p.TargetURL))

	items, fellBack, err := s.fetchAndStore(ctx, running, rescrape)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return s.fail(ctx, running, err), err
	}

	n := len(items)
	done, err := s.projects.Transition(ctx, running, projectdomain.StatusCompleted, &projectdomain.Counts{Total: n, Scraped: n})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return s.fail(ctx, running, err), err
	}
	span.SetAttributes(attribute.Int("scrape.items", n))

	entry := history.Entry{
		UserID:    done.UserID,
		ProjectID: done.ID,
		Kind:      history.KindScrape,
		Status:    history.StatusCompleted,
		ItemCount: n,
	}
	if fellBack {
		entry.Detail = domain.ErrRendererDisabled.Error() + "; static page used"
	}
	s.history.Record(ctx, entry)
	log.LogInfo("scrape", "scrape completed", zap.String("project_id", done.ID), zap.Int("items", n))
	return done, nil
}

// fetchAndStore reports whether a render_js project fell back to the static
// scraper.
func (s *ScrapeService) fetchAndStore(ctx context.Context, p *projectdomain.Project, rescrape bool) ([]domain.ScrapedItem, bool, error) {
	scrapeCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	sc, pickErr := s.pick(p)
	fellBack := errors.Is(pickErr, domain.ErrRendererDisabled)
	if fellBack {
		logging.FromContext(ctx).LogWarn("scrape", "fetching static page",
			zap.String("project_id", p.ID), zap.Error(pickErr))
	}
	if rescrape {
		if inv, ok := sc.(invalidator); ok {
			_ = inv.Invalidate(scrapeCtx, p.TargetURL)
		}
	}

	res, err := sc.Scrape(scrapeCtx, p.TargetURL)
	if err != nil {
		return nil, fellBack, err
	}

	items := extract.BuildItems(extract.Input{
		ProjectID: p.ID,
		UserID:    p.UserID,
		SourceURL: p.TargetURL,
		Result:    res,
		DataTypes: p.DataTypes,
		Now:       s.now(),
	})

	if rescrape {
		err = s.items.ReplaceForProject(ctx, p.ID, items)
	} else {
		err = s.items.CreateMany(ctx, items)
	}
	if err != nil {
		return nil, fellBack, fmt.Errorf("store items: %w", err)
	}
	return items, fellBack, nil
}

// pick returns the renderer for render_js projects. Without one it returns
// the static scraper along with ErrRendererDisabled.
func (s *ScrapeService) pick(p *projectdomain.Project) (scraper.Scraper, error) {
	if !p.RenderJS {
		return s.scraper, nil
	}
	if s.renderer == nil {
		return s.scraper, domain.ErrRendererDisabled
	}
	return s.renderer, nil
}

// fail marks p failed. It runs on a context detached from the caller so
// a cancelled request still leaves the project in a terminal state.
func (s *ScrapeService) fail(ctx context.Context, p *projectdomain.Project, cause error) *projectdomain.Project {
	ctx = context.WithoutCancel(ctx)
	log := logging.FromContext(ctx)
	log.LogError("scrape", cause, zap.String("project_id", p.ID))

	s.history.Record(ctx, history.Entry{
		UserID:    p.UserID,
		ProjectID: p.ID,
		Kind:      history.KindScrape,
		Status:    history.StatusFailed,
		Detail:    cause.Error(),
	})

	failed, err := s.projects.Transition(ctx, p, projectdomain.StatusFailed, nil)
	if err != nil {
		log.LogError("mark_failed", err, zap.String("project_id", p.ID))
		return p
	}
	return failed
}

// SweepStale fails projects that have been running since before cutoff.
// It returns how many were marked failed.
func (s *ScrapeService) SweepStale(ctx context.Context, stale []projectdomain.Project) int {
	n := 0
	for i := range stale {
		p := stale[i]
		if p.Status != projectdomain.StatusRunning {
			continue
		}
		if _, err := s.projects.Transition(ctx, &p, projectdomain.StatusFailed, nil); err != nil {
			logging.FromContext(ctx).LogWarn("sweep_stale", "could not fail stale project",
				zap.String("project_id", p.ID), zap.Error(err))
			continue
		}
		s.history.Record(ctx, history.Entry{
			UserID:    p.UserID,
			ProjectID: p.ID,
			Kind:      history.KindScrape,
			Status:    history.StatusFailed,
			Detail:    "scrape timed out",
		})
		n++
	}
	return n
}
