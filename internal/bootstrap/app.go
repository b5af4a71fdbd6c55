package bootstrap

import (
	"context"
	"database/sql"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/listly/listly-backend/config"
	"github.com/listly/listly-backend/internal/export"
	"github.com/listly/listly-backend/internal/history"
	"github.com/listly/listly-backend/internal/logging"
	projectrepo "github.com/listly/listly-backend/internal/projects/repository"
	projectservice "github.com/listly/listly-backend/internal/projects/service"
	"github.com/listly/listly-backend/internal/scraping/cache"
	cronjob "github.com/listly/listly-backend/internal/scraping/cron"
	"github.com/listly/listly-backend/internal/scraping/events"
	scrapinghttp "github.com/listly/listly-backend/internal/scraping/http"
	"github.com/listly/listly-backend/internal/scraping/repository"
	"github.com/listly/listly-backend/internal/scraping/scraper"
	scrapeservice "github.com/listly/listly-backend/internal/scraping/service"
	"github.com/listly/listly-backend/internal/storage/postgres"
	"github.com/listly/listly-backend/internal/users"
)

// App holds the connections and services shared by the api and the worker.
type App struct {
	Config *config.Config

	DB    *pgxpool.Pool
	SQL   *sql.DB
	Redis *redis.Client // nil when redis is unavailable
	Bus   *events.Bus   // nil when redis is unavailable

	Users    *users.Repo
	Items    *repository.ItemRepository
	Projects *projectservice.ProjectService
	Scrapes  *scrapeservice.ScrapeService
	History  *history.Service
	Exports  *export.Service
	Sweeper  *cronjob.Scheduler

	closers []func()
}

// NewApp connects to postgres (required) and redis (optional) and wires
// every service.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	log := logging.L()
	a := &App{Config: cfg}

	pool, err := OpenDB(ctx, DBOptions{
		DSN:      postgres.DSN(&cfg.Database),
		MaxConns: int32(cfg.Database.MaxConns),
		AppName:  cfg.App.ServiceName,
	})
	if err != nil {
		return nil, err
	}
	a.DB = pool
	a.closers = append(a.closers, pool.Close)

	if cfg.Database.AutoMigrate {
		if err := Migrate(ctx, pool); err != nil {
			a.Close()
			return nil, err
		}
		log.Info("schema applied")
	}

	sqlDB, err := postgres.NewConnection(ctx, &cfg.Database)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.SQL = sqlDB
	a.closers = append(a.closers, func() { _ = sqlDB.Close() })

	if cfg.Redis.Addr != "" {
		rdb, err := OpenRedis(ctx, cfg.Redis)
		if err != nil {
			log.Warn("redis unavailable, running without cache and events", zap.Error(err))
		} else {
			a.Redis = rdb
			a.Bus = events.NewBus(rdb)
			a.closers = append(a.closers, func() { _ = rdb.Close() })
		}
	}

	a.Users = users.NewRepo(pool)
	a.Items = repository.NewItemRepository(sqlDB)
	a.History = history.NewService(history.NewRepo(pool))

	var notifier projectservice.StatusNotifier
	if a.Bus != nil {
		notifier = a.Bus
	}
	repo := projectrepo.NewProjectRepository(pool)
	a.Projects = projectservice.NewProjectService(repo, notifier)

	base, renderer := a.buildScrapers(cfg.Scraper)
	opts := []scrapeservice.Option{scrapeservice.WithTimeout(cfg.Scraper.Timeout)}
	if renderer != nil {
		opts = append(opts, scrapeservice.WithRenderer(renderer))
	}
	a.Scrapes = scrapeservice.NewScrapeService(a.Projects, a.Items, base, a.History, opts...)
	a.Sweeper = cronjob.NewScheduler(a.Projects, a.Scrapes, cfg.Scraper.StaleAfter)

	var store export.ObjectStore
	if cfg.Export.S3Bucket != "" {
		s3Store, err := export.NewS3Store(ctx, cfg.Export.S3Bucket, cfg.Export.S3Region, cfg.Export.S3Prefix)
		if err != nil {
			log.Warn("export bucket unavailable, exports are download only", zap.Error(err))
		} else {
			store = s3Store
		}
	}
	a.Exports = export.NewService(a.Projects, a.Items, store, a.History)

	return a, nil
}

// buildScrapers picks the static scraper (remote service or direct fetch)
// and the optional headless renderer, both behind the redis cache.
func (a *App) buildScrapers(cfg config.ScraperConfig) (scraper.Scraper, scraper.Scraper) {
	var limiter *rate.Limiter
	if cfg.RatePerSec > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSec), max(cfg.Burst, 1))
	}

	var base scraper.Scraper
	variant := "http"
	if cfg.RemoteURL != "" {
		base = scraper.NewRemoteClient(cfg.RemoteURL, cfg.RemoteKey, limiter)
		variant = "remote"
	} else {
		base = scraper.NewPageFetcher(cfg.UserAgent, scraper.WithLimiter(limiter))
	}

	var renderer scraper.Scraper
	if cfg.ChromeAllow {
		chrome := scraper.NewChromeRenderer(cfg.UserAgent, limiter)
		a.closers = append(a.closers, chrome.Close)
		renderer = chrome
	}

	if a.Redis != nil && cfg.CacheTTL > 0 {
		base = cache.New(base, a.Redis, cfg.CacheTTL, variant)
		if renderer != nil {
			renderer = cache.New(renderer, a.Redis, cfg.CacheTTL, "chrome")
		}
	}
	return base, renderer
}

// Close releases connections in reverse order of opening.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

// Subscriber returns the event bus, or nil when redis is unavailable.
func (a *App) Subscriber() scrapinghttp.Subscriber {
	if a.Bus == nil {
		return nil
	}
	return a.Bus
}
