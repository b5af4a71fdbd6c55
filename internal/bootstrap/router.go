package bootstrap

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	httpapi "github.com/listly/listly-backend/internal/api/http"
	"github.com/listly/listly-backend/internal/api/http/middleware"
	"github.com/listly/listly-backend/internal/auth"
	authmw "github.com/listly/listly-backend/internal/auth/middleware"
	"github.com/listly/listly-backend/internal/export"
	"github.com/listly/listly-backend/internal/history"
	projecthttp "github.com/listly/listly-backend/internal/projects/http"
	scrapinghttp "github.com/listly/listly-backend/internal/scraping/http"
	"github.com/listly/listly-backend/internal/users"
)

type RouterDeps struct {
	ServiceName string
	Version     string
	CORSOrigins []string
	// Verifier checks Firebase ID tokens. When nil, the X-User-Id header is
	// trusted in development and test; elsewhere every API call is rejected.
	Verifier authmw.TokenVerifier
	App      *App
}

func BuildRouter(dep RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     dep.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Request-Id", "X-User-Id", "X-User-Email", "X-User-Name"},
		ExposeHeaders:    []string{"Content-Disposition", "X-Request-Id", "X-Export-Items", "X-Export-Key"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	app := dep.App

	var redisPinger httpapi.Pinger
	if app.Redis != nil {
		redisPinger = RedisPinger{Client: app.Redis}
	}
	var dbPinger httpapi.Pinger
	if app.DB != nil {
		dbPinger = app.DB
	}
	httpapi.NewHealthHandler(dep.ServiceName, dep.Version, dbPinger, redisPinger).RegisterRoutes(r)

	api := r.Group("/api/v1")
	switch {
	case dep.Verifier != nil:
		api.Use(authmw.FirebaseAuthMiddleware(dep.Verifier))
	case app.Config != nil && app.Config.IsDevelopment():
		api.Use(auth.OptionalUser())
	}
	var ensurer auth.UserEnsurer
	if app.Users != nil {
		ensurer = app.Users
	}
	api.Use(auth.RequireUser(ensurer))

	users.NewHandler(app.Users).Register(api)
	history.NewHandler(app.History).Register(api)

	projectsGroup := api.Group("/projects")
	var runner projecthttp.Runner
	if app.Scrapes != nil {
		runner = app.Scrapes
	}
	projecthttp.New(app.Projects, runner).Register(projectsGroup)
	scrapinghttp.New(app.Projects, app.Items, app.Subscriber()).Register(projectsGroup)
	export.NewHandler(app.Exports).Register(projectsGroup)

	return r
}
