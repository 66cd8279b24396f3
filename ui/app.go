package ui

import (
	"context"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"tableplot/adapters/profiler"
	"tableplot/internal/config"
	"tableplot/ports"
)

// App represents the plot service application
type App struct {
	router   *chi.Mux
	config   *config.Config
	profiler ports.Profiler
	server   *http.Server
}

// NewApp creates the application and wires its routes
func NewApp(cfg *config.Config) *App {
	app := &App{
		router:   chi.NewRouter(),
		config:   cfg,
		profiler: profiler.New(),
	}

	app.setupMiddleware()
	app.setupRoutes()

	return app
}

// setupMiddleware configures HTTP middleware
func (a *App) setupMiddleware() {
	a.router.Use(middleware.Logger)
	a.router.Use(middleware.Recoverer)
	a.router.Use(middleware.Compress(5))
}

// setupRoutes configures the application routes
func (a *App) setupRoutes() {
	a.router.Get("/healthz", a.handleHealthz)

	// API endpoints
	a.router.Post("/api/plots", a.handleBuildPlot)
	a.router.Post("/api/datasets/profile", a.handleProfileDataset)
}

// Router exposes the handler, primarily for tests
func (a *App) Router() http.Handler {
	return a.router
}

// Start starts the HTTP server and blocks until it stops
func (a *App) Start() error {
	addr := ":" + a.config.Server.Port
	a.server = &http.Server{Addr: addr, Handler: a.router}
	log.Printf("Starting tableplot server on %s", addr)
	return a.server.ListenAndServe()
}

// Shutdown stops the server gracefully
func (a *App) Shutdown(ctx context.Context) error {
	if a.server == nil {
		return nil
	}
	return a.server.Shutdown(ctx)
}
