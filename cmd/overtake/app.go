package main

import (
	"context"
	"fmt"
	"time"

	"github.com/yourusername/overtake-analyser/internal/api"
	"github.com/yourusername/overtake-analyser/internal/cache"
	"github.com/yourusername/overtake-analyser/internal/database"
	"github.com/yourusername/overtake-analyser/internal/overtaking"
	"github.com/yourusername/overtake-analyser/internal/publisher"
	"github.com/yourusername/overtake-analyser/internal/report"
	"github.com/yourusername/overtake-analyser/internal/repository"
	"github.com/yourusername/overtake-analyser/internal/service"
)

// application wires the configured components together
type application struct {
	db        *database.DB
	repos     *repository.Repositories
	cache     *cache.ResultCache
	publisher *publisher.WebhookPublisher
	hub       *api.Hub
	service   *service.AnalysisService
	reporter  *report.Reporter
}

func newApplication(ctx context.Context, withStream bool) (*application, error) {
	base, err := overtaking.FromConfig(&cfg.Simulation)
	if err != nil {
		return nil, fmt.Errorf("invalid simulation defaults: %w", err)
	}

	app := &application{reporter: report.NewReporter(cfg.Report.Precision)}

	if cfg.Database.Enabled {
		connectCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()

		app.db, err = database.Initialize(connectCtx, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		app.repos, err = repository.NewRepositories(app.db)
		if err != nil {
			app.close()
			return nil, fmt.Errorf("failed to initialize repositories: %w", err)
		}
		appLog.Info("Database connection established")
	} else {
		app.repos = repository.NewMemoryRepositories()
	}

	if cfg.Cache.Enabled {
		app.cache = cache.NewResultCache(cfg.CacheTTL(), cfg.Cache.MaxSize)
	}

	if cfg.Publisher.Enabled {
		app.publisher, err = publisher.NewWebhookPublisher(publisher.FromConfig(&cfg.Publisher), appLog)
		if err != nil {
			app.close()
			return nil, fmt.Errorf("failed to create publisher: %w", err)
		}
	}

	if withStream {
		app.hub = api.NewHub(appLog)
	}

	deps := service.Dependencies{
		Repository: app.repos.AnalysisRun,
		Cache:      app.cache,
	}
	if app.publisher != nil {
		deps.Publisher = app.publisher
		deps.PublishTimeout = time.Duration(cfg.Publisher.TimeoutSeconds*(cfg.Publisher.MaxRetries+1)) * time.Second
	}
	if app.hub != nil {
		deps.Broadcaster = app.hub
	}

	app.service = service.NewAnalysisService(overtaking.ParamsFromConfig(base), cfg.Simulation.Seed, deps, appLog)
	return app, nil
}

func (a *application) close() {
	if a.service != nil {
		a.service.Wait()
	}
	if a.publisher != nil {
		a.publisher.Close()
	}
	if a.db != nil {
		a.db.Close()
	}
}
