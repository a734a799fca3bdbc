package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/yourusername/overtake-analyser/internal/api"
	"github.com/yourusername/overtake-analyser/internal/grpcapi"
	"github.com/yourusername/overtake-analyser/internal/health"
	"github.com/yourusername/overtake-analyser/internal/scheduler"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API, gRPC, health checks and scheduled scenarios",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return serve(ctx)
	},
}

func serve(ctx context.Context) error {
	app, err := newApplication(ctx, true)
	if err != nil {
		return err
	}
	defer app.close()

	appLog.WithField("version", Version).Info("Overtake analyser starting")

	healthServer := health.NewServer(health.Config{
		ServiceName: "overtake",
		Version:     Version,
		Commit:      GitCommit,
		Port:        cfg.Server.HealthPort,
		Logger:      appLog,
	})
	if app.db != nil {
		healthServer.AddCheck("database", app.db.HealthCheck)
	}
	if app.publisher != nil {
		healthServer.AddCheck("publisher", func(ctx context.Context) error {
			if app.publisher.IsOpen() {
				return errors.New("circuit breaker open")
			}
			return nil
		})
	}

	apiServer := api.NewServer(api.Config{
		Port:           cfg.Server.HTTPPort,
		ReadTimeout:    time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second,
		RateLimitRPS:   cfg.Server.RateLimitRPS,
		MetricsEnabled: cfg.Metrics.Enabled,
		MetricsPath:    cfg.Metrics.Path,
	}, app.service, app.hub, appLog)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error { return healthServer.ListenAndServe(gctx) })
	g.Go(func() error { return apiServer.ListenAndServe(gctx) })

	if cfg.Server.GRPCPort > 0 {
		grpcServer := grpcapi.NewServer(app.service, appLog)
		g.Go(func() error { return grpcServer.ListenAndServe(gctx, cfg.Server.GRPCPort) })
	}

	if cfg.Schedule.Enabled {
		sched := scheduler.NewScheduler(app.service, appLog)
		for _, sc := range cfg.Schedule.Scenarios {
			if err := sched.AddScenario(sc); err != nil {
				return err
			}
		}
		g.Go(func() error { return sched.Run(gctx) })
	}

	healthServer.SetReady(true)
	err = g.Wait()
	appLog.Info("Overtake analyser stopped")
	return err
}
