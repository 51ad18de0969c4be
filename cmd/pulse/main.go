package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/teampulse/pulse-service/internal/config"
	"github.com/teampulse/pulse-service/internal/github"
	"github.com/teampulse/pulse-service/internal/linear"
	"github.com/teampulse/pulse-service/internal/report"
	"github.com/teampulse/pulse-service/internal/repository/postgres"
	"github.com/teampulse/pulse-service/internal/scheduler"
	"github.com/teampulse/pulse-service/internal/service"
	"github.com/teampulse/pulse-service/internal/slack"
	myhttp "github.com/teampulse/pulse-service/internal/transport/http"

	"github.com/teampulse/pulse-service/pkg/logger/sl"
	"github.com/teampulse/pulse-service/pkg/logger/slogpretty"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %v", err)
	}

	log := slogpretty.SetupLogger(cfg.Env)

	log.Info("starting pulse-service", slog.String("env", cfg.Env))

	errChan := make(chan error, 1)

	db, err := postgres.Connect(cfg.Postgres, log)
	if err != nil {
		return fmt.Errorf("failed to init db: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("db close failed", sl.Err(err))
		}
	}()

	links := postgres.NewUserLinkRepository(db, log)
	schedules := postgres.NewScheduleRepository(db, log)
	deliveries := postgres.NewDeliveryLogRepository(db, log)

	slackClient := slack.NewClient(cfg.Slack, log)
	linearClient := linear.NewClient(cfg.Linear, log)

	// Source-host enrichment is optional; without a token the sync
	// pipeline simply leaves the logins empty.
	var sourceHost service.SourceHostClient
	if cfg.GitHub.Token != "" {
		sourceHost = github.NewClient(cfg.GitHub, log)
	}

	cache := report.NewCache()

	reportService := service.NewReportService(log, linearClient, slackClient, links, schedules, deliveries, cache)
	deliveryService := service.NewDeliveryService(log, reportService, links, deliveries)
	syncService := service.NewSyncService(log, slackClient, linearClient, sourceHost, links)
	adminService := service.NewAdminService(log, schedules, links, deliveries, cache)

	sched, err := scheduler.New(cfg.Schedule, log, deliveryService, syncService)
	if err != nil {
		return fmt.Errorf("failed to init scheduler: %v", err)
	}

	sched.Start()
	defer sched.Stop()

	srv := myhttp.NewServer(log, reportService, deliveryService, syncService, adminService)
	httpServer := &http.Server{
		Addr:    net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
		Handler: srv.Routes(),
	}

	go startServer(log, httpServer, errChan)

	select {
	case err := <-errChan:
		return fmt.Errorf("http server error: %v", err)

	case <-ctx.Done():
		log.Info("stopping server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("error shuting down http server: %v", err)
	}

	return nil
}

func startServer(log *slog.Logger, httpServer *http.Server, errChan chan error) {
	defer close(errChan)

	log.Info("service started", slog.String("addr", httpServer.Addr))

	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		errChan <- fmt.Errorf("error listening and serving: %v", err)
	}
}
