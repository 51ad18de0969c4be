// Package scheduler drives the periodic jobs: the weekly report run and
// the nightly identity sync. Schedules are standard five-field cron
// expressions, evaluated in the configured timezone.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/teampulse/pulse-service/internal/config"
	"github.com/teampulse/pulse-service/internal/domain"
	"github.com/teampulse/pulse-service/pkg/logger/sl"
)

// jobTimeout bounds a single scheduled run. A wedged run is cancelled so
// the next firing starts clean.
const jobTimeout = 15 * time.Minute

type DeliveryRunner interface {
	DeliverToAll(ctx context.Context) ([]domain.DeliveryResult, *domain.DeliverySummary, error)
}

type SyncRunner interface {
	SyncUsers(ctx context.Context) (*domain.SyncSummary, error)
}

type Scheduler struct {
	log      *slog.Logger
	cron     *cron.Cron
	delivery DeliveryRunner
	sync     SyncRunner
}

// New validates both cron expressions and the timezone up front: a
// schedule that can never fire should stop the process at startup, not
// surface as silence weeks later.
func New(cfg config.Schedule, log *slog.Logger, delivery DeliveryRunner, sync SyncRunner) (*Scheduler, error) {
	location, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid schedule timezone '%s': %w", cfg.Timezone, err)
	}

	s := &Scheduler{
		log:      log,
		cron:     cron.New(cron.WithLocation(location)),
		delivery: delivery,
		sync:     sync,
	}

	if _, err := s.cron.AddFunc(cfg.WeeklyReport, s.runWeeklyReport); err != nil {
		return nil, fmt.Errorf("invalid weekly report schedule '%s': %w", cfg.WeeklyReport, err)
	}

	if _, err := s.cron.AddFunc(cfg.UserSync, s.runUserSync); err != nil {
		return nil, fmt.Errorf("invalid user sync schedule '%s': %w", cfg.UserSync, err)
	}

	return s, nil
}

// Start launches the cron loop in its own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()

	s.log.Info("scheduler started", slog.Int("jobs", len(s.cron.Entries())))
}

// Stop halts scheduling and waits for any running job to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()

	s.log.Info("scheduler stopped")
}

// runWeeklyReport fires the delivery pipeline. Job failures are logged
// and dropped; the next scheduled run is unaffected.
func (s *Scheduler) runWeeklyReport() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	s.log.Info("scheduled weekly report run starting")

	_, summary, err := s.delivery.DeliverToAll(ctx)
	if err != nil {
		s.log.Error("scheduled weekly report run failed", sl.Err(err))
		return
	}

	s.log.Info("scheduled weekly report run finished",
		slog.Int("total", summary.Total),
		slog.Int("succeeded", summary.Succeeded),
		slog.Int("failed", summary.Failed),
		slog.Int("skipped", summary.Skipped),
	)
}

func (s *Scheduler) runUserSync() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	s.log.Info("scheduled user sync starting")

	summary, err := s.sync.SyncUsers(ctx)
	if err != nil {
		s.log.Error("scheduled user sync failed", sl.Err(err))
		return
	}

	s.log.Info("scheduled user sync finished",
		slog.Int("created", summary.Created),
		slog.Int("updated", summary.Updated),
		slog.Int("deactivated", summary.Deactivated),
	)
}
