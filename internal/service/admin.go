package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/teampulse/pulse-service/internal/apperrors"
	"github.com/teampulse/pulse-service/internal/cooldown"
	"github.com/teampulse/pulse-service/internal/domain"
	"github.com/teampulse/pulse-service/internal/report"
	"github.com/teampulse/pulse-service/internal/repository"
)

const (
	maxCooldownWeeks = 52

	defaultDeliveriesLimit = 50
	maxDeliveriesLimit     = 500
)

// AdminService covers the operational endpoints: cooldown schedules,
// opt-in flags and the delivery audit log.
type AdminService interface {
	UpsertCooldown(ctx context.Context, userID string, nextStart time.Time, durationWeeks int) (*domain.CooldownSchedule, error)
	GetCooldown(ctx context.Context, userID string) (*domain.CooldownSchedule, cooldown.Status, error)
	SetOptedIn(ctx context.Context, userID string, optedIn bool) (*domain.UserLink, error)
	RecentDeliveries(ctx context.Context, limit int) ([]domain.DeliveryLogEntry, error)
}

type AdminServiceImpl struct {
	log        *slog.Logger
	schedules  repository.ScheduleRepository
	links      repository.UserLinkRepository
	deliveries repository.DeliveryLogRepository
	cache      *report.Cache

	now func() time.Time
}

func NewAdminService(
	log *slog.Logger,
	schedules repository.ScheduleRepository,
	links repository.UserLinkRepository,
	deliveries repository.DeliveryLogRepository,
	cache *report.Cache,
) *AdminServiceImpl {
	return &AdminServiceImpl{
		log:        log,
		schedules:  schedules,
		links:      links,
		deliveries: deliveries,
		cache:      cache,
		now:        time.Now,
	}
}

func (s *AdminServiceImpl) UpsertCooldown(ctx context.Context, userID string, nextStart time.Time, durationWeeks int) (*domain.CooldownSchedule, error) {
	const op = "internal.service.admin.UpsertCooldown"
	log := s.log.With(slog.String("op", op), slog.String("user_id", userID))

	if durationWeeks < 1 || durationWeeks > maxCooldownWeeks {
		return nil, fmt.Errorf("%w: duration_weeks must be between 1 and %d", apperrors.ErrValidation, maxCooldownWeeks)
	}

	schedule := domain.CooldownSchedule{
		UserID:        userID,
		NextStart:     nextStart,
		DurationWeeks: durationWeeks,
		UpdatedAt:     s.now(),
	}

	stored, err := s.schedules.Upsert(ctx, schedule)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to store schedule: %w", op, err)
	}

	// Any cached report was built against the previous schedule.
	s.cache.Invalidate(userID)

	log.Info("cooldown schedule stored",
		slog.Time("next_start", stored.NextStart),
		slog.Int("duration_weeks", stored.DurationWeeks),
	)

	return stored, nil
}

func (s *AdminServiceImpl) GetCooldown(ctx context.Context, userID string) (*domain.CooldownSchedule, cooldown.Status, error) {
	const op = "internal.service.admin.GetCooldown"

	schedule, err := s.schedules.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, cooldown.Status{}, fmt.Errorf("%w: no cooldown schedule for user '%s'", apperrors.ErrNotFound, userID)
		}

		return nil, cooldown.Status{}, fmt.Errorf("%s: failed to get schedule: %w", op, err)
	}

	return schedule, cooldown.Compute(schedule.NextStart, schedule.DurationWeeks, s.now()), nil
}

func (s *AdminServiceImpl) SetOptedIn(ctx context.Context, userID string, optedIn bool) (*domain.UserLink, error) {
	const op = "internal.service.admin.SetOptedIn"
	log := s.log.With(slog.String("op", op), slog.String("user_id", userID))

	link, err := s.links.SetOptedIn(ctx, userID, optedIn)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: no link for user '%s'", apperrors.ErrNotFound, userID)
		}

		return nil, fmt.Errorf("%s: failed to set opt-in flag: %w", op, err)
	}

	log.Info("opt-in flag updated", slog.Bool("opted_in", link.OptedIn))

	return link, nil
}

// RecentDeliveries clamps the limit rather than rejecting it; the log is
// an operator convenience, not a paging API.
func (s *AdminServiceImpl) RecentDeliveries(ctx context.Context, limit int) ([]domain.DeliveryLogEntry, error) {
	const op = "internal.service.admin.RecentDeliveries"

	if limit <= 0 {
		limit = defaultDeliveriesLimit
	}
	if limit > maxDeliveriesLimit {
		limit = maxDeliveriesLimit
	}

	entries, err := s.deliveries.ListRecent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to list deliveries: %w", op, err)
	}

	return entries, nil
}
