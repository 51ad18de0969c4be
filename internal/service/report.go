package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/teampulse/pulse-service/internal/apperrors"
	"github.com/teampulse/pulse-service/internal/cooldown"
	"github.com/teampulse/pulse-service/internal/domain"
	"github.com/teampulse/pulse-service/internal/report"
	"github.com/teampulse/pulse-service/internal/repository"
	"github.com/teampulse/pulse-service/pkg/logger/sl"
)

type ReportService interface {
	Generate(ctx context.Context, userID string) (*report.Result, error)
	Send(ctx context.Context, userID string) (*domain.DeliveryResult, error)
}

type ReportServiceImpl struct {
	log        *slog.Logger
	tracker    TrackerClient
	messenger  MessagingClient
	links      repository.UserLinkRepository
	schedules  repository.ScheduleRepository
	deliveries repository.DeliveryLogRepository
	cache      *report.Cache

	now func() time.Time

	// orgKey memoizes the tracker workspace key used for deep links.
	mu     sync.Mutex
	orgKey string
}

func NewReportService(
	log *slog.Logger,
	tracker TrackerClient,
	messenger MessagingClient,
	links repository.UserLinkRepository,
	schedules repository.ScheduleRepository,
	deliveries repository.DeliveryLogRepository,
	cache *report.Cache,
) *ReportServiceImpl {
	return &ReportServiceImpl{
		log:        log,
		tracker:    tracker,
		messenger:  messenger,
		links:      links,
		schedules:  schedules,
		deliveries: deliveries,
		cache:      cache,
		now:        time.Now,
	}
}

// Generate builds the current report for one recipient, serving from the
// cache when a fresh entry exists.
func (s *ReportServiceImpl) Generate(ctx context.Context, userID string) (*report.Result, error) {
	const op = "internal.service.report.Generate"

	link, err := s.links.GetBySlackID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: no link for user '%s'", apperrors.ErrNotFound, userID)
		}

		return nil, fmt.Errorf("%s: failed to get user link: %w", op, err)
	}

	return s.generateForLink(ctx, link)
}

// Send generates (or reuses) the report and delivers it as a direct
// message. Every attempt past the opt-in gate lands in the delivery log,
// failed ones included.
func (s *ReportServiceImpl) Send(ctx context.Context, userID string) (*domain.DeliveryResult, error) {
	const op = "internal.service.report.Send"
	log := s.log.With(slog.String("op", op), slog.String("user_id", userID))

	link, err := s.links.GetBySlackID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: no link for user '%s'", apperrors.ErrNotFound, userID)
		}

		return nil, fmt.Errorf("%s: failed to get user link: %w", op, err)
	}

	if !link.OptedIn {
		return nil, &apperrors.OptedOutError{UserID: userID}
	}

	result, err := s.generateForLink(ctx, link)
	if err != nil {
		s.recordDelivery(ctx, domain.DeliveryLogEntry{
			UserID:      userID,
			Detail:      err.Error(),
			DeliveredAt: s.now(),
		})

		return nil, err
	}

	messageID, err := s.messenger.SendDirectMessage(ctx, userID, result.Rendered)
	if err != nil {
		err = fmt.Errorf("%s: failed to send report: %w", op, err)

		s.recordDelivery(ctx, domain.DeliveryLogEntry{
			UserID:      userID,
			Detail:      err.Error(),
			IssueCount:  result.IssueCount,
			InCooldown:  result.Cooldown.InCooldown,
			DeliveredAt: s.now(),
		})

		return nil, err
	}

	log.Info("report delivered",
		slog.String("message_id", messageID),
		slog.Int("issues", result.IssueCount),
	)

	s.recordDelivery(ctx, domain.DeliveryLogEntry{
		UserID:      userID,
		Success:     true,
		IssueCount:  result.IssueCount,
		InCooldown:  result.Cooldown.InCooldown,
		DeliveredAt: s.now(),
	})

	return &domain.DeliveryResult{
		UserID:     userID,
		Success:    true,
		IssueCount: result.IssueCount,
		InCooldown: result.Cooldown.InCooldown,
	}, nil
}

func (s *ReportServiceImpl) generateForLink(ctx context.Context, link *domain.UserLink) (*report.Result, error) {
	const op = "internal.service.report.generateForLink"

	userID := link.SlackUserID

	if cached, found := s.cache.Get(userID); found {
		s.log.Debug("report served from cache", slog.String("user_id", userID))
		return cached, nil
	}

	if link.LinearUserID == nil {
		return nil, &apperrors.NoTrackerIdentityError{UserID: userID}
	}

	status, err := s.cooldownStatus(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to get cooldown schedule: %w", op, err)
	}

	now := s.now()

	issues, err := s.tracker.GetIssuesForUser(ctx, *link.LinearUserID, now.AddDate(0, 0, -fetchCutoffDays))
	if err != nil {
		return nil, fmt.Errorf("%s: failed to fetch issues: %w", op, err)
	}

	rep := report.Build(issues, now.AddDate(0, 0, -reportPeriodDays), now, status.InCooldown)
	rep.DisplayName = link.DisplayName
	rep.TrackerUserID = *link.LinearUserID
	rep.OrgURLKey = s.orgURLKey(ctx)

	result := &report.Result{
		Report:     rep,
		Rendered:   report.Render(rep, status),
		IssueCount: rep.TotalIssues(),
		Cooldown:   status,
	}

	s.cache.Set(userID, result)
	reportsGeneratedTotal.Inc()

	s.log.Info("report generated",
		slog.String("user_id", userID),
		slog.Int("issues", result.IssueCount),
		slog.Bool("in_cooldown", status.InCooldown),
	)

	return result, nil
}

// cooldownStatus treats a missing schedule as "no cooldown"; any other
// repository failure propagates.
func (s *ReportServiceImpl) cooldownStatus(ctx context.Context, userID string) (cooldown.Status, error) {
	schedule, err := s.schedules.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return cooldown.Status{}, nil
		}

		return cooldown.Status{}, err
	}

	return cooldown.Compute(schedule.NextStart, schedule.DurationWeeks, s.now()), nil
}

// orgURLKey resolves the tracker workspace key once and memoizes it. A
// fetch failure only disables deep links for this report; the next
// generation retries.
func (s *ReportServiceImpl) orgURLKey(ctx context.Context) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.orgKey != "" {
		return s.orgKey
	}

	org, err := s.tracker.GetOrganization(ctx)
	if err != nil {
		s.log.Warn("failed to fetch organization, deep links disabled", sl.Err(err))
		return ""
	}

	s.orgKey = org.URLKey

	return s.orgKey
}

// recordDelivery appends to the audit log. Failures here are logged and
// swallowed: the log observes delivery, it never gates it.
func (s *ReportServiceImpl) recordDelivery(ctx context.Context, entry domain.DeliveryLogEntry) {
	if err := s.deliveries.Insert(ctx, entry); err != nil {
		s.log.Warn("failed to record delivery",
			slog.String("user_id", entry.UserID),
			sl.Err(err),
		)
	}
}
