package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/teampulse/pulse-service/internal/domain"
	"github.com/teampulse/pulse-service/internal/repository"
	"github.com/teampulse/pulse-service/pkg/logger/sl"
)

type DeliveryService interface {
	DeliverToAll(ctx context.Context) ([]domain.DeliveryResult, *domain.DeliverySummary, error)
}

type DeliveryServiceImpl struct {
	log        *slog.Logger
	reports    ReportService
	links      repository.UserLinkRepository
	deliveries repository.DeliveryLogRepository

	now func() time.Time
}

func NewDeliveryService(
	log *slog.Logger,
	reports ReportService,
	links repository.UserLinkRepository,
	deliveries repository.DeliveryLogRepository,
) *DeliveryServiceImpl {
	return &DeliveryServiceImpl{
		log:        log,
		reports:    reports,
		links:      links,
		deliveries: deliveries,
		now:        time.Now,
	}
}

// DeliverToAll runs the batch pipeline over every active recipient,
// strictly one at a time. Failing to list recipients fails the run;
// after that every recipient produces exactly one result and nothing
// aborts the loop.
func (s *DeliveryServiceImpl) DeliverToAll(ctx context.Context) ([]domain.DeliveryResult, *domain.DeliverySummary, error) {
	const op = "internal.service.delivery.DeliverToAll"

	startedAt := s.now()

	recipients, err := s.links.ListRecipients(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: failed to list recipients: %w", op, err)
	}

	s.log.Info("delivery run starting", slog.Int("recipients", len(recipients)))

	// Sequential on purpose: together with the messenger's send-interval
	// gate this is what keeps big runs under the API rate limits.
	results := make([]domain.DeliveryResult, 0, len(recipients))
	for _, link := range recipients {
		result := s.deliverOne(ctx, link)
		results = append(results, result)

		deliveriesTotal.WithLabelValues(outcomeLabel(result)).Inc()
	}

	summary := summarize(results, startedAt, s.now().Sub(startedAt))
	deliveryRunDuration.Observe(summary.Duration.Seconds())

	s.log.Info("delivery run finished",
		slog.Int("total", summary.Total),
		slog.Int("succeeded", summary.Succeeded),
		slog.Int("failed", summary.Failed),
		slog.Int("skipped", summary.Skipped),
		slog.Duration("duration", summary.Duration),
	)

	return results, summary, nil
}

// deliverOne yields a skip for recipients delivery must not attempt,
// otherwise whatever Send reports. Errors are captured in the result,
// never propagated: one broken recipient must not sink the batch.
func (s *DeliveryServiceImpl) deliverOne(ctx context.Context, link domain.UserLink) domain.DeliveryResult {
	switch {
	case !link.OptedIn:
		return s.skip(ctx, link, domain.SkipReasonOptedOut)
	case link.LinearUserID == nil:
		return s.skip(ctx, link, domain.SkipReasonNoIdentity)
	}

	result, err := s.reports.Send(ctx, link.SlackUserID)
	if err != nil {
		s.log.Error("report delivery failed",
			slog.String("user_id", link.SlackUserID),
			sl.Err(err),
		)

		return domain.DeliveryResult{
			UserID: link.SlackUserID,
			Error:  err.Error(),
		}
	}

	return *result
}

func (s *DeliveryServiceImpl) skip(ctx context.Context, link domain.UserLink, reason string) domain.DeliveryResult {
	s.log.Debug("recipient skipped",
		slog.String("user_id", link.SlackUserID),
		slog.String("reason", reason),
	)

	entry := domain.DeliveryLogEntry{
		UserID:      link.SlackUserID,
		Skipped:     true,
		Detail:      reason,
		DeliveredAt: s.now(),
	}
	if err := s.deliveries.Insert(ctx, entry); err != nil {
		s.log.Warn("failed to record skipped delivery",
			slog.String("user_id", link.SlackUserID),
			sl.Err(err),
		)
	}

	return domain.DeliveryResult{
		UserID:     link.SlackUserID,
		Skipped:    true,
		SkipReason: reason,
	}
}

func summarize(results []domain.DeliveryResult, startedAt time.Time, duration time.Duration) *domain.DeliverySummary {
	summary := &domain.DeliverySummary{
		Total:     len(results),
		StartedAt: startedAt,
		Duration:  duration,
	}

	for _, result := range results {
		switch {
		case result.Skipped:
			summary.Skipped++
		case result.Success:
			summary.Succeeded++
		default:
			summary.Failed++
		}
	}

	return summary
}

func outcomeLabel(result domain.DeliveryResult) string {
	switch {
	case result.Skipped:
		return "skipped"
	case result.Success:
		return "success"
	default:
		return "failure"
	}
}
