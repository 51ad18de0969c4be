// package repository defines the interfaces for the data persistence layer.
// These interfaces abstract the underlying database implementation from the service layer.
package repository

import (
	"context"

	"github.com/teampulse/pulse-service/internal/domain"
)

// UserLinkRepository defines the contract for the identity links joining
// messaging, tracker and source-hosting accounts.
type UserLinkRepository interface {
	// UpsertLinks inserts or refreshes a batch of links keyed by the
	// messaging user ID and reports how many rows were created vs updated.
	UpsertLinks(ctx context.Context, links []domain.UserLink) (created, updated int, err error)

	// DeactivateMissing marks every active link whose messaging user ID is
	// not in presentIDs as inactive and returns the affected IDs.
	DeactivateMissing(ctx context.Context, presentIDs []string) ([]string, error)

	// GetBySlackID retrieves one link.
	// It returns apperrors.ErrNotFound if no link exists for the ID.
	GetBySlackID(ctx context.Context, slackUserID string) (*domain.UserLink, error)

	// ListRecipients returns every active link, opted-out and
	// tracker-less ones included: the delivery pipeline needs to see
	// those to produce explicit skip results.
	ListRecipients(ctx context.Context) ([]domain.UserLink, error)

	// SetOptedIn flips a recipient's opt-in flag.
	// It returns apperrors.ErrNotFound if no link exists for the ID.
	SetOptedIn(ctx context.Context, slackUserID string, optedIn bool) (*domain.UserLink, error)
}

// ScheduleRepository defines the contract for cooldown schedules.
type ScheduleRepository interface {
	// Upsert stores the schedule for its user, replacing any previous one,
	// and returns the stored row.
	Upsert(ctx context.Context, schedule domain.CooldownSchedule) (*domain.CooldownSchedule, error)

	// GetByUserID retrieves the schedule for one user.
	// It returns apperrors.ErrNotFound if the user has no schedule; the
	// delivery pipeline treats that as "not in cooldown", not as a failure.
	GetByUserID(ctx context.Context, userID string) (*domain.CooldownSchedule, error)
}

// DeliveryLogRepository defines the contract for the delivery audit trail.
// Writes are fire-and-forget from the pipeline's perspective: a failed
// insert is logged and never fails the delivery it records.
type DeliveryLogRepository interface {
	// Insert appends one delivery attempt.
	Insert(ctx context.Context, entry domain.DeliveryLogEntry) error

	// ListRecent returns the newest entries, most recent first.
	ListRecent(ctx context.Context, limit int) ([]domain.DeliveryLogEntry, error)
}
