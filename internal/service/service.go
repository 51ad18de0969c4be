// Package service holds the business logic: report generation, the
// delivery pipeline, identity sync and the admin operations. External
// APIs are reached through the narrow client interfaces below so tests
// can swap them out.
package service

import (
	"context"
	"time"

	"github.com/teampulse/pulse-service/internal/domain"
)

const (
	// reportPeriodDays is the trailing window the weekly buckets cover.
	reportPeriodDays = 7

	// fetchCutoffDays bounds how far back closed issues are still
	// fetched. Open issues are always included regardless of age.
	fetchCutoffDays = 30
)

// TrackerClient is the issue tracker surface the services depend on.
type TrackerClient interface {
	GetCurrentUser(ctx context.Context) (*domain.TrackerUser, error)
	GetOrganization(ctx context.Context) (*domain.Organization, error)
	GetAllUsers(ctx context.Context) ([]domain.TrackerUser, error)
	GetIssuesForUser(ctx context.Context, userID string, cutoff time.Time) ([]domain.Issue, error)
	GetAllAssignedIssues(ctx context.Context, cutoff time.Time) ([]domain.Issue, error)
}

// MessagingClient is the workspace messenger surface: the user directory
// for sync and direct messages for delivery.
type MessagingClient interface {
	ListUsers(ctx context.Context) ([]domain.MessagingUser, error)
	SendDirectMessage(ctx context.Context, userID, text string) (string, error)
}

// SourceHostClient lists code-hosting organization members. Optional;
// sync runs without it when no token is configured.
type SourceHostClient interface {
	ListMembers(ctx context.Context) ([]domain.OrgMember, error)
}
