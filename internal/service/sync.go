package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/teampulse/pulse-service/internal/domain"
	"github.com/teampulse/pulse-service/internal/repository"
	"github.com/teampulse/pulse-service/pkg/logger/sl"
)

type SyncService interface {
	SyncUsers(ctx context.Context) (*domain.SyncSummary, error)
}

type SyncServiceImpl struct {
	log       *slog.Logger
	messenger MessagingClient
	tracker   TrackerClient

	// sourceHost is nil when no code-hosting token is configured; the
	// pipeline then skips enrichment.
	sourceHost SourceHostClient

	links repository.UserLinkRepository

	now func() time.Time
}

func NewSyncService(
	log *slog.Logger,
	messenger MessagingClient,
	tracker TrackerClient,
	sourceHost SourceHostClient,
	links repository.UserLinkRepository,
) *SyncServiceImpl {
	return &SyncServiceImpl{
		log:        log,
		messenger:  messenger,
		tracker:    tracker,
		sourceHost: sourceHost,
		links:      links,
		now:        time.Now,
	}
}

// SyncUsers rebuilds the identity links. The messaging directory is the
// source of truth for who exists; tracker accounts are joined by email
// and source-hosting logins are attached best-effort. Links whose
// messaging user has vanished are deactivated, never deleted.
func (s *SyncServiceImpl) SyncUsers(ctx context.Context) (*domain.SyncSummary, error) {
	const op = "internal.service.sync.SyncUsers"
	log := s.log.With(slog.String("op", op))

	messagingUsers, err := s.messenger.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to list messaging users: %w", op, err)
	}

	trackerUsers, err := s.tracker.GetAllUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to list tracker users: %w", op, err)
	}

	trackerByEmail := make(map[string]domain.TrackerUser, len(trackerUsers))
	for _, user := range trackerUsers {
		if !user.Active || user.Email == "" {
			continue
		}
		trackerByEmail[strings.ToLower(user.Email)] = user
	}

	membersByEmail, membersByLogin := s.fetchOrgMembers(ctx)

	now := s.now()
	summary := &domain.SyncSummary{TrackerUsers: len(trackerUsers)}

	var (
		links      []domain.UserLink
		presentIDs []string
	)

	for _, user := range messagingUsers {
		if user.IsBot || user.Deleted {
			continue
		}

		summary.MessagingUsers++

		if user.Email == "" {
			log.Debug("messaging user has no email, skipping", slog.String("user_id", user.ID))
			continue
		}

		email := strings.ToLower(user.Email)

		link := domain.UserLink{
			SlackUserID: user.ID,
			Email:       email,
			DisplayName: user.DisplayName,
			OptedIn:     true,
			Active:      true,
			UpdatedAt:   now,
		}
		if link.DisplayName == "" {
			link.DisplayName = user.Name
		}

		if trackerUser, found := trackerByEmail[email]; found {
			trackerID := trackerUser.ID
			link.LinearUserID = &trackerID
		} else {
			summary.Unmatched++
		}

		if login, found := matchMember(email, membersByEmail, membersByLogin); found {
			link.GitHubLogin = &login
		}

		links = append(links, link)
		presentIDs = append(presentIDs, user.ID)
	}

	created, updated, err := s.links.UpsertLinks(ctx, links)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to upsert links: %w", op, err)
	}

	summary.Created = created
	summary.Updated = updated

	// An empty directory would deactivate every link at once; treat it
	// as an upstream glitch and leave the links alone.
	if len(presentIDs) == 0 {
		log.Warn("messaging directory came back empty, skipping deactivation")
	} else {
		deactivatedIDs, err := s.links.DeactivateMissing(ctx, presentIDs)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to deactivate stale links: %w", op, err)
		}

		summary.Deactivated = len(deactivatedIDs)

		for _, id := range deactivatedIDs {
			log.Info("link deactivated", slog.String("user_id", id))
		}
	}

	log.Info("user sync finished",
		slog.Int("messaging_users", summary.MessagingUsers),
		slog.Int("tracker_users", summary.TrackerUsers),
		slog.Int("created", summary.Created),
		slog.Int("updated", summary.Updated),
		slog.Int("deactivated", summary.Deactivated),
		slog.Int("unmatched", summary.Unmatched),
	)

	return summary, nil
}

// fetchOrgMembers returns lookup maps for the optional enrichment step.
// Enrichment failures do not fail the sync: the identity links are the
// point, the code-review login is a bonus.
func (s *SyncServiceImpl) fetchOrgMembers(ctx context.Context) (map[string]string, map[string]struct{}) {
	if s.sourceHost == nil {
		return nil, nil
	}

	members, err := s.sourceHost.ListMembers(ctx)
	if err != nil {
		s.log.Warn("failed to list organization members, skipping enrichment", sl.Err(err))
		return nil, nil
	}

	byEmail := make(map[string]string, len(members))
	byLogin := make(map[string]struct{}, len(members))

	for _, member := range members {
		if member.Email != "" {
			byEmail[strings.ToLower(member.Email)] = member.Login
		}
		byLogin[strings.ToLower(member.Login)] = struct{}{}
	}

	return byEmail, byLogin
}

// matchMember joins by email first. Profile emails are usually private,
// so fall back to treating the email local part as a login.
func matchMember(email string, byEmail map[string]string, byLogin map[string]struct{}) (string, bool) {
	if login, found := byEmail[email]; found {
		return login, true
	}

	local, _, found := strings.Cut(email, "@")
	if !found {
		return "", false
	}

	if _, found := byLogin[local]; found {
		return local, true
	}

	return "", false
}
