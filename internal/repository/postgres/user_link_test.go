//go:build integration

package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teampulse/pulse-service/internal/apperrors"
	"github.com/teampulse/pulse-service/internal/domain"
)

func strPtr(s string) *string {
	return &s
}

func testLinks(now time.Time) []domain.UserLink {
	return []domain.UserLink{
		{
			SlackUserID:  "U1",
			Email:        "ana@corp.io",
			DisplayName:  "Ana",
			LinearUserID: strPtr("lin-1"),
			GitHubLogin:  strPtr("ana-dev"),
			OptedIn:      true,
			Active:       true,
			UpdatedAt:    now,
		},
		{
			SlackUserID: "U2",
			Email:       "ben@corp.io",
			DisplayName: "Ben",
			OptedIn:     true,
			Active:      true,
			UpdatedAt:   now,
		},
	}
}

func TestUserLinkRepository_UpsertLinks(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode.")
	}

	truncateTables(t, testDB)
	repo := NewUserLinkRepository(testDB, logger)
	ctx := context.Background()

	now := time.Now().UTC()

	created, updated, err := repo.UpsertLinks(ctx, testLinks(now))
	require.NoError(t, err)
	assert.Equal(t, 2, created)
	assert.Equal(t, 0, updated)

	// Second pass over the same IDs must refresh, not duplicate.
	refreshed := testLinks(now.Add(time.Hour))
	refreshed[1].DisplayName = "Benjamin"
	refreshed[1].LinearUserID = strPtr("lin-2")

	created, updated, err = repo.UpsertLinks(ctx, refreshed)
	require.NoError(t, err)
	assert.Equal(t, 0, created)
	assert.Equal(t, 2, updated)

	link, err := repo.GetBySlackID(ctx, "U2")
	require.NoError(t, err)
	assert.Equal(t, "Benjamin", link.DisplayName)
	require.NotNil(t, link.LinearUserID)
	assert.Equal(t, "lin-2", *link.LinearUserID)
	assert.WithinDuration(t, now.Add(time.Hour), link.UpdatedAt, time.Second)
}

func TestUserLinkRepository_UpsertLinks_PreservesOptOut(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode.")
	}

	truncateTables(t, testDB)
	repo := NewUserLinkRepository(testDB, logger)
	ctx := context.Background()

	now := time.Now().UTC()
	_, _, err := repo.UpsertLinks(ctx, testLinks(now))
	require.NoError(t, err)

	_, err = repo.SetOptedIn(ctx, "U1", false)
	require.NoError(t, err)

	// A sync run always carries OptedIn=true; the stored flag must survive it.
	_, _, err = repo.UpsertLinks(ctx, testLinks(now.Add(time.Hour)))
	require.NoError(t, err)

	link, err := repo.GetBySlackID(ctx, "U1")
	require.NoError(t, err)
	assert.False(t, link.OptedIn)
}

func TestUserLinkRepository_GetBySlackID_NotFound(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode.")
	}

	truncateTables(t, testDB)
	repo := NewUserLinkRepository(testDB, logger)

	_, err := repo.GetBySlackID(context.Background(), "non-existent-user")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestUserLinkRepository_ListRecipients(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode.")
	}

	truncateTables(t, testDB)
	repo := NewUserLinkRepository(testDB, logger)
	ctx := context.Background()

	now := time.Now().UTC()
	links := testLinks(now)
	links = append(links, domain.UserLink{
		SlackUserID: "U0",
		Email:       "gone@corp.io",
		DisplayName: "Gone",
		OptedIn:     true,
		Active:      false,
		UpdatedAt:   now,
	})

	_, _, err := repo.UpsertLinks(ctx, links)
	require.NoError(t, err)

	recipients, err := repo.ListRecipients(ctx)
	require.NoError(t, err)
	require.Len(t, recipients, 2, "inactive links must not be listed")
	assert.Equal(t, "U1", recipients[0].SlackUserID)
	assert.Equal(t, "U2", recipients[1].SlackUserID)
}

func TestUserLinkRepository_SetOptedIn(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode.")
	}

	truncateTables(t, testDB)
	repo := NewUserLinkRepository(testDB, logger)
	ctx := context.Background()

	_, _, err := repo.UpsertLinks(ctx, testLinks(time.Now().UTC()))
	require.NoError(t, err)

	link, err := repo.SetOptedIn(ctx, "U1", false)
	require.NoError(t, err)
	assert.Equal(t, "U1", link.SlackUserID)
	assert.False(t, link.OptedIn)

	link, err = repo.SetOptedIn(ctx, "U1", true)
	require.NoError(t, err)
	assert.True(t, link.OptedIn)
}

func TestUserLinkRepository_SetOptedIn_NotFound(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode.")
	}

	truncateTables(t, testDB)
	repo := NewUserLinkRepository(testDB, logger)

	_, err := repo.SetOptedIn(context.Background(), "non-existent-user", false)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestUserLinkRepository_DeactivateMissing(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode.")
	}

	truncateTables(t, testDB)
	repo := NewUserLinkRepository(testDB, logger)
	ctx := context.Background()

	now := time.Now().UTC()
	links := testLinks(now)
	links = append(links, domain.UserLink{
		SlackUserID: "U3",
		Email:       "cleo@corp.io",
		DisplayName: "Cleo",
		OptedIn:     true,
		Active:      true,
		UpdatedAt:   now,
	})

	_, _, err := repo.UpsertLinks(ctx, links)
	require.NoError(t, err)

	deactivated, err := repo.DeactivateMissing(ctx, []string{"U1", "U2"})
	require.NoError(t, err)
	assert.Equal(t, []string{"U3"}, deactivated)

	link, err := repo.GetBySlackID(ctx, "U3")
	require.NoError(t, err)
	assert.False(t, link.Active)

	// Already-inactive rows are not reported again.
	deactivated, err = repo.DeactivateMissing(ctx, []string{"U1", "U2"})
	require.NoError(t, err)
	assert.Empty(t, deactivated)
}
