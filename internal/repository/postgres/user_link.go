package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/teampulse/pulse-service/internal/apperrors"
	"github.com/teampulse/pulse-service/internal/domain"
)

type UserLinkRepository struct {
	db  *sqlx.DB
	log *slog.Logger
	sq  sq.StatementBuilderType
}

func NewUserLinkRepository(db *sqlx.DB, log *slog.Logger) *UserLinkRepository {
	return &UserLinkRepository{
		db:  db,
		log: log,
		sq:  sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (r *UserLinkRepository) UpsertLinks(ctx context.Context, links []domain.UserLink) (int, int, error) {
	const op = "internal.repository.postgres.UpsertLinks"

	if len(links) == 0 {
		return 0, 0, nil
	}

	log := r.log.With(slog.String("op", op))
	log.Info("upserting user links", slog.Int("count", len(links)))

	insertBuilder := r.sq.Insert("user_links").
		Columns("slack_user_id", "email", "display_name", "linear_user_id", "github_login", "opted_in", "active", "updated_at")

	for _, link := range links {
		insertBuilder = insertBuilder.Values(
			link.SlackUserID,
			link.Email,
			link.DisplayName,
			link.LinearUserID,
			link.GitHubLogin,
			link.OptedIn,
			link.Active,
			link.UpdatedAt,
		)
	}

	// opted_in is deliberately absent from the update list: the flag is
	// owned by the recipient and sync runs must never reset it. xmax = 0
	// only holds for rows created by this statement, which is how created
	// and refreshed rows are told apart.
	query, args, err := insertBuilder.Suffix(`
        ON CONFLICT (slack_user_id) DO UPDATE SET
            email = EXCLUDED.email,
            display_name = EXCLUDED.display_name,
            linear_user_id = EXCLUDED.linear_user_id,
            github_login = EXCLUDED.github_login,
            active = EXCLUDED.active,
            updated_at = EXCLUDED.updated_at
        RETURNING (xmax = 0) AS inserted`).
		ToSql()
	if err != nil {
		return 0, 0, fmt.Errorf("%s: failed to build bulk upsert query: %w", op, err)
	}

	var inserted []bool
	if err := r.db.SelectContext(ctx, &inserted, query, args...); err != nil {
		return 0, 0, fmt.Errorf("%s: failed to execute bulk upsert: %w", op, err)
	}

	var created, updated int
	for _, wasInsert := range inserted {
		if wasInsert {
			created++
		} else {
			updated++
		}
	}

	log.Info("user links upserted", slog.Int("created", created), slog.Int("updated", updated))

	return created, updated, nil
}

func (r *UserLinkRepository) DeactivateMissing(ctx context.Context, presentIDs []string) ([]string, error) {
	const op = "internal.repository.postgres.DeactivateMissing"

	query, args, err := r.sq.Update("user_links").
		Set("active", false).
		Set("updated_at", time.Now().UTC()).
		Where(sq.Eq{"active": true}).
		Where(sq.NotEq{"slack_user_id": presentIDs}).
		Suffix("RETURNING slack_user_id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build update query: %w", op, err)
	}

	var deactivatedIDs []string
	if err := r.db.SelectContext(ctx, &deactivatedIDs, query, args...); err != nil {
		return nil, fmt.Errorf("%s: failed to execute update: %w", op, err)
	}

	if len(deactivatedIDs) > 0 {
		r.log.Info("deactivated stale user links",
			slog.String("op", op),
			slog.Int("count", len(deactivatedIDs)),
		)
	}

	return deactivatedIDs, nil
}

func (r *UserLinkRepository) GetBySlackID(ctx context.Context, slackUserID string) (*domain.UserLink, error) {
	const op = "internal.repository.postgres.GetBySlackID"

	query, args, err := r.sq.Select(
		"slack_user_id", "email", "display_name", "linear_user_id",
		"github_login", "opted_in", "active", "updated_at",
	).
		From("user_links").
		Where(sq.Eq{"slack_user_id": slackUserID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build select query: %w", op, err)
	}

	var link domain.UserLink
	if err := r.db.GetContext(ctx, &link, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: user link for '%s'", apperrors.ErrNotFound, slackUserID)
		}

		return nil, fmt.Errorf("%s: failed to execute select: %w", op, err)
	}

	return &link, nil
}

func (r *UserLinkRepository) ListRecipients(ctx context.Context) ([]domain.UserLink, error) {
	const op = "internal.repository.postgres.ListRecipients"

	query, args, err := r.sq.Select(
		"slack_user_id", "email", "display_name", "linear_user_id",
		"github_login", "opted_in", "active", "updated_at",
	).
		From("user_links").
		Where(sq.Eq{"active": true}).
		OrderBy("slack_user_id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build select query: %w", op, err)
	}

	var links []domain.UserLink
	if err := r.db.SelectContext(ctx, &links, query, args...); err != nil {
		return nil, fmt.Errorf("%s: failed to execute select: %w", op, err)
	}

	return links, nil
}

func (r *UserLinkRepository) SetOptedIn(ctx context.Context, slackUserID string, optedIn bool) (*domain.UserLink, error) {
	const op = "internal.repository.postgres.SetOptedIn"

	log := r.log.With(slog.String("op", op))
	log.Info("setting opt-in flag", slog.String("slack_user_id", slackUserID), slog.Bool("opted_in", optedIn))

	query, args, err := r.sq.Update("user_links").
		Set("opted_in", optedIn).
		Set("updated_at", time.Now().UTC()).
		Where(sq.Eq{"slack_user_id": slackUserID}).
		Suffix(`RETURNING
            slack_user_id, email, display_name, linear_user_id,
            github_login, opted_in, active, updated_at`).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build update query: %w", op, err)
	}

	var link domain.UserLink
	if err := r.db.QueryRowxContext(ctx, query, args...).StructScan(&link); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: user link for '%s'", apperrors.ErrNotFound, slackUserID)
		}

		return nil, fmt.Errorf("%s: failed to execute update: %w", op, err)
	}

	log.Info("opt-in flag updated")

	return &link, nil
}
