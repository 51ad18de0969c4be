package postgres

import (
	"context"
	"fmt"
	"log/slog"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/teampulse/pulse-service/internal/domain"
)

type DeliveryLogRepository struct {
	db  *sqlx.DB
	log *slog.Logger
	sq  sq.StatementBuilderType
}

func NewDeliveryLogRepository(db *sqlx.DB, log *slog.Logger) *DeliveryLogRepository {
	return &DeliveryLogRepository{
		db:  db,
		log: log,
		sq:  sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (r *DeliveryLogRepository) Insert(ctx context.Context, entry domain.DeliveryLogEntry) error {
	const op = "internal.repository.postgres.InsertDeliveryLog"

	query, args, err := r.sq.Insert("delivery_log").
		Columns("user_id", "success", "skipped", "detail", "issue_count", "in_cooldown", "delivered_at").
		Values(entry.UserID, entry.Success, entry.Skipped, entry.Detail, entry.IssueCount, entry.InCooldown, entry.DeliveredAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: failed to build insert query: %w", op, err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%s: failed to execute insert: %w", op, err)
	}

	return nil
}

func (r *DeliveryLogRepository) ListRecent(ctx context.Context, limit int) ([]domain.DeliveryLogEntry, error) {
	const op = "internal.repository.postgres.ListRecentDeliveries"

	query, args, err := r.sq.Select("id", "user_id", "success", "skipped", "detail", "issue_count", "in_cooldown", "delivered_at").
		From("delivery_log").
		OrderBy("delivered_at DESC", "id DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build select query: %w", op, err)
	}

	var entries []domain.DeliveryLogEntry
	if err := r.db.SelectContext(ctx, &entries, query, args...); err != nil {
		return nil, fmt.Errorf("%s: failed to execute select: %w", op, err)
	}

	r.log.Debug("fetched delivery log entries", slog.String("op", op), slog.Int("count", len(entries)))

	return entries, nil
}
