package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/teampulse/pulse-service/internal/apperrors"
	"github.com/teampulse/pulse-service/internal/domain"
)

type ScheduleRepository struct {
	db  *sqlx.DB
	log *slog.Logger
	sq  sq.StatementBuilderType
}

func NewScheduleRepository(db *sqlx.DB, log *slog.Logger) *ScheduleRepository {
	return &ScheduleRepository{
		db:  db,
		log: log,
		sq:  sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (r *ScheduleRepository) Upsert(ctx context.Context, schedule domain.CooldownSchedule) (*domain.CooldownSchedule, error) {
	const op = "internal.repository.postgres.UpsertSchedule"

	log := r.log.With(slog.String("op", op), slog.String("user_id", schedule.UserID))
	log.Info("upserting cooldown schedule",
		slog.Time("next_start", schedule.NextStart),
		slog.Int("duration_weeks", schedule.DurationWeeks),
	)

	query, args, err := r.sq.Insert("cooldown_schedules").
		Columns("user_id", "next_start", "duration_weeks", "updated_at").
		Values(schedule.UserID, schedule.NextStart, schedule.DurationWeeks, schedule.UpdatedAt).
		Suffix(`
        ON CONFLICT (user_id) DO UPDATE SET
            next_start = EXCLUDED.next_start,
            duration_weeks = EXCLUDED.duration_weeks,
            updated_at = EXCLUDED.updated_at
        RETURNING user_id, next_start, duration_weeks, updated_at`).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build upsert query: %w", op, err)
	}

	var stored domain.CooldownSchedule
	if err := r.db.QueryRowxContext(ctx, query, args...).StructScan(&stored); err != nil {
		return nil, fmt.Errorf("%s: failed to execute upsert: %w", op, err)
	}

	log.Info("cooldown schedule stored")

	return &stored, nil
}

func (r *ScheduleRepository) GetByUserID(ctx context.Context, userID string) (*domain.CooldownSchedule, error) {
	const op = "internal.repository.postgres.GetScheduleByUserID"

	query, args, err := r.sq.Select("user_id", "next_start", "duration_weeks", "updated_at").
		From("cooldown_schedules").
		Where(sq.Eq{"user_id": userID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build select query: %w", op, err)
	}

	var schedule domain.CooldownSchedule
	if err := r.db.GetContext(ctx, &schedule, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: cooldown schedule for '%s'", apperrors.ErrNotFound, userID)
		}

		return nil, fmt.Errorf("%s: failed to execute select: %w", op, err)
	}

	return &schedule, nil
}
