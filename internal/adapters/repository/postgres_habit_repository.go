package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/ashu2906-design/habit-flow/internal/core/domain"

	_ "github.com/jackc/pgx/v5/stdlib"
)

type PostgresHabitRepository struct {
	db *sqlx.DB
}

func NewPostgresHabitRepository(db *sqlx.DB) *PostgresHabitRepository {
	return &PostgresHabitRepository{db: db}
}

type scannable interface {
	Scan(dest ...interface{}) error
}

const habitColumns = `
	id, user_id, name, description, category, icon, color,
	difficulty, auto_adjust_difficulty,
	is_active, is_paused, paused_until,
	total_completions, current_streak, longest_streak, success_rate, last_completed,
	created_at, updated_at`

func (r *PostgresHabitRepository) scanRow(row scannable) (*domain.Habit, error) {
	var h domain.Habit

	err := row.Scan(
		&h.ID, &h.UserID, &h.Name, &h.Description, &h.Category, &h.Icon, &h.Color,
		&h.Difficulty, &h.AutoAdjustDifficulty,
		&h.IsActive, &h.IsPaused, &h.PausedUntil,
		&h.Stats.TotalCompletions, &h.Stats.CurrentStreak, &h.Stats.LongestStreak,
		&h.Stats.SuccessRate, &h.Stats.LastCompleted,
		&h.CreatedAt, &h.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &h, nil
}

func (r *PostgresHabitRepository) Create(ctx context.Context, h *domain.Habit) error {
	query := `
        INSERT INTO habits (
            id, user_id, name, description, category, icon, color,
            difficulty, auto_adjust_difficulty,
            is_active, is_paused, paused_until,
            total_completions, current_streak, longest_streak, success_rate, last_completed,
            created_at, updated_at
        ) VALUES (
            $1, $2, $3, $4, $5, $6, $7,
            $8, $9,
            $10, $11, $12,
            0, 0, 0, 0, NULL,
            $13, $14
        )`

	_, err := r.db.ExecContext(ctx, query,
		h.ID, h.UserID, h.Name, h.Description, h.Category, h.Icon, h.Color,
		h.Difficulty, h.AutoAdjustDifficulty,
		h.IsActive, h.IsPaused, h.PausedUntil,
		h.CreatedAt, h.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to insert habit: %w", err)
	}

	return nil
}

func (r *PostgresHabitRepository) GetByID(ctx context.Context, id string) (*domain.Habit, error) {
	query := `SELECT ` + habitColumns + ` FROM habits WHERE id = $1`

	row := r.db.QueryRowContext(ctx, query, id)

	h, err := r.scanRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrHabitNotFound
		}
		return nil, fmt.Errorf("database scan error: %w", err)
	}

	return h, nil
}

func (r *PostgresHabitRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.Habit, error) {
	query := `
        SELECT ` + habitColumns + ` FROM habits
        WHERE user_id = $1
        ORDER BY created_at ASC`

	return r.queryList(ctx, query, userID)
}

func (r *PostgresHabitRepository) ListActiveByUserID(ctx context.Context, userID string) ([]*domain.Habit, error) {
	query := `
        SELECT ` + habitColumns + ` FROM habits
        WHERE user_id = $1 AND is_active = TRUE
        ORDER BY created_at ASC`

	return r.queryList(ctx, query, userID)
}

func (r *PostgresHabitRepository) queryList(ctx context.Context, query string, args ...interface{}) ([]*domain.Habit, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}
	defer rows.Close()

	var habits []*domain.Habit

	for rows.Next() {
		h, err := r.scanRow(rows)
		if err != nil {
			return nil, fmt.Errorf("row scan error: %w", err)
		}
		habits = append(habits, h)
	}

	return habits, rows.Err()
}

func (r *PostgresHabitRepository) Update(ctx context.Context, h *domain.Habit) error {
	query := `
        UPDATE habits SET
            name=$1, description=$2, category=$3, icon=$4, color=$5,
            difficulty=$6, auto_adjust_difficulty=$7,
            is_active=$8, is_paused=$9, paused_until=$10,
            updated_at=$11
        WHERE id=$12`

	res, err := r.db.ExecContext(ctx, query,
		h.Name, h.Description, h.Category, h.Icon, h.Color,
		h.Difficulty, h.AutoAdjustDifficulty,
		h.IsActive, h.IsPaused, h.PausedUntil,
		h.UpdatedAt,
		h.ID,
	)
	if err != nil {
		return fmt.Errorf("update query failed: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrHabitNotFound
	}

	return nil
}

func (r *PostgresHabitRepository) UpdateStats(ctx context.Context, id string, stats domain.HabitStats) error {
	query := `
        UPDATE habits SET
            total_completions=$1, current_streak=$2, longest_streak=$3,
            success_rate=$4, last_completed=$5,
            updated_at=NOW()
        WHERE id=$6`

	res, err := r.db.ExecContext(ctx, query,
		stats.TotalCompletions, stats.CurrentStreak, stats.LongestStreak,
		stats.SuccessRate, stats.LastCompleted,
		id,
	)
	if err != nil {
		return fmt.Errorf("stats update failed: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrHabitNotFound
	}

	return nil
}

func (r *PostgresHabitRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM habits WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete query failed: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrHabitNotFound
	}

	return nil
}
