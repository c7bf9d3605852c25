package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/ashu2906-design/habit-flow/internal/core/domain"
)

// PostgresStreakRepository stores one row per (user, habit); the history and
// milestone lists live in JSONB columns.
type PostgresStreakRepository struct {
	db *sqlx.DB
}

func NewPostgresStreakRepository(db *sqlx.DB) *PostgresStreakRepository {
	return &PostgresStreakRepository{db: db}
}

func (r *PostgresStreakRepository) scanRow(row scannable) (*domain.Streak, error) {
	var s domain.Streak
	var historyJSON, milestonesJSON []byte

	err := row.Scan(
		&s.ID, &s.UserID, &s.HabitID,
		&s.CurrentStreak, &s.LongestStreak,
		&s.StreakStartDate, &s.LastCompletedDate,
		&s.ForgivenessUsed, &s.MaxForgiveness, &s.ForgivenessResetDate,
		&historyJSON, &milestonesJSON, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(historyJSON) > 0 {
		if err := json.Unmarshal(historyJSON, &s.History); err != nil {
			return nil, fmt.Errorf("failed to unmarshal streak history: %w", err)
		}
	}
	if len(milestonesJSON) > 0 {
		if err := json.Unmarshal(milestonesJSON, &s.Milestones); err != nil {
			return nil, fmt.Errorf("failed to unmarshal milestones: %w", err)
		}
	}

	return &s, nil
}

func (r *PostgresStreakRepository) GetByUserAndHabit(ctx context.Context, userID, habitID string) (*domain.Streak, error) {
	query := `
        SELECT
            id, user_id, habit_id,
            current_streak, longest_streak,
            streak_start_date, last_completed_date,
            forgiveness_used, max_forgiveness, forgiveness_reset_date,
            history, milestones, updated_at
        FROM streaks
        WHERE user_id = $1 AND habit_id = $2`

	s, err := r.scanRow(r.db.QueryRowContext(ctx, query, userID, habitID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrStreakNotFound
		}
		return nil, fmt.Errorf("database scan error: %w", err)
	}

	return s, nil
}

func (r *PostgresStreakRepository) Save(ctx context.Context, streak *domain.Streak) error {
	historyJSON, err := json.Marshal(streak.History)
	if err != nil {
		return fmt.Errorf("failed to marshal streak history: %w", err)
	}
	milestonesJSON, err := json.Marshal(streak.Milestones)
	if err != nil {
		return fmt.Errorf("failed to marshal milestones: %w", err)
	}

	query := `
        INSERT INTO streaks (
            id, user_id, habit_id,
            current_streak, longest_streak,
            streak_start_date, last_completed_date,
            forgiveness_used, max_forgiveness, forgiveness_reset_date,
            history, milestones, updated_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
        ON CONFLICT (user_id, habit_id) DO UPDATE SET
            current_streak = EXCLUDED.current_streak,
            longest_streak = EXCLUDED.longest_streak,
            streak_start_date = EXCLUDED.streak_start_date,
            last_completed_date = EXCLUDED.last_completed_date,
            forgiveness_used = EXCLUDED.forgiveness_used,
            max_forgiveness = EXCLUDED.max_forgiveness,
            forgiveness_reset_date = EXCLUDED.forgiveness_reset_date,
            history = EXCLUDED.history,
            milestones = EXCLUDED.milestones,
            updated_at = EXCLUDED.updated_at`

	_, err = r.db.ExecContext(ctx, query,
		streak.ID, streak.UserID, streak.HabitID,
		streak.CurrentStreak, streak.LongestStreak,
		streak.StreakStartDate, streak.LastCompletedDate,
		streak.ForgivenessUsed, streak.MaxForgiveness, streak.ForgivenessResetDate,
		historyJSON, milestonesJSON, streak.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save streak: %w", err)
	}

	return nil
}

func (r *PostgresStreakRepository) ListActiveByUserID(ctx context.Context, userID string) ([]*domain.Streak, error) {
	query := `
        SELECT
            id, user_id, habit_id,
            current_streak, longest_streak,
            streak_start_date, last_completed_date,
            forgiveness_used, max_forgiveness, forgiveness_reset_date,
            history, milestones, updated_at
        FROM streaks
        WHERE user_id = $1 AND current_streak > 0`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}
	defer rows.Close()

	var streaks []*domain.Streak
	for rows.Next() {
		s, err := r.scanRow(rows)
		if err != nil {
			return nil, fmt.Errorf("row scan error: %w", err)
		}
		streaks = append(streaks, s)
	}

	return streaks, rows.Err()
}
