package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/ashu2906-design/habit-flow/internal/core/domain"
)

// PostgresHabitLogRepository relies on a UNIQUE (user_id, habit_id, date)
// constraint; Upsert and CreateIfAbsent are single ON CONFLICT statements so
// the one-log-per-day invariant holds under concurrent writers.
type PostgresHabitLogRepository struct {
	db *sqlx.DB
}

func NewPostgresHabitLogRepository(db *sqlx.DB) *PostgresHabitLogRepository {
	return &PostgresHabitLogRepository{db: db}
}

const logColumns = `
	id, user_id, habit_id, date, completed, completed_at,
	mood, difficulty_feedback, duration_minutes, notes,
	forgiven, forgiven_reason, created_at, updated_at`

func (r *PostgresHabitLogRepository) scanRow(row scannable) (*domain.HabitLog, error) {
	var l domain.HabitLog

	err := row.Scan(
		&l.ID, &l.UserID, &l.HabitID, &l.Date, &l.Completed, &l.CompletedAt,
		&l.Mood, &l.DifficultyFeedback, &l.DurationMinutes, &l.Notes,
		&l.Forgiven, &l.ForgivenReason, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &l, nil
}

func (r *PostgresHabitLogRepository) Upsert(ctx context.Context, log *domain.HabitLog) error {
	query := `
        INSERT INTO habit_logs (` + logColumns + `)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
        ON CONFLICT (user_id, habit_id, date) DO UPDATE SET
            completed = EXCLUDED.completed,
            completed_at = EXCLUDED.completed_at,
            mood = EXCLUDED.mood,
            difficulty_feedback = EXCLUDED.difficulty_feedback,
            duration_minutes = EXCLUDED.duration_minutes,
            notes = EXCLUDED.notes,
            forgiven = EXCLUDED.forgiven,
            forgiven_reason = EXCLUDED.forgiven_reason,
            updated_at = EXCLUDED.updated_at
        RETURNING id`

	err := r.db.QueryRowContext(ctx, query,
		log.ID, log.UserID, log.HabitID, log.Date, log.Completed, log.CompletedAt,
		log.Mood, log.DifficultyFeedback, log.DurationMinutes, log.Notes,
		log.Forgiven, log.ForgivenReason, log.CreatedAt, log.UpdatedAt,
	).Scan(&log.ID)
	if err != nil {
		return fmt.Errorf("failed to upsert habit log: %w", err)
	}

	return nil
}

func (r *PostgresHabitLogRepository) CreateIfAbsent(ctx context.Context, log *domain.HabitLog) error {
	query := `
        INSERT INTO habit_logs (` + logColumns + `)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
        ON CONFLICT (user_id, habit_id, date) DO NOTHING`

	_, err := r.db.ExecContext(ctx, query,
		log.ID, log.UserID, log.HabitID, log.Date, log.Completed, log.CompletedAt,
		log.Mood, log.DifficultyFeedback, log.DurationMinutes, log.Notes,
		log.Forgiven, log.ForgivenReason, log.CreatedAt, log.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert habit log: %w", err)
	}

	return nil
}

func (r *PostgresHabitLogRepository) GetByID(ctx context.Context, id string) (*domain.HabitLog, error) {
	query := `SELECT ` + logColumns + ` FROM habit_logs WHERE id = $1`

	l, err := r.scanRow(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrLogNotFound
		}
		return nil, fmt.Errorf("database scan error: %w", err)
	}

	return l, nil
}

func (r *PostgresHabitLogRepository) GetByDay(ctx context.Context, userID, habitID string, day time.Time) (*domain.HabitLog, error) {
	query := `
        SELECT ` + logColumns + ` FROM habit_logs
        WHERE user_id = $1 AND habit_id = $2 AND date = $3`

	l, err := r.scanRow(r.db.QueryRowContext(ctx, query, userID, habitID, domain.StartOfDay(day)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrLogNotFound
		}
		return nil, fmt.Errorf("database scan error: %w", err)
	}

	return l, nil
}

func (r *PostgresHabitLogRepository) ListByUserSince(ctx context.Context, userID string, since time.Time) ([]*domain.HabitLog, error) {
	query := `
        SELECT ` + logColumns + ` FROM habit_logs
        WHERE user_id = $1 AND date >= $2
        ORDER BY date ASC`

	return r.queryList(ctx, query, userID, since)
}

func (r *PostgresHabitLogRepository) ListByHabitSince(ctx context.Context, userID, habitID string, since time.Time) ([]*domain.HabitLog, error) {
	query := `
        SELECT ` + logColumns + ` FROM habit_logs
        WHERE user_id = $1 AND habit_id = $2 AND date >= $3
        ORDER BY date ASC`

	return r.queryList(ctx, query, userID, habitID, since)
}

func (r *PostgresHabitLogRepository) ListByHabitRange(ctx context.Context, userID, habitID string, from, to time.Time) ([]*domain.HabitLog, error) {
	query := `
        SELECT ` + logColumns + ` FROM habit_logs
        WHERE user_id = $1 AND habit_id = $2 AND date BETWEEN $3 AND $4
        ORDER BY date ASC`

	return r.queryList(ctx, query, userID, habitID, from, to)
}

func (r *PostgresHabitLogRepository) ListByUserAndDay(ctx context.Context, userID string, day time.Time) ([]*domain.HabitLog, error) {
	query := `
        SELECT ` + logColumns + ` FROM habit_logs
        WHERE user_id = $1 AND date = $2`

	return r.queryList(ctx, query, userID, domain.StartOfDay(day))
}

func (r *PostgresHabitLogRepository) queryList(ctx context.Context, query string, args ...interface{}) ([]*domain.HabitLog, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}
	defer rows.Close()

	var logs []*domain.HabitLog
	for rows.Next() {
		l, err := r.scanRow(rows)
		if err != nil {
			return nil, fmt.Errorf("row scan error: %w", err)
		}
		logs = append(logs, l)
	}

	return logs, rows.Err()
}
