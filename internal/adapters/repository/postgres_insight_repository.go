package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/ashu2906-design/habit-flow/internal/core/domain"
)

type PostgresInsightRepository struct {
	db *sqlx.DB
}

func NewPostgresInsightRepository(db *sqlx.DB) *PostgresInsightRepository {
	return &PostgresInsightRepository{db: db}
}

const insightColumns = `
	id, user_id, habit_id, type, title, message,
	pattern, priority, is_read, generated_at, expires_at`

func (r *PostgresInsightRepository) scanRow(row scannable) (*domain.Insight, error) {
	var i domain.Insight
	var patternJSON []byte

	err := row.Scan(
		&i.ID, &i.UserID, &i.HabitID, &i.Type, &i.Title, &i.Message,
		&patternJSON, &i.Priority, &i.IsRead, &i.GeneratedAt, &i.ExpiresAt,
	)
	if err != nil {
		return nil, err
	}

	if len(patternJSON) > 0 {
		var p domain.PatternPayload
		if err := json.Unmarshal(patternJSON, &p); err != nil {
			return nil, fmt.Errorf("failed to unmarshal insight pattern: %w", err)
		}
		i.Pattern = &p
	}

	return &i, nil
}

// CreateBatch inserts the whole generation run in one transaction so a
// partial weekly batch never persists.
func (r *PostgresInsightRepository) CreateBatch(ctx context.Context, insights []*domain.Insight) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
        INSERT INTO insights (` + insightColumns + `)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	for _, i := range insights {
		var patternJSON []byte
		if i.Pattern != nil {
			patternJSON, err = json.Marshal(i.Pattern)
			if err != nil {
				return fmt.Errorf("failed to marshal insight pattern: %w", err)
			}
		}

		if _, err := tx.ExecContext(ctx, query,
			i.ID, i.UserID, i.HabitID, i.Type, i.Title, i.Message,
			patternJSON, i.Priority, i.IsRead, i.GeneratedAt, i.ExpiresAt,
		); err != nil {
			return fmt.Errorf("failed to insert insight: %w", err)
		}
	}

	return tx.Commit()
}

func (r *PostgresInsightRepository) GetByID(ctx context.Context, id string) (*domain.Insight, error) {
	query := `SELECT ` + insightColumns + ` FROM insights WHERE id = $1`

	i, err := r.scanRow(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrInsightNotFound
		}
		return nil, fmt.Errorf("database scan error: %w", err)
	}

	return i, nil
}

func (r *PostgresInsightRepository) ListByUserID(ctx context.Context, userID string, unreadOnly bool) ([]*domain.Insight, error) {
	query := `SELECT ` + insightColumns + ` FROM insights WHERE user_id = $1`
	if unreadOnly {
		query += ` AND is_read = FALSE`
	}
	query += ` ORDER BY generated_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}
	defer rows.Close()

	var insights []*domain.Insight
	for rows.Next() {
		i, err := r.scanRow(rows)
		if err != nil {
			return nil, fmt.Errorf("row scan error: %w", err)
		}
		insights = append(insights, i)
	}

	return insights, rows.Err()
}

func (r *PostgresInsightRepository) MarkRead(ctx context.Context, id, userID string) error {
	query := `UPDATE insights SET is_read = TRUE WHERE id = $1 AND user_id = $2`

	res, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("failed to mark insight read: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrInsightNotFound
	}

	return nil
}

func (r *PostgresInsightRepository) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM insights WHERE expires_at < $1`, now)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired insights: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(rows), nil
}
