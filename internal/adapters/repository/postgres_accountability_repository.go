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

type PostgresAccountabilityRepository struct {
	db *sqlx.DB
}

func NewPostgresAccountabilityRepository(db *sqlx.DB) *PostgresAccountabilityRepository {
	return &PostgresAccountabilityRepository{db: db}
}

const pairingColumns = `
	id, user_id, partner_id, status,
	shared_habits, settings, created_at, accepted_at`

func (r *PostgresAccountabilityRepository) scanRow(row scannable) (*domain.Accountability, error) {
	var a domain.Accountability
	var habitsJSON, settingsJSON []byte

	err := row.Scan(
		&a.ID, &a.UserID, &a.PartnerID, &a.Status,
		&habitsJSON, &settingsJSON, &a.CreatedAt, &a.AcceptedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(habitsJSON) > 0 {
		if err := json.Unmarshal(habitsJSON, &a.SharedHabits); err != nil {
			return nil, fmt.Errorf("failed to unmarshal shared habits: %w", err)
		}
	}
	if len(settingsJSON) > 0 {
		if err := json.Unmarshal(settingsJSON, &a.Settings); err != nil {
			return nil, fmt.Errorf("failed to unmarshal pairing settings: %w", err)
		}
	}

	return &a, nil
}

func (r *PostgresAccountabilityRepository) Create(ctx context.Context, pairing *domain.Accountability) error {
	habitsJSON, err := json.Marshal(pairing.SharedHabits)
	if err != nil {
		return fmt.Errorf("failed to marshal shared habits: %w", err)
	}
	settingsJSON, err := json.Marshal(pairing.Settings)
	if err != nil {
		return fmt.Errorf("failed to marshal pairing settings: %w", err)
	}

	query := `
        INSERT INTO accountability_pairings (` + pairingColumns + `)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err = r.db.ExecContext(ctx, query,
		pairing.ID, pairing.UserID, pairing.PartnerID, pairing.Status,
		habitsJSON, settingsJSON, pairing.CreatedAt, pairing.AcceptedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert pairing: %w", err)
	}

	return nil
}

func (r *PostgresAccountabilityRepository) GetByID(ctx context.Context, id string) (*domain.Accountability, error) {
	query := `SELECT ` + pairingColumns + ` FROM accountability_pairings WHERE id = $1`

	a, err := r.scanRow(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrAccountabilityNotFound
		}
		return nil, fmt.Errorf("database scan error: %w", err)
	}

	return a, nil
}

func (r *PostgresAccountabilityRepository) GetByPair(ctx context.Context, userID, partnerID string) (*domain.Accountability, error) {
	query := `
        SELECT ` + pairingColumns + ` FROM accountability_pairings
        WHERE (user_id = $1 AND partner_id = $2)
           OR (user_id = $2 AND partner_id = $1)`

	a, err := r.scanRow(r.db.QueryRowContext(ctx, query, userID, partnerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrAccountabilityNotFound
		}
		return nil, fmt.Errorf("database scan error: %w", err)
	}

	return a, nil
}

func (r *PostgresAccountabilityRepository) ListByUserID(ctx context.Context, userID, status string) ([]*domain.Accountability, error) {
	query := `
        SELECT ` + pairingColumns + ` FROM accountability_pairings
        WHERE (user_id = $1 OR partner_id = $1)`
	args := []interface{}{userID}

	if status != "" {
		query += ` AND status = $2`
		args = append(args, status)
	}
	query += ` ORDER BY created_at ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}
	defer rows.Close()

	var pairings []*domain.Accountability
	for rows.Next() {
		a, err := r.scanRow(rows)
		if err != nil {
			return nil, fmt.Errorf("row scan error: %w", err)
		}
		pairings = append(pairings, a)
	}

	return pairings, rows.Err()
}

func (r *PostgresAccountabilityRepository) Update(ctx context.Context, pairing *domain.Accountability) error {
	habitsJSON, err := json.Marshal(pairing.SharedHabits)
	if err != nil {
		return fmt.Errorf("failed to marshal shared habits: %w", err)
	}
	settingsJSON, err := json.Marshal(pairing.Settings)
	if err != nil {
		return fmt.Errorf("failed to marshal pairing settings: %w", err)
	}

	query := `
        UPDATE accountability_pairings SET
            status=$1, shared_habits=$2, settings=$3, accepted_at=$4
        WHERE id=$5`

	res, err := r.db.ExecContext(ctx, query,
		pairing.Status, habitsJSON, settingsJSON, pairing.AcceptedAt, pairing.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update pairing: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrAccountabilityNotFound
	}

	return nil
}
