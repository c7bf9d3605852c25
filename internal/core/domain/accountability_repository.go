package domain

import (
	"context"
)

type AccountabilityRepository interface {
	Create(ctx context.Context, pairing *Accountability) error

	GetByID(ctx context.Context, id string) (*Accountability, error)

	// GetByPair finds the pairing between two users in either direction.
	GetByPair(ctx context.Context, userID, partnerID string) (*Accountability, error)

	// ListByUserID returns pairings the user is involved in, optionally
	// filtered by status ("" means all).
	ListByUserID(ctx context.Context, userID, status string) ([]*Accountability, error)

	Update(ctx context.Context, pairing *Accountability) error
}
