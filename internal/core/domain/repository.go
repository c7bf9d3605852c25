package domain

import (
	"context"
	"errors"
)

var (
	ErrHabitNotFound = errors.New("habit not found")
)

type HabitRepository interface {
	// Create persists a new habit definition.
	Create(ctx context.Context, habit *Habit) error

	// GetByID retrieves a habit by its unique identifier.
	GetByID(ctx context.Context, id string) (*Habit, error)

	// ListByUserID retrieves all habits belonging to a user, archived included.
	ListByUserID(ctx context.Context, userID string) ([]*Habit, error)

	// ListActiveByUserID retrieves only non-archived habits.
	ListActiveByUserID(ctx context.Context, userID string) ([]*Habit, error)

	// Update modifies the state of an existing habit.
	Update(ctx context.Context, habit *Habit) error

	// UpdateStats rewrites only the cached stats block. The streak and log
	// services are the sole writers of this read model.
	UpdateStats(ctx context.Context, id string, stats HabitStats) error

	// Delete permanently removes a habit.
	Delete(ctx context.Context, id string) error
}

type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Update(ctx context.Context, user *User) error

	// ListActive returns every active user; the scheduled sweeps iterate this.
	ListActive(ctx context.Context) ([]*User, error)
}
