package domain

import (
	"context"
)

type StreakRepository interface {
	// GetByUserAndHabit retrieves the streak record for its composite key,
	// or ErrStreakNotFound.
	GetByUserAndHabit(ctx context.Context, userID, habitID string) (*Streak, error)

	// Save upserts the streak record keyed on (user, habit).
	Save(ctx context.Context, streak *Streak) error

	// ListActiveByUserID returns the user's streaks with CurrentStreak > 0.
	ListActiveByUserID(ctx context.Context, userID string) ([]*Streak, error)
}
