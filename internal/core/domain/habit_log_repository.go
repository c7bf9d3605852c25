package domain

import (
	"context"
	"errors"
	"time"
)

var (
	ErrLogNotFound = errors.New("habit log not found")
)

type HabitLogRepository interface {
	// Upsert writes the log for its (user, habit, day) key, replacing any
	// existing record. Implementations must make this atomic per key.
	Upsert(ctx context.Context, log *HabitLog) error

	// CreateIfAbsent inserts the log only when no record exists for its
	// (user, habit, day) key. An existing record is left untouched; the
	// nightly sweep relies on this to backfill placeholders without
	// clobbering real logs.
	CreateIfAbsent(ctx context.Context, log *HabitLog) error

	GetByID(ctx context.Context, id string) (*HabitLog, error)

	// GetByDay retrieves the single log for a habit on a calendar day.
	GetByDay(ctx context.Context, userID, habitID string, day time.Time) (*HabitLog, error)

	// ListByUserSince returns all of a user's logs with Date >= since.
	ListByUserSince(ctx context.Context, userID string, since time.Time) ([]*HabitLog, error)

	// ListByHabitSince returns one habit's logs with Date >= since.
	ListByHabitSince(ctx context.Context, userID, habitID string, since time.Time) ([]*HabitLog, error)

	// ListByHabitRange returns one habit's logs within [from, to].
	ListByHabitRange(ctx context.Context, userID, habitID string, from, to time.Time) ([]*HabitLog, error)

	// ListByUserAndDay returns all of a user's logs for one calendar day.
	ListByUserAndDay(ctx context.Context, userID string, day time.Time) ([]*HabitLog, error)
}
