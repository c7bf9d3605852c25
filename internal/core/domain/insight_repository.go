package domain

import (
	"context"
	"time"
)

type InsightRepository interface {
	// CreateBatch persists a set of freshly generated insights.
	CreateBatch(ctx context.Context, insights []*Insight) error

	GetByID(ctx context.Context, id string) (*Insight, error)

	// ListByUserID returns the user's insights, newest first. When unreadOnly
	// is set, read insights are filtered out.
	ListByUserID(ctx context.Context, userID string, unreadOnly bool) ([]*Insight, error)

	// MarkRead flags one insight; the user must own it.
	MarkRead(ctx context.Context, id, userID string) error

	// DeleteExpired removes insights whose expiry has passed and reports how
	// many were purged.
	DeleteExpired(ctx context.Context, now time.Time) (int, error)
}
