package domain

import "context"

// Notifier is the outbound port for reminder and summary dispatch. Delivery
// is fire-and-forget: the core logs failures but never retries or blocks on
// them.
type Notifier interface {
	// SendDailyReminder tells the user which habits are still open today.
	SendDailyReminder(ctx context.Context, user *User, pending []*Habit) error

	// NotifyMilestone celebrates a newly achieved streak threshold.
	NotifyMilestone(ctx context.Context, user *User, habitName string, days int) error

	// SendWeeklySummary delivers the freshly generated insight batch.
	SendWeeklySummary(ctx context.Context, user *User, insights []*Insight) error
}
