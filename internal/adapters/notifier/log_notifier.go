package notifier

import (
	"context"
	"log"

	"github.com/ashu2906-design/habit-flow/internal/core/domain"
)

var _ domain.Notifier = (*LogNotifier)(nil)

// LogNotifier writes notifications to the process log. Used in development
// and whenever no broker is configured.
type LogNotifier struct{}

func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

func (n *LogNotifier) SendDailyReminder(ctx context.Context, user *domain.User, pending []*domain.Habit) error {
	log.Printf("[NOTIFY] Daily reminder for %s: %d habits pending", user.Email, len(pending))
	return nil
}

func (n *LogNotifier) NotifyMilestone(ctx context.Context, user *domain.User, habitName string, days int) error {
	log.Printf("[NOTIFY] Milestone for %s: %d days of %q", user.Email, days, habitName)
	return nil
}

func (n *LogNotifier) SendWeeklySummary(ctx context.Context, user *domain.User, insights []*domain.Insight) error {
	log.Printf("[NOTIFY] Weekly summary for %s: %d insights", user.Email, len(insights))
	return nil
}
